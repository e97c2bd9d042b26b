// Package roles decides which speaker cluster is the AGENT and which is the
// CUSTOMER of a call from textual and conversational evidence.
package roles

import (
	"regexp"
	"strings"

	"callscribe/ai"
)

// Evidence weights: a lexicon phrase hit is weaker than a pattern match.
const (
	phraseWeight  = 1
	patternWeight = 2
	bonusWeight   = 1
)

// customerLexicon holds phrases typical for the calling customer: problems,
// personal accounts and cards, losses and requests.
var customerLexicon = []string{
	"lost", "my card", "my account", "i want", "i need", "my name is",
	"i'm trying to", "i was", "i have a", "i lost", "i can't", "i don't",
	"help me", "my credit card", "my number", "my phone", "my email",
	"cancel", "stolen", "fraud", "charge", "payment", "i paid", "i bought",
	"i ordered", "my order", "refund", "my balance", "my statement",
}

// agentLexicon holds phrases typical for the service agent: verification,
// policy and assistance scripting.
var agentLexicon = []string{
	"can you provide", "what is your", "thank you for", "how can i help",
	"may i have", "could you confirm", "i'll need to verify", "for security purposes",
	"is there anything else", "i understand", "our records", "our system",
	"let me check", "according to", "i've checked", "i can see", "may i have your",
	"can i get your", "i'll assist you", "please hold", "let me pull up",
	"is that correct", "would you like", "thank you for calling", "thank you for your patience",
	"is there anything else i can help with", "have i resolved", "card ending in",
}

var customerPatterns = []*regexp.Regexp{
	regexp.MustCompile(`\b(?:my|our) (?:card|account|order|payment)\b`),
	regexp.MustCompile(`\bi (?:lost|need|want|can't|don't|have a|would like|am trying)\b`),
	regexp.MustCompile(`\bmy (?:name|email|phone|address|balance)\b`),
}

var agentPatterns = []*regexp.Regexp{
	regexp.MustCompile(`\b(?:could|may|can) (?:you|i) (?:have|get|confirm|verify)\b`),
	regexp.MustCompile(`\bfor (?:security|verification|identification) purposes\b`),
	regexp.MustCompile(`\b(?:our|the) (?:records|system|policy|team)\b`),
	regexp.MustCompile(`\bi(?:'ll| will) (?:assist|help|check|verify|need)\b`),
}

// ScoreSegments builds the evidence table for the clustered segments. Four
// passes, all additive:
//
//  1. lexicon phrases, +1 per hit on the segment's cluster;
//  2. regex patterns, +2 per match;
//  3. positional bonus: the clusters opening and closing the call each get
//     +1 agent (call-center convention: the agent opens and closes);
//  4. adjacency bonus: on a cluster change where the earlier segment ends
//     with "?", the questioner's cluster gets +1 agent and the answerer's
//     +1 customer.
//
// Deterministic for a given segment order.
func ScoreSegments(segments []ai.TranscriptSegment) Table {
	table := NewTable(segments)

	for _, seg := range segments {
		text := strings.ToLower(seg.Text)

		for _, phrase := range customerLexicon {
			if strings.Contains(text, phrase) {
				table.AddCustomerEvidence(seg.Cluster, phraseWeight)
			}
		}
		for _, phrase := range agentLexicon {
			if strings.Contains(text, phrase) {
				table.AddAgentEvidence(seg.Cluster, phraseWeight)
			}
		}

		for _, pattern := range customerPatterns {
			if pattern.MatchString(text) {
				table.AddCustomerEvidence(seg.Cluster, patternWeight)
			}
		}
		for _, pattern := range agentPatterns {
			if pattern.MatchString(text) {
				table.AddAgentEvidence(seg.Cluster, patternWeight)
			}
		}
	}

	if len(segments) > 0 {
		table.AddAgentEvidence(segments[0].Cluster, bonusWeight)
		table.AddAgentEvidence(segments[len(segments)-1].Cluster, bonusWeight)
	}

	for i := 0; i+1 < len(segments); i++ {
		cur, next := segments[i], segments[i+1]
		if cur.Cluster == next.Cluster {
			continue
		}
		if strings.HasSuffix(strings.ToLower(cur.Text), "?") {
			table.AddAgentEvidence(cur.Cluster, bonusWeight)
			table.AddCustomerEvidence(next.Cluster, bonusWeight)
		}
	}

	return table
}
