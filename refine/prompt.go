package refine

import (
	"fmt"
	"strings"

	"callscribe/ai"
	"callscribe/roles"
	"callscribe/transcript"
)

// The refiner speaks the llama3 chat format; the template tokens are part of
// the wire contract with the serving endpoint.
const (
	promptHeader = "<|begin_of_text|><|start_header_id|>system<|end_header_id|>\n"
	promptFooter = "<|eot_id|>\n<|start_header_id|>assistant<|end_header_id|>"
	userHeader   = "<|eot_id|>\n<|start_header_id|>user<|end_header_id|>\n\n"
)

const initialSystemPrompt = `You are an expert in analyzing customer service call transcripts. Your task is to:

1. Identify which speaker is the Customer and which is the Agent.
   - The Customer is the one who has a problem, question, or need
   - The Agent is the one who provides service, asks verification questions, and offers solutions
   - There MUST be both an AGENT and a CUSTOMER in the transcript

2. Clean up the transcript by removing noise, repetitions, and correcting any obvious transcription errors.
3. Mask PII (Personally Identifiable Information) like full names, complete addresses, credit card numbers, SSNs, etc. with [MASKED PII].
4. Return the improved transcript with correct speaker labels (AGENT or CUSTOMER).

Speaker identification guidelines:
- Agents typically: ask verification questions, follow scripts, provide solutions, use professional language
- Customers typically: describe problems, answer questions, make requests, provide personal information
- If a speaker says they "lost a card" or mentions "my account", they are almost certainly the CUSTOMER
- If a speaker asks for ID, verification information, or explains policies, they are almost certainly the AGENT

Formatting guidelines:
- Format each speaker turn as "AGENT at [timestamp]: [text]" or "CUSTOMER at [timestamp]: [text]"
- Preserve all timestamps exactly as provided
- Ensure the transcript flows naturally with appropriate turn-taking
- Remove filler words and speech artifacts that don't add meaning`

const retrySystemPrompt = `You are an expert in analyzing customer service call transcripts. I've provided speaker hints based on detailed content analysis.
Your task is to correctly identify speakers and clean the transcript.

IMPORTANT: You MUST label speakers as either "AGENT" or "CUSTOMER" - each conversation MUST have both roles.
- AGENT: The customer service representative who helps solve issues, asks verification questions, provides information
- CUSTOMER: The person who has called with a problem, question, or need related to their account, card, or service

Context clues for CUSTOMER:
- Mentions personal issues: "I lost my card", "my account", "I need help with"
- Provides personal information when asked
- Describes problems they're experiencing
- Makes requests for assistance
- Often speaks less overall than the agent

Context clues for AGENT:
- Uses professional language and scripted phrases
- Asks verification questions: "Can I have your account number?", "What's your name?"
- Explains policies or procedures: "For security purposes", "According to our policy"
- Offers solutions: "I can help you with that", "Let me check that for you"
- Often begins and ends the conversation

For each turn, output exactly in this format:
"AGENT at [timestamp]: [cleaned text]" or "CUSTOMER at [timestamp]: [cleaned text]"`

// BuildInitialPrompt wraps the neutral transcript for the first refinement
// attempt.
func BuildInitialPrompt(segments []ai.TranscriptSegment) string {
	var b strings.Builder
	b.WriteString(promptHeader)
	b.WriteString(initialSystemPrompt)
	b.WriteString(userHeader)
	b.WriteString("Please process this call transcript, identifying which speaker is the agent and which is the customer, cleaning up the text, and masking any PII:\n\n")
	b.WriteString(transcript.ComposeNeutral(segments))
	b.WriteString("\n")
	b.WriteString(promptFooter)
	return b.String()
}

// BuildRetryPrompt wraps the transcript annotated with per-segment role
// hints from the local resolver for the second attempt.
func BuildRetryPrompt(segments []ai.TranscriptSegment, table roles.Table, assignment roles.Assignment) string {
	var b strings.Builder
	b.WriteString(promptHeader)
	b.WriteString(retrySystemPrompt)
	b.WriteString(userHeader)
	b.WriteString("Please correctly identify speakers and clean this transcript:\n\n")
	b.WriteString(annotatedTranscript(segments, table, assignment))
	b.WriteString("\n")
	b.WriteString(promptFooter)
	return b.String()
}

// annotatedTranscript renders the neutral transcript with "(likely ROLE -
// score: n)" hints on the segments of the locally resolved clusters.
func annotatedTranscript(segments []ai.TranscriptSegment, table roles.Table, assignment roles.Assignment) string {
	lines := make([]string, 0, len(segments))
	for _, seg := range segments {
		hint := roleHint(seg.Cluster, table, assignment)
		lines = append(lines, fmt.Sprintf("%s%s at %s: %s",
			transcript.SpeakerLabel(seg.Cluster), hint,
			transcript.FormatTimestamp(seg.Start), seg.Text))
	}
	return strings.Join(lines, "\n\n")
}

func roleHint(cluster int, table roles.Table, assignment roles.Assignment) string {
	score, scored := table[cluster]
	switch {
	case assignment.IsCustomer(cluster):
		if scored && score.Customer > 0 {
			return fmt.Sprintf(" (likely CUSTOMER - score: %d)", score.Customer)
		}
		return " (likely CUSTOMER)"
	case assignment.IsAgent(cluster):
		if scored && score.Agent > 0 {
			return fmt.Sprintf(" (likely AGENT - score: %d)", score.Agent)
		}
		return " (likely AGENT)"
	default:
		return ""
	}
}
