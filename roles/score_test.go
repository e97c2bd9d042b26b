package roles

import (
	"testing"

	"callscribe/ai"
)

// serviceCall is a typical two-speaker support call: cluster 1 opens and
// closes (agent side), cluster 0 reports a lost card (customer side).
func serviceCall() []ai.TranscriptSegment {
	return []ai.TranscriptSegment{
		{Start: 0, End: 3, Text: "Thank you for calling, how can I help you today?", Cluster: 1},
		{Start: 3, End: 7, Text: "Hi, I lost my card yesterday and I need to block it.", Cluster: 0},
		{Start: 7, End: 11, Text: "Can I have your account number please?", Cluster: 1},
		{Start: 11, End: 14, Text: "Sure, it's on my statement somewhere.", Cluster: 0},
		{Start: 14, End: 17, Text: "Is there anything else I can help with?", Cluster: 1},
	}
}

func TestScoreSegments_CustomerEvidence(t *testing.T) {
	table := ScoreSegments(serviceCall())

	score, ok := table[0]
	if !ok {
		t.Fatal("cluster 0 missing from the table")
	}
	// "I lost my card" hits lexicon phrases and the customer patterns.
	if score.Customer < 2 {
		t.Errorf("cluster 0 customer score = %d, want >= 2", score.Customer)
	}
	if score.Customer <= score.Agent {
		t.Errorf("cluster 0 should lean customer, got customer=%d agent=%d",
			score.Customer, score.Agent)
	}
}

func TestScoreSegments_AgentEvidence(t *testing.T) {
	table := ScoreSegments(serviceCall())

	score, ok := table[1]
	if !ok {
		t.Fatal("cluster 1 missing from the table")
	}
	if score.Agent < 2 {
		t.Errorf("cluster 1 agent score = %d, want >= 2", score.Agent)
	}
	if score.Agent <= score.Customer {
		t.Errorf("cluster 1 should lean agent, got customer=%d agent=%d",
			score.Customer, score.Agent)
	}
}

func TestScoreSegments_PositionalBonus(t *testing.T) {
	// Neutral text, so scores come from position only: cluster 0 opens,
	// cluster 1 closes, each earns +1 agent.
	segments := []ai.TranscriptSegment{
		{Text: "hello", Cluster: 0},
		{Text: "hello there", Cluster: 1},
	}
	table := ScoreSegments(segments)

	if table[0].Agent != 1 {
		t.Errorf("opening cluster agent score = %d, want 1", table[0].Agent)
	}
	if table[1].Agent != 1 {
		t.Errorf("closing cluster agent score = %d, want 1", table[1].Agent)
	}
	if table[0].Customer != 0 || table[1].Customer != 0 {
		t.Errorf("neutral text should add no customer evidence, got %d and %d",
			table[0].Customer, table[1].Customer)
	}
}

func TestScoreSegments_QuestionAdjacency(t *testing.T) {
	// A question followed by a different cluster: the questioner leans
	// agent, the answerer leans customer.
	segments := []ai.TranscriptSegment{
		{Text: "ready when you are?", Cluster: 0},
		{Text: "yes go ahead", Cluster: 1},
		{Text: "great", Cluster: 1},
	}
	table := ScoreSegments(segments)

	// Cluster 0 also opens the call (+1 agent positional).
	if table[0].Agent != 2 {
		t.Errorf("questioner agent score = %d, want 2", table[0].Agent)
	}
	if table[1].Customer != 1 {
		t.Errorf("answerer customer score = %d, want 1", table[1].Customer)
	}
}

func TestScoreSegments_NoBonusWithinSameCluster(t *testing.T) {
	segments := []ai.TranscriptSegment{
		{Text: "are you there?", Cluster: 0},
		{Text: "checking once more", Cluster: 0},
	}
	table := ScoreSegments(segments)

	// Opening and closing both land on cluster 0: exactly the two
	// positional bonuses and nothing from the question.
	if table[0].Agent != 2 {
		t.Errorf("agent score = %d, want 2 (positional only)", table[0].Agent)
	}
	if table[0].Customer != 0 {
		t.Errorf("customer score = %d, want 0", table[0].Customer)
	}
}

func TestScoreSegments_Deterministic(t *testing.T) {
	first := ScoreSegments(serviceCall())
	for run := 0; run < 5; run++ {
		again := ScoreSegments(serviceCall())
		for _, id := range first.ClusterIDs() {
			if *again[id] != *first[id] {
				t.Fatalf("run %d: cluster %d score changed: %+v vs %+v",
					run, id, again[id], first[id])
			}
		}
	}
}

func TestScoreSegments_Empty(t *testing.T) {
	table := ScoreSegments(nil)
	if len(table) != 0 {
		t.Errorf("empty input should produce empty table, got %d entries", len(table))
	}
}
