package transcript

import (
	"strings"
	"testing"

	"callscribe/ai"
	"callscribe/roles"
)

func TestFormatTimestamp(t *testing.T) {
	tests := []struct {
		seconds float64
		want    string
	}{
		{0, "00:00:00"},
		{5, "00:00:05"},
		{65, "00:01:05"},
		{65.4, "00:01:05"},
		{65.6, "00:01:06"},
		{3600, "01:00:00"},
		{3725, "01:02:05"},
		{-3, "00:00:00"},
	}
	for _, tt := range tests {
		if got := FormatTimestamp(tt.seconds); got != tt.want {
			t.Errorf("FormatTimestamp(%v) = %q, want %q", tt.seconds, got, tt.want)
		}
	}
}

func TestParseLine_RoundTrip(t *testing.T) {
	lines := []Line{
		{Role: RoleCustomer, Timestamp: "00:01:05", Text: "hello"},
		{Role: RoleAgent, Timestamp: "00:00:00", Text: "thank you for calling"},
		{Role: RoleSpeaker, Timestamp: "01:02:03", Text: "text with: a colon"},
	}
	for _, want := range lines {
		got, err := ParseLine(want.String())
		if err != nil {
			t.Fatalf("ParseLine(%q) failed: %v", want.String(), err)
		}
		if got != want {
			t.Errorf("round trip changed the line: %+v -> %+v", want, got)
		}
	}
}

func TestParseLine_Malformed(t *testing.T) {
	for _, line := range []string{"", "no separators here", "AGENT at 00:00:00"} {
		if _, err := ParseLine(line); err == nil {
			t.Errorf("ParseLine(%q) should fail", line)
		}
	}
}

func TestCompose(t *testing.T) {
	segments := []ai.TranscriptSegment{
		{Start: 0, Text: "how can I help", Cluster: 1},
		{Start: 65, Text: "I lost my card", Cluster: 0},
		{Start: 70, Text: "background voice", Cluster: 2},
	}
	assignment := roles.Assignment{Customer: 0, Agent: 1}

	got := Compose(segments, assignment)
	want := "AGENT at 00:00:00: how can I help\n" +
		"CUSTOMER at 00:01:05: I lost my card\n" +
		"SPEAKER at 00:01:10: background voice"
	if got != want {
		t.Errorf("Compose mismatch:\ngot:\n%s\nwant:\n%s", got, want)
	}
}

func TestComposeNeutral(t *testing.T) {
	segments := []ai.TranscriptSegment{
		{Start: 0, Text: "first", Cluster: 0},
		{Start: 3, Text: "second", Cluster: 1},
	}
	got := ComposeNeutral(segments)

	if !strings.Contains(got, "SPEAKER 1 at 00:00:00: first") {
		t.Errorf("missing first neutral line in:\n%s", got)
	}
	if !strings.Contains(got, "SPEAKER 2 at 00:00:03: second") {
		t.Errorf("missing second neutral line in:\n%s", got)
	}
	if strings.Contains(got, "AGENT") || strings.Contains(got, "CUSTOMER") {
		t.Error("neutral transcript must not contain role labels")
	}
}

func TestComposeTurns_GroupsBySpeaker(t *testing.T) {
	segments := []ai.TranscriptSegment{
		{Start: 0, Text: "hello there", Cluster: 0},
		{Start: 2, Text: "nice to meet you", Cluster: 0},
		{Start: 5, Text: "likewise", Cluster: 1},
	}
	got := ComposeTurns(segments)

	// Two headers only: consecutive same-cluster segments share a turn.
	if n := strings.Count(got, "SPEAKER 1 at"); n != 1 {
		t.Errorf("got %d headers for speaker 1, want 1:\n%s", n, got)
	}
	if n := strings.Count(got, "SPEAKER 2 at"); n != 1 {
		t.Errorf("got %d headers for speaker 2, want 1:\n%s", n, got)
	}
	if !strings.Contains(got, "hello there nice to meet you") {
		t.Errorf("same-speaker text not merged into one turn:\n%s", got)
	}
}

func TestSpeakerLabel(t *testing.T) {
	if got := SpeakerLabel(0); got != "SPEAKER 1" {
		t.Errorf("SpeakerLabel(0) = %q, want SPEAKER 1", got)
	}
	if got := SpeakerLabel(3); got != "SPEAKER 4" {
		t.Errorf("SpeakerLabel(3) = %q, want SPEAKER 4", got)
	}
}
