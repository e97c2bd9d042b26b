// Package transcript renders clustered, role-resolved segments into the
// line-oriented transcript format and parses it back.
package transcript

import (
	"fmt"
	"math"
	"strings"

	"callscribe/ai"
	"callscribe/roles"
)

// Role is the semantic speaker label of a transcript line.
type Role string

const (
	RoleAgent    Role = "AGENT"
	RoleCustomer Role = "CUSTOMER"
	// RoleSpeaker labels clusters holding neither resolved role
	// (third voices, unresolved degenerate cases).
	RoleSpeaker Role = "SPEAKER"
)

// Line is one parsed transcript line.
type Line struct {
	Role      Role
	Timestamp string // HH:MM:SS
	Text      string
}

// String renders the canonical line format.
func (l Line) String() string {
	return fmt.Sprintf("%s at %s: %s", l.Role, l.Timestamp, l.Text)
}

// FormatTimestamp renders seconds as zero-padded HH:MM:SS, rounding to the
// nearest second.
func FormatTimestamp(seconds float64) string {
	total := int(math.Round(seconds))
	if total < 0 {
		total = 0
	}
	h := total / 3600
	m := (total % 3600) / 60
	s := total % 60
	return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
}

// ParseLine parses a rendered transcript line back into its parts.
func ParseLine(line string) (Line, error) {
	role, rest, ok := strings.Cut(line, " at ")
	if !ok {
		return Line{}, fmt.Errorf("transcript line missing %q separator: %q", " at ", line)
	}
	timestamp, text, ok := strings.Cut(rest, ": ")
	if !ok {
		return Line{}, fmt.Errorf("transcript line missing text separator: %q", line)
	}
	return Line{
		Role:      Role(strings.TrimSpace(role)),
		Timestamp: strings.TrimSpace(timestamp),
		Text:      text,
	}, nil
}

// Compose renders the role-labeled transcript, one line per segment. This is
// the final output when refinement is unavailable.
func Compose(segments []ai.TranscriptSegment, assignment roles.Assignment) string {
	lines := make([]string, 0, len(segments))
	for _, seg := range segments {
		lines = append(lines, Line{
			Role:      roleOf(seg.Cluster, assignment),
			Timestamp: FormatTimestamp(seg.Start),
			Text:      seg.Text,
		}.String())
	}
	return strings.Join(lines, "\n")
}

// ComposeNeutral renders the transcript with anonymous speaker labels
// ("SPEAKER 1", "SPEAKER 2", ...), one blank line between turns. This is the
// payload handed to the text refiner, which does the role naming itself.
func ComposeNeutral(segments []ai.TranscriptSegment) string {
	lines := make([]string, 0, len(segments))
	for _, seg := range segments {
		lines = append(lines, fmt.Sprintf("%s at %s: %s",
			SpeakerLabel(seg.Cluster), FormatTimestamp(seg.Start), seg.Text))
	}
	return strings.Join(lines, "\n\n")
}

// ComposeTurns renders the neutral transcript grouped into speaker turns:
// a header line per speaker change followed by that speaker's text. Used for
// the no-refinement output mode.
func ComposeTurns(segments []ai.TranscriptSegment) string {
	var b strings.Builder
	prev := -1
	for _, seg := range segments {
		if seg.Cluster != prev {
			fmt.Fprintf(&b, "\n%s at %s\n", SpeakerLabel(seg.Cluster), FormatTimestamp(seg.Start))
			prev = seg.Cluster
		}
		b.WriteString(seg.Text)
		b.WriteString(" ")
	}
	return strings.TrimRight(b.String(), " ")
}

// SpeakerLabel names a cluster for neutral output, 1-based like the refiner
// prompts expect.
func SpeakerLabel(cluster int) string {
	return fmt.Sprintf("SPEAKER %d", cluster+1)
}

func roleOf(cluster int, assignment roles.Assignment) Role {
	switch {
	case assignment.IsCustomer(cluster):
		return RoleCustomer
	case assignment.IsAgent(cluster):
		return RoleAgent
	default:
		return RoleSpeaker
	}
}
