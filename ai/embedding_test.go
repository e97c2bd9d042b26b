package ai

import (
	"fmt"
	"testing"
)

// stubEncoder returns a constant vector and records the clip lengths it saw.
type stubEncoder struct {
	dim     int
	vector  []float32
	fail    bool
	clipLen []int
}

func (e *stubEncoder) Encode(samples []float32) ([]float32, error) {
	e.clipLen = append(e.clipLen, len(samples))
	if e.fail {
		return nil, fmt.Errorf("stub encoder failure")
	}
	out := make([]float32, e.dim)
	copy(out, e.vector)
	return out, nil
}

func (e *stubEncoder) Dim() int { return e.dim }
func (e *stubEncoder) Close()   {}

func TestExtractEmbeddings_OnePerSegment(t *testing.T) {
	encoder := &stubEncoder{dim: 4, vector: []float32{1, 2, 3, 4}}
	samples := make([]float32, 3*SampleRate) // 3s of silence
	segments := []TranscriptSegment{
		{Start: 0, End: 1, Text: "a"},
		{Start: 1, End: 2.5, Text: "b"},
	}

	out := ExtractEmbeddings(segments, samples, encoder)
	if len(out) != 2 {
		t.Fatalf("got %d embeddings for 2 segments", len(out))
	}
	for i, emb := range out {
		if len(emb) != 4 {
			t.Errorf("embedding %d has dim %d, want 4", i, len(emb))
		}
	}
	if encoder.clipLen[0] != SampleRate {
		t.Errorf("first clip has %d samples, want %d", encoder.clipLen[0], SampleRate)
	}
}

func TestExtractEmbeddings_ClampsToDuration(t *testing.T) {
	encoder := &stubEncoder{dim: 2, vector: []float32{1, 1}}
	samples := make([]float32, 2*SampleRate) // 2s

	// Transcriber overshoot: the segment claims to end at 5s.
	segments := []TranscriptSegment{{Start: 1.5, End: 5, Text: "tail"}}
	out := ExtractEmbeddings(segments, samples, encoder)

	if len(out) != 1 {
		t.Fatalf("got %d embeddings", len(out))
	}
	wantClip := SampleRate / 2 // 1.5s..2.0s
	if encoder.clipLen[0] != wantClip {
		t.Errorf("clip has %d samples, want %d (clamped to duration)", encoder.clipLen[0], wantClip)
	}
}

func TestExtractEmbeddings_ZeroVectorOnFailure(t *testing.T) {
	encoder := &stubEncoder{dim: 3, fail: true}
	samples := make([]float32, SampleRate)
	segments := []TranscriptSegment{{Start: 0, End: 1, Text: "a"}}

	out := ExtractEmbeddings(segments, samples, encoder)
	if len(out) != 1 {
		t.Fatalf("got %d embeddings", len(out))
	}
	for i, v := range out[0] {
		if v != 0 {
			t.Errorf("component %d = %v, want 0 (failure fallback)", i, v)
		}
	}
}

func TestExtractEmbeddings_ZeroVectorOnEmptyClip(t *testing.T) {
	encoder := &stubEncoder{dim: 3, vector: []float32{9, 9, 9}}
	samples := make([]float32, SampleRate)

	// Entirely past the end of the audio.
	segments := []TranscriptSegment{{Start: 5, End: 6, Text: "ghost"}}
	out := ExtractEmbeddings(segments, samples, encoder)

	if len(encoder.clipLen) != 0 {
		t.Error("encoder must not run on an empty clip")
	}
	for i, v := range out[0] {
		if v != 0 {
			t.Errorf("component %d = %v, want 0", i, v)
		}
	}
}
