package ai

import (
	"math"

	"github.com/sirupsen/logrus"
)

// ExtractEmbeddings computes one voice embedding per transcript segment. The
// waveform must already be mono 16 kHz (multi-channel inputs are averaged to
// one channel by the audio loader before this point).
//
// Segment end times are clamped to the audio duration to tolerate transcriber
// overshoot past end-of-file. Any per-segment failure (empty clip, encoder
// error) yields a zero vector instead of an error: diarization degrades
// rather than aborts on a single bad segment.
func ExtractEmbeddings(segments []TranscriptSegment, samples []float32, encoder SpeakerEncoder) [][]float32 {
	duration := float64(len(samples)) / SampleRate
	dim := EmbeddingDim
	if encoder != nil && encoder.Dim() > 0 {
		dim = encoder.Dim()
	}

	out := make([][]float32, len(segments))
	for i, seg := range segments {
		out[i] = segmentEmbedding(seg, duration, samples, encoder, dim)
	}
	return out
}

func segmentEmbedding(seg TranscriptSegment, duration float64, samples []float32, encoder SpeakerEncoder, dim int) []float32 {
	start := math.Max(seg.Start, 0)
	end := math.Min(seg.End, duration)
	if encoder == nil || end <= start {
		return make([]float32, dim)
	}

	lo := int(start * SampleRate)
	hi := int(end * SampleRate)
	if lo < 0 {
		lo = 0
	}
	if hi > len(samples) {
		hi = len(samples)
	}
	if lo >= hi {
		return make([]float32, dim)
	}

	emb, err := encoder.Encode(samples[lo:hi])
	if err != nil {
		logrus.WithError(err).Warnf("segment embedding failed for %.2fs-%.2fs, using zero vector", start, end)
		return make([]float32, dim)
	}
	return emb
}
