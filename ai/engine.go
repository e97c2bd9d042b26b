// Package ai provides the transcription and speaker-embedding engines and the
// numeric core (embedding extraction, speaker clustering) of the diarization
// pipeline.
package ai

// SampleRate is the sample rate every engine operates at. The audio loader
// normalizes all inputs to mono at this rate before they reach this package.
const SampleRate = 16000

// EmbeddingDim is the output dimension of the ECAPA/WeSpeaker voice
// embedding models this pipeline ships with.
const EmbeddingDim = 192

// TranscriptSegment is one time-bounded transcribed utterance.
// Created by a Transcriber (times and text only), enriched with an embedding
// by ExtractEmbeddings and with a cluster id by ClusterEmbeddings, read-only
// afterward.
type TranscriptSegment struct {
	Start     float64 // seconds
	End       float64 // seconds
	Text      string
	Cluster   int       // speaker cluster id, -1 until clustering runs
	Embedding []float32 // voice embedding, nil until extraction runs
}

// Transcriber converts a mono 16 kHz waveform into timed text segments.
type Transcriber interface {
	// Transcribe returns the ordered segments for the whole recording.
	Transcribe(samples []float32) ([]TranscriptSegment, error)

	// SetLanguage sets the recognition language ("en", "auto", ...).
	SetLanguage(lang string)

	// Name returns the engine name for logging.
	Name() string

	// Close releases engine resources.
	Close()
}

// SpeakerEncoder maps a mono 16 kHz waveform to a fixed-length voice
// embedding.
type SpeakerEncoder interface {
	Encode(samples []float32) ([]float32, error)

	// Dim returns the embedding dimension.
	Dim() int

	Close()
}

// SpeechRange is a time span of detected speech, in seconds.
type SpeechRange struct {
	Start float64
	End   float64
}

// SpeechSegmenter splits a waveform into speech ranges for chunked decoding.
// Implemented by SileroVAD and EnergyVAD.
type SpeechSegmenter interface {
	SpeechRanges(samples []float32) ([]SpeechRange, error)
	Name() string
}
