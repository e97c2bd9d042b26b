package ai

import (
	"fmt"
	"strings"

	"github.com/samber/lo"
	"github.com/sirupsen/logrus"
)

// CallPipeline runs transcription, embedding extraction and speaker
// clustering for one recording. The transcriber and encoder are loaded once
// and reused across files; the pipeline never mutates them.
type CallPipeline struct {
	transcriber Transcriber
	encoder     SpeakerEncoder
	numSpeakers int
}

// NewCallPipeline wires a pipeline for a fixed target speaker count.
func NewCallPipeline(transcriber Transcriber, encoder SpeakerEncoder, numSpeakers int) (*CallPipeline, error) {
	if transcriber == nil {
		return nil, fmt.Errorf("transcriber is required")
	}
	if encoder == nil {
		return nil, fmt.Errorf("speaker encoder is required")
	}
	if numSpeakers < 1 {
		return nil, fmt.Errorf("speaker count must be >= 1, got %d", numSpeakers)
	}
	return &CallPipeline{
		transcriber: transcriber,
		encoder:     encoder,
		numSpeakers: numSpeakers,
	}, nil
}

// NumSpeakers returns the target cluster count.
func (p *CallPipeline) NumSpeakers() int { return p.numSpeakers }

// Process turns a mono 16 kHz waveform into cluster-attributed transcript
// segments, ordered chronologically.
func (p *CallPipeline) Process(samples []float32) ([]TranscriptSegment, error) {
	segments, err := p.transcriber.Transcribe(samples)
	if err != nil {
		return nil, fmt.Errorf("transcription failed: %w", err)
	}
	if len(segments) == 0 {
		logrus.Warn("transcriber returned no segments")
		return nil, nil
	}

	for i := range segments {
		segments[i].Text = strings.TrimSpace(segments[i].Text)
		segments[i].Cluster = -1
	}

	logrus.Infof("extracting embeddings for %d segments", len(segments))
	embeddings := ExtractEmbeddings(segments, samples, p.encoder)
	for i := range segments {
		segments[i].Embedding = embeddings[i]
	}

	logrus.Infof("clustering into %d speakers", p.numSpeakers)
	labels := ClusterEmbeddings(embeddings, p.numSpeakers)
	for i := range segments {
		segments[i].Cluster = labels[i]
	}

	logrus.Infof("diarization done: %d segments, %d distinct speakers",
		len(segments), len(lo.Uniq(labels)))
	return segments, nil
}
