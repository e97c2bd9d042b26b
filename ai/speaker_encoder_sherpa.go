package ai

import (
	"fmt"
	"os"
	"sync"

	sherpa "github.com/k2-fsa/sherpa-onnx-go/sherpa_onnx"
	"github.com/sirupsen/logrus"
)

// SherpaEncoderConfig configures the sherpa-onnx speaker embedding extractor.
type SherpaEncoderConfig struct {
	ModelPath  string
	NumThreads int
	Provider   string // cpu, cuda, coreml
}

// DefaultSherpaEncoderConfig returns the default extractor configuration.
func DefaultSherpaEncoderConfig(modelPath string) SherpaEncoderConfig {
	return SherpaEncoderConfig{
		ModelPath:  modelPath,
		NumThreads: 4,
		Provider:   "cpu",
	}
}

// SherpaEncoder is the sherpa-onnx backed SpeakerEncoder. It needs no local
// feature frontend; sherpa computes fbank features internally.
type SherpaEncoder struct {
	config      SherpaEncoderConfig
	extractor   *sherpa.SpeakerEmbeddingExtractor
	dim         int
	mu          sync.Mutex
	initialized bool
}

// NewSherpaEncoder loads the embedding model through sherpa-onnx.
func NewSherpaEncoder(config SherpaEncoderConfig) (*SherpaEncoder, error) {
	if _, err := os.Stat(config.ModelPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("embedding model not found: %s", config.ModelPath)
	}
	if config.NumThreads <= 0 {
		config.NumThreads = 1
	}
	if config.Provider == "" {
		config.Provider = "cpu"
	}

	sherpaConfig := sherpa.SpeakerEmbeddingExtractorConfig{
		Model:      config.ModelPath,
		NumThreads: config.NumThreads,
		Debug:      0,
		Provider:   config.Provider,
	}

	extractor := sherpa.NewSpeakerEmbeddingExtractor(&sherpaConfig)
	if extractor == nil {
		// Same fallback the diarizer uses for unsupported providers.
		if config.Provider != "cpu" {
			logrus.Warnf("sherpa encoder: %s provider failed, falling back to cpu", config.Provider)
			sherpaConfig.Provider = "cpu"
			extractor = sherpa.NewSpeakerEmbeddingExtractor(&sherpaConfig)
		}
		if extractor == nil {
			return nil, fmt.Errorf("failed to create sherpa-onnx embedding extractor")
		}
	}

	enc := &SherpaEncoder{
		config:      config,
		extractor:   extractor,
		dim:         extractor.Dim(),
		initialized: true,
	}
	logrus.Infof("sherpa encoder initialized: model=%s dim=%d", config.ModelPath, enc.dim)
	return enc, nil
}

// Encode extracts a voice embedding from the clip.
func (e *SherpaEncoder) Encode(samples []float32) ([]float32, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.initialized {
		return nil, fmt.Errorf("encoder not initialized")
	}
	if len(samples) < SampleRate/10 {
		return nil, fmt.Errorf("audio too short for embedding (%d samples)", len(samples))
	}

	stream := e.extractor.CreateStream()
	defer sherpa.DeleteOnlineStream(stream)

	stream.AcceptWaveform(SampleRate, samples)
	stream.InputFinished()

	if !e.extractor.IsReady(stream) {
		return nil, fmt.Errorf("extractor has insufficient audio for an embedding")
	}

	embedding := e.extractor.Compute(stream)
	if len(embedding) == 0 {
		return nil, fmt.Errorf("extractor returned empty embedding")
	}
	return normalizeVector(embedding), nil
}

// Dim returns the embedding dimension reported by the model.
func (e *SherpaEncoder) Dim() int { return e.dim }

// Close releases the extractor.
func (e *SherpaEncoder) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.extractor != nil {
		sherpa.DeleteSpeakerEmbeddingExtractor(e.extractor)
		e.extractor = nil
	}
	e.initialized = false
}
