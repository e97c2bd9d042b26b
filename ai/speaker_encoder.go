package ai

import (
	"fmt"
	"math"
	"os"
	"sync"

	"github.com/sirupsen/logrus"
	ort "github.com/yalue/onnxruntime_go"
)

// ONNXEncoderConfig configures the ONNX voice encoder.
type ONNXEncoderConfig struct {
	ModelPath  string
	SampleRate int
	NMels      int
	HopLength  int
	WinLength  int
	NFFT       int
	Dim        int // expected embedding dimension
}

// DefaultONNXEncoderConfig returns the parameters for the 192-dim
// ECAPA/WeSpeaker models.
func DefaultONNXEncoderConfig(modelPath string) ONNXEncoderConfig {
	return ONNXEncoderConfig{
		ModelPath:  modelPath,
		SampleRate: SampleRate,
		NMels:      80,
		HopLength:  160, // 10ms
		WinLength:  400, // 25ms
		NFFT:       512,
		Dim:        EmbeddingDim,
	}
}

// ONNXEncoder turns audio into a voice embedding through an ONNX speaker
// verification model fed with log-mel features. Safe for sequential reuse
// across files; a mutex serializes inference.
type ONNXEncoder struct {
	config       ONNXEncoderConfig
	session      *ort.DynamicAdvancedSession
	melProcessor *MelProcessor
	mu           sync.Mutex
	initialized  bool
}

// NewONNXEncoder loads the model and prepares the mel frontend.
func NewONNXEncoder(config ONNXEncoderConfig) (*ONNXEncoder, error) {
	if _, err := os.Stat(config.ModelPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("model file not found: %s", config.ModelPath)
	}
	if config.Dim <= 0 {
		config.Dim = EmbeddingDim
	}

	if err := initONNXRuntime(); err != nil {
		return nil, fmt.Errorf("failed to initialize ONNX Runtime: %w", err)
	}

	encoder := &ONNXEncoder{
		config: config,
		melProcessor: NewMelProcessor(MelConfig{
			SampleRate: config.SampleRate,
			NMels:      config.NMels,
			HopLength:  config.HopLength,
			WinLength:  config.WinLength,
			NFFT:       config.NFFT,
		}),
	}
	if err := encoder.loadModel(); err != nil {
		return nil, err
	}
	return encoder, nil
}

func (e *ONNXEncoder) loadModel() error {
	inputInfo, outputInfo, err := ort.GetInputOutputInfo(e.config.ModelPath)
	if err != nil {
		return fmt.Errorf("failed to get model info: %w", err)
	}

	inputNames := make([]string, len(inputInfo))
	for i, info := range inputInfo {
		inputNames[i] = info.Name
	}
	outputNames := make([]string, len(outputInfo))
	for i, info := range outputInfo {
		outputNames[i] = info.Name
	}
	logrus.Debugf("speaker encoder inputs: %v, outputs: %v", inputNames, outputNames)

	options, err := ort.NewSessionOptions()
	if err != nil {
		return fmt.Errorf("failed to create session options: %w", err)
	}
	defer options.Destroy()

	session, err := ort.NewDynamicAdvancedSession(
		e.config.ModelPath,
		inputNames,
		outputNames,
		options,
	)
	if err != nil {
		return fmt.Errorf("failed to create ONNX session: %w", err)
	}

	e.session = session
	e.initialized = true
	return nil
}

// Encode extracts an L2-normalized voice embedding from the clip.
func (e *ONNXEncoder) Encode(samples []float32) ([]float32, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.initialized {
		return nil, fmt.Errorf("encoder not initialized")
	}
	if len(samples) < e.config.SampleRate/10 {
		return nil, fmt.Errorf("audio too short for embedding (%d samples)", len(samples))
	}

	melSpec, numFrames := e.melProcessor.Compute(samples)

	// Model input is [batch, num_frames, n_mels], row-major.
	flatInput := make([]float32, numFrames*e.config.NMels)
	for t := 0; t < numFrames; t++ {
		for m := 0; m < e.config.NMels; m++ {
			flatInput[t*e.config.NMels+m] = melSpec[t][m]
		}
	}

	inputShape := ort.NewShape(1, int64(numFrames), int64(e.config.NMels))
	inputTensor, err := ort.NewTensor(inputShape, flatInput)
	if err != nil {
		return nil, fmt.Errorf("failed to create input tensor: %w", err)
	}
	defer inputTensor.Destroy()

	outputs := []ort.Value{nil}
	if err := e.session.Run([]ort.Value{inputTensor}, outputs); err != nil {
		return nil, fmt.Errorf("inference failed: %w", err)
	}
	defer func() {
		for _, out := range outputs {
			if out != nil {
				out.Destroy()
			}
		}
	}()

	outputTensor := outputs[0].(*ort.Tensor[float32])
	embedding := outputTensor.GetData()
	if len(embedding) != e.config.Dim {
		return nil, fmt.Errorf("unexpected embedding dimension %d, want %d", len(embedding), e.config.Dim)
	}

	// Copy before the tensor is destroyed.
	normalized := normalizeVector(embedding)
	result := make([]float32, len(normalized))
	copy(result, normalized)
	return result, nil
}

// Dim returns the embedding dimension.
func (e *ONNXEncoder) Dim() int { return e.config.Dim }

// Close releases the ONNX session.
func (e *ONNXEncoder) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.session != nil {
		e.session.Destroy()
		e.session = nil
	}
	e.initialized = false
}

func normalizeVector(v []float32) []float32 {
	var sumSq float64
	for _, x := range v {
		sumSq += float64(x * x)
	}
	norm := float32(math.Sqrt(sumSq))
	if norm < 1e-6 {
		return v
	}
	out := make([]float32, len(v))
	for i, x := range v {
		out[i] = x / norm
	}
	return out
}
