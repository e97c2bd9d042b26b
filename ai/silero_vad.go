package ai

import (
	"fmt"
	"os"
	"sync"

	"github.com/sirupsen/logrus"
	ort "github.com/yalue/onnxruntime_go"
)

// SileroVADConfig configures the Silero VAD segmenter.
type SileroVADConfig struct {
	ModelPath            string
	SampleRate           int     // 8000 or 16000
	Threshold            float32 // speech probability threshold
	MinSilenceDurationMs int     // silence needed to split segments
	SpeechPadMs          int     // padding around detected speech
	MinSpeechDurationMs  int     // segments shorter than this are dropped
}

// DefaultSileroVADConfig returns the default configuration.
func DefaultSileroVADConfig(modelPath string) SileroVADConfig {
	return SileroVADConfig{
		ModelPath:            modelPath,
		SampleRate:           SampleRate,
		Threshold:            0.5,
		MinSilenceDurationMs: 300,
		SpeechPadMs:          30,
		MinSpeechDurationMs:  250,
	}
}

// SileroVAD detects speech regions with the Silero VAD ONNX model. The LSTM
// state is reset per recording, so one instance serves a whole batch.
type SileroVAD struct {
	session *ort.DynamicAdvancedSession
	config  SileroVADConfig

	// LSTM state carried between chunks of one recording.
	state []float32
	// Last N samples of the previous chunk: 64 for 16kHz, 32 for 8kHz.
	context []float32

	mu          sync.Mutex
	initialized bool
}

// NewSileroVAD loads the VAD model.
func NewSileroVAD(config SileroVADConfig) (*SileroVAD, error) {
	if _, err := os.Stat(config.ModelPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("model file not found: %s", config.ModelPath)
	}
	if config.SampleRate != 8000 && config.SampleRate != 16000 {
		return nil, fmt.Errorf("sample rate must be 8000 or 16000, got %d", config.SampleRate)
	}

	if err := initONNXRuntime(); err != nil {
		return nil, fmt.Errorf("failed to initialize ONNX Runtime: %w", err)
	}

	options, err := ort.NewSessionOptions()
	if err != nil {
		return nil, fmt.Errorf("failed to create session options: %w", err)
	}
	defer options.Destroy()

	inputNames := []string{"input", "state", "sr"}
	outputNames := []string{"output", "stateN"}
	session, err := ort.NewDynamicAdvancedSession(
		config.ModelPath,
		inputNames,
		outputNames,
		options,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create ONNX session: %w", err)
	}

	contextSize := 64
	if config.SampleRate == 8000 {
		contextSize = 32
	}

	vad := &SileroVAD{
		session:     session,
		config:      config,
		state:       make([]float32, 2*1*128), // [2, 1, 128] LSTM h and c
		context:     make([]float32, contextSize),
		initialized: true,
	}
	logrus.Infof("silero VAD initialized: sample_rate=%d threshold=%.2f", config.SampleRate, config.Threshold)
	return vad, nil
}

// Name identifies the segmenter in logs.
func (v *SileroVAD) Name() string { return "silero-vad" }

// resetState clears the LSTM state and sample context between recordings.
func (v *SileroVAD) resetState() {
	for i := range v.state {
		v.state[i] = 0
	}
	for i := range v.context {
		v.context[i] = 0
	}
}

// processChunk returns the speech probability for one chunk. Chunk size must
// be 512 samples for 16kHz, 256 for 8kHz.
func (v *SileroVAD) processChunk(samples []float32) (float32, error) {
	if !v.initialized {
		return 0, fmt.Errorf("silero VAD not initialized")
	}

	contextSize := len(v.context)

	// Model input is [batch, context + window].
	inputData := make([]float32, contextSize+len(samples))
	copy(inputData[:contextSize], v.context)
	copy(inputData[contextSize:], samples)

	if len(samples) >= contextSize {
		copy(v.context, samples[len(samples)-contextSize:])
	} else {
		copy(v.context, v.context[len(samples):])
		copy(v.context[contextSize-len(samples):], samples)
	}

	inputShape := ort.NewShape(1, int64(len(inputData)))
	inputTensor, err := ort.NewTensor(inputShape, inputData)
	if err != nil {
		return 0, fmt.Errorf("failed to create input tensor: %w", err)
	}
	defer inputTensor.Destroy()

	stateShape := ort.NewShape(2, 1, 128)
	stateTensor, err := ort.NewTensor(stateShape, v.state)
	if err != nil {
		return 0, fmt.Errorf("failed to create state tensor: %w", err)
	}
	defer stateTensor.Destroy()

	srShape := ort.NewShape(1)
	srTensor, err := ort.NewTensor(srShape, []int64{int64(v.config.SampleRate)})
	if err != nil {
		return 0, fmt.Errorf("failed to create sr tensor: %w", err)
	}
	defer srTensor.Destroy()

	outputs := []ort.Value{nil, nil}
	if err := v.session.Run([]ort.Value{inputTensor, stateTensor, srTensor}, outputs); err != nil {
		return 0, fmt.Errorf("failed to run inference: %w", err)
	}
	defer func() {
		for _, out := range outputs {
			if out != nil {
				out.Destroy()
			}
		}
	}()

	outputData := outputs[0].(*ort.Tensor[float32]).GetData()
	copy(v.state, outputs[1].(*ort.Tensor[float32]).GetData())

	if len(outputData) > 0 {
		return outputData[0], nil
	}
	return 0, nil
}

// SpeechRanges returns the detected speech spans of the recording, in
// seconds.
func (v *SileroVAD) SpeechRanges(samples []float32) ([]SpeechRange, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	v.resetState()

	windowSize := 512
	if v.config.SampleRate == 8000 {
		windowSize = 256
	}
	windowMs := float64(windowSize) * 1000 / float64(v.config.SampleRate)

	minSilenceWindows := int(float64(v.config.MinSilenceDurationMs) / windowMs)
	if minSilenceWindows < 1 {
		minSilenceWindows = 1
	}
	speechPadWindows := int(float64(v.config.SpeechPadMs) / windowMs)

	type msRange struct{ startMs, endMs int64 }
	var ranges []msRange
	var current *msRange
	silenceCount := 0

	for i := 0; i < len(samples); i += windowSize {
		var chunk []float32
		if i+windowSize <= len(samples) {
			chunk = samples[i : i+windowSize]
		} else {
			chunk = make([]float32, windowSize)
			copy(chunk, samples[i:])
		}

		prob, err := v.processChunk(chunk)
		if err != nil {
			return nil, err
		}

		currentMs := int64(float64(i) * 1000 / float64(v.config.SampleRate))
		if prob >= v.config.Threshold {
			silenceCount = 0
			if current == nil {
				startMs := currentMs - int64(speechPadWindows)*int64(windowMs)
				if startMs < 0 {
					startMs = 0
				}
				current = &msRange{startMs: startMs}
			}
		} else if current != nil {
			silenceCount++
			if silenceCount >= minSilenceWindows {
				endMs := currentMs - int64(silenceCount-speechPadWindows)*int64(windowMs)
				if endMs < current.startMs {
					endMs = current.startMs + int64(windowMs)
				}
				current.endMs = endMs
				if current.endMs-current.startMs >= int64(v.config.MinSpeechDurationMs) {
					ranges = append(ranges, *current)
				}
				current = nil
				silenceCount = 0
			}
		}
	}

	if current != nil {
		current.endMs = int64(len(samples)) * 1000 / int64(v.config.SampleRate)
		if current.endMs-current.startMs >= int64(v.config.MinSpeechDurationMs) {
			ranges = append(ranges, *current)
		}
	}

	out := make([]SpeechRange, len(ranges))
	for i, r := range ranges {
		out[i] = SpeechRange{
			Start: float64(r.startMs) / 1000,
			End:   float64(r.endMs) / 1000,
		}
	}
	logrus.Debugf("silero VAD: %d speech ranges", len(out))
	return out, nil
}

// Close releases the ONNX session.
func (v *SileroVAD) Close() {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.session != nil {
		v.session.Destroy()
		v.session = nil
	}
	v.initialized = false
}
