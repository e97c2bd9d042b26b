package ai

import (
	"fmt"
	"os"
	"strings"
	"sync"

	sherpa "github.com/k2-fsa/sherpa-onnx-go/sherpa_onnx"
	"github.com/sirupsen/logrus"
)

// Whisper decodes fixed 30s windows; ranges longer than this are split
// before decoding.
const maxDecodeWindowSec = 28.0

// WhisperConfig configures the sherpa-onnx Whisper transcriber.
type WhisperConfig struct {
	EncoderPath string
	DecoderPath string
	TokensPath  string
	Language    string // "en" or "" for auto-detect
	NumThreads  int
	Provider    string // cpu, cuda, coreml
}

// WhisperTranscriber is the sherpa-onnx backed Transcriber. Timed segments
// come from VAD chunking: the segmenter finds speech ranges and each range is
// decoded independently, keeping the range bounds as segment timestamps.
type WhisperTranscriber struct {
	config     WhisperConfig
	recognizer *sherpa.OfflineRecognizer
	segmenter  SpeechSegmenter
	mu         sync.Mutex
}

// NewWhisperTranscriber loads the Whisper model through sherpa-onnx.
func NewWhisperTranscriber(config WhisperConfig, segmenter SpeechSegmenter) (*WhisperTranscriber, error) {
	for _, p := range []string{config.EncoderPath, config.DecoderPath, config.TokensPath} {
		if _, err := os.Stat(p); os.IsNotExist(err) {
			return nil, fmt.Errorf("whisper model file not found: %s", p)
		}
	}
	if segmenter == nil {
		return nil, fmt.Errorf("speech segmenter is required")
	}
	if config.NumThreads <= 0 {
		config.NumThreads = 4
	}
	if config.Provider == "" {
		config.Provider = "cpu"
	}

	sherpaConfig := sherpa.OfflineRecognizerConfig{}
	sherpaConfig.FeatConfig = sherpa.FeatureConfig{SampleRate: SampleRate, FeatureDim: 80}
	sherpaConfig.ModelConfig.Whisper.Encoder = config.EncoderPath
	sherpaConfig.ModelConfig.Whisper.Decoder = config.DecoderPath
	sherpaConfig.ModelConfig.Whisper.Language = config.Language
	sherpaConfig.ModelConfig.Whisper.Task = "transcribe"
	sherpaConfig.ModelConfig.Tokens = config.TokensPath
	sherpaConfig.ModelConfig.NumThreads = config.NumThreads
	sherpaConfig.ModelConfig.Provider = config.Provider
	sherpaConfig.ModelConfig.ModelType = "whisper"
	sherpaConfig.DecodingMethod = "greedy_search"

	recognizer := sherpa.NewOfflineRecognizer(&sherpaConfig)
	if recognizer == nil {
		if config.Provider != "cpu" {
			logrus.Warnf("whisper: %s provider failed, falling back to cpu", config.Provider)
			sherpaConfig.ModelConfig.Provider = "cpu"
			recognizer = sherpa.NewOfflineRecognizer(&sherpaConfig)
		}
		if recognizer == nil {
			return nil, fmt.Errorf("failed to create sherpa-onnx whisper recognizer")
		}
	}

	logrus.Infof("whisper transcriber initialized: encoder=%s segmenter=%s",
		config.EncoderPath, segmenter.Name())
	return &WhisperTranscriber{
		config:     config,
		recognizer: recognizer,
		segmenter:  segmenter,
	}, nil
}

// Name returns the engine name for logging.
func (w *WhisperTranscriber) Name() string { return "whisper-sherpa" }

// SetLanguage sets the recognition language for subsequent calls.
// sherpa fixes the language at model creation, so this only warns on
// mismatch; the batch driver configures the language up front.
func (w *WhisperTranscriber) SetLanguage(lang string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if lang != w.config.Language {
		logrus.Warnf("whisper language is fixed at %q for this run, ignoring %q", w.config.Language, lang)
	}
}

// Transcribe returns ordered timed segments for the recording.
func (w *WhisperTranscriber) Transcribe(samples []float32) ([]TranscriptSegment, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.recognizer == nil {
		return nil, fmt.Errorf("transcriber is closed")
	}
	if len(samples) == 0 {
		return nil, nil
	}

	ranges, err := w.segmenter.SpeechRanges(samples)
	if err != nil {
		logrus.WithError(err).Warn("speech segmentation failed, decoding whole file")
		ranges = nil
	}
	if len(ranges) == 0 {
		ranges = []SpeechRange{{Start: 0, End: float64(len(samples)) / SampleRate}}
	}

	var segments []TranscriptSegment
	for _, r := range ranges {
		for _, sub := range splitRange(r, maxDecodeWindowSec) {
			text := w.decodeRange(samples, sub)
			if text == "" {
				continue
			}
			segments = append(segments, TranscriptSegment{
				Start:   sub.Start,
				End:     sub.End,
				Text:    text,
				Cluster: -1,
			})
		}
	}
	return segments, nil
}

func (w *WhisperTranscriber) decodeRange(samples []float32, r SpeechRange) string {
	lo := int(r.Start * SampleRate)
	hi := int(r.End * SampleRate)
	if lo < 0 {
		lo = 0
	}
	if hi > len(samples) {
		hi = len(samples)
	}
	if lo >= hi {
		return ""
	}

	stream := sherpa.NewOfflineStream(w.recognizer)
	defer sherpa.DeleteOfflineStream(stream)

	stream.AcceptWaveform(SampleRate, samples[lo:hi])
	w.recognizer.Decode(stream)
	result := stream.GetResult()
	if result == nil {
		return ""
	}
	return strings.TrimSpace(result.Text)
}

// splitRange cuts a speech range into windows the model can decode.
func splitRange(r SpeechRange, maxSec float64) []SpeechRange {
	if r.End-r.Start <= maxSec {
		return []SpeechRange{r}
	}
	var out []SpeechRange
	for t := r.Start; t < r.End; t += maxSec {
		end := t + maxSec
		if end > r.End {
			end = r.End
		}
		out = append(out, SpeechRange{Start: t, End: end})
	}
	return out
}

// Close releases the recognizer.
func (w *WhisperTranscriber) Close() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.recognizer != nil {
		sherpa.DeleteOfflineRecognizer(w.recognizer)
		w.recognizer = nil
	}
}
