package ai

import "math"

// EnergyVADConfig configures the energy-based fallback segmenter.
type EnergyVADConfig struct {
	SampleRate          int
	WindowMs            int     // analysis window
	EnergyThreshold     float64 // RMS threshold for speech
	MinSilenceWindows   int     // silent windows needed to split
	MinSpeechDurationMs int     // segments shorter than this are dropped
	PadMs               int     // padding around detected speech
}

// DefaultEnergyVADConfig returns the default configuration.
func DefaultEnergyVADConfig() EnergyVADConfig {
	return EnergyVADConfig{
		SampleRate:          SampleRate,
		WindowMs:            50,
		EnergyThreshold:     0.01,
		MinSilenceWindows:   8, // 400ms of silence splits utterances
		MinSpeechDurationMs: 250,
		PadMs:               50,
	}
}

// EnergyVAD is a model-free speech segmenter based on windowed RMS energy.
// Used when no Silero model is available; coarser than the model but good
// enough to chunk a call for the transcriber.
type EnergyVAD struct {
	config EnergyVADConfig
}

// NewEnergyVAD builds the segmenter.
func NewEnergyVAD(config EnergyVADConfig) *EnergyVAD {
	if config.SampleRate <= 0 {
		config.SampleRate = SampleRate
	}
	if config.WindowMs <= 0 {
		config.WindowMs = 50
	}
	if config.MinSilenceWindows < 1 {
		config.MinSilenceWindows = 1
	}
	return &EnergyVAD{config: config}
}

// Name identifies the segmenter in logs.
func (v *EnergyVAD) Name() string { return "energy-vad" }

// SpeechRanges returns speech spans in seconds. Never fails.
func (v *EnergyVAD) SpeechRanges(samples []float32) ([]SpeechRange, error) {
	if len(samples) == 0 {
		return nil, nil
	}

	windowSamples := v.config.SampleRate * v.config.WindowMs / 1000
	if windowSamples <= 0 {
		windowSamples = 1
	}
	windowSec := float64(windowSamples) / float64(v.config.SampleRate)
	padSec := float64(v.config.PadMs) / 1000
	totalSec := float64(len(samples)) / float64(v.config.SampleRate)

	var ranges []SpeechRange
	var current *SpeechRange
	silence := 0

	for i := 0; i < len(samples); i += windowSamples {
		end := i + windowSamples
		if end > len(samples) {
			end = len(samples)
		}
		energy := windowRMS(samples[i:end])
		t := float64(i) / float64(v.config.SampleRate)

		if energy >= v.config.EnergyThreshold {
			silence = 0
			if current == nil {
				start := t - padSec
				if start < 0 {
					start = 0
				}
				current = &SpeechRange{Start: start}
			}
		} else if current != nil {
			silence++
			if silence >= v.config.MinSilenceWindows {
				stop := t - float64(silence-1)*windowSec + padSec
				if stop > totalSec {
					stop = totalSec
				}
				v.flush(&ranges, current, stop)
				current = nil
				silence = 0
			}
		}
	}
	if current != nil {
		v.flush(&ranges, current, totalSec)
	}
	return ranges, nil
}

func (v *EnergyVAD) flush(ranges *[]SpeechRange, current *SpeechRange, end float64) {
	if end <= current.Start {
		return
	}
	current.End = end
	if (current.End-current.Start)*1000 >= float64(v.config.MinSpeechDurationMs) {
		*ranges = append(*ranges, *current)
	}
}

func windowRMS(samples []float32) float64 {
	if len(samples) == 0 {
		return 0
	}
	var sum float64
	for _, s := range samples {
		sum += float64(s) * float64(s)
	}
	return math.Sqrt(sum / float64(len(samples)))
}
