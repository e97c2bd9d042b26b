// Package audio loads call recordings and normalizes them to the pipeline
// format: mono float32 PCM at 16 kHz. Telephony uploads often arrive
// re-containered (g.711 mu-law transcoded to PCM WAV, sometimes MP3), so the
// loader only depends on what the container actually holds, not on the
// original codec.
package audio

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-audio/wav"
	mp3 "github.com/hajimehoshi/go-mp3"
	"github.com/sirupsen/logrus"
)

// TargetSampleRate is the rate the pipeline engines expect.
const TargetSampleRate = 16000

// Clip is a normalized recording: mono float32 at TargetSampleRate.
type Clip struct {
	Samples    []float32
	SampleRate int
}

// Duration returns the clip length in seconds.
func (c *Clip) Duration() float64 {
	if c.SampleRate <= 0 {
		return 0
	}
	return float64(len(c.Samples)) / float64(c.SampleRate)
}

// Load reads a WAV or MP3 file and normalizes it for the pipeline.
func Load(path string) (*Clip, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".wav":
		return loadWAV(path)
	case ".mp3":
		return loadMP3(path)
	default:
		// Most call-center exports are WAV regardless of extension.
		logrus.Warnf("unknown audio extension %q, trying WAV decoder", filepath.Ext(path))
		return loadWAV(path)
	}
}

func loadWAV(path string) (*Clip, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open audio file: %w", err)
	}
	defer f.Close()

	decoder := wav.NewDecoder(f)
	if !decoder.IsValidFile() {
		return nil, fmt.Errorf("not a valid WAV file: %s", path)
	}

	buf, err := decoder.FullPCMBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to decode WAV: %w", err)
	}
	if buf.Format == nil || buf.Format.NumChannels <= 0 || buf.Format.SampleRate <= 0 {
		return nil, fmt.Errorf("WAV file has no usable format info: %s", path)
	}

	bitDepth := buf.SourceBitDepth
	if bitDepth <= 0 {
		bitDepth = int(decoder.BitDepth)
	}
	if bitDepth <= 0 {
		bitDepth = 16
	}
	scale := float32(int64(1) << (bitDepth - 1))

	interleaved := make([]float32, len(buf.Data))
	for i, v := range buf.Data {
		interleaved[i] = float32(v) / scale
	}

	return normalize(interleaved, buf.Format.NumChannels, buf.Format.SampleRate), nil
}

func loadMP3(path string) (*Clip, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open audio file: %w", err)
	}
	defer f.Close()

	decoder, err := mp3.NewDecoder(f)
	if err != nil {
		return nil, fmt.Errorf("failed to create MP3 decoder: %w", err)
	}

	// go-mp3 always outputs 16-bit little-endian stereo.
	raw, err := io.ReadAll(decoder)
	if err != nil {
		return nil, fmt.Errorf("failed to decode MP3: %w", err)
	}

	interleaved := make([]float32, len(raw)/2)
	for i := 0; i+1 < len(raw); i += 2 {
		s := int16(uint16(raw[i]) | uint16(raw[i+1])<<8)
		interleaved[i/2] = float32(s) / 32768.0
	}

	return normalize(interleaved, 2, decoder.SampleRate()), nil
}

// normalize folds interleaved channels down to one (channel average, so both
// call legs survive in a stereo telephony recording) and resamples to
// TargetSampleRate.
func normalize(interleaved []float32, channels, sampleRate int) *Clip {
	mono := Downmix(interleaved, channels)
	if sampleRate != TargetSampleRate {
		logrus.Debugf("resampling %d Hz -> %d Hz", sampleRate, TargetSampleRate)
		mono = Resample(mono, sampleRate, TargetSampleRate)
	}
	return &Clip{Samples: mono, SampleRate: TargetSampleRate}
}
