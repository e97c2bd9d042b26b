package audio

import (
	"math"
	"testing"
)

func TestDownmix_Stereo(t *testing.T) {
	// L/R interleaved: the mono result is the frame average.
	interleaved := []float32{1, 0, 0.5, 0.5, -1, 1}
	mono := Downmix(interleaved, 2)

	want := []float32{0.5, 0.5, 0}
	if len(mono) != len(want) {
		t.Fatalf("got %d frames, want %d", len(mono), len(want))
	}
	for i := range want {
		if math.Abs(float64(mono[i]-want[i])) > 1e-6 {
			t.Errorf("frame %d: got %v, want %v", i, mono[i], want[i])
		}
	}
}

func TestDownmix_MonoPassthrough(t *testing.T) {
	samples := []float32{0.1, 0.2, 0.3}
	mono := Downmix(samples, 1)
	if len(mono) != 3 {
		t.Fatalf("mono input changed length: %d", len(mono))
	}
	for i := range samples {
		if mono[i] != samples[i] {
			t.Errorf("sample %d changed: %v -> %v", i, samples[i], mono[i])
		}
	}
}

func TestResample_Upsample(t *testing.T) {
	// 8 kHz telephony to 16 kHz: length doubles, values interpolate.
	in := []float32{0, 1, 0, -1}
	out := Resample(in, 8000, 16000)

	if len(out) != 8 {
		t.Fatalf("got %d samples, want 8", len(out))
	}
	if out[0] != 0 || out[2] != 1 {
		t.Errorf("original samples not preserved at even indices: %v", out)
	}
	if math.Abs(float64(out[1]-0.5)) > 1e-6 {
		t.Errorf("interpolated sample = %v, want 0.5", out[1])
	}
}

func TestResample_Downsample(t *testing.T) {
	in := make([]float32, 441)
	for i := range in {
		in[i] = float32(math.Sin(2 * math.Pi * float64(i) / 100))
	}
	out := Resample(in, 44100, 16000)

	want := int(float64(len(in)) * 16000 / 44100)
	if len(out) != want {
		t.Errorf("got %d samples, want %d", len(out), want)
	}
}

func TestResample_SameRate(t *testing.T) {
	in := []float32{1, 2, 3}
	out := Resample(in, 16000, 16000)
	if len(out) != 3 || out[0] != 1 || out[2] != 3 {
		t.Errorf("same-rate resample changed the buffer: %v", out)
	}
}

func TestClipDuration(t *testing.T) {
	clip := &Clip{Samples: make([]float32, 32000), SampleRate: 16000}
	if d := clip.Duration(); math.Abs(d-2.0) > 1e-9 {
		t.Errorf("duration = %v, want 2.0", d)
	}

	empty := &Clip{}
	if d := empty.Duration(); d != 0 {
		t.Errorf("empty clip duration = %v, want 0", d)
	}
}
