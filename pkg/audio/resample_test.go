package audio

import (
	"math"
	"testing"
	"time"
)

func TestResample_SameRate(t *testing.T) {
	samples := []float64{0.1, 0.2, 0.3, 0.4, 0.5}
	result := Resample(samples, 44100, 44100)

	if len(result) != len(samples) {
		t.Errorf("Expected %d samples, got %d", len(samples), len(result))
	}

	for i, s := range samples {
		if result[i] != s {
			t.Errorf("Sample %d: expected %f, got %f", i, s, result[i])
		}
	}
}

func TestResample_Downsample(t *testing.T) {
	// 48kHz -> 24kHz (2:1 ratio)
	samples := make([]float64, 960)
	for i := range samples {
		samples[i] = float64(i)
	}

	result := Resample(samples, 48000, 24000)

	expectedLen := 480
	if len(result) != expectedLen {
		t.Errorf("Expected %d samples, got %d", expectedLen, len(result))
	}
}

func TestResample_Upsample(t *testing.T) {
	// 32kHz -> 48kHz (2:3 ratio)
	samples := make([]float64, 320)
	for i := range samples {
		samples[i] = float64(i) * 0.001
	}

	result := Resample(samples, 32000, 48000)

	expectedLen := 480
	if len(result) != expectedLen {
		t.Errorf("Expected %d samples, got %d", expectedLen, len(result))
	}
}

func TestResample_Empty(t *testing.T) {
	result := Resample(nil, 44100, 48000)
	if len(result) != 0 {
		t.Errorf("Expected empty result for nil input")
	}

	result = Resample([]float64{}, 44100, 48000)
	if len(result) != 0 {
		t.Errorf("Expected empty result for empty input")
	}
}

func TestNormalize(t *testing.T) {
	samples := []float64{0.1, -0.2, 0.15}
	result := Normalize(samples, TargetPeak)

	var maxAbs float64
	for _, s := range result {
		if math.Abs(s) > maxAbs {
			maxAbs = math.Abs(s)
		}
	}

	if math.Abs(maxAbs-TargetPeak) > 1e-12 {
		t.Errorf("Expected peak %f, got %f", TargetPeak, maxAbs)
	}
}

func TestNormalize_Idempotent(t *testing.T) {
	samples := []float64{0.5, -0.9, 0.3}
	once := Normalize(samples, TargetPeak)
	twice := Normalize(once, TargetPeak)

	for i := range once {
		if math.Abs(once[i]-twice[i]) > 1e-12 {
			t.Errorf("Sample %d: %f != %f after re-normalization", i, once[i], twice[i])
		}
	}
}

func TestNormalize_Silence(t *testing.T) {
	samples := []float64{0, 0, 0}
	result := Normalize(samples, TargetPeak)

	for i, s := range result {
		if s != 0 {
			t.Errorf("Sample %d: expected 0, got %f", i, s)
		}
	}
}

func TestRMS(t *testing.T) {
	// Silence
	if rms := RMS([]float64{0, 0, 0}); rms != 0 {
		t.Errorf("Expected RMS 0 for silence, got %f", rms)
	}

	// Constant full scale
	if rms := RMS([]float64{1, 1, 1}); math.Abs(rms-1) > 1e-12 {
		t.Errorf("Expected RMS 1 for full scale, got %f", rms)
	}

	// Empty
	if rms := RMS(nil); rms != 0 {
		t.Errorf("Expected RMS 0 for empty, got %f", rms)
	}
}

func TestBuffer_Duration(t *testing.T) {
	buf := &SampleBuffer{Samples: make([]float64, 44100), Rate: 44100}
	if d := buf.Duration(); math.Abs(d-1.0) > 1e-12 {
		t.Errorf("Expected 1s, got %f", d)
	}
	if d := buf.DurationTime(); d != time.Second {
		t.Errorf("Expected 1s, got %v", d)
	}
}

func TestResampleBuffer(t *testing.T) {
	buf := &SampleBuffer{Samples: make([]float64, 44100), Rate: 44100, SourceChannels: 2}

	same := ResampleBuffer(buf, 44100)
	if same != buf {
		t.Errorf("Matching rate should return the buffer unchanged")
	}

	up := ResampleBuffer(buf, 88200)
	if up.Rate != 88200 {
		t.Errorf("Expected rate 88200, got %d", up.Rate)
	}
	if up.Len() != 88200 {
		t.Errorf("Expected 88200 samples, got %d", up.Len())
	}
	if up.SourceChannels != buf.SourceChannels {
		t.Errorf("Resampling lost channel metadata")
	}
}

func BenchmarkResample_2x(b *testing.B) {
	samples := make([]float64, 960)
	for i := range samples {
		samples[i] = float64(i)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = Resample(samples, 48000, 24000)
	}
}
