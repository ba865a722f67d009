package audio

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTestWAV(t *testing.T, rate int, samples []float64) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "in.wav")
	require.NoError(t, WriteFile(path, &SampleBuffer{Samples: samples, Rate: rate, SourceChannels: 1}))
	return path
}

func sine(rate int, freq, amp, seconds float64) []float64 {
	out := make([]float64, int(float64(rate)*seconds))
	for i := range out {
		out[i] = amp * math.Sin(2*math.Pi*freq*float64(i)/float64(rate))
	}
	return out
}

func TestLoad_RoundTrip(t *testing.T) {
	path := writeTestWAV(t, 44100, sine(44100, 440, 0.5, 1.0))

	buf, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 44100, buf.Rate)
	assert.Equal(t, 1, buf.SourceChannels)
	assert.Equal(t, 44100, buf.Len())

	// Load peak-normalizes to the target.
	assert.InDelta(t, TargetPeak, buf.Peak(), 1e-3)
}

func TestLoad_NormalizationIdempotent(t *testing.T) {
	path := writeTestWAV(t, 48000, sine(48000, 440, 0.9, 0.5))

	buf, err := Load(path)
	require.NoError(t, err)

	// Write the normalized buffer back out and load again: samples should
	// match within 16-bit quantization error.
	path2 := filepath.Join(t.TempDir(), "again.wav")
	require.NoError(t, WriteFile(path2, buf))
	buf2, err := Load(path2)
	require.NoError(t, err)

	require.Equal(t, buf.Len(), buf2.Len())
	for i := 0; i < buf.Len(); i += 1000 {
		assert.InDelta(t, buf.Samples[i], buf2.Samples[i], 1e-3)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.wav"))
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestLoadBytes_Empty(t *testing.T) {
	_, err := LoadBytes(nil)
	assert.ErrorIs(t, err, ErrEmptyAudio)
}

func TestLoadBytes_NotWAV(t *testing.T) {
	_, err := LoadBytes([]byte("definitely not a riff container, just text padding"))
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestLoad_UnsupportedRate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rate.wav")
	err := WriteFile(path, &SampleBuffer{Samples: sine(22050, 440, 0.5, 0.2), Rate: 22050, SourceChannels: 1})
	require.NoError(t, err)

	_, err = Load(path)
	assert.ErrorIs(t, err, ErrUnsupportedRate)
}

func TestWriteFile_Clips(t *testing.T) {
	path := filepath.Join(t.TempDir(), "clip.wav")
	samples := []float64{2.0, -2.0, 0.5}
	// Pad so the file is long enough to be worth decoding.
	for len(samples) < 1000 {
		samples = append(samples, 0)
	}
	require.NoError(t, WriteFile(path, &SampleBuffer{Samples: samples, Rate: 44100, SourceChannels: 1}))

	buf, err := Load(path)
	require.NoError(t, err)
	// Clipped extremes normalize to exactly +-TargetPeak.
	assert.InDelta(t, TargetPeak, buf.Samples[0], 1e-3)
	assert.InDelta(t, -TargetPeak, buf.Samples[1], 1e-3)
}

func TestWriteFile_NilBuffer(t *testing.T) {
	err := WriteFile(filepath.Join(t.TempDir(), "x.wav"), nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidInput))
}

func TestWriteFile_CreatesDirs(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a", "b", "stem.wav")
	err := WriteFile(path, &SampleBuffer{Samples: sine(44100, 100, 0.5, 0.1), Rate: 44100, SourceChannels: 1})
	require.NoError(t, err)

	_, err = os.Stat(path)
	assert.NoError(t, err)
}

func TestDownmixStereo(t *testing.T) {
	mono := downmixStereo([]float64{0.2, 0.4, -0.5, 0.5})
	require.Len(t, mono, 2)
	assert.InDelta(t, 0.3, mono[0], 1e-12)
	assert.InDelta(t, 0.0, mono[1], 1e-12)
}
