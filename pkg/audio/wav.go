package audio

import (
	"bytes"
	"fmt"
	"math"
	"os"
	"path/filepath"

	gaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/h2non/filetype"
)

// Supported input sample rates. Anything else is rejected before any DSP runs.
var SupportedRates = []int{44100, 48000}

// TargetPeak is the peak level audio is normalized to on load.
// Normalizing an already-normalized buffer is a no-op.
const TargetPeak = 0.9

// Load reads a WAV file from disk into a canonical SampleBuffer.
// Stereo input is downmixed to mono by averaging; the result is
// peak-normalized to TargetPeak.
func Load(path string) (*SampleBuffer, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	return LoadBytes(data)
}

// LoadBytes decodes WAV data into a canonical SampleBuffer.
func LoadBytes(data []byte) (*SampleBuffer, error) {
	if len(data) == 0 {
		return nil, ErrEmptyAudio
	}

	// Sniff the container before handing bytes to the decoder.
	if !filetype.IsExtension(data, "wav") {
		return nil, ErrUnsupportedFormat
	}

	dec := wav.NewDecoder(bytes.NewReader(data))
	if !dec.IsValidFile() {
		return nil, fmt.Errorf("%w: malformed wav", ErrInvalidInput)
	}

	pcm, err := dec.FullPCMBuffer()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	if pcm == nil || pcm.Format == nil || len(pcm.Data) == 0 {
		return nil, ErrEmptyAudio
	}

	rate := pcm.Format.SampleRate
	channels := pcm.Format.NumChannels
	if !rateSupported(rate) {
		return nil, fmt.Errorf("%w: %d Hz (supported: %v)", ErrUnsupportedRate, rate, SupportedRates)
	}
	if channels < 1 || channels > 2 {
		return nil, fmt.Errorf("%w: %d channels", ErrUnsupportedChannels, channels)
	}

	samples := intToFloat(pcm.Data, pcm.SourceBitDepth)
	if channels == 2 {
		samples = downmixStereo(samples)
	}
	if len(samples) == 0 {
		return nil, ErrEmptyAudio
	}

	buf := &SampleBuffer{
		Samples:        Normalize(samples, TargetPeak),
		Rate:           rate,
		SourceChannels: channels,
	}
	return buf, nil
}

// WriteFile writes a buffer to a 16-bit mono WAV file, creating parent
// directories as needed. Samples outside [-1, 1] are clipped.
func WriteFile(path string, buf *SampleBuffer) error {
	if buf == nil || buf.Rate <= 0 {
		return fmt.Errorf("%w: nil or rate-less buffer", ErrInvalidInput)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("audio: create output dir: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("audio: create %s: %w", path, err)
	}
	defer f.Close()

	enc := wav.NewEncoder(f, buf.Rate, 16, 1, 1)
	pcm := &gaudio.IntBuffer{
		Format:         &gaudio.Format{NumChannels: 1, SampleRate: buf.Rate},
		SourceBitDepth: 16,
		Data:           floatToInt16(buf.Samples),
	}
	if err := enc.Write(pcm); err != nil {
		return fmt.Errorf("audio: encode %s: %w", path, err)
	}
	return enc.Close()
}

func rateSupported(rate int) bool {
	for _, r := range SupportedRates {
		if r == rate {
			return true
		}
	}
	return false
}

func intToFloat(data []int, bitDepth int) []float64 {
	if bitDepth <= 0 {
		bitDepth = 16
	}
	scale := 1.0 / float64(int(1)<<(bitDepth-1))
	out := make([]float64, len(data))
	for i, v := range data {
		out[i] = float64(v) * scale
	}
	return out
}

func floatToInt16(samples []float64) []int {
	out := make([]int, len(samples))
	for i, s := range samples {
		if s > 1 {
			s = 1
		} else if s < -1 {
			s = -1
		}
		out[i] = int(math.Round(s * 32767))
	}
	return out
}

// downmixStereo averages interleaved stereo frames to mono.
func downmixStereo(samples []float64) []float64 {
	mono := make([]float64, len(samples)/2)
	for i := range mono {
		mono[i] = (samples[i*2] + samples[i*2+1]) / 2
	}
	return mono
}
