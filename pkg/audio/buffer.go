// Package audio loads and writes drum recordings as canonical sample buffers.
//
// A recording is decoded once into a mono float64 SampleBuffer at a supported
// sample rate and peak-normalized. Downstream DSP stages treat the buffer as
// read-only and return fresh buffers instead of mutating it.
package audio

import "time"

// SampleBuffer is a decoded audio signal: mono float64 samples in [-1, 1]
// at a known sample rate. Stages never mutate a buffer they did not create.
type SampleBuffer struct {
	// Samples holds the mono sample data.
	Samples []float64

	// Rate is the sample rate in Hz. Always > 0 for a valid buffer.
	Rate int

	// SourceChannels is the channel count of the input before downmix.
	SourceChannels int
}

// Len returns the number of samples.
func (b *SampleBuffer) Len() int {
	return len(b.Samples)
}

// Duration returns the buffer duration in seconds.
func (b *SampleBuffer) Duration() float64 {
	if b.Rate <= 0 {
		return 0
	}
	return float64(len(b.Samples)) / float64(b.Rate)
}

// DurationTime returns the buffer duration as a time.Duration.
func (b *SampleBuffer) DurationTime() time.Duration {
	return time.Duration(b.Duration() * float64(time.Second))
}

// Peak returns the maximum absolute sample value.
func (b *SampleBuffer) Peak() float64 {
	var peak float64
	for _, s := range b.Samples {
		if s > peak {
			peak = s
		}
		if -s > peak {
			peak = -s
		}
	}
	return peak
}
