// Package onset detects percussive hit starts in a stem.
//
// Detection is classic spectral flux: a short-time magnitude spectrum over
// Hann-windowed frames, half-wave rectified frame-to-frame differences
// summed across bins, then peak picking over the normalized envelope.
// Silence yields no events, never an error.
package onset

import (
	"math"
	"sort"
	"time"

	"github.com/mjibson/go-dsp/window"
	"gonum.org/v1/gonum/dsp/fourier"

	"github.com/drum2midi/drum2midi/pkg/audio"
	"github.com/drum2midi/drum2midi/pkg/separation"
)

// Event is one detected onset.
type Event struct {
	// Time of the onset in seconds from buffer start.
	Time float64

	// Strength is the normalized envelope value at the peak, in [0, 1].
	Strength float64

	// Class is the stem the onset came from.
	Class separation.ClassLabel
}

// Config tunes the detector. Zero values fall back to defaults.
type Config struct {
	// FrameSize is the STFT analysis window in samples.
	FrameSize int

	// HopSize is the STFT hop in samples.
	HopSize int

	// Threshold is the minimum peak height on the peak-normalized
	// envelope, in [0, 1].
	Threshold float64

	// MinDistance is the minimum spacing between accepted onsets.
	MinDistance time.Duration
}

// DefaultConfig returns the standard detector tuning: 2048-sample frames,
// 512-sample hop, threshold at 0.1 of the envelope peak, 30 ms spacing.
func DefaultConfig() Config {
	return Config{
		FrameSize:   2048,
		HopSize:     512,
		Threshold:   0.1,
		MinDistance: 30 * time.Millisecond,
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.FrameSize <= 0 {
		c.FrameSize = d.FrameSize
	}
	if c.HopSize <= 0 {
		c.HopSize = d.HopSize
	}
	if c.Threshold <= 0 {
		c.Threshold = d.Threshold
	}
	if c.MinDistance <= 0 {
		c.MinDistance = d.MinDistance
	}
	return c
}

// Envelope is an onset strength curve sampled at frame times.
type Envelope struct {
	// Values is the peak-normalized flux per frame, in [0, 1].
	Values []float64

	// Times holds the frame center times in seconds, parallel to Values.
	Times []float64
}

// FrameInterval returns the spacing between envelope frames in seconds,
// 0 for envelopes shorter than two frames.
func (e Envelope) FrameInterval() float64 {
	if len(e.Times) < 2 {
		return 0
	}
	return e.Times[1] - e.Times[0]
}

// Detect finds onsets in a stem using the default configuration.
func Detect(stem *separation.StemBuffer) []Event {
	return DetectWith(stem, DefaultConfig())
}

// DetectWith finds onsets in a stem. Events come back in strictly
// increasing time order, never closer than cfg.MinDistance.
func DetectWith(stem *separation.StemBuffer, cfg Config) []Event {
	env := ComputeEnvelope(stem.SampleBuffer, cfg)
	peaks := PickPeaks(env, cfg)
	for i := range peaks {
		peaks[i].Class = stem.Class
	}
	return peaks
}

// ComputeEnvelope builds the spectral flux envelope for a buffer.
// An empty or too-short buffer yields an empty envelope.
func ComputeEnvelope(buf *audio.SampleBuffer, cfg Config) Envelope {
	cfg = cfg.withDefaults()

	n := buf.Len()
	frameSize := cfg.FrameSize
	hop := cfg.HopSize
	if n < frameSize+hop {
		return Envelope{}
	}
	numFrames := (n-frameSize)/hop + 1
	if numFrames < 2 {
		return Envelope{}
	}

	hann := window.Hann(frameSize)
	fft := fourier.NewFFT(frameSize)
	nbins := frameSize/2 + 1

	frame := make([]float64, frameSize)
	spec := make([]complex128, nbins)
	mag := make([]float64, nbins)
	prevMag := make([]float64, nbins)

	// Flux needs a previous frame, so the envelope has numFrames-1 points.
	values := make([]float64, 0, numFrames-1)
	times := make([]float64, 0, numFrames-1)

	for i := 0; i < numFrames; i++ {
		start := i * hop
		for j := 0; j < frameSize; j++ {
			frame[j] = buf.Samples[start+j] * hann[j]
		}
		fft.Coefficients(spec, frame)
		for j := range mag {
			re := real(spec[j])
			im := imag(spec[j])
			mag[j] = math.Sqrt(re*re + im*im)
		}

		if i > 0 {
			var flux float64
			for j := range mag {
				if d := mag[j] - prevMag[j]; d > 0 {
					flux += d
				}
			}
			values = append(values, flux)
			times = append(times, float64(start+frameSize/2)/float64(buf.Rate))
		}
		copy(prevMag, mag)
	}

	// Peak-normalize. A flat (silent) envelope stays all zero.
	var peak float64
	for _, v := range values {
		if v > peak {
			peak = v
		}
	}
	if peak > 0 {
		for i := range values {
			values[i] /= peak
		}
	}

	return Envelope{Values: values, Times: times}
}

// PickPeaks extracts onset events from an envelope: local maxima at or
// above the threshold, at least MinDistance apart. When two candidates
// fall within the window the stronger one wins; on exact equality the
// earlier one is kept.
func PickPeaks(env Envelope, cfg Config) []Event {
	cfg = cfg.withDefaults()
	if len(env.Values) < 3 {
		return nil
	}

	var candidates []Event
	for i := 1; i < len(env.Values)-1; i++ {
		v := env.Values[i]
		if v < cfg.Threshold {
			continue
		}
		if v > env.Values[i-1] && v >= env.Values[i+1] {
			strength := v
			if strength > 1 {
				strength = 1
			}
			candidates = append(candidates, Event{Time: env.Times[i], Strength: strength})
		}
	}
	if len(candidates) == 0 {
		return nil
	}

	// Strongest first; earlier wins ties. Then greedily accept peaks that
	// clear the minimum distance from everything already accepted.
	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].Strength != candidates[j].Strength {
			return candidates[i].Strength > candidates[j].Strength
		}
		return candidates[i].Time < candidates[j].Time
	})

	minDist := cfg.MinDistance.Seconds()
	var accepted []Event
	for _, c := range candidates {
		ok := true
		for _, a := range accepted {
			if math.Abs(c.Time-a.Time) < minDist {
				ok = false
				break
			}
		}
		if ok {
			accepted = append(accepted, c)
		}
	}

	sort.Slice(accepted, func(i, j int) bool { return accepted[i].Time < accepted[j].Time })
	return accepted
}
