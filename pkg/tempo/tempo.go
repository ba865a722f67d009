// Package tempo estimates BPM from an onset envelope and snaps onset
// times to a tempo grid.
package tempo

import (
	"math"

	"github.com/drum2midi/drum2midi/pkg/onset"
)

// BPM search range and the documented fallback for signals that carry no
// usable periodicity (silence, a single hit, pure noise floor).
const (
	MinBPM      = 60.0
	MaxBPM      = 200.0
	FallbackBPM = 120.0
)

// Estimate is a tempo estimate with a confidence score.
type Estimate struct {
	// BPM is the estimated tempo, always within [MinBPM, MaxBPM].
	BPM float64

	// Confidence in [0, 1]. 0 means the fallback was used.
	Confidence float64

	// Fallback reports whether BPM is the documented fallback rather
	// than a measurement.
	Fallback bool
}

// EstimateFromEnvelope derives BPM from an onset envelope by
// autocorrelation: remove the envelope mean, correlate over the lags
// covering 60-200 BPM, and convert the winning lag via 60/lagSeconds.
// Sums are left unnormalized, so shorter lags keep their natural term-count
// advantage and a periodic envelope resolves to its true period instead of
// a subharmonic at twice the lag.
//
// Confidence is the winning peak's value against the next-highest
// non-adjacent local autocorrelation peak, clamped to [0, 1]: a strongly
// periodic envelope scores near 1 because its harmonics agree, a flat or
// erratic one scores low. Degenerate envelopes return the fallback with
// confidence 0 rather than an error.
func EstimateFromEnvelope(env onset.Envelope) Estimate {
	fallback := Estimate{BPM: FallbackBPM, Confidence: 0, Fallback: true}

	dt := env.FrameInterval()
	if dt <= 0 || len(env.Values) < 10 {
		return fallback
	}

	// Remove DC so stretches of constant level do not correlate.
	var mean float64
	for _, v := range env.Values {
		mean += v
	}
	mean /= float64(len(env.Values))

	x := make([]float64, len(env.Values))
	var energy float64
	for i, v := range env.Values {
		x[i] = v - mean
		energy += x[i] * x[i]
	}
	if energy <= 1e-12 {
		// Constant envelope: only rounding residue survives the mean
		// subtraction, and a residue peak is not a tempo.
		return fallback
	}

	minLag := int(60.0 / (MaxBPM * dt))
	maxLag := int(60.0 / (MinBPM * dt))
	if minLag < 1 {
		minLag = 1
	}
	if maxLag > len(x)-1 {
		maxLag = len(x) - 1
	}
	if minLag >= maxLag {
		return fallback
	}

	ac := make([]float64, maxLag+1)
	for lag := minLag; lag <= maxLag; lag++ {
		var sum float64
		for i := 0; i+lag < len(x); i++ {
			sum += x[i] * x[i+lag]
		}
		ac[lag] = sum
	}

	bestLag, bestVal := minLag, ac[minLag]
	for lag := minLag + 1; lag <= maxLag; lag++ {
		if ac[lag] > bestVal {
			bestVal = ac[lag]
			bestLag = lag
		}
	}
	if bestVal <= 0 {
		// Nothing in the search range correlates.
		return fallback
	}

	bpm := 60.0 / (float64(bestLag) * dt)
	bpm = math.Min(MaxBPM, math.Max(MinBPM, bpm))

	return Estimate{
		BPM:        bpm,
		Confidence: peakConfidence(ac, minLag, maxLag, bestLag, bestVal),
	}
}

// peakConfidence compares the winner against the next-highest local peak
// at least two lags away from it. The last searched lag counts as a peak
// when it rises above its left neighbor, so a harmonic sitting on the
// range boundary still registers.
func peakConfidence(ac []float64, minLag, maxLag, bestLag int, bestVal float64) float64 {
	var second float64
	found := false
	for lag := minLag + 1; lag <= maxLag; lag++ {
		if abs(lag-bestLag) <= 1 {
			continue
		}
		if ac[lag] <= ac[lag-1] {
			continue
		}
		if lag < maxLag && ac[lag] < ac[lag+1] {
			continue
		}
		if ac[lag] > second {
			second = ac[lag]
			found = true
		}
	}
	if !found {
		// A single unambiguous peak in the whole search range.
		return 1
	}
	if second <= 0 {
		return 1
	}
	conf := second / bestVal
	if conf > 1 {
		conf = 1
	}
	if conf < 0 {
		conf = 0
	}
	return conf
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
