// Package dsp implements the filter primitives behind stem separation:
// Butterworth-style biquad cascades and zero-phase application.
//
// Filters are designed once per (cutoff, rate, order) and applied
// forward-backward over reflection-padded input, so identical input always
// produces identical output and buffer edges carry no unbounded transient.
package dsp

import (
	"errors"
	"fmt"
	"math"
)

// Design errors. A malformed design request is a configuration bug, not a
// runtime condition, and always fails loudly.
var (
	// ErrInvalidOrder is returned for non-positive or odd filter orders.
	ErrInvalidOrder = errors.New("dsp: filter order must be a positive even number")

	// ErrInvalidCutoff is returned for cutoffs outside (0, Nyquist).
	ErrInvalidCutoff = errors.New("dsp: cutoff must lie strictly between 0 and Nyquist")

	// ErrInvalidBand is returned when a band's low cutoff is not below its high cutoff.
	ErrInvalidBand = errors.New("dsp: band low cutoff must be below high cutoff")
)

// Biquad is a single second-order IIR section with normalized coefficients
// (a0 == 1).
type Biquad struct {
	B0, B1, B2 float64
	A1, A2     float64
}

// Apply runs the section over x with fresh state, returning a new slice.
// Direct form II transposed.
func (bq Biquad) Apply(x []float64) []float64 {
	out := make([]float64, len(x))
	var s1, s2 float64
	for i, v := range x {
		y := bq.B0*v + s1
		s1 = bq.B1*v - bq.A1*y + s2
		s2 = bq.B2*v - bq.A2*y
		out[i] = y
	}
	return out
}

// butterworthQs returns the Q value of each cascaded section for an
// even-order Butterworth response (order 2 -> 0.7071, order 4 -> 0.5412,
// 1.3066, order 6 adds 1.9319).
func butterworthQs(order int) []float64 {
	n := order / 2
	qs := make([]float64, n)
	for k := 0; k < n; k++ {
		theta := math.Pi * float64(2*k+1) / float64(2*order)
		qs[k] = 1 / (2 * math.Cos(theta))
	}
	return qs
}

// DesignLowpass returns the biquad cascade for an even-order Butterworth
// low-pass at cutoff Hz.
func DesignLowpass(cutoff float64, rate, order int) ([]Biquad, error) {
	if err := checkOrder(order); err != nil {
		return nil, err
	}
	if err := checkCutoff(cutoff, rate); err != nil {
		return nil, err
	}

	sections := make([]Biquad, 0, order/2)
	for _, q := range butterworthQs(order) {
		sections = append(sections, lowpassSection(cutoff, rate, q))
	}
	return sections, nil
}

// DesignHighpass returns the biquad cascade for an even-order Butterworth
// high-pass at cutoff Hz.
func DesignHighpass(cutoff float64, rate, order int) ([]Biquad, error) {
	if err := checkOrder(order); err != nil {
		return nil, err
	}
	if err := checkCutoff(cutoff, rate); err != nil {
		return nil, err
	}

	sections := make([]Biquad, 0, order/2)
	for _, q := range butterworthQs(order) {
		sections = append(sections, highpassSection(cutoff, rate, q))
	}
	return sections, nil
}

// DesignBandpass returns the cascade for a band between low and high Hz,
// built as a high-pass at low followed by a low-pass at high. A high cutoff
// at or above Nyquist is clamped just below it, matching the band table's
// "up to Nyquist" entries.
func DesignBandpass(low, high float64, rate, order int) ([]Biquad, error) {
	if err := checkOrder(order); err != nil {
		return nil, err
	}
	nyq := float64(rate) / 2
	if high >= nyq {
		high = nyq * 0.999
	}
	if low >= high {
		return nil, fmt.Errorf("%w: low=%g high=%g", ErrInvalidBand, low, high)
	}

	hp, err := DesignHighpass(low, rate, order)
	if err != nil {
		return nil, err
	}
	lp, err := DesignLowpass(high, rate, order)
	if err != nil {
		return nil, err
	}
	return append(hp, lp...), nil
}

func checkOrder(order int) error {
	if order <= 0 || order%2 != 0 {
		return fmt.Errorf("%w: got %d", ErrInvalidOrder, order)
	}
	return nil
}

func checkCutoff(cutoff float64, rate int) error {
	nyq := float64(rate) / 2
	if cutoff <= 0 || cutoff >= nyq {
		return fmt.Errorf("%w: cutoff=%g Hz, rate=%d Hz", ErrInvalidCutoff, cutoff, rate)
	}
	return nil
}

// RBJ Audio EQ Cookbook sections.

func lowpassSection(cutoff float64, rate int, q float64) Biquad {
	w0 := 2 * math.Pi * cutoff / float64(rate)
	cosw := math.Cos(w0)
	alpha := math.Sin(w0) / (2 * q)

	a0 := 1 + alpha
	return Biquad{
		B0: (1 - cosw) / 2 / a0,
		B1: (1 - cosw) / a0,
		B2: (1 - cosw) / 2 / a0,
		A1: -2 * cosw / a0,
		A2: (1 - alpha) / a0,
	}
}

func highpassSection(cutoff float64, rate int, q float64) Biquad {
	w0 := 2 * math.Pi * cutoff / float64(rate)
	cosw := math.Cos(w0)
	alpha := math.Sin(w0) / (2 * q)

	a0 := 1 + alpha
	return Biquad{
		B0: (1 + cosw) / 2 / a0,
		B1: -(1 + cosw) / a0,
		B2: (1 + cosw) / 2 / a0,
		A1: -2 * cosw / a0,
		A2: (1 - alpha) / a0,
	}
}
