// Package separation splits a drum recording into per-instrument stems.
//
// The deterministic engine here band-splits the mix with zero-phase
// Butterworth-style filters and an optional noise gate. Alternative
// backends (e.g. a learned source-separation model running elsewhere)
// implement the same Backend interface and can be chained in front of the
// engine, with the engine as the always-available fallback.
//
// Example usage:
//
//	eng := separation.NewEngine(separation.Config{Quality: separation.QualityBalanced})
//	stems, _ := eng.Separate(ctx, buf, []separation.ClassLabel{
//	    separation.ClassKick, separation.ClassSnare,
//	})
package separation

import (
	"fmt"

	"github.com/drum2midi/drum2midi/pkg/audio"
)

// ClassLabel identifies an instrument class.
type ClassLabel string

// Instrument classes with band definitions.
const (
	ClassKick  ClassLabel = "kick"
	ClassSnare ClassLabel = "snare"
	ClassHihat ClassLabel = "hihat"
	ClassToms  ClassLabel = "toms"
)

// Quality selects the speed/quality tradeoff for separation.
type Quality string

// Quality presets.
const (
	QualityFast     Quality = "fast"     // order-2 filters, no gate
	QualityBalanced Quality = "balanced" // order-4 filters, gated
	QualityBest     Quality = "best"     // order-6 filters, gated
)

// ParseQuality validates a preset name.
func ParseQuality(s string) (Quality, error) {
	switch Quality(s) {
	case QualityFast, QualityBalanced, QualityBest:
		return Quality(s), nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownQuality, s)
}

// Order returns the filter order for the preset.
func (q Quality) Order() int {
	switch q {
	case QualityFast:
		return 2
	case QualityBest:
		return 6
	default:
		return 4
	}
}

// GateEnabled reports whether the noise gate runs for this preset.
func (q Quality) GateEnabled() bool {
	return q != QualityFast
}

// Topology is the filter shape of a band.
type Topology int

// Filter topologies.
const (
	Lowpass Topology = iota
	Bandpass
	Highpass
)

func (t Topology) String() string {
	switch t {
	case Lowpass:
		return "lowpass"
	case Bandpass:
		return "bandpass"
	case Highpass:
		return "highpass"
	}
	return "unknown"
}

// FilterSpec defines the band for one instrument class. Static
// configuration; never mutated at runtime.
type FilterSpec struct {
	Class    ClassLabel
	Topology Topology

	// Low and High are cutoff frequencies in Hz. Lowpass uses High only,
	// highpass uses Low only. High == 0 on a bandpass means "up to Nyquist".
	Low  float64
	High float64

	// Order is the filter order, derived from the quality preset.
	Order int

	// Gain is a per-class makeup factor applied after filtering.
	Gain float64
}

// StemBuffer is a separated per-class signal. Same length and rate as the
// input it was separated from.
type StemBuffer struct {
	*audio.SampleBuffer

	Class   ClassLabel
	Quality Quality
}
