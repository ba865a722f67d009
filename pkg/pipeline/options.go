package pipeline

import (
	"errors"
	"fmt"

	"github.com/drum2midi/drum2midi/pkg/audio"
	"github.com/drum2midi/drum2midi/pkg/onset"
	"github.com/drum2midi/drum2midi/pkg/separation"
)

// BackendSelector picks the separation strategy.
type BackendSelector string

// Backend selectors.
const (
	// BackendAuto tries the registered external backend first and falls
	// back to the deterministic engine.
	BackendAuto BackendSelector = "auto"

	// BackendBandpass uses the deterministic engine only.
	BackendBandpass BackendSelector = "bandpass"
)

// Options is the full configuration surface of one job.
type Options struct {
	// InputPath is the source WAV file.
	InputPath string

	// OutputDir receives stems/, drums.mid, and report.json.
	OutputDir string

	// Classes to separate. Defaults to kick, snare, hihat.
	Classes []separation.ClassLabel

	// TargetRate resamples the input to this rate after load; 0 keeps the
	// source rate. Must be one of the supported rates.
	TargetRate int

	// BPM fixes the tempo; <= 0 means estimate it from the audio.
	BPM float64

	// QuantizeStrength in [0, 1]; 0 disables quantization.
	QuantizeStrength float64

	// Quality preset. Defaults to balanced.
	Quality separation.Quality

	// Backend selects the separation strategy. Defaults to bandpass.
	Backend BackendSelector

	// Onset overrides detector tuning; zero means defaults.
	Onset onset.Config

	// Bands overrides the band table; nil means defaults.
	Bands map[separation.ClassLabel]separation.FilterSpec
}

// Validation errors.
var (
	ErrNoInput          = errors.New("pipeline: input path required")
	ErrNoOutput         = errors.New("pipeline: output directory required")
	ErrBadQuantize      = errors.New("pipeline: quantize strength must be in [0, 1]")
	ErrBadTargetRate    = errors.New("pipeline: unsupported target sample rate")
	ErrUnknownBackend   = errors.New("pipeline: unknown backend selector")
	ErrDuplicateClasses = errors.New("pipeline: duplicate class requested")
)

func (o Options) validate() error {
	if o.InputPath == "" {
		return ErrNoInput
	}
	if o.OutputDir == "" {
		return ErrNoOutput
	}
	if o.QuantizeStrength < 0 || o.QuantizeStrength > 1 {
		return fmt.Errorf("%w: got %g", ErrBadQuantize, o.QuantizeStrength)
	}
	if o.TargetRate != 0 && !rateSupported(o.TargetRate) {
		return fmt.Errorf("%w: %d Hz (supported: %v)", ErrBadTargetRate, o.TargetRate, audio.SupportedRates)
	}
	switch o.Backend {
	case "", BackendAuto, BackendBandpass:
	default:
		return fmt.Errorf("%w: %q", ErrUnknownBackend, o.Backend)
	}
	if o.Quality != "" {
		if _, err := separation.ParseQuality(string(o.Quality)); err != nil {
			return err
		}
	}
	seen := make(map[separation.ClassLabel]bool, len(o.Classes))
	for _, class := range o.Classes {
		if seen[class] {
			return fmt.Errorf("%w: %q", ErrDuplicateClasses, class)
		}
		seen[class] = true
	}
	return nil
}

func rateSupported(rate int) bool {
	for _, r := range audio.SupportedRates {
		if r == rate {
			return true
		}
	}
	return false
}

func (o Options) withDefaults() Options {
	if len(o.Classes) == 0 {
		o.Classes = []separation.ClassLabel{
			separation.ClassKick,
			separation.ClassSnare,
			separation.ClassHihat,
		}
	}
	if o.Quality == "" {
		o.Quality = separation.QualityBalanced
	}
	if o.Backend == "" {
		o.Backend = BackendBandpass
	}
	return o
}

// backendChain builds the separation backend for the job. With BackendAuto
// and a registered external backend, the chain is [external, engine] so a
// missing model falls back to the deterministic engine without surfacing
// an error.
func (o Options) backendChain() (separation.Backend, resolveFunc) {
	engine := separation.NewEngine(separation.Config{
		Quality: o.Quality,
		Bands:   o.Bands,
	})

	if o.Backend != BackendAuto {
		return engine, runPlain
	}

	external, err := separation.NewExternal()
	if err != nil {
		// Nothing registered: the engine alone is the whole strategy.
		return engine, runPlain
	}

	chain, err := separation.NewChain(external, engine)
	if err != nil {
		return engine, runPlain
	}
	return chain, runChain
}
