package separation

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/drum2midi/drum2midi/internal/log"
	"github.com/drum2midi/drum2midi/pkg/audio"
	"github.com/drum2midi/drum2midi/pkg/dsp"
)

// Config holds the immutable settings for a deterministic engine.
type Config struct {
	// Quality selects filter order and gating. Defaults to balanced.
	Quality Quality

	// Bands overrides the default band table when non-nil.
	Bands map[ClassLabel]FilterSpec

	// Gate overrides the default gate when non-zero.
	Gate Gate
}

// Engine is the deterministic band-split separation backend. It holds no
// per-call state: concurrent Separate calls on independent buffers are safe.
type Engine struct {
	cfg    Config
	gate   Gate
	logger *slog.Logger
}

// NewEngine creates a deterministic engine with the given configuration.
func NewEngine(cfg Config) *Engine {
	if cfg.Quality == "" {
		cfg.Quality = QualityBalanced
	}
	gate := cfg.Gate
	if gate == (Gate{}) {
		gate = DefaultGate()
	}
	return &Engine{
		cfg:    cfg,
		gate:   gate,
		logger: log.With("component", "separation.engine"),
	}
}

// Name identifies the backend in reports and logs.
func (e *Engine) Name() string { return "bandpass" }

// Quality returns the engine's preset.
func (e *Engine) Quality() Quality { return e.cfg.Quality }

// Separate splits buf into one stem per requested class. Every stem has
// exactly the input's length and rate; the output map's keys are exactly
// the requested classes. Classes are processed in parallel, one goroutine
// each, with no shared mutable state.
func (e *Engine) Separate(ctx context.Context, buf *audio.SampleBuffer, classes []ClassLabel) (map[ClassLabel]*StemBuffer, error) {
	if buf == nil || buf.Rate <= 0 {
		return nil, fmt.Errorf("separation: nil or rate-less buffer")
	}

	stems := make([]*StemBuffer, len(classes))
	g, ctx := errgroup.WithContext(ctx)
	for i, class := range classes {
		i, class := i, class
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			stem, err := e.separateOne(buf, class)
			if err != nil {
				return err
			}
			stems[i] = stem
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := make(map[ClassLabel]*StemBuffer, len(classes))
	for i, class := range classes {
		out[class] = stems[i]
	}

	e.logger.Debug("separated",
		"classes", len(classes),
		"quality", e.cfg.Quality,
		"samples", buf.Len(),
	)
	return out, nil
}

func (e *Engine) separateOne(buf *audio.SampleBuffer, class ClassLabel) (*StemBuffer, error) {
	spec, err := resolveSpec(e.cfg.Bands, class, e.cfg.Quality)
	if err != nil {
		return nil, err
	}

	sections, err := designSections(spec, buf.Rate)
	if err != nil {
		return nil, fmt.Errorf("separation: design %s band: %w", class, err)
	}

	samples := dsp.ZeroPhase(sections, buf.Samples)
	if spec.Gain != 1.0 {
		for i := range samples {
			samples[i] *= spec.Gain
		}
	}

	filtered := &audio.SampleBuffer{
		Samples:        samples,
		Rate:           buf.Rate,
		SourceChannels: buf.SourceChannels,
	}
	gated := e.gate.Process(filtered, e.cfg.Quality.GateEnabled())

	return &StemBuffer{
		SampleBuffer: gated,
		Class:        class,
		Quality:      e.cfg.Quality,
	}, nil
}

// designSections builds the biquad cascade for a band spec at a rate.
func designSections(spec FilterSpec, rate int) ([]dsp.Biquad, error) {
	switch spec.Topology {
	case Lowpass:
		return dsp.DesignLowpass(spec.High, rate, spec.Order)
	case Highpass:
		return dsp.DesignHighpass(spec.Low, rate, spec.Order)
	case Bandpass:
		high := spec.High
		if high == 0 {
			high = float64(rate) / 2
		}
		return dsp.DesignBandpass(spec.Low, high, rate, spec.Order)
	}
	return nil, fmt.Errorf("separation: unknown topology %d", spec.Topology)
}

func wrapClassErr(class ClassLabel) error {
	return fmt.Errorf("%w: %q", ErrUnknownClass, class)
}

// Verify Engine implements Backend at compile time.
var _ Backend = (*Engine)(nil)
