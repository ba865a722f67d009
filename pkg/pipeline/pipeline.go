// Package pipeline runs the whole drum2midi job: load, separate, detect,
// estimate tempo, quantize, compose MIDI, and write the output tree.
//
// The pipeline itself never blocks on I/O mid-computation: the source file
// is read up front and all outputs are written at the edges. A job owns
// every buffer it touches, so concurrent jobs are independent.
package pipeline

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/drum2midi/drum2midi/internal/log"
	"github.com/drum2midi/drum2midi/pkg/audio"
	"github.com/drum2midi/drum2midi/pkg/midi"
	"github.com/drum2midi/drum2midi/pkg/onset"
	"github.com/drum2midi/drum2midi/pkg/report"
	"github.com/drum2midi/drum2midi/pkg/separation"
	"github.com/drum2midi/drum2midi/pkg/tempo"
)

// Output file layout inside the job's output directory.
const (
	StemsDirName   = "stems"
	MIDIFileName   = "drums.mid"
	ReportFileName = "report.json"
)

// Result is what Process hands back: the report plus the per-class events
// that went into the MIDI file.
type Result struct {
	Report *report.Report
	Events map[separation.ClassLabel][]onset.Event
	Notes  []midi.NoteEvent

	StemPaths  map[separation.ClassLabel]string
	MIDIPath   string
	ReportPath string
}

// Process runs one job end to end. Readable input always produces the full
// output tree; empty stems and low confidence are reported, not errors.
func Process(ctx context.Context, opts Options) (*Result, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}
	opts = opts.withDefaults()

	jobID := uuid.NewString()
	logger := log.With("component", "pipeline", "job_id", jobID)

	buf, err := audio.Load(opts.InputPath)
	if err != nil {
		return nil, err
	}
	if opts.TargetRate > 0 && opts.TargetRate != buf.Rate {
		buf = audio.ResampleBuffer(buf, opts.TargetRate)
	}
	logger.Debug("loaded input",
		"rate", buf.Rate,
		"samples", buf.Len(),
		"duration", buf.DurationTime(),
	)

	backend, resolve := opts.backendChain()
	stems, backendName, err := resolve(ctx, backend, buf, opts.Classes)
	if err != nil {
		return nil, err
	}

	// Tempo comes from the full mix envelope (the kick+snare union signal
	// in practice) so it is independent of the separation backend.
	est := tempo.Estimate{BPM: opts.BPM, Confidence: 1, Fallback: false}
	source := report.BPMProvided
	if opts.BPM <= 0 {
		est = tempo.EstimateFromEnvelope(onset.ComputeEnvelope(buf, opts.Onset))
		source = report.BPMEstimated
		logger.Debug("estimated tempo",
			"bpm", est.BPM,
			"confidence", est.Confidence,
			"fallback", est.Fallback,
		)
	}

	// Stems are disjoint after separation: detection, quantization, and
	// stem writing fan out per class with no shared state.
	var mu sync.Mutex
	events := make(map[separation.ClassLabel][]onset.Event, len(opts.Classes))
	stemPaths := make(map[separation.ClassLabel]string, len(opts.Classes))

	g, gctx := errgroup.WithContext(ctx)
	for _, class := range opts.Classes {
		class := class
		stem := stems[class]
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			if stem == nil {
				return fmt.Errorf("pipeline: backend %s returned no stem for %q", backendName, class)
			}

			path := filepath.Join(opts.OutputDir, StemsDirName, string(class)+".wav")
			if err := audio.WriteFile(path, stem.SampleBuffer); err != nil {
				return err
			}

			evs := onset.DetectWith(stem, opts.Onset)
			if opts.QuantizeStrength > 0 {
				evs = tempo.Quantize(evs, est.BPM, opts.QuantizeStrength, buf.Rate)
			}

			mu.Lock()
			events[class] = evs
			stemPaths[class] = path
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	notes := midi.Compose(events, est.BPM)
	midiPath := filepath.Join(opts.OutputDir, MIDIFileName)
	if err := midi.WriteFile(midiPath, notes, est.BPM); err != nil {
		return nil, err
	}

	counts := make(map[separation.ClassLabel]int, len(events))
	for class, evs := range events {
		counts[class] = len(evs)
	}

	rep := report.Build(report.Inputs{
		JobID:         jobID,
		InputFile:     filepath.Base(opts.InputPath),
		SampleRate:    buf.Rate,
		Duration:      buf.Duration(),
		BPM:           est.BPM,
		BPMSource:     source,
		BPMConfidence: est.Confidence,
		Classes:       opts.Classes,
		OnsetCounts:   counts,
		TotalNotes:    len(notes),
		Backend:       backendName,
		Quality:       opts.Quality,
	})

	reportPath := filepath.Join(opts.OutputDir, ReportFileName)
	if err := rep.WriteJSON(reportPath); err != nil {
		return nil, err
	}

	logger.Info("job complete",
		"bpm", rep.BPM,
		"notes", rep.TotalNotes,
		"backend", rep.Backend,
	)

	return &Result{
		Report:     rep,
		Events:     events,
		Notes:      notes,
		StemPaths:  stemPaths,
		MIDIPath:   midiPath,
		ReportPath: reportPath,
	}, nil
}

// resolveFunc runs a backend and reports which one produced the stems.
type resolveFunc func(context.Context, separation.Backend, *audio.SampleBuffer, []separation.ClassLabel) (map[separation.ClassLabel]*separation.StemBuffer, string, error)

func runPlain(ctx context.Context, b separation.Backend, buf *audio.SampleBuffer, classes []separation.ClassLabel) (map[separation.ClassLabel]*separation.StemBuffer, string, error) {
	stems, err := b.Separate(ctx, buf, classes)
	if err != nil {
		return nil, "", fmt.Errorf("pipeline: separation failed: %w", err)
	}
	return stems, b.Name(), nil
}

func runChain(ctx context.Context, b separation.Backend, buf *audio.SampleBuffer, classes []separation.ClassLabel) (map[separation.ClassLabel]*separation.StemBuffer, string, error) {
	chain := b.(*separation.Chain)
	stems, name, err := chain.SeparateResolved(ctx, buf, classes)
	if err != nil {
		return nil, "", fmt.Errorf("pipeline: separation failed: %w", err)
	}
	return stems, name, nil
}
