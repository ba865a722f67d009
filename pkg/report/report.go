// Package report aggregates pipeline outputs into the job summary
// document written next to the stems and MIDI file.
package report

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/drum2midi/drum2midi/pkg/separation"
)

// BPMSource says where the report's tempo came from.
type BPMSource string

// BPM sources.
const (
	BPMEstimated BPMSource = "estimated"
	BPMProvided  BPMSource = "provided"
)

// Report is the read-only summary of one processing job. Field names stay
// snake_case on the wire for downstream tooling.
type Report struct {
	JobID      string  `json:"job_id"`
	InputFile  string  `json:"input_file,omitempty"`
	SampleRate int     `json:"sample_rate"`
	Duration   float64 `json:"duration"`

	BPM           float64   `json:"bpm"`
	BPMSource     BPMSource `json:"bpm_source"`
	BPMConfidence float64   `json:"bpm_confidence"`

	// OnsetCounts always carries every requested class, zero included.
	OnsetCounts map[separation.ClassLabel]int `json:"onsets_count"`
	TotalNotes  int                           `json:"total_midi_notes"`

	Backend string             `json:"separation_backend"`
	Quality separation.Quality `json:"separation_quality"`
}

// Inputs carries everything Build aggregates. Build never fails on empty
// results; zero onsets for a class stays a zero count in the report.
type Inputs struct {
	JobID      string
	InputFile  string
	SampleRate int
	Duration   float64

	BPM           float64
	BPMSource     BPMSource
	BPMConfidence float64

	Classes     []separation.ClassLabel
	OnsetCounts map[separation.ClassLabel]int
	TotalNotes  int

	Backend string
	Quality separation.Quality
}

// Build assembles a report. Requested classes missing from OnsetCounts are
// filled in as zero so the document always reflects the full request.
func Build(in Inputs) *Report {
	counts := make(map[separation.ClassLabel]int, len(in.Classes))
	for _, class := range in.Classes {
		counts[class] = in.OnsetCounts[class]
	}

	return &Report{
		JobID:         in.JobID,
		InputFile:     in.InputFile,
		SampleRate:    in.SampleRate,
		Duration:      round3(in.Duration),
		BPM:           round1(in.BPM),
		BPMSource:     in.BPMSource,
		BPMConfidence: round3(in.BPMConfidence),
		OnsetCounts:   counts,
		TotalNotes:    in.TotalNotes,
		Backend:       in.Backend,
		Quality:       in.Quality,
	}
}

// WriteJSON writes the report as indented JSON, creating parent
// directories as needed.
func (r *Report) WriteJSON(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("report: create output dir: %w", err)
	}
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Errorf("report: marshal: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("report: write %s: %w", path, err)
	}
	return nil
}

func round1(v float64) float64 { return roundTo(v, 10) }
func round3(v float64) float64 { return roundTo(v, 1000) }

func roundTo(v float64, scale float64) float64 {
	if v < 0 {
		return -roundTo(-v, scale)
	}
	return float64(int64(v*scale+0.5)) / scale
}
