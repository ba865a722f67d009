// drum2midi - drum WAV separation and MIDI extraction.
//
// Usage:
//
//	drum2midi -out DIR [-stems kick,snare,hihat] [-bpm auto|120] \
//	    [-quantize 0.5] [-quality balanced] [-backend auto] input.wav
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/drum2midi/drum2midi/internal/config"
	"github.com/drum2midi/drum2midi/internal/log"
	"github.com/drum2midi/drum2midi/pkg/pipeline"
	"github.com/drum2midi/drum2midi/pkg/separation"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	fs := flag.NewFlagSet("drum2midi", flag.ContinueOnError)
	var (
		out      = fs.String("out", config.OutputDir(""), "output directory")
		stems    = fs.String("stems", "kick,snare,hihat", "comma-separated stems to extract (kick,snare,hihat,toms)")
		bpmFlag  = fs.String("bpm", "auto", "BPM value or 'auto' for detection")
		quantize = fs.Float64("quantize", 0, "quantize strength 0.0-1.0 (0 = no quantize)")
		rate     = fs.Int("rate", 0, "resample input to this rate in Hz (0 = keep source rate)")
		quality  = fs.String("quality", config.Quality(), "separation quality preset (fast, balanced, best)")
		backend  = fs.String("backend", "bandpass", "separation backend (auto, bandpass)")
		logLevel = fs.String("log-level", config.LogLevel(), "log level (debug, info, warn, error)")
	)
	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), "Usage: drum2midi [flags] <input.wav>\n\n")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() != 1 {
		fs.Usage()
		return 2
	}
	input := fs.Arg(0)

	log.Init(*logLevel)

	bpm, err := parseBPM(*bpmFlag)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	classes, err := parseStems(*stems)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	q, err := separation.ParseQuality(*quality)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	fmt.Printf("Processing: %s\n", input)
	fmt.Printf("Output dir: %s\n", *out)
	fmt.Printf("Stems: %s\n", *stems)
	fmt.Printf("BPM: %s\n", *bpmFlag)
	fmt.Printf("Separation: %s (quality: %s)\n\n", *backend, q)

	result, err := pipeline.Process(context.Background(), pipeline.Options{
		InputPath:        input,
		OutputDir:        *out,
		Classes:          classes,
		TargetRate:       *rate,
		BPM:              bpm,
		QuantizeStrength: *quantize,
		Quality:          q,
		Backend:          pipeline.BackendSelector(*backend),
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: processing failed: %v\n", err)
		return 1
	}

	rep := result.Report
	fmt.Println("Done!")
	fmt.Printf("  Duration: %.2fs\n", rep.Duration)
	fmt.Printf("  BPM: %g (%s, confidence %.2f)\n", rep.BPM, rep.BPMSource, rep.BPMConfidence)
	fmt.Printf("  Separation: %s\n", rep.Backend)
	fmt.Printf("  MIDI notes: %d\n", rep.TotalNotes)
	fmt.Println("  Onsets per stem:")
	for _, class := range classes {
		fmt.Printf("    %s: %d\n", class, rep.OnsetCounts[class])
	}
	fmt.Println()
	fmt.Println("Outputs:")
	fmt.Printf("  Stems:  %s/%s/\n", *out, pipeline.StemsDirName)
	fmt.Printf("  MIDI:   %s\n", result.MIDIPath)
	fmt.Printf("  Report: %s\n", result.ReportPath)
	return 0
}

// parseBPM accepts "auto" (returns 0) or a positive number.
func parseBPM(s string) (float64, error) {
	if strings.EqualFold(s, "auto") {
		return 0, nil
	}
	bpm, err := strconv.ParseFloat(s, 64)
	if err != nil || bpm <= 0 {
		return 0, fmt.Errorf("invalid BPM value %q (want 'auto' or a positive number)", s)
	}
	return bpm, nil
}

func parseStems(s string) ([]separation.ClassLabel, error) {
	var classes []separation.ClassLabel
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		classes = append(classes, separation.ClassLabel(part))
	}
	if len(classes) == 0 {
		return nil, fmt.Errorf("no stems requested")
	}
	return classes, nil
}
