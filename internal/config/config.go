// Package config provides configuration helpers for drum2midi commands.
package config

import "os"

// Default pipeline configuration.
const (
	DefaultQuality   = "balanced"
	DefaultOutputDir = "out"
	DefaultLogLevel  = "info"
)

// Quality returns the quality preset from DRUM2MIDI_QUALITY.
// Falls back to the default preset if not set.
func Quality() string {
	if q := os.Getenv("DRUM2MIDI_QUALITY"); q != "" {
		return q
	}
	return DefaultQuality
}

// OutputDir returns the output directory from DRUM2MIDI_OUT.
// Falls back to the provided default if not set.
func OutputDir(defaultDir string) string {
	if dir := os.Getenv("DRUM2MIDI_OUT"); dir != "" {
		return dir
	}
	if defaultDir != "" {
		return defaultDir
	}
	return DefaultOutputDir
}

// LogLevel returns the log level from DRUM2MIDI_LOG_LEVEL.
func LogLevel() string {
	if lvl := os.Getenv("DRUM2MIDI_LOG_LEVEL"); lvl != "" {
		return lvl
	}
	return DefaultLogLevel
}
