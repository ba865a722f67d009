package audio

import "errors"

// Sentinel errors for input validation. All of them are fatal: nothing in
// the pipeline runs on a buffer that failed to load.
var (
	// ErrInvalidInput is returned for unreadable or malformed audio files.
	ErrInvalidInput = errors.New("audio: invalid input")

	// ErrEmptyAudio is returned when a file decodes to zero samples.
	ErrEmptyAudio = errors.New("audio: empty audio")

	// ErrUnsupportedFormat is returned for non-WAV containers.
	ErrUnsupportedFormat = errors.New("audio: unsupported container format")

	// ErrUnsupportedRate is returned for sample rates outside the supported set.
	ErrUnsupportedRate = errors.New("audio: unsupported sample rate")

	// ErrUnsupportedChannels is returned for channel counts outside 1..2.
	ErrUnsupportedChannels = errors.New("audio: unsupported channel count")
)
