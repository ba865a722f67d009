package separation

import "errors"

// Sentinel errors.
var (
	// ErrUnknownClass is returned when a requested class has no band
	// definition. This is a configuration error and fails the whole job.
	ErrUnknownClass = errors.New("separation: unknown instrument class")

	// ErrUnknownQuality is returned for an unrecognized preset name.
	ErrUnknownQuality = errors.New("separation: unknown quality preset")

	// ErrBackendUnavailable signals a backend that cannot run (missing
	// runtime, model, or registration). Recoverable: a chain falls through
	// to the next backend.
	ErrBackendUnavailable = errors.New("separation: backend unavailable")

	// ErrNoBackends is returned when a chain is built with no backends.
	ErrNoBackends = errors.New("separation: no backends available")
)
