package separation

import (
	"context"

	"github.com/drum2midi/drum2midi/pkg/audio"
)

// Backend separates a buffer into per-class stems. Implementations must
// return stems with the input's exact length and sample rate, keyed by
// exactly the requested classes, or fail with an error; a backend that
// cannot run should return ErrBackendUnavailable so a chain falls through.
//
// Select a backend via a value of this interface, never via embedding:
// the deterministic Engine and any learned model are interchangeable
// above this line.
type Backend interface {
	// Name identifies the backend in reports and logs.
	Name() string

	// Separate produces one stem per requested class.
	Separate(ctx context.Context, buf *audio.SampleBuffer, classes []ClassLabel) (map[ClassLabel]*StemBuffer, error)
}

// ExternalFactory creates the optional external (model-based) backend.
type ExternalFactory func() (Backend, error)

// externalFactory holds a registered external backend factory.
var externalFactory ExternalFactory

// RegisterExternal sets the factory for the external separation backend.
// Called from an init() in the backend's package, the way optional
// providers register themselves.
func RegisterExternal(f ExternalFactory) {
	externalFactory = f
}

// NewExternal creates the registered external backend.
// Returns ErrBackendUnavailable when none is registered.
func NewExternal() (Backend, error) {
	if externalFactory == nil {
		return nil, ErrBackendUnavailable
	}
	return externalFactory()
}
