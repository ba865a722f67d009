package separation

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/drum2midi/drum2midi/internal/log"
	"github.com/drum2midi/drum2midi/pkg/audio"
)

// Chain implements Backend by trying multiple backends in order.
// The first successful backend wins; if all fail, returns an aggregate error.
// Putting the deterministic Engine last makes the chain total for any
// readable input.
type Chain struct {
	backends []Backend
	logger   *slog.Logger
}

// NewChain creates a backend chain that tries backends in order.
// At least one backend is required.
func NewChain(backends ...Backend) (*Chain, error) {
	if len(backends) == 0 {
		return nil, ErrNoBackends
	}

	return &Chain{
		backends: backends,
		logger:   log.With("component", "separation.chain"),
	}, nil
}

// Name reports "chain"; use SeparateResolved to learn which backend
// actually produced a result.
func (c *Chain) Name() string { return "chain" }

// Separate tries each backend until one succeeds.
func (c *Chain) Separate(ctx context.Context, buf *audio.SampleBuffer, classes []ClassLabel) (map[ClassLabel]*StemBuffer, error) {
	stems, _, err := c.SeparateResolved(ctx, buf, classes)
	return stems, err
}

// SeparateResolved is Separate plus the name of the backend that produced
// the result, for reporting.
func (c *Chain) SeparateResolved(ctx context.Context, buf *audio.SampleBuffer, classes []ClassLabel) (map[ClassLabel]*StemBuffer, string, error) {
	var errs []error

	for i, b := range c.backends {
		stems, err := b.Separate(ctx, buf, classes)
		if err == nil {
			if i > 0 {
				c.logger.Info("fallback backend succeeded",
					"backend", b.Name(),
					"classes", len(classes),
				)
			}
			return stems, b.Name(), nil
		}

		errs = append(errs, err)
		c.logger.Warn("backend failed, trying next",
			"backend", b.Name(),
			"error", err,
		)

		// Check if context was cancelled
		if ctx.Err() != nil {
			return nil, "", ctx.Err()
		}
	}

	return nil, "", &ChainError{Errors: errs}
}

// Backends returns the list of backends in the chain.
func (c *Chain) Backends() []Backend {
	return c.backends
}

// ChainError aggregates errors from all backends in a chain.
type ChainError struct {
	Errors []error
}

// Error implements the error interface.
func (e *ChainError) Error() string {
	if len(e.Errors) == 0 {
		return "separation chain: no errors recorded"
	}
	if len(e.Errors) == 1 {
		return fmt.Sprintf("separation chain: %v", e.Errors[0])
	}
	return fmt.Sprintf("separation chain: all %d backends failed, last error: %v", len(e.Errors), e.Errors[len(e.Errors)-1])
}

// Unwrap returns the last error in the chain.
func (e *ChainError) Unwrap() error {
	if len(e.Errors) == 0 {
		return nil
	}
	return e.Errors[len(e.Errors)-1]
}

// Verify Chain implements Backend at compile time.
var _ Backend = (*Chain)(nil)
