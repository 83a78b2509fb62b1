// internal/domain/trend/provider.go

package trend

import (
	"context"
	"errors"
	"fmt"
)

// ErrTransientFetch marks a provider failure worth retrying (network errors,
// throttling, upstream 5xx). Any other provider error is treated as permanent.
var ErrTransientFetch = errors.New("transient fetch failure")

// Transient wraps err so that errors.Is(err, ErrTransientFetch) reports true
func Transient(err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: %v", ErrTransientFetch, err)
}

// IsTransient reports whether err should be retried
func IsTransient(err error) bool {
	return errors.Is(err, ErrTransientFetch)
}

// Provider defines an external source of interest-over-time data
type Provider interface {
	// InterestOverTime returns the series for a single keyword. An empty
	// slice with a nil error means no data exists for the window.
	InterestOverTime(ctx context.Context, keyword Keyword, q Query) ([]ProviderPoint, error)
}

// Fetcher defines the interface for resilient multi-keyword acquisition
type Fetcher interface {
	// Fetch retrieves and combines the series of every keyword. Per-keyword
	// failures are absorbed; only context cancellation is returned.
	Fetch(ctx context.Context, keywords []Keyword, opts FetchOptions) (Series, error)
}
