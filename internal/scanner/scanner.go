// Package scanner aggregates URL reputation sources into per-URL verdicts.
package scanner

import (
	"context"
	"net/http"
	"time"

	"github.com/buemura/scamscan/pkg/types"
)

// Provider is the interface every external reputation source implements.
// Scan never returns an error: failures are reported as StatusError with the
// failure text in Detail.
type Provider interface {
	Name() string
	Description() string
	Scan(ctx context.Context, url string) types.SourceResult
}

// Resolver is implemented by providers that can answer StatusPending and
// later resolve it by the opaque handle they returned.
type Resolver interface {
	Provider
	Resolve(ctx context.Context, handle string) types.SourceResult
}

// BatchProvider is implemented by providers that check many URLs in one
// request. The returned map is keyed by URL.
type BatchProvider interface {
	Provider
	ScanBatch(ctx context.Context, urls []string) map[string]types.SourceResult
}

// Options holds aggregation-wide execution parameters.
type Options struct {
	Concurrency int
	Timeout     time.Duration
}

// DefaultOptions returns sensible defaults.
func DefaultOptions() Options {
	return Options{
		Concurrency: 4,
		Timeout:     15 * time.Second,
	}
}

// HTTPClient returns a client bounded by the configured timeout.
func (o Options) HTTPClient() *http.Client {
	timeout := o.Timeout
	if timeout <= 0 {
		timeout = DefaultOptions().Timeout
	}
	return &http.Client{Timeout: timeout}
}

// Failed builds an error source result for provider.
func Failed(provider string, err error) types.SourceResult {
	return types.SourceResult{Provider: provider, Status: types.StatusError, Detail: err.Error()}
}
