package scanner

import (
	"context"
	"sync"

	"github.com/buemura/scamscan/internal/logging"
	"github.com/buemura/scamscan/internal/scanner/local"
	"github.com/buemura/scamscan/pkg/types"
	"golang.org/x/sync/errgroup"
)

// Aggregator queries every registered provider for each URL and merges the
// answers with the local heuristic into one verdict per URL.
type Aggregator struct {
	registry *Registry
	opts     Options
}

// NewAggregator creates an aggregator backed by the given registry.
func NewAggregator(registry *Registry, opts Options) *Aggregator {
	if registry == nil {
		registry = NewRegistry()
	}
	return &Aggregator{registry: registry, opts: opts}
}

// Registry returns the providers the aggregator queries.
func (a *Aggregator) Registry() *Registry {
	return a.registry
}

// ScanURL aggregates a single URL.
func (a *Aggregator) ScanURL(ctx context.Context, url string) types.URLVerdict {
	return a.ScanAll(ctx, []string{url})[0]
}

// ScanAll aggregates every URL occurrence, duplicates included, and returns
// the verdicts in input order. At most opts.Concurrency URLs are in flight;
// within a URL every provider runs concurrently and the verdict is composed
// only after all of them settle. Batch providers are queried once for the
// whole set.
func (a *Aggregator) ScanAll(ctx context.Context, urls []string) []types.URLVerdict {
	verdicts := make([]types.URLVerdict, len(urls))
	if len(urls) == 0 {
		return verdicts
	}

	providers := a.registry.All()

	var batchWG sync.WaitGroup
	var batchMu sync.Mutex
	batched := make(map[string]map[string]types.SourceResult)
	distinct := distinctURLs(urls)
	for _, p := range providers {
		bp, ok := p.(BatchProvider)
		if !ok {
			continue
		}
		batchWG.Add(1)
		go func(bp BatchProvider) {
			defer batchWG.Done()
			res := bp.ScanBatch(ctx, distinct)
			batchMu.Lock()
			batched[bp.Name()] = res
			batchMu.Unlock()
		}(bp)
	}

	concurrency := a.opts.Concurrency
	if concurrency < 1 {
		concurrency = 1
	}

	var g errgroup.Group
	g.SetLimit(concurrency)
	for i, u := range urls {
		g.Go(func() error {
			sources := make([]types.SourceResult, len(providers)+1)
			sources[0] = local.Source(u)

			var wg sync.WaitGroup
			for j, p := range providers {
				if _, ok := p.(BatchProvider); ok {
					continue
				}
				wg.Add(1)
				go func(j int, p Provider) {
					defer wg.Done()
					sources[j+1] = scanOne(ctx, p, u)
				}(j, p)
			}
			wg.Wait()
			batchWG.Wait()

			batchMu.Lock()
			for j, p := range providers {
				if _, ok := p.(BatchProvider); !ok {
					continue
				}
				res, ok := batched[p.Name()][u]
				if !ok {
					res = types.SourceResult{Status: types.StatusError, Detail: "no result returned for URL"}
				}
				res.Provider = p.Name()
				sources[j+1] = res
			}
			batchMu.Unlock()

			v := types.URLVerdict{URL: u, Sources: sources}
			v.Recompute()
			verdicts[i] = v
			return nil
		})
	}
	_ = g.Wait()

	return verdicts
}

// ResolvePending re-queries every pending source that carries a handle and
// replaces it in place with the resolved answer. Verdicts without pending
// sources are returned unchanged.
func (a *Aggregator) ResolvePending(ctx context.Context, v types.URLVerdict) types.URLVerdict {
	if !v.HasPending {
		return v
	}

	resolved := v
	resolved.Sources = append([]types.SourceResult(nil), v.Sources...)

	var g errgroup.Group
	for i, src := range resolved.Sources {
		if src.Status != types.StatusPending || src.Handle == "" {
			continue
		}
		p, err := a.registry.Get(src.Provider)
		if err != nil {
			logging.Logger.Debugw("pending source has no registered provider", "provider", src.Provider)
			continue
		}
		r, ok := p.(Resolver)
		if !ok {
			continue
		}
		g.Go(func() error {
			res := r.Resolve(ctx, src.Handle)
			resolved.Sources[i] = types.SourceResult{
				Provider: src.Provider,
				Status:   res.Status,
				Detail:   res.Detail,
				Handle:   src.Handle,
			}
			return nil
		})
	}
	_ = g.Wait()

	resolved.Recompute()
	return resolved
}

// ResolveAll resolves every verdict in vs, in place order.
func (a *Aggregator) ResolveAll(ctx context.Context, vs []types.URLVerdict) []types.URLVerdict {
	out := make([]types.URLVerdict, len(vs))
	var g errgroup.Group
	for i, v := range vs {
		g.Go(func() error {
			out[i] = a.ResolvePending(ctx, v)
			return nil
		})
	}
	_ = g.Wait()
	return out
}

func scanOne(ctx context.Context, p Provider, url string) types.SourceResult {
	res := p.Scan(ctx, url)
	res.Provider = p.Name()
	if res.Status == types.StatusError {
		logging.Logger.Debugw("provider scan failed", "provider", p.Name(), "url", url, "detail", res.Detail)
	}
	return res
}

func distinctURLs(urls []string) []string {
	seen := make(map[string]bool, len(urls))
	out := make([]string, 0, len(urls))
	for _, u := range urls {
		if seen[u] {
			continue
		}
		seen[u] = true
		out = append(out, u)
	}
	return out
}
