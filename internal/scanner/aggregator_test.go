package scanner

import (
	"context"
	"testing"
	"time"

	"github.com/buemura/scamscan/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func providerNames(v types.URLVerdict) []string {
	names := make([]string, len(v.Sources))
	for i, s := range v.Sources {
		names[i] = s.Provider
	}
	return names
}

func source(t *testing.T, v types.URLVerdict, provider string) types.SourceResult {
	t.Helper()
	res, ok := v.Source(provider)
	require.True(t, ok, "no source %q", provider)
	return res
}

func TestAggregator_LocalOnly(t *testing.T) {
	agg := NewAggregator(NewRegistry(), DefaultOptions())

	v := agg.ScanURL(context.Background(), "https://example.com")
	require.Len(t, v.Sources, 1)
	assert.Equal(t, "local", v.Sources[0].Provider)
	assert.Equal(t, types.StatusSafe, v.Sources[0].Status)
	assert.False(t, v.IsMalicious)
	assert.False(t, v.HasPending)
}

func TestAggregator_SourceOrderIsLocalThenRegistration(t *testing.T) {
	reg := NewRegistry()
	reg.Register(&slowProvider{name: "slow", delay: 50 * time.Millisecond})
	reg.Register(&mockProvider{name: "fast", status: types.StatusSafe})

	v := NewAggregator(reg, DefaultOptions()).ScanURL(context.Background(), "https://example.com")
	assert.Equal(t, []string{"local", "slow", "fast"}, providerNames(v))
}

func TestAggregator_AllProvidersFail(t *testing.T) {
	reg := NewRegistry()
	reg.Register(&mockProvider{name: "p1", status: types.StatusError, detail: "connection refused"})
	reg.Register(&mockProvider{name: "p2", status: types.StatusError, detail: "401 Unauthorized"})

	v := NewAggregator(reg, DefaultOptions()).ScanURL(context.Background(), "https://example.com")

	assert.False(t, v.IsMalicious)
	assert.False(t, v.HasPending)
	assert.Equal(t, types.StatusSafe, source(t, v, "local").Status)
	assert.Equal(t, "connection refused", source(t, v, "p1").Detail)
}

func TestAggregator_SuspiciousLocalMarksMalicious(t *testing.T) {
	v := NewAggregator(NewRegistry(), DefaultOptions()).ScanURL(context.Background(), "http://secure-verify.xyz/login")
	assert.True(t, v.IsMalicious)
	assert.Equal(t, types.StatusSuspicious, v.Sources[0].Status)
}

func TestAggregator_PendingIsNotMalicious(t *testing.T) {
	reg := NewRegistry()
	reg.Register(&mockProvider{name: "vt", status: types.StatusPending, handle: "an-1"})

	v := NewAggregator(reg, DefaultOptions()).ScanURL(context.Background(), "https://example.com")
	assert.True(t, v.HasPending)
	assert.False(t, v.IsMalicious)
	assert.Equal(t, "an-1", source(t, v, "vt").Handle)
}

func TestAggregator_ScanAllKeepsOrderAndDuplicates(t *testing.T) {
	reg := NewRegistry()
	mp := &mockProvider{name: "p", status: types.StatusSafe}
	reg.Register(mp)

	urls := []string{"https://a.com", "https://b.com", "https://a.com"}
	vs := NewAggregator(reg, Options{Concurrency: 2}).ScanAll(context.Background(), urls)

	require.Len(t, vs, 3)
	for i, u := range urls {
		assert.Equal(t, u, vs[i].URL)
	}
	assert.Equal(t, int32(3), mp.calls.Load())
}

func TestAggregator_BatchProviderCalledOnce(t *testing.T) {
	reg := NewRegistry()
	bp := &batchProvider{name: "gsb", flagged: map[string]bool{"https://bad.com": true}}
	reg.Register(bp)

	urls := []string{"https://good.com", "https://bad.com", "https://good.com"}
	vs := NewAggregator(reg, Options{Concurrency: 3}).ScanAll(context.Background(), urls)

	assert.Equal(t, int32(1), bp.calls.Load())
	assert.Equal(t, [][]string{{"https://good.com", "https://bad.com"}}, bp.got)

	require.Len(t, vs, 3)
	assert.False(t, vs[0].IsMalicious)
	assert.True(t, vs[1].IsMalicious)
	assert.Equal(t, "gsb", vs[1].Sources[1].Provider)
	assert.Equal(t, types.StatusMalicious, vs[1].Sources[1].Status)
	assert.False(t, vs[2].IsMalicious)
}

func TestAggregator_ScanAllEmpty(t *testing.T) {
	vs := NewAggregator(nil, DefaultOptions()).ScanAll(context.Background(), nil)
	assert.Empty(t, vs)
}

func TestAggregator_ContextCancellation(t *testing.T) {
	reg := NewRegistry()
	reg.Register(&slowProvider{name: "slow", delay: 2 * time.Second})

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	start := time.Now()
	v := NewAggregator(reg, Options{Concurrency: 1}).ScanURL(ctx, "https://example.com")
	assert.Less(t, time.Since(start), time.Second)
	assert.Equal(t, types.StatusError, source(t, v, "slow").Status)
	assert.False(t, v.IsMalicious)
}

func TestAggregator_ResolvePending(t *testing.T) {
	reg := NewRegistry()
	rp := &resolvingProvider{
		mockProvider: mockProvider{name: "vt"},
		resolved: types.SourceResult{
			Status: types.StatusMalicious,
			Detail: "Detected as malicious by 3 out of 70 security vendors (4.3% detection rate)",
		},
	}
	reg.Register(rp)
	agg := NewAggregator(reg, DefaultOptions())

	pending := types.URLVerdict{
		URL: "https://example.com",
		Sources: []types.SourceResult{
			{Provider: "local", Status: types.StatusSafe},
			{Provider: "vt", Status: types.StatusPending, Handle: "an-1"},
		},
		HasPending: true,
	}

	got := agg.ResolvePending(context.Background(), pending)

	assert.Equal(t, []string{"an-1"}, rp.handles)
	assert.True(t, got.IsMalicious)
	assert.False(t, got.HasPending)
	assert.Equal(t, types.StatusMalicious, got.Sources[1].Status)
	assert.Equal(t, "an-1", got.Sources[1].Handle)
	assert.Equal(t, types.StatusSafe, got.Sources[0].Status)

	// the input verdict is not mutated
	assert.Equal(t, types.StatusPending, pending.Sources[1].Status)
}

func TestAggregator_ResolvePendingIsNoOpWhenResolved(t *testing.T) {
	reg := NewRegistry()
	rp := &resolvingProvider{mockProvider: mockProvider{name: "vt"}}
	reg.Register(rp)
	agg := NewAggregator(reg, DefaultOptions())

	v := types.URLVerdict{
		URL: "https://example.com",
		Sources: []types.SourceResult{
			{Provider: "local", Status: types.StatusSafe},
			{Provider: "vt", Status: types.StatusSafe, Handle: "an-1"},
		},
	}

	assert.Equal(t, v, agg.ResolvePending(context.Background(), v))
	assert.Empty(t, rp.handles)
}

func TestAggregator_ResolvePendingSkipsMissingHandleAndUnknownProvider(t *testing.T) {
	agg := NewAggregator(NewRegistry(), DefaultOptions())
	v := types.URLVerdict{
		URL: "https://example.com",
		Sources: []types.SourceResult{
			{Provider: "local", Status: types.StatusSafe},
			{Provider: "vt", Status: types.StatusPending, Handle: "an-1"},
			{Provider: "other", Status: types.StatusPending},
		},
		HasPending: true,
	}

	got := agg.ResolvePending(context.Background(), v)
	assert.True(t, got.HasPending)
	assert.Equal(t, v.Sources, got.Sources)
}

func TestAggregator_ResolveAll(t *testing.T) {
	reg := NewRegistry()
	reg.Register(&resolvingProvider{
		mockProvider: mockProvider{name: "vt"},
		resolved:     types.SourceResult{Status: types.StatusSafe, Detail: "Analyzed by 70 security vendors - no threats detected"},
	})
	agg := NewAggregator(reg, DefaultOptions())

	vs := []types.URLVerdict{
		{URL: "a", Sources: []types.SourceResult{{Provider: "vt", Status: types.StatusPending, Handle: "h"}}, HasPending: true},
		{URL: "b", Sources: []types.SourceResult{{Provider: "local", Status: types.StatusSafe}}},
	}
	got := agg.ResolveAll(context.Background(), vs)
	require.Len(t, got, 2)
	assert.Equal(t, "a", got[0].URL)
	assert.False(t, got[0].HasPending)
	assert.Equal(t, vs[1], got[1])
}
