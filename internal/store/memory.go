package store

import (
	"context"
	"sort"
	"sync"

	"github.com/buemura/scamscan/pkg/types"
)

// Memory is an in-process Store. All methods are safe for concurrent use.
type Memory struct {
	mu           sync.RWMutex
	reports      []types.ReportedItem
	rules        []types.DetectionRule
	fingerprints map[string]bool
	history      []types.ScanOutcome
	limit        int
}

// NewMemory creates an empty store keeping at most historyLimit outcomes.
func NewMemory(historyLimit int) *Memory {
	if historyLimit <= 0 {
		historyLimit = DefaultHistoryLimit
	}
	return &Memory{fingerprints: make(map[string]bool), limit: historyLimit}
}

func (m *Memory) Reports(_ context.Context) ([]types.ReportedItem, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]types.ReportedItem, len(m.reports))
	copy(out, m.reports)
	return out, nil
}

func (m *Memory) AddReport(_ context.Context, item types.ReportedItem) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	item.URLs = append([]string(nil), item.URLs...)
	m.reports = append(m.reports, item)
	return nil
}

func (m *Memory) LearnedRules(_ context.Context) ([]types.DetectionRule, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]types.DetectionRule, len(m.rules))
	copy(out, m.rules)
	return out, nil
}

func (m *Memory) AddRules(_ context.Context, rules []types.DetectionRule) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	added := 0
	for _, r := range rules {
		fp := r.Fingerprint()
		if m.fingerprints[fp] {
			continue
		}
		m.fingerprints[fp] = true
		m.rules = append(m.rules, r)
		added++
	}
	return added, nil
}

func (m *Memory) SaveOutcome(_ context.Context, o types.ScanOutcome) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.history {
		if m.history[i].ID == o.ID {
			m.history[i] = o
			return nil
		}
	}
	m.history = append(m.history, o)
	sort.SliceStable(m.history, func(i, j int) bool {
		return m.history[i].CreatedAt.After(m.history[j].CreatedAt)
	})
	if len(m.history) > m.limit {
		m.history = m.history[:m.limit]
	}
	return nil
}

func (m *Memory) Outcome(_ context.Context, id string) (types.ScanOutcome, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, o := range m.history {
		if o.ID == id {
			return o, nil
		}
	}
	return types.ScanOutcome{}, ErrNotFound
}

func (m *Memory) History(_ context.Context) ([]types.ScanOutcome, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]types.ScanOutcome, len(m.history))
	copy(out, m.history)
	return out, nil
}

func (m *Memory) ClearHistory(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.history = nil
	return nil
}

func (m *Memory) Close() error { return nil }
