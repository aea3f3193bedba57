// Package store defines the persisted corpora shared across scans: reported
// threats, learned rules and scan history.
package store

import (
	"context"
	"errors"

	"github.com/buemura/scamscan/pkg/types"
)

// DefaultHistoryLimit is the number of outcomes kept in history.
const DefaultHistoryLimit = 5

// ErrNotFound is returned when a history entry does not exist.
var ErrNotFound = errors.New("not found")

// ReportStore holds messages users confirmed as threats. It is append-only.
type ReportStore interface {
	Reports(ctx context.Context) ([]types.ReportedItem, error)
	AddReport(ctx context.Context, item types.ReportedItem) error
}

// RuleStore holds rules learned from reports. AddRules skips rules whose
// fingerprint is already stored and returns how many were added.
type RuleStore interface {
	LearnedRules(ctx context.Context) ([]types.DetectionRule, error)
	AddRules(ctx context.Context, rules []types.DetectionRule) (int, error)
}

// HistoryStore keeps the most recent outcomes, newest first.
type HistoryStore interface {
	SaveOutcome(ctx context.Context, o types.ScanOutcome) error
	Outcome(ctx context.Context, id string) (types.ScanOutcome, error)
	History(ctx context.Context) ([]types.ScanOutcome, error)
	ClearHistory(ctx context.Context) error
}

// Store combines every corpus.
type Store interface {
	ReportStore
	RuleStore
	HistoryStore
	Close() error
}
