package reports

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/buemura/scamscan/internal/logging"
	"github.com/buemura/scamscan/internal/narrative"
	"github.com/buemura/scamscan/internal/store"
	"github.com/buemura/scamscan/pkg/types"
)

// LearnedDescription labels rules created from reports.
const LearnedDescription = "AI-suggested threat pattern"

// maxPhrasesPerMessage bounds how many rules one report can add.
const maxPhrasesPerMessage = 5

// Learner converts reported messages into pattern rules using a narrator.
// Runs are requested with Submit and executed one at a time on a single
// worker goroutine.
type Learner struct {
	reports  store.ReportStore
	rules    store.RuleStore
	narrator narrative.Narrator
	timeout  time.Duration

	queue    chan struct{}
	done     chan struct{}
	cancel   context.CancelFunc
	startMu  sync.Mutex
	started  bool
	stopOnce sync.Once
}

// NewLearner creates a learner. timeout bounds a single run; zero means
// two minutes.
func NewLearner(reports store.ReportStore, rules store.RuleStore, narrator narrative.Narrator, timeout time.Duration) *Learner {
	if timeout <= 0 {
		timeout = 2 * time.Minute
	}
	return &Learner{
		reports:  reports,
		rules:    rules,
		narrator: narrator,
		timeout:  timeout,
		queue:    make(chan struct{}, 1),
		done:     make(chan struct{}),
	}
}

// Start launches the worker. It is a no-op after the first call.
func (l *Learner) Start(ctx context.Context) {
	l.startMu.Lock()
	defer l.startMu.Unlock()
	if l.started {
		return
	}
	l.started = true

	ctx, l.cancel = context.WithCancel(ctx)
	go l.loop(ctx)
}

// Submit requests a run without blocking. It reports false when a run is
// already queued.
func (l *Learner) Submit() bool {
	select {
	case l.queue <- struct{}{}:
		return true
	default:
		return false
	}
}

// Stop cancels the worker and waits for it to exit.
func (l *Learner) Stop() {
	l.stopOnce.Do(func() {
		l.startMu.Lock()
		started := l.started
		l.startMu.Unlock()
		if !started {
			return
		}
		l.cancel()
		<-l.done
	})
}

func (l *Learner) loop(ctx context.Context) {
	defer close(l.done)
	for {
		select {
		case <-ctx.Done():
			return
		case <-l.queue:
			runCtx, cancel := context.WithTimeout(ctx, l.timeout)
			added, err := l.RunOnce(runCtx)
			cancel()
			if err != nil {
				logging.Logger.Warnw("rule learning failed", "error", err)
				continue
			}
			logging.Logger.Debugw("rule learning finished", "added", added)
		}
	}
}

// RunOnce analyzes every distinct reported message and stores the key
// findings as high-severity pattern rules. Narrator failures for a single
// message are logged and skipped. It returns the number of new rules.
func (l *Learner) RunOnce(ctx context.Context) (int, error) {
	items, err := l.reports.Reports(ctx)
	if err != nil {
		return 0, fmt.Errorf("reading reports: %w", err)
	}

	var learned []types.DetectionRule
	seen := make(map[string]bool)
	for _, msg := range distinctMessages(items) {
		if err := ctx.Err(); err != nil {
			return 0, err
		}
		text, err := l.narrator.Analyze(ctx, msg)
		if err != nil {
			logging.Logger.Debugw("narrator failed for reported message", "error", err)
			continue
		}
		for _, phrase := range Phrases(text) {
			key := strings.ToLower(phrase)
			if seen[key] {
				continue
			}
			seen[key] = true
			learned = append(learned, types.DetectionRule{
				Kind:        types.RulePattern,
				Patterns:    []string{phrase},
				Severity:    types.SeverityHigh,
				Description: LearnedDescription,
			})
		}
	}

	if len(learned) == 0 {
		return 0, nil
	}
	added, err := l.rules.AddRules(ctx, learned)
	if err != nil {
		return 0, fmt.Errorf("storing learned rules: %w", err)
	}
	return added, nil
}

// Phrases returns up to five usable key-finding phrases from a narrative.
func Phrases(text string) []string {
	var out []string
	for _, p := range narrative.KeyFindings(text) {
		if len(p) < 3 {
			continue
		}
		out = append(out, p)
		if len(out) == maxPhrasesPerMessage {
			break
		}
	}
	return out
}

func distinctMessages(items []types.ReportedItem) []string {
	seen := make(map[string]bool)
	var out []string
	for _, it := range items {
		if it.Message == "" || seen[it.Message] {
			continue
		}
		seen[it.Message] = true
		out = append(out, it.Message)
	}
	return out
}
