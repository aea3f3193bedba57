// Package engine runs the full analysis of a message: URL extraction, rule
// matching, report memory, URL reputation and scoring.
package engine

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/buemura/scamscan/internal/extract"
	"github.com/buemura/scamscan/internal/logging"
	"github.com/buemura/scamscan/internal/narrative"
	"github.com/buemura/scamscan/internal/reports"
	"github.com/buemura/scamscan/internal/rules"
	"github.com/buemura/scamscan/internal/scanner"
	"github.com/buemura/scamscan/internal/scanner/local"
	"github.com/buemura/scamscan/internal/score"
	"github.com/buemura/scamscan/internal/store"
	"github.com/buemura/scamscan/pkg/types"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// ErrNoHistory is returned by history operations when no history store is
// configured.
var ErrNoHistory = errors.New("history is not configured")

// Deps wires the engine's collaborators. A nil Aggregator means no external
// providers: URLs are still judged by the local heuristic.
type Deps struct {
	Aggregator *scanner.Aggregator
	// Rules is the base rule set; nil means the built-in rules.
	Rules    []types.DetectionRule
	Reports  store.ReportStore
	Learned  store.RuleStore
	History  store.HistoryStore
	Narrator narrative.Narrator
	Learner  *reports.Learner
}

// Engine analyzes messages. It is safe for concurrent use.
type Engine struct {
	deps      Deps
	localOnly *scanner.Aggregator
	now       func() time.Time
	newID     func() string
}

// New creates an engine.
func New(d Deps) *Engine {
	if d.Rules == nil {
		d.Rules = rules.Builtin()
	}
	if d.Reports == nil || d.Learned == nil {
		mem := store.NewMemory(store.DefaultHistoryLimit)
		if d.Reports == nil {
			d.Reports = mem
		}
		if d.Learned == nil {
			d.Learned = mem
		}
	}
	return &Engine{
		deps:      d,
		localOnly: scanner.NewAggregator(nil, scanner.DefaultOptions()),
		now:       time.Now,
		newID:     uuid.NewString,
	}
}

// Aggregator returns the configured aggregator, or nil when none was given.
func (e *Engine) Aggregator() *scanner.Aggregator {
	return e.deps.Aggregator
}

// URLScanner returns the aggregator used for every URL verdict. Without
// configured providers it only runs the local heuristic.
func (e *Engine) URLScanner() *scanner.Aggregator {
	if e.deps.Aggregator != nil {
		return e.deps.Aggregator
	}
	return e.localOnly
}

// ActiveRules returns the base rules followed by the learned rules.
func (e *Engine) ActiveRules(ctx context.Context) []types.DetectionRule {
	active := append([]types.DetectionRule(nil), e.deps.Rules...)
	learned, err := e.deps.Learned.LearnedRules(ctx)
	if err != nil {
		logging.Logger.Warnw("learned rules unavailable, using base rules", "error", err)
		return active
	}
	return append(active, learned...)
}

// Analyze produces an outcome for message. It never fails: provider,
// store and narrator failures degrade to local-only results.
func (e *Engine) Analyze(ctx context.Context, message string) types.ScanOutcome {
	urls := extract.URLs(message)

	corpus, err := e.deps.Reports.Reports(ctx)
	if err != nil {
		logging.Logger.Warnw("report corpus unavailable", "error", err)
		corpus = nil
	}
	if e.deps.Learner != nil && len(corpus) > 0 {
		e.deps.Learner.Submit()
	}
	ruleSet := e.ActiveRules(ctx)

	var verdicts []types.URLVerdict
	var narr string
	var g errgroup.Group
	if len(urls) > 0 {
		g.Go(func() error {
			verdicts = e.URLScanner().ScanAll(ctx, urls)
			return nil
		})
	}
	if e.deps.Narrator != nil && strings.TrimSpace(message) != "" {
		g.Go(func() error {
			text, err := e.deps.Narrator.Analyze(ctx, message)
			if err != nil {
				logging.Logger.Warnw("narrative failed", "error", err)
				text = narrative.FallbackNarrative
			}
			narr = text
			return nil
		})
	}
	_ = g.Wait()

	findings := make([]types.Finding, 0)
	findings = append(findings, reports.Match(message, urls, corpus)...)
	findings = append(findings, score.URLFindings(verdicts)...)
	findings = append(findings, rules.Match(message, urls, ruleSet)...)
	for _, u := range urls {
		findings = append(findings, local.StructureFindings(u)...)
	}

	s := score.Compute(findings)
	outcome := types.ScanOutcome{
		ID:            e.newID(),
		Message:       message,
		Verdict:       s.Verdict,
		Confidence:    s.Confidence,
		Findings:      findings,
		ExtractedURLs: urls,
		URLVerdicts:   verdicts,
		Narrative:     narr,
		CreatedAt:     e.now().UTC(),
	}

	e.save(ctx, outcome)
	return outcome
}

// ResolvePending resolves every pending URL verdict in o and rescores it.
// Outcomes without pending verdicts are returned unchanged.
func (e *Engine) ResolvePending(ctx context.Context, o types.ScanOutcome) types.ScanOutcome {
	if !o.HasPending() {
		return o
	}

	resolved := o
	resolved.URLVerdicts = e.URLScanner().ResolveAll(ctx, o.URLVerdicts)

	var head, tail []types.Finding
	for _, f := range o.Findings {
		switch f.Origin {
		case types.OriginUserReport:
			head = append(head, f)
		case types.OriginURLScan:
		default:
			tail = append(tail, f)
		}
	}
	findings := make([]types.Finding, 0, len(o.Findings))
	findings = append(findings, head...)
	findings = append(findings, score.URLFindings(resolved.URLVerdicts)...)
	findings = append(findings, tail...)
	resolved.Findings = findings

	s := score.Compute(findings)
	resolved.Verdict = s.Verdict
	resolved.Confidence = s.Confidence

	e.save(ctx, resolved)
	return resolved
}

// Outcome loads a history entry.
func (e *Engine) Outcome(ctx context.Context, id string) (types.ScanOutcome, error) {
	if e.deps.History == nil {
		return types.ScanOutcome{}, ErrNoHistory
	}
	return e.deps.History.Outcome(ctx, id)
}

// History lists saved outcomes, newest first.
func (e *Engine) History(ctx context.Context) ([]types.ScanOutcome, error) {
	if e.deps.History == nil {
		return nil, ErrNoHistory
	}
	return e.deps.History.History(ctx)
}

// ClearHistory removes every saved outcome.
func (e *Engine) ClearHistory(ctx context.Context) error {
	if e.deps.History == nil {
		return ErrNoHistory
	}
	return e.deps.History.ClearHistory(ctx)
}

// ResolveByID loads a saved outcome, resolves it and saves the result.
func (e *Engine) ResolveByID(ctx context.Context, id string) (types.ScanOutcome, error) {
	o, err := e.Outcome(ctx, id)
	if err != nil {
		return types.ScanOutcome{}, err
	}
	return e.ResolvePending(ctx, o), nil
}

// Report records item as a confirmed threat and schedules rule learning.
func (e *Engine) Report(ctx context.Context, item types.ReportedItem) error {
	if strings.TrimSpace(item.Message) == "" && len(item.URLs) == 0 {
		return errors.New("report needs a message or at least one URL")
	}
	if err := e.deps.Reports.AddReport(ctx, item); err != nil {
		return fmt.Errorf("saving report: %w", err)
	}
	if e.deps.Learner != nil {
		e.deps.Learner.Submit()
	}
	return nil
}

// ReportOutcome reports a saved outcome's message and URLs.
func (e *Engine) ReportOutcome(ctx context.Context, id string) (types.ReportedItem, error) {
	o, err := e.Outcome(ctx, id)
	if err != nil {
		return types.ReportedItem{}, err
	}
	item := types.ReportedItem{Message: o.Message, URLs: append([]string{}, o.ExtractedURLs...)}
	return item, e.Report(ctx, item)
}

func (e *Engine) save(ctx context.Context, o types.ScanOutcome) {
	if e.deps.History == nil {
		return
	}
	if err := e.deps.History.SaveOutcome(ctx, o); err != nil {
		logging.Logger.Warnw("saving history failed", "id", o.ID, "error", err)
	}
}
