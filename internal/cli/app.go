package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/buemura/scamscan/internal/config"
	"github.com/buemura/scamscan/internal/engine"
	"github.com/buemura/scamscan/internal/logging"
	"github.com/buemura/scamscan/internal/narrative"
	"github.com/buemura/scamscan/internal/output"
	"github.com/buemura/scamscan/internal/reports"
	"github.com/buemura/scamscan/internal/rules"
	"github.com/buemura/scamscan/internal/scanner"
	"github.com/buemura/scamscan/internal/scanner/redirect"
	"github.com/buemura/scamscan/internal/scanner/safebrowsing"
	"github.com/buemura/scamscan/internal/scanner/tlscert"
	"github.com/buemura/scamscan/internal/scanner/virustotal"
	"github.com/buemura/scamscan/internal/scanner/whois"
	"github.com/buemura/scamscan/internal/store"
	"github.com/buemura/scamscan/internal/store/sqlite"
	"github.com/buemura/scamscan/pkg/types"
)

// app bundles the engine and the resources behind it for one command run.
type app struct {
	cfg      *config.Config
	engine   *engine.Engine
	store    store.Store
	narrator narrative.Narrator
	learner  *reports.Learner
}

// newApp builds an engine from cfg. The caller must Close it.
func newApp(ctx context.Context, cfg *config.Config) (*app, error) {
	base := rules.Builtin()
	if len(cfg.RulePacks) > 0 {
		extra, err := rules.LoadPacks(cfg.RulePacks)
		if err != nil {
			return nil, err
		}
		base = append(base, extra...)
	}

	st, err := openStore(ctx, cfg)
	if err != nil {
		return nil, err
	}

	a := &app{cfg: cfg, store: st}

	if cfg.AI.Enabled() {
		client, err := narrative.New(narrative.Config{
			Provider: cfg.AI.Provider,
			APIKey:   cfg.AI.APIKey,
			Model:    cfg.AI.Model,
			BaseURL:  cfg.AI.BaseURL,
		})
		if err != nil {
			st.Close()
			return nil, fmt.Errorf("configuring AI narrative: %w", err)
		}
		a.narrator = client
		if cfg.AI.Learn {
			a.learner = reports.NewLearner(st, st, client, 0)
		}
	}

	deps := engine.Deps{
		Aggregator: buildAggregator(cfg),
		Rules:      base,
		Reports:    st,
		Learned:    st,
		History:    st,
		Narrator:   a.narrator,
		Learner:    a.learner,
	}
	a.engine = engine.New(deps)
	return a, nil
}

// Close stops the learner and releases the store.
func (a *app) Close() error {
	if a.learner != nil {
		a.learner.Stop()
	}
	return a.store.Close()
}

// openStore opens the SQLite store at cfg.StorePath, creating its directory
// when needed. config.MemoryStore keeps the corpora in memory instead.
func openStore(ctx context.Context, cfg *config.Config) (store.Store, error) {
	path := config.ExpandHome(cfg.StorePath)
	switch path {
	case config.MemoryStore:
		return store.NewMemory(cfg.HistoryLimit), nil
	case "":
		path = config.DefaultStorePath()
	}
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("creating store directory: %w", err)
		}
	}
	st, err := sqlite.Open(ctx, path, cfg.HistoryLimit)
	if err != nil {
		return nil, fmt.Errorf("opening store: %w", err)
	}
	return st, nil
}

// buildAggregator registers the enabled reputation providers. With none
// enabled the aggregator still judges every URL with the local heuristic.
func buildAggregator(cfg *config.Config) *scanner.Aggregator {
	opts := scanner.Options{Concurrency: cfg.Concurrency, Timeout: cfg.Timeout}
	reg := scanner.NewRegistry()

	p := cfg.Providers
	if p.SafeBrowsing.Active() {
		reg.Register(safebrowsing.New(safebrowsing.Config{APIKey: p.SafeBrowsing.APIKey, BaseURL: p.SafeBrowsing.BaseURL}, opts))
	}
	if p.VirusTotal.Active() {
		reg.Register(virustotal.New(virustotal.Config{APIKey: p.VirusTotal.APIKey, BaseURL: p.VirusTotal.BaseURL}, opts))
	}
	if p.Whois.Enabled {
		reg.Register(whois.New(whois.Config{MinAgeDays: p.Whois.MinAgeDays}, opts))
	}
	if p.TLS.Enabled {
		reg.Register(tlscert.New(tlscert.Config{MinAgeDays: p.TLS.MinCertAgeDays}, opts))
	}
	if p.Redirects.Enabled {
		reg.Register(redirect.New(redirect.Config{MaxHops: p.Redirects.MaxHops}, opts))
	}

	logging.Logger.Debugw("reputation providers enabled", "providers", reg.Names())
	return scanner.NewAggregator(reg, opts)
}

// withApp builds the app from the loaded config, runs fn and closes it.
func withApp(ctx context.Context, fn func(a *app) error) error {
	a, err := newApp(ctx, appConfig)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := a.Close(); cerr != nil {
			logging.Logger.Warnw("closing store failed", "error", cerr)
		}
	}()
	return fn(a)
}

func writeOutcomes(w io.Writer, outcomes []types.ScanOutcome) error {
	formatter, err := output.GetFormatter(outputFlag)
	if err != nil {
		return err
	}
	return formatter.Format(w, outcomes)
}

// commandContext bounds a command that may query several providers.
func commandContext(parent context.Context) (context.Context, context.CancelFunc) {
	if timeoutFlag <= 0 {
		return context.WithCancel(parent)
	}
	return context.WithTimeout(parent, timeoutFlag*10)
}
