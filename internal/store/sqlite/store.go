// Package sqlite persists the report, rule and history corpora in a SQLite
// database. Reports and learned rules are append-only; rows that no longer
// decode are skipped on read.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/buemura/scamscan/internal/logging"
	"github.com/buemura/scamscan/internal/store"
	"github.com/buemura/scamscan/pkg/types"

	_ "modernc.org/sqlite"
)

// Store implements store.Store.
type Store struct {
	db    *sql.DB
	limit int
}

var _ store.Store = (*Store)(nil)

// Open opens (creating if needed) the database at path and applies the
// migrations. ":memory:" gives a private in-memory database.
func Open(ctx context.Context, path string, historyLimit int) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}
	// one connection serializes writers and keeps :memory: databases alive
	db.SetMaxOpenConns(1)
	if _, err := db.ExecContext(ctx, `PRAGMA busy_timeout = 5000`); err != nil {
		db.Close()
		return nil, fmt.Errorf("set busy_timeout: %w", err)
	}
	if err := NewMigrator(db).Up(ctx); err != nil {
		db.Close()
		return nil, err
	}

	if historyLimit <= 0 {
		historyLimit = store.DefaultHistoryLimit
	}
	return &Store{db: db, limit: historyLimit}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) Reports(ctx context.Context) ([]types.ReportedItem, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT seq, payload FROM reports ORDER BY seq`)
	if err != nil {
		return nil, fmt.Errorf("query reports: %w", err)
	}
	defer rows.Close()

	var out []types.ReportedItem
	for rows.Next() {
		var seq int64
		var payload string
		if err := rows.Scan(&seq, &payload); err != nil {
			return nil, fmt.Errorf("scan report: %w", err)
		}
		var item types.ReportedItem
		if err := json.Unmarshal([]byte(payload), &item); err != nil {
			logging.Logger.Warnw("skipping unreadable report", "seq", seq, "error", err)
			continue
		}
		out = append(out, item)
	}
	return out, rows.Err()
}

func (s *Store) AddReport(ctx context.Context, item types.ReportedItem) error {
	if item.URLs == nil {
		item.URLs = []string{}
	}
	payload, err := json.Marshal(item)
	if err != nil {
		return fmt.Errorf("encode report: %w", err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO reports(payload, created_at) VALUES(?, ?)`,
		string(payload), time.Now().Unix())
	if err != nil {
		return fmt.Errorf("insert report: %w", err)
	}
	return nil
}

func (s *Store) LearnedRules(ctx context.Context) ([]types.DetectionRule, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT seq, payload FROM learned_rules ORDER BY seq`)
	if err != nil {
		return nil, fmt.Errorf("query learned rules: %w", err)
	}
	defer rows.Close()

	var out []types.DetectionRule
	for rows.Next() {
		var seq int64
		var payload string
		if err := rows.Scan(&seq, &payload); err != nil {
			return nil, fmt.Errorf("scan learned rule: %w", err)
		}
		var r types.DetectionRule
		if err := json.Unmarshal([]byte(payload), &r); err != nil || r.Validate() != nil {
			logging.Logger.Warnw("skipping unreadable learned rule", "seq", seq)
			continue
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *Store) AddRules(ctx context.Context, rules []types.DetectionRule) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	now := time.Now().Unix()
	added := 0
	for _, r := range rules {
		payload, err := json.Marshal(r)
		if err != nil {
			return 0, fmt.Errorf("encode rule: %w", err)
		}
		res, err := tx.ExecContext(ctx,
			`INSERT OR IGNORE INTO learned_rules(fingerprint, payload, created_at) VALUES(?, ?, ?)`,
			r.Fingerprint(), string(payload), now)
		if err != nil {
			return 0, fmt.Errorf("insert rule: %w", err)
		}
		if n, err := res.RowsAffected(); err == nil {
			added += int(n)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	return added, nil
}

func (s *Store) SaveOutcome(ctx context.Context, o types.ScanOutcome) error {
	if o.ID == "" {
		return errors.New("outcome has no id")
	}
	payload, err := json.Marshal(o)
	if err != nil {
		return fmt.Errorf("encode outcome: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO history(id, payload, created_at) VALUES(?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET payload = excluded.payload
	`, o.ID, string(payload), o.CreatedAt.UnixNano())
	if err != nil {
		return fmt.Errorf("upsert outcome: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		DELETE FROM history WHERE id NOT IN (
			SELECT id FROM history ORDER BY created_at DESC, rowid DESC LIMIT ?
		)
	`, s.limit)
	if err != nil {
		return fmt.Errorf("trim history: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

func (s *Store) Outcome(ctx context.Context, id string) (types.ScanOutcome, error) {
	var payload string
	err := s.db.QueryRowContext(ctx, `SELECT payload FROM history WHERE id = ?`, id).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return types.ScanOutcome{}, store.ErrNotFound
	}
	if err != nil {
		return types.ScanOutcome{}, fmt.Errorf("query outcome %s: %w", id, err)
	}

	var o types.ScanOutcome
	if err := json.Unmarshal([]byte(payload), &o); err != nil {
		logging.Logger.Warnw("unreadable history entry", "id", id, "error", err)
		return types.ScanOutcome{}, store.ErrNotFound
	}
	return o, nil
}

func (s *Store) History(ctx context.Context) ([]types.ScanOutcome, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, payload FROM history ORDER BY created_at DESC, rowid DESC`)
	if err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}
	defer rows.Close()

	var out []types.ScanOutcome
	for rows.Next() {
		var id, payload string
		if err := rows.Scan(&id, &payload); err != nil {
			return nil, fmt.Errorf("scan history: %w", err)
		}
		var o types.ScanOutcome
		if err := json.Unmarshal([]byte(payload), &o); err != nil {
			logging.Logger.Warnw("skipping unreadable history entry", "id", id, "error", err)
			continue
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

func (s *Store) ClearHistory(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM history`); err != nil {
		return fmt.Errorf("clear history: %w", err)
	}
	return nil
}
