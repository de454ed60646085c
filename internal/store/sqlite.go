package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/inheir-ai/inheir-console/internal/api"
)

// Store is the SQLite-backed local cache. It is the console's analogue of
// the browser's localStorage plus an offline copy of refreshable backend
// data: session key-values, case summaries, and chat transcripts. The
// backend owns all of it except the session; everything else is a transient
// copy that the next fetch replaces.
type Store struct {
	db *sql.DB
}

// Turn is a cached transcript entry for a case.
type Turn struct {
	ID        string    `json:"id"`
	CaseID    string    `json:"case_id"`
	Content   string    `json:"content"`
	TurnType  string    `json:"turn_type"` // "query" or "response"
	Seq       int       `json:"seq"`
	CreatedAt time.Time `json:"created_at"`
}

// NewStore opens (and migrates) the cache database at dbPath.
func NewStore(dbPath string) (*Store, error) {
	// Ensure target directory exists (e.g., ./data)
	if dir := filepath.Dir(dbPath); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory %s: %w", dir, err)
		}
	}

	db, err := sql.Open(sqliteDriver, dbPath+"?_journal_mode=WAL&_foreign_keys=off")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &Store{db: db}

	if err := store.migrate(); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	migrations := []string{
		// Session and other client-local key-values
		`CREATE TABLE IF NOT EXISTS kv (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL,
			updated_at INTEGER NOT NULL
		)`,

		// Cached case summaries (replaced wholesale on each history fetch)
		`CREATE TABLE IF NOT EXISTS cases (
			case_id TEXT PRIMARY KEY,
			title TEXT NOT NULL,
			status TEXT NOT NULL,
			created_at INTEGER NOT NULL,
			fetched_at INTEGER NOT NULL
		)`,

		// Cached chat transcripts (replaced per-case on reconcile)
		`CREATE TABLE IF NOT EXISTS turns (
			id TEXT PRIMARY KEY,
			case_id TEXT NOT NULL,
			content TEXT NOT NULL,
			turn_type TEXT NOT NULL,
			seq INTEGER NOT NULL,
			created_at INTEGER NOT NULL
		)`,

		`CREATE INDEX IF NOT EXISTS idx_cases_status ON cases(status)`,
		`CREATE INDEX IF NOT EXISTS idx_turns_case_id ON turns(case_id)`,
		`CREATE INDEX IF NOT EXISTS idx_turns_seq ON turns(case_id, seq)`,
	}

	for _, migration := range migrations {
		if _, err := s.db.Exec(migration); err != nil {
			return fmt.Errorf("failed to execute migration: %w", err)
		}
	}

	if err := s.SetupAuditTable(); err != nil {
		return err
	}

	return nil
}

// SetKV stores a client-local key-value pair.
func (s *Store) SetKV(ctx context.Context, key, value string) error {
	query := `INSERT OR REPLACE INTO kv (key, value, updated_at) VALUES (?, ?, ?)`
	if _, err := s.db.ExecContext(ctx, query, key, value, time.Now().Unix()); err != nil {
		return fmt.Errorf("failed to set kv %s: %w", key, err)
	}
	return nil
}

// GetKV returns the stored value for key, or "" when absent.
func (s *Store) GetKV(ctx context.Context, key string) (string, error) {
	var value string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM kv WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to get kv %s: %w", key, err)
	}
	return value, nil
}

// ClearKV removes every client-local key-value pair (sign-out semantics).
func (s *Store) ClearKV(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM kv`); err != nil {
		return fmt.Errorf("failed to clear kv: %w", err)
	}
	return nil
}

// ReplaceCases swaps the cached case list for the freshly fetched one.
func (s *Store) ReplaceCases(ctx context.Context, cases []api.CaseSummary) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	rollback := func(e error) error {
		_ = tx.Rollback()
		return e
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM cases`); err != nil {
		return rollback(fmt.Errorf("clear cached cases: %w", err))
	}

	now := time.Now().Unix()
	for _, c := range cases {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO cases (case_id, title, status, created_at, fetched_at) VALUES (?, ?, ?, ?, ?)`,
			c.CaseID, c.Title, c.Status, c.CreatedAt.Unix(), now)
		if err != nil {
			return rollback(fmt.Errorf("cache case %s: %w", c.CaseID, err))
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

// CachedCases returns the last fetched case list, newest first.
func (s *Store) CachedCases(ctx context.Context) ([]api.CaseSummary, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT case_id, title, status, created_at FROM cases ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query cached cases: %w", err)
	}
	defer rows.Close()

	var cases []api.CaseSummary
	for rows.Next() {
		var c api.CaseSummary
		var createdAt int64
		if err := rows.Scan(&c.CaseID, &c.Title, &c.Status, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan cached case: %w", err)
		}
		c.CreatedAt = time.Unix(createdAt, 0)
		cases = append(cases, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating cached cases: %w", err)
	}
	return cases, nil
}

// UpdateCaseStatus merges a resolve/abort result into the cached list.
func (s *Store) UpdateCaseStatus(ctx context.Context, caseID, status string) error {
	status = strings.TrimSpace(status)
	if status == "" {
		return fmt.Errorf("update cached case %s: empty status", caseID)
	}
	_, err := s.db.ExecContext(ctx,
		`UPDATE cases SET status = ?, fetched_at = ? WHERE case_id = ?`,
		status, time.Now().Unix(), caseID)
	if err != nil {
		return fmt.Errorf("update cached case %s: %w", caseID, err)
	}
	return nil
}

// ReplaceTranscript swaps a case's cached transcript for the authoritative
// server history. Turns are stored in append order via their seq.
func (s *Store) ReplaceTranscript(ctx context.Context, caseID string, turns []Turn) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	rollback := func(e error) error {
		_ = tx.Rollback()
		return e
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM turns WHERE case_id = ?`, caseID); err != nil {
		return rollback(fmt.Errorf("clear transcript for case %s: %w", caseID, err))
	}

	for i, turn := range turns {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO turns (id, case_id, content, turn_type, seq, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
			turn.ID, caseID, turn.Content, turn.TurnType, i, turn.CreatedAt.Unix())
		if err != nil {
			return rollback(fmt.Errorf("cache turn %d for case %s: %w", i, caseID, err))
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

// Transcript returns a case's cached turns in append order.
func (s *Store) Transcript(ctx context.Context, caseID string) ([]Turn, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, case_id, content, turn_type, seq, created_at FROM turns WHERE case_id = ? ORDER BY seq ASC`,
		caseID)
	if err != nil {
		return nil, fmt.Errorf("failed to query transcript for case %s: %w", caseID, err)
	}
	defer rows.Close()

	var turns []Turn
	for rows.Next() {
		var t Turn
		var createdAt int64
		if err := rows.Scan(&t.ID, &t.CaseID, &t.Content, &t.TurnType, &t.Seq, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan turn: %w", err)
		}
		t.CreatedAt = time.Unix(createdAt, 0)
		turns = append(turns, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating turns: %w", err)
	}
	return turns, nil
}
