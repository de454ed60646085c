package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// AuditEntry records a client-side action for the local activity log:
// sign-ins, case creations, status changes, chat sends, GIS analyses.
type AuditEntry struct {
	ID        string            `json:"id"`
	Action    string            `json:"action"` // "sign_in", "create_case", "resolve_case", ...
	CaseID    string            `json:"case_id,omitempty"`
	Actor     string            `json:"actor"`
	Details   map[string]string `json:"details,omitempty"`
	CreatedAt time.Time         `json:"created_at"`
}

// SetupAuditTable creates the actions table if it doesn't exist.
func (s *Store) SetupAuditTable() error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS actions (
			id TEXT PRIMARY KEY,
			action TEXT NOT NULL,
			case_id TEXT,
			actor TEXT NOT NULL,
			details TEXT,
			created_at INTEGER NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_actions_case_id ON actions(case_id)`,
		`CREATE INDEX IF NOT EXISTS idx_actions_created_at ON actions(created_at)`,
	}
	for _, migration := range migrations {
		if _, err := s.db.Exec(migration); err != nil {
			return fmt.Errorf("failed to execute audit migration: %w", err)
		}
	}
	return nil
}

// LogAction appends an audit entry. Failures here never block a workflow;
// callers log and move on.
func (s *Store) LogAction(ctx context.Context, entry AuditEntry) error {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now()
	}

	var details string
	if len(entry.Details) > 0 {
		data, err := json.Marshal(entry.Details)
		if err != nil {
			return fmt.Errorf("failed to marshal action details: %w", err)
		}
		details = string(data)
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO actions (id, action, case_id, actor, details, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		entry.ID, entry.Action, entry.CaseID, entry.Actor, details, entry.CreatedAt.Unix())
	if err != nil {
		return fmt.Errorf("failed to log action %s: %w", entry.Action, err)
	}
	return nil
}

// RecentActions returns the newest audit entries, optionally scoped to a case.
func (s *Store) RecentActions(ctx context.Context, caseID string, limit int) ([]AuditEntry, error) {
	query := `SELECT id, action, case_id, actor, details, created_at FROM actions`
	args := []interface{}{}
	if caseID != "" {
		query += ` WHERE case_id = ?`
		args = append(args, caseID)
	}
	query += ` ORDER BY created_at DESC`
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query actions: %w", err)
	}
	defer rows.Close()

	var entries []AuditEntry
	for rows.Next() {
		var (
			entry     AuditEntry
			caseID    sql.NullString
			details   sql.NullString
			createdAt int64
		)
		if err := rows.Scan(&entry.ID, &entry.Action, &caseID, &entry.Actor, &details, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan action row: %w", err)
		}
		if caseID.Valid {
			entry.CaseID = caseID.String
		}
		entry.CreatedAt = time.Unix(createdAt, 0)
		if details.Valid && details.String != "" {
			m := make(map[string]string)
			if err := json.Unmarshal([]byte(details.String), &m); err == nil {
				entry.Details = m
			}
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating action rows: %w", err)
	}
	return entries, nil
}
