package ledger

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

//go:embed schema.sql
var schemaSQL string

// SQLite is a file-backed Ledger. One process owns the file; the
// connection pool is pinned to a single connection to keep writes serial.
type SQLite struct {
	db *sql.DB
}

// OpenSQLite creates or opens the ledger database at path. Pragmas and
// schema are applied on every open; the call is idempotent.
func OpenSQLite(path string) (*SQLite, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open ledger: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("connect ledger: %w", err)
	}

	// SQLite supports one writer at a time; a single pooled connection
	// avoids SQLITE_BUSY under concurrent appends.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("apply %q: %w", pragma, err)
		}
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply ledger schema: %w", err)
	}

	return &SQLite{db: db}, nil
}

func (s *SQLite) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// SuccessfulIDs returns every record ID with a success row for the table
// and target.
func (s *SQLite) SuccessfulIDs(ctx context.Context, table, target string) (map[string]struct{}, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT record_id FROM sync_log
		WHERE table_name = ? AND target_system = ? AND status = 'success'
	`, table, target)
	if err != nil {
		return nil, fmt.Errorf("query ledger: %w", err)
	}
	defer rows.Close()

	ids := make(map[string]struct{})
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan ledger row: %w", err)
		}
		ids[id] = struct{}{}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate ledger rows: %w", err)
	}
	return ids, nil
}

// Append writes one attempt outcome. Success rows hit the partial unique
// index; ON CONFLICT DO NOTHING makes a duplicate success a silent no-op,
// which is what keeps concurrent or re-run appends idempotent.
func (s *SQLite) Append(ctx context.Context, e Entry) error {
	syncedAt := e.SyncedAt
	if syncedAt.IsZero() {
		syncedAt = time.Now().UTC()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO sync_log
		(table_name, record_id, target_system, status, error_message, run_token, synced_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT DO NOTHING
	`,
		e.Table,
		e.RecordID,
		e.Target,
		e.Status,
		nullIfEmpty(e.Error),
		nullIfEmpty(e.RunToken),
		syncedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("append ledger entry: %w", err)
	}
	return nil
}

// History returns the most recent entries for a table, newest first. Used
// by the preview and status surfaces.
func (s *SQLite) History(ctx context.Context, table string, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT table_name, record_id, target_system, status,
		       COALESCE(error_message, ''), COALESCE(run_token, ''), synced_at
		FROM sync_log
		WHERE table_name = ?
		ORDER BY id DESC
		LIMIT ?
	`, table, limit)
	if err != nil {
		return nil, fmt.Errorf("query ledger history: %w", err)
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		var e Entry
		var syncedAt string
		if err := rows.Scan(&e.Table, &e.RecordID, &e.Target, &e.Status, &e.Error, &e.RunToken, &syncedAt); err != nil {
			return nil, fmt.Errorf("scan ledger history: %w", err)
		}
		if ts, perr := time.Parse(time.RFC3339Nano, syncedAt); perr == nil {
			e.SyncedAt = ts
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate ledger history: %w", err)
	}
	return out, nil
}

func nullIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}
