package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	_ "github.com/mattn/go-sqlite3"

	"github.com/xiaot623/gogo/yemot-router/internal/domain"
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore creates a new SQLite store.
func NewSQLiteStore(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// For in-memory SQLite, multiple connections create separate databases.
	// Keep a single connection to avoid schema/data disappearing across goroutines.
	if dsn == ":memory:" || strings.Contains(dsn, "mode=memory") {
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
	}

	store := &SQLiteStore{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	// Rows left behind by a previous process belong to calls that no longer exist.
	if _, err := db.Exec(`DELETE FROM live_calls`); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to clear stale calls: %w", err)
	}

	return store, nil
}

// migrate runs database migrations.
func (s *SQLiteStore) migrate() error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS live_calls (
			call_id TEXT PRIMARY KEY,
			path TEXT NOT NULL,
			identity TEXT NOT NULL,
			status TEXT NOT NULL,
			vals TEXT NOT NULL,
			pending_name TEXT,
			pending_mode TEXT,
			started_at DATETIME NOT NULL,
			last_activity DATETIME NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_live_calls_status ON live_calls(status, started_at)`,
	}

	for _, m := range migrations {
		if _, err := s.db.Exec(m); err != nil {
			return fmt.Errorf("migration failed: %w\n%s", err, m)
		}
	}
	return nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// UpsertCall inserts or refreshes the snapshot of a live call.
func (s *SQLiteStore) UpsertCall(ctx context.Context, call domain.CallInfo) error {
	identity, err := json.Marshal(call.Identity)
	if err != nil {
		return fmt.Errorf("failed to marshal identity: %w", err)
	}
	values := call.Values
	if values == nil {
		values = []domain.Value{}
	}
	vals, err := json.Marshal(values)
	if err != nil {
		return fmt.Errorf("failed to marshal values: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO live_calls (call_id, path, identity, status, vals, pending_name, pending_mode, started_at, last_activity)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(call_id) DO UPDATE SET
			status = excluded.status,
			vals = excluded.vals,
			pending_name = excluded.pending_name,
			pending_mode = excluded.pending_mode,
			last_activity = excluded.last_activity`,
		call.CallID, call.Path, string(identity), call.Status, string(vals),
		nullString(call.PendingName), nullString(string(call.PendingMode)),
		call.StartedAt, call.LastActivity)
	return err
}

// DeleteCall removes the snapshot of a call.
func (s *SQLiteStore) DeleteCall(ctx context.Context, callID string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM live_calls WHERE call_id = ?`, callID)
	return err
}

// GetCall retrieves a live call by ID.
func (s *SQLiteStore) GetCall(ctx context.Context, callID string) (*domain.CallInfo, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT call_id, path, identity, status, vals, pending_name, pending_mode, started_at, last_activity
		FROM live_calls WHERE call_id = ?`, callID)
	call, err := scanCall(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return call, nil
}

// ListCalls lists live calls, optionally filtered by status.
func (s *SQLiteStore) ListCalls(ctx context.Context, status domain.CallStatus) ([]domain.CallInfo, error) {
	query := `SELECT call_id, path, identity, status, vals, pending_name, pending_mode, started_at, last_activity FROM live_calls`
	args := []interface{}{}
	if status != "" {
		query += ` WHERE status = ?`
		args = append(args, status)
	}
	query += ` ORDER BY started_at ASC, call_id ASC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	calls := []domain.CallInfo{}
	for rows.Next() {
		call, err := scanCall(rows)
		if err != nil {
			return nil, err
		}
		calls = append(calls, *call)
	}
	return calls, rows.Err()
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanCall(row scanner) (*domain.CallInfo, error) {
	var call domain.CallInfo
	var identity, vals string
	var pendingName, pendingMode sql.NullString
	if err := row.Scan(&call.CallID, &call.Path, &identity, &call.Status, &vals,
		&pendingName, &pendingMode, &call.StartedAt, &call.LastActivity); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(identity), &call.Identity); err != nil {
		return nil, fmt.Errorf("failed to unmarshal identity: %w", err)
	}
	if err := json.Unmarshal([]byte(vals), &call.Values); err != nil {
		return nil, fmt.Errorf("failed to unmarshal values: %w", err)
	}
	if pendingName.Valid {
		call.PendingName = pendingName.String
	}
	if pendingMode.Valid {
		call.PendingMode = domain.ReadMode(pendingMode.String)
	}
	return &call, nil
}

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}
