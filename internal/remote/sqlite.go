package remote

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/daybook-app/daybook/internal/entity"

	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"
)

// SQLiteStore implements EntityStore and KeyBackupStore over an embedded
// SQLite database.
//
// It is the backend used by tests, local development, and self-hosted
// deployments where "remote" is a database file on shared storage. It is
// in-process, so it never produces Network errors; content rejections are
// classified as Validation and everything else as Unknown.
type SQLiteStore struct {
	conn *sql.DB
	path string
}

// OpenSQLite opens (or creates) the backend database at path.
//
// The database is opened in embedded mode with WAL for concurrent reads.
// The caller MUST call Close() when done.
//
// Example:
//
//	backend, err := remote.OpenSQLite(filepath.Join(dataDir, "daybook-remote.db"))
//	if err != nil {
//	    return err
//	}
//	defer backend.Close()
func OpenSQLite(path string) (*SQLiteStore, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	conn, err := sql.Open("sqlite3", "file:"+path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := conn.Ping(); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	conn.SetMaxOpenConns(25)
	conn.SetMaxIdleConns(5)
	conn.SetConnMaxLifetime(5 * time.Minute)

	s := &SQLiteStore{conn: conn, path: path}

	// WAL mode for concurrent reads during writes.
	if _, err := s.conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = s.Close()
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}
	if _, err := s.conn.Exec("PRAGMA busy_timeout=5000"); err != nil {
		_ = s.Close()
		return nil, fmt.Errorf("failed to set busy timeout: %w", err)
	}

	if err := s.initSchema(); err != nil {
		_ = s.Close()
		return nil, err
	}
	return s, nil
}

// Close checkpoints the WAL and closes the connection.
func (s *SQLiteStore) Close() error {
	if s.conn == nil {
		return nil
	}
	if _, err := s.conn.Exec("PRAGMA wal_checkpoint(TRUNCATE)"); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to checkpoint WAL: %v\n", err)
	}
	if err := s.conn.Close(); err != nil {
		return fmt.Errorf("failed to close database: %w", err)
	}
	s.conn = nil
	return nil
}

// initSchema creates the tables if they don't exist. Idempotent.
func (s *SQLiteStore) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS records (
		user_id    TEXT NOT NULL,
		kind       TEXT NOT NULL,
		id         TEXT NOT NULL,
		payload    TEXT NOT NULL,  -- full record JSON
		updated_at TEXT NOT NULL,
		PRIMARY KEY (user_id, kind, id)
	);

	CREATE INDEX IF NOT EXISTS idx_records_user_kind ON records(user_id, kind);

	-- One wrapped key backup per user.
	CREATE TABLE IF NOT EXISTS key_backups (
		user_id    TEXT PRIMARY KEY,
		payload    TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);
	`
	if _, err := s.conn.Exec(schema); err != nil {
		return fmt.Errorf("failed to initialize schema: %w", err)
	}
	return nil
}

// Select implements EntityStore.Select.
func (s *SQLiteStore) Select(ctx context.Context, userID string, kind entity.Kind) ([]entity.Record, error) {
	op := fmt.Sprintf("select %s", kind)
	if err := kind.Validate(); err != nil {
		return nil, ValidationError(op, err)
	}

	rows, err := s.conn.QueryContext(ctx,
		`SELECT payload FROM records WHERE user_id = ? AND kind = ? ORDER BY updated_at, id`,
		userID, string(kind))
	if err != nil {
		return nil, UnknownError(op, err)
	}
	defer rows.Close()

	var recs []entity.Record
	for rows.Next() {
		var payload string
		if err := rows.Scan(&payload); err != nil {
			return nil, UnknownError(op, err)
		}
		var rec entity.Record
		if err := json.Unmarshal([]byte(payload), &rec); err != nil {
			return nil, UnknownError(op, fmt.Errorf("corrupt payload: %w", err))
		}
		recs = append(recs, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, UnknownError(op, err)
	}
	return recs, nil
}

// Upsert implements EntityStore.Upsert.
func (s *SQLiteStore) Upsert(ctx context.Context, userID string, kind entity.Kind, rec entity.Record) error {
	op := fmt.Sprintf("upsert %s", kind)
	if err := kind.Validate(); err != nil {
		return ValidationError(op, err)
	}
	if err := rec.Validate(); err != nil {
		return ValidationError(op, err)
	}

	payload, err := json.Marshal(rec)
	if err != nil {
		return ValidationError(op, err)
	}

	_, err = s.conn.ExecContext(ctx, `
		INSERT INTO records (user_id, kind, id, payload, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(user_id, kind, id) DO UPDATE SET
			payload    = excluded.payload,
			updated_at = excluded.updated_at`,
		userID, string(kind), rec.ID, string(payload),
		rec.UpdatedAt.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return UnknownError(op, err)
	}
	return nil
}

// Delete implements EntityStore.Delete. Deleting an absent id succeeds.
func (s *SQLiteStore) Delete(ctx context.Context, userID string, kind entity.Kind, id string) error {
	op := fmt.Sprintf("delete %s", kind)
	if err := kind.Validate(); err != nil {
		return ValidationError(op, err)
	}
	if id == "" {
		return ValidationError(op, fmt.Errorf("record id is required"))
	}

	_, err := s.conn.ExecContext(ctx,
		`DELETE FROM records WHERE user_id = ? AND kind = ? AND id = ?`,
		userID, string(kind), id)
	if err != nil {
		return UnknownError(op, err)
	}
	return nil
}

// HasBackup implements KeyBackupStore.HasBackup.
func (s *SQLiteStore) HasBackup(ctx context.Context, userID string) (bool, error) {
	var n int
	err := s.conn.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM key_backups WHERE user_id = ?`, userID).Scan(&n)
	if err != nil {
		return false, UnknownError("check key backup", err)
	}
	return n > 0, nil
}

// UpsertBackup implements KeyBackupStore.UpsertBackup.
func (s *SQLiteStore) UpsertBackup(ctx context.Context, userID, payload string) error {
	if payload == "" {
		return ValidationError("upsert key backup", fmt.Errorf("payload cannot be empty"))
	}
	_, err := s.conn.ExecContext(ctx, `
		INSERT INTO key_backups (user_id, payload, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(user_id) DO UPDATE SET
			payload    = excluded.payload,
			updated_at = excluded.updated_at`,
		userID, payload, time.Now().UTC().Format(time.RFC3339Nano))
	if err != nil {
		return UnknownError("upsert key backup", err)
	}
	return nil
}

// FetchBackup implements KeyBackupStore.FetchBackup.
func (s *SQLiteStore) FetchBackup(ctx context.Context, userID string) (string, error) {
	var payload string
	err := s.conn.QueryRowContext(ctx,
		`SELECT payload FROM key_backups WHERE user_id = ?`, userID).Scan(&payload)
	if err == sql.ErrNoRows {
		return "", ErrNoBackup
	}
	if err != nil {
		return "", UnknownError("fetch key backup", err)
	}
	return payload, nil
}

// RecordCount returns the number of records stored for a user and kind.
// Used by status reporting and tests.
func (s *SQLiteStore) RecordCount(ctx context.Context, userID string, kind entity.Kind) (int, error) {
	var n int
	err := s.conn.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM records WHERE user_id = ? AND kind = ?`,
		userID, string(kind)).Scan(&n)
	if err != nil {
		return 0, UnknownError("count records", err)
	}
	return n, nil
}
