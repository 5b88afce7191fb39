// Package history keeps a SQLite log of finished reading sessions.
package history

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

//go:embed schema.sql
var schemaSQL string

// schemaVersion is bumped whenever schema.sql changes incompatibly.
const schemaVersion = 1

// timeLayout has fixed-width fractions so stored times sort as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

// ErrSchemaMismatch indicates the database was written by another schema version.
var ErrSchemaMismatch = errors.New("schema version mismatch")

// Session is one finished reading session.
type Session struct {
	ID          string
	ScriptID    string
	Title       string
	Speed       string
	StartedAt   time.Time
	EndedAt     time.Time
	MaxProgress float64
	Completed   bool
}

// Duration is the wall time between start and end.
func (s Session) Duration() time.Duration {
	if s.EndedAt.Before(s.StartedAt) {
		return 0
	}
	return s.EndedAt.Sub(s.StartedAt)
}

// Store persists sessions in SQLite.
type Store struct {
	db   *sql.DB
	path string
}

// Open connects to the history database at path, creating it if needed.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("ensure history dir: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: path}
	if err := store.initSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// Path returns the database file location.
func (s *Store) Path() string { return s.path }

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Record inserts a finished session. Recording the same id twice keeps the
// later values.
func (s *Store) Record(ctx context.Context, session Session) error {
	if session.ID == "" {
		return errors.New("session id is empty")
	}
	_, err := s.db.ExecContext(
		ctx,
		`INSERT INTO sessions (
            id, script_id, title, speed, started_at, ended_at, max_progress, completed
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
        ON CONFLICT(id) DO UPDATE SET
            ended_at = excluded.ended_at,
            max_progress = excluded.max_progress,
            completed = excluded.completed`,
		session.ID,
		nullableString(session.ScriptID),
		session.Title,
		session.Speed,
		session.StartedAt.UTC().Format(timeLayout),
		session.EndedAt.UTC().Format(timeLayout),
		session.MaxProgress,
		boolToInt(session.Completed),
	)
	if err != nil {
		return fmt.Errorf("insert session: %w", err)
	}
	return nil
}

// Recent returns up to limit sessions, newest first. A non-positive limit
// returns all of them.
func (s *Store) Recent(ctx context.Context, limit int) ([]Session, error) {
	query := `SELECT id, script_id, title, speed, started_at, ended_at, max_progress, completed
        FROM sessions ORDER BY started_at DESC`
	var args []any
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query sessions: %w", err)
	}
	defer rows.Close()

	var sessions []Session
	for rows.Next() {
		session, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, session)
	}
	return sessions, rows.Err()
}

// Count returns the number of stored sessions.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(1) FROM sessions`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count sessions: %w", err)
	}
	return n, nil
}

func (s *Store) initSchema(ctx context.Context) error {
	var tableExists int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(1) FROM sqlite_master WHERE type='table' AND name='schema_version'",
	).Scan(&tableExists)
	if err != nil {
		return fmt.Errorf("check schema_version table: %w", err)
	}
	if tableExists == 0 {
		return s.createSchema(ctx)
	}

	var version int
	if err := s.db.QueryRowContext(ctx, "SELECT version FROM schema_version LIMIT 1").Scan(&version); err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}
	if version != schemaVersion {
		return fmt.Errorf("%w: database has version %d, expected %d (delete %s to reset history)",
			ErrSchemaMismatch, version, schemaVersion, s.path)
	}
	return nil
}

func (s *Store) createSchema(ctx context.Context) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin schema tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, schemaSQL); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	if _, err := tx.ExecContext(ctx, "INSERT INTO schema_version (version) VALUES (?)", schemaVersion); err != nil {
		return fmt.Errorf("record schema version: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit schema: %w", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSession(row rowScanner) (Session, error) {
	var (
		session   Session
		scriptID  sql.NullString
		started   string
		ended     string
		completed int
	)
	if err := row.Scan(&session.ID, &scriptID, &session.Title, &session.Speed, &started, &ended, &session.MaxProgress, &completed); err != nil {
		return Session{}, fmt.Errorf("scan session: %w", err)
	}
	session.ScriptID = scriptID.String
	session.Completed = completed != 0
	var err error
	if session.StartedAt, err = time.Parse(timeLayout, started); err != nil {
		return Session{}, fmt.Errorf("parse started_at: %w", err)
	}
	if session.EndedAt, err = time.Parse(timeLayout, ended); err != nil {
		return Session{}, fmt.Errorf("parse ended_at: %w", err)
	}
	return session, nil
}

func nullableString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
