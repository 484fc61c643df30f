// Package sqlstore is the SQLite-backed local datastore: profile rows,
// internal documents, search history and form submissions.
package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/codeGROOVE-dev/retry"

	_ "modernc.org/sqlite" // registers the "sqlite" driver
)

const schema = `
CREATE TABLE IF NOT EXISTS people (
	id         TEXT PRIMARY KEY,
	name       TEXT NOT NULL DEFAULT '',
	job_title  TEXT NOT NULL DEFAULT '',
	company    TEXT NOT NULL DEFAULT '',
	address    TEXT NOT NULL DEFAULT '',
	email      TEXT NOT NULL DEFAULT '',
	phone      TEXT NOT NULL DEFAULT '',
	image      TEXT NOT NULL DEFAULT '',
	created_at INTEGER NOT NULL
);
CREATE TABLE IF NOT EXISTS documents (
	id         TEXT PRIMARY KEY,
	text       TEXT NOT NULL DEFAULT '',
	name       TEXT NOT NULL DEFAULT '',
	phone      TEXT NOT NULL DEFAULT '',
	location   TEXT NOT NULL DEFAULT '',
	created_at INTEGER NOT NULL
);
CREATE TABLE IF NOT EXISTS search_history (
	id           TEXT PRIMARY KEY,
	name_key     TEXT NOT NULL UNIQUE,
	name         TEXT NOT NULL,
	keyword      TEXT NOT NULL DEFAULT '',
	location     TEXT NOT NULL DEFAULT '',
	number       TEXT NOT NULL DEFAULT '',
	result_count INTEGER NOT NULL DEFAULT 0,
	created_at   INTEGER NOT NULL,
	updated_at   INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS search_history_updated ON search_history(updated_at DESC);
CREATE TABLE IF NOT EXISTS form_info (
	id         TEXT PRIMARY KEY,
	name       TEXT NOT NULL DEFAULT '',
	keyword    TEXT NOT NULL DEFAULT '',
	location   TEXT NOT NULL DEFAULT '',
	created_at INTEGER NOT NULL
);
`

// Store wraps a SQLite database connection.
type Store struct {
	conn   *sql.DB
	logger *slog.Logger
	now    func() time.Time
	Path   string
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) { s.logger = logger }
}

// Open opens (creating if needed) a SQLite database with WAL mode and
// applies the schema.
func Open(ctx context.Context, path string, opts ...Option) (*Store, error) {
	s := &Store{Path: path, logger: slog.Default(), now: time.Now}
	for _, opt := range opts {
		opt(s)
	}

	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}

	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	if path == ":memory:" {
		// Each connection to :memory: is a separate database.
		conn.SetMaxOpenConns(1)
	}

	for _, pragma := range []string{"PRAGMA journal_mode=WAL", "PRAGMA busy_timeout=5000"} {
		if _, err := conn.ExecContext(ctx, pragma); err != nil {
			conn.Close() //nolint:errcheck // already failing
			return nil, fmt.Errorf("%s: %w", pragma, err)
		}
	}
	if _, err := conn.ExecContext(ctx, schema); err != nil {
		conn.Close() //nolint:errcheck // already failing
		return nil, fmt.Errorf("applying schema: %w", err)
	}

	s.conn = conn
	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.conn.Close()
}

// Conn returns the underlying sql.DB for custom queries.
func (s *Store) Conn() *sql.DB {
	return s.conn
}

// withRetry runs fn, retrying while SQLite reports the database busy or
// the pool hands back a closed connection.
func (s *Store) withRetry(ctx context.Context, op string, fn func() error) error {
	return retry.Do(
		fn,
		retry.Context(ctx),
		retry.Attempts(3),
		retry.Delay(50*time.Millisecond),
		retry.MaxJitter(25*time.Millisecond),
		retry.RetryIf(isTransient),
		retry.OnRetry(func(n uint, err error) {
			s.logger.DebugContext(ctx, "retrying database operation", "op", op, "attempt", n+1, "error", err)
		}),
	)
}

func isTransient(err error) bool {
	if errors.Is(err, sql.ErrConnDone) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "database is locked") || strings.Contains(msg, "SQLITE_BUSY")
}

func millis(t time.Time) int64 { return t.UnixMilli() }

func fromMillis(ms int64) time.Time { return time.UnixMilli(ms).UTC() }
