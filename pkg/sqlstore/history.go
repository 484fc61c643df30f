package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/codeGROOVE-dev/sleuth/pkg/profile"
)

// HistoryLimit is how many entries ListHistory returns.
const HistoryLimit = 10

// RecordSearch upserts a history entry keyed by the lower-cased name. An
// existing entry keeps its id and creation time.
func (s *Store) RecordSearch(ctx context.Context, e profile.HistoryEntry) (profile.HistoryEntry, error) {
	name := strings.TrimSpace(e.Name)
	if name == "" {
		return profile.HistoryEntry{}, profile.ErrQueryRequired
	}
	now := millis(s.now())
	key := strings.ToLower(name)

	const upsert = `
INSERT INTO search_history (id, name_key, name, keyword, location, number, result_count, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(name_key) DO UPDATE SET
	name = excluded.name,
	keyword = excluded.keyword,
	location = excluded.location,
	number = excluded.number,
	result_count = excluded.result_count,
	updated_at = excluded.updated_at`

	var out profile.HistoryEntry
	err := s.withRetry(ctx, "record search", func() error {
		if _, err := s.conn.ExecContext(ctx, upsert,
			uuid.NewString(), key, name, e.Keyword, e.Location, e.Number, e.ResultCount, now, now); err != nil {
			return err
		}
		row := s.conn.QueryRowContext(ctx, historySelect+" WHERE name_key = ?", key)
		var err error
		out, err = scanHistory(row)
		return err
	})
	if err != nil {
		return profile.HistoryEntry{}, fmt.Errorf("record search: %w", err)
	}
	return out, nil
}

// ListHistory returns the most recently updated searches, newest first.
func (s *Store) ListHistory(ctx context.Context) ([]profile.HistoryEntry, error) {
	var out []profile.HistoryEntry
	err := s.withRetry(ctx, "list history", func() error {
		out = out[:0]
		rows, err := s.conn.QueryContext(ctx, historySelect+" ORDER BY updated_at DESC, rowid DESC LIMIT ?", HistoryLimit)
		if err != nil {
			return err
		}
		defer rows.Close() //nolint:errcheck // read-only
		for rows.Next() {
			e, err := scanHistory(rows)
			if err != nil {
				return err
			}
			out = append(out, e)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, fmt.Errorf("list history: %w", err)
	}
	return out, nil
}

// DeleteHistory removes one entry. It returns profile.ErrNotFound when no
// entry has that id.
func (s *Store) DeleteHistory(ctx context.Context, id string) error {
	var n int64
	err := s.withRetry(ctx, "delete history", func() error {
		res, err := s.conn.ExecContext(ctx, "DELETE FROM search_history WHERE id = ?", id)
		if err != nil {
			return err
		}
		n, err = res.RowsAffected()
		return err
	})
	if err != nil {
		return fmt.Errorf("delete history %s: %w", id, err)
	}
	if n == 0 {
		return fmt.Errorf("history %s: %w", id, profile.ErrNotFound)
	}
	return nil
}

// SaveFormInfo stores a form submission. At least one field must be set.
func (s *Store) SaveFormInfo(ctx context.Context, f profile.FormInfo) (profile.FormInfo, error) {
	f.Name = strings.TrimSpace(f.Name)
	f.Keyword = strings.TrimSpace(f.Keyword)
	f.Location = strings.TrimSpace(f.Location)
	if f.Name == "" && f.Keyword == "" && f.Location == "" {
		return profile.FormInfo{}, profile.ErrFormInfoRequired
	}
	f.ID = uuid.NewString()
	now := s.now()
	f.CreatedAt = fromMillis(millis(now))

	err := s.withRetry(ctx, "save form info", func() error {
		_, err := s.conn.ExecContext(ctx,
			"INSERT INTO form_info (id, name, keyword, location, created_at) VALUES (?, ?, ?, ?, ?)",
			f.ID, f.Name, f.Keyword, f.Location, millis(now))
		return err
	})
	if err != nil {
		return profile.FormInfo{}, fmt.Errorf("save form info: %w", err)
	}
	return f, nil
}

const historySelect = `SELECT id, name, keyword, location, number, result_count, created_at, updated_at FROM search_history`

type scanner interface {
	Scan(dest ...any) error
}

func scanHistory(sc scanner) (profile.HistoryEntry, error) {
	var (
		e                profile.HistoryEntry
		created, updated int64
	)
	err := sc.Scan(&e.ID, &e.Name, &e.Keyword, &e.Location, &e.Number, &e.ResultCount, &created, &updated)
	if errors.Is(err, sql.ErrNoRows) {
		return e, profile.ErrNotFound
	}
	if err != nil {
		return e, err
	}
	e.CreatedAt = fromMillis(created)
	e.UpdatedAt = fromMillis(updated)
	return e, nil
}
