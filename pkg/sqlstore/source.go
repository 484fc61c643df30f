package sqlstore

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/codeGROOVE-dev/sleuth/pkg/contact"
	"github.com/codeGROOVE-dev/sleuth/pkg/localsearch"
)

// maxRows caps how many rows a single table search returns.
const maxRows = 50

// column maps a table column to the field name the record mapper knows.
type column struct {
	name  string
	field string
}

type tableSource struct {
	store  *Store
	origin string
	table  string
	cols   []column
}

// People returns the profile table as a search source.
func (s *Store) People() localsearch.Source {
	return &tableSource{store: s, origin: "SQLite", table: "people", cols: []column{
		{"name", "Name"},
		{"job_title", "JobTitle"},
		{"company", "CompanyName"},
		{"address", "Address"},
		{"email", "Email"},
		{"phone", "Number"},
		{"image", "Image"},
	}}
}

// Documents returns the internal document table as a search source.
func (s *Store) Documents() localsearch.Source {
	return &tableSource{store: s, origin: "Documents", table: "documents", cols: []column{
		{"text", "text"},
		{"name", "name"},
		{"phone", "phone"},
		{"location", "location"},
	}}
}

func (t *tableSource) Name() string { return t.origin }

// Search matches every term as a case-insensitive substring of the row's
// concatenated columns. Phone queries compare digits, which SQLite cannot
// normalize, so candidate rows are filtered in Go.
func (t *tableSource) Search(ctx context.Context, q localsearch.Query) ([]localsearch.Row, error) {
	names := make([]string, len(t.cols))
	for i, c := range t.cols {
		names[i] = c.name
	}
	query := fmt.Sprintf("SELECT id, %s FROM %s", strings.Join(names, ", "), t.table)

	var (
		where []string
		args  []any
	)
	if q.Type == contact.Phone {
		where = append(where, "phone != '' OR "+names[0]+" != ''")
	} else {
		hay := "lower(" + strings.Join(names, " || ' ' || ") + ")"
		for _, term := range q.Terms {
			where = append(where, hay+` LIKE ? ESCAPE '\'`)
			args = append(args, "%"+escapeLike(strings.ToLower(term))+"%")
		}
	}
	if len(where) > 0 {
		query += " WHERE (" + strings.Join(where, ") AND (") + ")"
	}
	query += " ORDER BY created_at"
	if q.Type != contact.Phone {
		query += fmt.Sprintf(" LIMIT %d", maxRows)
	}

	var out []localsearch.Row
	err := t.store.withRetry(ctx, "search "+t.table, func() error {
		out = out[:0]
		rows, err := t.store.conn.QueryContext(ctx, query, args...)
		if err != nil {
			return err
		}
		defer rows.Close() //nolint:errcheck // read-only

		for rows.Next() {
			row, err := t.scan(rows)
			if err != nil {
				return err
			}
			if q.Type == contact.Phone && !localsearch.MatchFields(row.Fields, q) {
				continue
			}
			out = append(out, row)
			if len(out) == maxRows {
				break
			}
		}
		return rows.Err()
	})
	if err != nil {
		return nil, fmt.Errorf("search %s: %w", t.table, err)
	}
	return out, nil
}

func (t *tableSource) scan(rows *sql.Rows) (localsearch.Row, error) {
	var id string
	vals := make([]string, len(t.cols))
	dest := make([]any, 0, len(t.cols)+1)
	dest = append(dest, &id)
	for i := range vals {
		dest = append(dest, &vals[i])
	}
	if err := rows.Scan(dest...); err != nil {
		return localsearch.Row{}, err
	}
	fields := make(map[string]any, len(t.cols))
	for i, c := range t.cols {
		if vals[i] != "" {
			fields[c.field] = vals[i]
		}
	}
	return localsearch.Row{ID: id, Origin: t.origin, Fields: fields}, nil
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}
