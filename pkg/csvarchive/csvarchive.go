// Package csvarchive searches a directory of CSV exports as a local source.
package csvarchive

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"

	"github.com/codeGROOVE-dev/sleuth/pkg/contact"
	"github.com/codeGROOVE-dev/sleuth/pkg/localsearch"
	"github.com/codeGROOVE-dev/sleuth/pkg/profile"
)

// MaxMatchesPerFile caps the rows returned from any one file.
const MaxMatchesPerFile = 5

// Archive is a directory of CSV files with a header row each.
type Archive struct {
	logger *slog.Logger
	dir    string

	mu    sync.RWMutex
	files []string

	watcher *fsnotify.Watcher
}

// Option configures an Archive.
type Option func(*Archive)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(a *Archive) { a.logger = logger }
}

// New creates an Archive over dir. A missing directory is not an error; the
// archive is empty until files appear and Refresh or Watch picks them up.
func New(dir string, opts ...Option) *Archive {
	a := &Archive{dir: dir, logger: slog.Default()}
	for _, opt := range opts {
		opt(a)
	}
	a.Refresh()
	return a
}

// Name identifies the source in logs.
func (*Archive) Name() string { return "CSV" }

// Files returns the CSV file names currently known, sorted.
func (a *Archive) Files() []string {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return slices.Clone(a.files)
}

// Refresh rescans the directory for *.csv files.
func (a *Archive) Refresh() {
	entries, err := os.ReadDir(a.dir)
	if err != nil {
		a.logger.Warn("csv archive directory unreadable", "dir", a.dir, "error", err)
		entries = nil
	}
	var files []string
	for _, e := range entries {
		if !e.IsDir() && isCSV(e.Name()) {
			files = append(files, e.Name())
		}
	}
	slices.Sort(files)

	a.mu.Lock()
	a.files = files
	a.mu.Unlock()
	a.logger.Debug("csv archive refreshed", "dir", a.dir, "files", len(files))
}

// Watch refreshes the file list whenever a CSV file in the directory is
// created, removed or renamed. It returns once the watcher is registered;
// watching stops when ctx is done or Close is called.
func (a *Archive) Watch(ctx context.Context) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	if err := w.Add(a.dir); err != nil {
		w.Close() //nolint:errcheck // already failing
		return fmt.Errorf("watch %s: %w", a.dir, err)
	}
	a.mu.Lock()
	a.watcher = w
	a.mu.Unlock()

	go func() {
		defer w.Close() //nolint:errcheck // best effort
		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-w.Events:
				if !ok {
					return
				}
				if !isCSV(event.Name) || !event.Op.Has(fsnotify.Create) && !event.Op.Has(fsnotify.Remove) && !event.Op.Has(fsnotify.Rename) {
					continue
				}
				a.logger.DebugContext(ctx, "csv archive changed", "file", event.Name, "op", event.Op.String())
				a.Refresh()
			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				a.logger.WarnContext(ctx, "csv watcher error", "error", err)
			}
		}
	}()
	return nil
}

// Close stops the watcher, if any.
func (a *Archive) Close() error {
	a.mu.Lock()
	w := a.watcher
	a.watcher = nil
	a.mu.Unlock()
	if w == nil {
		return nil
	}
	return w.Close()
}

// Search scans every file. Name queries match against the row's name
// columns, phone queries against its phone columns.
func (a *Archive) Search(ctx context.Context, q localsearch.Query) ([]localsearch.Row, error) {
	var out []localsearch.Row
	for _, name := range a.Files() {
		if err := ctx.Err(); err != nil {
			return out, err
		}
		rows, err := a.searchFile(name, q)
		if err != nil {
			a.logger.WarnContext(ctx, "csv file unreadable", "file", name, "error", err)
			continue
		}
		out = append(out, rows...)
	}
	return out, nil
}

func (a *Archive) searchFile(name string, q localsearch.Query) ([]localsearch.Row, error) {
	f, err := os.Open(filepath.Join(a.dir, name))
	if err != nil {
		return nil, err
	}
	defer f.Close() //nolint:errcheck // read-only

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	r.LazyQuotes = true
	r.TrimLeadingSpace = true

	header, err := r.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	for i, h := range header {
		header[i] = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
	}

	origin := "CSV:" + name
	var out []localsearch.Row
	for line := 2; len(out) < MaxMatchesPerFile; line++ {
		rec, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			var perr *csv.ParseError
			if errors.As(err, &perr) {
				continue
			}
			return out, err
		}
		fields := make(map[string]any, len(header))
		for i, h := range header {
			if i < len(rec) && h != "" {
				fields[h] = strings.TrimSpace(rec[i])
			}
		}
		row := localsearch.Row{ID: fmt.Sprintf("%s:%d", name, line), Origin: origin, Fields: fields}
		if matches(row, q) {
			out = append(out, row)
		}
	}
	return out, nil
}

func matches(row localsearch.Row, q localsearch.Query) bool {
	rec := localsearch.Map(row, profile.TypeProfile, profile.PriorityProfile)
	if q.Type == contact.Phone {
		for _, p := range rec.PhoneNumbers {
			if allIn(p, q.Terms) {
				return true
			}
		}
		return false
	}
	if rec.Name == "" || rec.Name == localsearch.UnknownName {
		return false
	}
	return allIn(strings.ToLower(rec.Name), lower(q.Terms))
}

func allIn(s string, terms []string) bool {
	for _, t := range terms {
		if t == "" || !strings.Contains(s, t) {
			return false
		}
	}
	return true
}

func lower(terms []string) []string {
	out := make([]string, len(terms))
	for i, t := range terms {
		out[i] = strings.ToLower(strings.TrimSpace(t))
	}
	return out
}

func isCSV(name string) bool {
	return strings.EqualFold(filepath.Ext(name), ".csv")
}
