// Package localsearch fans a query out to the local stores (people rows,
// internal documents, CSV archives) and merges their rows into records.
package localsearch

import (
	"context"
	"log/slog"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/codeGROOVE-dev/sleuth/pkg/contact"
	"github.com/codeGROOVE-dev/sleuth/pkg/profile"
	"github.com/codeGROOVE-dev/sleuth/pkg/textnorm"
)

// Query is what a Source matches rows against. Every term must appear,
// case-insensitively, in the row. For Phone queries the terms are digits
// and are compared against digit-normalized phone fields and text.
type Query struct {
	Terms []string
	Type  contact.InputType
}

// Source is a local store that can be searched.
type Source interface {
	Name() string
	Search(ctx context.Context, q Query) ([]Row, error)
}

// Tier assigns the record type and priority of a source's rows.
type Tier struct {
	Type     profile.RecordType
	Priority int
}

// Tiers for the built-in stores.
var (
	ProfileTier  = Tier{Type: profile.TypeProfile, Priority: profile.PriorityProfile}
	DocumentTier = Tier{Type: profile.TypeRecord, Priority: profile.PriorityDocument}
)

type tieredSource struct {
	Source
	tier Tier
}

// Aggregator searches every registered source concurrently.
type Aggregator struct {
	logger  *slog.Logger
	sources []tieredSource
}

// Option configures an Aggregator.
type Option func(*Aggregator)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(a *Aggregator) { a.logger = logger }
}

// WithSource adds a source whose rows get the given tier.
func WithSource(s Source, tier Tier) Option {
	return func(a *Aggregator) { a.sources = append(a.sources, tieredSource{Source: s, tier: tier}) }
}

// New creates an Aggregator.
func New(opts ...Option) *Aggregator {
	a := &Aggregator{logger: slog.Default()}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Search returns the de-duplicated records matching query. Name queries that
// find nothing are retried with the first two words, then with an AND of
// the first three significant words.
func (a *Aggregator) Search(ctx context.Context, query string, typ contact.InputType) []profile.Record {
	query = strings.TrimSpace(query)
	if query == "" || len(a.sources) == 0 {
		return nil
	}
	for i, q := range stages(query, typ) {
		recs := a.searchAll(ctx, q)
		if len(recs) > 0 {
			if i > 0 {
				a.logger.DebugContext(ctx, "local search matched on fallback", "query", query, "stage", i, "terms", q.Terms)
			}
			return recs
		}
	}
	return nil
}

// stages returns the progressively broader queries to try in order.
func stages(query string, typ contact.InputType) []Query {
	if typ == contact.Phone {
		return []Query{{Terms: []string{contact.NormalizePhone(query)}, Type: typ}}
	}
	out := []Query{{Terms: []string{query}, Type: typ}}
	words := strings.Fields(query)
	if len(words) > 2 {
		out = append(out, Query{Terms: []string{strings.Join(words[:2], " ")}, Type: typ})
	}
	var sig []string
	for _, w := range words {
		if len([]rune(w)) > 1 {
			sig = append(sig, w)
		}
	}
	if len(sig) > 3 {
		sig = sig[:3]
	}
	if len(sig) > 1 {
		out = append(out, Query{Terms: sig, Type: typ})
	}
	return out
}

func (a *Aggregator) searchAll(ctx context.Context, q Query) []profile.Record {
	results := make([][]profile.Record, len(a.sources))
	var g errgroup.Group
	for i, s := range a.sources {
		g.Go(func() error {
			rows, err := s.Search(ctx, q)
			if err != nil {
				a.logger.WarnContext(ctx, "local source failed", "source", s.Name(), "error", err)
				return nil
			}
			recs := make([]profile.Record, 0, len(rows))
			for _, row := range rows {
				recs = append(recs, Map(row, s.tier.Type, s.tier.Priority))
			}
			results[i] = recs
			return nil
		})
	}
	_ = g.Wait() //nolint:errcheck // branches never return errors

	var merged []profile.Record
	for _, recs := range results {
		merged = append(merged, recs...)
	}
	return Dedup(merged)
}

// Dedup drops records whose normalized text was already seen.
func Dedup(recs []profile.Record) []profile.Record {
	seen := make(map[string]bool, len(recs))
	out := make([]profile.Record, 0, len(recs))
	for _, r := range recs {
		k := textnorm.Normalize(r.Text)
		if seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, r)
	}
	return out
}

// MatchFields reports whether every term of q appears in fields. Sources
// that filter in memory (CSV) use it; SQL sources translate q to LIKE.
func MatchFields(fields map[string]any, q Query) bool {
	if q.Type == contact.Phone {
		for _, v := range fields {
			for _, s := range phoneValues(v) {
				if containsAll(contact.NormalizePhone(s), q.Terms) {
					return true
				}
			}
		}
		return false
	}
	var hay strings.Builder
	for _, v := range fields {
		for _, s := range values(v) {
			hay.WriteString(strings.ToLower(s))
			hay.WriteByte(' ')
		}
	}
	text := hay.String()
	for _, t := range q.Terms {
		if !strings.Contains(text, strings.ToLower(t)) {
			return false
		}
	}
	return true
}

func containsAll(s string, terms []string) bool {
	for _, t := range terms {
		if t == "" || !strings.Contains(s, t) {
			return false
		}
	}
	return true
}
