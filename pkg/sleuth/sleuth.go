// Package sleuth identifies people from a name or phone number by combining
// local records with web search results.
//
// Basic usage:
//
//	s := sleuth.New(
//	    sleuth.WithLocal(aggregator),
//	    sleuth.WithWeb(websearch.NewSerper(key)),
//	)
//	res, err := s.Identify(ctx, profile.IdentifyRequest{Name: "Elon Musk"})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	deep, err := s.DeepSearch(ctx, profile.DeepSearchRequest{Person: res.Candidates[0]})
//
// Every collaborator is optional. A missing or failing collaborator
// contributes nothing and the pipeline carries on with what it has.
package sleuth

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/codeGROOVE-dev/sleuth/pkg/avatar"
	"github.com/codeGROOVE-dev/sleuth/pkg/contact"
	"github.com/codeGROOVE-dev/sleuth/pkg/enrich"
	"github.com/codeGROOVE-dev/sleuth/pkg/profile"
	"github.com/codeGROOVE-dev/sleuth/pkg/textnorm"
	"github.com/codeGROOVE-dev/sleuth/pkg/webfilter"
	"github.com/codeGROOVE-dev/sleuth/pkg/websearch"
)

// Re-export common errors.
var (
	ErrQueryRequired  = profile.ErrQueryRequired
	ErrPersonRequired = profile.ErrPersonRequired
)

// LocalSearcher finds records in the local stores.
type LocalSearcher interface {
	Search(ctx context.Context, query string, t contact.InputType) []profile.Record
}

// History remembers identify queries.
type History interface {
	RecordSearch(ctx context.Context, e profile.HistoryEntry) (profile.HistoryEntry, error)
}

// Option configures a Sleuth.
type Option func(*Sleuth)

// Sleuth runs the identify, deep search and search pipelines.
//
//nolint:govet // fieldalignment: intentional layout for readability
type Sleuth struct {
	local    LocalSearcher
	web      websearch.WebSearcher
	images   websearch.ImageSearcher
	enricher enrich.Enricher
	history  History
	hasher   *avatar.Hasher
	logger   *slog.Logger

	enrichTimeout time.Duration
	webCount      int
	imageCount    int
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Sleuth) { s.logger = logger }
}

// WithLocal sets the local record searcher.
func WithLocal(l LocalSearcher) Option {
	return func(s *Sleuth) { s.local = l }
}

// WithWeb sets the web search provider.
func WithWeb(w websearch.WebSearcher) Option {
	return func(s *Sleuth) { s.web = w }
}

// WithImages sets the image search provider.
func WithImages(i websearch.ImageSearcher) Option {
	return func(s *Sleuth) { s.images = i }
}

// WithEnricher sets the model used to group hits into candidates and to
// summarize people. Without one, candidates come straight from hit titles.
func WithEnricher(e enrich.Enricher) Option {
	return func(s *Sleuth) { s.enricher = e }
}

// WithEnrichTimeout bounds each enrichment call. The default is
// enrich.DefaultTimeout.
func WithEnrichTimeout(d time.Duration) Option {
	return func(s *Sleuth) { s.enrichTimeout = d }
}

// WithHistory records every identify query.
func WithHistory(h History) Option {
	return func(s *Sleuth) { s.history = h }
}

// WithImageDedupe drops perceptually identical deep search images.
func WithImageDedupe(h *avatar.Hasher) Option {
	return func(s *Sleuth) { s.hasher = h }
}

// WithWebCount sets how many web results identify and deep search request
// per query.
func WithWebCount(n int) Option {
	return func(s *Sleuth) { s.webCount = n }
}

// WithImageCount sets how many image results deep search requests.
func WithImageCount(n int) Option {
	return func(s *Sleuth) { s.imageCount = n }
}

// New creates a Sleuth.
func New(opts ...Option) *Sleuth {
	s := &Sleuth{
		logger:        slog.Default(),
		enrichTimeout: enrich.DefaultTimeout,
		webCount:      websearch.SimpleCount,
		imageCount:    maxImages,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.enricher != nil {
		s.enricher = enrich.WithTimeout(s.enricher, s.enrichTimeout)
	}
	return s
}

func (s *Sleuth) searchLocal(ctx context.Context, query string, t contact.InputType) []profile.Record {
	if s.local == nil || strings.TrimSpace(query) == "" {
		return nil
	}
	return s.local.Search(ctx, query, t)
}

// searchWeb runs one web query and filters the hits against the name
// implied by the query.
func (s *Sleuth) searchWeb(ctx context.Context, query string, count int, mode webfilter.Mode) []profile.Hit {
	return s.filteredHits(ctx, query, targetName(query), count, mode)
}

// filteredHits runs query and keeps the hits that pass the filter for name,
// dropping repeated URLs.
func (s *Sleuth) filteredHits(ctx context.Context, query, name string, count int, mode webfilter.Mode) []profile.Hit {
	if s.web == nil {
		return nil
	}
	hits, err := s.web.Search(ctx, query, count)
	if err != nil {
		s.logger.WarnContext(ctx, "web search failed", "query", query, "error", err)
		return nil
	}
	kept := webfilter.Apply(hits, name, mode)
	s.logger.DebugContext(ctx, "web search", "query", query, "mode", mode, "raw", len(hits), "kept", len(kept))
	return mergeHits(kept)
}

// mergeHits concatenates hit lists, keeping the first hit per normalized
// URL. Hits without a URL are dropped.
func mergeHits(lists ...[]profile.Hit) []profile.Hit {
	seen := make(map[string]bool)
	var out []profile.Hit
	for _, hits := range lists {
		for _, h := range hits {
			key := textnorm.Normalize(h.URL)
			if key == "" || seen[key] {
				continue
			}
			seen[key] = true
			out = append(out, h)
		}
	}
	return out
}

// bareQuery strips a parenthesized site scope and site: operators.
func bareQuery(query string) string {
	query, _, _ = strings.Cut(query, "(")
	var words []string
	for _, w := range strings.Fields(query) {
		if !strings.HasPrefix(strings.ToLower(w), "site:") {
			words = append(words, w)
		}
	}
	return strings.Join(words, " ")
}

// targetName guesses the person's name from a query: its first two words
// longer than one character.
func targetName(query string) string {
	bare := bareQuery(query)
	var words []string
	for _, w := range strings.Fields(bare) {
		if len([]rune(w)) > 1 {
			words = append(words, w)
		}
	}
	switch {
	case len(words) >= 2:
		return words[0] + " " + words[1]
	case len(words) == 1:
		return words[0]
	}
	return bare
}

// join joins the non-empty trimmed parts with single spaces.
func join(parts ...string) string {
	return strings.Join(strings.Fields(strings.Join(parts, " ")), " ")
}
