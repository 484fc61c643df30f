// Package websearch wraps the web and image search APIs.
package websearch

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/codeGROOVE-dev/sleuth/pkg/httpcache"
	"github.com/codeGROOVE-dev/sleuth/pkg/profile"
)

// ErrNoAPIKey is returned when a provider is used without credentials.
var ErrNoAPIKey = errors.New("search API key not configured")

// Result counts per search mode.
const (
	SimpleCount = 20
	StrictCount = 40
)

// SiteScope restricts a query to the profile sites that matter for
// identification.
const SiteScope = "(site:linkedin.com/in/ OR site:instagram.com OR site:facebook.com OR " +
	"site:twitter.com OR site:x.com OR site:crunchbase.com/person/)"

// WebSearcher returns organic web results.
type WebSearcher interface {
	Search(ctx context.Context, query string, count int) ([]profile.Hit, error)
}

// ImageSearcher returns image results.
type ImageSearcher interface {
	Images(ctx context.Context, query string, count int) ([]profile.ImageHit, error)
}

// Scoped appends SiteScope to query.
func Scoped(query string) string {
	query = strings.TrimSpace(query)
	if query == "" {
		return SiteScope
	}
	return query + " " + SiteScope
}

// Option configures a provider.
type Option func(*config)

type config struct {
	client  *httpcache.Client
	logger  *slog.Logger
	baseURL string
}

// WithClient sets the fetch client shared with other providers.
func WithClient(c *httpcache.Client) Option {
	return func(cfg *config) { cfg.client = c }
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(cfg *config) { cfg.logger = logger }
}

// WithBaseURL overrides the API root, for proxies.
func WithBaseURL(u string) Option {
	return func(cfg *config) { cfg.baseURL = strings.TrimRight(u, "/") }
}

func newConfig(baseURL string, opts []Option) config {
	cfg := config{logger: slog.Default(), baseURL: baseURL}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.client == nil {
		cfg.client = httpcache.NewClient(httpcache.WithLogger(cfg.logger))
	}
	return cfg
}
