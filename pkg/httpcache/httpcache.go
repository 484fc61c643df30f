// Package httpcache fetches provider responses with caching, per-host
// pacing and retry of transient failures.
package httpcache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/codeGROOVE-dev/retry"
	"github.com/codeGROOVE-dev/sfcache"
	"github.com/codeGROOVE-dev/sfcache/pkg/store/localfs"
	"github.com/codeGROOVE-dev/sfcache/pkg/store/null"

	"github.com/codeGROOVE-dev/sleuth/pkg/profile"
)

// UserAgent is sent with every request.
const UserAgent = "sleuth/1.0 (+https://github.com/codeGROOVE-dev/sleuth)"

// maxBody caps how much of a response body is read.
const maxBody = 8 << 20

// Cacher allows external cache implementations for sharing across packages.
type Cacher interface {
	GetSet(ctx context.Context, key string, fetch func(context.Context) ([]byte, error), ttl ...time.Duration) ([]byte, error)
	TTL() time.Duration
}

// Cache wraps sfcache for provider response caching.
type Cache struct {
	*sfcache.TieredCache[string, []byte]

	ttl time.Duration
}

// New creates a Cache with disk persistence in DefaultDir.
func New(ttl time.Duration) (*Cache, error) {
	return NewWithPath(ttl, DefaultDir())
}

// DefaultDir returns the persistence directory New uses.
func DefaultDir() string {
	cacheDir, err := os.UserCacheDir()
	if err != nil {
		cacheDir = os.TempDir()
	}
	return filepath.Join(cacheDir, "sleuth")
}

// Clear deletes every persisted entry under cachePath and returns how many
// files were removed. The directory itself is kept. A cache open on
// cachePath in another process keeps serving its in-memory entries.
func Clear(cachePath string) (int, error) {
	entries, err := os.ReadDir(cachePath)
	if errors.Is(err, os.ErrNotExist) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("read cache directory: %w", err)
	}
	n := 0
	for _, e := range entries {
		p := filepath.Join(cachePath, e.Name())
		err := filepath.WalkDir(p, func(_ string, d os.DirEntry, err error) error {
			if err == nil && !d.IsDir() {
				n++
			}
			return err
		})
		if err != nil {
			return n, fmt.Errorf("scan %s: %w", p, err)
		}
		if err := os.RemoveAll(p); err != nil {
			return n, fmt.Errorf("remove %s: %w", p, err)
		}
	}
	return n, nil
}

// NewNull creates a Cache with no persistence.
func NewNull() *Cache {
	tc, err := sfcache.NewTiered[string, []byte](null.New[string, []byte]())
	if err != nil {
		panic("sfcache.NewTiered with null store: " + err.Error())
	}
	return &Cache{TieredCache: tc}
}

// NewWithPath creates a Cache persisted at cachePath.
func NewWithPath(ttl time.Duration, cachePath string) (*Cache, error) {
	if err := os.MkdirAll(cachePath, 0o750); err != nil {
		return nil, fmt.Errorf("create cache directory: %w", err)
	}
	persist, err := localfs.New[string, []byte]("sleuth", cachePath)
	if err != nil {
		return nil, fmt.Errorf("create persistence layer: %w", err)
	}
	tc, err := sfcache.NewTiered[string, []byte](persist, sfcache.TTL(ttl))
	if err != nil {
		return nil, fmt.Errorf("create cache: %w", err)
	}
	return &Cache{TieredCache: tc, ttl: ttl}, nil
}

// TTL returns the default TTL for cache entries.
func (c *Cache) TTL() time.Duration {
	return c.ttl
}

// Key hashes a logical request identity into a cache key.
func Key(parts ...string) string {
	hash := sha256.Sum256([]byte(strings.Join(parts, "\x00")))
	return hex.EncodeToString(hash[:])
}

// HTTPError represents a non-200 response.
type HTTPError struct {
	URL        string
	StatusCode int
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("HTTP %d fetching %s", e.StatusCode, e.URL)
}

// Unwrap maps 429 responses to profile.ErrRateLimited.
func (e *HTTPError) Unwrap() error {
	if e.StatusCode == http.StatusTooManyRequests {
		return profile.ErrRateLimited
	}
	return nil
}

// Stats counts cache hits and misses.
type Stats struct {
	Hits   int64
	Misses int64
}

// Client performs cached, paced, retried fetches.
type Client struct {
	http    *http.Client
	cache   Cacher
	logger  *slog.Logger
	limiter *rateLimiter

	attempts uint
	budget   time.Duration

	hits, misses atomic.Int64
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithCache enables response caching. A nil Cacher disables it.
func WithCache(cache Cacher) Option {
	return func(c *Client) { c.cache = cache }
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) { c.logger = logger }
}

// WithMinDelay sets the minimum spacing between requests to one host.
func WithMinDelay(d time.Duration) Option {
	return func(c *Client) { c.limiter.minDelay = d }
}

// WithDomainDelay overrides the spacing for a single host.
func WithDomainDelay(host string, d time.Duration) Option {
	return func(c *Client) { c.limiter.overrides[strings.ToLower(host)] = d }
}

// WithRetry sets the attempt count and the total time allowed across
// attempts.
func WithRetry(attempts uint, budget time.Duration) Option {
	return func(c *Client) {
		c.attempts = attempts
		c.budget = budget
	}
}

// NewClient creates a Client. Without options it does not cache, spaces
// requests to a host 200ms apart and makes up to 3 attempts within 15s.
func NewClient(opts ...Option) *Client {
	c := &Client{
		http:     &http.Client{Timeout: 15 * time.Second},
		logger:   slog.Default(),
		limiter:  newRateLimiter(200 * time.Millisecond),
		attempts: 3,
		budget:   15 * time.Second,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Stats returns the hit and miss counts so far.
func (c *Client) Stats() Stats {
	return Stats{Hits: c.hits.Load(), Misses: c.misses.Load()}
}

// Fetch returns the body for the request that build creates. build is
// called once per attempt so request bodies can be replayed. Concurrent
// fetches of one key share a single request when caching is enabled.
// Permanent HTTP errors are cached; rate limits, 5xx and network errors
// are not.
func (c *Client) Fetch(ctx context.Context, key string, build func(context.Context) (*http.Request, error)) ([]byte, error) {
	if c.cache == nil {
		c.misses.Add(1)
		return c.do(ctx, build)
	}

	var fetched bool
	data, err := c.cache.GetSet(ctx, Key(key), func(ctx context.Context) ([]byte, error) {
		fetched = true
		c.misses.Add(1)
		c.logger.DebugContext(ctx, "cache miss", "key", key)
		body, err := c.do(ctx, build)
		var httpErr *HTTPError
		if errors.As(err, &httpErr) && !isRetryable(err) {
			return fmt.Appendf(nil, "ERROR:%d:%s", httpErr.StatusCode, httpErr.URL), nil
		}
		return body, err
	}, c.cache.TTL())
	if err != nil {
		return nil, err
	}
	if !fetched {
		c.hits.Add(1)
		c.logger.DebugContext(ctx, "cache hit", "key", key)
	}

	if rest, ok := strings.CutPrefix(string(data), "ERROR:"); ok {
		code, u, _ := strings.Cut(rest, ":")
		status, _ := strconv.Atoi(code) //nolint:errcheck // 0 is acceptable
		return nil, &HTTPError{URL: u, StatusCode: status}
	}
	return data, nil
}

func (c *Client) do(ctx context.Context, build func(context.Context) (*http.Request, error)) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, c.budget)
	defer cancel()

	return retry.DoWithData(
		func() ([]byte, error) {
			req, err := build(ctx)
			if err != nil {
				return nil, retry.Unrecoverable(fmt.Errorf("build request: %w", err))
			}
			if req.Header.Get("User-Agent") == "" {
				req.Header.Set("User-Agent", UserAgent)
			}
			if err := c.limiter.wait(ctx, req.URL.Host); err != nil {
				return nil, err
			}

			resp, err := c.http.Do(req)
			if err != nil {
				return nil, err
			}
			defer resp.Body.Close() //nolint:errcheck // read-only

			if resp.StatusCode != http.StatusOK {
				io.Copy(io.Discard, io.LimitReader(resp.Body, 4096)) //nolint:errcheck,gosec // drain for reuse
				return nil, &HTTPError{URL: req.URL.Redacted(), StatusCode: resp.StatusCode}
			}
			return io.ReadAll(io.LimitReader(resp.Body, maxBody))
		},
		retry.Context(ctx),
		retry.Attempts(c.attempts),
		retry.Delay(250*time.Millisecond),
		retry.MaxJitter(100*time.Millisecond),
		retry.RetryIf(isRetryable),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(n uint, err error) {
			c.logger.DebugContext(ctx, "retrying request", "attempt", n+1, "error", err)
		}),
	)
}

// isRetryable reports whether err is transient.
func isRetryable(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		switch httpErr.StatusCode {
		case http.StatusTooManyRequests,
			http.StatusInternalServerError,
			http.StatusBadGateway,
			http.StatusServiceUnavailable,
			http.StatusGatewayTimeout:
			return true
		default:
			return false
		}
	}
	return true
}
