package httpcache

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/codeGROOVE-dev/sleuth/pkg/profile"
)

func getter(url string) func(context.Context) (*http.Request, error) {
	return func(ctx context.Context) (*http.Request, error) {
		return http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	}
}

// newTestClient returns a client without pacing and with fast retries.
func newTestClient(opts ...Option) *Client {
	return NewClient(append([]Option{WithMinDelay(0), WithRetry(3, 5*time.Second)}, opts...)...)
}

func TestFetchWithoutCache(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		if got := r.Header.Get("User-Agent"); got != UserAgent {
			t.Errorf("User-Agent = %q", got)
		}
		w.Write([]byte("hello")) //nolint:errcheck // test
	}))
	defer srv.Close()

	c := newTestClient()
	for range 2 {
		body, err := c.Fetch(context.Background(), "k", getter(srv.URL))
		if err != nil {
			t.Fatalf("Fetch: %v", err)
		}
		if string(body) != "hello" {
			t.Errorf("body = %q", body)
		}
	}
	if calls.Load() != 2 {
		t.Errorf("server calls = %d, want 2 without cache", calls.Load())
	}
	if s := c.Stats(); s.Misses != 2 || s.Hits != 0 {
		t.Errorf("Stats() = %+v", s)
	}
}

func TestFetchCaches(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.Write([]byte("cached")) //nolint:errcheck // test
	}))
	defer srv.Close()

	cache, err := NewWithPath(time.Hour, t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	c := newTestClient(WithCache(cache))
	for range 3 {
		body, err := c.Fetch(context.Background(), "serper|elon musk", getter(srv.URL))
		if err != nil {
			t.Fatal(err)
		}
		if string(body) != "cached" {
			t.Errorf("body = %q", body)
		}
	}
	if calls.Load() != 1 {
		t.Errorf("server calls = %d, want 1", calls.Load())
	}
	if s := c.Stats(); s.Misses != 1 || s.Hits != 2 {
		t.Errorf("Stats() = %+v, want 1 miss 2 hits", s)
	}
}

func TestFetchRetriesTransient(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte("ok")) //nolint:errcheck // test
	}))
	defer srv.Close()

	body, err := newTestClient().Fetch(context.Background(), "k", func(ctx context.Context) (*http.Request, error) {
		return http.NewRequestWithContext(ctx, http.MethodPost, srv.URL, strings.NewReader(`{"q":"x"}`))
	})
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if string(body) != "ok" || calls.Load() != 2 {
		t.Errorf("body = %q after %d calls", body, calls.Load())
	}
}

func TestFetchErrors(t *testing.T) {
	tests := []struct {
		name      string
		status    int
		wantCalls int32
		wantLimit bool
	}{
		{"not found is permanent", http.StatusNotFound, 1, false},
		{"unauthorized is permanent", http.StatusUnauthorized, 1, false},
		{"rate limit retried", http.StatusTooManyRequests, 3, true},
		{"server error retried", http.StatusBadGateway, 3, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var calls atomic.Int32
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				calls.Add(1)
				w.WriteHeader(tt.status)
			}))
			defer srv.Close()

			_, err := newTestClient().Fetch(context.Background(), "k", getter(srv.URL))
			var httpErr *HTTPError
			if !errors.As(err, &httpErr) || httpErr.StatusCode != tt.status {
				t.Fatalf("Fetch error = %v, want HTTP %d", err, tt.status)
			}
			if got := errors.Is(err, profile.ErrRateLimited); got != tt.wantLimit {
				t.Errorf("errors.Is(ErrRateLimited) = %v, want %v", got, tt.wantLimit)
			}
			if calls.Load() != tt.wantCalls {
				t.Errorf("server calls = %d, want %d", calls.Load(), tt.wantCalls)
			}
		})
	}
}

func TestFetchCachesPermanentErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	cache, err := NewWithPath(time.Hour, t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	c := newTestClient(WithCache(cache))
	for range 2 {
		_, err := c.Fetch(context.Background(), "forbidden", getter(srv.URL))
		var httpErr *HTTPError
		if !errors.As(err, &httpErr) || httpErr.StatusCode != http.StatusForbidden {
			t.Fatalf("Fetch error = %v, want HTTP 403", err)
		}
	}
	if calls.Load() != 1 {
		t.Errorf("server calls = %d, want 1", calls.Load())
	}
}

func TestFetchBuildError(t *testing.T) {
	_, err := newTestClient().Fetch(context.Background(), "k", func(context.Context) (*http.Request, error) {
		return nil, errors.New("no key")
	})
	if err == nil || !strings.Contains(err.Error(), "no key") {
		t.Errorf("Fetch error = %v, want build error", err)
	}
}

func TestRateLimiterSpacing(t *testing.T) {
	r := newRateLimiter(0)
	r.overrides["api.example.com"] = 50 * time.Millisecond

	start := time.Now()
	for range 3 {
		if err := r.wait(context.Background(), "API.example.com"); err != nil {
			t.Fatal(err)
		}
	}
	if elapsed := time.Since(start); elapsed < 100*time.Millisecond {
		t.Errorf("three waits took %v, want >= 100ms", elapsed)
	}

	start = time.Now()
	for range 3 {
		if err := r.wait(context.Background(), "other.example.com"); err != nil {
			t.Fatal(err)
		}
	}
	if elapsed := time.Since(start); elapsed > 50*time.Millisecond {
		t.Errorf("unpaced host took %v", elapsed)
	}
}

func TestRateLimiterCanceled(t *testing.T) {
	r := newRateLimiter(time.Hour)
	ctx, cancel := context.WithCancel(context.Background())
	if err := r.wait(ctx, "example.com"); err != nil {
		t.Fatal(err)
	}
	cancel()
	if err := r.wait(ctx, "example.com"); !errors.Is(err, context.Canceled) {
		t.Errorf("wait after cancel = %v, want context.Canceled", err)
	}
}

func TestKey(t *testing.T) {
	if Key("serper", "a b") == Key("serper a", "b") {
		t.Error("Key should separate parts")
	}
	if Key("x") != Key("x") {
		t.Error("Key should be deterministic")
	}
}

func TestClear(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"a.entry", "b.entry", filepath.Join("shard", "c.entry")} {
		p := filepath.Join(dir, name)
		if err := os.MkdirAll(filepath.Dir(p), 0o750); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(p, []byte("cached"), 0o600); err != nil {
			t.Fatal(err)
		}
	}

	n, err := Clear(dir)
	if err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if n != 3 {
		t.Errorf("Clear removed %d files, want 3", n)
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("cache directory removed: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("cache directory still holds %d entries", len(entries))
	}

	if n, err := Clear(filepath.Join(dir, "missing")); err != nil || n != 0 {
		t.Errorf("Clear(missing) = %d, %v, want 0, nil", n, err)
	}
}
