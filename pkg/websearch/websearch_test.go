package websearch

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/codeGROOVE-dev/sleuth/pkg/httpcache"
	"github.com/codeGROOVE-dev/sleuth/pkg/profile"
)

// mockTransport redirects all requests to the test server.
type mockTransport struct {
	server *httptest.Server
}

func (m *mockTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req.URL.Scheme = "http"
	req.URL.Host = m.server.Listener.Addr().String()
	return http.DefaultTransport.RoundTrip(req)
}

func testClient(srv *httptest.Server) *httpcache.Client {
	return httpcache.NewClient(
		httpcache.WithHTTPClient(&http.Client{Transport: &mockTransport{server: srv}, Timeout: 5 * time.Second}),
		httpcache.WithMinDelay(0),
		httpcache.WithRetry(1, 5*time.Second),
	)
}

func TestSerperSearch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/search" {
			t.Errorf("request = %s %s", r.Method, r.URL.Path)
		}
		if r.Header.Get("X-API-KEY") != "test-key" {
			t.Errorf("expected X-API-KEY header")
		}
		var req serperRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if req.Q != "Elon Musk" || req.Num != StrictCount {
			t.Errorf("request body = %+v", req)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"organic":[
			{"title":"Elon Musk - CEO - Tesla | LinkedIn","link":"https://www.linkedin.com/in/elonmusk","snippet":"Austin, Texas","imageUrl":"https://media.licdn.com/em.jpg"},
			{"title":"Elon Musk","link":"https://en.wikipedia.org/wiki/Elon_Musk","snippet":"Businessman"}
		]}`))
	}))
	defer srv.Close()

	s := NewSerper("test-key", WithClient(testClient(srv)))
	hits, err := s.Search(context.Background(), "Elon Musk", StrictCount)
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	want := []profile.Hit{
		{Title: "Elon Musk - CEO - Tesla | LinkedIn", Text: "Austin, Texas", URL: "https://www.linkedin.com/in/elonmusk", Images: []string{"https://media.licdn.com/em.jpg"}},
		{Title: "Elon Musk", Text: "Businessman", URL: "https://en.wikipedia.org/wiki/Elon_Musk"},
	}
	if diff := cmp.Diff(want, hits); diff != "" {
		t.Errorf("Search() mismatch (-want +got):\n%s", diff)
	}
}

func TestSerperImages(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/images" {
			t.Errorf("path = %s", r.URL.Path)
		}
		w.Write([]byte(`{"images":[{"title":"Elon Musk headshot","imageUrl":"https://a.example/e.jpg",
			"imageWidth":400,"imageHeight":500,"thumbnailUrl":"https://t.example/e.jpg",
			"source":"Forbes","domain":"www.forbes.com","link":"https://www.forbes.com/profile/elon-musk/"}]}`))
	}))
	defer srv.Close()

	imgs, err := NewSerper("k", WithClient(testClient(srv))).Images(context.Background(), "Elon Musk", 10)
	if err != nil {
		t.Fatal(err)
	}
	want := []profile.ImageHit{{
		Title: "Elon Musk headshot", ImageURL: "https://a.example/e.jpg", ThumbnailURL: "https://t.example/e.jpg",
		SourceURL: "https://www.forbes.com/profile/elon-musk/", Domain: "www.forbes.com", Width: 400, Height: 500,
	}}
	if diff := cmp.Diff(want, imgs); diff != "" {
		t.Errorf("Images() mismatch (-want +got):\n%s", diff)
	}
}

func TestBraveSearch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("X-Subscription-Token") != "test-key" {
			t.Errorf("expected X-Subscription-Token header")
		}
		if r.Header.Get("Accept") != "application/json" {
			t.Errorf("expected Accept header")
		}
		if r.URL.Path != "/res/v1/web/search" || r.URL.Query().Get("q") != "Dan Lorenc" || r.URL.Query().Get("count") != "20" {
			t.Errorf("request = %s", r.URL)
		}
		json.NewEncoder(w).Encode(map[string]any{ //nolint:errcheck // test
			"web": map[string]any{"results": []map[string]any{{
				"title":       "Dan Lorenc - Chainguard, Inc | LinkedIn",
				"url":         "https://www.linkedin.com/in/danlorenc",
				"description": "<strong>CEO</strong> and co-founder of Chainguard &amp; more.",
			}}},
		})
	}))
	defer srv.Close()

	hits, err := NewBrave("test-key", WithClient(testClient(srv))).Search(context.Background(), "Dan Lorenc", StrictCount)
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	want := []profile.Hit{{
		Title: "Dan Lorenc - Chainguard, Inc | LinkedIn",
		Text:  "CEO and co-founder of Chainguard & more.",
		URL:   "https://www.linkedin.com/in/danlorenc",
	}}
	if diff := cmp.Diff(want, hits); diff != "" {
		t.Errorf("Search() mismatch (-want +got):\n%s", diff)
	}
}

func TestBraveImages(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/res/v1/images/search" {
			t.Errorf("path = %s", r.URL.Path)
		}
		w.Write([]byte(`{"results":[{"title":"Dan Lorenc","url":"https://chainguard.dev/team",
			"source":"chainguard.dev","thumbnail":{"src":"https://imgs.search.brave.com/t.jpg"},
			"properties":{"url":"https://chainguard.dev/dan.jpg","width":300,"height":300}}]}`))
	}))
	defer srv.Close()

	imgs, err := NewBrave("k", WithClient(testClient(srv))).Images(context.Background(), "Dan Lorenc", 10)
	if err != nil {
		t.Fatal(err)
	}
	want := []profile.ImageHit{{
		Title: "Dan Lorenc", ImageURL: "https://chainguard.dev/dan.jpg", ThumbnailURL: "https://imgs.search.brave.com/t.jpg",
		SourceURL: "https://chainguard.dev/team", Domain: "chainguard.dev", Width: 300, Height: 300,
	}}
	if diff := cmp.Diff(want, imgs); diff != "" {
		t.Errorf("Images() mismatch (-want +got):\n%s", diff)
	}
}

func TestProviderErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error": "invalid api key"}`)) //nolint:errcheck // test
	}))
	defer srv.Close()

	if _, err := NewBrave("bad-key", WithClient(testClient(srv))).Search(context.Background(), "q", 10); err == nil {
		t.Error("expected error for 401 response")
	}
	if _, err := NewSerper("", WithClient(testClient(srv))).Search(context.Background(), "q", 10); !errors.Is(err, ErrNoAPIKey) {
		t.Errorf("Serper without key = %v, want ErrNoAPIKey", err)
	}
	if _, err := NewBrave("").Images(context.Background(), "q", 10); !errors.Is(err, ErrNoAPIKey) {
		t.Errorf("Brave without key = %v, want ErrNoAPIKey", err)
	}
}

func TestScoped(t *testing.T) {
	if got, want := Scoped(" Elon Musk "), "Elon Musk "+SiteScope; got != want {
		t.Errorf("Scoped() = %q, want %q", got, want)
	}
	if got := Scoped(""); got != SiteScope {
		t.Errorf("Scoped(\"\") = %q", got)
	}
}

func TestLoadBraveAPIKey(t *testing.T) {
	t.Run("from_env", func(t *testing.T) {
		t.Setenv("BRAVE_API_KEY", "env-key-123")
		if key := LoadBraveAPIKey(); key != "env-key-123" {
			t.Errorf("expected env-key-123, got %q", key)
		}
	})

	t.Run("from_file", func(t *testing.T) {
		tmpHome := t.TempDir()
		if err := os.WriteFile(filepath.Join(tmpHome, ".brave"), []byte("file-key-456\nignored\n"), 0o600); err != nil {
			t.Fatalf("write .brave file: %v", err)
		}
		t.Setenv("BRAVE_API_KEY", "")
		t.Setenv("HOME", tmpHome)
		if key := LoadBraveAPIKey(); key != "file-key-456" {
			t.Errorf("expected file-key-456, got %q", key)
		}
	})

	t.Run("returns_empty_when_not_found", func(t *testing.T) {
		t.Setenv("BRAVE_API_KEY", "")
		t.Setenv("HOME", t.TempDir())
		if key := LoadBraveAPIKey(); key != "" {
			t.Errorf("expected empty string, got %q", key)
		}
	})
}
