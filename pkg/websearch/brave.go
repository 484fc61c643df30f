package websearch

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/codeGROOVE-dev/sleuth/pkg/htmlutil"
	"github.com/codeGROOVE-dev/sleuth/pkg/httpcache"
	"github.com/codeGROOVE-dev/sleuth/pkg/profile"
)

const braveBaseURL = "https://api.search.brave.com/res/v1"

// Brave's API caps count per request.
const (
	braveMaxWeb    = 20
	braveMaxImages = 100
)

// Brave queries the Brave Search API.
// Free tier: 2,000 queries/month, 1 query/second.
type Brave struct {
	cfg    config
	apiKey string
}

type braveWebResponse struct {
	Web struct {
		Results []struct {
			Title       string `json:"title"`
			URL         string `json:"url"`
			Description string `json:"description"`
			Thumbnail   struct {
				Src string `json:"src"`
			} `json:"thumbnail"`
		} `json:"results"`
	} `json:"web"`
}

type braveImagesResponse struct {
	Results []struct {
		Title     string `json:"title"`
		URL       string `json:"url"`
		Source    string `json:"source"`
		Thumbnail struct {
			Src string `json:"src"`
		} `json:"thumbnail"`
		Properties struct {
			URL    string `json:"url"`
			Width  int    `json:"width"`
			Height int    `json:"height"`
		} `json:"properties"`
	} `json:"results"`
}

// NewBrave creates a Brave client.
func NewBrave(apiKey string, opts ...Option) *Brave {
	return &Brave{apiKey: apiKey, cfg: newConfig(braveBaseURL, opts)}
}

// LoadBraveAPIKey returns BRAVE_API_KEY, else the first line of ~/.brave,
// else "".
func LoadBraveAPIKey() string {
	if key := os.Getenv("BRAVE_API_KEY"); key != "" {
		return key
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	data, err := os.ReadFile(filepath.Join(home, ".brave"))
	if err != nil {
		return ""
	}
	line, _, _ := strings.Cut(string(data), "\n")
	return strings.TrimSpace(line)
}

// Search returns web results. Snippet markup is stripped.
func (b *Brave) Search(ctx context.Context, query string, count int) ([]profile.Hit, error) {
	data, err := b.get(ctx, "/web/search", query, min(count, braveMaxWeb))
	if err != nil {
		return nil, err
	}
	var resp braveWebResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, fmt.Errorf("decode brave search: %w", err)
	}
	hits := make([]profile.Hit, 0, len(resp.Web.Results))
	for _, r := range resp.Web.Results {
		h := profile.Hit{
			Title: htmlutil.StripTags(r.Title),
			Text:  htmlutil.StripTags(r.Description),
			URL:   r.URL,
		}
		if r.Thumbnail.Src != "" {
			h.Images = []string{r.Thumbnail.Src}
		}
		hits = append(hits, h)
	}
	b.cfg.logger.DebugContext(ctx, "brave search", "query", query, "results", len(hits))
	return hits, nil
}

// Images returns image results.
func (b *Brave) Images(ctx context.Context, query string, count int) ([]profile.ImageHit, error) {
	data, err := b.get(ctx, "/images/search", query, min(count, braveMaxImages))
	if err != nil {
		return nil, err
	}
	var resp braveImagesResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, fmt.Errorf("decode brave images: %w", err)
	}
	imgs := make([]profile.ImageHit, 0, len(resp.Results))
	for _, r := range resp.Results {
		imgs = append(imgs, profile.ImageHit{
			Title:        htmlutil.StripTags(r.Title),
			ImageURL:     r.Properties.URL,
			ThumbnailURL: r.Thumbnail.Src,
			SourceURL:    r.URL,
			Domain:       r.Source,
			Width:        r.Properties.Width,
			Height:       r.Properties.Height,
		})
	}
	b.cfg.logger.DebugContext(ctx, "brave images", "query", query, "results", len(imgs))
	return imgs, nil
}

func (b *Brave) get(ctx context.Context, path, query string, count int) ([]byte, error) {
	if b.apiKey == "" {
		return nil, fmt.Errorf("brave: %w", ErrNoAPIKey)
	}
	v := url.Values{}
	v.Set("q", query)
	v.Set("count", strconv.Itoa(count))
	endpoint := b.cfg.baseURL + path + "?" + v.Encode()

	data, err := b.cfg.client.Fetch(ctx, httpcache.Key("brave", path, query, strconv.Itoa(count)),
		func(ctx context.Context) (*http.Request, error) {
			req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, http.NoBody)
			if err != nil {
				return nil, err
			}
			req.Header.Set("Accept", "application/json")
			req.Header.Set("X-Subscription-Token", b.apiKey)
			return req, nil
		})
	if err != nil {
		return nil, fmt.Errorf("brave %s: %w", path, err)
	}
	return data, nil
}
