package websearch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/codeGROOVE-dev/sleuth/pkg/httpcache"
	"github.com/codeGROOVE-dev/sleuth/pkg/profile"
)

const serperBaseURL = "https://google.serper.dev"

// Serper queries Google through the serper.dev API.
type Serper struct {
	cfg    config
	apiKey string
}

type serperRequest struct {
	Q   string `json:"q"`
	Num int    `json:"num"`
}

type serperSearchResponse struct {
	Organic []struct {
		Title    string `json:"title"`
		Link     string `json:"link"`
		Snippet  string `json:"snippet"`
		ImageURL string `json:"imageUrl"`
	} `json:"organic"`
}

type serperImagesResponse struct {
	Images []struct {
		Title        string `json:"title"`
		ImageURL     string `json:"imageUrl"`
		ImageWidth   int    `json:"imageWidth"`
		ImageHeight  int    `json:"imageHeight"`
		ThumbnailURL string `json:"thumbnailUrl"`
		Source       string `json:"source"`
		Domain       string `json:"domain"`
		Link         string `json:"link"`
	} `json:"images"`
}

// NewSerper creates a Serper client.
func NewSerper(apiKey string, opts ...Option) *Serper {
	return &Serper{apiKey: apiKey, cfg: newConfig(serperBaseURL, opts)}
}

// Search returns organic results.
func (s *Serper) Search(ctx context.Context, query string, count int) ([]profile.Hit, error) {
	data, err := s.post(ctx, "/search", query, count)
	if err != nil {
		return nil, err
	}
	var resp serperSearchResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, fmt.Errorf("decode serper search: %w", err)
	}
	hits := make([]profile.Hit, 0, len(resp.Organic))
	for _, r := range resp.Organic {
		h := profile.Hit{Title: r.Title, Text: r.Snippet, URL: r.Link}
		if r.ImageURL != "" {
			h.Images = []string{r.ImageURL}
		}
		hits = append(hits, h)
	}
	s.cfg.logger.DebugContext(ctx, "serper search", "query", query, "results", len(hits))
	return hits, nil
}

// Images returns image results.
func (s *Serper) Images(ctx context.Context, query string, count int) ([]profile.ImageHit, error) {
	data, err := s.post(ctx, "/images", query, count)
	if err != nil {
		return nil, err
	}
	var resp serperImagesResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, fmt.Errorf("decode serper images: %w", err)
	}
	imgs := make([]profile.ImageHit, 0, len(resp.Images))
	for _, r := range resp.Images {
		src := r.Link
		if src == "" {
			src = r.Source
		}
		imgs = append(imgs, profile.ImageHit{
			Title:        r.Title,
			ImageURL:     r.ImageURL,
			ThumbnailURL: r.ThumbnailURL,
			SourceURL:    src,
			Domain:       r.Domain,
			Width:        r.ImageWidth,
			Height:       r.ImageHeight,
		})
	}
	s.cfg.logger.DebugContext(ctx, "serper images", "query", query, "results", len(imgs))
	return imgs, nil
}

func (s *Serper) post(ctx context.Context, path, query string, count int) ([]byte, error) {
	if s.apiKey == "" {
		return nil, fmt.Errorf("serper: %w", ErrNoAPIKey)
	}
	body, err := json.Marshal(serperRequest{Q: query, Num: count})
	if err != nil {
		return nil, fmt.Errorf("encode serper request: %w", err)
	}
	data, err := s.cfg.client.Fetch(ctx, httpcache.Key("serper", path, query, strconv.Itoa(count)),
		func(ctx context.Context) (*http.Request, error) {
			req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.cfg.baseURL+path, bytes.NewReader(body))
			if err != nil {
				return nil, err
			}
			req.Header.Set("Content-Type", "application/json")
			req.Header.Set("X-API-KEY", s.apiKey)
			return req, nil
		})
	if err != nil {
		return nil, fmt.Errorf("serper %s: %w", path, err)
	}
	return data, nil
}
