// Package avatar compares images by perceptual hash so near-duplicate
// photos of a person can be collapsed.
package avatar

import (
	"bytes"
	"context"
	"encoding/binary"
	"image"
	_ "image/gif"  // GIF support
	_ "image/jpeg" // JPEG support
	_ "image/png"  // PNG support
	"log/slog"
	"math/bits"
	"net/http"
	"strings"
	"time"

	"github.com/corona10/goimagehash"
	"golang.org/x/sync/errgroup"

	"github.com/codeGROOVE-dev/sleuth/pkg/httpcache"
)

// MaxDistance is the largest Hamming distance (of 64 bits) at which two
// hashes count as the same picture.
const MaxDistance = 10

// fetchTimeout bounds one image download.
const fetchTimeout = 5 * time.Second

// Hasher downloads images and computes their difference hashes.
type Hasher struct {
	client *httpcache.Client
	cache  httpcache.Cacher
	logger *slog.Logger
	limit  int
}

// Option configures a Hasher.
type Option func(*Hasher)

// WithClient sets the fetch client.
func WithClient(c *httpcache.Client) Option {
	return func(h *Hasher) { h.client = c }
}

// WithCache memoizes computed hashes.
func WithCache(c httpcache.Cacher) Option {
	return func(h *Hasher) { h.cache = c }
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(h *Hasher) { h.logger = logger }
}

// WithConcurrency sets how many images are fetched at once.
func WithConcurrency(n int) Option {
	return func(h *Hasher) { h.limit = n }
}

// New creates a Hasher.
func New(opts ...Option) *Hasher {
	h := &Hasher{logger: slog.Default(), limit: 6}
	for _, opt := range opts {
		opt(h)
	}
	if h.client == nil {
		h.client = httpcache.NewClient(httpcache.WithLogger(h.logger), httpcache.WithRetry(1, fetchTimeout))
	}
	return h
}

// Hash fetches an image and computes its perceptual hash.
// Returns 0 on any error (network, decode, unsupported format) and for
// placeholder images.
func (h *Hasher) Hash(ctx context.Context, imageURL string) uint64 {
	if imageURL == "" || isPlaceholder(imageURL) {
		return 0
	}
	if h.cache == nil {
		return h.compute(ctx, imageURL)
	}
	data, err := h.cache.GetSet(ctx, httpcache.Key("phash", imageURL), func(ctx context.Context) ([]byte, error) {
		return binary.LittleEndian.AppendUint64(nil, h.compute(ctx, imageURL)), nil
	}, h.cache.TTL())
	if err != nil || len(data) != 8 {
		return h.compute(ctx, imageURL)
	}
	return binary.LittleEndian.Uint64(data)
}

func (h *Hasher) compute(ctx context.Context, imageURL string) uint64 {
	ctx, cancel := context.WithTimeout(ctx, fetchTimeout)
	defer cancel()

	body, err := h.client.Fetch(ctx, "image|"+imageURL, func(ctx context.Context) (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, imageURL, http.NoBody)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Accept", "image/webp,image/png,image/jpeg,image/gif,*/*")
		return req, nil
	})
	if err != nil {
		h.logger.DebugContext(ctx, "image fetch failed", "url", imageURL, "error", err)
		return 0
	}

	img, _, err := image.Decode(bytes.NewReader(body))
	if err != nil {
		h.logger.DebugContext(ctx, "image decode failed", "url", imageURL, "error", err)
		return 0
	}
	hash, err := goimagehash.DifferenceHash(img)
	if err != nil {
		h.logger.DebugContext(ctx, "image hash failed", "url", imageURL, "error", err)
		return 0
	}
	return hash.GetHash()
}

// Dedupe drops every image that looks like an earlier one. Images that
// cannot be hashed are kept. Order is preserved.
func (h *Hasher) Dedupe(ctx context.Context, urls []string) []string {
	hashes := make([]uint64, len(urls))
	var g errgroup.Group
	g.SetLimit(h.limit)
	for i, u := range urls {
		g.Go(func() error {
			hashes[i] = h.Hash(ctx, u)
			return nil
		})
	}
	_ = g.Wait() //nolint:errcheck // branches never return errors

	out := make([]string, 0, len(urls))
	var kept []uint64
	for i, u := range urls {
		if dup(hashes[i], kept) {
			h.logger.DebugContext(ctx, "dropping duplicate image", "url", u)
			continue
		}
		if hashes[i] != 0 {
			kept = append(kept, hashes[i])
		}
		out = append(out, u)
	}
	return out
}

func dup(hash uint64, kept []uint64) bool {
	for _, k := range kept {
		if Similar(hash, k) {
			return true
		}
	}
	return false
}

// Similar reports whether two hashes are perceptually similar. Zero means
// unknown and never matches.
func Similar(a, b uint64) bool {
	if a == 0 || b == 0 {
		return false
	}
	return Distance(a, b) <= MaxDistance
}

// Distance returns the Hamming distance between two hashes.
func Distance(a, b uint64) int {
	return bits.OnesCount64(a ^ b)
}

// isPlaceholder reports URLs whose path marks a default or generated image.
// Query parameters are ignored: Gravatar's d= is only a fallback.
func isPlaceholder(rawURL string) bool {
	path, _, _ := strings.Cut(strings.ToLower(rawURL), "?")
	for _, marker := range []string{"identicon", "default", "placeholder", "blank-profile"} {
		if strings.Contains(path, marker) {
			return true
		}
	}
	return false
}
