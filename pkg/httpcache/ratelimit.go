package httpcache

import (
	"context"
	"strings"
	"sync"
	"time"
)

// rateLimiter spaces requests to each host at least minDelay apart.
type rateLimiter struct {
	overrides map[string]time.Duration
	minDelay  time.Duration

	mu   sync.Mutex
	next map[string]time.Time
}

func newRateLimiter(minDelay time.Duration) *rateLimiter {
	return &rateLimiter{
		overrides: map[string]time.Duration{},
		minDelay:  minDelay,
		next:      map[string]time.Time{},
	}
}

func (r *rateLimiter) delay(host string) time.Duration {
	if d, ok := r.overrides[host]; ok {
		return d
	}
	return r.minDelay
}

// wait reserves the host's next slot and sleeps until it arrives.
func (r *rateLimiter) wait(ctx context.Context, host string) error {
	host = strings.ToLower(host)
	d := r.delay(host)
	if host == "" || d <= 0 {
		return nil
	}

	r.mu.Lock()
	now := time.Now()
	slot := r.next[host]
	if slot.Before(now) {
		slot = now
	}
	r.next[host] = slot.Add(d)
	r.mu.Unlock()

	pause := time.Until(slot)
	if pause <= 0 {
		return nil
	}
	t := time.NewTimer(pause)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
