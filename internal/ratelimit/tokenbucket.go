package ratelimit

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

type bucketEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// TokenBucket is the alternative admission strategy: a per-key token bucket
// refilled at limit/window. It tolerates short bursts up to the bucket size
// where the sliding window would reject, which is sometimes preferable for
// read-heavy traffic.
type TokenBucket struct {
	mu      sync.Mutex
	entries map[string]*bucketEntry
	limit   int
	window  time.Duration
}

func NewTokenBucket(limit int, window time.Duration) *TokenBucket {
	return &TokenBucket{
		entries: make(map[string]*bucketEntry),
		limit:   limit,
		window:  window,
	}
}

func (t *TokenBucket) Allow(_ context.Context, key string) (bool, error) {
	t.mu.Lock()
	entry, ok := t.entries[key]
	if !ok {
		entry = &bucketEntry{
			limiter: rate.NewLimiter(
				rate.Limit(float64(t.limit)/t.window.Seconds()),
				t.limit,
			),
		}
		t.entries[key] = entry
	}
	entry.lastSeen = time.Now()
	t.mu.Unlock()

	return entry.limiter.Allow(), nil
}

func (t *TokenBucket) Sweep(cutoff time.Time) int {
	t.mu.Lock()
	defer t.mu.Unlock()

	evicted := 0
	for key, entry := range t.entries {
		if entry.lastSeen.Before(cutoff) {
			delete(t.entries, key)
			evicted++
		}
	}
	return evicted
}
