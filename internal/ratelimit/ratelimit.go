// Package ratelimit provides per-client admission control for the request
// pipeline. The default strategy is a sliding-window log: every admitted
// request timestamp is kept for the trailing window, so the limit holds
// exactly over any trailing interval, not just fixed buckets.
package ratelimit

import (
	"context"
	"sync"
	"time"
)

// Limiter decides whether a request identified by key is admitted now.
type Limiter interface {
	Allow(ctx context.Context, key string) (bool, error)
}

type windowEntry struct {
	stamps   []time.Time
	lastSeen time.Time
}

// SlidingWindow admits at most Limit requests per key within any trailing
// Window. State is guarded by a single mutex; the filter-then-append check
// for a key is one critical section, so the guarantee holds under
// concurrent callers.
type SlidingWindow struct {
	mu      sync.Mutex
	entries map[string]*windowEntry
	limit   int
	window  time.Duration
	now     func() time.Time
}

type SlidingWindowOption func(*SlidingWindow)

// WithClock replaces the wall clock, for tests.
func WithClock(now func() time.Time) SlidingWindowOption {
	return func(s *SlidingWindow) { s.now = now }
}

func NewSlidingWindow(limit int, window time.Duration, opts ...SlidingWindowOption) *SlidingWindow {
	s := &SlidingWindow{
		entries: make(map[string]*windowEntry),
		limit:   limit,
		window:  window,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Allow rescans the key's full timestamp log, drops entries older than the
// window, and admits unless the remaining count has reached the limit. A
// rejected request is not recorded, so rejections never extend the window.
func (s *SlidingWindow) Allow(_ context.Context, key string) (bool, error) {
	now := s.now()

	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.entries[key]
	if !ok {
		entry = &windowEntry{}
		s.entries[key] = entry
	}
	entry.lastSeen = now

	kept := entry.stamps[:0]
	for _, ts := range entry.stamps {
		if now.Sub(ts) < s.window {
			kept = append(kept, ts)
		}
	}
	entry.stamps = kept

	if len(entry.stamps) >= s.limit {
		return false, nil
	}

	entry.stamps = append(entry.stamps, now)
	return true, nil
}

// Sweep removes keys not seen since cutoff and returns how many were
// evicted. Without it the per-key table grows without bound as new client
// addresses appear.
func (s *SlidingWindow) Sweep(cutoff time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	evicted := 0
	for key, entry := range s.entries {
		if entry.lastSeen.Before(cutoff) {
			delete(s.entries, key)
			evicted++
		}
	}
	return evicted
}

// Keys reports the number of tracked client keys.
func (s *SlidingWindow) Keys() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}
