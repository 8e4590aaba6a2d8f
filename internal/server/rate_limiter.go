package server

import (
	"sync"
	"time"
)

// rateLimiter counts requests per account in fixed windows. Counts live
// in memory, so limits apply per process.
type rateLimiter struct {
	limit   int
	window  time.Duration
	mu      sync.Mutex
	buckets map[string]*bucket
}

type bucket struct {
	openedAt time.Time
	used     int
}

func newRateLimiter(limit int, window time.Duration) *rateLimiter {
	return &rateLimiter{
		limit:   limit,
		window:  window,
		buckets: make(map[string]*bucket),
	}
}

// Allow reports whether the keyed caller has budget left in the current
// window and consumes one unit when it does.
func (r *rateLimiter) Allow(key string) bool {
	if key == "" {
		return false
	}

	now := time.Now().UTC()
	r.mu.Lock()
	defer r.mu.Unlock()

	b := r.buckets[key]
	if b == nil || now.Sub(b.openedAt) > r.window {
		b = &bucket{openedAt: now}
		r.buckets[key] = b
	}
	if b.used >= r.limit {
		return false
	}
	b.used++
	return true
}
