package server

import (
	"sync"
	"time"
)

// rateLimiter is a fixed-window in-process fallback used when the
// redis-backed limiter is not configured. Per-IP counters reset each
// window; state is lost on restart, which is acceptable for a
// single-instance deployment.
type rateLimiter struct {
	mu     sync.Mutex
	limit  int
	window time.Duration
	counts map[string]int
	reset  time.Time
}

func newRateLimiter(limit int, window time.Duration) *rateLimiter {
	return &rateLimiter{
		limit:  limit,
		window: window,
		counts: map[string]int{},
	}
}

func (r *rateLimiter) Allow(key string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	if now.After(r.reset) {
		r.counts = map[string]int{}
		r.reset = now.Add(r.window)
	}

	if r.counts[key] >= r.limit {
		return false
	}
	r.counts[key]++
	return true
}
