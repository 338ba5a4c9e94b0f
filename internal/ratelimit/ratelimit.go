// Package ratelimit provides sliding-window rate limiting keyed by caller.
package ratelimit

import (
	"sync"
	"time"
)

// Limiter tracks request timestamps per key and admits a request only while
// fewer than limit requests fall inside the trailing window. State is
// in-process: a multi-instance deployment rate-limits per instance.
type Limiter struct {
	mu      sync.Mutex
	history map[string][]time.Time
	now     func() time.Time
}

// NewLimiter creates an empty limiter.
func NewLimiter() *Limiter {
	return &Limiter{
		history: make(map[string][]time.Time),
		now:     time.Now,
	}
}

// Allow records an attempt under key and reports whether it is admitted.
// Timestamps older than window are pruned first, so a burst stops being
// counted once it slides out of the window. Denied attempts are not recorded
// and therefore cannot extend the lockout.
func (l *Limiter) Allow(key string, limit int, window time.Duration) bool {
	if limit <= 0 {
		return false
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	cutoff := now.Add(-window)

	kept := l.history[key][:0]
	for _, ts := range l.history[key] {
		if ts.After(cutoff) {
			kept = append(kept, ts)
		}
	}

	if len(kept) >= limit {
		l.history[key] = kept
		return false
	}

	l.history[key] = append(kept, now)
	return true
}

// Reset forgets all attempts recorded under key.
func (l *Limiter) Reset(key string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.history, key)
}
