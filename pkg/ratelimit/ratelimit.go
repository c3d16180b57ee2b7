package ratelimit

import (
	"sync"
	"time"
)

// Limiter enforces a sliding-window request limit per key. Keys are
// typically client IPs; entries for idle keys are dropped once their window
// empties so the map does not grow without bound.
type Limiter struct {
	mu      sync.Mutex
	limits  map[string][]time.Time
	window  time.Duration
	maxHits int
}

func NewLimiter(window time.Duration, maxHits int) *Limiter {
	return &Limiter{
		limits:  make(map[string][]time.Time),
		window:  window,
		maxHits: maxHits,
	}
}

// Allow records a hit for key and reports whether it is within the limit.
func (l *Limiter) Allow(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	windowStart := now.Add(-l.window)

	// Drop hits that fell out of the window
	hits := l.limits[key]
	valid := hits[:0]
	for _, hit := range hits {
		if hit.After(windowStart) {
			valid = append(valid, hit)
		}
	}

	if len(valid) >= l.maxHits {
		l.limits[key] = valid
		return false
	}

	l.limits[key] = append(valid, now)
	return true
}

// ActiveKeys reports how many keys currently hold hits inside the window,
// pruning the ones whose windows have emptied.
func (l *Limiter) ActiveKeys() int {
	l.mu.Lock()
	defer l.mu.Unlock()

	windowStart := time.Now().Add(-l.window)
	for key, hits := range l.limits {
		live := false
		for _, hit := range hits {
			if hit.After(windowStart) {
				live = true
				break
			}
		}
		if !live {
			delete(l.limits, key)
		}
	}
	return len(l.limits)
}
