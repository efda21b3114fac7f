package orders

import (
	"errors"
	"fmt"
	"sync"
	"time"
)

// ErrRateLimited is wrapped by Limiter.Allow when a key is over its cap.
var ErrRateLimited = errors.New("order rate limit exceeded")

// Limiter caps order placements per key (a dashboard session) within a
// sliding one-hour window.
type Limiter struct {
	mu       sync.Mutex
	windows  map[string][]time.Time
	maxPerHr int
	window   time.Duration
}

// NewLimiter creates a limiter allowing maxPerHour placements per key.
// Pass 0 to disable; a nil *Limiter allows everything.
func NewLimiter(maxPerHour int) *Limiter {
	if maxPerHour <= 0 {
		return nil
	}
	return &Limiter{
		windows:  make(map[string][]time.Time),
		maxPerHr: maxPerHour,
		window:   time.Hour,
	}
}

// Allow records a placement for key, or returns an error wrapping
// ErrRateLimited if the key has used up its window.
func (l *Limiter) Allow(key string) error {
	if l == nil {
		return nil
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	entries := prune(l.windows[key], now.Add(-l.window))

	if len(entries) >= l.maxPerHr {
		l.windows[key] = entries
		return fmt.Errorf("%w: %d orders/hour", ErrRateLimited, l.maxPerHr)
	}

	l.windows[key] = append(entries, now)
	return nil
}

// Cleanup drops keys whose entries have all expired.
func (l *Limiter) Cleanup() {
	if l == nil {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	cutoff := time.Now().Add(-l.window)
	for key, entries := range l.windows {
		entries = prune(entries, cutoff)
		if len(entries) == 0 {
			delete(l.windows, key)
		} else {
			l.windows[key] = entries
		}
	}
}

func prune(entries []time.Time, cutoff time.Time) []time.Time {
	start := 0
	for start < len(entries) && entries[start].Before(cutoff) {
		start++
	}
	return entries[start:]
}
