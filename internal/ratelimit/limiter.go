// Package ratelimit implements fixed-window request throttling keyed by
// operation class and client identity.
package ratelimit

import (
	"context"
	"sync"
	"time"
)

// SweepInterval is how often expired windows are dropped.
const SweepInterval = 5 * time.Minute

type window struct {
	mu      sync.Mutex
	count   int
	resetAt time.Time
	dead    bool
}

// Limiter tracks one counter per key. Check-and-increment is atomic per key;
// distinct keys only share the map lookup.
type Limiter struct {
	mu      sync.RWMutex
	windows map[string]*window
	now     func() time.Time
}

func New() *Limiter {
	return &Limiter{
		windows: make(map[string]*window),
		now:     time.Now,
	}
}

// WithClock replaces the time source. Used by tests.
func (l *Limiter) WithClock(now func() time.Time) *Limiter {
	l.now = now
	return l
}

// Check counts one request against key. A missing or elapsed window starts
// over at 1 and is allowed; otherwise the request is allowed while the count
// is below max.
func (l *Limiter) Check(key string, max int, win time.Duration) bool {
	for {
		w := l.lookup(key, true)
		w.mu.Lock()
		if w.dead {
			// swept between lookup and lock
			w.mu.Unlock()
			continue
		}
		now := l.now()
		if w.resetAt.IsZero() || !now.Before(w.resetAt) {
			w.count = 1
			w.resetAt = now.Add(win)
			w.mu.Unlock()
			return true
		}
		if w.count >= max {
			w.mu.Unlock()
			return false
		}
		w.count++
		w.mu.Unlock()
		return true
	}
}

// Remaining reports how many more requests key may make in its current window.
func (l *Limiter) Remaining(key string, max int) int {
	w := l.lookup(key, false)
	if w == nil {
		return max
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.dead || !l.now().Before(w.resetAt) {
		return max
	}
	if n := max - w.count; n > 0 {
		return n
	}
	return 0
}

// ResetAt reports when the current window for key ends. The zero time means
// there is no active window.
func (l *Limiter) ResetAt(key string) time.Time {
	w := l.lookup(key, false)
	if w == nil {
		return time.Time{}
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.dead || !l.now().Before(w.resetAt) {
		return time.Time{}
	}
	return w.resetAt
}

func (l *Limiter) lookup(key string, create bool) *window {
	l.mu.RLock()
	w := l.windows[key]
	l.mu.RUnlock()
	if w != nil || !create {
		return w
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if w = l.windows[key]; w == nil {
		w = &window{}
		l.windows[key] = w
	}
	return w
}

// Sweep drops every window whose period has ended and returns how many were removed.
func (l *Limiter) Sweep() int {
	now := l.now()
	l.mu.Lock()
	defer l.mu.Unlock()
	removed := 0
	for key, w := range l.windows {
		w.mu.Lock()
		if !w.resetAt.IsZero() && !now.Before(w.resetAt) {
			w.dead = true
			delete(l.windows, key)
			removed++
		}
		w.mu.Unlock()
	}
	return removed
}

// Len returns the number of tracked windows.
func (l *Limiter) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.windows)
}

// Run sweeps every interval until ctx is cancelled.
func (l *Limiter) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			l.Sweep()
		case <-ctx.Done():
			return
		}
	}
}
