package ratelimit

import (
	"context"
	"sync"
	"time"

	"github.com/Qualiasolutions/theracoach/internal/models"
)

type entry struct {
	count   int
	resetAt time.Time
}

// MemoryLimiter is a fixed-window limiter backed by a process-local map.
// Blocked calls do not consume quota. An entry whose resetAt is at or
// before the current instant has expired and is replaced on next use.
type MemoryLimiter struct {
	mu               sync.Mutex
	entries          map[string]*entry
	maxRequests      int
	window           time.Duration
	cleanupThreshold int
	now              func() time.Time
}

// NewMemoryLimiter creates an in-memory fixed-window limiter. The sweep of
// expired entries runs inline on any call that finds the table above
// cleanupThreshold, so memory stays bounded without a background task.
func NewMemoryLimiter(maxRequests int, window time.Duration, cleanupThreshold int) *MemoryLimiter {
	return &MemoryLimiter{
		entries:          make(map[string]*entry),
		maxRequests:      maxRequests,
		window:           window,
		cleanupThreshold: cleanupThreshold,
		now:              time.Now,
	}
}

// SetClock replaces the limiter's clock. Intended for tests.
func (l *MemoryLimiter) SetClock(now func() time.Time) {
	l.mu.Lock()
	l.now = now
	l.mu.Unlock()
}

// Check records one request attempt for identifier and reports the verdict.
// The read-modify-write on a single identifier holds the table lock for the
// whole sequence, so concurrent requests from the same client serialize.
func (l *MemoryLimiter) Check(_ context.Context, identifier string) (models.Decision, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()

	if len(l.entries) > l.cleanupThreshold {
		for key, e := range l.entries {
			if !e.resetAt.After(now) {
				delete(l.entries, key)
			}
		}
	}

	e, ok := l.entries[identifier]
	if !ok || !e.resetAt.After(now) {
		resetAt := now.Add(l.window)
		l.entries[identifier] = &entry{count: 1, resetAt: resetAt}
		return models.Decision{Allowed: true, Remaining: l.maxRequests - 1, ResetAt: resetAt}, nil
	}

	if e.count >= l.maxRequests {
		return models.Decision{Allowed: false, Remaining: 0, ResetAt: e.resetAt}, nil
	}

	e.count++
	return models.Decision{Allowed: true, Remaining: l.maxRequests - e.count, ResetAt: e.resetAt}, nil
}

// Size reports the number of tracked identifiers. Intended for tests.
func (l *MemoryLimiter) Size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}
