// Package ratelimit bounds unauthenticated traffic on the public submission
// and tracking endpoints. Fixed window per key, memory-backed on a single
// node, Redis-backed when instances share state.
package ratelimit

import (
	"sync"
	"time"
)

// Decision is the outcome of one rate limit check.
type Decision struct {
	Allowed   bool
	Limit     int
	Remaining int
	ResetAt   time.Time
}

// Limiter checks whether one more request under key fits the limit.
type Limiter interface {
	Allow(key string, limit int) Decision
}

// InMemory is a fixed-window limiter for tests and single-node deployments.
type InMemory struct {
	mu     sync.Mutex
	window time.Duration
	items  map[string]windowEntry
}

type windowEntry struct {
	count   int
	resetAt time.Time
}

// NewInMemory creates a limiter with the given window.
func NewInMemory(window time.Duration) *InMemory {
	if window <= 0 {
		window = time.Minute
	}
	return &InMemory{window: window, items: make(map[string]windowEntry)}
}

func (l *InMemory) Allow(key string, limit int) Decision {
	if limit <= 0 {
		limit = 1
	}
	now := time.Now().UTC()

	l.mu.Lock()
	defer l.mu.Unlock()
	for k, v := range l.items {
		if now.After(v.resetAt) {
			delete(l.items, k)
		}
	}

	curr, ok := l.items[key]
	if !ok || now.After(curr.resetAt) {
		curr = windowEntry{resetAt: now.Add(l.window)}
	}
	curr.count++
	l.items[key] = curr

	remaining := limit - curr.count
	if remaining < 0 {
		remaining = 0
	}
	return Decision{
		Allowed:   curr.count <= limit,
		Limit:     limit,
		Remaining: remaining,
		ResetAt:   curr.resetAt,
	}
}
