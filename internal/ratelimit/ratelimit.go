// Package ratelimit limits /process calls per client with a sliding window.
package ratelimit

import (
	"context"
	"sync"
	"time"
)

// Config is the number of requests allowed per window.
type Config struct {
	Requests int
	Window   time.Duration
}

// DefaultConfig matches the backend defaults: 50 requests per minute.
func DefaultConfig() Config {
	return Config{Requests: 50, Window: 60 * time.Second}
}

// Limiter decides whether another request from key may proceed, recording it
// when allowed.
type Limiter interface {
	Allow(ctx context.Context, key string) (bool, error)
}

// MemoryLimiter keeps per-key timestamps in process memory.
type MemoryLimiter struct {
	cfg Config
	now func() time.Time

	mu  sync.Mutex
	log map[string][]time.Time
}

func NewMemoryLimiter(cfg Config) *MemoryLimiter {
	return &MemoryLimiter{
		cfg: cfg,
		now: time.Now,
		log: make(map[string][]time.Time),
	}
}

func (l *MemoryLimiter) Allow(_ context.Context, key string) (bool, error) {
	if l.cfg.Requests <= 0 {
		return true, nil
	}

	now := l.now()
	windowStart := now.Add(-l.cfg.Window)

	l.mu.Lock()
	defer l.mu.Unlock()

	recent := l.log[key][:0]
	for _, ts := range l.log[key] {
		if ts.After(windowStart) {
			recent = append(recent, ts)
		}
	}

	if len(recent) >= l.cfg.Requests {
		l.log[key] = recent
		return false, nil
	}

	l.log[key] = append(recent, now)
	return true, nil
}

// Prune drops keys with no requests inside the window.
func (l *MemoryLimiter) Prune() int {
	windowStart := l.now().Add(-l.cfg.Window)

	l.mu.Lock()
	defer l.mu.Unlock()

	removed := 0
	for key, entries := range l.log {
		if len(entries) == 0 || !entries[len(entries)-1].After(windowStart) {
			delete(l.log, key)
			removed++
		}
	}
	return removed
}
