package ratelimit

import (
	"context"
	"sync"
	"time"
)

const (
	DefaultMaxRequests     = 5
	DefaultWindow          = 15 * time.Minute
	DefaultCleanupInterval = 5 * time.Minute
)

// Limiter enforces a fixed number of requests per identifier per window.
// The window starts at the first counted request and is not sliding.
type Limiter struct {
	Store       Store
	MaxRequests int
	Window      time.Duration
	Clock       func() time.Time

	mu sync.Mutex
}

// Decision is the outcome of a Check.
type Decision struct {
	Allowed    bool
	Count      int
	Remaining  int
	RetryAfter time.Duration
}

// New returns a Limiter over an in-memory store. Non-positive values fall
// back to the defaults.
func New(maxRequests int, window time.Duration) *Limiter {
	return &Limiter{
		Store:       NewMemoryStore(),
		MaxRequests: maxRequests,
		Window:      window,
	}
}

// Check counts a request for id and reports whether it is allowed.
// Rejected requests are not counted.
func (l *Limiter) Check(ctx context.Context, id string) (Decision, error) {
	if l == nil || l.Store == nil {
		return Decision{Allowed: true}, nil
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	limit := l.maxRequests()
	window := l.window()

	entry, err := l.Store.Get(ctx, id)
	if err != nil {
		return Decision{Allowed: true}, err
	}

	if entry == nil || now.Sub(entry.WindowStart) > window {
		fresh := Entry{Count: 1, WindowStart: now}
		if err := l.Store.Put(ctx, id, fresh); err != nil {
			return Decision{Allowed: true}, err
		}
		return Decision{Allowed: true, Count: 1, Remaining: limit - 1}, nil
	}

	if entry.Count >= limit {
		retry := window - now.Sub(entry.WindowStart)
		if retry < 0 {
			retry = 0
		}
		return Decision{Allowed: false, Count: entry.Count, RetryAfter: retry}, nil
	}

	entry.Count++
	if err := l.Store.Put(ctx, id, *entry); err != nil {
		return Decision{Allowed: true}, err
	}
	return Decision{Allowed: true, Count: entry.Count, Remaining: limit - entry.Count}, nil
}

// SetLimits replaces the threshold and window. Existing entries keep their
// window start.
func (l *Limiter) SetLimits(maxRequests int, window time.Duration) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.MaxRequests = maxRequests
	l.Window = window
}

// ClearOldEntries evicts entries whose window has elapsed and returns how
// many were removed.
func (l *Limiter) ClearOldEntries(ctx context.Context) (int, error) {
	if l == nil || l.Store == nil {
		return 0, nil
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	entries, err := l.Store.Entries(ctx)
	if err != nil {
		return 0, err
	}

	now := l.now()
	window := l.window()
	removed := 0
	for id, entry := range entries {
		if now.Sub(entry.WindowStart) > window {
			if err := l.Store.Delete(ctx, id); err != nil {
				return removed, err
			}
			removed++
		}
	}
	return removed, nil
}

// Run calls ClearOldEntries every interval until ctx is cancelled. The
// optional onSweep callback receives each sweep's result.
func (l *Limiter) Run(ctx context.Context, interval time.Duration, onSweep func(removed int, err error)) error {
	if interval <= 0 {
		interval = DefaultCleanupInterval
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			removed, err := l.ClearOldEntries(ctx)
			if onSweep != nil {
				onSweep(removed, err)
			}
		}
	}
}

func (l *Limiter) now() time.Time {
	if l.Clock != nil {
		return l.Clock()
	}
	return time.Now()
}

func (l *Limiter) maxRequests() int {
	if l.MaxRequests <= 0 {
		return DefaultMaxRequests
	}
	return l.MaxRequests
}

func (l *Limiter) window() time.Duration {
	if l.Window <= 0 {
		return DefaultWindow
	}
	return l.Window
}
