package httpx

import (
	"fmt"
	"math/rand/v2"
	"net/http"
	"sync"
	"time"

	"github.com/aussiebroadwan/authgateway/pkg/apierr"
	"github.com/aussiebroadwan/authgateway/pkg/slogx"
)

// DefaultSweepProbability is the chance that a single call sweeps expired entries.
const DefaultSweepProbability = 0.01

// Decision is the outcome of FixedWindowLimiter.CheckAndIncrement.
type Decision struct {
	Allowed bool
	// RetryAfter is whole seconds until the window resets. Zero when allowed.
	RetryAfter int
}

type windowEntry struct {
	count   int
	resetAt int64 // unix ms
}

// FixedWindowLimiter counts requests per key in discrete windows. A client
// can land up to 2x limit requests around a window boundary.
//
// All state lives behind a single mutex, so each check-and-increment is atomic.
// Counters are per process.
type FixedWindowLimiter struct {
	mu      sync.Mutex
	entries map[string]*windowEntry

	now       func() time.Time
	sweepRoll func() float64
	sweepOdds float64
}

// FixedWindowOption customises a FixedWindowLimiter.
type FixedWindowOption func(*FixedWindowLimiter)

// WithClock overrides the time source.
func WithClock(now func() time.Time) FixedWindowOption {
	return func(l *FixedWindowLimiter) { l.now = now }
}

// WithSweep overrides the sweep probability and its random source.
func WithSweep(probability float64, roll func() float64) FixedWindowOption {
	return func(l *FixedWindowLimiter) {
		l.sweepOdds = probability
		if roll != nil {
			l.sweepRoll = roll
		}
	}
}

// NewFixedWindowLimiter returns an empty limiter.
func NewFixedWindowLimiter(opts ...FixedWindowOption) *FixedWindowLimiter {
	l := &FixedWindowLimiter{
		entries:   make(map[string]*windowEntry),
		now:       time.Now,
		sweepRoll: rand.Float64,
		sweepOdds: DefaultSweepProbability,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// CheckAndIncrement records one request for key and reports whether it fits
// within limit requests per window.
func (l *FixedWindowLimiter) CheckAndIncrement(key string, limit int, window time.Duration) Decision {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now().UnixMilli()

	if l.sweepRoll() < l.sweepOdds {
		l.sweepLocked(now)
	}

	e, ok := l.entries[key]
	if !ok || e.resetAt < now {
		l.entries[key] = &windowEntry{count: 1, resetAt: now + window.Milliseconds()}
		return Decision{Allowed: true}
	}

	if e.count >= limit {
		return Decision{RetryAfter: ceilSeconds(e.resetAt - now)}
	}

	e.count++
	return Decision{Allowed: true}
}

// Len returns the number of tracked keys.
func (l *FixedWindowLimiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}

// Sweep removes every expired entry.
func (l *FixedWindowLimiter) Sweep() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.sweepLocked(l.now().UnixMilli())
}

func (l *FixedWindowLimiter) sweepLocked(now int64) {
	for k, e := range l.entries {
		if e.resetAt < now {
			delete(l.entries, k)
		}
	}
}

func ceilSeconds(ms int64) int {
	if ms <= 0 {
		return 0
	}
	return int((ms + 999) / 1000)
}

// FixedWindow guards an endpoint with limit requests per window, keyed by
// ClientIdentifier and the request path.
func FixedWindow(l *FixedWindowLimiter, limit int, window time.Duration) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := ClientIdentifier(r) + ":" + r.URL.Path

			d := l.CheckAndIncrement(key, limit, window)
			if !d.Allowed {
				w.Header().Set("X-RateLimit-Limit", fmt.Sprintf("%d", limit))
				w.Header().Set("X-RateLimit-Window", window.String())

				slogx.FromContext(r.Context()).Warn("rate limit exceeded",
					"key", key,
					"retry_after", d.RetryAfter,
				)

				WriteError(w, apierr.RateLimited(d.RetryAfter))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
