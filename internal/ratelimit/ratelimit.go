// Package ratelimit implements the fixed-window request throttle applied
// per route prefix. It is a best-effort limit keyed by client IP headers,
// not a security boundary: the key is spoofable unless a trusted reverse
// proxy strips X-Forwarded-For / X-Real-Ip.
package ratelimit

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/shinedeck/shinedeck-api/internal/api"
)

type bucket struct {
	count   int
	resetAt time.Time
}

// Result reports the accounting outcome for one request.
type Result struct {
	Limited   bool
	Remaining int
	ResetAt   time.Time
}

// Limiter is an in-process fixed-window counter. Construct one per server
// instance and inject it; state is process-lifetime and lost on restart,
// which is acceptable for a throttle. Fixed windows admit up to 2x the
// limit across a window boundary; known and accepted at this scale.
type Limiter struct {
	mu      sync.Mutex
	buckets map[string]*bucket

	// now is swappable in tests.
	now func() time.Time

	// OnReject, when set, is invoked for every denied request (metrics hook).
	OnReject func()
}

func New() *Limiter {
	return &Limiter{
		buckets: make(map[string]*bucket),
		now:     time.Now,
	}
}

// ClientKey derives the throttle key for a request: first X-Forwarded-For
// entry, then X-Real-Ip, then the literal "anon".
func ClientKey(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		parts := strings.Split(xff, ",")
		if first := strings.TrimSpace(parts[0]); first != "" {
			return first
		}
	}
	if rip := r.Header.Get("X-Real-Ip"); rip != "" {
		return rip
	}
	return "anon"
}

// ShouldRateLimit accounts one request against the "<prefix>:<clientKey>"
// bucket. The limit-th request in a window is allowed; the (limit+1)-th is
// the first denied one.
func (l *Limiter) ShouldRateLimit(r *http.Request, prefix string, limit int, window time.Duration) Result {
	key := prefix + ":" + ClientKey(r)

	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	b, ok := l.buckets[key]
	if !ok || !now.Before(b.resetAt) {
		b = &bucket{count: 1, resetAt: now.Add(window)}
		l.buckets[key] = b
		return Result{Limited: false, Remaining: limit - 1, ResetAt: b.resetAt}
	}

	b.count++
	remaining := limit - b.count
	if remaining < 0 {
		remaining = 0
	}
	return Result{Limited: b.count > limit, Remaining: remaining, ResetAt: b.resetAt}
}

// Reset clears all buckets. Test isolation only, not a runtime feature.
func (l *Limiter) Reset() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.buckets = make(map[string]*bucket)
}

// sweep drops buckets whose window expired more than ttl ago.
func (l *Limiter) sweep(ttl time.Duration) {
	l.mu.Lock()
	defer l.mu.Unlock()
	now := l.now()
	for k, b := range l.buckets {
		if now.Sub(b.resetAt) > ttl {
			delete(l.buckets, k)
		}
	}
}

// StartSweeping evicts stale buckets periodically until ctx is done.
// Without it the map grows unbounded under adversarial IP variation.
func (l *Limiter) StartSweeping(ctx context.Context, interval, ttl time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				l.sweep(ttl)
			}
		}
	}()
}

// Middleware enforces the limit for a route prefix and emits the 429
// envelope plus X-RateLimit-* headers on denial.
func (l *Limiter) Middleware(prefix string, limit int, window time.Duration) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			res := l.ShouldRateLimit(r, prefix, limit, window)
			w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(res.Remaining))
			w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(res.ResetAt.Unix(), 10))
			if res.Limited {
				if l.OnReject != nil {
					l.OnReject()
				}
				api.ErrorResponse(w, r, api.CodeRateLimited, "Too many requests, slow down", nil)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
