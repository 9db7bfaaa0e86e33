package middleware

import (
	"context"
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/AnshRaj112/feedback-portal/internal/database"
	"github.com/AnshRaj112/feedback-portal/pkg/clientip"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

// WindowLimiter decides whether one more request for key fits in the current window.
// *database.SlidingWindow is the Redis implementation; MemoryLimiter is the in-process one.
type WindowLimiter interface {
	Allow(ctx context.Context, key string) (database.WindowDecision, error)
}

// RateLimit limits requests per client IP. Limiter errors fail open so a Redis outage
// does not take the API down with it.
func RateLimit(l WindowLimiter, ips clientip.Resolver, log zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip := ips.ClientIP(r)
			d, err := l.Allow(r.Context(), ip)
			if err != nil {
				log.Warn().Err(err).Str("ip", ip).Msg("rate limiter unavailable, allowing request")
				next.ServeHTTP(w, r)
				return
			}

			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(d.Limit))
			w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(d.Remaining()))
			w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(d.ResetAt.Unix(), 10))

			if !d.Allowed {
				retry := int(math.Ceil(time.Until(d.ResetAt).Seconds()))
				if retry < 1 {
					retry = 1
				}
				w.Header().Set("Retry-After", strconv.Itoa(retry))
				writeError(w, http.StatusTooManyRequests, "Too many requests, please try again later.")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

const (
	limiterSweepInterval = 5 * time.Minute
	limiterIdleTTL       = 30 * time.Minute
)

type limiterEntry struct {
	limiter *rate.Limiter
	lastUse time.Time
}

// MemoryLimiter is a per-key token bucket (golang.org/x/time/rate). Idle keys are
// swept lazily on later calls; it starts no goroutines.
type MemoryLimiter struct {
	mu        sync.Mutex
	entries   map[string]*limiterEntry
	every     rate.Limit
	burst     int
	window    time.Duration
	lastSweep time.Time
	now       func() time.Time
}

// NewMemoryLimiter allows max requests per window, refilled evenly.
func NewMemoryLimiter(max int, window time.Duration) *MemoryLimiter {
	return newMemoryLimiter(rate.Every(window/time.Duration(max)), max, window)
}

func newMemoryLimiter(every rate.Limit, burst int, window time.Duration) *MemoryLimiter {
	return &MemoryLimiter{
		entries: make(map[string]*limiterEntry),
		every:   every,
		burst:   burst,
		window:  window,
		now:     time.Now,
	}
}

func (m *MemoryLimiter) Allow(_ context.Context, key string) (database.WindowDecision, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	m.sweep(now)

	e, ok := m.entries[key]
	if !ok {
		e = &limiterEntry{limiter: rate.NewLimiter(m.every, m.burst)}
		m.entries[key] = e
	}
	e.lastUse = now

	allowed := e.limiter.AllowN(now, 1)
	tokens := e.limiter.TokensAt(now)
	used := m.burst - int(math.Floor(tokens))
	if used < 0 {
		used = 0
	}

	reset := now.Add(m.window)
	if !allowed && m.every > 0 {
		reset = now.Add(time.Duration((1 - tokens) / float64(m.every) * float64(time.Second)))
	}
	return database.WindowDecision{Allowed: allowed, Count: used, Limit: m.burst, ResetAt: reset}, nil
}

func (m *MemoryLimiter) sweep(now time.Time) {
	if now.Sub(m.lastSweep) < limiterSweepInterval {
		return
	}
	m.lastSweep = now
	for k, e := range m.entries {
		if now.Sub(e.lastUse) > limiterIdleTTL {
			delete(m.entries, k)
		}
	}
}

// Len reports how many keys are tracked.
func (m *MemoryLimiter) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}
