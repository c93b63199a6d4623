package mw

import (
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/MrSnakeDoc/marks/internal/utils"
)

// RateLimitConfig sizes the token buckets of one route.
type RateLimitConfig struct {
	Burst     int           // tokens available at once
	PerMinute int           // tokens regained per minute
	IdleTTL   time.Duration // forget buckets idle this long (default 15m)

	// Key picks the bucket of a request. Defaults to the RemoteAddr IP.
	Key func(r *http.Request) string
	// Reject writes the 429 body. Retry-After is already set. Defaults to
	// a plain-text status line.
	Reject func(w http.ResponseWriter, r *http.Request, retryAfter time.Duration)
}

type bucket struct {
	tokens float64
	last   time.Time
}

type limiter struct {
	mu        sync.Mutex
	perSecond float64
	capacity  float64
	idleTTL   time.Duration
	buckets   map[string]*bucket
	lastSweep time.Time
}

func newLimiter(cfg RateLimitConfig) *limiter {
	burst, perMinute, idle := cfg.Burst, cfg.PerMinute, cfg.IdleTTL
	if burst < 1 {
		burst = 1
	}
	if perMinute < 1 {
		perMinute = 1
	}
	if idle <= 0 {
		idle = 15 * time.Minute
	}
	return &limiter{
		perSecond: float64(perMinute) / 60,
		capacity:  float64(burst),
		idleTTL:   idle,
		buckets:   make(map[string]*bucket),
	}
}

// take spends one token of key. When empty it reports how long until the
// next token.
func (l *limiter) take(key string, now time.Time) (ok bool, remaining int, retryAfter time.Duration) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if now.Sub(l.lastSweep) >= l.idleTTL {
		for k, b := range l.buckets {
			if now.Sub(b.last) >= l.idleTTL {
				delete(l.buckets, k)
			}
		}
		l.lastSweep = now
	}

	b, found := l.buckets[key]
	if !found {
		b = &bucket{tokens: l.capacity, last: now}
		l.buckets[key] = b
	}
	if elapsed := now.Sub(b.last).Seconds(); elapsed > 0 {
		b.tokens = math.Min(l.capacity, b.tokens+elapsed*l.perSecond)
	}
	b.last = now

	if b.tokens < 1 {
		wait := math.Ceil((1 - b.tokens) / l.perSecond)
		return false, 0, time.Duration(wait) * time.Second
	}
	b.tokens--
	return true, int(b.tokens), 0
}

// RateLimit answers 429 once the request's bucket is empty.
func RateLimit(cfg RateLimitConfig) func(http.Handler) http.Handler {
	l := newLimiter(cfg)
	limit := strconv.Itoa(int(l.capacity))

	key := cfg.Key
	if key == nil {
		key = func(r *http.Request) string { return utils.ClientIP(r, false).String() }
	}
	reject := cfg.Reject
	if reject == nil {
		reject = func(w http.ResponseWriter, _ *http.Request, _ time.Duration) {
			http.Error(w, http.StatusText(http.StatusTooManyRequests), http.StatusTooManyRequests)
		}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ok, remaining, retryAfter := l.take(key(r), time.Now())

			w.Header().Set("X-RateLimit-Limit", limit)
			w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(remaining))
			if !ok {
				w.Header().Set("Retry-After", strconv.Itoa(int(retryAfter/time.Second)))
				reject(w, r, retryAfter)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
