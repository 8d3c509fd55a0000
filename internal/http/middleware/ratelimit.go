package middleware

import (
	"fmt"
	"math"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"
)

const bucketIdleEviction = 10 * time.Minute

// StartLimiter throttles interview starts per client address with a token
// bucket. The start endpoint is the only unauthenticated write surface the
// embedded widget exposes, so rejections carry a Retry-After hint the widget
// uses to back off instead of hammering.
type StartLimiter struct {
	mu        sync.Mutex
	buckets   map[string]*startBucket
	rate      float64
	burst     float64
	now       func() time.Time
	lastSweep time.Time
}

type startBucket struct {
	tokens   float64
	lastSeen time.Time
}

// NewStartLimiter allows rate starts/sec with the given burst per client.
func NewStartLimiter(rate float64, burst int) *StartLimiter {
	if rate <= 0 {
		rate = 1
	}
	if burst <= 0 {
		burst = 1
	}
	return &StartLimiter{
		buckets: make(map[string]*startBucket),
		rate:    rate,
		burst:   float64(burst),
		now:     time.Now,
	}
}

// Allow reports whether the client may start an interview now. When denied
// it returns how long the client should wait before the next attempt.
func (l *StartLimiter) Allow(key string) (bool, time.Duration) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	l.sweep(now)

	b, ok := l.buckets[key]
	if !ok {
		b = &startBucket{tokens: l.burst, lastSeen: now}
		l.buckets[key] = b
	}

	b.tokens = math.Min(l.burst, b.tokens+now.Sub(b.lastSeen).Seconds()*l.rate)
	b.lastSeen = now

	if b.tokens < 1 {
		wait := time.Duration((1 - b.tokens) / l.rate * float64(time.Second))
		return false, wait
	}
	b.tokens--
	return true, 0
}

// sweep drops buckets idle past the eviction window. Runs inline under the
// lock at most once per window; there is no background goroutine to stop.
func (l *StartLimiter) sweep(now time.Time) {
	if now.Sub(l.lastSweep) < bucketIdleEviction {
		return
	}
	l.lastSweep = now
	cutoff := now.Add(-bucketIdleEviction)
	for key, b := range l.buckets {
		if b.lastSeen.Before(cutoff) {
			delete(l.buckets, key)
		}
	}
}

// RateLimit guards the interview start endpoint, answering 429 with a
// Retry-After header once a client exhausts its burst.
func RateLimit(rate float64, burst int) func(http.Handler) http.Handler {
	limiter := NewStartLimiter(rate, burst)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ok, wait := limiter.Allow(clientKey(r))
			if !ok {
				w.Header().Set("Retry-After", fmt.Sprintf("%d", int(math.Ceil(wait.Seconds()))))
				http.Error(w, `{"error":"too many interview starts, slow down"}`, http.StatusTooManyRequests)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// clientKey identifies the caller for throttling. The widget runs on
// customer sites behind arbitrary proxies, so trust X-Real-Ip from chi's
// RealIP middleware first, then the leftmost X-Forwarded-For hop, then the
// socket address.
func clientKey(r *http.Request) string {
	if xri := strings.TrimSpace(r.Header.Get("X-Real-Ip")); xri != "" {
		return xri
	}
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		if first = strings.TrimSpace(first); first != "" {
			return first
		}
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}
