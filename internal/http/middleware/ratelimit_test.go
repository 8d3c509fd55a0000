package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestRateLimitAllowsWithinBurst(t *testing.T) {
	mw := RateLimit(1, 3)
	handler := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodPost, "/interviews/start", nil)
		req.Header.Set("X-Real-Ip", "203.0.113.5")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("request %d: expected %d, got %d", i, http.StatusOK, rec.Code)
		}
	}

	req := httptest.NewRequest(http.MethodPost, "/interviews/start", nil)
	req.Header.Set("X-Real-Ip", "203.0.113.5")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("expected %d after burst exhausted, got %d", http.StatusTooManyRequests, rec.Code)
	}
	if rec.Header().Get("Retry-After") == "" {
		t.Fatalf("expected Retry-After header on rejection")
	}
}

func TestRateLimitIsPerClient(t *testing.T) {
	mw := RateLimit(1, 1)
	handler := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	first := httptest.NewRequest(http.MethodPost, "/interviews/start", nil)
	first.Header.Set("X-Real-Ip", "203.0.113.5")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, first)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected first client to pass, got %d", rec.Code)
	}

	other := httptest.NewRequest(http.MethodPost, "/interviews/start", nil)
	other.Header.Set("X-Real-Ip", "203.0.113.6")
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, other)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected separate client bucket, got %d", rec.Code)
	}
}

func TestStartLimiterRefillsOverTime(t *testing.T) {
	limiter := NewStartLimiter(2, 1)
	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	limiter.now = func() time.Time { return now }

	if ok, _ := limiter.Allow("203.0.113.5"); !ok {
		t.Fatalf("expected first start to pass")
	}
	ok, wait := limiter.Allow("203.0.113.5")
	if ok {
		t.Fatalf("expected second immediate start to be denied")
	}
	if wait <= 0 || wait > 500*time.Millisecond {
		t.Fatalf("expected retry hint within the refill interval, got %v", wait)
	}

	now = now.Add(time.Second)
	if ok, _ := limiter.Allow("203.0.113.5"); !ok {
		t.Fatalf("expected bucket to refill after a second at 2/sec")
	}
}

func TestStartLimiterEvictsIdleBuckets(t *testing.T) {
	limiter := NewStartLimiter(1, 1)
	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	limiter.now = func() time.Time { return now }

	limiter.Allow("203.0.113.5")
	now = now.Add(bucketIdleEviction + time.Minute)
	limiter.Allow("203.0.113.6")

	limiter.mu.Lock()
	_, stale := limiter.buckets["203.0.113.5"]
	limiter.mu.Unlock()
	if stale {
		t.Fatalf("expected idle bucket to be evicted")
	}
}

func TestClientKeyPrefersForwardedHeaders(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/interviews/start", nil)
	req.RemoteAddr = "10.0.0.1:43210"
	if got := clientKey(req); got != "10.0.0.1" {
		t.Fatalf("expected socket host, got %q", got)
	}

	req.Header.Set("X-Forwarded-For", "198.51.100.7, 10.0.0.1")
	if got := clientKey(req); got != "198.51.100.7" {
		t.Fatalf("expected first forwarded hop, got %q", got)
	}

	req.Header.Set("X-Real-Ip", "203.0.113.5")
	if got := clientKey(req); got != "203.0.113.5" {
		t.Fatalf("expected X-Real-Ip to win, got %q", got)
	}
}
