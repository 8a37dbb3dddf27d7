package server

import (
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

// newTestRateLimiter builds a rateLimiter without the eviction goroutine
// time dependence mattering; the stop function is registered for cleanup.
func newTestRateLimiter(t *testing.T, rps float64, burst int) *rateLimiter {
	t.Helper()
	rl, stop := newRateLimiter(rps, burst, slog.Default())
	t.Cleanup(stop)
	return rl
}

func TestRateLimiter_AllowsWithinBurst(t *testing.T) {
	t.Parallel()

	rl := newTestRateLimiter(t, 1, 3)
	handler := rl.middleware(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	for i := range 3 {
		req := httptest.NewRequest(http.MethodPost, "/query", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)
		if w.Code != http.StatusOK {
			t.Fatalf("request %d: expected 200, got %d", i, w.Code)
		}
	}
}

func TestRateLimiter_RejectsBeyondBurst(t *testing.T) {
	t.Parallel()

	rl := newTestRateLimiter(t, 1, 2)
	handler := rl.middleware(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	var last *httptest.ResponseRecorder
	for range 3 {
		req := httptest.NewRequest(http.MethodPost, "/query", nil)
		req.RemoteAddr = "10.0.0.2:1234"
		last = httptest.NewRecorder()
		handler.ServeHTTP(last, req)
	}

	if last.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429 after burst exhausted, got %d", last.Code)
	}
	if last.Header().Get("Retry-After") == "" {
		t.Error("expected Retry-After header on 429 response")
	}
}

func TestRateLimiter_IPsAreIndependent(t *testing.T) {
	t.Parallel()

	rl := newTestRateLimiter(t, 1, 1)
	handler := rl.middleware(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	for _, addr := range []string{"10.0.0.3:1", "10.0.0.4:1", "10.0.0.5:1"} {
		req := httptest.NewRequest(http.MethodPost, "/query", nil)
		req.RemoteAddr = addr
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)
		if w.Code != http.StatusOK {
			t.Errorf("%s: expected 200 for first request, got %d", addr, w.Code)
		}
	}
}

func TestRateLimiter_EvictsStaleEntries(t *testing.T) {
	t.Parallel()

	rl := newTestRateLimiter(t, 1, 1)
	rl.getLimiter("10.0.0.6")

	rl.mu.Lock()
	rl.limiters["10.0.0.6"].lastSeen = time.Now().Add(-10 * time.Minute)
	rl.mu.Unlock()

	rl.evict()

	rl.mu.Lock()
	_, ok := rl.limiters["10.0.0.6"]
	rl.mu.Unlock()
	if ok {
		t.Error("stale entry survived eviction")
	}
}

func TestClientIP_StripsPort(t *testing.T) {
	t.Parallel()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "192.168.1.9:54321"
	if got := clientIP(req); got != "192.168.1.9" {
		t.Errorf("clientIP = %q, want 192.168.1.9", got)
	}
}
