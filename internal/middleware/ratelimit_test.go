package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestRateLimit(t *testing.T) {
	done := make(chan struct{})
	defer close(done)

	h := RateLimit(done, 1, 2)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	call := func(addr string) int {
		req := httptest.NewRequest(http.MethodPost, "/auth/login", nil)
		req.RemoteAddr = addr
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec.Code
	}

	for i := range 2 {
		if code := call("10.0.0.1:5000"); code != http.StatusOK {
			t.Fatalf("request %d: status = %d, want 200", i, code)
		}
	}
	if code := call("10.0.0.1:5001"); code != http.StatusTooManyRequests {
		t.Errorf("over burst: status = %d, want 429", code)
	}
	if code := call("10.0.0.2"); code != http.StatusOK {
		t.Errorf("other ip: status = %d, want 200", code)
	}
}

func TestIPRateLimiter_Sweep(t *testing.T) {
	rl := newIPRateLimiter(1, 1)
	now := time.Date(2024, 8, 1, 9, 0, 0, 0, time.UTC)

	rl.getLimiter("a", now)
	rl.getLimiter("b", now.Add(9*time.Minute))
	rl.sweep(now.Add(11 * time.Minute))

	if _, ok := rl.visitors["a"]; ok {
		t.Error("idle visitor a should be swept")
	}
	if _, ok := rl.visitors["b"]; !ok {
		t.Error("recent visitor b should be kept")
	}
}
