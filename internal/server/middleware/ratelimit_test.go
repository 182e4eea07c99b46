package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func serve(h http.Handler, path string) int {
	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodPost, path, nil))
	return w.Code
}

func TestRateLimit_Disabled(t *testing.T) {
	handler := RateLimit(NewRateLimiter(false, 1, 1))(okHandler())

	for i := 0; i < 100; i++ {
		if code := serve(handler, "/predict"); code != http.StatusOK {
			t.Fatalf("request %d: expected status 200, got %d", i, code)
		}
	}
}

func TestRateLimit_NilLimiter(t *testing.T) {
	handler := RateLimit(nil)(okHandler())

	if code := serve(handler, "/predict"); code != http.StatusOK {
		t.Errorf("expected status 200, got %d", code)
	}
}

func TestRateLimit_RejectsAfterBurst(t *testing.T) {
	// A rate this low never refills during the test.
	handler := RateLimit(NewRateLimiter(true, 0.001, 3))(okHandler())

	for i := 0; i < 3; i++ {
		if code := serve(handler, "/predict"); code != http.StatusOK {
			t.Fatalf("burst request %d: expected status 200, got %d", i, code)
		}
	}

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/predict", nil))
	if w.Code != http.StatusTooManyRequests {
		t.Errorf("expected status 429, got %d", w.Code)
	}
	if w.Header().Get("Retry-After") == "" {
		t.Error("expected Retry-After header")
	}
}

func TestRateLimit_ExcludedPath(t *testing.T) {
	handler := RateLimit(NewRateLimiter(true, 0.001, 1), "/health")(okHandler())

	serve(handler, "/predict")

	for i := 0; i < 5; i++ {
		if code := serve(handler, "/health"); code != http.StatusOK {
			t.Fatalf("health request %d: expected status 200, got %d", i, code)
		}
	}
	if code := serve(handler, "/predict"); code != http.StatusTooManyRequests {
		t.Errorf("expected status 429, got %d", code)
	}
}

func TestRateLimiter_Update(t *testing.T) {
	limiter := NewRateLimiter(true, 0.001, 1)
	handler := RateLimit(limiter)(okHandler())

	serve(handler, "/predict")
	if code := serve(handler, "/predict"); code != http.StatusTooManyRequests {
		t.Fatalf("expected status 429, got %d", code)
	}

	limiter.Update(false, 0, 0)
	if code := serve(handler, "/predict"); code != http.StatusOK {
		t.Errorf("expected limiter to be disabled after update, got %d", code)
	}

	limiter.Update(true, 0.001, 2)
	for i := 0; i < 2; i++ {
		if code := serve(handler, "/predict"); code != http.StatusOK {
			t.Errorf("request %d after re-enable: expected status 200, got %d", i, code)
		}
	}
}
