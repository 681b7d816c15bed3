package web

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/crowdqueue/crowdqueue/internal/session"
)

func limitedHandler(rl *rateLimiter) http.Handler {
	return rl.middleware(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
}

func guestRequest(guestID string) *http.Request {
	r := httptest.NewRequest(http.MethodPost, "/write", nil)
	r.AddCookie(&http.Cookie{Name: session.GuestIDCookie, Value: guestID})
	return r
}

func TestRateLimiterAllowsBurstThenBlocks(t *testing.T) {
	rl := newRateLimiter()
	defer rl.stop()
	handler := limitedHandler(rl)

	for i := range writeBurst {
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, guestRequest("g1"))
		if w.Code != http.StatusOK {
			t.Fatalf("request %d blocked inside burst: %d", i+1, w.Code)
		}
	}

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, guestRequest("g1"))
	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("status = %d, want 429 after burst", w.Code)
	}
	if w.Header().Get("Retry-After") == "" {
		t.Error("429 without Retry-After header")
	}
}

func TestRateLimiterIsPerGuest(t *testing.T) {
	rl := newRateLimiter()
	defer rl.stop()
	handler := limitedHandler(rl)

	// Exhaust g1's budget.
	for range writeBurst + 1 {
		handler.ServeHTTP(httptest.NewRecorder(), guestRequest("g1"))
	}

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, guestRequest("g2"))
	if w.Code != http.StatusOK {
		t.Errorf("g2 blocked by g1's usage: %d", w.Code)
	}
}

func TestRateLimiterFallsBackToRemoteAddr(t *testing.T) {
	rl := newRateLimiter()
	defer rl.stop()
	handler := limitedHandler(rl)

	// No guest cookie at all; the limiter must still key on something.
	r := httptest.NewRequest(http.MethodPost, "/write", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, r)
	if w.Code != http.StatusOK {
		t.Errorf("cookieless request blocked outright: %d", w.Code)
	}

	if len(rl.limiters) != 1 {
		t.Errorf("limiters = %d, want 1 keyed on remote addr", len(rl.limiters))
	}
}
