package web

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/crowdqueue/crowdqueue/internal/session"
)

// Write-endpoint budget per guest: 30 writes a minute with a burst of
// 10 absorbs enthusiastic voting without letting one client hammer the
// queue.
const (
	writeRate  = rate.Limit(30.0 / 60.0)
	writeBurst = 10

	limiterTTL      = 10 * time.Minute
	cleanupInterval = 5 * time.Minute
)

type guestLimiter struct {
	limiter    *rate.Limiter
	lastAccess time.Time
}

// rateLimiter enforces a per-guest token bucket on write endpoints.
// Guests are keyed by their identity cookie, falling back to remote
// address for cookieless clients.
type rateLimiter struct {
	mu       sync.Mutex
	limiters map[string]*guestLimiter
	stopCh   chan struct{}
}

func newRateLimiter() *rateLimiter {
	rl := &rateLimiter{
		limiters: make(map[string]*guestLimiter),
		stopCh:   make(chan struct{}),
	}
	go rl.cleanupLoop()
	return rl
}

func (rl *rateLimiter) stop() {
	close(rl.stopCh)
}

// middleware wraps write handlers with the per-guest limit.
func (rl *rateLimiter) middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := session.FromRequest(r).GuestID
		if key == "" {
			key = r.RemoteAddr
		}

		if !rl.allow(key) {
			w.Header().Set("Retry-After", strconv.Itoa(int(1/float64(writeRate))+1))
			writeJSON(w, http.StatusTooManyRequests, errorBody{"too many requests, slow down"})
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (rl *rateLimiter) allow(key string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	gl, ok := rl.limiters[key]
	if !ok {
		gl = &guestLimiter{limiter: rate.NewLimiter(writeRate, writeBurst)}
		rl.limiters[key] = gl
	}
	gl.lastAccess = time.Now()
	return gl.limiter.Allow()
}

func (rl *rateLimiter) cleanupLoop() {
	ticker := time.NewTicker(cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			rl.cleanup()
		case <-rl.stopCh:
			return
		}
	}
}

func (rl *rateLimiter) cleanup() {
	now := time.Now()
	rl.mu.Lock()
	defer rl.mu.Unlock()
	for key, gl := range rl.limiters {
		if now.Sub(gl.lastAccess) > limiterTTL {
			delete(rl.limiters, key)
		}
	}
}
