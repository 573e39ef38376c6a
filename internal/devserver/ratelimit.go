// ABOUTME: Fixed-window rate limiting for the development backend
// ABOUTME: Throttles login attempts per client IP and answers 429 with Retry-After

package devserver

import (
	"math"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"
)

// window tracks attempts within one fixed period.
type window struct {
	count     int
	expiresAt time.Time
}

// rateLimiter allows limit attempts per key per period.
type rateLimiter struct {
	mu      sync.Mutex
	windows map[string]*window
	limit   int
	period  time.Duration
	now     func() time.Time
	created int // new windows since the last sweep
}

func newRateLimiter(limit int, period time.Duration, now func() time.Time) *rateLimiter {
	return &rateLimiter{
		windows: make(map[string]*window),
		limit:   limit,
		period:  period,
		now:     now,
	}
}

// allow records an attempt for key. When the key is over its limit it
// returns false and the time left until the window resets.
func (rl *rateLimiter) allow(key string) (bool, time.Duration) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	w, ok := rl.windows[key]

	// The boundary instant starts a new window.
	if !ok || !now.Before(w.expiresAt) {
		rl.windows[key] = &window{count: 1, expiresAt: now.Add(rl.period)}
		rl.created++
		if rl.created >= 100 {
			rl.sweep(now)
			rl.created = 0
		}
		return true, 0
	}

	if w.count < rl.limit {
		w.count++
		return true, 0
	}
	return false, w.expiresAt.Sub(now)
}

// sweep drops expired windows. Callers hold rl.mu.
func (rl *rateLimiter) sweep(now time.Time) {
	for k, w := range rl.windows {
		if !now.Before(w.expiresAt) {
			delete(rl.windows, k)
		}
	}
}

// clientIP keys requests by remote address without the port. The dev
// server is not meant to sit behind a proxy, so X-Forwarded-For is ignored.
func clientIP(r *http.Request) string {
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}

// limitLogin throttles the login handler. A nil limiter passes everything.
func (s *Server) limitLogin(next http.HandlerFunc) http.HandlerFunc {
	if s.loginLimiter == nil {
		return next
	}
	return func(w http.ResponseWriter, r *http.Request) {
		key := clientIP(r)
		allowed, retryAfter := s.loginLimiter.allow(key)
		if allowed {
			next(w, r)
			return
		}

		seconds := int(math.Ceil(retryAfter.Seconds()))
		s.logger.Warn("Login rate limit exceeded", "client", key, "retry_after", seconds)
		w.Header().Set("Retry-After", strconv.Itoa(seconds))
		writeJSONError(w, "Demasiados intentos de inicio de sesión. Intente más tarde.", http.StatusTooManyRequests)
	}
}
