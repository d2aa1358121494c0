package httpx

import (
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"
)

// RateLimiter is the in-process fallback used when no Redis is configured.
// Each gateway replica counts on its own.
type RateLimiter struct {
	limit  int
	window time.Duration
	now    func() time.Time

	mu        sync.Mutex
	windows   map[string]*window
	lastSweep time.Time
}

type window struct {
	count int
	ends  time.Time
}

func NewRateLimiter(limit int, d time.Duration) *RateLimiter {
	limit, d = limiterDefaults(limit, d)
	return &RateLimiter{
		limit:   limit,
		window:  d,
		now:     time.Now,
		windows: map[string]*window{},
	}
}

func (rl *RateLimiter) Middleware() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			count, reset := rl.hit(clientKey(r))
			if !writeQuota(w, rl.limit, count, reset) {
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// hit counts one request for key and reports the count so far plus the
// time left in the current window.
func (rl *RateLimiter) hit(key string) (int, time.Duration) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	if now.Sub(rl.lastSweep) > rl.window {
		for k, win := range rl.windows {
			if !now.Before(win.ends) {
				delete(rl.windows, k)
			}
		}
		rl.lastSweep = now
	}

	win := rl.windows[key]
	if win == nil || !now.Before(win.ends) {
		win = &window{ends: now.Add(rl.window)}
		rl.windows[key] = win
	}
	win.count++
	return win.count, win.ends.Sub(now)
}

func limiterDefaults(limit int, d time.Duration) (int, time.Duration) {
	if limit <= 0 {
		limit = 60
	}
	if d <= 0 {
		d = time.Minute
	}
	return limit, d
}

// writeQuota sets the X-RateLimit headers and, once count passes limit,
// answers 429. It reports whether the request may proceed.
func writeQuota(w http.ResponseWriter, limit, count int, reset time.Duration) bool {
	remaining := limit - count
	if remaining < 0 {
		remaining = 0
	}
	h := w.Header()
	h.Set("X-RateLimit-Limit", strconv.Itoa(limit))
	h.Set("X-RateLimit-Remaining", strconv.Itoa(remaining))
	if count <= limit {
		return true
	}
	secs := int((reset + time.Second - 1) / time.Second)
	if secs < 1 {
		secs = 1
	}
	h.Set("Retry-After", strconv.Itoa(secs))
	WriteMessage(w, http.StatusTooManyRequests, "Too many requests")
	return false
}

// clientKey identifies the caller. The gateway runs behind RealIP, so
// RemoteAddr already reflects X-Forwarded-For when a proxy set it.
func clientKey(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err == nil {
		return host
	}
	return strings.TrimSpace(r.RemoteAddr)
}
