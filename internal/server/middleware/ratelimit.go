package middleware

import (
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"github.com/rs/zerolog"

	"github.com/agentstation/productmap/internal/server/response"
)

// RateLimiter is a fixed window limiter keyed by client IP. Idle visitors
// expire from the underlying go-cache.
type RateLimiter struct {
	visitors *gocache.Cache
	mu       sync.Mutex
	limit    int           // requests per window
	window   time.Duration // window length
	logger   *zerolog.Logger
}

// visitor tracks the window of one IP.
type visitor struct {
	tokens    int
	lastReset time.Time
}

// NewRateLimiter creates a limiter allowing limit requests per minute per IP.
func NewRateLimiter(limit int, logger *zerolog.Logger) *RateLimiter {
	return newRateLimiter(limit, time.Minute, logger)
}

func newRateLimiter(limit int, window time.Duration, logger *zerolog.Logger) *RateLimiter {
	return &RateLimiter{
		visitors: gocache.New(10*window, 5*window),
		limit:    limit,
		window:   window,
		logger:   logger,
	}
}

// allow takes a token for ip when one is left in the current window.
func (rl *RateLimiter) allow(ip string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	v, ok := rl.visitors.Get(ip)
	vis, _ := v.(*visitor)
	if !ok || vis == nil || now.Sub(vis.lastReset) > rl.window {
		vis = &visitor{tokens: rl.limit, lastReset: now}
	}
	rl.visitors.SetDefault(ip, vis)

	if vis.tokens <= 0 {
		return false
	}
	vis.tokens--
	return true
}

// Visitors returns the number of tracked IPs.
func (rl *RateLimiter) Visitors() int {
	return rl.visitors.ItemCount()
}

// RateLimit middleware limits requests per IP address.
func RateLimit(rl *RateLimiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip := clientIP(r)
			if !rl.allow(ip) {
				rl.logger.Warn().
					Str("ip", ip).
					Str("path", r.URL.Path).
					Msg("Rate limit exceeded")
				response.RateLimited(w, "Too many requests. Please try again later.")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// clientIP prefers the first X-Forwarded-For hop over the socket address.
func clientIP(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		first, _, _ := strings.Cut(forwarded, ",")
		return strings.TrimSpace(first)
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}
