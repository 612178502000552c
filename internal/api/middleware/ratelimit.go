package middleware

import (
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/mcoot/arise-roster/internal/api/apierr"
)

// RateLimitConfig bounds requests per client address
type RateLimitConfig struct {
	Requests int
	Window   time.Duration
}

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter hands out a token bucket per remote address. Idle buckets are
// pruned once they have been unused for a full window.
type RateLimiter struct {
	config    RateLimitConfig
	mu        sync.Mutex
	visitors  map[string]*visitor
	lastPrune time.Time
	logger    *slog.Logger
}

// NewRateLimiter creates a RateLimiter; a non-positive request count
// disables limiting
func NewRateLimiter(config RateLimitConfig, logger *slog.Logger) *RateLimiter {
	return &RateLimiter{
		config:   config,
		visitors: make(map[string]*visitor),
		logger:   logger,
	}
}

// Allow reports whether key may make another request now
func (l *RateLimiter) Allow(key string) bool {
	if l.config.Requests <= 0 || l.config.Window <= 0 {
		return true
	}

	now := time.Now()
	l.mu.Lock()
	defer l.mu.Unlock()

	if now.Sub(l.lastPrune) > l.config.Window {
		for k, v := range l.visitors {
			if now.Sub(v.lastSeen) > l.config.Window {
				delete(l.visitors, k)
			}
		}
		l.lastPrune = now
	}

	v, ok := l.visitors[key]
	if !ok {
		every := rate.Every(l.config.Window / time.Duration(l.config.Requests))
		v = &visitor{limiter: rate.NewLimiter(every, l.config.Requests)}
		l.visitors[key] = v
	}
	v.lastSeen = now
	return v.limiter.AllowN(now, 1)
}

// Middleware rejects requests over the limit with 429
func (l *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		addr := RemoteIP(r)
		if !l.Allow(addr) {
			l.logger.Warn("rate limit exceeded",
				slog.String("remote_addr", addr),
				slog.String("path", r.URL.Path))
			apierr.WriteError(w, apierr.NewRateLimitedError())
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RemoteIP returns the host part of the request's remote address
func RemoteIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
