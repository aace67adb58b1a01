package middleware

import (
	"net/http"
	"sync"
	"time"

	"stockroom/internal/apperror"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

const purgeInterval = 5 * time.Minute

// limiter is a fixed-window counter keyed by client IP. Entries for IPs that
// stop sending requests are purged by a background goroutine so the map does
// not grow without bound.
type limiter struct {
	mu      sync.Mutex
	limit   int
	window  time.Duration
	byIP    map[string]*ipWindow
	message string
}

type ipWindow struct {
	count int
	reset time.Time
}

func newLimiter(limit int, window time.Duration, message string) *limiter {
	l := &limiter{
		limit:   limit,
		window:  window,
		byIP:    make(map[string]*ipWindow),
		message: message,
	}
	go l.purgeLoop()
	return l
}

// allow counts one request for ip. It returns false, along with the window
// reset time, once the limit is exhausted.
func (l *limiter) allow(ip string) (bool, time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	w, ok := l.byIP[ip]
	if !ok || now.After(w.reset) {
		w = &ipWindow{reset: now.Add(l.window)}
		l.byIP[ip] = w
	}
	w.count++
	return w.count <= l.limit, w.reset
}

func (l *limiter) purgeLoop() {
	ticker := time.NewTicker(purgeInterval)
	defer ticker.Stop()

	for range ticker.C {
		now := time.Now()
		l.mu.Lock()
		purged := 0
		for ip, w := range l.byIP {
			if now.After(w.reset) {
				delete(l.byIP, ip)
				purged++
			}
		}
		l.mu.Unlock()
		if purged > 0 {
			log.Debug().Int("entries_purged", purged).Msg("rate limiter purge")
		}
	}
}

func (l *limiter) middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		ok, reset := l.allow(c.ClientIP())
		if !ok {
			c.Header("Retry-After", reset.Format(time.RFC1123))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, apperror.New(l.message))
			return
		}
		c.Next()
	}
}

// LoginRateLimiter caps login attempts at 20 per minute per IP to slow down
// credential stuffing.
func LoginRateLimiter() gin.HandlerFunc {
	return newLimiter(20, time.Minute, "too many login attempts, retry in 1 minute").middleware()
}

// RateLimiter is the general per-IP API limiter.
func RateLimiter(limit int, window time.Duration) gin.HandlerFunc {
	return newLimiter(limit, window, "too many requests, retry shortly").middleware()
}
