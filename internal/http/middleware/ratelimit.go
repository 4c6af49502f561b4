package middleware

import (
	"context"
	"net/http"
	"strconv"
	"sync"
	"time"

	"task_manager/internal/logger"

	"github.com/gin-gonic/gin"
	redis "github.com/redis/go-redis/v9"
)

// KeyFunc picks the identifier a request is counted against.
type KeyFunc func(c *gin.Context) string

// ByIP counts requests per client address.
func ByIP(c *gin.Context) string { return "ip:" + c.ClientIP() }

// ByIdentity counts requests per authenticated user, falling back to the client
// address when Authenticate has not run.
func ByIdentity(c *gin.Context) string {
	if id, ok := IdentityFrom(c); ok {
		return "user:" + id.UserID
	}
	return ByIP(c)
}

// RateLimiter is a fixed-window limiter. With a redis client the counters are
// shared between instances (INCR/EXPIRE); without one they live in process memory.
type RateLimiter struct {
	client *redis.Client
	name   string
	max    int
	window time.Duration
	key    KeyFunc

	mu    sync.Mutex
	local map[string]*fixedWindow
	now   func() time.Time
}

type fixedWindow struct {
	start time.Time
	count int64
}

func NewRateLimiter(client *redis.Client, name string, max int, window time.Duration, key KeyFunc) *RateLimiter {
	if key == nil {
		key = ByIP
	}
	return &RateLimiter{
		client: client,
		name:   name,
		max:    max,
		window: window,
		key:    key,
		local:  make(map[string]*fixedWindow),
		now:    time.Now,
	}
}

// Handler returns the gin middleware. A max of zero or less disables limiting.
func (l *RateLimiter) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if l.max <= 0 {
			c.Next()
			return
		}

		endpoint := c.FullPath()
		count, err := l.incr(c.Request.Context(), l.key(c))
		if err != nil {
			// fail-open so a redis outage does not take the API down
			logger.WithContext(c.Request.Context()).Warn("rate limiter unavailable", "limiter", l.name, "error", err)
			c.Header("X-RateLimit-Error", "redis-error")
			c.Next()
			return
		}

		remaining := int64(l.max) - count
		if remaining < 0 {
			remaining = 0
		}
		c.Header("X-RateLimit-Limit", strconv.Itoa(l.max))
		c.Header("X-RateLimit-Remaining", strconv.FormatInt(remaining, 10))

		if count > int64(l.max) {
			RLBlocked.WithLabelValues(l.name, endpoint).Inc()
			c.Header("Retry-After", strconv.Itoa(int(l.window.Seconds())))
			abortError(c, http.StatusTooManyRequests, "RATE_LIMITED", "rate limit exceeded")
			return
		}

		RLRequests.WithLabelValues(l.name, endpoint).Inc()
		c.Next()
	}
}

func (l *RateLimiter) incr(ctx context.Context, ident string) (int64, error) {
	if l.client != nil {
		return l.incrRedis(ctx, ident)
	}
	return l.incrLocal(ident), nil
}

func (l *RateLimiter) incrLocal(ident string) int64 {
	now := l.now()

	l.mu.Lock()
	defer l.mu.Unlock()

	w, ok := l.local[ident]
	if !ok || now.Sub(w.start) >= l.window {
		if len(l.local) > 10000 {
			l.sweep(now)
		}
		w = &fixedWindow{start: now}
		l.local[ident] = w
	}
	w.count++
	return w.count
}

// sweep drops expired windows; l.mu must be held.
func (l *RateLimiter) sweep(now time.Time) {
	for k, w := range l.local {
		if now.Sub(w.start) >= l.window {
			delete(l.local, k)
		}
	}
}
