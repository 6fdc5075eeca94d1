package middleware

import (
	"context"
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

type visitor struct {
	limiter     *rate.Limiter
	windowStart time.Time
	lastSeen    time.Time
}

type RateLimiterConfig struct {
	// Limit is the sustained number of requests allowed per Per
	Limit           int
	Per             time.Duration
	Burst           int
	CleanupInterval time.Duration
	TTL             time.Duration
	// Window makes the limit a hard cap of Limit requests per fixed window
	// of length Per instead of a refilling bucket. Burst is ignored.
	Window bool
	// KeyFunc identifies the client, the client IP by default
	KeyFunc func(c *gin.Context) string
}

type rateLimiter struct {
	mu       sync.Mutex
	visitors map[string]*visitor
	limit    rate.Limit
	burst    int
	// window is zero in bucket mode
	window time.Duration
}

// allow reports whether the client behind key may proceed. When it may not,
// the returned duration is how long until it can retry.
func (r *rateLimiter) allow(key string, now time.Time) (bool, time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()

	v, exists := r.visitors[key]
	if !exists || (r.window > 0 && now.Sub(v.windowStart) >= r.window) {
		// A new window starts with a full bucket that refills once per window,
		// so no more than burst requests fit inside it
		v = &visitor{
			limiter:     rate.NewLimiter(r.limit, r.burst),
			windowStart: now,
		}
		r.visitors[key] = v
	}
	v.lastSeen = now

	if v.limiter.AllowN(now, 1) {
		return true, 0
	}

	if r.window > 0 {
		return false, v.windowStart.Add(r.window).Sub(now)
	}
	return false, time.Duration(float64(time.Second) / float64(r.limit))
}

func (r *rateLimiter) cleanupVisitors(ctx context.Context, ttl, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.mu.Lock()
			for key, v := range r.visitors {
				if time.Since(v.lastSeen) > ttl {
					delete(r.visitors, key)
				}
			}
			r.mu.Unlock()
		}
	}
}

// RateLimiterMiddleware limits every client to config.Limit requests per
// config.Per. Idle clients are forgotten after config.TTL. The cleanup
// goroutine stops when ctx is done.
func RateLimiterMiddleware(ctx context.Context, config RateLimiterConfig) gin.HandlerFunc {
	if config.Limit <= 0 {
		config.Limit = 1
	}
	if config.Per == 0 {
		config.Per = time.Second
	}
	if config.Burst == 0 || config.Window {
		config.Burst = config.Limit
	}
	if config.CleanupInterval == 0 {
		config.CleanupInterval = time.Minute
	}
	if config.TTL == 0 {
		config.TTL = 3 * time.Minute
	}
	if config.TTL < config.Per {
		config.TTL = config.Per
	}
	if config.KeyFunc == nil {
		config.KeyFunc = func(c *gin.Context) string { return c.ClientIP() }
	}

	r := &rateLimiter{
		visitors: make(map[string]*visitor),
		limit:    rate.Every(config.Per / time.Duration(config.Limit)),
		burst:    config.Burst,
	}
	if config.Window {
		r.limit = rate.Every(config.Per)
		r.window = config.Per
	}

	go r.cleanupVisitors(ctx, config.TTL, config.CleanupInterval)

	return func(c *gin.Context) {
		ok, retry := r.allow(config.KeyFunc(c), time.Now())
		if !ok {
			c.Header("Retry-After", strconv.Itoa(int(math.Ceil(retry.Seconds()))))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error":     "Too many requests",
				"requestID": c.GetString("requestID"),
			})
			return
		}

		c.Next()
	}
}
