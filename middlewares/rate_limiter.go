package middlewares

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"
)

// RateLimiter keeps one token bucket per client IP. Buckets of idle
// clients expire from the cache.
type RateLimiter struct {
	limit    rate.Limit
	burst    int
	limiters *cache.Cache
}

// NewRateLimiter allows requests per interval for each IP.
func NewRateLimiter(requests int, interval time.Duration) *RateLimiter {
	idle := 2 * interval
	return &RateLimiter{
		limit:    rate.Every(interval / time.Duration(requests)),
		burst:    requests,
		limiters: cache.New(idle, idle),
	}
}

func (rl *RateLimiter) limiterFor(ip string) *rate.Limiter {
	if l, found := rl.limiters.Get(ip); found {
		rl.limiters.Set(ip, l, cache.DefaultExpiration)
		return l.(*rate.Limiter)
	}
	l := rate.NewLimiter(rl.limit, rl.burst)
	if err := rl.limiters.Add(ip, l, cache.DefaultExpiration); err != nil {
		// lost the race for this IP
		if existing, found := rl.limiters.Get(ip); found {
			return existing.(*rate.Limiter)
		}
	}
	return l
}

func (rl *RateLimiter) RateLimit() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !rl.limiterFor(c.ClientIP()).Allow() {
			c.JSON(http.StatusTooManyRequests, gin.H{
				"error": "Too many requests, please slow down",
			})
			c.Abort()
			return
		}
		c.Next()
	}
}
