package mw

import (
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"
)

// KeyedRateLimiter keeps one token bucket per client key. Buckets idle for
// longer than the expiry are dropped.
type KeyedRateLimiter struct {
	limiters *cache.Cache
	r        rate.Limit
	b        int
}

// NewKeyedRateLimiter creates a limiter allowing r events per second with burst b.
func NewKeyedRateLimiter(r rate.Limit, b int, idle time.Duration) *KeyedRateLimiter {
	return &KeyedRateLimiter{
		limiters: cache.New(idle, 2*idle),
		r:        r,
		b:        b,
	}
}

// GetLimiter returns the bucket for key, creating it on first use.
func (l *KeyedRateLimiter) GetLimiter(key string) *rate.Limiter {
	if v, found := l.limiters.Get(key); found {
		limiter := v.(*rate.Limiter)
		l.limiters.SetDefault(key, limiter)
		return limiter
	}
	limiter := rate.NewLimiter(l.r, l.b)
	if err := l.limiters.Add(key, limiter, cache.DefaultExpiration); err != nil {
		// Lost the race; use the bucket the winner stored.
		if v, found := l.limiters.Get(key); found {
			return v.(*rate.Limiter)
		}
	}
	return limiter
}

// ClientKey identifies callers by X-User-ID when present, else by IP.
func ClientKey(c *gin.Context) string {
	if uid, ok := UserID(c); ok {
		return "user:" + formatUser(uid)
	}
	return "ip:" + c.ClientIP()
}

// RateLimiter is a middleware for per-client rate limiting.
func RateLimiter(r rate.Limit, b int) gin.HandlerFunc {
	limiter := NewKeyedRateLimiter(r, b, 10*time.Minute)
	return func(c *gin.Context) {
		if !limiter.GetLimiter(ClientKey(c)).Allow() {
			retry := time.Second
			if r > 0 {
				retry = time.Duration(float64(time.Second) / float64(r))
			}
			c.Header("Retry-After", strconv.Itoa(int(math.Ceil(retry.Seconds()))))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "rate limit exceeded"})
			return
		}
		c.Next()
	}
}
