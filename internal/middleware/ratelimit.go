package middleware

import (
	"math"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/charlesng35/studentms/pkg/errors"
	"github.com/charlesng35/studentms/pkg/logger"
	"github.com/charlesng35/studentms/pkg/response"
)

// RateLimitConfig bounds requests per caller and route within a fixed window.
type RateLimitConfig struct {
	Requests int
	Window   time.Duration
}

// RateLimit limits requests per (caller, route). Callers are identified by token subject
// when authenticated and by client IP otherwise. Store failures let the request through.
func RateLimit(store RateStore, cfg RateLimitConfig) gin.HandlerFunc {
	if store == nil {
		store = NewMemoryRateStore()
	}
	log := logger.WithModule("ratelimit")

	return func(c *gin.Context) {
		if cfg.Requests <= 0 || cfg.Window <= 0 {
			c.Next()
			return
		}

		key := callerKey(c) + "|" + c.FullPath()
		count, ttl, err := store.Increment(c.Request.Context(), key, cfg.Window)
		if err != nil {
			log.Warn("rate limit store unavailable", zap.Error(err))
			c.Next()
			return
		}

		remaining := cfg.Requests - count
		if remaining < 0 {
			remaining = 0
		}
		c.Header("X-RateLimit-Limit", strconv.Itoa(cfg.Requests))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(remaining))
		c.Header("X-RateLimit-Reset", strconv.Itoa(int(math.Ceil(ttl.Seconds()))))

		if count > cfg.Requests {
			c.Header("Retry-After", strconv.Itoa(int(math.Ceil(ttl.Seconds()))))
			response.Error(c, errors.ErrRateLimit)
			c.Abort()
			return
		}

		c.Next()
	}
}

func callerKey(c *gin.Context) string {
	if claims, ok := ClaimsFrom(c); ok && claims.Subject != "" {
		return "sub:" + claims.Subject
	}
	return "ip:" + c.ClientIP()
}
