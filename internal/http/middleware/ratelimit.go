package middleware

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"railway-backend/internal/ratelimiter"
	"railway-backend/internal/utils"
)

// Limiter is satisfied by ratelimiter.RedisRateLimiter.
type Limiter interface {
	Allow(ctx context.Context, key string, window time.Duration, maxRequests int) error
}

// RateLimit throttles per authenticated user, falling back to client IP.
// Limiter failures let the request through.
func RateLimit(l Limiter, window time.Duration, maxRequests int) gin.HandlerFunc {
	return func(c *gin.Context) {
		if l == nil || maxRequests <= 0 {
			c.Next()
			return
		}
		key := "ip:" + c.ClientIP()
		if rc, ok := GetRequestContext(c); ok && rc.UserID > 0 {
			key = fmt.Sprintf("user:%d", rc.UserID)
		}

		err := l.Allow(c.Request.Context(), key, window, maxRequests)
		var exceeded ratelimiter.ExceededError
		switch {
		case err == nil:
			c.Next()
		case errors.As(err, &exceeded):
			c.Header("Retry-After", strconv.Itoa(int(math.Ceil(exceeded.RetryAfter.Seconds()))))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error":      exceeded.Error(),
				"code":       "rate_limited",
				"message":    "too many booking requests, retry later",
				"request_id": GetRequestID(c),
			})
		default:
			utils.LogError(GetRequestID(c), "ratelimit", "allow", err)
			c.Next()
		}
	}
}
