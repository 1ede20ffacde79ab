// Package ratelimiter throttles per-user writes with a Redis fixed window.
package ratelimiter

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// ExceededError reports a caller over its budget for the current window.
type ExceededError struct {
	Count      int64
	Window     time.Duration
	RetryAfter time.Duration
}

func (e ExceededError) Error() string {
	return fmt.Sprintf("rate limit exceeded: %d requests in %v", e.Count, e.Window)
}

type RedisRateLimiter struct {
	Redis *redis.Client
	// Now defaults to time.Now.
	Now func() time.Time
}

func NewRedisRateLimiter(redisClient *redis.Client) *RedisRateLimiter {
	return &RedisRateLimiter{
		Redis: redisClient,
		Now:   time.Now,
	}
}

// Allow counts one request for key in the current window and returns an
// ExceededError once more than maxRequests were seen.
func (l *RedisRateLimiter) Allow(ctx context.Context, key string, window time.Duration, maxRequests int) error {
	if window < time.Second {
		window = time.Second
	}
	now := time.Now
	if l.Now != nil {
		now = l.Now
	}
	ts := now()
	windowSec := int64(window / time.Second)
	slot := ts.Unix() / windowSec
	redisKey := fmt.Sprintf("rate_limit:%s:%d", key, slot)

	// INCR and EXPIRE travel in one round trip.
	pipe := l.Redis.Pipeline()
	incr := pipe.Incr(ctx, redisKey)
	pipe.Expire(ctx, redisKey, window)
	if _, err := pipe.Exec(ctx); err != nil {
		return err
	}

	if count := incr.Val(); count > int64(maxRequests) {
		resetAt := time.Unix((slot+1)*windowSec, 0)
		return ExceededError{Count: count, Window: window, RetryAfter: resetAt.Sub(ts)}
	}
	return nil
}
