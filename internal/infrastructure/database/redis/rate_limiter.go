// internal/infrastructure/database/redis/rate_limiter.go
package redis

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

const rateLimitPrefix = "rate_limit:"

// RateLimiter counts requests per key in fixed windows
type RateLimiter struct {
	rdb    redis.Cmdable
	window time.Duration
}

// NewRateLimiter creates a limiter with the given window
func NewRateLimiter(rdb redis.Cmdable, window time.Duration) *RateLimiter {
	return &RateLimiter{rdb: rdb, window: window}
}

// Hit records a request for key and returns how many requests the current
// window has seen, this one included
func (l *RateLimiter) Hit(ctx context.Context, key string) (int64, error) {
	k := rateLimitPrefix + key

	count, err := l.rdb.Incr(ctx, k).Result()
	if err != nil {
		return 0, err
	}
	// The first hit opens the window
	if count == 1 {
		if err := l.rdb.Expire(ctx, k, l.window).Err(); err != nil {
			return count, err
		}
	}
	return count, nil
}

// Window returns the length of a counting window
func (l *RateLimiter) Window() time.Duration {
	return l.window
}
