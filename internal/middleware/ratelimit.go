package middleware

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

// redisCounter is the slice of the Redis API the limiter uses; *redis.Client
// satisfies it.
type redisCounter interface {
	SetNX(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.BoolCmd
	Incr(ctx context.Context, key string) *redis.IntCmd
	Expire(ctx context.Context, key string, expiration time.Duration) *redis.BoolCmd
}

// RateLimit limits each caller to maxRequests per window, counted in Redis.
// The counter key is the verified user ID when present, else the client IP.
// When rdb is nil (Redis not configured) or Redis is unreachable, requests
// pass through.
func RateLimit(rdb *redis.Client, maxRequests int, window time.Duration) gin.HandlerFunc {
	if rdb == nil {
		return func(c *gin.Context) { c.Next() }
	}
	return rateLimitWith(rdb, maxRequests, window)
}

func rateLimitWith(rdb redisCounter, maxRequests int, window time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		caller := c.GetString(ContextUserID)
		if caller == "" {
			caller = c.ClientIP()
		}
		key := fmt.Sprintf("ratelimit:%s:%s", c.FullPath(), caller)
		ctx := c.Request.Context()

		// The window is created atomically with the counter. A plain
		// INCR-then-EXPIRE pair can leave a counter without expiry when the
		// EXPIRE fails, locking the caller out permanently.
		created, err := rdb.SetNX(ctx, key, 1, window).Result()
		if err != nil {
			log.Printf("Warning: rate limit counter unavailable, allowing request: %v", err)
			c.Next()
			return
		}
		if created {
			c.Next()
			return
		}

		count, err := rdb.Incr(ctx, key).Result()
		if err != nil {
			log.Printf("Warning: rate limit counter unavailable, allowing request: %v", err)
			c.Next()
			return
		}
		if count == 1 {
			// The key expired between SetNX and Incr; restore the window.
			if err := rdb.Expire(ctx, key, window).Err(); err != nil {
				log.Printf("Warning: failed to set rate limit window: %v", err)
			}
		}

		if count > int64(maxRequests) {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "Rate limit exceeded"})
			return
		}
		c.Next()
	}
}
