package middleware

import (
	"context"
	"fmt"
	"math"
	"net/http"
	"time"

	"dating-match-server/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// Counter is the redis subset used for fixed-window counting.
type Counter interface {
	Incr(ctx context.Context, key string) (int64, error)
	Expire(ctx context.Context, key string, expiration time.Duration) error
	TTL(ctx context.Context, key string) (time.Duration, error)
}

// RateLimit allows limit requests per window for each authenticated user,
// or per client IP when no user is set. When the counter store fails the
// request is let through.
func RateLimit(counter Counter, resource string, limit int64, window time.Duration, log *logrus.Entry) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := "ip:" + c.ClientIP()
		if uid, ok := c.Get("user_id"); ok {
			id = fmt.Sprintf("user:%v", uid)
		}
		key := fmt.Sprintf("rl:%s:%s", resource, id)
		ctx := c.Request.Context()

		count, err := counter.Incr(ctx, key)
		if err != nil {
			log.WithError(err).WithField("key", key).Warn("Rate limit store unavailable, allowing request")
			c.Next()
			return
		}
		if count == 1 {
			if err := counter.Expire(ctx, key, window); err != nil {
				log.WithError(err).WithField("key", key).Warn("Failed to set rate limit window")
			}
		}
		if count > limit {
			retry := window
			if ttl, err := counter.TTL(ctx, key); err == nil && ttl > 0 {
				retry = ttl
			}
			c.Header("Retry-After", fmt.Sprintf("%.0f", math.Ceil(retry.Seconds())))
			abortWithError(c, http.StatusTooManyRequests, models.CodeRateLimited, "Too many requests, please slow down")
			return
		}
		c.Next()
	}
}
