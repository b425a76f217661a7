package middleware

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"resume-builder/internal/shared/metrics"
	"resume-builder/internal/shared/server/respond"
)

// RedisRateLimit is a fixed-window limiter shared across instances.
// Each principal may make floor(rps*window)+burst requests per window.
func RedisRateLimit(client *redis.Client, rule RateLimitRule, window time.Duration) gin.HandlerFunc {
	if client == nil {
		return RateLimit(RateLimitConfig{Rules: map[string]RateLimitRule{defaultRateLimitGroup: rule}})
	}
	windowSeconds := int(window.Seconds())
	if windowSeconds <= 0 {
		windowSeconds = 1
	}
	allowedPerWindow := int(rule.Rate*float64(windowSeconds)) + rule.Burst
	return func(c *gin.Context) {
		if allowedPerWindow <= 0 {
			c.Next()
			return
		}
		bucket := time.Now().Unix() / int64(windowSeconds)
		key := fmt.Sprintf("rl:%s:%d", principalKey(c), bucket)

		ctx := c.Request.Context()
		cnt, err := client.Incr(ctx, key).Result()
		if err != nil {
			respond.Failure(c, http.StatusInternalServerError, "Rate limit check failed", err.Error())
			return
		}
		if cnt == 1 {
			_ = client.Expire(ctx, key, time.Duration(windowSeconds+1)*time.Second).Err()
		}
		if int(cnt) > allowedPerWindow {
			metrics.RateLimitRejected.WithLabelValues("redis").Inc()
			rejectRateLimited(c, time.Duration(windowSeconds)*time.Second)
			return
		}
		metrics.RateLimitAllowed.WithLabelValues("redis").Inc()
		c.Next()
	}
}
