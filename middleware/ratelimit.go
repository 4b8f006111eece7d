package middleware

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"golang-tourbackend/utils"
)

const (
	rateLimitWindow      = time.Hour
	rateLimitMaxRequests = 100
	rateLimitKeyPrefix   = "ratelimit:"
)

// RateLimit enforces a fixed request budget per client IP per window on API
// routes. Redis keeps the counters; when redis is unreachable the request is
// allowed through rather than failing the whole API.
func RateLimit() gin.HandlerFunc {
	return func(c *gin.Context) {
		if utils.RedisClient == nil {
			c.Next()
			return
		}

		ctx := c.Request.Context()
		key := rateLimitKeyPrefix + c.ClientIP()

		count, err := utils.RedisClient.Incr(ctx, key).Result()
		if err != nil {
			c.Next()
			return
		}
		if count == 1 {
			utils.RedisClient.Expire(ctx, key, rateLimitWindow)
		}

		if count > rateLimitMaxRequests {
			_ = c.Error(utils.NewAppError(
				"Too many requests from this IP, please try again in an hour.",
				http.StatusTooManyRequests))
			c.Abort()
			return
		}
		c.Next()
	}
}
