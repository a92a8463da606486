package middleware

import (
	"fmt"
	"log/slog"
	"time"

	"collab-service/internal/services"
	"collab-service/pkg/response"

	"github.com/gin-gonic/gin"
)

// RateLimit throttles authenticated callers by user id using a sliding
// window in Redis. Fails open when Redis is unreachable.
func RateLimit(presence *services.PresenceService, limit int, window time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := CurrentUserID(c)
		if !ok {
			c.Next()
			return
		}

		key := fmt.Sprintf("ratelimit:user:%d", userID)
		allowed, err := presence.CheckRateLimit(c.Request.Context(), key, limit, window)
		if err != nil {
			slog.Warn("Rate limit check failed", "key", key, "error", err)
			c.Next()
			return
		}
		if !allowed {
			response.TooManyRequests(c, "rate limit exceeded")
			c.Abort()
			return
		}

		c.Next()
	}
}

// RateLimitIP throttles unauthenticated endpoints by client IP.
func RateLimitIP(presence *services.PresenceService, limit int, window time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := fmt.Sprintf("ratelimit:ip:%s", c.ClientIP())
		allowed, err := presence.CheckRateLimit(c.Request.Context(), key, limit, window)
		if err != nil {
			slog.Warn("Rate limit check failed", "key", key, "error", err)
			c.Next()
			return
		}
		if !allowed {
			response.TooManyRequests(c, "rate limit exceeded")
			c.Abort()
			return
		}

		c.Next()
	}
}
