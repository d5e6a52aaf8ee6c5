package handler

import (
	"context"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/placereviews/auth-api/internal/dto"
	"github.com/placereviews/auth-api/internal/service"
	"go.uber.org/zap"
)

// Limiter decides whether a request identified by key fits the window
type Limiter interface {
	Allow(ctx context.Context, key string, limit int, window time.Duration) (*service.RateLimitDecision, error)
}

// RateLimitMiddleware creates a rate limiting middleware.
// Requests are let through when the limiter itself fails.
func RateLimitMiddleware(limiter Limiter, limit int, window time.Duration, keyFunc func(*gin.Context) string, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := keyFunc(c)

		decision, err := limiter.Allow(c.Request.Context(), key, limit, window)
		if err != nil {
			logger.Warn("Rate limiter unavailable", zap.String("key", key), zap.Error(err))
			c.Next()
			return
		}

		c.Header("X-RateLimit-Limit", strconv.Itoa(limit))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(decision.Remaining))

		if !decision.Allowed {
			retryAfter := int(math.Ceil(decision.RetryAfter.Seconds()))
			if retryAfter < 1 {
				retryAfter = 1
			}
			c.Header("Retry-After", strconv.Itoa(retryAfter))

			c.AbortWithStatusJSON(http.StatusTooManyRequests, dto.Response{
				Success: false,
				Message: "Too many requests, try again later",
			})
			return
		}

		c.Next()
	}
}

// IPBasedKey extracts rate limit key from client IP.
// Forwarded headers are honored only for the engine's trusted proxies.
func IPBasedKey(c *gin.Context) string {
	return c.ClientIP()
}

// RouteAndIPKey limits each route separately per client IP
func RouteAndIPKey(c *gin.Context) string {
	return c.FullPath() + ":" + IPBasedKey(c)
}
