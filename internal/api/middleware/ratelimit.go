package middleware

import (
	"math"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	apierrors "github.com/feral-file/ff-registry/internal/api/shared/errors"
	"github.com/feral-file/ff-registry/internal/logger"
	"github.com/feral-file/ff-registry/internal/ratelimit"
)

// KeyFunc picks the bucket a request spends from
type KeyFunc func(c *gin.Context) string

// PayerOrIP keys paying clients by the payer header and everyone else by client IP
func PayerOrIP(payerHeader string) KeyFunc {
	return func(c *gin.Context) string {
		if payer := c.GetHeader(payerHeader); payer != "" {
			return "payer:" + payer
		}
		return "ip:" + c.ClientIP()
	}
}

// RateLimit rejects requests over the limit with 429 and a Retry-After header.
// A nil limiter disables limiting. When the limiter cannot decide the request is let through.
func RateLimit(limiter ratelimit.Limiter, key KeyFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		if limiter == nil {
			c.Next()
			return
		}

		decision, err := limiter.Allow(c.Request.Context(), key(c))
		if err != nil {
			logger.WarnCtx(c.Request.Context(), "Rate limiter unavailable, allowing request",
				zap.Error(err),
				zap.String("path", c.FullPath()),
			)
			c.Next()
			return
		}

		c.Header("X-RateLimit-Remaining", strconv.Itoa(decision.Remaining))
		if !decision.Allowed {
			retryAfter := int(math.Ceil(decision.RetryAfter.Seconds()))
			c.Header("Retry-After", strconv.Itoa(max(retryAfter, 1)))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error": apierrors.NewRateLimitedError("retry after " + decision.RetryAfter.String()),
			})
			return
		}
		c.Next()
	}
}
