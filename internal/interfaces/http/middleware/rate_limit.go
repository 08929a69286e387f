package middleware

import (
	"math"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/stockassist/platform/internal/application/dto"
	"github.com/stockassist/platform/internal/domain/service"
	"github.com/stockassist/platform/pkg/errors"
	"github.com/stockassist/platform/pkg/logger"
)

// RateLimit throttles the route per client IP within scope. A limiter
// failure lets the request through.
func RateLimit(limiter service.RateLimiter, scope string, log logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		allowed, retryAfter, err := limiter.Allow(ctx, scope, c.ClientIP())
		if err != nil {
			log.Error(ctx, "rate limiter failed", err, logger.String("scope", scope))
			c.Next() // Fail open
			return
		}

		if !allowed {
			log.Warn(ctx, "rate limit exceeded",
				logger.String("scope", scope),
				logger.String("client_ip", c.ClientIP()),
			)
			c.Header("Retry-After", strconv.Itoa(int(math.Ceil(retryAfter.Seconds()))))
			dto.SendError(c, errors.ErrRateLimited)
			return
		}
		c.Next()
	}
}
