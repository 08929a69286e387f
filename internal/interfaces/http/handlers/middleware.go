package handlers

import (
	"fmt"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/stockassist/platform/internal/application/dto"
	"github.com/stockassist/platform/pkg/errors"
	"github.com/stockassist/platform/pkg/logger"
)

// LoggingMiddleware logs every request once it has been handled.
func LoggingMiddleware(log logger.Logger) gin.HandlerFunc {
	log = log.WithComponent("http")
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		fields := []logger.Field{
			logger.String("method", c.Request.Method),
			logger.String("path", c.Request.URL.Path),
			logger.Int("status", c.Writer.Status()),
			logger.Int64("latency_ms", time.Since(start).Milliseconds()),
			logger.String("client_ip", c.ClientIP()),
		}
		if c.Writer.Status() >= 500 {
			log.Warn(c.Request.Context(), "Request failed", fields...)
			return
		}
		log.Info(c.Request.Context(), "Request processed", fields...)
	}
}

// RecoveryMiddleware turns a panic into a 500 envelope.
func RecoveryMiddleware(log logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				log.Error(c.Request.Context(), "Panic recovered", fmt.Errorf("panic: %v", r),
					logger.String("path", c.Request.URL.Path))
				dto.SendError(c, errors.ErrInternal)
			}
		}()
		c.Next()
	}
}
