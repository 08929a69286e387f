package middleware

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/stockassist/platform/pkg/constants"
)

const maxRequestIDLength = 128

// RequestID propagates the caller's X-Request-ID or assigns a new one, and
// makes it available to handlers, logs and the response.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(constants.HeaderRequestID)
		if requestID == "" || len(requestID) > maxRequestIDLength {
			requestID = uuid.NewString()
		}

		c.Set(string(constants.ContextKeyRequestID), requestID)
		c.Request = c.Request.WithContext(context.WithValue(c.Request.Context(), constants.ContextKeyRequestID, requestID))
		c.Header(constants.HeaderRequestID, requestID)
		c.Next()
	}
}
