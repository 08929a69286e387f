// Package dto holds the request and response shapes of the HTTP API.
package dto

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/stockassist/platform/pkg/constants"
	"github.com/stockassist/platform/pkg/errors"
)

// APIResponse is the envelope every JSON endpoint answers with.
type APIResponse struct {
	Success   bool        `json:"success"`
	Data      interface{} `json:"data,omitempty"`
	Error     *ErrorDTO   `json:"error,omitempty"`
	RequestID string      `json:"request_id,omitempty"`
	Timestamp int64       `json:"timestamp"`
}

// ErrorDTO describes a failed request.
type ErrorDTO struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// SuccessResponse wraps data in a success envelope.
func SuccessResponse(data interface{}, requestID string) *APIResponse {
	return &APIResponse{
		Success:   true,
		Data:      data,
		RequestID: requestID,
		Timestamp: time.Now().Unix(),
	}
}

// ErrorResponse wraps err in a failure envelope. Errors that are not an
// AppError are reported as internal without leaking their text.
func ErrorResponse(err error, requestID string) *APIResponse {
	errorDTO := &ErrorDTO{
		Code:    string(errors.CodeInternal),
		Message: "Internal server error",
	}
	var appErr *errors.AppError
	if errors.As(err, &appErr) {
		errorDTO = &ErrorDTO{Code: string(appErr.Code), Message: appErr.Message}
	}

	return &APIResponse{
		Success:   false,
		Error:     errorDTO,
		RequestID: requestID,
		Timestamp: time.Now().Unix(),
	}
}

// SendSuccess writes a success envelope with status.
func SendSuccess(c *gin.Context, status int, data interface{}) {
	c.JSON(status, SuccessResponse(data, c.GetString(string(constants.ContextKeyRequestID))))
}

// SendError writes a failure envelope with the status err maps to and aborts the chain.
func SendError(c *gin.Context, err error) {
	c.AbortWithStatusJSON(errors.HTTPStatus(err), ErrorResponse(err, c.GetString(string(constants.ContextKeyRequestID))))
}
