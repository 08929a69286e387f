// Package errors defines the structured error type used across the StockAssist platform.
// Every AppError carries a stable machine-readable code and the HTTP status it maps to.
package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
)

// Code is a stable machine-readable error identifier.
type Code string

const (
	CodeMalformedToken     Code = "malformed_token"
	CodeInvalidToken       Code = "invalid_token"
	CodeTokenExpired       Code = "token_expired"
	CodeUnknownUser        Code = "unknown_user"
	CodeStoreUnavailable   Code = "store_unavailable"
	CodeInvalidCredentials Code = "invalid_credentials"
	CodeUnauthenticated    Code = "unauthenticated"
	CodeForbidden          Code = "forbidden"
	CodeInvalidRequest     Code = "invalid_request"
	CodeInvalidConfig      Code = "invalid_config"
	CodeRateLimited        Code = "rate_limited"
	CodeNotFound           Code = "not_found"
	CodeInternal           Code = "internal_error"
)

// AppError represents a structured application error
type AppError struct {
	Code       Code
	Message    string
	HTTPStatus int
	cause      error
}

// New creates an AppError.
func New(code Code, httpStatus int, message string) *AppError {
	return &AppError{Code: code, Message: message, HTTPStatus: httpStatus}
}

func (e *AppError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.cause)
	}
	return e.Message
}

// Unwrap returns the underlying cause.
func (e *AppError) Unwrap() error {
	return e.cause
}

// Is matches on code, so a sentinel matches every copy derived from it.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// WithError returns a copy of e carrying cause. The sentinel itself is never mutated.
func (e *AppError) WithError(cause error) *AppError {
	cp := *e
	cp.cause = cause
	return &cp
}

// WithMessage returns a copy of e with a more specific message.
func (e *AppError) WithMessage(format string, args ...interface{}) *AppError {
	cp := *e
	cp.Message = fmt.Sprintf(format, args...)
	return &cp
}

// ================================================================================
// Predefined Errors
// ================================================================================

var (
	// Token-level failures. All of them mean "not authenticated".
	ErrMalformedToken = New(CodeMalformedToken, http.StatusUnauthorized, "token is malformed")
	ErrInvalidToken   = New(CodeInvalidToken, http.StatusUnauthorized, "token signature or claims are invalid")
	ErrTokenExpired   = New(CodeTokenExpired, http.StatusUnauthorized, "token has expired")

	ErrUnknownUser      = New(CodeUnknownUser, http.StatusUnauthorized, "user not found")
	ErrStoreUnavailable = New(CodeStoreUnavailable, http.StatusServiceUnavailable, "user store unavailable")

	ErrInvalidCredentials = New(CodeInvalidCredentials, http.StatusUnauthorized, "invalid username or password")
	ErrUnauthenticated    = New(CodeUnauthenticated, http.StatusUnauthorized, "authentication required")
	ErrForbidden          = New(CodeForbidden, http.StatusForbidden, "insufficient authority")
	ErrInvalidRequest     = New(CodeInvalidRequest, http.StatusBadRequest, "invalid request")
	ErrInvalidConfig      = New(CodeInvalidConfig, http.StatusInternalServerError, "invalid configuration")
	ErrRateLimited        = New(CodeRateLimited, http.StatusTooManyRequests, "too many requests")
	ErrNotFound           = New(CodeNotFound, http.StatusNotFound, "the requested resource was not found")
	ErrInternal           = New(CodeInternal, http.StatusInternalServerError, "internal server error")
)

// ================================================================================
// Helpers
// ================================================================================

// Is is errors.Is re-exported so callers need a single errors import.
func Is(err, target error) bool {
	return stderrors.Is(err, target)
}

// As is errors.As re-exported so callers need a single errors import.
func As(err error, target interface{}) bool {
	return stderrors.As(err, target)
}

// IsTokenError reports whether err is one of the token-level failures.
func IsTokenError(err error) bool {
	return Is(err, ErrMalformedToken) || Is(err, ErrInvalidToken) || Is(err, ErrTokenExpired)
}

// HTTPStatus returns the status an error maps to; unknown errors map to 500.
func HTTPStatus(err error) int {
	var appErr *AppError
	if As(err, &appErr) && appErr.HTTPStatus != 0 {
		return appErr.HTTPStatus
	}
	return http.StatusInternalServerError
}

// CodeOf returns the code of err, or CodeInternal for foreign errors.
func CodeOf(err error) Code {
	var appErr *AppError
	if As(err, &appErr) {
		return appErr.Code
	}
	return CodeInternal
}
