// Package service holds the domain services of the authentication core:
// the token codec contract, the whitelist matcher and the principal resolver.
package service

import (
	"context"
	"time"

	"github.com/stockassist/platform/internal/domain/models"
	"github.com/stockassist/platform/pkg/constants"
)

// TokenCodec creates and verifies signed tokens with the process signing key.
// Implementation: internal/infrastructure/crypto/jwt_manager.go
type TokenCodec interface {
	// CreateAccessToken signs a 30 minute token carrying the identity's
	// username and authorities. The returned token has the "Bearer " prefix.
	CreateAccessToken(identity models.Principal) (*models.IssuedToken, error)

	// CreateRefreshToken signs a 7 day token carrying only a jti and timestamps.
	CreateRefreshToken() (*models.IssuedToken, error)

	// ParseAndValidate verifies signature, structure and expiry. Every failure
	// is one of errors.ErrMalformedToken, ErrInvalidToken or ErrTokenExpired.
	ParseAndValidate(token string) (*models.Claims, error)

	// IsExpired reports whether claims are expired at the codec's current time.
	IsExpired(claims *models.Claims) bool
}

// RateLimiter throttles requests per (scope, identifier).
// Implementation: internal/infrastructure/ratelimit/redis_rate_limiter.go
type RateLimiter interface {
	// Allow consumes one unit. When it returns false, retryAfter says how
	// long the caller should wait.
	Allow(ctx context.Context, scope, identifier string) (allowed bool, retryAfter time.Duration, err error)
}

// AuthMetrics receives authentication telemetry.
type AuthMetrics interface {
	RecordAuthOutcome(outcome constants.AuthOutcome)
	ObserveUserLookup(d time.Duration)
	RecordTokenIssued(kind constants.TokenKind)
}

type noopMetrics struct{}

func (noopMetrics) RecordAuthOutcome(constants.AuthOutcome) {}
func (noopMetrics) ObserveUserLookup(time.Duration)         {}
func (noopMetrics) RecordTokenIssued(constants.TokenKind)   {}

// NoopMetrics discards all telemetry.
func NoopMetrics() AuthMetrics { return noopMetrics{} }
