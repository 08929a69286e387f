// Package constants defines system-wide constants for the StockAssist platform.
// This package provides type-safe constant definitions used across all modules.
package constants

import "time"

// ================================================================================
// Token Type Constants
// ================================================================================

// TokenKind distinguishes the two kinds of signed credentials the platform issues.
type TokenKind string

const (
	// TokenKindAccess represents a short-lived access token
	TokenKindAccess TokenKind = "access"

	// TokenKindRefresh represents a long-lived refresh token
	TokenKindRefresh TokenKind = "refresh"
)

// ================================================================================
// Token Lifetime Constants
// ================================================================================

const (
	// AccessTokenTTL is the lifetime of an access token (30 minutes)
	AccessTokenTTL = 30 * time.Minute

	// RefreshTokenTTL is the lifetime of a refresh token (7 days)
	RefreshTokenTTL = 7 * 24 * time.Hour

	// MinSigningKeyBytes is the minimum HMAC-SHA256 key size accepted at startup
	MinSigningKeyBytes = 32
)

// ================================================================================
// JWT Claim Constants
// ================================================================================

const (
	// ClaimUsername carries the username of an access token holder
	ClaimUsername = "username"

	// ClaimAuthorities carries the comma-joined authority list
	ClaimAuthorities = "authorities"

	// AccessTokenSubject marks a token as an access token in the "sub" claim
	AccessTokenSubject = "AccessToken"

	// AuthoritySeparator joins authorities inside the authorities claim
	AuthoritySeparator = ","
)

// ================================================================================
// HTTP Header and Cookie Constants
// ================================================================================

const (
	// HeaderAuthorization carries the access token
	HeaderAuthorization = "Authorization"

	// HeaderRequestID carries the request correlation id
	HeaderRequestID = "X-Request-ID"

	// BearerPrefix is the scheme marker in front of an access token
	BearerPrefix = "Bearer "

	// TokenTypeBearer is the token_type reported to clients
	TokenTypeBearer = "Bearer"

	// CookieRefreshToken is the name of the refresh token cookie
	CookieRefreshToken = "RefreshToken"

	// CookiePath is the path attribute of the refresh token cookie
	CookiePath = "/"
)

// ================================================================================
// Context Keys
// ================================================================================

// ContextKey is the type of keys stored in a request context.
type ContextKey string

const (
	// ContextKeyRequestID is the request id key
	ContextKeyRequestID ContextKey = "request_id"

	// ContextKeyPrincipal is the authenticated principal key
	ContextKeyPrincipal ContextKey = "principal"

	// ContextKeyTraceID is the trace id key
	ContextKeyTraceID ContextKey = "trace_id"
)

// ================================================================================
// Metric Outcome Labels
// ================================================================================

// AuthOutcome labels the result of one authentication pass.
type AuthOutcome string

const (
	AuthOutcomeBypassed      AuthOutcome = "bypassed"
	AuthOutcomeAuthenticated AuthOutcome = "authenticated"
	AuthOutcomeAnonymous     AuthOutcome = "anonymous"
	AuthOutcomeMalformed     AuthOutcome = "malformed"
	AuthOutcomeInvalid       AuthOutcome = "invalid"
	AuthOutcomeExpired       AuthOutcome = "expired"
	AuthOutcomeUnknownUser   AuthOutcome = "unknown_user"
	AuthOutcomeStoreError    AuthOutcome = "store_error"
)

// ================================================================================
// Rate Limit Constants
// ================================================================================

const (
	// RateLimitScopeLogin keys login attempts per client IP
	RateLimitScopeLogin = "login"

	// DefaultLoginAttemptsPerMinute bounds password guessing from a single client
	DefaultLoginAttemptsPerMinute = 10
)

// ================================================================================
// Service Defaults
// ================================================================================

const (
	// ServiceName identifies the service in logs, traces and metrics
	ServiceName = "stockassist"

	// EnvPrefix is the environment variable prefix read by the config loader
	EnvPrefix = "STOCKASSIST"
)
