package repository

import (
	"context"
	"time"
)

// RefreshSessionStore tracks live refresh tokens by jti.
// Implementation: internal/infrastructure/redis/refresh_session_store.go
type RefreshSessionStore interface {
	// Save records that refresh token jti belongs to username until ttl elapses.
	Save(ctx context.Context, jti, username string, ttl time.Duration) error

	// Lookup returns the owner of jti. The second result is false when the
	// session does not exist or has been revoked.
	Lookup(ctx context.Context, jti string) (string, bool, error)

	// Consume atomically reads and deletes the session, so at most one caller
	// ever gets ok == true for a given jti.
	Consume(ctx context.Context, jti string) (string, bool, error)

	// Revoke deletes the session. Revoking an unknown jti is not an error.
	Revoke(ctx context.Context, jti string) error
}
