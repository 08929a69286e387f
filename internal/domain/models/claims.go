package models

import (
	"time"

	"github.com/stockassist/platform/pkg/constants"
)

// Claims is the verified payload of a signed token.
type Claims struct {
	// ID is the jti; set on refresh tokens only.
	ID          string
	Subject     string
	Username    string
	Authorities []string
	IssuedAt    time.Time
	ExpiresAt   time.Time
}

// IsExpiredAt reports whether the token is no longer valid at now.
// A token whose expiration equals now is expired.
func (c *Claims) IsExpiredAt(now time.Time) bool {
	return !c.ExpiresAt.After(now)
}

// IsAccessToken reports whether the claims carry the access token marker.
func (c *Claims) IsAccessToken() bool {
	return c.Subject == constants.AccessTokenSubject
}

// IsRefreshToken reports whether the claims have the refresh token shape:
// a jti and no identity.
func (c *Claims) IsRefreshToken() bool {
	return c.ID != "" && c.Username == "" && c.Subject == ""
}
