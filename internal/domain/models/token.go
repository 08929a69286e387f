package models

import "time"

// IssuedToken is a freshly signed token together with the claims it encodes.
type IssuedToken struct {
	// Token is the compact JWT; access tokens carry the "Bearer " prefix.
	Token  string
	Claims *Claims
}

// TokenPair is the result of a login or refresh.
type TokenPair struct {
	Access  IssuedToken
	Refresh IssuedToken
}

// AccessLifetime returns how long the access token is valid from issuance.
func (p *TokenPair) AccessLifetime() time.Duration {
	return p.Access.Claims.ExpiresAt.Sub(p.Access.Claims.IssuedAt)
}
