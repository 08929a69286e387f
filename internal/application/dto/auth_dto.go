package dto

import (
	"github.com/stockassist/platform/internal/domain/models"
)

// LoginRequest is the body of POST /api/auth/login.
type LoginRequest struct {
	Username string `json:"username" binding:"required,max=64"`
	Password string `json:"password" binding:"required,max=128"`
}

// TokenResponse is returned by login and refresh. The refresh token travels
// only in the HttpOnly cookie and is never part of the body.
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"`
}

// AuthResult is what the auth service hands the HTTP layer after login or refresh.
type AuthResult struct {
	Token        TokenResponse
	RefreshToken string
	Principal    models.Principal
}

// VerifyResponse is returned by GET /api/auth/verify.
type VerifyResponse struct {
	Valid    bool   `json:"valid"`
	Username string `json:"username,omitempty"`
}

// PrincipalResponse is returned by GET /api/auth/me.
type PrincipalResponse struct {
	Username    string   `json:"username"`
	Authorities []string `json:"authorities"`
}

// NewPrincipalResponse converts a principal for the wire.
func NewPrincipalResponse(p models.Principal) PrincipalResponse {
	authorities := p.Authorities
	if authorities == nil {
		authorities = []string{}
	}
	return PrincipalResponse{Username: p.Username, Authorities: authorities}
}
