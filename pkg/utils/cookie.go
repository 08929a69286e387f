package utils

import (
	"net/http"

	"github.com/stockassist/platform/pkg/constants"
)

// RefreshTokenFromRequest returns the value of the RefreshToken cookie.
func RefreshTokenFromRequest(r *http.Request) (string, bool) {
	cookie, err := r.Cookie(constants.CookieRefreshToken)
	if err != nil || cookie.Value == "" {
		return "", false
	}
	return cookie.Value, true
}

// NewRefreshTokenCookie builds the cookie that carries a refresh token:
// HttpOnly, Path=/, Max-Age equal to the refresh token lifetime.
func NewRefreshTokenCookie(token string, secure bool, domain string) *http.Cookie {
	return &http.Cookie{
		Name:     constants.CookieRefreshToken,
		Value:    token,
		Path:     constants.CookiePath,
		Domain:   domain,
		MaxAge:   int(constants.RefreshTokenTTL.Seconds()),
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	}
}

// ExpiredRefreshTokenCookie builds a cookie that makes the browser drop the refresh token.
func ExpiredRefreshTokenCookie(secure bool, domain string) *http.Cookie {
	return &http.Cookie{
		Name:     constants.CookieRefreshToken,
		Value:    "",
		Path:     constants.CookiePath,
		Domain:   domain,
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	}
}
