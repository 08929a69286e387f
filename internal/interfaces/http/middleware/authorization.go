package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/stockassist/platform/internal/application/dto"
	"github.com/stockassist/platform/pkg/errors"
)

// RequireAuthenticated rejects anonymous requests with 401.
func RequireAuthenticated() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := GetPrincipal(c); !ok {
			dto.SendError(c, errors.ErrUnauthenticated)
			return
		}
		c.Next()
	}
}

// RequireAuthority rejects anonymous requests with 401 and principals that
// hold none of authorities with 403.
func RequireAuthority(authorities ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, ok := GetPrincipal(c)
		if !ok {
			dto.SendError(c, errors.ErrUnauthenticated)
			return
		}
		if !p.HasAnyAuthority(authorities...) {
			dto.SendError(c, errors.ErrForbidden)
			return
		}
		c.Next()
	}
}
