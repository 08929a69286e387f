package middleware

import (
	"context"
	"slices"

	"github.com/gin-gonic/gin"

	"github.com/stockassist/platform/internal/domain/models"
	"github.com/stockassist/platform/pkg/constants"
)

// WithPrincipal returns a copy of ctx carrying p. The authority slice is
// cloned so the stored value cannot be changed through the caller's copy.
func WithPrincipal(ctx context.Context, p models.Principal) context.Context {
	p.Authorities = slices.Clone(p.Authorities)
	return context.WithValue(ctx, constants.ContextKeyPrincipal, p)
}

// PrincipalFromContext returns the principal installed for this request.
// The second result is false for anonymous requests.
func PrincipalFromContext(ctx context.Context) (models.Principal, bool) {
	p, ok := ctx.Value(constants.ContextKeyPrincipal).(models.Principal)
	return p, ok
}

// GetPrincipal is PrincipalFromContext for gin handlers.
func GetPrincipal(c *gin.Context) (models.Principal, bool) {
	return PrincipalFromContext(c.Request.Context())
}

func installPrincipal(c *gin.Context, p models.Principal) {
	c.Request = c.Request.WithContext(WithPrincipal(c.Request.Context(), p))
	c.Set(string(constants.ContextKeyPrincipal), p)
}
