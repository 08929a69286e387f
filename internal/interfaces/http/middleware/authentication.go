// Package middleware contains the gin middleware of the HTTP API: the
// authentication filter, per-route authority checks, request ids, login
// throttling and request telemetry.
package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/stockassist/platform/internal/application/dto"
	"github.com/stockassist/platform/internal/domain/service"
	"github.com/stockassist/platform/pkg/constants"
	"github.com/stockassist/platform/pkg/logger"
)

// Authenticate populates the request's authentication state when it can.
//
// Whitelisted requests go straight to the next handler without touching
// authentication state. Every other request runs through the resolver; a
// resolved principal is installed into the request context, and a request
// that resolves to nothing continues anonymously. Token problems never stop
// the chain: rejecting anonymous callers is the job of RequireAuthenticated
// and RequireAuthority on the routes that need it.
//
// The one failure surfaced here is an unavailable user store, answered with
// 503 rather than silently downgraded to anonymous.
func Authenticate(whitelist *service.WhitelistMatcher, resolver *service.PrincipalResolver, metrics service.AuthMetrics, log logger.Logger) gin.HandlerFunc {
	if metrics == nil {
		metrics = service.NoopMetrics()
	}
	log = log.WithComponent("auth_filter")

	return func(c *gin.Context) {
		if whitelist.IsWhitelisted(c.Request.Method, c.Request.URL.Path) {
			metrics.RecordAuthOutcome(constants.AuthOutcomeBypassed)
			c.Next()
			return
		}

		ctx := c.Request.Context()
		principal, err := resolver.Resolve(ctx, c.Request.Header)
		if err != nil {
			log.Error(ctx, "Authentication aborted, user store unavailable", err,
				logger.String("method", c.Request.Method),
				logger.String("path", c.Request.URL.Path),
			)
			dto.SendError(c, err)
			return
		}

		if principal != nil {
			installPrincipal(c, *principal)
			log.Debug(ctx, "Principal installed",
				logger.String("username", principal.Username),
				logger.Strings("authorities", principal.Authorities),
			)
		}
		c.Next()
	}
}
