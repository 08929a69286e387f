package service

import (
	"context"
	"net/http"
	"time"

	"github.com/stockassist/platform/internal/domain/models"
	"github.com/stockassist/platform/internal/domain/repository"
	"github.com/stockassist/platform/pkg/constants"
	"github.com/stockassist/platform/pkg/errors"
	"github.com/stockassist/platform/pkg/logger"
	"github.com/stockassist/platform/pkg/utils"
)

// PrincipalResolver turns request headers into an authenticated principal.
// It has no side effects beyond logging and metrics.
type PrincipalResolver struct {
	codec   TokenCodec
	users   repository.UserRepository
	metrics AuthMetrics
	log     logger.Logger
}

// NewPrincipalResolver creates a resolver. metrics may be nil.
func NewPrincipalResolver(codec TokenCodec, users repository.UserRepository, metrics AuthMetrics, log logger.Logger) *PrincipalResolver {
	if metrics == nil {
		metrics = NoopMetrics()
	}
	return &PrincipalResolver{
		codec:   codec,
		users:   users,
		metrics: metrics,
		log:     log.WithComponent("principal_resolver"),
	}
}

// Resolve runs extract -> validate -> username -> lookup, stopping at the
// first stage that yields nothing. A nil principal with a nil error means the
// request is anonymous. The only error returned is errors.ErrStoreUnavailable.
func (r *PrincipalResolver) Resolve(ctx context.Context, header http.Header) (*models.Principal, error) {
	token, ok := r.extractToken(header)
	if !ok {
		r.metrics.RecordAuthOutcome(constants.AuthOutcomeAnonymous)
		return nil, nil
	}

	claims, ok := r.validate(ctx, token)
	if !ok {
		return nil, nil
	}

	username, ok := r.extractUsername(ctx, claims)
	if !ok {
		return nil, nil
	}

	user, ok, err := r.lookup(ctx, username)
	if err != nil {
		r.metrics.RecordAuthOutcome(constants.AuthOutcomeStoreError)
		return nil, err
	}
	if !ok {
		return nil, nil
	}

	principal := models.NewPrincipal(user)
	r.metrics.RecordAuthOutcome(constants.AuthOutcomeAuthenticated)
	return &principal, nil
}

func (r *PrincipalResolver) extractToken(header http.Header) (string, bool) {
	return utils.ExtractBearer(header.Get(constants.HeaderAuthorization))
}

func (r *PrincipalResolver) validate(ctx context.Context, token string) (*models.Claims, bool) {
	claims, err := r.codec.ParseAndValidate(token)
	switch {
	case err == nil:
	case errors.Is(err, errors.ErrMalformedToken):
		r.log.Debug(ctx, "Rejected malformed token", logger.Error(err))
		r.metrics.RecordAuthOutcome(constants.AuthOutcomeMalformed)
		return nil, false
	case errors.Is(err, errors.ErrTokenExpired):
		r.log.Info(ctx, "Rejected expired token", logger.Error(err))
		r.metrics.RecordAuthOutcome(constants.AuthOutcomeExpired)
		return nil, false
	default:
		r.log.Info(ctx, "Rejected invalid token", logger.Error(err))
		r.metrics.RecordAuthOutcome(constants.AuthOutcomeInvalid)
		return nil, false
	}

	if r.codec.IsExpired(claims) {
		r.log.Info(ctx, "Rejected expired token", logger.Time("expires_at", claims.ExpiresAt))
		r.metrics.RecordAuthOutcome(constants.AuthOutcomeExpired)
		return nil, false
	}
	return claims, true
}

func (r *PrincipalResolver) extractUsername(ctx context.Context, claims *models.Claims) (string, bool) {
	if claims.Username == "" {
		r.log.Debug(ctx, "Token carries no username claim", logger.String("subject", claims.Subject))
		r.metrics.RecordAuthOutcome(constants.AuthOutcomeMalformed)
		return "", false
	}
	return claims.Username, true
}

func (r *PrincipalResolver) lookup(ctx context.Context, username string) (*models.User, bool, error) {
	start := time.Now()
	user, err := r.users.FindWithProfileByUsername(ctx, username)
	r.metrics.ObserveUserLookup(time.Since(start))

	switch {
	case err == nil && user != nil:
		return user, true, nil
	case err == nil, errors.Is(err, errors.ErrUnknownUser):
		r.log.Info(ctx, "Token references unknown user", logger.String("username", username))
		r.metrics.RecordAuthOutcome(constants.AuthOutcomeUnknownUser)
		return nil, false, nil
	default:
		r.log.Error(ctx, "User store lookup failed", err, logger.String("username", username))
		if errors.Is(err, errors.ErrStoreUnavailable) {
			return nil, false, err
		}
		return nil, false, errors.ErrStoreUnavailable.WithError(err)
	}
}
