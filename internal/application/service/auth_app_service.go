// Package service provides application-level services that orchestrate domain services and repositories
package service

import (
	"context"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/stockassist/platform/internal/application/dto"
	"github.com/stockassist/platform/internal/domain/models"
	"github.com/stockassist/platform/internal/domain/repository"
	domainService "github.com/stockassist/platform/internal/domain/service"
	"github.com/stockassist/platform/internal/infrastructure/monitoring"
	"github.com/stockassist/platform/pkg/constants"
	"github.com/stockassist/platform/pkg/errors"
	"github.com/stockassist/platform/pkg/logger"
)

// AuthAppService defines the interface for authentication application service
type AuthAppService interface {
	// Login checks username and password and issues an access/refresh pair
	Login(ctx context.Context, req *dto.LoginRequest) (*dto.AuthResult, error)

	// Refresh exchanges a live refresh token for a new pair, revoking the old one
	Refresh(ctx context.Context, refreshToken string) (*dto.AuthResult, error)

	// Logout revokes the session behind a refresh token, if there is one
	Logout(ctx context.Context, refreshToken string) error

	// Verify reports whether a refresh token still has a live session
	Verify(ctx context.Context, refreshToken string) (*dto.VerifyResponse, error)
}

// authAppServiceImpl is the concrete implementation of AuthAppService
type authAppServiceImpl struct {
	codec    domainService.TokenCodec
	users    repository.UserRepository
	sessions repository.RefreshSessionStore
	metrics  domainService.AuthMetrics
	logger   logger.Logger
	now      func() time.Time
}

// NewAuthAppService creates a new instance of AuthAppService. metrics may be nil.
func NewAuthAppService(
	codec domainService.TokenCodec,
	users repository.UserRepository,
	sessions repository.RefreshSessionStore,
	metrics domainService.AuthMetrics,
	log logger.Logger,
) AuthAppService {
	if metrics == nil {
		metrics = domainService.NoopMetrics()
	}
	return &authAppServiceImpl{
		codec:    codec,
		users:    users,
		sessions: sessions,
		metrics:  metrics,
		logger:   log.WithComponent("auth_service"),
		now:      time.Now,
	}
}

// Login implements password login.
func (s *authAppServiceImpl) Login(ctx context.Context, req *dto.LoginRequest) (*dto.AuthResult, error) {
	ctx, span := monitoring.StartSpan(ctx, "AuthAppService.Login", nil)
	defer span.End()

	user, err := s.users.FindWithProfileByUsername(ctx, req.Username)
	if err != nil || user == nil {
		if err == nil || errors.Is(err, errors.ErrUnknownUser) {
			s.logger.Info(ctx, "Login rejected, unknown user", logger.String("username", req.Username))
			return nil, errors.ErrInvalidCredentials
		}
		monitoring.RecordError(ctx, err)
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		s.logger.Info(ctx, "Login rejected, wrong password", logger.String("username", req.Username))
		return nil, errors.ErrInvalidCredentials
	}

	result, err := s.issue(ctx, user)
	if err != nil {
		return nil, err
	}

	s.logger.Info(ctx, "User logged in", logger.String("username", user.Username))
	return result, nil
}

// Refresh implements refresh token rotation.
func (s *authAppServiceImpl) Refresh(ctx context.Context, refreshToken string) (*dto.AuthResult, error) {
	ctx, span := monitoring.StartSpan(ctx, "AuthAppService.Refresh", nil)
	defer span.End()

	claims, err := s.parseRefreshToken(ctx, refreshToken)
	if err != nil {
		return nil, err
	}

	// Consume deletes the session in the same step that reads it, so a
	// refresh token can be rotated exactly once.
	username, ok, err := s.sessions.Consume(ctx, claims.ID)
	if err != nil {
		monitoring.RecordError(ctx, err)
		return nil, err
	}
	if !ok {
		s.logger.Info(ctx, "Refresh rejected, session revoked or unknown")
		return nil, errors.ErrInvalidToken.WithMessage("refresh session is no longer valid")
	}

	user, err := s.users.FindWithProfileByUsername(ctx, username)
	if err != nil || user == nil {
		if err == nil || errors.Is(err, errors.ErrUnknownUser) {
			s.logger.Info(ctx, "Refresh rejected, user no longer exists", logger.String("username", username))
			return nil, errors.ErrInvalidToken.WithMessage("refresh session is no longer valid")
		}
		monitoring.RecordError(ctx, err)
		s.restoreSession(ctx, claims, username)
		return nil, err
	}

	result, err := s.issue(ctx, user)
	if err != nil {
		s.restoreSession(ctx, claims, username)
		return nil, err
	}
	return result, nil
}

// restoreSession puts back a consumed session when the refresh failed for a
// reason that is not the caller's fault.
func (s *authAppServiceImpl) restoreSession(ctx context.Context, claims *models.Claims, username string) {
	ttl := claims.ExpiresAt.Sub(s.now())
	if err := s.sessions.Save(ctx, claims.ID, username, ttl); err != nil {
		s.logger.Error(ctx, "Failed to restore refresh session", err, logger.String("username", username))
	}
}

// Logout implements session revocation. It never fails on a bad token: there
// is simply nothing to revoke.
func (s *authAppServiceImpl) Logout(ctx context.Context, refreshToken string) error {
	if refreshToken == "" {
		return nil
	}
	claims, err := s.parseRefreshToken(ctx, refreshToken)
	if err != nil {
		return nil
	}
	if err := s.sessions.Revoke(ctx, claims.ID); err != nil {
		s.logger.Error(ctx, "Failed to revoke refresh session", err)
		return err
	}
	s.logger.Info(ctx, "Refresh session revoked")
	return nil
}

// Verify implements the refresh session check.
func (s *authAppServiceImpl) Verify(ctx context.Context, refreshToken string) (*dto.VerifyResponse, error) {
	if refreshToken == "" {
		return &dto.VerifyResponse{Valid: false}, nil
	}
	claims, err := s.parseRefreshToken(ctx, refreshToken)
	if err != nil {
		return &dto.VerifyResponse{Valid: false}, nil
	}

	username, ok, err := s.sessions.Lookup(ctx, claims.ID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return &dto.VerifyResponse{Valid: false}, nil
	}
	return &dto.VerifyResponse{Valid: true, Username: username}, nil
}

func (s *authAppServiceImpl) parseRefreshToken(ctx context.Context, token string) (*models.Claims, error) {
	if token == "" {
		return nil, errors.ErrUnauthenticated.WithMessage("refresh token is missing")
	}
	claims, err := s.codec.ParseAndValidate(token)
	if err != nil {
		s.logger.Debug(ctx, "Rejected refresh token", logger.Error(err))
		return nil, err
	}
	if !claims.IsRefreshToken() {
		s.logger.Debug(ctx, "Rejected refresh token, wrong token kind", logger.String("subject", claims.Subject))
		return nil, errors.ErrInvalidToken.WithMessage("not a refresh token")
	}
	return claims, nil
}

// issue signs a new pair for user and records the refresh session.
func (s *authAppServiceImpl) issue(ctx context.Context, user *models.User) (*dto.AuthResult, error) {
	principal := models.NewPrincipal(user)

	access, err := s.codec.CreateAccessToken(principal)
	if err != nil {
		return nil, err
	}
	s.metrics.RecordTokenIssued(constants.TokenKindAccess)

	refresh, err := s.codec.CreateRefreshToken()
	if err != nil {
		return nil, err
	}
	s.metrics.RecordTokenIssued(constants.TokenKindRefresh)

	ttl := refresh.Claims.ExpiresAt.Sub(s.now())
	if err := s.sessions.Save(ctx, refresh.Claims.ID, user.Username, ttl); err != nil {
		s.logger.Error(ctx, "Failed to store refresh session", err, logger.String("username", user.Username))
		return nil, err
	}

	pair := &models.TokenPair{Access: *access, Refresh: *refresh}
	return &dto.AuthResult{
		Token: dto.TokenResponse{
			AccessToken: pair.Access.Token,
			TokenType:   constants.TokenTypeBearer,
			ExpiresIn:   int64(pair.AccessLifetime().Seconds()),
		},
		RefreshToken: pair.Refresh.Token,
		Principal:    principal,
	}, nil
}
