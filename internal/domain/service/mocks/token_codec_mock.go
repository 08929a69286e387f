package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/stockassist/platform/internal/domain/models"
)

type MockTokenCodec struct {
	mock.Mock
}

func (m *MockTokenCodec) CreateAccessToken(identity models.Principal) (*models.IssuedToken, error) {
	args := m.Called(identity)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.IssuedToken), args.Error(1)
}

func (m *MockTokenCodec) CreateRefreshToken() (*models.IssuedToken, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.IssuedToken), args.Error(1)
}

func (m *MockTokenCodec) ParseAndValidate(token string) (*models.Claims, error) {
	args := m.Called(token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Claims), args.Error(1)
}

func (m *MockTokenCodec) IsExpired(claims *models.Claims) bool {
	args := m.Called(claims)
	return args.Bool(0)
}

type MockRateLimiter struct {
	mock.Mock
}

func (m *MockRateLimiter) Allow(ctx context.Context, scope, identifier string) (bool, time.Duration, error) {
	args := m.Called(ctx, scope, identifier)
	return args.Bool(0), args.Get(1).(time.Duration), args.Error(2)
}
