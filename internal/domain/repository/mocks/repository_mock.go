package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/stockassist/platform/internal/domain/models"
)

type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) FindWithProfileByUsername(ctx context.Context, username string) (*models.User, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) Save(ctx context.Context, user *models.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

type MockRefreshSessionStore struct {
	mock.Mock
}

func (m *MockRefreshSessionStore) Save(ctx context.Context, jti, username string, ttl time.Duration) error {
	args := m.Called(ctx, jti, username, ttl)
	return args.Error(0)
}

func (m *MockRefreshSessionStore) Lookup(ctx context.Context, jti string) (string, bool, error) {
	args := m.Called(ctx, jti)
	return args.String(0), args.Bool(1), args.Error(2)
}

func (m *MockRefreshSessionStore) Consume(ctx context.Context, jti string) (string, bool, error) {
	args := m.Called(ctx, jti)
	return args.String(0), args.Bool(1), args.Error(2)
}

func (m *MockRefreshSessionStore) Revoke(ctx context.Context, jti string) error {
	args := m.Called(ctx, jti)
	return args.Error(0)
}
