package redis

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/stockassist/platform/internal/domain/repository"
	"github.com/stockassist/platform/pkg/errors"
)

type refreshSessionStore struct {
	rdb    redis.UniversalClient
	prefix string
}

// NewRefreshSessionStore stores refresh sessions under "<prefix>:rt:<jti>".
func NewRefreshSessionStore(rdb redis.UniversalClient, prefix string) repository.RefreshSessionStore {
	if prefix == "" {
		prefix = "stockassist"
	}
	return &refreshSessionStore{rdb: rdb, prefix: prefix}
}

func (s *refreshSessionStore) key(jti string) string { return s.prefix + ":rt:" + jti }

func (s *refreshSessionStore) Save(ctx context.Context, jti, username string, ttl time.Duration) error {
	if jti == "" || username == "" {
		return errors.ErrInvalidRequest.WithMessage("refresh session needs a jti and a username")
	}
	if ttl <= 0 {
		return nil
	}
	if err := s.rdb.Set(ctx, s.key(jti), username, ttl).Err(); err != nil {
		return errors.ErrStoreUnavailable.WithError(err)
	}
	return nil
}

func (s *refreshSessionStore) Lookup(ctx context.Context, jti string) (string, bool, error) {
	if jti == "" {
		return "", false, nil
	}
	username, err := s.rdb.Get(ctx, s.key(jti)).Result()
	if err != nil {
		if err == redis.Nil {
			return "", false, nil
		}
		return "", false, errors.ErrStoreUnavailable.WithError(err)
	}
	return username, true, nil
}

// Consume uses GETDEL so concurrent rotations of one refresh token cannot
// both succeed.
func (s *refreshSessionStore) Consume(ctx context.Context, jti string) (string, bool, error) {
	if jti == "" {
		return "", false, nil
	}
	username, err := s.rdb.GetDel(ctx, s.key(jti)).Result()
	if err != nil {
		if err == redis.Nil {
			return "", false, nil
		}
		return "", false, errors.ErrStoreUnavailable.WithError(err)
	}
	return username, true, nil
}

func (s *refreshSessionStore) Revoke(ctx context.Context, jti string) error {
	if jti == "" {
		return nil
	}
	if err := s.rdb.Del(ctx, s.key(jti)).Err(); err != nil {
		return errors.ErrStoreUnavailable.WithError(err)
	}
	return nil
}
