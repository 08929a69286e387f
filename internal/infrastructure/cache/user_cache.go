// Package cache provides an in-process read-through cache in front of the user store.
package cache

import (
	"context"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/stockassist/platform/internal/config"
	"github.com/stockassist/platform/internal/domain/models"
	"github.com/stockassist/platform/internal/domain/repository"
)

// CachedUserRepository memoizes successful lookups for a short TTL.
// Misses and store errors are never cached, so a freshly created user is
// visible on the next request and an outage does not stick. Callers always
// get their own copy of the user; the cached value is never handed out.
type CachedUserRepository struct {
	next  repository.UserRepository
	cache *gocache.Cache
}

var _ repository.UserRepository = (*CachedUserRepository)(nil)

// WrapUserRepository returns next unchanged when cfg.TTL is zero.
func WrapUserRepository(next repository.UserRepository, cfg config.UserCacheConfig) repository.UserRepository {
	if cfg.TTL <= 0 {
		return next
	}
	return NewCachedUserRepository(next, cfg.TTL, cfg.CleanupInterval)
}

// NewCachedUserRepository builds the decorator.
func NewCachedUserRepository(next repository.UserRepository, ttl, cleanupInterval time.Duration) *CachedUserRepository {
	if cleanupInterval <= 0 {
		cleanupInterval = 5 * time.Minute
	}
	return &CachedUserRepository{
		next:  next,
		cache: gocache.New(ttl, cleanupInterval),
	}
}

func (r *CachedUserRepository) FindWithProfileByUsername(ctx context.Context, username string) (*models.User, error) {
	if v, ok := r.cache.Get(username); ok {
		return cloneUser(v.(*models.User)), nil
	}
	user, err := r.next.FindWithProfileByUsername(ctx, username)
	if err != nil || user == nil {
		return user, err
	}
	r.cache.SetDefault(username, cloneUser(user))
	return user, nil
}

// Save writes through and drops any stale entry for the username.
func (r *CachedUserRepository) Save(ctx context.Context, user *models.User) error {
	r.cache.Delete(user.Username)
	return r.next.Save(ctx, user)
}

func cloneUser(u *models.User) *models.User {
	cp := *u
	if u.Profile != nil {
		p := *u.Profile
		cp.Profile = &p
	}
	return &cp
}
