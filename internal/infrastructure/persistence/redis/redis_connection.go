// Package redis provides Redis connection management and client initialization.
package redis

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/stockassist/platform/internal/config"
	"github.com/stockassist/platform/pkg/errors"
	"github.com/stockassist/platform/pkg/logger"
)

// RedisConnection manages Redis client lifecycle and health checks.
type RedisConnection struct {
	config *config.RedisConfig
	client redis.UniversalClient
	logger logger.Logger
}

// NewRedisConnection creates a connection manager. Call Connect before use.
//
// Parameters:
//   - cfg: Redis configuration
//   - log: Logger instance
//
// Returns:
//   - *RedisConnection: connection manager, not yet connected
func NewRedisConnection(cfg *config.RedisConfig, log logger.Logger) *RedisConnection {
	return &RedisConnection{
		config: cfg,
		logger: log.WithComponent("redis"),
	}
}

// Connect builds the client and verifies connectivity with a ping.
//
// Returns:
//   - error: ErrStoreUnavailable if Redis cannot be reached
func (rc *RedisConnection) Connect(ctx context.Context) error {
	if rc.client != nil {
		rc.logger.Warn(ctx, "Redis connection already initialized")
		return nil
	}

	dialTimeout := rc.config.DialTimeout
	if dialTimeout == 0 {
		dialTimeout = 5 * time.Second
	}

	client := redis.NewUniversalClient(&redis.UniversalOptions{
		Addrs:        []string{rc.config.Addr},
		Password:     rc.config.Password,
		DB:           rc.config.DB,
		PoolSize:     rc.config.PoolSize,
		MinIdleConns: rc.config.MinIdleConns,
		DialTimeout:  dialTimeout,
	})

	pingCtx, cancel := context.WithTimeout(ctx, dialTimeout)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		rc.logger.Error(ctx, "Redis ping failed", err, logger.String("addr", rc.config.Addr))
		_ = client.Close()
		return errors.ErrStoreUnavailable.WithError(err)
	}

	rc.client = client
	rc.logger.Info(ctx, "Redis connection established successfully",
		logger.String("addr", rc.config.Addr),
		logger.Int("db", rc.config.DB),
	)
	return nil
}

// Client returns the Redis client, or nil before Connect succeeds.
func (rc *RedisConnection) Client() redis.UniversalClient {
	return rc.client
}

// Ping checks Redis server connectivity.
func (rc *RedisConnection) Ping(ctx context.Context) error {
	if rc.client == nil {
		return errors.ErrStoreUnavailable.WithMessage("redis connection not initialized")
	}
	if err := rc.client.Ping(ctx).Err(); err != nil {
		rc.logger.Error(ctx, "Redis ping failed", err)
		return errors.ErrStoreUnavailable.WithError(err)
	}
	return nil
}

// Close gracefully closes the client and releases resources.
func (rc *RedisConnection) Close() error {
	if rc.client == nil {
		return nil
	}
	if err := rc.client.Close(); err != nil {
		rc.logger.Error(context.Background(), "Failed to close Redis connection", err)
		return err
	}
	rc.client = nil
	rc.logger.Info(context.Background(), "Redis connection closed successfully")
	return nil
}
