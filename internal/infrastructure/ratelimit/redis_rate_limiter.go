// Package ratelimit provides distributed rate limiting using Redis.
package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/stockassist/platform/internal/config"
	"github.com/stockassist/platform/internal/domain/service"
	"github.com/stockassist/platform/pkg/errors"
	"github.com/stockassist/platform/pkg/logger"
)

// RedisRateLimiter implements service.RateLimiter with a token bucket kept in
// Redis, so every instance of the service shares one budget per identifier.
type RedisRateLimiter struct {
	client       redis.UniversalClient
	logger       logger.Logger
	limit        int64
	window       time.Duration
	prefix       string
	localBuckets *TokenBucketPool // used while Redis is unreachable
	now          func() time.Time
}

var _ service.RateLimiter = (*RedisRateLimiter)(nil)

// Lua script for atomic token bucket operations
const tokenBucketLuaScript = `
local key = KEYS[1]
local capacity = tonumber(ARGV[1])
local rate = tonumber(ARGV[2])
local requested = tonumber(ARGV[3])
local now = tonumber(ARGV[4])

local bucket = redis.call('HMGET', key, 'tokens', 'last_refill')
local tokens = tonumber(bucket[1]) or capacity
local last_refill = tonumber(bucket[2]) or now

local elapsed = math.max(0, now - last_refill)
tokens = math.min(tokens + elapsed * rate / 1000, capacity)

local allowed = 0
if tokens >= requested then
    tokens = tokens - requested
    allowed = 1
end

local wait_ms = 0
if allowed == 0 then
    wait_ms = math.ceil((requested - tokens) / rate * 1000)
end

redis.call('HSET', key, 'tokens', tostring(tokens), 'last_refill', now)
redis.call('PEXPIRE', key, math.ceil(capacity / rate * 1000) + 60000)

return {allowed, wait_ms}
`

// NewRedisRateLimiter creates a limiter allowing cfg.LoginLimit units per
// cfg.Window for every identifier.
//
// Parameters:
//   - client: Redis client
//   - cfg: Rate limit configuration
//   - prefix: Redis key prefix, usually redis.key_prefix
//   - log: Logger instance
//
// Returns:
//   - *RedisRateLimiter: Initialized rate limiter
//   - error: ErrInvalidConfig when the client is missing or the budget is not positive
func NewRedisRateLimiter(client redis.UniversalClient, cfg *config.RateLimitConfig, prefix string, log logger.Logger) (*RedisRateLimiter, error) {
	if client == nil {
		return nil, errors.ErrInvalidConfig.WithMessage("redis client is required")
	}
	if cfg == nil || cfg.LoginLimit <= 0 || cfg.Window <= 0 {
		return nil, errors.ErrInvalidConfig.WithMessage("rate limit budget must be positive")
	}
	if prefix == "" {
		prefix = "stockassist"
	}

	rl := &RedisRateLimiter{
		client: client,
		logger: log.WithComponent("rate_limiter"),
		limit:  cfg.LoginLimit,
		window: cfg.Window,
		prefix: prefix,
		now:    time.Now,
	}
	if cfg.LocalFallback {
		rl.localBuckets = NewTokenBucketPool(TokenBucketConfig{
			Capacity: float64(cfg.LoginLimit),
			Rate:     rl.rate(),
		})
	}

	rl.logger.Info(context.Background(), "Redis rate limiter initialized",
		logger.Int64("limit", cfg.LoginLimit),
		logger.Duration("window", cfg.Window),
		logger.Bool("local_fallback", cfg.LocalFallback),
	)
	return rl, nil
}

// Allow consumes one token for identifier within scope.
func (rl *RedisRateLimiter) Allow(ctx context.Context, scope, identifier string) (bool, time.Duration, error) {
	key := rl.buildKey(scope, identifier)

	allowed, wait, err := rl.executeLuaScript(ctx, key)
	if err == nil {
		return allowed, wait, nil
	}

	if rl.localBuckets == nil {
		rl.logger.Error(ctx, "Rate limit check failed", err, logger.String("scope", scope))
		return false, 0, errors.ErrStoreUnavailable.WithError(err)
	}

	rl.logger.Warn(ctx, "Redis unavailable, using local rate limit bucket",
		logger.String("scope", scope), logger.Error(err))
	bucket := rl.localBuckets.GetOrCreate(key)
	if bucket.Allow() {
		return true, 0, nil
	}
	return false, bucket.TimeUntilAvailable(1), nil
}

// Reset clears the budget of identifier, both in Redis and locally.
func (rl *RedisRateLimiter) Reset(ctx context.Context, scope, identifier string) error {
	key := rl.buildKey(scope, identifier)
	if rl.localBuckets != nil {
		rl.localBuckets.Remove(key)
	}
	if err := rl.client.Del(ctx, key).Err(); err != nil && err != redis.Nil {
		return errors.ErrStoreUnavailable.WithError(err)
	}
	return nil
}

// CleanupLocalBuckets drops fallback buckets idle for longer than maxIdle.
func (rl *RedisRateLimiter) CleanupLocalBuckets(maxIdle time.Duration) int {
	if rl.localBuckets == nil {
		return 0
	}
	removed := rl.localBuckets.Cleanup(maxIdle)
	if removed > 0 {
		rl.logger.Debug(context.Background(), "Cleaned up idle buckets", logger.Int("count", removed))
	}
	return removed
}

func (rl *RedisRateLimiter) rate() float64 {
	return float64(rl.limit) / rl.window.Seconds()
}

func (rl *RedisRateLimiter) executeLuaScript(ctx context.Context, key string) (bool, time.Duration, error) {
	result, err := rl.client.Eval(ctx, tokenBucketLuaScript, []string{key},
		rl.limit, rl.rate(), 1, rl.now().UnixMilli()).Result()
	if err != nil {
		return false, 0, err
	}

	values, ok := result.([]interface{})
	if !ok || len(values) < 2 {
		return false, 0, fmt.Errorf("unexpected rate limit script result: %v", result)
	}
	allowed, ok1 := values[0].(int64)
	waitMs, ok2 := values[1].(int64)
	if !ok1 || !ok2 {
		return false, 0, fmt.Errorf("unexpected rate limit script result: %v", result)
	}
	return allowed == 1, time.Duration(waitMs) * time.Millisecond, nil
}

func (rl *RedisRateLimiter) buildKey(scope, identifier string) string {
	return fmt.Sprintf("%s:ratelimit:%s:%s", rl.prefix, scope, identifier)
}
