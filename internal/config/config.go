package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/stockassist/platform/internal/domain/models"
	"github.com/stockassist/platform/internal/infrastructure/crypto"
	"github.com/stockassist/platform/pkg/errors"
)

// Config holds the application's configuration.
type Config struct {
	Server     ServerConfig            `mapstructure:"server"`
	Database   DatabaseConfig          `mapstructure:"database"`
	Redis      RedisConfig             `mapstructure:"redis"`
	JWT        JWTConfig               `mapstructure:"jwt"`
	Whitelist  []models.WhitelistEntry `mapstructure:"whitelist"`
	UserCache  UserCacheConfig         `mapstructure:"user_cache"`
	RateLimit  RateLimitConfig         `mapstructure:"rate_limit"`
	Cookie     CookieConfig            `mapstructure:"cookie"`
	Log        LogConfig               `mapstructure:"log"`
	Monitoring MonitoringConfig        `mapstructure:"monitoring"`
}

type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	Mode            string        `mapstructure:"mode"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	IdleTimeout     time.Duration `mapstructure:"idle_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	AllowedOrigins  []string      `mapstructure:"allowed_origins"`
	// TrustedProxies lists the proxy IPs or CIDRs whose X-Forwarded-For is
	// believed. Empty means the socket peer is the client.
	TrustedProxies []string `mapstructure:"trusted_proxies"`
}

// Addr returns the listen address.
func (c *ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

type DatabaseConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	Database        string        `mapstructure:"database"`
	SSLMode         string        `mapstructure:"ssl_mode"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	AutoMigrate     bool          `mapstructure:"auto_migrate"`
}

// GetDSN returns the libpq-style connection string.
func (c *DatabaseConfig) GetDSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode)
}

type RedisConfig struct {
	Addr         string        `mapstructure:"addr"`
	Password     string        `mapstructure:"password"`
	DB           int           `mapstructure:"db"`
	PoolSize     int           `mapstructure:"pool_size"`
	MinIdleConns int           `mapstructure:"min_idle_conns"`
	DialTimeout  time.Duration `mapstructure:"dial_timeout"`
	KeyPrefix    string        `mapstructure:"key_prefix"`
}

// JWTConfig carries the signing secret. Token lifetimes are fixed, see
// constants.AccessTokenTTL and constants.RefreshTokenTTL.
type JWTConfig struct {
	Secret string `mapstructure:"secret"`
}

// UserCacheConfig controls the in-process user lookup cache. A zero TTL disables it.
type UserCacheConfig struct {
	TTL             time.Duration `mapstructure:"ttl"`
	CleanupInterval time.Duration `mapstructure:"cleanup_interval"`
}

// RateLimitConfig throttles login attempts per client IP.
type RateLimitConfig struct {
	Enabled       bool          `mapstructure:"enabled"`
	LoginLimit    int64         `mapstructure:"login_limit"`
	Window        time.Duration `mapstructure:"window"`
	LocalFallback bool          `mapstructure:"local_fallback"`
}

type CookieConfig struct {
	Secure bool   `mapstructure:"secure"`
	Domain string `mapstructure:"domain"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type MonitoringConfig struct {
	MetricsEnabled bool `mapstructure:"metrics_enabled"`
	PprofEnabled   bool `mapstructure:"pprof_enabled"`
}

// DefaultWhitelist is the public surface: health, favicon, the auth
// endpoints that run before a token exists, and the public report listing.
func DefaultWhitelist() []models.WhitelistEntry {
	return []models.WhitelistEntry{
		{Method: "GET", Pattern: "/"},
		{Method: "GET", Pattern: "/favicon.ico"},
		{Method: "GET", Pattern: "/health"},
		{Method: "GET", Pattern: "/health/ready"},
		{Method: "GET", Pattern: "/api/auth/verify"},
		{Method: "POST", Pattern: "/api/auth/login"},
		{Method: "POST", Pattern: "/api/auth/logout"},
		{Method: "POST", Pattern: "/api/auth/refresh"},
		{Method: "GET", Pattern: "/api/reports"},
	}
}

// Validate checks for essential configuration values.
func (c *Config) Validate() error {
	if _, err := crypto.LoadSigningKey(c.JWT.Secret); err != nil {
		return err
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return errors.ErrInvalidConfig.WithMessage("server.port %d out of range", c.Server.Port)
	}
	for i, e := range c.Whitelist {
		if strings.TrimSpace(e.Method) == "" {
			return errors.ErrInvalidConfig.WithMessage("whitelist[%d]: method is required", i)
		}
		if !strings.HasPrefix(e.Pattern, "/") && e.Pattern != "*" {
			return errors.ErrInvalidConfig.WithMessage("whitelist[%d]: pattern %q must start with /", i, e.Pattern)
		}
	}
	if c.RateLimit.Enabled && (c.RateLimit.LoginLimit <= 0 || c.RateLimit.Window <= 0) {
		return errors.ErrInvalidConfig.WithMessage("rate_limit.login_limit and rate_limit.window must be positive")
	}
	if c.UserCache.TTL < 0 {
		return errors.ErrInvalidConfig.WithMessage("user_cache.ttl must not be negative")
	}
	return nil
}
