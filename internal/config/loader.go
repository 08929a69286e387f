package config

import (
	"strings"

	"github.com/spf13/viper"

	"github.com/stockassist/platform/pkg/constants"
	"github.com/stockassist/platform/pkg/errors"
)

// LoadConfig loads the configuration from defaults, an optional file and
// environment variables, in increasing order of precedence. path may be
// empty, in which case config.yaml is searched in the usual locations.
func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("/etc/stockassist/")
		v.AddConfigPath(".")
	}
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, errors.ErrInvalidConfig.WithMessage("failed to read config").WithError(err)
		}
	}

	v.SetEnvPrefix(constants.EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.ErrInvalidConfig.WithMessage("failed to unmarshal config").WithError(err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.mode", "release")
	v.SetDefault("server.read_timeout", "15s")
	v.SetDefault("server.write_timeout", "15s")
	v.SetDefault("server.idle_timeout", "60s")
	v.SetDefault("server.shutdown_timeout", "10s")
	v.SetDefault("server.allowed_origins", []string{"http://localhost:3000"})
	v.SetDefault("server.trusted_proxies", []string{})

	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "stockassist")
	v.SetDefault("database.database", "stockassist")
	v.SetDefault("database.ssl_mode", "disable")
	v.SetDefault("database.max_open_conns", 20)
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.conn_max_lifetime", "30m")
	v.SetDefault("database.auto_migrate", false)

	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.pool_size", 10)
	v.SetDefault("redis.min_idle_conns", 2)
	v.SetDefault("redis.dial_timeout", "5s")
	v.SetDefault("redis.key_prefix", "stockassist")

	// Bound so that STOCKASSIST_JWT_SECRET is picked up by Unmarshal.
	v.SetDefault("jwt.secret", "")

	v.SetDefault("whitelist", DefaultWhitelist())

	v.SetDefault("user_cache.ttl", "0s")
	v.SetDefault("user_cache.cleanup_interval", "5m")

	v.SetDefault("rate_limit.enabled", true)
	v.SetDefault("rate_limit.login_limit", constants.DefaultLoginAttemptsPerMinute)
	v.SetDefault("rate_limit.window", "1m")
	v.SetDefault("rate_limit.local_fallback", true)

	v.SetDefault("cookie.secure", true)
	v.SetDefault("cookie.domain", "")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	v.SetDefault("monitoring.metrics_enabled", true)
	v.SetDefault("monitoring.pprof_enabled", false)
}
