// Package postgres provides the PostgreSQL-backed user store for the StockAssist platform.
// It manages the gorm connection pool and implements the domain user repository.
package postgres

import (
	"context"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/stockassist/platform/internal/config"
	"github.com/stockassist/platform/internal/domain/models"
	"github.com/stockassist/platform/pkg/errors"
	"github.com/stockassist/platform/pkg/logger"
)

// DBConnection manages the gorm connection pool lifecycle.
type DBConnection struct {
	db     *gorm.DB
	config *config.DatabaseConfig
	logger logger.Logger
}

// NewDBConnection opens a PostgreSQL connection pool and performs an initial health check.
//
// Parameters:
//   - ctx: Context for the initial ping
//   - cfg: Database configuration including credentials and pool settings
//   - log: Logger instance for connection lifecycle events
//
// Returns:
//   - *DBConnection: Initialized connection manager
//   - error: ErrInvalidConfig or ErrStoreUnavailable
func NewDBConnection(ctx context.Context, cfg *config.DatabaseConfig, log logger.Logger) (*DBConnection, error) {
	if cfg == nil {
		return nil, errors.ErrInvalidConfig.WithMessage("database config is missing")
	}

	log.Info(ctx, "Initializing PostgreSQL connection pool",
		logger.String("host", cfg.Host),
		logger.Int("port", cfg.Port),
		logger.String("database", cfg.Database),
		logger.Int("max_open_conns", cfg.MaxOpenConns),
	)

	db, err := gorm.Open(postgres.Open(cfg.GetDSN()), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		log.Error(ctx, "Failed to open database", err)
		return nil, errors.ErrStoreUnavailable.WithError(err)
	}

	return NewDBConnectionFromGorm(ctx, db, cfg, log)
}

// NewDBConnectionFromGorm wraps an already opened gorm handle, applying pool
// settings from cfg and pinging it. Tests use it with the sqlite driver.
func NewDBConnectionFromGorm(ctx context.Context, db *gorm.DB, cfg *config.DatabaseConfig, log logger.Logger) (*DBConnection, error) {
	sqlDB, err := db.DB()
	if err != nil {
		return nil, errors.ErrStoreUnavailable.WithError(err)
	}
	if cfg.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.ConnMaxLifetime > 0 {
		sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}

	conn := &DBConnection{db: db, config: cfg, logger: log.WithComponent("postgres")}
	if err := conn.Ping(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, err
	}

	if cfg.AutoMigrate {
		if err := conn.AutoMigrate(ctx); err != nil {
			_ = sqlDB.Close()
			return nil, err
		}
	}

	conn.logger.Info(ctx, "PostgreSQL connection pool initialized successfully")
	return conn, nil
}

// DB returns the underlying gorm handle for repository implementations.
func (c *DBConnection) DB() *gorm.DB {
	return c.db
}

// AutoMigrate creates or updates the tables the user store reads.
func (c *DBConnection) AutoMigrate(ctx context.Context) error {
	if err := c.db.WithContext(ctx).AutoMigrate(&models.User{}, &models.Profile{}); err != nil {
		c.logger.Error(ctx, "Schema migration failed", err)
		return errors.ErrStoreUnavailable.WithError(err)
	}
	return nil
}

// Ping verifies database connectivity.
//
// Parameters:
//   - ctx: Context for timeout control; capped at 5 seconds
//
// Returns:
//   - error: ErrStoreUnavailable if the database is unreachable
func (c *DBConnection) Ping(ctx context.Context) error {
	sqlDB, err := c.db.DB()
	if err != nil {
		return errors.ErrStoreUnavailable.WithError(err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	start := time.Now()
	if err := sqlDB.PingContext(pingCtx); err != nil {
		c.logger.Error(ctx, "Database ping failed", err)
		return errors.ErrStoreUnavailable.WithError(err)
	}

	latency := time.Since(start)
	if latency > 100*time.Millisecond {
		c.logger.Warn(ctx, "High database latency detected", logger.Int64("latency_ms", latency.Milliseconds()))
	}
	return nil
}

// Close releases the pool.
func (c *DBConnection) Close() error {
	sqlDB, err := c.db.DB()
	if err != nil {
		return err
	}
	c.logger.Info(context.Background(), "Closing PostgreSQL connection pool",
		logger.Int("open_connections", sqlDB.Stats().OpenConnections),
	)
	return sqlDB.Close()
}
