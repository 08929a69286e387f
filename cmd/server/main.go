package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/pflag"
	"golang.org/x/sync/errgroup"

	appservice "github.com/stockassist/platform/internal/application/service"
	"github.com/stockassist/platform/internal/config"
	domainservice "github.com/stockassist/platform/internal/domain/service"
	"github.com/stockassist/platform/internal/infrastructure/cache"
	"github.com/stockassist/platform/internal/infrastructure/crypto"
	"github.com/stockassist/platform/internal/infrastructure/monitoring"
	"github.com/stockassist/platform/internal/infrastructure/persistence/postgres"
	"github.com/stockassist/platform/internal/infrastructure/persistence/redis"
	"github.com/stockassist/platform/internal/infrastructure/ratelimit"
	sessionstore "github.com/stockassist/platform/internal/infrastructure/redis"
	httpapi "github.com/stockassist/platform/internal/interfaces/http"
	"github.com/stockassist/platform/internal/interfaces/http/handlers"
	"github.com/stockassist/platform/pkg/logger"
)

const bucketCleanupInterval = 5 * time.Minute

func main() {
	configPath := pflag.StringP("config", "c", os.Getenv("STOCKASSIST_CONFIG"), "path to the YAML config file")
	pflag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	appLogger := monitoring.NewZapLogger(&cfg.Log)
	gin.SetMode(cfg.Server.Mode)
	monitoring.SetupPropagation()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, appLogger); err != nil {
		appLogger.Fatal(context.Background(), "Server exited with error", err)
	}
	appLogger.Info(context.Background(), "Server stopped")
}

func run(ctx context.Context, cfg *config.Config, appLogger logger.Logger) error {
	key, err := crypto.LoadSigningKey(cfg.JWT.Secret)
	if err != nil {
		return err
	}
	codec := crypto.NewJWTCodec(key)

	db, err := postgres.NewDBConnection(ctx, &cfg.Database, appLogger)
	if err != nil {
		return err
	}
	defer db.Close()
	if cfg.Database.AutoMigrate {
		if err := db.AutoMigrate(ctx); err != nil {
			return err
		}
	}

	redisConn := redis.NewRedisConnection(&cfg.Redis, appLogger)
	if err := redisConn.Connect(ctx); err != nil {
		return err
	}
	defer redisConn.Close()

	metrics := monitoring.NewMetrics(prometheus.DefaultRegisterer)

	users := cache.WrapUserRepository(postgres.NewUserRepository(db.DB(), appLogger), cfg.UserCache)
	sessions := sessionstore.NewRefreshSessionStore(redisConn.Client(), cfg.Redis.KeyPrefix)

	whitelist := domainservice.NewWhitelistMatcher(cfg.Whitelist)
	resolver := domainservice.NewPrincipalResolver(codec, users, metrics, appLogger)
	authService := appservice.NewAuthAppService(codec, users, sessions, metrics, appLogger)

	var limiter *ratelimit.RedisRateLimiter
	if cfg.RateLimit.Enabled {
		limiter, err = ratelimit.NewRedisRateLimiter(redisConn.Client(), &cfg.RateLimit, cfg.Redis.KeyPrefix, appLogger)
		if err != nil {
			return err
		}
	}

	deps := httpapi.RouterDependencies{
		Config:      cfg,
		Logger:      appLogger,
		AuthHandler: handlers.NewAuthHandler(authService, cfg.Cookie),
		HealthHandler: handlers.NewHealthHandler(map[string]handlers.Pinger{
			"database": db,
			"redis":    redisConn,
		}, appLogger),
		Whitelist: whitelist,
		Resolver:  resolver,
		Metrics:   metrics,
	}
	if limiter != nil {
		deps.RateLimiter = limiter
	}
	router, err := httpapi.NewRouter(deps)
	if err != nil {
		return err
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return router.Run(ctx)
	})
	if limiter != nil {
		g.Go(func() error {
			ticker := time.NewTicker(bucketCleanupInterval)
			defer ticker.Stop()
			for {
				select {
				case <-ctx.Done():
					return nil
				case <-ticker.C:
					if n := limiter.CleanupLocalBuckets(cfg.RateLimit.Window * 2); n > 0 {
						appLogger.Debug(ctx, "Dropped idle local rate limit buckets", logger.Int("count", n))
					}
				}
			}
		})
	}
	return g.Wait()
}
