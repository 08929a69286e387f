package http

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/pprof"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/stockassist/platform/internal/application/dto"
	"github.com/stockassist/platform/internal/config"
	"github.com/stockassist/platform/internal/domain/service"
	"github.com/stockassist/platform/internal/infrastructure/monitoring"
	"github.com/stockassist/platform/internal/interfaces/http/handlers"
	"github.com/stockassist/platform/internal/interfaces/http/middleware"
	"github.com/stockassist/platform/pkg/constants"
	"github.com/stockassist/platform/pkg/errors"
	"github.com/stockassist/platform/pkg/logger"
)

// RouterDependencies holds everything the HTTP router wires together.
type RouterDependencies struct {
	Config        *config.Config
	Logger        logger.Logger
	AuthHandler   *handlers.AuthHandler
	HealthHandler *handlers.HealthHandler
	Whitelist     *service.WhitelistMatcher
	Resolver      *service.PrincipalResolver
	// Metrics may be nil, in which case telemetry goes to a private registry.
	Metrics *monitoring.Metrics
	// RateLimiter may be nil, which disables login throttling.
	RateLimiter service.RateLimiter
}

// Router owns the gin engine and the HTTP server around it.
type Router struct {
	engine *gin.Engine
	cfg    *config.Config
	logger logger.Logger
	server *http.Server
}

// NewRouter builds the engine with the global middleware chain and all routes.
// It fails when server.trusted_proxies holds something that is not an IP or CIDR.
func NewRouter(deps RouterDependencies) (*Router, error) {
	metrics := deps.Metrics
	if metrics == nil {
		metrics = monitoring.NewMetrics(prometheus.NewRegistry())
	}

	r := &Router{
		engine: gin.New(),
		cfg:    deps.Config,
		logger: deps.Logger.WithComponent("router"),
	}
	// Client IPs key the login throttle, so X-Forwarded-For is only honoured
	// from configured proxies.
	if err := r.engine.SetTrustedProxies(r.cfg.Server.TrustedProxies); err != nil {
		return nil, errors.ErrInvalidConfig.WithMessage("server.trusted_proxies").WithError(err)
	}
	r.setupMiddleware(deps, metrics)
	r.setupRoutes(deps)
	return r, nil
}

// setupMiddleware installs the global chain. Order matters: the request id
// and span must exist before anything logs, and CORS preflights must be
// answered before authentication runs.
func (r *Router) setupMiddleware(deps RouterDependencies, metrics *monitoring.Metrics) {
	r.engine.Use(handlers.RecoveryMiddleware(deps.Logger))
	r.engine.Use(middleware.RequestID())
	r.engine.Use(middleware.Observability(monitoring.Tracer(), metrics.HTTPRequestsTotal, metrics.HTTPRequestDuration))
	r.engine.Use(handlers.LoggingMiddleware(deps.Logger))

	// cors.New panics without origins; a same-origin deployment needs none.
	if len(r.cfg.Server.AllowedOrigins) > 0 {
		r.engine.Use(cors.New(cors.Config{
			AllowOrigins:     r.cfg.Server.AllowedOrigins,
			AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", constants.HeaderAuthorization, constants.HeaderRequestID},
			ExposeHeaders:    []string{constants.HeaderAuthorization, constants.HeaderRequestID, "Retry-After"},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}))
	}

	r.engine.Use(middleware.Authenticate(deps.Whitelist, deps.Resolver, metrics, deps.Logger))
}

func (r *Router) setupRoutes(deps RouterDependencies) {
	r.engine.GET("/", deps.HealthHandler.LivenessCheck)
	r.engine.GET("/health", deps.HealthHandler.LivenessCheck)
	r.engine.GET("/health/ready", deps.HealthHandler.ReadinessCheck)
	r.engine.GET("/favicon.ico", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	if r.cfg.Monitoring.MetricsEnabled {
		r.engine.GET("/metrics", gin.WrapH(promhttp.Handler()))
	}
	if r.cfg.Monitoring.PprofEnabled {
		pprof.Register(r.engine)
	}

	auth := r.engine.Group("/api/auth")
	{
		login := []gin.HandlerFunc{deps.AuthHandler.Login}
		if deps.RateLimiter != nil {
			login = append([]gin.HandlerFunc{middleware.RateLimit(deps.RateLimiter, constants.RateLimitScopeLogin, deps.Logger)}, login...)
		}
		auth.POST("/login", login...)
		auth.POST("/refresh", deps.AuthHandler.Refresh)
		auth.POST("/logout", deps.AuthHandler.Logout)
		auth.GET("/verify", deps.AuthHandler.Verify)
		auth.GET("/me", middleware.RequireAuthenticated(), deps.AuthHandler.Me)
	}

	r.engine.NoRoute(func(c *gin.Context) {
		dto.SendError(c, errors.ErrNotFound)
	})
}

// Engine exposes the gin engine, mainly for tests.
func (r *Router) Engine() *gin.Engine {
	return r.engine
}

// Run serves until ctx is cancelled, then shuts down gracefully within the
// configured shutdown timeout.
func (r *Router) Run(ctx context.Context) error {
	r.server = &http.Server{
		Addr:           r.cfg.Server.Addr(),
		Handler:        r.engine,
		ReadTimeout:    r.cfg.Server.ReadTimeout,
		WriteTimeout:   r.cfg.Server.WriteTimeout,
		IdleTimeout:    r.cfg.Server.IdleTimeout,
		MaxHeaderBytes: 1 << 20,
	}

	errCh := make(chan error, 1)
	go func() {
		r.logger.Info(ctx, "Starting HTTP server", logger.String("address", r.server.Addr))
		if err := r.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	r.logger.Info(context.Background(), "Shutting down HTTP server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), r.cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := r.server.Shutdown(shutdownCtx); err != nil {
		r.logger.Error(shutdownCtx, "Server forced to shutdown", err)
		return err
	}
	r.logger.Info(shutdownCtx, "HTTP server stopped")
	return nil
}
