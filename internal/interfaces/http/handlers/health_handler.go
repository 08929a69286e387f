package handlers

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"

	"github.com/stockassist/platform/pkg/logger"
)

// Pinger is anything the readiness check can ping.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler provides health check endpoints.
type HealthHandler struct {
	checks  map[string]Pinger
	timeout time.Duration
	log     logger.Logger
}

// NewHealthHandler creates a new HealthHandler. checks maps a dependency
// name to its pinger, e.g. "database" and "redis".
func NewHealthHandler(checks map[string]Pinger, log logger.Logger) *HealthHandler {
	return &HealthHandler{
		checks:  checks,
		timeout: 3 * time.Second,
		log:     log.WithComponent("health"),
	}
}

// LivenessCheck answers GET / and GET /health without touching dependencies.
func (h *HealthHandler) LivenessCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "ok",
		"timestamp": time.Now().UTC(),
	})
}

// ReadinessCheck answers GET /health/ready, pinging every dependency concurrently.
func (h *HealthHandler) ReadinessCheck(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), h.timeout)
	defer cancel()

	results := h.performChecks(ctx)

	status := "healthy"
	httpStatus := http.StatusOK
	for name, result := range results {
		if result != "ok" {
			status = "unhealthy"
			httpStatus = http.StatusServiceUnavailable
			h.log.Warn(ctx, "Readiness check failed", logger.String("dependency", name), logger.String("result", result))
		}
	}

	c.JSON(httpStatus, gin.H{
		"status":    status,
		"timestamp": time.Now().UTC(),
		"checks":    results,
	})
}

func (h *HealthHandler) performChecks(ctx context.Context) map[string]string {
	var mu sync.Mutex
	results := make(map[string]string, len(h.checks))

	// Every goroutine returns nil so one failing dependency does not cancel the others.
	var g errgroup.Group
	for name, pinger := range h.checks {
		g.Go(func() error {
			result := "ok"
			if err := pinger.Ping(ctx); err != nil {
				result = "error: " + err.Error()
			}
			mu.Lock()
			results[name] = result
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()
	return results
}
