package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"

	"github.com/stockassist/platform/internal/infrastructure/monitoring"
)

// Observability starts a server span per request, continuing any upstream
// trace context, and records request totals and latency labelled with the
// route template so that path parameters do not explode cardinality.
func Observability(
	tracer trace.Tracer,
	httpRequestsTotal *prometheus.CounterVec,
	httpRequestDuration *prometheus.HistogramVec,
) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		path := c.FullPath()
		if path == "" {
			path = "not_found"
		}

		ctx := monitoring.ExtractTraceContext(c.Request.Context(), propagation.HeaderCarrier(c.Request.Header))
		ctx, span := tracer.Start(ctx, c.Request.Method+" "+path, trace.WithSpanKind(trace.SpanKindServer))
		defer span.End()

		c.Request = c.Request.WithContext(ctx)
		c.Next()

		status := c.Writer.Status()
		httpRequestsTotal.WithLabelValues(c.Request.Method, path, strconv.Itoa(status)).Inc()
		httpRequestDuration.WithLabelValues(c.Request.Method, path).Observe(time.Since(start).Seconds())

		span.SetAttributes(
			attribute.String("http.method", c.Request.Method),
			attribute.String("http.route", path),
			attribute.Int("http.status_code", status),
			attribute.String("http.client_ip", c.ClientIP()),
		)
		if _, ok := GetPrincipal(c); ok {
			span.SetAttributes(attribute.Bool("auth.authenticated", true))
		}
	}
}
