package monitoring

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/stockassist/platform/internal/domain/service"
	"github.com/stockassist/platform/pkg/constants"
)

// Metrics manages the Prometheus metrics.
type Metrics struct {
	AuthOutcomes *prometheus.CounterVec
	UserLookup   prometheus.Histogram
	TokensIssued *prometheus.CounterVec

	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
}

var _ service.AuthMetrics = (*Metrics)(nil)

// NewMetrics creates the Prometheus metrics and registers them with reg.
// Pass prometheus.DefaultRegisterer in production and a fresh registry in tests.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		AuthOutcomes: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: constants.ServiceName,
				Name:      "auth_outcomes_total",
				Help:      "Total number of authentication passes by outcome.",
			},
			[]string{"outcome"},
		),
		UserLookup: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: constants.ServiceName,
				Name:      "user_lookup_seconds",
				Help:      "Latency of user store lookups made while resolving a principal.",
				Buckets:   prometheus.DefBuckets,
			},
		),
		TokensIssued: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: constants.ServiceName,
				Name:      "tokens_issued_total",
				Help:      "Total number of tokens issued by kind.",
			},
			[]string{"kind"},
		),
		HTTPRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: constants.ServiceName,
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests by method, route and status.",
			},
			[]string{"method", "path", "status"},
		),
		HTTPRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: constants.ServiceName,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request latency by method and route.",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),
	}
	if reg != nil {
		reg.MustRegister(m.AuthOutcomes, m.UserLookup, m.TokensIssued, m.HTTPRequestsTotal, m.HTTPRequestDuration)
	}
	return m
}

// RecordAuthOutcome counts one authentication pass.
func (m *Metrics) RecordAuthOutcome(outcome constants.AuthOutcome) {
	m.AuthOutcomes.WithLabelValues(string(outcome)).Inc()
}

// ObserveUserLookup records the latency of a single user store lookup.
func (m *Metrics) ObserveUserLookup(d time.Duration) {
	m.UserLookup.Observe(d.Seconds())
}

// RecordTokenIssued counts one issued token.
func (m *Metrics) RecordTokenIssued(kind constants.TokenKind) {
	m.TokensIssued.WithLabelValues(string(kind)).Inc()
}
