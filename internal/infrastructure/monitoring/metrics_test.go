package monitoring

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stockassist/platform/pkg/constants"
)

func TestMetrics_RecordAuthOutcome(t *testing.T) {
	m := NewMetrics(prometheus.NewRegistry())

	m.RecordAuthOutcome(constants.AuthOutcomeAuthenticated)
	m.RecordAuthOutcome(constants.AuthOutcomeAuthenticated)
	m.RecordAuthOutcome(constants.AuthOutcomeExpired)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.AuthOutcomes.WithLabelValues("authenticated")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.AuthOutcomes.WithLabelValues("expired")))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.AuthOutcomes.WithLabelValues("anonymous")))
}

func TestMetrics_TokensAndLookups(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)

	m.RecordTokenIssued(constants.TokenKindAccess)
	m.RecordTokenIssued(constants.TokenKindRefresh)
	m.RecordTokenIssued(constants.TokenKindAccess)
	m.ObserveUserLookup(5 * time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.TokensIssued.WithLabelValues("access")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.TokensIssued.WithLabelValues("refresh")))

	families, err := reg.Gather()
	require.NoError(t, err)
	names := make([]string, 0, len(families))
	for _, f := range families {
		names = append(names, f.GetName())
	}
	assert.Contains(t, names, "stockassist_user_lookup_seconds")
	assert.Contains(t, names, "stockassist_tokens_issued_total")
}

func TestNewMetrics_NilRegistererSkipsRegistration(t *testing.T) {
	assert.NotPanics(t, func() {
		NewMetrics(nil)
		NewMetrics(nil)
	})
}
