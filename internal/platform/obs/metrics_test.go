package obs

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMetrics_DisabledReturnsNoop(t *testing.T) {
	m := NewMetrics(false, prometheus.NewRegistry())
	_, ok := m.(NoopMetrics)
	assert.True(t, ok)

	m.IncJobRun("backups", "ok")
	m.ObserveRouteOptimization("operations", time.Second)
	m.IncDirectionsCacheMiss()
}

func TestPrometheusMetrics_Counters(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(true, reg)

	m.IncJobUnit("recurrence", "created")
	m.IncJobUnit("recurrence", "created")
	m.IncJobUnit("recurrence", "failed")
	m.IncRequestsTotal("/routes/operations", 201)
	m.IncRequestsTotal("/routes/operations", 404)
	m.IncDirectionsCacheHit()

	assert.Equal(t, 2.0, counterValue(t, reg, "logistics_job_units_total", map[string]string{"batch": "recurrence", "result": "created"}))
	assert.Equal(t, 1.0, counterValue(t, reg, "logistics_job_units_total", map[string]string{"batch": "recurrence", "result": "failed"}))
	assert.Equal(t, 1.0, counterValue(t, reg, "logistics_requests_total", map[string]string{"endpoint": "/routes/operations", "status": "2xx"}))
	assert.Equal(t, 1.0, counterValue(t, reg, "logistics_requests_total", map[string]string{"endpoint": "/routes/operations", "status": "4xx"}))
	assert.Equal(t, 1.0, counterValue(t, reg, "logistics_directions_cache_hits_total", nil))
}

func TestHTTPStatusBucket(t *testing.T) {
	tests := []struct {
		code     int
		expected string
	}{
		{101, "1xx"},
		{200, "2xx"},
		{302, "3xx"},
		{422, "4xx"},
		{503, "5xx"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, httpStatusBucket(tt.code))
	}
}

func counterValue(t *testing.T, reg *prometheus.Registry, name string, labels map[string]string) float64 {
	t.Helper()

	families, err := reg.Gather()
	require.NoError(t, err)

	for _, f := range families {
		if f.GetName() != name {
			continue
		}
	metrics:
		for _, m := range f.GetMetric() {
			for _, lp := range m.GetLabel() {
				if labels[lp.GetName()] != lp.GetValue() {
					continue metrics
				}
			}
			return m.GetCounter().GetValue()
		}
	}
	return 0
}
