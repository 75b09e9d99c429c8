package obs

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics interface {
	IncRequestsTotal(endpoint string, status int)
	ObserveRequestDuration(endpoint string, duration time.Duration)
	IncJobRun(job, outcome string)
	IncJobUnit(job, result string)
	ObserveRouteOptimization(variant string, duration time.Duration)
	IncDirectionsCacheHit()
	IncDirectionsCacheMiss()
}

type PrometheusMetrics struct {
	requestsTotal    *prometheus.CounterVec
	requestDuration  *prometheus.HistogramVec
	jobRuns          *prometheus.CounterVec
	jobUnits         *prometheus.CounterVec
	routeDuration    *prometheus.HistogramVec
	directionsHits   prometheus.Counter
	directionsMisses prometheus.Counter
}

// NewMetrics registers the collectors on reg, or returns a no-op
// implementation when disabled.
func NewMetrics(enabled bool, reg prometheus.Registerer) Metrics {
	if !enabled {
		return NoopMetrics{}
	}

	f := promauto.With(reg)

	return &PrometheusMetrics{
		requestsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: "logistics_requests_total",
			Help: "Total number of HTTP requests",
		}, []string{"endpoint", "status"}),

		requestDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "logistics_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"endpoint"}),

		jobRuns: f.NewCounterVec(prometheus.CounterOpts{
			Name: "logistics_job_runs_total",
			Help: "Scheduled job invocations by outcome",
		}, []string{"batch", "outcome"}),

		jobUnits: f.NewCounterVec(prometheus.CounterOpts{
			Name: "logistics_job_units_total",
			Help: "Units processed by scheduled jobs (profiles, accounts, backups)",
		}, []string{"batch", "result"}),

		routeDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "logistics_route_optimization_seconds",
			Help:    "Route optimization duration in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"variant"}),

		directionsHits: f.NewCounter(prometheus.CounterOpts{
			Name: "logistics_directions_cache_hits_total",
			Help: "Directions served from cache",
		}),

		directionsMisses: f.NewCounter(prometheus.CounterOpts{
			Name: "logistics_directions_cache_misses_total",
			Help: "Directions fetched from the provider",
		}),
	}
}

func (m *PrometheusMetrics) IncRequestsTotal(endpoint string, status int) {
	m.requestsTotal.WithLabelValues(endpoint, httpStatusBucket(status)).Inc()
}

func (m *PrometheusMetrics) ObserveRequestDuration(endpoint string, duration time.Duration) {
	m.requestDuration.WithLabelValues(endpoint).Observe(duration.Seconds())
}

func (m *PrometheusMetrics) IncJobRun(job, outcome string) {
	m.jobRuns.WithLabelValues(job, outcome).Inc()
}

func (m *PrometheusMetrics) IncJobUnit(job, result string) {
	m.jobUnits.WithLabelValues(job, result).Inc()
}

func (m *PrometheusMetrics) ObserveRouteOptimization(variant string, duration time.Duration) {
	m.routeDuration.WithLabelValues(variant).Observe(duration.Seconds())
}

func (m *PrometheusMetrics) IncDirectionsCacheHit() {
	m.directionsHits.Inc()
}

func (m *PrometheusMetrics) IncDirectionsCacheMiss() {
	m.directionsMisses.Inc()
}

func httpStatusBucket(code int) string {
	switch {
	case code < 200:
		return "1xx"
	case code < 300:
		return "2xx"
	case code < 400:
		return "3xx"
	case code < 500:
		return "4xx"
	default:
		return "5xx"
	}
}

// NoopMetrics is used when metrics are disabled.
type NoopMetrics struct{}

func (NoopMetrics) IncRequestsTotal(_ string, _ int)                   {}
func (NoopMetrics) ObserveRequestDuration(_ string, _ time.Duration)   {}
func (NoopMetrics) IncJobRun(_, _ string)                              {}
func (NoopMetrics) IncJobUnit(_, _ string)                             {}
func (NoopMetrics) ObserveRouteOptimization(_ string, _ time.Duration) {}
func (NoopMetrics) IncDirectionsCacheHit()                             {}
func (NoopMetrics) IncDirectionsCacheMiss()                            {}
