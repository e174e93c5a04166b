package providers

import (
	"time"
	"varietyd/internal/structures"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type MetricsProviderInterface interface {
	IncRequestsTotal(endpoint string, status int)
	ObserveRequestDuration(endpoint string, duration time.Duration)
	IncRequestErrors(endpoint string, class string)
	IncCacheHits(scope string)
	IncCacheMisses(scope string)
	ObserveCacheTTL(scope string, ttl time.Duration)
	ObserveUpstreamDuration(kind string, duration time.Duration)
	IncUpstreamErrors(kind string)
	SetBreakerState(name string, state float64)
	IncSnapshotRefresh(scope string, success bool)
	IncCoordinatorRejected(reason string)
	SetQueueDepth(depth int)
	SetKnownYears(count int)
}

type MetricsProvider struct {
	requestsTotal      *prometheus.CounterVec
	requestDuration    *prometheus.HistogramVec
	requestErrors      *prometheus.CounterVec
	cacheHits          *prometheus.CounterVec
	cacheMisses        *prometheus.CounterVec
	cacheTTL           *prometheus.HistogramVec
	upstreamDuration   *prometheus.HistogramVec
	upstreamErrors     *prometheus.CounterVec
	breakerState       *prometheus.GaugeVec
	snapshotRefreshes  *prometheus.CounterVec
	coordinatorRejects *prometheus.CounterVec
	queueDepth         prometheus.Gauge
	knownYears         prometheus.Gauge
}

func (m *MetricsProvider) IncRequestsTotal(endpoint string, status int) {
	m.requestsTotal.WithLabelValues(endpoint, httpStatusBucket(status)).Inc()
}

func (m *MetricsProvider) ObserveRequestDuration(endpoint string, duration time.Duration) {
	m.requestDuration.WithLabelValues(endpoint).Observe(duration.Seconds())
}

func (m *MetricsProvider) IncRequestErrors(endpoint string, class string) {
	m.requestErrors.WithLabelValues(endpoint, class).Inc()
}

func (m *MetricsProvider) IncCacheHits(scope string) {
	m.cacheHits.WithLabelValues(scope).Inc()
}

func (m *MetricsProvider) IncCacheMisses(scope string) {
	m.cacheMisses.WithLabelValues(scope).Inc()
}

func (m *MetricsProvider) ObserveCacheTTL(scope string, ttl time.Duration) {
	m.cacheTTL.WithLabelValues(scope).Observe(ttl.Seconds())
}

func (m *MetricsProvider) ObserveUpstreamDuration(kind string, duration time.Duration) {
	m.upstreamDuration.WithLabelValues(kind).Observe(duration.Seconds())
}

func (m *MetricsProvider) IncUpstreamErrors(kind string) {
	m.upstreamErrors.WithLabelValues(kind).Inc()
}

func (m *MetricsProvider) SetBreakerState(name string, state float64) {
	m.breakerState.WithLabelValues(name).Set(state)
}

func (m *MetricsProvider) IncSnapshotRefresh(scope string, success bool) {
	result := "success"
	if !success {
		result = "failure"
	}
	m.snapshotRefreshes.WithLabelValues(scope, result).Inc()
}

func (m *MetricsProvider) IncCoordinatorRejected(reason string) {
	m.coordinatorRejects.WithLabelValues(reason).Inc()
}

func (m *MetricsProvider) SetQueueDepth(depth int) {
	m.queueDepth.Set(float64(depth))
}

func (m *MetricsProvider) SetKnownYears(count int) {
	m.knownYears.Set(float64(count))
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

func NewMetricsProvider(conf *structures.Config) MetricsProviderInterface {
	if !conf.Metrics.Enabled {
		return &noopMetrics{}
	}

	return &MetricsProvider{
		requestsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "varietyd_requests_total",
			Help: "Total number of HTTP requests",
		}, []string{"endpoint", "status"}),

		requestDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "varietyd_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"endpoint"}),

		requestErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "varietyd_request_errors_total",
			Help: "Total number of failed HTTP requests by error class",
		}, []string{"endpoint", "class"}),

		cacheHits: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "varietyd_cache_hits_total",
			Help: "Total number of response cache hits",
		}, []string{"scope"}),

		cacheMisses: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "varietyd_cache_misses_total",
			Help: "Total number of response cache misses",
		}, []string{"scope"}),

		cacheTTL: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "varietyd_cache_ttl_seconds",
			Help:    "Remaining snapshot freshness a response was cached for",
			Buckets: []float64{1, 5, 15, 30, 60, 120, 300, 600, 3600, 86400},
		}, []string{"scope"}),

		upstreamDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "varietyd_upstream_request_duration_seconds",
			Help:    "Duration of upstream page requests in seconds",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 20},
		}, []string{"kind"}),

		upstreamErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "varietyd_upstream_errors_total",
			Help: "Total number of failed upstream page requests",
		}, []string{"kind"}),

		breakerState: promauto.NewGaugeVec(prometheus.GaugeOpts{
			Name: "varietyd_circuit_breaker_state",
			Help: "Upstream circuit breaker state (0=closed, 1=half-open, 2=open)",
		}, []string{"name"}),

		snapshotRefreshes: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "varietyd_snapshot_refreshes_total",
			Help: "Total number of fetch-and-compute cycles",
		}, []string{"scope", "result"}),

		coordinatorRejects: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "varietyd_coordinator_rejected_total",
			Help: "Total number of requests rejected by the coordinator",
		}, []string{"reason"}),

		queueDepth: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "varietyd_coordinator_queue_depth",
			Help: "Current number of commands waiting for the coordinator",
		}),

		knownYears: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "varietyd_known_years",
			Help: "Number of historical years held in memory",
		}),
	}
}

// noopMetrics is a no-op implementation for when metrics are disabled.
type noopMetrics struct{}

func (n *noopMetrics) IncRequestsTotal(_ string, _ int)                  {}
func (n *noopMetrics) ObserveRequestDuration(_ string, _ time.Duration)  {}
func (n *noopMetrics) IncRequestErrors(_ string, _ string)               {}
func (n *noopMetrics) IncCacheHits(_ string)                             {}
func (n *noopMetrics) IncCacheMisses(_ string)                           {}
func (n *noopMetrics) ObserveCacheTTL(_ string, _ time.Duration)         {}
func (n *noopMetrics) ObserveUpstreamDuration(_ string, _ time.Duration) {}
func (n *noopMetrics) IncUpstreamErrors(_ string)                        {}
func (n *noopMetrics) SetBreakerState(_ string, _ float64)               {}
func (n *noopMetrics) IncSnapshotRefresh(_ string, _ bool)               {}
func (n *noopMetrics) IncCoordinatorRejected(_ string)                   {}
func (n *noopMetrics) SetQueueDepth(_ int)                               {}
func (n *noopMetrics) SetKnownYears(_ int)                               {}

// NewNoopMetrics returns a metrics provider that records nothing.
func NewNoopMetrics() MetricsProviderInterface {
	return &noopMetrics{}
}
