package providers

import (
	"studiosync/internal/structures"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// RegistrySizer reports the current number of registry records.
type RegistrySizer interface {
	Count() int
}

// KeyPoolObserver reports credential pool occupancy by status.
type KeyPoolObserver interface {
	CountByStatus() (active int, exhausted int)
}

type MetricsProviderInterface interface {
	IncRequestsTotal(endpoint string, status int)
	ObserveRequestDuration(endpoint string, duration time.Duration)
	IncCacheHits()
	IncCacheMisses()
	ObserveSyncDuration(target string, duration time.Duration)
	IncSyncFailures(target string)
	SetMatchedClients(matched, total int)
	SetQuotaExceeded(exceeded bool)
}

type MetricsProvider struct {
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	cacheHits       prometheus.Counter
	cacheMisses     prometheus.Counter
	syncDuration    *prometheus.HistogramVec
	syncFailures    *prometheus.CounterVec
	matchedClients  prometheus.Gauge
	registryClients prometheus.Gauge
	quotaExceeded   prometheus.Gauge
}

func (m *MetricsProvider) IncRequestsTotal(endpoint string, status int) {
	m.requestsTotal.WithLabelValues(endpoint, httpStatusBucket(status)).Inc()
}

func (m *MetricsProvider) ObserveRequestDuration(endpoint string, duration time.Duration) {
	m.requestDuration.WithLabelValues(endpoint).Observe(duration.Seconds())
}

func (m *MetricsProvider) IncCacheHits() {
	m.cacheHits.Inc()
}

func (m *MetricsProvider) IncCacheMisses() {
	m.cacheMisses.Inc()
}

func (m *MetricsProvider) ObserveSyncDuration(target string, duration time.Duration) {
	m.syncDuration.WithLabelValues(target).Observe(duration.Seconds())
}

func (m *MetricsProvider) IncSyncFailures(target string) {
	m.syncFailures.WithLabelValues(target).Inc()
}

func (m *MetricsProvider) SetMatchedClients(matched, total int) {
	m.matchedClients.Set(float64(matched))
	m.registryClients.Set(float64(total))
}

func (m *MetricsProvider) SetQuotaExceeded(exceeded bool) {
	if exceeded {
		m.quotaExceeded.Set(1)
	} else {
		m.quotaExceeded.Set(0)
	}
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

func NewMetricsProvider(conf *structures.Config, registry RegistrySizer, pool KeyPoolObserver) MetricsProviderInterface {
	if !conf.Metrics.Enabled {
		return &noopMetrics{}
	}

	m := &MetricsProvider{
		requestsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "studiosync_requests_total",
			Help: "Total number of HTTP requests",
		}, []string{"endpoint", "status"}),

		requestDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "studiosync_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"endpoint"}),

		cacheHits: promauto.NewCounter(prometheus.CounterOpts{
			Name: "studiosync_cache_hits_total",
			Help: "Total number of response cache hits",
		}),

		cacheMisses: promauto.NewCounter(prometheus.CounterOpts{
			Name: "studiosync_cache_misses_total",
			Help: "Total number of response cache misses",
		}),

		syncDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "studiosync_sync_duration_seconds",
			Help:    "Duration of synchronization cycles in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"target"}),

		syncFailures: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "studiosync_sync_failures_total",
			Help: "Total number of failed synchronization cycles",
		}, []string{"target"}),

		matchedClients: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "studiosync_matched_clients",
			Help: "Registry records matched against live stats in the last cycle",
		}),

		registryClients: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "studiosync_registry_clients",
			Help: "Registry records seen in the last cycle",
		}),

		quotaExceeded: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "studiosync_quota_exceeded",
			Help: "1 when the last cycle ran out of provider credentials",
		}),
	}

	promauto.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "studiosync_registry_records",
		Help: "Current number of registry records",
	}, func() float64 {
		return float64(registry.Count())
	})

	promauto.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "studiosync_api_keys_exhausted",
		Help: "Provider credentials currently in cooldown",
	}, func() float64 {
		_, exhausted := pool.CountByStatus()
		return float64(exhausted)
	})

	return m
}

// noopMetrics is a no-op implementation for when metrics are disabled.
type noopMetrics struct{}

func (n *noopMetrics) IncRequestsTotal(_ string, _ int)                 {}
func (n *noopMetrics) ObserveRequestDuration(_ string, _ time.Duration) {}
func (n *noopMetrics) IncCacheHits()                                    {}
func (n *noopMetrics) IncCacheMisses()                                  {}
func (n *noopMetrics) ObserveSyncDuration(_ string, _ time.Duration)    {}
func (n *noopMetrics) IncSyncFailures(_ string)                         {}
func (n *noopMetrics) SetMatchedClients(_, _ int)                       {}
func (n *noopMetrics) SetQuotaExceeded(_ bool)                          {}
