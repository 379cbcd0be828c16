package providers

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"onegoodthing/internal/structures"
	"time"
)

type MetricsProviderInterface interface {
	IncRequestsTotal(endpoint string, status int)
	ObserveRequestDuration(endpoint string, duration time.Duration)
	IncCacheHits()
	IncCacheMisses()
	ObservePersistenceDuration(duration time.Duration)
	SetEntriesTotal(count int)
	IncEntriesCreated()
	IncAIRequests(kind, outcome string)
	IncMailSent(kind, outcome string)
}

type MetricsProvider struct {
	requestsTotal       *prometheus.CounterVec
	requestDuration     *prometheus.HistogramVec
	cacheHits           prometheus.Counter
	cacheMisses         prometheus.Counter
	persistenceDuration prometheus.Histogram
	entriesTotal        prometheus.Gauge
	entriesCreated      prometheus.Counter
	aiRequests          *prometheus.CounterVec
	mailSent            *prometheus.CounterVec
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

func (m *MetricsProvider) ObservePersistenceDuration(duration time.Duration) {
	m.persistenceDuration.Observe(duration.Seconds())
}

func (m *MetricsProvider) SetEntriesTotal(count int) {
	m.entriesTotal.Set(float64(count))
}

func (m *MetricsProvider) IncEntriesCreated() {
	m.entriesCreated.Inc()
}

func (m *MetricsProvider) IncAIRequests(kind, outcome string) {
	m.aiRequests.WithLabelValues(kind, outcome).Inc()
}

func (m *MetricsProvider) IncMailSent(kind, outcome string) {
	m.mailSent.WithLabelValues(kind, outcome).Inc()
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
			Name: "ogt_requests_total",
			Help: "Total number of HTTP requests",
		}, []string{"endpoint", "status"}),

		requestDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "ogt_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"endpoint"}),

		cacheHits: promauto.NewCounter(prometheus.CounterOpts{
			Name: "ogt_cache_hits_total",
			Help: "Total number of cache hits",
		}),

		cacheMisses: promauto.NewCounter(prometheus.CounterOpts{
			Name: "ogt_cache_misses_total",
			Help: "Total number of cache misses",
		}),

		persistenceDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "ogt_persistence_duration_seconds",
			Help:    "Duration of snapshot persistence in seconds",
			Buckets: prometheus.DefBuckets,
		}),

		entriesTotal: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "ogt_entries_total",
			Help: "Number of journal entries held by the in-memory store",
		}),

		entriesCreated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "ogt_entries_created_total",
			Help: "Total number of journal entries created",
		}),

		aiRequests: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "ogt_ai_requests_total",
			Help: "AI completion requests by kind and outcome",
		}, []string{"kind", "outcome"}),

		mailSent: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "ogt_mail_total",
			Help: "Reminder, follow-up, re-engagement, welcome and test emails by outcome",
		}, []string{"kind", "outcome"}),
	}
}

// noopMetrics is a no-op implementation for when metrics are disabled.
type noopMetrics struct{}

func (n *noopMetrics) IncRequestsTotal(_ string, _ int)                 {}
func (n *noopMetrics) ObserveRequestDuration(_ string, _ time.Duration) {}
func (n *noopMetrics) IncCacheHits()                                    {}
func (n *noopMetrics) IncCacheMisses()                                  {}
func (n *noopMetrics) ObservePersistenceDuration(_ time.Duration)       {}
func (n *noopMetrics) SetEntriesTotal(_ int)                            {}
func (n *noopMetrics) IncEntriesCreated()                               {}
func (n *noopMetrics) IncAIRequests(_, _ string)                        {}
func (n *noopMetrics) IncMailSent(_, _ string)                          {}
