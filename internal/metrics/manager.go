package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Manager struct {
	// counters
	CounterRequests           *prometheus.CounterVec
	CounterUploadFallbacks    *prometheus.CounterVec
	CounterSessionsIngested   prometheus.Counter
	CounterVideosProcessed    *prometheus.CounterVec
	CounterHandleRequestPanic prometheus.Counter

	// gauges
	GaugeRequests prometheus.Gauge

	// histograms
	HistogramRequestDuration *prometheus.HistogramVec
}

func NewTestManager() *Manager {
	return NewManager("workout", "test_server", prometheus.NewRegistry())
}

func NewTestManagerAndRegistry() (*Manager, *prometheus.Registry) {
	reg := prometheus.NewRegistry()
	return NewManager("workout", "test_server", reg), reg
}

func NewManager(namespace, subsystem string, reg prometheus.Registerer) *Manager {
	factory := promauto.With(reg)

	return &Manager{
		CounterRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "request",
			Help:      "The total number of incoming requests",
		}, []string{"method", "path", "status"}),
		CounterUploadFallbacks: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "upload_fallbacks",
			Help:      "Media uploads that failed and were stored inline instead",
		}, []string{"kind"}),
		CounterSessionsIngested: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "sessions_ingested",
			Help:      "The total number of ingested workout sessions",
		}),
		CounterVideosProcessed: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "videos_processed",
			Help:      "Submitted videos by processing outcome",
		}, []string{"outcome"}),
		CounterHandleRequestPanic: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "handle_request_panic",
			Help:      "The total number of serve request panics",
		}),
		GaugeRequests: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "current_requests",
			Help:      "Current number of requests served",
		}),
		HistogramRequestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "request_duration_seconds",
			Help:      "Request duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "path"}),
	}
}

// UploadFallback records a media upload that ended up stored inline.
// A nil manager is allowed so services can run without metrics in tests.
func (m *Manager) UploadFallback(kind string) {
	if m == nil {
		return
	}
	m.CounterUploadFallbacks.WithLabelValues(kind).Inc()
}

func (m *Manager) SessionIngested() {
	if m == nil {
		return
	}
	m.CounterSessionsIngested.Inc()
}

func (m *Manager) VideoProcessed(outcome string) {
	if m == nil {
		return
	}
	m.CounterVideosProcessed.WithLabelValues(outcome).Inc()
}
