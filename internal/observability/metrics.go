package observability

import (
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/yungbote/moodlog-backend/internal/platform/logger"
)

const namespace = "moodlog"

// Metrics is nil-safe: every method is a no-op on a nil receiver so callers
// never branch on whether metrics are enabled.
type Metrics struct {
	registry *prometheus.Registry

	apiRequests *prometheus.CounterVec
	apiLatency  *prometheus.HistogramVec

	providerAttempts *prometheus.CounterVec
	providerLatency  *prometheus.HistogramVec
	placeholderUsed  prometheus.Counter

	submissions       *prometheus.CounterVec
	persistenceWrites *prometheus.CounterVec
	historyFallbacks  *prometheus.CounterVec
}

var (
	initOnce sync.Once
	instance *Metrics
)

// Init builds the process-wide metrics on a private registry.
func Init(log *logger.Logger) *Metrics {
	initOnce.Do(func() {
		instance = New(prometheus.NewRegistry())
		if log != nil {
			log.Info("metrics initialized")
		}
	})
	return instance
}

func Current() *Metrics {
	return instance
}

// New registers every collector on reg, plus the Go runtime and process collectors.
func New(reg *prometheus.Registry) *Metrics {
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	f := promauto.With(reg)
	return &Metrics{
		registry: reg,
		apiRequests: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by method, route and status class.",
		}, []string{"method", "route", "status"}),
		apiLatency: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		providerAttempts: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "image_provider_attempts_total",
			Help:      "Image provider attempts by provider and outcome.",
		}, []string{"provider", "outcome"}),
		providerLatency: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "image_provider_duration_seconds",
			Help:      "Image provider call latency.",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 20, 40, 60},
		}, []string{"provider"}),
		placeholderUsed: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "image_placeholder_total",
			Help:      "Image chain runs that ended on the placeholder.",
		}),
		submissions: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "mood_submissions_total",
			Help:      "Mood submissions by outcome.",
		}, []string{"outcome"}),
		persistenceWrites: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "mood_persistence_writes_total",
			Help:      "Mood entry insert attempts by column profile and outcome.",
		}, []string{"profile", "outcome"}),
		historyFallbacks: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "mood_history_date_fallback_total",
			Help:      "History queries that fell back to date-only ordering.",
		}, []string{"view"}),
	}
}

func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) ObserveAPI(method, route, status string, dur time.Duration) {
	if m == nil {
		return
	}
	m.apiRequests.WithLabelValues(method, route, status).Inc()
	m.apiLatency.WithLabelValues(method, route).Observe(dur.Seconds())
}

func (m *Metrics) ObserveProviderAttempt(provider, outcome string, dur time.Duration) {
	if m == nil {
		return
	}
	m.providerAttempts.WithLabelValues(provider, outcome).Inc()
	m.providerLatency.WithLabelValues(provider).Observe(dur.Seconds())
}

func (m *Metrics) IncPlaceholder() {
	if m == nil {
		return
	}
	m.placeholderUsed.Inc()
}

func (m *Metrics) IncSubmission(outcome string) {
	if m == nil {
		return
	}
	m.submissions.WithLabelValues(outcome).Inc()
}

func (m *Metrics) IncPersistenceWrite(profile, outcome string) {
	if m == nil {
		return
	}
	m.persistenceWrites.WithLabelValues(profile, outcome).Inc()
}

func (m *Metrics) IncHistoryFallback(view string) {
	if m == nil {
		return
	}
	m.historyFallbacks.WithLabelValues(view).Inc()
}
