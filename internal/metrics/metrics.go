// Package metrics provides Prometheus metrics for the resume analyzer service.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "resumeanalyzer"

// Outcome label values.
const (
	OutcomeOK    = "ok"
	OutcomeError = "error"
)

// Trends cache label values.
const (
	CacheHit      = "hit"
	CacheMiss     = "miss"
	CacheDisabled = "disabled"
)

// Metrics holds every collector the service exports. A nil *Metrics is valid
// and records nothing.
type Metrics struct {
	gatherer prometheus.Gatherer

	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	llmCalls            *prometheus.CounterVec
	llmCallDuration     *prometheus.HistogramVec
	trendsCache         *prometheus.CounterVec
	analyses            *prometheus.CounterVec
}

// New registers all collectors on reg. gatherer backs Handler and may be nil
// when the caller never serves /metrics.
func New(reg prometheus.Registerer, gatherer prometheus.Gatherer) *Metrics {
	auto := promauto.With(reg)
	return &Metrics{
		gatherer: gatherer,
		httpRequests: auto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests by endpoint, method and status code.",
		}, []string{"endpoint", "method", "status_code"}),
		httpRequestDuration: auto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"endpoint", "method"}),
		llmCalls: auto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "llm_calls_total",
			Help:      "LLM completions by operation and outcome.",
		}, []string{"operation", "outcome"}),
		llmCallDuration: auto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "llm_call_duration_seconds",
			Help:      "LLM completion latency in seconds.",
			Buckets:   []float64{0.25, 0.5, 1, 2, 4, 8, 16, 32},
		}, []string{"operation"}),
		trendsCache: auto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "trends_cache_total",
			Help:      "Market trends lookups by cache result.",
		}, []string{"result"}),
		analyses: auto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "analyses_total",
			Help:      "Resume analyses by source and outcome.",
		}, []string{"source", "outcome"}),
	}
}

// ObserveLLMCall records one completion.
func (m *Metrics) ObserveLLMCall(operation string, d time.Duration, err error) {
	if m == nil {
		return
	}
	m.llmCalls.WithLabelValues(operation, outcome(err)).Inc()
	m.llmCallDuration.WithLabelValues(operation).Observe(d.Seconds())
}

// RecordTrendsCache records one trends lookup result (CacheHit, CacheMiss or CacheDisabled).
func (m *Metrics) RecordTrendsCache(result string) {
	if m == nil {
		return
	}
	m.trendsCache.WithLabelValues(result).Inc()
}

// RecordAnalysis records one finished analysis.
func (m *Metrics) RecordAnalysis(source string, err error) {
	if m == nil {
		return
	}
	m.analyses.WithLabelValues(source, outcome(err)).Inc()
}

// Handler serves the gathered metrics. With no gatherer it serves 404.
func (m *Metrics) Handler() http.Handler {
	if m == nil || m.gatherer == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}

// Middleware records request count and latency. endpoint should be the route
// pattern, not the raw path, to keep label cardinality bounded.
func (m *Metrics) Middleware(endpoint string, next http.Handler) http.Handler {
	if m == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		m.httpRequests.WithLabelValues(endpoint, r.Method, strconv.Itoa(rec.status)).Inc()
		m.httpRequestDuration.WithLabelValues(endpoint, r.Method).Observe(time.Since(start).Seconds())
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func outcome(err error) string {
	if err != nil {
		return OutcomeError
	}
	return OutcomeOK
}
