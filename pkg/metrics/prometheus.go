// Package metrics provides Prometheus metrics for the agent evaluation service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager owns the Prometheus collectors of the evaluation pipeline.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	scoreBuckets     []float64
	enabled          bool
	constLabels      map[string]string
	registry         prometheus.Registerer

	// Evaluation metrics
	evaluations     *prometheus.CounterVec
	similarityScore prometheus.Histogram

	// Run metrics
	runs               *prometheus.CounterVec
	runDuration        prometheus.Histogram
	recordsLastRun     prometheus.Gauge
	overallAccuracy    prometheus.Gauge
	agentAccuracy      *prometheus.GaugeVec
	agentAvgScore      *prometheus.GaugeVec
	validationFailures *prometheus.CounterVec
	exportDuration     *prometheus.HistogramVec

	// HTTP metrics
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	errorRateByType     *prometheus.CounterVec
	errorRateByEndpoint *prometheus.CounterVec

	// System metrics
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // intentional global for metrics registry

func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "agenteval",
		subsystem:        "pipeline",
		histogramBuckets: prometheus.DefBuckets,
		scoreBuckets:     prometheus.LinearBuckets(0.1, 0.1, 10),
		enabled:          true,
		constLabels:      make(map[string]string),
		registry:         prometheus.DefaultRegisterer,
	}

	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()

	return m
}

func (m *Manager) counterVec(name, help string, labels ...string) *prometheus.CounterVec {
	return promauto.With(m.registry).NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		ConstLabels: m.constLabels,
	}, labels)
}

func (m *Manager) gauge(name, help string) prometheus.Gauge {
	return promauto.With(m.registry).NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		ConstLabels: m.constLabels,
	})
}

func (m *Manager) gaugeVec(name, help string, labels ...string) *prometheus.GaugeVec {
	return promauto.With(m.registry).NewGaugeVec(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		ConstLabels: m.constLabels,
	}, labels)
}

func (m *Manager) histogram(name, help string, buckets []float64) prometheus.Histogram {
	return promauto.With(m.registry).NewHistogram(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		Buckets:     buckets,
		ConstLabels: m.constLabels,
	})
}

func (m *Manager) histogramVec(name, help string, labels ...string) *prometheus.HistogramVec {
	return promauto.With(m.registry).NewHistogramVec(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		Buckets:     m.histogramBuckets,
		ConstLabels: m.constLabels,
	}, labels)
}

// initializeMetrics creates and registers all collectors.
func (m *Manager) initializeMetrics() {
	m.evaluations = m.counterVec("evaluations_total",
		"Total number of evaluated answers by agent and feedback", "agent", "feedback")
	m.similarityScore = m.histogram("similarity_score",
		"Distribution of reported similarity scores", m.scoreBuckets)

	m.runs = m.counterVec("runs_total",
		"Total number of pipeline runs by outcome", "status")
	m.runDuration = m.histogram("run_duration_milliseconds",
		"Pipeline run duration in milliseconds", m.histogramBuckets)
	m.recordsLastRun = m.gauge("records_last_run",
		"Number of evaluation records produced by the latest run")
	m.overallAccuracy = m.gauge("overall_accuracy_percent",
		"Overall accuracy of the latest run")
	m.agentAccuracy = m.gaugeVec("agent_accuracy_percent",
		"Accuracy per agent in the latest run", "agent")
	m.agentAvgScore = m.gaugeVec("agent_avg_score",
		"Mean similarity score per agent in the latest run", "agent")
	m.validationFailures = m.counterVec("validation_failures_total",
		"Test cases rejected before evaluation by missing field", "field")
	m.exportDuration = m.histogramVec("export_duration_milliseconds",
		"Time spent writing report artifacts", "artifact")

	m.httpRequests = m.counterVec("http_requests_total",
		"Total number of HTTP requests by endpoint and method", "endpoint", "method", "status_code")
	m.httpRequestDuration = m.histogramVec("http_request_duration_milliseconds",
		"HTTP request duration in milliseconds", "endpoint", "method", "status_code")
	m.errorRateByType = m.counterVec("errors_by_type_total",
		"Total number of errors by type", "error_type", "severity")
	m.errorRateByEndpoint = m.counterVec("errors_by_endpoint_total",
		"Total number of errors by endpoint", "endpoint", "method", "error_type")

	m.systemMemoryUsage = m.gauge("system_memory_usage_bytes", "System memory usage in bytes")
	m.systemGoroutineCount = m.gauge("system_goroutine_count", "Number of goroutines")
}

// RecordEvaluation counts one evaluated answer and observes its score.
func RecordEvaluation(agent, feedback string, score float64) {
	if !globalManager.enabled {
		return
	}
	globalManager.evaluations.WithLabelValues(agent, feedback).Inc()
	globalManager.similarityScore.Observe(score)
}

// RecordRun counts a finished run with the given status ("ok", "invalid", "error").
func RecordRun(status string, durationMs float64) {
	if !globalManager.enabled {
		return
	}
	globalManager.runs.WithLabelValues(status).Inc()
	globalManager.runDuration.Observe(durationMs)
}

// UpdateRunResult publishes the record count and overall accuracy of the latest run.
func UpdateRunResult(records int, overallPct float64) {
	if !globalManager.enabled {
		return
	}
	globalManager.recordsLastRun.Set(float64(records))
	globalManager.overallAccuracy.Set(overallPct)
}

// UpdateAgentSummary publishes per-agent accuracy and mean score.
func UpdateAgentSummary(agent string, accuracyPct, avgScore float64) {
	if !globalManager.enabled {
		return
	}
	globalManager.agentAccuracy.WithLabelValues(agent).Set(accuracyPct)
	globalManager.agentAvgScore.WithLabelValues(agent).Set(avgScore)
}

// ResetAgentSummaries drops per-agent gauges so agents absent from the
// latest run disappear.
func ResetAgentSummaries() {
	globalManager.agentAccuracy.Reset()
	globalManager.agentAvgScore.Reset()
}

// RecordValidationFailure counts a test case rejected for a missing field.
func RecordValidationFailure(field string) {
	if !globalManager.enabled {
		return
	}
	globalManager.validationFailures.WithLabelValues(field).Inc()
}

// RecordExportDuration observes how long writing an artifact took.
func RecordExportDuration(artifact string, durationMs float64) {
	if !globalManager.enabled {
		return
	}
	globalManager.exportDuration.WithLabelValues(artifact).Observe(durationMs)
}

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// RecordErrorByType records an error with type and severity labels.
func RecordErrorByType(errorType, severity string) {
	globalManager.errorRateByType.WithLabelValues(errorType, severity).Inc()
}

// RecordErrorByEndpoint records an error with endpoint, method, and error type labels.
func RecordErrorByEndpoint(endpoint, method, errorType string) {
	globalManager.errorRateByEndpoint.WithLabelValues(endpoint, method, errorType).Inc()
}

// UpdateSystemMemoryUsage sets the system memory usage in bytes.
func UpdateSystemMemoryUsage(bytes uint64) {
	globalManager.systemMemoryUsage.Set(float64(bytes))
}

// UpdateSystemGoroutineCount sets the number of goroutines.
func UpdateSystemGoroutineCount(count int) {
	globalManager.systemGoroutineCount.Set(float64(count))
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
