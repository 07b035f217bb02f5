// Package metrics provides Prometheus metrics for the kiosk rotation service.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Default metrics configuration constants.
const (
	defaultRefreshInterval = 10 * time.Second
)

// Manager manages all Prometheus metrics for the rotation service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	enabled          bool
	refreshInterval  time.Duration
	customLabels     map[string]string
	registry         prometheus.Registerer

	// Core Rotation Metrics - What really matters for a kiosk
	slidesShown      *prometheus.CounterVec
	selections       prometheus.Counter
	ledgerResets     prometheus.Counter
	manualCommands   *prometheus.CounterVec
	deeplinkResolves prometheus.Counter
	deeplinkMisses   prometheus.Counter

	// Population Health Metrics
	populationSize   prometheus.Gauge
	populationByKind *prometheus.GaugeVec
	ledgerTotalShows prometheus.Gauge
	pausedState      prometheus.Gauge

	// Refresh Metrics - Epoch rebuild timings
	refreshTotal      prometheus.Counter
	refreshFailures   prometheus.Counter
	refreshDuration   prometheus.Histogram
	refreshLastUnix   prometheus.Gauge
	sourceFetchErrors *prometheus.CounterVec

	// Queue Metrics - Playback event queue performance
	queueCapacity          prometheus.Gauge
	queueSize              prometheus.Gauge
	queueUtilization       prometheus.Gauge
	queueEnqueueRate       prometheus.Counter
	queueDequeueRate       prometheus.Counter
	queueEnqueueErrors     prometheus.Counter
	queueProcessingLatency prometheus.Histogram

	// HTTP Performance Metrics
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// Enhanced Error Metrics - Detailed error tracking
	errorRateByComponent *prometheus.CounterVec

	// System Performance Metrics
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
	systemGCPauseTime    prometheus.Histogram
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // intentional global for metrics registry

// Initialize global metrics.
func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "kioskd",
		subsystem:        "rotation",
		histogramBuckets: prometheus.DefBuckets,
		enabled:          true,
		refreshInterval:  defaultRefreshInterval,
		customLabels:     make(map[string]string),
		registry:         prometheus.DefaultRegisterer,
	}

	// Apply all options
	for _, opt := range opts {
		opt(m)
	}

	// Initialize metrics
	m.initializeMetrics()

	return m
}

// initializeMetrics creates all the Prometheus metrics.
func (m *Manager) initializeMetrics() { //nolint:funlen // long function required for comprehensive metrics initialization
	// Ensure metrics are registered on the configured registry (custom by default)
	auto := promauto.With(m.registry)

	// Core Rotation Metrics
	m.slidesShown = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "slides_shown_total",
		Help:      "Total number of slides displayed, labeled by slide kind",
	}, []string{"kind"})

	m.selections = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "selections_total",
		Help:      "Total number of weighted scheduler selections",
	})

	m.ledgerResets = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "ledger_resets_total",
		Help:      "Total number of recency ledger resets (threshold or rebuild)",
	})

	m.manualCommands = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "manual_commands_total",
		Help:      "Total number of manual playback commands, labeled by command",
	}, []string{"command"})

	m.deeplinkResolves = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "deeplink_resolves_total",
		Help:      "Total number of navigation tokens resolved to a slide",
	})

	m.deeplinkMisses = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "deeplink_misses_total",
		Help:      "Total number of navigation tokens that fell back to slide 0",
	})

	// Population Health Metrics
	m.populationSize = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "population_size",
		Help:      "Number of slides in the current population",
	})

	m.populationByKind = auto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "population_by_kind",
		Help:      "Number of slides in the current population, labeled by kind",
	}, []string{"kind"})

	m.ledgerTotalShows = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "ledger_total_shows",
		Help:      "Sum of times-shown counts in the current recency ledger",
	})

	m.pausedState = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "paused",
		Help:      "Whether rotation is currently paused (1) or rotating (0)",
	})

	// Refresh Metrics
	m.refreshTotal = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "refreshes_total",
		Help:      "Total number of successful population rebuilds",
	})

	m.refreshFailures = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "refresh_failures_total",
		Help:      "Total number of refresh cycles skipped due to errors",
	})

	m.refreshDuration = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "refresh_duration_milliseconds",
		Help:      "Histogram of fetch+normalize duration per refresh cycle",
		Buckets:   m.histogramBuckets,
	})

	m.refreshLastUnix = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "refresh_last_success_unixtime",
		Help:      "Unix timestamp of the last successful refresh",
	})

	m.sourceFetchErrors = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "source_fetch_errors_total",
		Help:      "Total number of source fetch errors, labeled by collection",
	}, []string{"source"})

	// Queue Metrics
	m.queueCapacity = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "queue_capacity",
		Help:      "Maximum capacity of the playback event queue",
	})

	m.queueSize = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "queue_size",
		Help:      "Current number of queued playback events",
	})

	m.queueUtilization = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "queue_utilization",
		Help:      "Queue utilization ratio (0.0 to 1.0)",
	})

	m.queueEnqueueRate = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "queue_enqueue_total",
		Help:      "Total number of playback events enqueued",
	})

	m.queueDequeueRate = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "queue_dequeue_total",
		Help:      "Total number of playback events dequeued",
	})

	m.queueEnqueueErrors = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "queue_enqueue_errors_total",
		Help:      "Total number of rejected enqueue attempts",
	})

	m.queueProcessingLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "queue_processing_latency_milliseconds",
		Help:      "Histogram of enqueue latency in milliseconds",
		Buckets:   m.histogramBuckets,
	})

	// HTTP Performance Metrics
	m.httpRequests = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "http_requests_total",
		Help:      "Total number of HTTP requests",
	}, []string{"endpoint", "method", "status_code"})

	m.httpRequestDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "http_request_duration_milliseconds",
		Help:      "Histogram of HTTP request duration in milliseconds",
		Buckets:   m.histogramBuckets,
	}, []string{"endpoint", "method", "status_code"})

	// Enhanced Error Metrics
	m.errorRateByComponent = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "errors_by_component_total",
		Help:      "Total number of errors, labeled by component and error type",
	}, []string{"component", "error_type"})

	// System Performance Metrics
	m.systemMemoryUsage = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "system_memory_usage_bytes",
		Help:      "System memory usage in bytes",
	})

	m.systemGoroutineCount = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "system_goroutine_count",
		Help:      "Number of goroutines",
	})

	m.systemGCPauseTime = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "system_gc_pause_time_milliseconds",
		Help:      "GC pause time in milliseconds",
		Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 25, 50, 100, 250, 500, 1000},
	})
}

// RecordSlideShown increments the shown counter for a slide kind.
func RecordSlideShown(kind string) {
	globalManager.slidesShown.WithLabelValues(kind).Inc()
}

// RecordSelection increments the scheduler selections counter.
func RecordSelection() {
	globalManager.selections.Inc()
}

// RecordLedgerReset increments the ledger resets counter.
func RecordLedgerReset() {
	globalManager.ledgerResets.Inc()
}

// RecordManualCommand increments the manual command counter for a command.
func RecordManualCommand(command string) {
	globalManager.manualCommands.WithLabelValues(command).Inc()
}

// RecordDeeplinkResolve increments the resolved navigation tokens counter.
func RecordDeeplinkResolve() {
	globalManager.deeplinkResolves.Inc()
}

// RecordDeeplinkMiss increments the fallback navigation tokens counter.
func RecordDeeplinkMiss() {
	globalManager.deeplinkMisses.Inc()
}

// UpdatePopulationSize sets the current population size.
func UpdatePopulationSize(size int) {
	globalManager.populationSize.Set(float64(size))
}

// UpdatePopulationByKind sets the population count for a slide kind.
func UpdatePopulationByKind(kind string, count int) {
	globalManager.populationByKind.WithLabelValues(kind).Set(float64(count))
}

// UpdateLedgerTotalShows sets the sum of times-shown counts in the ledger.
func UpdateLedgerTotalShows(total int) {
	globalManager.ledgerTotalShows.Set(float64(total))
}

// UpdatePaused sets the paused indicator gauge.
func UpdatePaused(paused bool) {
	v := 0.0
	if paused {
		v = 1.0
	}
	globalManager.pausedState.Set(v)
}

// Refresh Metrics Functions.

// RecordRefresh increments the successful refresh counter and stamps the time.
func RecordRefresh() {
	globalManager.refreshTotal.Inc()
	globalManager.refreshLastUnix.Set(float64(time.Now().Unix()))
}

// RecordRefreshFailure increments the refresh failure counter.
func RecordRefreshFailure() {
	globalManager.refreshFailures.Inc()
}

// RecordRefreshDuration records the fetch+normalize duration of a cycle.
func RecordRefreshDuration(latencyMs float64) {
	globalManager.refreshDuration.Observe(latencyMs)
}

// RecordSourceFetchError increments the fetch error counter for a collection.
func RecordSourceFetchError(source string) {
	globalManager.sourceFetchErrors.WithLabelValues(source).Inc()
}

// Queue Metrics Functions.

// UpdateQueueCapacity sets the maximum queue capacity.
func UpdateQueueCapacity(capacity int) {
	globalManager.queueCapacity.Set(float64(capacity))
}

// UpdateQueueSize sets the current queue size.
func UpdateQueueSize(size int) {
	globalManager.queueSize.Set(float64(size))
}

// UpdateQueueUtilization sets the queue utilization ratio.
func UpdateQueueUtilization(utilization float64) {
	globalManager.queueUtilization.Set(utilization)
}

// RecordQueueEnqueue increments the enqueue counter.
func RecordQueueEnqueue() {
	globalManager.queueEnqueueRate.Inc()
}

// RecordQueueDequeue increments the dequeue counter.
func RecordQueueDequeue() {
	globalManager.queueDequeueRate.Inc()
}

// RecordQueueEnqueueError increments the enqueue error counter.
func RecordQueueEnqueueError() {
	globalManager.queueEnqueueErrors.Inc()
}

// RecordQueueProcessingLatency records queue processing latency.
func RecordQueueProcessingLatency(latencyMs float64) {
	globalManager.queueProcessingLatency.Observe(latencyMs)
}

// HTTP Metrics Functions.

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// Error Metrics Functions.

// RecordErrorByComponent records an error with component and type labels.
func RecordErrorByComponent(component, errorType string) {
	globalManager.errorRateByComponent.WithLabelValues(component, errorType).Inc()
}

// System Performance Metrics Functions.

// UpdateSystemMemoryUsage sets the system memory usage in bytes.
func UpdateSystemMemoryUsage(bytes uint64) {
	globalManager.systemMemoryUsage.Set(float64(bytes))
}

// UpdateSystemGoroutineCount sets the number of goroutines.
func UpdateSystemGoroutineCount(count int) {
	globalManager.systemGoroutineCount.Set(float64(count))
}

// RecordSystemGCPauseTime records GC pause time in milliseconds.
func RecordSystemGCPauseTime(pauseMs float64) {
	globalManager.systemGCPauseTime.Observe(pauseMs)
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
