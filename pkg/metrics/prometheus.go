// Package metrics provides Prometheus metrics for the card catalog service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager owns every Prometheus collector of the service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	enabled          bool
	constLabels      prometheus.Labels
	registry         prometheus.Registerer

	// HTTP
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// Store round trips
	storeLatency *prometheus.HistogramVec
	storeErrors  *prometheus.CounterVec

	// Catalog behaviour
	pagesServed          *prometheus.CounterVec
	validationFailures   *prometheus.CounterVec
	cursorDecodeFailures prometheus.Counter
	ratingsRecorded      *prometheus.CounterVec
	cardsSubmitted       prometheus.Counter

	// Connection pool
	poolOpen      prometheus.Gauge
	poolInUse     prometheus.Gauge
	poolIdle      prometheus.Gauge
	poolWaitCount prometheus.Gauge

	// Process
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
	systemGCPauseTime    prometheus.Histogram
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // metrics registry

func init() { //nolint:gochecknoinits // global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a metrics manager and registers its collectors.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "cardcatalog",
		subsystem:        "api",
		histogramBuckets: prometheus.DefBuckets,
		enabled:          true,
		constLabels:      prometheus.Labels{},
		registry:         prometheus.DefaultRegisterer,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.initializeMetrics()
	return m
}

func (m *Manager) initializeMetrics() { //nolint:funlen // flat list of collectors
	auto := promauto.With(m.registry)

	m.httpRequests = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "http_requests_total",
		Help:        "HTTP requests by endpoint, method and status code",
		ConstLabels: m.constLabels,
	}, []string{"endpoint", "method", "status_code"})

	m.httpRequestDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "http_request_duration_seconds",
		Help:        "HTTP request latency",
		Buckets:     m.histogramBuckets,
		ConstLabels: m.constLabels,
	}, []string{"endpoint", "method", "status_code"})

	m.storeLatency = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   "store",
		Name:        "call_duration_seconds",
		Help:        "Latency of a single store round trip by operation",
		Buckets:     m.histogramBuckets,
		ConstLabels: m.constLabels,
	}, []string{"op"})

	m.storeErrors = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   "store",
		Name:        "errors_total",
		Help:        "Store calls that failed, by operation",
		ConstLabels: m.constLabels,
	}, []string{"op"})

	m.pagesServed = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "pages_served_total",
		Help:        "Result windows returned, by resource and ordering mode",
		ConstLabels: m.constLabels,
	}, []string{"resource", "mode"})

	m.validationFailures = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "validation_failures_total",
		Help:        "Requests rejected before reaching the store, by error kind",
		ConstLabels: m.constLabels,
	}, []string{"kind"})

	m.cursorDecodeFailures = auto.NewCounter(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "cursor_decode_failures_total",
		Help:        "Cursor or seed tokens that were not valid base64",
		ConstLabels: m.constLabels,
	})

	m.ratingsRecorded = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "ratings_recorded_total",
		Help:        "Ratings upserted, by target (card or combination)",
		ConstLabels: m.constLabels,
	}, []string{"target"})

	m.cardsSubmitted = auto.NewCounter(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "cards_submitted_total",
		Help:        "User-submitted cards accepted by the store",
		ConstLabels: m.constLabels,
	})

	m.poolOpen = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   "pool",
		Name:        "open_connections",
		Help:        "Established store connections, in use and idle",
		ConstLabels: m.constLabels,
	})

	m.poolInUse = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   "pool",
		Name:        "in_use_connections",
		Help:        "Store connections currently held by a request",
		ConstLabels: m.constLabels,
	})

	m.poolIdle = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   "pool",
		Name:        "idle_connections",
		Help:        "Idle store connections",
		ConstLabels: m.constLabels,
	})

	m.poolWaitCount = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   "pool",
		Name:        "wait_count",
		Help:        "Total number of connections waited for",
		ConstLabels: m.constLabels,
	})

	m.systemMemoryUsage = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   "system",
		Name:        "memory_usage_bytes",
		Help:        "Heap bytes allocated",
		ConstLabels: m.constLabels,
	})

	m.systemGoroutineCount = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   "system",
		Name:        "goroutine_count",
		Help:        "Number of goroutines",
		ConstLabels: m.constLabels,
	})

	m.systemGCPauseTime = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   "system",
		Name:        "gc_pause_time_milliseconds",
		Help:        "Average GC pause time in milliseconds",
		Buckets:     []float64{0.1, 0.5, 1, 2, 5, 10, 25, 50, 100, 250, 500, 1000},
		ConstLabels: m.constLabels,
	})
}

// RecordHTTPRequest counts one HTTP request and observes its duration.
func (m *Manager) RecordHTTPRequest(endpoint, method, statusCode string, seconds float64) {
	if !m.enabled {
		return
	}
	m.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
	m.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(seconds)
}

// RecordStoreCall observes a store round trip; failed calls are also counted.
func (m *Manager) RecordStoreCall(op string, seconds float64, failed bool) {
	if !m.enabled {
		return
	}
	m.storeLatency.WithLabelValues(op).Observe(seconds)
	if failed {
		m.storeErrors.WithLabelValues(op).Inc()
	}
}

// RecordPage counts a served result window.
func (m *Manager) RecordPage(resource string, shuffled bool) {
	if !m.enabled {
		return
	}
	mode := "ordered"
	if shuffled {
		mode = "shuffle"
	}
	m.pagesServed.WithLabelValues(resource, mode).Inc()
}

// RecordValidationFailure counts a request rejected with the given kind.
func (m *Manager) RecordValidationFailure(kind string) {
	if !m.enabled {
		return
	}
	m.validationFailures.WithLabelValues(kind).Inc()
}

// RecordCursorDecodeFailure counts an undecodable cursor or seed token.
func (m *Manager) RecordCursorDecodeFailure() {
	if !m.enabled {
		return
	}
	m.cursorDecodeFailures.Inc()
}

// RecordRating counts an upserted rating for target "card" or "combination".
func (m *Manager) RecordRating(target string) {
	if !m.enabled {
		return
	}
	m.ratingsRecorded.WithLabelValues(target).Inc()
}

// RecordCardSubmitted counts an accepted card submission.
func (m *Manager) RecordCardSubmitted() {
	if !m.enabled {
		return
	}
	m.cardsSubmitted.Inc()
}

// UpdatePool publishes connection pool gauges.
func (m *Manager) UpdatePool(open, inUse, idle int, waitCount int64) {
	if !m.enabled {
		return
	}
	m.poolOpen.Set(float64(open))
	m.poolInUse.Set(float64(inUse))
	m.poolIdle.Set(float64(idle))
	m.poolWaitCount.Set(float64(waitCount))
}

// UpdateSystem publishes process gauges and observes the average GC pause.
func (m *Manager) UpdateSystem(heapBytes uint64, goroutines int, avgGCPauseMs float64) {
	if !m.enabled {
		return
	}
	m.systemMemoryUsage.Set(float64(heapBytes))
	m.systemGoroutineCount.Set(float64(goroutines))
	if avgGCPauseMs > 0 {
		m.systemGCPauseTime.Observe(avgGCPauseMs)
	}
}

// Package-level helpers bound to the global manager.

func RecordHTTPRequest(endpoint, method, statusCode string, seconds float64) {
	globalManager.RecordHTTPRequest(endpoint, method, statusCode, seconds)
}

func RecordStoreCall(op string, seconds float64, failed bool) {
	globalManager.RecordStoreCall(op, seconds, failed)
}

func RecordPage(resource string, shuffled bool) { globalManager.RecordPage(resource, shuffled) }

func RecordValidationFailure(kind string) { globalManager.RecordValidationFailure(kind) }

func RecordCursorDecodeFailure() { globalManager.RecordCursorDecodeFailure() }

func RecordRating(target string) { globalManager.RecordRating(target) }

func RecordCardSubmitted() { globalManager.RecordCardSubmitted() }

func UpdatePool(open, inUse, idle int, waitCount int64) {
	globalManager.UpdatePool(open, inUse, idle, waitCount)
}

func UpdateSystem(heapBytes uint64, goroutines int, avgGCPauseMs float64) {
	globalManager.UpdateSystem(heapBytes, goroutines, avgGCPauseMs)
}

// GetRegistry returns the registry backing the global manager.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
