package metrics

import (
	"context"
	"runtime"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	defaultRefreshInterval = 10 * time.Second
)

// Manager owns every Prometheus collector the dashboard exports.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	enabled          bool
	refreshInterval  time.Duration
	customLabels     map[string]string
	metricPrefix     string
	registry         prometheus.Registerer

	// Dataset
	datasetLoads   *prometheus.CounterVec
	datasetRows    *prometheus.GaugeVec
	datasetReloads *prometheus.CounterVec
	joinDropped    prometheus.Counter

	// Layout engine
	layoutDuration   *prometheus.HistogramVec
	layoutEmpty      *prometheus.CounterVec
	lanesUsed        *prometheus.GaugeVec
	placerIterations prometheus.Histogram
	labelsUnresolved prometheus.Counter

	// Interaction
	uiEvents        *prometheus.CounterVec
	resizeCoalesced prometheus.Counter
	sessionsActive  prometheus.Gauge

	// Queue
	queueSize              prometheus.Gauge
	queueCapacity          prometheus.Gauge
	queueUtilization       prometheus.Gauge
	queueEnqueueRate       prometheus.Counter
	queueDequeueRate       prometheus.Counter
	queueEnqueueErrors     prometheus.Counter
	queueProcessingLatency prometheus.Histogram

	// Worker
	workerCount             prometheus.Gauge
	workerProcessingLatency prometheus.Histogram
	workerErrorRate         prometheus.Counter

	// HTTP
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// Errors
	errorRateByComponent *prometheus.CounterVec

	// System
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
	systemGCPauseTime    prometheus.Histogram

	collectorMu      sync.Mutex
	collectorRunning bool
}

var globalManager *Manager //nolint:gochecknoglobals // singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // metrics registry

func init() { //nolint:gochecknoinits // global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a metrics manager. Without WithPrometheusRegistry the
// collectors land on the default registerer.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "marquee",
		subsystem:        "dashboard",
		histogramBuckets: prometheus.DefBuckets,
		enabled:          true,
		refreshInterval:  defaultRefreshInterval,
		customLabels:     make(map[string]string),
		registry:         prometheus.DefaultRegisterer,
	}

	for _, opt := range opts {
		opt(m)
	}
	if !m.enabled {
		m.registry = prometheus.NewRegistry()
	}

	m.initializeMetrics()
	return m
}

func (m *Manager) name(n string) string {
	if m.metricPrefix == "" {
		return n
	}
	return m.metricPrefix + "_" + n
}

func (m *Manager) counterOpts(name, help string) prometheus.CounterOpts {
	return prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: m.name(name), Help: help, ConstLabels: m.customLabels,
	}
}

func (m *Manager) gaugeOpts(name, help string) prometheus.GaugeOpts {
	return prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: m.name(name), Help: help, ConstLabels: m.customLabels,
	}
}

func (m *Manager) histogramOpts(name, help string, buckets []float64) prometheus.HistogramOpts {
	return prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: m.name(name), Help: help, ConstLabels: m.customLabels,
		Buckets: buckets,
	}
}

func (m *Manager) initializeMetrics() { //nolint:funlen // one place for every collector
	auto := promauto.With(m.registry)

	m.datasetLoads = auto.NewCounterVec(
		m.counterOpts("dataset_load_total", "Dataset file loads by file and status"),
		[]string{"file", "status"},
	)
	m.datasetRows = auto.NewGaugeVec(
		m.gaugeOpts("dataset_rows", "Rows held for each dataset file in the current snapshot"),
		[]string{"file"},
	)
	m.datasetReloads = auto.NewCounterVec(
		m.counterOpts("dataset_reload_total", "Reload attempts by outcome"),
		[]string{"result"},
	)
	m.joinDropped = auto.NewCounter(
		m.counterOpts("relationship_dropped_total", "Relationship tuples dropped because a title was missing"),
	)

	m.layoutDuration = auto.NewHistogramVec(
		m.histogramOpts("layout_duration_milliseconds", "Layout pass duration by chart", m.histogramBuckets),
		[]string{"chart"},
	)
	m.layoutEmpty = auto.NewCounterVec(
		m.counterOpts("layout_nothing_to_render_total", "Layout passes that produced no geometry"),
		[]string{"chart"},
	)
	m.lanesUsed = auto.NewGaugeVec(
		m.gaugeOpts("lanes_used", "Lanes used by the last layout pass by chart and side"),
		[]string{"chart", "side"},
	)
	m.placerIterations = auto.NewHistogram(
		m.histogramOpts("label_placer_iterations", "Retries spent by the label placer per pass",
			[]float64{0, 1, 2, 5, 10, 20, 50, 100, 250, 500}),
	)
	m.labelsUnresolved = auto.NewCounter(
		m.counterOpts("labels_unresolved_total", "Labels left overlapping after the retry cap"),
	)

	m.uiEvents = auto.NewCounterVec(
		m.counterOpts("ui_events_total", "UI events applied by kind"),
		[]string{"kind"},
	)
	m.resizeCoalesced = auto.NewCounter(
		m.counterOpts("resize_coalesced_total", "Resize events superseded inside a debounce window"),
	)
	m.sessionsActive = auto.NewGauge(
		m.gaugeOpts("sessions_active", "Dashboard sessions currently open"),
	)

	m.queueSize = auto.NewGauge(m.gaugeOpts("queue_size", "Current size of the UI event queue"))
	m.queueCapacity = auto.NewGauge(m.gaugeOpts("queue_capacity", "Maximum queue capacity"))
	m.queueUtilization = auto.NewGauge(m.gaugeOpts("queue_utilization_ratio", "Queue size over capacity"))
	m.queueEnqueueRate = auto.NewCounter(m.counterOpts("queue_enqueue_total", "Total number of events enqueued"))
	m.queueDequeueRate = auto.NewCounter(m.counterOpts("queue_dequeue_total", "Total number of events dequeued"))
	m.queueEnqueueErrors = auto.NewCounter(m.counterOpts("queue_enqueue_errors_total", "Total number of enqueue errors"))
	m.queueProcessingLatency = auto.NewHistogram(
		m.histogramOpts("queue_processing_latency_milliseconds", "Time an event waited in the queue", m.histogramBuckets),
	)

	m.workerCount = auto.NewGauge(m.gaugeOpts("worker_count", "Running event workers"))
	m.workerProcessingLatency = auto.NewHistogram(
		m.histogramOpts("worker_processing_latency_milliseconds", "Time spent applying one event", m.histogramBuckets),
	)
	m.workerErrorRate = auto.NewCounter(m.counterOpts("worker_errors_total", "Events the worker failed to apply"))

	m.httpRequests = auto.NewCounterVec(
		m.counterOpts("http_requests_total", "HTTP requests by endpoint, method and status"),
		[]string{"endpoint", "method", "status_code"},
	)
	m.httpRequestDuration = auto.NewHistogramVec(
		m.histogramOpts("http_request_duration_milliseconds", "HTTP request duration in milliseconds", m.histogramBuckets),
		[]string{"endpoint", "method", "status_code"},
	)

	m.errorRateByComponent = auto.NewCounterVec(
		m.counterOpts("errors_by_component_total", "Errors by component and type"),
		[]string{"component", "error_type"},
	)

	m.systemMemoryUsage = auto.NewGauge(m.gaugeOpts("system_memory_usage_bytes", "Heap in use in bytes"))
	m.systemGoroutineCount = auto.NewGauge(m.gaugeOpts("system_goroutine_count", "Number of goroutines"))
	m.systemGCPauseTime = auto.NewHistogram(
		m.histogramOpts("system_gc_pause_time_milliseconds", "GC pause time in milliseconds",
			[]float64{0.1, 0.5, 1, 2, 5, 10, 25, 50, 100, 250, 500, 1000}),
	)
}

// Dataset metrics.

// RecordDatasetLoad counts one file load; status is "ok" or "error".
func RecordDatasetLoad(file, status string) {
	globalManager.datasetLoads.WithLabelValues(file, status).Inc()
}

// UpdateDatasetRows sets the row count held for file.
func UpdateDatasetRows(file string, rows int) {
	globalManager.datasetRows.WithLabelValues(file).Set(float64(rows))
}

// RecordDatasetReload counts a reload outcome: committed, superseded,
// cancelled or failed.
func RecordDatasetReload(result string) {
	globalManager.datasetReloads.WithLabelValues(result).Inc()
}

// RecordRelationshipDropped counts tuples dropped by the title join.
func RecordRelationshipDropped(n int) {
	globalManager.joinDropped.Add(float64(n))
}

// Layout metrics.

// RecordLayoutDuration records one layout pass for chart.
func RecordLayoutDuration(chart string, latencyMs float64) {
	globalManager.layoutDuration.WithLabelValues(chart).Observe(latencyMs)
}

// RecordNothingToRender counts a pass with degenerate geometry.
func RecordNothingToRender(chart string) {
	globalManager.layoutEmpty.WithLabelValues(chart).Inc()
}

// UpdateLanesUsed sets the lane count of the last pass.
func UpdateLanesUsed(chart, side string, lanes int) {
	globalManager.lanesUsed.WithLabelValues(chart, side).Set(float64(lanes))
}

// RecordPlacerIterations records the retries of one placer pass.
func RecordPlacerIterations(n int) {
	globalManager.placerIterations.Observe(float64(n))
}

// RecordLabelsUnresolved counts labels still overlapping after the cap.
func RecordLabelsUnresolved(n int) {
	if n > 0 {
		globalManager.labelsUnresolved.Add(float64(n))
	}
}

// Interaction metrics.

// RecordUIEvent counts an applied UI event.
func RecordUIEvent(kind string) {
	globalManager.uiEvents.WithLabelValues(kind).Inc()
}

// RecordResizeCoalesced counts a resize dropped in favour of a later one.
func RecordResizeCoalesced() {
	globalManager.resizeCoalesced.Inc()
}

// UpdateSessionsActive sets the open session count.
func UpdateSessionsActive(count int) {
	globalManager.sessionsActive.Set(float64(count))
}

// Queue metrics.

// UpdateQueueSize sets the current queue size.
func UpdateQueueSize(size int) {
	globalManager.queueSize.Set(float64(size))
}

// UpdateQueueCapacity sets the maximum queue capacity.
func UpdateQueueCapacity(capacity int) {
	globalManager.queueCapacity.Set(float64(capacity))
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

// RecordQueueProcessingLatency records how long an event waited.
func RecordQueueProcessingLatency(latencyMs float64) {
	globalManager.queueProcessingLatency.Observe(latencyMs)
}

// Worker metrics.

// UpdateWorkerCount sets the running worker count.
func UpdateWorkerCount(count int) {
	globalManager.workerCount.Set(float64(count))
}

// RecordWorkerProcessingLatency records worker processing latency.
func RecordWorkerProcessingLatency(latencyMs float64) {
	globalManager.workerProcessingLatency.Observe(latencyMs)
}

// RecordWorkerError increments the worker error counter.
func RecordWorkerError() {
	globalManager.workerErrorRate.Inc()
}

// HTTP metrics.

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// RecordErrorByComponent records an error with component and type labels.
func RecordErrorByComponent(component, errorType string) {
	globalManager.errorRateByComponent.WithLabelValues(component, errorType).Inc()
}

// System metrics.

// UpdateSystemMemoryUsage sets the heap usage in bytes.
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

// StartSystemCollector samples runtime stats every refresh interval until
// ctx is done. Only one collector runs per process.
func StartSystemCollector(ctx context.Context) error {
	return globalManager.startSystemCollector(ctx)
}

func (m *Manager) startSystemCollector(ctx context.Context) error {
	m.collectorMu.Lock()
	if m.collectorRunning {
		m.collectorMu.Unlock()
		return ErrCollectorRunning
	}
	m.collectorRunning = true
	m.collectorMu.Unlock()

	go func() {
		defer func() {
			m.collectorMu.Lock()
			m.collectorRunning = false
			m.collectorMu.Unlock()
		}()

		ticker := time.NewTicker(m.refreshInterval)
		defer ticker.Stop()

		var lastNumGC uint32
		for {
			lastNumGC = m.sampleRuntime(lastNumGC)
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
			}
		}
	}()
	return nil
}

// sampleRuntime publishes memory and goroutine gauges and the GC pauses
// recorded since lastNumGC.
func (m *Manager) sampleRuntime(lastNumGC uint32) uint32 {
	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)

	m.systemMemoryUsage.Set(float64(ms.HeapInuse))
	m.systemGoroutineCount.Set(float64(runtime.NumGoroutine()))

	newGCs := ms.NumGC - lastNumGC
	if newGCs > uint32(len(ms.PauseNs)) {
		newGCs = uint32(len(ms.PauseNs))
	}
	for i := uint32(0); i < newGCs; i++ {
		idx := (ms.NumGC - i + uint32(len(ms.PauseNs)) - 1) % uint32(len(ms.PauseNs))
		m.systemGCPauseTime.Observe(float64(ms.PauseNs[idx]) / float64(time.Millisecond))
	}
	return ms.NumGC
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
