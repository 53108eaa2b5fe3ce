// Package metrics provides Prometheus metrics for the santa run.
//
// A run is a short-lived process, so nothing is scraped; the registry is
// written to a node_exporter textfile at exit when configured.
package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager manages all Prometheus metrics for the santa run.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	attemptBuckets   []float64
	customLabels     map[string]string
	registry         prometheus.Registerer

	// Roster and store
	participantsCollected prometheus.Counter
	storeOperations       *prometheus.CounterVec
	storeLatency          *prometheus.HistogramVec

	// Assignment
	assignmentAttempts prometheus.Histogram
	assignmentErrors   *prometheus.CounterVec

	// Dispatch
	invitations        *prometheus.CounterVec
	invitationLatency  prometheus.Histogram
	queueSize          prometheus.Gauge
	queueCapacity      prometheus.Gauge
	queueEnqueueRate   prometheus.Counter
	queueDequeueRate   prometheus.Counter
	queueEnqueueErrors prometheus.Counter
	workerActiveCount  prometheus.Gauge
	workerErrorRate    prometheus.Counter

	// Sorter
	sorterFiles *prometheus.CounterVec

	errorRateByComponent *prometheus.CounterVec
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // intentional global for metrics registry

func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// latencyBucketsMs spans a local file write up to a slow API call.
var latencyBucketsMs = []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000, 10000, 30000} //nolint:gochecknoglobals // read-only default

// Configure rebuilds the global metrics on a fresh registry with opts. Call it
// once at startup, before anything is recorded.
func Configure(opts ...Option) {
	registry := prometheus.NewRegistry()
	globalManager = NewManager(append(opts, WithPrometheusRegistry(registry))...)
	customRegistry = registry
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "santa",
		subsystem:        "run",
		histogramBuckets: latencyBucketsMs,
		attemptBuckets:   []float64{1, 2, 3, 5, 10, 25, 100, 1000, 10000},
		customLabels:     make(map[string]string),
		registry:         prometheus.DefaultRegisterer,
	}

	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()

	return m
}

func (m *Manager) counterOpts(name, help string) prometheus.CounterOpts {
	return prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		ConstLabels: m.customLabels,
	}
}

func (m *Manager) gaugeOpts(name, help string) prometheus.GaugeOpts {
	return prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		ConstLabels: m.customLabels,
	}
}

func (m *Manager) histogramOpts(name, help string, buckets []float64) prometheus.HistogramOpts {
	return prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		Buckets:     buckets,
		ConstLabels: m.customLabels,
	}
}

// initializeMetrics creates all the Prometheus metrics.
func (m *Manager) initializeMetrics() {
	auto := promauto.With(m.registry)

	m.participantsCollected = auto.NewCounter(m.counterOpts(
		"participants_collected_total", "Participants accepted by the collector"))
	m.storeOperations = auto.NewCounterVec(m.counterOpts(
		"store_operations_total", "Roster artifact operations by op and result"),
		[]string{"op", "result"})
	m.storeLatency = auto.NewHistogramVec(m.histogramOpts(
		"store_latency_milliseconds", "Roster artifact operation latency in milliseconds", m.histogramBuckets),
		[]string{"op"})

	m.assignmentAttempts = auto.NewHistogram(m.histogramOpts(
		"assignment_attempts", "Shuffles needed to find a derangement", m.attemptBuckets))
	m.assignmentErrors = auto.NewCounterVec(m.counterOpts(
		"assignment_errors_total", "Assignment failures by kind"),
		[]string{"kind"})

	m.invitations = auto.NewCounterVec(m.counterOpts(
		"invitations_total", "Invitation outcomes by status"),
		[]string{"status"})
	m.invitationLatency = auto.NewHistogram(m.histogramOpts(
		"invitation_send_latency_milliseconds", "Mail sender latency in milliseconds", m.histogramBuckets))

	m.queueSize = auto.NewGauge(m.gaugeOpts("queue_size", "Deliveries waiting in the dispatch queue"))
	m.queueCapacity = auto.NewGauge(m.gaugeOpts("queue_capacity", "Dispatch queue capacity"))
	m.queueEnqueueRate = auto.NewCounter(m.counterOpts("queue_enqueue_total", "Deliveries enqueued"))
	m.queueDequeueRate = auto.NewCounter(m.counterOpts("queue_dequeue_total", "Deliveries dequeued"))
	m.queueEnqueueErrors = auto.NewCounter(m.counterOpts("queue_enqueue_errors_total", "Rejected enqueues"))
	m.workerActiveCount = auto.NewGauge(m.gaugeOpts("worker_active_count", "Dispatch workers running"))
	m.workerErrorRate = auto.NewCounter(m.counterOpts("worker_errors_total", "Deliveries that failed in a worker"))

	m.sorterFiles = auto.NewCounterVec(m.counterOpts(
		"sorter_files_total", "Files handled by the date sorter by result"),
		[]string{"result"})

	m.errorRateByComponent = auto.NewCounterVec(m.counterOpts(
		"errors_by_component_total", "Errors by component and type"),
		[]string{"component", "error_type"})
}

// RecordParticipantCollected increments the collected participants counter.
func RecordParticipantCollected() {
	globalManager.participantsCollected.Inc()
}

// RecordStoreOperation records a store operation result and its latency.
func RecordStoreOperation(op, result string, latencyMs float64) {
	globalManager.storeOperations.WithLabelValues(op, result).Inc()
	globalManager.storeLatency.WithLabelValues(op).Observe(latencyMs)
}

// RecordAssignmentAttempts records how many shuffles an assignment took.
func RecordAssignmentAttempts(attempts int) {
	globalManager.assignmentAttempts.Observe(float64(attempts))
}

// RecordAssignmentError increments the assignment error counter for kind.
func RecordAssignmentError(kind string) {
	globalManager.assignmentErrors.WithLabelValues(kind).Inc()
}

// RecordInvitation increments the invitation counter for status.
func RecordInvitation(status string) {
	globalManager.invitations.WithLabelValues(status).Inc()
}

// RecordInvitationLatency records mail sender latency.
func RecordInvitationLatency(latencyMs float64) {
	globalManager.invitationLatency.Observe(latencyMs)
}

// UpdateQueueSize sets the current queue size.
func UpdateQueueSize(size int) {
	globalManager.queueSize.Set(float64(size))
}

// UpdateQueueCapacity sets the maximum queue capacity.
func UpdateQueueCapacity(capacity int) {
	globalManager.queueCapacity.Set(float64(capacity))
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

// UpdateWorkerActiveCount sets the number of active workers.
func UpdateWorkerActiveCount(count int) {
	globalManager.workerActiveCount.Set(float64(count))
}

// RecordWorkerError increments the worker error counter.
func RecordWorkerError() {
	globalManager.workerErrorRate.Inc()
}

// RecordSorterFile increments the sorter counter for result.
func RecordSorterFile(result string) {
	globalManager.sorterFiles.WithLabelValues(result).Inc()
}

// RecordErrorByComponent records an error with component and type labels.
func RecordErrorByComponent(component, errorType string) {
	globalManager.errorRateByComponent.WithLabelValues(component, errorType).Inc()
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}

// WriteTextfile writes the registry in text exposition format to path,
// atomically, for the node_exporter textfile collector.
func WriteTextfile(path string) error {
	if path == "" {
		return nil
	}
	if err := prometheus.WriteToTextfile(path, customRegistry); err != nil {
		return fmt.Errorf("%w: %w", ErrWriteTextfile, err)
	}
	return nil
}
