// Package metrics provides Prometheus metrics for the match-and-notify
// service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Manager owns all Prometheus collectors for the service.
type Manager struct {
	namespace string
	subsystem string
	buckets   []float64
	enabled   bool
	registry  prometheus.Registerer

	// Pipeline metrics
	pipelineRuns      prometheus.Counter
	pipelineFailures  prometheus.Counter
	pipelineDuration  prometheus.Histogram
	candidatesScored  prometheus.Counter
	candidatesSkipped prometheus.Counter
	matchesFound      prometheus.Counter
	matchScore        prometheus.Histogram

	// Notification metrics
	notificationsSubmitted prometheus.Counter
	notificationsDuplicate prometheus.Counter
	notificationsSent      prometheus.Counter
	notificationsFailed    prometheus.Counter
	deliveryAttempts       prometheus.Counter
	deliveryFailures       prometheus.Counter
	deliveryLatency        prometheus.Histogram

	// Session metrics
	activeSessions   prometheus.Gauge
	sessionsAdmitted prometheus.Counter
	sessionsEvicted  prometheus.Counter
	heartbeats       prometheus.Counter

	// Job queue / worker metrics
	queueSize     prometheus.Gauge
	queueCapacity prometheus.Gauge
	queueFull     prometheus.Counter
	jobsEnqueued  prometheus.Counter
	jobsProcessed prometheus.Counter
	jobErrors     prometheus.Counter
	jobLatency    prometheus.Histogram
	workerCount   prometheus.Gauge

	// HTTP metrics
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
}

// Global manager, registered on a custom registry so default Go collectors
// stay out of the scrape.
var (
	globalManager  *Manager                   //nolint:gochecknoglobals // singleton metrics manager
	customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // singleton registry
)

func init() { //nolint:gochecknoinits // global metrics setup
	globalManager = NewManager(WithRegistry(customRegistry))
}

// Registry exposes the registry for the /metrics handler.
func Registry() *prometheus.Registry {
	return customRegistry
}

// NewManager creates a manager and registers all collectors.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace: "matchd",
		buckets:   []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000, 2500},
		enabled:   true,
		registry:  prometheus.DefaultRegisterer,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.register()
	return m
}

func (m *Manager) register() {
	factory := func(name, help string) prometheus.Counter {
		c := prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help,
		})
		m.registry.MustRegister(c)
		return c
	}
	gauge := func(name, help string) prometheus.Gauge {
		g := prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help,
		})
		m.registry.MustRegister(g)
		return g
	}
	histogram := func(name, help string, buckets []float64) prometheus.Histogram {
		h := prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, Buckets: buckets,
		})
		m.registry.MustRegister(h)
		return h
	}

	m.pipelineRuns = factory("pipeline_runs_total", "Completed match pipeline runs.")
	m.pipelineFailures = factory("pipeline_failures_total", "Match pipeline runs that failed.")
	m.pipelineDuration = histogram("pipeline_duration_ms", "Pipeline run duration in milliseconds.", m.buckets)
	m.candidatesScored = factory("candidates_scored_total", "Candidates scored across all runs.")
	m.candidatesSkipped = factory("candidates_skipped_total", "Malformed candidates skipped during scoring.")
	m.matchesFound = factory("matches_found_total", "Match results above the qualifying threshold.")
	m.matchScore = histogram("match_score", "Distribution of qualifying overall scores.",
		[]float64{0.3, 0.4, 0.5, 0.6, 0.7, 0.8, 0.9, 1.0})

	m.notificationsSubmitted = factory("notifications_submitted_total", "Notifications accepted for fanout.")
	m.notificationsDuplicate = factory("notifications_duplicate_total", "Duplicate notification submissions.")
	m.notificationsSent = factory("notifications_sent_total", "Notifications with at least one successful delivery.")
	m.notificationsFailed = factory("notifications_failed_total", "Notifications with no successful delivery.")
	m.deliveryAttempts = factory("delivery_attempts_total", "Per-channel delivery attempts.")
	m.deliveryFailures = factory("delivery_failures_total", "Per-channel delivery failures.")
	m.deliveryLatency = histogram("delivery_latency_ms", "Per-channel delivery latency in milliseconds.", m.buckets)

	m.activeSessions = gauge("active_sessions", "Currently registered live sessions.")
	m.sessionsAdmitted = factory("sessions_admitted_total", "Sessions admitted after handshake.")
	m.sessionsEvicted = factory("sessions_evicted_total", "Sessions evicted by the liveness sweeper.")
	m.heartbeats = factory("heartbeats_total", "Heartbeat refreshes received.")

	m.queueSize = gauge("job_queue_size", "Match jobs currently queued.")
	m.queueCapacity = gauge("job_queue_capacity", "Match job queue capacity.")
	m.queueFull = factory("job_queue_full_total", "Enqueue attempts rejected by a full queue.")
	m.jobsEnqueued = factory("jobs_enqueued_total", "Match jobs enqueued.")
	m.jobsProcessed = factory("jobs_processed_total", "Match jobs processed successfully.")
	m.jobErrors = factory("job_errors_total", "Match jobs that failed.")
	m.jobLatency = histogram("job_latency_ms", "Match job processing latency in milliseconds.", m.buckets)
	m.workerCount = gauge("worker_count", "Workers in the match job pool.")

	m.httpRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "http_requests_total", Help: "HTTP requests by endpoint and status.",
	}, []string{"endpoint", "status"})
	m.httpRequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "http_request_duration_ms", Help: "HTTP request duration in milliseconds.", Buckets: m.buckets,
	}, []string{"endpoint"})
	m.registry.MustRegister(m.httpRequests, m.httpRequestDuration)
}

// Package-level recorders over the global manager.

func RecordPipelineRun()                 { globalManager.pipelineRuns.Inc() }
func RecordPipelineFailure()             { globalManager.pipelineFailures.Inc() }
func RecordPipelineDuration(ms float64)  { globalManager.pipelineDuration.Observe(ms) }
func RecordCandidateScored()             { globalManager.candidatesScored.Inc() }
func RecordCandidateSkipped()            { globalManager.candidatesSkipped.Inc() }
func RecordMatchFound(score float64)     { globalManager.matchesFound.Inc(); globalManager.matchScore.Observe(score) }

func RecordNotificationSubmitted()       { globalManager.notificationsSubmitted.Inc() }
func RecordNotificationDuplicate()       { globalManager.notificationsDuplicate.Inc() }
func RecordNotificationSent()            { globalManager.notificationsSent.Inc() }
func RecordNotificationFailed()          { globalManager.notificationsFailed.Inc() }
func RecordDeliveryAttempt()             { globalManager.deliveryAttempts.Inc() }
func RecordDeliveryFailure()             { globalManager.deliveryFailures.Inc() }
func RecordDeliveryLatency(ms float64)   { globalManager.deliveryLatency.Observe(ms) }

func RecordSessionAdmitted()             { globalManager.sessionsAdmitted.Inc() }
func RecordSessionEvicted()              { globalManager.sessionsEvicted.Inc() }
func RecordHeartbeat()                   { globalManager.heartbeats.Inc() }
func UpdateActiveSessions(n int)         { globalManager.activeSessions.Set(float64(n)) }

func UpdateQueueSize(n int)              { globalManager.queueSize.Set(float64(n)) }
func UpdateQueueCapacity(n int)          { globalManager.queueCapacity.Set(float64(n)) }
func RecordQueueFull()                   { globalManager.queueFull.Inc() }
func RecordJobEnqueued()                 { globalManager.jobsEnqueued.Inc() }
func RecordJobProcessed()                { globalManager.jobsProcessed.Inc() }
func RecordJobError()                    { globalManager.jobErrors.Inc() }
func RecordJobLatency(ms float64)        { globalManager.jobLatency.Observe(ms) }
func UpdateWorkerCount(n int)            { globalManager.workerCount.Set(float64(n)) }

func RecordHTTPRequest(endpoint, status string) {
	globalManager.httpRequests.WithLabelValues(endpoint, status).Inc()
}

func RecordHTTPDuration(endpoint string, ms float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint).Observe(ms)
}
