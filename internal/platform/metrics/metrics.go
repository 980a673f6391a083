// Package metrics exposes Prometheus instrumentation for the task pipeline
// and the engine boundary.
package metrics

import "github.com/prometheus/client_golang/prometheus"

// Metric label values for engine call outcomes.
const (
	OutcomeSuccess     = "success"
	OutcomeUnavailable = "unavailable"
	OutcomeRejected    = "rejected"
	OutcomeFault       = "fault"
)

var (
	tasksTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "maf_tasks_total",
			Help: "Total number of task status transitions, by resulting status.",
		},
		[]string{"status"},
	)

	engineRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "maf_engine_requests_total",
			Help: "Total number of generation requests sent to the content engine.",
		},
		[]string{"outcome"},
	)

	engineRequestDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "maf_engine_request_seconds",
			Help:    "Duration of content engine generation calls, in seconds.",
			Buckets: prometheus.DefBuckets,
		},
	)

	queueDepth = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "maf_generation_queue_depth",
			Help: "Number of generation jobs waiting in the background queue.",
		},
	)
)

func init() {
	prometheus.MustRegister(tasksTotal)
	prometheus.MustRegister(engineRequestsTotal)
	prometheus.MustRegister(engineRequestDuration)
	prometheus.MustRegister(queueDepth)

	// Pre-initialize label combinations so they report 0 from startup.
	for _, outcome := range []string{OutcomeSuccess, OutcomeUnavailable, OutcomeRejected, OutcomeFault} {
		engineRequestsTotal.WithLabelValues(outcome)
	}
}

// TaskTransition records a task reaching the given status.
func TaskTransition(status string) {
	tasksTotal.WithLabelValues(status).Inc()
}

// EngineRequest records one engine call with its outcome and duration.
func EngineRequest(outcome string, seconds float64) {
	engineRequestsTotal.WithLabelValues(outcome).Inc()
	engineRequestDuration.Observe(seconds)
}

// SetQueueDepth reports the current background queue length.
func SetQueueDepth(n int) {
	queueDepth.Set(float64(n))
}
