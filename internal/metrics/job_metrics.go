package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	JobRunsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "scheduled_job_runs_total",
		Help:      "Total number of scheduled job executions by job and status",
	}, []string{"job", "status"})
	JobDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "scheduled_job_duration_seconds",
		Help:      "Duration of scheduled job executions in seconds",
		Buckets:   []float64{0.1, 1, 5, 30, 60, 300, 900, 3600},
	}, []string{"job"})
)

// RecordJobRun records a finished scheduled job.
// status should be one of: "success", "failure"
func RecordJobRun(job, status string, durationSeconds float64) {
	JobRunsTotal.WithLabelValues(job, status).Inc()
	JobDuration.WithLabelValues(job).Observe(durationSeconds)
}
