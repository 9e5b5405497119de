package metrics

import "github.com/prometheus/client_golang/prometheus"

// Fetch counter vectors
var (
	FetchRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "fetch_requests_total",
		Help:      "Total number of upstream data requests by source and status",
	}, []string{"source", "status"})
	FetchRecordsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "fetch_records_total",
		Help:      "Total number of records obtained from upstream sources",
	}, []string{"source", "kind"})
)

// Fetch histogram vectors
var (
	FetchDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "fetch_duration_seconds",
		Help:      "Latency of upstream data requests in seconds",
		Buckets:   prometheus.DefBuckets,
	}, []string{"source"})
)

// RecordFetchRequest records an upstream request.
// status should be one of: "success", "failure", "cached"
func RecordFetchRequest(source, status string, durationSeconds float64) {
	FetchRequestsTotal.WithLabelValues(source, status).Inc()
	if status != "cached" {
		FetchDuration.WithLabelValues(source).Observe(durationSeconds)
	}
}

// RecordFetchedRecords records the number of records a fetch produced.
func RecordFetchedRecords(source, kind string, count int) {
	FetchRecordsTotal.WithLabelValues(source, kind).Add(float64(count))
}
