// Package metrics provides centralized Prometheus metrics registry for the prop analyzer.
package metrics

import (
	"fmt"
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "prop_analyzer"

// Global registry instance
var (
	registry *prometheus.Registry
	once     sync.Once
)

// Counter metrics
var (
	PropsAnalyzedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "props_analyzed_total",
		Help:      "Total number of props that produced an analysis",
	})
	PropsSkippedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "props_skipped_total",
		Help:      "Total number of props skipped by reason",
	}, []string{"reason"})
	ModelFitsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "model_fits_total",
		Help:      "Total number of distribution model fits by strategy",
	}, []string{"strategy"})
	ModelCacheHitsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "model_cache_hits_total",
		Help:      "Total number of fitted models served from cache",
	})
)

// Gauge metrics
var (
	LastRunProps = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "last_run_props",
		Help:      "Number of ranked props in the most recent run",
	})
	LastRunTimestamp = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "last_run_timestamp_seconds",
		Help:      "Unix time the most recent run finished",
	})
)

// Histogram metrics
var (
	ModelFitDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "model_fit_duration_seconds",
		Help:      "Duration of distribution model fits in seconds",
		Buckets:   []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
	}, []string{"strategy"})
	PipelineDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "pipeline_duration_seconds",
		Help:      "Duration of ranking pipeline runs in seconds",
		Buckets:   []float64{0.1, 0.5, 1, 5, 10, 30, 60, 300},
	})
)

// InitRegistry initializes the global Prometheus registry.
func InitRegistry() *prometheus.Registry {
	once.Do(func() {
		registry = prometheus.NewRegistry()

		registry.MustRegister(PropsAnalyzedTotal)
		registry.MustRegister(PropsSkippedTotal)
		registry.MustRegister(ModelFitsTotal)
		registry.MustRegister(ModelCacheHitsTotal)

		registry.MustRegister(LastRunProps)
		registry.MustRegister(LastRunTimestamp)

		registry.MustRegister(ModelFitDuration)
		registry.MustRegister(PipelineDuration)

		registry.MustRegister(FetchRequestsTotal)
		registry.MustRegister(FetchDuration)
		registry.MustRegister(FetchRecordsTotal)

		registry.MustRegister(JobRunsTotal)
		registry.MustRegister(JobDuration)
	})
	return registry
}

// GetRegistry returns the global Prometheus registry.
func GetRegistry() *prometheus.Registry {
	if registry == nil {
		return InitRegistry()
	}
	return registry
}

// Handler returns the Prometheus HTTP handler.
func Handler() http.Handler {
	return promhttp.HandlerFor(GetRegistry(), promhttp.HandlerOpts{})
}

// WriteTextfile writes the registry in text exposition format for a
// node_exporter textfile collector. Batch runs use it in place of a scrape.
func WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, GetRegistry()); err != nil {
		return fmt.Errorf("failed to write metrics textfile: %w", err)
	}
	return nil
}

// RecordPropAnalyzed records a prop that produced an analysis.
func RecordPropAnalyzed() {
	PropsAnalyzedTotal.Inc()
}

// RecordPropSkipped records a skipped prop.
func RecordPropSkipped(reason string) {
	PropsSkippedTotal.WithLabelValues(reason).Inc()
}

// RecordModelFit records a fresh model fit.
func RecordModelFit(strategy string, durationSeconds float64) {
	ModelFitsTotal.WithLabelValues(strategy).Inc()
	ModelFitDuration.WithLabelValues(strategy).Observe(durationSeconds)
}

// RecordModelCacheHit records a model served from cache.
func RecordModelCacheHit() {
	ModelCacheHitsTotal.Inc()
}

// RecordPipelineRun records a finished pipeline run.
func RecordPipelineRun(durationSeconds float64, ranked int, finishedUnix float64) {
	PipelineDuration.Observe(durationSeconds)
	LastRunProps.Set(float64(ranked))
	LastRunTimestamp.Set(finishedUnix)
}
