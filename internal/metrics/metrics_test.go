package metrics

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetricsRegistry(t *testing.T) {
	InitRegistry()
	registry := GetRegistry()

	assert.NotNil(t, registry)
	assert.IsType(t, &prometheus.Registry{}, registry)
}

func TestRecordPropAnalyzed(t *testing.T) {
	InitRegistry()
	before := testutil.ToFloat64(PropsAnalyzedTotal)

	RecordPropAnalyzed()

	assert.Equal(t, before+1, testutil.ToFloat64(PropsAnalyzedTotal))
}

func TestRecordPropSkipped(t *testing.T) {
	InitRegistry()

	tests := []struct {
		name   string
		reason string
	}{
		{name: "unresolved player", reason: "unresolved_player"},
		{name: "unknown stat", reason: "unknown_stat_type"},
		{name: "insufficient data", reason: "insufficient_data"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := testutil.ToFloat64(PropsSkippedTotal.WithLabelValues(tt.reason))
			RecordPropSkipped(tt.reason)
			assert.Equal(t, before+1, testutil.ToFloat64(PropsSkippedTotal.WithLabelValues(tt.reason)))
		})
	}
}

func TestRecordModelFit(t *testing.T) {
	InitRegistry()

	assert.NotPanics(t, func() {
		RecordModelFit("kde", 0.002)
		RecordModelCacheHit()
	})
	assert.GreaterOrEqual(t, testutil.ToFloat64(ModelFitsTotal.WithLabelValues("kde")), 1.0)
}

func TestRecordPipelineRun(t *testing.T) {
	InitRegistry()

	RecordPipelineRun(1.5, 12, 1700000000)

	assert.Equal(t, 12.0, testutil.ToFloat64(LastRunProps))
	assert.Equal(t, 1700000000.0, testutil.ToFloat64(LastRunTimestamp))
}

func TestFetchMetrics(t *testing.T) {
	InitRegistry()

	assert.NotPanics(t, func() {
		RecordFetchRequest("nba_api", "success", 0.2)
		RecordFetchRequest("nba_api", "cached", 0)
		RecordFetchedRecords("prize_picks", "props", 250)
	})
	assert.GreaterOrEqual(t, testutil.ToFloat64(FetchRecordsTotal.WithLabelValues("prize_picks", "props")), 250.0)
}

func TestRecordJobRun(t *testing.T) {
	InitRegistry()

	before := testutil.ToFloat64(JobRunsTotal.WithLabelValues("props_refresh", "failure"))
	RecordJobRun("props_refresh", "failure", 0.4)
	assert.Equal(t, before+1, testutil.ToFloat64(JobRunsTotal.WithLabelValues("props_refresh", "failure")))
}

func TestMetricsHandler(t *testing.T) {
	InitRegistry()
	RecordPropAnalyzed()

	handler := Handler()
	assert.Implements(t, (*http.Handler)(nil), handler)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "prop_analyzer_props_analyzed_total")
}

func TestWriteTextfile(t *testing.T) {
	InitRegistry()
	RecordPropAnalyzed()

	path := filepath.Join(t.TempDir(), "prop_analyzer.prom")
	require.NoError(t, WriteTextfile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "prop_analyzer_props_analyzed_total")
}

func BenchmarkRecordPropAnalyzed(b *testing.B) {
	InitRegistry()

	for i := 0; i < b.N; i++ {
		RecordPropAnalyzed()
	}
}
