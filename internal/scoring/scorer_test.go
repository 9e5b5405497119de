package scoring

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/prop-analyzer/internal/models"
	"github.com/yourusername/prop-analyzer/internal/stats"
)

func buildSeries(points []float64, minutes []string) *stats.PlayerStatSeries {
	recs := make([]models.GameStatRecord, len(points))
	for i := range points {
		recs[i] = models.GameStatRecord{
			PlayerID: 1, FirstName: "Test", LastName: "Player", GameID: i + 1,
			Minutes: models.ParseMinutes(minutes[i]), Points: points[i],
		}
	}
	return stats.NewSeries("Test Player", recs)
}

func TestAnalyze(t *testing.T) {
	ps := buildSeries(
		[]float64{10, 20, 0, 30, 15},
		[]string{"30:00", "32:00", "--", "34:00", "28:00"},
	)

	s, err := Analyze(ps, models.StatPoints, 14.5)
	require.NoError(t, err)

	assert.Equal(t, 4, s.GamesPlayed)
	assert.Equal(t, 3, s.TimesAboveLine)
	assert.InDelta(t, 0.75, s.HitRate, 1e-12)
	assert.InDeltaSlice(t, []float64{5.5, 15.5, 0.5}, s.Overages, 1e-12)
	assert.InDelta(t, 18.75, s.AvgValue, 1e-12)
	assert.InDelta(t, 31.0, s.AvgMinutes, 1e-12)
	assert.InDelta(t, 2.581988897, s.StdDevMinutes, 1e-9)
	assert.InDelta(t, 7.166666667, s.AvgOverage, 1e-9)
	assert.Equal(t, []float64{10, 20, 30, 15}, s.RecentValues)
	assert.Equal(t, 4, s.RecentGameCount)
	assert.InDelta(t, 0.75, s.RecentHitRate, 1e-12)
}

func TestAnalyzeRecentWindow(t *testing.T) {
	points := make([]float64, 15)
	minutes := make([]string, 15)
	for i := range points {
		points[i] = float64(i)
		minutes[i] = "30:00"
	}

	s, err := Analyze(buildSeries(points, minutes), models.StatPoints, 9.5)
	require.NoError(t, err)

	assert.Equal(t, 10, s.RecentGameCount)
	assert.Equal(t, 5.0, s.RecentValues[0])
	assert.InDelta(t, 9.5, s.RecentAvg, 1e-12)
	assert.InDelta(t, 0.5, s.RecentHitRate, 1e-12)
	assert.InDelta(t, 5.0/15.0, s.HitRate, 1e-12)
	assert.Zero(t, s.StdDevMinutes)
}

func TestAnalyzeNoOverages(t *testing.T) {
	s, err := Analyze(buildSeries([]float64{1, 2}, []string{"20:00", "20:00"}), models.StatPoints, 10)
	require.NoError(t, err)
	assert.Zero(t, s.AvgOverage)
	assert.Empty(t, s.Overages)
	assert.Zero(t, s.HitRate)
}

func TestAnalyzeEmptySeries(t *testing.T) {
	_, err := Analyze(buildSeries([]float64{5}, []string{"-"}), models.StatPoints, 1)
	assert.True(t, errors.Is(err, models.ErrInsufficientData))
}

func TestScore(t *testing.T) {
	s := models.AnalysisSummary{
		GamesPlayed:   10,
		HitRate:       0.5,
		AvgOverage:    4,
		StdDevMinutes: 1,
	}
	// 0.4*0.5 + 0.3*0.4 + 0.2*0.5 + 0.1*0.5
	assert.InDelta(t, 0.47, Score(s), 1e-12)

	s.GamesPlayed = 40
	assert.InDelta(t, 0.52, Score(s), 1e-12)
}
