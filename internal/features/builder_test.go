package features

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/prop-analyzer/internal/models"
	"github.com/yourusername/prop-analyzer/internal/stats"
)

func series(points []float64, minutes []string) *stats.PlayerStatSeries {
	recs := make([]models.GameStatRecord, len(points))
	for i := range points {
		recs[i] = models.GameStatRecord{
			PlayerID:  7,
			FirstName: "Test",
			LastName:  "Player",
			GameID:    i + 1,
			Minutes:   models.ParseMinutes(minutes[i]),
			Points:    points[i],
		}
	}
	return stats.NewSeries("Test Player", recs)
}

func uniformMinutes(n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = "30:00"
	}
	return out
}

func TestBuildFirstGameDefaultsToZero(t *testing.T) {
	set := Build(series([]float64{10, 20, 30}, uniformMinutes(3)), models.StatPoints, 10)

	require.Len(t, set.Rows, 3)
	assert.Equal(t, Vector{}, set.Rows[0].Features)
	assert.Equal(t, 10.0, set.Rows[1].Features.HistoricalAvgStat)
	assert.Equal(t, 15.0, set.Rows[2].Features.HistoricalAvgStat)
	assert.Equal(t, 30.0, set.Rows[2].Features.HistoricalAvgMinutes)
	assert.Equal(t, 30.0, set.Rows[2].Target)
	assert.Equal(t, 20.0, set.Next.HistoricalAvgStat)
}

func TestBuildMovingWindow(t *testing.T) {
	set := Build(series([]float64{2, 4, 6, 8, 10}, uniformMinutes(5)), models.StatPoints, 2)

	assert.Equal(t, 2.0, set.Rows[1].Features.MovingAvgStat)
	assert.Equal(t, 3.0, set.Rows[2].Features.MovingAvgStat)
	assert.Equal(t, 5.0, set.Rows[3].Features.MovingAvgStat)
	assert.Equal(t, 4.0, set.Rows[3].Features.HistoricalAvgStat)
	assert.Equal(t, 9.0, set.Next.MovingAvgStat)
}

func TestBuildFiltersUnplayedGames(t *testing.T) {
	set := Build(series([]float64{10, 0, 20, 0}, []string{"30:00", "--", "20:00", "0:00"}), models.StatPoints, 10)

	require.Len(t, set.Rows, 2)
	assert.Equal(t, 3, set.Rows[1].GameID)
	assert.Equal(t, 10.0, set.Rows[1].Features.HistoricalAvgStat)
	assert.Equal(t, 25.0, set.Next.HistoricalAvgMinutes)
}

// Mutating game i must leave the features of every game up to and including i unchanged.
func TestBuildNoLookAhead(t *testing.T) {
	points := []float64{5, 6, 4, 7, 8, 5, 6, 9, 10, 4, 5, 6, 7, 8, 9}
	base := Build(series(points, uniformMinutes(len(points))), models.StatPoints, DefaultMovingWindow)

	for i := range points {
		mutated := make([]float64, len(points))
		copy(mutated, points)
		mutated[i] += 100

		got := Build(series(mutated, uniformMinutes(len(points))), models.StatPoints, DefaultMovingWindow)
		for j := 0; j <= i; j++ {
			assert.Equal(t, base.Rows[j].Features, got.Rows[j].Features, "game %d after mutating %d", j, i)
		}
		if i+1 < len(points) {
			assert.NotEqual(t, base.Rows[i+1].Features, got.Rows[i+1].Features)
		}
	}
}

func TestDataset(t *testing.T) {
	var recs []models.GameStatRecord
	for i := 1; i <= 3; i++ {
		recs = append(recs,
			models.GameStatRecord{PlayerID: 1, FirstName: "A", LastName: "One", GameID: i, Minutes: models.MinutesOf(30), Points: float64(i)},
			models.GameStatRecord{PlayerID: 2, FirstName: "B", LastName: "Two", GameID: i, Minutes: models.MinutesOf(20), Points: float64(10 * i)},
		)
	}
	rows := Dataset(stats.NewStore(recs, nil), models.StatPoints, 10)

	require.Len(t, rows, 6)
	assert.Equal(t, "A One", rows[0].Player)
	assert.Equal(t, "B Two", rows[3].Player)
	assert.Equal(t, 15.0, rows[5].Features.HistoricalAvgStat)
}

func TestVectorSliceOrder(t *testing.T) {
	v := Vector{HistoricalAvgMinutes: 1, MovingAvgMinutes: 2, HistoricalAvgStat: 3, MovingAvgStat: 4}
	assert.Equal(t, []float64{1, 2, 3, 4}, v.Slice())
	assert.Len(t, Names, 4)
}
