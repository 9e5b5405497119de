package ranking

import (
	"context"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/prop-analyzer/internal/estimator"
	"github.com/yourusername/prop-analyzer/internal/models"
	"github.com/yourusername/prop-analyzer/internal/stats"
)

var scenarioPoints = []float64{5, 6, 4, 7, 8, 5, 6, 9, 10, 4, 5, 6, 7, 8, 9}

func discardEntry() *logrus.Entry {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return logrus.NewEntry(l)
}

func games(playerID int, first, last string, points []float64) []models.GameStatRecord {
	recs := make([]models.GameStatRecord, len(points))
	for i, p := range points {
		recs[i] = models.GameStatRecord{
			PlayerID:  playerID,
			FirstName: first,
			LastName:  last,
			GameID:    1000 + i,
			Minutes:   models.MinutesOf(30),
			Points:    p,
			Rebounds:  p / 2,
		}
	}
	return recs
}

func scaled(values []float64, factor float64) []float64 {
	out := make([]float64, len(values))
	for i, v := range values {
		out[i] = v * factor
	}
	return out
}

func testStore() *stats.Store {
	var records []models.GameStatRecord
	records = append(records, games(1, "Scenario", "Player", scenarioPoints)...)
	records = append(records, games(2, "High", "Scorer", scaled(scenarioPoints, 3))...)
	records = append(records, games(3, "Short", "Bench", []float64{2, 3, 4})...)
	records = append(records, games(4, "Seven", "Games", []float64{1, 2, 3, 4, 5, 6, 7})...)
	records = append(records, games(5, "Flat", "Line", []float64{5, 5, 5, 5, 5, 5, 5, 5, 5, 5, 5, 5})...)
	return stats.NewStore(records, discardEntry())
}

func prop(id, player, stat string, line float64) models.PropLine {
	return models.PropLine{ProjectionID: id, PlayerName: player, StatType: stat, Line: line, OddsType: models.OddsTypeGoblin}
}

func skipReasons(report *Report) map[string]models.SkipReason {
	out := make(map[string]models.SkipReason)
	for _, s := range report.Skipped {
		out[s.Prop.ProjectionID] = s.Reason
	}
	return out
}

func TestRunSkipsWithReasons(t *testing.T) {
	p := NewPipeline(DefaultOptions(), nil, nil)
	props := []models.PropLine{
		prop("unresolved", "Nobody Atall", "Points", 10),
		prop("case", "scenario player", "Points", 5.5),
		prop("stat", "Scenario Player", "Fantasy Score", 20),
		prop("few", "Short Bench", "Points", 2.5),
		prop("kde-min", "Seven Games", "Points", 3.5),
		prop("flat", "Flat Line", "Points", 4.5),
		prop("ok", "Scenario Player", "Points", 5.5),
	}

	report, err := p.Run(context.Background(), testStore(), props)
	require.NoError(t, err)

	assert.Equal(t, map[string]models.SkipReason{
		"unresolved": models.SkipUnresolvedPlayer,
		"case":       models.SkipUnresolvedPlayer,
		"stat":       models.SkipUnknownStatType,
		"few":        models.SkipInsufficientData,
		"kde-min":    models.SkipInsufficientData,
		"flat":       models.SkipNumericalFit,
	}, skipReasons(report))

	require.Len(t, report.Props, 1)
	assert.Equal(t, 7, report.Run.PropsInput)
	assert.Equal(t, 1, report.Run.PropsRanked)
	assert.Equal(t, 6, report.Run.PropsSkipped)
	for _, s := range report.Skipped {
		assert.NotEmpty(t, s.Detail)
	}
}

func TestRunKDEAnalysis(t *testing.T) {
	p := NewPipeline(DefaultOptions(), nil, nil)
	report, err := p.Run(context.Background(), testStore(), []models.PropLine{prop("ok", "Scenario Player", "Points", 5.5)})
	require.NoError(t, err)
	require.Len(t, report.Props, 1)

	ap := report.Props[0]
	assert.Equal(t, 1, ap.Rank)
	assert.Equal(t, models.StatPoints, ap.StatType)
	assert.Equal(t, models.StrategyKDE, ap.Strategy)
	assert.Greater(t, ap.ProbabilityOverLine, 0.0)
	assert.Less(t, ap.ProbabilityOverLine, 1.0)
	assert.Equal(t, 15, ap.Analysis.GamesPlayed)
	assert.Nil(t, ap.ModelInfo)

	require.Len(t, ap.KeyProbabilities, 5)
	assert.Equal(t, 0.5, ap.KeyProbabilities[0].Threshold)
	assert.Equal(t, 10.5, ap.KeyProbabilities[4].Threshold)
	assert.Equal(t, ap.ProbabilityOverLine, ap.KeyProbabilities[2].Probability)

	require.NotEmpty(t, ap.ProbabilityTable)
	assert.Equal(t, 0.0, ap.ProbabilityTable[0].Threshold)
	assert.Equal(t, 10.0, ap.ProbabilityTable[len(ap.ProbabilityTable)-1].Threshold)
}

func TestRunRanking(t *testing.T) {
	props := []models.PropLine{
		prop("a", "Scenario Player", "Points", 8.5),
		prop("b", "High Scorer", "Points", 8.5),
		prop("c", "Scenario Player", "Points", 8.5),
	}

	report, err := NewPipeline(DefaultOptions(), nil, nil).Run(context.Background(), testStore(), props)
	require.NoError(t, err)
	require.Len(t, report.Props, 3)

	// equal probabilities keep input order
	ids := []string{report.Props[0].Prop.ProjectionID, report.Props[1].Prop.ProjectionID, report.Props[2].Prop.ProjectionID}
	assert.Equal(t, []string{"b", "a", "c"}, ids)
	for i, ap := range report.Props {
		assert.Equal(t, i+1, ap.Rank)
	}
	assert.GreaterOrEqual(t, report.Props[0].ProbabilityOverLine, report.Props[1].ProbabilityOverLine)
}

func TestRankByScore(t *testing.T) {
	props := []models.AnalyzedProp{
		{Prop: prop("low", "A", "Points", 1), ProbabilityOverLine: 0.9, Score: 0.1},
		{Prop: prop("high", "B", "Points", 1), ProbabilityOverLine: 0.2, Score: 0.8},
		{Prop: prop("mid", "C", "Points", 1), ProbabilityOverLine: 0.5, Score: 0.8},
	}

	Rank(props, models.RankByScore)
	assert.Equal(t, "high", props[0].Prop.ProjectionID)
	assert.Equal(t, "mid", props[1].Prop.ProjectionID)
	assert.Equal(t, "low", props[2].Prop.ProjectionID)

	Rank(props, models.RankByProbability)
	assert.Equal(t, "low", props[0].Prop.ProjectionID)
	assert.Equal(t, 3, props[2].Rank)
}

func TestRunWorkersDeterministic(t *testing.T) {
	var props []models.PropLine
	for _, line := range []float64{3.5, 5.5, 7.5, 9.5} {
		props = append(props,
			prop("s", "Scenario Player", "Points", line),
			prop("h", "High Scorer", "Pts+Rebs", line*3),
			prop("x", "Nobody Atall", "Points", line),
		)
	}

	serial := DefaultOptions()
	parallel := DefaultOptions()
	parallel.Workers = 4

	a, err := NewPipeline(serial, nil, nil).Run(context.Background(), testStore(), props)
	require.NoError(t, err)
	b, err := NewPipeline(parallel, estimator.NewModelCache(0), nil).Run(context.Background(), testStore(), props)
	require.NoError(t, err)

	assert.Equal(t, a.Props, b.Props)
	assert.Equal(t, a.Skipped, b.Skipped)
}

func TestRunCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewPipeline(DefaultOptions(), nil, nil).Run(ctx, testStore(), []models.PropLine{prop("ok", "Scenario Player", "Points", 5.5)})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRunReusesCachedModels(t *testing.T) {
	mc := estimator.NewModelCache(0)
	p := NewPipeline(DefaultOptions(), mc, nil)
	props := []models.PropLine{prop("ok", "Scenario Player", "Points", 5.5)}

	first, err := p.Run(context.Background(), testStore(), props)
	require.NoError(t, err)
	second, err := p.Run(context.Background(), testStore(), props)
	require.NoError(t, err)

	assert.Equal(t, 1, mc.ItemCount())
	hits, _, _ := mc.Stats()
	assert.GreaterOrEqual(t, hits, uint64(1))
	assert.Equal(t, first.Props[0].ProbabilityOverLine, second.Props[0].ProbabilityOverLine)
}

func TestRunRefitsWhenRecordsChange(t *testing.T) {
	mc := estimator.NewModelCache(0)
	p := NewPipeline(DefaultOptions(), mc, nil)
	props := []models.PropLine{prop("ok", "Scenario Player", "Points", 8.5)}

	before := stats.NewStore(games(1, "Scenario", "Player", scenarioPoints), discardEntry())
	after := stats.NewStore(games(1, "Scenario", "Player", scaled(scenarioPoints, 3)), discardEntry())
	require.NotEqual(t, before.Fingerprint(), after.Fingerprint())

	_, err := p.Run(context.Background(), before, props)
	require.NoError(t, err)
	cached, err := p.Run(context.Background(), after, props)
	require.NoError(t, err)
	fresh, err := NewPipeline(DefaultOptions(), nil, nil).Run(context.Background(), after, props)
	require.NoError(t, err)

	require.Len(t, cached.Props, 1)
	require.Len(t, fresh.Props, 1)
	assert.Equal(t, fresh.Props[0].ProbabilityOverLine, cached.Props[0].ProbabilityOverLine)
	assert.Equal(t, fresh.Props[0].ProbabilityTable, cached.Props[0].ProbabilityTable)
	assert.Equal(t, fresh.Props[0].Analysis, cached.Props[0].Analysis)
	assert.Equal(t, 2, mc.ItemCount())
}

// leagueStore builds twenty players whose scoring levels differ, so a
// classifier over the pooled rows sees both outcomes of a mid-range line
func leagueStore() *stats.Store {
	var records []models.GameStatRecord
	for k := 0; k < 20; k++ {
		points := make([]float64, 20)
		for g := range points {
			points[g] = float64(k + g%5)
		}
		first := "Player"
		last := string(rune('A' + k))
		records = append(records, games(100+k, first, last, points)...)
	}
	return stats.NewStore(records, discardEntry())
}

func TestRunLogisticStrategy(t *testing.T) {
	opts := DefaultOptions()
	opts.Strategy = models.StrategyLogistic
	mc := estimator.NewModelCache(0)

	props := []models.PropLine{
		prop("star", "Player T", "Points", 10.5),
		prop("bench", "Player B", "Points", 10.5),
	}
	report, err := NewPipeline(opts, mc, nil).Run(context.Background(), leagueStore(), props)
	require.NoError(t, err)
	require.Len(t, report.Props, 2, "skipped: %+v", report.Skipped)

	assert.Equal(t, "star", report.Props[0].Prop.ProjectionID)
	for _, ap := range report.Props {
		assert.Equal(t, models.StrategyLogistic, ap.Strategy)
		require.NotNil(t, ap.ModelInfo)
		assert.Equal(t, 20*20, ap.ModelInfo.TrainSize+ap.ModelInfo.TestSize)
		assert.Nil(t, ap.ProbabilityTable)
		require.Len(t, ap.KeyProbabilities, 5)
		assert.GreaterOrEqual(t, ap.ProbabilityOverLine, 0.0)
		assert.LessOrEqual(t, ap.ProbabilityOverLine, 1.0)
	}
	assert.Greater(t, report.Props[0].ProbabilityOverLine, report.Props[1].ProbabilityOverLine)
}

func TestPipelineTable(t *testing.T) {
	p := NewPipeline(DefaultOptions(), nil, nil)

	points, err := p.Table(testStore(), "Scenario Player", "Points")
	require.NoError(t, err)
	require.Len(t, points, 21)
	assert.Equal(t, 10.0, points[20].Threshold)

	_, err = p.Table(testStore(), "Nobody Atall", "Points")
	assert.ErrorIs(t, err, models.ErrUnresolvedPlayer)

	_, err = p.Table(testStore(), "Scenario Player", "Fantasy Score")
	assert.ErrorIs(t, err, models.ErrUnknownStatType)
}

func TestReportOutput(t *testing.T) {
	report, err := NewPipeline(DefaultOptions(), nil, nil).Run(context.Background(), testStore(), []models.PropLine{
		prop("ok", "Scenario Player", "Points", 5.5),
		prop("x", "Nobody Atall", "Points", 5.5),
	})
	require.NoError(t, err)

	rounded := report.Rounded()
	raw := report.Props[0].ProbabilityOverLine
	assert.InDelta(t, raw, rounded.Props[0].ProbabilityOverLine, 0.0005)
	assert.Equal(t, raw, report.Props[0].ProbabilityOverLine)

	console := report.ConsoleReport(0)
	assert.Contains(t, console, "Scenario Player - Points 5.5")
	assert.Contains(t, console, "Probability over line:")
	assert.Contains(t, console, "Season hit rate:")
	assert.Contains(t, console, "Ranked 1 of 2 props (1 skipped)")

	path := filepath.Join(t.TempDir(), "out", "analyzed_props.json")
	require.NoError(t, report.WriteJSON(path))
	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var decoded Report
	require.NoError(t, json.Unmarshal(data, &decoded))
	require.Len(t, decoded.Props, 1)
	require.Len(t, decoded.Skipped, 1)
	assert.Equal(t, models.SkipUnresolvedPlayer, decoded.Skipped[0].Reason)
	for _, pt := range decoded.Props[0].ProbabilityTable {
		assert.InDelta(t, pt.Probability, float64(int(pt.Probability*1000+0.5))/1000, 1e-9)
	}

	table := TableReport("Scenario Player", models.StatPoints, report.Props[0].ProbabilityTable)
	assert.True(t, strings.HasPrefix(table, "Scenario Player - Points\n"))
}
