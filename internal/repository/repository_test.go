package repository

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/prop-analyzer/internal/database"
	"github.com/yourusername/prop-analyzer/internal/models"
)

func setupRepos(t *testing.T) (*Repositories, context.Context) {
	db := database.SetupTestDB(t)
	database.TruncateTestDB(t, db)

	repos, err := NewRepositories(db)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	t.Cleanup(cancel)
	return repos, ctx
}

func TestNewRepositoriesRequiresDB(t *testing.T) {
	_, err := NewRepositories(nil)
	assert.Error(t, err)
}

func TestMinutesParam(t *testing.T) {
	assert.Nil(t, minutesParam(models.Minutes{}))

	v := minutesParam(models.ParseMinutes("31:30"))
	require.NotNil(t, v)
	assert.InDelta(t, 31.5, *v, 1e-9)
}

func TestGameStatRepositoryUpsert(t *testing.T) {
	repos, ctx := setupRepos(t)

	records := []models.GameStatRecord{
		{PlayerID: 1, GameID: 10, FirstName: "Test", LastName: "Guard", Season: 2023, Minutes: models.MinutesOf(30), Points: 20},
		{PlayerID: 1, GameID: 11, FirstName: "Test", LastName: "Guard", Season: 2023, Points: 0},
		{PlayerID: 2, GameID: 10, FirstName: "Old", LastName: "Center", Season: 2022, Minutes: models.MinutesOf(12), Rebounds: 8},
	}
	n, err := repos.GameStats.UpsertBatch(ctx, records)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	records[0].Points = 25
	_, err = repos.GameStats.UpsertBatch(ctx, records[:1])
	require.NoError(t, err)

	count, err := repos.GameStats.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, count)

	got, err := repos.GameStats.GetBySeasons(ctx, 2023)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, 25.0, got[0].Points)
	assert.False(t, got[1].Minutes.Present())

	all, err := repos.GameStats.GetBySeasons(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestAnalysisRunRepositorySave(t *testing.T) {
	repos, ctx := setupRepos(t)

	started := time.Now().UTC().Truncate(time.Millisecond)
	run := &models.AnalysisRun{
		Strategy:    models.StrategyKDE,
		RankBy:      models.RankByProbability,
		PropsInput:  2,
		PropsRanked: 2,
		StartedAt:   started,
		FinishedAt:  started.Add(time.Second),
	}
	props := []models.AnalyzedProp{
		{Rank: 1, Prop: models.PropLine{ProjectionID: "p1", PlayerName: "Test Guard", StatType: "Points", Line: 18.5}, StatType: models.StatPoints, ProbabilityOverLine: 0.81},
		{Rank: 2, Prop: models.PropLine{ProjectionID: "p2", PlayerName: "Old Center", StatType: "Rebounds", Line: 6.5}, StatType: models.StatRebounds, ProbabilityOverLine: 0.64},
	}

	require.NoError(t, repos.AnalysisRuns.Save(ctx, run, props))
	assert.NotEqual(t, uuid.Nil, run.ID)

	got, gotProps, err := repos.AnalysisRuns.GetLatest(ctx)
	require.NoError(t, err)
	assert.Equal(t, run.ID, got.ID)
	assert.Equal(t, models.StrategyKDE, got.Strategy)
	require.Len(t, gotProps, 2)
	assert.Equal(t, "p1", gotProps[0].Prop.ProjectionID)
	assert.Equal(t, 0.64, gotProps[1].ProbabilityOverLine)

	_, _, err = repos.AnalysisRuns.GetByID(ctx, uuid.New())
	assert.ErrorIs(t, err, models.ErrNotFound)
}
