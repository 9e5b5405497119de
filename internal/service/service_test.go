package service

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/prop-analyzer/internal/datasource"
	"github.com/yourusername/prop-analyzer/internal/estimator"
	"github.com/yourusername/prop-analyzer/internal/models"
	"github.com/yourusername/prop-analyzer/internal/ranking"
)

type fakeStatsSource struct {
	bySeason map[int][]datasource.RawPlayerStat
	err      error
}

func (f *fakeStatsSource) Name() string { return "fake_stats" }

func (f *fakeStatsSource) SeasonStats(_ context.Context, season int) ([]datasource.RawPlayerStat, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.bySeason[season], nil
}

type fakePropsSource struct {
	props    []datasource.RawProp
	lastDate string
}

func (f *fakePropsSource) Name() string { return "fake_props" }

func (f *fakePropsSource) FetchProps(_ context.Context, date string) ([]datasource.RawProp, error) {
	f.lastDate = date
	return f.props, nil
}

type memGameStats struct {
	stored []models.GameStatRecord
}

func (m *memGameStats) UpsertBatch(_ context.Context, records []models.GameStatRecord) (int, error) {
	m.stored = append(m.stored, records...)
	return len(records), nil
}

func (m *memGameStats) GetBySeasons(_ context.Context, seasons ...int) ([]models.GameStatRecord, error) {
	if len(seasons) == 0 {
		return m.stored, nil
	}
	var out []models.GameStatRecord
	for _, rec := range m.stored {
		for _, s := range seasons {
			if rec.Season == s {
				out = append(out, rec)
			}
		}
	}
	return out, nil
}

func (m *memGameStats) Count(context.Context) (int, error) { return len(m.stored), nil }

type memRuns struct {
	saved []models.AnalysisRun
}

func (m *memRuns) Save(_ context.Context, run *models.AnalysisRun, _ []models.AnalyzedProp) error {
	m.saved = append(m.saved, *run)
	return nil
}

func (m *memRuns) GetByID(context.Context, uuid.UUID) (*models.AnalysisRun, []models.AnalyzedProp, error) {
	return nil, nil, models.ErrNotFound
}

func (m *memRuns) GetLatest(context.Context) (*models.AnalysisRun, []models.AnalyzedProp, error) {
	if len(m.saved) == 0 {
		return nil, nil, models.ErrNotFound
	}
	run := m.saved[len(m.saved)-1]
	return &run, nil, nil
}

func rawRow(playerID, gameID, season int, first, last, minutes string, points float64) datasource.RawPlayerStat {
	var row datasource.RawPlayerStat
	row.Player.ID = datasource.Number(float64(playerID))
	row.Player.Firstname = first
	row.Player.Lastname = last
	row.Game.ID = datasource.Number(float64(gameID))
	row.Season = season
	row.Min = models.ParseMinutes(minutes)
	row.Points = datasource.Number(points)
	return row
}

func guardSeason(season int) []datasource.RawPlayerStat {
	points := []float64{14, 18, 22, 9, 16, 25, 12, 19, 21, 15, 17, 20}
	rows := make([]datasource.RawPlayerStat, 0, len(points)+1)
	for i, p := range points {
		rows = append(rows, rawRow(7, season*100+i+1, season, "Test", "Guard", "32:00", p))
	}
	rows = append(rows, rawRow(0, season*100+99, season, "", "", "", 0))
	return rows
}

func TestRefreshStatsWritesFileAndStore(t *testing.T) {
	src := &fakeStatsSource{bySeason: map[int][]datasource.RawPlayerStat{
		2022: guardSeason(2022),
		2023: guardSeason(2023),
	}}
	repo := &memGameStats{}
	svc := NewIngestionService(src, nil, repo, nil)

	path := filepath.Join(t.TempDir(), "stats", "players.json")
	m, err := svc.RefreshStats(context.Background(), []int{2022, 2023}, path)
	require.NoError(t, err)

	assert.Equal(t, 2, m.Seasons)
	assert.Equal(t, 26, m.Fetched)
	assert.Equal(t, 2, m.Rejected)
	assert.Equal(t, 24, m.Stored)
	assert.Len(t, repo.stored, 24)

	rows, err := datasource.ReadStatsFile(path)
	require.NoError(t, err)
	assert.Len(t, rows, 26)
}

func TestRefreshStatsFailure(t *testing.T) {
	boom := errors.New("rate limited")
	svc := NewIngestionService(&fakeStatsSource{err: boom}, nil, nil, nil)

	path := filepath.Join(t.TempDir(), "players.json")
	m, err := svc.RefreshStats(context.Background(), []int{2023}, path)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 1, m.Errors)
	_, statErr := os.Stat(path)
	assert.True(t, os.IsNotExist(statErr))

	_, err = svc.RefreshStats(context.Background(), nil, path)
	assert.Error(t, err)
}

func TestRefreshProps(t *testing.T) {
	src := &fakePropsSource{props: []datasource.RawProp{
		{ProjectionID: "1", LineScore: datasource.Number(15.5), StatType: "Points", Player: datasource.RawPropPlayer{Name: "Test Guard"}},
	}}
	svc := NewIngestionService(nil, src, nil, nil)

	path := filepath.Join(t.TempDir(), "props.json")
	m, err := svc.RefreshProps(context.Background(), "2024-01-05", path)
	require.NoError(t, err)
	assert.Equal(t, 1, m.Props)
	assert.Equal(t, "2024-01-05", src.lastDate)

	props, err := datasource.LoadProps(path)
	require.NoError(t, err)
	require.Len(t, props, 1)
	assert.Equal(t, "Test Guard", props[0].PlayerName)

	_, err = NewIngestionService(nil, nil, nil, nil).RefreshProps(context.Background(), "", path)
	assert.Error(t, err)
}

func writeInputs(t *testing.T) (statsPath, propsPath string) {
	dir := t.TempDir()
	statsPath = filepath.Join(dir, "players.json")
	propsPath = filepath.Join(dir, "props.json")

	require.NoError(t, datasource.WriteStatsFile(statsPath, guardSeason(2023)))
	require.NoError(t, datasource.WritePropsFile(propsPath, []datasource.RawProp{
		{ProjectionID: "a", LineScore: datasource.Number(15.5), StatType: "Points", Player: datasource.RawPropPlayer{Name: "Test Guard"}},
		{ProjectionID: "b", LineScore: datasource.Number(3.5), StatType: "Points", Player: datasource.RawPropPlayer{Name: "Nobody Known"}},
	}))
	return statsPath, propsPath
}

func newTestAnalysis(t *testing.T, paths AnalysisPaths, runs *memRuns) *AnalysisService {
	cache := estimator.NewModelCache(0)
	pipeline := ranking.NewPipeline(ranking.DefaultOptions(), cache, nil)
	if runs == nil {
		return NewAnalysisService(pipeline, cache, nil, nil, paths, nil)
	}
	return NewAnalysisService(pipeline, cache, nil, runs, paths, nil)
}

func TestAnalyzeFromFiles(t *testing.T) {
	statsPath, propsPath := writeInputs(t)
	dir := t.TempDir()
	paths := AnalysisPaths{
		StatsFiles:   []string{statsPath},
		PropsFile:    propsPath,
		OutputPath:   filepath.Join(dir, "out", "analyzed.json"),
		TextfilePath: filepath.Join(dir, "prop_analyzer.prom"),
	}
	runs := &memRuns{}
	svc := newTestAnalysis(t, paths, runs)

	_, ok := svc.LastRun()
	assert.False(t, ok)

	report, err := svc.Analyze(context.Background())
	require.NoError(t, err)
	require.Len(t, report.Props, 1)
	require.Len(t, report.Skipped, 1)
	assert.Equal(t, models.SkipUnresolvedPlayer, report.Skipped[0].Reason)
	assert.Equal(t, 1, report.Props[0].Rank)

	assert.FileExists(t, paths.OutputPath)
	assert.FileExists(t, paths.TextfilePath)
	require.Len(t, runs.saved, 1)
	assert.Equal(t, report.Run.ID, runs.saved[0].ID)

	last, ok := svc.LastRun()
	require.True(t, ok)
	assert.Equal(t, 1, last.PropsRanked)
}

func TestAnalyzeFromDatabase(t *testing.T) {
	_, propsPath := writeInputs(t)
	repo := &memGameStats{stored: datasource.Records(guardSeason(2023)[:12])}

	cache := estimator.NewModelCache(0)
	pipeline := ranking.NewPipeline(ranking.DefaultOptions(), cache, nil)
	svc := NewAnalysisService(pipeline, cache, repo, nil, AnalysisPaths{PropsFile: propsPath, Seasons: []int{2023}}, nil)

	report, err := svc.Analyze(context.Background())
	require.NoError(t, err)
	assert.Len(t, report.Props, 1)
	assert.Equal(t, 1, cache.ItemCount())

	svc.InvalidateModels()
	assert.Equal(t, 0, cache.ItemCount())
}

func TestAnalysisTable(t *testing.T) {
	statsPath, propsPath := writeInputs(t)
	svc := newTestAnalysis(t, AnalysisPaths{StatsFiles: []string{statsPath}, PropsFile: propsPath}, nil)

	points, err := svc.Table(context.Background(), "Test Guard", "Points")
	require.NoError(t, err)
	require.NotEmpty(t, points)
	assert.Equal(t, 0.0, points[0].Threshold)

	_, err = svc.Table(context.Background(), "Nobody Known", "Points")
	assert.ErrorIs(t, err, models.ErrUnresolvedPlayer)
}

func TestLoadStoreRequiresSource(t *testing.T) {
	svc := newTestAnalysis(t, AnalysisPaths{}, nil)
	_, err := svc.LoadStore(context.Background())
	assert.Error(t, err)
}
