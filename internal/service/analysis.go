package service

import (
	"context"
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/prop-analyzer/internal/datasource"
	"github.com/yourusername/prop-analyzer/internal/estimator"
	"github.com/yourusername/prop-analyzer/internal/metrics"
	"github.com/yourusername/prop-analyzer/internal/models"
	"github.com/yourusername/prop-analyzer/internal/ranking"
	"github.com/yourusername/prop-analyzer/internal/repository"
	"github.com/yourusername/prop-analyzer/internal/stats"
)

// AnalysisPaths locates the inputs and outputs of an analysis run
type AnalysisPaths struct {
	StatsFiles   []string
	PropsFile    string
	OutputPath   string
	TextfilePath string
	// Seasons restricts database loads; empty loads every stored season
	Seasons []int
}

// AnalysisService loads records, runs the ranking pipeline and publishes
// the report
type AnalysisService struct {
	pipeline  *ranking.Pipeline
	cache     *estimator.ModelCache
	gameStats repository.GameStatRepository
	runs      repository.AnalysisRunRepository
	paths     AnalysisPaths
	logger    *logrus.Entry

	mu      sync.RWMutex
	lastRun models.AnalysisRun
	hasRun  bool
}

// NewAnalysisService creates an analysis service. Records come from
// gameStats when set, otherwise from the stats files; runs are persisted
// when a run repository is given.
func NewAnalysisService(
	pipeline *ranking.Pipeline,
	cache *estimator.ModelCache,
	gameStats repository.GameStatRepository,
	runs repository.AnalysisRunRepository,
	paths AnalysisPaths,
	log *logrus.Logger,
) *AnalysisService {
	return &AnalysisService{
		pipeline:  pipeline,
		cache:     cache,
		gameStats: gameStats,
		runs:      runs,
		paths:     paths,
		logger:    componentLogger(log, "analysis_service"),
	}
}

// LoadStore builds the stats store from the configured record source
func (s *AnalysisService) LoadStore(ctx context.Context) (*stats.Store, error) {
	var (
		records []models.GameStatRecord
		err     error
	)
	if s.gameStats != nil {
		records, err = s.gameStats.GetBySeasons(ctx, s.paths.Seasons...)
	} else {
		if len(s.paths.StatsFiles) == 0 {
			return nil, fmt.Errorf("no stats files configured")
		}
		records, err = datasource.LoadStats(s.paths.StatsFiles...)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load game stats: %w", err)
	}
	return stats.NewStore(records, s.logger), nil
}

// LoadProps reads the props file
func (s *AnalysisService) LoadProps() ([]models.PropLine, error) {
	props, err := datasource.LoadProps(s.paths.PropsFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load props: %w", err)
	}
	return props, nil
}

// Analyze runs the pipeline over the current records and props, then writes
// the JSON report, persists the run and flushes the metrics textfile for
// whichever of those are configured
func (s *AnalysisService) Analyze(ctx context.Context) (*ranking.Report, error) {
	store, err := s.LoadStore(ctx)
	if err != nil {
		return nil, err
	}
	props, err := s.LoadProps()
	if err != nil {
		return nil, err
	}
	return s.AnalyzeWith(ctx, store, props)
}

// AnalyzeWith runs the pipeline over an already loaded store and props
func (s *AnalysisService) AnalyzeWith(ctx context.Context, store *stats.Store, props []models.PropLine) (*ranking.Report, error) {
	report, err := s.pipeline.Run(ctx, store, props)
	if err != nil {
		return nil, err
	}

	if s.paths.OutputPath != "" {
		if err := report.WriteJSON(s.paths.OutputPath); err != nil {
			return report, fmt.Errorf("failed to write report: %w", err)
		}
	}

	if s.runs != nil {
		if err := s.runs.Save(ctx, &report.Run, report.Props); err != nil {
			return report, fmt.Errorf("failed to persist analysis run: %w", err)
		}
	}

	if s.paths.TextfilePath != "" {
		if err := metrics.WriteTextfile(s.paths.TextfilePath); err != nil {
			s.logger.WithError(err).Warn("Metrics textfile not written")
		}
	}

	s.mu.Lock()
	s.lastRun = report.Run
	s.hasRun = true
	s.mu.Unlock()

	return report, nil
}

// Table computes the probability table of one player and stat label
func (s *AnalysisService) Table(ctx context.Context, player, statLabel string) ([]models.ProbabilityPoint, error) {
	store, err := s.LoadStore(ctx)
	if err != nil {
		return nil, err
	}
	return s.pipeline.Table(store, player, statLabel)
}

// InvalidateModels drops every cached fit. Called after a statistics refresh.
func (s *AnalysisService) InvalidateModels() {
	if s.cache != nil {
		s.cache.Clear()
	}
}

// LastRun returns the header of the most recent successful run
func (s *AnalysisService) LastRun() (models.AnalysisRun, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastRun, s.hasRun
}
