// Package service wires data sources, storage and the ranking pipeline into
// the refresh and analysis workflows shared by the CLI and the scheduler.
package service

import (
	"context"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/prop-analyzer/internal/datasource"
	"github.com/yourusername/prop-analyzer/internal/models"
	"github.com/yourusername/prop-analyzer/internal/repository"
	"github.com/yourusername/prop-analyzer/internal/stats"
)

// IngestionService pulls statistics and prop lines from their sources and
// writes them where the analysis reads them
type IngestionService struct {
	statsSource datasource.StatsSource
	propsSource datasource.PropsSource
	gameStats   repository.GameStatRepository
	validate    *validator.Validate
	logger      *logrus.Entry
}

// NewIngestionService creates a new ingestion service. Either source may be
// nil when only the other refresh is used; gameStats is optional.
func NewIngestionService(
	statsSource datasource.StatsSource,
	propsSource datasource.PropsSource,
	gameStats repository.GameStatRepository,
	log *logrus.Logger,
) *IngestionService {
	return &IngestionService{
		statsSource: statsSource,
		propsSource: propsSource,
		gameStats:   gameStats,
		validate:    validator.New(),
		logger:      componentLogger(log, "ingestion"),
	}
}

// RefreshStats fetches every season, writes the combined rows to outPath
// when set, and upserts the valid records into the database when configured.
// A failed season aborts the refresh before anything is written.
func (s *IngestionService) RefreshStats(ctx context.Context, seasons []int, outPath string) (*IngestionMetrics, error) {
	if s.statsSource == nil {
		return nil, fmt.Errorf("no statistics source configured")
	}
	if len(seasons) == 0 {
		return nil, fmt.Errorf("no seasons to refresh")
	}

	m := NewIngestionMetrics()
	var rows []datasource.RawPlayerStat
	for _, season := range seasons {
		s.logger.WithFields(logrus.Fields{
			"source": s.statsSource.Name(),
			"season": season,
		}).Info("Fetching season statistics")

		seasonRows, err := s.statsSource.SeasonStats(ctx, season)
		if err != nil {
			m.RecordError()
			return m, fmt.Errorf("failed to fetch season %d: %w", season, err)
		}
		m.RecordSeason(len(seasonRows))
		rows = append(rows, seasonRows...)
	}

	if outPath != "" {
		if err := datasource.WriteStatsFile(outPath, rows); err != nil {
			m.RecordError()
			return m, err
		}
	}

	if s.gameStats != nil {
		valid := s.validRecords(datasource.Records(rows), m)
		n, err := s.gameStats.UpsertBatch(ctx, valid)
		if err != nil {
			m.RecordError()
			return m, fmt.Errorf("failed to store game stats: %w", err)
		}
		m.RecordStored(n)
	}

	m.Finish()
	s.logger.WithField("metrics", m.String()).Info("Statistics refresh complete")
	return m, nil
}

func (s *IngestionService) validRecords(records []models.GameStatRecord, m *IngestionMetrics) []models.GameStatRecord {
	valid := records[:0:0]
	for i := range records {
		if err := stats.ValidateRecord(s.validate, &records[i]); err != nil {
			m.RecordRejected(1)
			continue
		}
		valid = append(valid, records[i])
	}
	return valid
}

// RefreshProps fetches the current prop lines for date (empty for all) and
// writes them to outPath
func (s *IngestionService) RefreshProps(ctx context.Context, date, outPath string) (*IngestionMetrics, error) {
	if s.propsSource == nil {
		return nil, fmt.Errorf("no props source configured")
	}

	m := NewIngestionMetrics()
	props, err := s.propsSource.FetchProps(ctx, date)
	if err != nil {
		m.RecordError()
		return m, fmt.Errorf("failed to fetch props: %w", err)
	}
	m.RecordProps(len(props))

	if err := datasource.WritePropsFile(outPath, props); err != nil {
		m.RecordError()
		return m, err
	}

	m.Finish()
	s.logger.WithFields(logrus.Fields{
		"source": s.propsSource.Name(),
		"props":  len(props),
		"path":   outPath,
	}).Info("Props refresh complete")
	return m, nil
}

// Today returns the current UTC date in the projections API's date format
func Today() string {
	return time.Now().UTC().Format("2006-01-02")
}

func componentLogger(log *logrus.Logger, component string) *logrus.Entry {
	if log == nil {
		log = logrus.New()
		log.SetLevel(logrus.PanicLevel)
	}
	return log.WithField("component", component)
}
