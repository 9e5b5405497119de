package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/yourusername/prop-analyzer/internal/models"
)

// GameStatRepository defines the interface for box score record access
type GameStatRepository interface {
	// UpsertBatch inserts records, replacing any stored (player id, game id) row
	UpsertBatch(ctx context.Context, records []models.GameStatRecord) (int, error)
	// GetBySeasons returns records of the given seasons, or every record when none are given
	GetBySeasons(ctx context.Context, seasons ...int) ([]models.GameStatRecord, error)
	Count(ctx context.Context) (int, error)
}

// AnalysisRunRepository defines the interface for ranked report persistence
type AnalysisRunRepository interface {
	Save(ctx context.Context, run *models.AnalysisRun, props []models.AnalyzedProp) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.AnalysisRun, []models.AnalyzedProp, error)
	GetLatest(ctx context.Context) (*models.AnalysisRun, []models.AnalyzedProp, error)
}
