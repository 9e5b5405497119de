// Package repository persists game stats and analysis runs in PostgreSQL.
package repository

import (
	"fmt"

	"github.com/yourusername/prop-analyzer/internal/database"
)

// Repositories holds all repository implementations
type Repositories struct {
	GameStats    GameStatRepository
	AnalysisRuns AnalysisRunRepository
}

// NewRepositories creates and returns all repository implementations
func NewRepositories(db *database.DB) (*Repositories, error) {
	if db == nil {
		return nil, fmt.Errorf("database connection is required")
	}

	return &Repositories{
		GameStats:    NewPostgresGameStatRepository(db),
		AnalysisRuns: NewPostgresAnalysisRunRepository(db),
	}, nil
}
