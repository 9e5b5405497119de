package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/yourusername/prop-analyzer/internal/database"
	"github.com/yourusername/prop-analyzer/internal/models"
)

// PostgresAnalysisRunRepository implements AnalysisRunRepository for PostgreSQL.
// Each ranked prop is stored as a JSONB payload beside its queryable columns.
type PostgresAnalysisRunRepository struct {
	db *database.DB
}

// NewPostgresAnalysisRunRepository creates a new analysis run repository
func NewPostgresAnalysisRunRepository(db *database.DB) AnalysisRunRepository {
	return &PostgresAnalysisRunRepository{db: db}
}

// Save inserts the run header and its ranked props atomically
func (r *PostgresAnalysisRunRepository) Save(ctx context.Context, run *models.AnalysisRun, props []models.AnalyzedProp) error {
	if run.ID == uuid.Nil {
		run.ID = uuid.New()
	}

	return r.db.WithTransaction(ctx, func(txCtx context.Context) error {
		_, err := r.db.Exec(txCtx, `
			INSERT INTO analysis_runs (id, strategy, rank_by, props_input, props_ranked, props_skipped, started_at, finished_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		`,
			run.ID, string(run.Strategy), string(run.RankBy), run.PropsInput, run.PropsRanked,
			run.PropsSkipped, run.StartedAt, run.FinishedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to create analysis run: %w", err)
		}

		if len(props) == 0 {
			return nil
		}

		batch := &pgx.Batch{}
		for i := range props {
			ap := &props[i]
			payload, err := json.Marshal(ap)
			if err != nil {
				return fmt.Errorf("failed to encode analyzed prop: %w", err)
			}
			rank := ap.Rank
			if rank == 0 {
				rank = i + 1
			}
			batch.Queue(`
				INSERT INTO analyzed_props (run_id, rank, projection_id, player_name, stat_type, line_score, probability, score, payload)
				VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
			`,
				run.ID, rank, ap.Prop.ProjectionID, ap.Prop.PlayerName, string(ap.StatType),
				ap.Prop.Line, ap.ProbabilityOverLine, ap.Score, payload,
			)
		}

		results := r.db.SendBatch(txCtx, batch)
		defer results.Close()
		for range props {
			if _, err := results.Exec(); err != nil {
				return fmt.Errorf("failed to insert analyzed prop: %w", err)
			}
		}
		return results.Close()
	})
}

// GetByID retrieves a run and its props in rank order
func (r *PostgresAnalysisRunRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.AnalysisRun, []models.AnalyzedProp, error) {
	return r.getRun(ctx, "WHERE id = $1", id)
}

// GetLatest retrieves the most recently finished run
func (r *PostgresAnalysisRunRepository) GetLatest(ctx context.Context) (*models.AnalysisRun, []models.AnalyzedProp, error) {
	return r.getRun(ctx, "ORDER BY finished_at DESC LIMIT 1")
}

func (r *PostgresAnalysisRunRepository) getRun(ctx context.Context, clause string, args ...interface{}) (*models.AnalysisRun, []models.AnalyzedProp, error) {
	query := `
		SELECT id, strategy, rank_by, props_input, props_ranked, props_skipped, started_at, finished_at
		FROM analysis_runs ` + clause

	var (
		run      models.AnalysisRun
		strategy string
		rankBy   string
	)
	err := r.db.QueryRow(ctx, query, args...).Scan(
		&run.ID, &strategy, &rankBy, &run.PropsInput, &run.PropsRanked,
		&run.PropsSkipped, &run.StartedAt, &run.FinishedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil, models.ErrNotFound
	}
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get analysis run: %w", err)
	}
	run.Strategy = models.Strategy(strategy)
	run.RankBy = models.RankBy(rankBy)

	props, err := r.getProps(ctx, run.ID)
	if err != nil {
		return nil, nil, err
	}
	return &run, props, nil
}

func (r *PostgresAnalysisRunRepository) getProps(ctx context.Context, runID uuid.UUID) ([]models.AnalyzedProp, error) {
	rows, err := r.db.Query(ctx, `SELECT payload FROM analyzed_props WHERE run_id = $1 ORDER BY rank`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query analyzed props: %w", err)
	}
	defer rows.Close()

	props := []models.AnalyzedProp{}
	for rows.Next() {
		var payload []byte
		if err := rows.Scan(&payload); err != nil {
			return nil, fmt.Errorf("failed to scan analyzed prop: %w", err)
		}
		var ap models.AnalyzedProp
		if err := json.Unmarshal(payload, &ap); err != nil {
			return nil, fmt.Errorf("failed to decode analyzed prop: %w", err)
		}
		props = append(props, ap)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating analyzed props: %w", err)
	}
	return props, nil
}
