package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/yourusername/prop-analyzer/internal/database"
	"github.com/yourusername/prop-analyzer/internal/models"
)

const errScanGameStat = "failed to scan game stat: %w"

// PostgresGameStatRepository implements GameStatRepository for PostgreSQL
type PostgresGameStatRepository struct {
	db *database.DB
}

// NewPostgresGameStatRepository creates a new game stat repository
func NewPostgresGameStatRepository(db *database.DB) GameStatRepository {
	return &PostgresGameStatRepository{db: db}
}

const upsertGameStat = `
	INSERT INTO game_stats (player_id, game_id, first_name, last_name, team_id, team_code, season,
	                        minutes, points, rebounds, assists, blocks, steals, turnovers, threes_made)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
	ON CONFLICT (player_id, game_id) DO UPDATE SET
		first_name = EXCLUDED.first_name,
		last_name = EXCLUDED.last_name,
		team_id = EXCLUDED.team_id,
		team_code = EXCLUDED.team_code,
		season = EXCLUDED.season,
		minutes = EXCLUDED.minutes,
		points = EXCLUDED.points,
		rebounds = EXCLUDED.rebounds,
		assists = EXCLUDED.assists,
		blocks = EXCLUDED.blocks,
		steals = EXCLUDED.steals,
		turnovers = EXCLUDED.turnovers,
		threes_made = EXCLUDED.threes_made,
		updated_at = now()
`

// UpsertBatch writes all records in one transaction using a pgx batch
func (r *PostgresGameStatRepository) UpsertBatch(ctx context.Context, records []models.GameStatRecord) (int, error) {
	if len(records) == 0 {
		return 0, nil
	}

	batch := &pgx.Batch{}
	for i := range records {
		rec := &records[i]
		batch.Queue(upsertGameStat,
			rec.PlayerID, rec.GameID, rec.FirstName, rec.LastName, rec.TeamID, rec.TeamCode, rec.Season,
			minutesParam(rec.Minutes), rec.Points, rec.Rebounds, rec.Assists, rec.Blocks,
			rec.Steals, rec.Turnovers, rec.ThreesMade,
		)
	}

	written := 0
	err := r.db.WithTransaction(ctx, func(txCtx context.Context) error {
		results := r.db.SendBatch(txCtx, batch)
		defer results.Close()

		for range records {
			tag, err := results.Exec()
			if err != nil {
				return fmt.Errorf("failed to upsert game stat: %w", err)
			}
			written += int(tag.RowsAffected())
		}
		return results.Close()
	})
	if err != nil {
		return 0, err
	}
	return written, nil
}

// GetBySeasons retrieves records ordered by player then game
func (r *PostgresGameStatRepository) GetBySeasons(ctx context.Context, seasons ...int) ([]models.GameStatRecord, error) {
	query := `
		SELECT player_id, game_id, first_name, last_name, team_id, team_code, season,
		       minutes, points, rebounds, assists, blocks, steals, turnovers, threes_made
		FROM game_stats
	`
	var args []interface{}
	if len(seasons) > 0 {
		query += " WHERE season = ANY($1)"
		args = append(args, seasons)
	}
	query += " ORDER BY player_id, game_id"

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query game stats: %w", err)
	}
	defer rows.Close()

	var records []models.GameStatRecord
	for rows.Next() {
		var (
			rec     models.GameStatRecord
			minutes *float64
		)
		if err := rows.Scan(
			&rec.PlayerID, &rec.GameID, &rec.FirstName, &rec.LastName, &rec.TeamID, &rec.TeamCode, &rec.Season,
			&minutes, &rec.Points, &rec.Rebounds, &rec.Assists, &rec.Blocks,
			&rec.Steals, &rec.Turnovers, &rec.ThreesMade,
		); err != nil {
			return nil, fmt.Errorf(errScanGameStat, err)
		}
		if minutes != nil {
			rec.Minutes = models.MinutesOf(*minutes)
		}
		records = append(records, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating game stats: %w", err)
	}
	return records, nil
}

// Count returns the number of stored records
func (r *PostgresGameStatRepository) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRow(ctx, "SELECT COUNT(*) FROM game_stats").Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count game stats: %w", err)
	}
	return n, nil
}

// minutesParam maps absent minutes to NULL
func minutesParam(m models.Minutes) *float64 {
	v, ok := m.Value()
	if !ok {
		return nil
	}
	return &v
}
