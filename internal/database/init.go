package database

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/prop-analyzer/internal/config"
)

// schema is applied on every start; each statement is idempotent
var schema = []string{
	`CREATE TABLE IF NOT EXISTS game_stats (
		player_id   INTEGER NOT NULL,
		game_id     INTEGER NOT NULL,
		first_name  TEXT NOT NULL DEFAULT '',
		last_name   TEXT NOT NULL,
		team_id     INTEGER NOT NULL DEFAULT 0,
		team_code   TEXT NOT NULL DEFAULT '',
		season      INTEGER NOT NULL DEFAULT 0,
		minutes     DOUBLE PRECISION,
		points      DOUBLE PRECISION NOT NULL DEFAULT 0,
		rebounds    DOUBLE PRECISION NOT NULL DEFAULT 0,
		assists     DOUBLE PRECISION NOT NULL DEFAULT 0,
		blocks      DOUBLE PRECISION NOT NULL DEFAULT 0,
		steals      DOUBLE PRECISION NOT NULL DEFAULT 0,
		turnovers   DOUBLE PRECISION NOT NULL DEFAULT 0,
		threes_made DOUBLE PRECISION NOT NULL DEFAULT 0,
		updated_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
		PRIMARY KEY (player_id, game_id)
	)`,
	`CREATE INDEX IF NOT EXISTS game_stats_season_idx ON game_stats (season)`,
	`CREATE TABLE IF NOT EXISTS analysis_runs (
		id            UUID PRIMARY KEY,
		strategy      TEXT NOT NULL,
		rank_by       TEXT NOT NULL,
		props_input   INTEGER NOT NULL,
		props_ranked  INTEGER NOT NULL,
		props_skipped INTEGER NOT NULL,
		started_at    TIMESTAMPTZ NOT NULL,
		finished_at   TIMESTAMPTZ NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS analyzed_props (
		run_id        UUID NOT NULL REFERENCES analysis_runs (id) ON DELETE CASCADE,
		rank          INTEGER NOT NULL,
		projection_id TEXT NOT NULL,
		player_name   TEXT NOT NULL,
		stat_type     TEXT NOT NULL,
		line_score    DOUBLE PRECISION NOT NULL,
		probability   DOUBLE PRECISION NOT NULL,
		score         DOUBLE PRECISION NOT NULL,
		payload       JSONB NOT NULL,
		PRIMARY KEY (run_id, rank)
	)`,
}

// Initialize creates a database connection pool and applies the schema
func Initialize(ctx context.Context, cfg *config.Config, log *logrus.Logger) (*DB, error) {
	db, err := NewDB(ctx, &cfg.Database)
	if err != nil {
		return nil, err
	}

	if err := EnsureSchema(ctx, db); err != nil {
		db.Close()
		return nil, err
	}

	if log != nil {
		log.WithFields(logrus.Fields{
			"host":     cfg.Database.Host,
			"database": cfg.Database.Name,
		}).Info("Database initialized")
	}
	return db, nil
}

// EnsureSchema creates the tables the repositories use when missing
func EnsureSchema(ctx context.Context, db *DB) error {
	for _, stmt := range schema {
		if _, err := db.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("failed to apply schema: %w", err)
		}
	}
	return nil
}
