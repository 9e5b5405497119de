// Package config provides configuration management for the prop analyzer.
package config

import (
	"fmt"
	"time"
)

// Data sources for historical records
const (
	SourceFile     = "file"
	SourcePostgres = "postgres"
)

// Config represents the complete application configuration
type Config struct {
	App        AppConfig        `mapstructure:"app"`
	Analysis   AnalysisConfig   `mapstructure:"analysis"`
	Data       DataConfig       `mapstructure:"data"`
	NBAAPI     NBAAPIConfig     `mapstructure:"nba_api"`
	PrizePicks PrizePicksConfig `mapstructure:"prize_picks"`
	Database   DatabaseConfig   `mapstructure:"database"`
	Metrics    MetricsConfig    `mapstructure:"metrics"`
	Schedule   ScheduleConfig   `mapstructure:"schedule"`
}

// AppConfig represents application-level configuration
type AppConfig struct {
	Name        string `mapstructure:"name" validate:"required"`
	Environment string `mapstructure:"environment" validate:"required,environment"`
	LogLevel    string `mapstructure:"log_level" validate:"required,loglevel"`
	LogFormat   string `mapstructure:"log_format" validate:"omitempty,oneof=text json"`
}

// AnalysisConfig represents the estimation and ranking parameters
type AnalysisConfig struct {
	MinGames             int     `mapstructure:"min_games" validate:"gte=1"`
	RecencyWindow        int     `mapstructure:"recency_window" validate:"gt=0"`
	MovingWindow         int     `mapstructure:"moving_window" validate:"gt=0"`
	TableStep            float64 `mapstructure:"table_step" validate:"gt=0"`
	RankBy               string  `mapstructure:"rank_by" validate:"rankby"`
	Strategy             string  `mapstructure:"strategy" validate:"strategy"`
	Workers              int     `mapstructure:"workers" validate:"gte=1,lte=64"`
	ModelCacheTTLSeconds int     `mapstructure:"model_cache_ttl_seconds" validate:"gte=0"`
}

// DataConfig represents where records come from and where reports go
type DataConfig struct {
	Source     string   `mapstructure:"source" validate:"oneof=file postgres"`
	StatsFiles []string `mapstructure:"stats_files"`
	PropsFile  string   `mapstructure:"props_file" validate:"required"`
	OutputPath string   `mapstructure:"output_path" validate:"required"`
}

// NBAAPIConfig represents the historical statistics API configuration
type NBAAPIConfig struct {
	BaseURL         string  `mapstructure:"base_url" validate:"required,url"`
	Host            string  `mapstructure:"host" validate:"required"`
	APIKey          string  `mapstructure:"api_key"`
	Seasons         []int   `mapstructure:"seasons" validate:"dive,gte=2000"`
	RateLimit       float64 `mapstructure:"rate_limit" validate:"gt=0"`
	MaxRetries      int     `mapstructure:"max_retries" validate:"gte=0"`
	TimeoutSeconds  int     `mapstructure:"timeout_seconds" validate:"gt=0"`
	CacheTTLSeconds int     `mapstructure:"cache_ttl_seconds" validate:"gte=0"`
}

// PrizePicksConfig represents the projections API configuration
type PrizePicksConfig struct {
	BaseURL  string `mapstructure:"base_url" validate:"required,url"`
	LeagueID int    `mapstructure:"league_id" validate:"gt=0"`
	PerPage  int    `mapstructure:"per_page" validate:"gt=0,lte=1000"`
	OddsType string `mapstructure:"odds_type"`
}

// DatabaseConfig represents database connection configuration
type DatabaseConfig struct {
	Host           string `mapstructure:"host"`
	Port           int    `mapstructure:"port" validate:"omitempty,min=1,max=65535"`
	Name           string `mapstructure:"name"`
	User           string `mapstructure:"user"`
	Password       string `mapstructure:"password"`
	SSLMode        string `mapstructure:"ssl_mode" validate:"omitempty,oneof=disable require verify-full"`
	MaxConnections int    `mapstructure:"max_connections" validate:"omitempty,gt=0"`
	MinConnections int    `mapstructure:"min_connections" validate:"omitempty,gte=0"`
}

// MetricsConfig represents metrics and monitoring configuration
type MetricsConfig struct {
	Enabled      bool   `mapstructure:"enabled"`
	Port         int    `mapstructure:"port" validate:"omitempty,min=1,max=65535"`
	TextfilePath string `mapstructure:"textfile_path"`
}

// ScheduleConfig represents the refresh schedule used by the schedule command
type ScheduleConfig struct {
	PropsRefresh string `mapstructure:"props_refresh" validate:"omitempty,cronspec"`
	StatsRefresh string `mapstructure:"stats_refresh" validate:"omitempty,cronspec"`
}

// IsDevelopment checks if the application is running in development mode
func (c *Config) IsDevelopment() bool {
	return c.App.Environment == "development"
}

// IsStaging checks if the application is running in staging mode
func (c *Config) IsStaging() bool {
	return c.App.Environment == "staging"
}

// IsProduction checks if the application is running in production mode
func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

// UsesDatabase reports whether historical records live in Postgres
func (c *Config) UsesDatabase() bool {
	return c.Data.Source == SourcePostgres
}

// GetDatabaseDSN returns a PostgreSQL DSN string
func (c *Config) GetDatabaseDSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Name,
		c.Database.SSLMode,
	)
}

// ModelCacheTTL returns the fitted model reuse window
func (c *Config) ModelCacheTTL() time.Duration {
	return time.Duration(c.Analysis.ModelCacheTTLSeconds) * time.Second
}

// NBAAPITimeout returns the per-request timeout of the statistics API
func (c *Config) NBAAPITimeout() time.Duration {
	return time.Duration(c.NBAAPI.TimeoutSeconds) * time.Second
}

// NBAAPICacheTTL returns how long statistics API responses are reused
func (c *Config) NBAAPICacheTTL() time.Duration {
	return time.Duration(c.NBAAPI.CacheTTLSeconds) * time.Second
}
