package config

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
)

const (
	defaultConfigPath = "config/config.yaml"
	envPrefix         = "PROP_ANALYZER"
)

// Load reads and parses the configuration from file and environment variables
// It expands environment variable placeholders in the YAML file (${VAR_NAME})
func Load(configPath string) (*Config, error) {
	if configPath == "" {
		configPath = defaultConfigPath
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("config file not found at %s: %w", configPath, err)
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	v := newViper()
	setDefaults(v)

	if err := v.ReadConfig(bytes.NewBufferString(os.ExpandEnv(string(data)))); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	return cfg, nil
}

// LoadWithDefaults loads configuration with default values for optional fields.
// A missing file is not an error; defaults and environment variables apply.
func LoadWithDefaults(configPath string) (*Config, error) {
	if configPath == "" {
		configPath = defaultConfigPath
	}

	v := newViper()
	setDefaults(v)

	if data, err := os.ReadFile(configPath); err == nil {
		if err := v.ReadConfig(bytes.NewBufferString(os.ExpandEnv(string(data)))); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	return cfg, nil
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	return v
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "prop-analyzer")
	v.SetDefault("app.environment", "development")
	v.SetDefault("app.log_level", "info")
	v.SetDefault("app.log_format", "text")

	v.SetDefault("analysis.min_games", 5)
	v.SetDefault("analysis.recency_window", 20)
	v.SetDefault("analysis.moving_window", 10)
	v.SetDefault("analysis.table_step", 0.5)
	v.SetDefault("analysis.rank_by", "probability")
	v.SetDefault("analysis.strategy", "kde")
	v.SetDefault("analysis.workers", 1)
	v.SetDefault("analysis.model_cache_ttl_seconds", 3600)

	v.SetDefault("data.source", SourceFile)
	v.SetDefault("data.stats_files", []string{"data/player_stats_2023.json"})
	v.SetDefault("data.props_file", "data/prize_picks_goblins.json")
	v.SetDefault("data.output_path", "output/analyzed_props.json")

	v.SetDefault("nba_api.base_url", "https://api-nba-v1.p.rapidapi.com")
	v.SetDefault("nba_api.host", "api-nba-v1.p.rapidapi.com")
	v.SetDefault("nba_api.seasons", []int{2023})
	v.SetDefault("nba_api.rate_limit", 5.0)
	v.SetDefault("nba_api.max_retries", 3)
	v.SetDefault("nba_api.timeout_seconds", 30)
	v.SetDefault("nba_api.cache_ttl_seconds", 3600)

	v.SetDefault("prize_picks.base_url", "https://api.prizepicks.com")
	v.SetDefault("prize_picks.league_id", 7)
	v.SetDefault("prize_picks.per_page", 250)
	v.SetDefault("prize_picks.odds_type", "goblin")

	v.SetDefault("database.port", 5432)
	v.SetDefault("database.ssl_mode", "disable")
	v.SetDefault("database.max_connections", 10)
	v.SetDefault("database.min_connections", 1)

	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.port", 9090)

	v.SetDefault("schedule.props_refresh", "*/30 * * * *")
	v.SetDefault("schedule.stats_refresh", "0 6 * * *")
}
