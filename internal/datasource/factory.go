package datasource

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/prop-analyzer/internal/config"
	"github.com/yourusername/prop-analyzer/internal/logger"
)

// SourceType represents the type of data source
type SourceType string

const (
	// NBAAPISourceType is the historical statistics API
	NBAAPISourceType SourceType = nbaSourceName
	// PrizePicksSourceType is the projections API
	PrizePicksSourceType SourceType = prizePicksSourceName
)

// Factory creates data sources based on configuration
type Factory struct {
	logger *logrus.Logger
	config *config.Config
}

// NewFactory creates a new data source factory
func NewFactory(cfg *config.Config, log *logrus.Logger) *Factory {
	return &Factory{
		logger: log,
		config: cfg,
	}
}

// NewStatsSource creates the historical statistics source
func (f *Factory) NewStatsSource() (StatsSource, error) {
	client, err := f.NBAClient()
	if err != nil {
		return nil, err
	}
	return client, nil
}

// NewPropsSource creates the prop line source
func (f *Factory) NewPropsSource() (PropsSource, error) {
	return f.PrizePicksClient(), nil
}

// Create creates a data source by type. The result implements StatsSource or
// PropsSource depending on the type.
func (f *Factory) Create(sourceType SourceType) (interface{ Name() string }, error) {
	switch sourceType {
	case NBAAPISourceType:
		return f.NewStatsSource()
	case PrizePicksSourceType:
		return f.PrizePicksClient(), nil
	default:
		return nil, fmt.Errorf("unknown data source type: %s", sourceType)
	}
}

// NBAClient builds the statistics API client from the nba_api section
func (f *Factory) NBAClient() (*NBAClient, error) {
	cfg := f.config.NBAAPI
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("nba_api.api_key is required")
	}

	httpCfg := DefaultHTTPClientConfig()
	httpCfg.Timeout = f.config.NBAAPITimeout()
	httpCfg.MaxRetries = cfg.MaxRetries
	httpCfg.RateLimit = cfg.RateLimit

	httpClient := NewRateLimitedHTTPClient(nbaSourceName, httpCfg, f.entry(nbaSourceName))
	return NewNBAClient(httpClient, cfg.BaseURL, cfg.Host, cfg.APIKey, f.config.NBAAPICacheTTL(), f.fetchLogger(nbaSourceName)), nil
}

// PrizePicksClient builds the projections client from the prize_picks section
func (f *Factory) PrizePicksClient() *PrizePicksClient {
	cfg := f.config.PrizePicks
	httpClient := NewRateLimitedHTTPClient(prizePicksSourceName, DefaultHTTPClientConfig(), f.entry(prizePicksSourceName))
	return NewPrizePicksClient(httpClient, cfg.BaseURL, cfg.LeagueID, cfg.PerPage, cfg.OddsType, f.fetchLogger(prizePicksSourceName))
}

func (f *Factory) entry(source string) *logrus.Entry {
	if f.logger == nil {
		return nil
	}
	return f.logger.WithField("source", source)
}

func (f *Factory) fetchLogger(source string) *logger.FetchLogger {
	if f.logger == nil {
		return nil
	}
	return logger.NewFetchLogger(f.logger, source)
}
