package datasource

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/prop-analyzer/internal/logger"
	"github.com/yourusername/prop-analyzer/internal/metrics"
)

const nbaSourceName = "nba_api"

// NBATeam is an entry of the teams endpoint
type NBATeam struct {
	ID           int    `json:"id"`
	Name         string `json:"name"`
	Code         string `json:"code"`
	NBAFranchise bool   `json:"nbaFranchise"`
	AllStar      bool   `json:"allStar"`
}

// NBAPlayer is an entry of the players endpoint
type NBAPlayer struct {
	ID        int    `json:"id"`
	Firstname string `json:"firstname"`
	Lastname  string `json:"lastname"`
}

// nbaEnvelope is the response wrapper every endpoint shares
type nbaEnvelope struct {
	Errors   json.RawMessage `json:"errors"`
	Results  int             `json:"results"`
	Response json.RawMessage `json:"response"`
}

// NBAClient implements StatsSource for the RapidAPI basketball statistics API
type NBAClient struct {
	httpClient *RateLimitedHTTPClient
	baseURL    string
	host       string
	apiKey     string
	cache      *gocache.Cache
	cacheTTL   time.Duration
	logger     *logger.FetchLogger
}

// NewNBAClient creates a new statistics API client. Responses are kept in
// memory for cacheTTL; a zero TTL disables the cache.
func NewNBAClient(httpClient *RateLimitedHTTPClient, baseURL, host, apiKey string, cacheTTL time.Duration, log *logger.FetchLogger) *NBAClient {
	if log == nil {
		log = discardFetchLogger(nbaSourceName)
	}
	c := &NBAClient{
		httpClient: httpClient,
		baseURL:    strings.TrimRight(baseURL, "/"),
		host:       host,
		apiKey:     apiKey,
		cacheTTL:   cacheTTL,
		logger:     log,
	}
	if cacheTTL > 0 {
		c.cache = gocache.New(cacheTTL, 2*cacheTTL)
	}
	return c
}

// Name returns the data source name
func (c *NBAClient) Name() string {
	return nbaSourceName
}

// Teams returns the real franchises of the standard league, East then West
func (c *NBAClient) Teams(ctx context.Context) ([]NBATeam, error) {
	var teams []NBATeam
	for _, conference := range []string{"East", "West"} {
		var page []NBATeam
		params := url.Values{"league": {"standard"}, "conference": {conference}}
		if err := c.get(ctx, "teams", params, &page); err != nil {
			return nil, err
		}
		for _, t := range page {
			if t.NBAFranchise && !t.AllStar {
				teams = append(teams, t)
			}
		}
	}
	return teams, nil
}

// Players returns a team's roster for a season
func (c *NBAClient) Players(ctx context.Context, teamID, season int) ([]NBAPlayer, error) {
	params := url.Values{"team": {strconv.Itoa(teamID)}}
	if season > 0 {
		params.Set("season", strconv.Itoa(season))
	}
	var players []NBAPlayer
	if err := c.get(ctx, "players", params, &players); err != nil {
		return nil, err
	}
	return players, nil
}

// PlayerStatistics returns one player's per-game rows for a season
func (c *NBAClient) PlayerStatistics(ctx context.Context, playerID, season int) ([]RawPlayerStat, error) {
	params := url.Values{"id": {strconv.Itoa(playerID)}}
	if season > 0 {
		params.Set("season", strconv.Itoa(season))
	}
	var rows []RawPlayerStat
	if err := c.get(ctx, "players/statistics", params, &rows); err != nil {
		return nil, err
	}
	for i := range rows {
		rows[i].Season = season
	}
	return rows, nil
}

// AllPlayers walks every franchise's roster. A team whose roster cannot be
// fetched is logged and skipped.
func (c *NBAClient) AllPlayers(ctx context.Context, season int) ([]NBAPlayer, error) {
	teams, err := c.Teams(ctx)
	if err != nil {
		return nil, err
	}

	var players []NBAPlayer
	for _, team := range teams {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		roster, err := c.Players(ctx, team.ID, season)
		if err != nil {
			c.logger.LogFetchFailure("roster", team.Name, err)
			continue
		}
		players = append(players, roster...)
	}
	return players, nil
}

// SeasonStats aggregates the rows of every rostered player for a season. A
// player whose statistics cannot be fetched is logged and skipped.
func (c *NBAClient) SeasonStats(ctx context.Context, season int) ([]RawPlayerStat, error) {
	start := time.Now()

	players, err := c.AllPlayers(ctx, season)
	if err != nil {
		return nil, err
	}
	c.logger.WithField("players", len(players)).Info("Fetching player statistics")

	seen := make(map[int]struct{}, len(players))
	var rows []RawPlayerStat
	for idx, player := range players {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		// traded players appear on more than one roster
		if _, ok := seen[player.ID]; ok {
			continue
		}
		seen[player.ID] = struct{}{}

		stats, err := c.PlayerStatistics(ctx, player.ID, season)
		if err != nil {
			c.logger.LogFetchFailure("player_statistics", player.Firstname+" "+player.Lastname, err)
			continue
		}
		rows = append(rows, stats...)

		if (idx+1)%50 == 0 {
			c.logger.WithField("processed", idx+1).Debug("Player statistics progress")
		}
	}

	metrics.RecordFetchedRecords(nbaSourceName, "game_stats", len(rows))
	c.logger.LogFetchCompleted("game_stats", len(rows), time.Since(start))
	return rows, nil
}

// get performs a cached GET and decodes the envelope's response array into out
func (c *NBAClient) get(ctx context.Context, endpoint string, params url.Values, out interface{}) error {
	// Encode sorts by key, giving a stable cache key
	key := endpoint + "?" + params.Encode()
	start := time.Now()

	if c.cache != nil {
		if cached, ok := c.cache.Get(key); ok {
			metrics.RecordFetchRequest(nbaSourceName, "cached", 0)
			c.logger.LogRequest(endpoint, true, time.Since(start))
			return decodeEnvelope(cached.([]byte), out)
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/"+key, nil)
	if err != nil {
		return NewDataSourceError(nbaSourceName, ErrCodeNetworkError, "failed to create request", err)
	}
	req.Header.Set("x-rapidapi-host", c.host)
	req.Header.Set("x-rapidapi-key", c.apiKey)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(ctx, req)
	if err != nil {
		var dsErr *DataSourceError
		if errors.As(err, &dsErr) {
			return dsErr
		}
		return NewDataSourceError(nbaSourceName, ErrCodeNetworkError, "request to "+endpoint+" failed", err)
	}
	defer resp.Body.Close()

	if err := checkStatus(nbaSourceName, resp); err != nil {
		return err
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return NewDataSourceError(nbaSourceName, ErrCodeNetworkError, "failed to read response", err)
	}
	if err := decodeEnvelope(body, out); err != nil {
		return err
	}

	if c.cache != nil {
		c.cache.Set(key, body, c.cacheTTL)
	}
	c.logger.LogRequest(endpoint, false, time.Since(start))
	return nil
}

func decodeEnvelope(body []byte, out interface{}) error {
	var env nbaEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		return NewDataSourceError(nbaSourceName, ErrCodeInvalidData, "failed to parse response", err)
	}
	if len(env.Response) == 0 || string(env.Response) == "null" {
		return NewDataSourceError(nbaSourceName, ErrCodeInvalidData, "response field missing", nil)
	}
	if err := json.Unmarshal(env.Response, out); err != nil {
		return NewDataSourceError(nbaSourceName, ErrCodeInvalidData, "unexpected response shape", err)
	}
	return nil
}

// checkStatus maps non-success statuses onto DataSourceError codes
func checkStatus(source string, resp *http.Response) error {
	switch {
	case resp.StatusCode == http.StatusOK:
		return nil
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return NewDataSourceError(source, ErrCodeAuthenticationFailed, "invalid API key", nil)
	case resp.StatusCode == http.StatusNotFound:
		return NewDataSourceError(source, ErrCodeNotFound, "resource not found", nil)
	case resp.StatusCode == http.StatusTooManyRequests:
		return NewDataSourceError(source, ErrCodeRateLimitExceeded, "rate limit exceeded", nil)
	case resp.StatusCode >= 500:
		return NewDataSourceError(source, ErrCodeServerError, fmt.Sprintf("unexpected status %d", resp.StatusCode), nil)
	default:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return NewDataSourceError(source, ErrCodeUnknown, fmt.Sprintf("unexpected status %d: %s", resp.StatusCode, string(body)), nil)
	}
}

func discardFetchLogger(source string) *logger.FetchLogger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return logger.NewFetchLogger(l, source)
}
