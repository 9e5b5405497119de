package datasource

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/yourusername/prop-analyzer/internal/logger"
	"github.com/yourusername/prop-analyzer/internal/metrics"
)

const prizePicksSourceName = "prize_picks"

// projectionsResponse is the JSON:API document of the projections endpoint
type projectionsResponse struct {
	Data     []projectionResource `json:"data"`
	Included []includedResource   `json:"included"`
}

type projectionResource struct {
	ID         string `json:"id"`
	Type       string `json:"type"`
	Attributes struct {
		LineScore   FlexNumber `json:"line_score"`
		StatType    string     `json:"stat_type"`
		OddsType    string     `json:"odds_type"`
		Description string     `json:"description"`
		StartTime   string     `json:"start_time"`
		EndTime     string     `json:"end_time"`
	} `json:"attributes"`
	Relationships struct {
		NewPlayer struct {
			Data *struct {
				ID   string `json:"id"`
				Type string `json:"type"`
			} `json:"data"`
		} `json:"new_player"`
	} `json:"relationships"`
}

type includedResource struct {
	ID         string          `json:"id"`
	Type       string          `json:"type"`
	Attributes json.RawMessage `json:"attributes"`
}

type newPlayerAttributes struct {
	Name        string `json:"name"`
	DisplayName string `json:"display_name"`
	Position    string `json:"position"`
	Team        string `json:"team"`
	TeamName    string `json:"team_name"`
}

// PrizePicksClient implements PropsSource for the projections API
type PrizePicksClient struct {
	httpClient *RateLimitedHTTPClient
	baseURL    string
	leagueID   int
	perPage    int
	oddsType   string
	deviceID   string
	logger     *logger.FetchLogger
}

// NewPrizePicksClient creates a projections client. Only props whose odds
// type equals oddsType are kept; an empty oddsType keeps all of them.
func NewPrizePicksClient(httpClient *RateLimitedHTTPClient, baseURL string, leagueID, perPage int, oddsType string, log *logger.FetchLogger) *PrizePicksClient {
	if log == nil {
		log = discardFetchLogger(prizePicksSourceName)
	}
	return &PrizePicksClient{
		httpClient: httpClient,
		baseURL:    strings.TrimRight(baseURL, "/"),
		leagueID:   leagueID,
		perPage:    perPage,
		oddsType:   oddsType,
		deviceID:   uuid.NewString(),
		logger:     log,
	}
}

// Name returns the data source name
func (c *PrizePicksClient) Name() string {
	return prizePicksSourceName
}

// FetchProps retrieves the current projections. date, when non-empty, is a
// YYYY-MM-DD game date passed upstream and applied to start times.
func (c *PrizePicksClient) FetchProps(ctx context.Context, date string) ([]RawProp, error) {
	start := time.Now()

	params := url.Values{
		"league_id":   {strconv.Itoa(c.leagueID)},
		"per_page":    {strconv.Itoa(c.perPage)},
		"single_stat": {"true"},
		"game_mode":   {"pickem"},
	}
	if date != "" {
		params.Set("date", date)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/projections?"+params.Encode(), nil)
	if err != nil {
		return nil, NewDataSourceError(prizePicksSourceName, ErrCodeNetworkError, "failed to create request", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Device-ID", c.deviceID)

	resp, err := c.httpClient.Do(ctx, req)
	if err != nil {
		var dsErr *DataSourceError
		if errors.As(err, &dsErr) {
			return nil, dsErr
		}
		return nil, NewDataSourceError(prizePicksSourceName, ErrCodeNetworkError, "failed to fetch projections", err)
	}
	defer resp.Body.Close()

	if err := checkStatus(prizePicksSourceName, resp); err != nil {
		return nil, err
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, NewDataSourceError(prizePicksSourceName, ErrCodeNetworkError, "failed to read response", err)
	}
	c.logger.LogRequest("projections", false, time.Since(start))

	props, err := ParseProjections(body, c.oddsType, date)
	if err != nil {
		return nil, err
	}

	metrics.RecordFetchedRecords(prizePicksSourceName, "props", len(props))
	c.logger.LogFetchCompleted("props", len(props), time.Since(start))
	return props, nil
}

// ParseProjections flattens a projections document into props, joining each
// projection with its included new_player resource. Projections whose odds
// type differs from oddsType, whose start date differs from date, or that
// reference no player are dropped.
func ParseProjections(body []byte, oddsType, date string) ([]RawProp, error) {
	var doc projectionsResponse
	if err := json.Unmarshal(body, &doc); err != nil {
		return nil, NewDataSourceError(prizePicksSourceName, ErrCodeInvalidData, "failed to parse projections", err)
	}

	players := make(map[string]newPlayerAttributes)
	for _, inc := range doc.Included {
		if inc.Type != "new_player" {
			continue
		}
		var attrs newPlayerAttributes
		if err := json.Unmarshal(inc.Attributes, &attrs); err != nil {
			continue
		}
		players[inc.ID] = attrs
	}

	props := make([]RawProp, 0, len(doc.Data))
	for _, proj := range doc.Data {
		attrs := proj.Attributes
		if oddsType != "" && attrs.OddsType != oddsType {
			continue
		}
		if date != "" && !startsOnDate(attrs.StartTime, date) {
			continue
		}
		ref := proj.Relationships.NewPlayer.Data
		if ref == nil || ref.ID == "" {
			continue
		}

		player := players[ref.ID]
		props = append(props, RawProp{
			ProjectionID: proj.ID,
			LineScore:    attrs.LineScore,
			StatType:     attrs.StatType,
			OddsType:     attrs.OddsType,
			Description:  attrs.Description,
			StartTime:    attrs.StartTime,
			EndTime:      attrs.EndTime,
			Player: RawPropPlayer{
				ID:          ref.ID,
				Name:        player.Name,
				DisplayName: player.DisplayName,
				Position:    player.Position,
				Team:        player.Team,
				TeamName:    player.TeamName,
			},
		})
	}
	return props, nil
}

// startsOnDate compares the calendar date of an RFC 3339 timestamp, in its own
// offset, against a YYYY-MM-DD string
func startsOnDate(startTime, date string) bool {
	t, err := time.Parse(time.RFC3339, startTime)
	if err != nil {
		return false
	}
	return t.Format("2006-01-02") == date
}
