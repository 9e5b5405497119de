package datasource

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/yourusername/prop-analyzer/internal/models"
)

// FlexNumber is a numeric JSON field that upstream feeds send as a number, a
// numeric string or null. Null, empty and unparseable values decode as absent.
type FlexNumber struct {
	Value float64
	Valid bool
}

// Number wraps a known value
func Number(v float64) FlexNumber {
	return FlexNumber{Value: v, Valid: true}
}

// Float returns the value, zero when absent
func (n FlexNumber) Float() float64 {
	if !n.Valid {
		return 0
	}
	return n.Value
}

// Int returns the value truncated to an int, zero when absent
func (n FlexNumber) Int() int {
	return int(n.Float())
}

// MarshalJSON encodes absent values as null
func (n FlexNumber) MarshalJSON() ([]byte, error) {
	if !n.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(n.Value)
}

// UnmarshalJSON implements json.Unmarshaler
func (n *FlexNumber) UnmarshalJSON(data []byte) error {
	var raw interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	*n = FlexNumber{}
	switch v := raw.(type) {
	case float64:
		*n = Number(v)
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err == nil && !math.IsNaN(f) && !math.IsInf(f, 0) {
			*n = Number(f)
		}
	}
	return nil
}

// RawPlayerStat is one row of the statistics API's players/statistics
// response. Stat files on disk hold arrays of these rows.
type RawPlayerStat struct {
	Player struct {
		ID        FlexNumber `json:"id"`
		Firstname string     `json:"firstname"`
		Lastname  string     `json:"lastname"`
	} `json:"player"`
	Team struct {
		ID   FlexNumber `json:"id"`
		Name string     `json:"name,omitempty"`
		Code string     `json:"code"`
	} `json:"team"`
	Game struct {
		ID FlexNumber `json:"id"`
	} `json:"game"`
	Season    int            `json:"season,omitempty"`
	Min       models.Minutes `json:"min"`
	Points    FlexNumber     `json:"points"`
	TotReb    FlexNumber     `json:"totReb"`
	Assists   FlexNumber     `json:"assists"`
	Blocks    FlexNumber     `json:"blocks"`
	Steals    FlexNumber     `json:"steals"`
	Turnovers FlexNumber     `json:"turnovers"`
	TPM       FlexNumber     `json:"tpm"`
}

// Record converts the row into a typed record. Validation happens when the
// record enters a stats store.
func (r *RawPlayerStat) Record() models.GameStatRecord {
	return models.GameStatRecord{
		PlayerID:   r.Player.ID.Int(),
		FirstName:  strings.TrimSpace(r.Player.Firstname),
		LastName:   strings.TrimSpace(r.Player.Lastname),
		TeamID:     r.Team.ID.Int(),
		TeamCode:   r.Team.Code,
		GameID:     r.Game.ID.Int(),
		Season:     r.Season,
		Minutes:    r.Min,
		Points:     r.Points.Float(),
		Rebounds:   r.TotReb.Float(),
		Assists:    r.Assists.Float(),
		Blocks:     r.Blocks.Float(),
		Steals:     r.Steals.Float(),
		Turnovers:  r.Turnovers.Float(),
		ThreesMade: r.TPM.Float(),
	}
}

// Records converts a batch of rows
func Records(rows []RawPlayerStat) []models.GameStatRecord {
	out := make([]models.GameStatRecord, len(rows))
	for i := range rows {
		out[i] = rows[i].Record()
	}
	return out
}

// RawProp is a prop line as written to the props file
type RawProp struct {
	ProjectionID string        `json:"projection_id"`
	LineScore    FlexNumber    `json:"line_score"`
	StatType     string        `json:"stat_type"`
	OddsType     string        `json:"odds_type,omitempty"`
	Description  string        `json:"description,omitempty"`
	StartTime    string        `json:"start_time,omitempty"`
	EndTime      string        `json:"end_time,omitempty"`
	Player       RawPropPlayer `json:"player"`
}

// RawPropPlayer is the player block of a prop
type RawPropPlayer struct {
	ID          string `json:"id,omitempty"`
	Name        string `json:"name"`
	DisplayName string `json:"display_name,omitempty"`
	Position    string `json:"position,omitempty"`
	Team        string `json:"team,omitempty"`
	TeamName    string `json:"team_name,omitempty"`
}

// PropLine converts the raw prop into a typed prop line. Unparseable
// timestamps are dropped.
func (p *RawProp) PropLine() models.PropLine {
	name := p.Player.Name
	if name == "" {
		name = p.Player.DisplayName
	}
	return models.PropLine{
		ProjectionID: p.ProjectionID,
		PlayerName:   name,
		StatType:     p.StatType,
		Line:         p.LineScore.Float(),
		OddsType:     p.OddsType,
		StartTime:    parseTimestamp(p.StartTime),
		EndTime:      parseTimestamp(p.EndTime),
		Team:         p.Player.Team,
		Position:     p.Player.Position,
	}
}

// PropLines converts a batch of raw props
func PropLines(props []RawProp) []models.PropLine {
	out := make([]models.PropLine, len(props))
	for i := range props {
		out[i] = props[i].PropLine()
	}
	return out
}

func parseTimestamp(raw string) *time.Time {
	if raw == "" {
		return nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return nil
	}
	return &t
}
