package models

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// Minutes is an optional playing-time value. The zero value is absent.
type Minutes struct {
	value   float64
	present bool
}

// MinutesOf wraps a known minutes value
func MinutesOf(v float64) Minutes {
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return Minutes{}
	}
	return Minutes{value: v, present: true}
}

// ParseMinutes parses a box score minutes string. "MM:SS", "MM" and decimal
// forms are accepted; empty strings, "-" and "--" placeholders and anything
// unparseable yield an absent value.
func ParseMinutes(raw string) Minutes {
	raw = strings.TrimSpace(raw)
	switch raw {
	case "", "-", "--":
		return Minutes{}
	}

	if strings.Contains(raw, ":") {
		parts := strings.SplitN(raw, ":", 2)
		mins, err := strconv.Atoi(strings.TrimSpace(parts[0]))
		if err != nil {
			return Minutes{}
		}
		secs, err := strconv.Atoi(strings.TrimSpace(parts[1]))
		if err != nil || secs < 0 || secs >= 60 {
			return Minutes{}
		}
		return MinutesOf(float64(mins) + float64(secs)/60.0)
	}

	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return Minutes{}
	}
	return MinutesOf(f)
}

// Value returns the minutes and whether they are present
func (m Minutes) Value() (float64, bool) {
	return m.value, m.present
}

// Float returns the minutes, zero when absent
func (m Minutes) Float() float64 {
	return m.value
}

// Present reports whether minutes were recorded at all
func (m Minutes) Present() bool {
	return m.present
}

// Played is the did-not-play rule: a game only counts toward any aggregate
// when minutes are present and strictly positive.
func (m Minutes) Played() bool {
	return m.present && m.value > 0
}

// MarshalJSON encodes absent minutes as null
func (m Minutes) MarshalJSON() ([]byte, error) {
	if !m.present {
		return []byte("null"), nil
	}
	return json.Marshal(m.value)
}

// UnmarshalJSON accepts null, a number or any string ParseMinutes understands
func (m *Minutes) UnmarshalJSON(data []byte) error {
	var raw interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	switch v := raw.(type) {
	case nil:
		*m = Minutes{}
	case float64:
		*m = MinutesOf(v)
	case string:
		*m = ParseMinutes(v)
	default:
		*m = Minutes{}
	}
	return nil
}

// GameStatRecord is one player's box score line for one game.
// Identity is (PlayerID, GameID). Either name part may be empty, but not both.
type GameStatRecord struct {
	PlayerID   int     `db:"player_id" json:"player_id" validate:"required,gt=0"`
	FirstName  string  `db:"first_name" json:"first_name"`
	LastName   string  `db:"last_name" json:"last_name"`
	TeamID     int     `db:"team_id" json:"team_id"`
	TeamCode   string  `db:"team_code" json:"team_code"`
	GameID     int     `db:"game_id" json:"game_id" validate:"required,gt=0"`
	Season     int     `db:"season" json:"season"`
	Minutes    Minutes `db:"minutes" json:"minutes"`
	Points     float64 `db:"points" json:"points" validate:"gte=0"`
	Rebounds   float64 `db:"rebounds" json:"rebounds" validate:"gte=0"`
	Assists    float64 `db:"assists" json:"assists" validate:"gte=0"`
	Blocks     float64 `db:"blocks" json:"blocks" validate:"gte=0"`
	Steals     float64 `db:"steals" json:"steals" validate:"gte=0"`
	Turnovers  float64 `db:"turnovers" json:"turnovers" validate:"gte=0"`
	ThreesMade float64 `db:"threes_made" json:"threes_made" validate:"gte=0"`
}

// FullName is the exact first + " " + last concatenation used for prop matching
func (r *GameStatRecord) FullName() string {
	return strings.TrimSpace(r.FirstName + " " + r.LastName)
}

// Field returns a single box score column
func (r *GameStatRecord) Field(f StatField) float64 {
	switch f {
	case FieldPoints:
		return r.Points
	case FieldRebounds:
		return r.Rebounds
	case FieldAssists:
		return r.Assists
	case FieldBlocks:
		return r.Blocks
	case FieldSteals:
		return r.Steals
	case FieldTurnovers:
		return r.Turnovers
	case FieldThreesMade:
		return r.ThreesMade
	default:
		return 0
	}
}

// Value returns the stat value for a (possibly composite) stat type
func (r *GameStatRecord) Value(st StatType) float64 {
	total := 0.0
	for _, f := range st.Fields() {
		total += r.Field(f)
	}
	return total
}
