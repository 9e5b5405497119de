package models

import (
	"strings"
	"time"
)

// Odds types published by the projections feed
const (
	OddsTypeGoblin   = "goblin"
	OddsTypeStandard = "standard"
	OddsTypeDemon    = "demon"
)

// PropLine is a wagering proposition on a player's stat exceeding Line
type PropLine struct {
	ProjectionID string     `db:"projection_id" json:"projection_id" validate:"required"`
	PlayerName   string     `db:"player_name" json:"player_name" validate:"required"`
	StatType     string     `db:"stat_type" json:"stat_type" validate:"required"`
	Line         float64    `db:"line_score" json:"line_score" validate:"gte=0"`
	OddsType     string     `db:"odds_type" json:"odds_type,omitempty"`
	StartTime    *time.Time `db:"start_time" json:"start_time,omitempty"`
	EndTime      *time.Time `db:"end_time" json:"end_time,omitempty"`
	Team         string     `db:"team" json:"team,omitempty"`
	Position     string     `db:"position" json:"position,omitempty"`
}

// IsGoblin checks if the prop is the discounted goblin variant
func (p *PropLine) IsGoblin() bool {
	return strings.EqualFold(p.OddsType, OddsTypeGoblin)
}

// StartsOn reports whether the prop's game starts on the given calendar day (UTC)
func (p *PropLine) StartsOn(day time.Time) bool {
	if p.StartTime == nil {
		return false
	}
	y1, m1, d1 := p.StartTime.UTC().Date()
	y2, m2, d2 := day.UTC().Date()
	return y1 == y2 && m1 == m2 && d1 == d2
}
