// Package features derives leakage-free rolling aggregates from a player's series.
package features

import (
	"gonum.org/v1/gonum/stat"

	"github.com/yourusername/prop-analyzer/internal/models"
	"github.com/yourusername/prop-analyzer/internal/stats"
)

// DefaultMovingWindow is the trailing window of the moving averages
const DefaultMovingWindow = 10

// Feature names in vector order
const (
	HistoricalAvgMinutes = "historical_avg_minutes"
	MovingAvgMinutes     = "moving_avg_minutes"
	HistoricalAvgStat    = "historical_avg_stat"
	MovingAvgStat        = "moving_avg_stat"
)

// Names lists the feature names in the order returned by Vector.Slice
var Names = []string{HistoricalAvgMinutes, MovingAvgMinutes, HistoricalAvgStat, MovingAvgStat}

// Vector holds the aggregates known before a game tips off
type Vector struct {
	HistoricalAvgMinutes float64 `json:"historical_avg_minutes"`
	MovingAvgMinutes     float64 `json:"moving_avg_minutes"`
	HistoricalAvgStat    float64 `json:"historical_avg_stat"`
	MovingAvgStat        float64 `json:"moving_avg_stat"`
}

// Slice returns the vector in Names order
func (v Vector) Slice() []float64 {
	return []float64{v.HistoricalAvgMinutes, v.MovingAvgMinutes, v.HistoricalAvgStat, v.MovingAvgStat}
}

// Row is one training example: the features before a game and its outcome
type Row struct {
	Player   string  `json:"player"`
	GameID   int     `json:"game_id"`
	Features Vector  `json:"features"`
	Target   float64 `json:"target"`
}

// Set is the per-game feature rows of one player plus the vector for the next game
type Set struct {
	Rows []Row
	Next Vector
}

// Build computes, for each played game, the expanding mean over all prior played
// games and the moving mean over the prior window games, for both the stat and
// minutes. The game itself never contributes to its own features.
func Build(ps *stats.PlayerStatSeries, st models.StatType, window int) Set {
	if window <= 0 {
		window = DefaultMovingWindow
	}

	played := ps.Played()
	values := make([]float64, len(played))
	minutes := make([]float64, len(played))
	for i := range played {
		values[i] = played[i].Value(st)
		minutes[i] = played[i].Minutes.Float()
	}

	set := Set{Rows: make([]Row, len(played))}
	for i := range played {
		set.Rows[i] = Row{
			Player:   ps.Name,
			GameID:   played[i].GameID,
			Features: vectorAt(values, minutes, i, window),
			Target:   values[i],
		}
	}
	set.Next = vectorAt(values, minutes, len(played), window)

	return set
}

// vectorAt aggregates over indices [0, i) only
func vectorAt(values, minutes []float64, i, window int) Vector {
	start := i - window
	if start < 0 {
		start = 0
	}
	return Vector{
		HistoricalAvgMinutes: mean(minutes[:i]),
		MovingAvgMinutes:     mean(minutes[start:i]),
		HistoricalAvgStat:    mean(values[:i]),
		MovingAvgStat:        mean(values[start:i]),
	}
}

// mean of no observations defaults to zero
func mean(x []float64) float64 {
	if len(x) == 0 {
		return 0
	}
	return stat.Mean(x, nil)
}

// Dataset concatenates the feature rows of every player in the store, in
// player name order
func Dataset(store *stats.Store, st models.StatType, window int) []Row {
	var rows []Row
	for _, name := range store.Players() {
		ps, err := store.Series(name)
		if err != nil {
			continue
		}
		rows = append(rows, Build(ps, st, window).Rows...)
	}
	return rows
}
