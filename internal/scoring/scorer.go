// Package scoring summarizes a player's played games against a prop line and
// folds the summary into a heuristic ranking score.
//
// The score is a ranking signal only. It is not a calibrated probability.
package scoring

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/yourusername/prop-analyzer/internal/models"
	"github.com/yourusername/prop-analyzer/internal/stats"
)

// RecentWindow is the number of latest games in the recent-form figures
const RecentWindow = 10

// Score weights
const (
	weightHitRate     = 0.4
	weightOverage     = 0.3
	weightConsistency = 0.2
	weightSampleSize  = 0.1

	overageScale    = 10.0
	fullSampleGames = 20.0
)

// Analyze computes the descriptive summary of a series against line over the
// games that pass the did-not-play rule.
func Analyze(ps *stats.PlayerStatSeries, st models.StatType, line float64) (models.AnalysisSummary, error) {
	values, minutes := ps.Values(st)
	return Summarize(values, minutes, line)
}

// Summarize is Analyze over already filtered, chronological values and minutes
func Summarize(values, minutes []float64, line float64) (models.AnalysisSummary, error) {
	if len(values) == 0 {
		return models.AnalysisSummary{}, fmt.Errorf("%w: no played games", models.ErrInsufficientData)
	}
	if len(values) != len(minutes) {
		return models.AnalysisSummary{}, fmt.Errorf("%w: %d values but %d minutes", models.ErrInvalidRecord, len(values), len(minutes))
	}

	s := models.AnalysisSummary{
		GamesPlayed: len(values),
		Overages:    []float64{},
		AvgValue:    stat.Mean(values, nil),
		AvgMinutes:  stat.Mean(minutes, nil),
	}

	for _, v := range values {
		if v > line {
			s.Overages = append(s.Overages, v-line)
		}
	}
	s.TimesAboveLine = len(s.Overages)
	s.HitRate = float64(s.TimesAboveLine) / float64(s.GamesPlayed)
	if len(s.Overages) > 0 {
		s.AvgOverage = stat.Mean(s.Overages, nil)
	}

	// sample standard deviation; undefined for a single game
	if len(minutes) > 1 {
		s.StdDevMinutes = stat.StdDev(minutes, nil)
	}

	start := len(values) - RecentWindow
	if start < 0 {
		start = 0
	}
	s.RecentValues = append([]float64(nil), values[start:]...)
	s.RecentGameCount = len(s.RecentValues)
	s.RecentAvg = stat.Mean(s.RecentValues, nil)
	recentHits := 0
	for _, v := range s.RecentValues {
		if v > line {
			recentHits++
		}
	}
	s.RecentHitRate = float64(recentHits) / float64(s.RecentGameCount)

	return s, nil
}

// Score combines hit rate, average overage, minutes consistency and sample
// size into a single value.
func Score(s models.AnalysisSummary) float64 {
	consistency := 1 / (1 + s.StdDevMinutes)
	sample := math.Min(float64(s.GamesPlayed)/fullSampleGames, 1)

	return weightHitRate*s.HitRate +
		weightOverage*(s.AvgOverage/overageScale) +
		weightConsistency*consistency +
		weightSampleSize*sample
}
