// Package estimator fits survival models P(stat > x) over a player's history.
//
// Two strategies are provided. The kernel density strategy fits one weighted
// density per (player, stat) and answers any threshold from that fit. The
// logistic strategy trains one classifier per (stat, threshold) over every
// player's engineered features and answers for a single player's next game.
// Fitted models are immutable and safe for concurrent use.
package estimator

import (
	"math"

	"github.com/yourusername/prop-analyzer/internal/models"
)

// DefaultTableStep is the threshold increment of probability tables
const DefaultTableStep = 0.5

// Model answers survival queries for one (player, stat) pair
type Model interface {
	// ProbabilityOver returns P(stat > x), always within [0, 1]
	ProbabilityOver(x float64) float64
	Strategy() models.Strategy
}

// Table sweeps thresholds k*step for k = 0, 1, ... while the threshold does
// not exceed maxValue, pairing each with m.ProbabilityOver.
func Table(m Model, maxValue, step float64) []models.ProbabilityPoint {
	if step <= 0 {
		step = DefaultTableStep
	}
	if math.IsNaN(maxValue) || maxValue < 0 {
		return nil
	}

	var points []models.ProbabilityPoint
	for k := 0; ; k++ {
		threshold := float64(k) * step
		if threshold > maxValue {
			break
		}
		points = append(points, models.ProbabilityPoint{
			Threshold:   threshold,
			Probability: m.ProbabilityOver(threshold),
		})
	}
	return points
}

// KeyThresholds returns the line and its -5/-2/+2/+5 neighbours in ascending order
func KeyThresholds(line float64) []float64 {
	return []float64{line - 5, line - 2, line, line + 2, line + 5}
}

// KeyProbabilities evaluates m at the key thresholds around line
func KeyProbabilities(m Model, line float64) []models.ProbabilityPoint {
	thresholds := KeyThresholds(line)
	points := make([]models.ProbabilityPoint, len(thresholds))
	for i, x := range thresholds {
		points[i] = models.ProbabilityPoint{Threshold: x, Probability: m.ProbabilityOver(x)}
	}
	return points
}

// clamp maps p into [0, 1]; non-finite input becomes 0
func clamp(p float64) float64 {
	switch {
	case math.IsNaN(p) || math.IsInf(p, 0):
		return 0
	case p < 0:
		return 0
	case p > 1:
		return 1
	default:
		return p
	}
}
