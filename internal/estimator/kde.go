package estimator

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/yourusername/prop-analyzer/internal/models"
)

const (
	// DefaultRecencyWindow is the number of most recent games given exponential weight
	DefaultRecencyWindow = 20
	// MinKDEGames is the fewest played games a density fit accepts
	MinKDEGames = 10

	recencyFloor     = 0.1
	upperBoundFactor = 1.5
)

// KDEModel is a weighted Gaussian kernel density over a player's stat values
type KDEModel struct {
	values    []float64
	weights   []float64
	bandwidth float64
	max       float64
	upper     float64
}

// FitKDE fits a density over chronological values. Only games with positive
// minutes take part; fewer than MinKDEGames of them yields ErrInsufficientData.
// A series without spread, or whose weights all vanish, yields ErrNumericalFit.
func FitKDE(values, minutes []float64, recencyWindow int) (*KDEModel, error) {
	if len(values) != len(minutes) {
		return nil, fmt.Errorf("%w: %d values but %d minutes", models.ErrInvalidRecord, len(values), len(minutes))
	}

	vals := make([]float64, 0, len(values))
	mins := make([]float64, 0, len(minutes))
	for i := range values {
		if minutes[i] > 0 && !math.IsInf(minutes[i], 0) && !math.IsNaN(values[i]) {
			vals = append(vals, values[i])
			mins = append(mins, minutes[i])
		}
	}
	if len(vals) < MinKDEGames {
		return nil, fmt.Errorf("%w: %d played games, need %d", models.ErrInsufficientData, len(vals), MinKDEGames)
	}

	weights, err := Weights(mins, recencyWindow)
	if err != nil {
		return nil, err
	}

	bandwidth, err := silvermanBandwidth(vals, weights)
	if err != nil {
		return nil, err
	}

	maxValue := floats.Max(vals)
	return &KDEModel{
		values:    vals,
		weights:   weights,
		bandwidth: bandwidth,
		max:       maxValue,
		upper:     upperBoundFactor * maxValue,
	}, nil
}

// Weights returns the normalized recency x minutes-similarity weight of each
// chronological game. The most recent game has reverse index 0; games inside
// the recency window decay as exp(-i/window), older ones get a flat 0.1.
func Weights(minutes []float64, recencyWindow int) ([]float64, error) {
	if len(minutes) == 0 {
		return nil, fmt.Errorf("%w: no games to weight", models.ErrInsufficientData)
	}
	if recencyWindow <= 0 {
		recencyWindow = DefaultRecencyWindow
	}

	meanMinutes := stat.Mean(minutes, nil)
	if !(meanMinutes > 0) {
		return nil, fmt.Errorf("%w: mean minutes %v", models.ErrNumericalFit, meanMinutes)
	}

	n := len(minutes)
	weights := make([]float64, n)
	for j, m := range minutes {
		i := n - 1 - j

		recency := recencyFloor
		if i < recencyWindow {
			recency = math.Exp(-float64(i) / float64(recencyWindow))
		}

		similarity := 1 - math.Abs(m-meanMinutes)/(2*meanMinutes)
		if similarity < 0 {
			similarity = 0
		}

		weights[j] = recency * similarity
	}

	total := floats.Sum(weights)
	if !(total > 0) || math.IsInf(total, 0) {
		return nil, fmt.Errorf("%w: weights sum to %v", models.ErrNumericalFit, total)
	}
	floats.Scale(1/total, weights)

	return weights, nil
}

// silvermanBandwidth applies h = sigma * (n_eff * 3/4)^(-1/5) with sigma the
// reliability-weighted standard deviation and n_eff = 1 / sum(w^2).
func silvermanBandwidth(values, weights []float64) (float64, error) {
	if floats.Max(values) == floats.Min(values) {
		return 0, fmt.Errorf("%w: zero spread in stat values", models.ErrNumericalFit)
	}

	mean := floats.Dot(weights, values)
	sumSq := floats.Dot(weights, weights)

	denom := 1 - sumSq
	if !(denom > 0) {
		return 0, fmt.Errorf("%w: weight mass concentrated on one game", models.ErrNumericalFit)
	}

	var ss float64
	for i, v := range values {
		d := v - mean
		ss += weights[i] * d * d
	}
	variance := ss / denom
	if !(variance > 0) || math.IsInf(variance, 0) {
		return 0, fmt.Errorf("%w: zero spread in stat values", models.ErrNumericalFit)
	}

	nEff := 1 / sumSq
	h := math.Sqrt(variance) * math.Pow(nEff*3/4, -0.2)
	if !(h > 0) || math.IsInf(h, 0) {
		return 0, fmt.Errorf("%w: bandwidth %v", models.ErrNumericalFit, h)
	}
	return h, nil
}

// ProbabilityOver integrates the density from x to 1.5 times the largest
// observed value. Thresholds beyond that bound give 0.
func (m *KDEModel) ProbabilityOver(x float64) float64 {
	if math.IsNaN(x) {
		return 0
	}

	var p float64
	for i, v := range m.values {
		hi := distuv.UnitNormal.CDF((m.upper - v) / m.bandwidth)
		lo := distuv.UnitNormal.CDF((x - v) / m.bandwidth)
		p += m.weights[i] * (hi - lo)
	}
	return clamp(p)
}

// Table sweeps thresholds from 0 to the largest observed value
func (m *KDEModel) Table(step float64) []models.ProbabilityPoint {
	return Table(m, m.max, step)
}

// Strategy implements Model
func (m *KDEModel) Strategy() models.Strategy {
	return models.StrategyKDE
}

// Weights returns a copy of the normalized sample weights
func (m *KDEModel) Weights() []float64 {
	out := make([]float64, len(m.weights))
	copy(out, m.weights)
	return out
}

// Bandwidth returns the kernel standard deviation
func (m *KDEModel) Bandwidth() float64 {
	return m.bandwidth
}

// Max returns the largest observed value
func (m *KDEModel) Max() float64 {
	return m.max
}

// UpperBound returns the integration limit used by ProbabilityOver
func (m *KDEModel) UpperBound() float64 {
	return m.upper
}

// N returns the number of games in the fit
func (m *KDEModel) N() int {
	return len(m.values)
}
