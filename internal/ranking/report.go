package ranking

import (
	"fmt"
	"math"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/yourusername/prop-analyzer/internal/datasource"
	"github.com/yourusername/prop-analyzer/internal/models"
)

// Output precision
const (
	thresholdPlaces   = 1
	probabilityPlaces = 3
)

// Prediction is the per-prop record of a classifier run
type Prediction struct {
	Player      string            `json:"player"`
	StatType    models.StatType   `json:"stat_type"`
	Line        float64           `json:"line"`
	Probability float64           `json:"probability"`
	ModelInfo   *models.ModelInfo `json:"model_info,omitempty"`
}

// Rounded returns a copy of the report with thresholds and probabilities
// rounded for output. The estimates themselves are never rounded.
func (r *Report) Rounded() *Report {
	out := &Report{
		Run:     r.Run,
		Props:   make([]models.AnalyzedProp, len(r.Props)),
		Skipped: make([]models.Skip, len(r.Skipped)),
	}
	copy(out.Skipped, r.Skipped)
	for i, ap := range r.Props {
		ap.ProbabilityOverLine = round(ap.ProbabilityOverLine, probabilityPlaces)
		ap.KeyProbabilities = roundPoints(ap.KeyProbabilities)
		ap.ProbabilityTable = roundPoints(ap.ProbabilityTable)
		if ap.ModelInfo != nil {
			info := *ap.ModelInfo
			info.Accuracy = round(info.Accuracy, probabilityPlaces)
			ap.ModelInfo = &info
		}
		out.Props[i] = ap
	}
	return out
}

// Predictions flattens the ranked props into classifier predictions
func (r *Report) Predictions() []Prediction {
	preds := make([]Prediction, len(r.Props))
	for i, ap := range r.Props {
		preds[i] = Prediction{
			Player:      ap.Prop.PlayerName,
			StatType:    ap.StatType,
			Line:        ap.Prop.Line,
			Probability: round(ap.ProbabilityOverLine, probabilityPlaces),
			ModelInfo:   ap.ModelInfo,
		}
	}
	return preds
}

// WriteJSON writes the rounded report to path
func (r *Report) WriteJSON(path string) error {
	return datasource.WriteJSON(path, r.Rounded())
}

// WritePredictions writes the classifier predictions to path
func (r *Report) WritePredictions(path string) error {
	return datasource.WriteJSON(path, r.Predictions())
}

// ConsoleReport formats the ranked props for terminal output. limit <= 0
// prints every prop.
func (r *Report) ConsoleReport(limit int) string {
	var builder strings.Builder
	builder.WriteString("Prop Analysis Results\n")
	builder.WriteString("=====================\n")

	props := r.Props
	if limit > 0 && limit < len(props) {
		props = props[:limit]
	}
	for _, ap := range props {
		builder.WriteString(fmt.Sprintf("\n%s - %s %s\n", ap.Prop.PlayerName, ap.Prop.StatType, formatLine(ap.Prop.Line)))
		builder.WriteString(fmt.Sprintf("Probability over line: %.1f%%\n", ap.ProbabilityOverLine*100))
		builder.WriteString(fmt.Sprintf("Recent hit rate: %.1f%%\n", ap.Analysis.RecentHitRate*100))
		builder.WriteString(fmt.Sprintf("Season hit rate: %.1f%%\n", ap.Analysis.HitRate*100))
	}

	builder.WriteString(fmt.Sprintf("\nRanked %d of %d props (%d skipped)\n",
		r.Run.PropsRanked, r.Run.PropsInput, r.Run.PropsSkipped))
	return builder.String()
}

// TableReport formats a probability table for terminal output
func TableReport(player string, st models.StatType, points []models.ProbabilityPoint) string {
	var builder strings.Builder
	builder.WriteString(fmt.Sprintf("%s - %s\n", player, st))
	builder.WriteString("Threshold  P(over)\n")
	for _, pt := range roundPoints(points) {
		builder.WriteString(fmt.Sprintf("%9s  %.3f\n", formatLine(pt.Threshold), pt.Probability))
	}
	return builder.String()
}

func roundPoints(points []models.ProbabilityPoint) []models.ProbabilityPoint {
	if points == nil {
		return nil
	}
	out := make([]models.ProbabilityPoint, len(points))
	for i, pt := range points {
		out[i] = models.ProbabilityPoint{
			Threshold:   round(pt.Threshold, thresholdPlaces),
			Probability: round(pt.Probability, probabilityPlaces),
		}
	}
	return out
}

func round(v float64, places int32) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return v
	}
	f, _ := decimal.NewFromFloat(v).Round(places).Float64()
	return f
}

func formatLine(v float64) string {
	return decimal.NewFromFloat(v).Round(thresholdPlaces).String()
}
