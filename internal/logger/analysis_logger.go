package logger

import (
	"time"

	"github.com/sirupsen/logrus"
)

// AnalysisLogger provides dedicated logging for prop analysis runs.
type AnalysisLogger struct {
	*logrus.Entry
}

// NewAnalysisLogger creates a new analysis logger.
func NewAnalysisLogger(baseLogger *logrus.Logger) *AnalysisLogger {
	return &AnalysisLogger{
		Entry: baseLogger.WithField("component", "analysis"),
	}
}

// LogPropAnalyzed logs a prop that produced an analysis.
func (al *AnalysisLogger) LogPropAnalyzed(player, statType string, line, probability, score float64, gamesPlayed int) {
	al.WithFields(logrus.Fields{
		"player":       player,
		"stat_type":    statType,
		"line":         line,
		"probability":  probability,
		"score":        score,
		"games_played": gamesPlayed,
	}).Debug("Prop analyzed")
}

// LogPropSkipped logs a prop excluded from the report.
func (al *AnalysisLogger) LogPropSkipped(player, statType string, line float64, reason string, err error) {
	entry := al.WithFields(logrus.Fields{
		"player":    player,
		"stat_type": statType,
		"line":      line,
		"reason":    reason,
	})
	if err != nil {
		entry = entry.WithError(err)
	}
	entry.Info("Prop skipped")
}

// LogModelFitted logs a fitted distribution model.
func (al *AnalysisLogger) LogModelFitted(key, strategy string, cacheHit bool, duration time.Duration) {
	al.WithFields(logrus.Fields{
		"model_key":   key,
		"strategy":    strategy,
		"cache_hit":   cacheHit,
		"duration_ms": float64(duration.Microseconds()) / 1000,
	}).Debug("Model ready")
}

// LogRunCompleted logs the outcome of a pipeline run.
func (al *AnalysisLogger) LogRunCompleted(runID string, propsIn, ranked, skipped int, duration time.Duration) {
	al.WithFields(logrus.Fields{
		"run_id":      runID,
		"props_input": propsIn,
		"ranked":      ranked,
		"skipped":     skipped,
		"duration_ms": duration.Milliseconds(),
	}).Info("Analysis run completed")
}
