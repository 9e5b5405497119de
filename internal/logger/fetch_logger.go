package logger

import (
	"time"

	"github.com/sirupsen/logrus"
)

// FetchLogger provides dedicated logging for data acquisition.
type FetchLogger struct {
	*logrus.Entry
}

// NewFetchLogger creates a new fetch logger for a named source.
func NewFetchLogger(baseLogger *logrus.Logger, source string) *FetchLogger {
	return &FetchLogger{
		Entry: baseLogger.WithFields(logrus.Fields{
			"component": "fetch",
			"source":    source,
		}),
	}
}

// LogRequest logs a single upstream request.
func (fl *FetchLogger) LogRequest(endpoint string, cacheHit bool, latency time.Duration) {
	fl.WithFields(logrus.Fields{
		"endpoint":   endpoint,
		"cache_hit":  cacheHit,
		"latency_ms": latency.Milliseconds(),
	}).Debug("Upstream request completed")
}

// LogFetchCompleted logs a finished fetch with the number of records obtained.
func (fl *FetchLogger) LogFetchCompleted(kind string, records int, duration time.Duration) {
	fl.WithFields(logrus.Fields{
		"kind":        kind,
		"records":     records,
		"duration_ms": duration.Milliseconds(),
	}).Info("Fetch completed")
}

// LogFetchFailure logs a per-item failure that did not abort the fetch.
func (fl *FetchLogger) LogFetchFailure(kind string, itemID interface{}, err error) {
	fl.WithFields(logrus.Fields{
		"kind":    kind,
		"item_id": itemID,
	}).WithError(err).Warn("Fetch item failed")
}
