// Package logger provides a wrapper around logrus for structured logging.
package logger

import (
	"os"

	"github.com/sirupsen/logrus"
)

// NewLogger creates a new configured logger instance
func NewLogger(logLevel, format string) *logrus.Logger {
	logger := logrus.New()

	logger.SetOutput(os.Stdout)

	level, err := logrus.ParseLevel(logLevel)
	if err != nil {
		logger.Warnf("Invalid log level '%s', defaulting to info", logLevel)
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)

	// JSON for production or when asked for explicitly
	if format == "json" || os.Getenv("ENVIRONMENT") == "production" {
		logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{
			FullTimestamp: true,
		})
	}

	return logger
}

// WithVerbosity derives a logger sharing base's output, formatter and hooks
// but logging at its own level. Changing it never affects base.
func WithVerbosity(base *logrus.Logger, level logrus.Level) *logrus.Logger {
	return &logrus.Logger{
		Out:          base.Out,
		Formatter:    base.Formatter,
		Hooks:        base.Hooks,
		ReportCaller: base.ReportCaller,
		ExitFunc:     base.ExitFunc,
		Level:        level,
	}
}
