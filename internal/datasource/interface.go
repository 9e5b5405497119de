// Package datasource fetches historical box scores and current prop lines
// from upstream providers and moves them to and from JSON files.
package datasource

import (
	"context"
	"errors"
)

// StatsSource provides historical per-game player statistics
type StatsSource interface {
	// SeasonStats retrieves every player's box score rows for a season
	SeasonStats(ctx context.Context, season int) ([]RawPlayerStat, error)

	// Name returns the name of the data source
	Name() string
}

// PropsSource provides current prop lines
type PropsSource interface {
	// FetchProps retrieves props, optionally restricted to a YYYY-MM-DD game date
	FetchProps(ctx context.Context, date string) ([]RawProp, error)

	// Name returns the name of the data source
	Name() string
}

// DataSourceError represents errors from data source operations
type DataSourceError struct {
	Source  string // Data source name
	Code    string // Error code (e.g., "rate_limit_exceeded")
	Message string // Error message
	Err     error  // Underlying error
}

func (e *DataSourceError) Error() string {
	if e.Err != nil {
		return e.Source + ": " + e.Code + ": " + e.Message + " (" + e.Err.Error() + ")"
	}
	return e.Source + ": " + e.Code + ": " + e.Message
}

// Unwrap returns the underlying error
func (e *DataSourceError) Unwrap() error {
	return e.Err
}

// Is matches the sentinel that corresponds to Code
func (e *DataSourceError) Is(target error) bool {
	sentinel := sentinelFor(e.Code)
	return sentinel != nil && target == sentinel
}

// Common error codes
const (
	ErrCodeRateLimitExceeded    = "rate_limit_exceeded"
	ErrCodeAuthenticationFailed = "authentication_failed"
	ErrCodeNotFound             = "not_found"
	ErrCodeInvalidData          = "invalid_data"
	ErrCodeNetworkError         = "network_error"
	ErrCodeServerError          = "server_error"
	ErrCodeCircuitOpen          = "circuit_open"
	ErrCodeUnknown              = "unknown"
)

// Sentinels for errors.Is checks against DataSourceError codes
var (
	ErrRateLimitExceeded    = errors.New("rate limit exceeded")
	ErrAuthenticationFailed = errors.New("authentication failed")
	ErrNotFound             = errors.New("data not found")
	ErrInvalidData          = errors.New("invalid data format")
	ErrNetworkError         = errors.New("network error")
	ErrServerError          = errors.New("server error")
	ErrCircuitOpen          = errors.New("circuit breaker open")
)

func sentinelFor(code string) error {
	switch code {
	case ErrCodeRateLimitExceeded:
		return ErrRateLimitExceeded
	case ErrCodeAuthenticationFailed:
		return ErrAuthenticationFailed
	case ErrCodeNotFound:
		return ErrNotFound
	case ErrCodeInvalidData:
		return ErrInvalidData
	case ErrCodeNetworkError:
		return ErrNetworkError
	case ErrCodeServerError:
		return ErrServerError
	case ErrCodeCircuitOpen:
		return ErrCircuitOpen
	default:
		return nil
	}
}

// NewDataSourceError creates a new data source error
func NewDataSourceError(source, code, message string, err error) *DataSourceError {
	return &DataSourceError{
		Source:  source,
		Code:    code,
		Message: message,
		Err:     err,
	}
}
