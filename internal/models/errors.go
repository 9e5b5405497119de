package models

import "errors"

// Custom errors
var (
	ErrInsufficientData = errors.New("insufficient data")
	ErrUnknownStatType  = errors.New("unknown stat type")
	ErrUnresolvedPlayer = errors.New("player not found in historical records")
	ErrNumericalFit     = errors.New("numerical fit failure")
	ErrInvalidRecord    = errors.New("invalid record")
	ErrNotFound         = errors.New("record not found")
)

// SkipReason classifies why a prop produced no analysis
type SkipReason string

// Skip reasons reported by the ranking pipeline
const (
	SkipUnresolvedPlayer SkipReason = "unresolved_player"
	SkipUnknownStatType  SkipReason = "unknown_stat_type"
	SkipInsufficientData SkipReason = "insufficient_data"
	SkipNumericalFit     SkipReason = "numerical_fit_failure"
	SkipInvalidProp      SkipReason = "invalid_prop"
)

// ReasonFor maps an analysis error onto its skip reason
func ReasonFor(err error) SkipReason {
	switch {
	case errors.Is(err, ErrUnresolvedPlayer):
		return SkipUnresolvedPlayer
	case errors.Is(err, ErrUnknownStatType):
		return SkipUnknownStatType
	case errors.Is(err, ErrInsufficientData):
		return SkipInsufficientData
	case errors.Is(err, ErrNumericalFit):
		return SkipNumericalFit
	default:
		return SkipInvalidProp
	}
}
