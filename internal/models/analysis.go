package models

import (
	"time"

	"github.com/google/uuid"
)

// Strategy names a distribution estimator backend
type Strategy string

// Estimator strategies
const (
	StrategyKDE      Strategy = "kde"
	StrategyLogistic Strategy = "logistic"
)

// IsValid checks if the strategy is known
func (s Strategy) IsValid() bool {
	return s == StrategyKDE || s == StrategyLogistic
}

// RankBy selects the ordering of the final report
type RankBy string

// Ranking variants
const (
	RankByProbability RankBy = "probability"
	RankByScore       RankBy = "score"
)

// AnalysisSummary holds descriptive statistics of a played series against a line
type AnalysisSummary struct {
	GamesPlayed     int       `json:"games_played"`
	TimesAboveLine  int       `json:"times_above_line"`
	HitRate         float64   `json:"hit_rate"`
	Overages        []float64 `json:"overages"`
	AvgValue        float64   `json:"avg_value"`
	AvgMinutes      float64   `json:"avg_minutes"`
	StdDevMinutes   float64   `json:"stddev_minutes"`
	AvgOverage      float64   `json:"avg_overage"`
	RecentValues    []float64 `json:"recent_values"`
	RecentAvg       float64   `json:"recent_avg"`
	RecentHitRate   float64   `json:"recent_hit_rate"`
	RecentGameCount int       `json:"recent_game_count"`
}

// ProbabilityPoint pairs a threshold with P(stat > threshold)
type ProbabilityPoint struct {
	Threshold   float64 `json:"threshold"`
	Probability float64 `json:"probability"`
}

// FeatureImportance is a classifier coefficient attached to its feature name
type FeatureImportance struct {
	Feature    string  `json:"feature"`
	Importance float64 `json:"importance"`
}

// ModelInfo is quality metadata reported by the classifier strategy
type ModelInfo struct {
	Accuracy          float64             `json:"accuracy"`
	ConfusionMatrix   [2][2]int           `json:"confusion_matrix"`
	FeatureImportance []FeatureImportance `json:"feature_importance"`
	TrainSize         int                 `json:"train_size"`
	TestSize          int                 `json:"test_size"`
}

// AnalyzedProp is a prop with its analysis, probability estimate and rank score
type AnalyzedProp struct {
	Rank                int                `json:"rank"`
	Prop                PropLine           `json:"prop"`
	StatType            StatType           `json:"stat_type"`
	Analysis            AnalysisSummary    `json:"analysis"`
	ProbabilityOverLine float64            `json:"probability_over_line"`
	KeyProbabilities    []ProbabilityPoint `json:"key_probabilities"`
	ProbabilityTable    []ProbabilityPoint `json:"probability_table,omitempty"`
	Score               float64            `json:"score"`
	Strategy            Strategy           `json:"strategy"`
	ModelInfo           *ModelInfo         `json:"model_info,omitempty"`
}

// Skip records a prop the pipeline excluded and why
type Skip struct {
	Prop   PropLine   `json:"prop"`
	Reason SkipReason `json:"reason"`
	Detail string     `json:"detail,omitempty"`
}

// AnalysisRun is the persisted header of one pipeline execution
type AnalysisRun struct {
	ID           uuid.UUID `db:"id" json:"id"`
	Strategy     Strategy  `db:"strategy" json:"strategy"`
	RankBy       RankBy    `db:"rank_by" json:"rank_by"`
	PropsInput   int       `db:"props_input" json:"props_input"`
	PropsRanked  int       `db:"props_ranked" json:"props_ranked"`
	PropsSkipped int       `db:"props_skipped" json:"props_skipped"`
	StartedAt    time.Time `db:"started_at" json:"started_at"`
	FinishedAt   time.Time `db:"finished_at" json:"finished_at"`
}

// Duration returns the wall time of the run
func (r *AnalysisRun) Duration() time.Duration {
	return r.FinishedAt.Sub(r.StartedAt)
}
