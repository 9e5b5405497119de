package estimator

import (
	"github.com/yourusername/prop-analyzer/internal/features"
	"github.com/yourusername/prop-analyzer/internal/models"
)

// Classifier answers survival queries for one player's next game under the
// logistic strategy. Each threshold gets its own model, trained once over the
// shared dataset and reused through the cache.
type Classifier struct {
	stat     models.StatType
	dataset  []features.Row
	snapshot uint64
	next     features.Vector
	cache    *ModelCache
	opts     LogisticOptions
}

// NewClassifier binds a stat's training rows to one player's next-game vector.
// snapshot identifies the records the rows were built from and scopes cached
// models to them. A nil cache fits a fresh model on every query.
func NewClassifier(stat models.StatType, dataset []features.Row, snapshot uint64, next features.Vector, mc *ModelCache, opts LogisticOptions) *Classifier {
	return &Classifier{
		stat:     stat,
		dataset:  dataset,
		snapshot: snapshot,
		next:     next,
		cache:    mc,
		opts:     opts,
	}
}

// ModelFor returns the classifier trained for threshold
func (c *Classifier) ModelFor(threshold float64) (*LogisticModel, bool, error) {
	fit := func() (Fitted, error) {
		return FitLogistic(c.dataset, threshold, c.opts)
	}

	if c.cache == nil {
		m, err := fit()
		if err != nil {
			return nil, false, err
		}
		return m.(*LogisticModel), false, nil
	}

	key := ModelKey{Stat: c.stat, Strategy: models.StrategyLogistic, Threshold: threshold, Snapshot: c.snapshot}
	m, hit, err := c.cache.GetOrFit(key, fit)
	if err != nil {
		return nil, false, err
	}
	return m.(*LogisticModel), hit, nil
}

// ProbabilityOver predicts P(stat > x) for the bound player. Stats are never
// negative, so any negative threshold is certain. A threshold every training
// label clears gives 1 and one none clears gives 0; any other failed fit
// gives 0.
func (c *Classifier) ProbabilityOver(x float64) float64 {
	if x < 0 {
		return 1
	}
	m, _, err := c.ModelFor(x)
	if err != nil {
		if over, ok := singleClass(err); ok && over {
			return 1
		}
		return 0
	}
	return m.Predict(c.next)
}

// Next returns the feature vector predictions are made for
func (c *Classifier) Next() features.Vector {
	return c.next
}

// Strategy implements Model
func (c *Classifier) Strategy() models.Strategy {
	return models.StrategyLogistic
}
