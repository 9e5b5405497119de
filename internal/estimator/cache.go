package estimator

import (
	"fmt"
	"strconv"
	"sync/atomic"
	"time"

	cache "github.com/patrickmn/go-cache"
	"golang.org/x/sync/singleflight"

	"github.com/yourusername/prop-analyzer/internal/models"
)

// DefaultModelTTL bounds how long a fitted model is reused
const DefaultModelTTL = time.Hour

// ModelKey identifies one fitted model. Player is empty for classifiers, which
// train across all players; Threshold is zero for density models, which
// answer every threshold. Snapshot is the fingerprint of the records the
// model is fitted on, so a model never outlives the data it came from.
type ModelKey struct {
	Player    string
	Stat      models.StatType
	Strategy  models.Strategy
	Threshold float64
	Snapshot  uint64
}

// String returns string representation of the key
func (k ModelKey) String() string {
	return fmt.Sprintf("%s|%s|%s|%s|%016x", k.Strategy, k.Stat, k.Player, strconv.FormatFloat(k.Threshold, 'g', -1, 64), k.Snapshot)
}

// Fitted is any immutable fitted model held by the cache
type Fitted interface {
	Strategy() models.Strategy
}

// ModelCache holds fitted models for reuse within a data snapshot. Concurrent
// requests for the same key share one fit.
type ModelCache struct {
	cache  *cache.Cache
	group  singleflight.Group
	ttl    time.Duration
	hits   atomic.Uint64
	misses atomic.Uint64
}

// NewModelCache creates a new model cache
func NewModelCache(ttl time.Duration) *ModelCache {
	if ttl <= 0 {
		ttl = DefaultModelTTL
	}
	return &ModelCache{
		cache: cache.New(ttl, ttl*2),
		ttl:   ttl,
	}
}

// Get retrieves a cached model
func (mc *ModelCache) Get(key ModelKey) (Fitted, bool) {
	if v, found := mc.cache.Get(key.String()); found {
		if m, ok := v.(Fitted); ok {
			mc.hits.Add(1)
			return m, true
		}
	}
	mc.misses.Add(1)
	return nil, false
}

// Set stores a model
func (mc *ModelCache) Set(key ModelKey, m Fitted) {
	mc.cache.Set(key.String(), m, mc.ttl)
}

// GetOrFit returns the cached model for key, calling fit on a miss. Failed
// fits are not cached. hit reports whether the model came from the cache.
func (mc *ModelCache) GetOrFit(key ModelKey, fit func() (Fitted, error)) (m Fitted, hit bool, err error) {
	if m, ok := mc.Get(key); ok {
		return m, true, nil
	}

	v, err, _ := mc.group.Do(key.String(), func() (interface{}, error) {
		if m, found := mc.cache.Get(key.String()); found {
			return m, nil
		}
		m, err := fit()
		if err != nil {
			return nil, err
		}
		mc.Set(key, m)
		return m, nil
	})
	if err != nil {
		return nil, false, err
	}
	return v.(Fitted), false, nil
}

// Clear flushes every model, e.g. after the underlying records change
func (mc *ModelCache) Clear() {
	mc.cache.Flush()
	mc.hits.Store(0)
	mc.misses.Store(0)
}

// Stats returns cache statistics
func (mc *ModelCache) Stats() (hits, misses uint64, ratio float64) {
	hits = mc.hits.Load()
	misses = mc.misses.Load()
	if total := hits + misses; total > 0 {
		ratio = float64(hits) / float64(total)
	}
	return
}

// ItemCount returns the number of models in cache
func (mc *ModelCache) ItemCount() int {
	return mc.cache.ItemCount()
}
