package estimator

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/prop-analyzer/internal/models"
)

func TestModelKeyString(t *testing.T) {
	key := ModelKey{Player: "Luka Doncic", Stat: models.StatPoints, Strategy: models.StrategyKDE}
	assert.Equal(t, "kde|Points|Luka Doncic|0|0000000000000000", key.String())

	key = ModelKey{Stat: models.StatPtsRebs, Strategy: models.StrategyLogistic, Threshold: 22.5, Snapshot: 0xabc}
	assert.Equal(t, "logistic|Pts+Rebs||22.5|0000000000000abc", key.String())
}

func TestModelCacheSeparatesSnapshots(t *testing.T) {
	mc := NewModelCache(time.Hour)
	old := ModelKey{Player: "A", Stat: models.StatPoints, Strategy: models.StrategyKDE, Snapshot: 1}
	fresh := old
	fresh.Snapshot = 2

	fit := func() (Fitted, error) {
		return FitKDE(scenarioValues, constantMinutes(len(scenarioValues), 30), DefaultRecencyWindow)
	}
	_, _, err := mc.GetOrFit(old, fit)
	require.NoError(t, err)

	_, hit, err := mc.GetOrFit(fresh, fit)
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Equal(t, 2, mc.ItemCount())
}

func TestModelCacheGetOrFit(t *testing.T) {
	mc := NewModelCache(time.Hour)
	key := ModelKey{Player: "A", Stat: models.StatPoints, Strategy: models.StrategyKDE}

	calls := 0
	fit := func() (Fitted, error) {
		calls++
		return FitKDE(scenarioValues, constantMinutes(len(scenarioValues), 30), DefaultRecencyWindow)
	}

	m1, hit, err := mc.GetOrFit(key, fit)
	require.NoError(t, err)
	assert.False(t, hit)

	m2, hit, err := mc.GetOrFit(key, fit)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Same(t, m1.(*KDEModel), m2.(*KDEModel))
	assert.Equal(t, 1, calls)

	hits, misses, ratio := mc.Stats()
	assert.Equal(t, uint64(1), hits)
	assert.Equal(t, uint64(1), misses)
	assert.InDelta(t, 0.5, ratio, 1e-9)
	assert.Equal(t, 1, mc.ItemCount())
}

func TestModelCacheDoesNotCacheErrors(t *testing.T) {
	mc := NewModelCache(time.Hour)
	key := ModelKey{Player: "B", Stat: models.StatPoints, Strategy: models.StrategyKDE}

	calls := 0
	fit := func() (Fitted, error) {
		calls++
		return nil, models.ErrInsufficientData
	}

	_, _, err := mc.GetOrFit(key, fit)
	assert.True(t, errors.Is(err, models.ErrInsufficientData))
	_, _, err = mc.GetOrFit(key, fit)
	assert.Error(t, err)
	assert.Equal(t, 2, calls)
	assert.Equal(t, 0, mc.ItemCount())
}

func TestModelCacheConcurrentAccess(t *testing.T) {
	mc := NewModelCache(time.Hour)
	key := ModelKey{Player: "C", Stat: models.StatAssists, Strategy: models.StrategyKDE}
	fit := func() (Fitted, error) {
		return FitKDE(scenarioValues, constantMinutes(len(scenarioValues), 30), DefaultRecencyWindow)
	}

	var wg sync.WaitGroup
	results := make([]Fitted, 16)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			m, _, err := mc.GetOrFit(key, fit)
			assert.NoError(t, err)
			results[i] = m
		}(i)
	}
	wg.Wait()

	for _, m := range results {
		assert.Same(t, results[0].(*KDEModel), m.(*KDEModel))
	}
}

func TestModelCacheClear(t *testing.T) {
	mc := NewModelCache(time.Hour)
	m, err := FitKDE(scenarioValues, constantMinutes(len(scenarioValues), 30), DefaultRecencyWindow)
	require.NoError(t, err)

	mc.Set(ModelKey{Player: "D"}, m)
	assert.Equal(t, 1, mc.ItemCount())

	mc.Clear()
	assert.Equal(t, 0, mc.ItemCount())
	hits, misses, _ := mc.Stats()
	assert.Zero(t, hits)
	assert.Zero(t, misses)
}
