package forecast

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func weightSum(b *weightBook) float64 {
	sum := 0.0
	for _, w := range b.weights {
		sum += w
	}
	return sum
}

func TestWeightsSumToOneAfterUpdates(t *testing.T) {
	b := newWeightBook()
	require.InDelta(t, 1.0, weightSum(b), 1e-9)

	seq := []struct {
		model   string
		correct bool
	}{
		{ModelPattern, true}, {ModelPattern, true}, {ModelMarkov, false},
		{ModelLSTM, false}, {ModelQuantum, true}, {ModelTrend, false},
		{ModelFrequency, true}, {ModelPattern, false},
	}
	for _, s := range seq {
		b.update(s.model, s.correct)
		assert.InDelta(t, 1.0, weightSum(b), 1e-9)
	}
}

func TestWeightsShiftTowardAccurateModels(t *testing.T) {
	b := newWeightBook()
	for i := 0; i < 20; i++ {
		b.update(ModelPattern, true)
		b.update(ModelMarkov, false)
	}
	assert.Greater(t, b.weights[ModelPattern], b.weights[ModelMarkov])

	perf := b.performance()
	assert.Equal(t, 20, perf[ModelPattern].Wins)
	assert.Equal(t, 20, perf[ModelPattern].Total)
	assert.Equal(t, 0, perf[ModelMarkov].Wins)
	assert.Greater(t, perf[ModelPattern].RecentAccuracy, perf[ModelMarkov].RecentAccuracy)
}

func TestUnknownModelIsNoOp(t *testing.T) {
	b := newWeightBook()
	before := b.snapshot()
	b.update("nonexistent", true)
	assert.Equal(t, before, b.snapshot())
}

func TestRenormalizeResetsOnZeroTotal(t *testing.T) {
	b := newWeightBook()
	for name := range b.weights {
		b.weights[name] = 0
	}
	b.renormalize()
	for _, name := range ModelNames {
		assert.InDelta(t, defaultModelWeight, b.weights[name], 1e-9)
	}
}

func TestWeightOfUnknownModelDefaults(t *testing.T) {
	b := newWeightBook()
	assert.InDelta(t, defaultModelWeight, b.weightOf("mystery"), 1e-9)
}
