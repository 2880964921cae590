package forecast

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"DrawPulse/internal/domain/models"
)

func TestAnalyzeSmallBufferIsNoOp(t *testing.T) {
	b := NewBuffer(0)
	ingestChronological(b, recordsFromDigits(1, 2, 3, 4, 5, 6, 7, 8, 9, 0)) // 10 < 30

	prev := models.MarketState{Entropy: 0.42, LastUpdate: time.Now().Add(-time.Hour)}
	got := Analyzer{}.Analyze(b, prev)
	assert.Equal(t, prev, got)
}

func TestAnalyzeAlternatingSequence(t *testing.T) {
	// 60 records alternating 7,2: bits 1,0,1,0,... entropy is maximal so
	// the market is never exploitable regardless of the runs z-score.
	digits := make([]int, 60)
	for i := range digits {
		if i%2 == 0 {
			digits[i] = 7
		} else {
			digits[i] = 2
		}
	}
	b := NewBuffer(0)
	ingestChronological(b, recordsFromDigits(digits...))

	got := Analyzer{}.Analyze(b, models.MarketState{})
	assert.InDelta(t, 1.0, got.Entropy, 1e-9)
	assert.False(t, got.IsExploitable)
	assert.InDelta(t, 0.5, got.Bias, 1e-9)
	assert.InDelta(t, 0.0, got.RandomnessQuality, 1e-9)
	assert.False(t, got.LastUpdate.IsZero())
}

func TestAnalyzeBiasedSequenceIsExploitable(t *testing.T) {
	// 40 BIG digits then 10 SMALL: heavy bias drops entropy below 0.92
	// and the single long run drives |z| above 1.96.
	digits := make([]int, 50)
	for i := 0; i < 40; i++ {
		digits[i] = 8
	}
	for i := 40; i < 50; i++ {
		digits[i] = 1
	}
	b := NewBuffer(0)
	ingestChronological(b, recordsFromDigits(digits...))

	got := Analyzer{}.Analyze(b, models.MarketState{})
	require.Less(t, got.Entropy, 0.92)
	assert.True(t, got.IsExploitable)
	assert.Equal(t, models.TrendStrongSmall, got.RecentTrend)
}

func TestMarketConfidenceClamped(t *testing.T) {
	digits := make([]int, 50)
	for i := range digits {
		digits[i] = 9 // bias 1.0 -> raw confidence -1, clamped to 0.3
	}
	b := NewBuffer(0)
	ingestChronological(b, recordsFromDigits(digits...))

	got := Analyzer{}.Analyze(b, models.MarketState{})
	assert.InDelta(t, 0.3, got.Confidence, 1e-9)
}

func TestClassifyTrendPriorities(t *testing.T) {
	mk := func(big int) []int {
		bits := make([]int, 10)
		for i := 0; i < big; i++ {
			bits[i] = 1
		}
		return bits
	}
	assert.Equal(t, models.TrendStrongBig, classifyTrend(mk(7)))
	assert.Equal(t, models.TrendBiasBig, classifyTrend(mk(6)))
	assert.Equal(t, models.TrendNeutral, classifyTrend(mk(5)))
	assert.Equal(t, models.TrendBiasSmall, classifyTrend(mk(4)))
	assert.Equal(t, models.TrendStrongSmall, classifyTrend(mk(3)))
}

func TestRunsTestZeroCases(t *testing.T) {
	assert.Zero(t, runsTestZ([]int{1, 0, 1})) // too short
	all := make([]int, 20)
	assert.Zero(t, runsTestZ(all)) // one-sided sequence has no variance
}

func TestSpectralBias(t *testing.T) {
	assert.InDelta(t, 1.0, spectralBias([]int{0, 9, 0, 9}), 1e-9)
	assert.InDelta(t, 0.0, spectralBias([]int{4, 5, 4, 5}), 1e-9)
	assert.Zero(t, spectralBias([]int{7}))
}
