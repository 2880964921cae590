package forecast

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"DrawPulse/internal/domain/models"
)

func unanimous(label models.Label, conf float64) []models.ModelPrediction {
	preds := make([]models.ModelPrediction, len(ModelNames))
	for i, name := range ModelNames {
		preds[i] = models.ModelPrediction{Model: name, Label: label, Confidence: conf}
	}
	return preds
}

func TestAggregateConfidenceBounds(t *testing.T) {
	book := newWeightBook()
	cases := []struct {
		preds  []models.ModelPrediction
		market models.MarketState
		streak models.RunStreak
	}{
		{unanimous(models.LabelBig, 0.99), models.MarketState{IsExploitable: true}, models.RunStreak{Wins: 10}},
		{unanimous(models.LabelSmall, 0.01), models.MarketState{Volatility: 0.9}, models.RunStreak{Losses: 1}},
		{nil, models.MarketState{}, models.RunStreak{}},
	}
	for _, c := range cases {
		d := aggregate(c.preds, book, c.market, c.streak)
		assert.GreaterOrEqual(t, d.ConfidencePct, 50.0)
		assert.LessOrEqual(t, d.ConfidencePct, 92.0)
		assert.NotEmpty(t, d.Reasoning)
	}
}

func TestAggregateUltraHighTier(t *testing.T) {
	book := newWeightBook()
	d := aggregate(unanimous(models.LabelBig, 0.9), book,
		models.MarketState{IsExploitable: true, Volatility: 0.2},
		models.RunStreak{})

	require.Equal(t, models.LabelBig, d.Label)
	assert.InDelta(t, 100.0, d.AgreementPct, 1e-9)
	assert.GreaterOrEqual(t, d.ConfidencePct, 78.0)
	assert.Equal(t, models.TierUltraHigh, d.Tier)
	assert.Equal(t, models.RecoveryNormal, d.RecoveryMode)
}

func TestAntiTrendFlipsLabel(t *testing.T) {
	book := newWeightBook()
	market := models.MarketState{
		IsExploitable: true, // skips CAUTION
		Volatility:    0.7,  // skips MARTINGALE_SAFE
		RecentTrend:   models.TrendStrongBig,
	}
	streak := models.RunStreak{Losses: 2}

	d := aggregate(unanimous(models.LabelBig, 0.9), book, market, streak)
	require.Equal(t, models.RecoveryAntiTrend, d.RecoveryMode)
	assert.Equal(t, models.LabelSmall, d.Label) // flipped from the raw BIG vote
}

func TestAdvisoryModesKeepLabel(t *testing.T) {
	book := newWeightBook()

	d := aggregate(unanimous(models.LabelBig, 0.9), book,
		models.MarketState{Volatility: 0.2}, models.RunStreak{Losses: 3})
	require.Equal(t, models.RecoveryMartingaleSafe, d.RecoveryMode)
	assert.Equal(t, models.LabelBig, d.Label)

	d = aggregate(unanimous(models.LabelBig, 0.9), book,
		models.MarketState{Volatility: 0.7}, models.RunStreak{Losses: 2})
	require.Equal(t, models.RecoveryCaution, d.RecoveryMode)
	assert.Equal(t, models.LabelBig, d.Label)
}

func TestRecoveryPrecedence(t *testing.T) {
	// losses >= 3 with calm market wins over every other mode
	got := recoveryMode(models.RunStreak{Losses: 3},
		models.MarketState{Volatility: 0.1, RecentTrend: models.TrendStrongBig})
	assert.Equal(t, models.RecoveryMartingaleSafe, got)

	// losses == 2, not exploitable: CAUTION before ANTI_TREND
	got = recoveryMode(models.RunStreak{Losses: 2},
		models.MarketState{Volatility: 0.7, RecentTrend: models.TrendStrongBig})
	assert.Equal(t, models.RecoveryCaution, got)

	got = recoveryMode(models.RunStreak{}, models.MarketState{})
	assert.Equal(t, models.RecoveryNormal, got)
}

func TestClassifyTierTopDown(t *testing.T) {
	assert.Equal(t, models.TierUltraHigh, classifyTier(80, 0.9))
	assert.Equal(t, models.TierHigh, classifyTier(80, 0.75)) // agreement too low for ultra
	assert.Equal(t, models.TierMedium, classifyTier(65, 0.65))
	assert.Equal(t, models.TierLow, classifyTier(60, 0.1))
	assert.Equal(t, models.TierVeryLow, classifyTier(52, 0.9))
}

func TestAggregateSplitVoteAgreement(t *testing.T) {
	book := newWeightBook()
	preds := unanimous(models.LabelBig, 0.6)
	preds[0].Label = models.LabelSmall
	preds[1].Label = models.LabelSmall

	d := aggregate(preds, book, models.MarketState{}, models.RunStreak{})
	assert.InDelta(t, float64(4)/6*100, d.AgreementPct, 1e-9)
	assert.Equal(t, models.LabelBig, d.Label)
}
