package forecast

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"DrawPulse/internal/domain/models"
)

func TestMarkovOrderThreeMajority(t *testing.T) {
	b := NewBuffer(0)
	ingestChronological(b, recordsFromDigits(1, 5, 5, 5))

	table := make(MarkovTable)
	st := &digitStats{}
	for i := 0; i < 9; i++ {
		st.add(5)
	}
	table["5-5-5"] = st

	got := predictMarkov(b, table)
	assert.Equal(t, models.LabelBig, got.Label)
	assert.InDelta(t, 1.0, got.Confidence, 1e-9)
	assert.Equal(t, "markov", got.Source)
}

func TestMarkovFallbackNegatesLatest(t *testing.T) {
	b := NewBuffer(0)
	ingestChronological(b, recordsFromDigits(9)) // latest is BIG

	got := predictMarkov(b, make(MarkovTable))
	assert.Equal(t, models.LabelSmall, got.Label)
	assert.InDelta(t, 0.51, got.Confidence, 1e-9)
	assert.Equal(t, "markov_fallback", got.Source)
}

func TestMarkovSkipsThinStates(t *testing.T) {
	b := NewBuffer(0)
	ingestChronological(b, recordsFromDigits(1, 2, 3))

	table := make(MarkovTable)
	thin := &digitStats{}
	thin.add(9) // total 1 < min occurrences
	table["1-2-3"] = thin
	strong := &digitStats{}
	strong.add(0)
	strong.add(0)
	table["3"] = strong // order 1 qualifies

	got := predictMarkov(b, table)
	assert.Equal(t, models.LabelSmall, got.Label)
	assert.Equal(t, "markov", got.Source)
}

func TestPatternStrictlyGreaterWins(t *testing.T) {
	b := NewBuffer(0)
	ingestChronological(b, recordsFromDigits(1, 2, 3, 4, 5, 6, 7, 8))

	table := make(PatternTable)
	low := &digitStats{}
	low.add(9)
	low.add(9)
	low.add(1) // conf 2/3, label from digit 9 = BIG
	table["678"] = low
	tie := &digitStats{}
	tie.add(0)
	tie.add(0)
	tie.add(8) // conf 2/3 again, label SMALL; tie must not displace L=3
	table["5678"] = tie

	got := predictPattern(b, table)
	assert.Equal(t, models.LabelBig, got.Label)
	assert.InDelta(t, 2.0/3.0, got.Confidence, 1e-9)
}

func TestPatternFallback(t *testing.T) {
	b := NewBuffer(0)
	ingestChronological(b, recordsFromDigits(9, 9, 1))

	got := predictPattern(b, make(PatternTable))
	assert.Equal(t, "pattern_fallback", got.Source)
	assert.InDelta(t, 0.52, got.Confidence, 1e-9)
	assert.Equal(t, models.LabelBig, got.Label) // 2 of 3 recent are BIG
}

func TestFrequencyInsufficient(t *testing.T) {
	b := NewBuffer(0)
	ingestChronological(b, recordsFromDigits(1, 2, 3)) // < smallest window

	got := predictFrequency(b)
	assert.Equal(t, models.LabelBig, got.Label)
	assert.InDelta(t, 0.50, got.Confidence, 1e-9)
	assert.Equal(t, "frequency_insufficient", got.Source)
}

func TestFrequencyCappedAt075(t *testing.T) {
	digits := make([]int, 30)
	for i := range digits {
		digits[i] = 8 // every window votes BIG at full confidence
	}
	b := NewBuffer(0)
	ingestChronological(b, recordsFromDigits(digits...))

	got := predictFrequency(b)
	assert.Equal(t, models.LabelBig, got.Label)
	assert.InDelta(t, 0.75, got.Confidence, 1e-9)
}

func TestTrendReversal(t *testing.T) {
	// medium window mostly SMALL, short window all BIG: deviation > 0.3
	// predicts the fade of the short-term burst.
	digits := make([]int, 30)
	for i := 20; i < 30; i++ {
		digits[i] = 9
	}
	tw := buildTrendWindows(bitsOf(digits))
	got := predictTrend(tw)
	assert.Equal(t, models.LabelSmall, got.Label)
	assert.Equal(t, "trend_reversal", got.Source)
	assert.LessOrEqual(t, got.Confidence, 0.78)
	assert.GreaterOrEqual(t, got.Confidence, 0.52)
}

func TestTrendBlendClamped(t *testing.T) {
	digits := make([]int, 60)
	for i := range digits {
		if i%2 == 0 {
			digits[i] = 7
		} else {
			digits[i] = 2
		}
	}
	tw := buildTrendWindows(bitsOf(digits))
	got := predictTrend(tw)
	assert.Equal(t, "trend", got.Source)
	assert.InDelta(t, 0.52, got.Confidence, 1e-9) // blend ~0.5 clamps to floor
}

func TestQuantumCapAndEntropyBlend(t *testing.T) {
	digits := make([]int, 40)
	for i := range digits {
		digits[i] = 9
	}
	b := NewBuffer(0)
	ingestChronological(b, recordsFromDigits(digits...))

	// zero entropy: full decoherence weight on the empirical amplitude
	got := predictQuantum(b, models.MarketState{Entropy: 0})
	assert.Equal(t, models.LabelBig, got.Label)
	assert.InDelta(t, 0.80, got.Confidence, 1e-9)

	// maximal entropy collapses to the neutral prior
	got = predictQuantum(b, models.MarketState{Entropy: 1})
	assert.InDelta(t, 0.05, got.Confidence, 1e-9)
}

func TestLSTMInsufficientExactFallback(t *testing.T) {
	b := NewBuffer(0)
	ingestChronological(b, recordsFromDigits(1, 2, 3, 4, 5))

	var cell *recurrentCell
	got := predictLSTM(b, &cell, 1)
	assert.Equal(t, models.ModelPrediction{
		Model:      ModelLSTM,
		Label:      models.LabelBig,
		Confidence: 0.50,
		Source:     "lstm_insufficient",
	}, got)
	assert.Nil(t, cell) // lazy: not instantiated until enough bits exist
}

func TestLSTMStatePersistsAcrossCalls(t *testing.T) {
	digits := make([]int, 25)
	for i := range digits {
		digits[i] = i % 10
	}
	b := NewBuffer(0)
	ingestChronological(b, recordsFromDigits(digits...))

	var cell *recurrentCell
	first := predictLSTM(b, &cell, 42)
	require.NotNil(t, cell)
	hiddenAfterFirst := append([]float64(nil), cell.hidden...)

	second := predictLSTM(b, &cell, 42)
	assert.NotEqual(t, hiddenAfterFirst, cell.hidden) // recurrence carries on
	assert.LessOrEqual(t, first.Confidence, 0.80)
	assert.LessOrEqual(t, second.Confidence, 0.80)
	assert.GreaterOrEqual(t, first.Confidence, 0.10)
}

func bitsOf(digits []int) []int {
	bits := make([]int, len(digits))
	for i, d := range digits {
		bits[i] = models.BitFromDigit(d)
	}
	return bits
}
