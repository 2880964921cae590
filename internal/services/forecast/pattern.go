package forecast

import (
	"DrawPulse/internal/domain/models"
)

const (
	ModelPattern   = "pattern"
	ModelMarkov    = "markov"
	ModelFrequency = "frequency"
	ModelTrend     = "trend"
	ModelQuantum   = "quantum"
	ModelLSTM      = "lstm"
)

const patternMinOccurrences = 3

// predictPattern looks the most recent L-digit sequence up in the pattern
// table for each configured window length. Among qualifying lengths the
// strictly greater confidence wins; on a tie the first qualifying length
// sticks (longstanding behavior, kept deliberately).
func predictPattern(buf *Buffer, table PatternTable) models.ModelPrediction {
	best := models.ModelPrediction{Model: ModelPattern}
	found := false
	for _, l := range patternWindowLengths {
		if buf.Len() < l {
			continue
		}
		st, ok := table[patternKey(buf.RecentDigits(l))]
		if !ok || st.total < patternMinOccurrences {
			continue
		}
		digit, count := st.majority()
		conf := float64(count) / float64(st.total)
		if !found || conf > best.Confidence {
			best = models.ModelPrediction{
				Model:      ModelPattern,
				Label:      models.LabelFromDigit(digit),
				Confidence: conf,
				Source:     "pattern",
			}
			found = true
		}
	}
	if found {
		return best
	}

	// No window qualified: majority label of the last 10 records.
	label := models.LabelSmall
	if buf.BigRatio(10) >= 0.5 {
		label = models.LabelBig
	}
	return models.ModelPrediction{
		Model:      ModelPattern,
		Label:      label,
		Confidence: 0.52,
		Source:     "pattern_fallback",
	}
}
