package forecast

import (
	"DrawPulse/internal/domain/models"
)

const markovMinOccurrences = 2

// predictMarkov tries Markov orders from highest to lowest and stops at the
// first state with enough observations. The fallback negates the most
// recent label: an explicit anti-persistence heuristic, not a learned
// signal.
func predictMarkov(buf *Buffer, table MarkovTable) models.ModelPrediction {
	for order := markovOrder; order >= 1; order-- {
		if buf.Len() < order {
			continue
		}
		st, ok := table[markovKey(buf.RecentDigits(order))]
		if !ok || st.total < markovMinOccurrences {
			continue
		}
		digit, count := st.majority()
		return models.ModelPrediction{
			Model:      ModelMarkov,
			Label:      models.LabelFromDigit(digit),
			Confidence: float64(count) / float64(st.total),
			Source:     "markov",
		}
	}

	label := models.LabelBig
	if latest, ok := buf.Latest(); ok {
		label = latest.Label.Opposite()
	}
	return models.ModelPrediction{
		Model:      ModelMarkov,
		Label:      label,
		Confidence: 0.51,
		Source:     "markov_fallback",
	}
}
