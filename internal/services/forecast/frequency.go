package forecast

import (
	"math"

	"DrawPulse/internal/domain/models"
)

var frequencyWindows = []int{10, 20, 30}

// predictFrequency votes across fixed windows with weight 1/window, so
// shorter windows dominate. Windows larger than the buffer are skipped.
func predictFrequency(buf *Buffer) models.ModelPrediction {
	bigSum, smallSum := 0.0, 0.0
	used := 0
	for _, w := range frequencyWindows {
		if buf.Len() < w {
			continue
		}
		used++
		ratio := buf.BigRatio(w)
		conf := math.Abs(ratio-0.5) * 2
		weight := 1.0 / float64(w)
		if ratio >= 0.5 {
			bigSum += conf * weight
		} else {
			smallSum += conf * weight
		}
	}
	if used == 0 {
		return models.ModelPrediction{
			Model:      ModelFrequency,
			Label:      models.LabelBig,
			Confidence: 0.50,
			Source:     "frequency_insufficient",
		}
	}

	label := models.LabelBig
	winning := bigSum
	if smallSum > bigSum {
		label = models.LabelSmall
		winning = smallSum
	}
	total := bigSum + smallSum
	frac := 0.5
	if total > 0 {
		frac = winning / total
	}
	return models.ModelPrediction{
		Model:      ModelFrequency,
		Label:      label,
		Confidence: math.Min(frac+0.05, 0.75),
		Source:     "frequency",
	}
}
