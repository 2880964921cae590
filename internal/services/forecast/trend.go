package forecast

import (
	"math"

	"DrawPulse/internal/domain/models"
)

const trendReversalThreshold = 0.3

// predictTrend compares short/medium/long BIG ratios. A large deviation of
// the short window from the medium one is read as a momentum reversal;
// otherwise a weighted blend of the three ratios decides.
func predictTrend(tw TrendWindows) models.ModelPrediction {
	short := bitRatio(tw.Short)
	medium := bitRatio(tw.Medium)
	long := bitRatio(tw.Long)

	deviation := math.Abs(short - medium)
	if deviation > trendReversalThreshold {
		// Fade the short-term extreme relative to the medium trend.
		label := models.LabelBig
		if short > medium {
			label = models.LabelSmall
		}
		return models.ModelPrediction{
			Model:      ModelTrend,
			Label:      label,
			Confidence: clamp(math.Min(deviation+0.20, 0.75), 0.52, 0.78),
			Source:     "trend_reversal",
		}
	}

	blend := 0.5*short + 0.3*medium + 0.2*long
	label := models.LabelSmall
	if blend >= 0.5 {
		label = models.LabelBig
	}
	return models.ModelPrediction{
		Model:      ModelTrend,
		Label:      label,
		Confidence: clamp(math.Abs(blend-0.5)*2+0.05, 0.52, 0.78),
		Source:     "trend",
	}
}
