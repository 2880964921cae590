package forecast

import (
	"math"

	"DrawPulse/internal/domain/models"
)

// predictQuantum is a simplified stand-in for a probabilistic uncertainty
// model: empirical P(BIG) is treated as a squared amplitude and blended
// with a neutral prior through a decoherence factor derived from market
// entropy. The formula is an ad hoc heuristic reproduced exactly; do not
// "fix" the math.
func predictQuantum(buf *Buffer, market models.MarketState) models.ModelPrediction {
	pBig := buf.BigRatio(buf.Len())
	amplitudeBig := math.Sqrt(pBig)
	decoherence := clamp(1-market.Entropy, 0, 1)
	observedP := amplitudeBig*amplitudeBig*decoherence + 0.5*(1-decoherence)

	label := models.LabelSmall
	if observedP >= 0.5 {
		label = models.LabelBig
	}
	return models.ModelPrediction{
		Model:      ModelQuantum,
		Label:      label,
		Confidence: math.Min(math.Abs(observedP-0.5)*2+0.05, 0.80),
		Source:     "quantum",
	}
}
