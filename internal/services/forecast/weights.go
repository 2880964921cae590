package forecast

import (
	"DrawPulse/internal/domain/models"
)

const (
	defaultModelWeight = 0.15
	accuracyDecay      = 0.9
	weightBlendKeep    = 0.7
)

// ModelNames lists the ensemble members in vote order.
var ModelNames = []string{
	ModelPattern, ModelMarkov, ModelFrequency, ModelTrend, ModelQuantum, ModelLSTM,
}

// weightBook tracks per-model weights and rolling accuracy. Weights sum to
// 1 as a soft invariant maintained by renormalization after every update,
// not by construction.
type weightBook struct {
	weights map[string]float64
	perf    map[string]*models.ModelPerformance
}

func newWeightBook() *weightBook {
	b := &weightBook{
		weights: make(map[string]float64, len(ModelNames)),
		perf:    make(map[string]*models.ModelPerformance, len(ModelNames)),
	}
	uniform := 1.0 / float64(len(ModelNames))
	for _, name := range ModelNames {
		b.weights[name] = uniform
		b.perf[name] = &models.ModelPerformance{RecentAccuracy: 0.5}
	}
	return b
}

// weightOf returns the live weight, defaulting for models missing one.
func (b *weightBook) weightOf(model string) float64 {
	if w, ok := b.weights[model]; ok {
		return w
	}
	return defaultModelWeight
}

// update consumes one (model, correctness) observation: bump win/total
// counters, decay recent accuracy, then blend every weight toward its
// accuracy-normalized target and renormalize. Unknown model names are
// caller bugs and are silently ignored.
func (b *weightBook) update(model string, correct bool) {
	p, ok := b.perf[model]
	if !ok {
		return
	}
	p.Total++
	score := 0.0
	if correct {
		p.Wins++
		score = 1.0
	}
	p.RecentAccuracy = p.RecentAccuracy*accuracyDecay + score*(1-accuracyDecay)

	accSum := 0.0
	for _, perf := range b.perf {
		accSum += perf.RecentAccuracy
	}
	if accSum > 0 {
		for name, perf := range b.perf {
			target := perf.RecentAccuracy / accSum
			b.weights[name] = b.weights[name]*weightBlendKeep + target*(1-weightBlendKeep)
		}
	}
	b.renormalize()
}

// renormalize scales weights to sum to 1, resetting to the uniform default
// when the total collapses to zero.
func (b *weightBook) renormalize() {
	total := 0.0
	for _, w := range b.weights {
		total += w
	}
	if total <= 0 {
		for name := range b.weights {
			b.weights[name] = defaultModelWeight
		}
		return
	}
	for name := range b.weights {
		b.weights[name] /= total
	}
}

// snapshot copies the live weight vector.
func (b *weightBook) snapshot() map[string]float64 {
	out := make(map[string]float64, len(b.weights))
	for name, w := range b.weights {
		out[name] = w
	}
	return out
}

// performance copies the per-model counters.
func (b *weightBook) performance() map[string]models.ModelPerformance {
	out := make(map[string]models.ModelPerformance, len(b.perf))
	for name, p := range b.perf {
		out[name] = *p
	}
	return out
}
