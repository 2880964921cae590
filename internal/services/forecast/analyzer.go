package forecast

import (
	"math"
	"time"

	"DrawPulse/internal/domain/models"
)

const (
	analyzerWindow      = 50
	analyzerMinRecords  = 30
	exploitableEntropy  = 0.92
	exploitableRunsZ    = 1.96
	spectralBiasMinDiff = 3
)

// Analyzer derives a MarketState from the recent outcome window. Entropy
// and runs statistics are unreliable on small samples, so buffers below
// analyzerMinRecords leave the prior state untouched.
type Analyzer struct{}

// Analyze recomputes the market state over min(analyzerWindow, bufferLen)
// records and replaces the whole record atomically. Returns prev unchanged
// when the buffer is too small.
func (Analyzer) Analyze(buf *Buffer, prev models.MarketState) models.MarketState {
	if buf.Len() < analyzerMinRecords {
		return prev
	}
	n := analyzerWindow
	if buf.Len() < n {
		n = buf.Len()
	}
	digits := buf.RecentDigits(n)
	bits := buf.RecentBits(n)

	mean, std := meanStd(digits)
	volatility := std / (mean + 1e-9)
	entropy := shannonEntropy(bits)
	bias := bitRatio(bits)
	runsZ := runsTestZ(bits)

	return models.MarketState{
		Volatility:        volatility,
		Bias:              bias,
		Entropy:           entropy,
		SpectralBias:      spectralBias(digits),
		RecentTrend:       classifyTrend(buf.RecentBits(10)),
		Confidence:        clamp(1-2*math.Abs(bias-0.5), 0.3, 0.9),
		RandomnessQuality: 1 - entropy,
		IsExploitable:     entropy < exploitableEntropy && math.Abs(runsZ) > exploitableRunsZ,
		LastUpdate:        time.Now(),
	}
}

func meanStd(digits []int) (mean, std float64) {
	if len(digits) == 0 {
		return 0, 0
	}
	sum := 0.0
	for _, d := range digits {
		sum += float64(d)
	}
	mean = sum / float64(len(digits))
	varSum := 0.0
	for _, d := range digits {
		diff := float64(d) - mean
		varSum += diff * diff
	}
	std = math.Sqrt(varSum / float64(len(digits)))
	return mean, std
}

// shannonEntropy computes base-2 entropy of a binary sequence; on a binary
// alphabet the maximum is exactly 1.
func shannonEntropy(bits []int) float64 {
	if len(bits) == 0 {
		return 0
	}
	p := bitRatio(bits)
	if p <= 0 || p >= 1 {
		return 0
	}
	q := 1 - p
	return -p*math.Log2(p) - q*math.Log2(q)
}

// runsTestZ applies the classical Wald–Wolfowitz runs test to the bit
// sequence. The variance formula here mirrors the original heuristic and
// is kept as-is for compatibility. Returns 0 for short sequences or
// degenerate variance.
func runsTestZ(bits []int) float64 {
	if len(bits) < 10 {
		return 0
	}
	runs := 1
	n1, n0 := 0, 0
	if bits[0] == 1 {
		n1++
	} else {
		n0++
	}
	for i := 1; i < len(bits); i++ {
		if bits[i] != bits[i-1] {
			runs++
		}
		if bits[i] == 1 {
			n1++
		} else {
			n0++
		}
	}
	n := float64(n1 + n0)
	if n1 == 0 || n0 == 0 {
		return 0
	}
	expected := 2*float64(n1)*float64(n0)/n + 1
	variance := (expected - 1) * (expected - 2) / (n - 1)
	if variance <= 0 {
		return 0
	}
	return (float64(runs) - expected) / math.Sqrt(variance)
}

// spectralBias is the fraction of consecutive digit differences with
// absolute value >= 3.
func spectralBias(digits []int) float64 {
	if len(digits) < 2 {
		return 0
	}
	jumps := 0
	for i := 1; i < len(digits); i++ {
		if abs(digits[i]-digits[i-1]) >= spectralBiasMinDiff {
			jumps++
		}
	}
	return float64(jumps) / float64(len(digits)-1)
}

// classifyTrend buckets the 10 most recent bits; STRONG thresholds are
// checked before BIAS, BIG before SMALL.
func classifyTrend(bits []int) models.TrendLabel {
	big := 0
	for _, b := range bits {
		if b == 1 {
			big++
		}
	}
	switch {
	case big >= 7:
		return models.TrendStrongBig
	case big <= 3:
		return models.TrendStrongSmall
	case big >= 6:
		return models.TrendBiasBig
	case big <= 4:
		return models.TrendBiasSmall
	default:
		return models.TrendNeutral
	}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
