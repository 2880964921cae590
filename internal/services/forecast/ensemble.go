package forecast

import (
	"fmt"
	"strings"
	"time"

	"DrawPulse/internal/domain/models"
)

const (
	ensembleMinConfidence = 0.50
	ensembleMaxConfidence = 0.92
)

// aggregate combines the per-model outputs into one decision: weighted
// vote, agreement score, confidence shaping, recovery override and tier.
func aggregate(
	preds []models.ModelPrediction,
	book *weightBook,
	market models.MarketState,
	streak models.RunStreak,
) *models.EnsembleDecision {
	bigScore, smallScore := 0.0, 0.0
	bigVotes := 0
	for _, p := range preds {
		w := book.weightOf(p.Model)
		if p.Label == models.LabelBig {
			bigScore += w * p.Confidence
			bigVotes++
		} else {
			smallScore += w * p.Confidence
		}
	}

	label := models.LabelBig
	winning := bigScore
	if smallScore > bigScore {
		label = models.LabelSmall
		winning = smallScore
	}
	total := bigScore + smallScore
	confidence := 0.5
	if total > 0 {
		confidence = winning / total
	}

	majority := bigVotes
	if label == models.LabelSmall {
		majority = len(preds) - bigVotes
	}
	agreement := 0.0
	if len(preds) > 0 {
		agreement = float64(majority) / float64(len(preds))
	}

	// Confidence shaping, applied in this order.
	switch {
	case agreement >= 0.8:
		confidence += 0.08
	case agreement >= 0.6:
		confidence += 0.04
	}
	if !market.IsExploitable {
		confidence *= 0.85
	}
	if market.Volatility > 0.6 {
		confidence *= 0.90
	}
	if streak.Wins >= 5 {
		confidence += 0.05
	}
	if streak.Losses >= 1 {
		confidence -= 0.05
	}
	confidence = clamp(confidence, ensembleMinConfidence, ensembleMaxConfidence)

	recovery := recoveryMode(streak, market)
	if recovery == models.RecoveryAntiTrend {
		label = label.Opposite()
	}

	confidencePct := confidence * 100
	tier := classifyTier(confidencePct, agreement)

	return &models.EnsembleDecision{
		Label:           label,
		ConfidencePct:   confidencePct,
		Tier:            tier,
		Recommendation:  recommendationFor(tier),
		AgreementPct:    agreement * 100,
		MarketCondition: marketCondition(market),
		RecoveryMode:    recovery,
		Models:          preds,
		Weights:         book.snapshot(),
		Reasoning:       reasoning(market, agreement, streak, recovery),
		CreatedAt:       time.Now(),
	}
}

// recoveryMode is evaluated in fixed precedence; only ANTI_TREND alters the
// output label, the others are advisory.
func recoveryMode(streak models.RunStreak, market models.MarketState) models.RecoveryMode {
	switch {
	case streak.Losses >= 3 && market.Volatility < 0.5:
		return models.RecoveryMartingaleSafe
	case streak.Losses >= 2 && !market.IsExploitable:
		return models.RecoveryCaution
	case streak.Losses >= 2 && strings.Contains(string(market.RecentTrend), "STRONG"):
		return models.RecoveryAntiTrend
	default:
		return models.RecoveryNormal
	}
}

// classifyTier is evaluated top-down; the first matching tier wins.
func classifyTier(confidencePct, agreement float64) models.Tier {
	switch {
	case confidencePct >= 78 && agreement >= 0.8:
		return models.TierUltraHigh
	case confidencePct >= 70 && agreement >= 0.7:
		return models.TierHigh
	case confidencePct >= 63 && agreement >= 0.6:
		return models.TierMedium
	case confidencePct >= 55:
		return models.TierLow
	default:
		return models.TierVeryLow
	}
}

func recommendationFor(tier models.Tier) string {
	switch tier {
	case models.TierUltraHigh:
		return "Strong consensus signal; full confidence entry."
	case models.TierHigh:
		return "Solid signal; standard entry."
	case models.TierMedium:
		return "Moderate signal; reduced stake advised."
	case models.TierLow:
		return "Weak signal; minimal stake or skip."
	default:
		return "No edge detected; skipping is recommended."
	}
}

func marketCondition(market models.MarketState) string {
	switch {
	case market.IsExploitable:
		return "EXPLOITABLE"
	case market.Volatility > 0.6:
		return "VOLATILE"
	default:
		return "RANDOM"
	}
}

// reasoning lists the applicable human-readable factors; it is never empty.
func reasoning(market models.MarketState, agreement float64, streak models.RunStreak, recovery models.RecoveryMode) []string {
	var out []string
	if market.IsExploitable {
		out = append(out, fmt.Sprintf("market shows exploitable non-randomness (entropy %.2f)", market.Entropy))
	}
	if agreement >= 0.8 {
		out = append(out, fmt.Sprintf("strong model consensus at %.0f%%", agreement*100))
	}
	if streak.Wins >= 5 {
		out = append(out, fmt.Sprintf("win streak of %d supports the signal", streak.Wins))
	}
	if recovery != models.RecoveryNormal {
		out = append(out, fmt.Sprintf("recovery mode %s active after %d losses", recovery, streak.Losses))
	}
	if len(out) == 0 {
		out = append(out, "weighted ensemble vote over recent outcomes")
	}
	return out
}
