package models

import "time"

// TrendLabel classifies the 10 most recent bits.
type TrendLabel string

const (
	TrendStrongBig   TrendLabel = "STRONG_BIG"
	TrendBiasBig     TrendLabel = "BIAS_BIG"
	TrendStrongSmall TrendLabel = "STRONG_SMALL"
	TrendBiasSmall   TrendLabel = "BIAS_SMALL"
	TrendNeutral     TrendLabel = "NEUTRAL"
)

// MarketState describes the randomness quality of the recent stream.
// It is recomputed wholesale on each training pass.
type MarketState struct {
	Volatility        float64    `json:"volatility"`
	Bias              float64    `json:"bias"`
	Entropy           float64    `json:"entropy"`
	SpectralBias      float64    `json:"spectral_bias"`
	RecentTrend       TrendLabel `json:"recent_trend"`
	Confidence        float64    `json:"confidence"`
	RandomnessQuality float64    `json:"randomness_quality"`
	IsExploitable     bool       `json:"is_exploitable"`
	LastUpdate        time.Time  `json:"last_update"`
}

// ModelPrediction is the output of a single ensemble member.
type ModelPrediction struct {
	Model      string  `json:"model"`
	Label      Label   `json:"label"`
	Confidence float64 `json:"confidence"`
	Source     string  `json:"source"`
}

// Tier buckets ensemble confidence for presentation.
type Tier string

const (
	TierUltraHigh Tier = "ULTRA_HIGH"
	TierHigh      Tier = "HIGH"
	TierMedium    Tier = "MEDIUM"
	TierLow       Tier = "LOW"
	TierVeryLow   Tier = "VERY_LOW"
)

// RecoveryMode adjusts behavior after loss streaks.
type RecoveryMode string

const (
	RecoveryNormal         RecoveryMode = "NORMAL"
	RecoveryMartingaleSafe RecoveryMode = "MARTINGALE_SAFE"
	RecoveryCaution        RecoveryMode = "CAUTION"
	RecoveryAntiTrend      RecoveryMode = "ANTI_TREND"
)

// EnsembleDecision is a single combined forecast. Produced fresh per
// prediction request and never mutated afterward.
type EnsembleDecision struct {
	PeriodID        string             `json:"period_id"`
	Label           Label              `json:"label"`
	ConfidencePct   float64            `json:"confidence_pct"`
	Tier            Tier               `json:"tier"`
	Recommendation  string             `json:"recommendation"`
	AgreementPct    float64            `json:"agreement_pct"`
	MarketCondition string             `json:"market_condition"`
	RecoveryMode    RecoveryMode       `json:"recovery_mode"`
	Models          []ModelPrediction  `json:"models"`
	Weights         map[string]float64 `json:"weights"`
	Reasoning       []string           `json:"reasoning"`
	CreatedAt       time.Time          `json:"created_at"`
}

// ModelPerformance tracks rolling accuracy for one model.
type ModelPerformance struct {
	Wins           int     `json:"wins"`
	Total          int     `json:"total"`
	RecentAccuracy float64 `json:"recent_accuracy"`
}

// WeightSnapshot is the persisted view of one model weight.
type WeightSnapshot struct {
	Model          string    `json:"model"`
	Weight         float64   `json:"weight"`
	RecentAccuracy float64   `json:"recent_accuracy"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// RunStreak holds the consecutive win/loss counters mutated only by
// outcome resolution.
type RunStreak struct {
	Wins   int `json:"wins"`
	Losses int `json:"losses"`
}

// ResolvedDecision pairs a decision with its observed outcome.
type ResolvedDecision struct {
	PeriodID   string    `json:"period_id"`
	Predicted  Label     `json:"predicted"`
	Actual     Label     `json:"actual"`
	Digit      int       `json:"digit"`
	Correct    bool      `json:"correct"`
	ResolvedAt time.Time `json:"resolved_at"`
}
