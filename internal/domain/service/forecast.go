package service

import (
	"DrawPulse/internal/domain/models"
)

// Engine is the forecasting core: sliding buffer, model tables, market
// state, weights and streak counters behind one owned context object.
type Engine interface {
	// Ingest inserts new outcome records into the buffer, skipping
	// periods already present. Returns the number of records inserted.
	Ingest(records []models.OutcomeRecord) int

	// Train rebuilds model tables from the buffer and refreshes market
	// state. Returns false when a pass is already in flight.
	Train() bool

	// Predict combines all ensemble members into a single decision.
	// Total for any non-empty buffer.
	Predict() (*models.EnsembleDecision, error)

	// Resolve scores a prior decision against the true label, updating
	// streak counters and model weights.
	Resolve(predicted models.EnsembleDecision, actual models.Label) models.ResolvedDecision

	BufferLen() int
	LatestPeriod() string
	MarketState() models.MarketState
	Weights() map[string]float64
	Performance() map[string]models.ModelPerformance
	Streak() models.RunStreak
}
