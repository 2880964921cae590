package repository

import (
	"context"
	"time"

	"DrawPulse/internal/domain/models"
)

// DrawStream supplies draw outcomes from the external feed. Poll and
// websocket implementations share this contract.
type DrawStream interface {
	Connect(ctx context.Context) error
	Read(ctx context.Context) (<-chan models.DrawResult, <-chan error)
	Reconnect(ctx context.Context) error
	Close() error
	IsConnected() bool
}

// Publisher emits outcome, decision and resolution events to a message bus.
type Publisher interface {
	PublishOutcome(ctx context.Context, rec *models.OutcomeRecord) error
	PublishDecision(ctx context.Context, d *models.EnsembleDecision) error
	PublishResolution(ctx context.Context, r *models.ResolvedDecision) error
	Close() error
}

// Storage persists decisions, outcomes and weight snapshots.
type Storage interface {
	Init(ctx context.Context) error
	StoreOutcome(ctx context.Context, rec *models.OutcomeRecord) error
	StoreDecision(ctx context.Context, d *models.EnsembleDecision) error
	StoreResolution(ctx context.Context, r *models.ResolvedDecision) error
	StoreWeights(ctx context.Context, ws []models.WeightSnapshot) error
	Health(ctx context.Context) error
	Close() error
}

// OutcomeStore is the read side used for buffer preload and history queries.
type OutcomeStore interface {
	LatestOutcomes(ctx context.Context, n int) ([]models.OutcomeRecord, error)
	DecisionHistory(ctx context.Context, from, to time.Time, limit int) ([]models.ResolvedDecision, error)
}

// Metrics records operational measurements.
type Metrics interface {
	RecordPrediction(tier, label string)
	RecordResolution(correct bool)
	RecordModelWeight(model string, weight, recentAccuracy float64)
	RecordStreak(wins, losses int)
	RecordError(kind string)
	RecordLatency(op string, seconds float64)
}
