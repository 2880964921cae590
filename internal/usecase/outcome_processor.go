package usecase

import (
	"context"
	"fmt"
	"time"

	"DrawPulse/internal/domain/models"
	drepo "DrawPulse/internal/domain/repository"
)

// OutcomeProcessor routes outcome, decision and resolution events to the
// configured backend.
type OutcomeProcessor struct {
	pub     drepo.Publisher
	store   drepo.Storage
	metrics drepo.Metrics
	backend string
	batchSz int
	batchTO time.Duration
}

// NewOutcomeProcessor creates a new OutcomeProcessor instance.
func NewOutcomeProcessor(
	pub drepo.Publisher,
	store drepo.Storage,
	metrics drepo.Metrics,
	backend string,
	batchSz int,
	batchTO time.Duration,
) *OutcomeProcessor {
	return &OutcomeProcessor{
		pub:     pub,
		store:   store,
		metrics: metrics,
		backend: backend,
		batchSz: batchSz,
		batchTO: batchTO,
	}
}

// ProcessOutcome routes a single draw outcome to the configured backend.
func (p *OutcomeProcessor) ProcessOutcome(ctx context.Context, rec *models.OutcomeRecord) error {
	if rec == nil {
		return fmt.Errorf("outcome is nil")
	}

	start := time.Now()
	var err error

	switch p.backend {
	case "kafka":
		err = p.pub.PublishOutcome(ctx, rec)
	case "clickhouse":
		err = p.store.StoreOutcome(ctx, rec)
	default:
		err = fmt.Errorf("unknown backend: %s", p.backend)
	}

	if err != nil {
		p.metrics.RecordError("process_outcome")
		return fmt.Errorf("process outcome: %w", err)
	}

	p.metrics.RecordLatency("process_outcome", time.Since(start).Seconds())
	return nil
}

// ProcessDecision routes an ensemble decision to the configured backend.
func (p *OutcomeProcessor) ProcessDecision(ctx context.Context, d *models.EnsembleDecision) error {
	if d == nil {
		return fmt.Errorf("decision is nil")
	}

	start := time.Now()
	var err error

	switch p.backend {
	case "kafka":
		err = p.pub.PublishDecision(ctx, d)
	case "clickhouse":
		err = p.store.StoreDecision(ctx, d)
	default:
		err = fmt.Errorf("unknown backend: %s", p.backend)
	}

	if err != nil {
		p.metrics.RecordError("process_decision")
		return fmt.Errorf("process decision: %w", err)
	}

	p.metrics.RecordLatency("process_decision", time.Since(start).Seconds())
	return nil
}

// ProcessResolution routes a scored decision to the configured backend.
func (p *OutcomeProcessor) ProcessResolution(ctx context.Context, r *models.ResolvedDecision) error {
	if r == nil {
		return fmt.Errorf("resolution is nil")
	}

	start := time.Now()
	var err error

	switch p.backend {
	case "kafka":
		err = p.pub.PublishResolution(ctx, r)
	case "clickhouse":
		err = p.store.StoreResolution(ctx, r)
	default:
		err = fmt.Errorf("unknown backend: %s", p.backend)
	}

	if err != nil {
		p.metrics.RecordError("process_resolution")
		return fmt.Errorf("process resolution: %w", err)
	}

	p.metrics.RecordLatency("process_resolution", time.Since(start).Seconds())
	return nil
}

// ProcessWeights persists a weight snapshot. Snapshots only go to direct
// storage; with a kafka backend they are reconstructed downstream from the
// decision stream.
func (p *OutcomeProcessor) ProcessWeights(ctx context.Context, ws []models.WeightSnapshot) error {
	if len(ws) == 0 || p.backend != "clickhouse" {
		return nil
	}

	start := time.Now()
	if err := p.store.StoreWeights(ctx, ws); err != nil {
		p.metrics.RecordError("process_weights")
		return fmt.Errorf("process weights: %w", err)
	}
	p.metrics.RecordLatency("process_weights", time.Since(start).Seconds())
	return nil
}

// ProcessOutcomeBatch routes multiple outcomes in one call.
func (p *OutcomeProcessor) ProcessOutcomeBatch(ctx context.Context, recs []*models.OutcomeRecord) error {
	if len(recs) == 0 {
		return nil
	}

	start := time.Now()
	for _, rec := range recs {
		if err := p.ProcessOutcome(ctx, rec); err != nil {
			p.metrics.RecordError("process_batch")
			return fmt.Errorf("process batch: %w", err)
		}
	}
	p.metrics.RecordLatency("process_batch", time.Since(start).Seconds())
	return nil
}

// Close closes underlying resources if available.
func (p *OutcomeProcessor) Close() {
	if p.pub != nil {
		_ = p.pub.Close()
	}
	if p.store != nil {
		_ = p.store.Close()
	}
}
