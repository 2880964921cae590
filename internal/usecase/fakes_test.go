package usecase

import (
	"context"
	"sync"
	"time"

	"DrawPulse/internal/domain/models"
)

type noopMetrics struct{}

func (noopMetrics) RecordPrediction(tier, label string)                            {}
func (noopMetrics) RecordResolution(correct bool)                                  {}
func (noopMetrics) RecordModelWeight(model string, weight, recentAccuracy float64) {}
func (noopMetrics) RecordStreak(wins, losses int)                                  {}
func (noopMetrics) RecordError(kind string)                                        {}
func (noopMetrics) RecordLatency(op string, seconds float64)                       {}

type fakeStorage struct {
	mu          sync.Mutex
	outcomes    []models.OutcomeRecord
	decisions   []models.EnsembleDecision
	resolutions []models.ResolvedDecision
	weights     []models.WeightSnapshot
	failStore   error
}

func (s *fakeStorage) Init(ctx context.Context) error { return nil }

func (s *fakeStorage) StoreOutcome(ctx context.Context, rec *models.OutcomeRecord) error {
	if s.failStore != nil {
		return s.failStore
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.outcomes = append(s.outcomes, *rec)
	return nil
}

func (s *fakeStorage) StoreDecision(ctx context.Context, d *models.EnsembleDecision) error {
	if s.failStore != nil {
		return s.failStore
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.decisions = append(s.decisions, *d)
	return nil
}

func (s *fakeStorage) StoreResolution(ctx context.Context, r *models.ResolvedDecision) error {
	if s.failStore != nil {
		return s.failStore
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.resolutions = append(s.resolutions, *r)
	return nil
}

func (s *fakeStorage) StoreWeights(ctx context.Context, ws []models.WeightSnapshot) error {
	if s.failStore != nil {
		return s.failStore
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.weights = append(s.weights, ws...)
	return nil
}

func (s *fakeStorage) Health(ctx context.Context) error { return nil }
func (s *fakeStorage) Close() error                     { return nil }

type fakeOutcomeStore struct {
	outcomes  []models.OutcomeRecord
	history   []models.ResolvedDecision
	histLimit int
}

func (s *fakeOutcomeStore) LatestOutcomes(ctx context.Context, n int) ([]models.OutcomeRecord, error) {
	if n > len(s.outcomes) {
		n = len(s.outcomes)
	}
	return s.outcomes[len(s.outcomes)-n:], nil
}

func (s *fakeOutcomeStore) DecisionHistory(ctx context.Context, from, to time.Time, limit int) ([]models.ResolvedDecision, error) {
	s.histLimit = limit
	if limit > len(s.history) {
		limit = len(s.history)
	}
	return s.history[:limit], nil
}

type fakePublisher struct {
	mu          sync.Mutex
	outcomes    int
	decisions   int
	resolutions int
}

func (p *fakePublisher) PublishOutcome(ctx context.Context, rec *models.OutcomeRecord) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.outcomes++
	return nil
}

func (p *fakePublisher) PublishDecision(ctx context.Context, d *models.EnsembleDecision) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.decisions++
	return nil
}

func (p *fakePublisher) PublishResolution(ctx context.Context, r *models.ResolvedDecision) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.resolutions++
	return nil
}

func (p *fakePublisher) Close() error { return nil }
