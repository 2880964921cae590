package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"DrawPulse/internal/domain/models"
	drepo "DrawPulse/internal/domain/repository"
	domsvc "DrawPulse/internal/domain/service"
	"DrawPulse/internal/service/cache"
	applogger "DrawPulse/pkg/logger"
	"DrawPulse/pkg/util"
)

const decisionCacheKey = "decision:latest"

// PredictionServiceConfig tunes the orchestration loop.
type PredictionServiceConfig struct {
	TrainInterval    time.Duration
	RetrainEveryN    int
	PreloadRecords   int
	AutoPredict      bool
	DecisionCacheTTL time.Duration
}

// PredictionService serializes ingest, training, prediction and outcome
// resolution around the forecasting engine. All entry points share one
// mutex; the engine never sees concurrent state transitions.
type PredictionService struct {
	mu sync.Mutex

	engine  domsvc.Engine
	proc    *OutcomeProcessor
	outs    drepo.OutcomeStore
	cache   cache.BytesCache
	metrics drepo.Metrics
	log     *applogger.Logger
	cfg     PredictionServiceConfig

	pending      *models.EnsembleDecision
	sinceRetrain int

	stopCh  chan struct{}
	started bool
}

// NewPredictionService creates the orchestration service.
func NewPredictionService(
	engine domsvc.Engine,
	proc *OutcomeProcessor,
	outs drepo.OutcomeStore,
	bc cache.BytesCache,
	metrics drepo.Metrics,
	log *applogger.Logger,
	cfg PredictionServiceConfig,
) *PredictionService {
	if cfg.RetrainEveryN <= 0 {
		cfg.RetrainEveryN = 10
	}
	if cfg.DecisionCacheTTL <= 0 {
		cfg.DecisionCacheTTL = 30 * time.Second
	}
	return &PredictionService{
		engine:  engine,
		proc:    proc,
		outs:    outs,
		cache:   bc,
		metrics: metrics,
		log:     log,
		cfg:     cfg,
		stopCh:  make(chan struct{}),
	}
}

// Preload warms the buffer from storage before the first prediction.
func (s *PredictionService) Preload(ctx context.Context) error {
	if s.outs == nil || s.cfg.PreloadRecords <= 0 {
		return nil
	}

	recs, err := s.outs.LatestOutcomes(ctx, s.cfg.PreloadRecords)
	if err != nil {
		return fmt.Errorf("preload outcomes: %w", err)
	}

	// Stored rows may predate validation; the core requires digits 0-9.
	valid := make([]models.OutcomeRecord, 0, len(recs))
	for _, rec := range recs {
		if !rec.Valid() {
			s.metrics.RecordError("preload_invalid")
			continue
		}
		valid = append(valid, rec)
	}

	s.mu.Lock()
	n := s.engine.Ingest(valid)
	s.engine.Train()
	s.mu.Unlock()

	s.log.Info("buffer preloaded",
		applogger.Int("fetched", len(recs)),
		applogger.Int("inserted", n),
	)
	return nil
}

// Start launches the scheduled training loop.
func (s *PredictionService) Start(ctx context.Context) {
	s.mu.Lock()
	if s.started || s.cfg.TrainInterval <= 0 {
		s.mu.Unlock()
		return
	}
	s.started = true
	s.mu.Unlock()

	go func() {
		ticker := time.NewTicker(s.cfg.TrainInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-s.stopCh:
				return
			case <-ticker.C:
				s.mu.Lock()
				s.engine.Train()
				s.mu.Unlock()
			}
		}
	}()
}

// Stop halts the scheduled training loop.
func (s *PredictionService) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.started {
		return
	}
	s.started = false
	close(s.stopCh)
}

// Process ingests one validated draw result: buffer update, pending
// resolution, persistence, retraining and optional auto-predict.
// Implements the pipeline's downstream contract.
func (s *PredictionService) Process(ctx context.Context, d *models.DrawResult) error {
	if d == nil || !d.Valid() {
		return fmt.Errorf("invalid draw result")
	}
	rec := models.NewOutcomeRecord(*d)

	s.mu.Lock()
	inserted := s.engine.Ingest([]models.OutcomeRecord{rec})
	if inserted == 0 {
		s.mu.Unlock()
		return nil
	}

	s.resolvePending(ctx, rec)

	s.sinceRetrain++
	if s.sinceRetrain >= s.cfg.RetrainEveryN {
		if s.engine.Train() {
			s.sinceRetrain = 0
		}
	}
	autoPredict := s.cfg.AutoPredict
	s.mu.Unlock()

	if err := s.proc.ProcessOutcome(ctx, &rec); err != nil {
		return err
	}

	if autoPredict {
		if _, err := s.Predict(ctx, true); err != nil {
			s.log.Warn("auto predict failed", applogger.Error(err))
		}
	}
	return nil
}

// resolvePending scores the outstanding decision against a newly arrived
// outcome. Caller holds the mutex.
func (s *PredictionService) resolvePending(ctx context.Context, rec models.OutcomeRecord) {
	if s.pending == nil {
		return
	}

	if rec.PeriodID != s.pending.PeriodID {
		// The feed skipped past the expected period. The decision can no
		// longer be scored fairly; drop it and move on.
		s.log.Warn("period desync, discarding pending decision",
			applogger.String("expected", s.pending.PeriodID),
			applogger.String("got", rec.PeriodID),
		)
		s.metrics.RecordError("period_desync")
		s.pending = nil
		return
	}

	res := s.engine.Resolve(*s.pending, rec.Label)
	res.Digit = rec.Digit
	s.pending = nil

	s.metrics.RecordResolution(res.Correct)
	streak := s.engine.Streak()
	s.metrics.RecordStreak(streak.Wins, streak.Losses)
	for model, w := range s.engine.Weights() {
		perf := s.engine.Performance()[model]
		s.metrics.RecordModelWeight(model, w, perf.RecentAccuracy)
	}

	s.log.Info("decision resolved",
		applogger.String("period", res.PeriodID),
		applogger.String("predicted", string(res.Predicted)),
		applogger.String("actual", string(res.Actual)),
		applogger.Bool("correct", res.Correct),
	)

	if err := s.proc.ProcessResolution(ctx, &res); err != nil {
		s.log.Error("persist resolution", applogger.Error(err))
	}
}

// Predict returns the current ensemble decision. With refresh=false a cached
// decision is served when present; otherwise a fresh one is computed,
// persisted and cached.
func (s *PredictionService) Predict(ctx context.Context, refresh bool) (*models.EnsembleDecision, error) {
	if !refresh && s.cache != nil {
		if b, ok, err := s.cache.GetBytes(decisionCacheKey); err == nil && ok {
			var d models.EnsembleDecision
			if err := json.Unmarshal(b, &d); err == nil {
				return &d, nil
			}
		}
	}

	start := time.Now()

	s.mu.Lock()
	d, err := s.engine.Predict()
	if err == nil {
		s.pending = d
	}
	s.mu.Unlock()
	if err != nil {
		s.metrics.RecordError("predict")
		return nil, err
	}

	s.metrics.RecordPrediction(string(d.Tier), string(d.Label))
	s.metrics.RecordLatency("predict", time.Since(start).Seconds())

	if err := s.proc.ProcessDecision(ctx, d); err != nil {
		s.log.Error("persist decision", applogger.Error(err))
	}
	if err := s.proc.ProcessWeights(ctx, s.weightSnapshots()); err != nil {
		s.log.Error("persist weights", applogger.Error(err))
	}

	if s.cache != nil {
		if b, err := json.Marshal(d); err == nil {
			_ = s.cache.SetBytes(decisionCacheKey, b, s.cfg.DecisionCacheTTL)
		}
	}

	s.log.Info("decision issued",
		applogger.String("period", d.PeriodID),
		applogger.String("label", string(d.Label)),
		applogger.Float64("confidence_pct", d.ConfidencePct),
		applogger.String("tier", string(d.Tier)),
	)
	return d, nil
}

func (s *PredictionService) weightSnapshots() []models.WeightSnapshot {
	s.mu.Lock()
	weights := s.engine.Weights()
	perf := s.engine.Performance()
	s.mu.Unlock()

	now := time.Now()
	ws := make([]models.WeightSnapshot, 0, len(weights))
	for model, w := range weights {
		ws = append(ws, models.WeightSnapshot{
			Model:          model,
			Weight:         w,
			RecentAccuracy: perf[model].RecentAccuracy,
			UpdatedAt:      now,
		})
	}
	return ws
}

// Train forces a training pass.
func (s *PredictionService) Train() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.engine.Train()
}

// MarketState returns the current market snapshot.
func (s *PredictionService) MarketState() models.MarketState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.engine.MarketState()
}

// Weights returns current weights and per-model performance.
func (s *PredictionService) Weights() (map[string]float64, map[string]models.ModelPerformance) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.engine.Weights(), s.engine.Performance()
}

// Streak returns current consecutive win/loss counters.
func (s *PredictionService) Streak() models.RunStreak {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.engine.Streak()
}

// BufferLen returns the number of buffered outcomes.
func (s *PredictionService) BufferLen() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.engine.BufferLen()
}

// NextPeriod returns the period the next decision would target.
func (s *PredictionService) NextPeriod() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	latest := s.engine.LatestPeriod()
	if latest == "" {
		return ""
	}
	return util.NextPeriodID(latest)
}
