package forecast

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"DrawPulse/internal/domain/models"
	domsvc "DrawPulse/internal/domain/service"
	"DrawPulse/pkg/util"
)

// Config holds engine construction parameters.
type Config struct {
	BufferCapacity int
	Seed           int64
}

// Engine owns all mutable forecasting state: the sliding buffer, the model
// tables, market state, weights and streak counters. No hidden globals;
// independent instances can run side by side.
type Engine struct {
	mu sync.Mutex

	buffer   *Buffer
	pattern  PatternTable
	markov   MarkovTable
	trend    TrendWindows
	market   models.MarketState
	book     *weightBook
	streak   models.RunStreak
	cell     *recurrentCell
	analyzer Analyzer
	seed     int64

	training atomic.Bool
}

// NewEngine creates an engine with an empty buffer and uniform weights.
func NewEngine(cfg Config) *Engine {
	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &Engine{
		buffer:  NewBuffer(cfg.BufferCapacity),
		pattern: make(PatternTable),
		markov:  make(MarkovTable),
		book:    newWeightBook(),
		seed:    seed,
	}
}

// Ingest inserts new outcome records, skipping periods already buffered.
func (e *Engine) Ingest(records []models.OutcomeRecord) int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.buffer.Ingest(records)
}

// Train rebuilds the pattern and Markov tables and the trend windows from
// the current buffer (full rebuild, never an incremental merge), then
// refreshes market state. Overlapping triggers collapse into one pass: the
// second caller observes false and proceeds with the previous model state.
func (e *Engine) Train() bool {
	if !e.training.CompareAndSwap(false, true) {
		return false
	}
	defer e.training.Store(false)

	e.mu.Lock()
	defer e.mu.Unlock()

	digits := e.buffer.RecentDigits(e.buffer.Len())
	bits := e.buffer.RecentBits(e.buffer.Len())

	// Build into fresh tables so a failed pass cannot leave partial state.
	pattern := buildPatternTable(digits)
	markov := buildMarkovTable(digits)
	trend := buildTrendWindows(bits)

	e.pattern = pattern
	e.markov = markov
	e.trend = trend
	e.market = e.analyzer.Analyze(e.buffer, e.market)
	return true
}

// Predict runs all ensemble members over the current buffer and combines
// their outputs. Total for any non-empty buffer: members fall back rather
// than fail.
func (e *Engine) Predict() (*models.EnsembleDecision, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	latest, ok := e.buffer.Latest()
	if !ok {
		return nil, fmt.Errorf("predict: empty buffer")
	}

	preds := []models.ModelPrediction{
		predictPattern(e.buffer, e.pattern),
		predictMarkov(e.buffer, e.markov),
		predictFrequency(e.buffer),
		predictTrend(e.trend),
		predictQuantum(e.buffer, e.market),
		predictLSTM(e.buffer, &e.cell, e.seed),
	}

	decision := aggregate(preds, e.book, e.market, e.streak)
	decision.PeriodID = util.NextPeriodID(latest.PeriodID)
	return decision, nil
}

// Resolve scores a prior decision against the true label, updating the
// streak counters and feeding each member's correctness to the weight
// adapter.
func (e *Engine) Resolve(decision models.EnsembleDecision, actual models.Label) models.ResolvedDecision {
	e.mu.Lock()
	defer e.mu.Unlock()

	correct := decision.Label == actual
	if correct {
		e.streak.Wins++
		e.streak.Losses = 0
	} else {
		e.streak.Losses++
		e.streak.Wins = 0
	}
	for _, p := range decision.Models {
		e.book.update(p.Model, p.Label == actual)
	}

	return models.ResolvedDecision{
		PeriodID:   decision.PeriodID,
		Predicted:  decision.Label,
		Actual:     actual,
		Correct:    correct,
		ResolvedAt: time.Now(),
	}
}

// BufferLen returns the number of buffered records.
func (e *Engine) BufferLen() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.buffer.Len()
}

// LatestPeriod returns the most recent buffered period ID, or "".
func (e *Engine) LatestPeriod() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	if rec, ok := e.buffer.Latest(); ok {
		return rec.PeriodID
	}
	return ""
}

// MarketState returns the last computed market state.
func (e *Engine) MarketState() models.MarketState {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.market
}

// Weights returns a copy of the live weight vector.
func (e *Engine) Weights() map[string]float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.book.snapshot()
}

// Performance returns a copy of the per-model counters.
func (e *Engine) Performance() map[string]models.ModelPerformance {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.book.performance()
}

// Streak returns the current win/loss counters.
func (e *Engine) Streak() models.RunStreak {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.streak
}

var _ domsvc.Engine = (*Engine)(nil)
