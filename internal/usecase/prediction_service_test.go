package usecase

import (
	"context"
	"fmt"
	"testing"
	"time"

	"DrawPulse/internal/domain/models"
	"DrawPulse/internal/service/cache"
	"DrawPulse/internal/services/forecast"
	applogger "DrawPulse/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger(t *testing.T) *applogger.Logger {
	t.Helper()
	l, err := applogger.New(&applogger.Config{Level: "error", Format: "json", Output: "stdout"})
	require.NoError(t, err)
	return l
}

func newTestService(t *testing.T, store *fakeStorage) *PredictionService {
	t.Helper()
	engine := forecast.NewEngine(forecast.Config{BufferCapacity: 100, Seed: 7})
	proc := NewOutcomeProcessor(&fakePublisher{}, store, noopMetrics{}, "clickhouse", 100, time.Second)
	return NewPredictionService(engine, proc, nil, cache.NewTTLCache(), noopMetrics{}, testLogger(t), PredictionServiceConfig{
		RetrainEveryN:    5,
		DecisionCacheTTL: time.Minute,
	})
}

func period(n int) string { return fmt.Sprintf("20260826-%04d", n) }

func draw(n, digit int) *models.DrawResult {
	return &models.DrawResult{PeriodID: period(n), Number: digit, ObservedAt: time.Now()}
}

func TestPredictionServiceProcessStoresOutcomes(t *testing.T) {
	store := &fakeStorage{}
	svc := newTestService(t, store)
	ctx := context.Background()

	for i := 1; i <= 35; i++ {
		require.NoError(t, svc.Process(ctx, draw(i, i%10)))
	}

	assert.Equal(t, 35, svc.BufferLen())
	assert.Len(t, store.outcomes, 35)

	// duplicate period is ignored silently
	require.NoError(t, svc.Process(ctx, draw(35, 3)))
	assert.Equal(t, 35, svc.BufferLen())
	assert.Len(t, store.outcomes, 35)
}

func TestPredictionServiceProcessRejectsInvalid(t *testing.T) {
	store := &fakeStorage{}
	svc := newTestService(t, store)

	err := svc.Process(context.Background(), &models.DrawResult{PeriodID: "x", Number: 12})
	assert.Error(t, err)
	assert.Error(t, svc.Process(context.Background(), nil))
}

func TestPredictionServicePredictPersistsAndTargetsNextPeriod(t *testing.T) {
	store := &fakeStorage{}
	svc := newTestService(t, store)
	ctx := context.Background()

	for i := 1; i <= 40; i++ {
		require.NoError(t, svc.Process(ctx, draw(i, (i*3)%10)))
	}

	d, err := svc.Predict(ctx, true)
	require.NoError(t, err)
	assert.Equal(t, period(41), d.PeriodID)
	assert.Len(t, store.decisions, 1)
	assert.Len(t, store.weights, len(forecast.ModelNames))
}

func TestPredictionServiceCachedPredict(t *testing.T) {
	store := &fakeStorage{}
	svc := newTestService(t, store)
	ctx := context.Background()

	for i := 1; i <= 40; i++ {
		require.NoError(t, svc.Process(ctx, draw(i, (i*7)%10)))
	}

	first, err := svc.Predict(ctx, true)
	require.NoError(t, err)

	// non-refresh call is served from cache, no extra persistence
	second, err := svc.Predict(ctx, false)
	require.NoError(t, err)
	assert.Equal(t, first.PeriodID, second.PeriodID)
	assert.Len(t, store.decisions, 1)
}

func TestPredictionServiceResolvesPendingDecision(t *testing.T) {
	store := &fakeStorage{}
	svc := newTestService(t, store)
	ctx := context.Background()

	for i := 1; i <= 40; i++ {
		require.NoError(t, svc.Process(ctx, draw(i, (i*3)%10)))
	}

	d, err := svc.Predict(ctx, true)
	require.NoError(t, err)

	// the expected period arrives
	require.NoError(t, svc.Process(ctx, draw(41, 8)))

	require.Len(t, store.resolutions, 1)
	res := store.resolutions[0]
	assert.Equal(t, d.PeriodID, res.PeriodID)
	assert.Equal(t, d.Label, res.Predicted)
	assert.Equal(t, models.LabelBig, res.Actual)
	assert.Equal(t, 8, res.Digit)
	assert.Equal(t, d.Label == models.LabelBig, res.Correct)

	streak := svc.Streak()
	assert.Equal(t, 1, streak.Wins+streak.Losses)
}

func TestPredictionServiceDiscardsPendingOnDesync(t *testing.T) {
	store := &fakeStorage{}
	svc := newTestService(t, store)
	ctx := context.Background()

	for i := 1; i <= 40; i++ {
		require.NoError(t, svc.Process(ctx, draw(i, (i*3)%10)))
	}

	_, err := svc.Predict(ctx, true)
	require.NoError(t, err)

	// feed jumps straight to period 43, skipping the expected 41
	require.NoError(t, svc.Process(ctx, draw(43, 2)))

	assert.Empty(t, store.resolutions)
	streak := svc.Streak()
	assert.Zero(t, streak.Wins)
	assert.Zero(t, streak.Losses)

	// service keeps predicting after the desync
	d, err := svc.Predict(ctx, true)
	require.NoError(t, err)
	assert.Equal(t, period(44), d.PeriodID)
}

func TestPredictionServicePreload(t *testing.T) {
	outs := &fakeOutcomeStore{}
	for i := 1; i <= 60; i++ {
		outs.outcomes = append(outs.outcomes, models.NewOutcomeRecord(*draw(i, i%10)))
	}

	engine := forecast.NewEngine(forecast.Config{BufferCapacity: 100, Seed: 7})
	proc := NewOutcomeProcessor(&fakePublisher{}, &fakeStorage{}, noopMetrics{}, "clickhouse", 100, time.Second)
	svc := NewPredictionService(engine, proc, outs, cache.NewTTLCache(), noopMetrics{}, testLogger(t), PredictionServiceConfig{
		PreloadRecords: 50,
	})

	require.NoError(t, svc.Preload(context.Background()))
	assert.Equal(t, 50, svc.BufferLen())
	assert.Equal(t, period(60), engine.LatestPeriod())
}

func TestPredictionServicePreloadSkipsCorruptRecords(t *testing.T) {
	outs := &fakeOutcomeStore{}
	for i := 1; i <= 40; i++ {
		outs.outcomes = append(outs.outcomes, models.NewOutcomeRecord(*draw(i, i%10)))
	}
	// Rows storage never should have accepted: out-of-range digit, missing period.
	outs.outcomes = append(outs.outcomes,
		models.OutcomeRecord{PeriodID: period(41), Digit: 12, Label: models.LabelBig, Bit: 1, ObservedAt: time.Now()},
		models.OutcomeRecord{Digit: 3, Label: models.LabelSmall, ObservedAt: time.Now()},
	)

	engine := forecast.NewEngine(forecast.Config{BufferCapacity: 100, Seed: 7})
	proc := NewOutcomeProcessor(&fakePublisher{}, &fakeStorage{}, noopMetrics{}, "clickhouse", 100, time.Second)
	svc := NewPredictionService(engine, proc, outs, cache.NewTTLCache(), noopMetrics{}, testLogger(t), PredictionServiceConfig{
		PreloadRecords: 50,
	})

	require.NoError(t, svc.Preload(context.Background()))
	assert.Equal(t, 40, svc.BufferLen())
	assert.Equal(t, period(40), engine.LatestPeriod())
}
