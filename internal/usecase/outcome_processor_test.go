package usecase

import (
	"context"
	"testing"
	"time"

	"DrawPulse/internal/domain/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOutcomeProcessorRoutesToClickHouse(t *testing.T) {
	store := &fakeStorage{}
	pub := &fakePublisher{}
	p := NewOutcomeProcessor(pub, store, noopMetrics{}, "clickhouse", 100, time.Second)
	ctx := context.Background()

	rec := models.NewOutcomeRecord(*draw(1, 7))
	require.NoError(t, p.ProcessOutcome(ctx, &rec))
	require.NoError(t, p.ProcessDecision(ctx, &models.EnsembleDecision{PeriodID: period(2)}))
	require.NoError(t, p.ProcessResolution(ctx, &models.ResolvedDecision{PeriodID: period(2)}))
	require.NoError(t, p.ProcessWeights(ctx, []models.WeightSnapshot{{Model: "pattern", Weight: 0.2}}))

	assert.Len(t, store.outcomes, 1)
	assert.Len(t, store.decisions, 1)
	assert.Len(t, store.resolutions, 1)
	assert.Len(t, store.weights, 1)
	assert.Zero(t, pub.outcomes+pub.decisions+pub.resolutions)
}

func TestOutcomeProcessorRoutesToKafka(t *testing.T) {
	store := &fakeStorage{}
	pub := &fakePublisher{}
	p := NewOutcomeProcessor(pub, store, noopMetrics{}, "kafka", 100, time.Second)
	ctx := context.Background()

	rec := models.NewOutcomeRecord(*draw(1, 3))
	require.NoError(t, p.ProcessOutcome(ctx, &rec))
	require.NoError(t, p.ProcessDecision(ctx, &models.EnsembleDecision{PeriodID: period(2)}))
	require.NoError(t, p.ProcessResolution(ctx, &models.ResolvedDecision{PeriodID: period(2)}))

	assert.Equal(t, 1, pub.outcomes)
	assert.Equal(t, 1, pub.decisions)
	assert.Equal(t, 1, pub.resolutions)
	assert.Empty(t, store.outcomes)

	// weights are storage-only; kafka backend skips them without error
	require.NoError(t, p.ProcessWeights(ctx, []models.WeightSnapshot{{Model: "markov", Weight: 0.1}}))
	assert.Empty(t, store.weights)
}

func TestOutcomeProcessorUnknownBackend(t *testing.T) {
	p := NewOutcomeProcessor(&fakePublisher{}, &fakeStorage{}, noopMetrics{}, "postgres", 100, time.Second)
	rec := models.NewOutcomeRecord(*draw(1, 3))
	assert.Error(t, p.ProcessOutcome(context.Background(), &rec))
	assert.Error(t, p.ProcessOutcome(context.Background(), nil))
}

func TestHistoryUseCaseClampsLimit(t *testing.T) {
	outs := &fakeOutcomeStore{}
	for i := 0; i < 10; i++ {
		outs.history = append(outs.history, models.ResolvedDecision{
			PeriodID: period(i + 1),
			Correct:  i%2 == 0,
		})
	}
	uc := NewHistoryUseCase(outs)
	ctx := context.Background()

	res, err := uc.GetHistory(ctx, GetHistoryParams{Limit: 10_000})
	require.NoError(t, err)
	assert.Equal(t, 500, outs.histLimit)
	assert.Equal(t, 10, res.Count)
	assert.Equal(t, 5, res.Wins)

	_, err = uc.GetHistory(ctx, GetHistoryParams{Limit: 0})
	require.NoError(t, err)
	assert.Equal(t, 50, outs.histLimit)

	_, err = uc.GetHistory(ctx, GetHistoryParams{
		From:  time.Now(),
		To:    time.Now().Add(-time.Hour),
		Limit: 5,
	})
	assert.Error(t, err)
}
