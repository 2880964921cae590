package middleware

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"DrawPulse/internal/domain/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingProc struct {
	mu   sync.Mutex
	seen []string
	fail error
}

func (p *countingProc) Process(ctx context.Context, d *models.DrawResult) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.fail != nil {
		return p.fail
	}
	p.seen = append(p.seen, d.PeriodID)
	return nil
}

func (p *countingProc) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.seen)
}

type pipeMetrics struct {
	mu     sync.Mutex
	errors map[string]int
}

func (m *pipeMetrics) RecordPrediction(tier, label string)                            {}
func (m *pipeMetrics) RecordResolution(correct bool)                                  {}
func (m *pipeMetrics) RecordModelWeight(model string, weight, recentAccuracy float64) {}
func (m *pipeMetrics) RecordStreak(wins, losses int)                                  {}
func (m *pipeMetrics) RecordLatency(op string, seconds float64)                       {}

func (m *pipeMetrics) RecordError(kind string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.errors == nil {
		m.errors = make(map[string]int)
	}
	m.errors[kind]++
}

func (m *pipeMetrics) errCount(kind string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.errors[kind]
}

func TestPipelineRejectsInvalidDraws(t *testing.T) {
	proc := &countingProc{}
	m := &pipeMetrics{}
	p := NewRealtimePipeline(proc, m)
	ctx := context.Background()

	assert.Error(t, p.Process(ctx, nil))
	assert.Error(t, p.Process(ctx, &models.DrawResult{Number: 5}))
	assert.Error(t, p.Process(ctx, &models.DrawResult{PeriodID: "p1", Number: 11}))
	assert.Error(t, p.Process(ctx, &models.DrawResult{PeriodID: "p1", Number: -1}))
	assert.Zero(t, proc.count())
	assert.Equal(t, 4, m.errCount("pipeline_validate"))
}

func TestPipelineDropsRepeatedPeriod(t *testing.T) {
	proc := &countingProc{}
	m := &pipeMetrics{}
	p := NewRealtimePipeline(proc, m)
	ctx := context.Background()

	require.NoError(t, p.Process(ctx, &models.DrawResult{PeriodID: "p1", Number: 4}))
	require.NoError(t, p.Process(ctx, &models.DrawResult{PeriodID: "p1", Number: 4}))
	require.NoError(t, p.Process(ctx, &models.DrawResult{PeriodID: "p2", Number: 9}))

	assert.Equal(t, 2, proc.count())
	assert.Equal(t, 1, m.errCount("pipeline_duplicate"))
}

func TestPipelineBuffersOnDownstreamFailure(t *testing.T) {
	proc := &countingProc{fail: errors.New("downstream down")}
	m := &pipeMetrics{}
	p := NewRealtimePipeline(proc, m, WithBufferSize(10))
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	p.Start(ctx)
	defer p.Stop()

	err := p.Process(ctx, &models.DrawResult{PeriodID: "p1", Number: 4})
	assert.Error(t, err)

	// downstream recovers; the buffered draw flushes
	proc.mu.Lock()
	proc.fail = nil
	proc.mu.Unlock()

	deadline := time.Now().Add(2 * time.Second)
	for proc.count() == 0 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	assert.Equal(t, 1, proc.count())
}

func TestPipelineTransformHook(t *testing.T) {
	proc := &countingProc{}
	m := &pipeMetrics{}
	p := NewRealtimePipeline(proc, m, WithTransform(func(d *models.DrawResult) *models.DrawResult {
		d.PeriodID = "tx-" + d.PeriodID
		return d
	}))

	require.NoError(t, p.Process(context.Background(), &models.DrawResult{PeriodID: "p1", Number: 4}))
	require.Equal(t, 1, proc.count())
	assert.Equal(t, "tx-p1", proc.seen[0])
}
