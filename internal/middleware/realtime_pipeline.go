package middleware

import (
	"context"
	"fmt"
	"sync"
	"time"

	"DrawPulse/internal/domain/models"
	domrepo "DrawPulse/internal/domain/repository"
)

// Proc is the minimal processor interface the pipeline needs.
type Proc interface {
	Process(ctx context.Context, d *models.DrawResult) error
}

// RealtimePipeline sits between the draw feed and the engine/persistence path.
// It validates, de-duplicates repeated periods, and buffers when downstream
// is unavailable.
type RealtimePipeline struct {
	proc    Proc
	metrics domrepo.Metrics
	bufSize int
	bufCh   chan *models.DrawResult
	stopCh  chan struct{}
	started bool
	mu      sync.Mutex

	lastPeriod string // last accepted period

	// simple format transform hook (optional)
	transform func(*models.DrawResult) *models.DrawResult
	// metrics
	bufDepthGauge func(int)
}

type PipelineOption func(*RealtimePipeline)

// WithBufferSize sets the temporary buffer size when downstream is unavailable.
func WithBufferSize(n int) PipelineOption {
	return func(p *RealtimePipeline) {
		if n > 0 {
			p.bufSize = n
		}
	}
}

// WithTransform sets a transformation hook to modify the draw row.
func WithTransform(fn func(*models.DrawResult) *models.DrawResult) PipelineOption {
	return func(p *RealtimePipeline) { p.transform = fn }
}

// NewRealtimePipeline creates a new pipeline.
func NewRealtimePipeline(proc Proc, metrics domrepo.Metrics, opts ...PipelineOption) *RealtimePipeline {
	p := &RealtimePipeline{
		proc:    proc,
		metrics: metrics,
		bufSize: 1000, // default buffer
		bufCh:   make(chan *models.DrawResult, 1000),
		stopCh:  make(chan struct{}),
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.bufSize != cap(p.bufCh) {
		p.bufCh = make(chan *models.DrawResult, p.bufSize)
	}
	p.bufDepthGauge = func(n int) { p.metrics.RecordLatency("pipeline_buffer_depth", float64(n)) }
	return p
}

// Start launches background flushing of buffered draws.
func (p *RealtimePipeline) Start(ctx context.Context) {
	p.mu.Lock()
	if p.started {
		p.mu.Unlock()
		return
	}
	p.started = true
	p.mu.Unlock()

	go func() {
		backoff := 50 * time.Millisecond
		for {
			select {
			case <-p.stopCh:
				return
			case d := <-p.bufCh:
				if d == nil {
					continue
				}
				if err := p.proc.Process(ctx, d); err != nil {
					// exponential backoff with cap
					if backoff < 2*time.Second {
						backoff *= 2
					}
					p.metrics.RecordError("pipeline_flush")
					time.Sleep(backoff)
					// requeue if space; drop otherwise
					select {
					case p.bufCh <- d:
					default:
						p.metrics.RecordError("pipeline_buffer_drop")
					}
				} else {
					backoff = 50 * time.Millisecond
				}
			}
		}
	}()
}

// Stop stops the background flushing.
func (p *RealtimePipeline) Stop() {
	p.mu.Lock()
	if !p.started {
		p.mu.Unlock()
		return
	}
	p.started = false
	p.mu.Unlock()
	close(p.stopCh)
}

// Process validates, de-duplicates, and forwards the draw downstream,
// buffering on errors.
func (p *RealtimePipeline) Process(ctx context.Context, d *models.DrawResult) error {
	start := time.Now()
	if err := validateDraw(d); err != nil {
		p.metrics.RecordError("pipeline_validate")
		return err
	}
	if p.transform != nil {
		d = p.transform(d)
		if err := validateDraw(d); err != nil {
			p.metrics.RecordError("pipeline_transform_invalid")
			return err
		}
	}
	if !p.accept(d.PeriodID) {
		// repeated period; record and drop silently
		p.metrics.RecordError("pipeline_duplicate")
		return nil
	}

	if err := p.proc.Process(ctx, d); err != nil {
		p.metrics.RecordError("pipeline_process")
		// buffer non-blocking
		select {
		case p.bufCh <- d:
			if p.bufDepthGauge != nil {
				p.bufDepthGauge(len(p.bufCh))
			}
		default:
			p.metrics.RecordError("pipeline_buffer_full")
		}
		return fmt.Errorf("pipeline downstream: %w", err)
	}
	p.metrics.RecordLatency("pipeline_process", time.Since(start).Seconds())
	return nil
}

func validateDraw(d *models.DrawResult) error {
	if d == nil {
		return fmt.Errorf("draw nil")
	}
	if d.PeriodID == "" {
		return fmt.Errorf("period empty")
	}
	if d.Number < 0 || d.Number > 9 {
		return fmt.Errorf("digit out of range: %d", d.Number)
	}
	return nil
}

func (p *RealtimePipeline) accept(period string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if period == p.lastPeriod {
		return false
	}
	p.lastPeriod = period
	return true
}
