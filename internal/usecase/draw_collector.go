package usecase

import (
	"context"

	"DrawPulse/internal/domain/models"
	drepo "DrawPulse/internal/domain/repository"
	mid "DrawPulse/internal/middleware"
)

// DrawCollector collects draw results from the feed and runs them through
// the pipeline into the prediction service.
type DrawCollector struct {
	stream  drepo.DrawStream
	svc     *PredictionService
	metrics drepo.Metrics
	pipe    *mid.RealtimePipeline
}

// NewDrawCollector creates a new DrawCollector instance.
func NewDrawCollector(stream drepo.DrawStream, svc *PredictionService, metrics drepo.Metrics, pipe *mid.RealtimePipeline) *DrawCollector {
	return &DrawCollector{stream: stream, svc: svc, metrics: metrics, pipe: pipe}
}

// IsConnected returns true if the draw feed is connected.
func (c *DrawCollector) IsConnected() bool {
	return c.stream.IsConnected()
}

func (c *DrawCollector) Start(ctx context.Context) error {
	if err := c.stream.Connect(ctx); err != nil {
		return err
	}
	if c.pipe != nil {
		c.pipe.Start(ctx)
	}
	drCh, errCh := c.stream.Read(ctx)
	go c.consume(ctx, drCh, errCh)
	return nil
}

// consume drains the feed channels. Both feed clients report a terminal
// failure by sending one error and closing both channels, so closure of the
// draw channel is the reconnect signal regardless of which channel the
// select drains first.
func (c *DrawCollector) consume(ctx context.Context, drCh <-chan models.DrawResult, errCh <-chan error) {
	for {
		select {
		case <-ctx.Done():
			return
		case err, ok := <-errCh:
			if !ok {
				errCh = nil
				continue
			}
			if err != nil {
				c.metrics.RecordError("feed")
			}
		case d, ok := <-drCh:
			if !ok {
				if errCh != nil {
					if err, eok := <-errCh; eok && err != nil {
						c.metrics.RecordError("feed")
					}
				}
				drCh, errCh = c.reopen(ctx)
				if drCh == nil {
					return
				}
				continue
			}
			if c.pipe != nil {
				_ = c.pipe.Process(ctx, &d)
			} else {
				_ = c.svc.Process(ctx, &d)
			}
		}
	}
}

// reopen re-establishes the feed and returns fresh channels, retrying until
// the feed comes back or the context is cancelled. The stream's Reconnect
// carries the delay between attempts.
func (c *DrawCollector) reopen(ctx context.Context) (<-chan models.DrawResult, <-chan error) {
	for ctx.Err() == nil {
		if err := c.stream.Reconnect(ctx); err != nil {
			c.metrics.RecordError("feed_reconnect")
			continue
		}
		return c.stream.Read(ctx)
	}
	return nil, nil
}

func (c *DrawCollector) Stop() error { return c.stream.Close() }

// Service returns the underlying PredictionService for lifecycle management.
func (c *DrawCollector) Service() *PredictionService { return c.svc }

// Shutdown stops pipeline and closes the feed.
func (c *DrawCollector) Shutdown(ctx context.Context) error {
	if c.pipe != nil {
		c.pipe.Stop()
	}
	return c.stream.Close()
}
