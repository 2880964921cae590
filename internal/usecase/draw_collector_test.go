package usecase

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

// flakyStream fails its first Read the way the feed clients do: one error on
// the error channel, then both channels closed. Subsequent reads emit draws
// and stay open.
type flakyStream struct {
	mu         sync.Mutex
	draws      []models.DrawResult
	reads      int
	reconnects int
	connected  bool
}

func (s *flakyStream) Connect(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.connected = true
	return nil
}

func (s *flakyStream) Read(ctx context.Context) (<-chan models.DrawResult, <-chan error) {
	s.mu.Lock()
	s.reads++
	first := s.reads == 1
	s.mu.Unlock()

	drCh := make(chan models.DrawResult, len(s.draws)+1)
	errCh := make(chan error, 1)
	if first {
		errCh <- errors.New("poll failed")
		close(errCh)
		close(drCh)
		return drCh, errCh
	}
	for _, d := range s.draws {
		drCh <- d
	}
	return drCh, errCh
}

func (s *flakyStream) Reconnect(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reconnects++
	s.connected = true
	return nil
}

func (s *flakyStream) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.connected = false
	return nil
}

func (s *flakyStream) IsConnected() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.connected
}

func TestDrawCollectorReconnectsAfterFeedFailure(t *testing.T) {
	// The consume select can drain either the pending error or the closed
	// draw channel first; repeat to exercise both orders.
	for trial := 0; trial < 25; trial++ {
		stream := &flakyStream{draws: []models.DrawResult{*draw(1, 7), *draw(2, 2), *draw(3, 9)}}
		svc := newTestService(t, &fakeStorage{})
		coll := NewDrawCollector(stream, svc, noopMetrics{}, nil)

		ctx, cancel := context.WithCancel(context.Background())
		require.NoError(t, coll.Start(ctx))

		deadline := time.Now().Add(2 * time.Second)
		for svc.BufferLen() < 3 && time.Now().Before(deadline) {
			time.Sleep(2 * time.Millisecond)
		}
		cancel()

		assert.Equal(t, 3, svc.BufferLen(), "trial %d: draws not ingested after feed failure", trial)

		stream.mu.Lock()
		assert.Equal(t, 1, stream.reconnects, "trial %d", trial)
		assert.Equal(t, 2, stream.reads, "trial %d", trial)
		stream.mu.Unlock()
	}
}
