package usecase

import (
	"context"
	"encoding/json"
	"time"

	"DrawPulse/internal/domain/models"
	domrepo "DrawPulse/internal/domain/repository"
	pkgkafka "DrawPulse/pkg/kafka"
)

// KafkaOutcomesHandler consumes outcome events from Kafka and writes them to
// storage. Used in split deployments where the collector publishes and a
// separate instance persists.
type KafkaOutcomesHandler struct {
	topic   string
	storage domrepo.Storage
	metrics domrepo.Metrics
}

func NewKafkaOutcomesHandler(topic string, storage domrepo.Storage, metrics domrepo.Metrics) *KafkaOutcomesHandler {
	return &KafkaOutcomesHandler{topic: topic, storage: storage, metrics: metrics}
}

func (h *KafkaOutcomesHandler) Topic() string { return h.topic }

// incoming message schema matches models.OutcomeRecord JSON.
func (h *KafkaOutcomesHandler) Handle(ctx context.Context, b []byte) error {
	var rec models.OutcomeRecord
	if err := json.Unmarshal(b, &rec); err != nil {
		h.metrics.RecordError("consumer_unmarshal")
		return err
	}
	if !rec.Valid() {
		h.metrics.RecordError("consumer_invalid")
		return nil // poison row, do not retry
	}
	if rec.Label == "" {
		rec.Label = models.LabelFromDigit(rec.Digit)
		rec.Bit = models.BitFromDigit(rec.Digit)
	}
	if !rec.ObservedAt.IsZero() {
		// E2E latency from draw time to now (approx)
		h.metrics.RecordLatency("ingest_e2e_seconds", time.Since(rec.ObservedAt).Seconds())
	}

	start := time.Now()
	err := h.storage.StoreOutcome(ctx, &rec)
	h.metrics.RecordLatency("ch_insert_seconds", time.Since(start).Seconds())
	if err != nil {
		h.metrics.RecordError("consumer_store")
		return err
	}
	return nil
}

var _ pkgkafka.MessageHandler = (*KafkaOutcomesHandler)(nil)
