package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"DrawPulse/internal/domain/models"
	"DrawPulse/internal/domain/repository"
	pkgkafka "DrawPulse/pkg/kafka"
)

// schemaStatements create the database and tables, idempotent.
var schemaStatements = []string{
	`CREATE DATABASE IF NOT EXISTS drawpulse`,
	`CREATE TABLE IF NOT EXISTS drawpulse.outcomes (
		period_id   String,
		digit       UInt8,
		label       LowCardinality(String),
		observed_at DateTime64(3)
	) ENGINE = ReplacingMergeTree
	ORDER BY period_id`,
	`CREATE TABLE IF NOT EXISTS drawpulse.decisions (
		period_id        String,
		label            LowCardinality(String),
		confidence_pct   Float64,
		tier             LowCardinality(String),
		recommendation   String,
		agreement_pct    Float64,
		market_condition LowCardinality(String),
		recovery_mode    LowCardinality(String),
		reasoning        String,
		created_at       DateTime64(3)
	) ENGINE = ReplacingMergeTree
	ORDER BY period_id`,
	`CREATE TABLE IF NOT EXISTS drawpulse.resolutions (
		period_id   String,
		predicted   LowCardinality(String),
		actual      LowCardinality(String),
		digit       UInt8,
		correct     UInt8,
		resolved_at DateTime64(3)
	) ENGINE = ReplacingMergeTree
	ORDER BY period_id`,
	`CREATE TABLE IF NOT EXISTS drawpulse.weights (
		model           LowCardinality(String),
		weight          Float64,
		recent_accuracy Float64,
		updated_at      DateTime64(3)
	) ENGINE = MergeTree
	ORDER BY (model, updated_at)`,
}

// ClickHouseStorage implements Storage and OutcomeStore for ClickHouse.
type ClickHouseStorage struct {
	db       *sql.DB
	database string
}

// NewClickHouseStorage creates ClickHouse storage.
func NewClickHouseStorage(db *sql.DB) *ClickHouseStorage {
	return &ClickHouseStorage{db: db, database: "drawpulse"}
}

func (s *ClickHouseStorage) Init(ctx context.Context) error {
	for _, stmt := range schemaStatements {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("init schema: %w", err)
		}
	}
	return nil
}

func (s *ClickHouseStorage) StoreOutcome(ctx context.Context, rec *models.OutcomeRecord) error {
	q := fmt.Sprintf("INSERT INTO %s.outcomes (period_id, digit, label, observed_at) VALUES (?, ?, ?, ?)", s.database)
	_, err := s.db.ExecContext(ctx, q,
		rec.PeriodID,
		uint8(rec.Digit),
		string(rec.Label),
		rec.ObservedAt,
	)
	return err
}

func (s *ClickHouseStorage) StoreDecision(ctx context.Context, d *models.EnsembleDecision) error {
	q := fmt.Sprintf(`INSERT INTO %s.decisions
		(period_id, label, confidence_pct, tier, recommendation, agreement_pct, market_condition, recovery_mode, reasoning, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`, s.database)
	_, err := s.db.ExecContext(ctx, q,
		d.PeriodID,
		string(d.Label),
		d.ConfidencePct,
		string(d.Tier),
		d.Recommendation,
		d.AgreementPct,
		d.MarketCondition,
		string(d.RecoveryMode),
		strings.Join(d.Reasoning, "; "),
		d.CreatedAt,
	)
	return err
}

func (s *ClickHouseStorage) StoreResolution(ctx context.Context, r *models.ResolvedDecision) error {
	correct := uint8(0)
	if r.Correct {
		correct = 1
	}
	q := fmt.Sprintf(`INSERT INTO %s.resolutions
		(period_id, predicted, actual, digit, correct, resolved_at)
		VALUES (?, ?, ?, ?, ?, ?)`, s.database)
	_, err := s.db.ExecContext(ctx, q,
		r.PeriodID,
		string(r.Predicted),
		string(r.Actual),
		uint8(r.Digit),
		correct,
		r.ResolvedAt,
	)
	return err
}

func (s *ClickHouseStorage) StoreWeights(ctx context.Context, ws []models.WeightSnapshot) error {
	if len(ws) == 0 {
		return nil
	}
	values := make([]string, 0, len(ws))
	args := make([]interface{}, 0, len(ws)*4)
	for _, w := range ws {
		values = append(values, "(?, ?, ?, ?)")
		args = append(args, w.Model, w.Weight, w.RecentAccuracy, w.UpdatedAt)
	}
	q := fmt.Sprintf("INSERT INTO %s.weights (model, weight, recent_accuracy, updated_at) VALUES %s",
		s.database, strings.Join(values, ","))
	_, err := s.db.ExecContext(ctx, q, args...)
	return err
}

// LatestOutcomes fetches the most recent n outcomes in chronological order.
func (s *ClickHouseStorage) LatestOutcomes(ctx context.Context, n int) ([]models.OutcomeRecord, error) {
	q := fmt.Sprintf(`SELECT period_id, digit, label, observed_at
		FROM %s.outcomes FINAL
		ORDER BY observed_at DESC, period_id DESC
		LIMIT ?`, s.database)
	rows, err := s.db.QueryContext(ctx, q, n)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var recs []models.OutcomeRecord
	for rows.Next() {
		var rec models.OutcomeRecord
		var digit uint8
		var label string
		if err := rows.Scan(&rec.PeriodID, &digit, &label, &rec.ObservedAt); err != nil {
			return nil, err
		}
		rec.Digit = int(digit)
		rec.Label = models.Label(label)
		rec.Bit = models.BitFromDigit(rec.Digit)
		if !rec.Valid() {
			// Corrupt row; the core requires digits 0-9.
			continue
		}
		recs = append(recs, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	// Query returns newest first; callers expect oldest first.
	for i, j := 0, len(recs)-1; i < j; i, j = i+1, j-1 {
		recs[i], recs[j] = recs[j], recs[i]
	}
	return recs, nil
}

// DecisionHistory fetches resolved decisions within a time range, newest first.
func (s *ClickHouseStorage) DecisionHistory(ctx context.Context, from, to time.Time, limit int) ([]models.ResolvedDecision, error) {
	q := fmt.Sprintf(`SELECT period_id, predicted, actual, digit, correct, resolved_at
		FROM %s.resolutions FINAL
		WHERE resolved_at >= ? AND resolved_at <= ?
		ORDER BY resolved_at DESC
		LIMIT ?`, s.database)
	rows, err := s.db.QueryContext(ctx, q, from, to, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.ResolvedDecision
	for rows.Next() {
		var r models.ResolvedDecision
		var predicted, actual string
		var digit, correct uint8
		if err := rows.Scan(&r.PeriodID, &predicted, &actual, &digit, &correct, &r.ResolvedAt); err != nil {
			return nil, err
		}
		r.Predicted = models.Label(predicted)
		r.Actual = models.Label(actual)
		r.Digit = int(digit)
		r.Correct = correct == 1
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *ClickHouseStorage) Health(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *ClickHouseStorage) Close() error {
	return nil // Managed by pkg
}

var (
	_ repository.Storage      = (*ClickHouseStorage)(nil)
	_ repository.OutcomeStore = (*ClickHouseStorage)(nil)
)

// KafkaPublisher implements Publisher for Kafka.
type KafkaPublisher struct {
	producer        *pkgkafka.Producer
	decisionTopic   string
	outcomeTopic    string
	resolutionTopic string
}

// NewKafkaPublisher creates Kafka publisher. Resolutions share the outcome
// topic, distinguished by payload shape.
func NewKafkaPublisher(producer *pkgkafka.Producer, decisionTopic, outcomeTopic string) repository.Publisher {
	return &KafkaPublisher{
		producer:        producer,
		decisionTopic:   decisionTopic,
		outcomeTopic:    outcomeTopic,
		resolutionTopic: outcomeTopic,
	}
}

func (p *KafkaPublisher) PublishOutcome(ctx context.Context, rec *models.OutcomeRecord) error {
	return p.producer.Publish(ctx, p.outcomeTopic, []byte(rec.PeriodID), rec)
}

func (p *KafkaPublisher) PublishDecision(ctx context.Context, d *models.EnsembleDecision) error {
	return p.producer.Publish(ctx, p.decisionTopic, []byte(d.PeriodID), d)
}

func (p *KafkaPublisher) PublishResolution(ctx context.Context, r *models.ResolvedDecision) error {
	return p.producer.Publish(ctx, p.resolutionTopic, []byte(r.PeriodID), r)
}

func (p *KafkaPublisher) Close() error {
	if p.producer != nil {
		return p.producer.Close()
	}
	return nil
}
