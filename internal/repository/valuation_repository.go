package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"ValuPull/internal/domain/models"
	domrepo "ValuPull/internal/domain/repository"
	pkgkafka "ValuPull/pkg/kafka"
)

// ClickHouseValuationLog implements ValuationLog on ClickHouse. Inserts are
// one row per result; rows are never updated or deleted by this service.
type ClickHouseValuationLog struct {
	db    *sql.DB
	table string
}

// NewClickHouseValuationLog creates ClickHouse-backed valuation log storage.
func NewClickHouseValuationLog(db *sql.DB, table string) domrepo.ValuationLog {
	return &ClickHouseValuationLog{db: db, table: table}
}

func (s *ClickHouseValuationLog) Init(ctx context.Context) error {
	return nil // Schema init in pkg
}

func (s *ClickHouseValuationLog) Insert(ctx context.Context, rec *models.Record) error {
	q := fmt.Sprintf("INSERT INTO %s (ts, address, source, valuation_amount, status, error_message, session_id) VALUES (?, ?, ?, ?, ?, ?, ?)", s.table)
	var amount interface{}
	if rec.Amount != nil {
		amount = *rec.Amount
	}
	_, err := s.db.ExecContext(ctx, q,
		time.Now().UTC(),
		rec.Address,
		rec.Source,
		amount,
		string(rec.Status),
		rec.ErrorMessage,
		rec.SessionID,
	)
	return err
}

func (s *ClickHouseValuationLog) Health(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *ClickHouseValuationLog) Close() error {
	return nil // Pool managed by pkg
}

// KafkaValuationPublisher implements EventPublisher for Kafka. Keyed by
// session so one aggregation call lands on one partition in order.
type KafkaValuationPublisher struct {
	producer *pkgkafka.Producer
	topic    string
}

// NewKafkaValuationPublisher creates a Kafka valuation event publisher.
func NewKafkaValuationPublisher(producer *pkgkafka.Producer, topic string) domrepo.EventPublisher {
	return &KafkaValuationPublisher{producer: producer, topic: topic}
}

func (p *KafkaValuationPublisher) Publish(ctx context.Context, rec *models.Record) error {
	return p.producer.Publish(ctx, p.topic, []byte(rec.SessionID), map[string]interface{}{
		"address":          rec.Address,
		"source":           rec.Source,
		"valuation_amount": rec.Amount,
		"status":           string(rec.Status),
		"error_message":    rec.ErrorMessage,
		"session_id":       rec.SessionID,
	})
}

func (p *KafkaValuationPublisher) Close() error {
	if p.producer != nil {
		return p.producer.Close()
	}
	return nil
}
