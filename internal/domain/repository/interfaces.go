package repository

import (
	"context"

	"ValuPull/internal/domain/models"
)

// ValuationLog is the insert-only store for valuation rows. Rows are
// independent; concurrent writers need no coordination.
type ValuationLog interface {
	Init(ctx context.Context) error // ensure tables, health checks
	Insert(ctx context.Context, rec *models.Record) error
	Health(ctx context.Context) error // ping
	Close() error
}

// EventPublisher emits persisted valuation records to a downstream stream.
// Publishing is best-effort and must never affect the in-flight response.
type EventPublisher interface {
	Publish(ctx context.Context, rec *models.Record) error
	Close() error
}

// Metrics records operational counters for the aggregation pipeline.
type Metrics interface {
	RecordValuation(source, status string)
	RecordError(kind string)
	RecordLastValuation(source string, amount float64)
	RecordLatency(op string, seconds float64)
}
