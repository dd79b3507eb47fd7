package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"ValuPull/internal/domain/models"
	domrepo "ValuPull/internal/domain/repository"
	domsvc "ValuPull/internal/domain/service"
	"ValuPull/pkg/cache"
	xlogger "ValuPull/pkg/logger"
)

// Aggregator runs the fan-out over the source registry for one aggregation
// request. Sources are processed strictly in registry order, sequentially;
// each source resolves (success, not_available, or error) before the next
// begins, so response order is deterministic and load on any one downstream
// stays bounded.
type Aggregator struct {
	sources   []models.ValuationSource
	extractor domsvc.Extractor
	store     domrepo.ValuationLog
	publisher domrepo.EventPublisher
	cache     cache.Service
	cacheTTL  time.Duration
	metrics   domrepo.Metrics
	logger    *xlogger.Logger
}

// AggregatorOption configures Aggregator.
type AggregatorOption func(*Aggregator)

// NewAggregator creates the aggregation orchestrator.
func NewAggregator(
	sources []models.ValuationSource,
	extractor domsvc.Extractor,
	store domrepo.ValuationLog,
	metrics domrepo.Metrics,
	logger *xlogger.Logger,
	opts ...AggregatorOption,
) *Aggregator {
	a := &Aggregator{
		sources:   sources,
		extractor: extractor,
		store:     store,
		metrics:   metrics,
		logger:    logger,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// WithPublisher enables best-effort event publication per persisted record.
func WithPublisher(p domrepo.EventPublisher) AggregatorOption {
	return func(a *Aggregator) {
		a.publisher = p
	}
}

// WithCache enables the per-(source,address) valuation cache. A hit skips the
// outbound call; a row is still logged for the session.
func WithCache(c cache.Service, ttl time.Duration) AggregatorOption {
	return func(a *Aggregator) {
		a.cache = c
		a.cacheTTL = ttl
	}
}

// Sources returns the registry this aggregator fans out over.
func (a *Aggregator) Sources() []models.ValuationSource {
	return a.sources
}

// Aggregate validates the request, queries every registry source in order and
// assembles the response with analytics. The returned valuations slice always
// has one entry per source; per-source failures never shorten it.
func (a *Aggregator) Aggregate(ctx context.Context, address, sessionID string) (*models.AggregateResponse, error) {
	address = strings.TrimSpace(address)
	sessionID = strings.TrimSpace(sessionID)
	if address == "" || sessionID == "" {
		return nil, models.ErrValidation
	}
	if a.extractor == nil {
		return nil, models.ErrConfiguration
	}

	// A caller disconnect must not cancel remaining sources or their log
	// writes; each outbound call carries its own timeout.
	ctx = context.WithoutCancel(ctx)

	results := make([]models.ValuationResult, 0, len(a.sources))
	for _, src := range a.sources {
		res := a.extractOne(ctx, src, address)
		results = append(results, res)
		a.record(ctx, address, sessionID, res)
	}

	return &models.AggregateResponse{
		Valuations: results,
		Analytics:  Summarize(results),
		Address:    address,
		SessionID:  sessionID,
	}, nil
}

func (a *Aggregator) extractOne(ctx context.Context, src models.ValuationSource, address string) models.ValuationResult {
	if a.cache != nil {
		var cached models.ValuationResult
		if err := a.cache.Get(ctx, cacheKey(src.Name, address), &cached); err == nil {
			a.metrics.RecordValuation(src.Name, string(cached.Status))
			return cached
		}
	}

	start := time.Now()
	res := a.extractor.Extract(ctx, src, address)
	a.metrics.RecordLatency("extract", time.Since(start).Seconds())
	a.metrics.RecordValuation(src.Name, string(res.Status))
	if res.Status == models.StatusSuccess && res.Amount != nil {
		a.metrics.RecordLastValuation(src.Name, *res.Amount)
	}

	if a.cache != nil && res.Status == models.StatusSuccess {
		if err := a.cache.Set(ctx, cacheKey(src.Name, address), res, a.cacheTTL); err != nil {
			a.logger.Warn("valuation cache set failed", xlogger.String("source", src.Name), xlogger.Error(err))
		}
	}
	return res
}

// record appends one row to the valuation log and publishes it downstream.
// Both are best-effort side channels: failures are logged and counted, never
// surfaced, and never abort the remaining sources.
func (a *Aggregator) record(ctx context.Context, address, sessionID string, res models.ValuationResult) {
	rec := &models.Record{
		Address:      address,
		Source:       res.Source,
		Amount:       res.Amount,
		Status:       res.Status,
		ErrorMessage: res.ErrorMessage,
		SessionID:    sessionID,
	}
	if err := a.store.Insert(ctx, rec); err != nil {
		a.metrics.RecordError("persist")
		a.logger.Warn("valuation insert failed", xlogger.String("source", res.Source), xlogger.Error(err))
	}
	if a.publisher != nil {
		if err := a.publisher.Publish(ctx, rec); err != nil {
			a.metrics.RecordError("publish")
			a.logger.Warn("valuation publish failed", xlogger.String("source", res.Source), xlogger.Error(err))
		}
	}
}

func cacheKey(source, address string) string {
	return fmt.Sprintf("valuation:%s:%s", source, address)
}
