package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ValuPull/internal/domain/models"
	"ValuPull/pkg/cache"
	applogger "ValuPull/pkg/logger"
)

type stubExtractor struct {
	results map[string]models.ValuationResult
	calls   int
}

func (s *stubExtractor) Extract(_ context.Context, src models.ValuationSource, _ string) models.ValuationResult {
	s.calls++
	if r, ok := s.results[src.Name]; ok {
		return r
	}
	return models.NotAvailableResult(src.Name, "no data")
}

type fakeLog struct {
	rows    []*models.Record
	failFor map[string]error
}

func (f *fakeLog) Init(context.Context) error { return nil }
func (f *fakeLog) Insert(_ context.Context, rec *models.Record) error {
	if err, ok := f.failFor[rec.Source]; ok {
		return err
	}
	f.rows = append(f.rows, rec)
	return nil
}
func (f *fakeLog) Health(context.Context) error { return nil }
func (f *fakeLog) Close() error                 { return nil }

type fakePublisher struct {
	events []*models.Record
	err    error
}

func (f *fakePublisher) Publish(_ context.Context, rec *models.Record) error {
	if f.err != nil {
		return f.err
	}
	f.events = append(f.events, rec)
	return nil
}
func (f *fakePublisher) Close() error { return nil }

type nopMetrics struct{}

func (nopMetrics) RecordValuation(string, string)      {}
func (nopMetrics) RecordError(string)                  {}
func (nopMetrics) RecordLastValuation(string, float64) {}
func (nopMetrics) RecordLatency(string, float64)       {}

func testLogger(t *testing.T) *applogger.Logger {
	t.Helper()
	l, err := applogger.New(&applogger.Config{Level: "error", Format: "json", Output: "stdout"})
	require.NoError(t, err)
	return l
}

func testSources() []models.ValuationSource {
	names := []string{"HSBC Hong Kong", "Hang Seng Bank", "Bank of China (Hong Kong)", "Standard Chartered Hong Kong", "Centaline Property"}
	out := make([]models.ValuationSource, 0, len(names))
	for _, n := range names {
		out = append(out, models.ValuationSource{Name: n, QueryTarget: "prompt"})
	}
	return out
}

func TestAggregateOrderAndLength(t *testing.T) {
	sources := testSources()
	ext := &stubExtractor{results: map[string]models.ValuationResult{
		"HSBC Hong Kong":     models.SuccessResult("HSBC Hong Kong", 8_000_000),
		"Hang Seng Bank":     models.SuccessResult("Hang Seng Bank", 9_000_000),
		"Centaline Property": models.ErrorResult("Centaline Property", "request timeout"),
	}}
	store := &fakeLog{}
	pub := &fakePublisher{}

	agg := NewAggregator(sources, ext, store, nopMetrics{}, testLogger(t), WithPublisher(pub))
	resp, err := agg.Aggregate(context.Background(), "1 Queen's Road Central", "sess-1")
	require.NoError(t, err)

	require.Len(t, resp.Valuations, len(sources))
	for i, src := range sources {
		assert.Equal(t, src.Name, resp.Valuations[i].Source)
	}

	// one row per source regardless of outcome, same order
	require.Len(t, store.rows, len(sources))
	for i, src := range sources {
		assert.Equal(t, src.Name, store.rows[i].Source)
		assert.Equal(t, "sess-1", store.rows[i].SessionID)
		assert.Equal(t, "1 Queen's Road Central", store.rows[i].Address)
	}
	assert.Len(t, pub.events, len(sources))

	require.NotNil(t, resp.Analytics.Highest)
	assert.Equal(t, 9_000_000.0, *resp.Analytics.Highest)
	assert.Equal(t, 8_000_000.0, *resp.Analytics.Lowest)
	assert.Equal(t, 8_500_000.0, *resp.Analytics.Average)
}

func TestAggregateAmountStatusInvariant(t *testing.T) {
	sources := testSources()
	ext := &stubExtractor{results: map[string]models.ValuationResult{
		"HSBC Hong Kong": models.SuccessResult("HSBC Hong Kong", 8_000_000),
	}}
	agg := NewAggregator(sources, ext, &fakeLog{}, nopMetrics{}, testLogger(t))
	resp, err := agg.Aggregate(context.Background(), "addr", "sess")
	require.NoError(t, err)
	for _, v := range resp.Valuations {
		if v.Status == models.StatusSuccess {
			require.NotNil(t, v.Amount)
			assert.Greater(t, *v.Amount, 0.0)
		} else {
			assert.Nil(t, v.Amount)
		}
	}
}

func TestAggregateValidation(t *testing.T) {
	ext := &stubExtractor{}
	store := &fakeLog{}
	agg := NewAggregator(testSources(), ext, store, nopMetrics{}, testLogger(t))

	cases := []struct{ address, session string }{
		{"", "sess"},
		{"addr", ""},
		{"   ", "sess"},
		{"addr", "\t"},
	}
	for _, c := range cases {
		_, err := agg.Aggregate(context.Background(), c.address, c.session)
		assert.ErrorIs(t, err, models.ErrValidation)
	}
	// validation failures perform zero extractions and zero writes
	assert.Zero(t, ext.calls)
	assert.Empty(t, store.rows)
}

func TestAggregateMissingExtractor(t *testing.T) {
	agg := NewAggregator(testSources(), nil, &fakeLog{}, nopMetrics{}, testLogger(t))
	_, err := agg.Aggregate(context.Background(), "addr", "sess")
	assert.ErrorIs(t, err, models.ErrConfiguration)
}

func TestAggregatePersistFailureKeepsResult(t *testing.T) {
	sources := testSources()
	ext := &stubExtractor{results: map[string]models.ValuationResult{
		"Hang Seng Bank": models.SuccessResult("Hang Seng Bank", 7_700_000),
	}}
	store := &fakeLog{failFor: map[string]error{"Hang Seng Bank": errors.New("connection refused")}}
	agg := NewAggregator(sources, ext, store, nopMetrics{}, testLogger(t))

	resp, err := agg.Aggregate(context.Background(), "addr", "sess")
	require.NoError(t, err)

	require.Len(t, resp.Valuations, len(sources))
	assert.Equal(t, models.StatusSuccess, resp.Valuations[1].Status)
	// the failed row is missing from the log but the loop continued
	assert.Len(t, store.rows, len(sources)-1)
}

func TestAggregatePublishFailureIgnored(t *testing.T) {
	agg := NewAggregator(testSources(), &stubExtractor{}, &fakeLog{}, nopMetrics{}, testLogger(t),
		WithPublisher(&fakePublisher{err: errors.New("broker down")}))
	resp, err := agg.Aggregate(context.Background(), "addr", "sess")
	require.NoError(t, err)
	assert.Len(t, resp.Valuations, 5)
}

func TestAggregateCachesSuccesses(t *testing.T) {
	sources := testSources()
	results := map[string]models.ValuationResult{}
	for _, s := range sources {
		results[s.Name] = models.SuccessResult(s.Name, 5_000_000)
	}
	ext := &stubExtractor{results: results}
	mem := cache.NewMemoryCache(cache.WithMemoryMaxSize(64))
	defer mem.Close()

	agg := NewAggregator(sources, ext, &fakeLog{}, nopMetrics{}, testLogger(t),
		WithCache(mem, time.Minute))

	_, err := agg.Aggregate(context.Background(), "addr", "sess-1")
	require.NoError(t, err)
	require.Equal(t, len(sources), ext.calls)

	// second call for the same address is served from cache
	resp, err := agg.Aggregate(context.Background(), "addr", "sess-2")
	require.NoError(t, err)
	assert.Equal(t, len(sources), ext.calls)
	assert.Len(t, resp.Valuations, len(sources))

	// a different address goes back out
	_, err = agg.Aggregate(context.Background(), "other addr", "sess-3")
	require.NoError(t, err)
	assert.Equal(t, 2*len(sources), ext.calls)
}

func TestAggregateCanceledCallerStillCompletes(t *testing.T) {
	sources := testSources()
	ext := &stubExtractor{}
	store := &fakeLog{}
	agg := NewAggregator(sources, ext, store, nopMetrics{}, testLogger(t))

	ctx, cancel := context.WithCancel(context.Background())
	cancel() // caller already gone
	resp, err := agg.Aggregate(ctx, "addr", "sess")
	require.NoError(t, err)
	assert.Len(t, resp.Valuations, len(sources))
	assert.Len(t, store.rows, len(sources))
}
