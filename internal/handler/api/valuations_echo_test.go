package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ValuPull/internal/domain/models"
	"ValuPull/internal/usecase"
	applogger "ValuPull/pkg/logger"
)

type stubExtractor struct {
	amount float64
	calls  int
}

func (s *stubExtractor) Extract(_ context.Context, src models.ValuationSource, _ string) models.ValuationResult {
	s.calls++
	return models.SuccessResult(src.Name, s.amount)
}

type memLog struct {
	rows      []*models.Record
	healthErr error
}

func (m *memLog) Init(context.Context) error { return nil }
func (m *memLog) Insert(_ context.Context, rec *models.Record) error {
	m.rows = append(m.rows, rec)
	return nil
}
func (m *memLog) Health(context.Context) error { return m.healthErr }
func (m *memLog) Close() error                 { return nil }

type nopMetrics struct{}

func (nopMetrics) RecordValuation(string, string)      {}
func (nopMetrics) RecordError(string)                  {}
func (nopMetrics) RecordLastValuation(string, float64) {}
func (nopMetrics) RecordLatency(string, float64)       {}

func newTestHandler(t *testing.T, ext *stubExtractor, store *memLog) *ValuationsEchoHandler {
	t.Helper()
	logger, err := applogger.New(&applogger.Config{Level: "error", Format: "json", Output: "stdout"})
	require.NoError(t, err)

	sources := []models.ValuationSource{
		{Name: "HSBC Hong Kong", QueryTarget: "p"},
		{Name: "Hang Seng Bank", QueryTarget: "p"},
	}
	agg := usecase.NewAggregator(sources, ext, store, nopMetrics{}, logger)
	return NewValuationsEchoHandler(logger, agg, store)
}

func doRequest(h *ValuationsEchoHandler, method, path, body string) *httptest.ResponseRecorder {
	e := echo.New()
	h.RegisterRoutes(e)
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestAggregateOK(t *testing.T) {
	ext := &stubExtractor{amount: 8_500_000}
	store := &memLog{}
	h := newTestHandler(t, ext, store)

	rec := doRequest(h, http.MethodPost, "/aggregate", `{"address":"88 Caine Road","sessionId":"sess-1"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp models.AggregateResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "88 Caine Road", resp.Address)
	assert.Equal(t, "sess-1", resp.SessionID)
	require.Len(t, resp.Valuations, 2)
	assert.Equal(t, "HSBC Hong Kong", resp.Valuations[0].Source)
	require.NotNil(t, resp.Analytics.Average)
	assert.Equal(t, 8_500_000.0, *resp.Analytics.Average)
	assert.Len(t, store.rows, 2)
}

func TestAggregateMissingFields(t *testing.T) {
	for _, body := range []string{
		`{}`,
		`{"address":"88 Caine Road"}`,
		`{"sessionId":"sess-1"}`,
		`{"address":"","sessionId":"sess-1"}`,
		`{"address":"   ","sessionId":"sess-1"}`,
	} {
		ext := &stubExtractor{amount: 1_000_000}
		h := newTestHandler(t, ext, &memLog{})

		rec := doRequest(h, http.MethodPost, "/aggregate", body)
		assert.Equal(t, http.StatusBadRequest, rec.Code, body)

		var errBody struct {
			Error string `json:"error"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &errBody))
		assert.Equal(t, "Address and sessionId are required", errBody.Error)
		assert.Zero(t, ext.calls)
	}
}

func TestAggregateMalformedJSON(t *testing.T) {
	h := newTestHandler(t, &stubExtractor{amount: 1}, &memLog{})
	rec := doRequest(h, http.MethodPost, "/aggregate", `{"address":`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHealth(t *testing.T) {
	h := newTestHandler(t, &stubExtractor{amount: 1}, &memLog{})
	rec := doRequest(h, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"ok"`)
}

func TestHealthDegraded(t *testing.T) {
	store := &memLog{healthErr: errors.New("dial tcp: connection refused")}
	h := newTestHandler(t, &stubExtractor{amount: 1}, store)
	rec := doRequest(h, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), "degraded")
}
