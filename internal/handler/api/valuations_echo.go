package api

import (
	"errors"
	"net/http"

	"ValuPull/internal/domain/models"
	domrepo "ValuPull/internal/domain/repository"
	"ValuPull/internal/usecase"
	xhttp "ValuPull/pkg/http"
	xlogger "ValuPull/pkg/logger"

	"github.com/labstack/echo/v4"
)

// ValuationsEchoHandler serves the aggregation endpoint.
type ValuationsEchoHandler struct {
	logger *xlogger.Logger
	agg    *usecase.Aggregator
	store  domrepo.ValuationLog
}

// NewValuationsEchoHandler creates the handler. store is used by the health
// endpoint only and may be nil.
func NewValuationsEchoHandler(logger *xlogger.Logger, agg *usecase.Aggregator, store domrepo.ValuationLog) *ValuationsEchoHandler {
	return &ValuationsEchoHandler{logger: logger, agg: agg, store: store}
}

func (h *ValuationsEchoHandler) RegisterRoutes(e *echo.Echo) {
	e.POST("/aggregate", h.Aggregate)
	e.GET("/health", h.Health)
}

// Aggregate handles POST /aggregate. The wire contract is fixed: 200 with the
// full response, 400 with {"error": ...} on missing fields, 500 with
// {"error": ...} on anything else. Preflight OPTIONS is answered by the CORS
// middleware before routing.
func (h *ValuationsEchoHandler) Aggregate(c echo.Context) error {
	req := &models.AggregateRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.ErrorResponse(c, http.StatusBadRequest, models.ErrValidation.Error())
	}

	resp, err := h.agg.Aggregate(c.Request().Context(), req.Address, req.SessionID)
	if err != nil {
		if errors.Is(err, models.ErrValidation) {
			return xhttp.ErrorResponse(c, http.StatusBadRequest, err.Error())
		}
		h.logger.Error("aggregate usecase error", xlogger.Error(err))
		return xhttp.ErrorResponse(c, http.StatusInternalServerError, err.Error())
	}
	return xhttp.OKResponse(c, resp)
}

// Health reports store connectivity.
func (h *ValuationsEchoHandler) Health(c echo.Context) error {
	status := map[string]string{"status": "ok"}
	if h.store != nil {
		if err := h.store.Health(c.Request().Context()); err != nil {
			status["status"] = "degraded"
			status["store"] = err.Error()
			return c.JSON(http.StatusServiceUnavailable, status)
		}
	}
	return c.JSON(http.StatusOK, status)
}
