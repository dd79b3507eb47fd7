package models

import "errors"

// Status classifies the outcome of querying one source.
type Status string

const (
	StatusSuccess      Status = "success"
	StatusNotAvailable Status = "not_available"
	StatusError        Status = "error"
)

// Sanity bounds for a parsed HKD valuation. Anything outside is treated as a
// misparsed token, not a real amount.
const (
	MinAmount float64 = 0
	MaxAmount float64 = 1_000_000_000
)

var (
	// ErrValidation is returned when the aggregation request is missing
	// required fields. Surfaced to the caller as 400.
	ErrValidation = errors.New("Address and sessionId are required")

	// ErrConfiguration is returned when the upstream provider credential is
	// absent. Surfaced as 500 before any source processing begins.
	ErrConfiguration = errors.New("Perplexity API key not configured")
)

// ValuationSource is one named bank or property-data provider in the registry.
// QueryTarget is a prompt template for the model strategy or an absolute URL
// for the page strategy. Sources are fixed at process start.
type ValuationSource struct {
	Name        string `yaml:"name"`
	QueryTarget string `yaml:"query_target"`
}

// ValuationResult is the normalized outcome of one source extraction.
// Amount is set iff Status is success.
type ValuationResult struct {
	Source       string   `json:"source"`
	Amount       *float64 `json:"valuation_amount"`
	Status       Status   `json:"status"`
	ErrorMessage string   `json:"error_message,omitempty"`
}

// SuccessResult builds a success result carrying the parsed amount.
func SuccessResult(source string, amount float64) ValuationResult {
	return ValuationResult{Source: source, Amount: &amount, Status: StatusSuccess}
}

// NotAvailableResult builds a result for a source with no valuation data.
func NotAvailableResult(source, message string) ValuationResult {
	return ValuationResult{Source: source, Status: StatusNotAvailable, ErrorMessage: message}
}

// ErrorResult builds a result for a failed extraction. Extraction failures are
// always normalized to this shape and never propagate as errors.
func ErrorResult(source, message string) ValuationResult {
	return ValuationResult{Source: source, Status: StatusError, ErrorMessage: message}
}

// Record is one row of the append-only valuation log. Rows are written once
// per source per aggregation call and never updated.
type Record struct {
	Address      string
	Source       string
	Amount       *float64
	Status       Status
	ErrorMessage string
	SessionID    string
}

// Analytics is the reduction over successful amounts. All fields are nil when
// no source produced a usable number.
type Analytics struct {
	Highest *float64 `json:"highest"`
	Lowest  *float64 `json:"lowest"`
	Average *float64 `json:"average"`
}

// AggregateRequest is the inbound request body. SessionID is a caller-supplied
// correlation token used only to group persisted rows.
type AggregateRequest struct {
	Address   string `json:"address" validate:"required"`
	SessionID string `json:"sessionId" validate:"required"`
}

// AggregateResponse carries one result per registry source, in registry order.
type AggregateResponse struct {
	Valuations []ValuationResult `json:"valuations"`
	Analytics  Analytics         `json:"analytics"`
	Address    string            `json:"address"`
	SessionID  string            `json:"sessionId"`
}
