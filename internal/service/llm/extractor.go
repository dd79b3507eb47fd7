package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"ValuPull/internal/domain/models"
	domsvc "ValuPull/internal/domain/service"
	"ValuPull/internal/registry"
	"ValuPull/internal/services/parse"
	xhttp "ValuPull/pkg/http"
	xlogger "ValuPull/pkg/logger"
)

const (
	defaultModel       = "sonar"
	defaultTemperature = 0.2
	defaultMaxTokens   = 100
	defaultTimeout     = 30 * time.Second

	// Restricts answers to a bare number or the sentinel; low temperature
	// favors literal numeric output over prose.
	systemPrompt = `You are a property valuation assistant. Provide only numerical values or "NOT_AVAILABLE". Do not include explanations.`

	msgNoData     = "No valuation data available from this source"
	msgUnparsable = "Could not parse valuation from response"
	msgEmpty      = "Empty response from API"
)

// Extractor queries a chat-completion endpoint for a source's valuation of an
// address and parses the answer into a ValuationResult.
type Extractor struct {
	client      *xhttp.Client
	logger      *xlogger.Logger
	baseURL     string
	apiKey      string
	model       string
	temperature float64
	maxTokens   int
	timeout     time.Duration
}

// Option configures Extractor.
type Option func(*Extractor)

// New creates a model-query extractor. The API key is required: a missing
// credential must short-circuit before any call is attempted.
func New(apiKey, baseURL string, logger *xlogger.Logger, opts ...Option) (*Extractor, error) {
	if apiKey == "" {
		return nil, models.ErrConfiguration
	}
	e := &Extractor{
		logger:      logger,
		baseURL:     strings.TrimSuffix(baseURL, "/"),
		apiKey:      apiKey,
		model:       defaultModel,
		temperature: defaultTemperature,
		maxTokens:   defaultMaxTokens,
		timeout:     defaultTimeout,
	}
	for _, opt := range opts {
		opt(e)
	}
	e.client = xhttp.NewClient(xhttp.WithTimeout(e.timeout))
	return e, nil
}

// WithModel overrides the completion model.
func WithModel(model string) Option {
	return func(e *Extractor) {
		if model != "" {
			e.model = model
		}
	}
}

// WithSampling overrides temperature and max response tokens.
func WithSampling(temperature float64, maxTokens int) Option {
	return func(e *Extractor) {
		if temperature > 0 {
			e.temperature = temperature
		}
		if maxTokens > 0 {
			e.maxTokens = maxTokens
		}
	}
}

// WithTimeout bounds the outbound call.
func WithTimeout(d time.Duration) Option {
	return func(e *Extractor) {
		if d > 0 {
			e.timeout = d
		}
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

// Extract implements service.Extractor. All failure paths resolve to a valid
// ValuationResult; nothing is raised past this boundary.
func (e *Extractor) Extract(ctx context.Context, source models.ValuationSource, address string) models.ValuationResult {
	body := &chatRequest{
		Model: e.model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: buildPrompt(source.QueryTarget, source.Name, address)},
		},
		Temperature: e.temperature,
		MaxTokens:   e.maxTokens,
	}

	resp, err := e.client.SendRequest(ctx, &xhttp.RequestOptions{
		Method: xhttp.MethodPost,
		URL:    e.baseURL + "/chat/completions",
		Headers: map[string]string{
			"Authorization": "Bearer " + e.apiKey,
			"Content-Type":  "application/json",
		},
		Body: body,
	})
	if err != nil {
		e.logger.Warn("completion request failed", xlogger.String("source", source.Name), xlogger.Error(err))
		return models.ErrorResult(source.Name, err.Error())
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		detail, _ := io.ReadAll(resp.Body)
		return models.ErrorResult(source.Name,
			fmt.Sprintf("Perplexity API error: %d - %s", resp.StatusCode, strings.TrimSpace(string(detail))))
	}

	var out chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return models.ErrorResult(source.Name, fmt.Sprintf("decode response: %v", err))
	}

	var content string
	if len(out.Choices) > 0 {
		content = strings.TrimSpace(out.Choices[0].Message.Content)
	}
	if content == "" {
		return models.ErrorResult(source.Name, msgEmpty)
	}
	if parse.ContainsSentinel(content) {
		return models.NotAvailableResult(source.Name, msgNoData)
	}
	if v, ok := parse.FirstNumber(content); ok && parse.InBounds(v) {
		return models.SuccessResult(source.Name, v)
	}
	return models.NotAvailableResult(source.Name, msgUnparsable)
}

func buildPrompt(template, source, address string) string {
	if template == "" {
		template = registry.DefaultPrompt
	}
	return strings.NewReplacer("{source}", source, "{address}", address).Replace(template)
}

var _ domsvc.Extractor = (*Extractor)(nil)
