package scraper

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"ValuPull/internal/domain/models"
	domsvc "ValuPull/internal/domain/service"
	"ValuPull/internal/services/parse"
	xlogger "ValuPull/pkg/logger"
)

const (
	defaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36"
	defaultTimeout   = 15 * time.Second

	// Currency-prefixed numbers found away from a keyword must clear this
	// floor to count as a valuation.
	minPlausibleAmount = 100_000

	// Keyword matches look for a currency number within this many bytes.
	proximityWindow = 200

	msgTimeout  = "request timeout"
	msgFormOnly = "Valuation requires interactive form submission on this site"
)

// defaultKeywords anchor the first search pass. One generic routine serves
// every source; the keyword set is the only parameterization.
var defaultKeywords = []string{"valuation", "price", "value"}

// currencyNumber matches an HKD-prefixed decimal number in lowercased text.
var currencyNumber = regexp.MustCompile(`(?:hk\$|hkd|\$)\s*([\d,]+(?:\.\d+)?)`)

// Extractor fetches a source's public valuation page and searches its visible
// text for a currency amount.
type Extractor struct {
	client    *http.Client
	logger    *xlogger.Logger
	userAgent string
	keywords  []string
}

// Option configures Extractor.
type Option func(*Extractor)

// New creates a page-fetch extractor with a bounded request timeout.
func New(logger *xlogger.Logger, opts ...Option) *Extractor {
	e := &Extractor{
		client:    &http.Client{Timeout: defaultTimeout},
		logger:    logger,
		userAgent: defaultUserAgent,
		keywords:  defaultKeywords,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// WithTimeout overrides the fetch timeout.
func WithTimeout(d time.Duration) Option {
	return func(e *Extractor) {
		if d > 0 {
			e.client = &http.Client{Timeout: d}
		}
	}
}

// WithUserAgent overrides the request user agent.
func WithUserAgent(ua string) Option {
	return func(e *Extractor) {
		if ua != "" {
			e.userAgent = ua
		}
	}
}

// WithKeywords overrides the keyword set for the first search pass.
func WithKeywords(kws []string) Option {
	return func(e *Extractor) {
		if len(kws) > 0 {
			e.keywords = kws
		}
	}
}

// Extract implements service.Extractor.
func (e *Extractor) Extract(ctx context.Context, source models.ValuationSource, address string) models.ValuationResult {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, source.QueryTarget, nil)
	if err != nil {
		return models.ErrorResult(source.Name, fmt.Sprintf("build request: %v", err))
	}
	req.Header.Set("User-Agent", e.userAgent)

	resp, err := e.client.Do(req)
	if err != nil {
		if isTimeout(err) {
			return models.ErrorResult(source.Name, msgTimeout)
		}
		e.logger.Warn("page fetch failed", xlogger.String("source", source.Name), xlogger.Error(err))
		return models.ErrorResult(source.Name, err.Error())
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return models.ErrorResult(source.Name, fmt.Sprintf("HTTP %d", resp.StatusCode))
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return models.ErrorResult(source.Name, fmt.Sprintf("parse html: %v", err))
	}

	if v, ok := findValuation(visibleText(doc), e.keywords); ok {
		return models.SuccessResult(source.Name, v)
	}
	// These pages expose valuations only after an interactive address lookup.
	return models.NotAvailableResult(source.Name, msgFormOnly)
}

// visibleText strips non-content elements and returns the page text,
// lowercased with whitespace collapsed.
func visibleText(doc *goquery.Document) string {
	doc.Find("script, style, noscript, nav, footer, aside").Remove()
	text := doc.Find("body").Text()
	if text == "" {
		text = doc.Text()
	}
	return strings.ToLower(strings.Join(strings.Fields(text), " "))
}

// findValuation searches lowercased text in two passes: each keyword followed
// within proximityWindow by a currency-prefixed number, then any
// currency-prefixed number above the plausibility floor. First match wins.
func findValuation(text string, keywords []string) (float64, bool) {
	for _, kw := range keywords {
		at := 0
		for {
			i := strings.Index(text[at:], kw)
			if i < 0 {
				break
			}
			i += at
			end := i + len(kw) + proximityWindow
			if end > len(text) {
				end = len(text)
			}
			if m := currencyNumber.FindStringSubmatch(text[i:end]); m != nil {
				if v, ok := parse.FirstNumber(m[1]); ok && parse.InBounds(v) {
					return v, true
				}
			}
			at = i + len(kw)
		}
	}
	for _, m := range currencyNumber.FindAllStringSubmatch(text, -1) {
		if v, ok := parse.FirstNumber(m[1]); ok && v > minPlausibleAmount && parse.InBounds(v) {
			return v, true
		}
	}
	return 0, false
}

func isTimeout(err error) bool {
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return true
	}
	return errors.Is(err, context.DeadlineExceeded)
}

var _ domsvc.Extractor = (*Extractor)(nil)
