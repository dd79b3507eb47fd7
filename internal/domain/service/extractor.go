package service

import (
	"context"

	"ValuPull/internal/domain/models"
)

// Extractor produces a valuation result for one source. Implementations must
// not fail outright: network errors, timeouts, non-2xx responses and
// unparsable content all resolve to a result with status error or
// not_available. The two concrete variants (model-query and page-fetch) are
// selected at configuration time and share this contract.
type Extractor interface {
	Extract(ctx context.Context, source models.ValuationSource, address string) models.ValuationResult
}
