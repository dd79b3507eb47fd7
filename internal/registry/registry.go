package registry

import "ValuPull/internal/domain/models"

// DefaultPrompt constrains the provider to answer with a bare number or the
// NOT_AVAILABLE sentinel. {source} and {address} are substituted per call.
const DefaultPrompt = `What is the current property valuation estimate from {source} for the property at "{address}" in Hong Kong? Please provide only the numerical value in Hong Kong Dollars (HKD). If you find a valuation, respond with just the number without currency symbols or commas. If no valuation is available, respond with "NOT_AVAILABLE". Focus on getting the most recent valuation data from {source}'s property valuation service or mortgage calculator.`

// sourceNames fixes the registry order. The response and the persisted rows
// follow this order regardless of per-source outcomes.
var sourceNames = []string{
	"HSBC Hong Kong",
	"Hang Seng Bank",
	"Bank of China (Hong Kong)",
	"Standard Chartered Hong Kong",
	"Centaline Property",
}

var pageTargets = map[string]string{
	"HSBC Hong Kong":               "https://www.hsbc.com.hk/mortgages/tools/property-valuation/",
	"Hang Seng Bank":               "https://www.hangseng.com/en-hk/e-valuation/address-search/",
	"Bank of China (Hong Kong)":    "https://www.bochk.com/en/mortgage/tools/propertyvaluation.html",
	"Standard Chartered Hong Kong": "https://www.sc.com/hk/mortgages/online-valuation/",
	"Centaline Property":           "https://hk.centanet.com/estate/en/",
}

// ModelSources returns the default registry for the model-query strategy.
// Every source shares the generic prompt template.
func ModelSources() []models.ValuationSource {
	out := make([]models.ValuationSource, 0, len(sourceNames))
	for _, n := range sourceNames {
		out = append(out, models.ValuationSource{Name: n, QueryTarget: DefaultPrompt})
	}
	return out
}

// PageSources returns the default registry for the page-fetch strategy.
func PageSources() []models.ValuationSource {
	out := make([]models.ValuationSource, 0, len(sourceNames))
	for _, n := range sourceNames {
		out = append(out, models.ValuationSource{Name: n, QueryTarget: pageTargets[n]})
	}
	return out
}

// Sources selects the default registry for the configured strategy.
func Sources(strategy string) []models.ValuationSource {
	if strategy == "page" {
		return PageSources()
	}
	return ModelSources()
}
