package usecase

import "ValuPull/internal/domain/models"

// Summarize reduces successful amounts to highest/lowest/average. Results
// with any other status are ignored; an empty success set yields all-nil
// analytics. No rounding is applied here.
func Summarize(results []models.ValuationResult) models.Analytics {
	amounts := make([]float64, 0, len(results))
	for _, r := range results {
		if r.Status == models.StatusSuccess && r.Amount != nil {
			amounts = append(amounts, *r.Amount)
		}
	}
	if len(amounts) == 0 {
		return models.Analytics{}
	}

	highest, lowest, sum := amounts[0], amounts[0], 0.0
	for _, v := range amounts {
		if v > highest {
			highest = v
		}
		if v < lowest {
			lowest = v
		}
		sum += v
	}
	average := sum / float64(len(amounts))
	return models.Analytics{Highest: &highest, Lowest: &lowest, Average: &average}
}
