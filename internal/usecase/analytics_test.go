package usecase

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"ValuPull/internal/domain/models"
)

func TestSummarizeEmpty(t *testing.T) {
	a := Summarize(nil)
	assert.Nil(t, a.Highest)
	assert.Nil(t, a.Lowest)
	assert.Nil(t, a.Average)
}

func TestSummarizeNoSuccesses(t *testing.T) {
	results := []models.ValuationResult{
		models.NotAvailableResult("HSBC Hong Kong", "no data"),
		models.ErrorResult("Hang Seng Bank", "request timeout"),
	}
	a := Summarize(results)
	assert.Nil(t, a.Highest)
	assert.Nil(t, a.Lowest)
	assert.Nil(t, a.Average)
}

func TestSummarizeBasic(t *testing.T) {
	results := []models.ValuationResult{
		models.SuccessResult("HSBC Hong Kong", 100),
		models.SuccessResult("Hang Seng Bank", 200),
		models.SuccessResult("Centaline Property", 300),
		models.ErrorResult("Bank of China (Hong Kong)", "boom"),
	}
	a := Summarize(results)
	if assert.NotNil(t, a.Highest) {
		assert.Equal(t, 300.0, *a.Highest)
	}
	if assert.NotNil(t, a.Lowest) {
		assert.Equal(t, 100.0, *a.Lowest)
	}
	if assert.NotNil(t, a.Average) {
		assert.Equal(t, 200.0, *a.Average)
	}
}

func TestSummarizeSingle(t *testing.T) {
	a := Summarize([]models.ValuationResult{models.SuccessResult("HSBC Hong Kong", 8_500_000)})
	if assert.NotNil(t, a.Average) {
		assert.Equal(t, 8_500_000.0, *a.Average)
		assert.Equal(t, *a.Highest, *a.Lowest)
	}
}
