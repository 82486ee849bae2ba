package scoring

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"income-recommendation-engine/internal/models"
)

func TestBuildRecommendations_NeverEmpty(t *testing.T) {
	riskScores := []float64{0.0, 0.39, 0.4, 0.69, 0.7, 1.0}
	tiers := []models.IncomeTier{
		models.IncomeTierLow,
		models.IncomeTierMedium,
		models.IncomeTierHigh,
		models.IncomeTier("unknown"),
	}

	for _, risk := range riskScores {
		for _, tier := range tiers {
			recs := BuildRecommendations(models.ClientAttributes{}, 50000, risk, tier)
			assert.NotEmpty(t, recs, "risk %.2f tier %s", risk, tier)
		}
	}
}

func TestBuildRecommendations_SequentialNumbering(t *testing.T) {
	recs := BuildRecommendations(models.ClientAttributes{}, 85000, 0.2, models.IncomeTierMedium)

	for i, rec := range recs {
		assert.Equal(t, i+1, rec.ID)
	}
}

func TestBuildRecommendations_LowRiskMediumSegment(t *testing.T) {
	// Low risk expands the medium base with affordable high-tier offers and
	// the savings product.
	attrs := models.ClientAttributes{"incomeValue": 85000.0}

	recs := BuildRecommendations(attrs, 85000, 0.35, models.IncomeTierMedium)

	names := make([]string, 0, len(recs))
	for _, rec := range recs {
		names = append(names, rec.ProductName)
	}

	// Medium base survives in full.
	assert.Contains(t, names, "Стандартная кредитная карта")
	assert.Contains(t, names, "Потребительский кредит")

	// High-tier credit offers exceed predicted income x3 and are filtered out.
	assert.NotContains(t, names, "Премиум кредитная карта")
	assert.NotContains(t, names, "Премиум кредит")

	// Non-credit high-tier offers pass the filter.
	assert.Contains(t, names, "Страхование жизни")

	// Savings offer is always appended for low-risk clients.
	assert.Contains(t, names, "Сберегательный вклад")

	assert.Greater(t, len(recs), len(BaseOffers(models.IncomeTierMedium)))
}

func TestBuildRecommendations_MediumRiskBaseOnly(t *testing.T) {
	recs := BuildRecommendations(models.ClientAttributes{}, 85000, 0.55, models.IncomeTierMedium)

	require.Len(t, recs, len(BaseOffers(models.IncomeTierMedium)))
	assert.NotContains(t, productNames(recs), "Сберегательный вклад")
}

func TestBuildRecommendations_RiskBoundaries(t *testing.T) {
	// Both boundaries are exclusive on the low side: 0.4 and 0.7 behave like
	// medium and high respectively.
	atLow := BuildRecommendations(models.ClientAttributes{}, 85000, 0.4, models.IncomeTierMedium)
	assert.Len(t, atLow, len(BaseOffers(models.IncomeTierMedium)))

	atHigh := BuildRecommendations(models.ClientAttributes{}, 85000, 0.7, models.IncomeTierMedium)
	assert.Equal(t, productNames(BaseOffersToRecs(models.IncomeTierLow)), productNames(atHigh))
}

func TestBuildRecommendations_HighRiskLowSegment(t *testing.T) {
	recs := BuildRecommendations(models.ClientAttributes{}, 30000, 0.85, models.IncomeTierLow)

	require.Len(t, recs, 1)
	assert.Equal(t, "Базовая кредитная карта", recs[0].ProductName)
	require.NotNil(t, recs[0].Limit)
	assert.Equal(t, 100000.0, *recs[0].Limit)
}

func TestBuildRecommendations_CreditLimitCap(t *testing.T) {
	// Cap: limit <= max(stored, predicted) x4. Predicted 85000 caps the
	// 1000000 consumer loan at 340000.
	attrs := models.ClientAttributes{"incomeValue": 85000.0}

	recs := BuildRecommendations(attrs, 85000, 0.5, models.IncomeTierMedium)

	maxLimit := 85000.0 * 4
	for _, rec := range recs {
		if rec.ProductType.IsCredit() && rec.Limit != nil {
			assert.LessOrEqual(t, *rec.Limit, maxLimit, rec.ProductName)
		}
	}

	loan := findRecommendation(t, recs, "Потребительский кредит")
	require.NotNil(t, loan.Limit)
	assert.Equal(t, maxLimit, *loan.Limit)
	assert.True(t, strings.Contains(strings.ToLower(loan.Reason), "лимит"),
		"capped offer reason should mention the limit: %s", loan.Reason)
}

func TestBuildRecommendations_CapDoesNotTouchDeposits(t *testing.T) {
	attrs := models.ClientAttributes{"incomeValue": 20000.0}

	recs := BuildRecommendations(attrs, 20000, 0.5, models.IncomeTierMedium)

	deposit := findRecommendation(t, recs, "Инвестиционный депозит")
	assert.Nil(t, deposit.Limit)
}

func TestBuildRecommendations_CapAnnotationNotDoubled(t *testing.T) {
	// The high-risk synthetic card already mentions the limit in its reason;
	// capping must not append the note again.
	attrs := models.ClientAttributes{"incomeValue": 10000.0}

	recs := BuildRecommendations(attrs, 10000, 0.9, models.IncomeTierLow)

	require.Len(t, recs, 1)
	assert.Equal(t, 1, strings.Count(strings.ToLower(recs[0].Reason), "лимит"))
}

func TestBuildRecommendations_CatalogNotMutated(t *testing.T) {
	attrs := models.ClientAttributes{"incomeValue": 85000.0}

	_ = BuildRecommendations(attrs, 85000, 0.5, models.IncomeTierMedium)

	loanOffer := BaseOffers(models.IncomeTierMedium)[1]
	require.NotNil(t, loanOffer.Limit)
	assert.Equal(t, 1000000.0, *loanOffer.Limit, "catalog must stay pristine across requests")
}

func productNames(recs []models.Recommendation) []string {
	names := make([]string, 0, len(recs))
	for _, rec := range recs {
		names = append(names, rec.ProductName)
	}
	return names
}

// BaseOffersToRecs numbers a tier's base offers the way the policy engine
// would, for comparing expected output.
func BaseOffersToRecs(tier models.IncomeTier) []models.Recommendation {
	offers := BaseOffers(tier)
	recs := make([]models.Recommendation, 0, len(offers))
	for i, offer := range offers {
		recs = append(recs, models.NewRecommendation(i+1, offer))
	}
	return recs
}

func findRecommendation(t *testing.T, recs []models.Recommendation, name string) models.Recommendation {
	t.Helper()
	for _, rec := range recs {
		if rec.ProductName == name {
			return rec
		}
	}
	t.Fatalf("recommendation %q not found", name)
	return models.Recommendation{}
}
