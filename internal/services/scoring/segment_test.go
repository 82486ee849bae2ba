package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"income-recommendation-engine/internal/models"
)

func TestDetermineSegment_CategoryWinsOverPrediction(t *testing.T) {
	// Verified income category outranks the model estimate.
	attrs := models.ClientAttributes{"incomeValueCategory": "500k_to_1M"}

	tier := DetermineSegment(attrs, 85000)

	assert.Equal(t, models.IncomeTierHigh, tier)
}

func TestDetermineSegment_CategoryLexicon(t *testing.T) {
	cases := []struct {
		category string
		expected models.IncomeTier
	}{
		{"Above_1M", models.IncomeTierHigh},
		{"500k_to_1M", models.IncomeTierHigh},
		{"200k_to_500k", models.IncomeTierHigh},
		{"100_200", models.IncomeTierMedium},
		{"50_100", models.IncomeTierMedium},
	}

	for _, tc := range cases {
		attrs := models.ClientAttributes{"incomeValueCategory": tc.category}
		assert.Equal(t, tc.expected, DetermineSegment(attrs, 10000), "category %s", tc.category)
	}
}

func TestDetermineSegment_NumericFallbacks(t *testing.T) {
	assert.Equal(t, models.IncomeTierHigh, DetermineSegment(models.ClientAttributes{}, 250000))
	assert.Equal(t, models.IncomeTierMedium, DetermineSegment(models.ClientAttributes{}, 150000))
	assert.Equal(t, models.IncomeTierMedium, DetermineSegment(models.ClientAttributes{}, 60000))
	assert.Equal(t, models.IncomeTierLow, DetermineSegment(models.ClientAttributes{}, 40000))
}

func TestDetermineSegment_ShareFeatures(t *testing.T) {
	highShare := models.ClientAttributes{"label_Above_1M_share_r1": 0.6}
	assert.Equal(t, models.IncomeTierHigh, DetermineSegment(highShare, 40000))

	mediumShare := models.ClientAttributes{"label_500k_to_1M_share_r1": 0.4}
	assert.Equal(t, models.IncomeTierMedium, DetermineSegment(mediumShare, 40000))
}

func TestDetermineSegment_StoredIncomeFallback(t *testing.T) {
	// Low prediction but stored income above 50k still lifts the client out of
	// the low tier.
	attrs := models.ClientAttributes{"incomeValue": 75000.0}

	assert.Equal(t, models.IncomeTierMedium, DetermineSegment(attrs, 30000))
}

func TestDetermineSegment_Idempotent(t *testing.T) {
	attrs := models.ClientAttributes{"incomeValue": 120000.0}

	first := DetermineSegment(attrs, 120000)
	second := DetermineSegment(attrs, 120000)

	assert.Equal(t, first, second)
}

func TestResolvePredictedIncome(t *testing.T) {
	predicted := 95000.0

	assert.Equal(t, 95000.0, ResolvePredictedIncome(models.ClientAttributes{}, &predicted))

	// Non-positive prediction falls through to the stored income.
	zero := 0.0
	attrs := models.ClientAttributes{"incomeValue": 70000.0}
	assert.Equal(t, 70000.0, ResolvePredictedIncome(attrs, &zero))
	assert.Equal(t, 70000.0, ResolvePredictedIncome(attrs, nil))

	// Nothing known: flat default.
	assert.Equal(t, DefaultIncome, ResolvePredictedIncome(models.ClientAttributes{}, nil))
}

func TestIncomeSegmentName_NumericBrackets(t *testing.T) {
	cases := []struct {
		income   float64
		expected string
	}{
		{25000, "Очень низкий доход (до 30 тыс.)"},
		{40000, "Низкий доход (30-50 тыс.)"},
		{75000, "Ниже среднего (50-100 тыс.)"},
		{150000, "Средний доход (100-200 тыс.)"},
		{350000, "Выше среднего (200-500 тыс.)"},
		{750000, "Высокий доход (500 тыс. - 1 млн.)"},
		{1500000, "Очень высокий доход (свыше 1 млн.)"},
	}

	for _, tc := range cases {
		income := tc.income
		assert.Equal(t, tc.expected, IncomeSegmentName(&income, ""), "income %.0f", tc.income)
	}
}

func TestIncomeSegmentName_CategoryWins(t *testing.T) {
	income := 25000.0

	name := IncomeSegmentName(&income, "above_1M")

	assert.Equal(t, "Очень высокий доход (свыше 1 млн.)", name)
}

func TestIncomeSegmentName_Unknown(t *testing.T) {
	assert.Equal(t, "Неизвестно", IncomeSegmentName(nil, ""))
}
