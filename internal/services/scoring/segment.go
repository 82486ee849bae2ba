// Package scoring implements the risk scoring, income segmentation and
// product recommendation policy for bank clients.
package scoring

import (
	"strings"

	"income-recommendation-engine/internal/models"
)

// DefaultIncome is the flat fallback used when neither the model prediction
// nor the stored income attribute is available.
const DefaultIncome = 50000.0

const (
	attrIncomeCategory = "incomeValueCategory"
	attrShareAbove1M   = "label_Above_1M_share_r1"
	attrShare500kTo1M  = "label_500k_to_1M_share_r1"
)

// ResolvePredictedIncome picks the income value the policy engine should work
// with. A failed or absent model prediction degrades to the stored income
// attribute and finally to the flat default; it never fails the request.
func ResolvePredictedIncome(attrs models.ClientAttributes, predicted *float64) float64 {
	if predicted != nil && *predicted > 0 {
		return *predicted
	}
	return attrs.NumericOr(attrIncomeValue, DefaultIncome)
}

// DetermineSegment maps a client to an income tier. The categorical income
// attribute takes precedence over numeric thresholds on the predicted income:
// the category reflects verified income while the prediction is an estimate.
func DetermineSegment(attrs models.ClientAttributes, predictedIncome float64) models.IncomeTier {
	if category, ok := attrs.Categorical(attrIncomeCategory); ok {
		if tier, matched := tierFromCategory(category); matched {
			return tier
		}
	}

	if predictedIncome > 200000 || attrs.NumericOr(attrShareAbove1M, 0) > 0.5 {
		return models.IncomeTierHigh
	}
	if predictedIncome > 100000 || attrs.NumericOr(attrShare500kTo1M, 0) > 0.3 {
		return models.IncomeTierMedium
	}
	if predictedIncome > 50000 || attrs.NumericOr(attrIncomeValue, 0) > 50000 {
		return models.IncomeTierMedium
	}

	return models.IncomeTierLow
}

// tierFromCategory matches the stored income category against the fixed
// lexicon. Higher brackets are checked first: "500k_to_1m" also contains
// "500k", and "above_1m" contains "1m".
func tierFromCategory(category string) (models.IncomeTier, bool) {
	c := strings.ToLower(category)

	switch {
	case strings.Contains(c, "above_1m"), strings.Contains(c, "1m"), strings.Contains(c, "above"):
		return models.IncomeTierHigh, true
	case strings.Contains(c, "500k"), strings.Contains(c, "500_1m"):
		return models.IncomeTierHigh, true
	case strings.Contains(c, "200_500"), strings.Contains(c, "200k_to_500k"):
		return models.IncomeTierHigh, true
	case strings.Contains(c, "100_200"):
		return models.IncomeTierMedium, true
	case strings.Contains(c, "50_100"):
		return models.IncomeTierMedium, true
	}

	return "", false
}

// IncomeSegmentName returns the human-readable income bracket label used for
// metrics aggregation. Pure display logic: the category lexicon wins over the
// numeric bracket, and both inputs absent yields "Неизвестно".
func IncomeSegmentName(incomeValue *float64, incomeCategory string) string {
	if incomeCategory != "" {
		c := strings.ToLower(incomeCategory)

		switch {
		case strings.Contains(c, "below_50k"), strings.Contains(c, "50k"):
			return "Низкий доход (до 50 тыс.)"
		case strings.Contains(c, "50k_to_100k"), strings.Contains(c, "50_100"):
			return "Ниже среднего (50-100 тыс.)"
		case strings.Contains(c, "100k_to_200k"), strings.Contains(c, "100_200"):
			return "Средний доход (100-200 тыс.)"
		case strings.Contains(c, "200k_to_500k"), strings.Contains(c, "200_500"):
			return "Выше среднего (200-500 тыс.)"
		case strings.Contains(c, "500k_to_1m"), strings.Contains(c, "500_1m"), strings.Contains(c, "500k"):
			return "Высокий доход (500 тыс. - 1 млн.)"
		case strings.Contains(c, "above_1m"), strings.Contains(c, "1m"), strings.Contains(c, "above"):
			return "Очень высокий доход (свыше 1 млн.)"
		}
	}

	if incomeValue == nil {
		return "Неизвестно"
	}

	v := *incomeValue
	switch {
	case v < 30000:
		return "Очень низкий доход (до 30 тыс.)"
	case v < 50000:
		return "Низкий доход (30-50 тыс.)"
	case v < 100000:
		return "Ниже среднего (50-100 тыс.)"
	case v < 200000:
		return "Средний доход (100-200 тыс.)"
	case v < 500000:
		return "Выше среднего (200-500 тыс.)"
	case v < 1000000:
		return "Высокий доход (500 тыс. - 1 млн.)"
	default:
		return "Очень высокий доход (свыше 1 млн.)"
	}
}
