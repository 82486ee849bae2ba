// Package scoring implements the risk scoring, income segmentation and
// product recommendation policy for bank clients.
package scoring

import (
	"math"
	"strings"

	"income-recommendation-engine/internal/models"
)

// Risk tier boundaries. Both are half-open on the right: a score of exactly
// 0.4 is medium risk, a score of exactly 0.7 is high risk.
const (
	LowRiskThreshold  = 0.4
	HighRiskThreshold = 0.7
)

// Limit multipliers used by the policy engine.
const (
	tierUpLimitMultiplier = 3 // next-tier credit offers must fit predicted income x3
	capLimitMultiplier    = 4 // hard cap relative to the best known income
)

// limitCapNote is appended to an offer's reason when capping reduced its limit.
const limitCapNote = " (лимит снижен с учётом подтверждённого дохода)"

// BuildRecommendations selects, augments, filters and caps product offers for
// a client. The risk score alone drives tier transitions over the catalog
// indexed by segment; the result is never empty.
func BuildRecommendations(attrs models.ClientAttributes, predictedIncome, riskScore float64, segment models.IncomeTier) []models.Recommendation {
	var offers []models.ProductOffer

	switch {
	case riskScore < LowRiskThreshold:
		offers = append(offers, BaseOffers(segment)...)
		if next, ok := nextTierUp(segment); ok {
			offers = append(offers, filterTierUpOffers(BaseOffers(next), predictedIncome)...)
		}
		offers = append(offers, conservativeSavingsOffer())

	case riskScore < HighRiskThreshold:
		offers = append(offers, BaseOffers(segment)...)

	default:
		if down, ok := nextTierDown(segment); ok {
			offers = append(offers, BaseOffers(down)...)
		} else {
			offers = append(offers, basicCreditCardOffer())
		}
	}

	if len(offers) == 0 {
		offers = append(offers, BaseOffers(models.IncomeTierLow)...)
	}

	recommendations := make([]models.Recommendation, 0, len(offers))
	for i, offer := range offers {
		recommendations = append(recommendations, models.NewRecommendation(i+1, offer))
	}

	capCreditLimits(recommendations, attrs, predictedIncome)

	return recommendations
}

// nextTierUp returns the tier above the given one, if any.
func nextTierUp(tier models.IncomeTier) (models.IncomeTier, bool) {
	switch tier {
	case models.IncomeTierLow:
		return models.IncomeTierMedium, true
	case models.IncomeTierMedium:
		return models.IncomeTierHigh, true
	default:
		return "", false
	}
}

// nextTierDown returns the tier below the given one, if any.
func nextTierDown(tier models.IncomeTier) (models.IncomeTier, bool) {
	switch tier {
	case models.IncomeTierHigh:
		return models.IncomeTierMedium, true
	case models.IncomeTierMedium:
		return models.IncomeTierLow, true
	default:
		return "", false
	}
}

// filterTierUpOffers keeps next-tier offers a low-risk client can carry:
// deposits unconditionally, credit products only when their limit fits three
// predicted incomes. Offers without a limit pass through.
func filterTierUpOffers(offers []models.ProductOffer, predictedIncome float64) []models.ProductOffer {
	kept := make([]models.ProductOffer, 0, len(offers))
	for _, offer := range offers {
		if offer.ProductType.IsCredit() && offer.Limit != nil &&
			*offer.Limit > predictedIncome*tierUpLimitMultiplier {
			continue
		}
		kept = append(kept, offer)
	}
	return kept
}

// capCreditLimits enforces the hard income cap on every credit-type offer:
// limit <= max(stored income, predicted income) x4. When capping reduces a
// limit, the reason is annotated unless it already mentions the limit.
func capCreditLimits(recommendations []models.Recommendation, attrs models.ClientAttributes, predictedIncome float64) {
	income := math.Max(attrs.NumericOr(attrIncomeValue, 0), predictedIncome)
	maxLimit := income * capLimitMultiplier

	for i := range recommendations {
		rec := &recommendations[i]
		if !rec.ProductType.IsCredit() || rec.Limit == nil {
			continue
		}
		if *rec.Limit <= maxLimit {
			continue
		}

		*rec.Limit = maxLimit
		if !mentionsLimit(rec.Reason) {
			rec.Reason += limitCapNote
		}
	}
}

func mentionsLimit(reason string) bool {
	r := strings.ToLower(reason)
	return strings.Contains(r, "лимит") || strings.Contains(r, "limit")
}
