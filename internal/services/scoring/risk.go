// Package scoring implements the risk scoring, income segmentation and
// product recommendation policy for bank clients.
package scoring

import (
	"math"

	"income-recommendation-engine/internal/models"
)

// Feature keys read by the risk factors. The feature store owns the schema;
// these are the only keys the scorer depends on.
const (
	attrIncomeValue        = "incomeValue"
	attrAge                = "age"
	attrCCBalance          = "hdb_bki_total_cc_balance"
	attrPILBalance         = "hdb_bki_total_pil_balance"
	attrIPBalance          = "hdb_bki_total_ip_balance"
	attrAnnualPayment      = "avg_annual_payment_sum"
	attrTotalMaxOverdue    = "hdb_bki_total_max_overdue_sum"
	attrOverdueSum         = "ovrd_sum"
	attrHDBOverdueSum      = "hdb_ovrd_sum"
	attrLoanCount          = "loan_cnt"
	attrOtherCredits       = "other_credits_count"
	attrDaysAfterRequest   = "days_after_last_request"
	attrApplicationSuccess = "vert_pil_loan_application_success_3m"
	attrIncomePerCapita    = "incomePerCapitaValue"
	attrTotalSeniority     = "dp_ils_total_seniority"
)

// riskFactor is one weighted component of the overall risk score. Every
// evaluator is total: it returns a documented default when its inputs are
// missing, so scoring never fails on sparse feature data.
type riskFactor struct {
	name   string
	weight float64
	eval   func(attrs models.ClientAttributes) float64
}

// riskFactors is the declarative factor table. Weights sum to 1.0; the
// thresholds are exact policy, not tunable defaults.
var riskFactors = []riskFactor{
	{name: "income", weight: 0.15, eval: incomeRisk},
	{name: "dti", weight: 0.20, eval: debtToIncomeRisk},
	{name: "payment_to_income", weight: 0.15, eval: paymentToIncomeRisk},
	{name: "age", weight: 0.05, eval: ageRisk},
	{name: "overdue", weight: 0.20, eval: overdueRisk},
	{name: "loans", weight: 0.08, eval: loanCountRisk},
	{name: "request_recency", weight: 0.05, eval: requestRecencyRisk},
	{name: "application_rejects", weight: 0.05, eval: applicationRejectionRisk},
	{name: "dependents", weight: 0.05, eval: dependentsRisk},
	{name: "job_stability", weight: 0.02, eval: jobStabilityRisk},
}

// CalculateRiskScore computes the weighted risk score for a client, from 0.0
// (low risk) to 1.0 (high risk), rounded to 3 decimals. It never fails: every
// factor substitutes its default when the underlying attributes are missing.
func CalculateRiskScore(attrs models.ClientAttributes) float64 {
	var weightedSum, totalWeight float64
	for _, factor := range riskFactors {
		weightedSum += factor.eval(attrs) * factor.weight
		totalWeight += factor.weight
	}

	if totalWeight == 0 {
		return 0.5
	}

	score := weightedSum / totalWeight
	score = math.Max(0.0, math.Min(1.0, score))

	return math.Round(score*1000) / 1000
}

// incomeRisk: lower income, higher risk.
func incomeRisk(attrs models.ClientAttributes) float64 {
	income, ok := attrs.Numeric(attrIncomeValue)
	if !ok {
		return 0.5
	}

	switch {
	case income < 30000:
		return 0.8
	case income < 50000:
		return 0.7
	case income < 100000:
		return 0.5
	case income < 200000:
		return 0.3
	default:
		return 0.2
	}
}

// debtToIncomeRisk: total outstanding balances relative to income.
func debtToIncomeRisk(attrs models.ClientAttributes) float64 {
	income, ok := attrs.Numeric(attrIncomeValue)
	if !ok || income <= 0 {
		return 0.3
	}

	debt := attrs.NumericOr(attrCCBalance, 0) +
		attrs.NumericOr(attrPILBalance, 0) +
		attrs.NumericOr(attrIPBalance, 0)

	ratio := debt / income
	switch {
	case ratio > 0.8:
		return 0.9
	case ratio > 0.6:
		return 0.8
	case ratio > 0.4:
		return 0.6
	case ratio > 0.2:
		return 0.4
	default:
		return 0.2
	}
}

// paymentToIncomeRisk: average monthly loan payment relative to monthly income.
func paymentToIncomeRisk(attrs models.ClientAttributes) float64 {
	annualPayment, ok := attrs.Numeric(attrAnnualPayment)
	if !ok {
		return 0.3
	}

	income, ok := attrs.Numeric(attrIncomeValue)
	if !ok || income <= 0 {
		return 0.3
	}

	ratio := (annualPayment / 12) / (income / 12)
	switch {
	case ratio > 0.5:
		return 0.9
	case ratio > 0.4:
		return 0.7
	case ratio > 0.3:
		return 0.5
	case ratio > 0.2:
		return 0.4
	default:
		return 0.2
	}
}

func ageRisk(attrs models.ClientAttributes) float64 {
	age, ok := attrs.Numeric(attrAge)
	if !ok {
		return 0.5
	}

	switch {
	case age < 22:
		return 0.6
	case age < 30:
		return 0.5
	case age < 60:
		return 0.4
	default:
		return 0.5
	}
}

// overdueRisk: combined overdue amounts across credit bureaus.
func overdueRisk(attrs models.ClientAttributes) float64 {
	overdue := attrs.NumericOr(attrTotalMaxOverdue, 0) +
		attrs.NumericOr(attrOverdueSum, 0) +
		attrs.NumericOr(attrHDBOverdueSum, 0)

	switch {
	case overdue > 100000:
		return 0.9
	case overdue > 50000:
		return 0.8
	case overdue > 20000:
		return 0.6
	case overdue > 5000:
		return 0.5
	case overdue > 0:
		return 0.4
	default:
		return 0.3
	}
}

// loanCountRisk: no history and a single loan score differently; too many
// active loans raise the risk.
func loanCountRisk(attrs models.ClientAttributes) float64 {
	total := attrs.NumericOr(attrLoanCount, 0) + attrs.NumericOr(attrOtherCredits, 0)

	switch {
	case total == 0:
		return 0.5
	case total == 1:
		return 0.4
	case total <= 3:
		return 0.5
	case total <= 5:
		return 0.6
	default:
		return 0.7
	}
}

// requestRecencyRisk: a fresh credit request signals demand for credit.
func requestRecencyRisk(attrs models.ClientAttributes) float64 {
	days, ok := attrs.Numeric(attrDaysAfterRequest)
	if !ok {
		return 0.3
	}

	switch {
	case days < 30:
		return 0.7
	case days < 90:
		return 0.5
	case days < 180:
		return 0.4
	default:
		return 0.3
	}
}

// applicationRejectionRisk: low recent application success rate.
func applicationRejectionRisk(attrs models.ClientAttributes) float64 {
	successRatio, ok := attrs.Numeric(attrApplicationSuccess)
	if !ok {
		return 0.3
	}

	switch {
	case successRatio == 0:
		return 0.8
	case successRatio < 0.3:
		return 0.7
	case successRatio < 0.5:
		return 0.5
	default:
		return 0.3
	}
}

// dependentsRisk: per-capita income well below total income suggests a larger
// household living on the same money.
func dependentsRisk(attrs models.ClientAttributes) float64 {
	perCapita, ok := attrs.Numeric(attrIncomePerCapita)
	if !ok {
		return 0.4
	}

	income, ok := attrs.Numeric(attrIncomeValue)
	if !ok || income <= 0 {
		return 0.4
	}

	ratio := perCapita / income
	switch {
	case ratio < 0.5:
		return 0.6
	case ratio < 0.7:
		return 0.5
	default:
		return 0.3
	}
}

// jobStabilityRisk: longer tenure, lower risk. The seniority feature is
// treated as days; the upstream export does not document the unit
// (see TODO below).
//
// TODO: confirm with the feature-store owners whether dp_ils_total_seniority
// is exported in days or months; thresholds assume days.
func jobStabilityRisk(attrs models.ClientAttributes) float64 {
	tenure, ok := attrs.Numeric(attrTotalSeniority)
	if !ok {
		return 0.5
	}

	switch {
	case tenure > 1825:
		return 0.2
	case tenure > 1095:
		return 0.3
	case tenure > 365:
		return 0.4
	case tenure > 180:
		return 0.5
	default:
		return 0.6
	}
}
