package scoring

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"income-recommendation-engine/internal/models"
)

func TestCalculateRiskScore_EmptyAttributes(t *testing.T) {
	// With no attributes every factor falls back to its documented default.
	score := CalculateRiskScore(models.ClientAttributes{})

	assert.Equal(t, 0.365, score)
}

func TestCalculateRiskScore_AlwaysInRange(t *testing.T) {
	cases := []models.ClientAttributes{
		{},
		{"incomeValue": 10000.0},
		{"incomeValue": 500000.0, "age": 40.0},
		{
			"incomeValue":                   20000.0,
			"hdb_bki_total_cc_balance":      900000.0,
			"hdb_bki_total_pil_balance":     900000.0,
			"hdb_bki_total_ip_balance":      900000.0,
			"avg_annual_payment_sum":        300000.0,
			"hdb_bki_total_max_overdue_sum": 500000.0,
			"ovrd_sum":                      100000.0,
			"hdb_ovrd_sum":                  100000.0,
			"loan_cnt":                      12.0,
			"days_after_last_request":       3.0,
			"vert_pil_loan_application_success_3m": 0.0,
			"incomePerCapitaValue":                 4000.0,
			"dp_ils_total_seniority":               30.0,
			"age":                                  20.0,
		},
		{
			"incomeValue":                          400000.0,
			"age":                                  45.0,
			"avg_annual_payment_sum":               10000.0,
			"days_after_last_request":              720.0,
			"vert_pil_loan_application_success_3m": 0.9,
			"incomePerCapitaValue":                 390000.0,
			"dp_ils_total_seniority":               4000.0,
			"loan_cnt":                             1.0,
		},
	}

	for _, attrs := range cases {
		score := CalculateRiskScore(attrs)

		assert.GreaterOrEqual(t, score, 0.0)
		assert.LessOrEqual(t, score, 1.0)
		// Rounded to 3 decimals
		assert.Equal(t, math.Round(score*1000)/1000, score)
	}
}

func TestCalculateRiskScore_OverdueRaisesRisk(t *testing.T) {
	base := models.ClientAttributes{"incomeValue": 80000.0, "age": 35.0}
	withOverdue := models.ClientAttributes{
		"incomeValue":                   80000.0,
		"age":                           35.0,
		"hdb_bki_total_max_overdue_sum": 150000.0,
	}

	assert.Greater(t, CalculateRiskScore(withOverdue), CalculateRiskScore(base))
}

func TestCalculateRiskScore_HighIncomeLowersRisk(t *testing.T) {
	poor := models.ClientAttributes{"incomeValue": 25000.0}
	rich := models.ClientAttributes{"incomeValue": 300000.0}

	assert.Less(t, CalculateRiskScore(rich), CalculateRiskScore(poor))
}

func TestCalculateRiskScore_MissingValueTokensIgnored(t *testing.T) {
	// String variants of "missing" must behave like absent keys.
	clean := models.ClientAttributes{}
	noisy := models.ClientAttributes{
		"incomeValue":            "nan",
		"age":                    "none",
		"ovrd_sum":               "",
		"dp_ils_total_seniority": math.NaN(),
	}

	assert.Equal(t, CalculateRiskScore(clean), CalculateRiskScore(noisy))
}

func TestCalculateRiskScore_DebtToIncome(t *testing.T) {
	lowDTI := models.ClientAttributes{
		"incomeValue":              100000.0,
		"hdb_bki_total_cc_balance": 5000.0,
	}
	highDTI := models.ClientAttributes{
		"incomeValue":               100000.0,
		"hdb_bki_total_cc_balance":  40000.0,
		"hdb_bki_total_pil_balance": 30000.0,
		"hdb_bki_total_ip_balance":  20000.0,
	}

	assert.Greater(t, CalculateRiskScore(highDTI), CalculateRiskScore(lowDTI))
}
