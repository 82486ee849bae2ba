// Package models defines the data structures for the income recommendation engine.
package models

// ProductType represents the type of a recommended banking product.
type ProductType string

const (
	ProductTypeCredit     ProductType = "credit"
	ProductTypeCreditCard ProductType = "credit_card"
	ProductTypeDeposit    ProductType = "deposit"
	ProductTypeInsurance  ProductType = "insurance"
)

// IsCredit reports whether the product carries a credit limit that is subject
// to income-based capping.
func (t ProductType) IsCredit() bool {
	return t == ProductTypeCredit || t == ProductTypeCreditCard
}

// IncomeTier represents the coarse income segment of a client. It selects
// which slice of the product catalog the client is eligible for.
type IncomeTier string

const (
	IncomeTierLow    IncomeTier = "low_income"
	IncomeTierMedium IncomeTier = "medium_income"
	IncomeTierHigh   IncomeTier = "high_income"
)

// ValidIncomeTiers returns all valid income tier values.
func ValidIncomeTiers() []IncomeTier {
	return []IncomeTier{IncomeTierLow, IncomeTierMedium, IncomeTierHigh}
}

// IsValid checks if the income tier is a known value.
func (t IncomeTier) IsValid() bool {
	for _, valid := range ValidIncomeTiers() {
		if t == valid {
			return true
		}
	}
	return false
}

// ProductOffer is a static catalog entry. The catalog is reference data
// loaded once at process start and never mutated.
type ProductOffer struct {
	ProductName string      `json:"product_name"`
	ProductType ProductType `json:"product_type"`
	Limit       *float64    `json:"limit,omitempty"`
	Rate        *float64    `json:"rate,omitempty"`
	Reason      string      `json:"reason"`
	Description string      `json:"description,omitempty"`
}

// Recommendation is a numbered product offer produced for a single request.
type Recommendation struct {
	ID          int         `json:"id"`
	ProductName string      `json:"product_name"`
	ProductType ProductType `json:"product_type"`
	Limit       *float64    `json:"limit,omitempty"`
	Rate        *float64    `json:"rate,omitempty"`
	Reason      string      `json:"reason"`
	Description string      `json:"description,omitempty"`
}

// NewRecommendation materializes an offer into a numbered recommendation.
// Limit and Rate are copied so post-processing never mutates the catalog.
func NewRecommendation(id int, offer ProductOffer) Recommendation {
	rec := Recommendation{
		ID:          id,
		ProductName: offer.ProductName,
		ProductType: offer.ProductType,
		Reason:      offer.Reason,
		Description: offer.Description,
	}
	if offer.Limit != nil {
		limit := *offer.Limit
		rec.Limit = &limit
	}
	if offer.Rate != nil {
		rate := *offer.Rate
		rec.Rate = &rate
	}
	return rec
}

// Float64Ptr returns a pointer to the given value. Used when declaring
// catalog entries with optional limits and rates.
func Float64Ptr(v float64) *float64 {
	return &v
}
