// Package models defines the data structures for the income recommendation engine.
package models

// ClientSummary is the API view of a single client, combining stored
// attributes with live risk and segment derivations.
type ClientSummary struct {
	ID            int64   `json:"id"`
	Age           *int    `json:"age,omitempty"`
	City          string  `json:"city,omitempty"`
	AdminArea     string  `json:"adminarea,omitempty"`
	IncomeSegment string  `json:"income_segment"`
	RiskScore     float64 `json:"risk_score"`
}

// ClientListResult is a paginated client listing.
type ClientListResult struct {
	Clients []ClientSummary `json:"clients"`
	Total   int             `json:"total"`
	Limit   int             `json:"limit"`
	Offset  int             `json:"offset"`
}

// BulkUpsertResult contains the results of a bulk feature ingestion.
type BulkUpsertResult struct {
	UpsertedCount int      `json:"upserted_count"`
	FailedCount   int      `json:"failed_count"`
	Errors        []string `json:"errors,omitempty"`
}
