// Package models defines the data structures for the income recommendation engine.
package models

import (
	"time"
)

// IncomePrediction is the model server's income estimate for one client.
type IncomePrediction struct {
	PredictedIncome float64  `json:"predicted_income"`
	LowerBound      float64  `json:"lower_bound"`
	UpperBound      float64  `json:"upper_bound"`
	BaseIncome      *float64 `json:"base_income,omitempty"`
}

// ShapDirection indicates whether a feature pushed the prediction up or down.
type ShapDirection string

const (
	ShapDirectionPositive ShapDirection = "positive"
	ShapDirectionNegative ShapDirection = "negative"
)

// ShapFeature is a single feature contribution in a SHAP explanation.
type ShapFeature struct {
	FeatureName string        `json:"feature_name"`
	Value       interface{}   `json:"value"`
	ShapValue   float64       `json:"shap_value"`
	Direction   ShapDirection `json:"direction"`
	Description string        `json:"description,omitempty"`
}

// ShapResponse is the full explanation of one income prediction.
type ShapResponse struct {
	TextExplanation string        `json:"text_explanation"`
	Features        []ShapFeature `json:"features"`
	BaseValue       *float64      `json:"base_value,omitempty"`
}

// PredictionLog is a persisted record of one served prediction, kept for
// model-quality monitoring.
type PredictionLog struct {
	ID              int64     `json:"id" db:"id"`
	ClientID        int64     `json:"client_id" db:"client_id"`
	PredictedIncome float64   `json:"predicted_income" db:"predicted_income"`
	ActualIncome    *float64  `json:"actual_income,omitempty" db:"actual_income"`
	PredictionError *float64  `json:"prediction_error,omitempty" db:"prediction_error"`
	PredictionTime  time.Time `json:"prediction_time" db:"prediction_time"`
	RequestID       string    `json:"request_id,omitempty" db:"request_id"`
	Source          string    `json:"source,omitempty" db:"source"`
}

// PredictionLogCreate is the data needed to record a served prediction.
// PredictionError is derived from ActualIncome when it is known.
type PredictionLogCreate struct {
	ClientID        int64    `json:"client_id"`
	PredictedIncome float64  `json:"predicted_income"`
	ActualIncome    *float64 `json:"actual_income,omitempty"`
	RequestID       string   `json:"request_id,omitempty"`
	Source          string   `json:"source,omitempty"`
}
