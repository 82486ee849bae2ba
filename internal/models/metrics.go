// Package models defines the data structures for the income recommendation engine.
package models

// Experiment is a historical model-training experiment result.
type Experiment struct {
	Name string   `json:"name"`
	WMAE float64  `json:"wmae"`
	MAE  *float64 `json:"mae,omitempty"`
	Date string   `json:"date,omitempty"`
}

// SegmentError is a model error metric for a single client segment.
type SegmentError struct {
	Segment string   `json:"segment"`
	WMAE    float64  `json:"wmae"`
	MAE     *float64 `json:"mae,omitempty"`
}

// TrainingRun describes one training run of the income model.
type TrainingRun struct {
	ModelVersion string  `json:"model_version"`
	TrainedAt    string  `json:"trained_at"`
	TrainSamples int     `json:"train_samples"`
	ValidSamples int     `json:"valid_samples"`
	RMSE         float64 `json:"rmse"`
	MAE          float64 `json:"mae"`
	R2           float64 `json:"r2"`
}

// ModelMetrics is the aggregate model-quality report served by the metrics
// endpoint. The static parts are loaded from the training pipeline's metrics
// file; PredictionsCount is counted live from prediction logs.
type ModelMetrics struct {
	WMAEValidation    float64        `json:"wmae_validation"`
	TrainingRecords   int            `json:"training_records"`
	ValidationRecords int            `json:"validation_records"`
	PredictionsCount  int            `json:"predictions_count"`
	Experiments       []Experiment   `json:"experiments"`
	SegmentErrors     []SegmentError `json:"segment_errors"`
	TrainingRuns      []TrainingRun  `json:"training_runs,omitempty"`
}
