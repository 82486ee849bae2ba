// Package metrics serves the model-quality report: static figures produced by
// the training pipeline, combined with the live prediction count.
package metrics

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"go.uber.org/zap"

	"income-recommendation-engine/internal/models"
	"income-recommendation-engine/internal/services/database"
	"income-recommendation-engine/internal/utils"
)

// Service loads the training pipeline's metrics file once and augments it
// with the live prediction count on every read.
type Service struct {
	path     string
	predRepo *database.PredictionLogRepository

	once   sync.Once
	static models.ModelMetrics
}

// NewService creates a metrics service reading static metrics from path.
func NewService(path string, predRepo *database.PredictionLogRepository) *Service {
	return &Service{path: path, predRepo: predRepo}
}

// Get returns the current model metrics. A missing or unreadable metrics file
// degrades to zeroed static figures; the live count is still served.
func (s *Service) Get(ctx context.Context) (*models.ModelMetrics, error) {
	s.once.Do(s.loadStatic)

	report := s.static

	count, err := s.predRepo.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count predictions: %w", err)
	}
	report.PredictionsCount = count

	return &report, nil
}

// loadStatic reads the training pipeline's metrics file. Errors are logged,
// not returned: metrics must not take the API down.
func (s *Service) loadStatic() {
	data, err := os.ReadFile(s.path)
	if err != nil {
		utils.Logger.Warn("Metrics file not readable, serving zeroed static metrics",
			zap.String("path", s.path),
			zap.Error(err),
		)
		return
	}

	if err := json.Unmarshal(data, &s.static); err != nil {
		utils.Logger.Warn("Metrics file not parseable, serving zeroed static metrics",
			zap.String("path", s.path),
			zap.Error(err),
		)
	}
}
