package database

import (
	"context"
	"fmt"
	"math"

	"github.com/google/uuid"

	"income-recommendation-engine/internal/models"
)

// PredictionLogRepository persists served predictions for model-quality
// monitoring.
type PredictionLogRepository struct {
	db *DB
}

// NewPredictionLogRepository creates a new prediction log repository.
func NewPredictionLogRepository(db *DB) *PredictionLogRepository {
	return &PredictionLogRepository{db: db}
}

// Insert records one served prediction. A request ID is generated when the
// caller did not supply one; the prediction error is derived when the actual
// income is known.
func (r *PredictionLogRepository) Insert(ctx context.Context, create *models.PredictionLogCreate) (*models.PredictionLog, error) {
	requestID := create.RequestID
	if requestID == "" {
		requestID = uuid.New().String()
	}

	var predictionError *float64
	if create.ActualIncome != nil {
		diff := math.Abs(create.PredictedIncome - *create.ActualIncome)
		predictionError = &diff
	}

	query := `
		INSERT INTO prediction_logs (client_id, predicted_income, actual_income, prediction_error, request_id, source, prediction_time)
		VALUES ($1, $2, $3, $4, $5, $6, NOW())
		RETURNING id, client_id, predicted_income, actual_income, prediction_error, prediction_time, request_id, source`

	log := &models.PredictionLog{}
	err := r.db.QueryRowContext(ctx, query,
		create.ClientID,
		create.PredictedIncome,
		create.ActualIncome,
		predictionError,
		requestID,
		create.Source,
	).Scan(
		&log.ID,
		&log.ClientID,
		&log.PredictedIncome,
		&log.ActualIncome,
		&log.PredictionError,
		&log.PredictionTime,
		&log.RequestID,
		&log.Source,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to insert prediction log: %w", err)
	}

	return log, nil
}

// Count returns the total number of logged predictions.
func (r *PredictionLogRepository) Count(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM prediction_logs`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count prediction logs: %w", err)
	}
	return count, nil
}

// ListByClient returns the most recent logged predictions for one client.
func (r *PredictionLogRepository) ListByClient(ctx context.Context, clientID int64, limit int) ([]models.PredictionLog, error) {
	query := `
		SELECT id, client_id, predicted_income, actual_income, prediction_error, prediction_time, request_id, source
		FROM prediction_logs
		WHERE client_id = $1
		ORDER BY prediction_time DESC
		LIMIT $2`

	rows, err := r.db.QueryContext(ctx, query, clientID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list prediction logs: %w", err)
	}
	defer rows.Close()

	logs := make([]models.PredictionLog, 0, limit)
	for rows.Next() {
		var log models.PredictionLog
		if err := rows.Scan(
			&log.ID,
			&log.ClientID,
			&log.PredictedIncome,
			&log.ActualIncome,
			&log.PredictionError,
			&log.PredictionTime,
			&log.RequestID,
			&log.Source,
		); err != nil {
			return nil, fmt.Errorf("failed to scan prediction log: %w", err)
		}
		logs = append(logs, log)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate prediction logs: %w", err)
	}

	return logs, nil
}
