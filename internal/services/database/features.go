package database

import (
	"context"
	"fmt"
)

// FeatureDescriptionRepository stores human-readable descriptions of model
// features, used to annotate SHAP explanations.
type FeatureDescriptionRepository struct {
	db *DB
}

// NewFeatureDescriptionRepository creates a new feature description repository.
func NewFeatureDescriptionRepository(db *DB) *FeatureDescriptionRepository {
	return &FeatureDescriptionRepository{db: db}
}

// GetAll returns all feature descriptions keyed by feature name.
func (r *FeatureDescriptionRepository) GetAll(ctx context.Context) (map[string]string, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT feature_name, description FROM feature_descriptions`)
	if err != nil {
		return nil, fmt.Errorf("failed to get feature descriptions: %w", err)
	}
	defer rows.Close()

	descriptions := make(map[string]string)
	for rows.Next() {
		var name, description string
		if err := rows.Scan(&name, &description); err != nil {
			return nil, fmt.Errorf("failed to scan feature description: %w", err)
		}
		descriptions[name] = description
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate feature descriptions: %w", err)
	}

	return descriptions, nil
}

// Upsert inserts or updates one feature description.
func (r *FeatureDescriptionRepository) Upsert(ctx context.Context, featureName, description string) error {
	query := `
		INSERT INTO feature_descriptions (feature_name, description)
		VALUES ($1, $2)
		ON CONFLICT (feature_name) DO UPDATE SET description = EXCLUDED.description`

	if _, err := r.db.ExecContext(ctx, query, featureName, description); err != nil {
		return fmt.Errorf("failed to upsert feature description: %w", err)
	}
	return nil
}
