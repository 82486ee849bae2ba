package database

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"income-recommendation-engine/internal/models"
)

// ClientRepository handles client feature storage. Features live in a JSONB
// column so the feature set can evolve without schema migrations.
type ClientRepository struct {
	db *DB
}

// NewClientRepository creates a new client repository.
func NewClientRepository(db *DB) *ClientRepository {
	return &ClientRepository{db: db}
}

// GetFeatures retrieves the full feature map for a client. Returns
// models.ErrClientNotFound when the client does not exist.
func (r *ClientRepository) GetFeatures(ctx context.Context, clientID int64) (models.ClientAttributes, error) {
	query := `SELECT features FROM client_features WHERE id = $1`

	var raw []byte
	err := r.db.QueryRowContext(ctx, query, clientID).Scan(&raw)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrClientNotFound
		}
		return nil, fmt.Errorf("failed to get client features: %w", err)
	}

	attrs := models.ClientAttributes{}
	if err := json.Unmarshal(raw, &attrs); err != nil {
		return nil, fmt.Errorf("failed to unmarshal client features: %w", err)
	}
	attrs["id"] = clientID

	return attrs, nil
}

// ClientFeatureRow is one stored client with its feature map.
type ClientFeatureRow struct {
	ID    int64
	Attrs models.ClientAttributes
}

// List returns a page of client feature rows and the total matching count,
// optionally filtered by admin area and city. Filters match the stored
// feature values exactly. Derived fields (risk score, income segment) are the
// caller's concern.
func (r *ClientRepository) List(ctx context.Context, limit, offset int, adminArea, city string) ([]ClientFeatureRow, int, error) {
	where := " WHERE 1=1"
	args := []interface{}{}
	argNum := 1

	if adminArea != "" {
		where += fmt.Sprintf(" AND features->>'adminarea' = $%d", argNum)
		args = append(args, adminArea)
		argNum++
	}
	if city != "" {
		where += fmt.Sprintf(" AND features->>'city' = $%d", argNum)
		args = append(args, city)
		argNum++
	}

	countQuery := `SELECT COUNT(*) FROM client_features` + where
	var total int
	if err := r.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count clients: %w", err)
	}

	query := `SELECT id, features FROM client_features` + where +
		fmt.Sprintf(" ORDER BY id LIMIT $%d OFFSET $%d", argNum, argNum+1)
	args = append(args, limit, offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list clients: %w", err)
	}
	defer rows.Close()

	result := make([]ClientFeatureRow, 0, limit)
	for rows.Next() {
		var id int64
		var raw []byte
		if err := rows.Scan(&id, &raw); err != nil {
			return nil, 0, fmt.Errorf("failed to scan client row: %w", err)
		}

		attrs := models.ClientAttributes{}
		if err := json.Unmarshal(raw, &attrs); err != nil {
			return nil, 0, fmt.Errorf("failed to unmarshal features for client %d: %w", id, err)
		}

		result = append(result, ClientFeatureRow{ID: id, Attrs: attrs})
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to iterate client rows: %w", err)
	}

	return result, total, nil
}

// BulkUpsert inserts or replaces feature rows in a single transaction. Rows
// without an id are counted as failures instead of aborting the batch.
func (r *ClientRepository) BulkUpsert(ctx context.Context, rows []models.ClientAttributes) (*models.BulkUpsertResult, error) {
	result := &models.BulkUpsertResult{}

	err := r.db.WithTransaction(ctx, func(tx pgx.Tx) error {
		query := `
			INSERT INTO client_features (id, features, updated_at)
			VALUES ($1, $2, NOW())
			ON CONFLICT (id) DO UPDATE SET
				features = EXCLUDED.features,
				updated_at = NOW()`

		for i, attrs := range rows {
			clientID := attrs.ID()
			if clientID == 0 {
				result.FailedCount++
				result.Errors = append(result.Errors, fmt.Sprintf("row %d: %v", i+1, models.ErrMissingClientID))
				continue
			}

			features, err := json.Marshal(attrs)
			if err != nil {
				result.FailedCount++
				result.Errors = append(result.Errors, fmt.Sprintf("row %d: %v", i+1, err))
				continue
			}

			if _, err := tx.Exec(ctx, query, clientID, features); err != nil {
				return fmt.Errorf("failed to upsert client %d: %w", clientID, err)
			}
			result.UpsertedCount++
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return result, nil
}
