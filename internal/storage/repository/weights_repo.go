package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Shun-123/shadowverse-2pick/internal/advisor"
)

// weightsKey is the settings row holding the factor weight mapping.
const weightsKey = "scoring_weights"

// WeightsRepository persists the advisor's factor weights in the settings
// table. It satisfies advisor.WeightStore.
type WeightsRepository struct {
	db *sql.DB
}

// NewWeightsRepository creates a weights repository over db.
func NewWeightsRepository(db *sql.DB) *WeightsRepository {
	return &WeightsRepository{db: db}
}

// GetWeights returns the stored weight mapping, or the defaults when no
// mapping has been saved yet.
func (r *WeightsRepository) GetWeights(ctx context.Context) (advisor.Weights, error) {
	var value string
	err := r.db.QueryRowContext(ctx,
		"SELECT value FROM settings WHERE key = ?", weightsKey).Scan(&value)
	if err == sql.ErrNoRows {
		return advisor.DefaultWeights(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get weights: %w", err)
	}

	var weights advisor.Weights
	if err := json.Unmarshal([]byte(value), &weights); err != nil {
		return nil, fmt.Errorf("failed to unmarshal weights: %w", err)
	}
	return weights, nil
}

// SetWeights stores the weight mapping, replacing any previous one.
func (r *WeightsRepository) SetWeights(ctx context.Context, w advisor.Weights) error {
	value, err := json.Marshal(w)
	if err != nil {
		return fmt.Errorf("failed to marshal weights: %w", err)
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO settings (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
	`, weightsKey, string(value), time.Now())
	if err != nil {
		return fmt.Errorf("failed to set weights: %w", err)
	}
	return nil
}

// Reset removes the stored mapping so GetWeights falls back to defaults.
func (r *WeightsRepository) Reset(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, "DELETE FROM settings WHERE key = ?", weightsKey)
	if err != nil {
		return fmt.Errorf("failed to reset weights: %w", err)
	}
	return nil
}
