package repository

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/smartstorage/smartstorage-backend/pkg/database"
	"github.com/smartstorage/smartstorage-backend/pkg/errors"
)

// Prediction is one stockout forecast returned by the AI service
type Prediction struct {
	ID                int64     `db:"id" json:"id"`
	ProductID         string    `db:"product_id" json:"product_id"`
	PredictionDate    time.Time `db:"prediction_date" json:"prediction_date"`
	DaysUntilStockout int       `db:"days_until_stockout" json:"days_until_stockout"`
	RecommendedOrder  int       `db:"recommended_order" json:"recommended_order"`
	ConfidenceScore   float64   `db:"confidence_score" json:"confidence_score"`
	CreatedAt         time.Time `db:"created_at" json:"created_at"`
}

// PredictionRepository handles AI prediction persistence
type PredictionRepository struct {
	db  *database.DB
	ext sqlx.ExtContext
}

// NewPredictionRepository creates a new prediction repository
func NewPredictionRepository(db *database.DB) *PredictionRepository {
	return &PredictionRepository{db: db, ext: db}
}

// WithTx returns a copy of the repository bound to the given transaction
func (r *PredictionRepository) WithTx(tx *sqlx.Tx) *PredictionRepository {
	return &PredictionRepository{db: r.db, ext: tx}
}

// InsertBatch stores a batch of predictions. Predictions for unknown
// products are dropped by the caller before this point.
func (r *PredictionRepository) InsertBatch(ctx context.Context, preds []Prediction) error {
	query := `
		INSERT INTO ai_predictions
			(product_id, prediction_date, days_until_stockout, recommended_order, confidence_score)
		VALUES ($1, $2, $3, $4, $5)
	`

	for i := range preds {
		p := &preds[i]
		_, err := r.ext.ExecContext(ctx, query,
			p.ProductID, p.PredictionDate, p.DaysUntilStockout,
			p.RecommendedOrder, p.ConfidenceScore,
		)
		if err != nil {
			return errors.Wrap(err, "DB_ERROR", "failed to insert prediction", 500)
		}
	}

	return nil
}

// ListByProduct returns stored predictions for a product, newest first
func (r *PredictionRepository) ListByProduct(ctx context.Context, productID string, limit int) ([]Prediction, error) {
	preds := []Prediction{}

	query := `
		SELECT id, product_id, prediction_date, days_until_stockout,
		       recommended_order, confidence_score, created_at
		FROM ai_predictions
		WHERE product_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`

	if err := sqlx.SelectContext(ctx, r.ext, &preds, query, productID, limit); err != nil {
		return nil, errors.Wrap(err, "DB_ERROR", "failed to list predictions", 500)
	}

	return preds, nil
}
