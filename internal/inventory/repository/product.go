package repository

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"
	"github.com/smartstorage/smartstorage-backend/pkg/database"
	"github.com/smartstorage/smartstorage-backend/pkg/errors"
)

// Default stock thresholds for auto-created products
const (
	DefaultMinStock     = 10
	DefaultOptimalStock = 100
)

// Product represents a tracked warehouse product
type Product struct {
	ID           string  `db:"id" json:"id"`
	Name         string  `db:"name" json:"name"`
	Category     *string `db:"category" json:"category"`
	MinStock     int     `db:"min_stock" json:"min_stock"`
	OptimalStock int     `db:"optimal_stock" json:"optimal_stock"`
}

// ProductRepository handles product persistence
type ProductRepository struct {
	db  *database.DB
	ext sqlx.ExtContext
}

// NewProductRepository creates a new product repository
func NewProductRepository(db *database.DB) *ProductRepository {
	return &ProductRepository{db: db, ext: db}
}

// WithTx returns a copy of the repository bound to the given transaction
func (r *ProductRepository) WithTx(tx *sqlx.Tx) *ProductRepository {
	return &ProductRepository{db: r.db, ext: tx}
}

// GetByID gets a product by id
func (r *ProductRepository) GetByID(ctx context.Context, id string) (*Product, error) {
	var product Product

	query := `
		SELECT id, name, category, min_stock, optimal_stock
		FROM products
		WHERE id = $1
	`

	err := sqlx.GetContext(ctx, r.ext, &product, query, id)
	if err == sql.ErrNoRows {
		return nil, errors.NotFound("product")
	}
	if err != nil {
		return nil, errors.Wrap(err, "DB_ERROR", "failed to get product", 500)
	}

	return &product, nil
}

// Exists reports whether a product with the given id exists
func (r *ProductRepository) Exists(ctx context.Context, id string) (bool, error) {
	var exists bool

	query := `SELECT EXISTS (SELECT 1 FROM products WHERE id = $1)`

	if err := sqlx.GetContext(ctx, r.ext, &exists, query, id); err != nil {
		return false, errors.Wrap(err, "DB_ERROR", "failed to check product", 500)
	}

	return exists, nil
}

// CreateIfAbsent inserts a product unless one with the same id already
// exists. Scan ingestion and CSV import auto-create referenced products
// through this explicit upsert.
func (r *ProductRepository) CreateIfAbsent(ctx context.Context, product *Product) error {
	query := `
		INSERT INTO products (id, name, category, min_stock, optimal_stock)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO NOTHING
	`

	_, err := r.ext.ExecContext(ctx, query,
		product.ID, product.Name, product.Category, product.MinStock, product.OptimalStock,
	)
	if err != nil {
		return errors.Wrap(err, "DB_ERROR", "failed to create product", 500)
	}

	return nil
}

// Count returns the number of products
func (r *ProductRepository) Count(ctx context.Context) (int64, error) {
	var count int64

	query := `SELECT COUNT(*) FROM products`

	if err := sqlx.GetContext(ctx, r.ext, &count, query); err != nil {
		return 0, errors.Wrap(err, "DB_ERROR", "failed to count products", 500)
	}

	return count, nil
}
