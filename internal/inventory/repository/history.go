package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/smartstorage/smartstorage-backend/pkg/database"
	"github.com/smartstorage/smartstorage-backend/pkg/errors"
)

// Scan status tags
const (
	StatusOK       = "OK"
	StatusLowStock = "LOW_STOCK"
	StatusCritical = "CRITICAL"
)

// UnknownProductName is used when an exported row's product no longer exists.
const UnknownProductName = "N/A"

// InventoryHistory is one scan record. Rows are append-only and never
// mutated after insert.
type InventoryHistory struct {
	ID          int64     `db:"id" json:"id"`
	RobotID     *string   `db:"robot_id" json:"robot_id"`
	ProductID   *string   `db:"product_id" json:"product_id"`
	Quantity    int       `db:"quantity" json:"quantity"`
	Zone        string    `db:"zone" json:"zone"`
	RowNumber   *int      `db:"row_number" json:"row_number"`
	ShelfNumber *int      `db:"shelf_number" json:"shelf_number"`
	Status      string    `db:"status" json:"status"`
	ScannedAt   time.Time `db:"scanned_at" json:"scanned_at"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

// HistoryRow is a history record joined with its product's display name
type HistoryRow struct {
	InventoryHistory
	ProductName string `db:"product_name" json:"product_name"`
}

// HistoryFilter narrows a history query. Zone and Status match
// case-insensitively; zero-value fields are not applied.
type HistoryFilter struct {
	From     time.Time
	To       time.Time
	Zone     string
	Status   string
	Page     int
	PageSize int
}

// HistoryRepository handles inventory history persistence
type HistoryRepository struct {
	db  *database.DB
	ext sqlx.ExtContext
}

// NewHistoryRepository creates a new history repository
func NewHistoryRepository(db *database.DB) *HistoryRepository {
	return &HistoryRepository{db: db, ext: db}
}

// WithTx returns a copy of the repository bound to the given transaction
func (r *HistoryRepository) WithTx(tx *sqlx.Tx) *HistoryRepository {
	return &HistoryRepository{db: r.db, ext: tx}
}

// Insert appends one history row and fills in its generated id and
// created_at timestamp.
func (r *HistoryRepository) Insert(ctx context.Context, h *InventoryHistory) error {
	query := `
		INSERT INTO inventory_history
			(robot_id, product_id, quantity, zone, row_number, shelf_number, status, scanned_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at
	`

	err := r.ext.QueryRowxContext(ctx, query,
		h.RobotID, h.ProductID, h.Quantity, h.Zone,
		h.RowNumber, h.ShelfNumber, h.Status, h.ScannedAt,
	).Scan(&h.ID, &h.CreatedAt)
	if err != nil {
		return errors.Wrap(err, "DB_ERROR", "failed to insert history row", 500)
	}

	return nil
}

// Query returns one page of history rows matching the filter, joined with
// product names, ordered by scan timestamp descending, along with the total
// count of matching rows before paging.
func (r *HistoryRepository) Query(ctx context.Context, f HistoryFilter) ([]HistoryRow, int64, error) {
	conditions := []string{"h.scanned_at >= $1", "h.scanned_at <= $2"}
	args := []interface{}{f.From, f.To}

	if f.Zone != "" {
		args = append(args, f.Zone)
		conditions = append(conditions, fmt.Sprintf("LOWER(h.zone) = LOWER($%d)", len(args)))
	}
	if f.Status != "" {
		args = append(args, f.Status)
		conditions = append(conditions, fmt.Sprintf("LOWER(h.status) = LOWER($%d)", len(args)))
	}

	where := strings.Join(conditions, " AND ")

	var total int64
	countQuery := fmt.Sprintf(`SELECT COUNT(*) FROM inventory_history h WHERE %s`, where)
	if err := sqlx.GetContext(ctx, r.ext, &total, countQuery, args...); err != nil {
		return nil, 0, errors.Wrap(err, "DB_ERROR", "failed to count history", 500)
	}

	limit := f.PageSize
	offset := (f.Page - 1) * f.PageSize
	args = append(args, limit, offset)

	rows := []HistoryRow{}
	query := fmt.Sprintf(`
		SELECT h.id, h.robot_id, h.product_id, COALESCE(p.name, '%s') AS product_name,
		       h.quantity, h.zone, h.row_number, h.shelf_number, h.status,
		       h.scanned_at, h.created_at
		FROM inventory_history h
		LEFT JOIN products p ON p.id = h.product_id
		WHERE %s
		ORDER BY h.scanned_at DESC
		LIMIT $%d OFFSET $%d
	`, UnknownProductName, where, len(args)-1, len(args))

	if err := sqlx.SelectContext(ctx, r.ext, &rows, query, args...); err != nil {
		return nil, 0, errors.Wrap(err, "DB_ERROR", "failed to query history", 500)
	}

	return rows, total, nil
}

// ListByIDs returns the history rows with the given ids, joined with product
// names, ordered by scan timestamp ascending. Missing ids are skipped.
func (r *HistoryRepository) ListByIDs(ctx context.Context, ids []int64) ([]HistoryRow, error) {
	rows := []HistoryRow{}

	query := fmt.Sprintf(`
		SELECT h.id, h.robot_id, h.product_id, COALESCE(p.name, '%s') AS product_name,
		       h.quantity, h.zone, h.row_number, h.shelf_number, h.status,
		       h.scanned_at, h.created_at
		FROM inventory_history h
		LEFT JOIN products p ON p.id = h.product_id
		WHERE h.id = ANY($1)
		ORDER BY h.scanned_at ASC
	`, UnknownProductName)

	if err := sqlx.SelectContext(ctx, r.ext, &rows, query, pq.Array(ids)); err != nil {
		return nil, errors.Wrap(err, "DB_ERROR", "failed to list history rows", 500)
	}

	return rows, nil
}

// Recent returns the most recent scans joined with product names
func (r *HistoryRepository) Recent(ctx context.Context, limit int) ([]HistoryRow, error) {
	rows := []HistoryRow{}

	query := fmt.Sprintf(`
		SELECT h.id, h.robot_id, h.product_id, COALESCE(p.name, '%s') AS product_name,
		       h.quantity, h.zone, h.row_number, h.shelf_number, h.status,
		       h.scanned_at, h.created_at
		FROM inventory_history h
		LEFT JOIN products p ON p.id = h.product_id
		ORDER BY h.scanned_at DESC
		LIMIT $1
	`, UnknownProductName)

	if err := sqlx.SelectContext(ctx, r.ext, &rows, query, limit); err != nil {
		return nil, errors.Wrap(err, "DB_ERROR", "failed to list recent scans", 500)
	}

	return rows, nil
}

// Count returns the total number of history rows
func (r *HistoryRepository) Count(ctx context.Context) (int64, error) {
	var count int64

	query := `SELECT COUNT(*) FROM inventory_history`

	if err := sqlx.GetContext(ctx, r.ext, &count, query); err != nil {
		return 0, errors.Wrap(err, "DB_ERROR", "failed to count history", 500)
	}

	return count, nil
}

// CountCriticalProducts counts distinct products with at least one CRITICAL scan
func (r *HistoryRepository) CountCriticalProducts(ctx context.Context) (int64, error) {
	var count int64

	query := `
		SELECT COUNT(DISTINCT product_id)
		FROM inventory_history
		WHERE status = $1 AND product_id IS NOT NULL
	`

	if err := sqlx.GetContext(ctx, r.ext, &count, query, StatusCritical); err != nil {
		return 0, errors.Wrap(err, "DB_ERROR", "failed to count critical products", 500)
	}

	return count, nil
}
