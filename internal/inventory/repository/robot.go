package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/smartstorage/smartstorage-backend/pkg/database"
	"github.com/smartstorage/smartstorage-backend/pkg/errors"
)

// Robot statuses
const (
	RobotStatusActive     = "active"
	RobotStatusIdle       = "idle"
	RobotStatusLowBattery = "low_battery"
	RobotStatusOffline    = "offline"
)

// ManualImportRobotID is the sentinel robot id stamped on CSV-imported rows.
const ManualImportRobotID = "manual_import"

// Robot represents an inventory-scanning robot's live state
type Robot struct {
	ID           string    `db:"id" json:"id"`
	Status       string    `db:"status" json:"status"`
	BatteryLevel int       `db:"battery_level" json:"battery_level"`
	CurrentZone  *string   `db:"current_zone" json:"current_zone"`
	CurrentRow   *int      `db:"current_row" json:"current_row"`
	CurrentShelf *int      `db:"current_shelf" json:"current_shelf"`
	LastUpdate   time.Time `db:"last_update" json:"last_update"`
}

// RobotRepository handles robot persistence
type RobotRepository struct {
	db  *database.DB
	ext sqlx.ExtContext
}

// NewRobotRepository creates a new robot repository
func NewRobotRepository(db *database.DB) *RobotRepository {
	return &RobotRepository{db: db, ext: db}
}

// WithTx returns a copy of the repository bound to the given transaction
func (r *RobotRepository) WithTx(tx *sqlx.Tx) *RobotRepository {
	return &RobotRepository{db: r.db, ext: tx}
}

// GetByID gets a robot by id
func (r *RobotRepository) GetByID(ctx context.Context, id string) (*Robot, error) {
	var robot Robot

	query := `
		SELECT id, status, battery_level, current_zone, current_row, current_shelf, last_update
		FROM robots
		WHERE id = $1
	`

	err := sqlx.GetContext(ctx, r.ext, &robot, query, id)
	if err == sql.ErrNoRows {
		return nil, errors.NotFound("robot")
	}
	if err != nil {
		return nil, errors.Wrap(err, "DB_ERROR", "failed to get robot", 500)
	}

	return &robot, nil
}

// Upsert inserts a robot or overwrites its live state. An unknown robot is
// created on its first report.
func (r *RobotRepository) Upsert(ctx context.Context, robot *Robot) error {
	query := `
		INSERT INTO robots (id, status, battery_level, current_zone, current_row, current_shelf, last_update)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (id) DO UPDATE SET
			status = EXCLUDED.status,
			battery_level = EXCLUDED.battery_level,
			current_zone = EXCLUDED.current_zone,
			current_row = EXCLUDED.current_row,
			current_shelf = EXCLUDED.current_shelf,
			last_update = EXCLUDED.last_update
	`

	_, err := r.ext.ExecContext(ctx, query,
		robot.ID, robot.Status, robot.BatteryLevel,
		robot.CurrentZone, robot.CurrentRow, robot.CurrentShelf, robot.LastUpdate,
	)
	if err != nil {
		return errors.Wrap(err, "DB_ERROR", "failed to upsert robot", 500)
	}

	return nil
}

// List returns all robots ordered by id
func (r *RobotRepository) List(ctx context.Context) ([]Robot, error) {
	robots := []Robot{}

	query := `
		SELECT id, status, battery_level, current_zone, current_row, current_shelf, last_update
		FROM robots
		ORDER BY id
	`

	if err := sqlx.SelectContext(ctx, r.ext, &robots, query); err != nil {
		return nil, errors.Wrap(err, "DB_ERROR", "failed to list robots", 500)
	}

	return robots, nil
}

// CountByStatus counts robots with the given status
func (r *RobotRepository) CountByStatus(ctx context.Context, status string) (int64, error) {
	var count int64

	query := `SELECT COUNT(*) FROM robots WHERE status = $1`

	if err := sqlx.GetContext(ctx, r.ext, &count, query, status); err != nil {
		return 0, errors.Wrap(err, "DB_ERROR", "failed to count robots", 500)
	}

	return count, nil
}
