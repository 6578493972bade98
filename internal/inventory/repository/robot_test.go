package repository_test

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/smartstorage/smartstorage-backend/internal/inventory/repository"
	"github.com/smartstorage/smartstorage-backend/pkg/errors"
	"github.com/smartstorage/smartstorage-backend/pkg/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRobotRepository_Upsert(t *testing.T) {
	mockDB := testutil.NewMockDB(t)
	defer mockDB.Close()

	zone := "B"
	row, shelf := 2, 4
	now := time.Now().UTC()

	mockDB.ExpectExec("INSERT INTO robots").
		WithArgs("rb-001", repository.RobotStatusActive, 87, zone, row, shelf, now).
		WillReturnResult(sqlmock.NewResult(0, 1))

	repo := repository.NewRobotRepository(mockDB.DB)
	err := repo.Upsert(context.Background(), &repository.Robot{
		ID:           "rb-001",
		Status:       repository.RobotStatusActive,
		BatteryLevel: 87,
		CurrentZone:  &zone,
		CurrentRow:   &row,
		CurrentShelf: &shelf,
		LastUpdate:   now,
	})
	require.NoError(t, err)

	mockDB.ExpectationsWereMet(t)
}

func TestRobotRepository_GetByID_NotFound(t *testing.T) {
	mockDB := testutil.NewMockDB(t)
	defer mockDB.Close()

	mockDB.ExpectQuery("FROM robots").
		WithArgs("rb-404").
		WillReturnRows(sqlmock.NewRows([]string{"id", "status", "battery_level", "current_zone", "current_row", "current_shelf", "last_update"}))

	repo := repository.NewRobotRepository(mockDB.DB)
	_, err := repo.GetByID(context.Background(), "rb-404")
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrNotFound))
}

func TestRobotRepository_CountByStatus(t *testing.T) {
	mockDB := testutil.NewMockDB(t)
	defer mockDB.Close()

	mockDB.ExpectQuery("SELECT COUNT(*) FROM robots").
		WithArgs(repository.RobotStatusActive).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(int64(5)))

	repo := repository.NewRobotRepository(mockDB.DB)
	count, err := repo.CountByStatus(context.Background(), repository.RobotStatusActive)
	require.NoError(t, err)
	assert.Equal(t, int64(5), count)
}
