package service_test

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/smartstorage/smartstorage-backend/internal/inventory/repository"
	"github.com/smartstorage/smartstorage-backend/internal/inventory/service"
	"github.com/smartstorage/smartstorage-backend/pkg/errors"
	"github.com/smartstorage/smartstorage-backend/pkg/logger"
	"github.com/smartstorage/smartstorage-backend/pkg/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func newExportService(mockDB *testutil.MockDB) *service.ExportService {
	return service.NewExportService(
		repository.NewHistoryRepository(mockDB.DB),
		logger.New("test", "test"),
	)
}

func TestExportService_NoValidIDs(t *testing.T) {
	mockDB := testutil.NewMockDB(t)
	defer mockDB.Close()

	svc := newExportService(mockDB)

	_, err := svc.Export(context.Background(), []string{"abc", "", "1.5"})
	require.Error(t, err)

	var appErr *errors.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, 400, appErr.StatusCode)
}

func TestExportService_NoRowsFound(t *testing.T) {
	mockDB := testutil.NewMockDB(t)
	defer mockDB.Close()

	mockDB.ExpectQuery("WHERE h.id = ANY($1)").
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "robot_id", "product_id", "product_name", "quantity",
			"zone", "row_number", "shelf_number", "status", "scanned_at", "created_at",
		}))

	svc := newExportService(mockDB)

	_, err := svc.Export(context.Background(), []string{"99"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrNotFound))
}

func TestExportService_RendersWorkbook(t *testing.T) {
	mockDB := testutil.NewMockDB(t)
	defer mockDB.Close()

	scannedAt := time.Date(2026, 8, 15, 9, 30, 0, 0, time.UTC)

	mockDB.ExpectQuery("WHERE h.id = ANY($1)").
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "robot_id", "product_id", "product_name", "quantity",
			"zone", "row_number", "shelf_number", "status", "scanned_at", "created_at",
		}).
			AddRow(int64(1), "rb-001", "P-101", "Bolts M6", 15, "A", 1, 2, repository.StatusOK, scannedAt, scannedAt).
			AddRow(int64(2), "manual_import", nil, "N/A", 0, "B", nil, nil, repository.StatusCritical, scannedAt, scannedAt))

	svc := newExportService(mockDB)

	// Non-numeric tokens are dropped, numeric ones exported
	file, err := svc.Export(context.Background(), []string{"1", "junk", "2"})
	require.NoError(t, err)

	assert.Regexp(t, `^inventory_export_\d{8}_\d{4}\.xlsx$`, file.Filename)

	wb, err := excelize.OpenReader(bytes.NewReader(file.Content))
	require.NoError(t, err)
	defer wb.Close()

	rows, err := wb.GetRows("InventoryExport")
	require.NoError(t, err)
	require.Len(t, rows, 3)

	assert.Equal(t, "ID", rows[0][0])
	assert.Equal(t, "Product Name", rows[0][3])
	assert.Equal(t, "Bolts M6", rows[1][3])
	assert.Equal(t, "2026-08-15 09:30", rows[1][9])
	assert.Equal(t, "N/A", rows[2][3])

	mockDB.ExpectationsWereMet(t)
}
