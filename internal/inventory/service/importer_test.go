package service_test

import (
	"context"
	"strings"
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
)

const importHeader = "product_id;product_name;quantity;zone;date;row;shelf\n"

func newImportService(mockDB *testutil.MockDB) *service.ImportService {
	log := logger.New("test", "test")
	return service.NewImportService(
		mockDB.DB,
		repository.NewProductRepository(mockDB.DB),
		repository.NewHistoryRepository(mockDB.DB),
		log,
	)
}

func TestStatusForQuantity(t *testing.T) {
	tests := []struct {
		quantity int
		status   string
	}{
		{0, repository.StatusCritical},
		{1, repository.StatusLowStock},
		{9, repository.StatusLowStock},
		{10, repository.StatusOK},
		{500, repository.StatusOK},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.status, service.StatusForQuantity(tt.quantity), "quantity %d", tt.quantity)
	}
}

func TestImportService_InvalidHeader(t *testing.T) {
	mockDB := testutil.NewMockDB(t)
	defer mockDB.Close()

	svc := newImportService(mockDB)
	file := strings.NewReader("id;name;qty\nP-1;Bolts;5\n")

	_, err := svc.Import(context.Background(), file)
	require.Error(t, err)

	var appErr *errors.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, "INVALID_HEADER", appErr.Code)
	assert.Equal(t, 400, appErr.StatusCode)
}

func TestImportService_EmptyFile(t *testing.T) {
	mockDB := testutil.NewMockDB(t)
	defer mockDB.Close()

	svc := newImportService(mockDB)

	_, err := svc.Import(context.Background(), strings.NewReader(""))
	require.Error(t, err)

	var appErr *errors.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, "BAD_FILE", appErr.Code)
}

func TestImportService_MixedRows(t *testing.T) {
	mockDB := testutil.NewMockDB(t)
	defer mockDB.Close()

	file := strings.NewReader(importHeader +
		"P-101;Bolts M6;15;A;2026-08-01;1;2\n" +
		";Missing ID;5;A;2026-08-01;1;2\n" +
		"P-102;Washers;0;B;2026-08-02 10:30:00;;\n")

	scannedAt1 := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	scannedAt2 := time.Date(2026, 8, 2, 10, 30, 0, 0, time.UTC)
	now := time.Now().UTC()

	mockDB.ExpectBegin()
	mockDB.ExpectExec("INSERT INTO products").
		WithArgs("P-101", "Bolts M6", "Imported", 10, 100).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mockDB.ExpectQuery("INSERT INTO inventory_history").
		WithArgs("manual_import", "P-101", 15, "A", 1, 2, repository.StatusOK, scannedAt1).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow(int64(1), now))
	mockDB.ExpectExec("INSERT INTO products").
		WithArgs("P-102", "Washers", "Imported", 10, 100).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mockDB.ExpectQuery("INSERT INTO inventory_history").
		WithArgs("manual_import", "P-102", 0, "B", nil, nil, repository.StatusCritical, scannedAt2).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow(int64(2), now))
	mockDB.ExpectCommit()

	svc := newImportService(mockDB)
	result, err := svc.Import(context.Background(), file)
	require.NoError(t, err)

	assert.Equal(t, 2, result.Success)
	assert.Equal(t, 1, result.Failed)
	require.Len(t, result.Errors, 1)
	assert.Equal(t, 3, result.Errors[0].Line)
	assert.Contains(t, result.Errors[0].Reason, "product_id")

	mockDB.ExpectationsWereMet(t)
}

func TestImportService_NegativeQuantityIsSoftFailure(t *testing.T) {
	mockDB := testutil.NewMockDB(t)
	defer mockDB.Close()

	file := strings.NewReader(importHeader + "P-101;Bolts M6;-3;A;2026-08-01;;\n")

	mockDB.ExpectBegin()
	mockDB.ExpectCommit()

	svc := newImportService(mockDB)
	result, err := svc.Import(context.Background(), file)
	require.NoError(t, err)

	assert.Zero(t, result.Success)
	assert.Equal(t, 1, result.Failed)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0].Reason, "quantity")
}
