package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/smartstorage/smartstorage-backend/internal/inventory/repository"
	"github.com/smartstorage/smartstorage-backend/internal/inventory/service"
	"github.com/smartstorage/smartstorage-backend/pkg/logger"
	"github.com/smartstorage/smartstorage-backend/pkg/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newHistoryService(mockDB *testutil.MockDB) *service.HistoryService {
	return service.NewHistoryService(
		repository.NewHistoryRepository(mockDB.DB),
		logger.New("test", "test"),
	)
}

func TestHistoryService_DefaultsAndPaging(t *testing.T) {
	mockDB := testutil.NewMockDB(t)
	defer mockDB.Close()

	// Defaults: trailing 24h window, page 1, size 20
	mockDB.ExpectQuery("SELECT COUNT(*) FROM inventory_history h").
		WithArgs(sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(int64(41)))
	mockDB.ExpectQuery("LEFT JOIN products p ON p.id = h.product_id").
		WithArgs(sqlmock.AnyArg(), sqlmock.AnyArg(), 20, 0).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "robot_id", "product_id", "product_name", "quantity",
			"zone", "row_number", "shelf_number", "status", "scanned_at", "created_at",
		}))

	svc := newHistoryService(mockDB)
	page, err := svc.Query(context.Background(), service.HistoryQuery{})
	require.NoError(t, err)

	assert.Equal(t, 1, page.Page)
	assert.Equal(t, 20, page.PageSize)
	assert.Equal(t, int64(41), page.Total)
	// 41 rows at 20 per page rounds up to 3 pages
	assert.Equal(t, int64(3), page.TotalPages)
	assert.Empty(t, page.Items)

	mockDB.ExpectationsWereMet(t)
}

func TestHistoryService_ExplicitWindow(t *testing.T) {
	mockDB := testutil.NewMockDB(t)
	defer mockDB.Close()

	from := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2026, 8, 3, 0, 0, 0, 0, time.UTC)

	mockDB.ExpectQuery("SELECT COUNT(*) FROM inventory_history h").
		WithArgs(from, to, "a", "ok").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(int64(0)))
	mockDB.ExpectQuery("LEFT JOIN products p ON p.id = h.product_id").
		WithArgs(from, to, "a", "ok", 5, 5).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "robot_id", "product_id", "product_name", "quantity",
			"zone", "row_number", "shelf_number", "status", "scanned_at", "created_at",
		}))

	svc := newHistoryService(mockDB)
	page, err := svc.Query(context.Background(), service.HistoryQuery{
		From:     &from,
		To:       &to,
		Zone:     "a",
		Status:   "ok",
		Page:     2,
		PageSize: 5,
	})
	require.NoError(t, err)
	assert.Zero(t, page.Total)
	assert.Zero(t, page.TotalPages)

	mockDB.ExpectationsWereMet(t)
}
