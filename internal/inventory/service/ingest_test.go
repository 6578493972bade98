package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/smartstorage/smartstorage-backend/internal/inventory/repository"
	"github.com/smartstorage/smartstorage-backend/internal/inventory/service"
	"github.com/smartstorage/smartstorage-backend/pkg/logger"
	"github.com/smartstorage/smartstorage-backend/pkg/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newIngestService(mockDB *testutil.MockDB) *service.IngestService {
	log := logger.New("test", "test")
	return service.NewIngestService(
		mockDB.DB,
		repository.NewRobotRepository(mockDB.DB),
		repository.NewProductRepository(mockDB.DB),
		repository.NewHistoryRepository(mockDB.DB),
		nil, // events are fire-and-forget, not exercised here
		log,
	)
}

func TestIngestService_ProcessReport(t *testing.T) {
	mockDB := testutil.NewMockDB(t)
	defer mockDB.Close()

	reportedAt := time.Date(2026, 8, 20, 14, 0, 0, 0, time.UTC)
	now := time.Now().UTC()

	mockDB.ExpectBegin()
	mockDB.ExpectExec("INSERT INTO robots").
		WithArgs("rb-001", repository.RobotStatusActive, 90, "A", 1, 2, reportedAt).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mockDB.ExpectExec("INSERT INTO products").
		WithArgs("P-101", "Bolts M6", "Auto-created", 10, 100).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mockDB.ExpectQuery("INSERT INTO inventory_history").
		WithArgs("rb-001", "P-101", 15, "A", 1, 2, repository.StatusOK, reportedAt).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow(int64(7), now))
	mockDB.ExpectCommit()

	svc := newIngestService(mockDB)
	ack, err := svc.ProcessReport(context.Background(), &service.RobotReport{
		RobotID:      "rb-001",
		Timestamp:    reportedAt,
		BatteryLevel: 90,
		Location:     service.Location{Zone: "A", Row: 1, Shelf: 2},
		ScanResults: []service.ScanResult{
			{ProductID: "P-101", ProductName: "Bolts M6", Quantity: 15, Status: repository.StatusOK},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, "received", ack.Status)
	_, err = uuid.Parse(ack.MessageID)
	assert.NoError(t, err, "message id must be a uuid")

	mockDB.ExpectationsWereMet(t)
}

func TestIngestService_UnknownProductWithoutName(t *testing.T) {
	mockDB := testutil.NewMockDB(t)
	defer mockDB.Close()

	reportedAt := time.Date(2026, 8, 20, 14, 0, 0, 0, time.UTC)
	now := time.Now().UTC()

	mockDB.ExpectBegin()
	mockDB.ExpectExec("INSERT INTO robots").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mockDB.ExpectQuery("SELECT EXISTS").
		WithArgs("P-404").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
	// Unknown product with no name keeps the scan but drops the product ref
	mockDB.ExpectQuery("INSERT INTO inventory_history").
		WithArgs("rb-001", nil, 3, "A", 1, 2, repository.StatusLowStock, reportedAt).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow(int64(8), now))
	mockDB.ExpectCommit()

	svc := newIngestService(mockDB)
	_, err := svc.ProcessReport(context.Background(), &service.RobotReport{
		RobotID:      "rb-001",
		Timestamp:    reportedAt,
		BatteryLevel: 50,
		Location:     service.Location{Zone: "A", Row: 1, Shelf: 2},
		ScanResults: []service.ScanResult{
			{ProductID: "P-404", Quantity: 3, Status: repository.StatusLowStock},
		},
	})
	require.NoError(t, err)

	mockDB.ExpectationsWereMet(t)
}

func TestIngestService_EmptyScanList(t *testing.T) {
	mockDB := testutil.NewMockDB(t)
	defer mockDB.Close()

	mockDB.ExpectBegin()
	mockDB.ExpectExec("INSERT INTO robots").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mockDB.ExpectCommit()

	svc := newIngestService(mockDB)
	ack, err := svc.ProcessReport(context.Background(), &service.RobotReport{
		RobotID:      "rb-002",
		BatteryLevel: 75,
		Location:     service.Location{Zone: "C"},
	})
	require.NoError(t, err)
	assert.Equal(t, "received", ack.Status)

	mockDB.ExpectationsWereMet(t)
}
