package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/smartstorage/smartstorage-backend/internal/inventory/events"
	"github.com/smartstorage/smartstorage-backend/internal/inventory/repository"
	"github.com/smartstorage/smartstorage-backend/pkg/database"
	"github.com/smartstorage/smartstorage-backend/pkg/errors"
	"github.com/smartstorage/smartstorage-backend/pkg/logger"
	"github.com/smartstorage/smartstorage-backend/pkg/messaging"
)

// AutoCreatedCategory is assigned to products first seen in a robot scan
const AutoCreatedCategory = "Auto-created"

// CriticalAlertMessage is the fixed text broadcast when a scan reports
// critical stock.
const CriticalAlertMessage = "Critical stock level detected!"

// Location is a warehouse position
type Location struct {
	Zone  string `json:"zone" validate:"required"`
	Row   int    `json:"row"`
	Shelf int    `json:"shelf"`
}

// ScanResult is one product observation in a robot report
type ScanResult struct {
	ProductID   string `json:"product_id" validate:"required"`
	ProductName string `json:"product_name"`
	Quantity    int    `json:"quantity" validate:"gte=0"`
	Status      string `json:"status" validate:"required,oneof=OK LOW_STOCK CRITICAL"`
}

// RobotReport is the batch payload a robot posts after a patrol
type RobotReport struct {
	RobotID      string       `json:"robot_id" validate:"required"`
	Timestamp    time.Time    `json:"timestamp"`
	BatteryLevel int          `json:"battery_level" validate:"gte=0,lte=100"`
	Location     Location     `json:"location" validate:"required"`
	ScanResults  []ScanResult `json:"scan_results" validate:"dive"`
}

// IngestAck acknowledges a processed report
type IngestAck struct {
	Status    string `json:"status"`
	MessageID string `json:"message_id"`
}

// IngestService processes robot patrol reports
type IngestService struct {
	db          *database.DB
	robotRepo   *repository.RobotRepository
	productRepo *repository.ProductRepository
	historyRepo *repository.HistoryRepository
	publisher   *events.DashboardEventPublisher
	logger      *logger.Logger
}

// NewIngestService creates a new ingest service
func NewIngestService(
	db *database.DB,
	robotRepo *repository.RobotRepository,
	productRepo *repository.ProductRepository,
	historyRepo *repository.HistoryRepository,
	publisher *events.DashboardEventPublisher,
	log *logger.Logger,
) *IngestService {
	return &IngestService{
		db:          db,
		robotRepo:   robotRepo,
		productRepo: productRepo,
		historyRepo: historyRepo,
		publisher:   publisher,
		logger:      log,
	}
}

// ProcessReport upserts the robot's live state and appends one history row
// per scan, all in a single transaction. Dashboard events are published only
// after the commit succeeds.
func (s *IngestService) ProcessReport(ctx context.Context, report *RobotReport) (*IngestAck, error) {
	reportedAt := report.Timestamp
	if reportedAt.IsZero() {
		reportedAt = time.Now().UTC()
	}

	robot := &repository.Robot{
		ID:           report.RobotID,
		Status:       repository.RobotStatusActive,
		BatteryLevel: report.BatteryLevel,
		CurrentZone:  &report.Location.Zone,
		CurrentRow:   &report.Location.Row,
		CurrentShelf: &report.Location.Shelf,
		LastUpdate:   reportedAt,
	}

	inserted := make([]repository.InventoryHistory, 0, len(report.ScanResults))

	err := s.db.Transaction(ctx, func(tx *sqlx.Tx) error {
		robotRepo := s.robotRepo.WithTx(tx)
		productRepo := s.productRepo.WithTx(tx)
		historyRepo := s.historyRepo.WithTx(tx)

		if err := robotRepo.Upsert(ctx, robot); err != nil {
			return err
		}

		for _, scan := range report.ScanResults {
			productID := &scan.ProductID

			if scan.ProductName != "" {
				product := &repository.Product{
					ID:           scan.ProductID,
					Name:         scan.ProductName,
					Category:     strPtr(AutoCreatedCategory),
					MinStock:     repository.DefaultMinStock,
					OptimalStock: repository.DefaultOptimalStock,
				}
				if err := productRepo.CreateIfAbsent(ctx, product); err != nil {
					return err
				}
			} else {
				// Without a name we cannot auto-create the product;
				// the history row keeps quantity and location but no
				// product reference unless the id already exists.
				exists, err := productRepo.Exists(ctx, scan.ProductID)
				if err != nil {
					return err
				}
				if !exists {
					productID = nil
				}
			}

			row := repository.InventoryHistory{
				RobotID:     &report.RobotID,
				ProductID:   productID,
				Quantity:    scan.Quantity,
				Zone:        report.Location.Zone,
				RowNumber:   &report.Location.Row,
				ShelfNumber: &report.Location.Shelf,
				Status:      scan.Status,
				ScannedAt:   reportedAt,
			}
			if err := historyRepo.Insert(ctx, &row); err != nil {
				return err
			}
			inserted = append(inserted, row)
		}

		return nil
	})
	if err != nil {
		return nil, errors.Wrap(err, "INGEST_FAILED", "failed to process robot report", 500)
	}

	s.publishReportEvents(ctx, robot, report, inserted)

	s.logger.WithRobotID(report.RobotID).Info().
		Int("scans", len(inserted)).
		Msg("robot report processed")

	return &IngestAck{
		Status:    "received",
		MessageID: uuid.New().String(),
	}, nil
}

func (s *IngestService) publishReportEvents(ctx context.Context, robot *repository.Robot, report *RobotReport, rows []repository.InventoryHistory) {
	s.publisher.PublishRobotUpdate(ctx, messaging.RobotUpdateEvent{
		RobotID:      robot.ID,
		Status:       robot.Status,
		BatteryLevel: robot.BatteryLevel,
		CurrentZone:  report.Location.Zone,
		CurrentRow:   robot.CurrentRow,
		CurrentShelf: robot.CurrentShelf,
		LastUpdate:   robot.LastUpdate,
	})

	critical := false
	for i, row := range rows {
		// Product name comes from the report, not re-read from storage
		name := report.ScanResults[i].ProductName
		if name == "" {
			name = repository.UnknownProductName
		}

		productID := ""
		if row.ProductID != nil {
			productID = *row.ProductID
		}

		s.publisher.PublishScanUpdate(ctx, messaging.ScanUpdateEvent{
			ID:          row.ID,
			RobotID:     report.RobotID,
			ProductID:   productID,
			ProductName: name,
			Quantity:    row.Quantity,
			Zone:        row.Zone,
			RowNumber:   *row.RowNumber,
			ShelfNumber: *row.ShelfNumber,
			Status:      row.Status,
			ScannedAt:   row.ScannedAt,
		})

		if row.Status == repository.StatusCritical {
			critical = true
		}
	}

	if critical {
		s.publisher.PublishInventoryAlert(ctx, messaging.InventoryAlertEvent{
			RobotID: report.RobotID,
			Message: CriticalAlertMessage,
			Time:    time.Now().UTC(),
		})
	}
}

func strPtr(s string) *string { return &s }
