package service

import (
	"context"
	"time"

	"github.com/smartstorage/smartstorage-backend/internal/inventory/events"
	"github.com/smartstorage/smartstorage-backend/internal/inventory/repository"
	"github.com/smartstorage/smartstorage-backend/pkg/logger"
	"github.com/smartstorage/smartstorage-backend/pkg/messaging"
)

// RecentScanCount is how many scans the dashboard snapshot carries
const RecentScanCount = 20

// DashboardStats aggregates warehouse-wide counters
type DashboardStats struct {
	TotalProducts    int64      `json:"total_products"`
	TotalScans       int64      `json:"total_scans"`
	CriticalProducts int64      `json:"critical_products"`
	ActiveRobots     int64      `json:"active_robots"`
	LastUpdate       *time.Time `json:"last_update"`
}

// DashboardState is the full snapshot a client loads on connect
type DashboardState struct {
	Robots      []repository.Robot      `json:"robots"`
	RecentScans []repository.HistoryRow `json:"recent_scans"`
	Stats       DashboardStats          `json:"stats"`
}

// AlertRequest is a manually triggered dashboard alert
type AlertRequest struct {
	Message string `json:"message" validate:"required"`
}

// DashboardService assembles dashboard snapshots and manual alerts
type DashboardService struct {
	robotRepo   *repository.RobotRepository
	productRepo *repository.ProductRepository
	historyRepo *repository.HistoryRepository
	publisher   *events.DashboardEventPublisher
	logger      *logger.Logger
}

// NewDashboardService creates a new dashboard service
func NewDashboardService(
	robotRepo *repository.RobotRepository,
	productRepo *repository.ProductRepository,
	historyRepo *repository.HistoryRepository,
	publisher *events.DashboardEventPublisher,
	log *logger.Logger,
) *DashboardService {
	return &DashboardService{
		robotRepo:   robotRepo,
		productRepo: productRepo,
		historyRepo: historyRepo,
		publisher:   publisher,
		logger:      log,
	}
}

// CurrentState returns the robots, the most recent scans and the aggregate
// stats. Reconnecting clients call this to resync after missed pushes.
func (s *DashboardService) CurrentState(ctx context.Context) (*DashboardState, error) {
	robots, err := s.robotRepo.List(ctx)
	if err != nil {
		return nil, err
	}

	scans, err := s.historyRepo.Recent(ctx, RecentScanCount)
	if err != nil {
		return nil, err
	}

	totalProducts, err := s.productRepo.Count(ctx)
	if err != nil {
		return nil, err
	}

	totalScans, err := s.historyRepo.Count(ctx)
	if err != nil {
		return nil, err
	}

	criticalProducts, err := s.historyRepo.CountCriticalProducts(ctx)
	if err != nil {
		return nil, err
	}

	activeRobots, err := s.robotRepo.CountByStatus(ctx, repository.RobotStatusActive)
	if err != nil {
		return nil, err
	}

	var lastUpdate *time.Time
	for i := range robots {
		if lastUpdate == nil || robots[i].LastUpdate.After(*lastUpdate) {
			lastUpdate = &robots[i].LastUpdate
		}
	}

	return &DashboardState{
		Robots:      robots,
		RecentScans: scans,
		Stats: DashboardStats{
			TotalProducts:    totalProducts,
			TotalScans:       totalScans,
			CriticalProducts: criticalProducts,
			ActiveRobots:     activeRobots,
			LastUpdate:       lastUpdate,
		},
	}, nil
}

// SendAlert broadcasts a manual alert to all dashboard clients
func (s *DashboardService) SendAlert(ctx context.Context, req *AlertRequest) {
	s.publisher.PublishInventoryAlert(ctx, messaging.InventoryAlertEvent{
		Message: req.Message,
		Time:    time.Now().UTC(),
	})

	s.logger.Info().Str("message", req.Message).Msg("manual dashboard alert sent")
}
