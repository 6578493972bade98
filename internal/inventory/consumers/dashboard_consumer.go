package consumers

import (
	"context"
	"fmt"

	"github.com/smartstorage/smartstorage-backend/internal/ws"
	"github.com/smartstorage/smartstorage-backend/pkg/logger"
	"github.com/smartstorage/smartstorage-backend/pkg/messaging"
)

// Dashboard WebSocket message types
const (
	TypeRobotUpdate    = "robot_update"
	TypeScanUpdate     = "scan_update"
	TypeInventoryAlert = "inventory_alert"
)

// DashboardConsumer forwards dashboard events from RabbitMQ to the
// WebSocket hub.
type DashboardConsumer struct {
	consumer *messaging.Consumer
	hub      *ws.Hub
	logger   *logger.Logger
}

// NewDashboardConsumer creates a consumer bound to the dashboard push queue
func NewDashboardConsumer(rmq *messaging.RabbitMQ, hub *ws.Hub, log *logger.Logger) (*DashboardConsumer, error) {
	consumer, err := messaging.NewConsumer(rmq, "dashboard.push", log)
	if err != nil {
		return nil, fmt.Errorf("failed to create dashboard consumer: %w", err)
	}

	if err := consumer.Subscribe(messaging.ExchangeDashboardEvents, "dashboard.*"); err != nil {
		return nil, fmt.Errorf("failed to subscribe to dashboard events: %w", err)
	}

	dc := &DashboardConsumer{
		consumer: consumer,
		hub:      hub,
		logger:   log,
	}

	consumer.RegisterHandler(messaging.EventRobotUpdate, dc.handleRobotUpdate)
	consumer.RegisterHandler(messaging.EventScanUpdate, dc.handleScanUpdate)
	consumer.RegisterHandler(messaging.EventInventoryAlert, dc.handleInventoryAlert)

	return dc, nil
}

// Start begins consuming events until the context is cancelled
func (c *DashboardConsumer) Start(ctx context.Context) error {
	return c.consumer.Start(ctx)
}

func (c *DashboardConsumer) handleRobotUpdate(ctx context.Context, event *messaging.Event) error {
	var data messaging.RobotUpdateEvent
	if err := event.UnmarshalData(&data); err != nil {
		return fmt.Errorf("failed to unmarshal robot update: %w", err)
	}

	c.hub.Broadcast(TypeRobotUpdate, data)
	return nil
}

func (c *DashboardConsumer) handleScanUpdate(ctx context.Context, event *messaging.Event) error {
	var data messaging.ScanUpdateEvent
	if err := event.UnmarshalData(&data); err != nil {
		return fmt.Errorf("failed to unmarshal scan update: %w", err)
	}

	c.hub.Broadcast(TypeScanUpdate, data)
	return nil
}

func (c *DashboardConsumer) handleInventoryAlert(ctx context.Context, event *messaging.Event) error {
	var data messaging.InventoryAlertEvent
	if err := event.UnmarshalData(&data); err != nil {
		return fmt.Errorf("failed to unmarshal inventory alert: %w", err)
	}

	c.hub.Broadcast(TypeInventoryAlert, data)
	return nil
}
