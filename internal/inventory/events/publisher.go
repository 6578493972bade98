package events

import (
	"context"

	"github.com/smartstorage/smartstorage-backend/pkg/logger"
	"github.com/smartstorage/smartstorage-backend/pkg/messaging"
)

// DashboardEventPublisher publishes dashboard push events. All publishes are
// fire-and-forget: a broker failure is logged, never surfaced to the caller,
// so ingestion keeps accepting scans when RabbitMQ is down.
type DashboardEventPublisher struct {
	publisher *messaging.Publisher
	logger    *logger.Logger
}

// NewDashboardEventPublisher creates a publisher for the dashboard events exchange
func NewDashboardEventPublisher(rmq *messaging.RabbitMQ, log *logger.Logger) (*DashboardEventPublisher, error) {
	pub, err := messaging.NewPublisher(rmq, messaging.ExchangeDashboardEvents, "inventory-service", log)
	if err != nil {
		return nil, err
	}

	return &DashboardEventPublisher{
		publisher: pub,
		logger:    log,
	}, nil
}

// PublishRobotUpdate publishes a robot state change
func (p *DashboardEventPublisher) PublishRobotUpdate(ctx context.Context, event messaging.RobotUpdateEvent) {
	p.publish(ctx, messaging.EventRobotUpdate, event)
}

// PublishScanUpdate publishes a newly recorded scan
func (p *DashboardEventPublisher) PublishScanUpdate(ctx context.Context, event messaging.ScanUpdateEvent) {
	p.publish(ctx, messaging.EventScanUpdate, event)
}

// PublishInventoryAlert publishes a critical stock alert
func (p *DashboardEventPublisher) PublishInventoryAlert(ctx context.Context, event messaging.InventoryAlertEvent) {
	p.publish(ctx, messaging.EventInventoryAlert, event)
}

func (p *DashboardEventPublisher) publish(ctx context.Context, eventType string, data interface{}) {
	if p == nil || p.publisher == nil {
		return
	}

	if err := p.publisher.Publish(ctx, eventType, data); err != nil {
		p.logger.Error().Err(err).
			Str("event_type", eventType).
			Msg("failed to publish dashboard event")
	}
}
