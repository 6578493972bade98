package messaging

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Event types routed through the dashboard exchange. The routing key doubles
// as the event type a dashboard client receives on the push channel.
const (
	EventRobotUpdate    = "dashboard.robot_update"
	EventScanUpdate     = "dashboard.scan_update"
	EventInventoryAlert = "dashboard.inventory_alert"
)

// Exchange names
const (
	ExchangeDashboardEvents = "dashboard.events"
)

// Event is the base event structure
type Event struct {
	ID            string          `json:"id"`
	Type          string          `json:"type"`
	Source        string          `json:"source"`
	Timestamp     time.Time       `json:"timestamp"`
	CorrelationID string          `json:"correlation_id"`
	Data          json.RawMessage `json:"data"`
}

// NewEvent creates a new event with the given type and data
func NewEvent(eventType, source, correlationID string, data interface{}) (*Event, error) {
	dataBytes, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}

	return &Event{
		ID:            uuid.New().String(),
		Type:          eventType,
		Source:        source,
		Timestamp:     time.Now().UTC(),
		CorrelationID: correlationID,
		Data:          dataBytes,
	}, nil
}

// UnmarshalData unmarshals the event data into the provided struct
func (e *Event) UnmarshalData(v interface{}) error {
	return json.Unmarshal(e.Data, v)
}

// RobotUpdateEvent carries a robot's full current state after a report.
type RobotUpdateEvent struct {
	RobotID      string    `json:"robot_id"`
	Status       string    `json:"status"`
	BatteryLevel int       `json:"battery_level"`
	CurrentZone  string    `json:"current_zone"`
	CurrentRow   *int      `json:"current_row"`
	CurrentShelf *int      `json:"current_shelf"`
	LastUpdate   time.Time `json:"last_update"`
}

// ScanUpdateEvent carries one newly inserted inventory history row. The
// product name comes from the ingested report, not from storage.
type ScanUpdateEvent struct {
	ID          int64     `json:"id"`
	RobotID     string    `json:"robot_id"`
	ProductID   string    `json:"product_id"`
	ProductName string    `json:"product_name"`
	Quantity    int       `json:"quantity"`
	Zone        string    `json:"zone"`
	RowNumber   int       `json:"row_number"`
	ShelfNumber int       `json:"shelf_number"`
	Status      string    `json:"status"`
	ScannedAt   time.Time `json:"scanned_at"`
}

// InventoryAlertEvent is a free-text alert shown on every connected dashboard.
type InventoryAlertEvent struct {
	RobotID string    `json:"robot_id,omitempty"`
	Message string    `json:"message"`
	Time    time.Time `json:"time"`
}
