package domain

import "time"

// EventType names an order lifecycle event.
type EventType string

const (
	EventOrderCreated           EventType = "order.created"
	EventOrderStatusChanged     EventType = "order.status_changed"
	EventOrderCancelled         EventType = "order.cancelled"
	EventPaymentConfirmed       EventType = "order.payment_confirmed"
	EventStockRestorationFailed EventType = "stock.restoration_failed"
)

// Event is published after a use case commits.
type Event struct {
	ID          string            `json:"id"`
	Type        EventType         `json:"type"`
	OrderID     int64             `json:"orderId"`
	OrderNumber string            `json:"orderNumber"`
	Status      Status            `json:"status"`
	OccurredAt  time.Time         `json:"occurredAt"`
	Attributes  map[string]string `json:"attributes,omitempty"`
}

// RestorationFailure records a line whose stock could not be returned after cancellation.
type RestorationFailure struct {
	ID          int64
	OrderID     int64
	OrderNumber string
	ProductID   int64
	Quantity    int
	Reason      string
	Attempts    int
	CreatedAt   time.Time
	ResolvedAt  *time.Time
}
