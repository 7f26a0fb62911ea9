package events

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Order lifecycle event types.
const (
	EventOrderPlaced        = "OrderPlaced"
	EventOrderStatusChanged = "OrderStatusChanged"
	EventOrderCancelled     = "OrderCancelled"
)

// Envelope wraps every published event. Partitioning on the order ID keeps
// the events of one order in order.
type Envelope struct {
	EventID    uuid.UUID       `json:"event_id"`
	EventType  string          `json:"event_type"`
	OccurredAt time.Time       `json:"occurred_at"`
	Producer   string          `json:"producer"`
	OrderID    uuid.UUID       `json:"order_id"`
	Payload    json.RawMessage `json:"payload"`
}

// OrderPlacedPayload is the payload of an OrderPlaced event.
type OrderPlacedPayload struct {
	OrderID       uuid.UUID `json:"order_id"`
	UserID        uuid.UUID `json:"user_id"`
	TotalAmount   string    `json:"total_amount"`
	PaymentMethod string    `json:"payment_method"`
	ItemCount     int       `json:"item_count"`
}

// StatusChangedPayload is the payload of an OrderStatusChanged event.
type StatusChangedPayload struct {
	OrderID uuid.UUID `json:"order_id"`
	From    string    `json:"from"`
	To      string    `json:"to"`
}

// CancelledPayload is the payload of an OrderCancelled event.
type CancelledPayload struct {
	OrderID  uuid.UUID `json:"order_id"`
	Previous string    `json:"previous"`
}

// NewEnvelope builds an envelope around an already-marshalled payload.
func NewEnvelope(eventType, producer string, orderID uuid.UUID, payload any) (Envelope, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return Envelope{}, err
	}
	return Envelope{
		EventID:    uuid.New(),
		EventType:  eventType,
		OccurredAt: time.Now(),
		Producer:   producer,
		OrderID:    orderID,
		Payload:    raw,
	}, nil
}
