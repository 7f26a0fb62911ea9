package model

import (
	"time"

	"github.com/google/uuid"
)

// Notification event types.
const (
	NotifyOrderPlaced        = "OrderPlaced"
	NotifyOrderCancelled     = "OrderCancelled"
	NotifyOrderCompleted     = "OrderCompleted"
	NotifyOrderStatusChanged = "OrderStatusChanged"
)

// Notification is a single admin-facing notification row. One logical event
// produces one row per admin user (broadcast by duplication).
type Notification struct {
	ID              uuid.UUID  `json:"id" db:"id"`
	Message         string     `json:"message" db:"message"`
	Type            string     `json:"type" db:"type"`
	RelatedEntityID *uuid.UUID `json:"relatedEntityId,omitempty" db:"related_entity_id"`
	UserID          uuid.UUID  `json:"userId" db:"user_id"`
	IsRead          bool       `json:"isRead" db:"is_read"`
	CreatedAt       time.Time  `json:"createdAt" db:"created_at"`
}
