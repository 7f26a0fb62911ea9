package service

import (
	"context"
	"time"

	"stockroom/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderService defines the order lifecycle operations: placement,
// cancellation, manual status override, and digital payment confirmation.
type OrderService interface {
	// PlaceOrder validates stock, creates the order with its items, and
	// decrements inventory, all in one transaction. Cash-equivalent payment
	// methods additionally record the payment and advance to Processing.
	PlaceOrder(ctx context.Context, req *model.PlaceOrderRequest) (*model.Order, error)

	// GetByID retrieves an order with its items and payment.
	GetByID(ctx context.Context, id uuid.UUID) (*model.Order, error)

	// CancelOrder restores every line item's quantity and marks the order
	// Cancelled, atomically. Terminal orders reject with ErrTerminalState.
	CancelOrder(ctx context.Context, id uuid.UUID) error

	// UpdateStatus applies a manual admin override. Setting the current
	// status again is a reported no-op, not an error; a Cancelled target
	// runs the full cancellation path including stock restoration.
	UpdateStatus(ctx context.Context, id uuid.UUID, status model.OrderStatus) (*model.StatusUpdateResult, error)

	// ConfirmPayment records a digital payment for a Pending order and
	// advances it to Paid.
	ConfirmPayment(ctx context.Context, orderID uuid.UUID, provider string) (*model.Payment, error)
}

// InventoryService defines batch-level ledger operations and catalogue reads.
type InventoryService interface {
	// AddBatch appends a provenance batch and raises the product quantity by
	// the batch quantity, atomically.
	AddBatch(ctx context.Context, productID uuid.UUID, quantity int, purchasePrice decimal.Decimal, manufactured, expiry time.Time) (*model.ProductBatch, error)

	// RemoveBatch deletes a batch and lowers the product quantity by the
	// batch quantity. Fails closed if the product quantity would go negative.
	RemoveBatch(ctx context.Context, batchID uuid.UUID) error

	// ListBatches retrieves a product's batches with their derived status.
	ListBatches(ctx context.Context, productID uuid.UUID) ([]model.BatchView, error)

	// GetProduct retrieves a single product.
	GetProduct(ctx context.Context, id uuid.UUID) (*model.Product, error)

	// ListProducts retrieves products with pagination.
	ListProducts(ctx context.Context, limit, offset int) ([]model.Product, error)

	// SearchProducts retrieves products matching a name query.
	SearchProducts(ctx context.Context, query string) ([]model.Product, error)

	// ListLowStock retrieves products at or below their reorder level.
	ListLowStock(ctx context.Context) ([]model.Product, error)
}

// StatusService advances open orders through the lifecycle based on elapsed
// time. One call is one scan pass; safe to call repeatedly.
type StatusService interface {
	// AdvanceStatuses scans all non-terminal orders and moves each
	// qualifying order forward by at most one state.
	AdvanceStatuses(ctx context.Context) error
}

// NotificationService fans events out to admin users and manages read state.
type NotificationService interface {
	// Notify creates one notification row per admin user.
	Notify(ctx context.Context, message, notifType string, relatedEntityID *uuid.UUID) error

	// ListUnread retrieves a user's most recent unread notifications.
	ListUnread(ctx context.Context, userID uuid.UUID) ([]model.Notification, error)

	// MarkRead flags a notification as read.
	MarkRead(ctx context.Context, id uuid.UUID) error

	// MarkAllRead flags all of a user's notifications as read.
	MarkAllRead(ctx context.Context, userID uuid.UUID) error
}
