package repository

import (
	"context"
	"time"

	"stockroom/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// ProductRepository defines the inventory-ledger side of product data access.
// Stock mutations run inside a caller-owned transaction so that the
// check-and-decrement and the order write commit or roll back together.
type ProductRepository interface {
	// BeginTx starts a new database transaction.
	BeginTx(ctx context.Context) (pgx.Tx, error)

	// GetAll retrieves all products with pagination support.
	GetAll(ctx context.Context, limit, offset int) ([]model.Product, error)

	// GetByID retrieves a single product by its ID.
	GetByID(ctx context.Context, id uuid.UUID) (*model.Product, error)

	// FindByName retrieves products whose name matches the query.
	FindByName(ctx context.Context, query string) ([]model.Product, error)

	// GetForUpdate retrieves a product inside tx with a row lock, serialising
	// concurrent stock checks on the same product.
	GetForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*model.Product, error)

	// DecrementStock reduces the on-hand quantity inside tx. The update is
	// guarded so quantity can never go below zero.
	DecrementStock(ctx context.Context, tx pgx.Tx, id uuid.UUID, qty int) error

	// RestoreStock increases the on-hand quantity inside tx.
	RestoreStock(ctx context.Context, tx pgx.Tx, id uuid.UUID, qty int) error

	// AdjustQuantity applies a signed quantity delta inside tx, guarded
	// against going negative.
	AdjustQuantity(ctx context.Context, tx pgx.Tx, id uuid.UUID, delta int) error

	// ListBelowReorderLevel retrieves products at or below their reorder level.
	ListBelowReorderLevel(ctx context.Context) ([]model.Product, error)
}

// BatchRepository defines data access for stock provenance batches.
type BatchRepository interface {
	// Insert adds a batch row inside the provided transaction.
	Insert(ctx context.Context, tx pgx.Tx, batch *model.ProductBatch) error

	// Delete removes a batch row inside the provided transaction.
	Delete(ctx context.Context, tx pgx.Tx, id uuid.UUID) error

	// GetByID retrieves a single batch by its ID.
	GetByID(ctx context.Context, id uuid.UUID) (*model.ProductBatch, error)

	// ListByProduct retrieves all batches of a product, newest first.
	ListByProduct(ctx context.Context, productID uuid.UUID) ([]model.ProductBatch, error)
}

// OrderRepository defines data access for the order aggregate.
type OrderRepository interface {
	// BeginTx starts a new database transaction.
	BeginTx(ctx context.Context) (pgx.Tx, error)

	// CreateOrder inserts a new order within the provided transaction.
	CreateOrder(ctx context.Context, tx pgx.Tx, order *model.Order) error

	// CreateOrderItems inserts multiple order items within the provided transaction.
	CreateOrderItems(ctx context.Context, tx pgx.Tx, items []model.OrderItem) error

	// CreatePayment inserts the order's payment record within the provided transaction.
	CreatePayment(ctx context.Context, tx pgx.Tx, payment *model.Payment) error

	// GetByID retrieves an order by its ID along with its items and payment.
	GetByID(ctx context.Context, id uuid.UUID) (*model.Order, error)

	// GetForUpdate retrieves an order with its items inside tx with a row lock.
	GetForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*model.Order, error)

	// ListActive retrieves all orders not in a terminal state.
	ListActive(ctx context.Context) ([]model.Order, error)

	// UpdateStatus transitions an order from one status to another. The
	// update is guarded on the expected current status; a concurrent change
	// surfaces as model.ErrConcurrencyConflict.
	UpdateStatus(ctx context.Context, orderID uuid.UUID, from, to model.OrderStatus, at time.Time) error

	// UpdateStatusTx is UpdateStatus within a caller-owned transaction.
	UpdateStatusTx(ctx context.Context, tx pgx.Tx, orderID uuid.UUID, from, to model.OrderStatus, at time.Time) error
}

// NotificationRepository defines data access for notifications.
type NotificationRepository interface {
	// InsertMany persists a set of notification rows.
	InsertMany(ctx context.Context, notifications []model.Notification) error

	// ListUnread retrieves the most recent unread notifications of a user.
	ListUnread(ctx context.Context, userID uuid.UUID, limit int) ([]model.Notification, error)

	// MarkRead flags a single notification as read.
	MarkRead(ctx context.Context, id uuid.UUID) error

	// MarkAllRead flags all of a user's unread notifications as read.
	MarkAllRead(ctx context.Context, userID uuid.UUID) error
}

// UserRepository defines the identity lookup the core needs.
type UserRepository interface {
	// ListAdminIDs retrieves the IDs of all admin users.
	ListAdminIDs(ctx context.Context) ([]uuid.UUID, error)

	// IsAdmin reports whether the user holds the admin role.
	IsAdmin(ctx context.Context, userID uuid.UUID) (bool, error)
}

// LocationRepository defines data access for fulfilment locations.
type LocationRepository interface {
	// GetByID retrieves a location by its ID.
	GetByID(ctx context.Context, id uuid.UUID) (*model.Location, error)
}
