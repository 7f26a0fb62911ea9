package repository

import (
	"context"
	"fmt"
	"time"

	"stockroom/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// orderRepository implements the OrderRepository interface using PostgreSQL.
type orderRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewOrderRepository creates a new PostgreSQL-backed order repository.
func NewOrderRepository(pool *pgxpool.Pool, logger zerolog.Logger) OrderRepository {
	return &orderRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "order").Logger(),
	}
}

const orderColumns = `id, user_id, location_id, created_at, last_status_change, total_amount, status, payment_method, is_direct_order`

func scanOrder(row pgx.Row, o *model.Order) error {
	return row.Scan(&o.ID, &o.UserID, &o.LocationID, &o.CreatedAt, &o.LastStatusChange,
		&o.TotalAmount, &o.Status, &o.PaymentMethod, &o.IsDirectOrder)
}

// BeginTx starts a new database transaction.
func (r *orderRepository) BeginTx(ctx context.Context) (pgx.Tx, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to begin transaction")
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	return tx, nil
}

// CreateOrder inserts a new order within the provided transaction.
func (r *orderRepository) CreateOrder(ctx context.Context, tx pgx.Tx, order *model.Order) error {
	query := `
		INSERT INTO orders (id, user_id, location_id, created_at, last_status_change, total_amount, status, payment_method, is_direct_order)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := tx.Exec(ctx, query,
		order.ID, order.UserID, order.LocationID, order.CreatedAt, order.LastStatusChange,
		order.TotalAmount, order.Status, order.PaymentMethod, order.IsDirectOrder)
	if err != nil {
		r.logger.Error().
			Err(err).
			Str("order_id", order.ID.String()).
			Msg("failed to create order")
		return fmt.Errorf("failed to create order: %w", err)
	}

	r.logger.Debug().
		Str("order_id", order.ID.String()).
		Msg("order created successfully")

	return nil
}

// CreateOrderItems inserts multiple order items within the provided transaction.
func (r *orderRepository) CreateOrderItems(ctx context.Context, tx pgx.Tx, items []model.OrderItem) error {
	if len(items) == 0 {
		return nil
	}

	query := `
		INSERT INTO order_items (id, order_id, product_id, quantity, unit_price, final_price)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	batch := &pgx.Batch{}
	for _, item := range items {
		batch.Queue(query, item.ID, item.OrderID, item.ProductID, item.Quantity, item.UnitPrice, item.FinalPrice)
	}

	results := tx.SendBatch(ctx, batch)
	defer results.Close()

	for i := 0; i < len(items); i++ {
		_, err := results.Exec()
		if err != nil {
			r.logger.Error().
				Err(err).
				Str("order_id", items[i].OrderID.String()).
				Str("product_id", items[i].ProductID.String()).
				Msg("failed to create order item")
			return fmt.Errorf("failed to create order item: %w", err)
		}
	}

	r.logger.Debug().
		Int("count", len(items)).
		Msg("order items created successfully")

	return nil
}

// CreatePayment inserts the order's payment record within the provided transaction.
func (r *orderRepository) CreatePayment(ctx context.Context, tx pgx.Tx, payment *model.Payment) error {
	query := `
		INSERT INTO payments (id, order_id, provider, transaction_id, amount, paid_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := tx.Exec(ctx, query,
		payment.ID, payment.OrderID, payment.Provider, payment.TransactionID,
		payment.Amount, payment.PaidAt)
	if err != nil {
		r.logger.Error().
			Err(err).
			Str("order_id", payment.OrderID.String()).
			Msg("failed to create payment")
		return fmt.Errorf("failed to create payment: %w", err)
	}

	return nil
}

// GetByID retrieves an order by its ID along with its items and payment.
func (r *orderRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE id = $1`

	var order model.Order
	err := scanOrder(r.pool.QueryRow(ctx, query, id), &order)
	if err != nil {
		if err == pgx.ErrNoRows {
			r.logger.Debug().Str("order_id", id.String()).Msg("order not found")
			return nil, nil
		}
		r.logger.Error().Err(err).Str("order_id", id.String()).Msg("failed to query order")
		return nil, fmt.Errorf("failed to query order: %w", err)
	}

	items, err := r.loadItems(ctx, r.pool, id)
	if err != nil {
		return nil, err
	}
	order.Items = items

	payment, err := r.loadPayment(ctx, id)
	if err != nil {
		return nil, err
	}
	order.Payment = payment

	return &order, nil
}

// GetForUpdate retrieves an order with its items inside tx, holding a row
// lock so that concurrent cancellations and overrides serialise.
func (r *orderRepository) GetForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*model.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE id = $1 FOR UPDATE`

	var order model.Order
	err := scanOrder(tx.QueryRow(ctx, query, id), &order)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		r.logger.Error().Err(err).Str("order_id", id.String()).Msg("failed to lock order")
		return nil, fmt.Errorf("failed to lock order: %w", err)
	}

	items, err := r.loadItems(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	order.Items = items

	return &order, nil
}

// ListActive retrieves all orders not in a terminal state, ordered by last
// status change so the oldest waiting orders are processed first.
func (r *orderRepository) ListActive(ctx context.Context) ([]model.Order, error) {
	query := `
		SELECT ` + orderColumns + `
		FROM orders
		WHERE status NOT IN ($1, $2)
		ORDER BY last_status_change
	`

	rows, err := r.pool.Query(ctx, query, model.StatusDelivered, model.StatusCancelled)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to query active orders")
		return nil, fmt.Errorf("failed to query active orders: %w", err)
	}
	defer rows.Close()

	var orders []model.Order
	for rows.Next() {
		var o model.Order
		if err := scanOrder(rows, &o); err != nil {
			r.logger.Error().Err(err).Msg("failed to scan order row")
			return nil, fmt.Errorf("failed to scan order: %w", err)
		}
		orders = append(orders, o)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error().Err(err).Msg("error iterating order rows")
		return nil, fmt.Errorf("error iterating orders: %w", err)
	}

	return orders, nil
}

// UpdateStatus transitions an order from one status to another, guarded on
// the expected current status.
func (r *orderRepository) UpdateStatus(ctx context.Context, orderID uuid.UUID, from, to model.OrderStatus, at time.Time) error {
	return r.updateStatus(ctx, r.pool, orderID, from, to, at)
}

// UpdateStatusTx is UpdateStatus within a caller-owned transaction.
func (r *orderRepository) UpdateStatusTx(ctx context.Context, tx pgx.Tx, orderID uuid.UUID, from, to model.OrderStatus, at time.Time) error {
	return r.updateStatus(ctx, tx, orderID, from, to, at)
}

// execer is the subset of pgxpool.Pool and pgx.Tx the guarded update needs.
type execer interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
}

func (r *orderRepository) updateStatus(ctx context.Context, db execer, orderID uuid.UUID, from, to model.OrderStatus, at time.Time) error {
	query := `
		UPDATE orders
		SET status = $2, last_status_change = $3
		WHERE id = $1 AND status = $4
	`

	ct, err := db.Exec(ctx, query, orderID, to, at, from)
	if err != nil {
		r.logger.Error().Err(err).
			Str("order_id", orderID.String()).
			Str("from", string(from)).
			Str("to", string(to)).
			Msg("failed to update order status")
		return fmt.Errorf("failed to update order status: %w", err)
	}
	if ct.RowsAffected() != 1 {
		r.logger.Warn().
			Str("order_id", orderID.String()).
			Str("expected_status", string(from)).
			Msg("order status changed concurrently")
		return model.ErrConcurrencyConflict
	}

	r.logger.Info().
		Str("order_id", orderID.String()).
		Str("from", string(from)).
		Str("to", string(to)).
		Msg("order status updated")

	return nil
}

// querier is the subset of pgxpool.Pool and pgx.Tx used for reads.
type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

func (r *orderRepository) loadItems(ctx context.Context, db querier, orderID uuid.UUID) ([]model.OrderItem, error) {
	query := `
		SELECT id, order_id, product_id, quantity, unit_price, final_price
		FROM order_items
		WHERE order_id = $1
		ORDER BY id
	`

	rows, err := db.Query(ctx, query, orderID)
	if err != nil {
		r.logger.Error().
			Err(err).
			Str("order_id", orderID.String()).
			Msg("failed to query order items")
		return nil, fmt.Errorf("failed to query order items: %w", err)
	}
	defer rows.Close()

	var items []model.OrderItem
	for rows.Next() {
		var item model.OrderItem
		err := rows.Scan(&item.ID, &item.OrderID, &item.ProductID, &item.Quantity, &item.UnitPrice, &item.FinalPrice)
		if err != nil {
			r.logger.Error().Err(err).Msg("failed to scan order item row")
			return nil, fmt.Errorf("failed to scan order item: %w", err)
		}
		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error().Err(err).Msg("error iterating order item rows")
		return nil, fmt.Errorf("error iterating order items: %w", err)
	}

	return items, nil
}

func (r *orderRepository) loadPayment(ctx context.Context, orderID uuid.UUID) (*model.Payment, error) {
	query := `
		SELECT id, order_id, provider, transaction_id, amount, paid_at
		FROM payments
		WHERE order_id = $1
	`

	var p model.Payment
	err := r.pool.QueryRow(ctx, query, orderID).Scan(
		&p.ID, &p.OrderID, &p.Provider, &p.TransactionID, &p.Amount, &p.PaidAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		r.logger.Error().Err(err).Str("order_id", orderID.String()).Msg("failed to query payment")
		return nil, fmt.Errorf("failed to query payment: %w", err)
	}

	return &p, nil
}
