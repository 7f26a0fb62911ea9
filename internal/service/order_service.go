package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"stockroom/internal/events"
	"stockroom/internal/model"
	"stockroom/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

const producerName = "stockroom-api"

// orderService implements OrderService.
type orderService struct {
	orderRepo    repository.OrderRepository
	productRepo  repository.ProductRepository
	locationRepo repository.LocationRepository
	notifier     NotificationService
	publisher    events.Publisher
	logger       zerolog.Logger
	now          func() time.Time
}

// NewOrderService creates a new order service.
func NewOrderService(
	orderRepo repository.OrderRepository,
	productRepo repository.ProductRepository,
	locationRepo repository.LocationRepository,
	notifier NotificationService,
	publisher events.Publisher,
	logger zerolog.Logger,
) OrderService {
	return &orderService{
		orderRepo:    orderRepo,
		productRepo:  productRepo,
		locationRepo: locationRepo,
		notifier:     notifier,
		publisher:    publisher,
		logger:       logger.With().Str("service", "order").Logger(),
		now:          time.Now,
	}
}

// PlaceOrder validates stock, creates the order, and decrements inventory in
// one transaction. Product row locks serialise concurrent placements on the
// same product: two checkouts can never both pass the sufficiency check.
func (s *orderService) PlaceOrder(ctx context.Context, req *model.PlaceOrderRequest) (*model.Order, error) {
	if err := s.validatePlaceOrderRequest(req); err != nil {
		return nil, err
	}

	locationFee := decimal.Zero
	location, err := s.locationRepo.GetByID(ctx, req.LocationID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve location: %w", err)
	}
	if location != nil {
		locationFee = location.Fee
	}

	tx, err := s.orderRepo.BeginTx(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to begin transaction")
		return nil, fmt.Errorf("failed to place order: %w", err)
	}

	// Roll back fully on any error; no partial decrement is ever observable.
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil {
				s.logger.Error().Err(rbErr).Msg("failed to rollback transaction")
			}
		}
	}()

	now := s.now()
	order := &model.Order{
		ID:               uuid.New(),
		UserID:           req.UserID,
		LocationID:       req.LocationID,
		CreatedAt:        now,
		LastStatusChange: now,
		TotalAmount:      req.Cart.Subtotal().Add(locationFee),
		Status:           model.StatusPending,
		PaymentMethod:    req.PaymentMethod,
		IsDirectOrder:    req.IsDirectOrder,
	}

	items := make([]model.OrderItem, len(req.Cart.Items))
	for i, line := range req.Cart.Items {
		var product *model.Product
		product, err = s.productRepo.GetForUpdate(ctx, tx, line.ProductID)
		if err != nil {
			return nil, fmt.Errorf("failed to place order: %w", err)
		}
		if product == nil {
			s.logger.Warn().
				Str("product_id", line.ProductID.String()).
				Msg("cart references unknown product")
			err = model.ErrProductNotFound
			return nil, err
		}
		if product.Quantity < line.Quantity {
			err = &model.InsufficientStockError{
				ProductID:   product.ID.String(),
				ProductName: product.Name,
				Requested:   line.Quantity,
				Available:   product.Quantity,
			}
			s.logger.Warn().
				Str("product_id", product.ID.String()).
				Int("requested", line.Quantity).
				Int("available", product.Quantity).
				Msg("insufficient stock")
			return nil, err
		}

		if err = s.productRepo.DecrementStock(ctx, tx, product.ID, line.Quantity); err != nil {
			return nil, fmt.Errorf("failed to place order: %w", err)
		}

		items[i] = model.OrderItem{
			ID:         uuid.New(),
			OrderID:    order.ID,
			ProductID:  line.ProductID,
			Quantity:   line.Quantity,
			UnitPrice:  line.UnitPrice,
			FinalPrice: line.FinalPrice,
		}
	}

	if err = s.orderRepo.CreateOrder(ctx, tx, order); err != nil {
		return nil, fmt.Errorf("failed to place order: %w", err)
	}
	if err = s.orderRepo.CreateOrderItems(ctx, tx, items); err != nil {
		return nil, fmt.Errorf("failed to place order: %w", err)
	}
	order.Items = items

	// Cash-equivalent methods are confirmed at placement time: record the
	// payment and move straight to Processing inside the same transaction.
	if !model.IsDigitalPayment(req.PaymentMethod) {
		payment := &model.Payment{
			ID:            uuid.New(),
			OrderID:       order.ID,
			Provider:      req.PaymentMethod,
			TransactionID: transactionID(req.PaymentMethod),
			Amount:        order.TotalAmount,
			PaidAt:        now,
		}
		if err = s.orderRepo.CreatePayment(ctx, tx, payment); err != nil {
			return nil, fmt.Errorf("failed to place order: %w", err)
		}
		if err = s.orderRepo.UpdateStatusTx(ctx, tx, order.ID, model.StatusPending, model.StatusProcessing, now); err != nil {
			return nil, fmt.Errorf("failed to place order: %w", err)
		}
		order.Payment = payment
		order.Status = model.StatusProcessing
	}

	if err = tx.Commit(ctx); err != nil {
		s.logger.Error().Err(err).Str("order_id", order.ID.String()).Msg("failed to commit transaction")
		return nil, fmt.Errorf("failed to place order: %w", err)
	}

	s.logger.Info().
		Str("order_id", order.ID.String()).
		Str("status", string(order.Status)).
		Str("total", order.TotalAmount.String()).
		Int("item_count", len(items)).
		Msg("order placed")

	// Notifications and events only after commit; failures here are logged,
	// never surfaced, since the order already exists.
	s.notifyQuietly(ctx, fmt.Sprintf("New order placed: #%s", order.ID), model.NotifyOrderPlaced, order.ID)
	s.publishEvent(events.EventOrderPlaced, order.ID, events.OrderPlacedPayload{
		OrderID:       order.ID,
		UserID:        order.UserID,
		TotalAmount:   order.TotalAmount.String(),
		PaymentMethod: order.PaymentMethod,
		ItemCount:     len(items),
	})

	return order, nil
}

// GetByID retrieves an order with its items and payment.
func (s *orderService) GetByID(ctx context.Context, id uuid.UUID) (*model.Order, error) {
	order, err := s.orderRepo.GetByID(ctx, id)
	if err != nil {
		s.logger.Error().Err(err).Str("order_id", id.String()).Msg("failed to get order")
		return nil, fmt.Errorf("failed to get order: %w", err)
	}
	return order, nil
}

// CancelOrder restores each line item's recorded quantity and marks the
// order Cancelled, atomically. The restoration amount always comes from the
// order items, never from the caller.
func (s *orderService) CancelOrder(ctx context.Context, id uuid.UUID) error {
	tx, err := s.orderRepo.BeginTx(ctx)
	if err != nil {
		return fmt.Errorf("failed to cancel order: %w", err)
	}

	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil {
				s.logger.Error().Err(rbErr).Msg("failed to rollback transaction")
			}
		}
	}()

	var order *model.Order
	order, err = s.orderRepo.GetForUpdate(ctx, tx, id)
	if err != nil {
		return fmt.Errorf("failed to cancel order: %w", err)
	}
	if order == nil {
		err = model.ErrOrderNotFound
		return err
	}
	if order.Status.IsTerminal() {
		s.logger.Warn().
			Str("order_id", id.String()).
			Str("status", string(order.Status)).
			Msg("cannot cancel order in terminal state")
		err = model.ErrTerminalState
		return err
	}

	for _, item := range order.Items {
		if err = s.productRepo.RestoreStock(ctx, tx, item.ProductID, item.Quantity); err != nil {
			return fmt.Errorf("failed to cancel order: %w", err)
		}
	}

	now := s.now()
	previous := order.Status
	if err = s.orderRepo.UpdateStatusTx(ctx, tx, id, previous, model.StatusCancelled, now); err != nil {
		return fmt.Errorf("failed to cancel order: %w", err)
	}

	if err = tx.Commit(ctx); err != nil {
		s.logger.Error().Err(err).Str("order_id", id.String()).Msg("failed to commit cancellation")
		return fmt.Errorf("failed to cancel order: %w", err)
	}

	s.logger.Info().
		Str("order_id", id.String()).
		Str("previous_status", string(previous)).
		Msg("order cancelled")

	s.notifyQuietly(ctx, fmt.Sprintf("Order #%s has been cancelled", id), model.NotifyOrderCancelled, id)
	s.publishEvent(events.EventOrderCancelled, id, events.CancelledPayload{
		OrderID:  id,
		Previous: string(previous),
	})

	return nil
}

// UpdateStatus applies a manual admin override to a non-terminal order.
// Re-requesting the current status is reported as unchanged, not an error.
// A Cancelled target restores stock exactly like CancelOrder.
func (s *orderService) UpdateStatus(ctx context.Context, id uuid.UUID, status model.OrderStatus) (*model.StatusUpdateResult, error) {
	if !status.IsValid() {
		return nil, model.ErrInvalidTransition
	}
	if status == model.StatusCancelled {
		// The cancellation path owns stock restoration.
		order, err := s.orderRepo.GetByID(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("failed to update status: %w", err)
		}
		if order == nil {
			return nil, model.ErrOrderNotFound
		}
		previous := order.Status
		if err := s.CancelOrder(ctx, id); err != nil {
			return nil, err
		}
		return &model.StatusUpdateResult{
			OrderID:  id,
			Previous: previous,
			Current:  model.StatusCancelled,
			Changed:  true,
		}, nil
	}

	tx, err := s.orderRepo.BeginTx(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to update status: %w", err)
	}

	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil {
				s.logger.Error().Err(rbErr).Msg("failed to rollback transaction")
			}
		}
	}()

	var order *model.Order
	order, err = s.orderRepo.GetForUpdate(ctx, tx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to update status: %w", err)
	}
	if order == nil {
		err = model.ErrOrderNotFound
		return nil, err
	}
	if order.Status.IsTerminal() {
		err = model.ErrTerminalState
		return nil, err
	}

	if order.Status == status {
		if rbErr := tx.Rollback(ctx); rbErr != nil {
			s.logger.Error().Err(rbErr).Msg("failed to rollback transaction")
		}
		return &model.StatusUpdateResult{
			OrderID:  id,
			Previous: order.Status,
			Current:  order.Status,
			Changed:  false,
		}, nil
	}

	now := s.now()
	previous := order.Status
	if err = s.orderRepo.UpdateStatusTx(ctx, tx, id, previous, status, now); err != nil {
		return nil, fmt.Errorf("failed to update status: %w", err)
	}

	if err = tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to update status: %w", err)
	}

	s.logger.Info().
		Str("order_id", id.String()).
		Str("from", string(previous)).
		Str("to", string(status)).
		Msg("order status overridden")

	if status == model.StatusDelivered {
		s.notifyQuietly(ctx, fmt.Sprintf("Order #%s completed", id), model.NotifyOrderCompleted, id)
	}
	s.notifyQuietly(ctx,
		fmt.Sprintf("Order #%s status changed: %s -> %s", id, previous, status),
		model.NotifyOrderStatusChanged, id)
	s.publishEvent(events.EventOrderStatusChanged, id, events.StatusChangedPayload{
		OrderID: id,
		From:    string(previous),
		To:      string(status),
	})

	return &model.StatusUpdateResult{
		OrderID:  id,
		Previous: previous,
		Current:  status,
		Changed:  true,
	}, nil
}

// ConfirmPayment records a digital payment for a Pending order and advances
// it to Paid. The engine takes it from there.
func (s *orderService) ConfirmPayment(ctx context.Context, orderID uuid.UUID, provider string) (*model.Payment, error) {
	tx, err := s.orderRepo.BeginTx(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to confirm payment: %w", err)
	}

	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil {
				s.logger.Error().Err(rbErr).Msg("failed to rollback transaction")
			}
		}
	}()

	var order *model.Order
	order, err = s.orderRepo.GetForUpdate(ctx, tx, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to confirm payment: %w", err)
	}
	if order == nil {
		err = model.ErrOrderNotFound
		return nil, err
	}
	if order.Status != model.StatusPending || !model.IsDigitalPayment(order.PaymentMethod) {
		s.logger.Warn().
			Str("order_id", orderID.String()).
			Str("status", string(order.Status)).
			Str("payment_method", order.PaymentMethod).
			Msg("order not awaiting digital payment")
		err = model.ErrInvalidTransition
		return nil, err
	}

	now := s.now()
	payment := &model.Payment{
		ID:            uuid.New(),
		OrderID:       orderID,
		Provider:      provider,
		TransactionID: transactionID(provider),
		Amount:        order.TotalAmount,
		PaidAt:        now,
	}
	if err = s.orderRepo.CreatePayment(ctx, tx, payment); err != nil {
		return nil, fmt.Errorf("failed to confirm payment: %w", err)
	}
	if err = s.orderRepo.UpdateStatusTx(ctx, tx, orderID, model.StatusPending, model.StatusPaid, now); err != nil {
		return nil, fmt.Errorf("failed to confirm payment: %w", err)
	}

	if err = tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to confirm payment: %w", err)
	}

	s.logger.Info().
		Str("order_id", orderID.String()).
		Str("provider", provider).
		Str("amount", payment.Amount.String()).
		Msg("payment confirmed")

	s.notifyQuietly(ctx,
		fmt.Sprintf("Order #%s status changed: %s -> %s", orderID, model.StatusPending, model.StatusPaid),
		model.NotifyOrderStatusChanged, orderID)
	s.publishEvent(events.EventOrderStatusChanged, orderID, events.StatusChangedPayload{
		OrderID: orderID,
		From:    string(model.StatusPending),
		To:      string(model.StatusPaid),
	})

	return payment, nil
}

func (s *orderService) validatePlaceOrderRequest(req *model.PlaceOrderRequest) error {
	if req == nil {
		return fmt.Errorf("place order request is nil")
	}
	if len(req.Cart.Items) == 0 {
		return model.ErrEmptyCart
	}
	for i, item := range req.Cart.Items {
		if item.ProductID == uuid.Nil {
			return fmt.Errorf("cart line %d: product ID is required", i)
		}
		if item.Quantity <= 0 {
			s.logger.Warn().
				Int("line", i).
				Str("product_id", item.ProductID.String()).
				Int("quantity", item.Quantity).
				Msg("invalid quantity")
			return model.ErrInvalidQuantity
		}
	}
	return nil
}

// notifyQuietly fans a notification out and only logs on failure. Used after
// commit where the triggering operation has already succeeded.
func (s *orderService) notifyQuietly(ctx context.Context, message, notifType string, orderID uuid.UUID) {
	related := orderID
	if err := s.notifier.Notify(ctx, message, notifType, &related); err != nil {
		s.logger.Error().Err(err).Str("type", notifType).Msg("failed to send notification")
	}
}

func (s *orderService) publishEvent(eventType string, orderID uuid.UUID, payload any) {
	envelope, err := events.NewEnvelope(eventType, producerName, orderID, payload)
	if err != nil {
		s.logger.Error().Err(err).Str("event_type", eventType).Msg("failed to build event")
		return
	}
	s.publisher.Publish(envelope)
}

// transactionID builds a provider-prefixed reference like "CASH-1a2b3c4d".
func transactionID(provider string) string {
	return fmt.Sprintf("%s-%.8s", strings.ToUpper(provider), uuid.New().String())
}
