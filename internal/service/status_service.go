package service

import (
	"context"
	"fmt"
	"time"

	"stockroom/internal/events"
	"stockroom/internal/model"
	"stockroom/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Advancement thresholds measured from the last status change. Digital
// payments start at Paid and finish in two hours; cash orders start at
// Pending and finish in three.
var digitalTrack = map[model.OrderStatus]hop{
	model.StatusPaid:       {after: 30 * time.Minute, to: model.StatusProcessing},
	model.StatusProcessing: {after: 60 * time.Minute, to: model.StatusShipped},
	model.StatusShipped:    {after: 120 * time.Minute, to: model.StatusDelivered},
}

var cashTrack = map[model.OrderStatus]hop{
	model.StatusPending:    {after: 60 * time.Minute, to: model.StatusProcessing},
	model.StatusProcessing: {after: 120 * time.Minute, to: model.StatusShipped},
	model.StatusShipped:    {after: 180 * time.Minute, to: model.StatusDelivered},
}

type hop struct {
	after time.Duration
	to    model.OrderStatus
}

// statusService implements StatusService.
type statusService struct {
	orderRepo repository.OrderRepository
	notifier  NotificationService
	publisher events.Publisher
	logger    zerolog.Logger
	now       func() time.Time
}

// NewStatusService creates a new status-advancement service.
func NewStatusService(
	orderRepo repository.OrderRepository,
	notifier NotificationService,
	publisher events.Publisher,
	logger zerolog.Logger,
) StatusService {
	return &statusService{
		orderRepo: orderRepo,
		notifier:  notifier,
		publisher: publisher,
		logger:    logger.With().Str("service", "status").Logger(),
		now:       time.Now,
	}
}

// AdvanceStatuses scans all non-terminal orders and moves each qualifying
// order forward by exactly one state, however long it has been waiting.
// A failure on one order never aborts the rest of the pass.
func (s *statusService) AdvanceStatuses(ctx context.Context) error {
	orders, err := s.orderRepo.ListActive(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to list active orders")
		return fmt.Errorf("failed to list active orders: %w", err)
	}

	now := s.now()
	advanced := 0
	for i := range orders {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if s.advanceOne(ctx, &orders[i], now) {
			advanced++
		}
	}

	s.logger.Debug().
		Int("scanned", len(orders)).
		Int("advanced", advanced).
		Msg("status advancement pass complete")

	return nil
}

func (s *statusService) advanceOne(ctx context.Context, order *model.Order, now time.Time) bool {
	next, ok := nextHop(order, now)
	if !ok {
		return false
	}

	err := s.orderRepo.UpdateStatus(ctx, order.ID, order.Status, next, now)
	if err != nil {
		// Per-order isolation: log and carry on. A concurrency conflict just
		// means someone else moved the order first.
		s.logger.Warn().Err(err).
			Str("order_id", order.ID.String()).
			Str("from", string(order.Status)).
			Str("to", string(next)).
			Msg("failed to advance order")
		return false
	}

	s.logger.Info().
		Str("order_id", order.ID.String()).
		Str("from", string(order.Status)).
		Str("to", string(next)).
		Msg("order advanced")

	if next == model.StatusDelivered {
		s.notifyQuietly(ctx, fmt.Sprintf("Order #%s completed", order.ID), model.NotifyOrderCompleted, order.ID)
	}
	s.notifyQuietly(ctx,
		fmt.Sprintf("Order #%s status changed: %s -> %s", order.ID, order.Status, next),
		model.NotifyOrderStatusChanged, order.ID)

	envelope, envErr := events.NewEnvelope(events.EventOrderStatusChanged, producerName, order.ID,
		events.StatusChangedPayload{OrderID: order.ID, From: string(order.Status), To: string(next)})
	if envErr == nil {
		s.publisher.Publish(envelope)
	}

	return true
}

func (s *statusService) notifyQuietly(ctx context.Context, message, notifType string, orderID uuid.UUID) {
	related := orderID
	if err := s.notifier.Notify(ctx, message, notifType, &related); err != nil {
		s.logger.Error().Err(err).Str("type", notifType).Msg("failed to send notification")
	}
}

// nextHop decides the single transition an order qualifies for, if any.
// Orders advance at most one state per pass even when several thresholds
// have elapsed.
func nextHop(order *model.Order, now time.Time) (model.OrderStatus, bool) {
	if order.Status.IsTerminal() {
		return "", false
	}

	track := cashTrack
	if model.IsDigitalPayment(order.PaymentMethod) {
		track = digitalTrack
	}

	h, ok := track[order.Status]
	if !ok {
		return "", false
	}
	if now.Sub(order.LastStatusChange) < h.after {
		return "", false
	}
	return h.to, true
}
