package service

import (
	"context"
	"testing"
	"time"

	"stockroom/internal/events"
	"stockroom/internal/model"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newStatusService(t *testing.T, at time.Time) (*statusService, *MockOrderRepository, *MockNotificationService, *RecordingPublisher) {
	t.Helper()
	orderRepo := new(MockOrderRepository)
	notifier := new(MockNotificationService)
	publisher := &RecordingPublisher{}
	svc := NewStatusService(orderRepo, notifier, publisher, zerolog.Nop()).(*statusService)
	svc.now = func() time.Time { return at }
	return svc, orderRepo, notifier, publisher
}

func activeOrder(status model.OrderStatus, method string, lastChange time.Time) model.Order {
	return model.Order{
		ID:               uuid.New(),
		Status:           status,
		PaymentMethod:    method,
		LastStatusChange: lastChange,
	}
}

func TestAdvanceStatuses_DigitalPaidAdvancesAfterThreshold(t *testing.T) {
	svc, orderRepo, notifier, publisher := newStatusService(t, fixedNow)
	ctx := context.Background()

	order := activeOrder(model.StatusPaid, model.PaymentEsewa, fixedNow.Add(-35*time.Minute))

	orderRepo.On("ListActive", ctx).Return([]model.Order{order}, nil)
	orderRepo.On("UpdateStatus", ctx, order.ID,
		model.StatusPaid, model.StatusProcessing, fixedNow).Return(nil)
	notifier.On("Notify", ctx, mock.AnythingOfType("string"), model.NotifyOrderStatusChanged, mock.Anything).Return(nil)

	require.NoError(t, svc.AdvanceStatuses(ctx))

	require.Len(t, publisher.Events, 1)
	assert.Equal(t, events.EventOrderStatusChanged, publisher.Events[0].EventType)
	orderRepo.AssertExpectations(t)
}

func TestAdvanceStatuses_BelowThresholdNoChange(t *testing.T) {
	svc, orderRepo, _, publisher := newStatusService(t, fixedNow)
	ctx := context.Background()

	orders := []model.Order{
		activeOrder(model.StatusPaid, model.PaymentEsewa, fixedNow.Add(-20*time.Minute)),
		activeOrder(model.StatusPending, model.PaymentCash, fixedNow.Add(-45*time.Minute)),
	}

	orderRepo.On("ListActive", ctx).Return(orders, nil)

	require.NoError(t, svc.AdvanceStatuses(ctx))

	assert.Empty(t, publisher.Events)
	orderRepo.AssertNotCalled(t, "UpdateStatus",
		mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestAdvanceStatuses_OneHopPerPass(t *testing.T) {
	svc, orderRepo, notifier, _ := newStatusService(t, fixedNow)
	ctx := context.Background()

	// Paid six hours ago: long past every threshold, still only one hop.
	order := activeOrder(model.StatusPaid, model.PaymentKhalti, fixedNow.Add(-6*time.Hour))

	orderRepo.On("ListActive", ctx).Return([]model.Order{order}, nil)
	orderRepo.On("UpdateStatus", ctx, order.ID,
		model.StatusPaid, model.StatusProcessing, fixedNow).Return(nil)
	notifier.On("Notify", ctx, mock.AnythingOfType("string"), model.NotifyOrderStatusChanged, mock.Anything).Return(nil)

	require.NoError(t, svc.AdvanceStatuses(ctx))

	orderRepo.AssertNumberOfCalls(t, "UpdateStatus", 1)
}

func TestAdvanceStatuses_CashTrack(t *testing.T) {
	cases := []struct {
		name    string
		status  model.OrderStatus
		elapsed time.Duration
		next    model.OrderStatus
		moves   bool
	}{
		{"pending before an hour holds", model.StatusPending, 59 * time.Minute, "", false},
		{"pending after an hour processes", model.StatusPending, 61 * time.Minute, model.StatusProcessing, true},
		{"processing after two hours ships", model.StatusProcessing, 121 * time.Minute, model.StatusShipped, true},
		{"shipped after three hours delivers", model.StatusShipped, 181 * time.Minute, model.StatusDelivered, true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc, orderRepo, notifier, _ := newStatusService(t, fixedNow)
			ctx := context.Background()

			order := activeOrder(tc.status, model.PaymentCash, fixedNow.Add(-tc.elapsed))
			orderRepo.On("ListActive", ctx).Return([]model.Order{order}, nil)
			if tc.moves {
				orderRepo.On("UpdateStatus", ctx, order.ID, tc.status, tc.next, fixedNow).Return(nil)
				notifier.On("Notify", ctx, mock.AnythingOfType("string"), mock.AnythingOfType("string"), mock.Anything).Return(nil)
			}

			require.NoError(t, svc.AdvanceStatuses(ctx))

			if tc.moves {
				orderRepo.AssertExpectations(t)
			} else {
				orderRepo.AssertNotCalled(t, "UpdateStatus",
					mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
			}
		})
	}
}

func TestAdvanceStatuses_DeliveredNotifiesCompletion(t *testing.T) {
	svc, orderRepo, notifier, _ := newStatusService(t, fixedNow)
	ctx := context.Background()

	order := activeOrder(model.StatusShipped, model.PaymentEsewa, fixedNow.Add(-3*time.Hour))

	orderRepo.On("ListActive", ctx).Return([]model.Order{order}, nil)
	orderRepo.On("UpdateStatus", ctx, order.ID,
		model.StatusShipped, model.StatusDelivered, fixedNow).Return(nil)
	notifier.On("Notify", ctx, mock.AnythingOfType("string"), model.NotifyOrderCompleted, mock.Anything).Return(nil)
	notifier.On("Notify", ctx, mock.AnythingOfType("string"), model.NotifyOrderStatusChanged, mock.Anything).Return(nil)

	require.NoError(t, svc.AdvanceStatuses(ctx))

	notifier.AssertExpectations(t)
}

func TestAdvanceStatuses_FailureIsolation(t *testing.T) {
	svc, orderRepo, notifier, publisher := newStatusService(t, fixedNow)
	ctx := context.Background()

	stuck := activeOrder(model.StatusPaid, model.PaymentEsewa, fixedNow.Add(-40*time.Minute))
	healthy := activeOrder(model.StatusProcessing, model.PaymentEsewa, fixedNow.Add(-70*time.Minute))

	orderRepo.On("ListActive", ctx).Return([]model.Order{stuck, healthy}, nil)
	orderRepo.On("UpdateStatus", ctx, stuck.ID,
		model.StatusPaid, model.StatusProcessing, fixedNow).Return(model.ErrConcurrencyConflict)
	orderRepo.On("UpdateStatus", ctx, healthy.ID,
		model.StatusProcessing, model.StatusShipped, fixedNow).Return(nil)
	notifier.On("Notify", ctx, mock.AnythingOfType("string"), model.NotifyOrderStatusChanged, mock.Anything).Return(nil)

	require.NoError(t, svc.AdvanceStatuses(ctx), "one stuck order must not abort the pass")

	require.Len(t, publisher.Events, 1, "only the successful transition publishes")
	orderRepo.AssertExpectations(t)
}

func TestAdvanceStatuses_SecondPassHolds(t *testing.T) {
	ctx := context.Background()

	// First pass at T advances Paid -> Processing. A second pass ten minutes
	// later sees the refreshed LastStatusChange and leaves the order alone.
	order := activeOrder(model.StatusPaid, model.PaymentEsewa, fixedNow.Add(-35*time.Minute))

	svc, orderRepo, notifier, _ := newStatusService(t, fixedNow)
	orderRepo.On("ListActive", ctx).Return([]model.Order{order}, nil)
	orderRepo.On("UpdateStatus", ctx, order.ID,
		model.StatusPaid, model.StatusProcessing, fixedNow).Return(nil)
	notifier.On("Notify", ctx, mock.AnythingOfType("string"), model.NotifyOrderStatusChanged, mock.Anything).Return(nil)
	require.NoError(t, svc.AdvanceStatuses(ctx))

	later := fixedNow.Add(10 * time.Minute)
	advanced := order
	advanced.Status = model.StatusProcessing
	advanced.LastStatusChange = fixedNow

	svc2, orderRepo2, _, publisher2 := newStatusService(t, later)
	orderRepo2.On("ListActive", ctx).Return([]model.Order{advanced}, nil)
	require.NoError(t, svc2.AdvanceStatuses(ctx))

	assert.Empty(t, publisher2.Events)
	orderRepo2.AssertNotCalled(t, "UpdateStatus",
		mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestNextHop_TerminalAndUntracked(t *testing.T) {
	delivered := activeOrder(model.StatusDelivered, model.PaymentCash, fixedNow.Add(-24*time.Hour))
	_, ok := nextHop(&delivered, fixedNow)
	assert.False(t, ok)

	cancelled := activeOrder(model.StatusCancelled, model.PaymentEsewa, fixedNow.Add(-24*time.Hour))
	_, ok = nextHop(&cancelled, fixedNow)
	assert.False(t, ok)

	// A digital order sitting in Pending waits for payment confirmation, not
	// for the clock.
	pendingDigital := activeOrder(model.StatusPending, model.PaymentKhalti, fixedNow.Add(-24*time.Hour))
	_, ok = nextHop(&pendingDigital, fixedNow)
	assert.False(t, ok)
}

func TestAdvanceStatuses_ContextCancelled(t *testing.T) {
	svc, orderRepo, _, _ := newStatusService(t, fixedNow)

	ctx, cancel := context.WithCancel(context.Background())
	orders := []model.Order{
		activeOrder(model.StatusPaid, model.PaymentEsewa, fixedNow.Add(-35*time.Minute)),
	}
	orderRepo.On("ListActive", ctx).Return(orders, nil)
	cancel()

	err := svc.AdvanceStatuses(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	orderRepo.AssertNotCalled(t, "UpdateStatus",
		mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}
