package service

import (
	"context"
	"testing"
	"time"

	"stockroom/internal/model"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newInventoryService(t *testing.T) (*inventoryService, *MockProductRepository, *MockBatchRepository, *MockTx) {
	t.Helper()
	productRepo := new(MockProductRepository)
	batchRepo := new(MockBatchRepository)
	tx := new(MockTx)
	svc := NewInventoryService(productRepo, batchRepo, zerolog.Nop()).(*inventoryService)
	svc.now = func() time.Time { return fixedNow }
	return svc, productRepo, batchRepo, tx
}

func TestAddBatch_RaisesQuantity(t *testing.T) {
	svc, productRepo, batchRepo, tx := newInventoryService(t)
	ctx := context.Background()

	productID := uuid.New()
	manufactured := fixedNow.AddDate(0, -1, 0)
	expiry := fixedNow.AddDate(1, 0, 0)

	productRepo.On("BeginTx", ctx).Return(tx, nil)
	productRepo.On("GetForUpdate", ctx, tx, productID).
		Return(&model.Product{ID: productID, Name: "Flour", Quantity: 7}, nil)
	batchRepo.On("Insert", ctx, tx, mock.MatchedBy(func(b *model.ProductBatch) bool {
		return b.ProductID == productID && b.Quantity == 30 && b.AddedAt.Equal(fixedNow)
	})).Return(nil)
	productRepo.On("AdjustQuantity", ctx, tx, productID, 30).Return(nil)
	tx.On("Commit", ctx).Return(nil)

	batch, err := svc.AddBatch(ctx, productID, 30, decimal.NewFromInt(45), manufactured, expiry)

	require.NoError(t, err)
	require.NotNil(t, batch)
	assert.Equal(t, 30, batch.Quantity)
	assert.True(t, batch.PurchasePrice.Equal(decimal.NewFromInt(45)))
	productRepo.AssertExpectations(t)
	batchRepo.AssertExpectations(t)
	tx.AssertExpectations(t)
}

func TestAddBatch_RejectsNonPositiveQuantity(t *testing.T) {
	svc, productRepo, _, _ := newInventoryService(t)

	for _, qty := range []int{0, -5} {
		batch, err := svc.AddBatch(context.Background(), uuid.New(), qty,
			decimal.NewFromInt(10), fixedNow, fixedNow.AddDate(1, 0, 0))
		assert.Nil(t, batch)
		assert.ErrorIs(t, err, model.ErrInvalidQuantity)
	}
	productRepo.AssertNotCalled(t, "BeginTx", mock.Anything)
}

func TestAddBatch_RejectsExpiryBeforeManufacture(t *testing.T) {
	svc, productRepo, _, _ := newInventoryService(t)

	batch, err := svc.AddBatch(context.Background(), uuid.New(), 10,
		decimal.NewFromInt(10), fixedNow, fixedNow.AddDate(0, 0, -1))

	assert.Nil(t, batch)
	assert.ErrorIs(t, err, model.ErrInvalidBatch)
	productRepo.AssertNotCalled(t, "BeginTx", mock.Anything)
}

func TestAddBatch_UnknownProduct(t *testing.T) {
	svc, productRepo, _, tx := newInventoryService(t)
	ctx := context.Background()
	productID := uuid.New()

	productRepo.On("BeginTx", ctx).Return(tx, nil)
	productRepo.On("GetForUpdate", ctx, tx, productID).Return(nil, nil)
	tx.On("Rollback", ctx).Return(nil)

	batch, err := svc.AddBatch(ctx, productID, 10,
		decimal.NewFromInt(10), fixedNow, fixedNow.AddDate(1, 0, 0))

	assert.Nil(t, batch)
	assert.ErrorIs(t, err, model.ErrProductNotFound)
	assert.True(t, tx.rolledBack)
}

func TestRemoveBatch_LowersQuantity(t *testing.T) {
	svc, productRepo, batchRepo, tx := newInventoryService(t)
	ctx := context.Background()

	productID := uuid.New()
	batchID := uuid.New()

	batchRepo.On("GetByID", ctx, batchID).
		Return(&model.ProductBatch{ID: batchID, ProductID: productID, Quantity: 12}, nil)
	productRepo.On("BeginTx", ctx).Return(tx, nil)
	productRepo.On("GetForUpdate", ctx, tx, productID).
		Return(&model.Product{ID: productID, Name: "Lentils", Quantity: 20}, nil)
	batchRepo.On("Delete", ctx, tx, batchID).Return(nil)
	productRepo.On("AdjustQuantity", ctx, tx, productID, -12).Return(nil)
	tx.On("Commit", ctx).Return(nil)

	err := svc.RemoveBatch(ctx, batchID)

	require.NoError(t, err)
	productRepo.AssertExpectations(t)
	batchRepo.AssertExpectations(t)
}

func TestRemoveBatch_FailsClosedWhenStockConsumed(t *testing.T) {
	svc, productRepo, batchRepo, tx := newInventoryService(t)
	ctx := context.Background()

	productID := uuid.New()
	batchID := uuid.New()

	// Orders already consumed most of the intake: 20 came in, only 8 remain.
	batchRepo.On("GetByID", ctx, batchID).
		Return(&model.ProductBatch{ID: batchID, ProductID: productID, Quantity: 20}, nil)
	productRepo.On("BeginTx", ctx).Return(tx, nil)
	productRepo.On("GetForUpdate", ctx, tx, productID).
		Return(&model.Product{ID: productID, Name: "Ghee", Quantity: 8}, nil)
	tx.On("Rollback", ctx).Return(nil)

	err := svc.RemoveBatch(ctx, batchID)

	var stockErr *model.InsufficientStockError
	require.ErrorAs(t, err, &stockErr)
	assert.Equal(t, 20, stockErr.Requested)
	assert.Equal(t, 8, stockErr.Available)
	batchRepo.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything, mock.Anything)
	productRepo.AssertNotCalled(t, "AdjustQuantity",
		mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestRemoveBatch_NotFound(t *testing.T) {
	svc, productRepo, batchRepo, tx := newInventoryService(t)
	ctx := context.Background()
	batchID := uuid.New()

	productRepo.On("BeginTx", ctx).Return(tx, nil)
	batchRepo.On("GetByID", ctx, batchID).Return(nil, nil)
	tx.On("Rollback", ctx).Return(nil)

	err := svc.RemoveBatch(ctx, batchID)

	assert.ErrorIs(t, err, model.ErrBatchNotFound)
}

func TestListBatches_DerivesStatus(t *testing.T) {
	svc, _, batchRepo, _ := newInventoryService(t)
	ctx := context.Background()
	productID := uuid.New()

	batches := []model.ProductBatch{
		{ID: uuid.New(), ProductID: productID, ExpiryDate: fixedNow.AddDate(1, 0, 0)},
		{ID: uuid.New(), ProductID: productID, ExpiryDate: fixedNow.AddDate(0, 0, 10)},
		{ID: uuid.New(), ProductID: productID, ExpiryDate: fixedNow.AddDate(0, 0, -1)},
	}
	batchRepo.On("ListByProduct", ctx, productID).Return(batches, nil)

	views, err := svc.ListBatches(ctx, productID)

	require.NoError(t, err)
	require.Len(t, views, 3)
	assert.Equal(t, model.BatchActive, views[0].Status)
	assert.Equal(t, model.BatchExpiringSoon, views[1].Status)
	assert.Equal(t, model.BatchExpired, views[2].Status)
}

func TestListProducts_ClampsPagination(t *testing.T) {
	svc, productRepo, _, _ := newInventoryService(t)
	ctx := context.Background()

	productRepo.On("GetAll", ctx, 50, 0).Return([]model.Product{}, nil)

	_, err := svc.ListProducts(ctx, -3, -9)

	require.NoError(t, err)
	productRepo.AssertExpectations(t)
}
