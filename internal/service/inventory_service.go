package service

import (
	"context"
	"fmt"
	"time"

	"stockroom/internal/model"
	"stockroom/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// inventoryService implements InventoryService.
type inventoryService struct {
	productRepo repository.ProductRepository
	batchRepo   repository.BatchRepository
	logger      zerolog.Logger
	now         func() time.Time
}

// NewInventoryService creates a new inventory service.
func NewInventoryService(
	productRepo repository.ProductRepository,
	batchRepo repository.BatchRepository,
	logger zerolog.Logger,
) InventoryService {
	return &inventoryService{
		productRepo: productRepo,
		batchRepo:   batchRepo,
		logger:      logger.With().Str("service", "inventory").Logger(),
		now:         time.Now,
	}
}

// AddBatch appends a provenance batch and raises the product quantity by the
// batch quantity in one transaction, keeping batches and the aggregate
// reconciled.
func (s *inventoryService) AddBatch(ctx context.Context, productID uuid.UUID, quantity int, purchasePrice decimal.Decimal, manufactured, expiry time.Time) (*model.ProductBatch, error) {
	if quantity <= 0 {
		return nil, model.ErrInvalidQuantity
	}
	if !expiry.After(manufactured) {
		return nil, model.ErrInvalidBatch
	}

	tx, err := s.productRepo.BeginTx(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to add batch: %w", err)
	}

	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil {
				s.logger.Error().Err(rbErr).Msg("failed to rollback transaction")
			}
		}
	}()

	var product *model.Product
	product, err = s.productRepo.GetForUpdate(ctx, tx, productID)
	if err != nil {
		return nil, fmt.Errorf("failed to add batch: %w", err)
	}
	if product == nil {
		err = model.ErrProductNotFound
		return nil, err
	}

	batch := &model.ProductBatch{
		ID:               uuid.New(),
		ProductID:        productID,
		Quantity:         quantity,
		PurchasePrice:    purchasePrice,
		ManufacturedDate: manufactured,
		ExpiryDate:       expiry,
		AddedAt:          s.now(),
	}

	if err = s.batchRepo.Insert(ctx, tx, batch); err != nil {
		return nil, fmt.Errorf("failed to add batch: %w", err)
	}
	if err = s.productRepo.AdjustQuantity(ctx, tx, productID, quantity); err != nil {
		return nil, fmt.Errorf("failed to add batch: %w", err)
	}

	if err = tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to add batch: %w", err)
	}

	s.logger.Info().
		Str("batch_id", batch.ID.String()).
		Str("product_id", productID.String()).
		Int("quantity", quantity).
		Msg("batch added")

	return batch, nil
}

// RemoveBatch deletes a batch and lowers the product quantity by the batch
// quantity. Fails closed when orders have already consumed the intake and
// the aggregate would go negative.
func (s *inventoryService) RemoveBatch(ctx context.Context, batchID uuid.UUID) error {
	tx, err := s.productRepo.BeginTx(ctx)
	if err != nil {
		return fmt.Errorf("failed to remove batch: %w", err)
	}

	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil {
				s.logger.Error().Err(rbErr).Msg("failed to rollback transaction")
			}
		}
	}()

	var batch *model.ProductBatch
	batch, err = s.batchRepo.GetByID(ctx, batchID)
	if err != nil {
		return fmt.Errorf("failed to remove batch: %w", err)
	}
	if batch == nil {
		err = model.ErrBatchNotFound
		return err
	}

	var product *model.Product
	product, err = s.productRepo.GetForUpdate(ctx, tx, batch.ProductID)
	if err != nil {
		return fmt.Errorf("failed to remove batch: %w", err)
	}
	if product == nil {
		err = model.ErrProductNotFound
		return err
	}
	if product.Quantity < batch.Quantity {
		s.logger.Warn().
			Str("batch_id", batchID.String()).
			Int("batch_quantity", batch.Quantity).
			Int("on_hand", product.Quantity).
			Msg("removing batch would drive quantity negative")
		err = &model.InsufficientStockError{
			ProductID:   product.ID.String(),
			ProductName: product.Name,
			Requested:   batch.Quantity,
			Available:   product.Quantity,
		}
		return err
	}

	if err = s.batchRepo.Delete(ctx, tx, batchID); err != nil {
		return fmt.Errorf("failed to remove batch: %w", err)
	}
	if err = s.productRepo.AdjustQuantity(ctx, tx, batch.ProductID, -batch.Quantity); err != nil {
		return fmt.Errorf("failed to remove batch: %w", err)
	}

	if err = tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to remove batch: %w", err)
	}

	s.logger.Info().
		Str("batch_id", batchID.String()).
		Str("product_id", batch.ProductID.String()).
		Int("quantity", batch.Quantity).
		Msg("batch removed")

	return nil
}

// ListBatches retrieves a product's batches with their derived status.
func (s *inventoryService) ListBatches(ctx context.Context, productID uuid.UUID) ([]model.BatchView, error) {
	batches, err := s.batchRepo.ListByProduct(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("failed to list batches: %w", err)
	}

	now := s.now()
	views := make([]model.BatchView, len(batches))
	for i, b := range batches {
		views[i] = model.BatchView{
			ProductBatch: b,
			Status:       b.StatusAt(now),
		}
	}
	return views, nil
}

// GetProduct retrieves a single product.
func (s *inventoryService) GetProduct(ctx context.Context, id uuid.UUID) (*model.Product, error) {
	product, err := s.productRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get product: %w", err)
	}
	return product, nil
}

// ListProducts retrieves products with pagination.
func (s *inventoryService) ListProducts(ctx context.Context, limit, offset int) ([]model.Product, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	products, err := s.productRepo.GetAll(ctx, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	return products, nil
}

// SearchProducts retrieves products matching a name query.
func (s *inventoryService) SearchProducts(ctx context.Context, query string) ([]model.Product, error) {
	products, err := s.productRepo.FindByName(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to search products: %w", err)
	}
	return products, nil
}

// ListLowStock retrieves products at or below their reorder level.
func (s *inventoryService) ListLowStock(ctx context.Context) ([]model.Product, error) {
	products, err := s.productRepo.ListBelowReorderLevel(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list low-stock products: %w", err)
	}
	return products, nil
}
