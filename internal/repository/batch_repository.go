package repository

import (
	"context"
	"fmt"

	"stockroom/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// batchRepository implements the BatchRepository interface using PostgreSQL.
type batchRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewBatchRepository creates a new PostgreSQL-backed batch repository.
func NewBatchRepository(pool *pgxpool.Pool, logger zerolog.Logger) BatchRepository {
	return &batchRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "batch").Logger(),
	}
}

const batchColumns = `id, product_id, quantity, purchase_price, manufactured_date, expiry_date, added_at`

func scanBatch(row pgx.Row, b *model.ProductBatch) error {
	return row.Scan(&b.ID, &b.ProductID, &b.Quantity, &b.PurchasePrice,
		&b.ManufacturedDate, &b.ExpiryDate, &b.AddedAt)
}

// Insert adds a batch row inside the provided transaction.
func (r *batchRepository) Insert(ctx context.Context, tx pgx.Tx, batch *model.ProductBatch) error {
	query := `
		INSERT INTO product_batches (id, product_id, quantity, purchase_price, manufactured_date, expiry_date, added_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := tx.Exec(ctx, query,
		batch.ID, batch.ProductID, batch.Quantity, batch.PurchasePrice,
		batch.ManufacturedDate, batch.ExpiryDate, batch.AddedAt)
	if err != nil {
		r.logger.Error().Err(err).
			Str("batch_id", batch.ID.String()).
			Str("product_id", batch.ProductID.String()).
			Msg("failed to insert batch")
		return fmt.Errorf("failed to insert batch: %w", err)
	}

	r.logger.Debug().
		Str("batch_id", batch.ID.String()).
		Int("quantity", batch.Quantity).
		Msg("batch inserted")

	return nil
}

// Delete removes a batch row inside the provided transaction.
func (r *batchRepository) Delete(ctx context.Context, tx pgx.Tx, id uuid.UUID) error {
	ct, err := tx.Exec(ctx, `DELETE FROM product_batches WHERE id = $1`, id)
	if err != nil {
		r.logger.Error().Err(err).Str("batch_id", id.String()).Msg("failed to delete batch")
		return fmt.Errorf("failed to delete batch: %w", err)
	}
	if ct.RowsAffected() != 1 {
		return model.ErrBatchNotFound
	}

	return nil
}

// GetByID retrieves a single batch by its ID.
func (r *batchRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.ProductBatch, error) {
	query := `SELECT ` + batchColumns + ` FROM product_batches WHERE id = $1`

	var b model.ProductBatch
	err := scanBatch(r.pool.QueryRow(ctx, query, id), &b)
	if err != nil {
		if err == pgx.ErrNoRows {
			r.logger.Debug().Str("batch_id", id.String()).Msg("batch not found")
			return nil, nil
		}
		r.logger.Error().Err(err).Str("batch_id", id.String()).Msg("failed to query batch")
		return nil, fmt.Errorf("failed to query batch: %w", err)
	}

	return &b, nil
}

// ListByProduct retrieves all batches of a product, newest intake first.
func (r *batchRepository) ListByProduct(ctx context.Context, productID uuid.UUID) ([]model.ProductBatch, error) {
	query := `
		SELECT ` + batchColumns + `
		FROM product_batches
		WHERE product_id = $1
		ORDER BY added_at DESC
	`

	rows, err := r.pool.Query(ctx, query, productID)
	if err != nil {
		r.logger.Error().Err(err).
			Str("product_id", productID.String()).
			Msg("failed to query batches")
		return nil, fmt.Errorf("failed to query batches: %w", err)
	}
	defer rows.Close()

	var batches []model.ProductBatch
	for rows.Next() {
		var b model.ProductBatch
		if err := scanBatch(rows, &b); err != nil {
			r.logger.Error().Err(err).Msg("failed to scan batch row")
			return nil, fmt.Errorf("failed to scan batch: %w", err)
		}
		batches = append(batches, b)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error().Err(err).Msg("error iterating batch rows")
		return nil, fmt.Errorf("error iterating batches: %w", err)
	}

	return batches, nil
}
