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

// productRepository implements the ProductRepository interface using PostgreSQL.
type productRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewProductRepository creates a new PostgreSQL-backed product repository.
func NewProductRepository(pool *pgxpool.Pool, logger zerolog.Logger) ProductRepository {
	return &productRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "product").Logger(),
	}
}

const productColumns = `id, name, price, quantity, reorder_level, manufactured_date, expiry_date, created_at`

func scanProduct(row pgx.Row, p *model.Product) error {
	return row.Scan(&p.ID, &p.Name, &p.Price, &p.Quantity, &p.ReorderLevel,
		&p.ManufacturedDate, &p.ExpiryDate, &p.CreatedAt)
}

// BeginTx starts a new database transaction.
func (r *productRepository) BeginTx(ctx context.Context) (pgx.Tx, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to begin transaction")
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	return tx, nil
}

// GetAll retrieves all products with pagination support.
func (r *productRepository) GetAll(ctx context.Context, limit, offset int) ([]model.Product, error) {
	query := `
		SELECT ` + productColumns + `
		FROM products
		ORDER BY name
		LIMIT $1 OFFSET $2
	`

	rows, err := r.pool.Query(ctx, query, limit, offset)
	if err != nil {
		r.logger.Error().Err(err).
			Int("limit", limit).
			Int("offset", offset).
			Msg("failed to query products")
		return nil, fmt.Errorf("failed to query products: %w", err)
	}
	defer rows.Close()

	return collectProducts(rows, r.logger)
}

// GetByID retrieves a single product by its ID.
func (r *productRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE id = $1`

	var p model.Product
	err := scanProduct(r.pool.QueryRow(ctx, query, id), &p)
	if err != nil {
		if err == pgx.ErrNoRows {
			r.logger.Debug().Str("product_id", id.String()).Msg("product not found")
			return nil, nil
		}
		r.logger.Error().Err(err).Str("product_id", id.String()).Msg("failed to query product")
		return nil, fmt.Errorf("failed to query product: %w", err)
	}

	return &p, nil
}

// FindByName retrieves products whose name matches the query, case-insensitively.
func (r *productRepository) FindByName(ctx context.Context, query string) ([]model.Product, error) {
	sql := `
		SELECT ` + productColumns + `
		FROM products
		WHERE name ILIKE '%' || $1 || '%'
		ORDER BY name
	`

	rows, err := r.pool.Query(ctx, sql, query)
	if err != nil {
		r.logger.Error().Err(err).Str("query", query).Msg("failed to search products")
		return nil, fmt.Errorf("failed to search products: %w", err)
	}
	defer rows.Close()

	return collectProducts(rows, r.logger)
}

// GetForUpdate retrieves a product inside tx with a row lock. Two placements
// touching the same product serialise here.
func (r *productRepository) GetForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*model.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE id = $1 FOR UPDATE`

	var p model.Product
	err := scanProduct(tx.QueryRow(ctx, query, id), &p)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		r.logger.Error().Err(err).Str("product_id", id.String()).Msg("failed to lock product")
		return nil, fmt.Errorf("failed to lock product: %w", err)
	}

	return &p, nil
}

// DecrementStock reduces the on-hand quantity inside tx. The guard keeps
// quantity from ever going below zero even if the caller's check was stale.
func (r *productRepository) DecrementStock(ctx context.Context, tx pgx.Tx, id uuid.UUID, qty int) error {
	return r.adjust(ctx, tx, id, -qty)
}

// RestoreStock increases the on-hand quantity inside tx.
func (r *productRepository) RestoreStock(ctx context.Context, tx pgx.Tx, id uuid.UUID, qty int) error {
	return r.adjust(ctx, tx, id, qty)
}

// AdjustQuantity applies a signed quantity delta inside tx.
func (r *productRepository) AdjustQuantity(ctx context.Context, tx pgx.Tx, id uuid.UUID, delta int) error {
	return r.adjust(ctx, tx, id, delta)
}

func (r *productRepository) adjust(ctx context.Context, tx pgx.Tx, id uuid.UUID, delta int) error {
	query := `
		UPDATE products
		SET quantity = quantity + $2
		WHERE id = $1 AND quantity + $2 >= 0
	`

	ct, err := tx.Exec(ctx, query, id, delta)
	if err != nil {
		r.logger.Error().Err(err).
			Str("product_id", id.String()).
			Int("delta", delta).
			Msg("failed to adjust stock")
		return fmt.Errorf("failed to adjust stock: %w", err)
	}
	if ct.RowsAffected() != 1 {
		return model.ErrConcurrencyConflict
	}

	r.logger.Debug().
		Str("product_id", id.String()).
		Int("delta", delta).
		Msg("stock adjusted")

	return nil
}

// ListBelowReorderLevel retrieves products whose quantity is at or below
// their reorder level.
func (r *productRepository) ListBelowReorderLevel(ctx context.Context) ([]model.Product, error) {
	query := `
		SELECT ` + productColumns + `
		FROM products
		WHERE quantity <= reorder_level
		ORDER BY quantity
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to query low-stock products")
		return nil, fmt.Errorf("failed to query low-stock products: %w", err)
	}
	defer rows.Close()

	return collectProducts(rows, r.logger)
}

func collectProducts(rows pgx.Rows, logger zerolog.Logger) ([]model.Product, error) {
	var products []model.Product
	for rows.Next() {
		var p model.Product
		if err := scanProduct(rows, &p); err != nil {
			logger.Error().Err(err).Msg("failed to scan product row")
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, p)
	}

	if err := rows.Err(); err != nil {
		logger.Error().Err(err).Msg("error iterating product rows")
		return nil, fmt.Errorf("error iterating products: %w", err)
	}

	return products, nil
}
