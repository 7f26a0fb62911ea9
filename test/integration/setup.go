package integration

import (
	"context"
	"testing"
	"time"

	"stockroom/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

// TestDB represents a test database instance.
type TestDB struct {
	Container *postgres.PostgresContainer
	Pool      *pgxpool.Pool
	ConnStr   string
}

// SetupTestDB creates a PostgreSQL test container and connection pool.
func SetupTestDB(t *testing.T) *TestDB {
	t.Helper()

	ctx := context.Background()

	postgresContainer, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second)),
	)
	if err != nil {
		t.Fatalf("failed to start postgres container: %v", err)
	}

	connStr, err := postgresContainer.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("failed to get connection string: %v", err)
	}

	poolConfig, err := pgxpool.ParseConfig(connStr)
	if err != nil {
		t.Fatalf("failed to parse connection string: %v", err)
	}
	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		t.Fatalf("failed to create connection pool: %v", err)
	}

	if err := pool.Ping(ctx); err != nil {
		t.Fatalf("failed to ping database: %v", err)
	}

	createSchema(t, pool)

	t.Cleanup(func() {
		pool.Close()
		if err := postgresContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	})

	return &TestDB{
		Container: postgresContainer,
		Pool:      pool,
		ConnStr:   connStr,
	}
}

// createSchema creates the database schema for testing.
func createSchema(t *testing.T, pool *pgxpool.Pool) {
	t.Helper()

	ctx := context.Background()

	schema := `
	CREATE TABLE IF NOT EXISTS products (
		id UUID PRIMARY KEY,
		name TEXT NOT NULL,
		price NUMERIC(12,2) NOT NULL DEFAULT 0,
		quantity INTEGER NOT NULL DEFAULT 0,
		reorder_level INTEGER NOT NULL DEFAULT 0,
		manufactured_date TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		expiry_date TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);

	CREATE TABLE IF NOT EXISTS product_batches (
		id UUID PRIMARY KEY,
		product_id UUID NOT NULL REFERENCES products(id) ON DELETE CASCADE,
		quantity INTEGER NOT NULL,
		purchase_price NUMERIC(12,2) NOT NULL DEFAULT 0,
		manufactured_date TIMESTAMPTZ NOT NULL,
		expiry_date TIMESTAMPTZ NOT NULL,
		added_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);

	CREATE TABLE IF NOT EXISTS users (
		id UUID PRIMARY KEY,
		name TEXT NOT NULL,
		is_admin BOOLEAN NOT NULL DEFAULT FALSE
	);

	CREATE TABLE IF NOT EXISTS locations (
		id UUID PRIMARY KEY,
		name TEXT NOT NULL,
		fee NUMERIC(12,2) NOT NULL DEFAULT 0
	);

	CREATE TABLE IF NOT EXISTS orders (
		id UUID PRIMARY KEY,
		user_id UUID NOT NULL REFERENCES users(id),
		location_id UUID NOT NULL REFERENCES locations(id),
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		last_status_change TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		total_amount NUMERIC(12,2) NOT NULL DEFAULT 0,
		status TEXT NOT NULL,
		payment_method TEXT NOT NULL,
		is_direct_order BOOLEAN NOT NULL DEFAULT FALSE
	);

	CREATE TABLE IF NOT EXISTS order_items (
		id UUID PRIMARY KEY,
		order_id UUID NOT NULL REFERENCES orders(id) ON DELETE CASCADE,
		product_id UUID NOT NULL REFERENCES products(id),
		quantity INTEGER NOT NULL,
		unit_price NUMERIC(12,2) NOT NULL DEFAULT 0,
		final_price NUMERIC(12,2) NOT NULL DEFAULT 0
	);

	CREATE TABLE IF NOT EXISTS payments (
		id UUID PRIMARY KEY,
		order_id UUID NOT NULL REFERENCES orders(id) ON DELETE CASCADE,
		provider TEXT NOT NULL,
		transaction_id TEXT NOT NULL,
		amount NUMERIC(12,2) NOT NULL,
		paid_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);

	CREATE TABLE IF NOT EXISTS notifications (
		id UUID PRIMARY KEY,
		message TEXT NOT NULL,
		type TEXT NOT NULL,
		related_entity_id UUID,
		user_id UUID NOT NULL REFERENCES users(id),
		is_read BOOLEAN NOT NULL DEFAULT FALSE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);

	CREATE INDEX IF NOT EXISTS idx_orders_status ON orders(status);
	CREATE INDEX IF NOT EXISTS idx_order_items_order_id ON order_items(order_id);
	CREATE INDEX IF NOT EXISTS idx_product_batches_product_id ON product_batches(product_id);
	CREATE INDEX IF NOT EXISTS idx_notifications_user_unread ON notifications(user_id, is_read);
	`

	if _, err := pool.Exec(ctx, schema); err != nil {
		t.Fatalf("failed to create schema: %v", err)
	}
}

// CleanupDB removes all data from the test database.
func CleanupDB(t *testing.T, pool *pgxpool.Pool) {
	t.Helper()

	ctx := context.Background()

	tables := []string{
		"payments",
		"order_items",
		"orders",
		"notifications",
		"product_batches",
		"products",
		"locations",
		"users",
	}

	for _, table := range tables {
		if _, err := pool.Exec(ctx, "DELETE FROM "+table); err != nil {
			t.Fatalf("failed to clean table %s: %v", table, err)
		}
	}
}

// SeedProduct inserts a product with the given quantity and returns its ID.
func SeedProduct(t *testing.T, pool *pgxpool.Pool, name string, price decimal.Decimal, quantity, reorderLevel int) uuid.UUID {
	t.Helper()

	id := uuid.New()
	now := time.Now()
	_, err := pool.Exec(context.Background(), `
		INSERT INTO products (id, name, price, quantity, reorder_level, manufactured_date, expiry_date, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		id, name, price, quantity, reorderLevel, now.AddDate(0, -1, 0), now.AddDate(1, 0, 0), now)
	if err != nil {
		t.Fatalf("failed to seed product: %v", err)
	}
	return id
}

// SeedLocation inserts a fulfilment location and returns its ID.
func SeedLocation(t *testing.T, pool *pgxpool.Pool, name string, fee decimal.Decimal) uuid.UUID {
	t.Helper()

	id := uuid.New()
	_, err := pool.Exec(context.Background(),
		`INSERT INTO locations (id, name, fee) VALUES ($1, $2, $3)`, id, name, fee)
	if err != nil {
		t.Fatalf("failed to seed location: %v", err)
	}
	return id
}

// SeedUser inserts a user and returns their ID.
func SeedUser(t *testing.T, pool *pgxpool.Pool, name string, isAdmin bool) uuid.UUID {
	t.Helper()

	id := uuid.New()
	_, err := pool.Exec(context.Background(),
		`INSERT INTO users (id, name, is_admin) VALUES ($1, $2, $3)`, id, name, isAdmin)
	if err != nil {
		t.Fatalf("failed to seed user: %v", err)
	}
	return id
}

// ProductQuantity reads the current on-hand quantity of a product.
func ProductQuantity(t *testing.T, pool *pgxpool.Pool, productID uuid.UUID) int {
	t.Helper()

	var quantity int
	err := pool.QueryRow(context.Background(),
		`SELECT quantity FROM products WHERE id = $1`, productID).Scan(&quantity)
	if err != nil {
		t.Fatalf("failed to read product quantity: %v", err)
	}
	return quantity
}

// OrderStatus reads the current status of an order.
func OrderStatus(t *testing.T, pool *pgxpool.Pool, orderID uuid.UUID) model.OrderStatus {
	t.Helper()

	var status model.OrderStatus
	err := pool.QueryRow(context.Background(),
		`SELECT status FROM orders WHERE id = $1`, orderID).Scan(&status)
	if err != nil {
		t.Fatalf("failed to read order status: %v", err)
	}
	return status
}
