// Package integration tests the PostgreSQL repositories against a
// disposable container. The tests are skipped in -short mode.
package integration

import (
	"context"
	"testing"
	"time"

	"storefront/internal/model"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

// TestDB is a PostgreSQL test container with a connection pool.
type TestDB struct {
	Container *postgres.PostgresContainer
	Pool      *pgxpool.Pool
	ConnStr   string
}

// SetupTestDB starts a PostgreSQL container, connects a pool and
// creates the schema. Resources are released via t.Cleanup.
func SetupTestDB(t *testing.T) *TestDB {
	t.Helper()

	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	ctx := context.Background()

	container, err := postgres.Run(ctx,
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

	connStr, err := container.ConnectionString(ctx, "sslmode=disable")
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
		if err := container.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	})

	return &TestDB{
		Container: container,
		Pool:      pool,
		ConnStr:   connStr,
	}
}

// createSchema creates the database schema for testing.
func createSchema(t *testing.T, pool *pgxpool.Pool) {
	t.Helper()

	ctx := context.Background()

	schema := `
		CREATE TABLE IF NOT EXISTS users (
			id BIGSERIAL PRIMARY KEY,
			email TEXT NOT NULL UNIQUE,
			password_hash TEXT NOT NULL,
			first_name TEXT NOT NULL,
			last_name TEXT NOT NULL DEFAULT '',
			phone_number TEXT,
			role TEXT NOT NULL,
			status TEXT NOT NULL,
			email_verified BOOLEAN NOT NULL DEFAULT FALSE,
			phone_verified BOOLEAN NOT NULL DEFAULT FALSE,
			otp TEXT,
			otp_expires_at TIMESTAMPTZ,
			refresh_token TEXT,
			last_login_at TIMESTAMPTZ,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);

		CREATE TABLE IF NOT EXISTS addresses (
			id BIGSERIAL PRIMARY KEY,
			user_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			type TEXT NOT NULL,
			full_name TEXT NOT NULL,
			phone_number TEXT NOT NULL,
			line1 TEXT NOT NULL,
			line2 TEXT,
			city TEXT NOT NULL,
			state TEXT NOT NULL,
			country TEXT NOT NULL,
			postal_code TEXT NOT NULL,
			landmark TEXT,
			is_default BOOLEAN NOT NULL DEFAULT FALSE,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);

		CREATE TABLE IF NOT EXISTS categories (
			id BIGSERIAL PRIMARY KEY,
			name TEXT NOT NULL UNIQUE,
			description TEXT,
			slug TEXT NOT NULL UNIQUE,
			image_url TEXT,
			parent_id BIGINT REFERENCES categories(id),
			active BOOLEAN NOT NULL DEFAULT TRUE,
			display_order INT NOT NULL DEFAULT 0,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);

		CREATE TABLE IF NOT EXISTS products (
			id BIGSERIAL PRIMARY KEY,
			name TEXT NOT NULL,
			sku TEXT NOT NULL UNIQUE,
			slug TEXT NOT NULL,
			description TEXT,
			short_description TEXT,
			price DOUBLE PRECISION NOT NULL,
			discount_price DOUBLE PRECISION,
			stock_quantity INT NOT NULL DEFAULT 0,
			status TEXT NOT NULL,
			active BOOLEAN NOT NULL DEFAULT TRUE,
			featured BOOLEAN NOT NULL DEFAULT FALSE,
			images TEXT[],
			brand TEXT,
			weight DOUBLE PRECISION,
			tags TEXT[],
			category_id BIGINT NOT NULL REFERENCES categories(id),
			seller_id BIGINT NOT NULL REFERENCES users(id),
			average_rating DOUBLE PRECISION NOT NULL DEFAULT 0,
			total_reviews INT NOT NULL DEFAULT 0,
			total_sold INT NOT NULL DEFAULT 0,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			CONSTRAINT stock_non_negative CHECK (stock_quantity >= 0)
		);

		CREATE TABLE IF NOT EXISTS carts (
			id BIGSERIAL PRIMARY KEY,
			user_id BIGINT NOT NULL UNIQUE REFERENCES users(id) ON DELETE CASCADE,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);

		CREATE TABLE IF NOT EXISTS cart_items (
			id BIGSERIAL PRIMARY KEY,
			cart_id BIGINT NOT NULL REFERENCES carts(id) ON DELETE CASCADE,
			product_id BIGINT NOT NULL REFERENCES products(id),
			quantity INT NOT NULL,
			price DOUBLE PRECISION NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			UNIQUE (cart_id, product_id)
		);

		CREATE TABLE IF NOT EXISTS orders (
			id BIGSERIAL PRIMARY KEY,
			order_number TEXT NOT NULL UNIQUE,
			user_id BIGINT NOT NULL REFERENCES users(id),
			status TEXT NOT NULL,
			subtotal DOUBLE PRECISION NOT NULL,
			tax DOUBLE PRECISION NOT NULL,
			shipping_cost DOUBLE PRECISION NOT NULL,
			discount DOUBLE PRECISION NOT NULL DEFAULT 0,
			total_amount DOUBLE PRECISION NOT NULL,
			promo_code TEXT,
			shipping_address_id BIGINT NOT NULL REFERENCES addresses(id),
			billing_address_id BIGINT NOT NULL REFERENCES addresses(id),
			tracking_number TEXT,
			shipping_carrier TEXT,
			notes TEXT,
			cancellation_reason TEXT,
			shipped_at TIMESTAMPTZ,
			delivered_at TIMESTAMPTZ,
			cancelled_at TIMESTAMPTZ,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);

		CREATE TABLE IF NOT EXISTS order_items (
			id BIGSERIAL PRIMARY KEY,
			order_id BIGINT NOT NULL REFERENCES orders(id) ON DELETE CASCADE,
			product_id BIGINT NOT NULL REFERENCES products(id),
			product_name TEXT NOT NULL,
			product_sku TEXT NOT NULL,
			product_image TEXT,
			unit_price DOUBLE PRECISION NOT NULL,
			quantity INT NOT NULL,
			total_price DOUBLE PRECISION NOT NULL
		);

		CREATE TABLE IF NOT EXISTS payments (
			id BIGSERIAL PRIMARY KEY,
			order_id BIGINT NOT NULL UNIQUE REFERENCES orders(id),
			transaction_id TEXT NOT NULL UNIQUE,
			method TEXT NOT NULL,
			status TEXT NOT NULL,
			amount DOUBLE PRECISION NOT NULL,
			currency TEXT NOT NULL,
			gateway TEXT,
			gateway_transaction_id TEXT,
			failure_reason TEXT,
			notes TEXT,
			paid_at TIMESTAMPTZ,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);

		CREATE TABLE IF NOT EXISTS reviews (
			id BIGSERIAL PRIMARY KEY,
			product_id BIGINT NOT NULL REFERENCES products(id) ON DELETE CASCADE,
			user_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			rating INT NOT NULL,
			title TEXT,
			comment TEXT,
			verified BOOLEAN NOT NULL DEFAULT FALSE,
			approved BOOLEAN NOT NULL DEFAULT FALSE,
			helpful_count INT NOT NULL DEFAULT 0,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			UNIQUE (product_id, user_id)
		);
	`

	if _, err := pool.Exec(ctx, schema); err != nil {
		t.Fatalf("failed to create schema: %v", err)
	}
}

// SeedUser inserts a user row and returns its id.
func (db *TestDB) SeedUser(t *testing.T, email string, role model.UserRole) int64 {
	t.Helper()

	var id int64
	err := db.Pool.QueryRow(context.Background(), `
		INSERT INTO users (email, password_hash, first_name, role, status)
		VALUES ($1, 'hash', 'Test', $2, 'ACTIVE')
		RETURNING id
	`, email, role).Scan(&id)
	if err != nil {
		t.Fatalf("failed to seed user: %v", err)
	}
	return id
}

// SeedCategory inserts a category row and returns its id.
func (db *TestDB) SeedCategory(t *testing.T, name, slug string) int64 {
	t.Helper()

	var id int64
	err := db.Pool.QueryRow(context.Background(), `
		INSERT INTO categories (name, slug, active)
		VALUES ($1, $2, TRUE)
		RETURNING id
	`, name, slug).Scan(&id)
	if err != nil {
		t.Fatalf("failed to seed category: %v", err)
	}
	return id
}

// SeedProduct inserts a product row and returns its id.
func (db *TestDB) SeedProduct(t *testing.T, sku string, price float64, stock int, categoryID, sellerID int64) int64 {
	t.Helper()

	var id int64
	err := db.Pool.QueryRow(context.Background(), `
		INSERT INTO products (name, sku, slug, price, stock_quantity, status, active, category_id, seller_id)
		VALUES ($1, $2, $3, $4, $5, 'ACTIVE', TRUE, $6, $7)
		RETURNING id
	`, "Product "+sku, sku, "product-"+sku, price, stock, categoryID, sellerID).Scan(&id)
	if err != nil {
		t.Fatalf("failed to seed product: %v", err)
	}
	return id
}

// SeedAddress inserts an address row and returns its id.
func (db *TestDB) SeedAddress(t *testing.T, userID int64, isDefault bool) int64 {
	t.Helper()

	var id int64
	err := db.Pool.QueryRow(context.Background(), `
		INSERT INTO addresses (user_id, type, full_name, phone_number, line1, city, state, country, postal_code, is_default)
		VALUES ($1, 'HOME', 'Test User', '+15550001111', '1 Main St', 'Springfield', 'IL', 'US', '62701', $2)
		RETURNING id
	`, userID, isDefault).Scan(&id)
	if err != nil {
		t.Fatalf("failed to seed address: %v", err)
	}
	return id
}

// SeedOrder inserts a minimal order row and returns its id.
func (db *TestDB) SeedOrder(t *testing.T, orderNumber string, userID, addressID int64, total float64) int64 {
	t.Helper()

	var id int64
	err := db.Pool.QueryRow(context.Background(), `
		INSERT INTO orders (
			order_number, user_id, status, subtotal, tax, shipping_cost,
			total_amount, shipping_address_id, billing_address_id
		)
		VALUES ($1, $2, 'PENDING', $3, 0, 0, $3, $4, $4)
		RETURNING id
	`, orderNumber, userID, total, addressID).Scan(&id)
	if err != nil {
		t.Fatalf("failed to seed order: %v", err)
	}
	return id
}
