package integration

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"gemkart/internal/model"

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

// createSchema applies the canonical DDL so the tests exercise the same
// schema the service runs against.
func createSchema(t *testing.T, pool *pgxpool.Pool) {
	t.Helper()

	schema, err := os.ReadFile("../../scripts/schema.sql")
	if err != nil {
		t.Fatalf("failed to read schema file: %v", err)
	}

	if _, err := pool.Exec(context.Background(), string(schema)); err != nil {
		t.Fatalf("failed to create schema: %v", err)
	}
}

// SeedProduct inserts a product row and returns its ID.
func SeedProduct(t *testing.T, pool *pgxpool.Pool, name string, price decimal.Decimal, stock int, trackQuantity bool) uuid.UUID {
	t.Helper()

	id := uuid.New()
	_, err := pool.Exec(context.Background(), `
		INSERT INTO products (id, name, sku, price, material, purity, stock_quantity, track_quantity, allow_backorder, is_active)
		VALUES ($1, $2, $3, $4, 'gold', '22K', $5, $6, FALSE, TRUE)`,
		id, name, "SKU-"+id.String()[:8], price, stock, trackQuantity,
	)
	if err != nil {
		t.Fatalf("failed to seed product %s: %v", name, err)
	}
	return id
}

// SeedCoupon inserts an active coupon row and returns its ID.
func SeedCoupon(t *testing.T, pool *pgxpool.Pool, coupon *model.Coupon) uuid.UUID {
	t.Helper()

	if coupon.ID == uuid.Nil {
		coupon.ID = uuid.New()
	}
	_, err := pool.Exec(context.Background(), `
		INSERT INTO coupons (id, code, name, discount_type, discount_value, max_discount, min_order_amount, max_uses, max_uses_per_user, current_uses, is_active, valid_from, valid_until)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
		coupon.ID, coupon.Code, coupon.Name, coupon.DiscountType, coupon.DiscountValue,
		coupon.MaxDiscount, coupon.MinOrderAmount, coupon.MaxUses, coupon.MaxUsesPerUser,
		coupon.CurrentUses, coupon.IsActive, coupon.ValidFrom, coupon.ValidUntil,
	)
	if err != nil {
		t.Fatalf("failed to seed coupon %s: %v", coupon.Code, err)
	}
	return coupon.ID
}

// SeedAddress inserts a shipping address for a user and returns its ID.
func SeedAddress(t *testing.T, pool *pgxpool.Pool, userID uuid.UUID) uuid.UUID {
	t.Helper()

	id := uuid.New()
	_, err := pool.Exec(context.Background(), `
		INSERT INTO user_addresses (id, user_id, name, phone, line1, city, state, postal_code, country, is_default)
		VALUES ($1, $2, 'Test User', '9999999999', '1 MG Road', 'Bengaluru', 'Karnataka', '560001', 'India', TRUE)`,
		id, userID,
	)
	if err != nil {
		t.Fatalf("failed to seed address: %v", err)
	}
	return id
}

// CleanupDB cleans all data from test tables.
func CleanupDB(t *testing.T, pool *pgxpool.Pool) {
	t.Helper()

	ctx := context.Background()

	tables := []string{
		"payments", "order_items", "orders", "coupon_usages", "coupons",
		"cart_items", "carts", "user_addresses", "product_variants", "products",
	}
	for _, table := range tables {
		if _, err := pool.Exec(ctx, fmt.Sprintf("DELETE FROM %s", table)); err != nil {
			t.Logf("failed to clean table %s: %v", table, err)
		}
	}
}
