package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"testing"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/google/uuid"

	"github.com/aurelle-shop/fulfillment/internal/core/domain"
)

func getMySQLDB(t *testing.T) *sql.DB {
	dsn := os.Getenv("MYSQL_DSN")
	if dsn == "" {
		dsn = "root:root@tcp(localhost:3306)/storefront?parseTime=true"
	}

	db, err := sql.Open("mysql", dsn)
	if err != nil {
		t.Skipf("MySQL not available: %v", err)
	}
	if err := db.Ping(); err != nil {
		t.Skipf("MySQL not available: %v", err)
	}

	ctx := context.Background()
	for _, stmt := range []string{`
		CREATE TABLE IF NOT EXISTS orders (
			id VARCHAR(36) PRIMARY KEY,
			status VARCHAR(20) NOT NULL,
			customer_name VARCHAR(255) NOT NULL,
			customer_email VARCHAR(255) NOT NULL,
			ship_name VARCHAR(255) NOT NULL,
			ship_phone VARCHAR(40) NOT NULL DEFAULT '',
			ship_line1 VARCHAR(255) NOT NULL,
			ship_line2 VARCHAR(255) NULL,
			ship_city VARCHAR(120) NOT NULL,
			ship_state VARCHAR(120) NOT NULL DEFAULT '',
			ship_postal_code VARCHAR(20) NOT NULL,
			ship_country VARCHAR(2) NOT NULL,
			total_amount DECIMAL(10,2) NOT NULL,
			currency VARCHAR(3) NOT NULL,
			tracking_number VARCHAR(64) NULL,
			carrier VARCHAR(64) NULL,
			service VARCHAR(64) NULL,
			shipping_cost DECIMAL(10,2) NULL,
			estimated_delivery VARCHAR(64) NULL,
			shipped_at DATETIME NULL,
			created_at DATETIME NOT NULL,
			updated_at DATETIME NOT NULL,
			KEY idx_status_tracking (status, tracking_number)
		)`, `
		CREATE TABLE IF NOT EXISTS order_items (
			id BIGINT AUTO_INCREMENT PRIMARY KEY,
			order_id VARCHAR(36) NOT NULL,
			product_id VARCHAR(36) NOT NULL,
			variant_id VARCHAR(36) NOT NULL,
			name VARCHAR(255) NOT NULL,
			size VARCHAR(20) NULL,
			quantity INT NOT NULL,
			unit_price DECIMAL(10,2) NOT NULL,
			KEY idx_order (order_id)
		)`} {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			t.Fatalf("schema setup failed: %v", err)
		}
	}
	return db
}

func insertPaidOrder(t *testing.T, db *sql.DB, createdAt time.Time) string {
	t.Helper()
	ctx := context.Background()
	orderID := "test-" + uuid.NewString()

	_, err := db.ExecContext(ctx, `
		INSERT INTO orders (id, status, customer_name, customer_email,
			ship_name, ship_line1, ship_city, ship_postal_code, ship_country,
			total_amount, currency, created_at, updated_at)
		VALUES (?, 'paid', 'Test Customer', 'test@example.com',
			'Test Customer', '12 High Street', 'London', 'N1 9GU', 'GB',
			49.90, 'EUR', ?, ?)`,
		orderID, createdAt, createdAt)
	if err != nil {
		t.Fatalf("insert order failed: %v", err)
	}

	_, err = db.ExecContext(ctx, `
		INSERT INTO order_items (order_id, product_id, variant_id, name, size, quantity, unit_price)
		VALUES (?, ?, ?, 'Linen Shirt', 'M', 2, 24.95)`,
		orderID, uuid.NewString(), uuid.NewString())
	if err != nil {
		t.Fatalf("insert item failed: %v", err)
	}

	t.Cleanup(func() {
		db.ExecContext(ctx, `DELETE FROM order_items WHERE order_id = ?`, orderID)
		db.ExecContext(ctx, `DELETE FROM orders WHERE id = ?`, orderID)
	})
	return orderID
}

func testRecord() domain.ShipmentRecord {
	return domain.ShipmentRecord{
		TrackingNumber:    "TRK-" + uuid.NewString()[:8],
		Carrier:           "EcoPost",
		Service:           "ground",
		Cost:              4.90,
		EstimatedDelivery: "2026-09-04",
		BookedAt:          time.Now().UTC().Truncate(time.Second),
	}
}

func TestListShippableOrders_FIFO(t *testing.T) {
	db := getMySQLDB(t)
	defer db.Close()

	adapter := NewMySQLAdapter(db)
	base := time.Now().Add(-time.Hour).Truncate(time.Second)
	older := insertPaidOrder(t, db, base)
	newer := insertPaidOrder(t, db, base.Add(time.Minute))

	orders, err := adapter.ListShippableOrders(context.Background())
	if err != nil {
		t.Fatalf("ListShippableOrders failed: %v", err)
	}

	var olderIdx, newerIdx = -1, -1
	for i, o := range orders {
		switch o.ID {
		case older:
			olderIdx = i
		case newer:
			newerIdx = i
		}
		if o.ID == older && len(o.Items) != 1 {
			t.Errorf("expected 1 item on order, got %d", len(o.Items))
		}
	}
	if olderIdx == -1 || newerIdx == -1 {
		t.Fatal("seeded orders not returned")
	}
	if olderIdx > newerIdx {
		t.Error("orders not returned oldest first")
	}
}

func TestMarkShipped_TransitionAndConflict(t *testing.T) {
	db := getMySQLDB(t)
	defer db.Close()

	ctx := context.Background()
	adapter := NewMySQLAdapter(db)
	orderID := insertPaidOrder(t, db, time.Now())
	rec := testRecord()

	if err := adapter.MarkShipped(ctx, orderID, rec); err != nil {
		t.Fatalf("MarkShipped failed: %v", err)
	}

	order, err := adapter.GetOrder(ctx, orderID)
	if err != nil {
		t.Fatalf("GetOrder failed: %v", err)
	}
	if order.Status != domain.OrderStatusShipped {
		t.Errorf("expected shipped, got %s", order.Status)
	}
	if order.TrackingNumber != rec.TrackingNumber {
		t.Errorf("expected tracking %s, got %s", rec.TrackingNumber, order.TrackingNumber)
	}
	if order.ShippedAt == nil {
		t.Error("expected shipped_at to be set")
	}

	// Second write must lose to the guard.
	err = adapter.MarkShipped(ctx, orderID, testRecord())
	if !errors.Is(err, domain.ErrShipmentConflict) {
		t.Errorf("expected ErrShipmentConflict, got %v", err)
	}

	// And the first record must be untouched.
	again, _ := adapter.GetOrder(ctx, orderID)
	if again.TrackingNumber != rec.TrackingNumber {
		t.Errorf("tracking number overwritten: %s", again.TrackingNumber)
	}
}

func TestMarkShipped_ConcurrentWriters(t *testing.T) {
	db := getMySQLDB(t)
	defer db.Close()

	ctx := context.Background()
	adapter := NewMySQLAdapter(db)
	orderID := insertPaidOrder(t, db, time.Now())

	results := make(chan error, 2)
	for i := 0; i < 2; i++ {
		go func(i int) {
			rec := testRecord()
			rec.TrackingNumber = fmt.Sprintf("TRK-RACE-%d", i)
			results <- adapter.MarkShipped(ctx, orderID, rec)
		}(i)
	}

	var wins, conflicts int
	for i := 0; i < 2; i++ {
		err := <-results
		switch {
		case err == nil:
			wins++
		case errors.Is(err, domain.ErrShipmentConflict):
			conflicts++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if wins != 1 || conflicts != 1 {
		t.Errorf("expected exactly one winner, got wins=%d conflicts=%d", wins, conflicts)
	}
}

func TestGetOrder_NotFound(t *testing.T) {
	db := getMySQLDB(t)
	defer db.Close()

	adapter := NewMySQLAdapter(db)
	_, err := adapter.GetOrder(context.Background(), "does-not-exist")
	if !errors.Is(err, domain.ErrOrderNotFound) {
		t.Errorf("expected ErrOrderNotFound, got %v", err)
	}
}
