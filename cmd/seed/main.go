// Seeds a batch of paid demo orders so the pipeline has something to
// process against a local database.
package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"log"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/google/uuid"
)

const schema = `
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
);
`

const itemsSchema = `
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
);
`

func main() {
	dsn := flag.String("dsn", "root:root@tcp(localhost:3306)/storefront?parseTime=true", "mysql dsn")
	count := flag.Int("count", 5, "number of paid orders to create")
	flag.Parse()

	ctx := context.Background()

	db, err := sql.Open("mysql", *dsn)
	if err != nil {
		log.Fatalf("failed to open mysql: %v", err)
	}
	defer db.Close()
	if err := db.PingContext(ctx); err != nil {
		log.Fatalf("failed to ping mysql: %v", err)
	}

	for _, stmt := range []string{schema, itemsSchema} {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			log.Fatalf("failed to create schema: %v", err)
		}
	}

	now := time.Now()
	for i := 0; i < *count; i++ {
		orderID := uuid.NewString()
		_, err := db.ExecContext(ctx, `
			INSERT INTO orders (id, status, customer_name, customer_email,
				ship_name, ship_phone, ship_line1, ship_city, ship_state,
				ship_postal_code, ship_country, total_amount, currency,
				created_at, updated_at)
			VALUES (?, 'paid', ?, ?, ?, '+33123456789', ?, 'Paris', '', '75003', 'FR', ?, 'EUR', ?, ?)`,
			orderID,
			fmt.Sprintf("Demo Customer %d", i+1),
			fmt.Sprintf("demo%d@example.com", i+1),
			fmt.Sprintf("Demo Customer %d", i+1),
			fmt.Sprintf("%d Rue de Bretagne", 10+i),
			49.90+float64(i)*10,
			now.Add(time.Duration(i)*time.Second),
			now,
		)
		if err != nil {
			log.Fatalf("failed to insert order: %v", err)
		}

		_, err = db.ExecContext(ctx, `
			INSERT INTO order_items (order_id, product_id, variant_id, name, size, quantity, unit_price)
			VALUES (?, ?, ?, 'Linen Shirt', 'M', ?, 49.90)`,
			orderID, uuid.NewString(), uuid.NewString(), 1+i%2,
		)
		if err != nil {
			log.Fatalf("failed to insert order item: %v", err)
		}

		log.Printf("seeded paid order %s", orderID)
	}

	log.Printf("done, %d orders awaiting fulfillment", *count)
}
