package storage

import (
	"context"
	"database/sql"

	"github.com/pkg/errors"

	"github.com/aurelle-shop/fulfillment/internal/core/domain"
)

// MySQLAdapter implements port.OrderStore over the order schema owned
// by the checkout subsystem. Reads cover the fulfillment view; the
// only write is MarkShipped.
type MySQLAdapter struct {
	db *sql.DB
}

func NewMySQLAdapter(db *sql.DB) *MySQLAdapter {
	return &MySQLAdapter{db: db}
}

const orderColumns = `
	id, status, customer_name, customer_email,
	ship_name, ship_phone, ship_line1, ship_line2, ship_city,
	ship_state, ship_postal_code, ship_country,
	total_amount, currency,
	tracking_number, carrier, service, shipping_cost,
	estimated_delivery, shipped_at, created_at, updated_at`

func (m *MySQLAdapter) ListShippableOrders(ctx context.Context) ([]domain.Order, error) {
	rows, err := m.db.QueryContext(ctx, `
		SELECT `+orderColumns+`
		FROM orders
		WHERE status = ? AND tracking_number IS NULL
		ORDER BY created_at ASC`,
		domain.OrderStatusPaid,
	)
	if err != nil {
		return nil, errors.Wrap(err, "query shippable orders")
	}
	defer rows.Close()

	var orders []domain.Order
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, *order)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "iterate shippable orders")
	}

	for i := range orders {
		items, err := m.loadItems(ctx, orders[i].ID)
		if err != nil {
			return nil, err
		}
		orders[i].Items = items
	}
	return orders, nil
}

func (m *MySQLAdapter) GetOrder(ctx context.Context, orderID string) (*domain.Order, error) {
	row := m.db.QueryRowContext(ctx, `
		SELECT `+orderColumns+`
		FROM orders WHERE id = ?`, orderID)

	order, err := scanOrder(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrOrderNotFound
		}
		return nil, err
	}

	items, err := m.loadItems(ctx, order.ID)
	if err != nil {
		return nil, err
	}
	order.Items = items
	return order, nil
}

// MarkShipped performs the single paid -> shipped transition. The
// WHERE clause doubles as the idempotency guard: a NULL tracking
// number at write time. RowsAffected == 0 means a concurrent run got
// there first.
func (m *MySQLAdapter) MarkShipped(ctx context.Context, orderID string, rec domain.ShipmentRecord) error {
	result, err := m.db.ExecContext(ctx, `
		UPDATE orders
		SET status = ?, tracking_number = ?, carrier = ?, service = ?,
		    shipping_cost = ?, estimated_delivery = ?, shipped_at = ?, updated_at = NOW()
		WHERE id = ? AND status = ? AND tracking_number IS NULL`,
		domain.OrderStatusShipped, rec.TrackingNumber, rec.Carrier, rec.Service,
		rec.Cost, rec.EstimatedDelivery, rec.BookedAt,
		orderID, domain.OrderStatusPaid,
	)
	if err != nil {
		return errors.Wrap(err, "mark shipped")
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrShipmentConflict
	}
	return nil
}

func (m *MySQLAdapter) loadItems(ctx context.Context, orderID string) ([]domain.OrderItem, error) {
	rows, err := m.db.QueryContext(ctx, `
		SELECT product_id, variant_id, name, size, quantity, unit_price
		FROM order_items WHERE order_id = ?
		ORDER BY id ASC`, orderID)
	if err != nil {
		return nil, errors.Wrapf(err, "query items for order %s", orderID)
	}
	defer rows.Close()

	var items []domain.OrderItem
	for rows.Next() {
		var it domain.OrderItem
		var size sql.NullString
		if err := rows.Scan(&it.ProductID, &it.VariantID, &it.Name, &size, &it.Quantity, &it.UnitPrice); err != nil {
			return nil, errors.Wrap(err, "scan order item")
		}
		it.Size = size.String
		items = append(items, it)
	}
	return items, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanOrder(row rowScanner) (*domain.Order, error) {
	var o domain.Order
	var line2, trackingNumber, carrier, service, estimatedDelivery sql.NullString
	var shippingCost sql.NullFloat64
	var shippedAt sql.NullTime

	err := row.Scan(
		&o.ID, &o.Status, &o.CustomerName, &o.CustomerEmail,
		&o.ShippingAddress.Name, &o.ShippingAddress.Phone,
		&o.ShippingAddress.Line1, &line2, &o.ShippingAddress.City,
		&o.ShippingAddress.State, &o.ShippingAddress.PostalCode, &o.ShippingAddress.Country,
		&o.TotalAmount, &o.Currency,
		&trackingNumber, &carrier, &service, &shippingCost,
		&estimatedDelivery, &shippedAt, &o.CreatedAt, &o.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, errors.Wrap(err, "scan order")
	}

	o.ShippingAddress.Email = o.CustomerEmail
	o.ShippingAddress.Line2 = line2.String
	o.TrackingNumber = trackingNumber.String
	o.Carrier = carrier.String
	o.Service = service.String
	o.ShippingCost = shippingCost.Float64
	o.EstimatedDelivery = estimatedDelivery.String
	if shippedAt.Valid {
		t := shippedAt.Time
		o.ShippedAt = &t
	}
	return &o, nil
}
