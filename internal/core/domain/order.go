package domain

import "time"

type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusPaid      OrderStatus = "paid"
	OrderStatusShipped   OrderStatus = "shipped"
	OrderStatusCancelled OrderStatus = "cancelled"
	OrderStatusRefunded  OrderStatus = "refunded"
)

type Order struct {
	ID              string
	Status          OrderStatus
	CustomerName    string
	CustomerEmail   string
	ShippingAddress Address
	TotalAmount     float64
	Currency        string

	// Fulfillment fields, all unset until the order ships.
	// TrackingNumber is write-once: it is set together with the
	// paid -> shipped transition and never cleared.
	TrackingNumber    string
	Carrier           string
	Service           string
	ShippingCost      float64
	EstimatedDelivery string
	ShippedAt         *time.Time

	Items []OrderItem

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Shippable reports whether the order is eligible for the fulfillment
// pipeline: paid and not yet booked with a carrier.
func (o Order) Shippable() bool {
	return o.Status == OrderStatusPaid && o.TrackingNumber == ""
}

// OrderItem is owned by the catalog subsystem; the pipeline only reads it.
type OrderItem struct {
	ProductID string
	VariantID string
	Name      string
	Size      string
	Quantity  int
	UnitPrice float64
}
