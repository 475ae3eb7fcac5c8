package port

import (
	"context"

	"github.com/aurelle-shop/fulfillment/internal/core/domain"
)

// OrderStore is the pipeline's narrow view onto the order schema owned
// by the checkout subsystem. Reads cover orders plus their items; the
// only write is the fulfillment transition.
type OrderStore interface {
	// ListShippableOrders returns orders with status=paid and no
	// tracking number, oldest first, items included.
	ListShippableOrders(ctx context.Context) ([]domain.Order, error)

	// GetOrder loads a single order with its items. Returns
	// domain.ErrOrderNotFound when the id does not exist.
	GetOrder(ctx context.Context, orderID string) (*domain.Order, error)

	// MarkShipped writes the shipment record into the order's
	// fulfillment fields and moves it to status=shipped. The write is
	// conditioned on the tracking number still being NULL; a lost race
	// returns domain.ErrShipmentConflict.
	MarkShipped(ctx context.Context, orderID string, rec domain.ShipmentRecord) error
}
