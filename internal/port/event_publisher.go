package port

import (
	"context"

	"github.com/aurelle-shop/fulfillment/internal/core/domain"
)

// EventPublisher emits domain events after a fulfillment transition.
// Publishing is best-effort; failures are logged, never rolled back.
type EventPublisher interface {
	PublishOrderShipped(ctx context.Context, order domain.Order, rec domain.ShipmentRecord) error
	Close() error
}
