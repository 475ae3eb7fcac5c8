package port

import (
	"context"

	"github.com/aurelle-shop/fulfillment/internal/core/domain"
)

// ShippingProvider is the client contract for the carrier aggregator.
// The real/stub choice is made once at construction time in cmd.
type ShippingProvider interface {
	// RateCheck returns the quotes available for a parcel. An empty
	// slice is a valid result, not an error.
	RateCheck(ctx context.Context, from, to domain.Address, parcel domain.ParcelSpec) ([]domain.Quote, error)

	// Book creates a shipment with the chosen carrier and service.
	// Returns domain.ErrBookingFailed when the provider rejects the
	// request or issues no tracking identifier.
	Book(ctx context.Context, from, to domain.Address, parcel domain.ParcelSpec, carrier, service string) (*domain.ShipmentRecord, error)

	// Track fetches the current status snapshot for a booked shipment.
	Track(ctx context.Context, trackingNumber string) (*domain.TrackingStatus, error)
}
