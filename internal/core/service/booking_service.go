package service

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/aurelle-shop/fulfillment/internal/core/domain"
	"github.com/aurelle-shop/fulfillment/internal/port"
)

const throttleKey = "shipping-provider"

// BookingService turns one eligible order into a booked shipment:
// estimate parcel -> fetch quotes -> select by policy -> book.
// It writes nothing; persistence is the pipeline's job.
type BookingService struct {
	provider  port.ShippingProvider
	throttle  port.Throttle
	origin    domain.Address
	parcelCfg ParcelConfig
	policy    RatePolicy
	logger    zerolog.Logger
}

func NewBookingService(
	provider port.ShippingProvider,
	throttle port.Throttle,
	origin domain.Address,
	parcelCfg ParcelConfig,
	policy RatePolicy,
	logger zerolog.Logger,
) *BookingService {
	return &BookingService{
		provider:  provider,
		throttle:  throttle,
		origin:    origin,
		parcelCfg: parcelCfg,
		policy:    policy,
		logger:    logger.With().Str("component", "booking").Logger(),
	}
}

// BookShipment books a shipment for the order. Any failure maps into
// the domain error taxonomy and aborts only this order.
func (s *BookingService) BookShipment(ctx context.Context, order domain.Order) (*domain.ShipmentRecord, error) {
	if err := order.ShippingAddress.Validate(); err != nil {
		return nil, err
	}

	parcel := EstimateParcel(s.parcelCfg, order.Items)

	if err := s.wait(ctx); err != nil {
		return nil, err
	}
	quotes, err := s.provider.RateCheck(ctx, s.origin, order.ShippingAddress, parcel)
	if err != nil {
		return nil, err
	}

	quote, err := SelectQuote(quotes, s.policy)
	if err != nil {
		return nil, err
	}

	s.logger.Debug().
		Str("order_id", order.ID).
		Str("carrier", quote.Carrier).
		Str("service", quote.Service).
		Float64("price", quote.Price).
		Int("quotes", len(quotes)).
		Msg("quote selected")

	if err := s.wait(ctx); err != nil {
		return nil, err
	}
	rec, err := s.provider.Book(ctx, s.origin, order.ShippingAddress, parcel, quote.Carrier, quote.Service)
	if err != nil {
		return nil, err
	}

	return rec, nil
}

func (s *BookingService) wait(ctx context.Context) error {
	if s.throttle == nil {
		return nil
	}
	return s.throttle.Wait(ctx, throttleKey)
}
