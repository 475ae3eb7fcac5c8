package shipping

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/aurelle-shop/fulfillment/internal/core/domain"
)

// StubClient is the deterministic in-process provider used when no
// aggregator credential is configured. It returns a fixed quote set
// and synthesizes tracking numbers, so the whole pipeline can run
// against it in development and tests.
type StubClient struct {
	now func() time.Time
}

func NewStubClient() *StubClient {
	return &StubClient{now: time.Now}
}

func (s *StubClient) RateCheck(ctx context.Context, from, to domain.Address, parcel domain.ParcelSpec) ([]domain.Quote, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	base := 3.50 + parcel.WeightKg*1.20
	return []domain.Quote{
		{Carrier: "EcoPost", Service: "ground", Price: round2(base), Currency: "EUR", EstimatedDays: 5, EstimatedDelivery: s.eta(5)},
		{Carrier: "SwiftShip", Service: "standard", Price: round2(base + 2.10), Currency: "EUR", EstimatedDays: 3, EstimatedDelivery: s.eta(3)},
		{Carrier: "SwiftShip", Service: "express", Price: round2(base + 6.40), Currency: "EUR", EstimatedDays: 1, EstimatedDelivery: s.eta(1)},
	}, nil
}

func (s *StubClient) Book(ctx context.Context, from, to domain.Address, parcel domain.ParcelSpec, carrier, service string) (*domain.ShipmentRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if carrier == "" {
		return nil, errors.Wrap(domain.ErrBookingFailed, "no carrier selected")
	}

	quotes, err := s.RateCheck(ctx, from, to, parcel)
	if err != nil {
		return nil, err
	}
	var matched *domain.Quote
	for i := range quotes {
		if quotes[i].Carrier == carrier && quotes[i].Service == service {
			matched = &quotes[i]
			break
		}
	}
	if matched == nil {
		return nil, errors.Wrapf(domain.ErrBookingFailed, "unknown carrier/service %s/%s", carrier, service)
	}

	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:12])
	return &domain.ShipmentRecord{
		TrackingNumber:    fmt.Sprintf("STUB-%s", suffix),
		Carrier:           matched.Carrier,
		Service:           matched.Service,
		Cost:              matched.Price,
		EstimatedDelivery: matched.EstimatedDelivery,
		BookedAt:          s.now().UTC(),
	}, nil
}

func (s *StubClient) Track(ctx context.Context, trackingNumber string) (*domain.TrackingStatus, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return &domain.TrackingStatus{
		TrackingNumber: trackingNumber,
		Status:         "in_transit",
		Description:    "Parcel is on its way",
		LastUpdate:     s.now().UTC(),
	}, nil
}

func (s *StubClient) eta(days int) string {
	return s.now().AddDate(0, 0, days).Format("2006-01-02")
}

func round2(v float64) float64 {
	return float64(int(v*100+0.5)) / 100
}
