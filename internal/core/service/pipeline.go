package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/aurelle-shop/fulfillment/internal/core/domain"
	"github.com/aurelle-shop/fulfillment/internal/metrics"
	"github.com/aurelle-shop/fulfillment/internal/port"
)

// Report is the aggregate outcome of one batch run.
type Report struct {
	RunID     string         `json:"run_id"`
	Scanned   int            `json:"scanned"`
	Processed int            `json:"processed"`
	Errored   int            `json:"errored"`
	Conflicts int            `json:"conflicts"`
	ByClass   map[string]int `json:"errors_by_class,omitempty"`
	Duration  time.Duration  `json:"-"`
}

// Pipeline drives the fulfillment batch: scan eligible orders, book a
// shipment for each, persist the transition, notify the customer.
// Per-order failures never abort the batch.
type Pipeline struct {
	store    port.OrderStore
	booking  *BookingService
	notifier *Notifier
	events   port.EventPublisher
	workers  int
	metrics  *metrics.PipelineMetrics
	logger   zerolog.Logger
}

func NewPipeline(
	store port.OrderStore,
	booking *BookingService,
	notifier *Notifier,
	events port.EventPublisher,
	workers int,
	m *metrics.PipelineMetrics,
	logger zerolog.Logger,
) *Pipeline {
	if workers <= 0 {
		workers = 3
	}
	return &Pipeline{
		store:    store,
		booking:  booking,
		notifier: notifier,
		events:   events,
		workers:  workers,
		metrics:  m,
		logger:   logger.With().Str("component", "pipeline").Logger(),
	}
}

// ProcessPending runs one batch over every currently eligible order.
// Orders are fetched oldest first and processed by a bounded worker
// pool. A cancelled ctx stops between orders; each transition is
// self-contained, so remaining orders stay eligible for the next run.
func (p *Pipeline) ProcessPending(ctx context.Context) (Report, error) {
	start := time.Now()
	report := Report{
		RunID:   uuid.NewString(),
		ByClass: make(map[string]int),
	}
	logger := p.logger.With().Str("run_id", report.RunID).Logger()

	orders, err := p.store.ListShippableOrders(ctx)
	if err != nil {
		return report, err
	}
	report.Scanned = len(orders)
	logger.Info().Int("eligible", len(orders)).Msg("batch run started")

	var mu sync.Mutex
	var g errgroup.Group
	g.SetLimit(p.workers)

	for _, order := range orders {
		if ctx.Err() != nil {
			break
		}
		order := order
		g.Go(func() error {
			err := p.processOrder(ctx, logger, order)

			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				report.Processed++
			case errors.Is(err, domain.ErrShipmentConflict):
				report.Conflicts++
			default:
				report.Errored++
				report.ByClass[classify(err)]++
			}
			return nil
		})
	}
	g.Wait()

	report.Duration = time.Since(start)
	if p.metrics != nil {
		p.metrics.RunDuration.Observe(report.Duration.Seconds())
	}
	logger.Info().
		Int("scanned", report.Scanned).
		Int("processed", report.Processed).
		Int("errored", report.Errored).
		Int("conflicts", report.Conflicts).
		Dur("duration", report.Duration).
		Msg("batch run finished")
	return report, nil
}

// ProcessOrder runs the fulfillment flow for a single order by id,
// the second operation of the trigger surface.
func (p *Pipeline) ProcessOrder(ctx context.Context, orderID string) error {
	order, err := p.store.GetOrder(ctx, orderID)
	if err != nil {
		return err
	}
	if !order.Shippable() {
		return domain.ErrOrderNotEligible
	}
	return p.processOrder(ctx, p.logger, *order)
}

func (p *Pipeline) processOrder(ctx context.Context, logger zerolog.Logger, order domain.Order) error {
	rec, err := p.booking.BookShipment(ctx, order)
	if err != nil {
		p.countError(err)
		logger.Error().Err(err).Str("order_id", order.ID).Str("class", classify(err)).Msg("booking failed")
		return err
	}

	if err := p.store.MarkShipped(ctx, order.ID, *rec); err != nil {
		if errors.Is(err, domain.ErrShipmentConflict) {
			// A concurrent run already recorded a shipment for this
			// order. The provider booking above is orphaned; surface
			// it so an operator can void the label.
			logger.Warn().
				Str("order_id", order.ID).
				Str("tracking_number", rec.TrackingNumber).
				Msg("fulfillment write lost race, booked shipment discarded")
			if p.metrics != nil {
				p.metrics.OrdersConflict.Inc()
			}
			return err
		}
		p.countError(err)
		logger.Error().Err(err).Str("order_id", order.ID).Msg("fulfillment write failed")
		return err
	}

	if p.metrics != nil {
		p.metrics.OrdersProcessed.Inc()
	}
	logger.Info().
		Str("order_id", order.ID).
		Str("carrier", rec.Carrier).
		Str("tracking_number", rec.TrackingNumber).
		Float64("cost", rec.Cost).
		Msg("order shipped")

	// The transition is durable from here on. Events and email are
	// fire-and-forget: their failures are logged and counted, never
	// propagated.
	shipped := order
	shipped.Status = domain.OrderStatusShipped
	shipped.TrackingNumber = rec.TrackingNumber
	shipped.Carrier = rec.Carrier
	shipped.Service = rec.Service
	shipped.ShippingCost = rec.Cost
	shipped.EstimatedDelivery = rec.EstimatedDelivery

	if p.events != nil {
		if err := p.events.PublishOrderShipped(ctx, shipped, *rec); err != nil {
			logger.Warn().Err(err).Str("order_id", order.ID).Msg("shipment event publish failed")
		}
	}

	if err := p.notifier.Send(ctx, shipped, TemplateShippingNotification); err != nil {
		logger.Error().Err(err).Str("order_id", order.ID).Msg("shipping notification failed, order remains shipped")
		if p.metrics != nil {
			p.metrics.EmailFailures.Inc()
		}
	}

	return nil
}

func (p *Pipeline) countError(err error) {
	if p.metrics != nil {
		p.metrics.OrdersErrored.WithLabelValues(classify(err)).Inc()
	}
}

// classify maps an error onto its taxonomy class for logs and metrics.
func classify(err error) string {
	switch {
	case errors.Is(err, domain.ErrInvalidAddress):
		return "validation"
	case errors.Is(err, domain.ErrNoRatesAvailable):
		return "no_rates"
	case errors.Is(err, domain.ErrBookingFailed):
		return "booking_failed"
	case errors.Is(err, domain.ErrProviderUnavailable):
		return "provider_unavailable"
	case errors.Is(err, domain.ErrShipmentConflict):
		return "conflict"
	case errors.Is(err, domain.ErrNotificationFailed):
		return "notification"
	default:
		return "internal"
	}
}
