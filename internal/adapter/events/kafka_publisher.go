package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/segmentio/kafka-go"

	"github.com/aurelle-shop/fulfillment/internal/core/domain"
)

// OrderShippedEvent is the payload published after a successful
// paid -> shipped transition. Keyed by order id so all events for an
// order land in one partition.
type OrderShippedEvent struct {
	EventID           string    `json:"event_id"`
	OrderID           string    `json:"order_id"`
	CustomerEmail     string    `json:"customer_email"`
	TrackingNumber    string    `json:"tracking_number"`
	Carrier           string    `json:"carrier"`
	Service           string    `json:"service"`
	ShippingCost      float64   `json:"shipping_cost"`
	EstimatedDelivery string    `json:"estimated_delivery,omitempty"`
	OccurredAt        time.Time `json:"occurred_at"`
}

type KafkaPublisher struct {
	writer *kafka.Writer
}

func NewKafkaPublisher(brokers []string, topic string) *KafkaPublisher {
	return &KafkaPublisher{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        topic,
			Balancer:     &kafka.Hash{},
			RequiredAcks: kafka.RequireOne,
		},
	}
}

func (p *KafkaPublisher) PublishOrderShipped(ctx context.Context, order domain.Order, rec domain.ShipmentRecord) error {
	event := OrderShippedEvent{
		EventID:           uuid.NewString(),
		OrderID:           order.ID,
		CustomerEmail:     order.CustomerEmail,
		TrackingNumber:    rec.TrackingNumber,
		Carrier:           rec.Carrier,
		Service:           rec.Service,
		ShippingCost:      rec.Cost,
		EstimatedDelivery: rec.EstimatedDelivery,
		OccurredAt:        rec.BookedAt,
	}

	value, err := json.Marshal(event)
	if err != nil {
		return errors.Wrap(err, "marshal order shipped event")
	}

	return p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(order.ID),
		Value: value,
	})
}

func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}
