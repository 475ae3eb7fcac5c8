package service

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"
	texttemplate "text/template"
	"time"

	"github.com/rs/zerolog"

	"github.com/aurelle-shop/fulfillment/internal/core/domain"
	"github.com/aurelle-shop/fulfillment/internal/port"
)

// TemplateName selects one of the transactional email templates.
type TemplateName string

const (
	TemplateOrderConfirmation    TemplateName = "order_confirmation"
	TemplatePaymentConfirmation  TemplateName = "payment_confirmation"
	TemplateShippingNotification TemplateName = "shipping_notification"
	TemplateOrderCancellation    TemplateName = "order_cancellation"
	TemplateRefundConfirmation   TemplateName = "refund_confirmation"
	TemplatePreOrderConfirmation TemplateName = "pre_order_confirmation"
)

//go:embed templates
var templateFS embed.FS

var subjects = map[TemplateName]string{
	TemplateOrderConfirmation:    "Your order %s is confirmed",
	TemplatePaymentConfirmation:  "Payment received for order %s",
	TemplateShippingNotification: "Your order %s is on its way",
	TemplateOrderCancellation:    "Your order %s has been cancelled",
	TemplateRefundConfirmation:   "Your refund for order %s has been issued",
	TemplatePreOrderConfirmation: "Your pre-order %s is confirmed",
}

type templateData struct {
	CustomerName      string
	OrderID           string
	TotalAmount       string
	Currency          string
	Items             []domain.OrderItem
	TrackingNumber    string
	Carrier           string
	Service           string
	EstimatedDelivery string
	Address           domain.Address
}

type NotifierConfig struct {
	From        string
	FromName    string
	MaxAttempts int
	BaseDelay   time.Duration
}

// Notifier renders a transactional email from an order snapshot and
// sends it with a bounded linear-backoff retry. Notification outcome
// is decoupled from fulfillment state: exhausting retries returns
// domain.ErrNotificationFailed and nothing else changes.
type Notifier struct {
	sender port.EmailSender
	cfg    NotifierConfig
	html   *template.Template
	text   *texttemplate.Template
	logger zerolog.Logger
}

func NewNotifier(sender port.EmailSender, cfg NotifierConfig, logger zerolog.Logger) (*Notifier, error) {
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 3
	}
	if cfg.BaseDelay <= 0 {
		cfg.BaseDelay = 2 * time.Second
	}

	html, err := template.ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse html templates: %w", err)
	}
	text, err := texttemplate.ParseFS(templateFS, "templates/*.txt")
	if err != nil {
		return nil, fmt.Errorf("parse text templates: %w", err)
	}

	return &Notifier{
		sender: sender,
		cfg:    cfg,
		html:   html,
		text:   text,
		logger: logger.With().Str("component", "notifier").Logger(),
	}, nil
}

// Send renders the named template for the order and delivers it,
// retrying up to MaxAttempts with attempt*BaseDelay between tries.
func (n *Notifier) Send(ctx context.Context, order domain.Order, name TemplateName) error {
	subject, ok := subjects[name]
	if !ok {
		return fmt.Errorf("unknown email template %q", name)
	}

	data := templateData{
		CustomerName:      order.CustomerName,
		OrderID:           order.ID,
		TotalAmount:       fmt.Sprintf("%.2f", order.TotalAmount),
		Currency:          order.Currency,
		Items:             order.Items,
		TrackingNumber:    order.TrackingNumber,
		Carrier:           order.Carrier,
		Service:           order.Service,
		EstimatedDelivery: order.EstimatedDelivery,
		Address:           order.ShippingAddress,
	}

	var htmlBuf, textBuf bytes.Buffer
	if err := n.html.ExecuteTemplate(&htmlBuf, string(name)+".html", data); err != nil {
		return fmt.Errorf("render %s: %w", name, err)
	}
	if err := n.text.ExecuteTemplate(&textBuf, string(name)+".txt", data); err != nil {
		return fmt.Errorf("render %s: %w", name, err)
	}

	msg := domain.EmailMessage{
		From:     n.cfg.From,
		FromName: n.cfg.FromName,
		To:       order.CustomerEmail,
		Subject:  fmt.Sprintf(subject, order.ID),
		HTMLBody: htmlBuf.String(),
		TextBody: textBuf.String(),
	}

	var lastErr error
	for attempt := 1; attempt <= n.cfg.MaxAttempts; attempt++ {
		lastErr = n.sender.Send(ctx, msg)
		if lastErr == nil {
			return nil
		}

		n.logger.Warn().
			Err(lastErr).
			Str("order_id", order.ID).
			Str("template", string(name)).
			Int("attempt", attempt).
			Msg("email send failed")

		if attempt == n.cfg.MaxAttempts {
			break
		}
		delay := time.Duration(attempt) * n.cfg.BaseDelay
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return fmt.Errorf("%w: %v", domain.ErrNotificationFailed, ctx.Err())
		}
	}

	return fmt.Errorf("%w: %d attempts, last error: %v", domain.ErrNotificationFailed, n.cfg.MaxAttempts, lastErr)
}
