package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/aurelle-shop/fulfillment/internal/core/domain"
)

// Mock EmailSender
type mockSender struct {
	mu        sync.Mutex
	calls     int
	failFirst int // fail this many attempts before succeeding
	failAll   bool
	lastMsg   domain.EmailMessage
}

func (m *mockSender) Send(ctx context.Context, msg domain.EmailMessage) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	m.lastMsg = msg
	if m.failAll || m.calls <= m.failFirst {
		return errors.New("smtp relay timeout")
	}
	return nil
}

func newTestNotifier(t *testing.T, sender *mockSender) *Notifier {
	t.Helper()
	n, err := NewNotifier(sender, NotifierConfig{
		From:        "orders@aurelle.example",
		FromName:    "Aurelle",
		MaxAttempts: 3,
		BaseDelay:   time.Millisecond,
	}, zerolog.Nop())
	if err != nil {
		t.Fatalf("NewNotifier failed: %v", err)
	}
	return n
}

func shippedOrder() domain.Order {
	order := testOrder("eve")
	order.Status = domain.OrderStatusShipped
	order.TrackingNumber = "TRK-12345"
	order.Carrier = "EcoPost"
	order.Service = "ground"
	order.EstimatedDelivery = "2026-09-04"
	return order
}

func TestNotifierSend_RendersShippingTemplate(t *testing.T) {
	sender := &mockSender{}
	n := newTestNotifier(t, sender)

	if err := n.Send(context.Background(), shippedOrder(), TemplateShippingNotification); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if sender.calls != 1 {
		t.Errorf("expected 1 send, got %d", sender.calls)
	}
	msg := sender.lastMsg
	if msg.To != "eve@example.com" {
		t.Errorf("unexpected recipient %s", msg.To)
	}
	if !strings.Contains(msg.Subject, "order-eve") {
		t.Errorf("subject missing order id: %q", msg.Subject)
	}
	if !strings.Contains(msg.HTMLBody, "TRK-12345") {
		t.Error("html body missing tracking number")
	}
	if !strings.Contains(msg.TextBody, "TRK-12345") {
		t.Error("text body missing tracking number")
	}
}

func TestNotifierSend_RetriesThenSucceeds(t *testing.T) {
	sender := &mockSender{failFirst: 2}
	n := newTestNotifier(t, sender)

	if err := n.Send(context.Background(), shippedOrder(), TemplateShippingNotification); err != nil {
		t.Fatalf("expected success on third attempt, got %v", err)
	}
	if sender.calls != 3 {
		t.Errorf("expected 3 attempts, got %d", sender.calls)
	}
}

func TestNotifierSend_ExhaustsRetries(t *testing.T) {
	sender := &mockSender{failAll: true}
	n := newTestNotifier(t, sender)

	err := n.Send(context.Background(), shippedOrder(), TemplateShippingNotification)
	if !errors.Is(err, domain.ErrNotificationFailed) {
		t.Errorf("expected ErrNotificationFailed, got %v", err)
	}
	if sender.calls != 3 {
		t.Errorf("expected exactly 3 attempts, got %d", sender.calls)
	}
}

func TestNotifierSend_AllTemplatesRender(t *testing.T) {
	sender := &mockSender{}
	n := newTestNotifier(t, sender)

	templates := []TemplateName{
		TemplateOrderConfirmation,
		TemplatePaymentConfirmation,
		TemplateShippingNotification,
		TemplateOrderCancellation,
		TemplateRefundConfirmation,
		TemplatePreOrderConfirmation,
	}
	for _, name := range templates {
		if err := n.Send(context.Background(), shippedOrder(), name); err != nil {
			t.Errorf("template %s failed to render or send: %v", name, err)
		}
	}
}

func TestNotifierSend_UnknownTemplate(t *testing.T) {
	sender := &mockSender{}
	n := newTestNotifier(t, sender)

	if err := n.Send(context.Background(), shippedOrder(), TemplateName("weekly_digest")); err == nil {
		t.Error("expected error for unknown template")
	}
	if sender.calls != 0 {
		t.Errorf("expected no send for unknown template, got %d", sender.calls)
	}
}
