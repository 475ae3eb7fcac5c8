package email

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"

	"github.com/aurelle-shop/fulfillment/internal/core/domain"
)

func testMessage() domain.EmailMessage {
	return domain.EmailMessage{
		From:     "orders@aurelle.example",
		FromName: "Aurelle",
		To:       "alice@example.com",
		Subject:  "Your order is on its way",
		HTMLBody: "<p>hello</p>",
		TextBody: "hello",
	}
}

func TestHTTPSender_Send(t *testing.T) {
	var got sendRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/send" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if auth := r.Header.Get("Authorization"); auth != "Bearer test-key" {
			t.Errorf("unexpected auth header %q", auth)
		}
		json.NewDecoder(r.Body).Decode(&got)
		w.WriteHeader(http.StatusAccepted)
	}))
	defer server.Close()

	sender := NewHTTPSender(HTTPSenderConfig{BaseURL: server.URL, APIKey: "test-key"}, zerolog.Nop())
	if err := sender.Send(context.Background(), testMessage()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got.To != "alice@example.com" || got.HTML == "" {
		t.Errorf("unexpected payload: %+v", got)
	}
}

func TestHTTPSender_Rejected(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"invalid recipient"}`, http.StatusBadRequest)
	}))
	defer server.Close()

	sender := NewHTTPSender(HTTPSenderConfig{BaseURL: server.URL, APIKey: "test-key"}, zerolog.Nop())
	err := sender.Send(context.Background(), testMessage())
	if !errors.Is(err, domain.ErrProviderUnavailable) {
		t.Errorf("expected ErrProviderUnavailable, got %v", err)
	}
}
