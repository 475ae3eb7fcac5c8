package email

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/aurelle-shop/fulfillment/internal/core/domain"
)

// HTTPSender delivers transactional email through the provider's
// send endpoint. One call, one recipient; retry policy lives in the
// notifier, not here.
type HTTPSender struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	logger     zerolog.Logger
}

type HTTPSenderConfig struct {
	BaseURL     string
	APIKey      string
	CallTimeout time.Duration
}

func NewHTTPSender(cfg HTTPSenderConfig, logger zerolog.Logger) *HTTPSender {
	timeout := cfg.CallTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &HTTPSender{
		baseURL: cfg.BaseURL,
		apiKey:  cfg.APIKey,
		httpClient: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				MaxIdleConns:        10,
				MaxIdleConnsPerHost: 10,
			},
		},
		logger: logger.With().Str("component", "email-client").Logger(),
	}
}

type sendRequest struct {
	From     string `json:"from"`
	FromName string `json:"from_name,omitempty"`
	To       string `json:"to"`
	Subject  string `json:"subject"`
	HTML     string `json:"html"`
	Text     string `json:"text,omitempty"`
}

func (s *HTTPSender) Send(ctx context.Context, msg domain.EmailMessage) error {
	body, err := json.Marshal(sendRequest{
		From:     msg.From,
		FromName: msg.FromName,
		To:       msg.To,
		Subject:  msg.Subject,
		HTML:     msg.HTMLBody,
		Text:     msg.TextBody,
	})
	if err != nil {
		return errors.Wrap(err, "marshal send request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/v1/send", bytes.NewReader(body))
	if err != nil {
		return errors.Wrap(err, "build send request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.apiKey)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return errors.Wrapf(domain.ErrProviderUnavailable, "send email: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusMultipleChoices {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 16<<10))
		s.logger.Warn().
			Int("status", resp.StatusCode).
			Str("raw_body", string(raw)).
			Msg("email provider rejected send")
		return errors.Wrapf(domain.ErrProviderUnavailable, "email provider returned status %d", resp.StatusCode)
	}
	return nil
}
