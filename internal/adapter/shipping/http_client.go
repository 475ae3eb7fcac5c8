package shipping

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

const maxResponseBytes = 1 << 20

// HTTPClient talks to the carrier aggregator's rate-check, booking and
// tracking endpoints. Responses are parsed defensively: a non-JSON or
// malformed body is logged raw and surfaced as a provider error, never
// a panic.
type HTTPClient struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	logger     zerolog.Logger
}

type HTTPClientConfig struct {
	BaseURL     string
	APIKey      string
	CallTimeout time.Duration
}

func NewHTTPClient(cfg HTTPClientConfig, logger zerolog.Logger) *HTTPClient {
	timeout := cfg.CallTimeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &HTTPClient{
		baseURL: cfg.BaseURL,
		apiKey:  cfg.APIKey,
		httpClient: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				MaxIdleConns:        20,
				MaxIdleConnsPerHost: 20,
			},
		},
		logger: logger.With().Str("component", "shipping-client").Logger(),
	}
}

type addressDTO struct {
	Name       string `json:"name"`
	Phone      string `json:"phone,omitempty"`
	Email      string `json:"email,omitempty"`
	Address1   string `json:"address1"`
	Address2   string `json:"address2,omitempty"`
	City       string `json:"city"`
	State      string `json:"state,omitempty"`
	PostalCode string `json:"postal_code"`
	Country    string `json:"country"`
}

type parcelDTO struct {
	WeightKg      float64 `json:"weight"`
	LengthCm      float64 `json:"length"`
	WidthCm       float64 `json:"width"`
	HeightCm      float64 `json:"height"`
	DeclaredValue float64 `json:"value"`
	Content       string  `json:"content"`
}

type rateCheckRequest struct {
	APIKey string     `json:"api_key"`
	From   addressDTO `json:"from"`
	To     addressDTO `json:"to"`
	Parcel parcelDTO  `json:"parcel"`
}

type rateDTO struct {
	Carrier           string  `json:"carrier"`
	Service           string  `json:"service"`
	Price             float64 `json:"price"`
	Currency          string  `json:"currency"`
	EstimatedDays     int     `json:"estimated_days"`
	EstimatedDelivery string  `json:"estimated_delivery"`
}

type rateCheckResponse struct {
	Success bool      `json:"success"`
	Message string    `json:"message"`
	Rates   []rateDTO `json:"rates"`
}

type bookRequest struct {
	APIKey  string     `json:"api_key"`
	From    addressDTO `json:"from"`
	To      addressDTO `json:"to"`
	Parcel  parcelDTO  `json:"parcel"`
	Carrier string     `json:"carrier"`
	Service string     `json:"service"`
}

type bookResponse struct {
	Success           bool    `json:"success"`
	Message           string  `json:"message"`
	TrackingNumber    string  `json:"tracking_number"`
	Carrier           string  `json:"carrier"`
	Service           string  `json:"service"`
	Cost              float64 `json:"cost"`
	EstimatedDelivery string  `json:"estimated_delivery"`
}

type trackResponse struct {
	Success     bool   `json:"success"`
	Message     string `json:"message"`
	Status      string `json:"status"`
	Description string `json:"description"`
	LastUpdate  string `json:"last_update"`
}

func (c *HTTPClient) RateCheck(ctx context.Context, from, to domain.Address, parcel domain.ParcelSpec) ([]domain.Quote, error) {
	req := rateCheckRequest{
		APIKey: c.apiKey,
		From:   toAddressDTO(from),
		To:     toAddressDTO(to),
		Parcel: toParcelDTO(parcel),
	}

	var resp rateCheckResponse
	if err := c.post(ctx, "/v1/rate-check", req, &resp); err != nil {
		return nil, err
	}
	if !resp.Success {
		return nil, errors.Wrapf(domain.ErrProviderUnavailable, "rate check rejected: %s", resp.Message)
	}

	quotes := make([]domain.Quote, 0, len(resp.Rates))
	for _, r := range resp.Rates {
		quotes = append(quotes, domain.Quote{
			Carrier:           r.Carrier,
			Service:           r.Service,
			Price:             r.Price,
			Currency:          r.Currency,
			EstimatedDays:     r.EstimatedDays,
			EstimatedDelivery: r.EstimatedDelivery,
		})
	}
	return quotes, nil
}

func (c *HTTPClient) Book(ctx context.Context, from, to domain.Address, parcel domain.ParcelSpec, carrier, service string) (*domain.ShipmentRecord, error) {
	req := bookRequest{
		APIKey:  c.apiKey,
		From:    toAddressDTO(from),
		To:      toAddressDTO(to),
		Parcel:  toParcelDTO(parcel),
		Carrier: carrier,
		Service: service,
	}

	var resp bookResponse
	if err := c.post(ctx, "/v1/order-create", req, &resp); err != nil {
		return nil, err
	}
	if !resp.Success {
		return nil, errors.Wrapf(domain.ErrBookingFailed, "provider rejected booking: %s", resp.Message)
	}
	if resp.TrackingNumber == "" {
		return nil, errors.Wrap(domain.ErrBookingFailed, "provider returned no tracking number")
	}

	rec := &domain.ShipmentRecord{
		TrackingNumber:    resp.TrackingNumber,
		Carrier:           resp.Carrier,
		Service:           resp.Service,
		Cost:              resp.Cost,
		EstimatedDelivery: resp.EstimatedDelivery,
		BookedAt:          time.Now().UTC(),
	}
	if rec.Carrier == "" {
		rec.Carrier = carrier
	}
	if rec.Service == "" {
		rec.Service = service
	}
	return rec, nil
}

func (c *HTTPClient) Track(ctx context.Context, trackingNumber string) (*domain.TrackingStatus, error) {
	var resp trackResponse
	payload := map[string]string{"api_key": c.apiKey, "tracking_number": trackingNumber}
	if err := c.post(ctx, "/v1/track", payload, &resp); err != nil {
		return nil, err
	}
	if !resp.Success {
		return nil, errors.Wrapf(domain.ErrProviderUnavailable, "track rejected: %s", resp.Message)
	}

	status := &domain.TrackingStatus{
		TrackingNumber: trackingNumber,
		Status:         resp.Status,
		Description:    resp.Description,
	}
	if ts, err := time.Parse(time.RFC3339, resp.LastUpdate); err == nil {
		status.LastUpdate = ts
	}
	return status, nil
}

// post sends a JSON request and decodes the JSON response into out.
// Transport failures and 5xx map to ErrProviderUnavailable; a body
// that fails to parse is logged raw for diagnostics.
func (c *HTTPClient) post(ctx context.Context, path string, payload, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return errors.Wrap(err, "marshal request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return errors.Wrap(err, "build request")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return errors.Wrapf(domain.ErrProviderUnavailable, "post %s: %v", path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return errors.Wrapf(domain.ErrProviderUnavailable, "read %s response: %v", path, err)
	}

	if resp.StatusCode >= http.StatusInternalServerError {
		c.logger.Error().
			Str("path", path).
			Int("status", resp.StatusCode).
			Str("raw_body", string(raw)).
			Msg("provider server error")
		return errors.Wrapf(domain.ErrProviderUnavailable, "%s returned status %d", path, resp.StatusCode)
	}

	if err := json.Unmarshal(raw, out); err != nil {
		c.logger.Error().
			Str("path", path).
			Int("status", resp.StatusCode).
			Str("raw_body", string(raw)).
			Msg("malformed provider response")
		return errors.Wrapf(domain.ErrProviderUnavailable, "malformed response from %s: %v", path, err)
	}
	return nil
}

func toAddressDTO(a domain.Address) addressDTO {
	return addressDTO{
		Name:       a.Name,
		Phone:      a.Phone,
		Email:      a.Email,
		Address1:   a.Line1,
		Address2:   a.Line2,
		City:       a.City,
		State:      a.State,
		PostalCode: a.PostalCode,
		Country:    a.Country,
	}
}

func toParcelDTO(p domain.ParcelSpec) parcelDTO {
	return parcelDTO{
		WeightKg:      p.WeightKg,
		LengthCm:      p.LengthCm,
		WidthCm:       p.WidthCm,
		HeightCm:      p.HeightCm,
		DeclaredValue: p.DeclaredValue,
		Content:       p.Content,
	}
}
