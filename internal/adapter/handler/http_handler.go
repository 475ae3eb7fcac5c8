package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/aurelle-shop/fulfillment/internal/core/domain"
	"github.com/aurelle-shop/fulfillment/internal/core/service"
	"github.com/aurelle-shop/fulfillment/internal/port"
)

// HTTPHandler exposes the pipeline's trigger surface: run the whole
// batch, run one order, and a tracking passthrough. Auth and
// scheduling belong to the caller.
type HTTPHandler struct {
	pipeline *service.Pipeline
	provider port.ShippingProvider
	logger   zerolog.Logger
}

func NewHTTPHandler(pipeline *service.Pipeline, provider port.ShippingProvider, logger zerolog.Logger) *HTTPHandler {
	return &HTTPHandler{
		pipeline: pipeline,
		provider: provider,
		logger:   logger.With().Str("component", "http").Logger(),
	}
}

func (h *HTTPHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/fulfillment/run", h.RunBatch)
	mux.HandleFunc("POST /api/fulfillment/orders/{id}", h.RunOrder)
	mux.HandleFunc("GET /api/fulfillment/track/{trackingNumber}", h.Track)
	mux.HandleFunc("GET /health", h.HealthCheck)
}

type runResponse struct {
	service.Report
	DurationMs int64 `json:"duration_ms"`
}

func (h *HTTPHandler) RunBatch(w http.ResponseWriter, r *http.Request) {
	report, err := h.pipeline.ProcessPending(r.Context())
	if err != nil {
		h.logger.Error().Err(err).Msg("batch run failed")
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "batch run failed"})
		return
	}
	writeJSON(w, http.StatusOK, runResponse{Report: report, DurationMs: report.Duration.Milliseconds()})
}

func (h *HTTPHandler) RunOrder(w http.ResponseWriter, r *http.Request) {
	orderID := r.PathValue("id")
	if orderID == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "missing order id"})
		return
	}

	err := h.pipeline.ProcessOrder(r.Context(), orderID)
	if err != nil {
		status := http.StatusBadGateway
		switch {
		case errors.Is(err, domain.ErrOrderNotFound):
			status = http.StatusNotFound
		case errors.Is(err, domain.ErrOrderNotEligible), errors.Is(err, domain.ErrShipmentConflict):
			status = http.StatusConflict
		case errors.Is(err, domain.ErrInvalidAddress):
			status = http.StatusUnprocessableEntity
		}
		writeJSON(w, status, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "shipped", "order_id": orderID})
}

func (h *HTTPHandler) Track(w http.ResponseWriter, r *http.Request) {
	trackingNumber := r.PathValue("trackingNumber")
	if trackingNumber == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "missing tracking number"})
		return
	}

	status, err := h.provider.Track(r.Context(), trackingNumber)
	if err != nil {
		writeJSON(w, http.StatusBadGateway, map[string]string{"error": "tracking lookup failed"})
		return
	}
	writeJSON(w, http.StatusOK, status)
}

func (h *HTTPHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
