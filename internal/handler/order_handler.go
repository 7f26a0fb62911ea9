package handler

import (
	"encoding/json"
	"net/http"

	"stockroom/internal/model"
	"stockroom/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// OrderHandler handles order-related HTTP requests.
type OrderHandler struct {
	orders service.OrderService
	status service.StatusService
	logger zerolog.Logger
}

// NewOrderHandler creates a new order handler.
func NewOrderHandler(orders service.OrderService, status service.StatusService, logger zerolog.Logger) *OrderHandler {
	return &OrderHandler{
		orders: orders,
		status: status,
		logger: logger.With().Str("handler", "order").Logger(),
	}
}

// Place handles POST /api/orders requests.
func (h *OrderHandler) Place(w http.ResponseWriter, r *http.Request) {
	var req model.PlaceOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", h.logger)
		return
	}

	order, err := h.orders.PlaceOrder(r.Context(), &req)
	if err != nil {
		writeDomainError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusCreated, order)
}

// GetByID handles GET /api/orders/{id} requests.
func (h *OrderHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	orderID, ok := pathUUID(w, r, "id", h.logger)
	if !ok {
		return
	}

	order, err := h.orders.GetByID(r.Context(), orderID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to retrieve order", h.logger)
		return
	}
	if order == nil {
		writeError(w, http.StatusNotFound, "order not found", h.logger)
		return
	}

	writeJSON(w, http.StatusOK, order)
}

// Cancel handles POST /api/orders/{id}/cancel requests.
func (h *OrderHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	orderID, ok := pathUUID(w, r, "id", h.logger)
	if !ok {
		return
	}

	if err := h.orders.CancelOrder(r.Context(), orderID); err != nil {
		writeDomainError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": string(model.StatusCancelled)})
}

// UpdateStatus handles POST /api/orders/{id}/status requests (admin override).
func (h *OrderHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	orderID, ok := pathUUID(w, r, "id", h.logger)
	if !ok {
		return
	}

	var req model.UpdateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", h.logger)
		return
	}

	result, err := h.orders.UpdateStatus(r.Context(), orderID, req.Status)
	if err != nil {
		writeDomainError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// ConfirmPayment handles POST /api/orders/{id}/payment requests for digital
// payment methods.
func (h *OrderHandler) ConfirmPayment(w http.ResponseWriter, r *http.Request) {
	orderID, ok := pathUUID(w, r, "id", h.logger)
	if !ok {
		return
	}

	var req model.ConfirmPaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", h.logger)
		return
	}
	if !model.IsDigitalPayment(req.Provider) {
		writeError(w, http.StatusBadRequest, "provider is not a digital payment method", h.logger)
		return
	}

	payment, err := h.orders.ConfirmPayment(r.Context(), orderID, req.Provider)
	if err != nil {
		writeDomainError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusCreated, payment)
}

// Advance handles POST /api/advance requests: a manual engine tick.
// Idempotent and safe to call repeatedly.
func (h *OrderHandler) Advance(w http.ResponseWriter, r *http.Request) {
	if err := h.status.AdvanceStatuses(r.Context()); err != nil {
		writeError(w, http.StatusInternalServerError, "status advancement failed", h.logger)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// pathUUID extracts and parses a UUID path parameter.
func pathUUID(w http.ResponseWriter, r *http.Request, param string, logger zerolog.Logger) (uuid.UUID, bool) {
	raw := chi.URLParam(r, param)
	if raw == "" {
		writeError(w, http.StatusBadRequest, param+" is required", logger)
		return uuid.Nil, false
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid "+param+" format", logger)
		return uuid.Nil, false
	}
	return id, true
}
