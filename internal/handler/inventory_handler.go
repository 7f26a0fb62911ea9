package handler

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"stockroom/internal/service"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// InventoryHandler handles product and batch HTTP requests.
type InventoryHandler struct {
	inventory service.InventoryService
	logger    zerolog.Logger
}

// NewInventoryHandler creates a new inventory handler.
func NewInventoryHandler(inventory service.InventoryService, logger zerolog.Logger) *InventoryHandler {
	return &InventoryHandler{
		inventory: inventory,
		logger:    logger.With().Str("handler", "inventory").Logger(),
	}
}

// AddBatchRequest is the payload for adding a stock batch.
type AddBatchRequest struct {
	Quantity         int             `json:"quantity"`
	PurchasePrice    decimal.Decimal `json:"purchasePrice"`
	ManufacturedDate time.Time       `json:"manufacturedDate"`
	ExpiryDate       time.Time       `json:"expiryDate"`
}

// ListProducts handles GET /api/products requests. A "q" query parameter
// switches to name search.
func (h *InventoryHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	if q := r.URL.Query().Get("q"); q != "" {
		products, err := h.inventory.SearchProducts(r.Context(), q)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "failed to search products", h.logger)
			return
		}
		writeJSON(w, http.StatusOK, products)
		return
	}

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))

	products, err := h.inventory.ListProducts(r.Context(), limit, offset)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list products", h.logger)
		return
	}

	writeJSON(w, http.StatusOK, products)
}

// GetProduct handles GET /api/products/{id} requests.
func (h *InventoryHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	productID, ok := pathUUID(w, r, "id", h.logger)
	if !ok {
		return
	}

	product, err := h.inventory.GetProduct(r.Context(), productID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to retrieve product", h.logger)
		return
	}
	if product == nil {
		writeError(w, http.StatusNotFound, "product not found", h.logger)
		return
	}

	writeJSON(w, http.StatusOK, product)
}

// ListLowStock handles GET /api/products/low-stock requests.
func (h *InventoryHandler) ListLowStock(w http.ResponseWriter, r *http.Request) {
	products, err := h.inventory.ListLowStock(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list low-stock products", h.logger)
		return
	}

	writeJSON(w, http.StatusOK, products)
}

// ListBatches handles GET /api/products/{id}/batches requests.
func (h *InventoryHandler) ListBatches(w http.ResponseWriter, r *http.Request) {
	productID, ok := pathUUID(w, r, "id", h.logger)
	if !ok {
		return
	}

	batches, err := h.inventory.ListBatches(r.Context(), productID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list batches", h.logger)
		return
	}

	writeJSON(w, http.StatusOK, batches)
}

// AddBatch handles POST /api/products/{id}/batches requests.
func (h *InventoryHandler) AddBatch(w http.ResponseWriter, r *http.Request) {
	productID, ok := pathUUID(w, r, "id", h.logger)
	if !ok {
		return
	}

	var req AddBatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", h.logger)
		return
	}

	batch, err := h.inventory.AddBatch(r.Context(), productID, req.Quantity, req.PurchasePrice, req.ManufacturedDate, req.ExpiryDate)
	if err != nil {
		writeDomainError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusCreated, batch)
}

// RemoveBatch handles DELETE /api/batches/{id} requests.
func (h *InventoryHandler) RemoveBatch(w http.ResponseWriter, r *http.Request) {
	batchID, ok := pathUUID(w, r, "id", h.logger)
	if !ok {
		return
	}

	if err := h.inventory.RemoveBatch(r.Context(), batchID); err != nil {
		writeDomainError(w, err, h.logger)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
