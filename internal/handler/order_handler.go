package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"gemkart/internal/model"
	"gemkart/internal/service"

	"github.com/rs/zerolog"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// OrderHandler handles order-related HTTP requests.
type OrderHandler struct {
	service service.OrderService
	logger  zerolog.Logger
}

// NewOrderHandler creates a new order handler.
func NewOrderHandler(service service.OrderService, logger zerolog.Logger) *OrderHandler {
	return &OrderHandler{
		service: service,
		logger:  logger.With().Str("handler", "order").Logger(),
	}
}

// Create handles POST /api/orders requests.
func (h *OrderHandler) Create(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}

	var req model.CreateOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, model.ErrCodeInvalidJSON, "invalid request body")
		return
	}

	order, err := h.service.Create(r.Context(), uid, &req)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusCreated, order)
}

// GetByID handles GET /api/orders/{orderId} requests.
func (h *OrderHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}
	orderID, ok := pathUUID(w, r, "orderId")
	if !ok {
		return
	}

	order, err := h.service.GetByID(r.Context(), uid, orderID)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, order)
}

// List handles GET /api/orders requests with limit/offset pagination.
func (h *OrderHandler) List(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}

	limit := defaultPageSize
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			writeBadRequest(w, model.ErrCodeInvalidInput, "invalid limit")
			return
		}
		if n > maxPageSize {
			n = maxPageSize
		}
		limit = n
	}

	offset := 0
	if v := r.URL.Query().Get("offset"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			writeBadRequest(w, model.ErrCodeInvalidInput, "invalid offset")
			return
		}
		offset = n
	}

	orders, err := h.service.ListByUser(r.Context(), uid, limit, offset)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, orders)
}

// Cancel handles POST /api/orders/{orderId}/cancel requests.
func (h *OrderHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}
	orderID, ok := pathUUID(w, r, "orderId")
	if !ok {
		return
	}

	order, err := h.service.Cancel(r.Context(), uid, orderID)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, order)
}

// RequestReturn handles POST /api/orders/{orderId}/return requests.
func (h *OrderHandler) RequestReturn(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}
	orderID, ok := pathUUID(w, r, "orderId")
	if !ok {
		return
	}

	var req model.ReturnRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, model.ErrCodeInvalidJSON, "invalid request body")
		return
	}

	order, err := h.service.RequestReturn(r.Context(), uid, orderID, req.Reason)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, order)
}

// Track handles GET /api/orders/track/{orderNumber} requests. The
// endpoint is public; it only exposes the limited tracking view.
func (h *OrderHandler) Track(w http.ResponseWriter, r *http.Request) {
	orderNumber := r.PathValue("orderNumber")
	if orderNumber == "" {
		writeBadRequest(w, model.ErrCodeInvalidInput, "order number is required")
		return
	}

	info, err := h.service.Track(r.Context(), orderNumber)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, info)
}
