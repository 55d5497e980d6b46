package handler

import (
	"encoding/json"
	"net/http"

	"gemkart/internal/model"
	"gemkart/internal/service"

	"github.com/rs/zerolog"
)

// CartHandler handles cart-related HTTP requests.
type CartHandler struct {
	cartService   service.CartService
	couponService service.CouponService
	logger        zerolog.Logger
}

// NewCartHandler creates a new cart handler.
func NewCartHandler(cartService service.CartService, couponService service.CouponService, logger zerolog.Logger) *CartHandler {
	return &CartHandler{
		cartService:   cartService,
		couponService: couponService,
		logger:        logger.With().Str("handler", "cart").Logger(),
	}
}

// Get handles GET /api/cart requests.
func (h *CartHandler) Get(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}

	cart, err := h.cartService.GetCart(r.Context(), uid)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, cart)
}

// AddItem handles POST /api/cart/items requests.
func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}

	var req model.AddItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, model.ErrCodeInvalidJSON, "invalid request body")
		return
	}

	cart, err := h.cartService.AddItem(r.Context(), uid, &req)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusCreated, cart)
}

// UpdateItem handles PUT /api/cart/items/{itemId} requests.
func (h *CartHandler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}
	itemID, ok := pathUUID(w, r, "itemId")
	if !ok {
		return
	}

	var req model.UpdateItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, model.ErrCodeInvalidJSON, "invalid request body")
		return
	}

	cart, err := h.cartService.UpdateItemQuantity(r.Context(), uid, itemID, req.Quantity)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, cart)
}

// RemoveItem handles DELETE /api/cart/items/{itemId} requests.
func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}
	itemID, ok := pathUUID(w, r, "itemId")
	if !ok {
		return
	}

	cart, err := h.cartService.RemoveItem(r.Context(), uid, itemID)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, cart)
}

// Clear handles DELETE /api/cart requests.
func (h *CartHandler) Clear(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}

	cart, err := h.cartService.Clear(r.Context(), uid)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, cart)
}

// Validate handles POST /api/cart/validate requests.
func (h *CartHandler) Validate(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}

	validation, err := h.cartService.Validate(r.Context(), uid)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, validation)
}

// ApplyCoupon handles POST /api/cart/coupon requests.
func (h *CartHandler) ApplyCoupon(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}

	var req model.ApplyCouponRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, model.ErrCodeInvalidJSON, "invalid request body")
		return
	}
	if req.CouponCode == "" {
		writeBadRequest(w, model.ErrCodeInvalidInput, "coupon code is required")
		return
	}

	cart, err := h.couponService.Apply(r.Context(), uid, req.CouponCode)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, cart)
}

// RemoveCoupon handles DELETE /api/cart/coupon requests.
func (h *CartHandler) RemoveCoupon(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}

	cart, err := h.couponService.Remove(r.Context(), uid)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, cart)
}
