package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"gemkart/internal/middleware"
	"gemkart/internal/model"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockCartService is a mock implementation of service.CartService.
type MockCartService struct {
	mock.Mock
}

func (m *MockCartService) GetCart(ctx context.Context, userID uuid.UUID) (*model.Cart, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Cart), args.Error(1)
}

func (m *MockCartService) AddItem(ctx context.Context, userID uuid.UUID, req *model.AddItemRequest) (*model.Cart, error) {
	args := m.Called(ctx, userID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Cart), args.Error(1)
}

func (m *MockCartService) UpdateItemQuantity(ctx context.Context, userID, itemID uuid.UUID, quantity int) (*model.Cart, error) {
	args := m.Called(ctx, userID, itemID, quantity)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Cart), args.Error(1)
}

func (m *MockCartService) RemoveItem(ctx context.Context, userID, itemID uuid.UUID) (*model.Cart, error) {
	args := m.Called(ctx, userID, itemID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Cart), args.Error(1)
}

func (m *MockCartService) Clear(ctx context.Context, userID uuid.UUID) (*model.Cart, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Cart), args.Error(1)
}

func (m *MockCartService) Validate(ctx context.Context, userID uuid.UUID) (*model.CartValidation, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.CartValidation), args.Error(1)
}

// MockCouponService is a mock implementation of service.CouponService.
type MockCouponService struct {
	mock.Mock
}

func (m *MockCouponService) Apply(ctx context.Context, userID uuid.UUID, code string) (*model.Cart, error) {
	args := m.Called(ctx, userID, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Cart), args.Error(1)
}

func (m *MockCouponService) Remove(ctx context.Context, userID uuid.UUID) (*model.Cart, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Cart), args.Error(1)
}

// authedRequest builds a request carrying a user identity.
func authedRequest(t *testing.T, userID uuid.UUID, method, target string, body any) *http.Request {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, target, &buf)
	return req.WithContext(middleware.ContextWithUserID(req.Context(), userID))
}

func TestCartHandler_Get(t *testing.T) {
	logger := zerolog.Nop()
	userID := uuid.New()

	t.Run("returns the cart", func(t *testing.T) {
		cartService := new(MockCartService)
		h := NewCartHandler(cartService, new(MockCouponService), logger)

		cart := model.NewCart(userID)
		cartService.On("GetCart", mock.Anything, userID).Return(cart, nil)

		rec := httptest.NewRecorder()
		h.Get(rec, authedRequest(t, userID, http.MethodGet, "/api/cart", nil))

		assert.Equal(t, http.StatusOK, rec.Code)
		var got model.Cart
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
		assert.Equal(t, cart.ID, got.ID)
	})

	t.Run("requires a user identity", func(t *testing.T) {
		h := NewCartHandler(new(MockCartService), new(MockCouponService), logger)

		rec := httptest.NewRecorder()
		h.Get(rec, httptest.NewRequest(http.MethodGet, "/api/cart", nil))

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func TestCartHandler_AddItem(t *testing.T) {
	logger := zerolog.Nop()
	userID := uuid.New()

	t.Run("created", func(t *testing.T) {
		cartService := new(MockCartService)
		h := NewCartHandler(cartService, new(MockCouponService), logger)

		cart := model.NewCart(userID)
		cartService.On("AddItem", mock.Anything, userID, mock.AnythingOfType("*model.AddItemRequest")).Return(cart, nil)

		body := model.AddItemRequest{ProductID: uuid.New(), Quantity: 2}
		rec := httptest.NewRecorder()
		h.AddItem(rec, authedRequest(t, userID, http.MethodPost, "/api/cart/items", body))

		assert.Equal(t, http.StatusCreated, rec.Code)
	})

	t.Run("malformed body", func(t *testing.T) {
		h := NewCartHandler(new(MockCartService), new(MockCouponService), logger)

		req := httptest.NewRequest(http.MethodPost, "/api/cart/items", bytes.NewBufferString("{nope"))
		req = req.WithContext(middleware.ContextWithUserID(req.Context(), userID))
		rec := httptest.NewRecorder()
		h.AddItem(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("insufficient stock maps to 409", func(t *testing.T) {
		cartService := new(MockCartService)
		h := NewCartHandler(cartService, new(MockCouponService), logger)

		cartService.On("AddItem", mock.Anything, userID, mock.AnythingOfType("*model.AddItemRequest")).
			Return(nil, model.ErrInsufficientStock)

		body := model.AddItemRequest{ProductID: uuid.New(), Quantity: 99}
		rec := httptest.NewRecorder()
		h.AddItem(rec, authedRequest(t, userID, http.MethodPost, "/api/cart/items", body))

		assert.Equal(t, http.StatusConflict, rec.Code)
		var resp model.ErrorResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, model.ErrCodeInsufficientStock, resp.Error)
	})

	t.Run("unknown product maps to 404", func(t *testing.T) {
		cartService := new(MockCartService)
		h := NewCartHandler(cartService, new(MockCouponService), logger)

		cartService.On("AddItem", mock.Anything, userID, mock.AnythingOfType("*model.AddItemRequest")).
			Return(nil, model.ErrProductNotFound)

		body := model.AddItemRequest{ProductID: uuid.New(), Quantity: 1}
		rec := httptest.NewRecorder()
		h.AddItem(rec, authedRequest(t, userID, http.MethodPost, "/api/cart/items", body))

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("unexpected error is an opaque 500", func(t *testing.T) {
		cartService := new(MockCartService)
		h := NewCartHandler(cartService, new(MockCouponService), logger)

		cartService.On("AddItem", mock.Anything, userID, mock.AnythingOfType("*model.AddItemRequest")).
			Return(nil, errors.New("connection refused"))

		body := model.AddItemRequest{ProductID: uuid.New(), Quantity: 1}
		rec := httptest.NewRecorder()
		h.AddItem(rec, authedRequest(t, userID, http.MethodPost, "/api/cart/items", body))

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.NotContains(t, rec.Body.String(), "connection refused")
	})
}

func TestCartHandler_UpdateItem(t *testing.T) {
	logger := zerolog.Nop()
	userID := uuid.New()

	t.Run("updates the quantity", func(t *testing.T) {
		cartService := new(MockCartService)
		h := NewCartHandler(cartService, new(MockCouponService), logger)

		itemID := uuid.New()
		cart := model.NewCart(userID)
		cartService.On("UpdateItemQuantity", mock.Anything, userID, itemID, 3).Return(cart, nil)

		req := authedRequest(t, userID, http.MethodPut, "/api/cart/items/"+itemID.String(), model.UpdateItemRequest{Quantity: 3})
		req.SetPathValue("itemId", itemID.String())
		rec := httptest.NewRecorder()
		h.UpdateItem(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		cartService.AssertExpectations(t)
	})

	t.Run("rejects a malformed item ID", func(t *testing.T) {
		h := NewCartHandler(new(MockCartService), new(MockCouponService), logger)

		req := authedRequest(t, userID, http.MethodPut, "/api/cart/items/not-a-uuid", model.UpdateItemRequest{Quantity: 3})
		req.SetPathValue("itemId", "not-a-uuid")
		rec := httptest.NewRecorder()
		h.UpdateItem(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestCartHandler_ApplyCoupon(t *testing.T) {
	logger := zerolog.Nop()
	userID := uuid.New()

	t.Run("applies the coupon", func(t *testing.T) {
		couponService := new(MockCouponService)
		h := NewCartHandler(new(MockCartService), couponService, logger)

		cart := model.NewCart(userID)
		code := "FESTIVE10"
		cart.CouponCode = &code
		cart.CouponDiscount = decimal.NewFromInt(200)
		couponService.On("Apply", mock.Anything, userID, "FESTIVE10").Return(cart, nil)

		rec := httptest.NewRecorder()
		h.ApplyCoupon(rec, authedRequest(t, userID, http.MethodPost, "/api/cart/coupon", model.ApplyCouponRequest{CouponCode: "FESTIVE10"}))

		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("empty code is rejected", func(t *testing.T) {
		h := NewCartHandler(new(MockCartService), new(MockCouponService), logger)

		rec := httptest.NewRecorder()
		h.ApplyCoupon(rec, authedRequest(t, userID, http.MethodPost, "/api/cart/coupon", model.ApplyCouponRequest{}))

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("unknown coupon maps to 404", func(t *testing.T) {
		couponService := new(MockCouponService)
		h := NewCartHandler(new(MockCartService), couponService, logger)

		couponService.On("Apply", mock.Anything, userID, "NOPE").Return(nil, model.ErrCouponNotFound)

		rec := httptest.NewRecorder()
		h.ApplyCoupon(rec, authedRequest(t, userID, http.MethodPost, "/api/cart/coupon", model.ApplyCouponRequest{CouponCode: "NOPE"}))

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}
