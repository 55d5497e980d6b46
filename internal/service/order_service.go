package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"gemkart/internal/broker"
	"gemkart/internal/cache"
	"gemkart/internal/metrics"
	"gemkart/internal/model"
	"gemkart/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// orderService implements OrderService.
type orderService struct {
	orderRepo   repository.OrderRepository
	cartRepo    repository.CartRepository
	productRepo repository.ProductRepository
	couponRepo  repository.CouponRepository
	addressRepo repository.AddressRepository
	publisher   broker.Publisher
	tracking    cache.TrackingCache
	logger      zerolog.Logger
}

// NewOrderService creates a new order service.
func NewOrderService(
	orderRepo repository.OrderRepository,
	cartRepo repository.CartRepository,
	productRepo repository.ProductRepository,
	couponRepo repository.CouponRepository,
	addressRepo repository.AddressRepository,
	publisher broker.Publisher,
	tracking cache.TrackingCache,
	logger zerolog.Logger,
) OrderService {
	return &orderService{
		orderRepo:   orderRepo,
		cartRepo:    cartRepo,
		productRepo: productRepo,
		couponRepo:  couponRepo,
		addressRepo: addressRepo,
		publisher:   publisher,
		tracking:    tracking,
		logger:      logger.With().Str("service", "order").Logger(),
	}
}

// cartLine pairs a cart item with the catalogue rows backing it, resolved
// once before the order transaction starts.
type cartLine struct {
	item    model.CartItem
	product *model.Product
	variant *model.ProductVariant
}

// Create turns the user's cart into an order atomically.
func (s *orderService) Create(ctx context.Context, userID uuid.UUID, req *model.CreateOrderRequest) (*model.Order, error) {
	if err := s.validateCreateRequest(req); err != nil {
		return nil, err
	}

	cart, err := s.cartRepo.GetActiveByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get active cart: %w", err)
	}
	if cart == nil {
		metrics.OrdersRejectedTotal.WithLabelValues("empty_cart").Inc()
		return nil, model.ErrEmptyCart
	}

	items, err := s.cartRepo.ListItems(ctx, cart.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list cart items: %w", err)
	}
	if len(items) == 0 {
		metrics.OrdersRejectedTotal.WithLabelValues("empty_cart").Inc()
		return nil, model.ErrEmptyCart
	}
	cart.Items = items

	shippingAddressID, billingAddressID, err := s.resolveAddresses(ctx, userID, req)
	if err != nil {
		metrics.OrdersRejectedTotal.WithLabelValues("address_not_found").Inc()
		return nil, err
	}

	lines, err := s.resolveLines(ctx, cart.Items)
	if err != nil {
		return nil, err
	}

	// Recompute so the order records exactly what the items and the
	// applied coupon yield right now.
	cart.CalculateTotals()

	// Coupon row is read before the transaction; usage is recorded
	// inside it.
	var coupon *model.Coupon
	if cart.CouponCode != nil {
		coupon, err = s.couponRepo.GetByCode(ctx, *cart.CouponCode)
		if err != nil {
			return nil, fmt.Errorf("failed to get coupon: %w", err)
		}
	}

	tx, err := s.orderRepo.BeginTx(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to begin transaction")
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	// Ensure transaction is rolled back on error
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil {
				s.logger.Error().Err(rbErr).Msg("failed to rollback transaction")
			}
		}
	}()

	now := time.Now().UTC()
	shippingMethod := "standard"
	if req.ShippingMethod != nil && *req.ShippingMethod != "" {
		shippingMethod = *req.ShippingMethod
	}

	order := &model.Order{
		ID:                uuid.New(),
		OrderNumber:       model.NewOrderNumber(),
		UserID:            userID,
		Status:            model.StatusPlaced,
		Subtotal:          cart.Subtotal,
		TaxAmount:         cart.TaxAmount,
		ShippingAmount:    cart.ShippingAmount,
		DiscountAmount:    cart.DiscountAmount,
		TotalAmount:       cart.TotalAmount,
		CouponCode:        cart.CouponCode,
		ShippingAddressID: &shippingAddressID,
		BillingAddressID:  &billingAddressID,
		ShippingMethod:    &shippingMethod,
		PaymentMethod:     &req.PaymentMethod,
		PaymentStatus:     model.PaymentStatusPending,
		CustomerNotes:     req.CustomerNotes,
		PlacedAt:          now,
		CreatedAt:         now,
		UpdatedAt:         now,
	}

	if err = s.orderRepo.Create(ctx, tx, order); err != nil {
		s.logger.Error().Err(err).Str("order_id", order.ID.String()).Msg("failed to create order")
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	orderItems := buildOrderItems(order.ID, lines, now)
	if err = s.orderRepo.CreateItems(ctx, tx, orderItems); err != nil {
		s.logger.Error().
			Err(err).
			Str("order_id", order.ID.String()).
			Int("item_count", len(orderItems)).
			Msg("failed to create order items")
		return nil, fmt.Errorf("failed to create order items: %w", err)
	}

	for _, line := range lines {
		if !line.product.TrackQuantity {
			continue
		}
		if err = s.productRepo.DecrementStock(ctx, tx, line.item.ProductID, line.item.ProductVariantID, line.item.Quantity); err != nil {
			if err == model.ErrInsufficientStock {
				metrics.StockDecrementConflicts.Inc()
				metrics.OrdersRejectedTotal.WithLabelValues("insufficient_stock").Inc()
				s.logger.Warn().
					Str("order_id", order.ID.String()).
					Str("product_id", line.item.ProductID.String()).
					Msg("stock ran out during order creation")
				return nil, err
			}
			return nil, fmt.Errorf("failed to decrement stock: %w", err)
		}
	}

	if coupon != nil {
		usage := &model.CouponUsage{
			ID:             uuid.New(),
			CouponID:       coupon.ID,
			UserID:         userID,
			OrderID:        order.ID,
			DiscountAmount: cart.DiscountAmount,
			UsedAt:         now,
		}
		if err = s.couponRepo.RecordUsage(ctx, tx, usage); err != nil {
			return nil, fmt.Errorf("failed to record coupon usage: %w", err)
		}
		if err = s.couponRepo.IncrementUses(ctx, tx, coupon.ID); err != nil {
			return nil, fmt.Errorf("failed to increment coupon uses: %w", err)
		}
	}

	// The order already carries the cart's financials; reset the cart
	// for its next use inside the same transaction.
	cart.Items = nil
	cart.CouponCode = nil
	cart.CouponDiscount = decimal.Zero
	cart.CalculateTotals()
	if err = s.cartRepo.ClearTx(ctx, tx, cart); err != nil {
		return nil, fmt.Errorf("failed to clear cart: %w", err)
	}

	payment := &model.Payment{
		ID:            uuid.New(),
		UserID:        userID,
		OrderID:       order.ID,
		Amount:        order.TotalAmount,
		Currency:      "INR",
		PaymentMethod: req.PaymentMethod,
		PaymentStatus: model.PaymentStatusPending,
		InitiatedAt:   now,
		CreatedAt:     now,
	}
	if err = s.orderRepo.CreatePayment(ctx, tx, payment); err != nil {
		return nil, fmt.Errorf("failed to create payment: %w", err)
	}

	if err = tx.Commit(ctx); err != nil {
		s.logger.Error().Err(err).Str("order_id", order.ID.String()).Msg("failed to commit transaction")
		return nil, fmt.Errorf("failed to commit order: %w", err)
	}

	order.Items = orderItems
	metrics.OrdersCreatedTotal.Inc()
	s.logger.Info().
		Str("order_id", order.ID.String()).
		Str("order_number", order.OrderNumber).
		Str("user_id", userID.String()).
		Str("total", order.TotalAmount.StringFixed(2)).
		Int("item_count", len(orderItems)).
		Msg("order created")

	s.publishCreated(ctx, order)

	return order, nil
}

func (s *orderService) validateCreateRequest(req *model.CreateOrderRequest) error {
	if req.ShippingAddressID == uuid.Nil {
		return model.NewDomainError(model.ErrCodeInvalidInput, "Shipping address is required")
	}
	if strings.TrimSpace(req.PaymentMethod) == "" {
		return model.NewDomainError(model.ErrCodeInvalidInput, "Payment method is required")
	}
	return nil
}

// resolveAddresses checks that the shipping address, and the billing
// address when given, belong to the user. Billing defaults to shipping.
func (s *orderService) resolveAddresses(ctx context.Context, userID uuid.UUID, req *model.CreateOrderRequest) (uuid.UUID, uuid.UUID, error) {
	shipping, err := s.addressRepo.GetByIDForUser(ctx, req.ShippingAddressID, userID)
	if err != nil {
		return uuid.Nil, uuid.Nil, fmt.Errorf("failed to get shipping address: %w", err)
	}
	if shipping == nil {
		return uuid.Nil, uuid.Nil, model.ErrAddressNotFound
	}

	billingID := shipping.ID
	if req.BillingAddressID != nil && *req.BillingAddressID != shipping.ID {
		billing, err := s.addressRepo.GetByIDForUser(ctx, *req.BillingAddressID, userID)
		if err != nil {
			return uuid.Nil, uuid.Nil, fmt.Errorf("failed to get billing address: %w", err)
		}
		if billing == nil {
			return uuid.Nil, uuid.Nil, model.ErrAddressNotFound
		}
		billingID = billing.ID
	}

	return shipping.ID, billingID, nil
}

// resolveLines loads the catalogue rows behind every cart item and
// rejects the checkout on the first unavailable one.
func (s *orderService) resolveLines(ctx context.Context, items []model.CartItem) ([]cartLine, error) {
	lines := make([]cartLine, 0, len(items))
	for _, item := range items {
		product, err := s.productRepo.GetByID(ctx, item.ProductID)
		if err != nil {
			return nil, fmt.Errorf("failed to get product: %w", err)
		}
		if product == nil || !product.IsActive {
			metrics.OrdersRejectedTotal.WithLabelValues("product_unavailable").Inc()
			name := item.ProductID.String()
			if product != nil {
				name = product.Name
			}
			return nil, model.NewProductUnavailableError(name)
		}

		var variant *model.ProductVariant
		if item.ProductVariantID != nil {
			variant, err = s.productRepo.GetVariantByID(ctx, *item.ProductVariantID)
			if err != nil {
				return nil, fmt.Errorf("failed to get product variant: %w", err)
			}
			if variant == nil || !variant.IsActive {
				metrics.OrdersRejectedTotal.WithLabelValues("product_unavailable").Inc()
				return nil, model.NewProductUnavailableError(product.Name)
			}
		}

		if !product.CanFulfil(variant, item.Quantity) {
			metrics.OrdersRejectedTotal.WithLabelValues("product_unavailable").Inc()
			return nil, model.NewProductUnavailableError(product.Name)
		}

		lines = append(lines, cartLine{item: item, product: product, variant: variant})
	}
	return lines, nil
}

// buildOrderItems snapshots the cart lines into write-once order items.
func buildOrderItems(orderID uuid.UUID, lines []cartLine, now time.Time) []model.OrderItem {
	items := make([]model.OrderItem, len(lines))
	for i, line := range lines {
		items[i] = model.OrderItem{
			ID:               uuid.New(),
			OrderID:          orderID,
			ProductID:        line.item.ProductID,
			ProductVariantID: line.item.ProductVariantID,
			ProductName:      line.product.Name,
			ProductSKU:       line.product.SKU,
			Quantity:         line.item.Quantity,
			UnitPrice:        line.item.UnitPrice,
			TotalPrice:       line.item.TotalPrice,
			Material:         line.product.Material,
			Weight:           line.product.Weight,
			Purity:           line.product.Purity,
			VariantName:      line.item.SelectedVariantName,
			VariantValue:     line.item.SelectedVariantValue,
			CreatedAt:        now,
		}
		if line.variant != nil {
			items[i].VariantName = &line.variant.Name
			items[i].VariantValue = &line.variant.Value
		}
	}
	return items
}

// GetByID retrieves an order owned by the user, with its items.
func (s *orderService) GetByID(ctx context.Context, userID, orderID uuid.UUID) (*model.Order, error) {
	order, items, err := s.orderRepo.GetByIDForUser(ctx, orderID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get order: %w", err)
	}
	if order == nil {
		return nil, model.ErrOrderNotFound
	}
	order.Items = items
	return order, nil
}

// ListByUser retrieves the user's orders, newest first.
func (s *orderService) ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]model.Order, error) {
	orders, err := s.orderRepo.ListByUser(ctx, userID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	return orders, nil
}

// Cancel cancels an order and restores stock for tracked products.
func (s *orderService) Cancel(ctx context.Context, userID, orderID uuid.UUID) (*model.Order, error) {
	order, items, err := s.orderRepo.GetByIDForUser(ctx, orderID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get order: %w", err)
	}
	if order == nil {
		return nil, model.ErrOrderNotFound
	}
	if !order.CanCancel() {
		return nil, model.ErrInvalidTransition
	}

	// Resolve which items restore stock before opening the transaction.
	restore := make([]model.OrderItem, 0, len(items))
	for _, item := range items {
		product, err := s.productRepo.GetByID(ctx, item.ProductID)
		if err != nil {
			return nil, fmt.Errorf("failed to get product: %w", err)
		}
		if product != nil && product.TrackQuantity {
			restore = append(restore, item)
		}
	}

	tx, err := s.orderRepo.BeginTx(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to begin transaction")
		return nil, fmt.Errorf("failed to cancel order: %w", err)
	}

	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil {
				s.logger.Error().Err(rbErr).Msg("failed to rollback transaction")
			}
		}
	}()

	now := time.Now().UTC()
	order.Status = model.StatusCancelled
	order.CancelledAt = &now
	order.UpdatedAt = now
	if err = s.orderRepo.UpdateStatus(ctx, tx, order); err != nil {
		return nil, fmt.Errorf("failed to update order status: %w", err)
	}

	for _, item := range restore {
		if err = s.productRepo.IncrementStock(ctx, tx, item.ProductID, item.ProductVariantID, item.Quantity); err != nil {
			return nil, fmt.Errorf("failed to restore stock: %w", err)
		}
	}

	if err = tx.Commit(ctx); err != nil {
		s.logger.Error().Err(err).Str("order_id", order.ID.String()).Msg("failed to commit transaction")
		return nil, fmt.Errorf("failed to cancel order: %w", err)
	}

	order.Items = items
	metrics.OrdersCancelledTotal.Inc()
	s.logger.Info().
		Str("order_id", order.ID.String()).
		Str("order_number", order.OrderNumber).
		Int("restored_lines", len(restore)).
		Msg("order cancelled")

	s.invalidateTracking(ctx, order.OrderNumber)
	s.publishEvent(ctx, order.OrderNumber, broker.OrderCancelledEvent{
		BaseEvent:   broker.NewBaseEvent(broker.EventTypeOrderCancelled),
		OrderID:     order.ID,
		OrderNumber: order.OrderNumber,
		UserID:      order.UserID,
	})

	return order, nil
}

// RequestReturn moves a delivered order to returned. Stock is not
// restored; returned goods re-enter inventory through inspection.
func (s *orderService) RequestReturn(ctx context.Context, userID, orderID uuid.UUID, reason string) (*model.Order, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, model.NewDomainError(model.ErrCodeInvalidInput, "Return reason is required")
	}

	order, items, err := s.orderRepo.GetByIDForUser(ctx, orderID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get order: %w", err)
	}
	if order == nil {
		return nil, model.ErrOrderNotFound
	}
	if !order.CanReturn() {
		return nil, model.ErrInvalidTransition
	}

	tx, err := s.orderRepo.BeginTx(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to begin transaction")
		return nil, fmt.Errorf("failed to request return: %w", err)
	}

	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil {
				s.logger.Error().Err(rbErr).Msg("failed to rollback transaction")
			}
		}
	}()

	now := time.Now().UTC()
	note := "Return requested: " + reason
	if order.AdminNotes != nil && *order.AdminNotes != "" {
		note = *order.AdminNotes + "\n" + note
	}
	order.Status = model.StatusReturned
	order.AdminNotes = &note
	order.UpdatedAt = now
	if err = s.orderRepo.UpdateStatus(ctx, tx, order); err != nil {
		return nil, fmt.Errorf("failed to update order status: %w", err)
	}

	if err = tx.Commit(ctx); err != nil {
		s.logger.Error().Err(err).Str("order_id", order.ID.String()).Msg("failed to commit transaction")
		return nil, fmt.Errorf("failed to request return: %w", err)
	}

	order.Items = items
	metrics.OrdersReturnedTotal.Inc()
	s.logger.Info().
		Str("order_id", order.ID.String()).
		Str("order_number", order.OrderNumber).
		Msg("return requested")

	s.invalidateTracking(ctx, order.OrderNumber)
	s.publishEvent(ctx, order.OrderNumber, broker.OrderReturnRequestedEvent{
		BaseEvent:   broker.NewBaseEvent(broker.EventTypeOrderReturnRequested),
		OrderID:     order.ID,
		OrderNumber: order.OrderNumber,
		UserID:      order.UserID,
		Reason:      reason,
	})

	return order, nil
}

// Track returns the public tracking view for an order number, served
// from the cache when possible.
func (s *orderService) Track(ctx context.Context, orderNumber string) (*model.TrackingInfo, error) {
	if info, err := s.tracking.Get(ctx, orderNumber); err == nil && info != nil {
		return info, nil
	}

	order, err := s.orderRepo.GetByNumber(ctx, orderNumber)
	if err != nil {
		return nil, fmt.Errorf("failed to get order: %w", err)
	}
	if order == nil {
		return nil, model.ErrOrderNotFound
	}

	info := &model.TrackingInfo{
		OrderNumber:       order.OrderNumber,
		Status:            string(order.Status),
		StatusDisplay:     order.Status.Display(),
		TrackingNumber:    order.TrackingNumber,
		EstimatedDelivery: order.EstimatedDelivery,
		ShippedAt:         order.ShippedAt,
		DeliveredAt:       order.DeliveredAt,
	}

	if err := s.tracking.Set(ctx, info); err != nil {
		s.logger.Warn().Err(err).Str("order_number", orderNumber).Msg("failed to cache tracking info")
	}

	return info, nil
}

// publishCreated emits the order-created event; failures are logged only.
func (s *orderService) publishCreated(ctx context.Context, order *model.Order) {
	s.publishEvent(ctx, order.OrderNumber, broker.OrderCreatedEvent{
		BaseEvent:   broker.NewBaseEvent(broker.EventTypeOrderCreated),
		OrderID:     order.ID,
		OrderNumber: order.OrderNumber,
		UserID:      order.UserID,
		TotalAmount: order.TotalAmount.StringFixed(2),
		ItemCount:   len(order.Items),
		CouponCode:  order.CouponCode,
	})
}

func (s *orderService) publishEvent(ctx context.Context, key string, event any) {
	if err := s.publisher.Publish(ctx, key, event); err != nil {
		s.logger.Warn().Err(err).Str("key", key).Msg("failed to publish order event")
	}
}

func (s *orderService) invalidateTracking(ctx context.Context, orderNumber string) {
	if err := s.tracking.Invalidate(ctx, orderNumber); err != nil {
		s.logger.Warn().Err(err).Str("order_number", orderNumber).Msg("failed to invalidate tracking cache")
	}
}
