package service

import (
	"context"
	"fmt"
	"time"

	"gemkart/internal/metrics"
	"gemkart/internal/model"
	"gemkart/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// cartService implements CartService.
type cartService struct {
	cartRepo    repository.CartRepository
	productRepo repository.ProductRepository
	logger      zerolog.Logger
}

// NewCartService creates a new cart service.
func NewCartService(
	cartRepo repository.CartRepository,
	productRepo repository.ProductRepository,
	logger zerolog.Logger,
) CartService {
	return &cartService{
		cartRepo:    cartRepo,
		productRepo: productRepo,
		logger:      logger.With().Str("service", "cart").Logger(),
	}
}

// ensureActiveCart returns the user's active cart, creating an empty one
// when none exists. Items are not loaded.
func (s *cartService) ensureActiveCart(ctx context.Context, userID uuid.UUID) (*model.Cart, error) {
	cart, err := s.cartRepo.GetActiveByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get active cart: %w", err)
	}
	if cart != nil {
		return cart, nil
	}

	cart = model.NewCart(userID)
	if err := s.cartRepo.Create(ctx, cart); err != nil {
		return nil, fmt.Errorf("failed to create cart: %w", err)
	}

	s.logger.Info().
		Str("cart_id", cart.ID.String()).
		Str("user_id", userID.String()).
		Msg("created new cart")

	return cart, nil
}

// loadItems populates cart.Items and recomputes the derived totals in
// memory.
func (s *cartService) loadItems(ctx context.Context, cart *model.Cart) error {
	items, err := s.cartRepo.ListItems(ctx, cart.ID)
	if err != nil {
		return fmt.Errorf("failed to list cart items: %w", err)
	}
	cart.Items = items
	cart.CalculateTotals()
	return nil
}

// saveTotals recomputes the cart's totals from its loaded items and
// persists them together with the coupon fields.
func (s *cartService) saveTotals(ctx context.Context, cart *model.Cart) error {
	cart.CalculateTotals()
	if err := s.cartRepo.SaveTotals(ctx, cart); err != nil {
		return fmt.Errorf("failed to save cart totals: %w", err)
	}
	return nil
}

// GetCart retrieves the user's active cart, creating one if needed.
func (s *cartService) GetCart(ctx context.Context, userID uuid.UUID) (*model.Cart, error) {
	cart, err := s.ensureActiveCart(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := s.loadItems(ctx, cart); err != nil {
		return nil, err
	}
	return cart, nil
}

// resolveVariant loads and checks the variant referenced by a request.
// Returns nil when no variant is selected.
func (s *cartService) resolveVariant(ctx context.Context, product *model.Product, variantID *uuid.UUID) (*model.ProductVariant, error) {
	if variantID == nil {
		return nil, nil
	}
	variant, err := s.productRepo.GetVariantByID(ctx, *variantID)
	if err != nil {
		return nil, fmt.Errorf("failed to get product variant: %w", err)
	}
	if variant == nil || !variant.IsActive || variant.ProductID != product.ID {
		return nil, model.ErrVariantNotFound
	}
	return variant, nil
}

// AddItem adds a product (optionally a variant) to the cart, merging
// with an existing line for the same product and variant.
func (s *cartService) AddItem(ctx context.Context, userID uuid.UUID, req *model.AddItemRequest) (*model.Cart, error) {
	if req.Quantity <= 0 {
		return nil, model.ErrInvalidQuantity
	}

	product, err := s.productRepo.GetByID(ctx, req.ProductID)
	if err != nil {
		return nil, fmt.Errorf("failed to get product: %w", err)
	}
	if product == nil || !product.IsActive {
		return nil, model.ErrProductNotFound
	}

	variant, err := s.resolveVariant(ctx, product, req.ProductVariantID)
	if err != nil {
		return nil, err
	}

	cart, err := s.ensureActiveCart(ctx, userID)
	if err != nil {
		return nil, err
	}

	existing, err := s.cartRepo.FindItem(ctx, cart.ID, product.ID, req.ProductVariantID)
	if err != nil {
		return nil, fmt.Errorf("failed to find cart item: %w", err)
	}

	// Merged lines are re-validated against the summed quantity.
	newQuantity := req.Quantity
	if existing != nil {
		newQuantity += existing.Quantity
	}
	if !product.CanFulfil(variant, newQuantity) {
		s.logger.Warn().
			Str("product_id", product.ID.String()).
			Int("requested", newQuantity).
			Int("available", product.AvailableStock(variant)).
			Msg("insufficient stock for cart item")
		return nil, model.ErrInsufficientStock
	}

	adjustment := decimal.Zero
	if variant != nil {
		adjustment = variant.PriceAdjustment
	}

	if existing != nil {
		existing.Quantity = newQuantity
		existing.UpdatedAt = time.Now().UTC()
		existing.CalculateTotal(adjustment)
		if err := s.cartRepo.UpdateItem(ctx, existing); err != nil {
			return nil, fmt.Errorf("failed to update cart item: %w", err)
		}
	} else {
		now := time.Now().UTC()
		item := &model.CartItem{
			ID:                   uuid.New(),
			CartID:               cart.ID,
			ProductID:            product.ID,
			ProductVariantID:     req.ProductVariantID,
			Quantity:             req.Quantity,
			UnitPrice:            product.Price,
			SelectedVariantName:  req.SelectedVariantName,
			SelectedVariantValue: req.SelectedVariantValue,
			AddedAt:              now,
			UpdatedAt:            now,
		}
		if variant != nil {
			item.SelectedVariantName = &variant.Name
			item.SelectedVariantValue = &variant.Value
		}
		item.CalculateTotal(adjustment)
		if err := s.cartRepo.CreateItem(ctx, item); err != nil {
			return nil, fmt.Errorf("failed to create cart item: %w", err)
		}
	}

	if err := s.loadItems(ctx, cart); err != nil {
		return nil, err
	}
	if err := s.saveTotals(ctx, cart); err != nil {
		return nil, err
	}

	metrics.CartItemsAddedTotal.Inc()
	s.logger.Info().
		Str("cart_id", cart.ID.String()).
		Str("product_id", product.ID.String()).
		Int("quantity", req.Quantity).
		Msg("item added to cart")

	return cart, nil
}

// UpdateItemQuantity changes a cart item's quantity.
func (s *cartService) UpdateItemQuantity(ctx context.Context, userID, itemID uuid.UUID, quantity int) (*model.Cart, error) {
	if quantity <= 0 {
		return nil, model.ErrInvalidQuantity
	}

	item, err := s.cartRepo.GetItemForUser(ctx, itemID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get cart item: %w", err)
	}
	if item == nil {
		return nil, model.ErrCartItemNotFound
	}

	product, err := s.productRepo.GetByID(ctx, item.ProductID)
	if err != nil {
		return nil, fmt.Errorf("failed to get product: %w", err)
	}
	if product == nil {
		return nil, model.ErrProductNotFound
	}

	variant, err := s.resolveVariant(ctx, product, item.ProductVariantID)
	if err != nil {
		return nil, err
	}

	if !product.CanFulfil(variant, quantity) {
		return nil, model.ErrInsufficientStock
	}

	adjustment := decimal.Zero
	if variant != nil {
		adjustment = variant.PriceAdjustment
	}

	item.Quantity = quantity
	item.UpdatedAt = time.Now().UTC()
	item.CalculateTotal(adjustment)
	if err := s.cartRepo.UpdateItem(ctx, item); err != nil {
		return nil, fmt.Errorf("failed to update cart item: %w", err)
	}

	return s.reloadAndSave(ctx, userID)
}

// RemoveItem removes one item from the cart.
func (s *cartService) RemoveItem(ctx context.Context, userID, itemID uuid.UUID) (*model.Cart, error) {
	item, err := s.cartRepo.GetItemForUser(ctx, itemID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get cart item: %w", err)
	}
	if item == nil {
		return nil, model.ErrCartItemNotFound
	}

	if err := s.cartRepo.DeleteItem(ctx, item.ID); err != nil {
		return nil, fmt.Errorf("failed to delete cart item: %w", err)
	}

	return s.reloadAndSave(ctx, userID)
}

// reloadAndSave reloads the cart, recomputes its totals and persists
// them. Used after item mutations.
func (s *cartService) reloadAndSave(ctx context.Context, userID uuid.UUID) (*model.Cart, error) {
	cart, err := s.GetCart(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := s.saveTotals(ctx, cart); err != nil {
		return nil, err
	}
	return cart, nil
}

// Clear removes all items and the applied coupon from the cart.
func (s *cartService) Clear(ctx context.Context, userID uuid.UUID) (*model.Cart, error) {
	cart, err := s.ensureActiveCart(ctx, userID)
	if err != nil {
		return nil, err
	}

	if err := s.cartRepo.DeleteItems(ctx, cart.ID); err != nil {
		return nil, fmt.Errorf("failed to clear cart items: %w", err)
	}

	cart.Items = nil
	cart.CouponCode = nil
	cart.CouponDiscount = decimal.Zero
	if err := s.saveTotals(ctx, cart); err != nil {
		return nil, err
	}

	s.logger.Info().Str("cart_id", cart.ID.String()).Msg("cart cleared")
	return cart, nil
}

// Validate runs the checkout pre-flight over the cart's items: blocking
// errors for unavailable products and out-of-stock lines, warnings for
// quantities that will be backordered.
func (s *cartService) Validate(ctx context.Context, userID uuid.UUID) (*model.CartValidation, error) {
	cart, err := s.GetCart(ctx, userID)
	if err != nil {
		return nil, err
	}

	validation := &model.CartValidation{
		IsValid:  true,
		Errors:   []model.CartItemIssue{},
		Warnings: []model.CartItemIssue{},
	}

	for _, item := range cart.Items {
		product, err := s.productRepo.GetByID(ctx, item.ProductID)
		if err != nil {
			return nil, fmt.Errorf("failed to get product: %w", err)
		}
		if product == nil || !product.IsActive {
			validation.IsValid = false
			validation.Errors = append(validation.Errors, model.CartItemIssue{
				ItemID:    item.ID,
				ProductID: item.ProductID,
				Message:   "Product is no longer available",
			})
			continue
		}

		var variant *model.ProductVariant
		if item.ProductVariantID != nil {
			variant, err = s.productRepo.GetVariantByID(ctx, *item.ProductVariantID)
			if err != nil {
				return nil, fmt.Errorf("failed to get product variant: %w", err)
			}
			if variant == nil || !variant.IsActive {
				validation.IsValid = false
				validation.Errors = append(validation.Errors, model.CartItemIssue{
					ItemID:    item.ID,
					ProductID: item.ProductID,
					Message:   "Selected variant is no longer available",
				})
				continue
			}
		}

		if !product.TrackQuantity {
			continue
		}
		available := product.AvailableStock(variant)
		if item.Quantity <= available {
			continue
		}
		issue := model.CartItemIssue{
			ItemID:    item.ID,
			ProductID: item.ProductID,
			Message:   fmt.Sprintf("Only %d items available in stock", available),
		}
		if product.AllowBackorder {
			issue.Message = fmt.Sprintf("Only %d items available, rest will be backordered", available)
			validation.Warnings = append(validation.Warnings, issue)
		} else {
			validation.IsValid = false
			validation.Errors = append(validation.Errors, issue)
		}
	}

	return validation, nil
}
