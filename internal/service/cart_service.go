package service

import (
	"context"
	"fmt"

	"storefront/internal/model"
	"storefront/internal/repository"

	"github.com/rs/zerolog"
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

// GetCart loads the user's cart. A cart only exists once something
// has been added to it.
func (s *cartService) GetCart(ctx context.Context, userID int64) (*model.CartResponse, error) {
	cart, err := s.cartRepo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load cart: %w", err)
	}
	if cart == nil {
		return nil, model.NewNotFound(fmt.Sprintf("User %d has no cart", userID))
	}
	return s.buildResponse(ctx, cart)
}

// AddItem adds a product to the cart. An existing line for the same
// product has its quantity merged; the unit price stays as
// snapshotted at first add.
func (s *cartService) AddItem(ctx context.Context, userID int64, req *model.AddToCartRequest) (*model.CartResponse, error) {
	if req.Quantity <= 0 {
		return nil, model.NewValidation(map[string]string{"quantity": "Quantity must be positive"})
	}

	product, err := s.productRepo.GetByID(ctx, req.ProductID)
	if err != nil {
		return nil, fmt.Errorf("failed to add cart item: %w", err)
	}
	if product == nil || !product.Active {
		return nil, model.NewNotFound(fmt.Sprintf("Product %d not found", req.ProductID))
	}

	cart, err := s.ensureCart(ctx, userID)
	if err != nil {
		return nil, err
	}

	existing, err := s.cartRepo.GetItem(ctx, cart.ID, req.ProductID)
	if err != nil {
		return nil, fmt.Errorf("failed to add cart item: %w", err)
	}

	requested := req.Quantity
	if existing != nil {
		requested += existing.Quantity
	}
	if product.StockQuantity < requested {
		return nil, model.NewInsufficientStock(fmt.Sprintf(
			"Product %d has %d units in stock, %d requested", product.ID, product.StockQuantity, requested))
	}

	if existing != nil {
		if err := s.cartRepo.UpdateItemQuantity(ctx, existing.ID, requested); err != nil {
			return nil, fmt.Errorf("failed to add cart item: %w", err)
		}
	} else {
		item := &model.CartItem{
			CartID:    cart.ID,
			ProductID: product.ID,
			Quantity:  req.Quantity,
			Price:     product.EffectivePrice(),
		}
		if err := s.cartRepo.CreateItem(ctx, item); err != nil {
			return nil, fmt.Errorf("failed to add cart item: %w", err)
		}
	}

	s.logger.Info().
		Int64("user_id", userID).
		Int64("product_id", product.ID).
		Int("quantity", requested).
		Msg("cart item added")

	return s.buildResponse(ctx, cart)
}

func (s *cartService) UpdateItemQuantity(ctx context.Context, userID, productID int64, quantity int) (*model.CartResponse, error) {
	if quantity < 0 {
		return nil, model.NewValidation(map[string]string{"quantity": "Quantity cannot be negative"})
	}

	cart, err := s.ensureCart(ctx, userID)
	if err != nil {
		return nil, err
	}

	item, err := s.cartRepo.GetItem(ctx, cart.ID, productID)
	if err != nil {
		return nil, fmt.Errorf("failed to update cart item: %w", err)
	}
	if item == nil {
		return nil, model.NewNotFound(fmt.Sprintf("Product %d is not in the cart", productID))
	}

	// Quantity zero removes the line.
	if quantity == 0 {
		if err := s.cartRepo.DeleteItem(ctx, item.ID); err != nil {
			return nil, fmt.Errorf("failed to update cart item: %w", err)
		}
		return s.buildResponse(ctx, cart)
	}

	product, err := s.productRepo.GetByID(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("failed to update cart item: %w", err)
	}
	if product != nil && product.StockQuantity < quantity {
		return nil, model.NewInsufficientStock(fmt.Sprintf(
			"Product %d has %d units in stock, %d requested", productID, product.StockQuantity, quantity))
	}

	if err := s.cartRepo.UpdateItemQuantity(ctx, item.ID, quantity); err != nil {
		return nil, fmt.Errorf("failed to update cart item: %w", err)
	}

	return s.buildResponse(ctx, cart)
}

func (s *cartService) RemoveItem(ctx context.Context, userID, productID int64) (*model.CartResponse, error) {
	cart, err := s.ensureCart(ctx, userID)
	if err != nil {
		return nil, err
	}

	item, err := s.cartRepo.GetItem(ctx, cart.ID, productID)
	if err != nil {
		return nil, fmt.Errorf("failed to remove cart item: %w", err)
	}
	if item == nil {
		return nil, model.NewNotFound(fmt.Sprintf("Product %d is not in the cart", productID))
	}

	if err := s.cartRepo.DeleteItem(ctx, item.ID); err != nil {
		return nil, fmt.Errorf("failed to remove cart item: %w", err)
	}

	s.logger.Info().
		Int64("user_id", userID).
		Int64("product_id", productID).
		Msg("cart item removed")

	return s.buildResponse(ctx, cart)
}

func (s *cartService) Clear(ctx context.Context, userID int64) error {
	cart, err := s.cartRepo.GetByUserID(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to clear cart: %w", err)
	}
	if cart == nil {
		return nil
	}

	if err := s.cartRepo.DeleteItems(ctx, cart.ID); err != nil {
		return fmt.Errorf("failed to clear cart: %w", err)
	}

	s.logger.Info().Int64("user_id", userID).Msg("cart cleared")

	return nil
}

// ensureCart returns the user's cart, creating it on first use.
func (s *cartService) ensureCart(ctx context.Context, userID int64) (*model.Cart, error) {
	cart, err := s.cartRepo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load cart: %w", err)
	}
	if cart != nil {
		return cart, nil
	}

	cart, err = s.cartRepo.Create(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to create cart: %w", err)
	}
	return cart, nil
}

// buildResponse joins cart lines with live product details and
// computes the totals.
func (s *cartService) buildResponse(ctx context.Context, cart *model.Cart) (*model.CartResponse, error) {
	items, err := s.cartRepo.ListItems(ctx, cart.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load cart items: %w", err)
	}

	resp := &model.CartResponse{
		ID:     cart.ID,
		UserID: cart.UserID,
		Items:  make([]model.CartItemResponse, 0, len(items)),
	}

	for _, item := range items {
		line := model.CartItemResponse{
			ID:         item.ID,
			ProductID:  item.ProductID,
			Price:      item.Price,
			Quantity:   item.Quantity,
			TotalPrice: item.Price * float64(item.Quantity),
		}

		product, err := s.productRepo.GetByID(ctx, item.ProductID)
		if err != nil {
			return nil, fmt.Errorf("failed to load cart items: %w", err)
		}
		if product != nil {
			line.ProductName = product.Name
			line.ProductImage = product.PrimaryImage()
			line.InStock = product.StockQuantity >= item.Quantity
		}

		resp.Items = append(resp.Items, line)
		resp.TotalAmount += line.TotalPrice
		resp.TotalItems += item.Quantity
	}

	return resp, nil
}
