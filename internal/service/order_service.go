package service

import (
	"context"
	"fmt"
	"time"

	"storefront/internal/model"
	"storefront/internal/notify"
	"storefront/internal/promo"
	"storefront/internal/repository"

	"github.com/rs/zerolog"
)

const (
	taxRate      = 0.10
	shippingCost = 10.00
)

// orderService implements OrderService.
type orderService struct {
	orderRepo       repository.OrderRepository
	productRepo     repository.ProductRepository
	addressRepo     repository.AddressRepository
	cartRepo        repository.CartRepository
	userRepo        repository.UserRepository
	validator       promo.Validator
	discountPercent float64
	dispatcher      *notify.Dispatcher
	logger          zerolog.Logger
}

// NewOrderService creates a new order service. validator may be nil
// when promo codes are disabled.
func NewOrderService(
	orderRepo repository.OrderRepository,
	productRepo repository.ProductRepository,
	addressRepo repository.AddressRepository,
	cartRepo repository.CartRepository,
	userRepo repository.UserRepository,
	validator promo.Validator,
	discountPercent float64,
	dispatcher *notify.Dispatcher,
	logger zerolog.Logger,
) OrderService {
	return &orderService{
		orderRepo:       orderRepo,
		productRepo:     productRepo,
		addressRepo:     addressRepo,
		cartRepo:        cartRepo,
		userRepo:        userRepo,
		validator:       validator,
		discountPercent: discountPercent,
		dispatcher:      dispatcher,
		logger:          logger.With().Str("service", "order").Logger(),
	}
}

// Create prices the requested lines, reserves stock and writes the
// order in one transaction, then clears the user's cart.
func (s *orderService) Create(ctx context.Context, req *model.OrderCreateRequest) (*model.OrderResponse, error) {
	if err := s.validateCreateRequest(req); err != nil {
		return nil, err
	}

	if err := s.checkAddress(ctx, req.UserID, req.ShippingAddressID, "shippingAddressId"); err != nil {
		return nil, err
	}
	if err := s.checkAddress(ctx, req.UserID, req.BillingAddressID, "billingAddressId"); err != nil {
		return nil, err
	}

	discountPercent := 0.0
	if req.PromoCode != nil && *req.PromoCode != "" {
		if s.validator == nil {
			return nil, model.ErrInvalidPromoCode
		}
		if err := s.validator.Validate(ctx, *req.PromoCode); err != nil {
			s.logger.Warn().
				Str("promo_code", *req.PromoCode).
				Err(err).
				Msg("invalid promo code")
			return nil, err
		}
		discountPercent = s.discountPercent
	}

	tx, err := s.orderRepo.BeginTx(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to begin transaction")
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil {
				s.logger.Error().Err(rbErr).Msg("failed to rollback transaction")
			}
		}
	}()

	// Reserve stock line by line. The conditional update keeps stock
	// from ever going negative even with concurrent checkouts.
	subtotal := 0.0
	orderItems := make([]model.OrderItem, 0, len(req.Items))
	for _, line := range req.Items {
		var product *model.Product
		product, err = s.productRepo.GetByID(ctx, line.ProductID)
		if err != nil {
			return nil, fmt.Errorf("failed to create order: %w", err)
		}
		if product == nil || !product.Active {
			err = model.NewNotFound(fmt.Sprintf("Product %d not found", line.ProductID))
			return nil, err
		}

		var reserved bool
		reserved, err = s.productRepo.ReserveStock(ctx, tx, product.ID, line.Quantity)
		if err != nil {
			return nil, fmt.Errorf("failed to create order: %w", err)
		}
		if !reserved {
			s.logger.Warn().
				Int64("product_id", product.ID).
				Int("requested", line.Quantity).
				Msg("insufficient stock")
			err = model.NewInsufficientStock(fmt.Sprintf(
				"Product %d does not have %d units in stock", product.ID, line.Quantity))
			return nil, err
		}

		unitPrice := product.EffectivePrice()
		orderItems = append(orderItems, model.OrderItem{
			ProductID:    product.ID,
			ProductName:  product.Name,
			ProductSKU:   product.SKU,
			ProductImage: product.PrimaryImage(),
			UnitPrice:    unitPrice,
			Quantity:     line.Quantity,
			TotalPrice:   unitPrice * float64(line.Quantity),
		})
		subtotal += unitPrice * float64(line.Quantity)
	}

	discount := subtotal * discountPercent / 100
	tax := subtotal * taxRate

	order := &model.Order{
		OrderNumber:       model.NewOrderNumber(),
		UserID:            req.UserID,
		Status:            model.OrderPending,
		Subtotal:          subtotal,
		Tax:               tax,
		ShippingCost:      shippingCost,
		Discount:          discount,
		TotalAmount:       subtotal + tax + shippingCost - discount,
		PromoCode:         req.PromoCode,
		ShippingAddressID: req.ShippingAddressID,
		BillingAddressID:  req.BillingAddressID,
		Notes:             req.Notes,
	}

	if err = s.orderRepo.CreateOrder(ctx, tx, order); err != nil {
		s.logger.Error().Err(err).Str("order_number", order.OrderNumber).Msg("failed to create order")
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	for i := range orderItems {
		orderItems[i].OrderID = order.ID
	}
	if err = s.orderRepo.CreateOrderItems(ctx, tx, orderItems); err != nil {
		s.logger.Error().
			Err(err).
			Int64("order_id", order.ID).
			Int("item_count", len(orderItems)).
			Msg("failed to create order items")
		return nil, fmt.Errorf("failed to create order items: %w", err)
	}

	if err = tx.Commit(ctx); err != nil {
		s.logger.Error().Err(err).Int64("order_id", order.ID).Msg("failed to commit transaction")
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	// The cart is cleared outside the order transaction; a leftover
	// cart is harmless while a lost order is not.
	if clearErr := s.clearCart(ctx, req.UserID); clearErr != nil {
		s.logger.Warn().Err(clearErr).Int64("user_id", req.UserID).Msg("failed to clear cart after checkout")
	}

	s.logger.Info().
		Int64("order_id", order.ID).
		Str("order_number", order.OrderNumber).
		Int("item_count", len(orderItems)).
		Float64("total_amount", order.TotalAmount).
		Msg("order created")

	s.notifyUser(ctx, order.UserID, "Order confirmation",
		fmt.Sprintf("Your order %s has been placed. Total: %.2f\n", order.OrderNumber, order.TotalAmount))

	return &model.OrderResponse{Order: *order, Items: orderItems}, nil
}

func (s *orderService) GetByID(ctx context.Context, actorID int64, actorRole model.UserRole, id int64) (*model.OrderResponse, error) {
	order, items, err := s.orderRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get order: %w", err)
	}
	return s.guardOrder(actorID, actorRole, order, items, fmt.Sprintf("Order %d not found", id))
}

func (s *orderService) GetByOrderNumber(ctx context.Context, actorID int64, actorRole model.UserRole, orderNumber string) (*model.OrderResponse, error) {
	order, items, err := s.orderRepo.GetByOrderNumber(ctx, orderNumber)
	if err != nil {
		return nil, fmt.Errorf("failed to get order: %w", err)
	}
	return s.guardOrder(actorID, actorRole, order, items, fmt.Sprintf("Order %s not found", orderNumber))
}

func (s *orderService) ListByUser(ctx context.Context, userID int64, limit, offset int) ([]model.Order, error) {
	orders, err := s.orderRepo.ListByUser(ctx, userID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	return orders, nil
}

func (s *orderService) List(ctx context.Context, status model.OrderStatus, limit, offset int) ([]model.Order, error) {
	if status != "" {
		if !model.ValidOrderStatus(status) {
			return nil, model.NewValidation(map[string]string{"status": fmt.Sprintf("Unknown order status %q", status)})
		}
		orders, err := s.orderRepo.ListByStatus(ctx, status, limit, offset)
		if err != nil {
			return nil, fmt.Errorf("failed to list orders: %w", err)
		}
		return orders, nil
	}

	orders, err := s.orderRepo.List(ctx, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	return orders, nil
}

// UpdateStatus moves the order to the given status. Entering
// CANCELLED goes through the same release-stock transaction as an
// explicit cancellation.
func (s *orderService) UpdateStatus(ctx context.Context, id int64, status model.OrderStatus, trackingNumber, carrier *string) (*model.Order, error) {
	if !model.ValidOrderStatus(status) {
		return nil, model.NewValidation(map[string]string{"status": fmt.Sprintf("Unknown order status %q", status)})
	}

	order, items, err := s.orderRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to update order status: %w", err)
	}
	if order == nil {
		return nil, model.NewNotFound(fmt.Sprintf("Order %d not found", id))
	}
	if order.Status == model.OrderCancelled || order.Status == model.OrderRefunded {
		return nil, model.NewIllegalState(fmt.Sprintf("Order %d is %s and cannot change status", id, order.Status))
	}

	if status == model.OrderCancelled {
		if err := s.cancelOrder(ctx, order, items, nil); err != nil {
			return nil, err
		}

		s.logger.Info().
			Int64("order_id", id).
			Str("status", string(status)).
			Msg("order status updated")

		return order, nil
	}

	now := time.Now()
	switch status {
	case model.OrderShipped:
		order.ShippedAt = &now
		if trackingNumber != nil {
			order.TrackingNumber = trackingNumber
		}
		if carrier != nil {
			order.ShippingCarrier = carrier
		}
	case model.OrderDelivered:
		order.DeliveredAt = &now
	}
	order.Status = status

	if err := s.orderRepo.Update(ctx, nil, order); err != nil {
		return nil, fmt.Errorf("failed to update order status: %w", err)
	}

	s.logger.Info().
		Int64("order_id", id).
		Str("status", string(status)).
		Msg("order status updated")

	if status == model.OrderShipped {
		tracking := ""
		if order.TrackingNumber != nil {
			tracking = " Tracking number: " + *order.TrackingNumber
		}
		s.notifyUser(ctx, order.UserID, "Your order has shipped",
			fmt.Sprintf("Order %s is on its way.%s\n", order.OrderNumber, tracking))
	}

	return order, nil
}

// UpdateTracking sets the carrier details without touching the order
// status.
func (s *orderService) UpdateTracking(ctx context.Context, id int64, trackingNumber, carrier string) (*model.Order, error) {
	order, _, err := s.orderRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to update tracking info: %w", err)
	}
	if order == nil {
		return nil, model.NewNotFound(fmt.Sprintf("Order %d not found", id))
	}

	order.TrackingNumber = &trackingNumber
	order.ShippingCarrier = &carrier

	if err := s.orderRepo.Update(ctx, nil, order); err != nil {
		return nil, fmt.Errorf("failed to update tracking info: %w", err)
	}

	s.logger.Info().
		Int64("order_id", id).
		Str("tracking_number", trackingNumber).
		Msg("tracking info updated")

	return order, nil
}

// Cancel cancels the order and releases its reserved stock in the
// same transaction. Delivered and already-closed orders cannot be
// cancelled; anything still in flight can.
func (s *orderService) Cancel(ctx context.Context, actorID int64, actorRole model.UserRole, id int64, reason *string) (*model.Order, error) {
	order, items, err := s.orderRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to cancel order: %w", err)
	}
	if order == nil || (actorRole != model.RoleAdmin && order.UserID != actorID) {
		return nil, model.NewNotFound(fmt.Sprintf("Order %d not found", id))
	}
	if order.Status == model.OrderDelivered || order.Status == model.OrderCancelled || order.Status == model.OrderRefunded {
		return nil, model.NewIllegalState(fmt.Sprintf("Order %d is %s and cannot be cancelled", id, order.Status))
	}

	if err := s.cancelOrder(ctx, order, items, reason); err != nil {
		return nil, err
	}

	s.logger.Info().
		Int64("order_id", id).
		Str("order_number", order.OrderNumber).
		Msg("order cancelled")

	s.notifyUser(ctx, order.UserID, "Order cancelled",
		fmt.Sprintf("Your order %s has been cancelled.\n", order.OrderNumber))

	return order, nil
}

// cancelOrder releases every line's reserved stock and marks the
// order cancelled in one transaction.
func (s *orderService) cancelOrder(ctx context.Context, order *model.Order, items []model.OrderItem, reason *string) (err error) {
	tx, err := s.orderRepo.BeginTx(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to begin transaction")
		return fmt.Errorf("failed to cancel order: %w", err)
	}

	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil {
				s.logger.Error().Err(rbErr).Msg("failed to rollback transaction")
			}
		}
	}()

	for _, item := range items {
		if err = s.productRepo.ReleaseStock(ctx, tx, item.ProductID, item.Quantity); err != nil {
			s.logger.Error().
				Err(err).
				Int64("order_id", order.ID).
				Int64("product_id", item.ProductID).
				Msg("failed to release stock")
			return fmt.Errorf("failed to cancel order: %w", err)
		}
	}

	now := time.Now()
	order.Status = model.OrderCancelled
	order.CancellationReason = reason
	order.CancelledAt = &now

	if err = s.orderRepo.Update(ctx, tx, order); err != nil {
		return fmt.Errorf("failed to cancel order: %w", err)
	}

	if err = tx.Commit(ctx); err != nil {
		s.logger.Error().Err(err).Int64("order_id", order.ID).Msg("failed to commit transaction")
		return fmt.Errorf("failed to cancel order: %w", err)
	}

	return nil
}

func (s *orderService) guardOrder(actorID int64, actorRole model.UserRole, order *model.Order, items []model.OrderItem, notFound string) (*model.OrderResponse, error) {
	if order == nil || (actorRole != model.RoleAdmin && order.UserID != actorID) {
		return nil, model.NewNotFound(notFound)
	}
	return &model.OrderResponse{Order: *order, Items: items}, nil
}

func (s *orderService) checkAddress(ctx context.Context, userID, addressID int64, field string) error {
	address, err := s.addressRepo.GetByID(ctx, addressID)
	if err != nil {
		return fmt.Errorf("failed to create order: %w", err)
	}
	if address == nil || address.UserID != userID {
		return model.NewValidation(map[string]string{field: fmt.Sprintf("Address %d not found", addressID)})
	}
	return nil
}

func (s *orderService) clearCart(ctx context.Context, userID int64) error {
	cart, err := s.cartRepo.GetByUserID(ctx, userID)
	if err != nil {
		return err
	}
	if cart == nil {
		return nil
	}
	return s.cartRepo.DeleteItems(ctx, cart.ID)
}

// notifyUser emails the order's owner. Lookup failures only skip the
// notification.
func (s *orderService) notifyUser(ctx context.Context, userID int64, subject, body string) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil || user == nil {
		s.logger.Warn().Err(err).Int64("user_id", userID).Msg("failed to load user for notification")
		return
	}
	s.dispatcher.Send(user.Email, subject, fmt.Sprintf("Hi %s,\n\n%s", user.FullName(), body))
}

func (s *orderService) validateCreateRequest(req *model.OrderCreateRequest) error {
	if req == nil {
		return model.NewValidation(map[string]string{"body": "Request body is required"})
	}

	fields := map[string]string{}

	if req.UserID == 0 {
		fields["userId"] = "User is required"
	}
	if len(req.Items) == 0 {
		fields["items"] = "Order must contain at least one item"
	}
	for i, item := range req.Items {
		if item.ProductID == 0 {
			fields[fmt.Sprintf("items[%d].productId", i)] = "Product is required"
		}
		if item.Quantity <= 0 {
			fields[fmt.Sprintf("items[%d].quantity", i)] = "Quantity must be positive"
		}
	}
	if req.ShippingAddressID == 0 {
		fields["shippingAddressId"] = "Shipping address is required"
	}
	if req.BillingAddressID == 0 {
		fields["billingAddressId"] = "Billing address is required"
	}

	if len(fields) > 0 {
		return model.NewValidation(fields)
	}
	return nil
}
