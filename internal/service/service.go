package service

import (
	"context"

	"storefront/internal/model"
)

// AuthService defines registration, login and token lifecycle
// operations.
type AuthService interface {
	// Register creates an account from a password registration and
	// returns an issued token pair.
	Register(ctx context.Context, req *model.RegisterRequest) (*model.AuthResponse, error)

	// Login verifies email/password credentials.
	Login(ctx context.Context, req *model.LoginRequest) (*model.AuthResponse, error)

	// RequestOTP generates a short-lived one-time code for the email
	// and dispatches it. The call succeeds even for unknown emails so
	// account existence is not leaked.
	RequestOTP(ctx context.Context, email string) error

	// LoginWithOTP verifies a one-time code previously requested for
	// the email.
	LoginWithOTP(ctx context.Context, req *model.LoginWithOTPRequest) (*model.AuthResponse, error)

	// RequestRegistrationOTP reserves the email with a placeholder
	// inactive account and dispatches a one-time code to it.
	RequestRegistrationOTP(ctx context.Context, email string) error

	// RegisterWithOTP activates the account reserved by
	// RequestRegistrationOTP once the code checks out.
	RegisterWithOTP(ctx context.Context, req *model.RegisterWithOTPRequest) (*model.AuthResponse, error)

	// Refresh exchanges a valid refresh token for a fresh pair. The
	// presented token must match the one stored on the account.
	Refresh(ctx context.Context, refreshToken string) (*model.AuthResponse, error)

	// Logout invalidates the stored refresh token.
	Logout(ctx context.Context, userID int64) error
}

// UserService defines account profile operations.
type UserService interface {
	GetByID(ctx context.Context, id int64) (*model.UserResponse, error)
	Update(ctx context.Context, id int64, req *model.UserUpdateRequest) (*model.UserResponse, error)

	// Deactivate soft-deletes the account. The row is kept for order
	// history.
	Deactivate(ctx context.Context, id int64) error

	ChangePassword(ctx context.Context, id int64, currentPassword, newPassword string) error
	List(ctx context.Context, limit, offset int) ([]model.UserResponse, error)
}

// AddressService defines postal address operations. Mutations verify
// that the actor owns the address.
type AddressService interface {
	Create(ctx context.Context, userID int64, req *model.AddressRequest) (*model.Address, error)
	GetByID(ctx context.Context, actorID, id int64) (*model.Address, error)
	ListByUser(ctx context.Context, userID int64) ([]model.Address, error)
	Update(ctx context.Context, actorID, id int64, req *model.AddressRequest) (*model.Address, error)
	SetDefault(ctx context.Context, actorID, id int64) (*model.Address, error)
	Delete(ctx context.Context, actorID, id int64) error
}

// CategoryService defines catalogue category operations.
type CategoryService interface {
	Create(ctx context.Context, req *model.CategoryRequest) (*model.Category, error)
	GetByID(ctx context.Context, id int64) (*model.Category, error)
	GetBySlug(ctx context.Context, slug string) (*model.Category, error)
	List(ctx context.Context, limit, offset int) ([]model.Category, error)
	ListTopLevel(ctx context.Context) ([]model.Category, error)
	ListChildren(ctx context.Context, parentID int64) ([]model.Category, error)
	Update(ctx context.Context, id int64, req *model.CategoryRequest) (*model.Category, error)

	// Delete removes the category. It fails while products still
	// reference it.
	Delete(ctx context.Context, id int64) error
}

// ProductService defines catalogue product operations.
type ProductService interface {
	Create(ctx context.Context, req *model.ProductCreateRequest) (*model.Product, error)
	GetByID(ctx context.Context, id int64) (*model.Product, error)
	GetBySlug(ctx context.Context, slug string) (*model.Product, error)
	List(ctx context.Context, limit, offset int) ([]model.Product, error)
	Search(ctx context.Context, keyword string, limit, offset int) ([]model.Product, error)
	ListByCategory(ctx context.Context, categoryID int64, limit, offset int) ([]model.Product, error)
	ListBySeller(ctx context.Context, sellerID int64, limit, offset int) ([]model.Product, error)
	ListFeatured(ctx context.Context, limit int) ([]model.Product, error)

	// Update applies a partial update. Sellers may only update their
	// own products; admins may update any.
	Update(ctx context.Context, actorID int64, actorRole model.UserRole, id int64, req *model.ProductUpdateRequest) (*model.Product, error)

	// AdjustStock adds delta (may be negative) to the stock count.
	AdjustStock(ctx context.Context, actorID int64, actorRole model.UserRole, id int64, delta int) (*model.Product, error)

	// Archive soft-deletes the product, hiding it from the catalogue
	// while order snapshots keep referencing it.
	Archive(ctx context.Context, actorID int64, actorRole model.UserRole, id int64) error
}

// CartService defines shopping cart operations.
type CartService interface {
	// GetCart loads the user's cart. The cart does not exist until the
	// first item is added.
	GetCart(ctx context.Context, userID int64) (*model.CartResponse, error)

	// AddItem adds a product to the cart, merging quantities when a
	// line for the product already exists. The unit price is
	// snapshotted at first add.
	AddItem(ctx context.Context, userID int64, req *model.AddToCartRequest) (*model.CartResponse, error)

	UpdateItemQuantity(ctx context.Context, userID, productID int64, quantity int) (*model.CartResponse, error)
	RemoveItem(ctx context.Context, userID, productID int64) (*model.CartResponse, error)
	Clear(ctx context.Context, userID int64) error
}

// OrderService defines checkout and fulfilment operations.
type OrderService interface {
	// Create prices the requested lines, reserves stock and writes
	// the order atomically, then clears the user's cart.
	Create(ctx context.Context, req *model.OrderCreateRequest) (*model.OrderResponse, error)

	GetByID(ctx context.Context, actorID int64, actorRole model.UserRole, id int64) (*model.OrderResponse, error)
	GetByOrderNumber(ctx context.Context, actorID int64, actorRole model.UserRole, orderNumber string) (*model.OrderResponse, error)
	ListByUser(ctx context.Context, userID int64, limit, offset int) ([]model.Order, error)
	List(ctx context.Context, status model.OrderStatus, limit, offset int) ([]model.Order, error)

	// UpdateStatus moves the order to the given status and maintains
	// the shipped/delivered/cancelled timestamps. Entering CANCELLED
	// releases the reserved stock.
	UpdateStatus(ctx context.Context, id int64, status model.OrderStatus, trackingNumber, carrier *string) (*model.Order, error)

	// UpdateTracking sets the tracking number and carrier without
	// changing the order status.
	UpdateTracking(ctx context.Context, id int64, trackingNumber, carrier string) (*model.Order, error)

	// Cancel cancels the order and releases its reserved stock in the
	// same transaction. Delivered and already-closed orders cannot be
	// cancelled.
	Cancel(ctx context.Context, actorID int64, actorRole model.UserRole, id int64, reason *string) (*model.Order, error)
}

// PaymentService defines payment lifecycle operations.
type PaymentService interface {
	// Create records the single payment of an order. The amount is
	// taken from the order, never from the caller.
	Create(ctx context.Context, actorID int64, req *model.PaymentCreateRequest) (*model.Payment, error)

	// Process runs the payment through the gateway. On success the
	// payment completes and the order is confirmed; on gateway
	// failure the payment is marked FAILED.
	Process(ctx context.Context, id int64) (*model.Payment, error)

	GetByID(ctx context.Context, id int64) (*model.Payment, error)
	GetByOrderID(ctx context.Context, orderID int64) (*model.Payment, error)

	// Refund reverses a COMPLETED payment and moves the order to
	// REFUNDED.
	Refund(ctx context.Context, id int64, reason *string) (*model.Payment, error)
}

// ReviewService defines product review operations.
type ReviewService interface {
	// Create adds a review, at most one per user and product. The
	// review is marked verified when the user has purchased the
	// product, and awaits approval before it becomes visible.
	Create(ctx context.Context, userID int64, req *model.ReviewRequest) (*model.Review, error)

	GetByID(ctx context.Context, id int64) (*model.Review, error)
	ListByProduct(ctx context.Context, productID int64, limit, offset int) ([]model.Review, error)
	ListByUser(ctx context.Context, userID int64, limit, offset int) ([]model.Review, error)
	Update(ctx context.Context, actorID int64, id int64, req *model.ReviewRequest) (*model.Review, error)

	// Approve makes the review visible and folds it into the product
	// rating aggregates.
	Approve(ctx context.Context, id int64) (*model.Review, error)

	Delete(ctx context.Context, actorID int64, actorRole model.UserRole, id int64) error
	MarkHelpful(ctx context.Context, id int64) (*model.Review, error)
}
