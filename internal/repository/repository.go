package repository

import (
	"context"

	"storefront/internal/model"

	"github.com/jackc/pgx/v5"
)

// Repositories return (nil, nil) when a row is absent; services decide
// whether absence is a NotFound error for the caller.

// UserRepository defines data access for user accounts.
type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	GetByID(ctx context.Context, id int64) (*model.User, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	ExistsByPhone(ctx context.Context, phone string) (bool, error)

	// Update persists every mutable column of the user row.
	Update(ctx context.Context, user *model.User) error

	List(ctx context.Context, limit, offset int) ([]model.User, error)
}

// AddressRepository defines data access for postal addresses.
type AddressRepository interface {
	// Create inserts the address; when it is flagged default the
	// default is handed over from any previous default atomically.
	Create(ctx context.Context, address *model.Address) error

	GetByID(ctx context.Context, id int64) (*model.Address, error)
	ListByUser(ctx context.Context, userID int64) ([]model.Address, error)

	// Update persists the address with the same default handover
	// semantics as Create.
	Update(ctx context.Context, address *model.Address) error

	Delete(ctx context.Context, id int64) error
}

// CategoryRepository defines data access for catalogue categories.
type CategoryRepository interface {
	Create(ctx context.Context, category *model.Category) error
	GetByID(ctx context.Context, id int64) (*model.Category, error)
	GetBySlug(ctx context.Context, slug string) (*model.Category, error)
	ExistsByName(ctx context.Context, name string) (bool, error)
	List(ctx context.Context, limit, offset int) ([]model.Category, error)
	ListTopLevel(ctx context.Context) ([]model.Category, error)
	ListChildren(ctx context.Context, parentID int64) ([]model.Category, error)
	Update(ctx context.Context, category *model.Category) error
	Delete(ctx context.Context, id int64) error
}

// ProductRepository defines data access for catalogue products.
type ProductRepository interface {
	Create(ctx context.Context, product *model.Product) error
	GetByID(ctx context.Context, id int64) (*model.Product, error)
	GetBySlug(ctx context.Context, slug string) (*model.Product, error)
	ExistsBySKU(ctx context.Context, sku string) (bool, error)
	List(ctx context.Context, limit, offset int) ([]model.Product, error)
	Search(ctx context.Context, keyword string, limit, offset int) ([]model.Product, error)
	ListByCategory(ctx context.Context, categoryID int64, limit, offset int) ([]model.Product, error)
	ListBySeller(ctx context.Context, sellerID int64, limit, offset int) ([]model.Product, error)
	ListFeatured(ctx context.Context, limit int) ([]model.Product, error)
	CountByCategory(ctx context.Context, categoryID int64) (int64, error)
	Update(ctx context.Context, product *model.Product) error

	// AdjustStock applies delta (may be negative) to the stock count
	// and maintains the OUT_OF_STOCK/ACTIVE status flip. The update is
	// conditional on the result staying non-negative; a nil product
	// means the adjustment was blocked or the row is missing.
	AdjustStock(ctx context.Context, id int64, delta int) (*model.Product, error)

	// ReserveStock atomically decrements stock when enough is
	// available (stock never observable below zero) and bumps
	// total_sold. Reports false when stock was insufficient.
	ReserveStock(ctx context.Context, tx pgx.Tx, id int64, qty int) (bool, error)

	// ReleaseStock is the exact mirror of ReserveStock, used on order
	// cancellation.
	ReleaseStock(ctx context.Context, tx pgx.Tx, id int64, qty int) error
}

// CartRepository defines data access for carts and their items.
type CartRepository interface {
	GetByUserID(ctx context.Context, userID int64) (*model.Cart, error)
	Create(ctx context.Context, userID int64) (*model.Cart, error)
	GetItem(ctx context.Context, cartID, productID int64) (*model.CartItem, error)
	ListItems(ctx context.Context, cartID int64) ([]model.CartItem, error)
	CreateItem(ctx context.Context, item *model.CartItem) error
	UpdateItemQuantity(ctx context.Context, itemID int64, quantity int) error
	DeleteItem(ctx context.Context, itemID int64) error
	DeleteItems(ctx context.Context, cartID int64) error
}

// OrderRepository defines data access for orders and their snapshot
// items.
type OrderRepository interface {
	// BeginTx starts a transaction shared with stock movement so an
	// order and its decrements commit or roll back as a unit.
	BeginTx(ctx context.Context) (pgx.Tx, error)

	CreateOrder(ctx context.Context, tx pgx.Tx, order *model.Order) error
	CreateOrderItems(ctx context.Context, tx pgx.Tx, items []model.OrderItem) error
	GetByID(ctx context.Context, id int64) (*model.Order, []model.OrderItem, error)
	GetByOrderNumber(ctx context.Context, orderNumber string) (*model.Order, []model.OrderItem, error)
	ListByUser(ctx context.Context, userID int64, limit, offset int) ([]model.Order, error)
	ListByStatus(ctx context.Context, status model.OrderStatus, limit, offset int) ([]model.Order, error)
	List(ctx context.Context, limit, offset int) ([]model.Order, error)

	// Update persists the mutable order columns (status, tracking,
	// cancellation fields, timestamps) within tx when tx is not nil.
	Update(ctx context.Context, tx pgx.Tx, order *model.Order) error

	// CountPurchases reports how many order lines the user holds for
	// the product, used to mark reviews as verified.
	CountPurchases(ctx context.Context, userID, productID int64) (int64, error)
}

// PaymentRepository defines data access for payments.
type PaymentRepository interface {
	BeginTx(ctx context.Context) (pgx.Tx, error)
	Create(ctx context.Context, payment *model.Payment) error
	GetByID(ctx context.Context, id int64) (*model.Payment, error)
	GetByOrderID(ctx context.Context, orderID int64) (*model.Payment, error)
	Update(ctx context.Context, tx pgx.Tx, payment *model.Payment) error
}

// ReviewRepository defines data access for reviews and the product
// rating aggregates they feed.
type ReviewRepository interface {
	BeginTx(ctx context.Context) (pgx.Tx, error)

	// Create inserts the review within tx so the product aggregates
	// can be refreshed in the same transaction.
	Create(ctx context.Context, tx pgx.Tx, review *model.Review) error

	GetByID(ctx context.Context, id int64) (*model.Review, error)
	Exists(ctx context.Context, userID, productID int64) (bool, error)
	ListByProduct(ctx context.Context, productID int64, limit, offset int) ([]model.Review, error)
	ListByUser(ctx context.Context, userID int64, limit, offset int) ([]model.Review, error)
	Update(ctx context.Context, tx pgx.Tx, review *model.Review) error
	Delete(ctx context.Context, tx pgx.Tx, id int64) error
	IncrementHelpful(ctx context.Context, id int64) (*model.Review, error)

	// RefreshProductRating recomputes average_rating and total_reviews
	// from the currently approved reviews in one statement, so the
	// aggregates are always consistent with review state.
	RefreshProductRating(ctx context.Context, tx pgx.Tx, productID int64) error
}
