package model

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// OrderStatus tracks the fulfilment lifecycle. PENDING → CONFIRMED →
// PROCESSING → SHIPPED → DELIVERED, with CANCELLED, REFUNDED and
// FAILED as side branches.
type OrderStatus string

const (
	OrderPending    OrderStatus = "PENDING"
	OrderConfirmed  OrderStatus = "CONFIRMED"
	OrderProcessing OrderStatus = "PROCESSING"
	OrderShipped    OrderStatus = "SHIPPED"
	OrderDelivered  OrderStatus = "DELIVERED"
	OrderCancelled  OrderStatus = "CANCELLED"
	OrderRefunded   OrderStatus = "REFUNDED"
	OrderFailed     OrderStatus = "FAILED"
)

// ValidOrderStatus reports whether s is a known status value.
func ValidOrderStatus(s OrderStatus) bool {
	switch s {
	case OrderPending, OrderConfirmed, OrderProcessing, OrderShipped,
		OrderDelivered, OrderCancelled, OrderRefunded, OrderFailed:
		return true
	}
	return false
}

// Order is a priced, immutable snapshot of a checkout. Stock is
// reserved at creation time, not at payment confirmation.
type Order struct {
	ID                 int64       `json:"id" db:"id"`
	OrderNumber        string      `json:"orderNumber" db:"order_number"`
	UserID             int64       `json:"userId" db:"user_id"`
	Status             OrderStatus `json:"status" db:"status"`
	Subtotal           float64     `json:"subtotal" db:"subtotal"`
	Tax                float64     `json:"tax" db:"tax"`
	ShippingCost       float64     `json:"shippingCost" db:"shipping_cost"`
	Discount           float64     `json:"discount" db:"discount"`
	TotalAmount        float64     `json:"totalAmount" db:"total_amount"`
	PromoCode          *string     `json:"promoCode,omitempty" db:"promo_code"`
	ShippingAddressID  int64       `json:"shippingAddressId" db:"shipping_address_id"`
	BillingAddressID   int64       `json:"billingAddressId" db:"billing_address_id"`
	TrackingNumber     *string     `json:"trackingNumber,omitempty" db:"tracking_number"`
	ShippingCarrier    *string     `json:"shippingCarrier,omitempty" db:"shipping_carrier"`
	Notes              *string     `json:"notes,omitempty" db:"notes"`
	CancellationReason *string     `json:"cancellationReason,omitempty" db:"cancellation_reason"`
	ShippedAt          *time.Time  `json:"shippedAt,omitempty" db:"shipped_at"`
	DeliveredAt        *time.Time  `json:"deliveredAt,omitempty" db:"delivered_at"`
	CancelledAt        *time.Time  `json:"cancelledAt,omitempty" db:"cancelled_at"`
	CreatedAt          time.Time   `json:"createdAt" db:"created_at"`
	UpdatedAt          time.Time   `json:"updatedAt" db:"updated_at"`
}

// OrderItem is an immutable per-line snapshot of the product at order
// time, decoupled from later catalogue changes.
type OrderItem struct {
	ID           int64   `json:"id" db:"id"`
	OrderID      int64   `json:"-" db:"order_id"`
	ProductID    int64   `json:"productId" db:"product_id"`
	ProductName  string  `json:"productName" db:"product_name"`
	ProductSKU   string  `json:"productSku" db:"product_sku"`
	ProductImage *string `json:"productImage,omitempty" db:"product_image"`
	UnitPrice    float64 `json:"unitPrice" db:"unit_price"`
	Quantity     int     `json:"quantity" db:"quantity"`
	TotalPrice   float64 `json:"totalPrice" db:"total_price"`
}

// NewOrderNumber generates a unique human-readable order number.
func NewOrderNumber() string {
	return fmt.Sprintf("ORD-%d-%s", time.Now().UnixMilli(), uuid.NewString()[:8])
}

// OrderItemRequest is one requested line at checkout.
type OrderItemRequest struct {
	ProductID int64 `json:"productId"`
	Quantity  int   `json:"quantity"`
}

// OrderCreateRequest is the payload for creating an order.
type OrderCreateRequest struct {
	UserID            int64              `json:"userId"`
	Items             []OrderItemRequest `json:"items"`
	ShippingAddressID int64              `json:"shippingAddressId"`
	BillingAddressID  int64              `json:"billingAddressId"`
	PromoCode         *string            `json:"promoCode,omitempty"`
	Notes             *string            `json:"notes,omitempty"`
}

// OrderResponse is the full order view including snapshot items.
type OrderResponse struct {
	Order
	Items []OrderItem `json:"items"`
}
