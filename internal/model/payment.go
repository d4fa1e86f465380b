package model

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// PaymentMethod is how the customer pays.
type PaymentMethod string

const (
	MethodCreditCard     PaymentMethod = "CREDIT_CARD"
	MethodDebitCard      PaymentMethod = "DEBIT_CARD"
	MethodUPI            PaymentMethod = "UPI"
	MethodNetBanking     PaymentMethod = "NET_BANKING"
	MethodWallet         PaymentMethod = "WALLET"
	MethodCashOnDelivery PaymentMethod = "CASH_ON_DELIVERY"
)

// ValidPaymentMethod reports whether m is a known method value.
func ValidPaymentMethod(m PaymentMethod) bool {
	switch m {
	case MethodCreditCard, MethodDebitCard, MethodUPI, MethodNetBanking,
		MethodWallet, MethodCashOnDelivery:
		return true
	}
	return false
}

// PaymentStatus tracks the gateway lifecycle. PENDING → PROCESSING →
// COMPLETED or FAILED; COMPLETED → REFUNDED.
type PaymentStatus string

const (
	PaymentPending    PaymentStatus = "PENDING"
	PaymentProcessing PaymentStatus = "PROCESSING"
	PaymentCompleted  PaymentStatus = "COMPLETED"
	PaymentFailed     PaymentStatus = "FAILED"
	PaymentRefunded   PaymentStatus = "REFUNDED"
)

// Payment is the single payment record of an order. The one-to-one
// invariant is backed by a unique constraint on order_id.
type Payment struct {
	ID                   int64         `json:"id" db:"id"`
	OrderID              int64         `json:"orderId" db:"order_id"`
	TransactionID        string        `json:"transactionId" db:"transaction_id"`
	Method               PaymentMethod `json:"paymentMethod" db:"method"`
	Status               PaymentStatus `json:"status" db:"status"`
	Amount               float64       `json:"amount" db:"amount"`
	Currency             string        `json:"currency" db:"currency"`
	Gateway              *string       `json:"paymentGateway,omitempty" db:"gateway"`
	GatewayTransactionID *string       `json:"gatewayTransactionId,omitempty" db:"gateway_transaction_id"`
	FailureReason        *string       `json:"failureReason,omitempty" db:"failure_reason"`
	Notes                *string       `json:"notes,omitempty" db:"notes"`
	PaidAt               *time.Time    `json:"paidAt,omitempty" db:"paid_at"`
	CreatedAt            time.Time     `json:"createdAt" db:"created_at"`
	UpdatedAt            time.Time     `json:"updatedAt" db:"updated_at"`
}

// NewTransactionID generates a unique payment transaction id.
func NewTransactionID() string {
	return fmt.Sprintf("TXN-%d-%s", time.Now().UnixMilli(), uuid.NewString()[:8])
}

// PaymentCreateRequest is the payload for creating a payment.
type PaymentCreateRequest struct {
	OrderID int64         `json:"orderId"`
	Method  PaymentMethod `json:"paymentMethod"`
	Gateway *string       `json:"paymentGateway,omitempty"`
	Notes   *string       `json:"notes,omitempty"`
}
