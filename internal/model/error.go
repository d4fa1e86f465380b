package model

// ErrorKind classifies a domain error so the HTTP boundary can map it
// to a status code without inspecting message text.
type ErrorKind string

const (
	KindNotFound          ErrorKind = "NOT_FOUND"
	KindDuplicate         ErrorKind = "DUPLICATE"
	KindInsufficientStock ErrorKind = "INSUFFICIENT_STOCK"
	KindIllegalState      ErrorKind = "ILLEGAL_STATE"
	KindValidation        ErrorKind = "VALIDATION_FAILED"
	KindAccessDenied      ErrorKind = "ACCESS_DENIED"
	KindInvalidPromoCode  ErrorKind = "INVALID_PROMO_CODE"
)

// DomainError is a business-rule failure surfaced unchanged to the
// HTTP boundary. Services never catch-and-continue on these.
type DomainError struct {
	Kind    ErrorKind
	Message string
	// Fields holds per-field messages for validation failures.
	Fields map[string]string
}

func (e *DomainError) Error() string {
	return e.Message
}

// NewNotFound creates a NotFound domain error.
func NewNotFound(message string) *DomainError {
	return &DomainError{Kind: KindNotFound, Message: message}
}

// NewDuplicate creates a Duplicate domain error.
func NewDuplicate(message string) *DomainError {
	return &DomainError{Kind: KindDuplicate, Message: message}
}

// NewInsufficientStock creates an InsufficientStock domain error.
func NewInsufficientStock(message string) *DomainError {
	return &DomainError{Kind: KindInsufficientStock, Message: message}
}

// NewIllegalState creates an IllegalState domain error.
func NewIllegalState(message string) *DomainError {
	return &DomainError{Kind: KindIllegalState, Message: message}
}

// NewValidation creates a validation error with per-field messages.
func NewValidation(fields map[string]string) *DomainError {
	return &DomainError{Kind: KindValidation, Message: "Validation failed", Fields: fields}
}

// NewAccessDenied creates an AccessDenied domain error.
func NewAccessDenied(message string) *DomainError {
	return &DomainError{Kind: KindAccessDenied, Message: message}
}

// Common domain errors shared across services.
var (
	ErrInvalidPromoCode   = &DomainError{Kind: KindInvalidPromoCode, Message: "Promo code must appear in at least two promo files"}
	ErrInvalidPromoLength = &DomainError{Kind: KindInvalidPromoCode, Message: "Promo code must be between 8 and 10 characters"}
)
