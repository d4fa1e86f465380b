package model

import "time"

// AddressType categorises a postal address.
type AddressType string

const (
	AddressHome  AddressType = "HOME"
	AddressWork  AddressType = "WORK"
	AddressOther AddressType = "OTHER"
)

// Address is a structured postal address owned by a user. At most one
// address per user carries IsDefault=true.
type Address struct {
	ID          int64       `json:"id" db:"id"`
	UserID      int64       `json:"userId" db:"user_id"`
	Type        AddressType `json:"type" db:"type"`
	FullName    string      `json:"fullName" db:"full_name"`
	PhoneNumber string      `json:"phoneNumber" db:"phone_number"`
	Line1       string      `json:"addressLine1" db:"line1"`
	Line2       *string     `json:"addressLine2,omitempty" db:"line2"`
	City        string      `json:"city" db:"city"`
	State       string      `json:"state" db:"state"`
	Country     string      `json:"country" db:"country"`
	PostalCode  string      `json:"postalCode" db:"postal_code"`
	Landmark    *string     `json:"landmark,omitempty" db:"landmark"`
	IsDefault   bool        `json:"isDefault" db:"is_default"`
	CreatedAt   time.Time   `json:"createdAt" db:"created_at"`
	UpdatedAt   time.Time   `json:"updatedAt" db:"updated_at"`
}

// AddressRequest is the payload for creating or updating an address.
type AddressRequest struct {
	Type        AddressType `json:"type"`
	FullName    string      `json:"fullName"`
	PhoneNumber string      `json:"phoneNumber"`
	Line1       string      `json:"addressLine1"`
	Line2       *string     `json:"addressLine2,omitempty"`
	City        string      `json:"city"`
	State       string      `json:"state"`
	Country     string      `json:"country"`
	PostalCode  string      `json:"postalCode"`
	Landmark    *string     `json:"landmark,omitempty"`
	IsDefault   bool        `json:"isDefault"`
}
