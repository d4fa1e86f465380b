package model

import "time"

// Review is user feedback for a product, unique per (product, user).
// Verified means the user has at least one purchased order line for
// the product. Reviews stay invisible until an admin approves them.
type Review struct {
	ID           int64     `json:"id" db:"id"`
	ProductID    int64     `json:"productId" db:"product_id"`
	UserID       int64     `json:"userId" db:"user_id"`
	Rating       int       `json:"rating" db:"rating"`
	Title        *string   `json:"title,omitempty" db:"title"`
	Comment      *string   `json:"comment,omitempty" db:"comment"`
	Verified     bool      `json:"verified" db:"verified"`
	Approved     bool      `json:"approved" db:"approved"`
	HelpfulCount int       `json:"helpfulCount" db:"helpful_count"`
	CreatedAt    time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt    time.Time `json:"updatedAt" db:"updated_at"`
}

// ReviewRequest is the payload for creating or updating a review.
type ReviewRequest struct {
	ProductID int64   `json:"productId"`
	Rating    int     `json:"rating"`
	Title     *string `json:"title,omitempty"`
	Comment   *string `json:"comment,omitempty"`
}
