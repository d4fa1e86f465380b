package model

import "time"

// Category is a node in the catalogue tree. ParentID is nil for
// top-level categories.
type Category struct {
	ID           int64     `json:"id" db:"id"`
	Name         string    `json:"name" db:"name"`
	Description  *string   `json:"description,omitempty" db:"description"`
	Slug         string    `json:"slug" db:"slug"`
	ImageURL     *string   `json:"imageUrl,omitempty" db:"image_url"`
	ParentID     *int64    `json:"parentCategoryId,omitempty" db:"parent_id"`
	Active       bool      `json:"active" db:"active"`
	DisplayOrder int       `json:"displayOrder" db:"display_order"`
	CreatedAt    time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt    time.Time `json:"updatedAt" db:"updated_at"`
}

// CategoryRequest is the payload for creating or updating a category.
type CategoryRequest struct {
	Name         string  `json:"name"`
	Description  *string `json:"description,omitempty"`
	ImageURL     *string `json:"imageUrl,omitempty"`
	ParentID     *int64  `json:"parentCategoryId,omitempty"`
	Active       bool    `json:"active"`
	DisplayOrder int     `json:"displayOrder"`
}
