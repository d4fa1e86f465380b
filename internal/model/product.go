package model

import "time"

// ProductStatus is the catalogue lifecycle of a product.
type ProductStatus string

const (
	ProductDraft      ProductStatus = "DRAFT"
	ProductActive     ProductStatus = "ACTIVE"
	ProductOutOfStock ProductStatus = "OUT_OF_STOCK"
	ProductArchived   ProductStatus = "ARCHIVED"
)

// Product is a catalogue entry owned by a seller. Status flips to
// OUT_OF_STOCK when stock reaches zero and back to ACTIVE on restock.
type Product struct {
	ID               int64         `json:"id" db:"id"`
	Name             string        `json:"name" db:"name"`
	SKU              string        `json:"sku" db:"sku"`
	Slug             string        `json:"slug" db:"slug"`
	Description      *string       `json:"description,omitempty" db:"description"`
	ShortDescription *string       `json:"shortDescription,omitempty" db:"short_description"`
	Price            float64       `json:"price" db:"price"`
	DiscountPrice    *float64      `json:"discountPrice,omitempty" db:"discount_price"`
	StockQuantity    int           `json:"stockQuantity" db:"stock_quantity"`
	Status           ProductStatus `json:"status" db:"status"`
	Active           bool          `json:"active" db:"active"`
	Featured         bool          `json:"featured" db:"featured"`
	Images           []string      `json:"images" db:"images"`
	Brand            *string       `json:"brand,omitempty" db:"brand"`
	Weight           *float64      `json:"weight,omitempty" db:"weight"`
	Tags             []string      `json:"tags" db:"tags"`
	CategoryID       int64         `json:"categoryId" db:"category_id"`
	SellerID         int64         `json:"sellerId" db:"seller_id"`
	AverageRating    float64       `json:"averageRating" db:"average_rating"`
	TotalReviews     int           `json:"totalReviews" db:"total_reviews"`
	TotalSold        int           `json:"totalSold" db:"total_sold"`
	CreatedAt        time.Time     `json:"createdAt" db:"created_at"`
	UpdatedAt        time.Time     `json:"updatedAt" db:"updated_at"`
}

// EffectivePrice is the discount price when present, else the list
// price.
func (p *Product) EffectivePrice() float64 {
	if p.DiscountPrice != nil {
		return *p.DiscountPrice
	}
	return p.Price
}

// PrimaryImage returns the first image or nil when none exist.
func (p *Product) PrimaryImage() *string {
	if len(p.Images) == 0 {
		return nil
	}
	return &p.Images[0]
}

// InStock reports whether the product can currently be purchased.
func (p *Product) InStock() bool {
	return p.StockQuantity > 0
}

// ProductCreateRequest is the payload for creating a product.
type ProductCreateRequest struct {
	Name             string   `json:"name"`
	SKU              string   `json:"sku"`
	Description      *string  `json:"description,omitempty"`
	ShortDescription *string  `json:"shortDescription,omitempty"`
	Price            float64  `json:"price"`
	DiscountPrice    *float64 `json:"discountPrice,omitempty"`
	StockQuantity    int      `json:"stockQuantity"`
	CategoryID       int64    `json:"categoryId"`
	SellerID         int64    `json:"sellerId"`
	Images           []string `json:"images,omitempty"`
	Brand            *string  `json:"brand,omitempty"`
	Weight           *float64 `json:"weight,omitempty"`
	Featured         bool     `json:"featured"`
	Tags             []string `json:"tags,omitempty"`
}

// ProductUpdateRequest carries partial product updates; nil fields are
// left unchanged.
type ProductUpdateRequest struct {
	Name             *string  `json:"name,omitempty"`
	Description      *string  `json:"description,omitempty"`
	ShortDescription *string  `json:"shortDescription,omitempty"`
	Price            *float64 `json:"price,omitempty"`
	DiscountPrice    *float64 `json:"discountPrice,omitempty"`
	Brand            *string  `json:"brand,omitempty"`
	Weight           *float64 `json:"weight,omitempty"`
	Featured         *bool    `json:"featured,omitempty"`
	Images           []string `json:"images,omitempty"`
	Tags             []string `json:"tags,omitempty"`
}
