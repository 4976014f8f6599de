package entity

import "github.com/shopspring/decimal"

// Product is a snapshot of a menu item taken when it was added to the cart.
type Product struct {
	ID           string          `json:"id" validate:"required"`
	BusinessID   string          `json:"business_id" validate:"required"`
	Name         string          `json:"name" validate:"required"`
	Price        decimal.Decimal `json:"price"`
	CategorySlug string          `json:"category_slug,omitempty"`
	Image        string          `json:"image,omitempty"`
}
