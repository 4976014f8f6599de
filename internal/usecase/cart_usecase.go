package usecase

import (
	"context"

	"marketmap/internal/cart"
	"marketmap/internal/domain/entity"

	"github.com/shopspring/decimal"
)

// AddItemInput adds a product to the cart. A zero quantity adds one step.
type AddItemInput struct {
	Product  entity.Product `json:"product" validate:"required"`
	Quantity int            `json:"quantity" validate:"gte=0"`
}

// CartLine is an item with its display label and price
type CartLine struct {
	cart.Item
	Label     string          `json:"label"`
	LineTotal decimal.Decimal `json:"line_total"`
}

// CartView is the priced cart
type CartView struct {
	BusinessID string         `json:"business_id,omitempty"`
	Lines      []CartLine     `json:"lines"`
	Coupon     *entity.Coupon `json:"coupon,omitempty"`
	Totals     cart.Totals    `json:"totals"`
	Currency   string         `json:"currency"`
	// Removed is set when a decrement dropped the line
	Removed bool `json:"removed,omitempty"`
}

// CartUsecase defines the cart operations. Every mutation is persisted.
type CartUsecase interface {
	GetCart(ctx context.Context, owner string) (*CartView, error)
	AddItem(ctx context.Context, owner string, input *AddItemInput) (*CartView, error)
	Increment(ctx context.Context, owner, productID string) (*CartView, error)
	Decrement(ctx context.Context, owner, productID string) (*CartView, error)
	SetQuantity(ctx context.Context, owner, productID string, quantity int) (*CartView, error)
	RemoveItem(ctx context.Context, owner, productID string) (*CartView, error)
	Clear(ctx context.Context, owner string) error

	// ApplyCoupon validates code against the backend; an empty code removes the coupon
	ApplyCoupon(ctx context.Context, owner, code string) (*CartView, error)
	SetTip(ctx context.Context, owner string, tip decimal.Decimal) (*CartView, error)
}
