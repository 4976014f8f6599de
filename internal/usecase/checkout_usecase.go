package usecase

import (
	"context"

	"marketmap/internal/cart"
	"marketmap/internal/domain/entity"
)

// CheckoutInput sends the cart to a business over WhatsApp
type CheckoutInput struct {
	// BusinessID must match the cart when given
	BusinessID string `json:"business_id"`
	// Address overrides the saved delivery address
	Address *entity.Address `json:"address,omitempty" validate:"omitempty"`
	// QR also renders the link as a PNG QR code
	QR bool `json:"qr"`
}

// CheckoutResult is the WhatsApp deep link for the order
type CheckoutResult struct {
	Link     string          `json:"link"`
	Message  string          `json:"message"`
	QRCode   string          `json:"qr_code,omitempty"`
	Business entity.Business `json:"business"`
	Address  *entity.Address `json:"address,omitempty"`
	Totals   cart.Totals     `json:"totals"`
}

// CheckoutUsecase builds order handoffs
type CheckoutUsecase interface {
	WhatsApp(ctx context.Context, owner string, input *CheckoutInput) (*CheckoutResult, error)
}
