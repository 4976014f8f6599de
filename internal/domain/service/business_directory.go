package service

import (
	"context"

	"marketmap/internal/domain/entity"
)

// BusinessDirectory is the read side of the marketplace backend.
type BusinessDirectory interface {
	// ListByType returns every business of the given vertical.
	ListByType(ctx context.Context, businessType entity.BusinessType) ([]entity.Business, error)

	// Get returns the authoritative record of a single business.
	Get(ctx context.Context, id string) (*entity.Business, error)
}

// CouponDirectory validates discount codes against the backend.
type CouponDirectory interface {
	// FindCoupon returns the coupon for code or ErrCouponInvalid.
	FindCoupon(ctx context.Context, code string) (*entity.Coupon, error)
}
