package entity

import "github.com/shopspring/decimal"

// CouponKind selects how a coupon value is applied.
type CouponKind string

const (
	CouponPercent CouponKind = "percent"
	CouponFixed   CouponKind = "fixed"
)

// Coupon is a discount code validated by the backend.
type Coupon struct {
	Code     string          `json:"code"`
	Kind     CouponKind      `json:"type"`
	Value    decimal.Decimal `json:"value"`
	MinOrder decimal.Decimal `json:"minOrder"`
	Active   bool            `json:"active"`
}
