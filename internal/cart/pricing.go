package cart

import (
	"marketmap/internal/domain/entity"
	domainerrors "marketmap/internal/domain/errors"

	"github.com/shopspring/decimal"
)

var (
	thousand = decimal.NewFromInt(1000)
	hundred  = decimal.NewFromInt(100)
)

// LineTotal prices one line. Weight-sold prices are per kilogram.
func LineTotal(it Item) decimal.Decimal {
	qty := decimal.NewFromInt(int64(it.Quantity))
	if it.ByWeight {
		return it.Product.Price.Div(thousand).Mul(qty).Round(2)
	}
	return it.Product.Price.Mul(qty).Round(2)
}

// QuantityLabel renders a quantity: grams below one kilogram, kilograms with
// one decimal from there on, plain units otherwise.
func QuantityLabel(it Item) string {
	if !it.ByWeight {
		return decimal.NewFromInt(int64(it.Quantity)).String()
	}
	if it.Quantity < 1000 {
		return decimal.NewFromInt(int64(it.Quantity)).String() + "g"
	}
	return decimal.NewFromInt(int64(it.Quantity)).Div(thousand).StringFixed(1) + "kg"
}

// Subtotal is the sum of the line totals.
func Subtotal(c *Cart) decimal.Decimal {
	sum := decimal.Zero
	for _, it := range c.Items {
		sum = sum.Add(LineTotal(it))
	}
	return sum
}

// Discount is what coupon takes off subtotal. It never exceeds subtotal.
func Discount(coupon *entity.Coupon, subtotal decimal.Decimal) decimal.Decimal {
	if coupon == nil || subtotal.LessThan(coupon.MinOrder) {
		return decimal.Zero
	}

	var d decimal.Decimal
	switch coupon.Kind {
	case entity.CouponPercent:
		d = subtotal.Mul(coupon.Value).Div(hundred).Round(2)
	case entity.CouponFixed:
		d = coupon.Value
	default:
		return decimal.Zero
	}

	if d.GreaterThan(subtotal) {
		return subtotal
	}
	if d.IsNegative() {
		return decimal.Zero
	}
	return d
}

// ValidateCoupon checks that coupon can be applied to a cart with subtotal.
func ValidateCoupon(coupon *entity.Coupon, subtotal decimal.Decimal) error {
	if coupon == nil || !coupon.Active {
		return domainerrors.ErrCouponInvalid
	}
	if coupon.Kind != entity.CouponPercent && coupon.Kind != entity.CouponFixed {
		return domainerrors.ErrCouponInvalid.WithDetails("unknown coupon type")
	}
	if subtotal.LessThan(coupon.MinOrder) {
		return domainerrors.ErrCouponInvalid.WithDetails("minimum order is " + coupon.MinOrder.StringFixed(2))
	}
	return nil
}

// Totals is the price breakdown of a cart.
type Totals struct {
	Subtotal    decimal.Decimal `json:"subtotal"`
	Discount    decimal.Decimal `json:"discount"`
	Tip         decimal.Decimal `json:"tip"`
	DeliveryFee decimal.Decimal `json:"delivery_fee"`
	Total       decimal.Decimal `json:"total"`
}

// Price composes subtotal, coupon discount, tip and delivery fee. An empty cart
// pays no delivery fee.
func Price(c *Cart, deliveryFee decimal.Decimal) Totals {
	subtotal := Subtotal(c)
	discount := Discount(c.Coupon, subtotal)

	tip := c.Tip
	if tip.IsNegative() {
		tip = decimal.Zero
	}
	if c.IsEmpty() {
		deliveryFee = decimal.Zero
	}

	return Totals{
		Subtotal:    subtotal,
		Discount:    discount,
		Tip:         tip,
		DeliveryFee: deliveryFee,
		Total:       subtotal.Sub(discount).Add(tip).Add(deliveryFee),
	}
}
