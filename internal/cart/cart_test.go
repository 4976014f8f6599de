package cart

import (
	"testing"

	"marketmap/internal/domain/entity"
	domainerrors "marketmap/internal/domain/errors"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testPolicy() Policy {
	return NewPolicy(250, []string{"fruits", "meat"})
}

func apples() entity.Product {
	return entity.Product{ID: "apple", BusinessID: "market", Name: "Manzana", Price: decimal.NewFromInt(100), CategorySlug: "fruits"}
}

func soda() entity.Product {
	return entity.Product{ID: "soda", BusinessID: "market", Name: "Refresco", Price: decimal.RequireFromString("18.50"), CategorySlug: "drinks"}
}

func TestWeightItemPricingAndLabel(t *testing.T) {
	p := testPolicy()
	c := &Cart{}

	require.NoError(t, p.Add(c, apples(), 0))
	require.Len(t, c.Items, 1)
	assert.True(t, c.Items[0].ByWeight)
	assert.Equal(t, 250, c.Items[0].Quantity)
	assert.Equal(t, "250g", QuantityLabel(c.Items[0]))
	assert.True(t, decimal.RequireFromString("25.00").Equal(LineTotal(c.Items[0])))

	for range 3 {
		require.NoError(t, p.Increment(c, "apple"))
	}
	assert.Equal(t, 1000, c.Items[0].Quantity)
	assert.Equal(t, "1.0kg", QuantityLabel(c.Items[0]))
	assert.True(t, decimal.NewFromInt(100).Equal(LineTotal(c.Items[0])))
}

func TestAddStepsAccumulate(t *testing.T) {
	p := testPolicy()
	c := &Cart{}

	for range 4 {
		require.NoError(t, p.Add(c, apples(), 250))
	}

	require.Len(t, c.Items, 1)
	assert.Equal(t, "1.0kg", QuantityLabel(c.Items[0]))

	require.NoError(t, p.Increment(c, "apple"))
	assert.Equal(t, "1.3kg", QuantityLabel(c.Items[0]))
}

func TestDecrementRemovesAtMinimumStep(t *testing.T) {
	p := testPolicy()
	c := &Cart{}
	require.NoError(t, p.Add(c, apples(), 500))

	removed, err := p.Decrement(c, "apple")
	require.NoError(t, err)
	assert.False(t, removed)
	assert.Equal(t, 250, c.Items[0].Quantity)

	removed, err = p.Decrement(c, "apple")
	require.NoError(t, err)
	assert.True(t, removed)
	assert.True(t, c.IsEmpty())

	_, err = p.Decrement(c, "apple")
	assert.True(t, errors.Is(err, domainerrors.ErrCartItemNotFound))
}

func TestQuantityRules(t *testing.T) {
	p := testPolicy()

	tests := []struct {
		name    string
		product entity.Product
		qty     int
		wantErr error
	}{
		{name: "grams not on step", product: apples(), qty: 300, wantErr: domainerrors.ErrInvalidQuantity},
		{name: "negative units", product: soda(), qty: -1, wantErr: domainerrors.ErrInvalidQuantity},
		{name: "units", product: soda(), qty: 3},
		{name: "two steps", product: apples(), qty: 500},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := p.Add(&Cart{}, tt.product, tt.qty)
			if tt.wantErr != nil {
				assert.True(t, errors.Is(err, tt.wantErr))
				return
			}
			assert.NoError(t, err)
		})
	}

	c := &Cart{}
	require.NoError(t, p.Add(c, apples(), 0))
	assert.True(t, errors.Is(p.SetQuantity(c, "apple", 100), domainerrors.ErrInvalidQuantity))
	require.NoError(t, p.SetQuantity(c, "apple", 750))
	assert.Equal(t, "750g", QuantityLabel(c.Items[0]))

	other := apples()
	other.ID, other.BusinessID = "pear", "other-market"
	assert.True(t, errors.Is(p.Add(c, other, 0), domainerrors.ErrMixedBusinesses))
}

func TestPriceComposition(t *testing.T) {
	p := testPolicy()
	fee := decimal.NewFromInt(30)

	tests := []struct {
		name         string
		coupon       *entity.Coupon
		tip          string
		wantDiscount string
		wantTotal    string
	}{
		{name: "no coupon", tip: "10", wantDiscount: "0", wantTotal: "102"},
		{
			name:         "percent",
			coupon:       &entity.Coupon{Code: "P10", Kind: entity.CouponPercent, Value: decimal.NewFromInt(10), Active: true},
			tip:          "0",
			wantDiscount: "6.2",
			wantTotal:    "85.8",
		},
		{
			name:         "fixed capped at subtotal",
			coupon:       &entity.Coupon{Code: "BIG", Kind: entity.CouponFixed, Value: decimal.NewFromInt(500), Active: true},
			tip:          "5",
			wantDiscount: "62",
			wantTotal:    "35",
		},
		{
			name:         "below minimum order",
			coupon:       &entity.Coupon{Code: "MIN", Kind: entity.CouponFixed, Value: decimal.NewFromInt(20), MinOrder: decimal.NewFromInt(100), Active: true},
			tip:          "0",
			wantDiscount: "0",
			wantTotal:    "92",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := &Cart{Coupon: tt.coupon, Tip: decimal.RequireFromString(tt.tip)}
			require.NoError(t, p.Add(c, apples(), 250))
			require.NoError(t, p.Add(c, soda(), 2))

			totals := Price(c, fee)

			assert.True(t, decimal.NewFromInt(62).Equal(totals.Subtotal), totals.Subtotal.String())
			assert.True(t, decimal.RequireFromString(tt.wantDiscount).Equal(totals.Discount), totals.Discount.String())
			assert.True(t, decimal.RequireFromString(tt.wantTotal).Equal(totals.Total), totals.Total.String())
		})
	}
}

func TestEmptyCartPaysNoDeliveryFee(t *testing.T) {
	c := &Cart{Tip: decimal.NewFromInt(5)}
	c.Clear()

	totals := Price(c, decimal.NewFromInt(30))

	assert.True(t, totals.Total.IsZero())
}

func TestValidateCoupon(t *testing.T) {
	sub := decimal.NewFromInt(80)

	assert.True(t, errors.Is(ValidateCoupon(nil, sub), domainerrors.ErrCouponInvalid))
	assert.True(t, errors.Is(ValidateCoupon(&entity.Coupon{Kind: entity.CouponFixed}, sub), domainerrors.ErrCouponInvalid))
	assert.True(t, errors.Is(ValidateCoupon(&entity.Coupon{Kind: entity.CouponFixed, Active: true, MinOrder: decimal.NewFromInt(100)}, sub), domainerrors.ErrCouponInvalid))
	assert.NoError(t, ValidateCoupon(&entity.Coupon{Kind: entity.CouponPercent, Active: true, Value: decimal.NewFromInt(5)}, sub))
}
