// Package cart holds the cart reducers and order pricing.
package cart

import (
	"marketmap/internal/domain/entity"
	domainerrors "marketmap/internal/domain/errors"

	"github.com/shopspring/decimal"
)

// DefaultGramStep is the increment of weight-sold products.
const DefaultGramStep = 250

// Policy decides how products are sold.
type Policy struct {
	GramStep         int
	WeightCategories map[string]struct{}
}

// NewPolicy builds a policy selling the given category slugs by weight.
func NewPolicy(gramStep int, weightCategories []string) Policy {
	if gramStep <= 0 {
		gramStep = DefaultGramStep
	}
	set := make(map[string]struct{}, len(weightCategories))
	for _, c := range weightCategories {
		set[c] = struct{}{}
	}
	return Policy{GramStep: gramStep, WeightCategories: set}
}

// SoldByWeight reports whether quantities of p are grams.
func (p Policy) SoldByWeight(prod entity.Product) bool {
	_, ok := p.WeightCategories[prod.CategorySlug]
	return ok
}

// Step is the quantity increment of prod.
func (p Policy) Step(prod entity.Product) int {
	if p.SoldByWeight(prod) {
		return p.GramStep
	}
	return 1
}

// Item is one cart line. Quantity is in grams for weight-sold products.
type Item struct {
	Product  entity.Product `json:"product"`
	Quantity int            `json:"quantity"`
	ByWeight bool           `json:"by_weight"`
}

// Cart is the persisted cart document.
type Cart struct {
	Items  []Item          `json:"items"`
	Coupon *entity.Coupon  `json:"coupon,omitempty"`
	Tip    decimal.Decimal `json:"tip"`
}

// BusinessID returns the business of the products in the cart.
func (c *Cart) BusinessID() string {
	if len(c.Items) == 0 {
		return ""
	}
	return c.Items[0].Product.BusinessID
}

// IsEmpty reports whether the cart has no items.
func (c *Cart) IsEmpty() bool {
	return len(c.Items) == 0
}

func (c *Cart) find(productID string) int {
	for i := range c.Items {
		if c.Items[i].Product.ID == productID {
			return i
		}
	}
	return -1
}

func (p Policy) validQuantity(prod entity.Product, qty int) bool {
	step := p.Step(prod)
	return qty >= step && qty%step == 0
}

// Add puts qty of prod in the cart, merging with an existing line. A zero qty
// means one step. Products of another business are rejected.
func (p Policy) Add(c *Cart, prod entity.Product, qty int) error {
	if qty == 0 {
		qty = p.Step(prod)
	}
	if !p.validQuantity(prod, qty) {
		return domainerrors.ErrInvalidQuantity
	}
	if biz := c.BusinessID(); biz != "" && prod.BusinessID != biz {
		return domainerrors.ErrMixedBusinesses
	}

	if i := c.find(prod.ID); i >= 0 {
		c.Items[i].Quantity += qty
		c.Items[i].Product = prod
		return nil
	}

	c.Items = append(c.Items, Item{Product: prod, Quantity: qty, ByWeight: p.SoldByWeight(prod)})
	return nil
}

// Increment adds one step to a line.
func (p Policy) Increment(c *Cart, productID string) error {
	i := c.find(productID)
	if i < 0 {
		return domainerrors.ErrCartItemNotFound
	}
	c.Items[i].Quantity += p.Step(c.Items[i].Product)
	return nil
}

// Decrement removes one step from a line. At the minimum step the line is
// removed instead, which is reported by the returned bool.
func (p Policy) Decrement(c *Cart, productID string) (bool, error) {
	i := c.find(productID)
	if i < 0 {
		return false, domainerrors.ErrCartItemNotFound
	}

	step := p.Step(c.Items[i].Product)
	if c.Items[i].Quantity <= step {
		c.Items = append(c.Items[:i], c.Items[i+1:]...)
		return true, nil
	}
	c.Items[i].Quantity -= step
	return false, nil
}

// SetQuantity replaces the quantity of a line.
func (p Policy) SetQuantity(c *Cart, productID string, qty int) error {
	i := c.find(productID)
	if i < 0 {
		return domainerrors.ErrCartItemNotFound
	}
	if !p.validQuantity(c.Items[i].Product, qty) {
		return domainerrors.ErrInvalidQuantity
	}
	c.Items[i].Quantity = qty
	return nil
}

// Remove deletes a line.
func (c *Cart) Remove(productID string) error {
	i := c.find(productID)
	if i < 0 {
		return domainerrors.ErrCartItemNotFound
	}
	c.Items = append(c.Items[:i], c.Items[i+1:]...)
	return nil
}

// Clear empties the cart, including coupon and tip.
func (c *Cart) Clear() {
	c.Items = nil
	c.Coupon = nil
	c.Tip = decimal.Zero
}
