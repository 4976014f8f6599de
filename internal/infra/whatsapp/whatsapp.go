// Package whatsapp builds wa.me order deep links.
package whatsapp

import (
	"fmt"
	"net/url"
	"strings"

	"marketmap/config"
	"marketmap/internal/cart"
	"marketmap/internal/domain/entity"

	"github.com/pkg/errors"
)

const linkBase = "https://wa.me/"

var errPhoneRequired = errors.New("whatsapp phone number is required")

// Order is everything an order message mentions.
type Order struct {
	Business entity.Business
	Cart     *cart.Cart
	Totals   cart.Totals
	Address  *entity.Address
	Currency string
}

// Builder formats order messages and wraps them in deep links.
type Builder struct {
	fallbackPhone string
	currency      string
}

// NewBuilder returns a builder that uses fallbackPhone when a business has none.
func NewBuilder(fallbackPhone, currency string) *Builder {
	return &Builder{fallbackPhone: fallbackPhone, currency: currency}
}

// New is the fx constructor.
func New(cfg *config.Config) *Builder {
	return NewBuilder(cfg.WhatsApp.Phone, cfg.Cart.Currency)
}

// Link returns https://wa.me/<digits>?text=<message>.
func Link(phone, message string) (string, error) {
	digits := DigitsOnly(phone)
	if digits == "" {
		return "", errPhoneRequired
	}

	link := linkBase + digits
	if message != "" {
		link += "?text=" + url.QueryEscape(message)
	}

	return link, nil
}

// DigitsOnly strips everything but ASCII digits, as wa.me expects.
func DigitsOnly(phone string) string {
	var b strings.Builder
	for _, r := range phone {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// OrderLink renders the order and links it to the business phone.
func (b *Builder) OrderLink(order Order) (link, message string, err error) {
	phone := order.Business.Phone
	if DigitsOnly(phone) == "" {
		phone = b.fallbackPhone
	}

	message = b.Message(order)
	link, err = Link(phone, message)
	if err != nil {
		return "", "", errors.WithMessagef(err, "business %s", order.Business.ID)
	}

	return link, message, nil
}

// Message formats the order as a WhatsApp text using *bold* markup.
func (b *Builder) Message(order Order) string {
	currency := order.Currency
	if currency == "" {
		currency = b.currency
	}
	money := func(label string, amount interface{ StringFixed(int32) string }) string {
		return fmt.Sprintf("%s: $%s %s\n", label, amount.StringFixed(2), currency)
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "*New order for %s*\n\n", order.Business.Name)

	if order.Cart != nil {
		for _, it := range order.Cart.Items {
			fmt.Fprintf(&sb, "- %s x %s: $%s\n",
				cart.QuantityLabel(it), it.Product.Name, cart.LineTotal(it).StringFixed(2))
		}
		if order.Cart.Coupon != nil && order.Totals.Discount.IsPositive() {
			fmt.Fprintf(&sb, "\nCoupon: %s\n", order.Cart.Coupon.Code)
		}
	}

	sb.WriteString("\n")
	sb.WriteString(money("Subtotal", order.Totals.Subtotal))
	if order.Totals.Discount.IsPositive() {
		sb.WriteString(money("Discount", order.Totals.Discount.Neg()))
	}
	if order.Totals.Tip.IsPositive() {
		sb.WriteString(money("Tip", order.Totals.Tip))
	}
	sb.WriteString(money("Delivery", order.Totals.DeliveryFee))
	sb.WriteString(money("*Total*", order.Totals.Total))

	if a := order.Address; a != nil {
		sb.WriteString("\n*Deliver to*\n")
		if a.Label != "" {
			fmt.Fprintf(&sb, "%s: ", a.Label)
		}
		sb.WriteString(a.FullAddress)
		sb.WriteString("\n")
		if a.Reference != "" {
			fmt.Fprintf(&sb, "Reference: %s\n", a.Reference)
		}
		if a.Latitude != 0 || a.Longitude != 0 {
			fmt.Fprintf(&sb, "https://maps.google.com/?q=%.6f,%.6f\n", a.Latitude, a.Longitude)
		}
	}

	return strings.TrimRight(sb.String(), "\n")
}
