package impl

import (
	"context"
	"log/slog"
	"strings"

	"marketmap/config"
	"marketmap/internal/cart"
	"marketmap/internal/domain/constants"
	domainerrors "marketmap/internal/domain/errors"
	"marketmap/internal/domain/repository"
	"marketmap/internal/domain/service"
	"marketmap/internal/usecase"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"go.uber.org/fx"
)

// cartService implements the CartUsecase interface.
type cartService struct {
	preferences repository.PreferenceRepository
	coupons     service.CouponDirectory
	policy      cart.Policy
	deliveryFee decimal.Decimal
	currency    string
	logger      *slog.Logger
}

// CartServiceParams holds dependencies for CartService, injected by Fx
type CartServiceParams struct {
	fx.In

	Config      *config.Config
	Preferences repository.PreferenceRepository
	Coupons     service.CouponDirectory
	Logger      *slog.Logger
}

// NewCartService is the constructor for cartService.
func NewCartService(params CartServiceParams) (usecase.CartUsecase, error) {
	return newCartService(params.Preferences, params.Coupons, params.Config.Cart, params.Logger)
}

func newCartService(
	preferences repository.PreferenceRepository,
	coupons service.CouponDirectory,
	cfg *config.CartConfig,
	logger *slog.Logger,
) (*cartService, error) {
	fee := decimal.Zero
	if cfg.DeliveryFee != "" {
		parsed, err := decimal.NewFromString(cfg.DeliveryFee)
		if err != nil {
			return nil, errors.Wrapf(err, "invalid cart delivery fee %q", cfg.DeliveryFee)
		}
		fee = parsed
	}

	return &cartService{
		preferences: preferences,
		coupons:     coupons,
		policy:      cart.NewPolicy(cfg.GramStep, cfg.WeightCategories),
		deliveryFee: fee,
		currency:    cfg.Currency,
		logger:      logger,
	}, nil
}

func (srv *cartService) load(ctx context.Context, owner string) (*cart.Cart, error) {
	var c cart.Cart
	if _, err := srv.preferences.Get(ctx, owner, constants.PreferenceCart, &c); err != nil {
		return nil, errors.Wrap(err, "failed to load cart")
	}

	return &c, nil
}

func (srv *cartService) save(ctx context.Context, owner string, c *cart.Cart) error {
	if err := srv.preferences.Put(ctx, owner, constants.PreferenceCart, c); err != nil {
		return errors.Wrap(err, "failed to save cart")
	}

	return nil
}

// mutate loads the cart, applies fn and persists the result.
func (srv *cartService) mutate(ctx context.Context, owner string, fn func(c *cart.Cart) error) (*cart.Cart, error) {
	c, err := srv.load(ctx, owner)
	if err != nil {
		return nil, err
	}
	if err := fn(c); err != nil {
		return nil, err
	}
	if err := srv.save(ctx, owner, c); err != nil {
		return nil, err
	}

	return c, nil
}

func (srv *cartService) view(c *cart.Cart) *usecase.CartView {
	lines := make([]usecase.CartLine, 0, len(c.Items))
	for _, it := range c.Items {
		lines = append(lines, usecase.CartLine{
			Item:      it,
			Label:     cart.QuantityLabel(it),
			LineTotal: cart.LineTotal(it),
		})
	}

	return &usecase.CartView{
		BusinessID: c.BusinessID(),
		Lines:      lines,
		Coupon:     c.Coupon,
		Totals:     cart.Price(c, srv.deliveryFee),
		Currency:   srv.currency,
	}
}

// GetCart returns the persisted cart with its totals.
func (srv *cartService) GetCart(ctx context.Context, owner string) (*usecase.CartView, error) {
	c, err := srv.load(ctx, owner)
	if err != nil {
		return nil, err
	}

	return srv.view(c), nil
}

// AddItem puts a product in the cart.
func (srv *cartService) AddItem(ctx context.Context, owner string, input *usecase.AddItemInput) (*usecase.CartView, error) {
	c, err := srv.mutate(ctx, owner, func(c *cart.Cart) error {
		return srv.policy.Add(c, input.Product, input.Quantity)
	})
	if err != nil {
		return nil, err
	}

	srv.logger.DebugContext(ctx, "Cart item added",
		slog.String("owner", owner),
		slog.String("product_id", input.Product.ID),
		slog.Int("quantity", input.Quantity),
	)

	return srv.view(c), nil
}

// Increment adds one step to a line.
func (srv *cartService) Increment(ctx context.Context, owner, productID string) (*usecase.CartView, error) {
	c, err := srv.mutate(ctx, owner, func(c *cart.Cart) error {
		return srv.policy.Increment(c, productID)
	})
	if err != nil {
		return nil, err
	}

	return srv.view(c), nil
}

// Decrement removes one step from a line, dropping it at the minimum step.
func (srv *cartService) Decrement(ctx context.Context, owner, productID string) (*usecase.CartView, error) {
	var removed bool
	c, err := srv.mutate(ctx, owner, func(c *cart.Cart) error {
		var err error
		removed, err = srv.policy.Decrement(c, productID)
		return err
	})
	if err != nil {
		return nil, err
	}

	view := srv.view(c)
	view.Removed = removed

	return view, nil
}

// SetQuantity replaces the quantity of a line.
func (srv *cartService) SetQuantity(ctx context.Context, owner, productID string, quantity int) (*usecase.CartView, error) {
	c, err := srv.mutate(ctx, owner, func(c *cart.Cart) error {
		return srv.policy.SetQuantity(c, productID, quantity)
	})
	if err != nil {
		return nil, err
	}

	return srv.view(c), nil
}

// RemoveItem deletes a line.
func (srv *cartService) RemoveItem(ctx context.Context, owner, productID string) (*usecase.CartView, error) {
	c, err := srv.mutate(ctx, owner, func(c *cart.Cart) error {
		return c.Remove(productID)
	})
	if err != nil {
		return nil, err
	}

	return srv.view(c), nil
}

// Clear empties the cart and forgets the applied coupon.
func (srv *cartService) Clear(ctx context.Context, owner string) error {
	if _, err := srv.mutate(ctx, owner, func(c *cart.Cart) error {
		c.Clear()
		return nil
	}); err != nil {
		return err
	}

	if err := srv.preferences.Delete(ctx, owner, constants.PreferenceAppliedCoupon); err != nil {
		return errors.Wrap(err, "failed to clear applied coupon")
	}

	srv.logger.DebugContext(ctx, "Cart cleared", slog.String("owner", owner))

	return nil
}

// ApplyCoupon validates code with the backend against the current subtotal.
// An empty code removes the coupon.
func (srv *cartService) ApplyCoupon(ctx context.Context, owner, code string) (*usecase.CartView, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		c, err := srv.mutate(ctx, owner, func(c *cart.Cart) error {
			c.Coupon = nil
			return nil
		})
		if err != nil {
			return nil, err
		}
		if err := srv.preferences.Delete(ctx, owner, constants.PreferenceAppliedCoupon); err != nil {
			return nil, errors.Wrap(err, "failed to clear applied coupon")
		}

		return srv.view(c), nil
	}

	c, err := srv.load(ctx, owner)
	if err != nil {
		return nil, err
	}
	if c.IsEmpty() {
		return nil, domainerrors.ErrCartEmpty
	}

	coupon, err := srv.coupons.FindCoupon(ctx, code)
	if err != nil {
		return nil, err
	}
	if err := cart.ValidateCoupon(coupon, cart.Subtotal(c)); err != nil {
		return nil, err
	}

	c.Coupon = coupon
	if err := srv.save(ctx, owner, c); err != nil {
		return nil, err
	}
	if err := srv.preferences.Put(ctx, owner, constants.PreferenceAppliedCoupon, coupon.Code); err != nil {
		return nil, errors.Wrap(err, "failed to save applied coupon")
	}

	srv.logger.InfoContext(ctx, "Coupon applied",
		slog.String("owner", owner),
		slog.String("code", coupon.Code),
	)

	return srv.view(c), nil
}

// SetTip sets the tip. Negative tips are rejected.
func (srv *cartService) SetTip(ctx context.Context, owner string, tip decimal.Decimal) (*usecase.CartView, error) {
	if tip.IsNegative() {
		return nil, domainerrors.ErrValidationFailed.WithDetails("tip must not be negative")
	}

	c, err := srv.mutate(ctx, owner, func(c *cart.Cart) error {
		c.Tip = tip.Round(2)
		return nil
	})
	if err != nil {
		return nil, err
	}

	return srv.view(c), nil
}
