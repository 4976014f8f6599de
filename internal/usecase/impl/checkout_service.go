package impl

import (
	"context"
	"encoding/base64"
	"log/slog"

	"marketmap/config"
	"marketmap/internal/cart"
	"marketmap/internal/domain/constants"
	"marketmap/internal/domain/entity"
	domainerrors "marketmap/internal/domain/errors"
	"marketmap/internal/domain/repository"
	"marketmap/internal/domain/service"
	"marketmap/internal/infra/metrics"
	"marketmap/internal/infra/whatsapp"
	"marketmap/internal/usecase"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"go.uber.org/fx"
	"golang.org/x/sync/errgroup"
)

// checkoutService implements the CheckoutUsecase interface.
type checkoutService struct {
	preferences repository.PreferenceRepository
	directory   service.BusinessDirectory
	qrcode      service.QRCodeService
	builder     *whatsapp.Builder
	deliveryFee decimal.Decimal
	currency    string
	logger      *slog.Logger
	metrics     *metrics.Metrics
}

// CheckoutServiceParams holds dependencies for CheckoutService, injected by Fx
type CheckoutServiceParams struct {
	fx.In

	Config      *config.Config
	Preferences repository.PreferenceRepository
	Directory   service.BusinessDirectory
	QRCode      service.QRCodeService
	Builder     *whatsapp.Builder
	Logger      *slog.Logger
	Metrics     *metrics.Metrics `optional:"true"`
}

// NewCheckoutService is the constructor for checkoutService.
func NewCheckoutService(params CheckoutServiceParams) (usecase.CheckoutUsecase, error) {
	fee := decimal.Zero
	if raw := params.Config.Cart.DeliveryFee; raw != "" {
		parsed, err := decimal.NewFromString(raw)
		if err != nil {
			return nil, errors.Wrapf(err, "invalid cart delivery fee %q", raw)
		}
		fee = parsed
	}

	return &checkoutService{
		preferences: params.Preferences,
		directory:   params.Directory,
		qrcode:      params.QRCode,
		builder:     params.Builder,
		deliveryFee: fee,
		currency:    params.Config.Cart.Currency,
		logger:      params.Logger,
		metrics:     params.Metrics,
	}, nil
}

// WhatsApp prices the owner's cart and returns a wa.me link carrying the order.
// The cart, the saved address and (when input names it) the business are
// fetched concurrently.
func (srv *checkoutService) WhatsApp(ctx context.Context, owner string, input *usecase.CheckoutInput) (*usecase.CheckoutResult, error) {
	var (
		c        cart.Cart
		address  = input.Address
		business *entity.Business
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		_, err := srv.preferences.Get(gctx, owner, constants.PreferenceCart, &c)
		return errors.Wrap(err, "failed to load cart")
	})
	if address == nil {
		g.Go(func() error {
			var saved entity.Address
			found, err := srv.preferences.Get(gctx, owner, constants.PreferenceSelectedAddress, &saved)
			if err != nil {
				return errors.Wrap(err, "failed to load address")
			}
			if found {
				address = &saved
			}
			return nil
		})
	}
	if input.BusinessID != "" {
		g.Go(func() error {
			var err error
			business, err = srv.directory.Get(gctx, input.BusinessID)
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if c.IsEmpty() {
		return nil, domainerrors.ErrCartEmpty
	}
	if input.BusinessID != "" && input.BusinessID != c.BusinessID() {
		return nil, domainerrors.ErrMixedBusinesses.WithDetails("cart belongs to another business")
	}
	if business == nil {
		var err error
		if business, err = srv.directory.Get(ctx, c.BusinessID()); err != nil {
			return nil, err
		}
	}

	fee := srv.deliveryFee
	if business.DeliveryCost > 0 {
		fee = decimal.NewFromFloat(business.DeliveryCost)
	}
	totals := cart.Price(&c, fee)

	if business.MinimumOrder > 0 {
		minimum := decimal.NewFromFloat(business.MinimumOrder)
		if totals.Subtotal.LessThan(minimum) {
			return nil, domainerrors.ErrBelowMinimumOrder.WithDetails("minimum order is " + minimum.StringFixed(2))
		}
	}

	link, message, err := srv.builder.OrderLink(whatsapp.Order{
		Business: *business,
		Cart:     &c,
		Totals:   totals,
		Address:  address,
		Currency: srv.currency,
	})
	if err != nil {
		return nil, domainerrors.ErrValidationFailed.WithDetails(err.Error())
	}

	result := &usecase.CheckoutResult{
		Link:     link,
		Message:  message,
		Business: *business,
		Address:  address,
		Totals:   totals,
	}

	if input.QR {
		png, err := srv.qrcode.Encode(link)
		if err != nil {
			srv.logger.WarnContext(ctx, "Order QR code not rendered",
				slog.String("business_id", business.ID),
				slog.Any("error", err),
			)
		} else {
			result.QRCode = base64.StdEncoding.EncodeToString(png)
		}
	}

	srv.metrics.Checkout()
	srv.logger.InfoContext(ctx, "WhatsApp checkout link built",
		slog.String("owner", owner),
		slog.String("business_id", business.ID),
		slog.String("total", totals.Total.StringFixed(2)),
	)

	return result, nil
}
