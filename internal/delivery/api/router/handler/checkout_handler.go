package handler

import (
	"log/slog"

	"marketmap/internal/delivery/api/response"
	"marketmap/internal/usecase"

	"github.com/labstack/echo/v4"
	"go.uber.org/fx"
)

// CheckoutHandlerParams holds dependencies for CheckoutHandler, injected by Fx.
type CheckoutHandlerParams struct {
	fx.In

	CheckoutUC usecase.CheckoutUsecase
	Logger     *slog.Logger
}

// CheckoutHandler serves order handoffs
type CheckoutHandler struct {
	checkoutUC usecase.CheckoutUsecase
	logger     *slog.Logger
}

// NewCheckoutHandler is the constructor for CheckoutHandler
func NewCheckoutHandler(params CheckoutHandlerParams) *CheckoutHandler {
	return &CheckoutHandler{
		checkoutUC: params.CheckoutUC,
		logger:     params.Logger,
	}
}

// WhatsApp handles POST /checkout/:owner/whatsapp
func (h *CheckoutHandler) WhatsApp(c echo.Context) error {
	var req usecase.CheckoutInput
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, "Invalid checkout input")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	result, err := h.checkoutUC.WhatsApp(c.Request().Context(), c.Param("owner"), &req)
	if err != nil {
		return err
	}

	return response.OK(c, result)
}
