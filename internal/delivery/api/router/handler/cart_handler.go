package handler

import (
	"log/slog"
	"net/http"

	"marketmap/internal/delivery/api/response"
	"marketmap/internal/usecase"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"go.uber.org/fx"
)

// CartHandlerParams holds dependencies for CartHandler, injected by Fx.
type CartHandlerParams struct {
	fx.In

	CartUC usecase.CartUsecase
	Logger *slog.Logger
}

// CartHandler serves the per-owner cart
type CartHandler struct {
	cartUC usecase.CartUsecase
	logger *slog.Logger
}

// NewCartHandler is the constructor for CartHandler
func NewCartHandler(params CartHandlerParams) *CartHandler {
	return &CartHandler{
		cartUC: params.CartUC,
		logger: params.Logger,
	}
}

// QuantityRequest replaces a line quantity
type QuantityRequest struct {
	Quantity int `json:"quantity" validate:"gt=0"`
}

// CouponRequest applies a coupon; an empty code removes it
type CouponRequest struct {
	Code string `json:"code" validate:"max=64"`
}

// TipRequest sets the tip
type TipRequest struct {
	Tip decimal.Decimal `json:"tip"`
}

// GetCart handles GET /cart/:owner
func (h *CartHandler) GetCart(c echo.Context) error {
	view, err := h.cartUC.GetCart(c.Request().Context(), c.Param("owner"))
	if err != nil {
		return err
	}

	return response.OK(c, view)
}

// AddItem handles POST /cart/:owner/items
func (h *CartHandler) AddItem(c echo.Context) error {
	var req usecase.AddItemInput
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, "Invalid cart item input")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	view, err := h.cartUC.AddItem(c.Request().Context(), c.Param("owner"), &req)
	if err != nil {
		return err
	}

	return response.Success(c, http.StatusCreated, view)
}

// Increment handles POST /cart/:owner/items/:productId/increment
func (h *CartHandler) Increment(c echo.Context) error {
	view, err := h.cartUC.Increment(c.Request().Context(), c.Param("owner"), c.Param("productId"))
	if err != nil {
		return err
	}

	return response.OK(c, view)
}

// Decrement handles POST /cart/:owner/items/:productId/decrement
func (h *CartHandler) Decrement(c echo.Context) error {
	view, err := h.cartUC.Decrement(c.Request().Context(), c.Param("owner"), c.Param("productId"))
	if err != nil {
		return err
	}

	return response.OK(c, view)
}

// SetQuantity handles PUT /cart/:owner/items/:productId
func (h *CartHandler) SetQuantity(c echo.Context) error {
	var req QuantityRequest
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, "Invalid quantity input")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	view, err := h.cartUC.SetQuantity(c.Request().Context(), c.Param("owner"), c.Param("productId"), req.Quantity)
	if err != nil {
		return err
	}

	return response.OK(c, view)
}

// RemoveItem handles DELETE /cart/:owner/items/:productId
func (h *CartHandler) RemoveItem(c echo.Context) error {
	view, err := h.cartUC.RemoveItem(c.Request().Context(), c.Param("owner"), c.Param("productId"))
	if err != nil {
		return err
	}

	return response.OK(c, view)
}

// Clear handles DELETE /cart/:owner
func (h *CartHandler) Clear(c echo.Context) error {
	if err := h.cartUC.Clear(c.Request().Context(), c.Param("owner")); err != nil {
		return err
	}

	return c.NoContent(http.StatusNoContent)
}

// ApplyCoupon handles PUT /cart/:owner/coupon
func (h *CartHandler) ApplyCoupon(c echo.Context) error {
	var req CouponRequest
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, "Invalid coupon input")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	view, err := h.cartUC.ApplyCoupon(c.Request().Context(), c.Param("owner"), req.Code)
	if err != nil {
		return err
	}

	return response.OK(c, view)
}

// SetTip handles PUT /cart/:owner/tip
func (h *CartHandler) SetTip(c echo.Context) error {
	var req TipRequest
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, "Invalid tip input")
	}

	view, err := h.cartUC.SetTip(c.Request().Context(), c.Param("owner"), req.Tip)
	if err != nil {
		return err
	}

	return response.OK(c, view)
}
