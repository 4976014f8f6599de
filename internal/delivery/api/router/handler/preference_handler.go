package handler

import (
	"log/slog"
	"net/http"

	"marketmap/internal/delivery/api/response"
	"marketmap/internal/domain/entity"
	"marketmap/internal/usecase"

	"github.com/labstack/echo/v4"
	"go.uber.org/fx"
)

// PreferenceHandlerParams holds dependencies for PreferenceHandler, injected by Fx.
type PreferenceHandlerParams struct {
	fx.In

	PreferenceUC usecase.PreferenceUsecase
	Logger       *slog.Logger
}

// PreferenceHandler serves the saved address and favorites
type PreferenceHandler struct {
	preferenceUC usecase.PreferenceUsecase
	logger       *slog.Logger
}

// NewPreferenceHandler is the constructor for PreferenceHandler
func NewPreferenceHandler(params PreferenceHandlerParams) *PreferenceHandler {
	return &PreferenceHandler{
		preferenceUC: params.PreferenceUC,
		logger:       params.Logger,
	}
}

// GetAddress handles GET /preferences/:owner/address
func (h *PreferenceHandler) GetAddress(c echo.Context) error {
	address, err := h.preferenceUC.GetAddress(c.Request().Context(), c.Param("owner"))
	if err != nil {
		return err
	}
	if address == nil {
		return c.NoContent(http.StatusNoContent)
	}

	return response.OK(c, address)
}

// SetAddress handles PUT /preferences/:owner/address
func (h *PreferenceHandler) SetAddress(c echo.Context) error {
	var req entity.Address
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, "Invalid address input")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	address, err := h.preferenceUC.SetAddress(c.Request().Context(), c.Param("owner"), &req)
	if err != nil {
		return err
	}

	return response.OK(c, address)
}

// Favorites handles GET /preferences/:owner/favorites
func (h *PreferenceHandler) Favorites(c echo.Context) error {
	favorites, err := h.preferenceUC.Favorites(c.Request().Context(), c.Param("owner"))
	if err != nil {
		return err
	}

	return response.OK(c, favorites)
}

// ToggleFavorite handles POST /preferences/:owner/favorites/:businessId
func (h *PreferenceHandler) ToggleFavorite(c echo.Context) error {
	toggle, err := h.preferenceUC.ToggleFavorite(c.Request().Context(), c.Param("owner"), c.Param("businessId"))
	if err != nil {
		return err
	}

	return response.OK(c, toggle)
}
