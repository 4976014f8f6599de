package handler

import (
	"net/http"
	"strconv"
	"strings"

	domainerrors "marketmap/internal/domain/errors"
	"marketmap/internal/domain/service"

	"github.com/labstack/echo/v4"
	"github.com/paulmach/orb/maptile"
	"go.uber.org/fx"
)

const maxTileZoom = 22

// TileHandlerParams holds dependencies for TileHandler, injected by Fx.
type TileHandlerParams struct {
	fx.In

	Tiles service.TileSource
}

// TileHandler serves base map tiles
type TileHandler struct {
	tiles service.TileSource
}

// NewTileHandler is the constructor for TileHandler
func NewTileHandler(params TileHandlerParams) *TileHandler {
	return &TileHandler{tiles: params.Tiles}
}

// GetTile handles GET /tiles/:z/:x/:y
func (h *TileHandler) GetTile(c echo.Context) error {
	t, err := parseTile(c)
	if err != nil {
		return err
	}

	tile, err := h.tiles.Tile(c.Request().Context(), t)
	if err != nil {
		return err
	}

	contentType := "application/octet-stream"
	for k, v := range tile.Headers {
		if strings.EqualFold(k, echo.HeaderContentType) {
			contentType = v
			continue
		}
		c.Response().Header().Set(k, v)
	}

	return c.Blob(http.StatusOK, contentType, tile.Data)
}

// parseTile reads :z/:x/:y. The y segment may carry a file extension.
func parseTile(c echo.Context) (maptile.Tile, error) {
	rawY := c.Param("y")
	if i := strings.IndexByte(rawY, '.'); i >= 0 {
		rawY = rawY[:i]
	}

	z, errZ := strconv.ParseUint(c.Param("z"), 10, 32)
	x, errX := strconv.ParseUint(c.Param("x"), 10, 32)
	y, errY := strconv.ParseUint(rawY, 10, 32)
	if errZ != nil || errX != nil || errY != nil || z > maxTileZoom {
		return maptile.Tile{}, domainerrors.ErrTileNotFound.WithDetails(c.Request().URL.Path)
	}

	t := maptile.New(uint32(x), uint32(y), maptile.Zoom(z))
	if !t.Valid() {
		return maptile.Tile{}, domainerrors.ErrTileNotFound.WithDetails(c.Request().URL.Path)
	}

	return t, nil
}
