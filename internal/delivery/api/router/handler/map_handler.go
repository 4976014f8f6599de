package handler

import (
	"log/slog"
	"net/http"
	"strconv"

	"marketmap/internal/delivery/api/response"
	"marketmap/internal/domain/entity"
	domainerrors "marketmap/internal/domain/errors"
	"marketmap/internal/usecase"

	"github.com/labstack/echo/v4"
	"go.uber.org/fx"
)

const contentTypeMVT = "application/vnd.mapbox-vector-tile"

// MapHandlerParams holds dependencies for MapHandler, injected by Fx.
type MapHandlerParams struct {
	fx.In

	MapUC  usecase.MapUsecase
	Logger *slog.Logger
}

// MapHandler serves map sessions
type MapHandler struct {
	mapUC  usecase.MapUsecase
	logger *slog.Logger
}

// NewMapHandler is the constructor for MapHandler
func NewMapHandler(params MapHandlerParams) *MapHandler {
	return &MapHandler{
		mapUC:  params.MapUC,
		logger: params.Logger,
	}
}

// CreateSessionRequest opens a map session
type CreateSessionRequest struct {
	Type     string   `json:"type" validate:"required,oneof=food store shipping"`
	Category string   `json:"category"`
	Width    int      `json:"width" validate:"gte=0,lte=8192"`
	Height   int      `json:"height" validate:"gte=0,lte=8192"`
	Lat      *float64 `json:"lat" validate:"omitempty,gte=-90,lte=90"`
	Lng      *float64 `json:"lng" validate:"omitempty,gte=-180,lte=180"`
	Zoom     *int     `json:"zoom" validate:"omitempty,gte=0,lte=22"`
	// Locate recenters on the caller's position once it resolves
	Locate bool `json:"locate"`
}

// MoveRequest is a user pan or zoom
type MoveRequest struct {
	West  float64 `json:"west" validate:"gte=-180,lte=180"`
	South float64 `json:"south" validate:"gte=-90,lte=90"`
	East  float64 `json:"east" validate:"gte=-180,lte=180"`
	North float64 `json:"north" validate:"gte=-90,lte=90"`
	Zoom  int     `json:"zoom" validate:"gte=0,lte=22"`
	// Flush settles the move immediately instead of after the debounce
	Flush bool `json:"flush"`
}

// FilterRequest changes the vertical or category
type FilterRequest struct {
	Type     *string `json:"type" validate:"omitempty,oneof=food store shipping"`
	Category *string `json:"category"`
}

// RecenterResponse is the snapshot after a recenter
type RecenterResponse struct {
	*SnapshotResponse
	Located bool `json:"located"`
}

// CreateSession handles POST /map/sessions
func (h *MapHandler) CreateSession(c echo.Context) error {
	var req CreateSessionRequest
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, "Invalid session input")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	snap, err := h.mapUC.CreateSession(c.Request().Context(), &usecase.CreateSessionInput{
		Type:     entity.BusinessType(req.Type),
		Category: req.Category,
		Width:    req.Width,
		Height:   req.Height,
		Lat:      req.Lat,
		Lng:      req.Lng,
		Zoom:     req.Zoom,
		Locate:   req.Locate,
	})
	if err != nil {
		return err
	}

	return response.Success(c, http.StatusCreated, newSnapshotResponse(snap))
}

// GetSession handles GET /map/sessions/:id
func (h *MapHandler) GetSession(c echo.Context) error {
	snap, err := h.mapUC.GetSession(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}

	return response.OK(c, newSnapshotResponse(snap))
}

// DeleteSession handles DELETE /map/sessions/:id
func (h *MapHandler) DeleteSession(c echo.Context) error {
	if err := h.mapUC.DeleteSession(c.Request().Context(), c.Param("id")); err != nil {
		return err
	}

	return c.NoContent(http.StatusNoContent)
}

// Move handles PUT /map/sessions/:id/viewport
func (h *MapHandler) Move(c echo.Context) error {
	var req MoveRequest
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, "Invalid viewport input")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	snap, err := h.mapUC.Move(c.Request().Context(), c.Param("id"), &usecase.MoveInput{
		West:  req.West,
		South: req.South,
		East:  req.East,
		North: req.North,
		Zoom:  req.Zoom,
		Flush: req.Flush,
	})
	if err != nil {
		return err
	}

	return response.OK(c, newSnapshotResponse(snap))
}

// Recenter handles POST /map/sessions/:id/recenter
func (h *MapHandler) Recenter(c echo.Context) error {
	result, err := h.mapUC.Recenter(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}

	return response.OK(c, RecenterResponse{
		SnapshotResponse: newSnapshotResponse(result.Snapshot),
		Located:          result.Located,
	})
}

// SetFilter handles PUT /map/sessions/:id/filter
func (h *MapHandler) SetFilter(c echo.Context) error {
	var req FilterRequest
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, "Invalid filter input")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	input := &usecase.FilterInput{Category: req.Category}
	if req.Type != nil {
		t := entity.BusinessType(*req.Type)
		input.Type = &t
	}

	snap, err := h.mapUC.SetFilter(c.Request().Context(), c.Param("id"), input)
	if err != nil {
		return err
	}

	return response.OK(c, newSnapshotResponse(snap))
}

// ClickMarker handles POST /map/sessions/:id/markers/:markerId/click
func (h *MapHandler) ClickMarker(c echo.Context) error {
	snap, err := h.mapUC.Click(c.Request().Context(), c.Param("id"), c.Param("markerId"))
	if err != nil {
		return err
	}

	return response.OK(c, newSnapshotResponse(snap))
}

// SelectBusiness handles POST /map/sessions/:id/businesses/:businessId/select
func (h *MapHandler) SelectBusiness(c echo.Context) error {
	snap, err := h.mapUC.SelectBusiness(c.Request().Context(), c.Param("id"), c.Param("businessId"))
	if err != nil {
		return err
	}

	return response.OK(c, newSnapshotResponse(snap))
}

// CloseSelection handles DELETE /map/sessions/:id/selection
func (h *MapHandler) CloseSelection(c echo.Context) error {
	snap, err := h.mapUC.CloseSelection(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}

	return response.OK(c, newSnapshotResponse(snap))
}

// ClusterLeaves handles GET /map/sessions/:id/clusters/:clusterId/leaves
func (h *MapHandler) ClusterLeaves(c echo.Context) error {
	clusterID, err := strconv.Atoi(c.Param("clusterId"))
	if err != nil {
		return domainerrors.ErrClusterNotFound.WithDetails(c.Param("clusterId"))
	}

	leaves, err := h.mapUC.Leaves(c.Request().Context(), c.Param("id"), clusterID)
	if err != nil {
		return err
	}

	return response.OK(c, LeavesResponse{
		ClusterID:     leaves.ClusterID,
		ExpansionZoom: leaves.ExpansionZoom,
		Leaves:        newLeafResponses(leaves.Points),
	})
}

// MarkerTile handles GET /map/sessions/:id/tiles/:z/:x/:y
func (h *MapHandler) MarkerTile(c echo.Context) error {
	t, err := parseTile(c)
	if err != nil {
		return err
	}

	data, err := h.mapUC.MarkerTile(c.Request().Context(), c.Param("id"), t)
	if err != nil {
		return err
	}

	c.Response().Header().Set(echo.HeaderContentEncoding, "gzip")
	c.Response().Header().Set(echo.HeaderCacheControl, "no-store")

	return c.Blob(http.StatusOK, contentTypeMVT, data)
}
