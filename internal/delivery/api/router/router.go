// Package router contains routing and server setup for the HTTP delivery.
package router

import (
	"marketmap/internal/delivery/api/router/handler"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/fx"
)

type RouterParams struct {
	fx.In

	MapHandler        *handler.MapHandler
	CartHandler       *handler.CartHandler
	PreferenceHandler *handler.PreferenceHandler
	CheckoutHandler   *handler.CheckoutHandler
	TileHandler       *handler.TileHandler
	Gatherer          prometheus.Gatherer `optional:"true"`
}

// router holds all the handlers that need to be registered.
type router struct {
	mapHandler        *handler.MapHandler
	cartHandler       *handler.CartHandler
	preferenceHandler *handler.PreferenceHandler
	checkoutHandler   *handler.CheckoutHandler
	tileHandler       *handler.TileHandler
	gatherer          prometheus.Gatherer
}

// NewRouter is the constructor for the Router.
// Fx will inject the required handlers here.
func NewRouter(params RouterParams) *router {
	return &router{
		mapHandler:        params.MapHandler,
		cartHandler:       params.CartHandler,
		preferenceHandler: params.PreferenceHandler,
		checkoutHandler:   params.CheckoutHandler,
		tileHandler:       params.TileHandler,
		gatherer:          params.Gatherer,
	}
}

// RegisterRoutes sets up all the API routes for the application.
func (r *router) RegisterRoutes(e *echo.Echo) {
	e.GET("/health", handler.HealthCheck)

	if r.gatherer != nil {
		e.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(r.gatherer, promhttp.HandlerOpts{})))
	}

	sessions := e.Group("/map/sessions")
	{
		sessions.POST("", r.mapHandler.CreateSession)
		sessions.GET("/:id", r.mapHandler.GetSession)
		sessions.DELETE("/:id", r.mapHandler.DeleteSession)
		sessions.PUT("/:id/viewport", r.mapHandler.Move)
		sessions.POST("/:id/recenter", r.mapHandler.Recenter)
		sessions.PUT("/:id/filter", r.mapHandler.SetFilter)
		sessions.POST("/:id/markers/:markerId/click", r.mapHandler.ClickMarker)
		sessions.POST("/:id/businesses/:businessId/select", r.mapHandler.SelectBusiness)
		sessions.DELETE("/:id/selection", r.mapHandler.CloseSelection)
		sessions.GET("/:id/clusters/:clusterId/leaves", r.mapHandler.ClusterLeaves)
		sessions.GET("/:id/tiles/:z/:x/:y", r.mapHandler.MarkerTile)
	}

	carts := e.Group("/cart/:owner")
	{
		carts.GET("", r.cartHandler.GetCart)
		carts.DELETE("", r.cartHandler.Clear)
		carts.POST("/items", r.cartHandler.AddItem)
		carts.PUT("/items/:productId", r.cartHandler.SetQuantity)
		carts.DELETE("/items/:productId", r.cartHandler.RemoveItem)
		carts.POST("/items/:productId/increment", r.cartHandler.Increment)
		carts.POST("/items/:productId/decrement", r.cartHandler.Decrement)
		carts.PUT("/coupon", r.cartHandler.ApplyCoupon)
		carts.PUT("/tip", r.cartHandler.SetTip)
	}

	preferences := e.Group("/preferences/:owner")
	{
		preferences.GET("/address", r.preferenceHandler.GetAddress)
		preferences.PUT("/address", r.preferenceHandler.SetAddress)
		preferences.GET("/favorites", r.preferenceHandler.Favorites)
		preferences.POST("/favorites/:businessId", r.preferenceHandler.ToggleFavorite)
	}

	e.POST("/checkout/:owner/whatsapp", r.checkoutHandler.WhatsApp)
	e.GET("/tiles/:z/:x/:y", r.tileHandler.GetTile)
}
