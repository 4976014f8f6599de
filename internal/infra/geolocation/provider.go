// Package geolocation resolves the device position behind a map session.
package geolocation

import (
	"context"
	"log/slog"

	"marketmap/config"
	"marketmap/internal/domain/constants"
	"marketmap/internal/domain/service"

	"github.com/paulmach/orb"
	"github.com/pkg/errors"
	"go.uber.org/fx"
)

// StaticLocator always reports the same position.
type StaticLocator struct {
	Point orb.Point
}

// Locate implements service.Locator.
func (s StaticLocator) Locate(ctx context.Context) (orb.Point, error) {
	if err := ctx.Err(); err != nil {
		return orb.Point{}, errors.Wrap(err, "locate")
	}
	return s.Point, nil
}

// LocatorParams holds dependencies for Locator, injected by Fx
type LocatorParams struct {
	fx.In

	Config *config.Config
	Logger *slog.Logger
}

// NewLocator creates a Locator based on configuration
func NewLocator(params LocatorParams) (service.Locator, error) {
	cfg := params.Config.Geolocation
	logger := params.Logger

	switch cfg.Provider {
	case constants.GeolocationProviderStatic:
		center := params.Config.Map.DefaultCenter
		logger.Info("Using static geolocation",
			slog.Float64("lat", center.Lat),
			slog.Float64("lng", center.Lng),
		)

		return StaticLocator{Point: orb.Point{center.Lng, center.Lat}}, nil

	case constants.GeolocationProviderHTTP:
		if cfg.Endpoint == "" {
			return nil, errors.New("endpoint is required for http geolocation provider")
		}
		logger.Info("Using HTTP geolocation",
			slog.String("endpoint", cfg.Endpoint),
			slog.Duration("max_age", cfg.MaxAge),
		)

		return NewHTTPLocator(cfg.Endpoint, cfg.Timeout, cfg.MaxAge, logger), nil

	default:
		return nil, errors.Errorf("unknown geolocation provider: %s", cfg.Provider)
	}
}
