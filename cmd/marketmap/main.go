package main

import (
	"context"
	"log/slog"
	"os"

	"marketmap/config"
	"marketmap/internal/delivery"
	"marketmap/internal/delivery/api"
	"marketmap/internal/delivery/api/router/handler"
	"marketmap/internal/delivery/worker"
	workerhandler "marketmap/internal/delivery/worker/handler"
	"marketmap/internal/infra/backend"
	"marketmap/internal/infra/geolocation"
	logs "marketmap/internal/infra/log"
	"marketmap/internal/infra/metrics"
	"marketmap/internal/infra/persistence"
	"marketmap/internal/infra/qrcode"
	"marketmap/internal/infra/tiles"
	"marketmap/internal/infra/whatsapp"
	"marketmap/internal/usecase/impl"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/fx"
)

type startServerParams struct {
	fx.In
	fx.Lifecycle
	fx.Shutdowner

	Deliveries []delivery.Delivery `group:"deliveries"`
}

func main() {
	fx.New(
		injectInfra(),
		injectRepo(),
		injectService(),
		injectUsecase(),
		injectHandler(),
		injectDelivery(),
		fx.Invoke(
			startServer,
		),
	).Run()
}

func injectInfra() fx.Option {
	return fx.Provide(
		config.New,
		logs.New,
		context.Background,
		func() prometheus.Registerer { return prometheus.DefaultRegisterer },
		func() prometheus.Gatherer { return prometheus.DefaultGatherer },
		metrics.New,
	)
}

func injectRepo() fx.Option {
	return persistence.Module
}

func injectService() fx.Option {
	return fx.Options(
		fx.Provide(
			backend.New,
			geolocation.NewLocator,
			tiles.New,
			qrcode.New,
			whatsapp.New,
		),
	)
}

func injectUsecase() fx.Option {
	return fx.Options(
		fx.Provide(
			impl.NewMapService,
			impl.NewCartService,
			impl.NewPreferenceService,
			impl.NewCheckoutService,
		),
	)
}

func injectHandler() fx.Option {
	return fx.Options(
		fx.Provide(
			handler.NewMapHandler,
			handler.NewCartHandler,
			handler.NewPreferenceHandler,
			handler.NewCheckoutHandler,
			handler.NewTileHandler,
			workerhandler.NewPushHandler,
		),
	)
}

func injectDelivery() fx.Option {
	return fx.Options(
		fx.Provide(
			fx.Annotate(
				api.NewServer,
				fx.ResultTags(`group:"deliveries"`),
			),
			fx.Annotate(
				worker.NewServer,
				fx.ResultTags(`group:"deliveries"`),
			),
		),
	)
}

func startServer(ctx context.Context, params startServerParams) {
	for _, delivery := range params.Deliveries {
		go func() {
			if err := delivery.Serve(ctx); err != nil {
				slog.Error("Failed to start server", slog.Any("error", err))

				// Trigger graceful shutdown to execute all OnStop hooks
				if shutdownErr := params.Shutdown(); shutdownErr != nil {
					slog.Error("Failed to shutdown gracefully", slog.Any("error", shutdownErr))
					os.Exit(1)
				}
			}
		}()
	}
}
