package pubsub

import (
	"context"
	"log/slog"

	"marketmap/config"
	"marketmap/internal/domain/constants"
	"marketmap/internal/domain/service"

	"github.com/pkg/errors"
	"go.uber.org/fx"
)

// PublisherParams holds dependencies for EventPublisher, injected by Fx
type PublisherParams struct {
	fx.In

	Lc     fx.Lifecycle
	Ctx    context.Context
	Config *config.Config
	Logger *slog.Logger
}

// NewEventPublisher opens the publisher selected by pubsub.provider and
// closes it when the application stops. Without a provider business updates
// are dropped.
func NewEventPublisher(params PublisherParams) (service.EventPublisher, error) {
	cfg := params.Config.PubSub
	if cfg == nil || cfg.Provider == "" {
		params.Logger.Info("PubSub not configured, business updates will not be published")

		return discardPublisher{logger: params.Logger}, nil
	}

	publisher, err := openPublisher(params.Ctx, cfg, workerToken(params.Config), params.Logger)
	if err != nil {
		return nil, errors.WithMessagef(err, "pubsub provider %q", cfg.Provider)
	}

	params.Lc.Append(fx.Hook{
		OnStop: func(context.Context) error {
			return publisher.Close()
		},
	})

	return publisher, nil
}

func openPublisher(ctx context.Context, cfg *config.PubSubConfig, token string, logger *slog.Logger) (service.EventPublisher, error) {
	switch cfg.Provider {
	case constants.PubSubProviderLocal:
		if cfg.LocalEndpoint == "" {
			return nil, errors.New("local endpoint is required for local provider")
		}
		logger.Info("Publishing business updates to the local worker", slog.String("endpoint", cfg.LocalEndpoint))

		return NewLocalHTTPPublisher(cfg.LocalEndpoint, token, logger), nil

	case constants.PubSubProviderGoogle:
		switch {
		case cfg.ProjectID == "":
			return nil, errors.New("project ID is required for google provider")
		case cfg.TopicID == "":
			return nil, errors.New("topic ID is required for google provider")
		}
		logger.Info("Publishing business updates to Google Pub/Sub",
			slog.String("project_id", cfg.ProjectID),
			slog.String("topic_id", cfg.TopicID),
		)

		return NewGooglePubSubPublisher(ctx, cfg.ProjectID, cfg.TopicID, logger)
	}

	return nil, errors.Errorf("unknown pubsub provider: %s", cfg.Provider)
}

// workerToken is the bearer token the worker expects on pushes.
func workerToken(cfg *config.Config) string {
	if cfg.Worker == nil {
		return ""
	}

	return cfg.Worker.Token
}

type discardPublisher struct {
	logger *slog.Logger
}

func (p discardPublisher) PublishBusinessUpdate(_ context.Context, event *service.BusinessUpdateEvent) error {
	p.logger.Debug("Business update dropped, no pubsub provider",
		slog.String("business_id", event.BusinessID),
		slog.String("type", event.Type.String()),
	)

	return nil
}

func (discardPublisher) Close() error {
	return nil
}

// Module provides the Pub/Sub FX module
//
//nolint:gochecknoglobals
var Module = fx.Options(
	fx.Provide(NewEventPublisher),
)
