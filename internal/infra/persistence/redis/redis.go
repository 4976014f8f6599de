// Package redis keeps preferences in redis, one string key per owner and preference.
package redis

import (
	"context"
	"log/slog"
	"time"

	"marketmap/config"
	"marketmap/internal/domain/lifecycle"

	"github.com/pkg/errors"
	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/fx"
)

// Params defines the required parameters
type Params struct {
	fx.In

	Lc     fx.Lifecycle
	Config *config.Config
	Logger *slog.Logger
}

// New creates the redis client and registers ping and close hooks.
func New(params Params) (*goredis.Client, error) {
	opts, err := optionsFromConfig(params.Config.Storage.Redis)
	if err != nil {
		return nil, err
	}

	client := goredis.NewClient(opts)

	params.Lc.Append(fx.Hook{
		OnStart: func(startCtx context.Context) error {
			ctx, cancel := context.WithTimeout(startCtx, lifecycle.DefaultTimeout)
			defer cancel()

			if err := client.Ping(ctx).Err(); err != nil {
				return errors.Wrap(err, "failed to ping redis")
			}
			params.Logger.Info("Redis preference store connected", slog.String("addr", opts.Addr))

			return nil
		},
		OnStop: func(_ context.Context) error {
			return client.Close()
		},
	})

	return client, nil
}

func optionsFromConfig(cfg *config.RedisConfig) (*goredis.Options, error) {
	if cfg == nil || (cfg.URL == "" && cfg.Address == "") {
		return nil, errors.New("redis url or address is required")
	}

	var opts *goredis.Options
	if cfg.URL != "" {
		parsed, err := goredis.ParseURL(cfg.URL)
		if err != nil {
			return nil, errors.Wrap(err, "parsing redis url")
		}
		opts = parsed
	} else {
		opts = &goredis.Options{
			Addr:     cfg.Address,
			Password: cfg.Password,
			DB:       cfg.DB,
		}
	}

	setIfZero(&opts.DialTimeout, cfg.DialTimeout)
	setIfZero(&opts.ReadTimeout, cfg.ReadTimeout)
	setIfZero(&opts.WriteTimeout, cfg.WriteTimeout)

	return opts, nil
}

func setIfZero(field *time.Duration, value time.Duration) {
	if *field == 0 {
		*field = value
	}
}
