// Package persistence picks the preference store named by storage.driver.
package persistence

import (
	"log/slog"

	"marketmap/config"
	"marketmap/internal/domain/constants"
	"marketmap/internal/domain/repository"
	"marketmap/internal/infra/persistence/redis"
	"marketmap/internal/infra/persistence/sqlite"

	"github.com/pkg/errors"
	"go.uber.org/fx"
)

// Params holds dependencies for the preference store, injected by Fx
type Params struct {
	fx.In

	Lc     fx.Lifecycle
	Config *config.Config
	Logger *slog.Logger
}

// NewPreferenceRepository opens the configured backing store.
func NewPreferenceRepository(params Params) (repository.PreferenceRepository, error) {
	storage := params.Config.Storage

	switch storage.Driver {
	case constants.StorageDriverSQLite:
		db, err := sqlite.New(sqlite.Params{
			Lifecycle: params.Lc,
			Config:    params.Config,
			Logger:    params.Logger,
		})
		if err != nil {
			return nil, err
		}
		params.Logger.Info("Using SQLite preference store")

		return sqlite.NewPreferenceRepository(db), nil

	case constants.StorageDriverRedis:
		client, err := redis.New(redis.Params{
			Lc:     params.Lc,
			Config: params.Config,
			Logger: params.Logger,
		})
		if err != nil {
			return nil, err
		}
		params.Logger.Info("Using Redis preference store")

		return redis.NewPreferenceRepository(client, storage.Redis.KeyPrefix, storage.Redis.TTL), nil

	default:
		return nil, errors.Errorf("unknown storage driver: %s", storage.Driver)
	}
}

// Module provides the preference store FX module
//
//nolint:gochecknoglobals
var Module = fx.Options(
	fx.Provide(NewPreferenceRepository),
)
