// Package sqlite contains the concrete implementation of the persistence layer using GORM and SQLite.
package sqlite

import (
	"context"
	"log/slog"

	"marketmap/config"
	"marketmap/internal/domain/lifecycle"
	"marketmap/internal/infra/persistence/model"

	"github.com/pkg/errors"
	"go.uber.org/fx"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Params defines the required parameters
type Params struct {
	fx.In
	fx.Lifecycle

	Config *config.Config
	Logger *slog.Logger
}

// New opens the preference database and migrates its schema
func New(params Params) (*gorm.DB, error) {
	db, err := Open(params.Config.Storage.DSN, newGormSlogLogger(params.Logger, params.Config.Env.Debug))
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, errors.Wrap(err, "failed to get SQLite sql.DB")
	}

	params.Append(fx.Hook{
		OnStart: func(startCtx context.Context) error {
			ctx, cancel := context.WithTimeout(startCtx, lifecycle.DefaultTimeout)
			defer cancel()

			return errors.Wrap(sqlDB.PingContext(ctx), "failed to ping SQLite")
		},
		OnStop: func(_ context.Context) error {
			return sqlDB.Close()
		},
	})

	return db, nil
}

// Open connects to dsn and migrates the schema. A nil gormLogger keeps GORM's default.
func Open(dsn string, gormLogger logger.Interface) (*gorm.DB, error) {
	cfg := &gorm.Config{SkipDefaultTransaction: true}
	if gormLogger != nil {
		cfg.Logger = gormLogger
	}

	db, err := gorm.Open(sqlite.Open(dsn), cfg)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open SQLite database")
	}

	if err := db.AutoMigrate(&model.PreferenceModel{}); err != nil {
		return nil, errors.Wrap(err, "failed to migrate preferences table")
	}

	return db, nil
}
