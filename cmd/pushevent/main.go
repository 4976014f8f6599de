// Command pushevent publishes a business update event, reloading every map
// session showing that business type. Useful to exercise the worker locally.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"marketmap/config"
	"marketmap/internal/domain/entity"
	"marketmap/internal/domain/service"
	logs "marketmap/internal/infra/log"
	"marketmap/internal/infra/pubsub"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/fx"
)

func main() {
	businessID := flag.String("business", "", "ID of the business that changed")
	businessType := flag.String("type", "", "Business type (food, store, shipping)")
	event := flag.String("event", "updated", "Backend event name")
	timeout := flag.Duration("timeout", 30*time.Second, "Publish timeout")
	flag.Parse()

	update := &service.BusinessUpdateEvent{
		BusinessID: *businessID,
		Type:       entity.BusinessType(*businessType),
		Event:      *event,
		RequestID:  uuid.NewString(),
	}

	if err := run(update, *timeout); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(update *service.BusinessUpdateEvent, timeout time.Duration) error {
	if !update.Type.IsValid() {
		return errors.Errorf("invalid business type %q", update.Type)
	}

	var publisher service.EventPublisher
	app := fx.New(
		fx.NopLogger,
		fx.Provide(
			config.New,
			logs.New,
			context.Background,
		),
		pubsub.Module,
		fx.Populate(&publisher),
	)
	if err := app.Err(); err != nil {
		return errors.Wrap(err, "build publisher")
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := app.Start(ctx); err != nil {
		return errors.Wrap(err, "start")
	}
	defer func() {
		_ = app.Stop(context.Background())
	}()

	if err := publisher.PublishBusinessUpdate(ctx, update); err != nil {
		return err
	}

	fmt.Printf("published %s event for %s business %q (request %s)\n",
		update.Event, update.Type, update.BusinessID, update.RequestID)

	return nil
}
