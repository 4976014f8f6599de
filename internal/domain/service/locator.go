package service

import (
	"context"

	"github.com/paulmach/orb"
)

// Locator resolves the position of the device driving a map session.
type Locator interface {
	// Locate returns a lon/lat point or an error when the position is unavailable.
	// Callers bound the wait through ctx.
	Locate(ctx context.Context) (orb.Point, error)
}
