// Package delivery groups the servers started by the application.
package delivery

import "context"

// Delivery is a server that runs until its lifecycle stops it.
type Delivery interface {
	Serve(ctx context.Context) error
}
