// Package lifecycle holds the shared start/stop budgets for fx hooks.
package lifecycle

import "time"

// DefaultTimeout bounds every OnStart/OnStop hook and graceful server shutdown.
const DefaultTimeout = 10 * time.Second
