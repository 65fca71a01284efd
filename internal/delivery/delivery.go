// Package delivery defines the long-running entry points started by the application.
package delivery

import "context"

// Delivery is a server or worker started once at boot and stopped through the fx lifecycle.
type Delivery interface {
	Serve(ctx context.Context) error
}
