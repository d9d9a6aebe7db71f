// Package lifecycle starts and stops the long-running parts of the casa server in
// dependency order.
package lifecycle

import "context"

// Component is anything the Manager can start and stop.
type Component interface {
	// Start must not block; long-running work belongs in a goroutine.
	Start(ctx context.Context) error
	// Stop must return once in-flight work finished or ctx expired.
	Stop(ctx context.Context) error
	// Name identifies the component in logs and errors.
	Name() string
}
