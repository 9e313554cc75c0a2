// Package workers runs the long-lived background loops of the application.
//
// A Worker blocks until its context is cancelled or it fails. Workers runs a
// set of them together and stops them all as soon as one returns an error.
package workers

import "context"

// Worker is the interface that must be implemented by any background worker.
//
// Run blocks for the lifetime of the worker. It returns nil when ctx is
// cancelled and a non-nil error only when the worker cannot continue.
type Worker interface {
	Run(ctx context.Context) error
}
