// Package api
// Author: momentics
//
// Fiber scheduler contract: a fixed worker pool draining a shared run queue.

package api

// Scheduler abstracts the fiber system lifecycle.
type Scheduler interface {
	// Init starts workers kernel threads at the given priority.
	Init(workers int, p Priority) error

	// Shutdown stops and reaps every worker after its current fiber.
	Shutdown() error

	// Running reports whether workers are draining the queue.
	Running() bool
}
