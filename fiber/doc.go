// Package fiber
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Fiber system on top of a kthread backend: fibers are run-to-completion
// work units held in a slot arena, queued on a lock-free stack and drained by
// a fixed pool of worker threads.
//
// A fiber becomes eligible as soon as CreateFiber returns. Run re-submits an
// idle fiber; it has no effect on a fiber that is queued, running or already
// finished. Destroy of a queued or running fiber is deferred until the
// worker that owns it lets go.
package fiber
