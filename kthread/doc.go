// Package kthread
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Thread/mutex abstraction over three interchangeable platform primitives:
//
//   - Native POSIX: a goroutine locked to its OS thread for life, Linux
//     priorities and affinity through golang.org/x/sys/unix, optional futex
//     mutex fast path.
//   - Native Windows: the same thread model, with priorities, affinity and
//     kernel mutex objects through golang.org/x/sys/windows.
//   - Emulated: a single-threaded cooperative scheduler, selected by Native on
//     targets with neither facility and available everywhere via NewEmulated.
//
// Every backend satisfies api.Backend, so callers pick one at wiring time and
// never branch on the platform themselves.
package kthread
