// File: api/types.go
// Author: momentics <momentics@gmail.com>
//
// Shared API-level type declarations and constants.

package api

// Priority is an abstract three-level scheduling priority. Backends map it to
// the nearest native concept; the ordering Low < Default < High is relied upon
// by the emulated scheduler.
type Priority int32

const (
	PriorityLow Priority = iota
	PriorityDefault
	PriorityHigh
)

func (p Priority) String() string {
	switch p {
	case PriorityLow:
		return "low"
	case PriorityDefault:
		return "default"
	case PriorityHigh:
		return "high"
	default:
		return "unknown"
	}
}

// Valid reports whether p is one of the three defined levels.
func (p Priority) Valid() bool {
	return p >= PriorityLow && p <= PriorityHigh
}

// ParsePriority maps a textual level to a Priority. Unknown input yields
// PriorityDefault and false.
func ParsePriority(s string) (Priority, bool) {
	switch s {
	case "low":
		return PriorityLow, true
	case "default", "":
		return PriorityDefault, true
	case "high":
		return PriorityHigh, true
	default:
		return PriorityDefault, false
	}
}

// ThreadState enumerates the lifecycle of a kernel thread handle.
type ThreadState int32

const (
	ThreadCreated ThreadState = iota
	ThreadReady
	ThreadRunning
	ThreadSleeping
	ThreadFinished
	ThreadDestroyed
)

func (s ThreadState) String() string {
	switch s {
	case ThreadCreated:
		return "created"
	case ThreadReady:
		return "ready"
	case ThreadRunning:
		return "running"
	case ThreadSleeping:
		return "sleeping"
	case ThreadFinished:
		return "finished"
	case ThreadDestroyed:
		return "destroyed"
	default:
		return "unknown"
	}
}

// ThreadContext is handed to every thread worker. ID is the OS thread id on
// native backends and a runtime-assigned sequence number on the emulated one.
type ThreadContext struct {
	ID       uint64
	UserData any
}

// FiberContext is handed to every fiber worker. ID is runtime-assigned and
// unique among live fibers of one system; it never matches an OS thread id.
type FiberContext struct {
	ID       uint64
	UserData any
}

// ThreadWorker is the entry point of a kernel thread.
type ThreadWorker func(ctx *ThreadContext)

// FiberWorker is the body of a fiber. It runs to completion once dequeued.
type FiberWorker func(ctx *FiberContext)
