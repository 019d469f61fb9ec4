// File: api/backend.go
// Author: momentics <momentics@gmail.com>
//
// Platform primitive contract: one set of thread, mutex and event operations
// regardless of which backend is in use.

package api

// Thread is an opaque handle to one kernel-scheduled (or emulated) execution
// context. Handles are only meaningful to the backend that created them.
type Thread interface {
	// ID returns the OS thread id, or the emulated sequence number. It is zero
	// on native backends until the thread has been spun up by CreateThread.
	ID() uint64
	State() ThreadState
	Priority() Priority
	Context() *ThreadContext
}

// Mutex is a non-reentrant mutual-exclusion lock. Unlock by a non-holder is
// undefined and not detected.
type Mutex interface {
	Lock()
	Unlock()
}

// Event is a one-shot latch. Wait returns once Set has been called; on
// cooperative backends Wait drives the scheduler while it waits.
type Event interface {
	Set()
	IsSet() bool
	Wait()
}

// Backend exposes kernel-thread, mutex and event primitives for one platform.
type Backend interface {
	Name() string
	// Cooperative reports whether threads only make progress when the caller
	// pumps the scheduler (Join, Sleep, Yield, Event.Wait).
	Cooperative() bool

	CreateThread(worker ThreadWorker, userData any) (Thread, error)
	SetPriority(t Thread, p Priority) error
	Start(t Thread) error
	Join(t Thread) (int, error)
	Destroy(t Thread) error
	Yield()
	Sleep(ms int)

	NewMutex() (Mutex, error)
	DestroyMutex(m Mutex) error

	NewEvent() Event
}
