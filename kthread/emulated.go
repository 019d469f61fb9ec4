// File: kthread/emulated.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Single-threaded cooperative scheduler. Workers are step functions: each
// scheduling tick runs the chosen worker synchronously, and the worker signals
// how it wants to continue by calling Yield (run again later), Sleep (run
// again after n ticks) or simply returning (done).

package kthread

import (
	"fmt"
	"sync"

	"github.com/A-Boring-Square/Diesel/api"
)

var (
	_ api.Backend  = (*Emulated)(nil)
	_ api.Affinity = (*Emulated)(nil)
	_ api.Thread   = (*emuThread)(nil)
	_ api.Event    = (*emuEvent)(nil)
)

const emuInitialCapacity = 4

// Emulated is a cooperative backend instance. Its mutex guards the thread
// table only; it is released while a worker runs, so workers may create,
// start, join and destroy threads and drive nested ticks themselves.
type Emulated struct {
	mu      sync.Mutex
	threads []*emuThread
	current *emuThread
	nextID  uint64
	ticks   uint64
}

// NewEmulated returns an empty cooperative scheduler.
func NewEmulated() *Emulated {
	return &Emulated{threads: make([]*emuThread, 0, emuInitialCapacity)}
}

type emuThread struct {
	owner    *Emulated
	ctx      api.ThreadContext
	worker   api.ThreadWorker
	state    api.ThreadState
	priority api.Priority
	sleep    int
	active   bool // worker is on the call stack
	joined   bool
	reaped   bool
	gone     bool
}

func (t *emuThread) ID() uint64 { return t.ctx.ID }

func (t *emuThread) State() api.ThreadState {
	t.owner.mu.Lock()
	defer t.owner.mu.Unlock()
	if t.gone {
		return api.ThreadDestroyed
	}
	return t.state
}

func (t *emuThread) Priority() api.Priority {
	t.owner.mu.Lock()
	defer t.owner.mu.Unlock()
	return t.priority
}

func (t *emuThread) Context() *api.ThreadContext { return &t.ctx }

func (e *Emulated) Name() string      { return "emulated" }
func (e *Emulated) Cooperative() bool { return true }

// grow doubles the table capacity once it is full.
func (e *Emulated) grow() {
	if len(e.threads) < cap(e.threads) {
		return
	}
	n := cap(e.threads) * 2
	if n == 0 {
		n = emuInitialCapacity
	}
	next := make([]*emuThread, len(e.threads), n)
	copy(next, e.threads)
	e.threads = next
}

func (e *Emulated) CreateThread(worker api.ThreadWorker, userData any) (api.Thread, error) {
	if worker == nil {
		return nil, fmt.Errorf("kthread: create thread: %w", api.ErrInvalidArgument)
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.grow()
	e.nextID++
	t := &emuThread{
		owner:    e,
		ctx:      api.ThreadContext{ID: e.nextID, UserData: userData},
		worker:   worker,
		state:    api.ThreadCreated,
		priority: api.PriorityDefault,
	}
	e.threads = append(e.threads, t)
	return t, nil
}

// thread resolves a handle; the caller holds e.mu.
func (e *Emulated) thread(h api.Thread) (*emuThread, error) {
	t, ok := h.(*emuThread)
	if !ok || t == nil || t.owner != e {
		return nil, api.ErrInvalidHandle
	}
	if t.gone {
		return nil, api.ErrThreadDestroyed
	}
	return t, nil
}

func (e *Emulated) SetPriority(h api.Thread, p api.Priority) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	t, err := e.thread(h)
	if err != nil {
		return fmt.Errorf("kthread: set priority: %w", err)
	}
	if !p.Valid() {
		return fmt.Errorf("kthread: set priority %d: %w", p, api.ErrInvalidArgument)
	}
	t.priority = p
	return nil
}

func (e *Emulated) Start(h api.Thread) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	t, err := e.thread(h)
	if err != nil {
		return fmt.Errorf("kthread: start: %w", err)
	}
	if t.state != api.ThreadCreated {
		return fmt.Errorf("kthread: start thread %d: %w", t.ctx.ID, api.ErrAlreadyStarted)
	}
	t.state = api.ThreadReady
	return nil
}

// Tick performs one scheduling step: sleeping threads count down, the
// highest-priority ready thread (lowest table index on ties) runs once, and
// finished entries nobody waits for are compacted out. It reports whether a
// worker ran.
func (e *Emulated) Tick() bool {
	e.mu.Lock()
	e.ticks++
	var next *emuThread
	for _, t := range e.threads {
		if t.state == api.ThreadSleeping {
			t.sleep--
			if t.sleep <= 0 {
				t.state = api.ThreadReady
			}
		}
		if t.state == api.ThreadReady && !t.active && (next == nil || t.priority > next.priority) {
			next = t
		}
	}
	if next == nil {
		e.compact()
		e.mu.Unlock()
		return false
	}
	prev := e.current
	next.state = api.ThreadRunning
	next.active = true
	e.current = next
	e.mu.Unlock()

	next.worker(&next.ctx)

	e.mu.Lock()
	next.active = false
	if next.state == api.ThreadRunning {
		next.state = api.ThreadFinished
	}
	e.current = prev
	e.compact()
	e.mu.Unlock()
	return true
}

// compact drops finished entries that were never joined, or were destroyed,
// preserving the order of the rest. The caller holds e.mu.
func (e *Emulated) compact() {
	if e.current != nil {
		// A nested tick; the outer one compacts once its worker returns.
		return
	}
	kept := e.threads[:0]
	for _, t := range e.threads {
		if t.state == api.ThreadFinished && (!t.joined || t.reaped) {
			if t.reaped {
				t.gone = true
			}
			continue
		}
		kept = append(kept, t)
	}
	for i := len(kept); i < len(e.threads); i++ {
		e.threads[i] = nil
	}
	e.threads = kept
}

// pending reports whether any thread not already on the call stack is ready
// or counting down a sleep.
func (e *Emulated) pending() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	for _, t := range e.threads {
		if !t.active && (t.state == api.ThreadReady || t.state == api.ThreadSleeping) {
			return true
		}
	}
	return false
}

// Run pumps ticks until no thread is ready or sleeping.
func (e *Emulated) Run() {
	for e.Tick() || e.pending() {
	}
}

// Join marks the thread joined and pumps the scheduler until it finishes. It
// fails instead of spinning when nothing left in the table can make progress.
func (e *Emulated) Join(h api.Thread) (int, error) {
	e.mu.Lock()
	t, err := e.thread(h)
	if err != nil {
		e.mu.Unlock()
		return -1, fmt.Errorf("kthread: join: %w", err)
	}
	switch {
	case t.state == api.ThreadCreated:
		e.mu.Unlock()
		return -1, fmt.Errorf("kthread: join thread %d: %w", t.ctx.ID, api.ErrNotStarted)
	case t == e.current:
		e.mu.Unlock()
		return -1, fmt.Errorf("kthread: join thread %d from itself: %w", t.ctx.ID, api.ErrDeadlock)
	}
	t.joined = true
	e.mu.Unlock()

	for !e.finished(t) {
		if !e.Tick() && !e.pending() {
			return -1, fmt.Errorf("kthread: join thread %d: %w", t.ctx.ID, api.ErrDeadlock)
		}
	}
	return 0, nil
}

func (e *Emulated) finished(t *emuThread) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return t.state == api.ThreadFinished
}

// Destroy abandons the thread: it is marked finished and reclaimed by the next
// tick. The worker is never resumed.
func (e *Emulated) Destroy(h api.Thread) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	t, ok := h.(*emuThread)
	if !ok || t == nil || t.owner != e {
		return fmt.Errorf("kthread: destroy: %w", api.ErrInvalidHandle)
	}
	if t.reaped {
		return fmt.Errorf("kthread: destroy thread %d: %w", t.ctx.ID, api.ErrThreadDestroyed)
	}
	t.reaped = true
	t.state = api.ThreadFinished
	if !e.contains(t) {
		t.gone = true
	}
	return nil
}

func (e *Emulated) contains(t *emuThread) bool {
	for _, x := range e.threads {
		if x == t {
			return true
		}
	}
	return false
}

// Yield from inside a worker asks to be scheduled again. From outside any
// worker it runs one tick.
func (e *Emulated) Yield() {
	e.mu.Lock()
	if cur := e.current; cur != nil {
		if cur.state == api.ThreadRunning {
			cur.state = api.ThreadReady
		}
		e.mu.Unlock()
		return
	}
	e.mu.Unlock()
	e.Tick()
}

// Sleep from inside a worker parks it for ms ticks once it returns. From
// outside any worker it pumps ms ticks.
func (e *Emulated) Sleep(ms int) {
	e.mu.Lock()
	if cur := e.current; cur != nil {
		if cur.state == api.ThreadRunning || cur.state == api.ThreadReady {
			if ms > 0 {
				cur.state = api.ThreadSleeping
				cur.sleep = ms
			} else {
				cur.state = api.ThreadReady
			}
		}
		e.mu.Unlock()
		return
	}
	e.mu.Unlock()
	for i := 0; i < ms; i++ {
		e.Tick()
	}
}

// Pin is meaningless without OS threads.
func (e *Emulated) Pin(api.Thread, int) error {
	return fmt.Errorf("kthread: pin: %w", api.ErrNotSupported)
}

// Len returns the number of table entries, including finished ones awaiting
// a join.
func (e *Emulated) Len() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.threads)
}

// Ticks returns the number of scheduling steps taken so far.
func (e *Emulated) Ticks() uint64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.ticks
}

// Current returns the thread whose worker is executing, or nil outside any
// worker.
func (e *Emulated) Current() api.Thread {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.current == nil {
		return nil
	}
	return e.current
}

// NewMutex returns a lock that does nothing; only one worker ever runs.
func (e *Emulated) NewMutex() (api.Mutex, error) {
	return &noopMutex{}, nil
}

func (e *Emulated) DestroyMutex(m api.Mutex) error {
	nm, ok := m.(*noopMutex)
	if !ok || nm == nil {
		return fmt.Errorf("kthread: destroy mutex: %w", api.ErrInvalidHandle)
	}
	if nm.destroyed {
		return fmt.Errorf("kthread: destroy mutex: %w", api.ErrMutexDestroyed)
	}
	nm.destroyed = true
	return nil
}

func (e *Emulated) NewEvent() api.Event {
	return &emuEvent{owner: e}
}

type noopMutex struct {
	destroyed bool
}

func (*noopMutex) Lock()   {}
func (*noopMutex) Unlock() {}

// emuEvent is a latch whose Wait drives the owning scheduler. Wait returns
// early when nothing can run, so callers must re-check their condition.
type emuEvent struct {
	owner *Emulated
	mu    sync.Mutex
	set   bool
}

func (ev *emuEvent) Set() {
	ev.mu.Lock()
	ev.set = true
	ev.mu.Unlock()
}

func (ev *emuEvent) IsSet() bool {
	ev.mu.Lock()
	defer ev.mu.Unlock()
	return ev.set
}

func (ev *emuEvent) Wait() {
	for !ev.IsSet() {
		if !ev.owner.Tick() && !ev.owner.pending() {
			return
		}
	}
}
