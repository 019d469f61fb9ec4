//go:build unix || windows

// File: kthread/native.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Native backend shared by POSIX and Windows. Each thread is a goroutine
// locked to its OS thread for its whole life; the goroutine returns without
// unlocking so the runtime retires the OS thread together with it.

package kthread

import (
	"fmt"
	"runtime"
	"sync/atomic"

	"github.com/A-Boring-Square/Diesel/api"
)

var (
	_ api.Backend  = (*NativeBackend)(nil)
	_ api.Affinity = (*NativeBackend)(nil)
	_ api.Thread   = (*nativeThread)(nil)
)

// NativeBackend schedules threads preemptively on the host kernel.
type NativeBackend struct {
	opts options
}

// Native returns the preemptive backend for the host platform.
func Native(opts ...Option) api.Backend {
	return &NativeBackend{opts: buildOptions(opts)}
}

type nativeThread struct {
	ctx    api.ThreadContext
	worker api.ThreadWorker
	os     osThread

	state     atomic.Int32
	priority  atomic.Int32
	destroyed atomic.Bool
	aborted   atomic.Bool

	start chan struct{} // start gate, closed by Start or by Destroy of an unstarted thread
	done  *chanEvent
}

func (t *nativeThread) ID() uint64                  { return t.ctx.ID }
func (t *nativeThread) State() api.ThreadState      { return api.ThreadState(t.state.Load()) }
func (t *nativeThread) Priority() api.Priority      { return api.Priority(t.priority.Load()) }
func (t *nativeThread) Context() *api.ThreadContext { return &t.ctx }

// run is the body of the locked goroutine.
func (t *nativeThread) run(attached chan<- error) {
	runtime.LockOSThread()
	if err := t.os.attach(t); err != nil {
		attached <- err
		return
	}
	attached <- nil

	<-t.start
	defer func() {
		t.state.Store(int32(api.ThreadFinished))
		t.done.Set()
	}()
	if t.aborted.Load() {
		return
	}
	t.state.Store(int32(api.ThreadRunning))
	t.worker(&t.ctx)
}

func (b *NativeBackend) Name() string      { return "native-" + runtime.GOOS }
func (b *NativeBackend) Cooperative() bool { return false }

// CreateThread spins up a locked OS thread held at its start gate. The
// returned handle already carries the OS thread id.
func (b *NativeBackend) CreateThread(worker api.ThreadWorker, userData any) (api.Thread, error) {
	if worker == nil {
		return nil, fmt.Errorf("kthread: create thread: %w", api.ErrInvalidArgument)
	}
	t := &nativeThread{
		worker: worker,
		start:  make(chan struct{}),
		done:   newChanEvent(),
	}
	t.ctx.UserData = userData
	t.priority.Store(int32(api.PriorityDefault))

	attached := make(chan error, 1)
	go t.run(attached)
	if err := <-attached; err != nil {
		return nil, fmt.Errorf("kthread: create thread: %w", err)
	}
	return t, nil
}

func (b *NativeBackend) thread(h api.Thread) (*nativeThread, error) {
	t, ok := h.(*nativeThread)
	if !ok || t == nil {
		return nil, api.ErrInvalidHandle
	}
	if t.destroyed.Load() {
		return nil, api.ErrThreadDestroyed
	}
	return t, nil
}

// SetPriority applies p to the OS thread. Raising priority may require
// privileges; the error is returned and the recorded level is left unchanged.
func (b *NativeBackend) SetPriority(h api.Thread, p api.Priority) error {
	t, err := b.thread(h)
	if err != nil {
		return fmt.Errorf("kthread: set priority: %w", err)
	}
	if !p.Valid() {
		return fmt.Errorf("kthread: set priority %d: %w", p, api.ErrInvalidArgument)
	}
	if err := t.os.setPriority(t, p); err != nil {
		return fmt.Errorf("kthread: set priority %s: %w", p, err)
	}
	t.priority.Store(int32(p))
	return nil
}

func (b *NativeBackend) Start(h api.Thread) error {
	t, err := b.thread(h)
	if err != nil {
		return fmt.Errorf("kthread: start: %w", err)
	}
	if !t.state.CompareAndSwap(int32(api.ThreadCreated), int32(api.ThreadReady)) {
		return fmt.Errorf("kthread: start thread %d: %w", t.ctx.ID, api.ErrAlreadyStarted)
	}
	close(t.start)
	return nil
}

// Join blocks until the worker returns. Native workers carry no exit code, so
// the result is always zero.
func (b *NativeBackend) Join(h api.Thread) (int, error) {
	t, err := b.thread(h)
	if err != nil {
		return -1, fmt.Errorf("kthread: join: %w", err)
	}
	if t.State() == api.ThreadCreated {
		return -1, fmt.Errorf("kthread: join thread %d: %w", t.ctx.ID, api.ErrNotStarted)
	}
	t.done.Wait()
	return 0, nil
}

// Destroy waits for the thread to terminate and releases its OS resources. A
// thread that was never started is released without running its worker.
func (b *NativeBackend) Destroy(h api.Thread) error {
	t, ok := h.(*nativeThread)
	if !ok || t == nil {
		return fmt.Errorf("kthread: destroy: %w", api.ErrInvalidHandle)
	}
	if !t.destroyed.CompareAndSwap(false, true) {
		return fmt.Errorf("kthread: destroy thread %d: %w", t.ctx.ID, api.ErrThreadDestroyed)
	}
	if t.state.CompareAndSwap(int32(api.ThreadCreated), int32(api.ThreadReady)) {
		t.aborted.Store(true)
		close(t.start)
	}
	t.done.Wait()
	err := t.os.release()
	t.state.Store(int32(api.ThreadDestroyed))
	if err != nil {
		return fmt.Errorf("kthread: destroy thread %d: %w", t.ctx.ID, err)
	}
	return nil
}

// Pin restricts the thread to one logical CPU.
func (b *NativeBackend) Pin(h api.Thread, cpuID int) error {
	t, err := b.thread(h)
	if err != nil {
		return fmt.Errorf("kthread: pin: %w", err)
	}
	if cpuID < 0 {
		return fmt.Errorf("kthread: pin cpu %d: %w", cpuID, api.ErrInvalidArgument)
	}
	if err := t.os.pin(t, cpuID); err != nil {
		return fmt.Errorf("kthread: pin thread %d to cpu %d: %w", t.ctx.ID, cpuID, err)
	}
	return nil
}

func (b *NativeBackend) Yield() { osYield() }

// Sleep suspends the calling thread. Non-positive durations return at once.
func (b *NativeBackend) Sleep(ms int) {
	if ms <= 0 {
		return
	}
	osSleep(ms)
}

func (b *NativeBackend) NewMutex() (api.Mutex, error) {
	m, err := newOSMutex(b.opts.userModeLocks)
	if err != nil {
		return nil, fmt.Errorf("kthread: new mutex: %w", err)
	}
	return m, nil
}

func (b *NativeBackend) DestroyMutex(m api.Mutex) error {
	d, ok := m.(destroyer)
	if !ok || m == nil {
		return fmt.Errorf("kthread: destroy mutex: %w", api.ErrInvalidHandle)
	}
	if err := d.destroy(); err != nil {
		return fmt.Errorf("kthread: destroy mutex: %w", err)
	}
	return nil
}

func (b *NativeBackend) NewEvent() api.Event { return newChanEvent() }

// destroyer is implemented by every mutex a native backend hands out.
type destroyer interface {
	destroy() error
}
