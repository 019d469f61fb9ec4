// File: fiber/fiber.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package fiber

import (
	"fmt"

	"github.com/A-Boring-Square/Diesel/api"
)

// Fiber is a handle to one fiber incarnation. It stays safe to use after the
// fiber is destroyed: every operation then fails with api.ErrStaleFiber.
type Fiber struct {
	sys *System
	idx uint32
	gen uint32
}

// ID is unique among the live fibers of one System.
func (f *Fiber) ID() uint64 {
	if f == nil {
		return 0
	}
	return fiberID(f.idx, f.gen)
}

func fiberID(idx, gen uint32) uint64 {
	return uint64(gen)<<32 | uint64(idx)
}

func (f *Fiber) String() string {
	if f == nil {
		return "fiber(nil)"
	}
	return fmt.Sprintf("fiber(%d/%d)", f.idx, f.gen)
}

// Finished reports whether the body has run to completion. It is false for a
// stale handle.
func (f *Fiber) Finished() bool {
	sl, err := f.resolve()
	if err != nil {
		return false
	}
	return sl.state.Load() == slotFinished
}

// Priority returns the recorded priority. Queue order is not affected by it.
func (f *Fiber) Priority() api.Priority {
	sl, err := f.resolve()
	if err != nil {
		return api.PriorityDefault
	}
	return api.Priority(sl.priority.Load())
}

func (f *Fiber) Run() error                      { return f.system().Run(f) }
func (f *Fiber) Join() error                     { return f.system().Join(f) }
func (f *Fiber) Destroy() error                  { return f.system().Destroy(f) }
func (f *Fiber) SetPriority(p api.Priority) error { return f.system().SetPriority(f, p) }

func (f *Fiber) system() *System {
	if f == nil {
		return nil
	}
	return f.sys
}

func (f *Fiber) resolve() (*slot, error) {
	if f == nil || f.sys == nil {
		return nil, api.ErrInvalidHandle
	}
	return f.sys.resolve(f)
}

func (s *System) resolve(f *Fiber) (*slot, error) {
	if s == nil || f == nil || f.sys != s {
		return nil, api.ErrInvalidHandle
	}
	sl := s.arena.slot(f.idx)
	if sl == nil {
		return nil, api.ErrInvalidHandle
	}
	if sl.gen.Load() != f.gen || sl.state.Load() == slotFree {
		return nil, api.ErrStaleFiber
	}
	return sl, nil
}

// CreateFiber allocates a fiber and queues it. It is eligible to run before
// CreateFiber returns.
func (s *System) CreateFiber(worker api.FiberWorker, userData any) (*Fiber, error) {
	if worker == nil {
		return nil, fmt.Errorf("fiber: create: %w", api.ErrInvalidArgument)
	}
	idx, sl, err := s.arena.alloc()
	if err != nil {
		return nil, fmt.Errorf("fiber: create: %w", err)
	}
	gen := sl.gen.Load()
	sl.worker = worker
	sl.ctx = api.FiberContext{ID: fiberID(idx, gen), UserData: userData}
	sl.priority.Store(int32(api.PriorityDefault))
	sl.destroy.Store(false)
	sl.done.Store(&latch{s.backend.NewEvent()})
	sl.state.Store(slotQueued)
	s.queue.Push(idx)

	s.created.Add(1)
	s.metrics.FiberCreated()
	return &Fiber{sys: s, idx: idx, gen: gen}, nil
}

// Run queues an idle fiber again. Queued, running and finished fibers are left
// as they are.
func (s *System) Run(f *Fiber) error {
	sl, err := s.resolve(f)
	if err != nil {
		return fmt.Errorf("fiber: run %s: %w", f, err)
	}
	if sl.destroy.Load() {
		return fmt.Errorf("fiber: run %s: %w", f, api.ErrFiberDestroyed)
	}
	if sl.state.CompareAndSwap(slotIdle, slotQueued) {
		s.queue.Push(f.idx)
	}
	return nil
}

// SetPriority records p on the fiber.
func (s *System) SetPriority(f *Fiber, p api.Priority) error {
	if !p.Valid() {
		return fmt.Errorf("fiber: set priority %d: %w", p, api.ErrInvalidArgument)
	}
	sl, err := s.resolve(f)
	if err != nil {
		return fmt.Errorf("fiber: set priority %s: %w", f, err)
	}
	sl.priority.Store(int32(p))
	return nil
}

// Join waits until the fiber's body has run. It polls for a bounded number of
// yields, then blocks on the completion event. It fails if the fiber is idle
// or the system is not running, since nothing would ever run it.
func (s *System) Join(f *Fiber) error {
	sl, err := s.resolve(f)
	if err != nil {
		return fmt.Errorf("fiber: join %s: %w", f, err)
	}
	done := sl.done.Load()
	limit := int(s.joinSpin.Load())
	for spin := 0; !done.IsSet(); spin++ {
		state := sl.state.Load()
		if state == slotIdle {
			if done.IsSet() {
				break
			}
			return fmt.Errorf("fiber: join %s: not queued: %w", f, api.ErrNotStarted)
		}
		if !s.running.Load() && state != slotRunning {
			if done.IsSet() {
				break
			}
			return fmt.Errorf("fiber: join %s: %w", f, api.ErrSystemNotRunning)
		}
		if spin < limit {
			s.backend.Yield()
			continue
		}
		done.Wait()
	}
	state := sl.state.Load()
	if sl.gen.Load() != f.gen || state == slotFree {
		// Released without running.
		return fmt.Errorf("fiber: join %s: %w", f, api.ErrStaleFiber)
	}
	if state != slotFinished {
		return fmt.Errorf("fiber: join %s: parked before running: %w", f, api.ErrNotStarted)
	}
	return nil
}

// Destroy releases the fiber. Queued or running fibers are released by their
// worker once it lets go of them.
func (s *System) Destroy(f *Fiber) error {
	sl, err := s.resolve(f)
	if err != nil {
		return fmt.Errorf("fiber: destroy %s: %w", f, err)
	}
	if !sl.destroy.CompareAndSwap(false, true) {
		return fmt.Errorf("fiber: destroy %s: %w", f, api.ErrFiberDestroyed)
	}
	s.settle(f.idx, sl)
	return nil
}

// Yield gives up the calling worker thread's time slice. It does not suspend
// the fiber.
func (s *System) Yield() { s.backend.Yield() }

// Sleep suspends the calling thread for ms milliseconds (ticks on a
// cooperative backend).
func (s *System) Sleep(ms int) { s.backend.Sleep(ms) }
