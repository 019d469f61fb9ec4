// File: fiber/system.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// System owns the run queue, the slot arena and the worker threads.

package fiber

import (
	"errors"
	"fmt"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/A-Boring-Square/Diesel/api"
	"github.com/A-Boring-Square/Diesel/internal/concurrency"
	"github.com/rs/zerolog"
)

// Ensure compile-time interface compliance.
var _ api.Scheduler = (*System)(nil)

// System is one fiber runtime instance bound to a backend.
type System struct {
	backend api.Backend
	log     zerolog.Logger
	metrics Metrics

	idleSleepMS atomic.Int32
	joinSpin    atomic.Int32
	pinWorkers  bool
	arenaLimit  uint32

	arena *arena
	queue *concurrency.Stack
	lock  api.Mutex

	mu          sync.Mutex // serializes Init and Shutdown
	running     atomic.Bool
	workers     []api.Thread
	workerCount atomic.Int32

	created   atomic.Uint64
	executed  atomic.Uint64
	destroyed atomic.Uint64
	panicked  atomic.Uint64
}

// New builds an idle System. Fibers may be created before Init; they wait in
// the queue until workers exist.
func New(backend api.Backend, opts ...Option) (*System, error) {
	if backend == nil {
		return nil, fmt.Errorf("fiber: new system: %w", api.ErrInvalidArgument)
	}
	s := &System{
		backend:    backend,
		log:        zerolog.Nop(),
		metrics:    nopMetrics{},
		arenaLimit: DefaultArenaLimit,
	}
	s.idleSleepMS.Store(DefaultIdleSleepMS)
	s.joinSpin.Store(DefaultJoinSpin)
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	lock, err := backend.NewMutex()
	if err != nil {
		return nil, fmt.Errorf("fiber: new system: %w", err)
	}
	s.lock = lock
	s.arena = newArena(lock, s.arenaLimit)
	s.queue = concurrency.NewStack(s.arena)
	return s, nil
}

// Backend returns the backend the system schedules on.
func (s *System) Backend() api.Backend { return s.backend }

// Running reports whether workers are draining the queue.
func (s *System) Running() bool { return s.running.Load() }

// Tune changes the idle back-off and join spin of a live system. Negative
// values leave the current setting unchanged.
func (s *System) Tune(idleSleepMS, joinSpin int) {
	if idleSleepMS >= 0 {
		s.idleSleepMS.Store(int32(idleSleepMS))
	}
	if joinSpin >= 0 {
		s.joinSpin.Store(int32(joinSpin))
	}
	s.log.Debug().Int32("idle_sleep_ms", s.idleSleepMS.Load()).Int32("join_spin", s.joinSpin.Load()).Msg("fiber system tuned")
}

// Init starts workers threads at priority p. A non-positive count selects
// DefaultWorkers. Priority and pinning failures are not fatal.
func (s *System) Init(workers int, p api.Priority) error {
	if !p.Valid() {
		return fmt.Errorf("fiber: init priority %d: %w", p, api.ErrInvalidArgument)
	}
	if workers <= 0 {
		workers = DefaultWorkers
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running.Load() {
		return fmt.Errorf("fiber: init: %w", api.ErrSystemRunning)
	}

	s.running.Store(true)
	s.workers = make([]api.Thread, 0, workers)
	affinity, canPin := s.backend.(api.Affinity)

	for i := 0; i < workers; i++ {
		t, err := s.backend.CreateThread(s.loop, i)
		if err != nil {
			return s.abortInit(fmt.Errorf("fiber: init worker %d: %w", i, err))
		}
		if err := s.backend.SetPriority(t, p); err != nil {
			s.log.Debug().Err(err).Int("worker", i).Stringer("priority", p).Msg("worker priority not applied")
		}
		if s.pinWorkers && canPin {
			cpu := i % runtime.NumCPU()
			if err := affinity.Pin(t, cpu); err != nil {
				s.log.Debug().Err(err).Int("worker", i).Int("cpu", cpu).Msg("worker not pinned")
			}
		}
		if err := s.backend.Start(t); err != nil {
			_ = s.backend.Destroy(t)
			return s.abortInit(fmt.Errorf("fiber: init worker %d: %w", i, err))
		}
		s.workers = append(s.workers, t)
		s.workerCount.Add(1)
	}

	s.log.Debug().
		Str("backend", s.backend.Name()).
		Int("workers", workers).
		Stringer("priority", p).
		Msg("fiber system started")
	return nil
}

func (s *System) abortInit(cause error) error {
	if err := s.stopWorkers(); err != nil {
		return errors.Join(cause, err)
	}
	return cause
}

// Shutdown stops every worker after its current fiber and reaps the threads.
// Fibers still queued return to idle: a later Init followed by Run executes
// them, Destroy releases them.
func (s *System) Shutdown() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.running.Load() {
		return fmt.Errorf("fiber: shutdown: %w", api.ErrSystemNotRunning)
	}

	err := s.stopWorkers()
	parked := s.queue.Drain(func(idx uint32) {
		sl := s.arena.slot(idx)
		if sl.state.CompareAndSwap(slotQueued, slotIdle) {
			// Joiners blocked on the old latch wake and see the slot idle.
			sl.done.Swap(&latch{s.backend.NewEvent()}).Set()
			s.settle(idx, sl)
		}
	})

	s.log.Debug().
		Str("backend", s.backend.Name()).
		Int("parked", parked).
		Msg("fiber system stopped")
	return err
}

// stopWorkers clears the running flag, then joins and destroys every worker.
// The caller holds s.mu.
func (s *System) stopWorkers() error {
	s.running.Store(false)
	var errs []error
	for _, t := range s.workers {
		if _, err := s.backend.Join(t); err != nil {
			errs = append(errs, err)
		}
		if err := s.backend.Destroy(t); err != nil {
			errs = append(errs, err)
		}
		s.workerCount.Add(-1)
	}
	s.workers = nil
	return errors.Join(errs...)
}

// loop is the worker thread body. On a preemptive backend it drains the queue
// until shutdown. On a cooperative one every call is a single step: run one
// fiber and yield, or sleep when idle, and return to the scheduler.
func (s *System) loop(ctx *api.ThreadContext) {
	cooperative := s.backend.Cooperative()
	if !cooperative {
		s.log.Debug().Interface("worker", ctx.UserData).Uint64("tid", ctx.ID).Msg("worker started")
		defer func() {
			s.log.Debug().Interface("worker", ctx.UserData).Uint64("tid", ctx.ID).Msg("worker stopped")
		}()
	}
	for s.running.Load() {
		if !s.runOnce() {
			s.backend.Sleep(int(s.idleSleepMS.Load()))
			if cooperative {
				return
			}
			continue
		}
		if cooperative {
			s.backend.Yield()
			return
		}
	}
}

// runOnce pops and executes one fiber. It reports whether the queue was
// non-empty.
func (s *System) runOnce() bool {
	idx, ok := s.queue.Pop()
	if !ok {
		return false
	}
	sl := s.arena.slot(idx)
	if !sl.state.CompareAndSwap(slotQueued, slotRunning) {
		return true
	}
	if sl.destroy.Load() {
		sl.state.Store(slotIdle)
		s.settle(idx, sl)
		return true
	}

	s.execute(sl)
	// The latch is captured first: once the state reads finished, a Destroy
	// may release the slot and a new incarnation may install its own latch.
	done := sl.done.Load()
	s.executed.Add(1)
	sl.state.Store(slotFinished)
	done.Set()
	s.settle(idx, sl)
	return true
}

func (s *System) execute(sl *slot) {
	ctx := sl.ctx
	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			s.panicked.Add(1)
			s.metrics.FiberPanicked()
			s.log.Error().Interface("panic", r).Uint64("fiber", ctx.ID).Msg("fiber worker panicked")
		}
		s.metrics.FiberExecuted(time.Since(start))
	}()
	sl.worker(&ctx)
}

// settle releases a slot whose destruction was requested once nothing owns
// it. Both transitions are CASes, so exactly one caller releases.
func (s *System) settle(idx uint32, sl *slot) {
	if !sl.destroy.Load() {
		return
	}
	if !sl.state.CompareAndSwap(slotIdle, slotFree) &&
		!sl.state.CompareAndSwap(slotFinished, slotFree) {
		return
	}
	if d := sl.done.Load(); d != nil {
		d.Set()
	}
	sl.gen.Add(1)
	sl.worker = nil
	sl.ctx = api.FiberContext{}
	s.arena.release(idx)
	s.destroyed.Add(1)
	s.metrics.FiberDestroyed()
}

// Close releases the backend mutex guarding the arena. The System must not
// be running and must not be used afterwards.
func (s *System) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running.Load() {
		return fmt.Errorf("fiber: close: %w", api.ErrSystemRunning)
	}
	if err := s.backend.DestroyMutex(s.lock); err != nil {
		return fmt.Errorf("fiber: close: %w", err)
	}
	return nil
}

// Stats is a point-in-time snapshot of a System.
type Stats struct {
	Backend      string
	Running      bool
	Workers      int
	Created      uint64
	Executed     uint64
	Destroyed    uint64
	Panicked     uint64
	Live         int64
	Pending      int
	QueueRetries uint64
	IdleSleepMS  int
	JoinSpin     int
}

// Stats returns current counters.
func (s *System) Stats() Stats {
	return Stats{
		Backend:      s.backend.Name(),
		Running:      s.running.Load(),
		Workers:      int(s.workerCount.Load()),
		Created:      s.created.Load(),
		Executed:     s.executed.Load(),
		Destroyed:    s.destroyed.Load(),
		Panicked:     s.panicked.Load(),
		Live:         s.arena.Live(),
		Pending:      s.queue.Len(),
		QueueRetries: s.queue.Retries(),
		IdleSleepMS:  int(s.idleSleepMS.Load()),
		JoinSpin:     int(s.joinSpin.Load()),
	}
}

// ProbeRegistry accepts named debug probes.
type ProbeRegistry interface {
	RegisterProbe(name string, fn func() any)
}

// RegisterProbes publishes the system counters as debug probes.
func (s *System) RegisterProbes(reg ProbeRegistry) {
	reg.RegisterProbe("fiber.backend", func() any { return s.backend.Name() })
	reg.RegisterProbe("fiber.running", func() any { return s.running.Load() })
	reg.RegisterProbe("fiber.workers", func() any { return int(s.workerCount.Load()) })
	reg.RegisterProbe("fiber.live", func() any { return s.arena.Live() })
	reg.RegisterProbe("fiber.pending", func() any { return s.queue.Len() })
	reg.RegisterProbe("fiber.queue_retries", func() any { return s.queue.Retries() })
}
