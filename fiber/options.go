// File: fiber/options.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package fiber

import (
	"time"

	"github.com/rs/zerolog"
)

const (
	// DefaultWorkers is used by Init when the requested count is not positive.
	DefaultWorkers = 4
	// DefaultIdleSleepMS is how long a worker sleeps when the queue is empty.
	DefaultIdleSleepMS = 1
	// DefaultJoinSpin is the number of yields Join tries before blocking.
	DefaultJoinSpin = 64
	// DefaultArenaLimit caps the number of simultaneously allocated fibers.
	DefaultArenaLimit = maxPages * pageSize
)

// Option customizes a System.
type Option func(*System)

// WithLogger sets the lifecycle logger. The default discards everything.
func WithLogger(l zerolog.Logger) Option {
	return func(s *System) {
		s.log = l
	}
}

// WithMetrics attaches a metrics sink.
func WithMetrics(m Metrics) Option {
	return func(s *System) {
		if m != nil {
			s.metrics = m
		}
	}
}

// WithIdleSleep overrides the empty-queue back-off of worker threads.
func WithIdleSleep(ms int) Option {
	return func(s *System) {
		if ms >= 0 {
			s.idleSleepMS.Store(int32(ms))
		}
	}
}

// WithJoinSpin sets how many yields Join spends polling before it blocks on
// the completion event. Zero blocks at once.
func WithJoinSpin(n int) Option {
	return func(s *System) {
		if n >= 0 {
			s.joinSpin.Store(int32(n))
		}
	}
}

// WithPinnedWorkers spreads worker threads across CPUs round-robin when the
// backend supports affinity. Pinning failures are logged and ignored.
func WithPinnedWorkers(on bool) Option {
	return func(s *System) {
		s.pinWorkers = on
	}
}

// WithArenaLimit caps live fibers; CreateFiber fails with
// api.ErrArenaExhausted beyond it.
func WithArenaLimit(n int) Option {
	return func(s *System) {
		if n > 0 && n <= DefaultArenaLimit {
			s.arenaLimit = uint32(n)
		}
	}
}

// Metrics receives fiber lifecycle observations.
type Metrics interface {
	FiberCreated()
	FiberExecuted(d time.Duration)
	FiberDestroyed()
	FiberPanicked()
}

type nopMetrics struct{}

func (nopMetrics) FiberCreated()               {}
func (nopMetrics) FiberExecuted(time.Duration) {}
func (nopMetrics) FiberDestroyed()             {}
func (nopMetrics) FiberPanicked()              {}
