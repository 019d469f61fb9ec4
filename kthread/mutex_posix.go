//go:build unix

// File: kthread/mutex_posix.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package kthread

import (
	"sync"
	"sync/atomic"

	"github.com/A-Boring-Square/Diesel/api"
)

// runtimeMutex is the default POSIX strategy. The Go runtime mutex already
// parks contended waiters on a futex, which is what a pthread mutex would do.
type runtimeMutex struct {
	mu        sync.Mutex
	destroyed atomic.Bool
}

func (m *runtimeMutex) Lock()   { m.mu.Lock() }
func (m *runtimeMutex) Unlock() { m.mu.Unlock() }

func (m *runtimeMutex) destroy() error {
	if !m.destroyed.CompareAndSwap(false, true) {
		return api.ErrMutexDestroyed
	}
	return nil
}
