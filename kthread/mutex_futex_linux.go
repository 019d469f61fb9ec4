//go:build linux

// File: kthread/mutex_futex_linux.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Futex-backed mutex: one CAS when uncontended, FUTEX_WAIT/FUTEX_WAKE on the
// state word otherwise.

package kthread

import (
	"sync/atomic"
	"unsafe"

	"github.com/A-Boring-Square/Diesel/api"
	"golang.org/x/sys/unix"
)

const (
	futexWaitPrivate = 128 // FUTEX_WAIT | FUTEX_PRIVATE_FLAG
	futexWakePrivate = 129 // FUTEX_WAKE | FUTEX_PRIVATE_FLAG
)

const (
	mutexUnlocked uint32 = 0
	mutexLocked   uint32 = 1
)

type futexMutex struct {
	state     uint32
	destroyed atomic.Bool
}

func (m *futexMutex) Lock() {
	if atomic.CompareAndSwapUint32(&m.state, mutexUnlocked, mutexLocked) {
		return
	}
	for {
		for atomic.LoadUint32(&m.state) != mutexUnlocked {
			_ = futexWait(&m.state, mutexLocked)
		}
		if atomic.CompareAndSwapUint32(&m.state, mutexUnlocked, mutexLocked) {
			return
		}
	}
}

// Unlock always wakes one waiter; the state word does not track contention.
func (m *futexMutex) Unlock() {
	atomic.StoreUint32(&m.state, mutexUnlocked)
	_ = futexWake(&m.state, 1)
}

func (m *futexMutex) destroy() error {
	if !m.destroyed.CompareAndSwap(false, true) {
		return api.ErrMutexDestroyed
	}
	return nil
}

// futexWait sleeps while *addr == val. A changed value or a signal is not an
// error; callers re-check the word.
func futexWait(addr *uint32, val uint32) error {
	_, _, errno := unix.Syscall6(unix.SYS_FUTEX,
		uintptr(unsafe.Pointer(addr)), futexWaitPrivate, uintptr(val), 0, 0, 0)
	switch errno {
	case 0, unix.EAGAIN, unix.EINTR:
		return nil
	default:
		return errno
	}
}

func futexWake(addr *uint32, n int) error {
	_, _, errno := unix.Syscall6(unix.SYS_FUTEX,
		uintptr(unsafe.Pointer(addr)), futexWakePrivate, uintptr(n), 0, 0, 0)
	if errno != 0 {
		return errno
	}
	return nil
}
