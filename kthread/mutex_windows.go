//go:build windows

// File: kthread/mutex_windows.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package kthread

import (
	"fmt"
	"runtime"
	"sync/atomic"
	"unsafe"

	"github.com/A-Boring-Square/Diesel/api"
	"golang.org/x/sys/windows"
)

// kernelMutex wraps a Win32 mutex object. Ownership belongs to the acquiring
// OS thread, so the goroutine stays locked to it between Lock and Unlock.
type kernelMutex struct {
	handle    windows.Handle
	destroyed atomic.Bool
}

func newKernelMutex() (*kernelMutex, error) {
	h, err := windows.CreateMutex(nil, false, nil)
	if err != nil {
		return nil, fmt.Errorf("CreateMutex: %w", err)
	}
	return &kernelMutex{handle: h}, nil
}

func (m *kernelMutex) Lock() {
	runtime.LockOSThread()
	_, _ = windows.WaitForSingleObject(m.handle, windows.INFINITE)
}

func (m *kernelMutex) Unlock() {
	_ = windows.ReleaseMutex(m.handle)
	runtime.UnlockOSThread()
}

func (m *kernelMutex) destroy() error {
	if !m.destroyed.CompareAndSwap(false, true) {
		return api.ErrMutexDestroyed
	}
	return windows.CloseHandle(m.handle)
}

// srwMutex is the user-mode strategy: an exclusive slim reader/writer lock.
// The zero SRWLOCK is unlocked and needs no teardown. It is released on the
// acquiring OS thread like the kernel mutex.
type srwMutex struct {
	lock      uintptr
	destroyed atomic.Bool
}

func (m *srwMutex) Lock() {
	runtime.LockOSThread()
	procAcquireSRWLockExclusive.Call(uintptr(unsafe.Pointer(&m.lock)))
}

func (m *srwMutex) Unlock() {
	procReleaseSRWLockExclusive.Call(uintptr(unsafe.Pointer(&m.lock)))
	runtime.UnlockOSThread()
}

func (m *srwMutex) destroy() error {
	if !m.destroyed.CompareAndSwap(false, true) {
		return api.ErrMutexDestroyed
	}
	return nil
}
