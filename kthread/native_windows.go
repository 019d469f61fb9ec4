//go:build windows

// File: kthread/native_windows.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Windows thread hooks: a thread handle opened on the locked OS thread serves
// priority and affinity calls until Destroy closes it.

package kthread

import (
	"fmt"

	"github.com/A-Boring-Square/Diesel/api"
	"golang.org/x/sys/windows"
)

var (
	modkernel32                 = windows.NewLazySystemDLL("kernel32.dll")
	procSetThreadPriority       = modkernel32.NewProc("SetThreadPriority")
	procSetThreadAffinityMask   = modkernel32.NewProc("SetThreadAffinityMask")
	procSwitchToThread          = modkernel32.NewProc("SwitchToThread")
	procAcquireSRWLockExclusive = modkernel32.NewProc("AcquireSRWLockExclusive")
	procReleaseSRWLockExclusive = modkernel32.NewProc("ReleaseSRWLockExclusive")
)

const (
	threadSetInformation   = 0x0020
	threadQueryInformation = 0x0040
)

var threadPriorities = [...]int32{
	api.PriorityLow:     -1, // THREAD_PRIORITY_BELOW_NORMAL
	api.PriorityDefault: 0,  // THREAD_PRIORITY_NORMAL
	api.PriorityHigh:    1,  // THREAD_PRIORITY_ABOVE_NORMAL
}

type osThread struct {
	handle windows.Handle
}

func (o *osThread) attach(t *nativeThread) error {
	id := windows.GetCurrentThreadId()
	h, err := windows.OpenThread(threadSetInformation|threadQueryInformation, false, id)
	if err != nil {
		return fmt.Errorf("OpenThread: %w", err)
	}
	o.handle = h
	t.ctx.ID = uint64(id)
	return nil
}

func (o *osThread) setPriority(_ *nativeThread, p api.Priority) error {
	level := threadPriorities[p]
	r, _, err := procSetThreadPriority.Call(uintptr(o.handle), uintptr(level))
	if r == 0 {
		return fmt.Errorf("SetThreadPriority: %w", err)
	}
	return nil
}

func (o *osThread) pin(_ *nativeThread, cpuID int) error {
	if cpuID >= 64 {
		return api.ErrInvalidArgument
	}
	mask := uintptr(1) << uint(cpuID)
	r, _, err := procSetThreadAffinityMask.Call(uintptr(o.handle), mask)
	if r == 0 {
		return fmt.Errorf("SetThreadAffinityMask: %w", err)
	}
	return nil
}

func (o *osThread) release() error {
	if o.handle == 0 {
		return nil
	}
	err := windows.CloseHandle(o.handle)
	o.handle = 0
	return err
}

func osYield() {
	procSwitchToThread.Call()
}

func osSleep(ms int) {
	windows.SleepEx(uint32(ms), false)
}

func newOSMutex(userMode bool) (api.Mutex, error) {
	if userMode {
		return &srwMutex{}, nil
	}
	m, err := newKernelMutex()
	if err != nil {
		return nil, err
	}
	return m, nil
}
