//go:build linux

// File: kthread/native_linux.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Linux thread hooks: per-thread nice values and sched_setaffinity on the
// kernel tid.

package kthread

import (
	"time"

	"github.com/A-Boring-Square/Diesel/api"
	"golang.org/x/sys/unix"
)

// osYield hands the kernel thread's time slice back to the scheduler.
func osYield() {
	unix.Syscall(unix.SYS_SCHED_YIELD, 0, 0, 0)
}

// niceLevels maps api priorities to nice values. Negative values need
// CAP_SYS_NICE or a permissive RLIMIT_NICE.
var niceLevels = [...]int{
	api.PriorityLow:     10,
	api.PriorityDefault: 0,
	api.PriorityHigh:    -5,
}

type osThread struct{}

func (o *osThread) attach(t *nativeThread) error {
	t.ctx.ID = uint64(unix.Gettid())
	return nil
}

func (o *osThread) setPriority(t *nativeThread, p api.Priority) error {
	return unix.Setpriority(unix.PRIO_PROCESS, int(t.ctx.ID), niceLevels[p])
}

// maxCPUs matches the glibc CPU_SETSIZE that unix.CPUSet is sized for.
const maxCPUs = 1024

func (o *osThread) pin(t *nativeThread, cpuID int) error {
	if cpuID >= maxCPUs {
		return api.ErrInvalidArgument
	}
	var set unix.CPUSet
	set.Zero()
	set.Set(cpuID)
	return unix.SchedSetaffinity(int(t.ctx.ID), &set)
}

func (o *osThread) release() error { return nil }

func osSleep(ms int) {
	ts := unix.NsecToTimespec(int64(ms) * int64(time.Millisecond))
	for {
		var rem unix.Timespec
		if err := unix.Nanosleep(&ts, &rem); err != unix.EINTR {
			return
		}
		ts = rem
	}
}

func newOSMutex(userMode bool) (api.Mutex, error) {
	if userMode {
		return &futexMutex{}, nil
	}
	return &runtimeMutex{}, nil
}
