//go:build unix && !linux

// File: kthread/native_unix.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Thread hooks for POSIX targets without a portable per-thread priority or
// affinity call. Priorities are recorded only.

package kthread

import (
	"sync/atomic"
	"time"

	"github.com/A-Boring-Square/Diesel/api"
)

var threadSeq atomic.Uint64

type osThread struct{}

func (o *osThread) attach(t *nativeThread) error {
	t.ctx.ID = threadSeq.Add(1)
	return nil
}

func (o *osThread) setPriority(*nativeThread, api.Priority) error { return nil }

func (o *osThread) pin(*nativeThread, int) error { return api.ErrNotSupported }

func (o *osThread) release() error { return nil }

func osSleep(ms int) {
	time.Sleep(time.Duration(ms) * time.Millisecond)
}

func newOSMutex(bool) (api.Mutex, error) {
	return &runtimeMutex{}, nil
}
