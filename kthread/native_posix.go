//go:build unix && !linux

// File: kthread/native_posix.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package kthread

import "runtime"

// osYield gives up the processor. A locked goroutine yields its OS thread
// along with it.
func osYield() {
	runtime.Gosched()
}
