//go:build linux

// File: control/platform_linux.go
// Author: momentics <momentics@gmail.com>
//
// Linux-specific debug probes.

package control

import (
	"runtime"

	"golang.org/x/sys/unix"
)

// RegisterPlatformProbes publishes CPU visibility and the user-mode lock
// strategy available on Linux.
func RegisterPlatformProbes(dp *DebugProbes) {
	dp.RegisterProbe("platform.os", func() any { return runtime.GOOS })
	dp.RegisterProbe("platform.cpus", func() any { return runtime.NumCPU() })
	dp.RegisterProbe("platform.affinity_cpus", func() any {
		var set unix.CPUSet
		if err := unix.SchedGetaffinity(0, &set); err != nil {
			return -1
		}
		return set.Count()
	})
	dp.RegisterProbe("platform.user_mode_lock", func() any { return "futex" })
}
