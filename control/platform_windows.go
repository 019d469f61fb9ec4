//go:build windows

// File: control/platform_windows.go
// Author: momentics <momentics@gmail.com>
//
// Windows-specific debug probes.

package control

import (
	"runtime"

	"golang.org/x/sys/windows"
)

// RegisterPlatformProbes publishes CPU visibility and the user-mode lock
// strategy available on Windows.
func RegisterPlatformProbes(dp *DebugProbes) {
	dp.RegisterProbe("platform.os", func() any { return runtime.GOOS })
	dp.RegisterProbe("platform.cpus", func() any { return runtime.NumCPU() })
	dp.RegisterProbe("platform.group0_max_cpus", func() any {
		return int(windows.GetMaximumProcessorCount(0))
	})
	dp.RegisterProbe("platform.user_mode_lock", func() any { return "srwlock" })
}
