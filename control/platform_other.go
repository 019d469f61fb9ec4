//go:build !linux && !windows

// File: control/platform_other.go
// Author: momentics <momentics@gmail.com>

package control

import "runtime"

// RegisterPlatformProbes publishes CPU visibility. User-mode locks fall back
// to the Go runtime mutex here.
func RegisterPlatformProbes(dp *DebugProbes) {
	dp.RegisterProbe("platform.os", func() any { return runtime.GOOS })
	dp.RegisterProbe("platform.cpus", func() any { return runtime.NumCPU() })
	dp.RegisterProbe("platform.user_mode_lock", func() any { return "runtime" })
}
