// File: control/debug_test.go
// Author: momentics <momentics@gmail.com>

package control_test

import (
	"runtime"
	"testing"

	"github.com/A-Boring-Square/Diesel/control"
	"github.com/A-Boring-Square/Diesel/fiber"
	"github.com/A-Boring-Square/Diesel/kthread"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDebugProbes(t *testing.T) {
	dp := control.NewDebugProbes()
	control.RegisterPlatformProbes(dp)

	sys, err := fiber.New(kthread.NewEmulated())
	require.NoError(t, err)
	sys.RegisterProbes(dp)

	v, ok := dp.Probe("platform.os")
	require.True(t, ok)
	assert.Equal(t, runtime.GOOS, v)
	_, ok = dp.Probe("missing")
	assert.False(t, ok)

	state := dp.DumpState()
	assert.Equal(t, "emulated", state["fiber.backend"])
	assert.Equal(t, false, state["fiber.running"])
	assert.Equal(t, runtime.NumCPU(), state["platform.cpus"])

	names := dp.Names()
	assert.Len(t, names, len(state))
	assert.IsIncreasing(t, names)
}
