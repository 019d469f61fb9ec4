// File: fiber/emulated_test.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package fiber_test

import (
	"testing"

	"github.com/A-Boring-Square/Diesel/api"
	"github.com/A-Boring-Square/Diesel/fiber"
	"github.com/A-Boring-Square/Diesel/kthread"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSystem_EmulatedBackend(t *testing.T) {
	emu := kthread.NewEmulated()
	sys, err := fiber.New(emu)
	require.NoError(t, err)
	require.NoError(t, sys.Init(2, api.PriorityHigh))
	assert.Equal(t, 2, emu.Len())

	var order []int
	handles := make([]*fiber.Fiber, 5)
	for i := range handles {
		handles[i], err = sys.CreateFiber(func(ctx *api.FiberContext) {
			order = append(order, ctx.UserData.(int))
		}, i)
		require.NoError(t, err)
	}

	// Join pumps the scheduler; the queue is LIFO.
	require.NoError(t, handles[0].Join())
	assert.Equal(t, []int{4, 3, 2, 1, 0}, order)
	for _, f := range handles {
		assert.True(t, f.Finished())
	}

	require.NoError(t, sys.Shutdown())
	assert.Zero(t, sys.Stats().Workers)
	emu.Run()
	assert.Zero(t, emu.Len())
}

func TestSystem_EmulatedSleepingFiber(t *testing.T) {
	emu := kthread.NewEmulated()
	sys, err := fiber.New(emu, fiber.WithJoinSpin(0))
	require.NoError(t, err)
	require.NoError(t, sys.Init(1, api.PriorityDefault))
	defer sys.Shutdown()

	var before, after uint64
	f, err := sys.CreateFiber(func(*api.FiberContext) {
		before = emu.Ticks()
		sys.Sleep(3)
	}, nil)
	require.NoError(t, err)
	g, err := sys.CreateFiber(func(*api.FiberContext) {
		after = emu.Ticks()
	}, nil)
	require.NoError(t, err)

	require.NoError(t, f.Join())
	assert.True(t, g.Finished())
	// g ran first (LIFO); f put its worker to sleep for three ticks.
	assert.Less(t, after, before)

	h, err := sys.CreateFiber(func(*api.FiberContext) {}, nil)
	require.NoError(t, err)
	start := emu.Ticks()
	require.NoError(t, h.Join())
	assert.GreaterOrEqual(t, emu.Ticks()-start, uint64(3))
}

func TestSystem_EmulatedJoinAfterShutdown(t *testing.T) {
	emu := kthread.NewEmulated()
	sys, err := fiber.New(emu)
	require.NoError(t, err)
	require.NoError(t, sys.Init(1, api.PriorityDefault))
	require.NoError(t, sys.Shutdown())

	f, err := sys.CreateFiber(func(*api.FiberContext) {}, nil)
	require.NoError(t, err)
	assert.ErrorIs(t, f.Join(), api.ErrSystemNotRunning)
}
