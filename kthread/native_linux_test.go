//go:build linux

// File: kthread/native_linux_test.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package kthread_test

import (
	"testing"

	"github.com/A-Boring-Square/Diesel/api"
	"github.com/A-Boring-Square/Diesel/kthread"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sys/unix"
)

func TestNative_KernelThreadID(t *testing.T) {
	b := kthread.Native()
	var tid int
	th, err := b.CreateThread(func(*api.ThreadContext) {
		tid = unix.Gettid()
	}, nil)
	require.NoError(t, err)
	require.NoError(t, b.Start(th))
	_, err = b.Join(th)
	require.NoError(t, err)
	assert.Equal(t, uint64(tid), th.ID())
	assert.NotEqual(t, unix.Getpid(), tid)
	require.NoError(t, b.Destroy(th))
}

func TestNative_YieldOnLockedThread(t *testing.T) {
	b := kthread.Native()
	var before, after int
	th, err := b.CreateThread(func(*api.ThreadContext) {
		before = unix.Gettid()
		for i := 0; i < 100; i++ {
			b.Yield()
		}
		after = unix.Gettid()
	}, nil)
	require.NoError(t, err)
	require.NoError(t, b.Start(th))
	_, err = b.Join(th)
	require.NoError(t, err)
	assert.Equal(t, before, after)
	assert.Equal(t, uint64(before), th.ID())
	require.NoError(t, b.Destroy(th))
}

func TestNative_Pin(t *testing.T) {
	var allowed unix.CPUSet
	require.NoError(t, unix.SchedGetaffinity(0, &allowed))
	cpu := -1
	for i := 0; i < 1024; i++ {
		if allowed.IsSet(i) {
			cpu = i
			break
		}
	}
	if cpu < 0 {
		t.Skip("no usable cpu in affinity mask")
	}

	b := kthread.Native()
	var got unix.CPUSet
	th, err := b.CreateThread(func(*api.ThreadContext) {
		_ = unix.SchedGetaffinity(0, &got)
	}, nil)
	require.NoError(t, err)
	require.NoError(t, kthread.Pin(b, th, cpu))
	require.NoError(t, b.Start(th))
	_, err = b.Join(th)
	require.NoError(t, err)

	assert.Equal(t, 1, got.Count())
	assert.True(t, got.IsSet(cpu))
	assert.ErrorIs(t, kthread.Pin(b, th, -1), api.ErrInvalidArgument)
	require.NoError(t, b.Destroy(th))
}

func TestNative_HighPriorityNeedsPrivilege(t *testing.T) {
	b := kthread.Native()
	th, err := b.CreateThread(func(*api.ThreadContext) {}, nil)
	require.NoError(t, err)
	defer b.Destroy(th)

	err = b.SetPriority(th, api.PriorityHigh)
	if err != nil {
		assert.True(t, errorsIsAny(err, unix.EACCES, unix.EPERM), "unexpected error: %v", err)
		assert.Equal(t, api.PriorityDefault, th.Priority())
		return
	}
	assert.Equal(t, api.PriorityHigh, th.Priority())
}
