//go:build linux

// File: kthread/mutex_futex_linux_test.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package kthread

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
)

func TestFutex_WaitValueMismatch(t *testing.T) {
	var word uint32 = 5
	// Returns immediately: the word does not hold the expected value.
	require.NoError(t, futexWait(&word, 1))
	require.NoError(t, futexWake(&word, 1))
}

func TestFutex_WakeWaiter(t *testing.T) {
	var word uint32 = 1
	var woke atomic.Bool

	var g errgroup.Group
	g.Go(func() error {
		for atomic.LoadUint32(&word) == 1 {
			if err := futexWait(&word, 1); err != nil {
				return err
			}
		}
		woke.Store(true)
		return nil
	})

	time.Sleep(10 * time.Millisecond)
	atomic.StoreUint32(&word, 0)
	require.NoError(t, futexWake(&word, 1))
	require.NoError(t, g.Wait())
	assert.True(t, woke.Load())
}

func TestFutexMutex_Contended(t *testing.T) {
	var m futexMutex
	counter := 0

	var g errgroup.Group
	for i := 0; i < 16; i++ {
		g.Go(func() error {
			for j := 0; j < 5000; j++ {
				m.Lock()
				counter++
				m.Unlock()
			}
			return nil
		})
	}
	require.NoError(t, g.Wait())
	assert.Equal(t, 16*5000, counter)
	assert.Equal(t, mutexUnlocked, atomic.LoadUint32(&m.state))
}
