// File: fiber/arena_test.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package fiber

import (
	"testing"

	"github.com/A-Boring-Square/Diesel/api"
	"github.com/A-Boring-Square/Diesel/kthread"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestArena(t *testing.T, limit uint32) *arena {
	t.Helper()
	mu, err := kthread.NewEmulated().NewMutex()
	require.NoError(t, err)
	return newArena(mu, limit)
}

func TestArena_PagesOnDemand(t *testing.T) {
	a := newTestArena(t, DefaultArenaLimit)
	assert.Nil(t, a.slot(0))

	for i := 0; i < pageSize+1; i++ {
		idx, sl, err := a.alloc()
		require.NoError(t, err)
		require.Equal(t, uint32(i), idx)
		require.Same(t, sl, a.slot(idx))
	}
	assert.NotNil(t, a.pages[1].Load())
	assert.Nil(t, a.pages[2].Load())
	assert.Nil(t, a.slot(2*pageSize))
	assert.Nil(t, a.slot(maxPages*pageSize))
	assert.Equal(t, int64(pageSize+1), a.Live())
}

func TestArena_FreeListIsFIFO(t *testing.T) {
	a := newTestArena(t, 8)
	for i := 0; i < 4; i++ {
		_, _, err := a.alloc()
		require.NoError(t, err)
	}
	a.release(2)
	a.release(0)

	idx, _, err := a.alloc()
	require.NoError(t, err)
	assert.Equal(t, uint32(2), idx)
	idx, _, err = a.alloc()
	require.NoError(t, err)
	assert.Equal(t, uint32(0), idx)
	idx, _, err = a.alloc()
	require.NoError(t, err)
	assert.Equal(t, uint32(4), idx)
}

func TestArena_Limit(t *testing.T) {
	a := newTestArena(t, 1)
	_, _, err := a.alloc()
	require.NoError(t, err)
	_, _, err = a.alloc()
	assert.ErrorIs(t, err, api.ErrArenaExhausted)

	a.release(0)
	_, _, err = a.alloc()
	assert.NoError(t, err)
}

func TestFiberID_PacksGeneration(t *testing.T) {
	assert.Equal(t, uint64(7), fiberID(7, 0))
	assert.Equal(t, uint64(1)<<32|7, fiberID(7, 1))
	assert.NotEqual(t, fiberID(7, 1), fiberID(7, 2))
}
