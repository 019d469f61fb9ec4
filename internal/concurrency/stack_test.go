package concurrency

import (
	"runtime"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
)

type sliceLinks []atomic.Uint32

func (l sliceLinks) Next(idx uint32) *atomic.Uint32 { return &l[idx] }

func TestStack_LIFO(t *testing.T) {
	s := NewStack(make(sliceLinks, 8))
	require.True(t, s.Empty())

	for i := uint32(0); i < 5; i++ {
		s.Push(i)
	}
	assert.Equal(t, 5, s.Len())

	for want := 4; want >= 0; want-- {
		idx, ok := s.Pop()
		require.True(t, ok)
		assert.Equal(t, uint32(want), idx)
	}
	_, ok := s.Pop()
	assert.False(t, ok)
	assert.True(t, s.Empty())
	assert.Equal(t, 0, s.Len())
}

func TestStack_Drain(t *testing.T) {
	s := NewStack(make(sliceLinks, 4))
	s.Push(2)
	s.Push(0)
	s.Push(3)

	var got []uint32
	n := s.Drain(func(idx uint32) { got = append(got, idx) })
	assert.Equal(t, 3, n)
	assert.Equal(t, []uint32{3, 0, 2}, got)
	assert.True(t, s.Empty())
}

func TestStack_MPMC(t *testing.T) {
	const (
		producers   = 8
		consumers   = 8
		perProducer = 5000
		total       = producers * perProducer
	)
	s := NewStack(make(sliceLinks, total))
	seen := make([]atomic.Int32, total)
	var popped atomic.Int64

	var g errgroup.Group
	for p := 0; p < producers; p++ {
		base := uint32(p * perProducer)
		g.Go(func() error {
			for i := uint32(0); i < perProducer; i++ {
				s.Push(base + i)
			}
			return nil
		})
	}
	for c := 0; c < consumers; c++ {
		g.Go(func() error {
			for popped.Load() < total {
				idx, ok := s.Pop()
				if !ok {
					runtime.Gosched()
					continue
				}
				seen[idx].Add(1)
				popped.Add(1)
			}
			return nil
		})
	}
	require.NoError(t, g.Wait())

	for i := range seen {
		if n := seen[i].Load(); n != 1 {
			t.Fatalf("index %d popped %d times", i, n)
		}
	}
	assert.True(t, s.Empty())
}

// Each goroutine recycles a private set of indices through the shared stack,
// which is the pop/push pattern that breaks an untagged Treiber stack.
func TestStack_RecycleUnderContention(t *testing.T) {
	const (
		workers = 8
		owned   = 4
		rounds  = 20000
	)
	s := NewStack(make(sliceLinks, workers*owned))
	for i := uint32(0); i < workers*owned; i++ {
		s.Push(i)
	}

	var g errgroup.Group
	for w := 0; w < workers; w++ {
		g.Go(func() error {
			for r := 0; r < rounds; r++ {
				idx, ok := s.Pop()
				if !ok {
					runtime.Gosched()
					continue
				}
				s.Push(idx)
			}
			return nil
		})
	}
	require.NoError(t, g.Wait())

	counts := make(map[uint32]int)
	s.Drain(func(idx uint32) { counts[idx]++ })
	assert.Len(t, counts, workers*owned)
	for idx, n := range counts {
		assert.Equal(t, 1, n, "index %d", idx)
	}
}
