// File: fiber/arena.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Slot arena. Pages are allocated on demand and never freed, so a slot
// pointer stays valid for the life of the System; the generation counter tells
// a live handle from a stale one.

package fiber

import (
	"sync/atomic"

	"github.com/A-Boring-Square/Diesel/api"
	"github.com/A-Boring-Square/Diesel/internal/concurrency"
	"github.com/eapache/queue"
)

const (
	pageShift = 8
	pageSize  = 1 << pageShift
	pageMask  = pageSize - 1
	maxPages  = 4096
)

// Slot states.
const (
	slotFree uint32 = iota
	slotIdle
	slotQueued
	slotRunning
	slotFinished
)

type slot struct {
	next     atomic.Uint32 // run-queue link
	state    atomic.Uint32
	gen      atomic.Uint32
	destroy  atomic.Bool
	priority atomic.Int32
	done     atomic.Pointer[latch]

	// Written by CreateFiber before the first push, read by the popping worker.
	worker api.FiberWorker
	ctx    api.FiberContext
}

// latch boxes the per-incarnation completion event.
type latch struct {
	api.Event
}

type page [pageSize]slot

var _ concurrency.Links = (*arena)(nil)

type arena struct {
	mu    api.Mutex // guards top, free and page allocation
	pages [maxPages]atomic.Pointer[page]
	top   uint32
	limit uint32
	free  *queue.Queue // released indices, oldest reused first
	live  atomic.Int64
}

func newArena(mu api.Mutex, limit uint32) *arena {
	return &arena{mu: mu, limit: limit, free: queue.New()}
}

// Next implements concurrency.Links.
func (a *arena) Next(idx uint32) *atomic.Uint32 {
	return &a.slot(idx).next
}

// slot returns the slot at idx, or nil if idx was never allocated.
func (a *arena) slot(idx uint32) *slot {
	pg := idx >> pageShift
	if pg >= maxPages {
		return nil
	}
	p := a.pages[pg].Load()
	if p == nil {
		return nil
	}
	return &p[idx&pageMask]
}

// alloc hands out a free slot index. The slot is still in slotFree state.
func (a *arena) alloc() (uint32, *slot, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.free.Length() > 0 {
		idx := a.free.Remove().(uint32)
		a.live.Add(1)
		return idx, a.slot(idx), nil
	}
	if a.top >= a.limit {
		return 0, nil, api.ErrArenaExhausted
	}
	idx := a.top
	if idx&pageMask == 0 {
		a.pages[idx>>pageShift].Store(new(page))
	}
	a.top++
	a.live.Add(1)
	return idx, a.slot(idx), nil
}

// release returns idx to the free list. The caller has already moved the slot
// to slotFree and bumped its generation.
func (a *arena) release(idx uint32) {
	a.mu.Lock()
	a.free.Add(idx)
	a.mu.Unlock()
	a.live.Add(-1)
}

// Live returns the number of allocated slots.
func (a *arena) Live() int64 { return a.live.Load() }
