// File: internal/concurrency/stack.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Multi-producer/multi-consumer Treiber stack over arena indices. The head
// word carries a modification tag in its upper half so a pop that raced with
// a pop/push pair of the same index fails its CAS instead of corrupting links.

package concurrency

import (
	"sync/atomic"

	"github.com/A-Boring-Square/Diesel/api"
	"golang.org/x/sys/cpu"
)

// Ensure compile-time interface compliance.
var _ api.RunQueue = (*Stack)(nil)

// Links resolves the intrusive next word of slot idx. The returned pointer
// must stay valid for the lifetime of the stack.
type Links interface {
	Next(idx uint32) *atomic.Uint32
}

// nilLink terminates a chain; stored links are idx+1.
const nilLink uint32 = 0

// MaxIndex is the largest index the stack can carry.
const MaxIndex = ^uint32(0) - 1

// Stack is a lock-free LIFO of slot indices.
type Stack struct {
	_       cpu.CacheLinePad
	head    atomic.Uint64 // tag<<32 | link
	_       cpu.CacheLinePad
	depth   atomic.Int64
	retries atomic.Uint64
	links   Links
}

// NewStack returns an empty stack linking through links.
func NewStack(links Links) *Stack {
	return &Stack{links: links}
}

func pack(tag, link uint32) uint64 { return uint64(tag)<<32 | uint64(link) }

func unpack(w uint64) (tag, link uint32) { return uint32(w >> 32), uint32(w) }

// Push links idx on top of the stack, retrying until its CAS lands.
func (s *Stack) Push(idx uint32) {
	next := s.links.Next(idx)
	for {
		old := s.head.Load()
		tag, top := unpack(old)
		next.Store(top)
		if s.head.CompareAndSwap(old, pack(tag+1, idx+1)) {
			s.depth.Add(1)
			return
		}
		s.retries.Add(1)
	}
}

// Pop unlinks the top index. ok is false when the stack was observed empty.
func (s *Stack) Pop() (idx uint32, ok bool) {
	for {
		old := s.head.Load()
		tag, top := unpack(old)
		if top == nilLink {
			return 0, false
		}
		next := s.links.Next(top - 1).Load()
		if s.head.CompareAndSwap(old, pack(tag+1, next)) {
			s.depth.Add(-1)
			return top - 1, true
		}
		s.retries.Add(1)
	}
}

// Drain pops every index currently linked and hands it to fn.
func (s *Stack) Drain(fn func(idx uint32)) int {
	n := 0
	for {
		idx, ok := s.Pop()
		if !ok {
			return n
		}
		fn(idx)
		n++
	}
}

// Len returns the approximate number of linked indices.
func (s *Stack) Len() int {
	if d := s.depth.Load(); d > 0 {
		return int(d)
	}
	return 0
}

// Empty reports whether the head was nil at the time of the call.
func (s *Stack) Empty() bool {
	_, top := unpack(s.head.Load())
	return top == nilLink
}

// Retries returns the number of failed CAS attempts so far.
func (s *Stack) Retries() uint64 {
	return s.retries.Load()
}
