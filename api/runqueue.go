// Package api
// Author: momentics@gmail.com
//
// Lock-free run queue contract over arena slot indices.

package api

// RunQueue is a multi-producer multi-consumer queue of slot indices. It gives
// no ordering guarantee to callers; the shipped implementation is LIFO.
type RunQueue interface {
	// Push links idx into the queue. idx must not already be linked.
	Push(idx uint32)
	// Pop unlinks and returns one index, ok false when empty.
	Pop() (idx uint32, ok bool)
	// Len is an approximate depth for metrics.
	Len() int
}
