// File: kthread/event.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package kthread

import (
	"sync"

	"github.com/A-Boring-Square/Diesel/api"
)

var _ api.Event = (*chanEvent)(nil)

// chanEvent is a one-shot latch for preemptive backends.
type chanEvent struct {
	once sync.Once
	ch   chan struct{}
}

func newChanEvent() *chanEvent {
	return &chanEvent{ch: make(chan struct{})}
}

func (e *chanEvent) Set() {
	e.once.Do(func() { close(e.ch) })
}

func (e *chanEvent) IsSet() bool {
	select {
	case <-e.ch:
		return true
	default:
		return false
	}
}

func (e *chanEvent) Wait() {
	<-e.ch
}
