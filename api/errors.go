// Package api
// Author: momentics <momentics@gmail.com>
//
// Common error values used across the runtime. Backends wrap OS failures
// with these sentinels so callers can rely on errors.Is.

package api

import "errors"

var (
	ErrInvalidHandle   = errors.New("invalid handle")
	ErrInvalidArgument = errors.New("invalid argument")
	ErrThreadDestroyed = errors.New("thread already destroyed")
	ErrAlreadyStarted  = errors.New("thread already started")
	ErrNotStarted      = errors.New("thread not started")
	ErrNotSupported    = errors.New("operation not supported")
	ErrMutexDestroyed  = errors.New("mutex already destroyed")
	ErrDeadlock        = errors.New("no runnable thread can make progress")

	ErrSystemRunning    = errors.New("fiber system already running")
	ErrSystemNotRunning = errors.New("fiber system not running")
	ErrStaleFiber       = errors.New("stale fiber handle")
	ErrFiberDestroyed   = errors.New("fiber already destroyed")
	ErrArenaExhausted   = errors.New("fiber arena exhausted")
)
