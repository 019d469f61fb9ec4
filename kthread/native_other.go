//go:build !unix && !windows

// File: kthread/native_other.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package kthread

import "github.com/A-Boring-Square/Diesel/api"

// Native falls back to the emulated scheduler on targets without native
// threading (js/wasm, wasip1, plan9).
func Native(...Option) api.Backend {
	return NewEmulated()
}
