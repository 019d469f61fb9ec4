// Package api
// Author: momentics@gmail.com
//
// CPU affinity for kernel threads.

package api

// Affinity is implemented by backends able to bind a thread to one logical
// CPU. Pin may be called before or after Start.
type Affinity interface {
	Pin(t Thread, cpuID int) error
}
