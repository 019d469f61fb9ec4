// File: kthread/pin.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package kthread

import (
	"fmt"

	"github.com/A-Boring-Square/Diesel/api"
)

// Pin binds t to cpuID when the backend supports affinity.
func Pin(b api.Backend, t api.Thread, cpuID int) error {
	a, ok := b.(api.Affinity)
	if !ok {
		return fmt.Errorf("kthread: pin on %s: %w", b.Name(), api.ErrNotSupported)
	}
	return a.Pin(t, cpuID)
}
