// File: kthread/options.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package kthread

// Option customizes a native backend.
type Option func(*options)

type options struct {
	userModeLocks bool
}

// WithUserModeLocks selects the user-mode mutex strategy where the platform
// has one: a futex lock on Linux, a slim reader/writer lock on Windows. It is
// ignored elsewhere.
func WithUserModeLocks(on bool) Option {
	return func(o *options) {
		o.userModeLocks = on
	}
}

func buildOptions(opts []Option) options {
	var o options
	for _, fn := range opts {
		if fn != nil {
			fn(&o)
		}
	}
	return o
}
