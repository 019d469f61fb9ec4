// File: kthread/helpers_test.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package kthread_test

import "errors"

func errorsIsAny(err error, targets ...error) bool {
	for _, t := range targets {
		if errors.Is(err, t) {
			return true
		}
	}
	return false
}
