// File: cmd/dieselctl/main.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// dieselctl drives the runtime from the command line: fiber and mutex
// benchmarks, the emulated scheduler demo and platform introspection.

package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "dieselctl:", err)
		os.Exit(1)
	}
}
