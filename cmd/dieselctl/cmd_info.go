// File: cmd/dieselctl/cmd_info.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package main

import (
	"fmt"

	"github.com/A-Boring-Square/Diesel/control"
	"github.com/A-Boring-Square/Diesel/fiber"
	"github.com/spf13/cobra"
)

func newInfoCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "info",
		Short: "Print platform and runtime debug probes",
		RunE: func(cmd *cobra.Command, _ []string) error {
			dp := control.NewDebugProbes()
			control.RegisterPlatformProbes(dp)

			sys, err := fiber.New(e.cfg.NewBackend(), e.cfg.FiberOptions(e.log, nil)...)
			if err != nil {
				return err
			}
			sys.RegisterProbes(dp)

			state := dp.DumpState()
			out := cmd.OutOrStdout()
			for _, name := range dp.Names() {
				fmt.Fprintf(out, "%-24s %v\n", name, state[name])
			}
			return sys.Close()
		},
	}
}
