// File: cmd/dieselctl/cmd_emulated.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package main

import (
	"fmt"
	"strings"

	"github.com/A-Boring-Square/Diesel/api"
	"github.com/A-Boring-Square/Diesel/kthread"
	"github.com/spf13/cobra"
)

func newEmulatedCmd(_ *env) *cobra.Command {
	var steps int
	cmd := &cobra.Command{
		Use:   "emulated",
		Short: "Show how the cooperative scheduler orders yielding threads",
		RunE: func(cmd *cobra.Command, _ []string) error {
			trace, err := emulatedSchedule(steps)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for i, name := range trace {
				fmt.Fprintf(out, "tick %3d  %s\n", i+1, name)
			}
			fmt.Fprintf(out, "order: %s\n", strings.Join(trace, " "))
			return nil
		},
	}
	cmd.Flags().IntVarP(&steps, "steps", "s", 2, "steps each thread takes before finishing")
	return cmd
}

// emulatedSchedule starts one thread per priority plus a second default one
// and records which thread runs on every tick.
func emulatedSchedule(steps int) ([]string, error) {
	if steps <= 0 {
		return nil, fmt.Errorf("emulated: steps must be positive: %w", api.ErrInvalidArgument)
	}
	emu := kthread.NewEmulated()
	var trace []string

	specs := []struct {
		name string
		p    api.Priority
	}{
		{"low", api.PriorityLow},
		{"default-a", api.PriorityDefault},
		{"high", api.PriorityHigh},
		{"default-b", api.PriorityDefault},
	}
	for _, s := range specs {
		name, left := s.name, steps
		t, err := emu.CreateThread(func(*api.ThreadContext) {
			trace = append(trace, name)
			left--
			if left > 0 {
				emu.Yield()
			}
		}, nil)
		if err != nil {
			return nil, err
		}
		if err := emu.SetPriority(t, s.p); err != nil {
			return nil, err
		}
		if err := emu.Start(t); err != nil {
			return nil, err
		}
	}
	emu.Run()
	return trace, nil
}
