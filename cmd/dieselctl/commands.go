// File: cmd/dieselctl/commands.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package main

import (
	"github.com/A-Boring-Square/Diesel/control"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

// env is the state shared by every subcommand once flags are parsed.
type env struct {
	configPath string
	backend    string
	logLevel   string
	pretty     bool

	cfg control.Config
	log zerolog.Logger
}

func newRootCmd() *cobra.Command {
	e := &env{}
	root := &cobra.Command{
		Use:           "dieselctl",
		Short:         "Exercise the Diesel thread, mutex and fiber runtime",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return e.load(cmd)
		},
	}

	flags := root.PersistentFlags()
	flags.StringVarP(&e.configPath, "config", "c", "", "YAML config file")
	flags.StringVar(&e.backend, "backend", "", "override backend: native or emulated")
	flags.StringVar(&e.logLevel, "log-level", "", "override log level")
	flags.BoolVar(&e.pretty, "pretty", false, "human-readable log output")

	root.AddCommand(
		newFibersCmd(e),
		newMutexCmd(e),
		newEmulatedCmd(e),
		newInfoCmd(e),
	)
	return root
}

// load resolves the effective config: file (or defaults), then flag
// overrides, then validation.
func (e *env) load(cmd *cobra.Command) error {
	cfg := control.DefaultConfig()
	if e.configPath != "" {
		loaded, err := control.LoadConfig(e.configPath)
		if err != nil {
			return err
		}
		cfg = loaded
	}
	if e.backend != "" {
		cfg.Backend = e.backend
	}
	if e.logLevel != "" {
		cfg.LogLevel = e.logLevel
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	level := cfg.LogLevel
	if level == "" {
		level = "info"
	}
	log, err := control.NewLogger(cmd.ErrOrStderr(), level, e.pretty)
	if err != nil {
		return err
	}
	e.cfg = cfg
	e.log = log
	return nil
}
