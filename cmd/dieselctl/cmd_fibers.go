// File: cmd/dieselctl/cmd_fibers.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package main

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/A-Boring-Square/Diesel/api"
	"github.com/A-Boring-Square/Diesel/control"
	"github.com/A-Boring-Square/Diesel/fiber"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
	"github.com/spf13/cobra"
)

func newFibersCmd(e *env) *cobra.Command {
	var (
		count       int
		workers     int
		showMetrics bool
	)
	cmd := &cobra.Command{
		Use:   "fibers",
		Short: "Create, run and join a batch of fibers",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := e.cfg
			if cmd.Flags().Changed("workers") {
				cfg.Workers = workers
			}
			if count <= 0 {
				return fmt.Errorf("fibers: count must be positive: %w", api.ErrInvalidArgument)
			}

			reg := prometheus.NewRegistry()
			metrics, err := control.NewMetrics(reg)
			if err != nil {
				return err
			}
			sys, err := fiber.New(cfg.NewBackend(), cfg.FiberOptions(e.log, metrics)...)
			if err != nil {
				return err
			}
			if err := metrics.Observe(sys); err != nil {
				return err
			}
			if err := sys.Init(cfg.Workers, cfg.PriorityLevel()); err != nil {
				return err
			}

			var ran atomic.Int64
			handles := make([]*fiber.Fiber, 0, count)
			begin := time.Now()
			for i := 0; i < count; i++ {
				f, err := sys.CreateFiber(func(*api.FiberContext) { ran.Add(1) }, i)
				if err != nil {
					_ = sys.Shutdown()
					return err
				}
				handles = append(handles, f)
			}
			for _, f := range handles {
				if err := f.Join(); err != nil {
					_ = sys.Shutdown()
					return err
				}
			}
			elapsed := time.Since(begin)
			for _, f := range handles {
				if err := f.Destroy(); err != nil {
					_ = sys.Shutdown()
					return err
				}
			}
			if err := sys.Shutdown(); err != nil {
				return err
			}

			st := sys.Stats()
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "backend=%s workers=%d fibers=%d ran=%d elapsed=%s rate=%.0f/s\n",
				st.Backend, cfg.Workers, count, ran.Load(), elapsed, float64(count)/elapsed.Seconds())
			fmt.Fprintf(out, "created=%d executed=%d destroyed=%d panicked=%d cas_retries=%d\n",
				st.Created, st.Executed, st.Destroyed, st.Panicked, st.QueueRetries)

			if showMetrics {
				families, err := reg.Gather()
				if err != nil {
					return err
				}
				enc := expfmt.NewEncoder(out, expfmt.NewFormat(expfmt.TypeTextPlain))
				for _, mf := range families {
					if err := enc.Encode(mf); err != nil {
						return err
					}
				}
			}
			if ran.Load() != int64(count) {
				return fmt.Errorf("fibers: %d of %d bodies ran", ran.Load(), count)
			}
			return nil
		},
	}
	cmd.Flags().IntVarP(&count, "count", "n", 1000, "fibers to create")
	cmd.Flags().IntVarP(&workers, "workers", "w", 0, "worker threads (default from config)")
	cmd.Flags().BoolVar(&showMetrics, "metrics", false, "print Prometheus text exposition afterwards")
	return cmd
}
