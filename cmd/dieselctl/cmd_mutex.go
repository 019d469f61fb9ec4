// File: cmd/dieselctl/cmd_mutex.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/A-Boring-Square/Diesel/api"
	"github.com/spf13/cobra"
)

func newMutexCmd(e *env) *cobra.Command {
	var (
		threads  int
		rounds   int
		userMode bool
	)
	cmd := &cobra.Command{
		Use:   "mutex",
		Short: "Contend a backend mutex from several kernel threads",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if threads <= 0 || rounds <= 0 {
				return fmt.Errorf("mutex: threads and rounds must be positive: %w", api.ErrInvalidArgument)
			}
			cfg := e.cfg
			if cmd.Flags().Changed("user-mode") {
				cfg.UserModeLocks = userMode
			}
			b := cfg.NewBackend()
			res, err := contend(b, threads, rounds)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "backend=%s user_mode=%v threads=%d rounds=%d counter=%d elapsed=%s rate=%.0f/s\n",
				b.Name(), cfg.UserModeLocks, threads, rounds, res.counter, res.elapsed,
				float64(res.counter)/res.elapsed.Seconds())
			if res.counter != threads*rounds {
				return fmt.Errorf("mutex: lost updates: %d of %d", res.counter, threads*rounds)
			}
			return nil
		},
	}
	cmd.Flags().IntVarP(&threads, "threads", "t", 4, "kernel threads")
	cmd.Flags().IntVarP(&rounds, "rounds", "r", 100000, "lock/unlock rounds per thread")
	cmd.Flags().BoolVar(&userMode, "user-mode", false, "use the user-mode lock strategy")
	return cmd
}

type contention struct {
	counter int
	elapsed time.Duration
}

// contend runs threads workers that each increment a shared counter rounds
// times under one mutex.
func contend(b api.Backend, threads, rounds int) (contention, error) {
	m, err := b.NewMutex()
	if err != nil {
		return contention{}, err
	}
	var res contention
	handles := make([]api.Thread, 0, threads)
	for i := 0; i < threads; i++ {
		t, err := b.CreateThread(func(*api.ThreadContext) {
			for j := 0; j < rounds; j++ {
				m.Lock()
				res.counter++
				m.Unlock()
			}
		}, i)
		if err != nil {
			return contention{}, err
		}
		handles = append(handles, t)
	}

	begin := time.Now()
	var errs []error
	for _, t := range handles {
		errs = append(errs, b.Start(t))
	}
	for _, t := range handles {
		_, err := b.Join(t)
		errs = append(errs, err, b.Destroy(t))
	}
	res.elapsed = time.Since(begin)
	errs = append(errs, b.DestroyMutex(m))
	return res, errors.Join(errs...)
}
