// File: control/store.go
// Author: momentics <momentics@gmail.com>
//
// Thread-safe configuration store with validated updates and reload
// propagation.

package control

import (
	"slices"
	"sync"

	"github.com/A-Boring-Square/Diesel/fiber"
)

// Store holds the current Config and notifies listeners on change.
type Store struct {
	mu        sync.RWMutex
	cfg       Config
	listeners []func(Config)
}

// NewStore initializes a store with cfg, which is assumed valid.
func NewStore(cfg Config) *Store {
	return &Store{cfg: cfg}
}

// Snapshot returns a copy of the current config.
func (s *Store) Snapshot() Config {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cfg
}

// Update validates cfg, swaps it in and runs every listener synchronously.
// An invalid config leaves the store untouched.
func (s *Store) Update(cfg Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	s.cfg = cfg
	listeners := slices.Clone(s.listeners)
	s.mu.Unlock()

	for _, fn := range listeners {
		fn(cfg)
	}
	return nil
}

// Reload re-reads path and applies it with Update.
func (s *Store) Reload(path string) error {
	cfg, err := LoadConfig(path)
	if err != nil {
		return err
	}
	return s.Update(cfg)
}

// OnReload registers a listener called after each successful update.
func (s *Store) OnReload(fn func(Config)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, fn)
}

// Bind keeps the tunable settings of sys in step with the store. Settings
// fixed at construction (backend, workers, arena limit) need a restart.
func (s *Store) Bind(sys *fiber.System) {
	s.OnReload(func(cfg Config) {
		sys.Tune(cfg.IdleSleepMS, cfg.JoinSpin)
	})
}
