// File: control/config.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Runtime configuration loaded from YAML and validated before use.

package control

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/A-Boring-Square/Diesel/api"
	"github.com/A-Boring-Square/Diesel/fiber"
	"github.com/A-Boring-Square/Diesel/kthread"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"
)

// Backend names accepted in Config.Backend.
const (
	BackendNative   = "native"
	BackendEmulated = "emulated"
)

// Config describes how to build a backend and a fiber system.
type Config struct {
	Backend       string `yaml:"backend" validate:"oneof=native emulated"`
	Workers       int    `yaml:"workers" validate:"gte=0,lte=1024"`
	Priority      string `yaml:"priority" validate:"oneof=low default high"`
	UserModeLocks bool   `yaml:"user_mode_locks"`
	PinWorkers    bool   `yaml:"pin_workers"`
	IdleSleepMS   int    `yaml:"idle_sleep_ms" validate:"gte=0,lte=1000"`
	JoinSpin      int    `yaml:"join_spin" validate:"gte=0,lte=1000000"`
	ArenaLimit    int    `yaml:"arena_limit" validate:"gte=0,lte=1048576"`
	// StackSize is accepted for compatibility; goroutine stacks grow on demand.
	StackSize int    `yaml:"stack_size" validate:"gte=0"`
	LogLevel  string `yaml:"log_level" validate:"omitempty,oneof=trace debug info warn error disabled"`
}

var validate = validator.New()

// DefaultConfig returns the settings used when nothing is configured.
func DefaultConfig() Config {
	return Config{
		Backend:     BackendNative,
		Workers:     fiber.DefaultWorkers,
		Priority:    api.PriorityDefault.String(),
		IdleSleepMS: fiber.DefaultIdleSleepMS,
		JoinSpin:    fiber.DefaultJoinSpin,
		LogLevel:    "info",
	}
}

// ParseConfig decodes YAML over the defaults. Unknown keys are rejected.
func ParseConfig(data []byte) (Config, error) {
	cfg := DefaultConfig()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("control: parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// LoadConfig reads and parses a YAML file.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("control: load config: %w", err)
	}
	return ParseConfig(data)
}

// Validate checks field ranges and enumerations.
func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("control: invalid config: %w", err)
	}
	return nil
}

// PriorityLevel returns the configured worker priority.
func (c Config) PriorityLevel() api.Priority {
	p, _ := api.ParsePriority(c.Priority)
	return p
}

// NewBackend builds the configured backend. Each call returns a fresh
// instance; an emulated backend is not shared between callers.
func (c Config) NewBackend() api.Backend {
	if c.Backend == BackendEmulated {
		return kthread.NewEmulated()
	}
	return kthread.Native(kthread.WithUserModeLocks(c.UserModeLocks))
}

// FiberOptions translates the config into fiber system options. A nil
// metrics sink is skipped.
func (c Config) FiberOptions(log zerolog.Logger, m fiber.Metrics) []fiber.Option {
	opts := []fiber.Option{
		fiber.WithLogger(log),
		fiber.WithIdleSleep(c.IdleSleepMS),
		fiber.WithJoinSpin(c.JoinSpin),
		fiber.WithPinnedWorkers(c.PinWorkers),
	}
	if c.ArenaLimit > 0 {
		opts = append(opts, fiber.WithArenaLimit(c.ArenaLimit))
	}
	if m != nil {
		opts = append(opts, fiber.WithMetrics(m))
	}
	return opts
}
