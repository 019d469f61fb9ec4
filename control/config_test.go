// File: control/config_test.go
// Author: momentics <momentics@gmail.com>

package control_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/A-Boring-Square/Diesel/api"
	"github.com/A-Boring-Square/Diesel/control"
	"github.com/A-Boring-Square/Diesel/fiber"
	"github.com/A-Boring-Square/Diesel/kthread"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseConfig_Defaults(t *testing.T) {
	cfg, err := control.ParseConfig(nil)
	require.NoError(t, err)
	assert.Equal(t, control.DefaultConfig(), cfg)
	assert.Equal(t, api.PriorityDefault, cfg.PriorityLevel())
}

func TestParseConfig_Overrides(t *testing.T) {
	cfg, err := control.ParseConfig([]byte(`
backend: emulated
workers: 2
priority: high
user_mode_locks: true
idle_sleep_ms: 5
join_spin: 0
arena_limit: 128
`))
	require.NoError(t, err)
	assert.Equal(t, control.BackendEmulated, cfg.Backend)
	assert.Equal(t, 2, cfg.Workers)
	assert.Equal(t, api.PriorityHigh, cfg.PriorityLevel())
	assert.True(t, cfg.UserModeLocks)
	assert.Equal(t, 5, cfg.IdleSleepMS)
	assert.Zero(t, cfg.JoinSpin)
	assert.Equal(t, "info", cfg.LogLevel)

	_, ok := cfg.NewBackend().(*kthread.Emulated)
	assert.True(t, ok)
}

func TestParseConfig_Rejects(t *testing.T) {
	cases := map[string]string{
		"unknown key":      "threads: 3\n",
		"bad backend":      "backend: fibers\n",
		"bad priority":     "priority: urgent\n",
		"negative workers": "workers: -1\n",
		"idle too long":    "idle_sleep_ms: 5000\n",
		"bad log level":    "log_level: loud\n",
		"not yaml":         "workers: [\n",
	}
	for name, doc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := control.ParseConfig([]byte(doc))
			assert.Error(t, err)
		})
	}
}

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "diesel.yaml")
	require.NoError(t, os.WriteFile(path, []byte("workers: 3\n"), 0o600))

	cfg, err := control.LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 3, cfg.Workers)

	_, err = control.LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestConfig_FiberOptions(t *testing.T) {
	cfg := control.DefaultConfig()
	cfg.Backend = control.BackendEmulated
	cfg.IdleSleepMS = 7
	cfg.JoinSpin = 3

	sys, err := fiber.New(cfg.NewBackend(), cfg.FiberOptions(zerolog.Nop(), nil)...)
	require.NoError(t, err)
	st := sys.Stats()
	assert.Equal(t, 7, st.IdleSleepMS)
	assert.Equal(t, 3, st.JoinSpin)
	assert.Equal(t, "emulated", st.Backend)
}

func TestNewLogger(t *testing.T) {
	l, err := control.NewLogger(os.Stderr, "debug", true)
	require.NoError(t, err)
	assert.Equal(t, zerolog.DebugLevel, l.GetLevel())

	_, err = control.NewLogger(os.Stderr, "chatty", false)
	assert.Error(t, err)
}
