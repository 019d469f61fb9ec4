// File: control/store_test.go
// Author: momentics <momentics@gmail.com>

package control_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/A-Boring-Square/Diesel/control"
	"github.com/A-Boring-Square/Diesel/fiber"
	"github.com/A-Boring-Square/Diesel/kthread"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_UpdateNotifies(t *testing.T) {
	store := control.NewStore(control.DefaultConfig())
	var seen []int
	store.OnReload(func(cfg control.Config) { seen = append(seen, cfg.Workers) })

	next := store.Snapshot()
	next.Workers = 8
	require.NoError(t, store.Update(next))
	assert.Equal(t, []int{8}, seen)
	assert.Equal(t, 8, store.Snapshot().Workers)

	bad := next
	bad.Priority = "urgent"
	assert.Error(t, store.Update(bad))
	assert.Equal(t, "default", store.Snapshot().Priority)
	assert.Len(t, seen, 1)
}

func TestStore_ReloadRetunesSystem(t *testing.T) {
	sys, err := fiber.New(kthread.NewEmulated())
	require.NoError(t, err)

	store := control.NewStore(control.DefaultConfig())
	store.Bind(sys)

	path := filepath.Join(t.TempDir(), "diesel.yaml")
	require.NoError(t, os.WriteFile(path, []byte("idle_sleep_ms: 9\njoin_spin: 2\n"), 0o600))
	require.NoError(t, store.Reload(path))

	st := sys.Stats()
	assert.Equal(t, 9, st.IdleSleepMS)
	assert.Equal(t, 2, st.JoinSpin)

	require.NoError(t, os.WriteFile(path, []byte("join_spin: -4\n"), 0o600))
	assert.Error(t, store.Reload(path))
	assert.Equal(t, 2, sys.Stats().JoinSpin)
}
