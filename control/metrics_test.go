// File: control/metrics_test.go
// Author: momentics <momentics@gmail.com>

package control_test

import (
	"testing"

	"github.com/A-Boring-Square/Diesel/api"
	"github.com/A-Boring-Square/Diesel/control"
	"github.com/A-Boring-Square/Diesel/fiber"
	"github.com/A-Boring-Square/Diesel/kthread"
	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_FedBySystem(t *testing.T) {
	reg := prometheus.NewRegistry()
	m, err := control.NewMetrics(reg)
	require.NoError(t, err)

	sys, err := fiber.New(kthread.NewEmulated(), fiber.WithMetrics(m))
	require.NoError(t, err)
	require.NoError(t, m.Observe(sys))
	require.NoError(t, sys.Init(1, api.PriorityDefault))

	f, err := sys.CreateFiber(func(*api.FiberContext) {}, nil)
	require.NoError(t, err)
	require.NoError(t, f.Join())
	require.NoError(t, f.Destroy())

	families, err := reg.Gather()
	require.NoError(t, err)
	values := sampleValues(families)
	assert.Equal(t, 1.0, values["diesel_fiber_created_total"])
	assert.Equal(t, 1.0, values["diesel_fiber_executed_total"])
	assert.Equal(t, 1.0, values["diesel_fiber_destroyed_total"])
	assert.Equal(t, 1.0, values["diesel_fiber_run_seconds"])
	assert.Equal(t, 1.0, values["diesel_fiber_workers"])
	assert.Equal(t, 0.0, values["diesel_fiber_live"])
	assert.Contains(t, values, "diesel_fiber_queue_cas_retries_total")

	assert.Equal(t, 0.0, values["diesel_fiber_panicked_total"])

	assert.Equal(t, 0.0, values["diesel_fiber_pending"])
	require.NoError(t, sys.Shutdown())
}

func TestMetrics_DuplicateRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	_, err := control.NewMetrics(reg)
	require.NoError(t, err)
	_, err = control.NewMetrics(reg)
	assert.Error(t, err)
}

func sampleValues(families []*dto.MetricFamily) map[string]float64 {
	values := map[string]float64{}
	for _, mf := range families {
		for _, metric := range mf.GetMetric() {
			switch {
			case metric.GetCounter() != nil:
				values[mf.GetName()] = metric.GetCounter().GetValue()
			case metric.GetGauge() != nil:
				values[mf.GetName()] = metric.GetGauge().GetValue()
			case metric.GetHistogram() != nil:
				values[mf.GetName()] = float64(metric.GetHistogram().GetSampleCount())
			}
		}
	}
	return values
}
