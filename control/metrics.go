// File: control/metrics.go
// Author: momentics <momentics@gmail.com>
//
// Prometheus collectors for the fiber runtime. Lifecycle counters are fed by
// the fiber system; queue and pool gauges are sampled from its Stats on
// scrape.

package control

import (
	"fmt"
	"time"

	"github.com/A-Boring-Square/Diesel/fiber"
	"github.com/prometheus/client_golang/prometheus"
)

const (
	metricsNamespace = "diesel"
	metricsSubsystem = "fiber"
)

var _ fiber.Metrics = (*Metrics)(nil)

// Metrics implements fiber.Metrics on top of Prometheus collectors.
type Metrics struct {
	reg       prometheus.Registerer
	created   prometheus.Counter
	executed  prometheus.Counter
	destroyed prometheus.Counter
	panicked  prometheus.Counter
	duration  prometheus.Histogram
}

// StatsSource is anything able to report a fiber.Stats snapshot.
type StatsSource interface {
	Stats() fiber.Stats
}

func counter(name, help string) prometheus.Counter {
	return prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: metricsNamespace,
		Subsystem: metricsSubsystem,
		Name:      name,
		Help:      help,
	})
}

// NewMetrics creates the lifecycle collectors and registers them on reg.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		reg:       reg,
		created:   counter("created_total", "Fibers created."),
		executed:  counter("executed_total", "Fiber bodies run to completion."),
		destroyed: counter("destroyed_total", "Fiber slots released."),
		panicked:  counter("panicked_total", "Fiber bodies that panicked."),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Subsystem: metricsSubsystem,
			Name:      "run_seconds",
			Help:      "Wall time of fiber bodies.",
			Buckets:   prometheus.ExponentialBuckets(1e-6, 4, 10),
		}),
	}
	for _, c := range []prometheus.Collector{m.created, m.executed, m.destroyed, m.panicked, m.duration} {
		if err := reg.Register(c); err != nil {
			return nil, fmt.Errorf("control: register metrics: %w", err)
		}
	}
	return m, nil
}

func (m *Metrics) FiberCreated()   { m.created.Inc() }
func (m *Metrics) FiberDestroyed() { m.destroyed.Inc() }
func (m *Metrics) FiberPanicked()  { m.panicked.Inc() }

func (m *Metrics) FiberExecuted(d time.Duration) {
	m.executed.Inc()
	m.duration.Observe(d.Seconds())
}

// Observe registers scrape-time gauges backed by src.
func (m *Metrics) Observe(src StatsSource) error {
	gauge := func(name, help string, fn func(fiber.Stats) float64) prometheus.Collector {
		return prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Subsystem: metricsSubsystem,
			Name:      name,
			Help:      help,
		}, func() float64 { return fn(src.Stats()) })
	}
	collectors := []prometheus.Collector{
		gauge("workers", "Worker threads draining the run queue.",
			func(s fiber.Stats) float64 { return float64(s.Workers) }),
		gauge("pending", "Fibers waiting in the run queue.",
			func(s fiber.Stats) float64 { return float64(s.Pending) }),
		gauge("live", "Allocated fiber slots.",
			func(s fiber.Stats) float64 { return float64(s.Live) }),
		prometheus.NewCounterFunc(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: metricsSubsystem,
			Name:      "queue_cas_retries_total",
			Help:      "Failed compare-and-swap attempts on the run queue head.",
		}, func() float64 { return float64(src.Stats().QueueRetries) }),
	}
	for _, c := range collectors {
		if err := m.reg.Register(c); err != nil {
			return fmt.Errorf("control: register stats gauges: %w", err)
		}
	}
	return nil
}
