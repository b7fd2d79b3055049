// Package prometheus exposes stats.Collector metrics through a Prometheus registry.
package prometheus

import (
	"errors"
	"sync"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/briangreenhill/gamepicker/internal/stats"
)

// Collector lazily registers one metric per name.
type Collector struct {
	registry prometheus.Registerer

	mu      sync.Mutex
	metrics map[string]prometheus.Collector
}

var _ stats.Collector = (*Collector)(nil)

// New creates a collector. A nil registry means prometheus.DefaultRegisterer.
func New(registry prometheus.Registerer) *Collector {
	if registry == nil {
		registry = prometheus.DefaultRegisterer
	}
	return &Collector{registry: registry, metrics: make(map[string]prometheus.Collector)}
}

func (c *Collector) IncCounter(name string, delta int64) {
	counter := lookup(c, name, func() prometheus.Counter {
		return prometheus.NewCounter(prometheus.CounterOpts{Name: name, Help: name})
	})
	counter.Add(float64(delta))
}

func (c *Collector) SetGauge(name string, value int64) {
	gauge := lookup(c, name, func() prometheus.Gauge {
		return prometheus.NewGauge(prometheus.GaugeOpts{Name: name, Help: name})
	})
	gauge.Set(float64(value))
}

func (c *Collector) ObserveHistogram(name string, value float64) {
	hist := lookup(c, name, func() prometheus.Histogram {
		return prometheus.NewHistogram(prometheus.HistogramOpts{Name: name, Help: name, Buckets: prometheus.DefBuckets})
	})
	hist.Observe(value)
}

// lookup returns the metric registered under name, creating it on first use.
// A metric registered elsewhere under the same name is reused.
func lookup[M prometheus.Collector](c *Collector, name string, create func() M) M {
	c.mu.Lock()
	defer c.mu.Unlock()

	if m, ok := c.metrics[name].(M); ok {
		return m
	}
	m := create()
	if err := c.registry.Register(m); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(M); ok {
				m = existing
			}
		}
	}
	c.metrics[name] = m
	return m
}
