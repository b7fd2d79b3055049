package prometheus

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func gathered(t *testing.T, reg *prometheus.Registry, name string) float64 {
	t.Helper()
	families, err := reg.Gather()
	require.NoError(t, err)
	for _, f := range families {
		if f.GetName() != name {
			continue
		}
		m := f.GetMetric()[0]
		switch {
		case m.GetCounter() != nil:
			return m.GetCounter().GetValue()
		case m.GetGauge() != nil:
			return m.GetGauge().GetValue()
		case m.GetHistogram() != nil:
			return float64(m.GetHistogram().GetSampleCount())
		}
	}
	t.Fatalf("metric %s not gathered", name)
	return 0
}

func TestCollectorCounterGaugeHistogram(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := New(reg)

	c.IncCounter("test_fetches_total", 2)
	c.IncCounter("test_fetches_total", 3)
	c.SetGauge("test_subscribers", 4)
	c.SetGauge("test_subscribers", 1)
	c.ObserveHistogram("test_seconds", 0.2)

	assert.Equal(t, 5.0, gathered(t, reg, "test_fetches_total"))
	assert.Equal(t, 1.0, gathered(t, reg, "test_subscribers"))
	assert.Equal(t, 1.0, gathered(t, reg, "test_seconds"))
}

func TestCollectorReusesRegisteredMetric(t *testing.T) {
	reg := prometheus.NewRegistry()
	New(reg).IncCounter("test_shared_total", 1)
	New(reg).IncCounter("test_shared_total", 1)

	assert.Equal(t, 2.0, gathered(t, reg, "test_shared_total"))
}
