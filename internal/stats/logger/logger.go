// Package logger implements stats.Collector by writing debug log lines.
package logger

import (
	"github.com/rs/zerolog"

	"github.com/briangreenhill/gamepicker/internal/stats"
)

// Collector logs every metric update at debug level.
type Collector struct {
	log zerolog.Logger
}

var _ stats.Collector = (*Collector)(nil)

func New(log zerolog.Logger) *Collector {
	return &Collector{log: log}
}

func (c *Collector) IncCounter(name string, delta int64) {
	c.log.Debug().Str("metric", name).Int64("delta", delta).Msg("counter")
}

func (c *Collector) SetGauge(name string, value int64) {
	c.log.Debug().Str("metric", name).Int64("value", value).Msg("gauge")
}

func (c *Collector) ObserveHistogram(name string, value float64) {
	c.log.Debug().Str("metric", name).Float64("value", value).Msg("histogram")
}
