// Package promexp exports smapgo operational metrics to Prometheus.
package promexp

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/hupe1980/smapgo"
)

// Collector implements smapgo.MetricsCollector backed by Prometheus.
type Collector struct {
	ops       *prometheus.CounterVec
	durations *prometheus.HistogramVec
}

var _ smapgo.MetricsCollector = (*Collector)(nil)

// NewCollector creates a Collector and registers its metrics with reg.
// Pass prometheus.DefaultRegisterer to use the default registry.
func NewCollector(reg prometheus.Registerer) (*Collector, error) {
	c := &Collector{
		ops: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "smap_operations_total",
			Help: "Total number of smap structure operations by outcome",
		}, []string{"op", "status"}),
		durations: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "smap_operation_duration_seconds",
			Help:    "Histogram of smap structure operation latency",
			Buckets: prometheus.DefBuckets,
		}, []string{"op"}),
	}

	for _, col := range []prometheus.Collector{c.ops, c.durations} {
		if err := reg.Register(col); err != nil {
			return nil, err
		}
	}

	return c, nil
}

func (c *Collector) record(op string, duration time.Duration, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	c.ops.WithLabelValues(op, status).Inc()
	c.durations.WithLabelValues(op).Observe(duration.Seconds())
}

// RecordCreate implements smapgo.MetricsCollector.
func (c *Collector) RecordCreate(duration time.Duration, err error) {
	c.record("create", duration, err)
}

// RecordOpen implements smapgo.MetricsCollector.
func (c *Collector) RecordOpen(duration time.Duration, err error) {
	c.record("open", duration, err)
}

// RecordRemove implements smapgo.MetricsCollector.
func (c *Collector) RecordRemove(duration time.Duration, err error) {
	c.record("remove", duration, err)
}

// RecordTruncate implements smapgo.MetricsCollector.
func (c *Collector) RecordTruncate(duration time.Duration, err error) {
	c.record("truncate", duration, err)
}
