package smapgo

import (
	"sync/atomic"
	"time"
)

// MetricsCollector defines an interface for collecting operational metrics.
// Implement this interface to integrate with monitoring systems; the promexp
// subpackage provides a Prometheus implementation.
type MetricsCollector interface {
	// RecordCreate is called after each structure creation.
	// duration is the total time taken, err is nil if successful.
	RecordCreate(duration time.Duration, err error)

	// RecordOpen is called after each structure open.
	RecordOpen(duration time.Duration, err error)

	// RecordRemove is called after each structure removal.
	RecordRemove(duration time.Duration, err error)

	// RecordTruncate is called after each truncation.
	RecordTruncate(duration time.Duration, err error)
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
// Use this when metrics collection is not needed.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordCreate(time.Duration, error)   {}
func (NoopMetricsCollector) RecordOpen(time.Duration, error)     {}
func (NoopMetricsCollector) RecordRemove(time.Duration, error)   {}
func (NoopMetricsCollector) RecordTruncate(time.Duration, error) {}

// BasicMetricsCollector provides simple in-memory metrics collection.
// Useful for debugging and basic monitoring without external dependencies.
type BasicMetricsCollector struct {
	CreateCount        atomic.Int64
	CreateErrors       atomic.Int64
	OpenCount          atomic.Int64
	OpenErrors         atomic.Int64
	RemoveCount        atomic.Int64
	RemoveErrors       atomic.Int64
	RemoveTotalNanos   atomic.Int64
	TruncateCount      atomic.Int64
	TruncateErrors     atomic.Int64
	TruncateTotalNanos atomic.Int64
}

// RecordCreate implements MetricsCollector.
func (b *BasicMetricsCollector) RecordCreate(duration time.Duration, err error) {
	b.CreateCount.Add(1)
	if err != nil {
		b.CreateErrors.Add(1)
	}
}

// RecordOpen implements MetricsCollector.
func (b *BasicMetricsCollector) RecordOpen(duration time.Duration, err error) {
	b.OpenCount.Add(1)
	if err != nil {
		b.OpenErrors.Add(1)
	}
}

// RecordRemove implements MetricsCollector.
func (b *BasicMetricsCollector) RecordRemove(duration time.Duration, err error) {
	b.RemoveCount.Add(1)
	b.RemoveTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.RemoveErrors.Add(1)
	}
}

// RecordTruncate implements MetricsCollector.
func (b *BasicMetricsCollector) RecordTruncate(duration time.Duration, err error) {
	b.TruncateCount.Add(1)
	b.TruncateTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.TruncateErrors.Add(1)
	}
}
