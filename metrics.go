package gridding

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/Sookie3mo/ASC15-Gridding/engine"
)

// MetricsCollector defines an interface for collecting benchmark metrics.
// Implement this interface to integrate with monitoring systems.
type MetricsCollector interface {
	// RecordPhase is called after each phase.
	// err is nil if the phase succeeded.
	RecordPhase(p Phase, duration time.Duration, err error)

	// RecordRun is called after each successful gridding pass.
	RecordRun(stats engine.RunStats)
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordPhase(Phase, time.Duration, error) {}
func (NoopMetricsCollector) RecordRun(engine.RunStats)               {}

// BasicMetricsCollector provides simple in-memory metrics collection.
type BasicMetricsCollector struct {
	mu     sync.Mutex
	phases map[Phase]*phaseCounters

	Runs            atomic.Int64
	SamplesGridded  atomic.Int64
	AccumulateNanos atomic.Int64
	ReduceNanos     atomic.Int64
}

type phaseCounters struct {
	count  int64
	errors int64
	nanos  int64
}

// RecordPhase implements MetricsCollector.
func (b *BasicMetricsCollector) RecordPhase(p Phase, duration time.Duration, err error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.phases == nil {
		b.phases = make(map[Phase]*phaseCounters)
	}
	c := b.phases[p]
	if c == nil {
		c = &phaseCounters{}
		b.phases[p] = c
	}
	c.count++
	c.nanos += duration.Nanoseconds()
	if err != nil {
		c.errors++
	}
}

// RecordRun implements MetricsCollector.
func (b *BasicMetricsCollector) RecordRun(stats engine.RunStats) {
	b.Runs.Add(1)
	b.SamplesGridded.Add(int64(stats.Samples))
	b.AccumulateNanos.Add(stats.Accumulate.Nanoseconds())
	b.ReduceNanos.Add(stats.Reduce.Nanoseconds())
}

// PhaseStats is a snapshot of one phase's counters.
type PhaseStats struct {
	Count    int64
	Errors   int64
	AvgNanos int64
}

// BasicMetricsStats is a snapshot of BasicMetricsCollector state.
type BasicMetricsStats struct {
	Phases          map[Phase]PhaseStats
	Runs            int64
	SamplesGridded  int64
	AccumulateNanos int64
	ReduceNanos     int64
}

// GetStats returns a snapshot of current metrics.
func (b *BasicMetricsCollector) GetStats() BasicMetricsStats {
	b.mu.Lock()
	phases := make(map[Phase]PhaseStats, len(b.phases))
	for p, c := range b.phases {
		var avg int64
		if c.count > 0 {
			avg = c.nanos / c.count
		}
		phases[p] = PhaseStats{Count: c.count, Errors: c.errors, AvgNanos: avg}
	}
	b.mu.Unlock()

	return BasicMetricsStats{
		Phases:          phases,
		Runs:            b.Runs.Load(),
		SamplesGridded:  b.SamplesGridded.Load(),
		AccumulateNanos: b.AccumulateNanos.Load(),
		ReduceNanos:     b.ReduceNanos.Load(),
	}
}
