package gridding

import (
	"github.com/Sookie3mo/ASC15-Gridding/engine"
	"github.com/Sookie3mo/ASC15-Gridding/grid"
)

type options struct {
	logger           *Logger
	metricsCollector MetricsCollector
	engineOpts       []engine.Option
	workers          int
	memoryLimit      int64
	ioLimit          int64
	compression      grid.Compression
}

// Option configures a Benchmark.
type Option func(*options)

// WithLogger sets the logger. Defaults to NoopLogger.
func WithLogger(l *Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

// WithMetricsCollector sets the metrics collector.
// If nil is passed, NoopMetricsCollector is used.
func WithMetricsCollector(mc MetricsCollector) Option {
	return func(o *options) {
		if mc == nil {
			mc = NoopMetricsCollector{}
		}
		o.metricsCollector = mc
	}
}

// WithWorkers sets the number of gridding partitions.
// Defaults to GOMAXPROCS.
func WithWorkers(n int) Option {
	return func(o *options) {
		o.workers = n
		o.engineOpts = append(o.engineOpts, engine.WithWorkers(n))
	}
}

// WithSplitPolicy sets how samples are divided between workers.
func WithSplitPolicy(p engine.SplitPolicy) Option {
	return func(o *options) {
		o.engineOpts = append(o.engineOpts, engine.WithSplitPolicy(p))
	}
}

// WithExecutors assigns one executor per worker, in order.
func WithExecutors(execs ...engine.Executor) Option {
	return func(o *options) {
		o.workers = len(execs)
		o.engineOpts = append(o.engineOpts, engine.WithExecutors(execs...))
	}
}

// WithRowBands splits grid rows across n goroutines within each worker.
func WithRowBands(n int) Option {
	return func(o *options) {
		o.engineOpts = append(o.engineOpts, engine.WithRowBands(n))
	}
}

// WithMemoryLimit bounds the gridding scratch memory in bytes.
// If set to 0, memory is unlimited.
func WithMemoryLimit(bytes int64) Option {
	return func(o *options) {
		o.memoryLimit = bytes
	}
}

// WithIOLimit bounds dataset and grid stream throughput in bytes per second.
// If set to 0, IO is unlimited.
func WithIOLimit(bytesPerSec int64) Option {
	return func(o *options) {
		o.ioLimit = bytesPerSec
	}
}

// WithCompression sets the compression of written grids.
// Defaults to grid.Raw.
func WithCompression(c grid.Compression) Option {
	return func(o *options) {
		o.compression = c
	}
}
