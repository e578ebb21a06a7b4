package engine

import (
	"log/slog"

	"github.com/Sookie3mo/ASC15-Gridding/internal/resource"
)

type options struct {
	workers     int
	split       SplitPolicy
	executors   []Executor
	rowBands    int
	memoryLimit int64
	rc          *resource.Controller
	logger      *slog.Logger
}

// Option configures a Kernel.
type Option func(*options)

// WithWorkers sets the number of partitions. Defaults to GOMAXPROCS, or
// to the number of executors when WithExecutors is used.
func WithWorkers(n int) Option {
	return func(o *options) {
		o.workers = n
	}
}

// WithSplitPolicy sets how samples are divided between partitions.
// If nil is passed, Uniform is used.
func WithSplitPolicy(p SplitPolicy) Option {
	return func(o *options) {
		if p == nil {
			p = Uniform()
		}
		o.split = p
	}
}

// WithExecutors assigns one executor per partition, in order. This is how
// local and offload workers are mixed in a single run.
func WithExecutors(execs ...Executor) Option {
	return func(o *options) {
		o.executors = execs
	}
}

// WithRowBands makes the default CPU executors split grid rows across n
// goroutines within each partition.
func WithRowBands(n int) Option {
	return func(o *options) {
		o.rowBands = n
	}
}

// WithMemoryLimit bounds the scratch memory of a run in bytes.
// If set to 0, memory is unlimited.
func WithMemoryLimit(bytes int64) Option {
	return func(o *options) {
		o.memoryLimit = bytes
	}
}

// WithResourceController shares a resource controller between kernels.
// It takes precedence over WithMemoryLimit.
func WithResourceController(rc *resource.Controller) Option {
	return func(o *options) {
		o.rc = rc
	}
}

// WithLogger sets the logger for the kernel.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}
