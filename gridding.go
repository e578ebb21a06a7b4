package gridding

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"time"

	"github.com/Sookie3mo/ASC15-Gridding/blobstore"
	"github.com/Sookie3mo/ASC15-Gridding/convolution"
	"github.com/Sookie3mo/ASC15-Gridding/dataset"
	"github.com/Sookie3mo/ASC15-Gridding/engine"
	"github.com/Sookie3mo/ASC15-Gridding/grid"
	"github.com/Sookie3mo/ASC15-Gridding/internal/resource"
	"github.com/Sookie3mo/ASC15-Gridding/offset"
	"github.com/Sookie3mo/ASC15-Gridding/visibility"
)

// Benchmark drives one gridding configuration: load samples, build the
// convolution table, compute offsets, grid, and write the result.
//
// A Benchmark is not safe for concurrent use.
type Benchmark struct {
	cfg     Config
	opts    options
	logger  *Logger
	metrics MetricsCollector
	rc      *resource.Controller

	freq   []float64
	table  *convolution.Table
	set    *visibility.Set
	kernel *engine.Kernel
	grid   *grid.Grid
	stats  engine.RunStats
}

// New creates a benchmark for cfg.
func New(cfg Config, opts ...Option) (*Benchmark, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	o := options{
		metricsCollector: NoopMetricsCollector{},
		compression:      grid.Raw,
	}
	for _, opt := range opts {
		opt(&o)
	}

	logger := o.logger
	if logger == nil {
		logger = NoopLogger()
	}

	return &Benchmark{
		cfg:     cfg,
		opts:    o,
		logger:  logger.WithConfig(cfg),
		metrics: o.metricsCollector,
		rc: resource.NewController(resource.Config{
			MemoryLimitBytes:   o.memoryLimit,
			MaxWorkers:         int64(max(o.workers, runtime.GOMAXPROCS(0))),
			IOLimitBytesPerSec: o.ioLimit,
		}),
		freq: cfg.Frequencies(),
	}, nil
}

// Config returns the benchmark configuration.
func (b *Benchmark) Config() Config {
	return b.cfg
}

// phase times fn, reports it, and attributes its error to p.
func (b *Benchmark) phase(ctx context.Context, p Phase, fn func() error) error {
	start := time.Now()
	err := fn()
	elapsed := time.Since(start)

	b.metrics.RecordPhase(p, elapsed, err)
	b.logger.LogPhase(ctx, p, elapsed, err)
	return phaseError(p, err)
}

// Load reads the configured number of samples from the named blob.
func (b *Benchmark) Load(ctx context.Context, store blobstore.BlobStore, name string) (*visibility.Set, error) {
	var set *visibility.Set
	err := b.phase(ctx, PhaseLoad, func() error {
		r, err := blobstore.OpenReader(ctx, store, name)
		if err != nil {
			return err
		}
		defer func() { _ = r.Close() }()

		set, err = dataset.Read(ctx, resource.NewRateLimitedReader(ctx, r, b.rc), dataset.Layout{
			Points:   b.cfg.Samples,
			Channels: b.cfg.Channels,
			Baseline: b.cfg.Baseline,
		})
		return err
	})
	return set, err
}

// Init builds the convolution table, fills in the offsets of every sample
// in set, and prepares a zeroed grid. set is modified in place and
// retained by the benchmark. Any earlier initialization is discarded
// first, so a failed Init leaves the benchmark uninitialized.
func (b *Benchmark) Init(ctx context.Context, set *visibility.Set) error {
	b.reset()

	if err := b.checkSet(set); err != nil {
		return phaseError(PhaseLoad, err)
	}

	var table *convolution.Table
	err := b.phase(ctx, PhaseTable, func() error {
		var err error
		table, err = convolution.Build(ctx, convolution.Params{
			Frequencies: b.freq,
			CellSize:    b.cfg.CellSize,
			Baseline:    b.cfg.Baseline,
			WPlanes:     b.cfg.WPlanes,
		}, convolution.WithLogger(b.logger.WithPhase(PhaseTable).Logger))
		return err
	})
	if err != nil {
		return err
	}

	err = b.phase(ctx, PhaseOffsets, func() error {
		return offset.Compute(set, b.freq, offset.GeometryFor(table, b.cfg.CellSize, b.cfg.GridSize))
	})
	if err != nil {
		return err
	}

	return phaseError(PhaseGridding, b.prepare(table, set))
}

// prepare creates the kernel and a zeroed grid for table.
func (b *Benchmark) prepare(table *convolution.Table, set *visibility.Set) error {
	g, err := grid.New(b.cfg.GridSize)
	if err != nil {
		return err
	}
	opts := append([]engine.Option{
		engine.WithResourceController(b.rc),
		engine.WithLogger(b.logger.WithPhase(PhaseGridding).Logger),
	}, b.opts.engineOpts...)
	kernel, err := engine.NewKernel(table, b.cfg.GridSize, opts...)
	if err != nil {
		return err
	}

	b.table, b.set, b.kernel, b.grid = table, set, kernel, g
	return nil
}

// reset drops the table, samples, kernel and grid of a previous Init.
func (b *Benchmark) reset() {
	b.Close()
	b.table, b.set, b.grid = nil, nil, nil
	b.stats = engine.RunStats{}
}

func (b *Benchmark) checkSet(set *visibility.Set) error {
	if err := set.Validate(); err != nil {
		return err
	}
	if set.NumChannels != b.cfg.Channels {
		return fmt.Errorf("%w: set has %d channels, config %d", ErrInvalidConfig, set.NumChannels, b.cfg.Channels)
	}
	return nil
}

// Run performs one gridding pass, adding every sample into the grid.
func (b *Benchmark) Run(ctx context.Context) error {
	return b.phase(ctx, PhaseGridding, func() error {
		if b.kernel == nil {
			return ErrNotInitialized
		}
		stats, err := b.kernel.Run(ctx, b.set.Samples, b.grid)
		if err != nil {
			return err
		}
		b.stats = stats
		b.metrics.RecordRun(stats)
		b.logger.LogRun(ctx, stats)
		return nil
	})
}

// WriteGrid encodes the grid to the named blob and returns the bytes written.
func (b *Benchmark) WriteGrid(ctx context.Context, store blobstore.BlobStore, name string) (int64, error) {
	var n int64
	err := b.phase(ctx, PhaseWrite, func() error {
		if b.grid == nil {
			return ErrNotInitialized
		}
		w, err := store.Create(ctx, name)
		if err != nil {
			return err
		}
		n, err = grid.Encode(resource.NewRateLimitedWriter(ctx, w, b.rc), b.grid, b.opts.compression)
		return errors.Join(err, w.Close())
	})
	return n, err
}

// Support returns the convolution half-width, or 0 before Init.
func (b *Benchmark) Support() int {
	if b.table == nil {
		return 0
	}
	return b.table.Support
}

// Grid returns the output grid, or nil before Init.
func (b *Benchmark) Grid() *grid.Grid {
	return b.grid
}

// Table returns the convolution table, or nil before Init.
func (b *Benchmark) Table() *convolution.Table {
	return b.table
}

// Samples returns the sample set passed to Init.
func (b *Benchmark) Samples() *visibility.Set {
	return b.set
}

// Stats returns the statistics of the last gridding pass.
func (b *Benchmark) Stats() engine.RunStats {
	return b.stats
}

// Close releases the gridding workers.
func (b *Benchmark) Close() {
	if b.kernel != nil {
		b.kernel.Close()
		b.kernel = nil
	}
}
