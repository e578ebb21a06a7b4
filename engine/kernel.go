package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/Sookie3mo/ASC15-Gridding/convolution"
	"github.com/Sookie3mo/ASC15-Gridding/grid"
	"github.com/Sookie3mo/ASC15-Gridding/internal/conv"
	"github.com/Sookie3mo/ASC15-Gridding/internal/resource"
	"github.com/Sookie3mo/ASC15-Gridding/internal/simd"
	"github.com/Sookie3mo/ASC15-Gridding/visibility"
)

// RunStats describes one gridding pass.
type RunStats struct {
	Partitions   int
	Samples      int
	Ranges       []Range
	Executors    []string
	ScratchBytes int64
	Accumulate   time.Duration
	Reduce       time.Duration

	// TransferIn and TransferOut are the bytes staged into and copied out
	// of Stager executors during this run.
	TransferIn, TransferOut int64
}

// Kernel grids samples through a fixed convolution table onto grids of a
// fixed size. It is safe to call Run repeatedly; runs on the same Kernel
// are serialized.
type Kernel struct {
	table     *convolution.Table
	gridSize  int
	split     SplitPolicy
	executors []Executor
	rc        *resource.Controller
	logger    *slog.Logger
	pool      *WorkerPool

	mu sync.Mutex
}

// NewKernel creates a gridding kernel for table and gridSize×gridSize grids.
func NewKernel(table *convolution.Table, gridSize int, opts ...Option) (*Kernel, error) {
	if table == nil {
		return nil, errors.New("engine: nil convolution table")
	}
	if gridSize <= 0 {
		return nil, fmt.Errorf("%w: size %d", ErrGridMismatch, gridSize)
	}

	o := options{split: Uniform()}
	for _, opt := range opts {
		opt(&o)
	}

	workers := o.workers
	switch {
	case len(o.executors) > 0 && workers > 0 && workers != len(o.executors):
		return nil, fmt.Errorf("engine: %d workers but %d executors", workers, len(o.executors))
	case len(o.executors) > 0:
		workers = len(o.executors)
	case workers <= 0:
		workers = runtime.GOMAXPROCS(0)
	}

	executors := o.executors
	if len(executors) == 0 {
		executors = make([]Executor, workers)
		for i := range executors {
			executors[i] = CPUExecutor{RowBands: o.rowBands}
		}
	}

	rc := o.rc
	if rc == nil {
		rc = resource.NewController(resource.Config{
			MemoryLimitBytes: o.memoryLimit,
			MaxWorkers:       int64(workers),
		})
	}

	logger := o.logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	return &Kernel{
		table:     table,
		gridSize:  gridSize,
		split:     o.split,
		executors: executors,
		rc:        rc,
		logger:    logger,
		pool:      NewWorkerPool(workers),
	}, nil
}

// Workers returns the number of partitions per run.
func (k *Kernel) Workers() int {
	return len(k.executors)
}

// ScratchBytes returns the private grid memory one run needs.
func (k *Kernel) ScratchBytes() (int64, error) {
	return conv.MulInt64(int64(len(k.executors)), int64(k.gridSize), int64(k.gridSize), grid.CellBytes)
}

// Close stops the kernel's worker goroutines.
func (k *Kernel) Close() {
	k.pool.Close()
}

// Run accumulates every sample exactly once into dst.
//
// dst is added to, not overwritten. Samples must carry offsets computed
// against the kernel's table; a sample outside the grid or table fails
// the run with a *SampleError.
func (k *Kernel) Run(ctx context.Context, samples []visibility.Sample, dst *grid.Grid) (RunStats, error) {
	k.mu.Lock()
	defer k.mu.Unlock()

	if dst == nil || dst.Size != k.gridSize {
		return RunStats{}, fmt.Errorf("%w: kernel %d", ErrGridMismatch, k.gridSize)
	}
	if !k.table.Normalized() {
		return RunStats{}, ErrTableNotNormalized
	}

	n := len(k.executors)
	ranges, err := k.split.Split(len(samples), n)
	if err != nil {
		return RunStats{}, err
	}
	if err := checkRanges(ranges, len(samples), n); err != nil {
		return RunStats{}, err
	}

	scratch, err := k.ScratchBytes()
	if err != nil {
		return RunStats{}, fmt.Errorf("%w: %w", ErrScratchExhausted, err)
	}
	if err := k.rc.AcquireMemory(scratch); err != nil {
		return RunStats{}, fmt.Errorf("%w: %d bytes for %d private grids: %w", ErrScratchExhausted, scratch, n, err)
	}
	defer k.rc.ReleaseMemory(scratch)

	stats := RunStats{
		Partitions:   n,
		Samples:      len(samples),
		Ranges:       ranges,
		Executors:    make([]string, n),
		ScratchBytes: scratch,
	}
	for i, e := range k.executors {
		stats.Executors[i] = e.Name()
	}

	k.logger.Info("Gridding started",
		"samples", len(samples),
		"partitions", n,
		"scratch_bytes", scratch,
		"kernel", string(simd.ActiveVariant()),
		"cpu", simd.ActiveISA().String(),
	)

	private := make([]*grid.Grid, n)
	for i := range private {
		if private[i], err = grid.New(k.gridSize); err != nil {
			return stats, err
		}
	}

	in0, out0 := transferred(k.executors)
	start := time.Now()
	if err := k.accumulate(ctx, samples, ranges, private); err != nil {
		return stats, err
	}
	stats.Accumulate = time.Since(start)
	in1, out1 := transferred(k.executors)
	stats.TransferIn, stats.TransferOut = in1-in0, out1-out0

	start = time.Now()
	if err := reduce(ctx, dst, private, n); err != nil {
		return stats, err
	}
	stats.Reduce = time.Since(start)

	k.logger.Info("Gridding completed",
		"samples", len(samples),
		"accumulate", stats.Accumulate,
		"reduce", stats.Reduce,
		"transfer_in", stats.TransferIn,
		"transfer_out", stats.TransferOut,
	)
	return stats, nil
}

// accumulate runs every partition on the pool and waits for all of them.
// The reduction may only start once this returns.
func (k *Kernel) accumulate(ctx context.Context, samples []visibility.Sample, ranges []Range, private []*grid.Grid) error {
	return k.pool.Do(ctx, len(ranges), func(ctx context.Context, i int) error {
		r := ranges[i]
		exec := k.executors[i]

		if err := k.rc.AcquireWorker(ctx); err != nil {
			return err
		}
		defer k.rc.ReleaseWorker()

		err := exec.Accumulate(ctx, Job{
			Partition: i,
			First:     r.Start,
			Samples:   samples[r.Start:r.End],
			Table:     k.table,
			Grid:      private[i],
		})
		if err != nil {
			return fmt.Errorf("partition %d (%s): %w", i, exec.Name(), err)
		}
		return nil
	})
}

// reduce adds the private grids into dst over disjoint cell ranges.
// Every cell sums the partitions in index order.
func reduce(ctx context.Context, dst *grid.Grid, private []*grid.Grid, chunks int) error {
	cells := len(dst.Cells)
	chunks = max(1, min(chunks, dst.Size))

	g, ctx := errgroup.WithContext(ctx)
	for c := range chunks {
		lo := c * cells / chunks
		hi := (c + 1) * cells / chunks
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			out := dst.Cells[lo:hi]
			for _, p := range private {
				simd.AddInto(out, p.Cells[lo:hi])
			}
			return nil
		})
	}
	return g.Wait()
}
