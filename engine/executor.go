package engine

import (
	"context"
	"slices"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/Sookie3mo/ASC15-Gridding/convolution"
	"github.com/Sookie3mo/ASC15-Gridding/grid"
	"github.com/Sookie3mo/ASC15-Gridding/internal/simd"
	"github.com/Sookie3mo/ASC15-Gridding/visibility"
)

// Job is one partition's share of a run.
type Job struct {
	Partition int

	// First is the index of Samples[0] in the full sample sequence.
	First int

	Samples []visibility.Sample
	Table   *convolution.Table

	// Grid is the partition's private, zeroed grid.
	Grid *grid.Grid
}

// Executor accumulates a Job into its private grid.
// Implementations must write only to job.Grid.
type Executor interface {
	Name() string
	Accumulate(ctx context.Context, job Job) error
}

// CPUExecutor accumulates on the calling goroutine. With RowBands > 1 the
// grid rows are dealt round-robin to that many goroutines; each owns the
// rows r with r%RowBands == band, so bands never touch the same cell.
type CPUExecutor struct {
	RowBands int
}

// Name implements Executor.
func (e CPUExecutor) Name() string {
	return "cpu"
}

// Accumulate implements Executor.
func (e CPUExecutor) Accumulate(ctx context.Context, job Job) error {
	if err := checkSamples(job); err != nil {
		return err
	}
	if e.RowBands <= 1 {
		return accumulate(ctx, job, 1, 0)
	}

	g, ctx := errgroup.WithContext(ctx)
	for band := range e.RowBands {
		g.Go(func() error {
			return accumulate(ctx, job, e.RowBands, band)
		})
	}
	return g.Wait()
}

// OffloadExecutor models a worker with its own memory: the partition's
// samples and the table are copied in, accumulated into an
// executor-owned grid, and the result is copied out.
type OffloadExecutor struct {
	Label string

	bytesIn  atomic.Int64
	bytesOut atomic.Int64
}

// Name implements Executor.
func (e *OffloadExecutor) Name() string {
	if e.Label == "" {
		return "offload"
	}
	return e.Label
}

// Accumulate implements Executor.
func (e *OffloadExecutor) Accumulate(ctx context.Context, job Job) error {
	if err := checkSamples(job); err != nil {
		return err
	}

	staged := job
	staged.Samples = slices.Clone(job.Samples)
	table := *job.Table
	table.Values = slices.Clone(job.Table.Values)
	staged.Table = &table
	local, err := grid.New(job.Grid.Size)
	if err != nil {
		return err
	}
	staged.Grid = local
	e.bytesIn.Add(int64(len(staged.Samples))*sampleBytes + int64(len(table.Values))*grid.CellBytes)

	if err := accumulate(ctx, staged, 1, 0); err != nil {
		return err
	}

	copy(job.Grid.Cells, local.Cells)
	e.bytesOut.Add(int64(len(local.Cells)) * grid.CellBytes)
	return nil
}

// Transferred implements Stager.
func (e *OffloadExecutor) Transferred() (in, out int64) {
	return e.bytesIn.Load(), e.bytesOut.Load()
}

// Stager is an Executor that copies data to and from its own memory.
// Transferred returns the bytes moved in each direction so far.
type Stager interface {
	Transferred() (in, out int64)
}

// transferred sums Transferred over the distinct stagers in execs.
func transferred(execs []Executor) (in, out int64) {
	seen := make(map[Stager]bool)
	for _, e := range execs {
		s, ok := e.(Stager)
		if !ok || seen[s] {
			continue
		}
		seen[s] = true
		i, o := s.Transferred()
		in, out = in+i, out+o
	}
	return in, out
}

// sampleBytes is the wire size of a Sample: complex value plus three int32 indices.
const sampleBytes = 16 + 3*4

// checkCancelEvery bounds how many samples run between context checks.
const checkCancelEvery = 4096

func checkSamples(job Job) error {
	support := job.Table.Support
	size := job.Table.KernelSize()
	gSize := job.Grid.Size
	tableLen := job.Table.Len()

	for i, s := range job.Samples {
		if s.IU < support || s.IU+support >= gSize ||
			s.IV < support || s.IV+support >= gSize ||
			s.COffset < 0 || s.COffset+size*size > tableLen {
			return &SampleError{Index: job.First + i, IU: s.IU, IV: s.IV, COffset: s.COffset}
		}
	}
	return nil
}

// accumulate grids job.Samples, touching only rows r with r%bands == band.
func accumulate(ctx context.Context, job Job, bands, band int) error {
	support := job.Table.Support
	size := job.Table.KernelSize()
	gSize := job.Grid.Size
	cells := job.Grid.Cells
	table := job.Table.Values

	for i, s := range job.Samples {
		if i%checkCancelEvery == 0 {
			if err := ctx.Err(); err != nil {
				return err
			}
		}

		row0 := s.IV - support
		col0 := s.IU - support
		for dv := range size {
			r := row0 + dv
			if bands > 1 && r%bands != band {
				continue
			}
			gind := r*gSize + col0
			cind := s.COffset + size*dv
			simd.AccumulateRow(cells[gind:gind+size], table[cind:cind+size], s.Data)
		}
	}
	return nil
}
