package gridding

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sookie3mo/ASC15-Gridding/blobstore"
	"github.com/Sookie3mo/ASC15-Gridding/convolution"
	"github.com/Sookie3mo/ASC15-Gridding/dataset"
	"github.com/Sookie3mo/ASC15-Gridding/engine"
	"github.com/Sookie3mo/ASC15-Gridding/grid"
	"github.com/Sookie3mo/ASC15-Gridding/offset"
	"github.com/Sookie3mo/ASC15-Gridding/testutil"
	"github.com/Sookie3mo/ASC15-Gridding/visibility"
)

// smallConfig keeps every footprint on a 256×256 grid: support is 14 and
// scaled coordinates stay within ±47 cells of the center.
func smallConfig() Config {
	return Config{
		Samples:  2000,
		Channels: 2,
		GridSize: 256,
		Baseline: 100,
		CellSize: 5,
		WPlanes:  9,
	}
}

func writeDataset(t *testing.T, store blobstore.BlobStore, name string, cfg Config) {
	t.Helper()
	w, err := store.Create(context.Background(), name)
	require.NoError(t, err)
	_, err = dataset.NewGenerator(dataset.DefaultSeed).Write(context.Background(), w, dataset.Layout{
		Points:   cfg.Samples,
		Channels: cfg.Channels,
		Baseline: cfg.Baseline,
	})
	require.NoError(t, err)
	require.NoError(t, w.Close())
}

func requirePhase(t *testing.T, err error, p Phase, target error) {
	t.Helper()
	var pe *PhaseError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, p, pe.Phase)
	if target != nil {
		assert.ErrorIs(t, err, target)
	}
}

func TestBenchmarkEndToEnd(t *testing.T) {
	ctx := context.Background()
	cfg := smallConfig()
	store := blobstore.NewMemoryStore()
	writeDataset(t, store, "randnum.dat", cfg)

	metrics := &BasicMetricsCollector{}
	b, err := New(cfg, WithWorkers(4), WithMetricsCollector(metrics), WithCompression(grid.LZ4))
	require.NoError(t, err)
	defer b.Close()

	assert.Equal(t, 0, b.Support())
	assert.Nil(t, b.Grid())

	set, err := b.Load(ctx, store, "randnum.dat")
	require.NoError(t, err)
	require.Equal(t, cfg.Samples, set.NumPoints())

	require.NoError(t, b.Init(ctx, set))
	assert.Equal(t, 14, b.Support())
	assert.Equal(t, complex128(0), b.Grid().Sum())

	require.NoError(t, b.Run(ctx))

	want := testutil.ReferenceGrid(set.Samples, b.Table(), cfg.GridSize)
	diff, err := want.MaxAbsDiff(b.Grid())
	require.NoError(t, err)
	assert.LessOrEqual(t, diff, 1e-9)

	stats := b.Stats()
	assert.Equal(t, 4, stats.Partitions)
	assert.Equal(t, cfg.Samples*cfg.Channels, stats.Samples)

	n, err := b.WriteGrid(ctx, store, "grid.dat")
	require.NoError(t, err)
	assert.Positive(t, n)

	r, err := blobstore.OpenReader(ctx, store, "grid.dat")
	require.NoError(t, err)
	decoded, err := grid.Decode(r, cfg.GridSize, grid.LZ4)
	require.NoError(t, err)
	require.NoError(t, r.Close())
	assert.Equal(t, b.Grid().Cells, decoded.Cells)

	ms := metrics.GetStats()
	assert.Equal(t, int64(1), ms.Runs)
	assert.Equal(t, int64(cfg.Samples*cfg.Channels), ms.SamplesGridded)
	for _, p := range []Phase{PhaseLoad, PhaseTable, PhaseOffsets, PhaseGridding, PhaseWrite} {
		assert.Equal(t, int64(1), ms.Phases[p].Count, p)
		assert.Zero(t, ms.Phases[p].Errors, p)
	}
}

func TestBenchmarkRawGridLayout(t *testing.T) {
	ctx := context.Background()
	cfg := smallConfig()
	cfg.Samples = 50
	store := blobstore.NewMemoryStore()
	writeDataset(t, store, "in", cfg)

	b, err := New(cfg, WithWorkers(2))
	require.NoError(t, err)
	defer b.Close()

	set, err := b.Load(ctx, store, "in")
	require.NoError(t, err)
	require.NoError(t, b.Init(ctx, set))
	require.NoError(t, b.Run(ctx))

	n, err := b.WriteGrid(ctx, store, "out")
	require.NoError(t, err)
	assert.Equal(t, int64(cfg.GridSize*cfg.GridSize*grid.CellBytes), n)
}

// Four unit samples at the grid center with a single w-plane: the grid
// holds four times the first table sub-block around the center.
func TestScenarioCenteredSamples(t *testing.T) {
	ctx := context.Background()
	params := convolution.Params{Frequencies: []float64{1}, CellSize: 1, Baseline: 5, WPlanes: 1}
	const gridSize = 128

	raw, err := convolution.BuildRaw(ctx, params)
	require.NoError(t, err)
	tbl, err := convolution.Build(ctx, params)
	require.NoError(t, err)
	require.Equal(t, 3, tbl.Support)

	set := visibility.NewSet(4, 1)
	for i := range set.Samples {
		set.Samples[i].Data = 1
	}
	require.NoError(t, offset.Compute(set, params.Frequencies, offset.GeometryFor(tbl, params.CellSize, gridSize)))
	for _, s := range set.Samples {
		assert.Equal(t, visibility.Sample{Data: 1, IU: 64, IV: 64, COffset: 0}, s)
	}

	k, err := engine.NewKernel(tbl, gridSize, engine.WithWorkers(2))
	require.NoError(t, err)
	defer k.Close()
	g, err := grid.New(gridSize)
	require.NoError(t, err)
	_, err = k.Run(ctx, set.Samples, g)
	require.NoError(t, err)

	size := tbl.KernelSize()
	for dv := range size {
		for du := range size {
			assert.InDelta(t, 4*real(tbl.Values[du+size*dv]), real(g.At(61+du, 61+dv)), 1e-12)
		}
	}
	// Center tap of the raw table is exp(0) = 1.
	assert.InDelta(t, 4*64/raw.SumMagnitude(), real(g.At(64, 64)), 1e-12)
	assert.Equal(t, complex128(0), g.At(60, 64))
	assert.Equal(t, complex128(0), g.At(68, 64))
}

func TestBenchmarkRunBeforeInit(t *testing.T) {
	b, err := New(smallConfig())
	require.NoError(t, err)

	err = b.Run(context.Background())
	requirePhase(t, err, PhaseGridding, ErrNotInitialized)

	_, err = b.WriteGrid(context.Background(), blobstore.NewMemoryStore(), "grid.dat")
	requirePhase(t, err, PhaseWrite, ErrNotInitialized)
}

func TestBenchmarkFailedReinitDiscardsState(t *testing.T) {
	ctx := context.Background()
	b, err := New(smallConfig(), WithWorkers(2))
	require.NoError(t, err)
	defer b.Close()

	set := testutil.NewRNG(7).SampleSet(20, 2, 10)
	require.NoError(t, b.Init(ctx, set))
	require.NoError(t, b.Run(ctx))

	set.U[1] = 1e9
	err = b.Init(ctx, set)
	requirePhase(t, err, PhaseOffsets, offset.ErrOutOfRange)

	assert.Nil(t, b.Grid())
	assert.Nil(t, b.Table())
	assert.Zero(t, b.Support())

	err = b.Run(ctx)
	requirePhase(t, err, PhaseGridding, ErrNotInitialized)
}

func TestBenchmarkLoadErrors(t *testing.T) {
	ctx := context.Background()
	cfg := smallConfig()
	store := blobstore.NewMemoryStore()

	b, err := New(cfg)
	require.NoError(t, err)

	_, err = b.Load(ctx, store, "missing.dat")
	requirePhase(t, err, PhaseLoad, blobstore.ErrNotFound)

	short := cfg
	short.Samples = 10
	writeDataset(t, store, "short.dat", short)
	_, err = b.Load(ctx, store, "short.dat")
	requirePhase(t, err, PhaseLoad, dataset.ErrShortRead)
}

func TestBenchmarkInitErrors(t *testing.T) {
	ctx := context.Background()

	t.Run("incomplete set", func(t *testing.T) {
		b, err := New(smallConfig())
		require.NoError(t, err)
		err = b.Init(ctx, &visibility.Set{NumChannels: 2})
		requirePhase(t, err, PhaseLoad, visibility.ErrIncompleteSet)
	})

	t.Run("channel mismatch", func(t *testing.T) {
		b, err := New(smallConfig())
		require.NoError(t, err)
		err = b.Init(ctx, visibility.NewSet(3, 1))
		requirePhase(t, err, PhaseLoad, ErrInvalidConfig)
	})

	t.Run("out of range", func(t *testing.T) {
		cfg := smallConfig()
		cfg.GridSize = 64
		b, err := New(cfg)
		require.NoError(t, err)

		set := testutil.NewRNG(1).SampleSet(10, cfg.Channels, cfg.Baseline)
		err = b.Init(ctx, set)
		requirePhase(t, err, PhaseOffsets, offset.ErrOutOfRange)

		var oe *offset.OutOfRangeError
		require.ErrorAs(t, err, &oe)
	})
}

func TestBenchmarkScratchExhausted(t *testing.T) {
	ctx := context.Background()
	cfg := smallConfig()
	cfg.Samples = 10
	store := blobstore.NewMemoryStore()
	writeDataset(t, store, "in", cfg)

	b, err := New(cfg, WithWorkers(4), WithMemoryLimit(1<<20))
	require.NoError(t, err)
	defer b.Close()

	set, err := b.Load(ctx, store, "in")
	require.NoError(t, err)
	require.NoError(t, b.Init(ctx, set))

	err = b.Run(ctx)
	requirePhase(t, err, PhaseGridding, engine.ErrScratchExhausted)
	assert.Equal(t, complex128(0), b.Grid().Sum())
}

func TestBenchmarkHeterogeneousWorkers(t *testing.T) {
	ctx := context.Background()
	cfg := smallConfig()
	store := blobstore.NewMemoryStore()
	writeDataset(t, store, "in", cfg)

	run := func(opts ...Option) (*grid.Grid, Report) {
		b, err := New(cfg, opts...)
		require.NoError(t, err)
		defer b.Close()
		set, err := b.Load(ctx, store, "in")
		require.NoError(t, err)
		require.NoError(t, b.Init(ctx, set))
		require.NoError(t, b.Run(ctx))
		return b.Grid(), b.Report()
	}

	base, baseReport := run(WithWorkers(1))
	assert.Zero(t, baseReport.TransferOutBytes)

	mixed, rep := run(
		WithExecutors(engine.CPUExecutor{RowBands: 2}, &engine.OffloadExecutor{Label: "card0"}, &engine.OffloadExecutor{Label: "card1"}),
		WithSplitPolicy(engine.OffloadSplit(3)),
	)
	diff, err := base.MaxAbsDiff(mixed)
	require.NoError(t, err)
	assert.LessOrEqual(t, diff, 1e-9)

	assert.Positive(t, rep.TransferInBytes)
	assert.Equal(t, int64(2*256*256*grid.CellBytes), rep.TransferOutBytes)
}

func TestBenchmarkReport(t *testing.T) {
	ctx := context.Background()
	cfg := smallConfig()
	cfg.Samples = 100
	store := blobstore.NewMemoryStore()
	writeDataset(t, store, "in", cfg)

	b, err := New(cfg, WithWorkers(2))
	require.NoError(t, err)
	defer b.Close()

	set, err := b.Load(ctx, store, "in")
	require.NoError(t, err)
	require.NoError(t, b.Init(ctx, set))
	require.NoError(t, b.Run(ctx))

	rep := b.Report()
	assert.Equal(t, cfg, rep.Config)
	assert.Equal(t, 14, rep.Support)
	assert.Equal(t, convolution.DefaultOversample, rep.Oversample)
	assert.Equal(t, 2, rep.Partitions)
	assert.Equal(t, int64(2*256*256*16), rep.ScratchBytes)
	assert.Equal(t, rep.ScratchBytes, rep.PeakMemoryBytes)
	assert.Equal(t, int64(100*(3+2)*8), rep.IOBytes)
	assert.Equal(t, real(b.Grid().Sum()), rep.SumReal)

	require.NoError(t, b.WriteReport(ctx, store, "report.json", nil))
	r, err := blobstore.OpenReader(ctx, store, "report.json")
	require.NoError(t, err)
	data, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Contains(t, string(data), "\n  \"support\": 14,\n")
}

func TestPhaseErrorUnwrap(t *testing.T) {
	inner := errors.New("boom")
	err := phaseError(PhaseTable, inner)
	assert.ErrorIs(t, err, inner)
	assert.Equal(t, "table: boom", err.Error())
	assert.NoError(t, phaseError(PhaseTable, nil))
}

func TestLoggerLogPhase(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(slog.NewTextHandler(&buf, nil))

	l.LogPhase(context.Background(), PhaseTable, 0, nil)
	l.LogPhase(context.Background(), PhaseOffsets, 0, errors.New("bad sample"))

	out := buf.String()
	assert.Contains(t, out, "phase=table")
	assert.Contains(t, out, "phase completed")
	assert.Contains(t, out, "phase failed")
	assert.Contains(t, out, "bad sample")
}
