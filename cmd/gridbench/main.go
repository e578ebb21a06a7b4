// Command gridbench runs the W-projection gridding benchmark.
//
// It reads a sample dataset from a blob store (optionally generating it
// first), grids it, and writes the grid and a JSON report back:
//
//	gridbench -store . -generate
//	gridbench -store s3://bench/run-42 -workers 16 -compression zstd
//	gridbench -store minio://localhost:9000/bench/run-42 -offload 2
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"runtime"
	"time"

	gridding "github.com/Sookie3mo/ASC15-Gridding"
	"github.com/Sookie3mo/ASC15-Gridding/blobstore"
	"github.com/Sookie3mo/ASC15-Gridding/codec"
	"github.com/Sookie3mo/ASC15-Gridding/dataset"
	"github.com/Sookie3mo/ASC15-Gridding/engine"
	"github.com/Sookie3mo/ASC15-Gridding/grid"
)

var (
	configPath  = flag.String("config", "", "JSON configuration file (default: built-in benchmark geometry)")
	storeURL    = flag.String("store", ".", "blob store: directory, s3://bucket/prefix or minio://host:port/bucket/prefix")
	input       = flag.String("input", "randnum.dat", "dataset blob name")
	output      = flag.String("output", "grid.dat", "grid blob name (empty: do not write)")
	report      = flag.String("report", "", "JSON report blob name (empty: do not write)")
	generate    = flag.Bool("generate", false, "generate the dataset before loading it")
	seed        = flag.Uint64("seed", dataset.DefaultSeed, "generator seed")
	workers     = flag.Int("workers", 0, "gridding partitions (default: GOMAXPROCS)")
	offload     = flag.Int("offload", 0, "offload executors added next to one host executor")
	split       = flag.String("split", "", "split policy: uniform, offload, or cumulative bounds like 0,0.31,0.6,1")
	rowBands    = flag.Int("row-bands", 0, "row bands per host partition")
	memoryLimit = flag.Int64("memory-limit", 0, "scratch memory limit in bytes (0: unlimited)")
	ioLimit     = flag.Int64("io-limit", 0, "dataset and grid IO limit in bytes per second (0: unlimited)")
	compression = flag.String("compression", "none", "grid compression: none, lz4 or zstd")
	codecName   = flag.String("codec", "go-json", "config and report codec: json or go-json")
	runs        = flag.Int("runs", 1, "gridding passes; the grid accumulates every pass")
	logFormat   = flag.String("log", "text", "log format: text or json")
	verbose     = flag.Bool("v", false, "debug logging")
)

func main() {
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx); err != nil {
		var pe *gridding.PhaseError
		if errors.As(err, &pe) {
			fmt.Fprintf(os.Stderr, "gridbench: %s phase failed: %v\n", pe.Phase, pe.Err)
		} else {
			fmt.Fprintf(os.Stderr, "gridbench: %v\n", err)
		}
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logger := gridding.NewTextLogger(level)
	if *logFormat == "json" {
		logger = gridding.NewJSONLogger(level)
	}

	c, err := codec.ByName(*codecName)
	if err != nil {
		return err
	}

	cfg, err := loadConfig(*configPath, c)
	if err != nil {
		return err
	}

	store, err := openStore(ctx, *storeURL)
	if err != nil {
		return err
	}

	opts, err := benchmarkOptions(logger)
	if err != nil {
		return err
	}

	b, err := gridding.New(cfg, opts...)
	if err != nil {
		return err
	}
	defer b.Close()

	if *generate {
		if err := writeDataset(ctx, store, cfg); err != nil {
			return err
		}
	}

	set, err := b.Load(ctx, store, *input)
	if err != nil {
		return err
	}

	start := time.Now()
	if err := b.Init(ctx, set); err != nil {
		return err
	}
	fmt.Printf("Init:     %v\n", time.Since(start))
	fmt.Printf("Support:  %d\n", b.Support())

	for i := range *runs {
		start := time.Now()
		if err := b.Run(ctx); err != nil {
			return err
		}
		elapsed := time.Since(start)
		rep := b.Report()
		fmt.Printf("Pass %d:   %v (%.3g grid ops/s)\n", i+1, elapsed, rep.GridOpsPerSecond)
	}

	if *output != "" {
		n, err := b.WriteGrid(ctx, store, *output)
		if err != nil {
			return err
		}
		fmt.Printf("Wrote %s (%d bytes)\n", *output, n)
	}
	if *report != "" {
		if err := b.WriteReport(ctx, store, *report, c); err != nil {
			return err
		}
	}
	return nil
}

func loadConfig(path string, c codec.Codec) (gridding.Config, error) {
	if path == "" {
		return gridding.DefaultConfig(), nil
	}
	f, err := os.Open(path)
	if err != nil {
		return gridding.Config{}, err
	}
	defer f.Close()
	return gridding.LoadConfig(f, c)
}

func benchmarkOptions(logger *gridding.Logger) ([]gridding.Option, error) {
	c, err := grid.ParseCompression(*compression)
	if err != nil {
		return nil, err
	}

	opts := []gridding.Option{
		gridding.WithLogger(logger),
		gridding.WithMemoryLimit(*memoryLimit),
		gridding.WithIOLimit(*ioLimit),
		gridding.WithCompression(c),
	}

	parts, err := partitionOptions(*workers, *offload, *rowBands, *split)
	if err != nil {
		return nil, err
	}
	return append(opts, parts...), nil
}

// partitionOptions turns the partitioning flags into options. Flag
// mistakes are reported here, before any phase runs.
func partitionOptions(workers, offload, rowBands int, split string) ([]gridding.Option, error) {
	if workers < 0 || offload < 0 || rowBands < 0 {
		return nil, fmt.Errorf("-workers, -offload and -row-bands must not be negative")
	}
	if workers > 0 && offload > 0 {
		return nil, fmt.Errorf("-workers and -offload are exclusive: -offload %d runs %d partitions", offload, offload+1)
	}

	var opts []gridding.Option
	parts := workers
	switch {
	case offload > 0:
		execs := []engine.Executor{engine.CPUExecutor{RowBands: rowBands}}
		for i := range offload {
			execs = append(execs, &engine.OffloadExecutor{Label: fmt.Sprintf("card%d", i)})
		}
		opts = append(opts, gridding.WithExecutors(execs...))
		parts = len(execs)
	default:
		if workers > 0 {
			opts = append(opts, gridding.WithWorkers(workers))
		} else {
			parts = runtime.GOMAXPROCS(0)
		}
		if rowBands > 0 {
			opts = append(opts, gridding.WithRowBands(rowBands))
		}
	}

	policy, err := parseSplit(split, parts)
	if err != nil {
		return nil, err
	}
	if policy != nil {
		opts = append(opts, gridding.WithSplitPolicy(policy))
	}
	return opts, nil
}

func writeDataset(ctx context.Context, store blobstore.BlobStore, cfg gridding.Config) error {
	w, err := store.Create(ctx, *input)
	if err != nil {
		return err
	}
	_, err = dataset.NewGenerator(*seed).Write(ctx, w, dataset.Layout{
		Points:   cfg.Samples,
		Channels: cfg.Channels,
		Baseline: cfg.Baseline,
	})
	if err := errors.Join(err, w.Close()); err != nil {
		return fmt.Errorf("generate %s: %w", *input, err)
	}
	return nil
}
