// Package gridding is a W-projection convolutional gridding benchmark.
//
// Visibilities sampled at (u, v, w) coordinates are scattered onto a
// regular gridSize×gridSize complex grid through an oversampled,
// w-plane indexed convolution table.
//
// # Quick Start
//
//	ctx := context.Background()
//	b, _ := gridding.New(gridding.DefaultConfig(), gridding.WithWorkers(8))
//	defer b.Close()
//
//	set, _ := b.Load(ctx, blobstore.NewLocalStore("."), "randnum.dat")
//	_ = b.Init(ctx, set)   // convolution table + offsets
//	_ = b.Run(ctx)         // one gridding pass
//	_ = b.WriteGrid(ctx, store, "grid.dat")
//
// # Phases
//
// A benchmark moves through load, table, offsets, gridding and write.
// Every error returned by Benchmark is a *PhaseError naming the phase it
// came from:
//
//	var pe *gridding.PhaseError
//	if errors.As(err, &pe) {
//	    log.Printf("%s failed: %v", pe.Phase, pe.Err)
//	}
//
// # Partitioning
//
// The sample sequence is cut into one contiguous range per worker. Each
// worker accumulates into a private grid, and the private grids are summed
// into the output after all workers finish. The default split is uniform;
// heterogeneous setups use WithSplitPolicy and WithExecutors:
//
//	gridding.New(cfg,
//	    gridding.WithExecutors(engine.CPUExecutor{}, &engine.OffloadExecutor{Label: "card0"}),
//	    gridding.WithSplitPolicy(engine.OffloadSplit(2)),
//	)
//
// The result does not depend on the partitioning beyond floating-point
// summation order.
package gridding
