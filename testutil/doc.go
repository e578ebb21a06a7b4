// Package testutil provides testing utilities for the gridder.
//
// This package is intended for use in tests and benchmarks only.
//
// # Random Sample Sets
//
//	rng := testutil.NewRNG(seed)
//	set := rng.SampleSet(1000, 2, 40) // u, v, w uniform in [-20, 20)
//
// # Ground Truth
//
// ReferenceGrid grids samples one at a time with the textbook formula and
// no partitioning, for comparison against the engine:
//
//	want := testutil.ReferenceGrid(set.Samples, table, gridSize)
//	diff, _ := want.MaxAbsDiff(got)
package testutil
