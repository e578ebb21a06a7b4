// Package engine implements the partitioned scatter-accumulate kernel.
//
// # Execution Model
//
//	samples ──split──► partition 0 ──► executor 0 ──► private grid 0 ─┐
//	                   partition 1 ──► executor 1 ──► private grid 1 ─┼─► reduce ─► grid
//	                   ...                                           ...
//
// The sample sequence is cut into N contiguous, disjoint ranges by a
// SplitPolicy (uniform by default). Each range is accumulated by its own
// Executor into a private grid, so the accumulation phase needs no locks.
// A single barrier separates accumulation from the reduction, which sums
// the private grids into the output grid in parallel over disjoint cell
// ranges. Private grids are summed in partition order for every cell, so
// the output is identical for any reduction chunking.
//
// # Memory
//
// Scratch memory is N × gridSize² × 16 bytes and dominates the footprint.
// It is reserved from a resource.Controller before any allocation; if the
// budget cannot cover it the run fails with ErrScratchExhausted.
//
// # Executors
//
//   - CPUExecutor: accumulates in place, optionally splitting grid rows
//     into bands handled by separate goroutines.
//   - OffloadExecutor: stages samples and table into executor-owned
//     buffers, accumulates there and copies the grid back, the shape of a
//     remote or accelerator worker.
package engine
