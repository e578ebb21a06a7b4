// Package resource governs the memory, concurrency and IO budgets of a
// gridding run.
//
// The per-partition scratch grids dominate memory (N × gridSize² × 16
// bytes); the engine reserves them in one AcquireMemory call before
// allocating and treats a *LimitError as fatal. Worker slots bound how
// many partitions accumulate at once, and a token bucket throttles the
// dataset and grid streams.
//
// All methods accept a nil *Controller and then grant every request.
package resource
