// Package dataset reads and writes the benchmark's sample stream.
//
// A dataset is a flat sequence of little-endian float64 values in [0, 1).
// Each point contributes u, v, w followed by one value per channel:
//
//	u0 v0 w0 d0[0] .. d0[nChan-1]  u1 v1 w1 d1[0] ..
//
// Coordinates are mapped to baseline*x - baseline/2 on load; channel
// values become the real part of the sample data.
//
// Generator produces such streams deterministically from a seed.
package dataset
