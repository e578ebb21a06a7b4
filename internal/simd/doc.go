// Package simd provides the complex multiply-accumulate kernels used by
// the gridding engine.
//
// # Variants
//
// Both variants are pure Go. Runtime CPU feature detection
// (golang.org/x/sys/cpu) picks VariantUnrolled on CPUs reporting AVX2,
// AVX-512 or NEON and VariantGeneric elsewhere. ActiveISA reports what was
// detected, ActiveVariant what runs. Set GRIDDING_SIMD=generic to force
// the plain loops.
//
// # Operations
//
//   - AccumulateRow: dst[i] += d * w[i]
//   - AddInto: dst[i] += src[i] (reduction of private grids)
//   - SumAbs: Σ|v[i]| (convolution table normalization)
package simd
