// Package convolution builds the oversampled W-projection convolution
// table.
//
// The table is a flat []complex128 with logical shape
//
//	[kernelSize, kernelSize, oversample, oversample, wPlanes]
//
// where kernelSize = 2*support+1 and the first axis varies fastest. Each
// w-plane holds oversample² kernels, one per fractional sub-cell offset.
// Plane k represents w = k - wPlanes/2; the w = 0 plane degenerates to a
// Gaussian anti-aliasing taper, the others approximate the Fresnel term
// with cos(r²/(w·fScale)).
//
// After construction the table is normalized exactly once so that
// Σ|C| = wPlanes·oversample².
package convolution
