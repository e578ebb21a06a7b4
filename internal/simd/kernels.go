package simd

import "math/cmplx"

// Variant names a kernel implementation. Both are pure Go.
type Variant string

const (
	// VariantGeneric is the plain one-element loop.
	VariantGeneric Variant = "generic"
	// VariantUnrolled keeps four independent multiply-adds in flight; it
	// is selected on CPUs with wide vector units.
	VariantUnrolled Variant = "unrolled"
)

// Selected once in init.
var (
	activeVariant       = VariantGeneric
	kernelAccumulateRow = accumulateRowGeneric
	kernelAddInto       = addIntoGeneric
)

func selectKernels(isa ISA) {
	if isa == Generic {
		activeVariant = VariantGeneric
		kernelAccumulateRow = accumulateRowGeneric
		kernelAddInto = addIntoGeneric
		return
	}
	activeVariant = VariantUnrolled
	kernelAccumulateRow = accumulateRowUnrolled
	kernelAddInto = addIntoUnrolled
}

// ActiveVariant returns the kernel implementation in use.
func ActiveVariant() Variant {
	return activeVariant
}

// AccumulateRow adds d*w[i] to dst[i] for every i.
//
// SAFETY: Assumes len(dst) == len(w). Caller MUST ensure lengths match.
func AccumulateRow(dst, w []complex128, d complex128) {
	kernelAccumulateRow(dst, w, d)
}

// AddInto adds src[i] to dst[i] for every i.
//
// SAFETY: Assumes len(dst) == len(src).
func AddInto(dst, src []complex128) {
	kernelAddInto(dst, src)
}

// SumAbs returns the sum of the magnitudes of v.
func SumAbs(v []complex128) float64 {
	var sum float64
	for _, c := range v {
		sum += cmplx.Abs(c)
	}
	return sum
}

// Scale multiplies every element of v by s.
func Scale(v []complex128, s float64) {
	for i := range v {
		v[i] = complex(real(v[i])*s, imag(v[i])*s)
	}
}

func accumulateRowGeneric(dst, w []complex128, d complex128) {
	dr, di := real(d), imag(d)
	w = w[:len(dst)]
	for i := range dst {
		cr, ci := real(w[i]), imag(w[i])
		dst[i] = complex(real(dst[i])+dr*cr-di*ci, imag(dst[i])+dr*ci+di*cr)
	}
}

func accumulateRowUnrolled(dst, w []complex128, d complex128) {
	dr, di := real(d), imag(d)
	n := len(dst)
	w = w[:n]
	i := 0
	for ; i+4 <= n; i += 4 {
		c0, c1, c2, c3 := w[i], w[i+1], w[i+2], w[i+3]
		g0, g1, g2, g3 := dst[i], dst[i+1], dst[i+2], dst[i+3]
		dst[i] = complex(real(g0)+dr*real(c0)-di*imag(c0), imag(g0)+dr*imag(c0)+di*real(c0))
		dst[i+1] = complex(real(g1)+dr*real(c1)-di*imag(c1), imag(g1)+dr*imag(c1)+di*real(c1))
		dst[i+2] = complex(real(g2)+dr*real(c2)-di*imag(c2), imag(g2)+dr*imag(c2)+di*real(c2))
		dst[i+3] = complex(real(g3)+dr*real(c3)-di*imag(c3), imag(g3)+dr*imag(c3)+di*real(c3))
	}
	for ; i < n; i++ {
		c := w[i]
		dst[i] = complex(real(dst[i])+dr*real(c)-di*imag(c), imag(dst[i])+dr*imag(c)+di*real(c))
	}
}

func addIntoGeneric(dst, src []complex128) {
	src = src[:len(dst)]
	for i := range dst {
		dst[i] += src[i]
	}
}

func addIntoUnrolled(dst, src []complex128) {
	n := len(dst)
	src = src[:n]
	i := 0
	for ; i+4 <= n; i += 4 {
		dst[i] += src[i]
		dst[i+1] += src[i+1]
		dst[i+2] += src[i+2]
		dst[i+3] += src[i+3]
	}
	for ; i < n; i++ {
		dst[i] += src[i]
	}
}
