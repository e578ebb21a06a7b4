package engine

import (
	"fmt"
	"math"
)

// Range is a half-open sample index range [Start, End).
type Range struct {
	Start, End int
}

// Len returns End-Start.
func (r Range) Len() int {
	return r.End - r.Start
}

// SplitPolicy cuts n samples into parts contiguous, disjoint ranges that
// together cover [0, n).
type SplitPolicy interface {
	Split(n, parts int) ([]Range, error)
}

type uniformSplit struct{}

// Uniform returns the default policy: equal shares, remainder spread so
// range lengths differ by at most one.
func Uniform() SplitPolicy {
	return uniformSplit{}
}

func (uniformSplit) Split(n, parts int) ([]Range, error) {
	if parts <= 0 || n < 0 {
		return nil, fmt.Errorf("%w: %d samples into %d parts", ErrInvalidSplit, n, parts)
	}
	out := make([]Range, parts)
	for i := range parts {
		out[i] = Range{Start: i * n / parts, End: (i + 1) * n / parts}
	}
	return out, nil
}

type fractionSplit struct {
	bounds []float64
}

// Fractions returns a policy with explicit cumulative boundaries, e.g.
// Fractions(0, 0.31, 0.60, 1) for three workers of unequal speed. The
// boundaries must start at 0, end at 1 and never decrease; their count
// fixes the number of parts to len(bounds)-1.
func Fractions(bounds ...float64) SplitPolicy {
	return fractionSplit{bounds: append([]float64(nil), bounds...)}
}

func (f fractionSplit) Split(n, parts int) ([]Range, error) {
	b := f.bounds
	if len(b) != parts+1 {
		return nil, fmt.Errorf("%w: %d boundaries for %d parts", ErrInvalidSplit, len(b), parts)
	}
	for i, v := range b {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, fmt.Errorf("%w: boundary %d is %g", ErrInvalidSplit, i, v)
		}
	}
	if b[0] != 0 || b[len(b)-1] != 1 {
		return nil, fmt.Errorf("%w: boundaries must span [0, 1], got [%g, %g]", ErrInvalidSplit, b[0], b[len(b)-1])
	}
	for i := 1; i < len(b); i++ {
		if b[i] < b[i-1] {
			return nil, fmt.Errorf("%w: boundary %d decreases (%g < %g)", ErrInvalidSplit, i, b[i], b[i-1])
		}
	}
	if n < 0 {
		return nil, fmt.Errorf("%w: %d samples", ErrInvalidSplit, n)
	}

	out := make([]Range, parts)
	for i := range parts {
		out[i] = Range{Start: int(b[i] * float64(n)), End: int(b[i+1] * float64(n))}
	}
	out[parts-1].End = n
	return out, nil
}

// OffloadSplit returns the boundaries tuned for one host plus one or two
// accelerator cards; other counts fall back to Uniform. Use it only when
// reproducing those benchmark runs.
func OffloadSplit(parts int) SplitPolicy {
	switch parts {
	case 2:
		return Fractions(0, 0.5, 1)
	case 3:
		return Fractions(0, 0.31, 0.60, 1)
	default:
		return Uniform()
	}
}

// checkRanges verifies that ranges tile [0, n) in order, so every sample
// lands in exactly one partition whatever policy produced them.
func checkRanges(ranges []Range, n, parts int) error {
	if len(ranges) != parts {
		return fmt.Errorf("%w: %d ranges for %d parts", ErrInvalidSplit, len(ranges), parts)
	}
	next := 0
	for i, r := range ranges {
		if r.Start != next || r.End < r.Start {
			return fmt.Errorf("%w: range %d is [%d, %d), want start %d", ErrInvalidSplit, i, r.Start, r.End, next)
		}
		next = r.End
	}
	if next != n {
		return fmt.Errorf("%w: ranges end at %d, want %d", ErrInvalidSplit, next, n)
	}
	return nil
}
