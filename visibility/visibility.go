// Package visibility holds the sample set consumed by the gridder: the
// per-point (u, v, w) coordinates and one complex measurement per
// (point, channel) pair.
package visibility

import (
	"errors"
	"fmt"
)

// ErrIncompleteSet is returned when a Set is missing coordinates or samples.
var ErrIncompleteSet = errors.New("visibility: incomplete sample set")

// Sample is one visibility record. IU, IV and COffset are filled in by the
// offset calculator; the gridding kernel reads them back by name.
type Sample struct {
	Data complex128

	// IU and IV are the zero-based grid column/row of the kernel center.
	IU int
	IV int

	// COffset is the first element of the kernelSize² convolution
	// sub-block selected for this sample.
	COffset int
}

// Set is the full collection of visibilities of one run.
//
// Samples is ordered by point*NumChannels + channel.
type Set struct {
	U, V, W     []float64
	Samples     []Sample
	NumChannels int
}

// NewSet allocates a zeroed set for numPoints points and numChannels channels.
func NewSet(numPoints, numChannels int) *Set {
	return &Set{
		U:           make([]float64, numPoints),
		V:           make([]float64, numPoints),
		W:           make([]float64, numPoints),
		Samples:     make([]Sample, numPoints*numChannels),
		NumChannels: numChannels,
	}
}

// NumPoints returns the number of (u, v, w) points.
func (s *Set) NumPoints() int {
	if s == nil {
		return 0
	}
	return len(s.U)
}

// Index returns the sample index of (point, channel).
func (s *Set) Index(point, channel int) int {
	return point*s.NumChannels + channel
}

// At returns the sample of (point, channel).
func (s *Set) At(point, channel int) *Sample {
	return &s.Samples[s.Index(point, channel)]
}

// Validate reports a partially populated set.
func (s *Set) Validate() error {
	if s == nil {
		return fmt.Errorf("%w: nil set", ErrIncompleteSet)
	}
	n := len(s.U)
	if n == 0 {
		return fmt.Errorf("%w: no points", ErrIncompleteSet)
	}
	if s.NumChannels <= 0 {
		return fmt.Errorf("%w: %d channels", ErrIncompleteSet, s.NumChannels)
	}
	if len(s.V) != n || len(s.W) != n {
		return fmt.Errorf("%w: coordinate lengths u=%d v=%d w=%d", ErrIncompleteSet, n, len(s.V), len(s.W))
	}
	if want := n * s.NumChannels; len(s.Samples) != want {
		return fmt.Errorf("%w: %d samples, want %d", ErrIncompleteSet, len(s.Samples), want)
	}
	return nil
}
