// Package offset maps every (sample, channel) pair onto an integer grid
// cell and a convolution sub-table.
package offset

import (
	"errors"
	"fmt"

	"github.com/Sookie3mo/ASC15-Gridding/convolution"
	"github.com/Sookie3mo/ASC15-Gridding/visibility"
)

// ErrOutOfRange is returned when a sample's kernel footprint leaves the
// grid or its w-plane leaves the table.
var ErrOutOfRange = errors.New("offset: index out of range")

// ErrInvalidGeometry is returned for non-positive geometry values.
var ErrInvalidGeometry = errors.New("offset: invalid geometry")

// Axis names the coordinate that went out of range.
type Axis string

const (
	AxisU Axis = "u"
	AxisV Axis = "v"
	AxisW Axis = "w"
)

// OutOfRangeError describes the offending sample.
//
// The underlying sentinel can be matched with errors.Is(err, ErrOutOfRange).
type OutOfRangeError struct {
	Point   int
	Channel int
	Axis    Axis
	Value   int
	Min     int
	Max     int
}

func (e *OutOfRangeError) Error() string {
	return fmt.Sprintf("offset: point %d channel %d: %s index %d outside [%d, %d]",
		e.Point, e.Channel, e.Axis, e.Value, e.Min, e.Max)
}

func (e *OutOfRangeError) Unwrap() error { return ErrOutOfRange }

// Geometry carries the grid and table parameters needed to place a sample.
type Geometry struct {
	CellSize   float64
	WCellSize  float64
	GridSize   int
	Support    int
	Oversample int
	WPlanes    int
}

// GeometryFor derives the geometry from a built table.
func GeometryFor(t *convolution.Table, cellSize float64, gridSize int) Geometry {
	return Geometry{
		CellSize:   cellSize,
		WCellSize:  t.WCellSize,
		GridSize:   gridSize,
		Support:    t.Support,
		Oversample: t.Oversample,
		WPlanes:    t.WPlanes,
	}
}

// KernelSize returns 2*Support+1.
func (g Geometry) KernelSize() int {
	return 2*g.Support + 1
}

func (g Geometry) validate() error {
	if !(g.CellSize > 0) || g.WCellSize == 0 || g.GridSize <= 0 || g.Support < 0 || g.Oversample <= 0 || g.WPlanes <= 0 {
		return fmt.Errorf("%w: %+v", ErrInvalidGeometry, g)
	}
	return nil
}

// Location is the placement of one (sample, channel) pair.
type Location struct {
	IU, IV       int
	FracU, FracV int
	WPlane       int
	COffset      int
}

// Locate computes the placement of a single coordinate at frequency freq.
// It does not check bounds; see Check.
func Locate(u, v, w, freq float64, g Geometry) Location {
	var loc Location
	loc.IU, loc.FracU = cell(freq*u/g.CellSize, g.Oversample)
	loc.IV, loc.FracV = cell(freq*v/g.CellSize, g.Oversample)
	loc.IU += g.GridSize / 2
	loc.IV += g.GridSize / 2

	// Truncation toward zero selects the plane, not rounding.
	loc.WPlane = g.WPlanes/2 + int(freq*w/g.WCellSize)

	size := g.KernelSize()
	loc.COffset = size * size * (loc.FracU + g.Oversample*(loc.FracV+g.Oversample*loc.WPlane))
	return loc
}

// cell floors scaled and returns the integer cell and oversample fraction.
func cell(scaled float64, oversample int) (int, int) {
	i := int(scaled)
	if scaled < float64(i) {
		i--
	}
	frac := int(float64(oversample) * (scaled - float64(i)))
	// scaled - i can round up to 1.0 for tiny negative inputs.
	if frac >= oversample {
		frac = oversample - 1
	}
	return i, frac
}

// Check reports whether loc's kernel footprint lies on the grid and its
// w-plane in the table. point and channel only label the error.
func (loc Location) Check(g Geometry, point, channel int) error {
	lo, hi := g.Support, g.GridSize-1-g.Support
	if loc.IU < lo || loc.IU > hi {
		return &OutOfRangeError{Point: point, Channel: channel, Axis: AxisU, Value: loc.IU, Min: lo, Max: hi}
	}
	if loc.IV < lo || loc.IV > hi {
		return &OutOfRangeError{Point: point, Channel: channel, Axis: AxisV, Value: loc.IV, Min: lo, Max: hi}
	}
	if loc.WPlane < 0 || loc.WPlane >= g.WPlanes {
		return &OutOfRangeError{Point: point, Channel: channel, Axis: AxisW, Value: loc.WPlane, Min: 0, Max: g.WPlanes - 1}
	}
	return nil
}

// Compute fills IU, IV and COffset of every sample in set.
//
// freq must have set.NumChannels entries. The first out-of-range sample
// aborts the computation; samples before it have already been written.
func Compute(set *visibility.Set, freq []float64, g Geometry) error {
	if err := set.Validate(); err != nil {
		return err
	}
	if err := g.validate(); err != nil {
		return err
	}
	if len(freq) != set.NumChannels {
		return fmt.Errorf("%w: %d frequencies for %d channels", ErrInvalidGeometry, len(freq), set.NumChannels)
	}

	for i := range set.NumPoints() {
		u, v, w := set.U[i], set.V[i], set.W[i]
		for ch, f := range freq {
			loc := Locate(u, v, w, f, g)
			if err := loc.Check(g, i, ch); err != nil {
				return err
			}
			s := set.At(i, ch)
			s.IU = loc.IU
			s.IV = loc.IV
			s.COffset = loc.COffset
		}
	}
	return nil
}
