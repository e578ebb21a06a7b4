// Package grid provides the square complex accumulator grid and its
// row-major binary encoding.
package grid

import (
	"errors"
	"fmt"
	"math/cmplx"

	"github.com/Sookie3mo/ASC15-Gridding/internal/simd"
)

// CellBytes is the encoded and in-memory size of one cell.
const CellBytes = 16

var (
	// ErrInvalidSize is returned for a non-positive grid edge.
	ErrInvalidSize = errors.New("grid: invalid size")

	// ErrSizeMismatch is returned when two grids of different size meet.
	ErrSizeMismatch = errors.New("grid: size mismatch")
)

// Grid is a Size×Size array of complex cells stored row-major: the cell
// at column u, row v lives at Cells[v*Size+u].
type Grid struct {
	Size  int
	Cells []complex128
}

// New allocates a zeroed grid.
func New(size int) (*Grid, error) {
	if size <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidSize, size)
	}
	return &Grid{Size: size, Cells: make([]complex128, size*size)}, nil
}

// Len returns the number of cells.
func (g *Grid) Len() int {
	return len(g.Cells)
}

// Index returns the flat index of column u, row v.
func (g *Grid) Index(u, v int) int {
	return v*g.Size + u
}

// At returns the cell at column u, row v.
func (g *Grid) At(u, v int) complex128 {
	return g.Cells[g.Index(u, v)]
}

// Row returns row v.
func (g *Grid) Row(v int) []complex128 {
	return g.Cells[v*g.Size : (v+1)*g.Size]
}

// Reset zeroes every cell.
func (g *Grid) Reset() {
	clear(g.Cells)
}

// Add accumulates other into g cell by cell.
func (g *Grid) Add(other *Grid) error {
	if other.Size != g.Size {
		return fmt.Errorf("%w: %d vs %d", ErrSizeMismatch, g.Size, other.Size)
	}
	simd.AddInto(g.Cells, other.Cells)
	return nil
}

// Sum returns the sum of all cells.
func (g *Grid) Sum() complex128 {
	var s complex128
	for _, c := range g.Cells {
		s += c
	}
	return s
}

// MaxAbsDiff returns max |g[i]-other[i]|.
func (g *Grid) MaxAbsDiff(other *Grid) (float64, error) {
	if other.Size != g.Size {
		return 0, fmt.Errorf("%w: %d vs %d", ErrSizeMismatch, g.Size, other.Size)
	}
	var m float64
	for i, c := range g.Cells {
		if d := cmplx.Abs(c - other.Cells[i]); d > m {
			m = d
		}
	}
	return m, nil
}
