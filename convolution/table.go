package convolution

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"

	"golang.org/x/sync/errgroup"

	"github.com/Sookie3mo/ASC15-Gridding/internal/simd"
)

// DefaultOversample is the number of fractional sub-cell positions per axis.
const DefaultOversample = 8

var (
	// ErrInvalidParams is returned when a builder precondition does not hold.
	ErrInvalidParams = errors.New("convolution: invalid parameters")

	// ErrAlreadyNormalized is returned by a second Normalize call.
	ErrAlreadyNormalized = errors.New("convolution: table already normalized")

	// ErrZeroMass is returned when the table has no magnitude to normalize.
	ErrZeroMass = errors.New("convolution: table has zero magnitude")
)

// Params describes the geometry the table is derived from.
type Params struct {
	// Frequencies are the per-channel frequencies in inverse wavelengths.
	// Only the first channel shapes the table.
	Frequencies []float64

	// CellSize is the size of one grid cell in wavelengths.
	CellSize float64

	// Baseline is the maximum baseline length in wavelengths.
	Baseline float64

	// WPlanes is the number of w-planes in the lookup table.
	WPlanes int

	// Oversample overrides DefaultOversample when positive.
	Oversample int
}

func (p Params) validate() error {
	switch {
	case len(p.Frequencies) == 0:
		return fmt.Errorf("%w: no frequencies", ErrInvalidParams)
	case !(p.Frequencies[0] > 0):
		return fmt.Errorf("%w: frequency %g", ErrInvalidParams, p.Frequencies[0])
	case !(p.CellSize > 0):
		return fmt.Errorf("%w: cell size %g", ErrInvalidParams, p.CellSize)
	case p.WPlanes <= 0:
		return fmt.Errorf("%w: %d w-planes", ErrInvalidParams, p.WPlanes)
	case p.Oversample < 0:
		return fmt.Errorf("%w: oversample %d", ErrInvalidParams, p.Oversample)
	case math.IsNaN(p.Baseline) || math.IsInf(p.Baseline, 0):
		return fmt.Errorf("%w: baseline %g", ErrInvalidParams, p.Baseline)
	}
	return nil
}

// Table is the convolution lookup table. It is read-only once built.
type Table struct {
	Support    int
	Oversample int
	WPlanes    int

	// WCellSize is the size of one w-plane in wavelengths.
	WCellSize float64

	Values []complex128

	normalized bool
}

// KernelSize returns the full kernel width 2*Support+1.
func (t *Table) KernelSize() int {
	return 2*t.Support + 1
}

// Len returns the number of table entries.
func (t *Table) Len() int {
	return len(t.Values)
}

// Shape returns the logical table shape, fastest axis first.
func (t *Table) Shape() [5]int {
	k := t.KernelSize()
	return [5]int{k, k, t.Oversample, t.Oversample, t.WPlanes}
}

// Index returns the flat index of kernel pixel (i, j) in the sub-table
// for fractional offsets (osi, osj) on w-plane k.
func (t *Table) Index(i, j, osi, osj, k int) int {
	s := t.KernelSize()
	return i + s*(j+s*(osi+t.Oversample*(osj+t.Oversample*k)))
}

// SubTable returns the kernelSize² block starting at offset.
func (t *Table) SubTable(offset int) []complex128 {
	s := t.KernelSize()
	return t.Values[offset : offset+s*s]
}

// Normalized reports whether Normalize has run.
func (t *Table) Normalized() bool {
	return t.normalized
}

// SumMagnitude returns Σ|C| over all entries.
func (t *Table) SumMagnitude() float64 {
	return simd.SumAbs(t.Values)
}

// Normalize scales every entry by wPlanes·oversample²/Σ|C|.
// It may run only once per table.
func (t *Table) Normalize() error {
	if t.normalized {
		return ErrAlreadyNormalized
	}
	sumC := t.SumMagnitude()
	if sumC == 0 || math.IsNaN(sumC) || math.IsInf(sumC, 0) {
		return fmt.Errorf("%w: sum %g", ErrZeroMass, sumC)
	}
	simd.Scale(t.Values, float64(t.WPlanes*t.Oversample*t.Oversample)/sumC)
	t.normalized = true
	return nil
}

// Option configures Build.
type Option func(*builder)

type builder struct {
	logger *slog.Logger
}

// WithLogger sets the logger used to report the table geometry.
func WithLogger(l *slog.Logger) Option {
	return func(b *builder) {
		b.logger = l
	}
}

// Support returns the kernel half-width for the given geometry.
func Support(p Params) int {
	return int(1.5 * math.Sqrt(math.Abs(p.Baseline)*p.CellSize*p.Frequencies[0]) / p.CellSize)
}

// BuildRaw computes the un-normalized table.
func BuildRaw(ctx context.Context, p Params, opts ...Option) (*Table, error) {
	if err := p.validate(); err != nil {
		return nil, err
	}

	b := &builder{logger: slog.New(slog.DiscardHandler)}
	for _, opt := range opts {
		opt(b)
	}

	over := p.Oversample
	if over == 0 {
		over = DefaultOversample
	}

	t := &Table{
		Support:    Support(p),
		Oversample: over,
		WPlanes:    p.WPlanes,
		WCellSize:  2 * p.Baseline * p.Frequencies[0] / float64(p.WPlanes),
	}
	size := t.KernelSize()
	planeLen := size * size * over * over
	t.Values = make([]complex128, planeLen*p.WPlanes)

	b.logger.Info("Building convolution function",
		"support", t.Support,
		"w_cell_size", t.WCellSize,
		"shape", t.Shape(),
		"bytes", len(t.Values)*16,
	)

	// Planes are independent; fill them concurrently.
	g, ctx := errgroup.WithContext(ctx)
	for k := range p.WPlanes {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			fillPlane(t, k, p.CellSize, p.Frequencies[0], t.Values[k*planeLen:(k+1)*planeLen])
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return t, nil
}

// Build computes the table and normalizes it.
func Build(ctx context.Context, p Params, opts ...Option) (*Table, error) {
	t, err := BuildRaw(ctx, p, opts...)
	if err != nil {
		return nil, err
	}
	if err := t.Normalize(); err != nil {
		return nil, err
	}
	return t, nil
}

func fillPlane(t *Table, k int, cellSize, freq0 float64, plane []complex128) {
	size := t.KernelSize()
	center := (size - 1) / 2
	over := t.Oversample

	w := float64(k - t.WPlanes/2)
	fScale := math.Sqrt(math.Abs(w)*t.WCellSize*freq0) / cellSize

	idx := 0
	for osj := range over {
		for osi := range over {
			for j := range size {
				dj := float64(j-center) + float64(osj)/float64(over)
				j2 := dj * dj
				for i := range size {
					di := float64(i-center) + float64(osi)/float64(over)
					r2 := j2 + di*di
					if w != 0 {
						plane[idx] = complex(math.Cos(r2/(w*fScale)), 0)
					} else {
						plane[idx] = complex(math.Exp(-r2), 0)
					}
					idx++
				}
			}
		}
	}
}
