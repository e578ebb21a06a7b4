package dataset

import (
	"bufio"
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/Sookie3mo/ASC15-Gridding/visibility"
)

// ErrShortRead is returned when the stream ends before all points are read.
var ErrShortRead = errors.New("dataset: short read")

// ErrInvalidLayout is returned for a layout that cannot describe a dataset.
var ErrInvalidLayout = errors.New("dataset: invalid layout")

const valueBytes = 8

// checkEvery bounds how many points are read between context checks.
const checkEvery = 1 << 14

// Layout describes the shape of a dataset.
type Layout struct {
	Points   int
	Channels int

	// Baseline scales coordinates from [0, 1) to [-Baseline/2, Baseline/2).
	Baseline float64
}

func (l Layout) validate() error {
	if l.Points <= 0 || l.Channels <= 0 {
		return fmt.Errorf("%w: %d points, %d channels", ErrInvalidLayout, l.Points, l.Channels)
	}
	return nil
}

// ValuesPerPoint returns 3 + Channels.
func (l Layout) ValuesPerPoint() int {
	return 3 + l.Channels
}

// Size returns the byte size of a dataset with this layout.
func (l Layout) Size() int64 {
	return int64(l.Points) * int64(l.ValuesPerPoint()) * valueBytes
}

// Read decodes l.Points points from r into a new sample set.
// Trailing data after the last point is ignored.
func Read(ctx context.Context, r io.Reader, l Layout) (*visibility.Set, error) {
	if err := l.validate(); err != nil {
		return nil, err
	}

	set := visibility.NewSet(l.Points, l.Channels)
	br := bufio.NewReaderSize(r, 64*1024)
	buf := make([]byte, l.ValuesPerPoint()*valueBytes)
	half := l.Baseline / 2

	for i := range l.Points {
		if i%checkEvery == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		if _, err := io.ReadFull(br, buf); err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
				return nil, fmt.Errorf("%w: point %d of %d", ErrShortRead, i, l.Points)
			}
			return nil, fmt.Errorf("dataset: point %d: %w", i, err)
		}

		set.U[i] = l.Baseline*value(buf, 0) - half
		set.V[i] = l.Baseline*value(buf, 1) - half
		set.W[i] = l.Baseline*value(buf, 2) - half
		for ch := range l.Channels {
			set.At(i, ch).Data = complex(value(buf, 3+ch), 0)
		}
	}
	return set, nil
}

func value(buf []byte, i int) float64 {
	return math.Float64frombits(binary.LittleEndian.Uint64(buf[i*valueBytes:]))
}
