package dataset

import (
	"bufio"
	"context"
	"encoding/binary"
	"io"
	"math"
)

// DefaultSeed is the generator state used by the reference datasets.
const DefaultSeed = 1

// Generator is the K&R linear congruential generator, with its state held
// in the value rather than in a global.
type Generator struct {
	next uint64
}

// NewGenerator creates a generator starting from seed.
func NewGenerator(seed uint64) *Generator {
	return &Generator{next: seed}
}

// Int returns a pseudo-random integer in [0, math.MaxInt32).
func (g *Generator) Int() int {
	g.next = g.next*1103515245 + 12345
	return int(uint32(g.next/65536) % math.MaxInt32)
}

// Float64 returns a pseudo-random value in [0, 1).
func (g *Generator) Float64() float64 {
	return float64(g.Int()) / math.MaxInt32
}

// Write emits l.Points points of generator values to w and returns the
// number of bytes written.
func (g *Generator) Write(ctx context.Context, w io.Writer, l Layout) (int64, error) {
	if err := l.validate(); err != nil {
		return 0, err
	}

	bw := bufio.NewWriterSize(w, 64*1024)
	buf := make([]byte, l.ValuesPerPoint()*valueBytes)
	var written int64

	for i := range l.Points {
		if i%checkEvery == 0 {
			if err := ctx.Err(); err != nil {
				return written, err
			}
		}
		for j := range l.ValuesPerPoint() {
			binary.LittleEndian.PutUint64(buf[j*valueBytes:], math.Float64bits(g.Float64()))
		}
		n, err := bw.Write(buf)
		written += int64(n)
		if err != nil {
			return written, err
		}
	}
	return written, bw.Flush()
}
