package grid

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/Sookie3mo/ASC15-Gridding/internal/blockcodec"
)

// ErrShortGrid is returned when a stream ends before Size² cells.
var ErrShortGrid = errors.New("grid: short stream")

const rowsPerChunk = 16

// Compression selects the block compression of an encoded grid.
type Compression = blockcodec.Type

// Supported grid compressions. Raw output is byte-compatible with a plain
// dump of the cell array.
const (
	Raw  Compression = blockcodec.None
	LZ4  Compression = blockcodec.LZ4
	ZSTD Compression = blockcodec.ZSTD
)

// ParseCompression parses "none", "raw", "lz4" or "zstd".
func ParseCompression(s string) (Compression, error) {
	return blockcodec.ParseType(s)
}

// Encode writes g row-major, each cell as little-endian float64 real then
// imaginary part. With Raw the output is the plain cell array.
func Encode(w io.Writer, g *Grid, compression Compression) (int64, error) {
	cw := blockcodec.NewWriter(w, compression, 0)
	bw := bufio.NewWriterSize(cw, rowsPerChunk*g.Size*CellBytes)

	var buf [CellBytes]byte
	for _, c := range g.Cells {
		binary.LittleEndian.PutUint64(buf[0:], math.Float64bits(real(c)))
		binary.LittleEndian.PutUint64(buf[8:], math.Float64bits(imag(c)))
		if _, err := bw.Write(buf[:]); err != nil {
			return cw.BytesWritten(), err
		}
	}
	if err := bw.Flush(); err != nil {
		return cw.BytesWritten(), err
	}
	if err := cw.Flush(); err != nil {
		return cw.BytesWritten(), err
	}
	return cw.BytesWritten(), nil
}

// Decode reads a size×size grid written by Encode.
func Decode(r io.Reader, size int, compression Compression) (*Grid, error) {
	g, err := New(size)
	if err != nil {
		return nil, err
	}
	br := bufio.NewReaderSize(blockcodec.NewReader(r, compression), rowsPerChunk*size*CellBytes)

	var buf [CellBytes]byte
	for i := range g.Cells {
		if _, err := io.ReadFull(br, buf[:]); err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
				return nil, fmt.Errorf("%w: cell %d of %d", ErrShortGrid, i, len(g.Cells))
			}
			return nil, err
		}
		g.Cells[i] = complex(
			math.Float64frombits(binary.LittleEndian.Uint64(buf[0:])),
			math.Float64frombits(binary.LittleEndian.Uint64(buf[8:])),
		)
	}
	return g, nil
}
