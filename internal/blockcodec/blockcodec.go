// Package blockcodec frames a byte stream into independently compressed
// blocks.
//
// Block format: [UncompressedSize uint32][CompressedSize uint32][Data...].
// CompressedSize == 0 marks a block stored as-is, used whenever
// compression saves less than 10%.
package blockcodec

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"

	"github.com/Sookie3mo/ASC15-Gridding/internal/conv"
)

// Type defines the compression algorithm used.
type Type uint8

const (
	// None writes the payload without framing.
	None Type = 0
	// LZ4 indicates LZ4 block compression (fast).
	LZ4 Type = 1
	// ZSTD indicates ZSTD block compression (better ratio).
	ZSTD Type = 2
)

// DefaultBlockSize is the uncompressed block size.
const DefaultBlockSize = 256 * 1024

const headerSize = 8

var (
	// ErrCorrupt is returned for truncated or inconsistent blocks.
	ErrCorrupt = errors.New("blockcodec: corrupt block")

	// ErrUnknownType is returned by ParseType.
	ErrUnknownType = errors.New("blockcodec: unknown compression type")
)

// String returns the name of the compression type.
func (t Type) String() string {
	switch t {
	case None:
		return "none"
	case LZ4:
		return "lz4"
	case ZSTD:
		return "zstd"
	default:
		return "unknown"
	}
}

// ParseType parses "none", "lz4" or "zstd".
func ParseType(s string) (Type, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "none", "raw":
		return None, nil
	case "lz4":
		return LZ4, nil
	case "zstd":
		return ZSTD, nil
	default:
		return None, fmt.Errorf("%w: %q", ErrUnknownType, s)
	}
}

var (
	zstdEncoderPool sync.Pool
	zstdDecoderPool sync.Pool
)

func getZstdEncoder() *zstd.Encoder {
	if v := zstdEncoderPool.Get(); v != nil {
		return v.(*zstd.Encoder)
	}
	enc, _ := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	return enc
}

func getZstdDecoder() *zstd.Decoder {
	if v := zstdDecoderPool.Get(); v != nil {
		return v.(*zstd.Decoder)
	}
	dec, _ := zstd.NewReader(nil)
	return dec
}

func compress(data []byte, t Type) ([]byte, error) {
	switch t {
	case LZ4:
		buf := make([]byte, lz4.CompressBlockBound(len(data)))
		n, err := lz4.CompressBlock(data, buf, nil)
		if err != nil {
			return nil, err
		}
		return buf[:n], nil // n == 0: incompressible
	case ZSTD:
		enc := getZstdEncoder()
		defer zstdEncoderPool.Put(enc)
		return enc.EncodeAll(data, nil), nil
	default:
		return nil, nil
	}
}

func decompress(dst, src []byte, t Type) error {
	switch t {
	case LZ4:
		n, err := lz4.UncompressBlock(src, dst)
		if err != nil {
			return err
		}
		if n != len(dst) {
			return fmt.Errorf("%w: decompressed size mismatch", ErrCorrupt)
		}
		return nil
	case ZSTD:
		dec := getZstdDecoder()
		defer zstdDecoderPool.Put(dec)
		out, err := dec.DecodeAll(src, dst[:0])
		if err != nil {
			return err
		}
		if len(out) != len(dst) {
			return fmt.Errorf("%w: decompressed size mismatch", ErrCorrupt)
		}
		return nil
	default:
		return fmt.Errorf("%w: %d", ErrUnknownType, t)
	}
}

// Writer compresses blocks onto an underlying writer.
type Writer struct {
	w         io.Writer
	typ       Type
	blockSize int
	buffer    *bytes.Buffer
	written   int64
}

// NewWriter creates a block writer. For None it passes writes through.
func NewWriter(w io.Writer, t Type, blockSize int) *Writer {
	if blockSize <= 0 {
		blockSize = DefaultBlockSize
	}
	return &Writer{
		w:         w,
		typ:       t,
		blockSize: blockSize,
		buffer:    bytes.NewBuffer(make([]byte, 0, blockSize)),
	}
}

// Write buffers p, flushing full blocks.
func (c *Writer) Write(p []byte) (int, error) {
	if c.typ == None {
		n, err := c.w.Write(p)
		c.written += int64(n)
		return n, err
	}

	total := 0
	for len(p) > 0 {
		space := c.blockSize - c.buffer.Len()
		if space <= 0 {
			if err := c.flushBlock(); err != nil {
				return total, err
			}
			space = c.blockSize
		}

		n, _ := c.buffer.Write(p[:min(len(p), space)])
		total += n
		p = p[n:]
	}
	return total, nil
}

func (c *Writer) flushBlock() error {
	if c.buffer.Len() == 0 {
		return nil
	}
	data := c.buffer.Bytes()

	compressed, err := compress(data, c.typ)
	if err != nil {
		return err
	}
	rawSize, err := conv.IntToUint32(len(data))
	if err != nil {
		return err
	}

	// Store as-is when compression saves less than 10%.
	stored := data
	var compSize uint32
	if len(compressed) > 0 && float64(len(compressed)) <= float64(len(data))*0.9 {
		stored = compressed
		if compSize, err = conv.IntToUint32(len(compressed)); err != nil {
			return err
		}
	}

	var hdr [headerSize]byte
	binary.LittleEndian.PutUint32(hdr[0:], rawSize)
	binary.LittleEndian.PutUint32(hdr[4:], compSize)
	if _, err := c.w.Write(hdr[:]); err != nil {
		return err
	}
	n, err := c.w.Write(stored)
	c.written += int64(headerSize + n)
	if err != nil {
		return err
	}
	c.buffer.Reset()
	return nil
}

// Flush writes any buffered data as a final block.
func (c *Writer) Flush() error {
	if c.typ == None {
		return nil
	}
	return c.flushBlock()
}

// BytesWritten returns the number of bytes written to the underlying writer.
func (c *Writer) BytesWritten() int64 {
	return c.written
}

// Reader decompresses a block stream.
type Reader struct {
	r       *bufio.Reader
	typ     Type
	pending []byte
	err     error
}

// NewReader creates a block reader. For None it passes reads through.
func NewReader(r io.Reader, t Type) *Reader {
	return &Reader{r: bufio.NewReader(r), typ: t}
}

// Read implements io.Reader.
func (c *Reader) Read(p []byte) (int, error) {
	if c.typ == None {
		return c.r.Read(p)
	}
	for len(c.pending) == 0 {
		if c.err != nil {
			return 0, c.err
		}
		c.pending, c.err = c.readBlock()
	}
	n := copy(p, c.pending)
	c.pending = c.pending[n:]
	return n, nil
}

func (c *Reader) readBlock() ([]byte, error) {
	var hdr [headerSize]byte
	if _, err := io.ReadFull(c.r, hdr[:]); err != nil {
		if errors.Is(err, io.ErrUnexpectedEOF) {
			return nil, fmt.Errorf("%w: short header", ErrCorrupt)
		}
		return nil, err // io.EOF at a block boundary ends the stream
	}

	rawSize, err := conv.Uint32ToInt(binary.LittleEndian.Uint32(hdr[0:]))
	if err != nil {
		return nil, err
	}
	compSize, err := conv.Uint32ToInt(binary.LittleEndian.Uint32(hdr[4:]))
	if err != nil {
		return nil, err
	}

	if compSize == 0 {
		data := make([]byte, rawSize)
		if _, err := io.ReadFull(c.r, data); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
		}
		return data, nil
	}

	src := make([]byte, compSize)
	if _, err := io.ReadFull(c.r, src); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	data := make([]byte, rawSize)
	if err := decompress(data, src, c.typ); err != nil {
		return nil, err
	}
	return data, nil
}
