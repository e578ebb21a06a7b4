package conv

import (
	"errors"
	"fmt"
	"math"
)

// ErrOverflow is returned when a value does not fit the target type.
var ErrOverflow = errors.New("conv: integer overflow")

// IntToUint32 narrows a length for a 32-bit header field.
func IntToUint32(v int) (uint32, error) {
	if v < 0 || uint64(v) > math.MaxUint32 {
		return 0, fmt.Errorf("%w: %d does not fit uint32", ErrOverflow, v)
	}
	return uint32(v), nil
}

// Uint32ToInt widens a 32-bit header field; it only fails where int is 32 bits.
func Uint32ToInt(v uint32) (int, error) {
	if uint64(v) > uint64(math.MaxInt) {
		return 0, fmt.Errorf("%w: %d does not fit int", ErrOverflow, v)
	}
	return int(v), nil
}

// MulInt64 returns the product of non-negative factors, e.g. a byte count
// built from worker count, grid edge and cell width.
func MulInt64(factors ...int64) (int64, error) {
	out := int64(1)
	for _, f := range factors {
		if f < 0 {
			return 0, fmt.Errorf("%w: negative factor %d", ErrOverflow, f)
		}
		if f != 0 && out > math.MaxInt64/f {
			return 0, fmt.Errorf("%w: product exceeds int64 at factor %d", ErrOverflow, f)
		}
		out *= f
	}
	return out, nil
}
