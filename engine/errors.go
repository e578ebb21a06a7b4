package engine

import (
	"errors"
	"fmt"
)

var (
	// ErrScratchExhausted is returned when the private grids do not fit
	// the memory budget. The run is aborted; there is no degraded mode.
	ErrScratchExhausted = errors.New("engine: scratch memory exhausted")

	// ErrInvalidSplit is returned for a malformed split policy.
	ErrInvalidSplit = errors.New("engine: invalid split")

	// ErrGridMismatch is returned when the output grid does not match the kernel.
	ErrGridMismatch = errors.New("engine: grid size mismatch")

	// ErrTableNotNormalized is returned when gridding with a raw table.
	ErrTableNotNormalized = errors.New("engine: convolution table not normalized")

	// ErrPoolClosed is returned when submitting to a closed worker pool.
	ErrPoolClosed = errors.New("engine: worker pool closed")
)

// SampleError reports a sample whose footprint leaves the grid or whose
// table offset leaves the convolution table.
type SampleError struct {
	Index   int
	IU, IV  int
	COffset int
}

func (e *SampleError) Error() string {
	return fmt.Sprintf("engine: sample %d out of range (iu=%d iv=%d coffset=%d)", e.Index, e.IU, e.IV, e.COffset)
}
