package gridding

import (
	"errors"
	"fmt"
)

var (
	// ErrNotInitialized is returned by Run and WriteGrid before Init.
	ErrNotInitialized = errors.New("benchmark not initialized")

	// ErrInvalidConfig is returned for a configuration that cannot run.
	ErrInvalidConfig = errors.New("invalid configuration")
)

// Phase names a stage of a benchmark run.
type Phase string

const (
	PhaseLoad     Phase = "load"
	PhaseTable    Phase = "table"
	PhaseOffsets  Phase = "offsets"
	PhaseGridding Phase = "gridding"
	PhaseWrite    Phase = "write"
)

// PhaseError attributes an error to the phase that produced it.
//
// The underlying error can be accessed via errors.Unwrap.
type PhaseError struct {
	Phase Phase
	Err   error
}

func (e *PhaseError) Error() string {
	return fmt.Sprintf("%s: %v", e.Phase, e.Err)
}

func (e *PhaseError) Unwrap() error { return e.Err }

func phaseError(p Phase, err error) error {
	if err == nil {
		return nil
	}
	return &PhaseError{Phase: p, Err: err}
}
