package mlp

import (
	"errors"
	"fmt"
)

// Contract violations reported by the engine. None of them are retried.
var (
	ErrInvalidTopology   = errors.New("invalid topology: every layer needs at least one node")
	ErrInvalidRange      = errors.New("invalid random weight range")
	ErrShapeMismatch     = errors.New("shape mismatch")
	ErrInvalidInputShape = errors.New("invalid input shape")
)

// ShapeError describes a size disagreement between a caller-supplied value
// and the network topology. It unwraps to ErrShapeMismatch or
// ErrInvalidInputShape.
type ShapeError struct {
	Op   string // Operation that detected the mismatch (e.g. "forward", "load weights")
	Want int    // Size required by the topology
	Got  int    // Size supplied by the caller
	Err  error  // ErrShapeMismatch or ErrInvalidInputShape
}

// Error implements the error interface.
func (e *ShapeError) Error() string {
	return fmt.Sprintf("%s: %v: want %d values, got %d", e.Op, e.Err, e.Want, e.Got)
}

// Unwrap returns the sentinel error.
func (e *ShapeError) Unwrap() error {
	return e.Err
}

func inputShapeError(op string, want, got int) error {
	return &ShapeError{Op: op, Want: want, Got: got, Err: ErrInvalidInputShape}
}

func shapeMismatch(op string, want, got int) error {
	return &ShapeError{Op: op, Want: want, Got: got, Err: ErrShapeMismatch}
}
