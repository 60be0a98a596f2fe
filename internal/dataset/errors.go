package dataset

import (
	"fmt"

	"github.com/born-ml/perceptron/internal/mlp"
)

// ParseError reports a malformed line of a training set file.
type ParseError struct {
	Line int   // 1-based line number
	Err  error // Underlying cause
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	return fmt.Sprintf("line %d: %v", e.Line, e.Err)
}

// Unwrap returns the underlying error.
func (e *ParseError) Unwrap() error {
	return e.Err
}

func inputWidthError(line, want, got int) error {
	return &ParseError{
		Line: line,
		Err:  &mlp.ShapeError{Op: "input", Want: want, Got: got, Err: mlp.ErrInvalidInputShape},
	}
}

func targetWidthError(line, want, got int) error {
	return &ParseError{
		Line: line,
		Err:  &mlp.ShapeError{Op: "target", Want: want, Got: got, Err: mlp.ErrShapeMismatch},
	}
}
