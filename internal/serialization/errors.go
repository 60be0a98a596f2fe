package serialization

import (
	"errors"
	"fmt"
)

// Errors returned while reading .born files.
var (
	ErrInvalidMagic       = errors.New("not a .born file")
	ErrUnsupportedVersion = errors.New("unsupported .born version")
	ErrHeaderTooLarge     = errors.New(".born header too large")
	ErrChecksumMismatch   = errors.New("weight data checksum mismatch")
	ErrOutOfBounds        = errors.New("weight tensor outside data section")
	ErrBadLayout          = errors.New("weight tensors not stored back to back in layer order")
	ErrInvalidTensorName  = errors.New("invalid weight tensor name")
	ErrTooManyWeights     = errors.New("too many weights")
)

// Kinds of header inconsistencies reported in ValidationError.Kind.
const (
	KindTopology    = "topology"
	KindTensorCount = "tensor_count"
	KindName        = "name"
	KindDType       = "dtype"
	KindShape       = "shape"
	KindSize        = "size"
	KindBounds      = "bounds"
	KindLayout      = "layout"
	KindDataSize    = "data_size"
)

// ValidationError describes an inconsistent .born header.
type ValidationError struct {
	Kind   string // One of the Kind constants
	Tensor string // Offending tensor, if any
	Detail string
	Err    error // Sentinel for errors.Is, may be nil
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	if e.Tensor == "" {
		return fmt.Sprintf("invalid .born header (%s): %s", e.Kind, e.Detail)
	}
	return fmt.Sprintf("invalid .born header (%s) at %s: %s", e.Kind, e.Tensor, e.Detail)
}

// Unwrap returns the sentinel.
func (e *ValidationError) Unwrap() error {
	return e.Err
}

func invalid(kind, tensor string, err error, format string, args ...any) *ValidationError {
	return &ValidationError{Kind: kind, Tensor: tensor, Detail: fmt.Sprintf(format, args...), Err: err}
}
