package serialization

import (
	"strings"
)

// Limits applied to untrusted headers.
const (
	MaxHeaderSize    = 16 * 1024 * 1024 // 16MB
	MaxTensorCount   = 4096             // Connectivity layers per file
	MaxTensorNameLen = 256
	MaxWeightCount   = 1 << 26 // 64M weights, 512MB of float64 data
)

// ValidationLevel controls how much of the tensor layout is checked.
type ValidationLevel int

const (
	// ValidationStrict also requires tensors to be laid out back to back
	// in layer order, which rules out overlapping regions (default).
	ValidationStrict ValidationLevel = iota
	// ValidationNormal only requires every tensor to fit in the data section.
	ValidationNormal
)

// ValidateTensorName checks that name has the form "weights.<n>".
func ValidateTensorName(name string) error {
	switch {
	case len(name) > MaxTensorNameLen:
		return invalid(KindName, name[:32]+"...", ErrInvalidTensorName, "%d bytes, limit %d", len(name), MaxTensorNameLen)
	case strings.ContainsAny(name, "/\\\x00"):
		return invalid(KindName, name, ErrInvalidTensorName, "path separator or NUL byte")
	}
	if _, err := tensorIndex(name); err != nil {
		return invalid(KindName, name, ErrInvalidTensorName, "want %q followed by a layer index", tensorPrefix)
	}
	return nil
}

// ValidateHeader checks h against itself and the data section size: the
// topology must be usable, and there must be exactly one float64 tensor per
// connectivity layer with the matching shape, byte size and a region inside
// the data section.
func ValidateHeader(h *Header, dataSize int64, level ValidationLevel) error {
	if err := validateTopology(h.Topology); err != nil {
		return err
	}
	layers := len(h.Topology) - 1
	if len(h.Tensors) != layers {
		return invalid(KindTensorCount, "", nil, "topology %v needs %d tensors, header lists %d", h.Topology, layers, len(h.Tensors))
	}

	// byLayer[n] is the tensor stored for connectivity layer n.
	byLayer := make([]*TensorMeta, layers)
	for i := range h.Tensors {
		t := &h.Tensors[i]
		n, err := validateTensor(h.Topology, t, dataSize)
		if err != nil {
			return err
		}
		if byLayer[n] != nil {
			return invalid(KindName, t.Name, ErrInvalidTensorName, "listed twice")
		}
		byLayer[n] = t
	}

	if level != ValidationStrict {
		return nil
	}
	var next int64
	for _, t := range byLayer {
		if t.Offset != next {
			return invalid(KindLayout, t.Name, ErrBadLayout, "starts at %d, previous layer ends at %d", t.Offset, next)
		}
		next += t.Size
	}
	return nil
}

func validateTopology(dims []int) error {
	if len(dims) < 2 {
		return invalid(KindTopology, "", nil, "need at least 2 layers, got %v", dims)
	}
	if len(dims)-1 > MaxTensorCount {
		return invalid(KindTopology, "", nil, "%d layers, limit %d", len(dims), MaxTensorCount+1)
	}
	for i, d := range dims {
		if d < 1 {
			return invalid(KindTopology, "", nil, "layer %d has width %d", i, d)
		}
	}

	// Checked by division so that no product can overflow.
	total := 0
	for n := 0; n+1 < len(dims); n++ {
		rows, cols := dims[n], dims[n+1]
		if rows > (MaxWeightCount-total)/cols {
			return invalid(KindTopology, "", ErrTooManyWeights, "%v holds more than %d weights", dims, MaxWeightCount)
		}
		total += rows * cols
	}
	return nil
}

// validateTensor checks one tensor entry and returns its layer index.
func validateTensor(dims []int, t *TensorMeta, dataSize int64) (int, error) {
	if err := ValidateTensorName(t.Name); err != nil {
		return 0, err
	}
	n, _ := tensorIndex(t.Name)
	if n >= len(dims)-1 {
		return 0, invalid(KindName, t.Name, ErrInvalidTensorName, "layer %d does not exist in %v", n, dims)
	}
	if t.DType != DTypeFloat64 {
		return 0, invalid(KindDType, t.Name, nil, "want %s, got %q", DTypeFloat64, t.DType)
	}

	rows, cols := dims[n], dims[n+1]
	if len(t.Shape) != 2 || t.Shape[0] != rows || t.Shape[1] != cols {
		return 0, invalid(KindShape, t.Name, nil, "want [%d %d], got %v", rows, cols, t.Shape)
	}
	if want := int64(rows) * int64(cols) * Float64Size; t.Size != want {
		return 0, invalid(KindSize, t.Name, nil, "want %d bytes, got %d", want, t.Size)
	}
	if t.Offset < 0 || t.Offset > dataSize-t.Size {
		return 0, invalid(KindBounds, t.Name, ErrOutOfBounds, "[%d, %d) outside %d data bytes", t.Offset, t.Offset+t.Size, dataSize)
	}
	return n, nil
}
