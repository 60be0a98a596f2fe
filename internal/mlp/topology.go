package mlp

import (
	"fmt"
	"strconv"
	"strings"
)

// Topology lists the width of every layer of a network, input first and
// output last. A Topology is immutable once constructed.
type Topology struct {
	dims []int
}

// NewTopology builds the layer widths for a network with the given input
// width, hidden layer widths (possibly none) and output width.
//
// Returns ErrInvalidTopology if any width is below one.
func NewTopology(input int, hidden []int, output int) (Topology, error) {
	dims := make([]int, 0, len(hidden)+2)
	dims = append(dims, input)
	dims = append(dims, hidden...)
	dims = append(dims, output)
	return TopologyFromDims(dims)
}

// TopologyFromDims builds a Topology from a complete list of layer widths.
// At least two layers are required.
func TopologyFromDims(dims []int) (Topology, error) {
	if len(dims) < 2 {
		return Topology{}, fmt.Errorf("%w: need at least 2 layers, got %d", ErrInvalidTopology, len(dims))
	}
	for i, d := range dims {
		if d < 1 {
			return Topology{}, fmt.Errorf("%w: layer %d has width %d", ErrInvalidTopology, i, d)
		}
	}
	clone := make([]int, len(dims))
	copy(clone, dims)
	return Topology{dims: clone}, nil
}

// ParseTopology parses widths written as "2-2-1", "2,2,1" or "2 2 1". Only
// one separator may be used, and every field must be a width.
func ParseTopology(s string) (Topology, error) {
	s = strings.TrimSpace(s)
	sep := " "
	if i := strings.IndexAny(s, "-,"); i >= 0 {
		sep = s[i : i+1]
	}
	var fields []string
	if sep == " " {
		fields = strings.Fields(s)
	} else {
		fields = strings.Split(s, sep)
	}

	dims := make([]int, len(fields))
	for i, f := range fields {
		f = strings.TrimSpace(f)
		if f == "" {
			return Topology{}, fmt.Errorf("%w: layer %d is empty in %q", ErrInvalidTopology, i, s)
		}
		d, err := strconv.Atoi(f)
		if err != nil {
			return Topology{}, fmt.Errorf("%w: layer %d: %q is not an integer", ErrInvalidTopology, i, f)
		}
		dims[i] = d
	}
	return TopologyFromDims(dims)
}

// Layers returns the number of layers, input and output included.
func (t Topology) Layers() int {
	return len(t.dims)
}

// Width returns the number of nodes in layer n.
func (t Topology) Width(n int) int {
	return t.dims[n]
}

// InputWidth returns the width of layer 0.
func (t Topology) InputWidth() int {
	return t.dims[0]
}

// OutputWidth returns the width of the last layer.
func (t Topology) OutputWidth() int {
	return t.dims[len(t.dims)-1]
}

// Dims returns a copy of the layer widths.
func (t Topology) Dims() []int {
	out := make([]int, len(t.dims))
	copy(out, t.dims)
	return out
}

// WeightCount returns sum(dims[n]*dims[n+1]), the number of connection weights.
func (t Topology) WeightCount() int {
	n := 0
	for i := 0; i+1 < len(t.dims); i++ {
		n += t.dims[i] * t.dims[i+1]
	}
	return n
}

// Equal reports whether both topologies have identical layer widths.
func (t Topology) Equal(other Topology) bool {
	if len(t.dims) != len(other.dims) {
		return false
	}
	for i := range t.dims {
		if t.dims[i] != other.dims[i] {
			return false
		}
	}
	return true
}

// IsZero reports whether t is the zero value.
func (t Topology) IsZero() bool {
	return len(t.dims) == 0
}

// String formats the topology as "2-2-1".
func (t Topology) String() string {
	parts := make([]string, len(t.dims))
	for i, d := range t.dims {
		parts[i] = strconv.Itoa(d)
	}
	return strings.Join(parts, "-")
}
