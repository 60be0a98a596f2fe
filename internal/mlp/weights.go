package mlp

import (
	"fmt"
	"math"
	"math/rand"
	"time"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// WeightTensor holds every connection weight of a network.
//
// Layer n is a dims[n] x dims[n+1] matrix: element (k, j) is the weight
// from node k of layer n to node j of layer n+1. Each matrix is a single
// contiguous row-major buffer allocated once.
type WeightTensor struct {
	topo   Topology
	layers []*mat.Dense
}

// NewWeightTensor allocates a zero-filled tensor for the topology.
func NewWeightTensor(topo Topology) *WeightTensor {
	layers := make([]*mat.Dense, topo.Layers()-1)
	for n := range layers {
		layers[n] = mat.NewDense(topo.Width(n), topo.Width(n+1), nil)
	}
	return &WeightTensor{topo: topo, layers: layers}
}

// Topology returns the topology the tensor was allocated for.
func (w *WeightTensor) Topology() Topology {
	return w.topo
}

// Len returns the number of connectivity layers (Layers()-1 of the topology).
func (w *WeightTensor) Len() int {
	return len(w.layers)
}

// Layer returns connectivity layer n. The matrix aliases the tensor storage.
func (w *WeightTensor) Layer(n int) *mat.Dense {
	return w.layers[n]
}

// At returns weights[n][k][j].
func (w *WeightTensor) At(n, k, j int) float64 {
	return w.layers[n].At(k, j)
}

// Set assigns weights[n][k][j].
func (w *WeightTensor) Set(n, k, j int, v float64) {
	w.layers[n].Set(k, j, v)
}

// Flatten returns all weights in (n, k, j) row-major order.
func (w *WeightTensor) Flatten() []float64 {
	out := make([]float64, 0, w.topo.WeightCount())
	for _, l := range w.layers {
		out = append(out, l.RawMatrix().Data...)
	}
	return out
}

// Load overwrites every weight from a flat (n, k, j) ordered sequence.
//
// Returns ErrShapeMismatch if len(flat) differs from the topology's
// weight count; the tensor is left untouched in that case.
func (w *WeightTensor) Load(flat []float64) error {
	if want := w.topo.WeightCount(); len(flat) != want {
		return shapeMismatch("load weights", want, len(flat))
	}
	off := 0
	for _, l := range w.layers {
		data := l.RawMatrix().Data
		off += copy(data, flat[off:off+len(data)])
	}
	return nil
}

// CopyFrom copies every weight of src, which must share the topology.
func (w *WeightTensor) CopyFrom(src *WeightTensor) error {
	if !w.topo.Equal(src.topo) {
		return fmt.Errorf("%w: copy weights: topology %s, got %s", ErrShapeMismatch, w.topo, src.topo)
	}
	for n, l := range w.layers {
		l.Copy(src.layers[n])
	}
	return nil
}

// Clone returns a deep copy.
func (w *WeightTensor) Clone() *WeightTensor {
	c := NewWeightTensor(w.topo)
	for n, l := range w.layers {
		c.layers[n].Copy(l)
	}
	return c
}

// Equal reports whether both tensors share a topology and hold exactly the
// same weights. NaN compares equal to NaN.
func (w *WeightTensor) Equal(other *WeightTensor) bool {
	if !w.topo.Equal(other.topo) {
		return false
	}
	for n, l := range w.layers {
		if !floats.Same(l.RawMatrix().Data, other.layers[n].RawMatrix().Data) {
			return false
		}
	}
	return true
}

// Randomize draws every weight independently and uniformly from
// [lower, upper). A nil rng uses a time-seeded source.
//
// Returns ErrInvalidRange unless lower < upper and both are finite.
func (w *WeightTensor) Randomize(lower, upper float64, rng *rand.Rand) error {
	if math.IsNaN(lower) || math.IsNaN(upper) || math.IsInf(lower, 0) || math.IsInf(upper, 0) {
		return fmt.Errorf("%w: bounds must be finite, got [%v, %v)", ErrInvalidRange, lower, upper)
	}
	if lower >= upper {
		return fmt.Errorf("%w: lower %v must be below upper %v", ErrInvalidRange, lower, upper)
	}
	if rng == nil {
		//nolint:gosec // Weight initialization is not security-critical
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	span := upper - lower
	for _, l := range w.layers {
		data := l.RawMatrix().Data
		for i := range data {
			data[i] = lower + rng.Float64()*span
		}
	}
	return nil
}
