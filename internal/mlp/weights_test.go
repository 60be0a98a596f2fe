package mlp

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustTopology(t *testing.T, dims ...int) Topology {
	t.Helper()
	topo, err := TopologyFromDims(dims)
	require.NoError(t, err)
	return topo
}

// TestShapeInvariants verifies that weights[n] is dims[n] x dims[n+1] and
// nodes[n] has dims[n] entries for a range of topologies.
func TestShapeInvariants(t *testing.T) {
	for _, dims := range [][]int{{1, 1}, {2, 2, 1}, {3, 5, 4, 2}, {7, 1, 1, 1, 6}} {
		topo := mustTopology(t, dims...)
		net := NewNetwork(topo)

		require.Equal(t, len(dims)-1, net.Weights().Len())
		for n := 0; n < len(dims)-1; n++ {
			r, c := net.Weights().Layer(n).Dims()
			assert.Equal(t, dims[n], r, "rows of layer %d in %v", n, dims)
			assert.Equal(t, dims[n+1], c, "cols of layer %d in %v", n, dims)
		}
		for n, d := range dims {
			assert.Len(t, net.Nodes(n), d)
			assert.Len(t, net.Theta(n), d)
		}
		for _, w := range net.Weights().Flatten() {
			assert.Zero(t, w)
		}
	}
}

func TestWeightTensorLoadOrder(t *testing.T) {
	topo := mustTopology(t, 2, 3, 1)
	w := NewWeightTensor(topo)

	flat := []float64{1, 2, 3, 4, 5, 6, 7, 8, 9}
	require.NoError(t, w.Load(flat))

	// Row-major (n, k, j).
	assert.Equal(t, 1.0, w.At(0, 0, 0))
	assert.Equal(t, 3.0, w.At(0, 0, 2))
	assert.Equal(t, 4.0, w.At(0, 1, 0))
	assert.Equal(t, 6.0, w.At(0, 1, 2))
	assert.Equal(t, 7.0, w.At(1, 0, 0))
	assert.Equal(t, 9.0, w.At(1, 2, 0))
	assert.Equal(t, flat, w.Flatten())
}

func TestWeightTensorLoadShapeMismatch(t *testing.T) {
	topo := mustTopology(t, 2, 2, 1)
	w := NewWeightTensor(topo)

	for _, n := range []int{0, 5, 7} {
		err := w.Load(make([]float64, n))
		require.ErrorIs(t, err, ErrShapeMismatch)

		var se *ShapeError
		require.ErrorAs(t, err, &se)
		assert.Equal(t, 6, se.Want)
		assert.Equal(t, n, se.Got)
	}
	assert.Equal(t, make([]float64, 6), w.Flatten(), "failed load must not modify weights")
}

func TestWeightTensorRandomize(t *testing.T) {
	topo := mustTopology(t, 4, 6, 3)
	w := NewWeightTensor(topo)

	//nolint:gosec // deterministic test source
	rng := rand.New(rand.NewSource(7))
	require.NoError(t, w.Randomize(-0.5, 0.25, rng))

	for _, v := range w.Flatten() {
		assert.GreaterOrEqual(t, v, -0.5)
		assert.Less(t, v, 0.25)
	}

	again := NewWeightTensor(topo)
	//nolint:gosec // deterministic test source
	require.NoError(t, again.Randomize(-0.5, 0.25, rand.New(rand.NewSource(7))))
	assert.True(t, w.Equal(again), "same seed must give the same weights")
}

func TestWeightTensorRandomizeInvalidRange(t *testing.T) {
	w := NewWeightTensor(mustTopology(t, 2, 1))
	for _, r := range [][2]float64{{1, 1}, {2, -2}} {
		assert.ErrorIs(t, w.Randomize(r[0], r[1], nil), ErrInvalidRange)
	}
}

func TestWeightTensorCloneAndCopy(t *testing.T) {
	topo := mustTopology(t, 2, 2, 1)
	w := NewWeightTensor(topo)
	require.NoError(t, w.Load([]float64{1, 2, 3, 4, 5, 6}))

	c := w.Clone()
	assert.True(t, w.Equal(c))

	c.Set(1, 1, 0, -1)
	assert.False(t, w.Equal(c))
	assert.Equal(t, 6.0, w.At(1, 1, 0))

	require.NoError(t, c.CopyFrom(w))
	assert.True(t, w.Equal(c))

	other := NewWeightTensor(mustTopology(t, 2, 3, 1))
	assert.ErrorIs(t, other.CopyFrom(w), ErrShapeMismatch)
}
