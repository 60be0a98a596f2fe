package mlp

import (
	"math/rand"

	"gonum.org/v1/gonum/mat"
)

// Network is a fully connected feed-forward network with sigmoid
// activations and no bias units.
//
// All buffers are sized once from the topology: the weight tensor, the
// per-layer activations (nodes) and the training scratch (theta holds the
// pre-activation sums, psi the back-propagated error signal). The scratch is
// reused by every call, so a Network must be driven by a single goroutine.
type Network struct {
	topo    Topology
	weights *WeightTensor
	nodes   []*mat.VecDense
	theta   []*mat.VecDense
	psi     []*mat.VecDense
}

// NewNetwork allocates a zero-filled network for the topology.
//
// Weights must be populated with RandomizeWeights or LoadWeights before
// the network produces anything useful.
func NewNetwork(topo Topology) *Network {
	return &Network{
		topo:    topo,
		weights: NewWeightTensor(topo),
		nodes:   newLayerVectors(topo),
		theta:   newLayerVectors(topo),
		psi:     newLayerVectors(topo),
	}
}

func newLayerVectors(topo Topology) []*mat.VecDense {
	vs := make([]*mat.VecDense, topo.Layers())
	for n := range vs {
		vs[n] = mat.NewVecDense(topo.Width(n), nil)
	}
	return vs
}

// Topology returns the layer widths.
func (net *Network) Topology() Topology {
	return net.topo
}

// Weights returns the weight tensor. It is owned by the network and is
// mutated in place by Backpropagate.
func (net *Network) Weights() *WeightTensor {
	return net.weights
}

// RandomizeWeights draws every weight uniformly from [lower, upper).
func (net *Network) RandomizeWeights(lower, upper float64, rng *rand.Rand) error {
	return net.weights.Randomize(lower, upper, rng)
}

// LoadWeights sets every weight from a flat (n, k, j) ordered sequence.
func (net *Network) LoadWeights(flat []float64) error {
	return net.weights.Load(flat)
}

// SetWeights copies w, which must have the network's topology.
func (net *Network) SetWeights(w *WeightTensor) error {
	return net.weights.CopyFrom(w)
}

// Nodes returns the activations of layer n from the most recent pass.
// The slice aliases internal storage.
func (net *Network) Nodes(n int) []float64 {
	return net.nodes[n].RawVector().Data
}

// Theta returns the pre-activation sums of layer n from the most recent
// pass. Layer 0 has no pre-activation and stays zero.
func (net *Network) Theta(n int) []float64 {
	return net.theta[n].RawVector().Data
}
