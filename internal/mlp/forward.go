package mlp

// Forward propagates input through the network and returns the output layer.
//
// The input is copied into layer 0; for every following layer n
//
//	theta[n] = weights[n-1]^T . nodes[n-1]
//	nodes[n] = Sigmoid(theta[n])
//
// The returned slice is a view of the output activations and is
// overwritten by the next call to Forward or Backpropagate. Use Predict
// for a copy.
//
// Returns ErrInvalidInputShape if len(input) != dims[0].
func (net *Network) Forward(input []float64) ([]float64, error) {
	if want := net.topo.InputWidth(); len(input) != want {
		return nil, inputShapeError("forward", want, len(input))
	}
	copy(net.nodes[0].RawVector().Data, input)

	for n := 1; n < len(net.nodes); n++ {
		theta := net.theta[n]
		theta.MulVec(net.weights.layers[n-1].T(), net.nodes[n-1])

		act := net.nodes[n].RawVector().Data
		for j, x := range theta.RawVector().Data {
			act[j] = Sigmoid(x)
		}
	}
	return net.Nodes(len(net.nodes) - 1), nil
}

// Predict is Forward returning a copy of the output layer.
func (net *Network) Predict(input []float64) ([]float64, error) {
	out, err := net.Forward(input)
	if err != nil {
		return nil, err
	}
	res := make([]float64, len(out))
	copy(res, out)
	return res, nil
}
