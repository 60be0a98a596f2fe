package mlp

// Backpropagate applies one gradient-descent step for a single example.
//
// After a forward pass the output error signal is
//
//	psi[L-1][i] = (target[i] - nodes[L-1][i]) * f'(theta[L-1][i])
//
// and for n = L-1 down to 1, for every node k of layer n-1:
//
//	omega            = sum_j weights[n-1][k][j] * psi[n][j]
//	weights[n-1][k][j] += lambda * nodes[n-1][k] * psi[n][j]
//	psi[n-1][k]      = omega * f'(theta[n-1][k])
//
// omega is accumulated from each weight before that weight is updated, and
// layer n's psi is final before layer n-1's is derived. f' is evaluated from
// the stored activation. The input layer carries no error signal, so
// psi[0] is never computed.
//
// Returns ErrInvalidInputShape for a wrong-length input and
// ErrShapeMismatch for a wrong-length target; weights are untouched then.
func (net *Network) Backpropagate(input, target []float64, lambda float64) error {
	last := len(net.nodes) - 1
	if want := net.topo.OutputWidth(); len(target) != want {
		return shapeMismatch("backpropagate target", want, len(target))
	}
	out, err := net.Forward(input)
	if err != nil {
		return err
	}

	psiOut := net.psi[last].RawVector().Data
	for i, a := range out {
		psiOut[i] = (target[i] - a) * SigmoidPrimeFromActivation(a)
	}

	for n := last; n >= 1; n-- {
		w := net.weights.layers[n-1]
		prev := net.nodes[n-1].RawVector().Data
		psi := net.psi[n].RawVector().Data
		psiPrev := net.psi[n-1].RawVector().Data

		for k, a := range prev {
			row := w.RawRowView(k)
			omega := 0.0
			for j, p := range psi {
				omega += row[j] * p
				row[j] += lambda * a * p
			}
			if n-1 > 0 {
				psiPrev[k] = omega * SigmoidPrimeFromActivation(a)
			}
		}
	}
	return nil
}
