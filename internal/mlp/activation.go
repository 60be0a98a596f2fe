package mlp

import "math"

// Sigmoid is the activation function: 1 / (1 + exp(-x)).
//
// It saturates to 0 for large negative x and to 1 for large positive x;
// overflow in exp is not treated as an error.
func Sigmoid(x float64) float64 {
	return 1.0 / (1.0 + math.Exp(-x))
}

// SigmoidPrime is the derivative of Sigmoid at x.
func SigmoidPrime(x float64) float64 {
	return SigmoidPrimeFromActivation(Sigmoid(x))
}

// SigmoidPrimeFromActivation is the derivative expressed through an
// already computed activation a = Sigmoid(x).
func SigmoidPrimeFromActivation(a float64) float64 {
	return a * (1.0 - a)
}
