package train

import (
	"errors"
	"fmt"

	"github.com/born-ml/perceptron/internal/mlp"
	"gonum.org/v1/gonum/floats"
)

// ErrNoExamples is returned when training or evaluating an empty set.
var ErrNoExamples = errors.New("example set is empty")

// Example is one labeled training pair.
type Example struct {
	Input  []float64
	Target []float64
}

// ExampleResult is the network's answer for one example.
type ExampleResult struct {
	Input  []float64
	Target []float64
	Output []float64
	Error  float64 // 0.5 * sum over outputs of (target-output)^2
}

// ValidateExamples checks every example against the topology.
//
// Returns an error wrapping mlp.ErrInvalidInputShape or mlp.ErrShapeMismatch
// for the first offending example.
func ValidateExamples(topo mlp.Topology, examples []Example) error {
	if len(examples) == 0 {
		return ErrNoExamples
	}
	for i, ex := range examples {
		if len(ex.Input) != topo.InputWidth() {
			return fmt.Errorf("example %d: input has %d values, want %d: %w",
				i, len(ex.Input), topo.InputWidth(), mlp.ErrInvalidInputShape)
		}
		if len(ex.Target) != topo.OutputWidth() {
			return fmt.Errorf("example %d: target has %d values, want %d: %w",
				i, len(ex.Target), topo.OutputWidth(), mlp.ErrShapeMismatch)
		}
	}
	return nil
}

// Evaluate propagates every example without touching the weights and
// returns the average error together with per-example results.
func Evaluate(net *mlp.Network, examples []Example) (float64, []ExampleResult, error) {
	if err := ValidateExamples(net.Topology(), examples); err != nil {
		return 0, nil, err
	}
	results := make([]ExampleResult, 0, len(examples))
	total, err := sweep(net, examples, func(ex Example, out []float64, e float64) {
		results = append(results, ExampleResult{
			Input:  ex.Input,
			Target: ex.Target,
			Output: append([]float64(nil), out...),
			Error:  e,
		})
	})
	if err != nil {
		return 0, nil, err
	}
	return total, results, nil
}

// sweep computes the average error over all examples, calling visit (when
// non-nil) with each output view and per-example error.
func sweep(net *mlp.Network, examples []Example, visit func(Example, []float64, float64)) (float64, error) {
	diff := make([]float64, net.Topology().OutputWidth())
	sum := 0.0
	for i, ex := range examples {
		out, err := net.Forward(ex.Input)
		if err != nil {
			return 0, fmt.Errorf("example %d: %w", i, err)
		}
		floats.SubTo(diff, ex.Target, out)
		e := 0.5 * floats.Dot(diff, diff)
		sum += e
		if visit != nil {
			visit(ex, out, e)
		}
	}
	return sum / float64(len(examples)*len(diff)), nil
}
