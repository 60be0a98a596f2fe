// Package train runs per-example gradient descent over a labeled example set.
//
// A Trainer owns a small state machine:
//
//	RUNNING --error < threshold--> CONVERGED
//	RUNNING --epoch == max-------> EXHAUSTED
//
// Each epoch applies one backpropagation step per example, in slice order,
// and then measures the average error on the updated weights:
//
//	error = 1/(examples*outputs) * sum over examples and outputs of 0.5*(target-output)^2
//
// Epochs are counted from 1 and the cap is inclusive. A cap of zero performs
// no updates and reports EXHAUSTED immediately.
//
// Example:
//
//	trainer, err := train.New(net, train.Config{
//	    Lambda:         0.5,
//	    MaxIterations:  5000,
//	    ErrorThreshold: 0.01,
//	}, train.WithLogger(logger))
//	result, err := trainer.Train(ctx, examples)
package train
