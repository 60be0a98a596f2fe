// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package mlp

import (
	"log/slog"
	"math/rand"

	"github.com/born-ml/perceptron/internal/dataset"
	"github.com/born-ml/perceptron/internal/mlp"
	"github.com/born-ml/perceptron/internal/serialization"
	"github.com/born-ml/perceptron/internal/train"
)

// Errors reported by the engine.
var (
	ErrInvalidTopology   = mlp.ErrInvalidTopology
	ErrInvalidRange      = mlp.ErrInvalidRange
	ErrShapeMismatch     = mlp.ErrShapeMismatch
	ErrInvalidInputShape = mlp.ErrInvalidInputShape
	ErrNoExamples        = train.ErrNoExamples
	ErrInvalidConfig     = train.ErrInvalidConfig
)

// ShapeError describes a size disagreement with the topology.
type ShapeError = mlp.ShapeError

// Topology is the immutable list of layer widths.
type Topology = mlp.Topology

// NewTopology creates a topology from input, hidden and output widths.
//
// Example:
//
//	topo, err := mlp.NewTopology(2, []int{3, 2}, 2) // 2-3-2-2
func NewTopology(input int, hidden []int, output int) (Topology, error) {
	return mlp.NewTopology(input, hidden, output)
}

// ParseTopology parses widths such as "2-2-1".
func ParseTopology(s string) (Topology, error) {
	return mlp.ParseTopology(s)
}

// WeightTensor holds one weight matrix per connectivity layer.
type WeightTensor = mlp.WeightTensor

// NewWeightTensor allocates zero weights for topo.
func NewWeightTensor(topo Topology) *WeightTensor {
	return mlp.NewWeightTensor(topo)
}

// Network is a feed-forward network with its activation storage.
type Network = mlp.Network

// NewNetwork allocates a network with zero weights.
func NewNetwork(topo Topology) *Network {
	return mlp.NewNetwork(topo)
}

// Sigmoid is the activation function 1/(1+exp(-x)).
func Sigmoid(x float64) float64 {
	return mlp.Sigmoid(x)
}

// Training

// Example is one (input, target) pair.
type Example = train.Example

// ExampleResult reports the network output for one example.
type ExampleResult = train.ExampleResult

// TrainConfig holds the training hyperparameters.
type TrainConfig = train.Config

// TrainResult is the outcome of Trainer.Train.
type TrainResult = train.Result

// State is the trainer state.
type State = train.State

// Trainer states.
const (
	StateRunning   = train.StateRunning
	StateConverged = train.StateConverged
	StateExhausted = train.StateExhausted
)

// EpochStats is passed to epoch hooks.
type EpochStats = train.EpochStats

// Trainer runs gradient descent epochs over an example set.
type Trainer = train.Trainer

// TrainerOption configures a Trainer.
type TrainerOption = train.Option

// NewTrainer creates a trainer for net.
//
// Example:
//
//	trainer, err := mlp.NewTrainer(net, mlp.TrainConfig{
//	    Lambda:         0.5,
//	    MaxIterations:  5000,
//	    ErrorThreshold: 0.01,
//	}, mlp.WithLogger(slog.Default()))
func NewTrainer(net *Network, cfg TrainConfig, opts ...TrainerOption) (*Trainer, error) {
	return train.New(net, cfg, opts...)
}

// WithLogger sets the trainer logger.
func WithLogger(l *slog.Logger) TrainerOption {
	return train.WithLogger(l)
}

// WithEpochHook registers a per-epoch callback.
func WithEpochHook(fn func(EpochStats)) TrainerOption {
	return train.WithEpochHook(fn)
}

// WithLogEvery sets how often epoch progress is logged.
func WithLogEvery(n int) TrainerOption {
	return train.WithLogEvery(n)
}

// Evaluate reports the average error and per-example outputs of net
// without updating weights.
func Evaluate(net *Network, examples []Example) (float64, []ExampleResult, error) {
	return train.Evaluate(net, examples)
}

// Files

// SaveWeights writes w to path. Paths ending in ".born" use the binary
// format, anything else the text format.
func SaveWeights(path string, w *WeightTensor) error {
	return serialization.SaveFile(path, w, serialization.WriteOptions{})
}

// LoadWeights reads weights for topo from path. A zero topo is accepted for
// ".born" files, which record their own topology.
func LoadWeights(path string, topo Topology) (*WeightTensor, error) {
	return serialization.LoadFile(path, topo)
}

// LoadExamples reads a training set. ".csv" files hold one example per
// record; other files alternate input and target lines.
func LoadExamples(path string, topo Topology) ([]Example, error) {
	return dataset.LoadFile(path, topo)
}

// NewRand returns a seeded source for RandomizeWeights.
func NewRand(seed int64) *rand.Rand {
	//nolint:gosec // G404: weight initialization does not need crypto/rand
	return rand.New(rand.NewSource(seed))
}
