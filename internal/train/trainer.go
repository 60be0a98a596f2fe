package train

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"

	"github.com/born-ml/perceptron/internal/mlp"
)

// ErrInvalidConfig is returned for malformed hyperparameters.
var ErrInvalidConfig = errors.New("invalid training config")

// State is the trainer's position in its state machine.
type State int

// Trainer states.
const (
	StateRunning   State = iota // Training continues
	StateConverged              // Average error fell below the threshold
	StateExhausted              // Epoch cap reached
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateRunning:
		return "RUNNING"
	case StateConverged:
		return "CONVERGED"
	case StateExhausted:
		return "EXHAUSTED"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Config holds the hyperparameters of one run. It is fixed for the run.
type Config struct {
	Lambda         float64 // Learning rate (> 0)
	MaxIterations  int     // Epoch cap (>= 0)
	ErrorThreshold float64 // Stop once the average error drops below this (>= 0)
}

// Validate checks the hyperparameters.
func (c Config) Validate() error {
	if !(c.Lambda > 0) || math.IsInf(c.Lambda, 0) {
		return fmt.Errorf("%w: lambda must be a positive finite number, got %v", ErrInvalidConfig, c.Lambda)
	}
	if c.MaxIterations < 0 {
		return fmt.Errorf("%w: max iterations must not be negative, got %d", ErrInvalidConfig, c.MaxIterations)
	}
	if !(c.ErrorThreshold >= 0) {
		return fmt.Errorf("%w: error threshold must not be negative, got %v", ErrInvalidConfig, c.ErrorThreshold)
	}
	return nil
}

// EpochStats is reported after every completed epoch.
type EpochStats struct {
	Epoch int
	Error float64
	State State
}

// Result is the outcome of a training run.
type Result struct {
	State    State
	Epochs   int     // Completed epochs
	Error    float64 // Average error after the last completed epoch
	Examples []ExampleResult
}

// Option configures a Trainer.
type Option func(*trainerOptions)

type trainerOptions struct {
	logger   *slog.Logger
	onEpoch  func(EpochStats)
	logEvery int
}

// WithLogger sets the logger for progress messages. Epoch progress is
// logged at Debug, the final state at Info.
func WithLogger(l *slog.Logger) Option {
	return func(o *trainerOptions) {
		o.logger = l
	}
}

// WithEpochHook registers a callback invoked after every epoch.
func WithEpochHook(fn func(EpochStats)) Option {
	return func(o *trainerOptions) {
		o.onEpoch = fn
	}
}

// WithLogEvery logs epoch progress every n epochs (default 100).
func WithLogEvery(n int) Option {
	return func(o *trainerOptions) {
		o.logEvery = n
	}
}

// Trainer drives a Network through gradient descent.
//
// The Trainer mutates the network's weights in place and shares its scratch
// buffers, so the network must not be used concurrently while training.
type Trainer struct {
	net      *mlp.Network
	cfg      Config
	logger   *slog.Logger
	onEpoch  func(EpochStats)
	logEvery int
}

// New creates a Trainer for net.
//
// Returns ErrInvalidConfig if the hyperparameters are malformed.
func New(net *mlp.Network, cfg Config, opts ...Option) (*Trainer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	options := &trainerOptions{
		logger:   slog.New(slog.DiscardHandler),
		logEvery: 100,
	}
	for _, opt := range opts {
		opt(options)
	}
	if options.logEvery < 1 {
		options.logEvery = 1
	}

	return &Trainer{
		net:      net,
		cfg:      cfg,
		logger:   options.logger,
		onEpoch:  options.onEpoch,
		logEvery: options.logEvery,
	}, nil
}

// Config returns the hyperparameters.
func (t *Trainer) Config() Config {
	return t.cfg
}

// Train runs epochs until the error threshold is met or the epoch cap is
// reached.
//
// Every example is validated before the first update; a shape violation
// aborts the run with the weights untouched. ctx is checked between epochs
// only: on cancellation the returned Result is still RUNNING and reports the
// error of the last completed epoch, alongside ctx's error.
func (t *Trainer) Train(ctx context.Context, examples []Example) (*Result, error) {
	if err := ValidateExamples(t.net.Topology(), examples); err != nil {
		return nil, fmt.Errorf("train: %w", err)
	}

	res := &Result{State: StateRunning}
	if t.cfg.MaxIterations == 0 {
		res.State = StateExhausted
		return t.finish(res, examples)
	}

	for res.State == StateRunning {
		if err := ctx.Err(); err != nil {
			t.logger.Info("training canceled", "epochs", res.Epochs, "error", res.Error)
			return res, fmt.Errorf("train: canceled after %d epochs: %w", res.Epochs, err)
		}

		epoch := res.Epochs + 1
		for i, ex := range examples {
			if err := t.net.Backpropagate(ex.Input, ex.Target, t.cfg.Lambda); err != nil {
				return nil, fmt.Errorf("train: epoch %d, example %d: %w", epoch, i, err)
			}
		}

		e, err := sweep(t.net, examples, nil)
		if err != nil {
			return nil, fmt.Errorf("train: epoch %d: %w", epoch, err)
		}
		res.Epochs, res.Error = epoch, e

		switch {
		case e < t.cfg.ErrorThreshold:
			res.State = StateConverged
		case epoch == t.cfg.MaxIterations:
			res.State = StateExhausted
		}

		if epoch%t.logEvery == 0 {
			t.logger.Debug("epoch finished", "epoch", epoch, "error", e)
		}
		if t.onEpoch != nil {
			t.onEpoch(EpochStats{Epoch: epoch, Error: e, State: res.State})
		}
	}

	return t.finish(res, examples)
}

// finish fills in per-example results from the final weights.
func (t *Trainer) finish(res *Result, examples []Example) (*Result, error) {
	e, results, err := Evaluate(t.net, examples)
	if err != nil {
		return nil, fmt.Errorf("train: %w", err)
	}
	res.Error = e
	res.Examples = results

	t.logger.Info("training finished",
		"state", res.State.String(),
		"epochs", res.Epochs,
		"error", res.Error,
		"threshold", t.cfg.ErrorThreshold,
	)
	return res, nil
}
