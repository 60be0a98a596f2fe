// Package driver wires configuration, storage and training into a single
// run: build the network, initialize its weights, load the training set,
// train, and write the final weights.
package driver

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"time"

	"github.com/google/uuid"

	"github.com/born-ml/perceptron/internal/config"
	"github.com/born-ml/perceptron/internal/dataset"
	"github.com/born-ml/perceptron/internal/mlp"
	"github.com/born-ml/perceptron/internal/serialization"
	"github.com/born-ml/perceptron/internal/train"
)

// DefaultOutputPrefix is where weights go when the configuration names no
// output file. The run timestamp and ".out" are appended.
const DefaultOutputPrefix = "./data/weights/weights"

// TimestampLayout formats the timestamp of default output paths.
const TimestampLayout = "2006-01-02-15.04.05"

// WeightStore reads and writes weight files.
type WeightStore interface {
	Load(path string, topo mlp.Topology) (*mlp.WeightTensor, error)
	Save(path string, w *mlp.WeightTensor, opts serialization.WriteOptions) error
}

// ExampleSource reads training sets.
type ExampleSource interface {
	Load(path string, topo mlp.Topology) ([]train.Example, error)
}

// FileWeights stores weights on the local filesystem, choosing the codec
// from the file extension.
type FileWeights struct{}

// Load reads weights for topo from path.
func (FileWeights) Load(path string, topo mlp.Topology) (*mlp.WeightTensor, error) {
	return serialization.LoadFile(path, topo)
}

// Save writes w to path.
func (FileWeights) Save(path string, w *mlp.WeightTensor, opts serialization.WriteOptions) error {
	return serialization.SaveFile(path, w, opts)
}

// FileExamples reads training sets from the local filesystem.
type FileExamples struct{}

// Load reads the training set at path.
func (FileExamples) Load(path string, topo mlp.Topology) ([]train.Example, error) {
	return dataset.LoadFile(path, topo)
}

// Deps are the collaborators of Run. Zero fields get defaults: files on
// disk, a discarding logger, time.Now, a source seeded from the config and
// random UUIDs.
type Deps struct {
	Weights  WeightStore
	Examples ExampleSource
	Logger   *slog.Logger
	Now      func() time.Time
	Rand     *rand.Rand
	RunID    func() string
}

func (d Deps) withDefaults(cfg config.Config) Deps {
	if d.Weights == nil {
		d.Weights = FileWeights{}
	}
	if d.Examples == nil {
		d.Examples = FileExamples{}
	}
	if d.Logger == nil {
		d.Logger = slog.New(slog.DiscardHandler)
	}
	if d.Now == nil {
		d.Now = time.Now
	}
	if d.Rand == nil && cfg.Seed != 0 {
		//nolint:gosec // G404: weight initialization does not need crypto/rand
		d.Rand = rand.New(rand.NewSource(cfg.Seed))
	}
	if d.RunID == nil {
		d.RunID = uuid.NewString
	}
	return d
}

// Report summarizes a completed run.
type Report struct {
	RunID    string
	Topology mlp.Topology
	State    train.State
	Epochs   int
	Error    float64
	Examples []train.ExampleResult
	Output   string // Path of the written weights, empty if none were written
}

// Run executes the training run described by cfg.
//
// When ctx is canceled mid-run the weights are not written; the partial
// Report is returned together with the context error.
func Run(ctx context.Context, cfg config.Config, deps Deps) (*Report, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	deps = deps.withDefaults(cfg)
	start := deps.Now()

	topo, err := cfg.Topology()
	if err != nil {
		return nil, err
	}
	runID := deps.RunID()
	logger := deps.Logger.With("run_id", runID)
	logger.Info("starting run", "topology", topo.String(), "lambda", cfg.Lambda)

	net := mlp.NewNetwork(topo)
	if err := initWeights(net, cfg, deps, logger); err != nil {
		return nil, err
	}

	examples, err := deps.Examples.Load(cfg.TrainingSet, topo)
	if err != nil {
		return nil, fmt.Errorf("failed to load training set: %w", err)
	}
	logger.Info("loaded training set", "path", cfg.TrainingSet, "examples", len(examples))
	logger.Info("stopping conditions", "max_iterations", cfg.MaxIterations, "error_threshold", cfg.ErrorThreshold)

	trainer, err := train.New(net, cfg.TrainConfig(), train.WithLogger(logger))
	if err != nil {
		return nil, err
	}
	res, err := trainer.Train(ctx, examples)
	if res == nil {
		return nil, err
	}
	report := &Report{
		RunID:    runID,
		Topology: topo,
		State:    res.State,
		Epochs:   res.Epochs,
		Error:    res.Error,
		Examples: res.Examples,
	}
	if err != nil {
		return report, err
	}

	output := cfg.Output
	if output == "" {
		output = DefaultOutputPath(start)
	}
	opts := serialization.WriteOptions{
		Metadata: map[string]string{"training_set": cfg.TrainingSet},
		Training: &serialization.TrainingMeta{
			RunID:          runID,
			State:          res.State.String(),
			Epochs:         res.Epochs,
			Error:          res.Error,
			Lambda:         cfg.Lambda,
			MaxIterations:  cfg.MaxIterations,
			ErrorThreshold: cfg.ErrorThreshold,
		},
		Now: deps.Now,
	}
	if err := deps.Weights.Save(output, net.Weights(), opts); err != nil {
		return report, fmt.Errorf("failed to write weights: %w", err)
	}
	report.Output = output
	logger.Info("weights written", "path", output)
	return report, nil
}

func initWeights(net *mlp.Network, cfg config.Config, deps Deps, logger *slog.Logger) error {
	if r := cfg.Weights.Random; r != nil {
		if err := net.RandomizeWeights(r.Lower, r.Upper, deps.Rand); err != nil {
			return fmt.Errorf("failed to randomize weights: %w", err)
		}
		logger.Info("randomized weights", "lower", r.Lower, "upper", r.Upper, "seed", cfg.Seed)
		return nil
	}

	w, err := deps.Weights.Load(cfg.Weights.File, net.Topology())
	if err != nil {
		return fmt.Errorf("failed to load weights: %w", err)
	}
	if err := net.SetWeights(w); err != nil {
		return fmt.Errorf("failed to load weights: %w", err)
	}
	logger.Info("loaded weights", "path", cfg.Weights.File)
	return nil
}

// DefaultOutputPath returns the weight file path used when none is
// configured.
func DefaultOutputPath(t time.Time) string {
	return DefaultOutputPrefix + t.Format(TimestampLayout) + ".out"
}

// Canceled reports whether err came from a canceled or timed out run.
func Canceled(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
