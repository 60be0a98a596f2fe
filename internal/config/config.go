// Package config loads training run configuration.
//
// Two file formats are accepted. YAML files (".yaml", ".yml"):
//
//	layers: [2, 2, 1]
//	lambda: 0.5
//	weights:
//	  random: {lower: -1.5, upper: 1.5}
//	training_set: data/and.txt
//	max_iterations: 5000
//	error_threshold: 0.01
//	output: data/weights/and.born
//	seed: 42
//
// Any other extension is read as the line format: layer widths, lambda,
// "lower, upper" or a weights file path, training set path, max iterations,
// error threshold and an optional output path, one per line.
package config

import (
	"errors"
	"fmt"
	"math"

	"github.com/born-ml/perceptron/internal/mlp"
	"github.com/born-ml/perceptron/internal/train"
)

// Validation sentinels wrapped by FieldError.
var (
	ErrMissingValue = errors.New("required value missing")
	ErrInvalidValue = errors.New("invalid value")
)

// FieldError reports an invalid configuration field.
type FieldError struct {
	Field string // Configuration key (e.g. "lambda", "weights.random")
	Err   error  // Cause
}

// Error implements the error interface.
func (e *FieldError) Error() string {
	return fmt.Sprintf("config: %s: %v", e.Field, e.Err)
}

// Unwrap returns the cause.
func (e *FieldError) Unwrap() error {
	return e.Err
}

// Config describes one training run.
type Config struct {
	Layers         []int   `yaml:"layers"`
	Lambda         float64 `yaml:"lambda"`
	Weights        Weights `yaml:"weights"`
	TrainingSet    string  `yaml:"training_set"`
	MaxIterations  int     `yaml:"max_iterations"`
	ErrorThreshold float64 `yaml:"error_threshold"`
	Output         string  `yaml:"output,omitempty"`
	Seed           int64   `yaml:"seed,omitempty"` // 0 means time-seeded
}

// Weights selects how initial weights are produced. Exactly one of Random
// and File is set.
type Weights struct {
	Random *Range `yaml:"random,omitempty"`
	File   string `yaml:"file,omitempty"`
}

// Range is a half-open interval [Lower, Upper) for random weights.
type Range struct {
	Lower float64 `yaml:"lower"`
	Upper float64 `yaml:"upper"`
}

// Validate checks every field and returns the first *FieldError found.
func (c *Config) Validate() error {
	if _, err := mlp.TopologyFromDims(c.Layers); err != nil {
		return &FieldError{Field: "layers", Err: err}
	}
	if !(c.Lambda > 0) || math.IsInf(c.Lambda, 0) {
		return &FieldError{Field: "lambda", Err: fmt.Errorf("%w: must be positive and finite, got %v", ErrInvalidValue, c.Lambda)}
	}

	switch {
	case c.Weights.Random != nil && c.Weights.File != "":
		return &FieldError{Field: "weights", Err: fmt.Errorf("%w: set either random or file, not both", ErrInvalidValue)}
	case c.Weights.Random != nil:
		r := c.Weights.Random
		if math.IsNaN(r.Lower) || math.IsNaN(r.Upper) || math.IsInf(r.Lower, 0) || math.IsInf(r.Upper, 0) || r.Lower >= r.Upper {
			return &FieldError{Field: "weights.random", Err: fmt.Errorf("%w: [%v, %v)", mlp.ErrInvalidRange, r.Lower, r.Upper)}
		}
	case c.Weights.File == "":
		return &FieldError{Field: "weights", Err: ErrMissingValue}
	}

	if c.TrainingSet == "" {
		return &FieldError{Field: "training_set", Err: ErrMissingValue}
	}
	if c.MaxIterations < 0 {
		return &FieldError{Field: "max_iterations", Err: fmt.Errorf("%w: must be >= 0, got %d", ErrInvalidValue, c.MaxIterations)}
	}
	if !(c.ErrorThreshold >= 0) || math.IsInf(c.ErrorThreshold, 0) {
		return &FieldError{Field: "error_threshold", Err: fmt.Errorf("%w: must be >= 0 and finite, got %v", ErrInvalidValue, c.ErrorThreshold)}
	}
	return nil
}

// Topology returns the network shape described by Layers.
func (c *Config) Topology() (mlp.Topology, error) {
	return mlp.TopologyFromDims(c.Layers)
}

// TrainConfig returns the trainer hyperparameters.
func (c *Config) TrainConfig() train.Config {
	return train.Config{
		Lambda:         c.Lambda,
		MaxIterations:  c.MaxIterations,
		ErrorThreshold: c.ErrorThreshold,
	}
}
