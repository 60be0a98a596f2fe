package config

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Format identifies a configuration file syntax.
type Format int

const (
	// FormatLines is the one-value-per-line format.
	FormatLines Format = iota
	// FormatYAML is YAML with the keys of Config.
	FormatYAML
)

// String returns the format name.
func (f Format) String() string {
	switch f {
	case FormatLines:
		return "lines"
	case FormatYAML:
		return "yaml"
	default:
		return fmt.Sprintf("Format(%d)", int(f))
	}
}

// FormatFor picks the format from the extension of path.
func FormatFor(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatLines
	}
}

// Load reads and validates the configuration file at path.
func Load(path string) (Config, error) {
	//nolint:gosec // G304: File path comes from the command line
	file, err := os.Open(path)
	if err != nil {
		return Config{}, fmt.Errorf("failed to open config: %w", err)
	}
	defer file.Close()

	cfg, err := Parse(file, FormatFor(path))
	if err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Parse reads a configuration in the given format and validates it.
func Parse(r io.Reader, format Format) (Config, error) {
	var (
		cfg Config
		err error
	)
	switch format {
	case FormatYAML:
		cfg, err = parseYAML(r)
	case FormatLines:
		cfg, err = parseLines(r)
	default:
		return Config{}, fmt.Errorf("unsupported config format: %v", format)
	}
	if err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func parseYAML(r io.Reader) (Config, error) {
	var cfg Config
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil {
		if errors.Is(err, io.EOF) {
			return Config{}, errors.New("empty config")
		}
		return Config{}, fmt.Errorf("failed to parse YAML: %w", err)
	}
	return cfg, nil
}

// lineFields names the lines of the line format in order.
var lineFields = [...]string{
	"layers",
	"lambda",
	"weights",
	"training_set",
	"max_iterations",
	"error_threshold",
	"output",
}

func parseLines(r io.Reader) (Config, error) {
	sc := bufio.NewScanner(r)
	var lines []string
	for sc.Scan() {
		if line := strings.TrimSpace(sc.Text()); line != "" {
			lines = append(lines, line)
		}
	}
	if err := sc.Err(); err != nil {
		return Config{}, fmt.Errorf("failed to read config: %w", err)
	}
	if len(lines) < len(lineFields)-1 {
		return Config{}, &FieldError{
			Field: lineFields[len(lines)],
			Err:   fmt.Errorf("%w: expected at least %d lines, got %d", ErrMissingValue, len(lineFields)-1, len(lines)),
		}
	}
	if len(lines) > len(lineFields) {
		return Config{}, fmt.Errorf("unexpected config line %d: %q", len(lineFields)+1, lines[len(lineFields)])
	}

	var cfg Config
	for _, f := range strings.Fields(lines[0]) {
		n, err := strconv.Atoi(f)
		if err != nil {
			return Config{}, &FieldError{Field: "layers", Err: fmt.Errorf("%w: %w", ErrInvalidValue, err)}
		}
		cfg.Layers = append(cfg.Layers, n)
	}

	var err error
	if cfg.Lambda, err = strconv.ParseFloat(lines[1], 64); err != nil {
		return Config{}, &FieldError{Field: "lambda", Err: fmt.Errorf("%w: %w", ErrInvalidValue, err)}
	}
	if rng, ok := parseRange(lines[2]); ok {
		cfg.Weights.Random = &rng
	} else {
		cfg.Weights.File = lines[2]
	}
	cfg.TrainingSet = lines[3]
	if cfg.MaxIterations, err = strconv.Atoi(lines[4]); err != nil {
		return Config{}, &FieldError{Field: "max_iterations", Err: fmt.Errorf("%w: %w", ErrInvalidValue, err)}
	}
	if cfg.ErrorThreshold, err = strconv.ParseFloat(lines[5], 64); err != nil {
		return Config{}, &FieldError{Field: "error_threshold", Err: fmt.Errorf("%w: %w", ErrInvalidValue, err)}
	}
	if len(lines) == len(lineFields) {
		cfg.Output = lines[6]
	}
	return cfg, nil
}

// parseRange reads "lower, upper". Anything else is a weights file path.
func parseRange(s string) (Range, bool) {
	lower, upper, ok := strings.Cut(s, ",")
	if !ok {
		return Range{}, false
	}
	lo, err := strconv.ParseFloat(strings.TrimSpace(lower), 64)
	if err != nil {
		return Range{}, false
	}
	hi, err := strconv.ParseFloat(strings.TrimSpace(upper), 64)
	if err != nil {
		return Range{}, false
	}
	return Range{Lower: lo, Upper: hi}, true
}
