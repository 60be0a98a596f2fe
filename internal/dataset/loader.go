package dataset

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/born-ml/perceptron/internal/mlp"
	"github.com/born-ml/perceptron/internal/train"
)

// CSVExt is the file extension that selects CSVLoader.
const CSVExt = ".csv"

// Loader reads an ordered example set sized for topo.
type Loader interface {
	Load(r io.Reader, topo mlp.Topology) ([]train.Example, error)
}

// MaxLineSize bounds one line of a text training set or inference input.
const MaxLineSize = math.MaxInt32

// NewLineScanner returns a line scanner for r that accepts lines up to
// MaxLineSize bytes.
func NewLineScanner(r io.Reader) *bufio.Scanner {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), MaxLineSize)
	return sc
}

// TextLoader reads the line-pair text format.
type TextLoader struct{}

// Load reads alternating input and target lines.
func (TextLoader) Load(r io.Reader, topo mlp.Topology) ([]train.Example, error) {
	sc := NewLineScanner(r)

	var (
		examples  []train.Example
		input     []float64
		inputLine int
		line      int
	)
	for sc.Scan() {
		line++
		text := strings.TrimSpace(sc.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		values, err := parseFields(strings.Fields(text), line)
		if err != nil {
			return nil, err
		}

		if input == nil {
			if len(values) != topo.InputWidth() {
				return nil, inputWidthError(line, topo.InputWidth(), len(values))
			}
			input, inputLine = values, line
			continue
		}
		if len(values) != topo.OutputWidth() {
			return nil, targetWidthError(line, topo.OutputWidth(), len(values))
		}
		examples = append(examples, train.Example{Input: input, Target: values})
		input = nil
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("failed to read training set: %w", err)
	}
	if input != nil {
		return nil, &ParseError{
			Line: inputLine,
			Err:  fmt.Errorf("%w: input without target line", mlp.ErrShapeMismatch),
		}
	}
	return examples, nil
}

// CSVLoader reads one example per CSV record.
type CSVLoader struct {
	HasHeader bool // Skip the first record
	Comma     rune // Field delimiter (default ',')
}

// Load reads every record as input columns followed by target columns.
func (l CSVLoader) Load(r io.Reader, topo mlp.Topology) ([]train.Example, error) {
	cr := csv.NewReader(r)
	cr.Comment = '#'
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	cr.ReuseRecord = true
	if l.Comma != 0 {
		cr.Comma = l.Comma
	}

	in, out := topo.InputWidth(), topo.OutputWidth()
	var examples []train.Example
	for first := true; ; first = false {
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			var perr *csv.ParseError
			if errors.As(err, &perr) {
				return nil, &ParseError{Line: perr.Line, Err: perr.Err}
			}
			return nil, fmt.Errorf("failed to read training set: %w", err)
		}
		line, _ := cr.FieldPos(0)
		if first && l.HasHeader {
			continue
		}

		if len(record) < in {
			return nil, inputWidthError(line, in, len(record))
		}
		if len(record) != in+out {
			return nil, targetWidthError(line, out, len(record)-in)
		}
		values, err := parseFields(record, line)
		if err != nil {
			return nil, err
		}
		examples = append(examples, train.Example{Input: values[:in:in], Target: values[in:]})
	}
	return examples, nil
}

func parseFields(fields []string, line int) ([]float64, error) {
	values := make([]float64, len(fields))
	for i, f := range fields {
		v, err := strconv.ParseFloat(strings.TrimSpace(f), 64)
		if err != nil {
			return nil, &ParseError{Line: line, Err: fmt.Errorf("value %d: %w", i, err)}
		}
		values[i] = v
	}
	return values, nil
}

// LoaderFor returns CSVLoader for ".csv" paths and TextLoader otherwise.
func LoaderFor(path string) Loader {
	if strings.EqualFold(filepath.Ext(path), CSVExt) {
		return CSVLoader{}
	}
	return TextLoader{}
}

// LoadFile reads the training set at path using the loader chosen by its
// extension.
func LoadFile(path string, topo mlp.Topology) ([]train.Example, error) {
	//nolint:gosec // G304: File path comes from user configuration
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open training set: %w", err)
	}
	defer file.Close()

	examples, err := LoaderFor(path).Load(file, topo)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return examples, nil
}
