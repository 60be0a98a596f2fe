package driver

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/born-ml/perceptron/internal/dataset"
	"github.com/born-ml/perceptron/internal/mlp"
	"github.com/born-ml/perceptron/internal/serialization"
)

// LoadNetwork builds a network from a weight file. For ".born" files a
// zero topo is taken from the file header and opts control how the file
// is checked.
func LoadNetwork(path string, topo mlp.Topology, opts serialization.ReaderOptions) (*mlp.Network, error) {
	w, err := serialization.LoadFileWith(path, topo, opts)
	if err != nil {
		return nil, err
	}
	net := mlp.NewNetwork(w.Topology())
	if err := net.SetWeights(w); err != nil {
		return nil, err
	}
	return net, nil
}

// Infer reads one input vector per line from r and writes the matching
// output vector to w. Blank lines and '#' comments are skipped. Outputs use
// the shortest exact float formatting.
func Infer(net *mlp.Network, r io.Reader, w io.Writer) error {
	sc := dataset.NewLineScanner(r)
	bw := bufio.NewWriter(w)

	var buf []byte
	for line := 1; sc.Scan(); line++ {
		text := strings.TrimSpace(sc.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}

		fields := strings.Fields(text)
		input := make([]float64, len(fields))
		for i, f := range fields {
			v, err := strconv.ParseFloat(f, 64)
			if err != nil {
				return &dataset.ParseError{Line: line, Err: fmt.Errorf("value %d: %w", i, err)}
			}
			input[i] = v
		}

		out, err := net.Forward(input)
		if err != nil {
			return &dataset.ParseError{Line: line, Err: err}
		}

		buf = buf[:0]
		for i, v := range out {
			if i > 0 {
				buf = append(buf, ' ')
			}
			buf = strconv.AppendFloat(buf, v, 'g', -1, 64)
		}
		buf = append(buf, '\n')
		if _, err := bw.Write(buf); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
	}
	if err := sc.Err(); err != nil {
		return fmt.Errorf("failed to read input: %w", err)
	}
	return bw.Flush()
}
