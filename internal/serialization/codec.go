package serialization

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/born-ml/perceptron/internal/mlp"
)

// BornExt is the file extension that selects the binary codec.
const BornExt = ".born"

// WeightCodec encodes and decodes weight tensors.
type WeightCodec interface {
	// Encode writes every weight of w.
	Encode(out io.Writer, w *mlp.WeightTensor) error

	// Decode reads a tensor for topo. Implementations fail with
	// mlp.ErrShapeMismatch when the stream holds a different number of
	// weights than topo requires.
	Decode(in io.Reader, topo mlp.Topology) (*mlp.WeightTensor, error)
}

// TextCodec is the plain-text weight format: one connectivity layer per
// line, values separated by a single space.
type TextCodec struct{}

// Encode writes w as text.
func (TextCodec) Encode(out io.Writer, w *mlp.WeightTensor) error {
	bw := bufio.NewWriter(out)
	buf := make([]byte, 0, 32)
	for n := 0; n < w.Len(); n++ {
		for i, v := range w.Layer(n).RawMatrix().Data {
			if i > 0 {
				buf = append(buf, ' ')
			}
			buf = strconv.AppendFloat(buf, v, 'g', -1, 64)
			if _, err := bw.Write(buf); err != nil {
				return fmt.Errorf("failed to write weight: %w", err)
			}
			buf = buf[:0]
		}
		if err := bw.WriteByte('\n'); err != nil {
			return fmt.Errorf("failed to write weight: %w", err)
		}
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("failed to flush weights: %w", err)
	}
	return nil
}

// Decode reads whitespace-separated values in (n, k, j) order.
func (TextCodec) Decode(in io.Reader, topo mlp.Topology) (*mlp.WeightTensor, error) {
	sc := bufio.NewScanner(in)
	sc.Split(bufio.ScanWords)

	flat := make([]float64, 0, topo.WeightCount())
	for sc.Scan() {
		v, err := strconv.ParseFloat(sc.Text(), 64)
		if err != nil {
			return nil, fmt.Errorf("weight %d: %w", len(flat), err)
		}
		flat = append(flat, v)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("failed to read weights: %w", err)
	}

	w := mlp.NewWeightTensor(topo)
	if err := w.Load(flat); err != nil {
		return nil, err
	}
	return w, nil
}

// BornCodec is the binary .born format.
type BornCodec struct {
	Write WriteOptions
	Read  ReaderOptions
}

// Encode writes w as a .born stream.
func (c BornCodec) Encode(out io.Writer, w *mlp.WeightTensor) error {
	return WriteBorn(out, w, c.Write)
}

// Decode reads a .born stream. A zero topo accepts whatever the header
// declares; otherwise the declared topology must match.
func (c BornCodec) Decode(in io.Reader, topo mlp.Topology) (*mlp.WeightTensor, error) {
	w, _, err := ReadBorn(in, c.Read)
	if err != nil {
		return nil, err
	}
	if !topo.IsZero() && !topo.Equal(w.Topology()) {
		return nil, fmt.Errorf("%w: file holds weights for %s, network is %s",
			mlp.ErrShapeMismatch, w.Topology(), topo)
	}
	return w, nil
}

// CodecFor returns the codec for path: BornCodec for ".born", TextCodec
// otherwise.
func CodecFor(path string, opts WriteOptions) WeightCodec {
	if strings.EqualFold(filepath.Ext(path), BornExt) {
		return BornCodec{Write: opts}
	}
	return TextCodec{}
}

// SaveFile writes w to path, creating parent directories as needed.
func SaveFile(path string, w *mlp.WeightTensor, opts WriteOptions) (err error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}
	//nolint:gosec // G304: File path comes from user input, which is expected for weight saving
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer func() {
		if cerr := file.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("failed to close file: %w", cerr)
		}
	}()

	return CodecFor(path, opts).Encode(file, w)
}

// LoadFile reads weights for topo from path. For .born files a zero topo
// takes the topology from the file header.
func LoadFile(path string, topo mlp.Topology) (*mlp.WeightTensor, error) {
	return LoadFileWith(path, topo, ReaderOptions{})
}

// LoadFileWith is LoadFile with reader options for .born files. Text files
// ignore opts.
func LoadFileWith(path string, topo mlp.Topology, opts ReaderOptions) (*mlp.WeightTensor, error) {
	//nolint:gosec // G304: File path comes from user input, which is expected for weight loading
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	codec := CodecFor(path, WriteOptions{})
	switch c := codec.(type) {
	case TextCodec:
		if topo.IsZero() {
			return nil, fmt.Errorf("%s: text weight files need a topology", path)
		}
	case BornCodec:
		c.Read = opts
		codec = c
	}
	w, err := codec.Decode(file, topo)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return w, nil
}
