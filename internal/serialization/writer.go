package serialization

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"time"

	"github.com/born-ml/perceptron/internal/mlp"
)

// Producer is recorded in the header of every .born file.
const Producer = "perceptron 0.3.0"

// WriteOptions configures WriteBorn.
type WriteOptions struct {
	Metadata map[string]string // Free-form key/value pairs
	Training *TrainingMeta     // Summary of the run that produced the weights
	Now      func() time.Time  // Clock for CreatedAt (default time.Now)
}

// WriteBorn writes weights to w in .born v2 format.
func WriteBorn(w io.Writer, weights *mlp.WeightTensor, opts WriteOptions) error {
	header, data := layout(weights, opts)

	headerJSON, err := json.Marshal(header)
	if err != nil {
		return fmt.Errorf("failed to marshal header: %w", err)
	}
	if len(headerJSON) > MaxHeaderSize {
		return fmt.Errorf("%w: %d bytes", ErrHeaderTooLarge, len(headerJSON))
	}

	p := preamble{
		headerSize: uint64(len(headerJSON)),
		dataSize:   uint64(len(data)),
		checksum:   SumData(data),
	}
	if len(opts.Metadata) > 0 {
		p.flags |= FlagHasMetadata
	}
	if opts.Training != nil {
		p.flags |= FlagHasTraining
	}

	parts := [][]byte{
		p.marshal(),
		headerJSON,
		make([]byte, padding(int64(len(headerJSON)))),
		data,
	}
	for _, part := range parts {
		if _, err := w.Write(part); err != nil {
			return fmt.Errorf("failed to write .born stream: %w", err)
		}
	}
	return nil
}

// layout builds the header for weights and encodes the data section with
// the layers stored back to back in order.
func layout(weights *mlp.WeightTensor, opts WriteOptions) (Header, []byte) {
	now := time.Now
	if opts.Now != nil {
		now = opts.Now
	}
	metadata := opts.Metadata
	if metadata == nil {
		metadata = map[string]string{}
	}

	topo := weights.Topology()
	header := Header{
		FormatVersion: FormatVersionV2,
		Producer:      Producer,
		CreatedAt:     now().UTC(),
		Topology:      topo.Dims(),
		Tensors:       make([]TensorMeta, weights.Len()),
		Metadata:      metadata,
		Training:      opts.Training,
	}

	data := make([]byte, 0, topo.WeightCount()*Float64Size)
	for n := range header.Tensors {
		rows, cols := weights.Layer(n).Dims()
		header.Tensors[n] = TensorMeta{
			Name:   tensorName(n),
			DType:  DTypeFloat64,
			Shape:  []int{rows, cols},
			Offset: int64(len(data)),
			Size:   int64(rows * cols * Float64Size),
		}
		for _, v := range weights.Layer(n).RawMatrix().Data {
			data = binary.LittleEndian.AppendUint64(data, math.Float64bits(v))
		}
	}
	return header, data
}
