package serialization

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
	"math"

	"github.com/born-ml/perceptron/internal/mlp"
)

// ReaderOptions configures ReadBorn. The zero value verifies the checksum
// and applies ValidationStrict.
type ReaderOptions struct {
	SkipChecksumValidation bool            // Accept data that does not match the stored digest
	ValidationLevel        ValidationLevel // How much of the tensor layout to check
}

// ReadBorn reads a .born v2 stream and returns the weights it holds along
// with the parsed header. The topology comes from the header.
func ReadBorn(r io.Reader, opts ReaderOptions) (*mlp.WeightTensor, Header, error) {
	var header Header

	fixed := make([]byte, FixedHeaderSizeV2)
	if _, err := io.ReadFull(r, fixed); err != nil {
		return nil, header, fmt.Errorf("failed to read .born preamble: %w", err)
	}
	p, err := parsePreamble(fixed)
	if err != nil {
		return nil, header, err
	}

	headerJSON := make([]byte, p.headerSize)
	if _, err := io.ReadFull(r, headerJSON); err != nil {
		return nil, header, fmt.Errorf("failed to read header: %w", err)
	}
	if err := json.Unmarshal(headerJSON, &header); err != nil {
		return nil, header, fmt.Errorf("failed to parse header: %w", err)
	}

	// The preamble must agree with the header before anything is allocated
	// from it.
	if want := declaredBytes(header); p.dataSize != want {
		return nil, header, invalid(KindDataSize, "", ErrOutOfBounds,
			"preamble declares %d data bytes, tensors describe %d", p.dataSize, want)
	}
	if err := ValidateHeader(&header, int64(p.dataSize), opts.ValidationLevel); err != nil {
		return nil, header, err
	}

	if _, err := io.CopyN(io.Discard, r, padding(int64(p.headerSize))); err != nil {
		return nil, header, fmt.Errorf("failed to skip header padding: %w", err)
	}
	data := make([]byte, p.dataSize)
	if _, err := io.ReadFull(r, data); err != nil {
		return nil, header, fmt.Errorf("failed to read weight data: %w", err)
	}
	if !opts.SkipChecksumValidation {
		if err := p.checksum.Verify(data); err != nil {
			return nil, header, err
		}
	}

	topo, err := mlp.TopologyFromDims(header.Topology)
	if err != nil {
		return nil, header, err
	}
	weights := mlp.NewWeightTensor(topo)
	for _, t := range header.Tensors {
		n, _ := tensorIndex(t.Name)
		region := data[t.Offset : t.Offset+t.Size]
		dst := weights.Layer(n).RawMatrix().Data
		for i := range dst {
			dst[i] = math.Float64frombits(binary.LittleEndian.Uint64(region[i*Float64Size:]))
		}
	}
	return weights, header, nil
}

// declaredBytes sums the positive tensor sizes in h.
func declaredBytes(h Header) uint64 {
	var total uint64
	for _, t := range h.Tensors {
		if t.Size > 0 {
			total += uint64(t.Size)
		}
	}
	return total
}
