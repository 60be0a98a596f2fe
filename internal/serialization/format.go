package serialization

import (
	"encoding/binary"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Layout of a .born stream.
const (
	MagicBytes        = "BORN"
	FormatVersionV2   = 2
	HeaderAlignment   = 64 // Weight data starts on this boundary
	FixedHeaderSizeV2 = 64
	ChecksumSize      = 32
	ChecksumOffsetV2  = 0x20
	Float64Size       = 8
)

// DTypeFloat64 is the only element type stored in weight files.
const DTypeFloat64 = "float64"

// Flags for the .born format.
const (
	FlagHasMetadata uint32 = 1 << 2 // bit 2: custom metadata included
	FlagHasTraining uint32 = 1 << 3 // bit 3: training summary included
)

// tensorPrefix names connectivity layer n "weights.<n>".
const tensorPrefix = "weights."

// Header represents the JSON header in a .born file.
type Header struct {
	FormatVersion int               `json:"format_version"`     // Version of the .born format
	Producer      string            `json:"producer"`           // Program that wrote the file
	CreatedAt     time.Time         `json:"created_at"`         // When the file was created
	Topology      []int             `json:"topology"`           // Layer widths, input first
	Tensors       []TensorMeta      `json:"tensors"`            // One entry per connectivity layer
	Metadata      map[string]string `json:"metadata"`           // Custom metadata
	Training      *TrainingMeta     `json:"training,omitempty"` // Summary of the run that produced the weights
}

// TrainingMeta summarizes the training run that produced a weight file.
type TrainingMeta struct {
	RunID          string  `json:"run_id"`
	State          string  `json:"state"`
	Epochs         int     `json:"epochs"`
	Error          float64 `json:"error"`
	Lambda         float64 `json:"lambda"`
	MaxIterations  int     `json:"max_iterations"`
	ErrorThreshold float64 `json:"error_threshold"`
}

// TensorMeta describes one weight matrix in the .born file.
type TensorMeta struct {
	Name   string `json:"name"`   // "weights.<n>"
	DType  string `json:"dtype"`  // Always "float64"
	Shape  []int  `json:"shape"`  // [dims[n], dims[n+1]]
	Offset int64  `json:"offset"` // Offset in the data section
	Size   int64  `json:"size"`   // Size in bytes
}

// tensorName returns the name of connectivity layer n.
func tensorName(n int) string {
	return tensorPrefix + strconv.Itoa(n)
}

// tensorIndex parses the layer index out of a tensor name.
func tensorIndex(name string) (int, error) {
	idx, err := strconv.Atoi(strings.TrimPrefix(name, tensorPrefix))
	if err != nil || !strings.HasPrefix(name, tensorPrefix) || idx < 0 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidTensorName, name)
	}
	return idx, nil
}

// preamble is the fixed-size part of a .born stream that precedes the JSON
// header.
type preamble struct {
	flags      uint32
	headerSize uint64
	dataSize   uint64
	checksum   Checksum
}

func (p preamble) marshal() []byte {
	b := make([]byte, FixedHeaderSizeV2)
	copy(b, MagicBytes)
	binary.LittleEndian.PutUint32(b[0x04:], FormatVersionV2)
	binary.LittleEndian.PutUint32(b[0x08:], p.flags)
	binary.LittleEndian.PutUint64(b[0x10:], p.headerSize)
	binary.LittleEndian.PutUint64(b[0x18:], p.dataSize)
	copy(b[ChecksumOffsetV2:], p.checksum[:])
	return b
}

func parsePreamble(b []byte) (preamble, error) {
	var p preamble
	if string(b[:len(MagicBytes)]) != MagicBytes {
		return p, ErrInvalidMagic
	}
	if v := binary.LittleEndian.Uint32(b[0x04:]); v != FormatVersionV2 {
		return p, fmt.Errorf("%w: %d (this build reads %d)", ErrUnsupportedVersion, v, FormatVersionV2)
	}
	p.flags = binary.LittleEndian.Uint32(b[0x08:])
	p.headerSize = binary.LittleEndian.Uint64(b[0x10:])
	p.dataSize = binary.LittleEndian.Uint64(b[0x18:])
	copy(p.checksum[:], b[ChecksumOffsetV2:])
	if p.headerSize > MaxHeaderSize {
		return p, fmt.Errorf("%w: %d bytes, limit %d", ErrHeaderTooLarge, p.headerSize, MaxHeaderSize)
	}
	return p, nil
}

// padding returns the zero bytes needed after a header of headerSize bytes.
func padding(headerSize int64) int64 {
	end := FixedHeaderSizeV2 + headerSize
	return (HeaderAlignment - end%HeaderAlignment) % HeaderAlignment
}
