package serialization

import (
	"bytes"
	"encoding/binary"
	"errors"
	"math"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/born-ml/perceptron/internal/mlp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testTopology(t *testing.T, dims ...int) mlp.Topology {
	t.Helper()
	topo, err := mlp.TopologyFromDims(dims)
	require.NoError(t, err)
	return topo
}

func randomWeights(t *testing.T, topo mlp.Topology, seed int64) *mlp.WeightTensor {
	t.Helper()
	w := mlp.NewWeightTensor(topo)
	//nolint:gosec // deterministic test source
	require.NoError(t, w.Randomize(-3, 3, rand.New(rand.NewSource(seed))))
	return w
}

func assertBitsEqual(t *testing.T, want, got *mlp.WeightTensor) {
	t.Helper()
	require.True(t, want.Topology().Equal(got.Topology()), "topology %s != %s", want.Topology(), got.Topology())
	a, b := want.Flatten(), got.Flatten()
	require.Len(t, b, len(a))
	for i := range a {
		assert.Equal(t, math.Float64bits(a[i]), math.Float64bits(b[i]), "weight %d: %v != %v", i, a[i], b[i])
	}
}

func TestTextCodecLayout(t *testing.T) {
	topo := testTopology(t, 2, 2, 1)
	w := mlp.NewWeightTensor(topo)
	require.NoError(t, w.Load([]float64{1, -0.5, 0.1, 2e-10, 3, 4}))

	var buf bytes.Buffer
	require.NoError(t, TextCodec{}.Encode(&buf, w))

	assert.Equal(t, "1 -0.5 0.1 2e-10\n3 4\n", buf.String())
}

// TestTextCodecRoundTrip verifies that saving and reloading reproduces the
// exact same tensor.
func TestTextCodecRoundTrip(t *testing.T) {
	topo := testTopology(t, 5, 7, 3, 2)
	w := randomWeights(t, topo, 1)
	w.Set(0, 0, 0, math.SmallestNonzeroFloat64)
	w.Set(0, 0, 1, math.MaxFloat64)
	w.Set(1, 2, 2, 1.0/3.0)

	var buf bytes.Buffer
	require.NoError(t, TextCodec{}.Encode(&buf, w))

	got, err := TextCodec{}.Decode(&buf, topo)
	require.NoError(t, err)
	assertBitsEqual(t, w, got)
}

func TestTextCodecDecodeWhitespace(t *testing.T) {
	topo := testTopology(t, 2, 2, 1)
	in := "  1\t2\n\n3   4 5\n  6  \n"

	got, err := TextCodec{}.Decode(strings.NewReader(in), topo)
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 2, 3, 4, 5, 6}, got.Flatten())
}

func TestTextCodecDecodeErrors(t *testing.T) {
	topo := testTopology(t, 2, 2, 1)

	tests := []struct {
		name    string
		in      string
		wantErr error
	}{
		{name: "too few", in: "1 2 3 4 5\n", wantErr: mlp.ErrShapeMismatch},
		{name: "too many", in: "1 2 3 4\n5 6 7\n", wantErr: mlp.ErrShapeMismatch},
		{name: "empty", in: "", wantErr: mlp.ErrShapeMismatch},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := TextCodec{}.Decode(strings.NewReader(tt.in), topo)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}

	_, err := TextCodec{}.Decode(strings.NewReader("1 2 x 4 5 6"), topo)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "weight 2")
}

func TestBornRoundTrip(t *testing.T) {
	topo := testTopology(t, 4, 3, 2)
	w := randomWeights(t, topo, 2)
	created := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	training := &TrainingMeta{
		RunID:          "0b6f2b1c-5a51-4b8e-9a4e-3f1c2d7e8a90",
		State:          "CONVERGED",
		Epochs:         1235,
		Error:          0.0099,
		Lambda:         0.5,
		MaxIterations:  5000,
		ErrorThreshold: 0.01,
	}

	var buf bytes.Buffer
	require.NoError(t, WriteBorn(&buf, w, WriteOptions{
		Metadata: map[string]string{"training_set": "and.txt"},
		Training: training,
		Now:      func() time.Time { return created },
	}))

	// Weight data starts on a 64-byte boundary.
	assert.Zero(t, (buf.Len()-topo.WeightCount()*Float64Size)%HeaderAlignment)

	got, header, err := ReadBorn(bytes.NewReader(buf.Bytes()), ReaderOptions{})
	require.NoError(t, err)
	assertBitsEqual(t, w, got)

	assert.Equal(t, FormatVersionV2, header.FormatVersion)
	assert.Equal(t, Producer, header.Producer)
	assert.Equal(t, []int{4, 3, 2}, header.Topology)
	assert.True(t, created.Equal(header.CreatedAt))
	assert.Equal(t, "and.txt", header.Metadata["training_set"])
	require.NotNil(t, header.Training)
	assert.Equal(t, *training, *header.Training)
	require.Len(t, header.Tensors, 2)
	assert.Equal(t, "weights.1", header.Tensors[1].Name)
	assert.Equal(t, []int{3, 2}, header.Tensors[1].Shape)
}

func TestBornCorruption(t *testing.T) {
	topo := testTopology(t, 2, 2, 1)
	w := randomWeights(t, topo, 3)

	var buf bytes.Buffer
	require.NoError(t, WriteBorn(&buf, w, WriteOptions{}))
	good := buf.Bytes()

	t.Run("flipped data byte", func(t *testing.T) {
		bad := append([]byte(nil), good...)
		bad[len(bad)-1] ^= 0xFF
		_, _, err := ReadBorn(bytes.NewReader(bad), ReaderOptions{})
		assert.ErrorIs(t, err, ErrChecksumMismatch)

		// Skipping the checksum accepts the altered data.
		_, _, err = ReadBorn(bytes.NewReader(bad), ReaderOptions{SkipChecksumValidation: true})
		assert.NoError(t, err)
	})

	t.Run("bad magic", func(t *testing.T) {
		bad := append([]byte(nil), good...)
		copy(bad, "NROB")
		_, _, err := ReadBorn(bytes.NewReader(bad), ReaderOptions{})
		assert.ErrorIs(t, err, ErrInvalidMagic)
	})

	t.Run("unsupported version", func(t *testing.T) {
		bad := append([]byte(nil), good...)
		bad[4] = 9
		_, _, err := ReadBorn(bytes.NewReader(bad), ReaderOptions{})
		assert.ErrorIs(t, err, ErrUnsupportedVersion)
	})

	t.Run("truncated", func(t *testing.T) {
		_, _, err := ReadBorn(bytes.NewReader(good[:len(good)-8]), ReaderOptions{})
		assert.Error(t, err)
	})

	t.Run("oversized header", func(t *testing.T) {
		bad := append([]byte(nil), good...)
		bad[16+3] = 0xFF
		_, _, err := ReadBorn(bytes.NewReader(bad), ReaderOptions{})
		assert.ErrorIs(t, err, ErrHeaderTooLarge)
	})
}

// encodeBorn frames a raw JSON header and data section as a .born stream.
func encodeBorn(headerJSON string, data []byte) []byte {
	p := preamble{
		headerSize: uint64(len(headerJSON)),
		dataSize:   uint64(len(data)),
		checksum:   SumData(data),
	}
	out := append(p.marshal(), headerJSON...)
	out = append(out, make([]byte, padding(int64(len(headerJSON))))...)
	return append(out, data...)
}

func TestReadBornOversizedTopology(t *testing.T) {
	tests := []struct {
		name   string
		header string
	}{
		{
			// 2^31 x 2^31 float64s is 2^65 bytes, which wraps to a size of 0.
			name: "byte size overflow",
			header: `{"format_version":2,"topology":[2147483648,2147483648],` +
				`"tensors":[{"name":"weights.0","dtype":"float64","shape":[2147483648,2147483648],"offset":0,"size":0}]}`,
		},
		{
			name: "layer over limit",
			header: `{"format_version":2,"topology":[1048576,1048576],` +
				`"tensors":[{"name":"weights.0","dtype":"float64","shape":[1048576,1048576],"offset":0,"size":0}]}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stream := encodeBorn(tt.header, nil)
			require.NotPanics(t, func() {
				_, _, err := ReadBorn(bytes.NewReader(stream), ReaderOptions{})
				assert.ErrorIs(t, err, ErrTooManyWeights)
			})
		})
	}
}

func TestReadBornCraftedStream(t *testing.T) {
	// A hand-framed stream for a valid header decodes like a written one.
	header := `{"format_version":2,"topology":[1,2],` +
		`"tensors":[{"name":"weights.0","dtype":"float64","shape":[1,2],"offset":0,"size":16}]}`
	data := binary.LittleEndian.AppendUint64(nil, math.Float64bits(1))
	data = binary.LittleEndian.AppendUint64(data, math.Float64bits(0))
	w, _, err := ReadBorn(bytes.NewReader(encodeBorn(header, data)), ReaderOptions{})
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 0}, w.Flatten())
}

func TestBornCodecTopologyMismatch(t *testing.T) {
	w := randomWeights(t, testTopology(t, 2, 2, 1), 4)

	var buf bytes.Buffer
	require.NoError(t, BornCodec{}.Encode(&buf, w))

	_, err := BornCodec{}.Decode(bytes.NewReader(buf.Bytes()), testTopology(t, 2, 3, 1))
	assert.ErrorIs(t, err, mlp.ErrShapeMismatch)

	got, err := BornCodec{}.Decode(bytes.NewReader(buf.Bytes()), mlp.Topology{})
	require.NoError(t, err)
	assertBitsEqual(t, w, got)
}

func TestSaveLoadFile(t *testing.T) {
	topo := testTopology(t, 3, 4, 2)
	w := randomWeights(t, topo, 5)
	dir := t.TempDir()

	for _, name := range []string{"weights.txt", "weights.out", "nested/dir/weights.born", "UPPER.BORN"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(dir, name)
			require.NoError(t, SaveFile(path, w, WriteOptions{}))

			got, err := LoadFile(path, topo)
			require.NoError(t, err)
			assertBitsEqual(t, w, got)
		})
	}

	t.Run("text file is human readable", func(t *testing.T) {
		raw, err := os.ReadFile(filepath.Join(dir, "weights.txt"))
		require.NoError(t, err)
		assert.Equal(t, 2, strings.Count(string(raw), "\n"))
	})

	t.Run("born file without topology", func(t *testing.T) {
		got, err := LoadFile(filepath.Join(dir, "nested/dir/weights.born"), mlp.Topology{})
		require.NoError(t, err)
		assert.Equal(t, "3-4-2", got.Topology().String())
	})

	t.Run("text file without topology", func(t *testing.T) {
		_, err := LoadFile(filepath.Join(dir, "weights.txt"), mlp.Topology{})
		assert.Error(t, err)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := LoadFile(filepath.Join(dir, "absent.txt"), topo)
		assert.True(t, errors.Is(err, os.ErrNotExist))
	})
}
