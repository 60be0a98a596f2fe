package dataset

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/born-ml/perceptron/internal/mlp"
	"github.com/born-ml/perceptron/internal/train"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustTopology(t *testing.T, dims ...int) mlp.Topology {
	t.Helper()
	topo, err := mlp.TopologyFromDims(dims)
	require.NoError(t, err)
	return topo
}

var andExamples = []train.Example{
	{Input: []float64{0, 0}, Target: []float64{0}},
	{Input: []float64{0, 1}, Target: []float64{0}},
	{Input: []float64{1, 0}, Target: []float64{0}},
	{Input: []float64{1, 1}, Target: []float64{1}},
}

func TestTextLoader(t *testing.T) {
	in := "0 0\n0\n0 1\n0\n\n# second half\n1 0\n0\n  1\t1 \n1\n"

	got, err := TextLoader{}.Load(strings.NewReader(in), mustTopology(t, 2, 2, 1))
	require.NoError(t, err)
	assert.Equal(t, andExamples, got)
}

func TestTextLoaderWideLine(t *testing.T) {
	const width = 5000
	line := strings.TrimSpace(strings.Repeat("0.12345678901234567 ", width))
	require.Greater(t, len(line), 64*1024)

	got, err := TextLoader{}.Load(strings.NewReader(line+"\n1\n"), mustTopology(t, width, 1))
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Len(t, got[0].Input, width)
	assert.Equal(t, 0.12345678901234567, got[0].Input[width-1])
}

func TestTextLoaderErrors(t *testing.T) {
	topo := mustTopology(t, 2, 3, 2)

	tests := []struct {
		name     string
		in       string
		wantErr  error
		wantLine int
	}{
		{name: "short input", in: "1\n0 1\n", wantErr: mlp.ErrInvalidInputShape, wantLine: 1},
		{name: "long target", in: "1 0\n0 1 1\n", wantErr: mlp.ErrShapeMismatch, wantLine: 2},
		{name: "missing target", in: "1 0\n0 1\n\n1 1\n", wantErr: mlp.ErrShapeMismatch, wantLine: 4},
		{name: "bad number", in: "1 0\n0 one\n", wantLine: 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := TextLoader{}.Load(strings.NewReader(tt.in), topo)
			require.Error(t, err)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			}
			var perr *ParseError
			require.True(t, errors.As(err, &perr), "want *ParseError, got %T", err)
			assert.Equal(t, tt.wantLine, perr.Line)
		})
	}
}

func TestTextLoaderEmpty(t *testing.T) {
	got, err := TextLoader{}.Load(strings.NewReader("\n# nothing\n"), mustTopology(t, 2, 1))
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestCSVLoader(t *testing.T) {
	topo := mustTopology(t, 2, 3, 2)
	in := "a,b,or,and\n# comment\n0,0,0,0\n0, 1,1,0\n1,0,1,0\n1,1,1,1\n"

	got, err := CSVLoader{HasHeader: true}.Load(strings.NewReader(in), topo)
	require.NoError(t, err)
	require.Len(t, got, 4)
	assert.Equal(t, []float64{0, 1}, got[1].Input)
	assert.Equal(t, []float64{1, 0}, got[1].Target)
	assert.Equal(t, []float64{1, 1}, got[3].Target)

	// Inputs must not alias the target storage.
	got[0].Input = append(got[0].Input, 9)
	assert.Equal(t, []float64{0, 0}, got[0].Target)
}

func TestCSVLoaderDelimiter(t *testing.T) {
	got, err := CSVLoader{Comma: ';'}.Load(strings.NewReader("0.5;0.25;1\n"), mustTopology(t, 2, 1))
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, []float64{0.5, 0.25}, got[0].Input)
}

func TestCSVLoaderErrors(t *testing.T) {
	topo := mustTopology(t, 2, 2, 1)

	tests := []struct {
		name     string
		in       string
		wantErr  error
		wantLine int
	}{
		{name: "short record", in: "0,0,0\n1\n", wantErr: mlp.ErrInvalidInputShape, wantLine: 2},
		{name: "long record", in: "0,0,0,1\n", wantErr: mlp.ErrShapeMismatch, wantLine: 1},
		{name: "missing target", in: "0,0\n", wantErr: mlp.ErrShapeMismatch, wantLine: 1},
		{name: "header without flag", in: "x,y,and\n0,0,0\n", wantLine: 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := CSVLoader{}.Load(strings.NewReader(tt.in), topo)
			require.Error(t, err)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			}
			var perr *ParseError
			require.True(t, errors.As(err, &perr), "want *ParseError, got %T", err)
			assert.Equal(t, tt.wantLine, perr.Line)
		})
	}
}

func TestLoadFile(t *testing.T) {
	topo := mustTopology(t, 2, 2, 1)
	dir := t.TempDir()

	text := filepath.Join(dir, "and.txt")
	require.NoError(t, os.WriteFile(text, []byte("0 0\n0\n0 1\n0\n1 0\n0\n1 1\n1\n"), 0o600))
	csvPath := filepath.Join(dir, "and.CSV")
	require.NoError(t, os.WriteFile(csvPath, []byte("0,0,0\n0,1,0\n1,0,0\n1,1,1\n"), 0o600))

	for _, path := range []string{text, csvPath} {
		got, err := LoadFile(path, topo)
		require.NoError(t, err, path)
		assert.Equal(t, andExamples, got, path)
	}

	_, err := LoadFile(filepath.Join(dir, "missing.txt"), topo)
	assert.ErrorIs(t, err, os.ErrNotExist)

	bad := filepath.Join(dir, "bad.txt")
	require.NoError(t, os.WriteFile(bad, []byte("0 0 0\n1\n"), 0o600))
	_, err = LoadFile(bad, topo)
	assert.ErrorIs(t, err, mlp.ErrInvalidInputShape)
	assert.Contains(t, err.Error(), "bad.txt")
}

func TestLoaderFor(t *testing.T) {
	assert.IsType(t, CSVLoader{}, LoaderFor("set.csv"))
	assert.IsType(t, TextLoader{}, LoaderFor("set.txt"))
	assert.IsType(t, TextLoader{}, LoaderFor("set"))
}
