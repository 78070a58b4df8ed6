package npz_test

import (
	"archive/zip"
	"bytes"
	"encoding/binary"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tsinghua-fib-lab/intersection-analyzer/utils/npz"
)

// buildNpy assembles a version-1 npy member with the given descr/shape/payload.
func buildNpy(descr string, shape string, data []byte) []byte {
	head := fmt.Sprintf("{'descr': '%s', 'fortran_order': False, 'shape': %s, }", descr, shape)
	for (10+len(head))%16 != 0 {
		head += " "
	}
	buf := &bytes.Buffer{}
	buf.WriteString("\x93NUMPY")
	buf.WriteByte(1)
	buf.WriteByte(0)
	binary.Write(buf, binary.LittleEndian, uint16(len(head)))
	buf.WriteString(head)
	buf.Write(data)
	return buf.Bytes()
}

func f64Bytes(vals ...float64) []byte {
	buf := &bytes.Buffer{}
	for _, v := range vals {
		binary.Write(buf, binary.LittleEndian, math.Float64bits(v))
	}
	return buf.Bytes()
}

func utf32Bytes(s string, width int) []byte {
	buf := &bytes.Buffer{}
	for _, r := range s {
		binary.Write(buf, binary.LittleEndian, uint32(r))
	}
	for i := len([]rune(s)); i < width; i++ {
		binary.Write(buf, binary.LittleEndian, uint32(0))
	}
	return buf.Bytes()
}

// writeNpz writes members into a zip file under dir and returns its path.
func writeNpz(t *testing.T, dir string, members map[string][]byte) string {
	t.Helper()
	path := filepath.Join(dir, "test.npz")
	f, err := os.Create(path)
	require.NoError(t, err)
	zw := zip.NewWriter(f)
	for name, raw := range members {
		w, err := zw.Create(name + ".npy")
		require.NoError(t, err)
		_, err = w.Write(raw)
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	require.NoError(t, f.Close())
	return path
}

func TestDecodeFloat64Vector(t *testing.T) {
	a, err := npz.Decode(buildNpy("<f8", "(3,)", f64Bytes(0.5, 0.6, 0.7)))
	require.NoError(t, err)
	assert.Equal(t, []int{3}, a.Shape)
	got, err := a.FloatSlice()
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float64{0.5, 0.6, 0.7}, got, 1e-12)
}

func TestDecodeMatrix(t *testing.T) {
	a, err := npz.Decode(buildNpy("<f8", "(2, 4)", f64Bytes(0, 1, 2, 10, 3, 4, 5, 20)))
	require.NoError(t, err)
	m, err := a.Matrix()
	require.NoError(t, err)
	require.Len(t, m, 2)
	assert.Equal(t, []float64{0, 1, 2, 10}, m[0])
	assert.Equal(t, []float64{3, 4, 5, 20}, m[1])
}

func TestDecodeScalarAndBool(t *testing.T) {
	a, err := npz.Decode(buildNpy("<f8", "()", f64Bytes(0.5)))
	require.NoError(t, err)
	v, err := a.Float()
	require.NoError(t, err)
	assert.Equal(t, 0.5, v)

	b, err := npz.Decode(buildNpy("|b1", "()", []byte{1}))
	require.NoError(t, err)
	bv, err := b.Bool()
	require.NoError(t, err)
	assert.True(t, bv)
}

func TestDecodeUnicodeString(t *testing.T) {
	a, err := npz.Decode(buildNpy("<U9", "()", utf32Bytes("attentive", 9)))
	require.NoError(t, err)
	s, err := a.String()
	require.NoError(t, err)
	assert.Equal(t, "attentive", s)
}

func TestDecodeInt32(t *testing.T) {
	buf := &bytes.Buffer{}
	binary.Write(buf, binary.LittleEndian, []int32{-1, 7})
	a, err := npz.Decode(buildNpy("<i4", "(2,)", buf.Bytes()))
	require.NoError(t, err)
	got, err := a.FloatSlice()
	require.NoError(t, err)
	assert.Equal(t, []float64{-1, 7}, got)
}

func TestDecodeRejectsObjectDtype(t *testing.T) {
	_, err := npz.Decode(buildNpy("|O", "(1,)", nil))
	assert.Error(t, err)
}

func TestDecodeRejectsBadMagic(t *testing.T) {
	_, err := npz.Decode([]byte("not an npy file at all"))
	assert.Error(t, err)
}

func TestOpenArchive(t *testing.T) {
	dir := t.TempDir()
	path := writeNpz(t, dir, map[string][]byte{
		"beta":    buildNpy("<f8", "(2,)", f64Bytes(0.4, 0.5)),
		"t_theta": buildNpy("<U9", "()", utf32Bytes("attentive", 9)),
	})
	ar, err := npz.Open(path)
	require.NoError(t, err)

	beta, err := ar.Get("beta")
	require.NoError(t, err)
	vals, err := beta.FloatSlice()
	require.NoError(t, err)
	assert.Equal(t, []float64{0.4, 0.5}, vals)

	_, err = ar.Get("theta")
	assert.ErrorContains(t, err, "theta")
}

func TestOpenMissingFile(t *testing.T) {
	_, err := npz.Open(filepath.Join(t.TempDir(), "nope.npz"))
	assert.Error(t, err)
}
