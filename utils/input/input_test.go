package input_test

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
	"github.com/tsinghua-fib-lab/intersection-analyzer/analysis"
	"github.com/tsinghua-fib-lab/intersection-analyzer/utils/config"
	"github.com/tsinghua-fib-lab/intersection-analyzer/utils/input"
)

func npyFloats(shape string, vals ...float64) []byte {
	data := &bytes.Buffer{}
	for _, v := range vals {
		binary.Write(data, binary.LittleEndian, math.Float64bits(v))
	}
	return npyRaw("<f8", shape, data.Bytes())
}

func npyString(s string) []byte {
	data := &bytes.Buffer{}
	for _, r := range s {
		binary.Write(data, binary.LittleEndian, uint32(r))
	}
	return npyRaw(fmt.Sprintf("<U%d", len([]rune(s))), "()", data.Bytes())
}

func npyBool(v bool) []byte {
	b := byte(0)
	if v {
		b = 1
	}
	return npyRaw("|b1", "()", []byte{b})
}

func npyRaw(descr, shape string, data []byte) []byte {
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

// writeArchive builds a results npz with the standard 5-step scenario,
// applying overrides (nil value removes the member).
func writeArchive(t *testing.T, overrides map[string][]byte) string {
	t.Helper()
	traj := func() []byte {
		vals := make([]float64, 0, 5*4)
		for i := 0; i < 5; i++ {
			vals = append(vals, 0, 0, 0, 10)
		}
		return npyFloats("(5, 4)", vals...)
	}
	members := map[string][]byte{
		"ego":       traj(),
		"human":     traj(),
		"beta":      npyFloats("(4,)", 0.5, 0.5, 0.5, 0.5),
		"theta":     npyFloats("(4,)", 0.9, 0.9, 0.9, 0.9),
		"t_beta":    npyFloats("()", 0.5),
		"t_theta":   npyString("attentive"),
		"PassInter": npyBool(true),
		"Collision": npyBool(false),
	}
	for k, v := range overrides {
		if v == nil {
			delete(members, k)
		} else {
			members[k] = v
		}
	}
	path := filepath.Join(t.TempDir(), "test_0.npz")
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

func TestLoadFile(t *testing.T) {
	r, err := input.LoadFile(writeArchive(t, nil))
	require.NoError(t, err)
	assert.Equal(t, 5, r.Steps())
	assert.Len(t, r.Human, 5)
	assert.Equal(t, []float64{0.5, 0.5, 0.5, 0.5}, r.BetaEstimate)
	assert.Equal(t, []float64{0.9, 0.9, 0.9, 0.9}, r.ThetaEstimate)
	assert.Equal(t, 0.5, r.TrueBeta)
	assert.Equal(t, analysis.ThetaAttentive, r.TrueTheta)
	assert.True(t, r.PassedIntersection)
	assert.False(t, r.Collision)
}

func TestLoadFileShortTheta(t *testing.T) {
	r, err := input.LoadFile(writeArchive(t, map[string][]byte{
		"t_theta": npyString("a"),
	}))
	require.NoError(t, err)
	assert.Equal(t, analysis.ThetaAttentive, r.TrueTheta)
}

func TestLoadFileMissingField(t *testing.T) {
	_, err := input.LoadFile(writeArchive(t, map[string][]byte{"t_theta": nil}))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "t_theta")
}

func TestLoadFileNarrowColumns(t *testing.T) {
	rows := npyFloats("(5, 3)",
		0, 0, 0,
		0, 0, 0,
		0, 0, 0,
		0, 0, 0,
		0, 0, 0)
	_, err := input.LoadFile(writeArchive(t, map[string][]byte{"ego": rows}))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "columns")
}

func TestLoadFileNotFound(t *testing.T) {
	_, err := input.LoadFile(filepath.Join(t.TempDir(), "absent.npz"))
	assert.Error(t, err)
}

func TestLoadNoSourceConfigured(t *testing.T) {
	_, err := input.Load(config.Config{})
	assert.Error(t, err)
}

func TestLoadPrefersFile(t *testing.T) {
	c := config.Default()
	c.Input.File = writeArchive(t, nil)
	c.Input.URI = "mongodb://unreachable:27017"
	r, err := input.Load(c)
	require.NoError(t, err)
	assert.Equal(t, 5, r.Steps())
}
