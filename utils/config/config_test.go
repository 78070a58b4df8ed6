package config_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tsinghua-fib-lab/intersection-analyzer/utils/config"
	"gopkg.in/yaml.v2"
)

func TestDefault(t *testing.T) {
	c := config.Default()
	assert.Equal(t, "./result/test_0.npz", c.Input.File)
	assert.Equal(t, "./result", c.Output.Dir)
	assert.Equal(t, 4.0, c.Geometry.RoadWidth)
	assert.Equal(t, 40.0, c.Geometry.RoadLength)
	assert.Equal(t, 3.5, c.SafetyDistance)
}

func TestUnmarshalStrict(t *testing.T) {
	raw := `
input:
  uri: mongodb://localhost:27017
  db: sim
  col: results
  name: test_0
output:
  dir: /tmp/out
geometry:
  road_width: 6
  road_length: 50
safety_distance: 4.5
`
	var c config.Config
	require.NoError(t, yaml.UnmarshalStrict([]byte(raw), &c))
	c.FillDefaults()
	assert.Equal(t, "sim", c.Input.DB)
	assert.Equal(t, "test_0", c.Input.Name)
	assert.Equal(t, "/tmp/out", c.Output.Dir)
	assert.Equal(t, 6.0, c.Geometry.RoadWidth)
	assert.Equal(t, 50.0, c.Geometry.RoadLength)
	assert.Equal(t, 4.5, c.SafetyDistance)
}

func TestUnmarshalStrictRejectsUnknownKeys(t *testing.T) {
	var c config.Config
	assert.Error(t, yaml.UnmarshalStrict([]byte("inputs: {}\n"), &c))
}

func TestFillDefaults(t *testing.T) {
	c := config.Config{}
	c.FillDefaults()
	assert.Equal(t, "./result", c.Output.Dir)
	assert.Equal(t, 4.0, c.Geometry.RoadWidth)
	assert.Equal(t, 40.0, c.Geometry.RoadLength)
	assert.Equal(t, 3.5, c.SafetyDistance)
	// the input source stays empty: a config file must name one
	assert.Empty(t, c.Input.File)
	assert.Empty(t, c.Input.URI)
}
