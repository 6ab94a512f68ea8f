package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	for _, k := range []string{"MODEL_PATH", "MODEL_DEVICE", "ORT_LIBRARY_PATH", "LOG_LEVEL", "PORT"} {
		t.Setenv(k, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	c, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "model/model_scripted.pt", c.Model.ModelPath)
	assert.Equal(t, "cpu", c.Model.Device)
	assert.Equal(t, "input", c.Model.InputName)
	assert.Equal(t, "output", c.Model.OutputName)
	assert.Equal(t, 8080, c.HTTP.Port)
	assert.Equal(t, "info", c.Log.Level)
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	clearEnv(t)

	c, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "cpu", c.Model.Device)
}

func TestLoad_File(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "config.yaml")
	data := `
model:
  path: models/cifar10.onnx
  device: cuda:0
http:
  port: 9000
log:
  level: debug
  encoding: json
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))

	c, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "models/cifar10.onnx", c.Model.ModelPath)
	assert.Equal(t, "cuda:0", c.Model.Device)
	assert.Equal(t, "input", c.Model.InputName, "unset keys keep defaults")
	assert.Equal(t, 9000, c.HTTP.Port)
	assert.Equal(t, "debug", c.Log.Level)
	assert.Equal(t, "json", c.Log.Encoding)
}

func TestLoad_EnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("MODEL_PATH", "/srv/model.onnx")
	t.Setenv("MODEL_DEVICE", "cuda")
	t.Setenv("PORT", "7070")

	c, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "/srv/model.onnx", c.Model.ModelPath)
	assert.Equal(t, "cuda", c.Model.Device)
	assert.Equal(t, 7070, c.HTTP.Port)
}

func TestLoad_InvalidYAML(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("model: [unclosed"), 0o644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	c := Default()
	require.NoError(t, c.Validate())

	c.HTTP.Port = 0
	assert.Error(t, c.Validate())

	c = Default()
	c.Model.ModelPath = ""
	assert.Error(t, c.Validate())

	c = Default()
	c.Model.Device = ""
	assert.Error(t, c.Validate())
}
