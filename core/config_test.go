package core

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/mitchellh/go-homedir"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigEmptyPathIsDefault(t *testing.T) {
	cfg, err := LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestLoadConfigOverridesOnlyGivenKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "viewer.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
window:
  title: Bunny
render:
  shading_mode: gouraud
  clear_color: {r: 0, g: 0, b: 0, a: 1}
lights:
  - type: directional
    position: [-1, -1, -1]
    color: [1, 0.5, 0]
`), 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	def := DefaultConfig()
	assert.Equal(t, "Bunny", cfg.Window.Title)
	assert.Equal(t, def.Window.Width, cfg.Window.Width)
	assert.Equal(t, "gouraud", cfg.Render.ShadingMode)
	assert.Equal(t, def.Render.DisplayMode, cfg.Render.DisplayMode)
	assert.Equal(t, ColorBlack, cfg.Render.ClearColor)
	assert.Equal(t, def.Camera, cfg.Camera)
	require.Len(t, cfg.Lights, 1)
	assert.Equal(t, "directional", cfg.Lights[0].Type)
	assert.Equal(t, [3]float32{1, 0.5, 0}, cfg.Lights[0].Color)
}

func TestLoadConfigErrors(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorIs(t, err, ErrIO)

	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("window: [not, a, map"), 0o644))
	_, err = LoadConfig(path)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrIO)
}

func TestExpandPaths(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	homedir.DisableCache = true
	t.Cleanup(func() { homedir.DisableCache = false })

	cfg := DefaultConfig()
	cfg.Model = "~/models/cube.obj"
	cfg.Render.ShaderDir = "/abs/shaders"
	require.NoError(t, cfg.ExpandPaths())
	assert.Equal(t, filepath.Join(home, "models", "cube.obj"), cfg.Model)
	assert.Equal(t, "/abs/shaders", cfg.Render.ShaderDir)
	assert.Empty(t, cfg.Render.CubeDiffuse)
}
