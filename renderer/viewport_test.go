package renderer

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"model-viewer/core"
	"model-viewer/internal/gltest"
	"model-viewer/scene"
)

const eps = 1e-5

func assertVec3Near(t *testing.T, want, got mgl32.Vec3) {
	t.Helper()
	assert.InDeltaSlice(t, want[:], got[:], eps, "want %v, got %v", want, got)
}

func assertVec4Near(t *testing.T, want, got mgl32.Vec4) {
	t.Helper()
	assert.InDeltaSlice(t, want[:], got[:], eps, "want %v, got %v", want, got)
}

func writePNG(t *testing.T, dir, name string) string {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	for i := range img.Pix {
		img.Pix[i] = 255
	}
	img.SetRGBA(0, 0, color.RGBA{R: 255, A: 255})
	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, png.Encode(f, img))
	return path
}

func newViewport(t *testing.T, mutate func(*core.Config)) (*Viewport, *gltest.Device) {
	t.Helper()
	cfg := core.DefaultConfig()
	cfg.Render.CubeDiffuse = writePNG(t, t.TempDir(), "container.png")
	if mutate != nil {
		mutate(&cfg)
	}
	dev := gltest.NewDevice()
	v, err := NewViewport(dev, cfg)
	require.NoError(t, err)
	require.NoError(t, v.Init())
	t.Cleanup(v.Destroy)
	return v, dev
}

func TestInit(t *testing.T) {
	v, dev := newViewport(t, nil)

	assert.True(t, dev.DepthTest)
	assert.Equal(t, [2]int32{1280, 720}, dev.ViewportWH)
	assert.Equal(t, 3, dev.Programs())
	for _, name := range []string{PhongProgram, GouraudProgram, LampProgram} {
		require.Contains(t, v.programs, name)
		assert.True(t, v.programs[name].IsLinked(), name)
	}
	assert.Equal(t, scene.MeshStats{Vertices: 36, Triangles: 12, SubMeshes: 1, Textures: 1}, v.Stats())
	assert.Empty(t, dev.Errors)
}

func TestPaintFill(t *testing.T) {
	v, dev := newViewport(t, nil)
	dev.Reset()

	require.NoError(t, v.Paint())
	assert.Equal(t, 1, dev.Clears)
	assert.Equal(t, core.ColorSky, dev.ClearColor)

	lamp := v.programs[LampProgram].ID()
	phong := v.programs[PhongProgram].ID()

	// Two lamps, then the cube.
	require.Len(t, dev.Draws, 3)
	for _, d := range dev.Draws[:2] {
		assert.Equal(t, lamp, d.Program)
		assert.Equal(t, int32(36), d.Count)
		assert.Empty(t, d.Textures)
	}
	cube := dev.Draws[2]
	assert.Equal(t, phong, cube.Program)
	assert.Equal(t, int32(36), cube.Count)
	assert.Equal(t, core.PolygonFill, cube.Mode)
	assert.NotZero(t, cube.Textures[0])
	assert.Equal(t, 1, dev.TextureBinds)

	assert.Equal(t, []int32{2}, dev.UniformValue(phong, "numLights"))
	assert.Equal(t, []int32{1}, dev.UniformValue(phong, "texture_flag"))
	assert.Equal(t, []int32{0}, dev.UniformValue(phong, "flat_flag"))
	assert.Equal(t, []float32{1, 1, 1}, dev.UniformValue(phong, "material.diffuse"))
	assert.Equal(t, []float32{0.2, 0.2, 0.2}, dev.UniformValue(phong, "ambientLight"))
	assert.Equal(t, []float32{1, 1, 1, 1}, dev.UniformValue(phong, "allLights[0].position"))
	assert.Equal(t, []float32{-1, 1, 1, 1}, dev.UniformValue(phong, "allLights[1].position"))
	assert.Equal(t, []float32{1, 1, 1}, dev.UniformValue(lamp, "lampColor"))

	view := v.Camera().ViewMatrix()
	assert.Equal(t, view[:], dev.UniformValue(phong, "view"))
	inv := view.Inv()
	assert.Equal(t, inv[:], dev.UniformValue(phong, "view_inv"))
	ident := mgl32.Ident4()
	assert.Equal(t, ident[:], dev.UniformValue(phong, "model"))

	assert.Empty(t, dev.Errors)
	assert.Zero(t, dev.CurrentProgram(), "programs are released after the frame")
}

func TestPaintFillLines(t *testing.T) {
	v, dev := newViewport(t, func(c *core.Config) { c.Render.ShowLamps = false })
	v.SetDisplayMode(DisplayFillLines)
	dev.Reset()

	require.NoError(t, v.Paint())
	require.Len(t, dev.Draws, 2)
	assert.Equal(t, core.PolygonFill, dev.Draws[0].Mode)
	assert.Equal(t, core.PolygonLine, dev.Draws[1].Mode)

	phong := v.programs[PhongProgram].ID()
	assert.Equal(t, []int32{0}, dev.UniformValue(phong, "texture_flag"))
	assert.Equal(t, []float32{0, 0, 0}, dev.UniformValue(phong, "material.diffuse"))

	// The next frame restores the fill uniforms.
	dev.Reset()
	v.SetDisplayMode(DisplayFill)
	require.NoError(t, v.Paint())
	assert.Equal(t, []int32{1}, dev.UniformValue(phong, "texture_flag"))
	assert.Equal(t, []float32{1, 1, 1}, dev.UniformValue(phong, "material.diffuse"))
	assert.Empty(t, dev.Errors)
}

func TestPaintWireframeAndModes(t *testing.T) {
	v, dev := newViewport(t, func(c *core.Config) { c.Render.ShowLamps = false })
	v.SetDisplayMode(DisplayWireframe)
	v.SetShadingMode(ShadingGouraud)
	v.SetFlat(true)
	v.SetTextureMode(TextureModeColor)
	dev.Reset()

	require.NoError(t, v.Paint())
	require.Len(t, dev.Draws, 1)
	gouraud := v.programs[GouraudProgram].ID()
	assert.Equal(t, gouraud, dev.Draws[0].Program)
	assert.Equal(t, core.PolygonLine, dev.Draws[0].Mode)
	assert.Equal(t, []int32{1}, dev.UniformValue(gouraud, "flat_flag"))
	assert.Equal(t, []int32{0}, dev.UniformValue(gouraud, "texture_flag"))
	assert.Empty(t, dev.Errors)
}

func TestModelManipulation(t *testing.T) {
	v, dev := newViewport(t, func(c *core.Config) { c.Render.ShowLamps = false })

	v.Translate(1, -2)
	v.RotateModel(90)
	v.ScaleModel(2)
	require.NoError(t, v.Paint())

	model := v.Model().ModelMatrix()
	p := model.Mul4x1(mgl32.Vec4{1, 0, 0, 1})
	// Scale 0.9, +X rotated onto -Z, then moved by (1, -2).
	assertVec3Near(t, mgl32.Vec3{1, -2, -0.9}, p.Vec3())
	assert.Equal(t, model[:], dev.UniformValue(v.programs[PhongProgram].ID(), "model"))

	v.ScaleModel(1e6)
	require.NoError(t, v.Paint())
	assert.Equal(t, minModelScale, v.Model().Scale.X())

	v.ResetModel()
	require.NoError(t, v.Paint())
	assert.Equal(t, mgl32.Ident4(), v.Model().ModelMatrix())
}

const quadOBJ = `mtllib quad.mtl
v -1 -1 0
v 1 -1 0
v 1 1 0
v -1 1 0
vt 0 0
vt 1 0
vt 1 1
vt 0 1
usemtl m
f 1/1 2/2 3/3 4/4
`

func TestOpenFile(t *testing.T) {
	v, dev := newViewport(t, nil)
	dir := t.TempDir()
	writePNG(t, dir, "quad.png")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "quad.mtl"), []byte("newmtl m\nmap_Kd quad.png\n"), 0o644))
	path := filepath.Join(dir, "quad.obj")
	require.NoError(t, os.WriteFile(path, []byte(quadOBJ), 0o644))

	err := v.OpenFile(filepath.Join(dir, "missing.obj"))
	assert.ErrorIs(t, err, core.ErrIO)
	assert.Equal(t, 36, v.Stats().Vertices, "failed open keeps the cube")

	v.Translate(3, 3)
	require.NoError(t, v.OpenFile(path))
	assert.Equal(t, scene.MeshStats{Vertices: 4, Triangles: 2, SubMeshes: 1, Textures: 1}, v.Stats())
	// Lamp cube and quad; the old cube's buffers are gone.
	assert.Equal(t, 4, dev.Buffers())
	assert.Equal(t, 1, dev.Textures())
	assert.Greater(t, v.Camera().Position.Z(), float32(1))

	dev.Reset()
	require.NoError(t, v.Paint())
	last := dev.Draws[len(dev.Draws)-1]
	assert.Equal(t, int32(6), last.Count)
	assert.Equal(t, mgl32.Vec3{}, v.Model().Position, "model transform is reset")
	assert.Empty(t, dev.Errors)
}

func TestReloadShaders(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, WriteBuiltinSources(dir))
	v, dev := newViewport(t, func(c *core.Config) { c.Render.ShaderDir = dir })
	phong := v.programs[PhongProgram]

	_, frag := ShaderFiles(dir, PhongProgram)
	good, err := os.ReadFile(frag)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(frag, []byte("#version 410 core\nvoid main() {\n"), 0o644))

	err = v.ReloadShaders()
	assert.ErrorIs(t, err, core.ErrCompile)
	assert.Same(t, phong, v.programs[PhongProgram], "running programs are kept")
	assert.True(t, phong.IsLinked())
	assert.Equal(t, 3, dev.Programs())
	assert.Equal(t, 6, dev.Shaders())
	require.NoError(t, v.Paint())

	require.NoError(t, os.WriteFile(frag, good, 0o644))
	require.NoError(t, v.ReloadShaders())
	assert.NotSame(t, phong, v.programs[PhongProgram])
	assert.Equal(t, 3, dev.Programs())
	assert.Equal(t, 6, dev.Shaders())
	require.NoError(t, v.Paint())
	assert.Empty(t, dev.Errors)
}

func TestInitMissingShaderDir(t *testing.T) {
	cfg := core.DefaultConfig()
	cfg.Render.ShaderDir = filepath.Join(t.TempDir(), "none")
	dev := gltest.NewDevice()
	v, err := NewViewport(dev, cfg)
	require.NoError(t, err)

	err = v.Init()
	assert.ErrorIs(t, err, core.ErrIO)
	assert.Zero(t, dev.Programs())
}

func TestNewViewportRejectsBadConfig(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*core.Config)
	}{
		{"display mode", func(c *core.Config) { c.Render.DisplayMode = "points" }},
		{"shading mode", func(c *core.Config) { c.Render.ShadingMode = "toon" }},
		{"light type", func(c *core.Config) { c.Lights[0].Type = "area" }},
		{"too many lights", func(c *core.Config) {
			c.Lights = make([]core.LightConfig, scene.MaxLights+1)
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := core.DefaultConfig()
			tt.mutate(&cfg)
			_, err := NewViewport(gltest.NewDevice(), cfg)
			assert.Error(t, err)
		})
	}
}

func TestDirectionalLightUsesDirection(t *testing.T) {
	lights, err := lightsFromConfig([]core.LightConfig{
		{Type: "directional", Position: [3]float32{0, -1, 0}, Color: [3]float32{1, 1, 1}},
	})
	require.NoError(t, err)
	assert.Equal(t, mgl32.Vec4{0, -1, 0, 0}, lights[0].Position)
}

func TestTickAnimatesPointLights(t *testing.T) {
	cfg := core.DefaultConfig()
	cfg.Render.AnimateLights = true
	cfg.Lights = []core.LightConfig{
		{Type: "point", Position: [3]float32{1, 1, 1}, Color: [3]float32{1, 1, 1}},
		{Type: "directional", Position: [3]float32{0, -1, 0}, Color: [3]float32{1, 1, 1}},
	}
	v, err := NewViewport(gltest.NewDevice(), cfg)
	require.NoError(t, err)

	v.Tick(1)
	v.Tick(2)
	lights := v.Lights()
	assertVec4Near(t, mgl32.Vec4{1, 1, -1, 1}, lights[0].Position)
	assert.Equal(t, mgl32.Vec4{0, -1, 0, 0}, lights[1].Position)

	require.NoError(t, v.SetLights(lights[:1]))
	assert.Len(t, v.Lights(), 1)
	assert.Error(t, v.SetLights(make([]scene.Light, scene.MaxLights+1)))
}

func TestCameraForwarding(t *testing.T) {
	v, _ := newViewport(t, nil)
	start := v.Camera().Position

	v.Move(scene.MoveForward, 1)
	assert.InDelta(t, start.Z()-1, v.Camera().Position.Z(), 1e-5)
	v.Rotate(200, 0)
	assert.Equal(t, float32(89), v.Camera().Pitch)
	v.Zoom(100)
	assert.Equal(t, float32(1), v.Camera().FOV)
}

func TestDestroy(t *testing.T) {
	cfg := core.DefaultConfig()
	dev := gltest.NewDevice()
	v, err := NewViewport(dev, cfg)
	require.NoError(t, err)
	require.NoError(t, v.Init())

	v.Destroy()
	assert.Zero(t, dev.Buffers())
	assert.Zero(t, dev.VertexArrays())
	assert.Zero(t, dev.Textures())
	assert.Zero(t, dev.Programs())
	assert.Zero(t, dev.Shaders())
}

func TestModeStrings(t *testing.T) {
	for _, m := range []DisplayMode{DisplayFill, DisplayFillLines, DisplayWireframe} {
		got, err := ParseDisplayMode(m.String())
		require.NoError(t, err)
		assert.Equal(t, m, got)
	}
	for _, m := range []ShadingMode{ShadingPhong, ShadingGouraud} {
		got, err := ParseShadingMode(m.String())
		require.NoError(t, err)
		assert.Equal(t, m, got)
	}
	for _, m := range []TextureMode{TextureModeTexture, TextureModeColor} {
		got, err := ParseTextureMode(m.String())
		require.NoError(t, err)
		assert.Equal(t, m, got)
	}
	_, err := ParseTextureMode("shiny")
	assert.Error(t, err)
}
