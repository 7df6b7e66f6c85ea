package renderer

import (
	"errors"
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"

	"model-viewer/core"
	"model-viewer/internal/logger"
	"model-viewer/scene"
	"model-viewer/shader"
)

const (
	lampScale         float32 = 0.2
	scaleSensitivity  float32 = 0.05
	lightOrbitDegPerS float32 = 30
	minModelScale     float32 = 1e-3
)

// Viewport owns everything drawn in the window: the camera, the lights, the
// current model and the shader programs. All methods must be called on the
// thread that owns the GL context.
type Viewport struct {
	dev core.Device
	cfg core.Config

	camera *scene.Camera
	lights []scene.Light
	// lightBase holds the configured positions Tick orbits around.
	lightBase []mgl32.Vec4

	registry *scene.MeshRegistry
	model    *scene.GameObject
	lamp     *scene.Mesh

	programs map[string]*shader.Program

	display DisplayMode
	shading ShadingMode
	texture TextureMode
	flat    bool

	width, height int

	transX, transY float32
	rotationY      float32
	scaler         float32

	elapsed float32
}

// NewViewport validates cfg and prepares CPU-side state. Nothing touches the
// device until Init.
func NewViewport(dev core.Device, cfg core.Config) (*Viewport, error) {
	display, err := ParseDisplayMode(cfg.Render.DisplayMode)
	if err != nil {
		return nil, err
	}
	shading, err := ParseShadingMode(cfg.Render.ShadingMode)
	if err != nil {
		return nil, err
	}
	texture := TextureModeColor
	if cfg.Render.Textured {
		texture = TextureModeTexture
	}
	lights, err := lightsFromConfig(cfg.Lights)
	if err != nil {
		return nil, err
	}

	v := &Viewport{
		dev:      dev,
		cfg:      cfg,
		camera:   scene.NewCameraFromConfig(cfg.Camera),
		lights:   lights,
		registry: scene.NewMeshRegistry(),
		programs: make(map[string]*shader.Program),
		display:  display,
		shading:  shading,
		texture:  texture,
		flat:     cfg.Render.Flat,
		width:    cfg.Window.Width,
		height:   cfg.Window.Height,
		scaler:   1,
	}
	v.model = scene.NewGameObject(v.registry)
	for _, l := range lights {
		v.lightBase = append(v.lightBase, l.Position)
	}
	return v, nil
}

func lightsFromConfig(cfgs []core.LightConfig) ([]scene.Light, error) {
	if len(cfgs) > scene.MaxLights {
		return nil, fmt.Errorf("%d lights configured, at most %d supported", len(cfgs), scene.MaxLights)
	}
	lights := make([]scene.Light, 0, len(cfgs))
	for i, lc := range cfgs {
		typ, err := scene.ParseLightType(lc.Type)
		if err != nil {
			return nil, fmt.Errorf("light %d: %w", i, err)
		}
		l := scene.NewLight()
		l.Type = typ
		l.SetColor(lc.Color[0], lc.Color[1], lc.Color[2])
		if typ == scene.LightDirectional {
			l.SetDirection(lc.Position[0], lc.Position[1], lc.Position[2])
			// The shaders branch on w, so directional lights upload their
			// direction in the position slot.
			l.Position = l.Direction
		} else {
			l.SetPosition(lc.Position[0], lc.Position[1], lc.Position[2])
		}
		lights = append(lights, l)
	}
	return lights, nil
}

// Init compiles the programs, enables depth testing and shows the built-in
// cube, or cfg.Model when set. A model that fails to load is logged and the
// cube stays.
func (v *Viewport) Init() error {
	programs, err := v.buildPrograms()
	if err != nil {
		return err
	}
	v.programs = programs

	v.dev.SetDepthTest(true)
	v.dev.Viewport(0, 0, int32(v.width), int32(v.height))

	v.lamp = scene.NewCubeMesh("", "")
	if err := v.lamp.GenBuffers(v.dev); err != nil {
		return fmt.Errorf("lamp mesh: %w", err)
	}

	cube := scene.NewCubeMesh(v.cfg.Render.CubeDiffuse, v.cfg.Render.CubeSpecular)
	if err := cube.GenBuffers(v.dev); err != nil {
		logger.Log.Warn("Built-in cube textures unavailable", zap.Error(err))
	}
	v.model.SetMesh(v.registry.Add(cube))

	if v.cfg.Model != "" {
		if err := v.OpenFile(v.cfg.Model); err != nil {
			logger.Log.Warn("Could not open startup model", zap.String("path", v.cfg.Model), zap.Error(err))
		}
	}
	logger.Log.Info("Viewport ready",
		zap.String("device", v.dev.Version()),
		zap.Stringer("display", v.display),
		zap.Stringer("shading", v.shading))
	return nil
}

// buildPrograms compiles every program or none: on error the ones already
// built are deleted.
func (v *Viewport) buildPrograms() (map[string]*shader.Program, error) {
	builtin := BuiltinSources()
	out := make(map[string]*shader.Program, len(builtin))
	for _, name := range []string{PhongProgram, GouraudProgram, LampProgram} {
		p, err := v.buildProgram(builtin[name])
		if err != nil {
			for _, built := range out {
				built.Delete()
			}
			return nil, err
		}
		out[name] = p
	}
	return out, nil
}

func (v *Viewport) buildProgram(src ProgramSource) (*shader.Program, error) {
	p := shader.NewProgram(v.dev)
	var ok bool
	if dir := v.cfg.Render.ShaderDir; dir != "" {
		vert, frag := ShaderFiles(dir, src.Name)
		ok = p.AddShaderFromFile(core.StageVertex, vert) &&
			p.AddShaderFromFile(core.StageFragment, frag)
	} else {
		ok = p.AddShaderFromSourceCode(core.StageVertex, src.Vertex) &&
			p.AddShaderFromSourceCode(core.StageFragment, src.Fragment)
	}
	if ok {
		ok = p.Link()
	}
	if !ok {
		err := p.Err()
		p.Delete()
		return nil, fmt.Errorf("%s program: %w", src.Name, err)
	}
	return p, nil
}

// ReloadShaders rebuilds every program. On failure the running programs are
// kept.
func (v *Viewport) ReloadShaders() error {
	programs, err := v.buildPrograms()
	if err != nil {
		logger.Log.Error("Shader reload failed", zap.Error(err))
		return err
	}
	for _, p := range v.programs {
		p.Delete()
	}
	v.programs = programs
	logger.Log.Info("Shaders reloaded")
	return nil
}

func (v *Viewport) Resize(width, height int) {
	v.width, v.height = width, height
	v.dev.Viewport(0, 0, int32(width), int32(height))
}

func (v *Viewport) aspect() float32 {
	if v.height <= 0 {
		return 1
	}
	return float32(v.width) / float32(v.height)
}

func (v *Viewport) projection() mgl32.Mat4 {
	return v.camera.ProjectionMatrix(v.aspect(), v.cfg.Camera.Near, v.cfg.Camera.Far)
}

// Paint draws one frame.
func (v *Viewport) Paint() error {
	v.dev.Clear(v.cfg.Render.ClearColor)

	view := v.camera.ViewMatrix()
	proj := v.projection()

	if v.cfg.Render.ShowLamps {
		if err := v.paintLamps(view, proj); err != nil {
			return err
		}
	}

	prog := v.programs[v.shading.programName()]
	if prog == nil || !prog.Bind() {
		return fmt.Errorf("%s program not ready: %w", v.shading, core.ErrLink)
	}
	defer prog.Release()

	v.applyModelTransform()
	v.model.SetShaderProgram(prog)

	err := errors.Join(
		prog.SetUniformMat4("view", view),
		prog.SetUniformMat4("view_inv", view.Inv()),
		prog.SetUniformMat4("projection", proj),
		prog.SetUniformVec3("ambientLight", v.cfg.Render.Ambient.Vec3()),
		prog.SetUniformBool("texture_flag", v.texture == TextureModeTexture),
		prog.SetUniformVec3("material.diffuse", mgl32.Vec3{1, 1, 1}),
		prog.SetUniformBool("flat_flag", v.flat),
	)
	if err != nil {
		return err
	}

	switch v.display {
	case DisplayFillLines:
		v.dev.SetPolygonMode(core.FaceFront, core.PolygonFill)
		if err := v.model.Paint(v.lights); err != nil {
			return err
		}
		err := errors.Join(
			prog.SetUniformBool("texture_flag", false),
			prog.SetUniformVec3("material.diffuse", mgl32.Vec3{}),
		)
		if err != nil {
			return err
		}
		v.dev.SetPolygonMode(core.FaceFront, core.PolygonLine)
		err = v.model.Paint(v.lights)
		v.dev.SetPolygonMode(core.FaceFrontAndBack, core.PolygonFill)
		return err
	case DisplayWireframe:
		v.dev.SetPolygonMode(core.FaceFrontAndBack, core.PolygonLine)
		err := v.model.Paint(v.lights)
		v.dev.SetPolygonMode(core.FaceFrontAndBack, core.PolygonFill)
		return err
	default:
		v.dev.SetPolygonMode(core.FaceFront, core.PolygonFill)
		return v.model.Paint(v.lights)
	}
}

// paintLamps draws a small cube at every point light.
func (v *Viewport) paintLamps(view, proj mgl32.Mat4) error {
	prog := v.programs[LampProgram]
	if prog == nil || !prog.Bind() {
		return fmt.Errorf("lamp program not ready: %w", core.ErrLink)
	}
	defer prog.Release()

	if err := errors.Join(
		prog.SetUniformMat4("projection", proj),
		prog.SetUniformMat4("view", view),
	); err != nil {
		return err
	}
	for _, l := range v.lights {
		if l.Position.W() == 0 {
			continue
		}
		pos := l.Position.Vec3()
		model := mgl32.Translate3D(pos[0], pos[1], pos[2]).Mul4(mgl32.Scale3D(lampScale, lampScale, lampScale))
		if err := errors.Join(
			prog.SetUniformMat4("model", model),
			prog.SetUniformVec3("lampColor", l.Intensity),
		); err != nil {
			return err
		}
		if err := v.lamp.Draw(); err != nil {
			return err
		}
	}
	return nil
}

func (v *Viewport) applyModelTransform() {
	v.model.Position = mgl32.Vec3{v.transX, v.transY, 0}
	v.model.Scale = mgl32.Vec3{v.scaler, v.scaler, v.scaler}
	v.model.SetRotationEuler(0, v.rotationY, 0)
}

// OpenFile replaces the model with the one at path. When loading fails the
// previous model stays. Texture decode errors are returned after the new
// model is in place.
func (v *Viewport) OpenFile(path string) error {
	m := scene.NewMesh()
	if err := m.LoadModelFromFile(path); err != nil {
		logger.Log.Error("Failed to open model", zap.String("path", path), zap.Error(err))
		return err
	}
	texErr := m.GenBuffers(v.dev)

	v.registry.Remove(v.model.MeshHandle())
	v.model.SetMesh(v.registry.Add(m))
	v.ResetModel()
	if b, ok := m.Bounds(); ok {
		v.camera.FrameBounds(b)
	}
	return texErr
}

// ResetModel undoes Translate, RotateModel and ScaleModel.
func (v *Viewport) ResetModel() {
	v.transX, v.transY = 0, 0
	v.rotationY = 0
	v.scaler = 1
	v.model.Reset()
}

func (v *Viewport) Move(dir scene.CameraMovement, dt float32) { v.camera.Move(dir, dt) }

func (v *Viewport) Rotate(pitchDelta, yawDelta float32) { v.camera.Rotate(pitchDelta, yawDelta) }

func (v *Viewport) Zoom(delta float32) { v.camera.Zoom(delta) }

func (v *Viewport) SetDisplayMode(m DisplayMode) { v.display = m }

func (v *Viewport) DisplayMode() DisplayMode { return v.display }

func (v *Viewport) SetShadingMode(m ShadingMode) { v.shading = m }

func (v *Viewport) ShadingMode() ShadingMode { return v.shading }

func (v *Viewport) SetFlat(flat bool) { v.flat = flat }

func (v *Viewport) Flat() bool { return v.flat }

func (v *Viewport) SetTextureMode(m TextureMode) { v.texture = m }

func (v *Viewport) TextureMode() TextureMode { return v.texture }

// Translate moves the model in the view plane by world units.
func (v *Viewport) Translate(dx, dy float32) {
	v.transX += dx
	v.transY += dy
}

// RotateModel turns the model about the world Y axis by deg degrees.
func (v *Viewport) RotateModel(deg float32) { v.rotationY += deg }

// ScaleModel applies wheel steps to the model scale; positive steps shrink.
func (v *Viewport) ScaleModel(steps float32) {
	v.scaler = max(minModelScale, v.scaler*(1-steps*scaleSensitivity))
}

// Tick advances the frame clock by dt seconds. With animated lights each
// point light orbits the Y axis from its configured position.
func (v *Viewport) Tick(dt float32) {
	v.elapsed += dt
	if !v.cfg.Render.AnimateLights {
		return
	}
	rot := mgl32.HomogRotate3DY(mgl32.DegToRad(v.elapsed * lightOrbitDegPerS))
	for i := range v.lights {
		if v.lights[i].Position.W() == 0 {
			continue
		}
		v.lights[i].Position = rot.Mul4x1(v.lightBase[i])
	}
}

func (v *Viewport) Camera() *scene.Camera { return v.camera }

// Lights returns a copy of the light list.
func (v *Viewport) Lights() []scene.Light {
	return append([]scene.Light(nil), v.lights...)
}

// SetLights replaces the light list; at most scene.MaxLights are accepted.
func (v *Viewport) SetLights(lights []scene.Light) error {
	if len(lights) > scene.MaxLights {
		return fmt.Errorf("%d lights exceeds the maximum of %d", len(lights), scene.MaxLights)
	}
	v.lights = append([]scene.Light(nil), lights...)
	v.lightBase = v.lightBase[:0]
	for _, l := range v.lights {
		v.lightBase = append(v.lightBase, l.Position)
	}
	return nil
}

// Model returns the game object that carries the current model.
func (v *Viewport) Model() *scene.GameObject { return v.model }

// Stats describes the current model.
func (v *Viewport) Stats() scene.MeshStats {
	if m := v.model.Mesh(); m != nil {
		return m.Stats()
	}
	return scene.MeshStats{}
}

// Destroy releases every GPU resource the viewport created.
func (v *Viewport) Destroy() {
	v.registry.Remove(v.model.MeshHandle())
	if v.lamp != nil {
		v.lamp.Clear()
	}
	for _, p := range v.programs {
		p.Delete()
	}
	v.programs = map[string]*shader.Program{}
}
