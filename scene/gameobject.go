package scene

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"

	"model-viewer/core"
	"model-viewer/internal/logger"
	"model-viewer/shader"
)

// GameObject places a registry-owned mesh in the world and paints it with
// one shader program.
type GameObject struct {
	core.Transform

	registry *MeshRegistry
	mesh     MeshHandle
	program  *shader.Program
}

func NewGameObject(registry *MeshRegistry) *GameObject {
	return &GameObject{
		Transform: core.NewTransform(),
		registry:  registry,
	}
}

func (g *GameObject) SetMesh(h MeshHandle) { g.mesh = h }

// Mesh resolves the current handle. It returns nil when unset or stale.
func (g *GameObject) Mesh() *Mesh {
	if g.registry == nil {
		return nil
	}
	m, _ := g.registry.Get(g.mesh)
	return m
}

func (g *GameObject) MeshHandle() MeshHandle { return g.mesh }

func (g *GameObject) SetShaderProgram(p *shader.Program) { g.program = p }

func (g *GameObject) ShaderProgram() *shader.Program { return g.program }

func (g *GameObject) ModelMatrix() mgl32.Mat4 { return g.GetMatrix() }

// SetRotationEuler sets the orientation from angles in degrees, applied
// z first, then x, then y.
func (g *GameObject) SetRotationEuler(x, y, z float32) {
	qx := mgl32.QuatRotate(mgl32.DegToRad(x), mgl32.Vec3{1, 0, 0})
	qy := mgl32.QuatRotate(mgl32.DegToRad(y), mgl32.Vec3{0, 1, 0})
	qz := mgl32.QuatRotate(mgl32.DegToRad(z), mgl32.Vec3{0, 0, 1})
	g.Rotation = qy.Mul(qx).Mul(qz).Normalize()
}

// Rotate pre-multiplies the orientation by angle degrees about axis. A zero
// axis is ignored.
func (g *GameObject) Rotate(angle float32, axis mgl32.Vec3) {
	if axis.Len() == 0 {
		return
	}
	q := mgl32.QuatRotate(mgl32.DegToRad(-angle), axis.Normalize())
	g.Rotation = q.Mul(g.Rotation).Normalize()
}

// Reset restores the identity transform.
func (g *GameObject) Reset() { g.Transform = core.NewTransform() }

// Paint binds the program, uploads the model matrix and paints the mesh.
// Nothing is drawn when the mesh or program is unset.
func (g *GameObject) Paint(lights []Light) error {
	if g.program == nil || g.mesh.IsZero() {
		return nil
	}
	m := g.Mesh()
	if m == nil {
		logger.Log.Warn("GameObject mesh handle is stale, skipping paint",
			zap.Uint32("index", g.mesh.index), zap.Uint32("generation", g.mesh.generation))
		return nil
	}
	if !g.program.Bind() {
		if err := g.program.Err(); err != nil {
			return err
		}
		return fmt.Errorf("paint with unlinked program: %w", core.ErrLink)
	}
	if err := g.program.SetUniformMat4("model", g.ModelMatrix()); err != nil {
		return err
	}
	return m.Paint(g.program, lights)
}
