package core

import (
	"github.com/go-gl/mathgl/mgl32"
)

// VertexStride is the number of float32 values per interleaved vertex:
// position (3), normal (3), texture coordinate (2).
const VertexStride = 8

type Color struct {
	R float32 `yaml:"r"`
	G float32 `yaml:"g"`
	B float32 `yaml:"b"`
	A float32 `yaml:"a"`
}

var (
	ColorWhite = Color{1, 1, 1, 1}
	ColorBlack = Color{0, 0, 0, 1}
	// ColorSky is the viewer's default background (100, 100, 200).
	ColorSky = Color{100.0 / 255.0, 100.0 / 255.0, 200.0 / 255.0, 1}
)

func (c Color) Vec3() mgl32.Vec3 {
	return mgl32.Vec3{c.R, c.G, c.B}
}

// Vertex is laid out exactly as VertexStride consecutive float32 values.
type Vertex struct {
	Position mgl32.Vec3
	Normal   mgl32.Vec3
	UV       mgl32.Vec2
}

// FlattenVertices packs vertices into the interleaved float layout expected by
// the vertex buffer.
func FlattenVertices(vertices []Vertex) []float32 {
	out := make([]float32, 0, len(vertices)*VertexStride)
	for _, v := range vertices {
		out = append(out,
			v.Position[0], v.Position[1], v.Position[2],
			v.Normal[0], v.Normal[1], v.Normal[2],
			v.UV[0], v.UV[1],
		)
	}
	return out
}

// Transform is a position / scale / orientation triple.
type Transform struct {
	Position mgl32.Vec3
	Scale    mgl32.Vec3
	Rotation mgl32.Quat
}

func NewTransform() Transform {
	return Transform{
		Position: mgl32.Vec3{},
		Scale:    mgl32.Vec3{1, 1, 1},
		Rotation: mgl32.QuatIdent(),
	}
}

// GetMatrix returns translate(Position) * scale(Scale) * rotate(Rotation).
func (t Transform) GetMatrix() mgl32.Mat4 {
	translation := mgl32.Translate3D(t.Position[0], t.Position[1], t.Position[2])
	scale := mgl32.Scale3D(t.Scale[0], t.Scale[1], t.Scale[2])
	return translation.Mul4(scale).Mul4(t.Rotation.Mat4())
}

// AABB is an axis-aligned bounding box.
type AABB struct {
	Min, Max mgl32.Vec3
}

func (b AABB) Center() mgl32.Vec3 {
	return b.Min.Add(b.Max).Mul(0.5)
}

func (b AABB) Size() mgl32.Vec3 {
	return b.Max.Sub(b.Min)
}
