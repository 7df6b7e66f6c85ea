package core

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
)

func TestFlattenVertices(t *testing.T) {
	out := FlattenVertices([]Vertex{
		{Position: mgl32.Vec3{1, 2, 3}, Normal: mgl32.Vec3{0, 1, 0}, UV: mgl32.Vec2{0.5, 1}},
		{Position: mgl32.Vec3{4, 5, 6}},
	})
	assert.Len(t, out, 2*VertexStride)
	assert.Equal(t, []float32{1, 2, 3, 0, 1, 0, 0.5, 1}, out[:VertexStride])
	assert.Equal(t, float32(4), out[VertexStride])
}

func TestTransformMatrixOrder(t *testing.T) {
	tr := NewTransform()
	assert.Equal(t, mgl32.Ident4(), tr.GetMatrix())

	tr.Position = mgl32.Vec3{1, 0, 0}
	tr.Scale = mgl32.Vec3{2, 2, 2}
	tr.Rotation = mgl32.QuatRotate(mgl32.DegToRad(90), mgl32.Vec3{0, 1, 0})

	// Rotate, then scale, then translate.
	got := tr.GetMatrix().Mul4x1(mgl32.Vec4{1, 0, 0, 1})
	assert.InDelta(t, 1, got.X(), 1e-5)
	assert.InDelta(t, 0, got.Y(), 1e-5)
	assert.InDelta(t, -2, got.Z(), 1e-5)
}

func TestAABB(t *testing.T) {
	b := AABB{Min: mgl32.Vec3{-1, 0, -2}, Max: mgl32.Vec3{1, 4, 2}}
	assert.Equal(t, mgl32.Vec3{0, 2, 0}, b.Center())
	assert.Equal(t, mgl32.Vec3{2, 4, 4}, b.Size())
	assert.Equal(t, mgl32.Vec3{1, 1, 1}, ColorWhite.Vec3())
}
