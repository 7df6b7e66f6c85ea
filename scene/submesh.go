package scene

import (
	"slices"

	"model-viewer/core"
)

// SubMesh is one drawable piece of a Mesh: interleaved vertices, a triangle
// index list and indices into the owning mesh's texture table.
type SubMesh struct {
	Vertices   []float32
	Indices    []uint32
	TexIndices []uint32
	// Step is the number of floats per vertex.
	Step int

	VAO, VBO, EBO uint32
}

func NewSubMesh(vertices []float32, indices, texIndices []uint32, step int) *SubMesh {
	if step <= 0 {
		step = core.VertexStride
	}
	return &SubMesh{
		Vertices:   vertices,
		Indices:    indices,
		TexIndices: texIndices,
		Step:       step,
	}
}

// Clone deep-copies the CPU data. GPU handles are not shared.
func (s *SubMesh) Clone() *SubMesh {
	return &SubMesh{
		Vertices:   slices.Clone(s.Vertices),
		Indices:    slices.Clone(s.Indices),
		TexIndices: slices.Clone(s.TexIndices),
		Step:       s.Step,
	}
}

func (s *SubMesh) VertexCount() int {
	if s.Step <= 0 {
		return 0
	}
	return len(s.Vertices) / s.Step
}

// Uploaded reports whether GenBuffers has run for this submesh.
func (s *SubMesh) Uploaded() bool { return s.VAO != 0 }

func (s *SubMesh) upload(dev core.Device) {
	step := s.Step
	if step <= 0 {
		step = core.VertexStride
	}

	s.VAO = dev.GenVertexArray()
	s.VBO = dev.GenBuffer()
	s.EBO = dev.GenBuffer()

	dev.BindVertexArray(s.VAO)
	dev.BindBuffer(core.ArrayBuffer, s.VBO)
	dev.BufferFloat32(core.ArrayBuffer, s.Vertices)
	dev.BindBuffer(core.ElementArrayBuffer, s.EBO)
	dev.BufferUint32(core.ElementArrayBuffer, s.Indices)

	// position, normal, uv
	dev.VertexAttribPointer(0, 3, step, 0)
	dev.VertexAttribPointer(1, 3, step, 3)
	dev.VertexAttribPointer(2, 2, step, 6)

	dev.BindVertexArray(0)
}

func (s *SubMesh) release(dev core.Device) {
	if s.VBO != 0 {
		dev.DeleteBuffer(s.VBO)
	}
	if s.EBO != 0 {
		dev.DeleteBuffer(s.EBO)
	}
	if s.VAO != 0 {
		dev.DeleteVertexArray(s.VAO)
	}
	s.VAO, s.VBO, s.EBO = 0, 0, 0
}

func (s *SubMesh) draw(dev core.Device) {
	dev.BindVertexArray(s.VAO)
	dev.DrawElements(int32(len(s.Indices)))
	dev.BindVertexArray(0)
}
