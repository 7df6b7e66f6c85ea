package scene

import (
	"github.com/go-gl/mathgl/mgl32"

	"model-viewer/core"
)

// cubeFaces lists each face as normal, u axis, v axis.
var cubeFaces = [6][3]mgl32.Vec3{
	{{0, 0, 1}, {1, 0, 0}, {0, 1, 0}},
	{{0, 0, -1}, {-1, 0, 0}, {0, 1, 0}},
	{{1, 0, 0}, {0, 0, -1}, {0, 1, 0}},
	{{-1, 0, 0}, {0, 0, 1}, {0, 1, 0}},
	{{0, 1, 0}, {1, 0, 0}, {0, 0, -1}},
	{{0, -1, 0}, {1, 0, 0}, {0, 0, 1}},
}

// Two counter-clockwise triangles per face in (s, t) corner coordinates.
var faceCorners = [6]mgl32.Vec2{{0, 0}, {1, 0}, {1, 1}, {1, 1}, {0, 1}, {0, 0}}

// CreateCube returns a unit cube centred on the origin as 36 unshared
// vertices, so every face carries its own normal and full 0..1 UV square.
func CreateCube() *SubMesh {
	vertices := make([]core.Vertex, 0, 36)
	for _, f := range cubeFaces {
		n, u, v := f[0], f[1], f[2]
		for _, c := range faceCorners {
			p := n.Mul(0.5).Add(u.Mul(c[0] - 0.5)).Add(v.Mul(c[1] - 0.5))
			vertices = append(vertices, core.Vertex{Position: p, Normal: n, UV: c})
		}
	}
	indices := make([]uint32, len(vertices))
	for i := range indices {
		indices[i] = uint32(i)
	}
	return NewSubMesh(core.FlattenVertices(vertices), indices, nil, core.VertexStride)
}

// NewCubeMesh builds the default cube model. Empty paths add no texture.
func NewCubeMesh(diffuse, specular string) *Mesh {
	m := NewMesh()
	cube := CreateCube()
	if diffuse != "" {
		cube.TexIndices = append(cube.TexIndices, m.AddTexture(Texture{Type: TextureDiffuse, Path: diffuse}))
	}
	if specular != "" {
		cube.TexIndices = append(cube.TexIndices, m.AddTexture(Texture{Type: TextureSpecular, Path: specular}))
	}
	m.AddSubMesh(cube)
	return m
}
