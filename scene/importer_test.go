package scene

import (
	"bytes"
	"encoding/base64"
	"encoding/binary"
	"fmt"
	"image/color"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"model-viewer/core"
)

func TestPostProcess(t *testing.T) {
	newScene := func() *ImportedScene {
		return &ImportedScene{Meshes: []*ImportedMesh{{
			Positions: []mgl32.Vec3{{0, 0, 0}, {1, 0, 0}, {1, 1, 0}, {0, 1, 0}},
			UVs:       []mgl32.Vec2{{0, 0}, {1, 0}, {1, 0.25}, {0, 1}},
			Faces:     [][]uint32{{0, 1, 2, 3}, {0, 1}},
			Material:  -1,
		}}}
	}

	s := newScene()
	s.postProcess(DefaultPostProcess)
	m := s.Meshes[0]
	assert.Equal(t, [][]uint32{{0, 1, 2}, {0, 2, 3}}, m.Faces)
	assert.Equal(t, float32(0.75), m.UVs[2][1])
	require.Len(t, m.Normals, 4)
	for _, n := range m.Normals {
		assertVec3Near(t, mgl32.Vec3{0, 0, 1}, n)
	}

	s = newScene()
	s.postProcess(0)
	assert.Len(t, s.Meshes[0].Faces, 2)
	assert.Nil(t, s.Meshes[0].Normals)
	assert.Equal(t, float32(0.25), s.Meshes[0].UVs[2][1])
}

func TestGenerateNormalsKeepsExisting(t *testing.T) {
	m := &ImportedMesh{
		Positions: []mgl32.Vec3{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}},
		Normals:   []mgl32.Vec3{{1, 0, 0}, {1, 0, 0}, {1, 0, 0}},
		Faces:     [][]uint32{{0, 1, 2}},
	}
	(&ImportedScene{Meshes: []*ImportedMesh{m}}).postProcess(GenNormals)
	assert.Equal(t, mgl32.Vec3{1, 0, 0}, m.Normals[0])
}

func TestImporterRegistry(t *testing.T) {
	assert.Equal(t, []string{".dae", ".glb", ".gltf", ".obj"}, SupportedExtensions())

	_, ok := ImporterFor("MODEL.OBJ")
	assert.True(t, ok)
	_, ok = ImporterFor("model.ply")
	assert.False(t, ok)

	called := ""
	RegisterImporter(".PLY", ImporterFunc(func(path string) (*ImportedScene, error) {
		called = path
		return &ImportedScene{Root: &ImportedNode{}}, nil
	}))
	t.Cleanup(func() { delete(importers, ".ply") })

	s, err := ImportFile("model.ply", DefaultPostProcess)
	require.NoError(t, err)
	assert.NotNil(t, s.Root)
	assert.Equal(t, "model.ply", called)
}

func TestImportOBJGroupsAndMaterials(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "two.mtl", "newmtl red\nmap_Kd -s 1 1 1 textures\\red.png\nnewmtl blue\nmap_Ks blue.png\n")
	path := writeFile(t, dir, "two.obj", `mtllib two.mtl
mtllib missing.mtl
v 0 0 0
v 1 0 0
v 0 1 0
v 1 1 0
g left
usemtl red
f 1 2 3
usemtl blue
f -3 -1 -2
g right
f 2 4 3
`)

	s, err := ImportOBJ(path)
	require.NoError(t, err)
	require.Len(t, s.Meshes, 3)
	require.Len(t, s.Root.Children, 3)
	assert.Equal(t, "left", s.Root.Children[0].Name)
	assert.Equal(t, "left", s.Root.Children[1].Name)
	assert.Equal(t, "right", s.Root.Children[2].Name)

	require.Len(t, s.Materials, 2)
	assert.Equal(t, filepath.Join("textures", "red.png"), s.Materials[0].Diffuse[0].Path)
	assert.Equal(t, "blue.png", s.Materials[1].Specular[0].Path)
	assert.Equal(t, 0, s.Meshes[0].Material)
	assert.Equal(t, 1, s.Meshes[1].Material)
	assert.Equal(t, 1, s.Meshes[2].Material, "material carries over into the next group")

	// Negative indices count back from the last vertex.
	m := s.Meshes[1]
	assert.Equal(t, []mgl32.Vec3{{1, 0, 0}, {1, 1, 0}, {0, 1, 0}}, m.Positions)
	assert.Nil(t, m.Normals)
	assert.Nil(t, m.UVs)
}

func TestParseFaceVertex(t *testing.T) {
	tests := []struct {
		tok     string
		want    objVertex
		wantErr bool
	}{
		{"1", objVertex{0, -1, -1}, false},
		{"2/3", objVertex{1, 2, -1}, false},
		{"2//4", objVertex{1, -1, 3}, false},
		{"3/1/2", objVertex{2, 0, 1}, false},
		{"-1/-1/-1", objVertex{3, 3, 3}, false},
		{"0", objVertex{}, true},
		{"5", objVertex{}, true},
		{"x/1", objVertex{}, true},
	}
	for _, tt := range tests {
		t.Run(tt.tok, func(t *testing.T) {
			got, err := parseFaceVertex(tt.tok, 4, 4, 4)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

const quadDAE = `<?xml version="1.0" encoding="utf-8"?>
<COLLADA xmlns="http://www.collada.org/2005/11/COLLADASchema" version="1.4.1">
  <library_images>
    <image id="tex-image"><init_from>file://tiles%20a.png</init_from></image>
  </library_images>
  <library_effects>
    <effect id="mat-effect">
      <profile_COMMON>
        <newparam sid="tex-surface"><surface type="2D"><init_from>tex-image</init_from></surface></newparam>
        <newparam sid="tex-sampler"><sampler2D><source>tex-surface</source></sampler2D></newparam>
        <technique sid="common">
          <phong><diffuse><texture texture="tex-sampler" texcoord="UVMap"/></diffuse></phong>
        </technique>
      </profile_COMMON>
    </effect>
  </library_effects>
  <library_materials>
    <material id="mat-material" name="mat"><instance_effect url="#mat-effect"/></material>
  </library_materials>
  <library_geometries>
    <geometry id="quad-mesh" name="quad">
      <mesh>
        <source id="quad-pos">
          <float_array id="quad-pos-array" count="12">-1 -1 0 1 -1 0 1 1 0 -1 1 0</float_array>
          <technique_common><accessor source="#quad-pos-array" count="4" stride="3"/></technique_common>
        </source>
        <source id="quad-norm">
          <float_array id="quad-norm-array" count="3">0 0 1</float_array>
          <technique_common><accessor source="#quad-norm-array" count="1" stride="3"/></technique_common>
        </source>
        <source id="quad-uv">
          <float_array id="quad-uv-array" count="8">0 0 1 0 1 1 0 1</float_array>
          <technique_common><accessor source="#quad-uv-array" count="4" stride="2"/></technique_common>
        </source>
        <vertices id="quad-verts"><input semantic="POSITION" source="#quad-pos"/></vertices>
        <polylist material="mat" count="1">
          <input semantic="VERTEX" source="#quad-verts" offset="0"/>
          <input semantic="NORMAL" source="#quad-norm" offset="1"/>
          <input semantic="TEXCOORD" source="#quad-uv" offset="2" set="0"/>
          <vcount>4</vcount>
          <p>0 0 0 1 0 1 2 0 2 3 0 3</p>
        </polylist>
      </mesh>
    </geometry>
  </library_geometries>
  <library_visual_scenes>
    <visual_scene id="Scene">
      <node id="Parent" name="Parent">
        <node id="Quad" name="Quad">
          <instance_geometry url="#quad-mesh">
            <bind_material><technique_common>
              <instance_material symbol="mat" target="#mat-material"/>
            </technique_common></bind_material>
          </instance_geometry>
        </node>
      </node>
    </visual_scene>
  </library_visual_scenes>
  <scene><instance_visual_scene url="#Scene"/></scene>
</COLLADA>
`

func TestImportCollada(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "quad.dae", quadDAE)

	s, err := ImportFile(path, DefaultPostProcess)
	require.NoError(t, err)

	require.Len(t, s.Root.Children, 1)
	parent := s.Root.Children[0]
	assert.Equal(t, "Parent", parent.Name)
	assert.Empty(t, parent.Meshes)
	require.Len(t, parent.Children, 1)
	assert.Equal(t, "Quad", parent.Children[0].Name)
	assert.Equal(t, []int{0}, parent.Children[0].Meshes)

	require.Len(t, s.Meshes, 1)
	m := s.Meshes[0]
	assert.Len(t, m.Positions, 4)
	assert.Len(t, m.Normals, 4)
	assert.Len(t, m.UVs, 4)
	assert.Equal(t, [][]uint32{{0, 1, 2}, {0, 2, 3}}, m.Faces)
	assert.Equal(t, mgl32.Vec2{1, 0}, m.UVs[2], "v is flipped")

	require.Equal(t, 0, m.Material)
	require.Len(t, s.Materials[0].Diffuse, 1)
	assert.Equal(t, "tiles a.png", s.Materials[0].Diffuse[0].Path)
	assert.Empty(t, s.Materials[0].Specular)
}

func TestLoadColladaIntoMesh(t *testing.T) {
	dir := t.TempDir()
	writePNG(t, dir, "tiles a.png", 2, 2, color.RGBA{G: 255, A: 255})
	path := writeFile(t, dir, "quad.dae", quadDAE)

	mesh := NewMesh()
	require.NoError(t, mesh.LoadModelFromFile(path))
	assert.Equal(t, MeshStats{Vertices: 4, Triangles: 2, SubMeshes: 1, Textures: 1}, mesh.Stats())
	assert.Equal(t, filepath.Join(dir, "tiles a.png"), mesh.Textures()[0].Path)
}

func TestImportColladaErrors(t *testing.T) {
	dir := t.TempDir()

	_, err := ImportCollada(filepath.Join(dir, "missing.dae"))
	assert.ErrorIs(t, err, core.ErrIO)

	_, err = ImportCollada(writeFile(t, dir, "broken.dae", "<COLLADA><library_geometries>"))
	assert.ErrorIs(t, err, core.ErrImport)

	_, err = ImportCollada(writeFile(t, dir, "empty.dae", `<COLLADA><library_visual_scenes><visual_scene id="s"/></library_visual_scenes></COLLADA>`))
	assert.ErrorIs(t, err, core.ErrImport)

	malformed := []struct {
		name     string
		old, new string
	}{
		{"negative vcount", "<vcount>4</vcount>", "<vcount>-1</vcount>"},
		{"degenerate vcount", "<vcount>4</vcount>", "<vcount>2 2</vcount>"},
		{"negative offset", `source="#quad-norm" offset="1"`, `source="#quad-norm" offset="-3"`},
		{"short index list", "<p>0 0 0 1 0 1 2 0 2 3 0 3</p>", "<p>0 0 0 1 0 1</p>"},
	}
	for _, tt := range malformed {
		t.Run(tt.name, func(t *testing.T) {
			src := strings.Replace(quadDAE, tt.old, tt.new, 1)
			require.NotEqual(t, quadDAE, src)
			_, err := ImportCollada(writeFile(t, t.TempDir(), "bad.dae", src))
			assert.ErrorIs(t, err, core.ErrImport)
		})
	}
}

// triangleGLTF returns a one-triangle glTF document with its buffer and a
// 1x1 PNG base colour texture embedded as data URIs.
func triangleGLTF(t *testing.T) string {
	t.Helper()
	var buf bytes.Buffer
	for _, v := range []float32{0, 0, 0, 1, 0, 0, 0, 1, 0} {
		require.NoError(t, binary.Write(&buf, binary.LittleEndian, v))
	}
	for _, v := range []float32{0, 0, 1, 0, 0, 1} {
		require.NoError(t, binary.Write(&buf, binary.LittleEndian, v))
	}
	data := base64.StdEncoding.EncodeToString(buf.Bytes())

	png, err := os.ReadFile(writePNG(t, t.TempDir(), "px.png", 1, 1, color.RGBA{B: 255, A: 255}))
	require.NoError(t, err)
	imgData := base64.StdEncoding.EncodeToString(png)

	return fmt.Sprintf(`{
  "asset": {"version": "2.0"},
  "scene": 0,
  "scenes": [{"nodes": [0]}],
  "nodes": [{"name": "root", "children": [1]}, {"name": "tri", "mesh": 0}],
  "meshes": [{"name": "tri", "primitives": [{"attributes": {"POSITION": 0, "TEXCOORD_0": 1}, "material": 0}]}],
  "materials": [{"name": "blue", "pbrMetallicRoughness": {"baseColorTexture": {"index": 0}}}],
  "textures": [{"source": 0}],
  "images": [{"name": "px", "uri": "data:image/png;base64,%s"}],
  "accessors": [
    {"bufferView": 0, "componentType": 5126, "count": 3, "type": "VEC3", "min": [0, 0, 0], "max": [1, 1, 0]},
    {"bufferView": 1, "componentType": 5126, "count": 3, "type": "VEC2"}
  ],
  "bufferViews": [
    {"buffer": 0, "byteOffset": 0, "byteLength": 36},
    {"buffer": 0, "byteOffset": 36, "byteLength": 24}
  ],
  "buffers": [{"byteLength": 60, "uri": "data:application/octet-stream;base64,%s"}]
}`, imgData, data)
}

func TestImportGLTF(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "tri.gltf", triangleGLTF(t))

	s, err := ImportFile(path, DefaultPostProcess)
	require.NoError(t, err)

	require.Len(t, s.Root.Children, 1)
	root := s.Root.Children[0]
	assert.Equal(t, "root", root.Name)
	require.Len(t, root.Children, 1)
	assert.Equal(t, []int{0}, root.Children[0].Meshes)

	require.Len(t, s.Meshes, 1)
	m := s.Meshes[0]
	assert.Len(t, m.Positions, 3)
	assert.Equal(t, [][]uint32{{0, 1, 2}}, m.Faces)
	assert.Len(t, m.Normals, 3, "normals are generated")
	assert.Equal(t, mgl32.Vec2{0, 1}, m.UVs[2], "texture coordinates keep their top-left origin")

	require.Len(t, s.Materials, 1)
	require.Len(t, s.Materials[0].Diffuse, 1)
	ref := s.Materials[0].Diffuse[0]
	assert.NotEmpty(t, ref.Data)
	assert.Equal(t, path+"#px", ref.Path)

	mesh := NewMesh()
	require.NoError(t, mesh.LoadModelFromFile(path))
	require.Len(t, mesh.Textures(), 1)
	w, h, rgb, err := mesh.Textures()[0].pixels()
	require.NoError(t, err)
	assert.Equal(t, []int{1, 1}, []int{w, h})
	assert.Equal(t, []byte{0, 0, 255}, rgb)
}

// indexedGLTF returns a one-primitive glTF whose POSITION and index accessor
// references and index values are supplied by the caller.
func indexedGLTF(t *testing.T, posAccessor int, indices [3]uint16) string {
	t.Helper()
	var buf bytes.Buffer
	for _, v := range []float32{0, 0, 0, 1, 0, 0, 0, 1, 0} {
		require.NoError(t, binary.Write(&buf, binary.LittleEndian, v))
	}
	require.NoError(t, binary.Write(&buf, binary.LittleEndian, indices))
	data := base64.StdEncoding.EncodeToString(buf.Bytes())

	return fmt.Sprintf(`{
  "asset": {"version": "2.0"},
  "meshes": [{"primitives": [{"attributes": {"POSITION": %d, "NORMAL": 9}, "indices": 1}]}],
  "accessors": [
    {"bufferView": 0, "componentType": 5126, "count": 3, "type": "VEC3", "min": [0, 0, 0], "max": [1, 1, 0]},
    {"bufferView": 1, "componentType": 5123, "count": 3, "type": "SCALAR"}
  ],
  "bufferViews": [
    {"buffer": 0, "byteOffset": 0, "byteLength": 36},
    {"buffer": 0, "byteOffset": 36, "byteLength": 6}
  ],
  "buffers": [{"byteLength": 42, "uri": "data:application/octet-stream;base64,%s"}]
}`, posAccessor, data)
}

func TestImportGLTFRejectsBadReferences(t *testing.T) {
	tests := []struct {
		name        string
		posAccessor int
		indices     [3]uint16
		wantMeshes  int
	}{
		{"valid", 0, [3]uint16{0, 1, 2}, 1},
		{"position accessor out of range", 5, [3]uint16{0, 1, 2}, 0},
		{"negative position accessor", -1, [3]uint16{0, 1, 2}, 0},
		{"index past vertex count", 0, [3]uint16{0, 1, 7}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeFile(t, t.TempDir(), "tri.gltf", indexedGLTF(t, tt.posAccessor, tt.indices))
			var s *ImportedScene
			require.NotPanics(t, func() {
				var err error
				s, err = ImportGLTF(path)
				require.NoError(t, err)
			})
			require.Len(t, s.Meshes, tt.wantMeshes)
			if tt.wantMeshes > 0 {
				assert.Empty(t, s.Meshes[0].Normals, "bad NORMAL accessor is ignored")
				assert.Equal(t, [][]uint32{{0, 1, 2}}, s.Meshes[0].Faces)
			}
		})
	}
}
