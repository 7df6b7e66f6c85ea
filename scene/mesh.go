package scene

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"

	"model-viewer/core"
	"model-viewer/internal/logger"
	"model-viewer/shader"
)

// Mesh is an ordered list of SubMeshes sharing one texture table.
// SubMeshes are drawn in insertion order.
type Mesh struct {
	subMeshes    []*SubMesh
	textures     []Texture
	textureIndex map[string]uint32
	directory    string

	// dev is the device the buffers were generated on.
	dev core.Device
}

// MeshStats summarises the loaded geometry.
type MeshStats struct {
	Vertices  int
	Triangles int
	SubMeshes int
	Textures  int
}

func NewMesh() *Mesh {
	return &Mesh{textureIndex: make(map[string]uint32)}
}

// LoadModelFromFile imports path and appends its geometry. Textures are
// resolved against the directory of path. On error the mesh is unchanged.
func (m *Mesh) LoadModelFromFile(path string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("model path %q: %w: %w", path, core.ErrIO, err)
	}
	if _, err := os.Stat(abs); err != nil {
		return fmt.Errorf("open model %q: %w: %w", path, core.ErrIO, err)
	}

	imported, err := ImportFile(abs, DefaultPostProcess)
	if err != nil {
		return err
	}
	if imported.Root == nil {
		return fmt.Errorf("model %q has no root node: %w", path, core.ErrImport)
	}

	m.directory = filepath.Dir(abs)
	before := len(m.subMeshes)
	m.processScene(imported)

	logger.Log.Info("Model loaded",
		zap.String("path", abs),
		zap.Int("submeshes", len(m.subMeshes)-before),
		zap.Int("textures", len(m.textures)))
	return nil
}

// processScene walks the node tree depth-first, a node's own meshes before
// its children.
func (m *Mesh) processScene(s *ImportedScene) {
	stack := []*ImportedNode{s.Root}
	for len(stack) > 0 {
		node := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		for _, mi := range node.Meshes {
			if mi < 0 || mi >= len(s.Meshes) {
				logger.Log.Warn("Node references missing mesh",
					zap.String("node", node.Name), zap.Int("mesh", mi))
				continue
			}
			m.subMeshes = append(m.subMeshes, m.processMesh(s.Meshes[mi], s))
		}
		for i := len(node.Children) - 1; i >= 0; i-- {
			stack = append(stack, node.Children[i])
		}
	}
}

func (m *Mesh) processMesh(im *ImportedMesh, s *ImportedScene) *SubMesh {
	vertices := make([]float32, 0, len(im.Positions)*core.VertexStride)
	for i, p := range im.Positions {
		var n mgl32.Vec3
		if i < len(im.Normals) {
			n = im.Normals[i]
		}
		var uv mgl32.Vec2
		if i < len(im.UVs) {
			uv = im.UVs[i]
		}
		vertices = append(vertices, p[0], p[1], p[2], n[0], n[1], n[2], uv[0], uv[1])
	}

	indices := make([]uint32, 0, len(im.Faces)*3)
	dropped := 0
	for _, f := range im.Faces {
		if len(f) != 3 {
			continue
		}
		if n := uint32(len(im.Positions)); f[0] >= n || f[1] >= n || f[2] >= n {
			dropped++
			continue
		}
		indices = append(indices, f...)
	}
	if dropped > 0 {
		logger.Log.Warn("Dropped faces with out-of-range indices",
			zap.String("mesh", im.Name), zap.Int("faces", dropped))
	}

	var texIndices []uint32
	if im.Material >= 0 && im.Material < len(s.Materials) {
		mat := s.Materials[im.Material]
		for _, ref := range mat.Diffuse {
			texIndices = append(texIndices, m.textureFor(ref, TextureDiffuse))
		}
		for _, ref := range mat.Specular {
			texIndices = append(texIndices, m.textureFor(ref, TextureSpecular))
		}
	}
	return NewSubMesh(vertices, indices, texIndices, core.VertexStride)
}

func (m *Mesh) textureFor(ref TextureRef, typ TextureType) uint32 {
	path := ref.Path
	if ref.Data == nil && !filepath.IsAbs(path) {
		path = filepath.Join(m.directory, path)
	}
	return m.AddTexture(Texture{Type: typ, Path: filepath.Clean(path), data: ref.Data})
}

// AddSubMesh appends a copy of s.
func (m *Mesh) AddSubMesh(s *SubMesh) {
	m.subMeshes = append(m.subMeshes, s.Clone())
}

// AddTexture appends t and returns its index. A texture whose path is
// already in the table is not added again; the existing index is returned.
func (m *Mesh) AddTexture(t Texture) uint32 {
	if m.textureIndex == nil {
		m.textureIndex = make(map[string]uint32)
	}
	if t.Path != "" {
		if idx, ok := m.textureIndex[t.Path]; ok {
			return idx
		}
	}
	idx := uint32(len(m.textures))
	t.ID = 0
	m.textures = append(m.textures, t)
	if t.Path != "" {
		m.textureIndex[t.Path] = idx
	}
	return idx
}

// GenBuffers uploads every submesh and texture to dev. Textures that cannot
// be decoded keep ID 0; their errors, wrapping core.ErrTextureDecode, are
// returned together after everything else is uploaded.
func (m *Mesh) GenBuffers(dev core.Device) error {
	m.DeleteBuffers()
	m.dev = dev

	for _, s := range m.subMeshes {
		s.upload(dev)
	}

	var errs []error
	for i := range m.textures {
		t := &m.textures[i]
		w, h, rgb, err := t.pixels()
		if err != nil {
			errs = append(errs, err)
			continue
		}
		t.ID = dev.UploadTexture2D(w, h, rgb)
		if t.ID == 0 {
			errs = append(errs, fmt.Errorf("upload texture %q: %w", t.Path, core.ErrTextureDecode))
		}
	}
	if err := errors.Join(errs...); err != nil {
		logger.Log.Warn("Some textures failed to load", zap.Error(err))
		return err
	}
	return nil
}

// DeleteBuffers frees every GPU handle and zeroes it. Safe to repeat.
func (m *Mesh) DeleteBuffers() {
	if m.dev == nil {
		return
	}
	for _, s := range m.subMeshes {
		s.release(m.dev)
	}
	for i := range m.textures {
		if m.textures[i].ID != 0 {
			m.dev.DeleteTexture(m.textures[i].ID)
		}
		m.textures[i].ID = 0
	}
}

// Clear releases GPU resources, then drops all CPU data.
func (m *Mesh) Clear() {
	m.DeleteBuffers()
	m.subMeshes = nil
	m.textures = nil
	m.textureIndex = make(map[string]uint32)
	m.directory = ""
}

// Paint uploads the light array to program, which must be bound, then draws
// every submesh with its textures on units 0..n.
func (m *Mesh) Paint(program *shader.Program, lights []Light) error {
	if len(lights) > MaxLights {
		return fmt.Errorf("%d lights exceeds the maximum of %d", len(lights), MaxLights)
	}
	if err := m.checkUploaded(); err != nil {
		return err
	}

	if err := program.SetUniform1i("numLights", int32(len(lights))); err != nil {
		return err
	}
	for i, l := range lights {
		if err := program.SetArrayUniformVec3("allLights", i, "intensity", l.Intensity); err != nil {
			return err
		}
		if err := program.SetArrayUniformVec4("allLights", i, "position", l.Position); err != nil {
			return err
		}
		if err := program.SetArrayUniform1f("allLights", i, "attenuation", l.Attenuation); err != nil {
			return err
		}
	}

	for si, s := range m.subMeshes {
		for unit, ti := range s.TexIndices {
			if int(ti) >= len(m.textures) {
				return fmt.Errorf("submesh %d: texture index %d out of range", si, ti)
			}
			t := m.textures[ti]
			m.dev.ActiveTexture(uint32(unit))
			if err := program.SetUniform1i(t.Type.SamplerName(), int32(unit)); err != nil {
				return err
			}
			m.dev.BindTexture2D(t.ID)
		}

		s.draw(m.dev)

		for unit := range s.TexIndices {
			m.dev.ActiveTexture(uint32(unit))
			m.dev.BindTexture2D(0)
		}
	}
	if m.dev != nil {
		m.dev.ActiveTexture(0)
	}
	return nil
}

// Draw issues the submesh draws only: no uniforms and no textures.
func (m *Mesh) Draw() error {
	if err := m.checkUploaded(); err != nil {
		return err
	}
	for _, s := range m.subMeshes {
		s.draw(m.dev)
	}
	return nil
}

func (m *Mesh) checkUploaded() error {
	for i, s := range m.subMeshes {
		if m.dev == nil || !s.Uploaded() {
			return fmt.Errorf("submesh %d: buffers not generated", i)
		}
	}
	return nil
}

func (m *Mesh) SubMeshes() []*SubMesh { return m.subMeshes }

func (m *Mesh) Textures() []Texture { return m.textures }

// Directory is the folder textures of the last loaded model resolve against.
func (m *Mesh) Directory() string { return m.directory }

func (m *Mesh) Empty() bool { return len(m.subMeshes) == 0 }

func (m *Mesh) Stats() MeshStats {
	st := MeshStats{SubMeshes: len(m.subMeshes), Textures: len(m.textures)}
	for _, s := range m.subMeshes {
		st.Vertices += s.VertexCount()
		st.Triangles += len(s.Indices) / 3
	}
	return st
}

// Bounds returns the box around every vertex position. ok is false for an
// empty mesh.
func (m *Mesh) Bounds() (b core.AABB, ok bool) {
	for _, s := range m.subMeshes {
		for i := 0; i+2 < len(s.Vertices) && s.Step > 0; i += s.Step {
			p := mgl32.Vec3{s.Vertices[i], s.Vertices[i+1], s.Vertices[i+2]}
			if !ok {
				b = core.AABB{Min: p, Max: p}
				ok = true
				continue
			}
			for k := 0; k < 3; k++ {
				b.Min[k] = min(b.Min[k], p[k])
				b.Max[k] = max(b.Max[k], p[k])
			}
		}
	}
	return b, ok
}
