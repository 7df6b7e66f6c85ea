package scene

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/go-gl/mathgl/mgl32"

	"model-viewer/core"
)

// PostProcess selects the clean-up steps ImportFile runs after parsing.
type PostProcess uint

const (
	// Triangulate fans every polygon into triangles and drops points and
	// lines.
	Triangulate PostProcess = 1 << iota
	// FlipUVs maps v to 1-v, matching images stored top row first.
	FlipUVs
	// GenNormals computes smooth normals for meshes that have none.
	GenNormals

	DefaultPostProcess = Triangulate | FlipUVs | GenNormals
)

// ImportedScene is the format-independent result of an Importer.
type ImportedScene struct {
	Root      *ImportedNode
	Meshes    []*ImportedMesh
	Materials []*ImportedMaterial
}

type ImportedNode struct {
	Name     string
	Meshes   []int
	Children []*ImportedNode
}

// ImportedMesh holds per-vertex attributes and faces indexing them. UVs use
// a bottom-left origin until FlipUVs runs.
type ImportedMesh struct {
	Name      string
	Positions []mgl32.Vec3
	Normals   []mgl32.Vec3
	UVs       []mgl32.Vec2
	Faces     [][]uint32
	// Material indexes ImportedScene.Materials, -1 for none.
	Material int
}

type ImportedMaterial struct {
	Name     string
	Diffuse  []TextureRef
	Specular []TextureRef
}

// TextureRef names an image relative to the model directory, or carries the
// bytes of an image embedded in the model file.
type TextureRef struct {
	Path string
	Data []byte
}

// Importer parses one model file format.
type Importer interface {
	Import(path string) (*ImportedScene, error)
}

type ImporterFunc func(path string) (*ImportedScene, error)

func (f ImporterFunc) Import(path string) (*ImportedScene, error) { return f(path) }

var importers = map[string]Importer{
	".obj":  ImporterFunc(ImportOBJ),
	".gltf": ImporterFunc(ImportGLTF),
	".glb":  ImporterFunc(ImportGLTF),
	".dae":  ImporterFunc(ImportCollada),
}

// RegisterImporter adds or replaces the importer for a file extension such
// as ".ply".
func RegisterImporter(ext string, imp Importer) {
	importers[strings.ToLower(ext)] = imp
}

// ImporterFor picks an importer by the extension of path.
func ImporterFor(path string) (Importer, bool) {
	imp, ok := importers[strings.ToLower(filepath.Ext(path))]
	return imp, ok
}

// SupportedExtensions lists the registered extensions, sorted.
func SupportedExtensions() []string {
	exts := make([]string, 0, len(importers))
	for ext := range importers {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	return exts
}

// ImportFile parses path with the importer registered for its extension and
// applies flags.
func ImportFile(path string, flags PostProcess) (*ImportedScene, error) {
	imp, ok := ImporterFor(path)
	if !ok {
		return nil, fmt.Errorf("unsupported model format %q: %w", filepath.Ext(path), core.ErrImport)
	}
	s, err := imp.Import(path)
	if err != nil {
		return nil, err
	}
	s.postProcess(flags)
	return s, nil
}

func (s *ImportedScene) postProcess(flags PostProcess) {
	for _, m := range s.Meshes {
		if flags&Triangulate != 0 {
			m.triangulate()
		}
		if flags&FlipUVs != 0 {
			for i := range m.UVs {
				m.UVs[i][1] = 1 - m.UVs[i][1]
			}
		}
		if flags&GenNormals != 0 && len(m.Normals) == 0 {
			m.generateNormals()
		}
	}
}

func (m *ImportedMesh) triangulate() {
	out := make([][]uint32, 0, len(m.Faces))
	for _, f := range m.Faces {
		if len(f) < 3 {
			continue
		}
		for i := 1; i+1 < len(f); i++ {
			out = append(out, []uint32{f[0], f[i], f[i+1]})
		}
	}
	m.Faces = out
}

// generateNormals accumulates area-weighted face normals per vertex.
func (m *ImportedMesh) generateNormals() {
	accum := make([]mgl32.Vec3, len(m.Positions))
	valid := func(i uint32) bool { return int(i) < len(m.Positions) }

	for _, f := range m.Faces {
		if len(f) < 3 || !valid(f[0]) {
			continue
		}
		for i := 1; i+1 < len(f); i++ {
			i0, i1, i2 := f[0], f[i], f[i+1]
			if !valid(i1) || !valid(i2) {
				continue
			}
			p0 := m.Positions[i0]
			n := m.Positions[i1].Sub(p0).Cross(m.Positions[i2].Sub(p0))
			accum[i0] = accum[i0].Add(n)
			accum[i1] = accum[i1].Add(n)
			accum[i2] = accum[i2].Add(n)
		}
	}
	for i, n := range accum {
		if n.Len() > 0 {
			accum[i] = n.Normalize()
		} else {
			accum[i] = mgl32.Vec3{0, 1, 0}
		}
	}
	m.Normals = accum
}
