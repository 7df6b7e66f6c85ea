package scene

import (
	"encoding/json"
	"fmt"
	"net/url"
	"path/filepath"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"
	"go.uber.org/zap"

	"model-viewer/core"
	"model-viewer/internal/logger"
)

// ImportGLTF opens a .gltf or .glb file. Each triangle primitive becomes one
// mesh; the base colour texture is the diffuse map and the
// KHR_materials_specular colour texture, when present, the specular map.
// Node transforms are not applied.
func ImportGLTF(path string) (*ImportedScene, error) {
	doc, err := gltf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("gltf open %q: %w: %w", path, core.ErrImport, err)
	}
	scene := &ImportedScene{}

	// 1. Images
	images := make([]*TextureRef, len(doc.Images))
	for i, img := range doc.Images {
		ref, err := gltfImageRef(doc, path, i, img)
		if err != nil {
			logger.Log.Warn("Skipping gltf image", zap.Int("image", i), zap.Error(err))
			continue
		}
		images[i] = ref
	}
	textureRef := func(texIdx int) (TextureRef, bool) {
		if texIdx < 0 || texIdx >= len(doc.Textures) {
			return TextureRef{}, false
		}
		src := doc.Textures[texIdx].Source
		if src == nil || *src >= len(images) || images[*src] == nil {
			return TextureRef{}, false
		}
		return *images[*src], true
	}

	// 2. Materials
	for i, gm := range doc.Materials {
		mat := &ImportedMaterial{Name: gm.Name}
		if mat.Name == "" {
			mat.Name = fmt.Sprintf("material_%d", i)
		}
		if pbr := gm.PBRMetallicRoughness; pbr != nil && pbr.BaseColorTexture != nil {
			if ref, ok := textureRef(pbr.BaseColorTexture.Index); ok {
				mat.Diffuse = append(mat.Diffuse, ref)
			}
		}
		if idx, ok := gltfSpecularTexture(gm); ok {
			if ref, ok := textureRef(idx); ok {
				mat.Specular = append(mat.Specular, ref)
			}
		}
		scene.Materials = append(scene.Materials, mat)
	}

	// 3. Mesh primitives
	meshPrims := make([][]int, len(doc.Meshes))
	for mi, gm := range doc.Meshes {
		for pi, prim := range gm.Primitives {
			if prim.Mode != gltf.PrimitiveTriangles {
				continue
			}
			m, err := loadGLTFPrimitive(doc, gm.Name, pi, prim)
			if err != nil {
				logger.Log.Warn("Skipping gltf primitive",
					zap.Int("mesh", mi), zap.Int("primitive", pi), zap.Error(err))
				continue
			}
			meshPrims[mi] = append(meshPrims[mi], len(scene.Meshes))
			scene.Meshes = append(scene.Meshes, m)
		}
	}

	// 4. Nodes
	nodes := make([]*ImportedNode, len(doc.Nodes))
	for i, gn := range doc.Nodes {
		name := gn.Name
		if name == "" {
			name = fmt.Sprintf("node_%d", i)
		}
		n := &ImportedNode{Name: name}
		if gn.Mesh != nil && *gn.Mesh < len(meshPrims) {
			n.Meshes = append(n.Meshes, meshPrims[*gn.Mesh]...)
		}
		nodes[i] = n
	}
	hasParent := make([]bool, len(nodes))
	for i, gn := range doc.Nodes {
		for _, c := range gn.Children {
			// A node may have one parent; extra references would form a
			// DAG or a cycle.
			if c < len(nodes) && !hasParent[c] && c != i {
				hasParent[c] = true
				nodes[i].Children = append(nodes[i].Children, nodes[c])
			}
		}
	}

	// 5. Root
	scene.Root = &ImportedNode{Name: filepath.Base(path)}
	if doc.Scene != nil && *doc.Scene < len(doc.Scenes) {
		for _, idx := range doc.Scenes[*doc.Scene].Nodes {
			if idx < len(nodes) && !hasParent[idx] {
				scene.Root.Children = append(scene.Root.Children, nodes[idx])
			}
		}
	} else {
		for i, n := range nodes {
			if !hasParent[i] {
				scene.Root.Children = append(scene.Root.Children, n)
			}
		}
	}
	if len(doc.Nodes) == 0 {
		// Loose meshes without a node tree.
		for i := range scene.Meshes {
			scene.Root.Meshes = append(scene.Root.Meshes, i)
		}
	}
	if detectCycle(scene.Root) {
		return nil, fmt.Errorf("gltf %q: node hierarchy has a cycle: %w", path, core.ErrImport)
	}
	return scene, nil
}

func gltfImageRef(doc *gltf.Document, path string, i int, img *gltf.Image) (*TextureRef, error) {
	switch {
	case img.BufferView != nil:
		if *img.BufferView >= len(doc.BufferViews) {
			return nil, fmt.Errorf("buffer view %d out of range", *img.BufferView)
		}
		raw, err := modeler.ReadBufferView(doc, doc.BufferViews[*img.BufferView])
		if err != nil {
			return nil, fmt.Errorf("buffer view: %w", err)
		}
		return &TextureRef{Path: embeddedName(path, i, img.Name), Data: raw}, nil
	case img.IsEmbeddedResource():
		raw, err := img.MarshalData()
		if err != nil {
			return nil, fmt.Errorf("data uri: %w", err)
		}
		return &TextureRef{Path: embeddedName(path, i, img.Name), Data: raw}, nil
	case img.URI != "":
		p, err := url.PathUnescape(img.URI)
		if err != nil {
			p = img.URI
		}
		return &TextureRef{Path: filepath.FromSlash(p)}, nil
	}
	return nil, fmt.Errorf("image has no source")
}

func embeddedName(path string, i int, name string) string {
	if name == "" {
		name = fmt.Sprintf("image%d", i)
	}
	return fmt.Sprintf("%s#%s", path, name)
}

// gltfSpecularTexture reads specularColorTexture from the
// KHR_materials_specular extension, which the library leaves as raw JSON.
func gltfSpecularTexture(gm *gltf.Material) (int, bool) {
	ext, ok := gm.Extensions["KHR_materials_specular"]
	if !ok {
		return 0, false
	}
	var spec struct {
		SpecularColorTexture *struct {
			Index int `json:"index"`
		} `json:"specularColorTexture"`
	}
	if err := decodeExtension(ext, &spec); err != nil || spec.SpecularColorTexture == nil {
		return 0, false
	}
	return spec.SpecularColorTexture.Index, true
}

func decodeExtension(ext any, v any) error {
	raw, ok := ext.(json.RawMessage)
	if !ok {
		var err error
		if raw, err = json.Marshal(ext); err != nil {
			return err
		}
	}
	return json.Unmarshal(raw, v)
}

// loadGLTFPrimitive converts one primitive. glTF texture coordinates have a
// top-left origin and are flipped to bottom-left here.
func loadGLTFPrimitive(doc *gltf.Document, meshName string, primIdx int, prim *gltf.Primitive) (*ImportedMesh, error) {
	name := fmt.Sprintf("%s_p%d", meshName, primIdx)
	if meshName == "" {
		name = fmt.Sprintf("prim_%d", primIdx)
	}

	posIdx, ok := prim.Attributes[gltf.POSITION]
	if !ok {
		return nil, fmt.Errorf("no POSITION attribute")
	}
	posAcc, err := gltfAccessor(doc, posIdx)
	if err != nil {
		return nil, fmt.Errorf("positions: %w", err)
	}
	positions, err := modeler.ReadPosition(doc, posAcc, nil)
	if err != nil {
		return nil, fmt.Errorf("positions: %w", err)
	}

	m := &ImportedMesh{Name: name, Material: -1}
	m.Positions = make([]mgl32.Vec3, len(positions))
	for i, p := range positions {
		m.Positions[i] = mgl32.Vec3(p)
	}

	if acc := gltfAttribute(doc, prim, gltf.NORMAL); acc != nil {
		normals, err := modeler.ReadNormal(doc, acc, nil)
		if err == nil && len(normals) == len(positions) {
			m.Normals = make([]mgl32.Vec3, len(normals))
			for i, n := range normals {
				m.Normals[i] = mgl32.Vec3(n)
			}
		}
	}
	if acc := gltfAttribute(doc, prim, gltf.TEXCOORD_0); acc != nil {
		uvs, err := modeler.ReadTextureCoord(doc, acc, nil)
		if err == nil && len(uvs) == len(positions) {
			m.UVs = make([]mgl32.Vec2, len(uvs))
			for i, uv := range uvs {
				m.UVs[i] = mgl32.Vec2{uv[0], 1 - uv[1]}
			}
		}
	}

	var indices []uint32
	if prim.Indices != nil {
		acc, err := gltfAccessor(doc, *prim.Indices)
		if err != nil {
			return nil, fmt.Errorf("indices: %w", err)
		}
		if indices, err = modeler.ReadIndices(doc, acc, nil); err != nil {
			return nil, fmt.Errorf("indices: %w", err)
		}
		for _, idx := range indices {
			if int(idx) >= len(positions) {
				return nil, fmt.Errorf("index %d exceeds vertex count %d", idx, len(positions))
			}
		}
	} else {
		indices = make([]uint32, len(positions))
		for i := range indices {
			indices[i] = uint32(i)
		}
	}
	for i := 0; i+2 < len(indices); i += 3 {
		m.Faces = append(m.Faces, []uint32{indices[i], indices[i+1], indices[i+2]})
	}

	if prim.Material != nil && *prim.Material < len(doc.Materials) {
		m.Material = *prim.Material
	}
	return m, nil
}

func gltfAccessor(doc *gltf.Document, idx int) (*gltf.Accessor, error) {
	if idx < 0 || idx >= len(doc.Accessors) || doc.Accessors[idx] == nil {
		return nil, fmt.Errorf("accessor %d out of range (%d accessors)", idx, len(doc.Accessors))
	}
	return doc.Accessors[idx], nil
}

// gltfAttribute returns nil when the primitive lacks the attribute. A bad
// accessor reference is logged and treated as absent.
func gltfAttribute(doc *gltf.Document, prim *gltf.Primitive, name string) *gltf.Accessor {
	idx, ok := prim.Attributes[name]
	if !ok {
		return nil
	}
	acc, err := gltfAccessor(doc, idx)
	if err != nil {
		logger.Log.Warn("Ignoring gltf attribute", zap.String("attribute", name), zap.Error(err))
	}
	return acc
}

// detectCycle walks the tree with an explicit stack and reports whether any
// node is reachable twice.
func detectCycle(root *ImportedNode) bool {
	seen := map[*ImportedNode]bool{}
	stack := []*ImportedNode{root}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if seen[n] {
			return true
		}
		seen[n] = true
		stack = append(stack, n.Children...)
	}
	return false
}
