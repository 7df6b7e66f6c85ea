package scene

import (
	"encoding/xml"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"

	"model-viewer/core"
	"model-viewer/internal/logger"
)

type daeDocument struct {
	XMLName      xml.Name         `xml:"COLLADA"`
	Images       []daeImage       `xml:"library_images>image"`
	Effects      []daeEffect      `xml:"library_effects>effect"`
	Materials    []daeMaterial    `xml:"library_materials>material"`
	Geometries   []daeGeometry    `xml:"library_geometries>geometry"`
	VisualScenes []daeVisualScene `xml:"library_visual_scenes>visual_scene"`
	Scene        struct {
		Instance struct {
			URL string `xml:"url,attr"`
		} `xml:"instance_visual_scene"`
	} `xml:"scene"`
}

type daeImage struct {
	ID string `xml:"id,attr"`
	// 1.4 writes the path as text, 1.5 inside <ref>.
	InitFrom struct {
		Text string `xml:",chardata"`
		Ref  string `xml:"ref"`
	} `xml:"init_from"`
}

func (i daeImage) path() string {
	p := strings.TrimSpace(i.InitFrom.Ref)
	if p == "" {
		p = strings.TrimSpace(i.InitFrom.Text)
	}
	p = strings.TrimPrefix(p, "file://")
	if u, err := url.PathUnescape(p); err == nil {
		p = u
	}
	return filepath.FromSlash(p)
}

type daeEffect struct {
	ID      string `xml:"id,attr"`
	Profile struct {
		NewParams []daeNewParam `xml:"newparam"`
		Technique struct {
			Phong   daeShading `xml:"phong"`
			Blinn   daeShading `xml:"blinn"`
			Lambert daeShading `xml:"lambert"`
		} `xml:"technique"`
	} `xml:"profile_COMMON"`
}

type daeNewParam struct {
	SID     string `xml:"sid,attr"`
	Surface struct {
		InitFrom string `xml:"init_from"`
	} `xml:"surface"`
	Sampler struct {
		Source   string `xml:"source"`
		Instance struct {
			URL string `xml:"url,attr"`
		} `xml:"instance_image"`
	} `xml:"sampler2D"`
}

type daeShading struct {
	Diffuse  daeColorOrTexture `xml:"diffuse"`
	Specular daeColorOrTexture `xml:"specular"`
}

type daeColorOrTexture struct {
	Texture *struct {
		Texture string `xml:"texture,attr"`
	} `xml:"texture"`
}

type daeMaterial struct {
	ID     string `xml:"id,attr"`
	Name   string `xml:"name,attr"`
	Effect struct {
		URL string `xml:"url,attr"`
	} `xml:"instance_effect"`
}

type daeGeometry struct {
	ID   string `xml:"id,attr"`
	Name string `xml:"name,attr"`
	Mesh struct {
		Sources  []daeSource `xml:"source"`
		Vertices struct {
			ID     string     `xml:"id,attr"`
			Inputs []daeInput `xml:"input"`
		} `xml:"vertices"`
		Triangles []daePrimitives `xml:"triangles"`
		Polylists []daePrimitives `xml:"polylist"`
	} `xml:"mesh"`
}

type daeSource struct {
	ID       string `xml:"id,attr"`
	Floats   string `xml:"float_array"`
	Accessor struct {
		Stride int `xml:"stride,attr"`
	} `xml:"technique_common>accessor"`
}

type daeInput struct {
	Semantic string `xml:"semantic,attr"`
	Source   string `xml:"source,attr"`
	Offset   int    `xml:"offset,attr"`
	Set      int    `xml:"set,attr"`
}

type daePrimitives struct {
	Count    int        `xml:"count,attr"`
	Material string     `xml:"material,attr"`
	Inputs   []daeInput `xml:"input"`
	VCount   string     `xml:"vcount"`
	P        string     `xml:"p"`
}

type daeVisualScene struct {
	ID    string    `xml:"id,attr"`
	Nodes []daeNode `xml:"node"`
}

type daeNode struct {
	ID         string    `xml:"id,attr"`
	Name       string    `xml:"name,attr"`
	Nodes      []daeNode `xml:"node"`
	Geometries []struct {
		URL       string `xml:"url,attr"`
		Materials []struct {
			Symbol string `xml:"symbol,attr"`
			Target string `xml:"target,attr"`
		} `xml:"bind_material>technique_common>instance_material"`
	} `xml:"instance_geometry"`
}

// ImportCollada reads the triangle and polylist geometry of a .dae file
// placed by its visual scene, with diffuse and specular image textures of
// common-profile effects. Transforms, animation and controllers are ignored.
func ImportCollada(path string) (*ImportedScene, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("open collada %q: %w: %w", path, core.ErrIO, err)
	}
	var doc daeDocument
	if err := xml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse collada %q: %w: %w", path, core.ErrImport, err)
	}

	b := newDAEBuilder(&doc)
	vs := b.visualScene()
	if vs == nil {
		return nil, fmt.Errorf("collada %q has no visual scene: %w", path, core.ErrImport)
	}

	b.scene.Root = &ImportedNode{Name: filepath.Base(path)}
	type pending struct {
		src *daeNode
		dst *ImportedNode
	}
	var stack []pending
	b.scene.Root.Children = make([]*ImportedNode, len(vs.Nodes))
	for i := len(vs.Nodes) - 1; i >= 0; i-- {
		b.scene.Root.Children[i] = &ImportedNode{}
		stack = append(stack, pending{&vs.Nodes[i], b.scene.Root.Children[i]})
	}

	for len(stack) > 0 {
		p := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		p.dst.Name = p.src.Name
		if p.dst.Name == "" {
			p.dst.Name = p.src.ID
		}
		for _, ig := range p.src.Geometries {
			bind := map[string]string{}
			for _, im := range ig.Materials {
				bind[im.Symbol] = strings.TrimPrefix(im.Target, "#")
			}
			p.dst.Meshes = append(p.dst.Meshes, b.geometryMeshes(strings.TrimPrefix(ig.URL, "#"), bind)...)
		}

		children := make([]*ImportedNode, len(p.src.Nodes))
		for i := range p.src.Nodes {
			children[i] = &ImportedNode{}
		}
		p.dst.Children = children
		for i := len(p.src.Nodes) - 1; i >= 0; i-- {
			stack = append(stack, pending{&p.src.Nodes[i], children[i]})
		}
	}

	if len(b.scene.Meshes) == 0 {
		return nil, fmt.Errorf("no geometry found in %q: %w", path, core.ErrImport)
	}
	return b.scene, nil
}

type daeBuilder struct {
	doc        *daeDocument
	scene      *ImportedScene
	geometries map[string]*daeGeometry
	images     map[string]string
	materials  map[string]int
	meshCache  map[string]int
}

func newDAEBuilder(doc *daeDocument) *daeBuilder {
	b := &daeBuilder{
		doc:        doc,
		scene:      &ImportedScene{},
		geometries: map[string]*daeGeometry{},
		images:     map[string]string{},
		materials:  map[string]int{},
		meshCache:  map[string]int{},
	}
	for i := range doc.Geometries {
		b.geometries[doc.Geometries[i].ID] = &doc.Geometries[i]
	}
	for _, img := range doc.Images {
		b.images[img.ID] = img.path()
	}
	return b
}

func (b *daeBuilder) visualScene() *daeVisualScene {
	want := strings.TrimPrefix(b.doc.Scene.Instance.URL, "#")
	for i := range b.doc.VisualScenes {
		if want == "" || b.doc.VisualScenes[i].ID == want {
			return &b.doc.VisualScenes[i]
		}
	}
	return nil
}

// geometryMeshes returns one mesh index per primitive group of a geometry,
// building each (geometry, group, material) combination once.
func (b *daeBuilder) geometryMeshes(id string, bind map[string]string) []int {
	g, ok := b.geometries[id]
	if !ok {
		logger.Log.Warn("Collada node references missing geometry", zap.String("geometry", id))
		return nil
	}
	groups := append(append([]daePrimitives(nil), g.Mesh.Triangles...), g.Mesh.Polylists...)

	var out []int
	for gi, prim := range groups {
		matID := bind[prim.Material]
		if matID == "" {
			matID = prim.Material
		}
		key := fmt.Sprintf("%s/%d/%s", id, gi, matID)
		if idx, ok := b.meshCache[key]; ok {
			out = append(out, idx)
			continue
		}
		mesh, err := b.buildMesh(g, prim, gi < len(g.Mesh.Triangles))
		if err != nil {
			logger.Log.Warn("Skipping collada primitive",
				zap.String("geometry", id), zap.Int("group", gi), zap.Error(err))
			continue
		}
		mesh.Material = b.material(matID)
		idx := len(b.scene.Meshes)
		b.scene.Meshes = append(b.scene.Meshes, mesh)
		b.meshCache[key] = idx
		out = append(out, idx)
	}
	return out
}

func (b *daeBuilder) buildMesh(g *daeGeometry, prim daePrimitives, triangles bool) (*ImportedMesh, error) {
	sources := map[string][]float32{}
	strides := map[string]int{}
	for _, s := range g.Mesh.Sources {
		vals, err := parseFloatList(s.Floats)
		if err != nil {
			return nil, fmt.Errorf("source %s: %w", s.ID, err)
		}
		sources[s.ID] = vals
		strides[s.ID] = max(1, s.Accessor.Stride)
	}

	var posSrc, normSrc, uvSrc string
	posOff, normOff, uvOff := -1, -1, -1
	stride := 0
	uvSet := -1
	for _, in := range prim.Inputs {
		if in.Offset < 0 {
			return nil, fmt.Errorf("input %s has negative offset %d: %w", in.Semantic, in.Offset, core.ErrImport)
		}
		stride = max(stride, in.Offset+1)
		src := strings.TrimPrefix(in.Source, "#")
		switch in.Semantic {
		case "VERTEX":
			posOff = in.Offset
			for _, vin := range g.Mesh.Vertices.Inputs {
				switch vin.Semantic {
				case "POSITION":
					posSrc = strings.TrimPrefix(vin.Source, "#")
				case "NORMAL":
					normSrc, normOff = strings.TrimPrefix(vin.Source, "#"), in.Offset
				case "TEXCOORD":
					uvSrc, uvOff = strings.TrimPrefix(vin.Source, "#"), in.Offset
				}
			}
		case "NORMAL":
			normSrc, normOff = src, in.Offset
		case "TEXCOORD":
			// First channel only.
			if uvSet == -1 || in.Set < uvSet {
				uvSrc, uvOff, uvSet = src, in.Offset, in.Set
			}
		}
	}
	if posOff < 0 || posSrc == "" {
		return nil, fmt.Errorf("no VERTEX input")
	}

	p, err := parseIntList(prim.P)
	if err != nil {
		return nil, fmt.Errorf("index list: %w", err)
	}
	var counts []int
	if triangles {
		counts = make([]int, len(p)/stride/3)
		for i := range counts {
			counts[i] = 3
		}
	} else if counts, err = parseIntList(prim.VCount); err != nil {
		return nil, fmt.Errorf("vcount: %w", err)
	}

	mesh := &ImportedMesh{Name: g.Name, Material: -1}
	if mesh.Name == "" {
		mesh.Name = g.ID
	}
	type key struct{ p, n, t int }
	vertMap := map[key]uint32{}
	read := func(src string, idx, n int) ([]float32, bool) {
		vals := sources[src]
		s := strides[src]
		if idx < 0 || (idx+1)*s > len(vals) || s < n {
			return nil, false
		}
		return vals[idx*s : idx*s+n], true
	}

	cursor := 0
	for _, c := range counts {
		if c < 3 {
			return nil, fmt.Errorf("polygon with %d vertices: %w", c, core.ErrImport)
		}
		if (cursor+c)*stride > len(p) {
			return nil, fmt.Errorf("index list shorter than vcount")
		}
		face := make([]uint32, 0, c)
		for v := 0; v < c; v++ {
			base := (cursor + v) * stride
			k := key{p[base+posOff], -1, -1}
			if normOff >= 0 {
				k.n = p[base+normOff]
			}
			if uvOff >= 0 {
				k.t = p[base+uvOff]
			}
			if idx, ok := vertMap[k]; ok {
				face = append(face, idx)
				continue
			}
			pos, ok := read(posSrc, k.p, 3)
			if !ok {
				return nil, fmt.Errorf("position index %d out of range", k.p)
			}
			idx := uint32(len(mesh.Positions))
			mesh.Positions = append(mesh.Positions, mgl32.Vec3{pos[0], pos[1], pos[2]})
			if normSrc != "" {
				var n mgl32.Vec3
				if vals, ok := read(normSrc, k.n, 3); ok {
					n = mgl32.Vec3{vals[0], vals[1], vals[2]}
				}
				mesh.Normals = append(mesh.Normals, n)
			}
			if uvSrc != "" {
				var uv mgl32.Vec2
				if vals, ok := read(uvSrc, k.t, 2); ok {
					uv = mgl32.Vec2{vals[0], vals[1]}
				}
				mesh.UVs = append(mesh.UVs, uv)
			}
			vertMap[k] = idx
			face = append(face, idx)
		}
		mesh.Faces = append(mesh.Faces, face)
		cursor += c
	}
	return mesh, nil
}

// material resolves material -> effect -> sampler -> surface -> image.
func (b *daeBuilder) material(id string) int {
	if id == "" {
		return -1
	}
	if idx, ok := b.materials[id]; ok {
		return idx
	}
	var mat *daeMaterial
	for i := range b.doc.Materials {
		if b.doc.Materials[i].ID == id {
			mat = &b.doc.Materials[i]
			break
		}
	}
	if mat == nil {
		return -1
	}

	out := &ImportedMaterial{Name: mat.Name}
	if out.Name == "" {
		out.Name = mat.ID
	}
	effectID := strings.TrimPrefix(mat.Effect.URL, "#")
	for _, e := range b.doc.Effects {
		if e.ID != effectID {
			continue
		}
		t := e.Profile.Technique
		for _, sh := range []daeShading{t.Phong, t.Blinn, t.Lambert} {
			if p := b.effectImage(e, sh.Diffuse); p != "" {
				out.Diffuse = append(out.Diffuse, TextureRef{Path: p})
			}
			if p := b.effectImage(e, sh.Specular); p != "" {
				out.Specular = append(out.Specular, TextureRef{Path: p})
			}
		}
	}

	idx := len(b.scene.Materials)
	b.scene.Materials = append(b.scene.Materials, out)
	b.materials[id] = idx
	return idx
}

func (b *daeBuilder) effectImage(e daeEffect, c daeColorOrTexture) string {
	if c.Texture == nil {
		return ""
	}
	ref := c.Texture.Texture
	// Some exporters point straight at the image.
	if p, ok := b.images[ref]; ok {
		return p
	}
	params := map[string]daeNewParam{}
	for _, np := range e.Profile.NewParams {
		params[np.SID] = np
	}
	sampler, ok := params[ref]
	if !ok {
		return ""
	}
	if u := strings.TrimPrefix(sampler.Sampler.Instance.URL, "#"); u != "" {
		return b.images[u]
	}
	surface, ok := params[strings.TrimSpace(sampler.Sampler.Source)]
	if !ok {
		return ""
	}
	return b.images[strings.TrimSpace(surface.Surface.InitFrom)]
}

func parseFloatList(s string) ([]float32, error) {
	fields := strings.Fields(s)
	out := make([]float32, len(fields))
	for i, f := range fields {
		v, err := strconv.ParseFloat(f, 32)
		if err != nil {
			return nil, err
		}
		out[i] = float32(v)
	}
	return out, nil
}

func parseIntList(s string) ([]int, error) {
	fields := strings.Fields(s)
	out := make([]int, len(fields))
	for i, f := range fields {
		v, err := strconv.Atoi(f)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}
