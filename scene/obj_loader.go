package scene

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"

	"model-viewer/core"
	"model-viewer/internal/logger"
)

// objVertex references one position / uv / normal triple, 0-based, -1 when
// absent.
type objVertex struct{ v, vt, vn int }

type objObject struct {
	name    string
	matName string
	faces   [][]objVertex
}

// ImportOBJ parses a Wavefront .obj file. Every object or group becomes one
// mesh under its own child node. Materials come from "mtllib" files next to
// the model.
func ImportOBJ(path string) (*ImportedScene, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open obj %q: %w: %w", path, core.ErrIO, err)
	}
	defer f.Close()

	dir := filepath.Dir(path)

	var positions []mgl32.Vec3
	var normals []mgl32.Vec3
	var uvs []mgl32.Vec2

	var materials []*ImportedMaterial
	materialIndex := map[string]int{}

	var objects []objObject
	cur := &objObject{name: "default"}

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Fields(line)

		switch fields[0] {
		case "v":
			p, err := parseFloats(fields[1:], 3)
			if err != nil {
				return nil, fmt.Errorf("obj %q line %d: %w: %w", path, lineNo, core.ErrImport, err)
			}
			positions = append(positions, mgl32.Vec3{p[0], p[1], p[2]})

		case "vn":
			n, err := parseFloats(fields[1:], 3)
			if err != nil {
				return nil, fmt.Errorf("obj %q line %d: %w: %w", path, lineNo, core.ErrImport, err)
			}
			normals = append(normals, mgl32.Vec3{n[0], n[1], n[2]})

		case "vt":
			t, err := parseFloats(fields[1:], 2)
			if err != nil {
				return nil, fmt.Errorf("obj %q line %d: %w: %w", path, lineNo, core.ErrImport, err)
			}
			uvs = append(uvs, mgl32.Vec2{t[0], t[1]})

		case "o", "g":
			if len(cur.faces) > 0 {
				objects = append(objects, *cur)
			}
			name := "default"
			if len(fields) > 1 {
				name = strings.Join(fields[1:], " ")
			}
			cur = &objObject{name: name, matName: cur.matName}

		case "usemtl":
			if len(fields) < 2 {
				continue
			}
			// A material switch inside an object starts a new mesh.
			if len(cur.faces) > 0 && cur.matName != fields[1] {
				objects = append(objects, *cur)
				cur = &objObject{name: cur.name}
			}
			cur.matName = fields[1]

		case "mtllib":
			for _, lib := range fields[1:] {
				loaded, err := loadMTL(filepath.Join(dir, lib))
				if err != nil {
					logger.Log.Warn("Skipping material library", zap.String("path", lib), zap.Error(err))
					continue
				}
				for _, m := range loaded {
					materialIndex[m.Name] = len(materials)
					materials = append(materials, m)
				}
			}

		case "f":
			if len(fields) < 4 {
				continue
			}
			face := make([]objVertex, 0, len(fields)-1)
			for _, tok := range fields[1:] {
				fv, err := parseFaceVertex(tok, len(positions), len(uvs), len(normals))
				if err != nil {
					return nil, fmt.Errorf("obj %q line %d: %w: %w", path, lineNo, core.ErrImport, err)
				}
				face = append(face, fv)
			}
			cur.faces = append(cur.faces, face)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan obj %q: %w: %w", path, core.ErrIO, err)
	}
	if len(cur.faces) > 0 {
		objects = append(objects, *cur)
	}
	if len(objects) == 0 {
		return nil, fmt.Errorf("no geometry found in %q: %w", path, core.ErrImport)
	}

	scene := &ImportedScene{
		Root:      &ImportedNode{Name: filepath.Base(path)},
		Materials: materials,
	}
	for _, obj := range objects {
		mesh := buildOBJMesh(obj, positions, normals, uvs)
		mesh.Material = -1
		if idx, ok := materialIndex[obj.matName]; ok {
			mesh.Material = idx
		}
		scene.Root.Children = append(scene.Root.Children, &ImportedNode{
			Name:   obj.name,
			Meshes: []int{len(scene.Meshes)},
		})
		scene.Meshes = append(scene.Meshes, mesh)
	}
	return scene, nil
}

func parseFloats(fields []string, n int) ([]float32, error) {
	if len(fields) < n {
		return nil, fmt.Errorf("want %d values, got %d", n, len(fields))
	}
	out := make([]float32, n)
	for i := 0; i < n; i++ {
		f, err := strconv.ParseFloat(fields[i], 32)
		if err != nil {
			return nil, err
		}
		out[i] = float32(f)
	}
	return out, nil
}

// parseFaceVertex parses "v", "v/vt", "v//vn" or "v/vt/vn". OBJ indices are
// 1-based; negative ones count back from the end of the pool so far.
func parseFaceVertex(tok string, nv, nvt, nvn int) (objVertex, error) {
	parseIdx := func(s string, n int) (int, error) {
		if s == "" {
			return -1, nil
		}
		i, err := strconv.Atoi(s)
		if err != nil {
			return -1, fmt.Errorf("face index %q: %w", s, err)
		}
		switch {
		case i > 0:
			return i - 1, nil
		case i < 0:
			return n + i, nil
		}
		return -1, fmt.Errorf("face index 0 in %q", tok)
	}

	res := objVertex{v: -1, vt: -1, vn: -1}
	parts := strings.Split(tok, "/")
	var err error
	if res.v, err = parseIdx(parts[0], nv); err != nil {
		return res, err
	}
	if res.v < 0 || res.v >= nv {
		return res, fmt.Errorf("face vertex %q out of range", tok)
	}
	if len(parts) > 1 {
		if res.vt, err = parseIdx(parts[1], nvt); err != nil {
			return res, err
		}
	}
	if len(parts) > 2 {
		if res.vn, err = parseIdx(parts[2], nvn); err != nil {
			return res, err
		}
	}
	return res, nil
}

// buildOBJMesh de-indexes the OBJ pools into one vertex per distinct
// position/uv/normal triple.
func buildOBJMesh(obj objObject, positions, normals []mgl32.Vec3, uvs []mgl32.Vec2) *ImportedMesh {
	mesh := &ImportedMesh{Name: obj.name}
	vertMap := map[objVertex]uint32{}
	hasNormals := len(normals) > 0

	for _, face := range obj.faces {
		out := make([]uint32, 0, len(face))
		for _, k := range face {
			if idx, ok := vertMap[k]; ok {
				out = append(out, idx)
				continue
			}
			idx := uint32(len(mesh.Positions))
			mesh.Positions = append(mesh.Positions, positions[k.v])
			if hasNormals {
				n := mgl32.Vec3{0, 1, 0}
				if k.vn >= 0 && k.vn < len(normals) {
					n = normals[k.vn]
				}
				mesh.Normals = append(mesh.Normals, n)
			}
			var uv mgl32.Vec2
			if k.vt >= 0 && k.vt < len(uvs) {
				uv = uvs[k.vt]
			}
			mesh.UVs = append(mesh.UVs, uv)
			vertMap[k] = idx
			out = append(out, idx)
		}
		mesh.Faces = append(mesh.Faces, out)
	}
	if len(uvs) == 0 {
		mesh.UVs = nil
	}
	return mesh
}

// loadMTL reads the texture maps of every material in a .mtl file. Map
// paths stay relative to the model directory.
func loadMTL(path string) ([]*ImportedMaterial, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var mats []*ImportedMaterial
	var cur *ImportedMaterial

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Fields(line)

		switch fields[0] {
		case "newmtl":
			if len(fields) > 1 {
				cur = &ImportedMaterial{Name: fields[1]}
				mats = append(mats, cur)
			}
		case "map_Kd":
			// Options like "-s 1 1 1" precede the file name.
			if cur != nil && len(fields) >= 2 {
				cur.Diffuse = append(cur.Diffuse, TextureRef{Path: mtlPath(fields[len(fields)-1])})
			}
		case "map_Ks":
			if cur != nil && len(fields) >= 2 {
				cur.Specular = append(cur.Specular, TextureRef{Path: mtlPath(fields[len(fields)-1])})
			}
		}
	}
	return mats, scanner.Err()
}

// mtlPath normalises the Windows separators some exporters write.
func mtlPath(p string) string {
	return filepath.FromSlash(strings.ReplaceAll(p, `\`, "/"))
}
