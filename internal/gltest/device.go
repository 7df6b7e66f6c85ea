// Package gltest provides a recording core.Device for tests that run without
// a GL context.
//
// Shaders "compile" when they start with a #version line, define main and
// have balanced brackets. Linked programs expose the uniforms and vertex
// inputs declared in their sources, with structs and fixed-size arrays
// expanded the way a GL driver names them ("lights[2].position").
package gltest

import (
	"fmt"
	"sort"
	"strings"

	"model-viewer/core"
)

// Draw is one recorded draw call.
type Draw struct {
	VAO     uint32
	Program uint32
	Count   int32
	Mode    core.PolygonMode
	// Textures maps texture unit to the texture bound there at draw time.
	Textures map[uint32]uint32
}

type shaderObject struct {
	stage    core.ShaderStage
	source   string
	compiled bool
}

type programObject struct {
	attached  []uint32
	linked    bool
	uniforms  map[string]int32
	attribs   map[string]int32
	values    map[int32]any
	transpose map[int32]bool
}

type vertexArray struct {
	attribs map[uint32][3]int // size, stride, offset
	array   uint32
	element uint32
}

type texture struct {
	width, height int
}

// Device is not safe for concurrent use.
type Device struct {
	next uint32

	shaders  map[uint32]*shaderObject
	programs map[uint32]*programObject
	vaos     map[uint32]*vertexArray
	buffers  map[uint32][]byte
	textures map[uint32]texture

	current     uint32
	boundVAO    uint32
	boundArray  uint32
	boundElem   uint32
	activeUnit  uint32
	units       map[uint32]uint32
	polygonMode core.PolygonMode

	// Draws lists draw calls in issue order.
	Draws []Draw
	// TextureBinds counts binds of a non-zero texture.
	TextureBinds int
	// Errors collects misuse a GL driver would flag (GL_INVALID_OPERATION).
	Errors []string

	ClearColor core.Color
	Clears     int
	DepthTest  bool
	ViewportWH [2]int32
	// Attribs records generic vertex attribute values by index.
	Attribs map[uint32]any
}

var _ core.Device = (*Device)(nil)

func NewDevice() *Device {
	return &Device{
		shaders:  make(map[uint32]*shaderObject),
		programs: make(map[uint32]*programObject),
		vaos:     make(map[uint32]*vertexArray),
		buffers:  make(map[uint32][]byte),
		textures: make(map[uint32]texture),
		units:    make(map[uint32]uint32),
		Attribs:  make(map[uint32]any),
	}
}

func (d *Device) handle() uint32 {
	d.next++
	return d.next
}

func (d *Device) fail(format string, args ...any) {
	d.Errors = append(d.Errors, fmt.Sprintf(format, args...))
}

func (d *Device) Version() string { return "4.1 gltest" }

func (d *Device) CreateShader(stage core.ShaderStage) uint32 {
	h := d.handle()
	d.shaders[h] = &shaderObject{stage: stage}
	return h
}

func (d *Device) CompileShader(shader uint32, source string) (bool, string) {
	s, ok := d.shaders[shader]
	if !ok {
		d.fail("compile: unknown shader %d", shader)
		return false, "invalid shader object"
	}
	s.source = source
	s.compiled = false
	if msg := checkSource(source); msg != "" {
		return false, msg
	}
	s.compiled = true
	return true, ""
}

func (d *Device) DeleteShader(shader uint32) {
	delete(d.shaders, shader)
}

func (d *Device) CreateProgram() uint32 {
	h := d.handle()
	d.programs[h] = &programObject{}
	return h
}

func (d *Device) AttachShader(program, shader uint32) {
	p, ok := d.programs[program]
	if !ok {
		d.fail("attach: unknown program %d", program)
		return
	}
	if _, ok := d.shaders[shader]; !ok {
		d.fail("attach: unknown shader %d", shader)
		return
	}
	p.attached = append(p.attached, shader)
}

func (d *Device) DetachShader(program, shader uint32) {
	p, ok := d.programs[program]
	if !ok {
		d.fail("detach: unknown program %d", program)
		return
	}
	for i, s := range p.attached {
		if s == shader {
			p.attached = append(p.attached[:i], p.attached[i+1:]...)
			return
		}
	}
	d.fail("detach: shader %d not attached to %d", shader, program)
}

func (d *Device) LinkProgram(program uint32) (bool, string) {
	p, ok := d.programs[program]
	if !ok {
		d.fail("link: unknown program %d", program)
		return false, "invalid program object"
	}
	p.linked = false

	var vertex, fragment []string
	for _, h := range p.attached {
		s := d.shaders[h]
		if s == nil || !s.compiled {
			return false, fmt.Sprintf("error: shader %d is not compiled", h)
		}
		if s.stage == core.StageVertex {
			vertex = append(vertex, s.source)
		} else {
			fragment = append(fragment, s.source)
		}
	}
	if len(vertex) == 0 {
		return false, "error: no vertex shader attached"
	}
	if len(fragment) == 0 {
		return false, "error: no fragment shader attached"
	}

	names := make(map[string]bool)
	for _, src := range append(append([]string(nil), vertex...), fragment...) {
		for _, n := range uniformNames(src) {
			names[n] = true
		}
	}
	p.uniforms = assignLocations(names)

	p.attribs = make(map[string]int32)
	for _, src := range vertex {
		for name, loc := range vertexInputs(src) {
			p.attribs[name] = loc
		}
	}
	p.values = make(map[int32]any)
	p.transpose = make(map[int32]bool)
	p.linked = true
	return true, ""
}

func assignLocations(names map[string]bool) map[string]int32 {
	sorted := make([]string, 0, len(names))
	for n := range names {
		sorted = append(sorted, n)
	}
	sort.Strings(sorted)
	out := make(map[string]int32, len(sorted))
	for i, n := range sorted {
		out[n] = int32(i)
	}
	// "a[0]" and "a" name the same location.
	for _, n := range sorted {
		if base, ok := strings.CutSuffix(n, "[0]"); ok {
			if _, exists := out[base]; !exists {
				out[base] = out[n]
			}
		}
	}
	return out
}

func (d *Device) DeleteProgram(program uint32) {
	if d.current == program {
		d.current = 0
	}
	delete(d.programs, program)
}

func (d *Device) UseProgram(program uint32) {
	if program != 0 {
		p, ok := d.programs[program]
		if !ok || !p.linked {
			d.fail("use: program %d is not linked", program)
			return
		}
	}
	d.current = program
}

func (d *Device) CurrentProgram() uint32 { return d.current }

func (d *Device) UniformLocation(program uint32, name string) int32 {
	p, ok := d.programs[program]
	if !ok || !p.linked {
		d.fail("uniform location: program %d is not linked", program)
		return -1
	}
	if loc, ok := p.uniforms[name]; ok {
		return loc
	}
	return -1
}

func (d *Device) AttribLocation(program uint32, name string) int32 {
	p, ok := d.programs[program]
	if !ok || !p.linked {
		d.fail("attrib location: program %d is not linked", program)
		return -1
	}
	if loc, ok := p.attribs[name]; ok {
		return loc
	}
	return -1
}

// Programs reports the number of live program objects.
func (d *Device) Programs() int { return len(d.programs) }

// Shaders reports the number of live shader objects.
func (d *Device) Shaders() int { return len(d.shaders) }

// Attached returns the shaders attached to program.
func (d *Device) Attached(program uint32) []uint32 {
	if p, ok := d.programs[program]; ok {
		return append([]uint32(nil), p.attached...)
	}
	return nil
}

// Uniforms returns the uniform names program exposes, sorted.
func (d *Device) Uniforms(program uint32) []string {
	p, ok := d.programs[program]
	if !ok {
		return nil
	}
	out := make([]string, 0, len(p.uniforms))
	for n := range p.uniforms {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}
