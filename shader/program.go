package shader

import (
	"errors"
	"fmt"
	"slices"

	"go.uber.org/zap"

	"model-viewer/core"
	"model-viewer/internal/logger"
)

// Program links added and owned stages. Added stages belong to the caller;
// owned stages were compiled by the program and die with it.
type Program struct {
	dev    core.Device
	id     uint32
	added  []*Shader
	owned  []*Shader
	linked bool
	log    string
	err    error

	uniforms map[string]int32
	attribs  map[string]int32
}

func NewProgram(dev core.Device) *Program {
	return &Program{dev: dev}
}

// AddShader attaches a compiled stage without taking ownership.
func (p *Program) AddShader(s *Shader) bool {
	if s == nil || !s.IsCompiled() {
		return false
	}
	if !slices.Contains(p.added, s) {
		p.added = append(p.added, s)
	}
	return true
}

// RemoveShader drops s from the added stages. It takes effect on the next
// Link.
func (p *Program) RemoveShader(s *Shader) {
	p.added = slices.DeleteFunc(p.added, func(x *Shader) bool { return x == s })
}

// AddShaderFromSourceCode compiles src as a stage owned by p.
func (p *Program) AddShaderFromSourceCode(stage core.ShaderStage, src string) bool {
	s := NewShader(p.dev, stage)
	return p.own(s, s.CompileSourceCode(src))
}

// AddShaderFromFile compiles the file at path as a stage owned by p.
func (p *Program) AddShaderFromFile(stage core.ShaderStage, path string) bool {
	s := NewShader(p.dev, stage)
	return p.own(s, s.CompileSourceFile(path))
}

func (p *Program) own(s *Shader, ok bool) bool {
	if !ok {
		p.log += s.Log() + "\n"
		p.err = s.Err()
		return false
	}
	p.owned = append(p.owned, s)
	return true
}

func (p *Program) stages() []*Shader {
	out := make([]*Shader, 0, len(p.added)+len(p.owned))
	for _, s := range slices.Concat(p.added, p.owned) {
		if s.IsCompiled() {
			out = append(out, s)
		}
	}
	return out
}

// Link builds a new program object from every stage. A previous link is
// discarded first, so a failed relink leaves the program unlinked.
func (p *Program) Link() bool {
	p.release()
	p.log = ""
	p.err = nil

	stages := p.stages()
	if len(stages) == 0 {
		p.log = "link failed: no shader stages"
		p.err = fmt.Errorf("%s: %w", p.log, core.ErrLink)
		return false
	}

	id := p.dev.CreateProgram()
	if id == 0 {
		p.log = "create program failed"
		p.err = fmt.Errorf("%s: %w", p.log, core.ErrLink)
		return false
	}
	for _, s := range stages {
		p.dev.AttachShader(id, s.ID())
	}
	ok, info := p.dev.LinkProgram(id)
	for _, s := range stages {
		p.dev.DetachShader(id, s.ID())
	}
	if !ok {
		p.dev.DeleteProgram(id)
		p.log = "program linking failed\n" + info
		p.err = fmt.Errorf("link: %w: %s", core.ErrLink, info)
		logger.Log.Error("Failed to link program", zap.String("log", info))
		return false
	}

	p.id = id
	p.linked = true
	p.log = info
	p.uniforms = make(map[string]int32)
	p.attribs = make(map[string]int32)
	logger.Log.Debug("Program linked", zap.Uint32("id", id), zap.Int("stages", len(stages)))
	return true
}

func (p *Program) release() {
	if p.id != 0 {
		p.dev.DeleteProgram(p.id)
	}
	p.id = 0
	p.linked = false
	p.uniforms = nil
	p.attribs = nil
}

// Delete frees the program and the stages it owns. Added stages survive.
func (p *Program) Delete() {
	p.release()
	for _, s := range p.owned {
		s.Delete()
	}
	p.owned = nil
	p.added = nil
}

// Bind makes p the current program. It fails when p is not linked.
func (p *Program) Bind() bool {
	if !p.linked {
		return false
	}
	p.dev.UseProgram(p.id)
	return true
}

// Release unbinds whatever program is current.
func (p *Program) Release() {
	p.dev.UseProgram(0)
}

func (p *Program) IsLinked() bool { return p.linked }

func (p *Program) ID() uint32 { return p.id }

func (p *Program) Log() string { return p.log }

// Err wraps core.ErrLink, or the error of a stage that failed to compile.
func (p *Program) Err() error { return p.err }

// Shaders returns the added stages followed by the owned ones.
func (p *Program) Shaders() []*Shader {
	return slices.Concat(p.added, p.owned)
}

var errNotLinked = errors.New("program not linked")

// Uniform resolves the location of an active uniform.
func (p *Program) Uniform(name string) (int32, error) {
	return p.resolve(name, p.uniforms, p.dev.UniformLocation, "uniform")
}

// Attrib resolves the location of an active vertex input.
func (p *Program) Attrib(name string) (int32, error) {
	return p.resolve(name, p.attribs, p.dev.AttribLocation, "attribute")
}

func (p *Program) resolve(name string, cache map[string]int32, lookup func(uint32, string) int32, kind string) (int32, error) {
	if !p.linked {
		return -1, fmt.Errorf("%s %q: %w: %w", kind, name, errNotLinked, core.ErrNameResolution)
	}
	if loc, ok := cache[name]; ok {
		return loc, nil
	}
	loc := lookup(p.id, name)
	if loc < 0 {
		return -1, fmt.Errorf("%s %q not found in program %d: %w", kind, name, p.id, core.ErrNameResolution)
	}
	cache[name] = loc
	return loc, nil
}

// bound resolves name and checks that p is the current program, which GL
// requires for glUniform*.
func (p *Program) bound(name string) (int32, error) {
	loc, err := p.Uniform(name)
	if err != nil {
		return -1, err
	}
	if cur := p.dev.CurrentProgram(); cur != p.id {
		return -1, fmt.Errorf("uniform %q: program %d is not bound (current %d): %w",
			name, p.id, cur, core.ErrNameResolution)
	}
	return loc, nil
}
