// Package shader wraps GLSL stages and linked programs on a core.Device.
package shader

import (
	"fmt"
	"os"

	"github.com/mitchellh/go-homedir"
	"go.uber.org/zap"

	"model-viewer/core"
	"model-viewer/internal/logger"
)

// Shader is a single compiled stage. The zero handle means "not compiled".
type Shader struct {
	dev    core.Device
	stage  core.ShaderStage
	id     uint32
	source string
	log    string
	err    error
}

func NewShader(dev core.Device, stage core.ShaderStage) *Shader {
	return &Shader{dev: dev, stage: stage}
}

// CompileSourceCode compiles src, replacing any previously compiled code.
// On failure Log describes the problem and ID is zero.
func (s *Shader) CompileSourceCode(src string) bool {
	s.Delete()
	s.source = src

	id := s.dev.CreateShader(s.stage)
	if id == 0 {
		s.log = fmt.Sprintf("create %s shader failed", s.stage)
		s.err = fmt.Errorf("%s: %w", s.log, core.ErrCompile)
		return false
	}

	ok, info := s.dev.CompileShader(id, src)
	if !ok {
		s.dev.DeleteShader(id)
		s.log = fmt.Sprintf("%s shader compilation failed\n%s", s.stage, info)
		s.err = fmt.Errorf("%s shader: %w: %s", s.stage, core.ErrCompile, info)
		logger.Log.Error("Failed to compile shader",
			zap.Stringer("stage", s.stage), zap.String("log", info))
		return false
	}
	// Drivers may still report warnings.
	s.log = info
	s.id = id
	return true
}

// CompileSourceFile reads path and compiles its contents.
func (s *Shader) CompileSourceFile(path string) bool {
	s.Delete()

	expanded, err := homedir.Expand(path)
	if err != nil {
		expanded = path
	}
	data, err := os.ReadFile(expanded)
	if err != nil {
		s.log = fmt.Sprintf("read %s shader %q: %v", s.stage, path, err)
		s.err = fmt.Errorf("read shader %q: %w: %w", path, core.ErrIO, err)
		logger.Log.Error("Failed to read shader", zap.String("path", path), zap.Error(err))
		return false
	}
	if !s.CompileSourceCode(string(data)) {
		s.err = fmt.Errorf("%q: %w", path, s.err)
		return false
	}
	return true
}

// Delete frees the compiled stage. The source is kept.
func (s *Shader) Delete() {
	if s.id != 0 {
		s.dev.DeleteShader(s.id)
	}
	s.id = 0
	s.log = ""
	s.err = nil
}

func (s *Shader) IsCompiled() bool { return s.id != 0 }

func (s *Shader) ID() uint32 { return s.id }

func (s *Shader) Stage() core.ShaderStage { return s.stage }

func (s *Shader) Source() string { return s.source }

func (s *Shader) Log() string { return s.log }

// Err wraps core.ErrIO or core.ErrCompile after a failed compile.
func (s *Shader) Err() error { return s.err }
