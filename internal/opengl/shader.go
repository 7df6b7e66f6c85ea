package opengl

import (
	"strings"

	gl "github.com/go-gl/gl/v4.1-core/gl"

	"model-viewer/core"
)

func (d *Device) CreateShader(stage core.ShaderStage) uint32 {
	switch stage {
	case core.StageVertex:
		return gl.CreateShader(gl.VERTEX_SHADER)
	case core.StageFragment:
		return gl.CreateShader(gl.FRAGMENT_SHADER)
	}
	return 0
}

func (d *Device) CompileShader(shader uint32, source string) (bool, string) {
	csrc, free := gl.Strs(source + "\x00")
	gl.ShaderSource(shader, 1, csrc, nil)
	free()
	gl.CompileShader(shader)

	var status int32
	gl.GetShaderiv(shader, gl.COMPILE_STATUS, &status)
	var logLen int32
	gl.GetShaderiv(shader, gl.INFO_LOG_LENGTH, &logLen)
	return status == gl.TRUE, infoLog(logLen, func(buf *uint8) {
		gl.GetShaderInfoLog(shader, logLen, nil, buf)
	})
}

func (d *Device) DeleteShader(shader uint32) { gl.DeleteShader(shader) }

func (d *Device) CreateProgram() uint32 { return gl.CreateProgram() }

func (d *Device) AttachShader(program, shader uint32) { gl.AttachShader(program, shader) }

func (d *Device) DetachShader(program, shader uint32) { gl.DetachShader(program, shader) }

func (d *Device) LinkProgram(program uint32) (bool, string) {
	gl.LinkProgram(program)

	var status int32
	gl.GetProgramiv(program, gl.LINK_STATUS, &status)
	var logLen int32
	gl.GetProgramiv(program, gl.INFO_LOG_LENGTH, &logLen)
	return status == gl.TRUE, infoLog(logLen, func(buf *uint8) {
		gl.GetProgramInfoLog(program, logLen, nil, buf)
	})
}

func (d *Device) DeleteProgram(program uint32) {
	if d.program == program {
		d.program = 0
	}
	gl.DeleteProgram(program)
}

func (d *Device) UseProgram(program uint32) {
	gl.UseProgram(program)
	d.program = program
}

func (d *Device) CurrentProgram() uint32 { return d.program }

func (d *Device) UniformLocation(program uint32, name string) int32 {
	return gl.GetUniformLocation(program, gl.Str(name+"\x00"))
}

func (d *Device) AttribLocation(program uint32, name string) int32 {
	return gl.GetAttribLocation(program, gl.Str(name+"\x00"))
}

func infoLog(length int32, read func(buf *uint8)) string {
	if length <= 0 {
		return ""
	}
	log := strings.Repeat("\x00", int(length+1))
	read(gl.Str(log))
	return strings.TrimRight(log, "\x00")
}
