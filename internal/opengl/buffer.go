package opengl

import (
	gl "github.com/go-gl/gl/v4.1-core/gl"

	"model-viewer/core"
)

const floatSize = 4

func glTarget(t core.BufferTarget) uint32 {
	if t == core.ElementArrayBuffer {
		return gl.ELEMENT_ARRAY_BUFFER
	}
	return gl.ARRAY_BUFFER
}

func (d *Device) GenVertexArray() uint32 {
	var vao uint32
	gl.GenVertexArrays(1, &vao)
	return vao
}

func (d *Device) DeleteVertexArray(vao uint32) { gl.DeleteVertexArrays(1, &vao) }

func (d *Device) BindVertexArray(vao uint32) { gl.BindVertexArray(vao) }

func (d *Device) GenBuffer() uint32 {
	var buf uint32
	gl.GenBuffers(1, &buf)
	return buf
}

func (d *Device) DeleteBuffer(buffer uint32) { gl.DeleteBuffers(1, &buffer) }

func (d *Device) BindBuffer(target core.BufferTarget, buffer uint32) {
	gl.BindBuffer(glTarget(target), buffer)
}

func (d *Device) BufferFloat32(target core.BufferTarget, data []float32) {
	if len(data) == 0 {
		gl.BufferData(glTarget(target), 0, nil, gl.STATIC_DRAW)
		return
	}
	gl.BufferData(glTarget(target), len(data)*floatSize, gl.Ptr(data), gl.STATIC_DRAW)
}

func (d *Device) BufferUint32(target core.BufferTarget, data []uint32) {
	if len(data) == 0 {
		gl.BufferData(glTarget(target), 0, nil, gl.STATIC_DRAW)
		return
	}
	gl.BufferData(glTarget(target), len(data)*4, gl.Ptr(data), gl.STATIC_DRAW)
}

func (d *Device) VertexAttribPointer(index uint32, size, stride, offset int) {
	gl.EnableVertexAttribArray(index)
	gl.VertexAttribPointer(index, int32(size), gl.FLOAT, false,
		int32(stride*floatSize), gl.PtrOffset(offset*floatSize))
}
