package gltest

import (
	"encoding/binary"
	"math"

	"model-viewer/core"
)

func (d *Device) GenVertexArray() uint32 {
	h := d.handle()
	d.vaos[h] = &vertexArray{attribs: make(map[uint32][3]int)}
	return h
}

func (d *Device) DeleteVertexArray(vao uint32) {
	if d.boundVAO == vao {
		d.boundVAO = 0
	}
	delete(d.vaos, vao)
}

func (d *Device) BindVertexArray(vao uint32) {
	if _, ok := d.vaos[vao]; vao != 0 && !ok {
		d.fail("bind: unknown vertex array %d", vao)
		return
	}
	d.boundVAO = vao
	if vao != 0 {
		d.boundElem = d.vaos[vao].element
	}
}

func (d *Device) GenBuffer() uint32 {
	h := d.handle()
	d.buffers[h] = nil
	return h
}

func (d *Device) DeleteBuffer(buffer uint32) {
	delete(d.buffers, buffer)
}

func (d *Device) BindBuffer(target core.BufferTarget, buffer uint32) {
	if _, ok := d.buffers[buffer]; buffer != 0 && !ok {
		d.fail("bind: unknown buffer %d", buffer)
		return
	}
	if target == core.ElementArrayBuffer {
		d.boundElem = buffer
		if vao, ok := d.vaos[d.boundVAO]; ok {
			vao.element = buffer
		}
		return
	}
	d.boundArray = buffer
}

func (d *Device) bound(target core.BufferTarget) uint32 {
	if target == core.ElementArrayBuffer {
		return d.boundElem
	}
	return d.boundArray
}

func (d *Device) BufferFloat32(target core.BufferTarget, data []float32) {
	buf := d.bound(target)
	if buf == 0 {
		d.fail("buffer data with no buffer bound")
		return
	}
	out := make([]byte, 4*len(data))
	for i, f := range data {
		binary.LittleEndian.PutUint32(out[4*i:], math.Float32bits(f))
	}
	d.buffers[buf] = out
}

func (d *Device) BufferUint32(target core.BufferTarget, data []uint32) {
	buf := d.bound(target)
	if buf == 0 {
		d.fail("buffer data with no buffer bound")
		return
	}
	out := make([]byte, 4*len(data))
	for i, u := range data {
		binary.LittleEndian.PutUint32(out[4*i:], u)
	}
	d.buffers[buf] = out
}

func (d *Device) VertexAttribPointer(index uint32, size, stride, offset int) {
	vao, ok := d.vaos[d.boundVAO]
	if !ok {
		d.fail("attrib pointer with no vertex array bound")
		return
	}
	vao.attribs[index] = [3]int{size, stride, offset}
	vao.array = d.boundArray
}

// BufferSize returns the byte size of a buffer's store, or -1 when the
// buffer does not exist.
func (d *Device) BufferSize(buffer uint32) int {
	data, ok := d.buffers[buffer]
	if !ok {
		return -1
	}
	return len(data)
}

// Buffers reports the number of live buffer objects.
func (d *Device) Buffers() int { return len(d.buffers) }

// VertexArrays reports the number of live vertex array objects.
func (d *Device) VertexArrays() int { return len(d.vaos) }

// VertexLayout returns size, stride and offset (in floats) of an attribute
// of vao.
func (d *Device) VertexLayout(vao, index uint32) (size, stride, offset int, ok bool) {
	v, found := d.vaos[vao]
	if !found {
		return 0, 0, 0, false
	}
	a, found := v.attribs[index]
	if !found {
		return 0, 0, 0, false
	}
	return a[0], a[1], a[2], true
}
