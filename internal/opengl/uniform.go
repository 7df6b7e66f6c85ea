package opengl

import (
	gl "github.com/go-gl/gl/v4.1-core/gl"
)

// The variadic setters pick the 1..4 component entry point from len(v).

func (d *Device) Uniformf(loc int32, v ...float32) {
	switch len(v) {
	case 1:
		gl.Uniform1f(loc, v[0])
	case 2:
		gl.Uniform2f(loc, v[0], v[1])
	case 3:
		gl.Uniform3f(loc, v[0], v[1], v[2])
	case 4:
		gl.Uniform4f(loc, v[0], v[1], v[2], v[3])
	}
}

func (d *Device) Uniformd(loc int32, v ...float64) {
	switch len(v) {
	case 1:
		gl.Uniform1d(loc, v[0])
	case 2:
		gl.Uniform2d(loc, v[0], v[1])
	case 3:
		gl.Uniform3d(loc, v[0], v[1], v[2])
	case 4:
		gl.Uniform4d(loc, v[0], v[1], v[2], v[3])
	}
}

func (d *Device) Uniformi(loc int32, v ...int32) {
	switch len(v) {
	case 1:
		gl.Uniform1i(loc, v[0])
	case 2:
		gl.Uniform2i(loc, v[0], v[1])
	case 3:
		gl.Uniform3i(loc, v[0], v[1], v[2])
	case 4:
		gl.Uniform4i(loc, v[0], v[1], v[2], v[3])
	}
}

func (d *Device) Uniformui(loc int32, v ...uint32) {
	switch len(v) {
	case 1:
		gl.Uniform1ui(loc, v[0])
	case 2:
		gl.Uniform2ui(loc, v[0], v[1])
	case 3:
		gl.Uniform3ui(loc, v[0], v[1], v[2])
	case 4:
		gl.Uniform4ui(loc, v[0], v[1], v[2], v[3])
	}
}

func (d *Device) Uniformfv(loc int32, components int, count int32, v []float32) {
	if len(v) == 0 {
		return
	}
	switch components {
	case 1:
		gl.Uniform1fv(loc, count, &v[0])
	case 2:
		gl.Uniform2fv(loc, count, &v[0])
	case 3:
		gl.Uniform3fv(loc, count, &v[0])
	case 4:
		gl.Uniform4fv(loc, count, &v[0])
	}
}

func (d *Device) Uniformdv(loc int32, components int, count int32, v []float64) {
	if len(v) == 0 {
		return
	}
	switch components {
	case 1:
		gl.Uniform1dv(loc, count, &v[0])
	case 2:
		gl.Uniform2dv(loc, count, &v[0])
	case 3:
		gl.Uniform3dv(loc, count, &v[0])
	case 4:
		gl.Uniform4dv(loc, count, &v[0])
	}
}

func (d *Device) Uniformiv(loc int32, components int, count int32, v []int32) {
	if len(v) == 0 {
		return
	}
	switch components {
	case 1:
		gl.Uniform1iv(loc, count, &v[0])
	case 2:
		gl.Uniform2iv(loc, count, &v[0])
	case 3:
		gl.Uniform3iv(loc, count, &v[0])
	case 4:
		gl.Uniform4iv(loc, count, &v[0])
	}
}

func (d *Device) Uniformuiv(loc int32, components int, count int32, v []uint32) {
	if len(v) == 0 {
		return
	}
	switch components {
	case 1:
		gl.Uniform1uiv(loc, count, &v[0])
	case 2:
		gl.Uniform2uiv(loc, count, &v[0])
	case 3:
		gl.Uniform3uiv(loc, count, &v[0])
	case 4:
		gl.Uniform4uiv(loc, count, &v[0])
	}
}

func (d *Device) UniformMatrixfv(loc int32, dim int, count int32, transpose bool, v []float32) {
	if len(v) == 0 {
		return
	}
	switch dim {
	case 2:
		gl.UniformMatrix2fv(loc, count, transpose, &v[0])
	case 3:
		gl.UniformMatrix3fv(loc, count, transpose, &v[0])
	case 4:
		gl.UniformMatrix4fv(loc, count, transpose, &v[0])
	}
}

func (d *Device) VertexAttribf(index uint32, v ...float32) {
	switch len(v) {
	case 1:
		gl.VertexAttrib1f(index, v[0])
	case 2:
		gl.VertexAttrib2f(index, v[0], v[1])
	case 3:
		gl.VertexAttrib3f(index, v[0], v[1], v[2])
	case 4:
		gl.VertexAttrib4f(index, v[0], v[1], v[2], v[3])
	}
}

func (d *Device) VertexAttribd(index uint32, v ...float64) {
	switch len(v) {
	case 1:
		gl.VertexAttrib1d(index, v[0])
	case 2:
		gl.VertexAttrib2d(index, v[0], v[1])
	case 3:
		gl.VertexAttrib3d(index, v[0], v[1], v[2])
	case 4:
		gl.VertexAttrib4d(index, v[0], v[1], v[2], v[3])
	}
}

func (d *Device) VertexAttribIi(index uint32, v ...int32) {
	switch len(v) {
	case 1:
		gl.VertexAttribI1i(index, v[0])
	case 2:
		gl.VertexAttribI2i(index, v[0], v[1])
	case 3:
		gl.VertexAttribI3i(index, v[0], v[1], v[2])
	case 4:
		gl.VertexAttribI4i(index, v[0], v[1], v[2], v[3])
	}
}

func (d *Device) VertexAttribIui(index uint32, v ...uint32) {
	switch len(v) {
	case 1:
		gl.VertexAttribI1ui(index, v[0])
	case 2:
		gl.VertexAttribI2ui(index, v[0], v[1])
	case 3:
		gl.VertexAttribI3ui(index, v[0], v[1], v[2])
	case 4:
		gl.VertexAttribI4ui(index, v[0], v[1], v[2], v[3])
	}
}
