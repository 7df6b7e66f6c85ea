package shader

import "fmt"

// SetAttrib sets the constant value of a vertex input that has no array
// bound. int32 and uint32 use the integer entry points.
func SetAttrib[T Scalar](p *Program, name string, v ...T) error {
	if len(v) < 1 || len(v) > 4 {
		return fmt.Errorf("attribute %q: %d components", name, len(v))
	}
	loc, err := p.Attrib(name)
	if err != nil {
		return err
	}
	index := uint32(loc)
	switch vv := any(v).(type) {
	case []float32:
		p.dev.VertexAttribf(index, vv...)
	case []float64:
		p.dev.VertexAttribd(index, vv...)
	case []int32:
		p.dev.VertexAttribIi(index, vv...)
	case []uint32:
		p.dev.VertexAttribIui(index, vv...)
	}
	return nil
}

func setAttribv(p *Program, name string, components int, v []float32) error {
	if len(v) < components {
		return fmt.Errorf("attribute %q: %d values for %d components", name, len(v), components)
	}
	return SetAttrib(p, name, v[:components]...)
}

func (p *Program) SetAttrib1f(name string, x float32) error { return SetAttrib(p, name, x) }
func (p *Program) SetAttrib2f(name string, x, y float32) error {
	return SetAttrib(p, name, x, y)
}
func (p *Program) SetAttrib3f(name string, x, y, z float32) error {
	return SetAttrib(p, name, x, y, z)
}
func (p *Program) SetAttrib4f(name string, x, y, z, w float32) error {
	return SetAttrib(p, name, x, y, z, w)
}

func (p *Program) SetAttrib1fv(name string, v []float32) error { return setAttribv(p, name, 1, v) }
func (p *Program) SetAttrib2fv(name string, v []float32) error { return setAttribv(p, name, 2, v) }
func (p *Program) SetAttrib3fv(name string, v []float32) error { return setAttribv(p, name, 3, v) }
func (p *Program) SetAttrib4fv(name string, v []float32) error { return setAttribv(p, name, 4, v) }

func (p *Program) SetAttribI1i(name string, x int32) error { return SetAttrib(p, name, x) }
func (p *Program) SetAttribI2i(name string, x, y int32) error {
	return SetAttrib(p, name, x, y)
}
func (p *Program) SetAttribI3i(name string, x, y, z int32) error {
	return SetAttrib(p, name, x, y, z)
}
func (p *Program) SetAttribI4i(name string, x, y, z, w int32) error {
	return SetAttrib(p, name, x, y, z, w)
}

func (p *Program) SetAttribI1ui(name string, x uint32) error { return SetAttrib(p, name, x) }
func (p *Program) SetAttribI2ui(name string, x, y uint32) error {
	return SetAttrib(p, name, x, y)
}
func (p *Program) SetAttribI3ui(name string, x, y, z uint32) error {
	return SetAttrib(p, name, x, y, z)
}
func (p *Program) SetAttribI4ui(name string, x, y, z, w uint32) error {
	return SetAttrib(p, name, x, y, z, w)
}

func (p *Program) SetAttrib1d(name string, x float64) error { return SetAttrib(p, name, x) }
func (p *Program) SetAttrib2d(name string, x, y float64) error {
	return SetAttrib(p, name, x, y)
}
func (p *Program) SetAttrib3d(name string, x, y, z float64) error {
	return SetAttrib(p, name, x, y, z)
}
func (p *Program) SetAttrib4d(name string, x, y, z, w float64) error {
	return SetAttrib(p, name, x, y, z, w)
}
