package gltest

func (d *Device) store(loc int32, v any) {
	if loc == -1 {
		return
	}
	p, ok := d.programs[d.current]
	if !ok || !p.linked {
		d.fail("uniform %d set with no program in use", loc)
		return
	}
	p.values[loc] = v
}

// UniformValue returns the last value stored for name in program: a
// []float32, []float64, []int32 or []uint32 copy of what was uploaded.
func (d *Device) UniformValue(program uint32, name string) any {
	p, ok := d.programs[program]
	if !ok || !p.linked {
		return nil
	}
	loc, ok := p.uniforms[name]
	if !ok {
		return nil
	}
	return p.values[loc]
}

// UniformTransposed reports whether the last matrix upload to name asked for
// a transpose.
func (d *Device) UniformTransposed(program uint32, name string) bool {
	p, ok := d.programs[program]
	if !ok || !p.linked {
		return false
	}
	return p.transpose[p.uniforms[name]]
}

func clone[T any](v []T) []T {
	return append([]T(nil), v...)
}

func (d *Device) Uniformf(loc int32, v ...float32) { d.store(loc, clone(v)) }
func (d *Device) Uniformd(loc int32, v ...float64) { d.store(loc, clone(v)) }
func (d *Device) Uniformi(loc int32, v ...int32) { d.store(loc, clone(v)) }
func (d *Device) Uniformui(loc int32, v ...uint32) { d.store(loc, clone(v)) }

func (d *Device) Uniformfv(loc int32, components int, count int32, v []float32) {
	d.store(loc, clone(v[:min(len(v), components*int(count))]))
}

func (d *Device) Uniformdv(loc int32, components int, count int32, v []float64) {
	d.store(loc, clone(v[:min(len(v), components*int(count))]))
}

func (d *Device) Uniformiv(loc int32, components int, count int32, v []int32) {
	d.store(loc, clone(v[:min(len(v), components*int(count))]))
}

func (d *Device) Uniformuiv(loc int32, components int, count int32, v []uint32) {
	d.store(loc, clone(v[:min(len(v), components*int(count))]))
}

func (d *Device) UniformMatrixfv(loc int32, dim int, count int32, transpose bool, v []float32) {
	d.store(loc, clone(v[:min(len(v), dim*dim*int(count))]))
	if p, ok := d.programs[d.current]; ok && p.linked && loc != -1 {
		p.transpose[loc] = transpose
	}
}

func (d *Device) VertexAttribf(index uint32, v ...float32) { d.Attribs[index] = clone(v) }
func (d *Device) VertexAttribd(index uint32, v ...float64) { d.Attribs[index] = clone(v) }
func (d *Device) VertexAttribIi(index uint32, v ...int32) { d.Attribs[index] = clone(v) }
func (d *Device) VertexAttribIui(index uint32, v ...uint32) { d.Attribs[index] = clone(v) }
