package shader

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
)

// Scalar is a GLSL scalar component type.
type Scalar interface {
	float32 | float64 | int32 | uint32
}

// SetUniform uploads a 1 to 4 component value to name. p must be bound.
func SetUniform[T Scalar](p *Program, name string, v ...T) error {
	if len(v) < 1 || len(v) > 4 {
		return fmt.Errorf("uniform %q: %d components", name, len(v))
	}
	loc, err := p.bound(name)
	if err != nil {
		return err
	}
	switch vv := any(v).(type) {
	case []float32:
		p.dev.Uniformf(loc, vv...)
	case []float64:
		p.dev.Uniformd(loc, vv...)
	case []int32:
		p.dev.Uniformi(loc, vv...)
	case []uint32:
		p.dev.Uniformui(loc, vv...)
	}
	return nil
}

// SetUniformv uploads count components-wide vectors starting at name.
func SetUniformv[T Scalar](p *Program, name string, components int, v []T, count int32) error {
	if components < 1 || components > 4 {
		return fmt.Errorf("uniform %q: %d components", name, components)
	}
	if count < 1 || len(v) < components*int(count) {
		return fmt.Errorf("uniform %q: %d values for %d x %d", name, len(v), count, components)
	}
	loc, err := p.bound(name)
	if err != nil {
		return err
	}
	switch vv := any(v).(type) {
	case []float32:
		p.dev.Uniformfv(loc, components, count, vv)
	case []float64:
		p.dev.Uniformdv(loc, components, count, vv)
	case []int32:
		p.dev.Uniformiv(loc, components, count, vv)
	case []uint32:
		p.dev.Uniformuiv(loc, components, count, vv)
	}
	return nil
}

// SetUniformMatrix uploads count dim x dim float matrices, column-major
// unless transpose is set.
func (p *Program) SetUniformMatrix(name string, dim int, v []float32, count int32, transpose bool) error {
	if dim < 2 || dim > 4 {
		return fmt.Errorf("uniform %q: %dx%d matrix", name, dim, dim)
	}
	if count < 1 || len(v) < dim*dim*int(count) {
		return fmt.Errorf("uniform %q: %d values for %d %dx%d matrices", name, len(v), count, dim, dim)
	}
	loc, err := p.bound(name)
	if err != nil {
		return err
	}
	p.dev.UniformMatrixfv(loc, dim, count, transpose, v)
	return nil
}

func (p *Program) SetUniform1f(name string, x float32) error { return SetUniform(p, name, x) }
func (p *Program) SetUniform2f(name string, x, y float32) error {
	return SetUniform(p, name, x, y)
}
func (p *Program) SetUniform3f(name string, x, y, z float32) error {
	return SetUniform(p, name, x, y, z)
}
func (p *Program) SetUniform4f(name string, x, y, z, w float32) error {
	return SetUniform(p, name, x, y, z, w)
}

func (p *Program) SetUniform1d(name string, x float64) error { return SetUniform(p, name, x) }
func (p *Program) SetUniform2d(name string, x, y float64) error {
	return SetUniform(p, name, x, y)
}
func (p *Program) SetUniform3d(name string, x, y, z float64) error {
	return SetUniform(p, name, x, y, z)
}
func (p *Program) SetUniform4d(name string, x, y, z, w float64) error {
	return SetUniform(p, name, x, y, z, w)
}

func (p *Program) SetUniform1i(name string, x int32) error { return SetUniform(p, name, x) }
func (p *Program) SetUniform2i(name string, x, y int32) error {
	return SetUniform(p, name, x, y)
}
func (p *Program) SetUniform3i(name string, x, y, z int32) error {
	return SetUniform(p, name, x, y, z)
}
func (p *Program) SetUniform4i(name string, x, y, z, w int32) error {
	return SetUniform(p, name, x, y, z, w)
}

func (p *Program) SetUniform1ui(name string, x uint32) error { return SetUniform(p, name, x) }
func (p *Program) SetUniform2ui(name string, x, y uint32) error {
	return SetUniform(p, name, x, y)
}
func (p *Program) SetUniform3ui(name string, x, y, z uint32) error {
	return SetUniform(p, name, x, y, z)
}
func (p *Program) SetUniform4ui(name string, x, y, z, w uint32) error {
	return SetUniform(p, name, x, y, z, w)
}

// SetUniformBool uploads b as the int GLSL booleans are set with.
func (p *Program) SetUniformBool(name string, b bool) error {
	var v int32
	if b {
		v = 1
	}
	return SetUniform(p, name, v)
}

func (p *Program) SetUniform1fv(name string, v []float32, count int32) error {
	return SetUniformv(p, name, 1, v, count)
}
func (p *Program) SetUniform2fv(name string, v []float32, count int32) error {
	return SetUniformv(p, name, 2, v, count)
}
func (p *Program) SetUniform3fv(name string, v []float32, count int32) error {
	return SetUniformv(p, name, 3, v, count)
}
func (p *Program) SetUniform4fv(name string, v []float32, count int32) error {
	return SetUniformv(p, name, 4, v, count)
}

func (p *Program) SetUniform1dv(name string, v []float64, count int32) error {
	return SetUniformv(p, name, 1, v, count)
}
func (p *Program) SetUniform2dv(name string, v []float64, count int32) error {
	return SetUniformv(p, name, 2, v, count)
}
func (p *Program) SetUniform3dv(name string, v []float64, count int32) error {
	return SetUniformv(p, name, 3, v, count)
}
func (p *Program) SetUniform4dv(name string, v []float64, count int32) error {
	return SetUniformv(p, name, 4, v, count)
}

func (p *Program) SetUniform1iv(name string, v []int32, count int32) error {
	return SetUniformv(p, name, 1, v, count)
}
func (p *Program) SetUniform2iv(name string, v []int32, count int32) error {
	return SetUniformv(p, name, 2, v, count)
}
func (p *Program) SetUniform3iv(name string, v []int32, count int32) error {
	return SetUniformv(p, name, 3, v, count)
}
func (p *Program) SetUniform4iv(name string, v []int32, count int32) error {
	return SetUniformv(p, name, 4, v, count)
}

func (p *Program) SetUniform1uiv(name string, v []uint32, count int32) error {
	return SetUniformv(p, name, 1, v, count)
}
func (p *Program) SetUniform2uiv(name string, v []uint32, count int32) error {
	return SetUniformv(p, name, 2, v, count)
}
func (p *Program) SetUniform3uiv(name string, v []uint32, count int32) error {
	return SetUniformv(p, name, 3, v, count)
}
func (p *Program) SetUniform4uiv(name string, v []uint32, count int32) error {
	return SetUniformv(p, name, 4, v, count)
}

func (p *Program) SetUniformMatrix2fv(name string, v []float32, count int32, transpose bool) error {
	return p.SetUniformMatrix(name, 2, v, count, transpose)
}
func (p *Program) SetUniformMatrix3fv(name string, v []float32, count int32, transpose bool) error {
	return p.SetUniformMatrix(name, 3, v, count, transpose)
}
func (p *Program) SetUniformMatrix4fv(name string, v []float32, count int32, transpose bool) error {
	return p.SetUniformMatrix(name, 4, v, count, transpose)
}

// mgl32 vectors and matrices are stored column-major, the layout GL expects.

func (p *Program) SetUniformVec2(name string, v mgl32.Vec2) error {
	return SetUniform(p, name, v[:]...)
}
func (p *Program) SetUniformVec3(name string, v mgl32.Vec3) error {
	return SetUniform(p, name, v[:]...)
}
func (p *Program) SetUniformVec4(name string, v mgl32.Vec4) error {
	return SetUniform(p, name, v[:]...)
}
func (p *Program) SetUniformMat2(name string, m mgl32.Mat2) error {
	return p.SetUniformMatrix(name, 2, m[:], 1, false)
}
func (p *Program) SetUniformMat3(name string, m mgl32.Mat3) error {
	return p.SetUniformMatrix(name, 3, m[:], 1, false)
}
func (p *Program) SetUniformMat4(name string, m mgl32.Mat4) error {
	return p.SetUniformMatrix(name, 4, m[:], 1, false)
}
