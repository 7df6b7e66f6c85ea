package shader

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
)

// ArrayUniformName addresses one member of a uniform array:
// ("lights", 2, "position") gives "lights[2].position". An empty field
// addresses the element itself.
func ArrayUniformName(name string, index int, field string) string {
	if field == "" {
		return fmt.Sprintf("%s[%d]", name, index)
	}
	return fmt.Sprintf("%s[%d].%s", name, index, field)
}

func (p *Program) SetArrayUniform1f(name string, index int, field string, v float32) error {
	return SetUniform(p, ArrayUniformName(name, index, field), v)
}

func (p *Program) SetArrayUniform1i(name string, index int, field string, v int32) error {
	return SetUniform(p, ArrayUniformName(name, index, field), v)
}

func (p *Program) SetArrayUniformVec3(name string, index int, field string, v mgl32.Vec3) error {
	return p.SetUniformVec3(ArrayUniformName(name, index, field), v)
}

func (p *Program) SetArrayUniformVec4(name string, index int, field string, v mgl32.Vec4) error {
	return p.SetUniformVec4(ArrayUniformName(name, index, field), v)
}
