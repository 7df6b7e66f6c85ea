package gltest

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"model-viewer/core"
)

const testFrag = `#version 410 core
#define N 2
struct Light {
    vec4 position;
    float attenuation;
};
uniform Light lights[N];
uniform int count; // trailing comment
/* uniform float hidden; */
out vec4 color;
void main() { color = vec4(lights[0].attenuation); }
`

const testVert = `#version 410 core
layout (location = 0) in vec3 aPos;
layout (location = 2) in vec2 aUV;
in float extra;
uniform mat4 model;
void main() { gl_Position = model * vec4(aPos, 1.0); }
`

func TestUniformNames(t *testing.T) {
	assert.ElementsMatch(t, []string{
		"lights[0].position", "lights[0].attenuation",
		"lights[1].position", "lights[1].attenuation",
		"count",
	}, uniformNames(testFrag))
}

func TestCheckSource(t *testing.T) {
	assert.Empty(t, checkSource(testFrag))
	assert.Contains(t, checkSource("void main() {}"), "#version")
	assert.Contains(t, checkSource("#version 410 core\nvoid main() {"), "syntax error")
	assert.Contains(t, checkSource("#version 410 core\nvoid main() { )"), "syntax error")
	assert.Contains(t, checkSource("#version 410 core\n"), "main")
}

func TestLinkAndLocations(t *testing.T) {
	d := NewDevice()
	vs := d.CreateShader(core.StageVertex)
	fs := d.CreateShader(core.StageFragment)
	ok, _ := d.CompileShader(vs, testVert)
	require.True(t, ok)
	ok, _ = d.CompileShader(fs, testFrag)
	require.True(t, ok)

	p := d.CreateProgram()
	d.AttachShader(p, vs)
	ok, log := d.LinkProgram(p)
	assert.False(t, ok)
	assert.Contains(t, log, "fragment")

	d.AttachShader(p, fs)
	ok, log = d.LinkProgram(p)
	require.True(t, ok, log)

	assert.NotEqual(t, int32(-1), d.UniformLocation(p, "model"))
	assert.NotEqual(t, int32(-1), d.UniformLocation(p, "lights[1].position"))
	assert.Equal(t, int32(-1), d.UniformLocation(p, "hidden"))
	assert.Equal(t, int32(0), d.AttribLocation(p, "aPos"))
	assert.Equal(t, int32(2), d.AttribLocation(p, "aUV"))
	assert.Equal(t, int32(3), d.AttribLocation(p, "extra"))

	d.UseProgram(p)
	d.Uniformi(d.UniformLocation(p, "count"), 2)
	assert.Equal(t, []int32{2}, d.UniformValue(p, "count"))
	assert.Empty(t, d.Errors)
}

func TestUniformWithoutProgramIsRecorded(t *testing.T) {
	d := NewDevice()
	d.Uniformf(0, 1)
	assert.Len(t, d.Errors, 1)
}

func TestDrawRecordsTextures(t *testing.T) {
	d := NewDevice()
	vs := d.CreateShader(core.StageVertex)
	fs := d.CreateShader(core.StageFragment)
	d.CompileShader(vs, testVert)
	d.CompileShader(fs, testFrag)
	p := d.CreateProgram()
	d.AttachShader(p, vs)
	d.AttachShader(p, fs)
	d.LinkProgram(p)
	d.UseProgram(p)

	vao := d.GenVertexArray()
	d.BindVertexArray(vao)
	ebo := d.GenBuffer()
	d.BindBuffer(core.ElementArrayBuffer, ebo)
	d.BufferUint32(core.ElementArrayBuffer, []uint32{0, 1, 2})
	assert.Equal(t, 12, d.BufferSize(ebo))

	tex := d.UploadTexture2D(1, 1, []byte{1, 2, 3})
	d.ActiveTexture(1)
	d.BindTexture2D(tex)
	d.DrawElements(3)
	d.BindTexture2D(0)

	require.Len(t, d.Draws, 1)
	assert.Equal(t, map[uint32]uint32{1: tex}, d.Draws[0].Textures)
	assert.Equal(t, 1, d.TextureBinds)
	assert.Empty(t, d.BoundTextures())
	assert.Empty(t, d.Errors)
}
