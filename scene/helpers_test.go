package scene

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"model-viewer/core"
	"model-viewer/internal/gltest"
	"model-viewer/shader"
)

const litVert = `#version 410 core
layout (location = 0) in vec3 aPos;
layout (location = 1) in vec3 aNormal;
layout (location = 2) in vec2 aTexCoords;
uniform mat4 model;
out vec2 TexCoords;
void main() {
    TexCoords = aTexCoords;
    gl_Position = model * vec4(aPos, 1.0);
}
`

const litFrag = `#version 410 core
#define MAX_LIGHTS 8
struct Light {
    vec4 position;
    vec3 intensity;
    float attenuation;
};
uniform Light allLights[MAX_LIGHTS];
uniform int numLights;
uniform sampler2D texture_diffuse1;
uniform sampler2D texture_specular1;
in vec2 TexCoords;
out vec4 FragColor;
void main() {
    vec3 c = texture(texture_diffuse1, TexCoords).rgb + texture(texture_specular1, TexCoords).rgb;
    for (int i = 0; i < numLights; i++) {
        c *= allLights[i].intensity;
    }
    FragColor = vec4(c, 1.0);
}
`

func litProgram(t *testing.T, dev *gltest.Device) *shader.Program {
	t.Helper()
	p := shader.NewProgram(dev)
	require.True(t, p.AddShaderFromSourceCode(core.StageVertex, litVert), p.Log())
	require.True(t, p.AddShaderFromSourceCode(core.StageFragment, litFrag), p.Log())
	require.True(t, p.Link(), p.Log())
	return p
}

// writePNG writes a w x h image filled with c and returns its path.
func writePNG(t *testing.T, dir, name string, w, h int, c color.RGBA) string {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, c)
		}
	}
	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, png.Encode(f, img))
	return path
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

// assertVec3Near compares per component with an absolute tolerance; mgl32's
// ApproxEqual is relative and rejects float noise around zero.
func assertVec3Near(t *testing.T, want, got mgl32.Vec3) {
	t.Helper()
	assert.InDeltaSlice(t, want[:], got[:], eps, "want %v, got %v", want, got)
}

func assertQuatNear(t *testing.T, want, got mgl32.Quat) {
	t.Helper()
	assert.InDelta(t, want.W, got.W, eps, "want %v, got %v", want, got)
	assertVec3Near(t, want.V, got.V)
}
