package scene

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLightDefaults(t *testing.T) {
	l := NewLight()
	assert.Equal(t, LightDirectional, l.Type)
	assert.Equal(t, mgl32.Vec4{-1, -1, -1, 0}, l.Direction)
	assert.Equal(t, mgl32.Vec4{1, 1, 1, 1}, l.Position)
	assert.Equal(t, mgl32.Vec3{1, 1, 1}, l.Intensity)
	assert.Equal(t, DefaultAttenuation, l.Attenuation)
}

func TestLightSetters(t *testing.T) {
	l := NewLight()

	l.SetColor(2, -1, 0.5)
	assert.Equal(t, mgl32.Vec3{1, 0, 0.5}, l.Intensity)

	l.SetPosition(3, 4, 5)
	assert.Equal(t, mgl32.Vec4{3, 4, 5, 1}, l.Position)

	l.SetDirection(0, -1, 0)
	assert.Equal(t, mgl32.Vec4{0, -1, 0, 0}, l.Direction)

	l.SetPhong(mgl32.Vec3{0.1, 0.1, 0.1}, mgl32.Vec3{1.5, 1, 1}, mgl32.Vec3{-2, 0, 0})
	assert.Equal(t, mgl32.Vec3{0.1, 0.1, 0.1}, l.Ambient)
	assert.Equal(t, mgl32.Vec3{1, 1, 1}, l.Diffuse)
	assert.Equal(t, mgl32.Vec3{0, 0, 0}, l.Specular)
}

func TestParseLightType(t *testing.T) {
	for _, typ := range []LightType{LightPoint, LightDirectional, LightSpot} {
		got, err := ParseLightType(typ.String())
		require.NoError(t, err)
		assert.Equal(t, typ, got)
	}
	got, err := ParseLightType("")
	require.NoError(t, err)
	assert.Equal(t, LightDirectional, got)

	_, err = ParseLightType("area")
	assert.Error(t, err)
}
