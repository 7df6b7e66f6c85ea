package scene

import (
	"fmt"
	"strings"

	"github.com/go-gl/mathgl/mgl32"
)

// MaxLights is the size of the light array in the built-in shaders
// (#define MAX_LIGHTS).
const MaxLights = 8

// DefaultAttenuation is uploaded for every light.
const DefaultAttenuation float32 = 0.1

type LightType int

const (
	LightPoint LightType = iota
	LightDirectional
	LightSpot
)

func (t LightType) String() string {
	switch t {
	case LightPoint:
		return "point"
	case LightDirectional:
		return "directional"
	case LightSpot:
		return "spot"
	}
	return fmt.Sprintf("LightType(%d)", int(t))
}

// ParseLightType accepts the names String returns.
func ParseLightType(s string) (LightType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "point":
		return LightPoint, nil
	case "directional", "":
		return LightDirectional, nil
	case "spot":
		return LightSpot, nil
	}
	return LightDirectional, fmt.Errorf("unknown light type %q", s)
}

// Light is a plain value. Position has w=1 and Direction has w=0 so both can
// be transformed as homogeneous vectors.
type Light struct {
	Type        LightType
	Position    mgl32.Vec4
	Direction   mgl32.Vec4
	Intensity   mgl32.Vec3
	Ambient     mgl32.Vec3
	Diffuse     mgl32.Vec3
	Specular    mgl32.Vec3
	Attenuation float32
}

func NewLight() Light {
	return Light{
		Type:        LightDirectional,
		Direction:   mgl32.Vec4{-1, -1, -1, 0},
		Position:    mgl32.Vec4{1, 1, 1, 1},
		Intensity:   mgl32.Vec3{1, 1, 1},
		Ambient:     mgl32.Vec3{0.2, 0.2, 0.2},
		Diffuse:     mgl32.Vec3{1, 1, 1},
		Specular:    mgl32.Vec3{1, 1, 1},
		Attenuation: DefaultAttenuation,
	}
}

// SetColor sets the intensity, clamping each channel to [0, 1].
func (l *Light) SetColor(r, g, b float32) {
	l.Intensity = clampVec3(mgl32.Vec3{r, g, b})
}

func (l *Light) SetPosition(x, y, z float32) {
	l.Position = mgl32.Vec4{x, y, z, 1}
}

func (l *Light) SetDirection(x, y, z float32) {
	l.Direction = mgl32.Vec4{x, y, z, 0}
}

// SetPhong stores the ambient/diffuse/specular contributions, clamped.
func (l *Light) SetPhong(ambient, diffuse, specular mgl32.Vec3) {
	l.Ambient = clampVec3(ambient)
	l.Diffuse = clampVec3(diffuse)
	l.Specular = clampVec3(specular)
}

func clampVec3(v mgl32.Vec3) mgl32.Vec3 {
	return mgl32.Vec3{
		mgl32.Clamp(v[0], 0, 1),
		mgl32.Clamp(v[1], 0, 1),
		mgl32.Clamp(v[2], 0, 1),
	}
}
