package scene

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"

	"model-viewer/core"
)

// CameraMovement is a window-system independent move direction.
type CameraMovement int

const (
	MoveForward CameraMovement = iota
	MoveBackward
	MoveLeft
	MoveRight
	MoveUp
	MoveDown
)

const (
	DefaultYaw    float32 = -90
	DefaultPitch  float32 = 0
	DefaultSpeed  float32 = 1
	DefaultMaxFOV float32 = 45

	maxPitch float32 = 89
	minFOV   float32 = 1
)

// Camera is a free-fly camera driven by yaw and pitch in degrees.
// Front, Right and Up are derived; change the angles through Rotate.
type Camera struct {
	Position mgl32.Vec3
	Front    mgl32.Vec3
	Right    mgl32.Vec3
	Up       mgl32.Vec3
	// ReferenceUp is the up vector the basis is built against.
	ReferenceUp mgl32.Vec3
	// WorldUp is the axis MoveUp and MoveDown follow.
	WorldUp mgl32.Vec3

	Yaw    float32
	Pitch  float32
	Speed  float32
	FOV    float32
	MaxFOV float32
}

func NewCamera(position, up mgl32.Vec3, yaw, pitch float32) *Camera {
	c := &Camera{
		Position:    position,
		Front:       mgl32.Vec3{0, 0, -1},
		ReferenceUp: up,
		WorldUp:     mgl32.Vec3{0, 1, 0},
		Yaw:         yaw,
		Pitch:       mgl32.Clamp(pitch, -maxPitch, maxPitch),
		Speed:       DefaultSpeed,
		FOV:         DefaultMaxFOV,
		MaxFOV:      DefaultMaxFOV,
	}
	c.updateVectors()
	return c
}

// NewCameraFromConfig applies a camera section of the viewer config.
func NewCameraFromConfig(cfg core.CameraConfig) *Camera {
	c := NewCamera(mgl32.Vec3(cfg.Position), mgl32.Vec3{0, 1, 0}, cfg.Yaw, cfg.Pitch)
	if cfg.Speed > 0 {
		c.Speed = cfg.Speed
	}
	if cfg.MaxFOV >= minFOV {
		c.MaxFOV = cfg.MaxFOV
		c.FOV = cfg.MaxFOV
	}
	return c
}

func (c *Camera) ViewMatrix() mgl32.Mat4 {
	return mgl32.LookAtV(c.Position, c.Position.Add(c.Front), c.Up)
}

// ProjectionMatrix returns a perspective projection for the current FOV.
func (c *Camera) ProjectionMatrix(aspect, near, far float32) mgl32.Mat4 {
	if aspect <= 0 {
		aspect = 1
	}
	return mgl32.Perspective(mgl32.DegToRad(c.FOV), aspect, near, far)
}

// Move translates the camera by Speed*dt along direction.
func (c *Camera) Move(direction CameraMovement, dt float32) {
	velocity := c.Speed * dt
	switch direction {
	case MoveForward:
		c.Position = c.Position.Add(c.Front.Mul(velocity))
	case MoveBackward:
		c.Position = c.Position.Sub(c.Front.Mul(velocity))
	case MoveLeft:
		c.Position = c.Position.Sub(c.Right.Mul(velocity))
	case MoveRight:
		c.Position = c.Position.Add(c.Right.Mul(velocity))
	case MoveUp:
		c.Position = c.Position.Add(c.WorldUp.Mul(velocity))
	case MoveDown:
		c.Position = c.Position.Sub(c.WorldUp.Mul(velocity))
	}
}

// Rotate adds to pitch and yaw (degrees). Pitch stays within [-89, 89].
func (c *Camera) Rotate(pitchDelta, yawDelta float32) {
	c.Pitch = mgl32.Clamp(c.Pitch+pitchDelta, -maxPitch, maxPitch)
	c.Yaw += yawDelta
	c.updateVectors()
}

// Zoom narrows the field of view by delta degrees, within [1, MaxFOV].
func (c *Camera) Zoom(delta float32) {
	c.FOV = mgl32.Clamp(c.FOV-delta, minFOV, c.MaxFOV)
}

// FrameBounds resets the orientation and backs the camera off along +Z
// until b fits the vertical field of view.
func (c *Camera) FrameBounds(b core.AABB) {
	radius := b.Size().Len() / 2
	if radius <= 0 {
		radius = 1
	}
	half := float64(mgl32.DegToRad(c.FOV)) / 2
	distance := radius / float32(math.Sin(half)) * 1.1

	c.Yaw = DefaultYaw
	c.Pitch = DefaultPitch
	c.updateVectors()
	c.Position = b.Center().Sub(c.Front.Mul(distance))
}

func (c *Camera) updateVectors() {
	yaw := float64(mgl32.DegToRad(c.Yaw))
	pitch := float64(mgl32.DegToRad(c.Pitch))
	front := mgl32.Vec3{
		float32(math.Cos(yaw) * math.Cos(pitch)),
		float32(math.Sin(pitch)),
		float32(math.Sin(yaw) * math.Cos(pitch)),
	}
	c.Front = front.Normalize()
	c.Right = c.Front.Cross(c.ReferenceUp).Normalize()
	c.Up = c.Right.Cross(c.Front).Normalize()
}
