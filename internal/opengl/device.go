// Package opengl implements core.Device on an OpenGL 4.1 core context.
package opengl

import (
	"fmt"

	gl "github.com/go-gl/gl/v4.1-core/gl"
	"go.uber.org/zap"

	"model-viewer/core"
	"model-viewer/internal/logger"
)

// Device drives the context that is current on the calling goroutine.
type Device struct {
	version string
	program uint32
}

var _ core.Device = (*Device)(nil)

// NewDevice loads the GL entry points. Must be called after the window
// context is made current.
func NewDevice() (*Device, error) {
	if err := gl.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize OpenGL: %w", err)
	}
	d := &Device{version: gl.GoStr(gl.GetString(gl.VERSION))}
	logger.Log.Info("OpenGL initialized",
		zap.String("version", d.version),
		zap.String("renderer", gl.GoStr(gl.GetString(gl.RENDERER))))
	return d, nil
}

func (d *Device) Version() string { return d.version }

func (d *Device) Viewport(x, y, width, height int32) {
	gl.Viewport(x, y, width, height)
}

func (d *Device) Clear(c core.Color) {
	gl.ClearColor(c.R, c.G, c.B, c.A)
	gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)
}

func (d *Device) SetDepthTest(enabled bool) {
	if enabled {
		gl.Enable(gl.DEPTH_TEST)
		gl.DepthFunc(gl.LESS)
		return
	}
	gl.Disable(gl.DEPTH_TEST)
}

// SetPolygonMode applies mode to both faces: the core profile rejects
// GL_FRONT as a polygon-mode face.
func (d *Device) SetPolygonMode(face core.PolygonFace, mode core.PolygonMode) {
	m := uint32(gl.FILL)
	if mode == core.PolygonLine {
		m = gl.LINE
	}
	gl.PolygonMode(gl.FRONT_AND_BACK, m)
}

func (d *Device) DrawElements(count int32) {
	gl.DrawElements(gl.TRIANGLES, count, gl.UNSIGNED_INT, gl.PtrOffset(0))
}
