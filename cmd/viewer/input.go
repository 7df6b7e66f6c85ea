package main

import (
	"model-viewer/core"
)

// InputManager tracks the mouse and held keys between frames.
type InputManager struct {
	MouseDeltaX, MouseDeltaY float64
	lastMouseX, lastMouseY   float64
	ScrollDelta              float64

	LeftDown  bool
	RightDown bool
	CtrlDown  bool

	window     *core.Window
	firstFrame bool
}

// NewInputManager installs a scroll callback that accumulates into
// ScrollDelta until EndFrame.
func NewInputManager(window *core.Window) *InputManager {
	im := &InputManager{
		window:     window,
		firstFrame: true,
	}

	window.SetScrollCallback(func(xoff, yoff float64) {
		im.ScrollDelta += yoff
	})

	return im
}

// Update polls the cursor, buttons and modifiers. Call it once per frame
// after PollEvents.
func (im *InputManager) Update() {
	x, y := im.window.GetCursorPos()
	if im.firstFrame {
		im.lastMouseX = x
		im.lastMouseY = y
		im.firstFrame = false
	}
	im.MouseDeltaX = x - im.lastMouseX
	im.MouseDeltaY = y - im.lastMouseY
	im.lastMouseX = x
	im.lastMouseY = y

	im.LeftDown = im.window.IsMouseButtonPressed(core.MouseLeft)
	im.RightDown = im.window.IsMouseButtonPressed(core.MouseRight)
	im.CtrlDown = im.window.IsKeyPressed(core.KeyLeftControl) || im.window.IsKeyPressed(core.KeyRightControl)
}

// KeyDown reports whether key is held.
func (im *InputManager) KeyDown(key int) bool {
	return im.window.IsKeyPressed(key)
}

// EndFrame clears per-frame accumulators.
func (im *InputManager) EndFrame() {
	im.ScrollDelta = 0
}
