package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"

	"model-viewer/core"
	"model-viewer/internal/logger"
	"model-viewer/internal/opengl"
	"model-viewer/renderer"
	"model-viewer/scene"
)

const (
	// Pixels of drag to world units when panning the model.
	panSensitivity float32 = 0.01
	// Degrees of model rotation per pixel of drag.
	modelRotateSensitivity float32 = 0.5
	maxFrameTime           float32 = 0.05
)

var (
	configPath  = flag.String("config", "", "YAML config file; defaults apply when empty")
	modelPath   = flag.String("model", "", "model to open at startup")
	shaderDir   = flag.String("shaders", "", "directory with phong/gouraud/lamp .vert and .frag files")
	watch       = flag.Bool("watch", false, "reload shaders when files in -shaders change")
	logLevel    = flag.String("log-level", "", "debug, info, warn or error")
	dumpShaders = flag.String("dump-shaders", "", "write the built-in shader sources to this directory and exit")
)

func main() {
	flag.Parse()
	if err := run(); err != nil {
		logger.Log.Error("Viewer failed", zap.Error(err))
		logger.Sync()
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := core.LoadConfig(*configPath)
	if err != nil {
		return err
	}
	if err := applyFlags(&cfg); err != nil {
		return err
	}

	if err := logger.Init(cfg.Log.Level, cfg.Log.JSON); err != nil {
		return err
	}
	defer logger.Sync()

	if *dumpShaders != "" {
		if err := renderer.WriteBuiltinSources(*dumpShaders); err != nil {
			return err
		}
		logger.Log.Info("Wrote built-in shaders", zap.String("dir", *dumpShaders))
		return nil
	}

	window, err := core.NewWindow(cfg.Window)
	if err != nil {
		return err
	}
	defer window.Destroy()

	dev, err := opengl.NewDevice()
	if err != nil {
		return err
	}
	logger.Log.Info("OpenGL context ready", zap.String("version", dev.Version()))

	view, err := renderer.NewViewport(dev, cfg)
	if err != nil {
		return err
	}
	width, height := window.GetFramebufferSize()
	view.Resize(width, height)
	if err := view.Init(); err != nil {
		return err
	}
	defer view.Destroy()

	var reload <-chan struct{}
	if cfg.Render.WatchShader && cfg.Render.ShaderDir != "" {
		sw, err := newShaderWatcher(cfg.Render.ShaderDir)
		if err != nil {
			logger.Log.Warn("Shader hot reload disabled", zap.Error(err))
		} else {
			defer sw.Close()
			reload = sw.Changed
		}
	}

	installCallbacks(window, view)
	input := NewInputManager(window)
	printControls()

	last := window.Time()
	titleAt := time.Now()
	frames := 0
	for !window.ShouldClose() {
		window.PollEvents()
		input.Update()

		now := window.Time()
		dt := min(float32(now-last), maxFrameTime)
		last = now

		select {
		case <-reload:
			_ = view.ReloadShaders()
		default:
		}

		handleInput(view, input, cfg.Camera.MouseSensitivity, dt)
		input.EndFrame()

		view.Tick(dt)
		if err := view.Paint(); err != nil {
			logger.Log.Error("Paint failed", zap.Error(err))
		}
		window.SwapBuffers()

		frames++
		if elapsed := time.Since(titleAt); elapsed >= time.Second {
			window.SetTitle(titleFor(cfg.Window.Title, view, float64(frames)/elapsed.Seconds()))
			frames = 0
			titleAt = time.Now()
		}
	}
	logger.Log.Info("Exiting")
	return nil
}

// applyFlags overrides cfg with the command line and expands "~" in the
// paths the flags supplied.
func applyFlags(cfg *core.Config) error {
	if *modelPath != "" {
		cfg.Model = *modelPath
	}
	if *shaderDir != "" {
		cfg.Render.ShaderDir = *shaderDir
	}
	if *watch {
		cfg.Render.WatchShader = true
	}
	if *logLevel != "" {
		cfg.Log.Level = *logLevel
	}
	return cfg.ExpandPaths()
}

func installCallbacks(window *core.Window, view *renderer.Viewport) {
	window.SetFramebufferSizeCallback(view.Resize)

	window.SetDropCallback(func(paths []string) {
		if len(paths) == 0 {
			return
		}
		if err := view.OpenFile(paths[0]); err != nil {
			logger.Log.Error("Open failed", zap.String("path", paths[0]), zap.Error(err))
		}
	})

	window.SetKeyCallback(func(key int, ctrl bool) {
		switch key {
		case core.KeyEscape:
			window.SetShouldClose(true)
		case core.Key1:
			view.SetDisplayMode(renderer.DisplayFill)
		case core.Key2:
			view.SetDisplayMode(renderer.DisplayFillLines)
		case core.Key3:
			view.SetDisplayMode(renderer.DisplayWireframe)
		case core.KeyP:
			view.SetShadingMode(renderer.ShadingPhong)
		case core.KeyG:
			view.SetShadingMode(renderer.ShadingGouraud)
		case core.KeyF:
			view.SetFlat(!view.Flat())
		case core.KeyT:
			if view.TextureMode() == renderer.TextureModeTexture {
				view.SetTextureMode(renderer.TextureModeColor)
			} else {
				view.SetTextureMode(renderer.TextureModeTexture)
			}
		case core.KeyR:
			view.ResetModel()
		case core.KeyL:
			if ctrl {
				_ = view.ReloadShaders()
			}
		}
	})
}

var moveKeys = []struct {
	key int
	dir scene.CameraMovement
}{
	{core.KeyW, scene.MoveForward},
	{core.KeyUp, scene.MoveForward},
	{core.KeyS, scene.MoveBackward},
	{core.KeyDown, scene.MoveBackward},
	{core.KeyA, scene.MoveLeft},
	{core.KeyLeft, scene.MoveLeft},
	{core.KeyD, scene.MoveRight},
	{core.KeyRight, scene.MoveRight},
	{core.KeyE, scene.MoveUp},
	{core.KeyQ, scene.MoveDown},
}

// handleInput maps held keys and mouse drags. With Ctrl held the mouse acts
// on the model instead of the camera.
func handleInput(view *renderer.Viewport, in *InputManager, sensitivity, dt float32) {
	for _, mk := range moveKeys {
		if in.KeyDown(mk.key) {
			view.Move(mk.dir, dt)
		}
	}

	dx, dy := float32(in.MouseDeltaX), float32(in.MouseDeltaY)
	switch {
	case in.CtrlDown && in.LeftDown:
		view.Translate(dx*panSensitivity, -dy*panSensitivity)
	case in.CtrlDown && in.RightDown:
		view.RotateModel(dx * modelRotateSensitivity)
	case in.RightDown:
		// Screen y grows downwards.
		view.Rotate(-dy*sensitivity, dx*sensitivity)
	}

	if in.ScrollDelta != 0 {
		if in.CtrlDown {
			view.ScaleModel(float32(in.ScrollDelta))
		} else {
			view.Zoom(float32(in.ScrollDelta))
		}
	}
}

func titleFor(base string, view *renderer.Viewport, fps float64) string {
	st := view.Stats()
	return fmt.Sprintf("%s | %.0f FPS | %d verts %d tris | %s %s",
		base, fps, st.Vertices, st.Triangles, view.ShadingMode(), view.DisplayMode())
}

func printControls() {
	fmt.Println("Controls:")
	fmt.Println("  W/A/S/D, arrows   move camera      Q/E        down / up")
	fmt.Println("  Right drag        look around      Wheel      zoom")
	fmt.Println("  Ctrl+Left drag    pan model        Ctrl+Right drag  rotate model")
	fmt.Println("  Ctrl+Wheel        scale model      R          reset model")
	fmt.Println("  1/2/3             fill / fill+lines / wireframe")
	fmt.Println("  P/G               phong / gouraud  F          toggle flat")
	fmt.Println("  T                 texture / colour Ctrl+L     reload shaders")
	fmt.Println("  Drop a file       open model       Esc        quit")
}
