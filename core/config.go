package core

import (
	"fmt"
	"os"

	"github.com/mitchellh/go-homedir"
	"gopkg.in/yaml.v3"
)

// Config is the viewer configuration. DefaultConfig supplies every value;
// a YAML file only needs the keys it overrides.
type Config struct {
	Window WindowConfig  `yaml:"window"`
	Camera CameraConfig  `yaml:"camera"`
	Render RenderConfig  `yaml:"render"`
	Lights []LightConfig `yaml:"lights"`
	Log    LogConfig     `yaml:"log"`
	// Model is loaded at startup when set.
	Model string `yaml:"model"`
}

type WindowConfig struct {
	Width      int    `yaml:"width"`
	Height     int    `yaml:"height"`
	Title      string `yaml:"title"`
	Resizable  bool   `yaml:"resizable"`
	VSync      bool   `yaml:"vsync"`
	Fullscreen bool   `yaml:"fullscreen"`
}

type CameraConfig struct {
	Position [3]float32 `yaml:"position"`
	Yaw      float32    `yaml:"yaw"`
	Pitch    float32    `yaml:"pitch"`
	Speed    float32    `yaml:"speed"`
	MaxFOV   float32    `yaml:"max_fov"`
	Near     float32    `yaml:"near"`
	Far      float32    `yaml:"far"`
	// MouseSensitivity is degrees of rotation per pixel of mouse travel.
	MouseSensitivity float32 `yaml:"mouse_sensitivity"`
}

type RenderConfig struct {
	// ShaderDir holds phong/gouraud/lamp .vert/.frag files. Empty means the
	// built-in sources.
	ShaderDir   string `yaml:"shader_dir"`
	WatchShader bool   `yaml:"watch_shaders"`
	ClearColor  Color  `yaml:"clear_color"`
	Ambient     Color  `yaml:"ambient"`
	DisplayMode string `yaml:"display_mode"`
	ShadingMode string `yaml:"shading_mode"`
	Flat        bool   `yaml:"flat"`
	Textured    bool   `yaml:"textured"`
	ShowLamps   bool   `yaml:"show_lamps"`
	// AnimateLights orbits point lights around the Y axis.
	AnimateLights bool `yaml:"animate_lights"`
	// Textures for the built-in cube shown when no model is loaded. Either
	// may be empty.
	CubeDiffuse  string `yaml:"cube_diffuse"`
	CubeSpecular string `yaml:"cube_specular"`
}

type LightConfig struct {
	Type     string     `yaml:"type"`
	Position [3]float32 `yaml:"position"`
	Color    [3]float32 `yaml:"color"`
}

type LogConfig struct {
	Level string `yaml:"level"`
	JSON  bool   `yaml:"json"`
}

func DefaultWindowConfig() WindowConfig {
	return WindowConfig{
		Width:      1280,
		Height:     720,
		Title:      "Model Viewer",
		Resizable:  true,
		VSync:      true,
		Fullscreen: false,
	}
}

func DefaultConfig() Config {
	return Config{
		Window: DefaultWindowConfig(),
		Camera: CameraConfig{
			Position:         [3]float32{0, 0, 5},
			Yaw:              -90,
			Pitch:            0,
			Speed:            1,
			MaxFOV:           45,
			Near:             0.1,
			Far:              100,
			MouseSensitivity: 0.1,
		},
		Render: RenderConfig{
			ClearColor:  ColorSky,
			Ambient:     Color{R: 0.2, G: 0.2, B: 0.2, A: 1},
			DisplayMode: "fill",
			ShadingMode: "phong",
			Flat:        false,
			Textured:    true,
			ShowLamps:   true,
		},
		Lights: []LightConfig{
			{Type: "point", Position: [3]float32{1, 1, 1}, Color: [3]float32{1, 1, 1}},
			{Type: "point", Position: [3]float32{-1, 1, 1}, Color: [3]float32{1, 1, 1}},
		},
		Log: LogConfig{Level: "info"},
	}
}

// LoadConfig reads path over DefaultConfig. An empty path returns the
// defaults. Paths inside the file may start with "~".
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}
	expanded, err := homedir.Expand(path)
	if err != nil {
		return cfg, fmt.Errorf("expand config path %q: %w", path, err)
	}
	data, err := os.ReadFile(expanded)
	if err != nil {
		return cfg, fmt.Errorf("read config %q: %w: %w", expanded, ErrIO, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %q: %w", expanded, err)
	}
	if err := cfg.ExpandPaths(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// ExpandPaths resolves a leading "~" in every file path of the config.
func (c *Config) ExpandPaths() error {
	for _, p := range []*string{&c.Model, &c.Render.ShaderDir, &c.Render.CubeDiffuse, &c.Render.CubeSpecular} {
		if *p == "" {
			continue
		}
		expanded, err := homedir.Expand(*p)
		if err != nil {
			return fmt.Errorf("expand %q: %w", *p, err)
		}
		*p = expanded
	}
	return nil
}
