package renderer

import (
	"fmt"
	"strings"
)

// DisplayMode selects how polygons are rasterised.
type DisplayMode int

const (
	DisplayFill DisplayMode = iota
	// DisplayFillLines draws filled polygons, then their black outlines.
	DisplayFillLines
	DisplayWireframe
)

func (m DisplayMode) String() string {
	switch m {
	case DisplayFill:
		return "fill"
	case DisplayFillLines:
		return "filllines"
	case DisplayWireframe:
		return "wireframe"
	}
	return fmt.Sprintf("DisplayMode(%d)", int(m))
}

func ParseDisplayMode(s string) (DisplayMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "fill", "":
		return DisplayFill, nil
	case "filllines", "fill_lines", "fill-lines":
		return DisplayFillLines, nil
	case "wireframe", "lines":
		return DisplayWireframe, nil
	}
	return DisplayFill, fmt.Errorf("unknown display mode %q", s)
}

// ShadingMode selects per-fragment or per-vertex lighting.
type ShadingMode int

const (
	ShadingPhong ShadingMode = iota
	ShadingGouraud
)

func (m ShadingMode) String() string {
	switch m {
	case ShadingPhong:
		return "phong"
	case ShadingGouraud:
		return "gouraud"
	}
	return fmt.Sprintf("ShadingMode(%d)", int(m))
}

func ParseShadingMode(s string) (ShadingMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "phong", "":
		return ShadingPhong, nil
	case "gouraud":
		return ShadingGouraud, nil
	}
	return ShadingPhong, fmt.Errorf("unknown shading mode %q", s)
}

// programName is the shader program a shading mode paints with.
func (m ShadingMode) programName() string {
	if m == ShadingGouraud {
		return GouraudProgram
	}
	return PhongProgram
}

// TextureMode picks between sampled textures and a flat material colour.
type TextureMode int

const (
	TextureModeTexture TextureMode = iota
	TextureModeColor
)

func (m TextureMode) String() string {
	switch m {
	case TextureModeTexture:
		return "texture"
	case TextureModeColor:
		return "color"
	}
	return fmt.Sprintf("TextureMode(%d)", int(m))
}

func ParseTextureMode(s string) (TextureMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "texture", "":
		return TextureModeTexture, nil
	case "color", "colour":
		return TextureModeColor, nil
	}
	return TextureModeTexture, fmt.Errorf("unknown texture mode %q", s)
}
