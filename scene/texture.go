package scene

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"os"

	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"model-viewer/core"
)

type TextureType int

const (
	TextureDiffuse TextureType = iota
	TextureSpecular
)

func (t TextureType) String() string {
	if t == TextureSpecular {
		return "specular"
	}
	return "diffuse"
}

// SamplerName is the sampler uniform a texture of this type is bound to.
func (t TextureType) SamplerName() string {
	if t == TextureSpecular {
		return "texture_specular1"
	}
	return "texture_diffuse1"
}

// Texture is one entry of a Mesh texture table. ID is zero until the mesh
// buffers are generated.
type Texture struct {
	ID   uint32
	Type TextureType
	// Path is absolute for files on disk. Images embedded in a model file
	// use "<model path>#<name>" and carry their bytes in data.
	Path string
	data []byte
}

// MaxTextureSize bounds either dimension of an uploaded image; larger images
// are downscaled.
const MaxTextureSize = 8192

// LoadImageRGB reads and decodes an image file into tightly packed RGB rows,
// top row first.
func LoadImageRGB(path string) (int, int, []byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, 0, nil, fmt.Errorf("open texture %q: %w: %w", path, core.ErrIO, err)
	}
	defer f.Close()
	w, h, rgb, err := DecodeImageRGB(f)
	if err != nil {
		return 0, 0, nil, fmt.Errorf("texture %q: %w", path, err)
	}
	return w, h, rgb, nil
}

// DecodeImageRGB decodes PNG, JPEG, GIF, BMP, TIFF or WebP data.
func DecodeImageRGB(r io.Reader) (int, int, []byte, error) {
	img, _, err := image.Decode(r)
	if err != nil {
		return 0, 0, nil, fmt.Errorf("%w: %w", core.ErrTextureDecode, err)
	}
	bounds := img.Bounds()
	if bounds.Empty() {
		return 0, 0, nil, fmt.Errorf("%w: empty image", core.ErrTextureDecode)
	}

	w, h := fitTextureSize(bounds.Dx(), bounds.Dy())
	rgba := image.NewRGBA(image.Rect(0, 0, w, h))
	if w == bounds.Dx() && h == bounds.Dy() {
		draw.Draw(rgba, rgba.Bounds(), img, bounds.Min, draw.Src)
	} else {
		draw.CatmullRom.Scale(rgba, rgba.Bounds(), img, bounds, draw.Src, nil)
	}

	rgb := make([]byte, 0, w*h*3)
	for i := 0; i < len(rgba.Pix); i += 4 {
		rgb = append(rgb, rgba.Pix[i], rgba.Pix[i+1], rgba.Pix[i+2])
	}
	return w, h, rgb, nil
}

func fitTextureSize(w, h int) (int, int) {
	if w <= MaxTextureSize && h <= MaxTextureSize {
		return w, h
	}
	scale := float64(MaxTextureSize) / float64(max(w, h))
	return max(1, int(float64(w)*scale)), max(1, int(float64(h)*scale))
}

// pixels decodes the texture source, from memory or disk.
func (t *Texture) pixels() (int, int, []byte, error) {
	if t.data != nil {
		w, h, rgb, err := DecodeImageRGB(bytes.NewReader(t.data))
		if err != nil {
			return 0, 0, nil, fmt.Errorf("texture %q: %w", t.Path, err)
		}
		return w, h, rgb, nil
	}
	w, h, rgb, err := LoadImageRGB(t.Path)
	if err != nil && !errors.Is(err, core.ErrTextureDecode) {
		err = fmt.Errorf("%w: %w", core.ErrTextureDecode, err)
	}
	return w, h, rgb, err
}
