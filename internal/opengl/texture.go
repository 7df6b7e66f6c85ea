package opengl

import (
	gl "github.com/go-gl/gl/v4.1-core/gl"
)

// UploadTexture2D uploads tightly packed RGB rows. The returned texture
// repeats in both directions and is trilinearly filtered.
func (d *Device) UploadTexture2D(width, height int, rgb []byte) uint32 {
	if width <= 0 || height <= 0 || len(rgb) < width*height*3 {
		return 0
	}

	var id uint32
	gl.GenTextures(1, &id)
	gl.BindTexture(gl.TEXTURE_2D, id)

	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.REPEAT)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.REPEAT)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.LINEAR_MIPMAP_LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.LINEAR)

	// RGB rows are not 4-byte aligned for odd widths.
	gl.PixelStorei(gl.UNPACK_ALIGNMENT, 1)
	gl.TexImage2D(
		gl.TEXTURE_2D,
		0,
		gl.RGB,
		int32(width),
		int32(height),
		0,
		gl.RGB,
		gl.UNSIGNED_BYTE,
		gl.Ptr(rgb),
	)
	gl.PixelStorei(gl.UNPACK_ALIGNMENT, 4)
	gl.GenerateMipmap(gl.TEXTURE_2D)

	gl.BindTexture(gl.TEXTURE_2D, 0)
	return id
}

// DeleteTexture frees a texture handle. Zero is ignored.
func (d *Device) DeleteTexture(texture uint32) {
	if texture == 0 {
		return
	}
	gl.DeleteTextures(1, &texture)
}

func (d *Device) ActiveTexture(unit uint32) {
	gl.ActiveTexture(gl.TEXTURE0 + unit)
}

func (d *Device) BindTexture2D(texture uint32) {
	gl.BindTexture(gl.TEXTURE_2D, texture)
}
