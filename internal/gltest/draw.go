package gltest

import (
	"maps"

	"model-viewer/core"
)

func (d *Device) UploadTexture2D(width, height int, rgb []byte) uint32 {
	if width <= 0 || height <= 0 || len(rgb) < width*height*3 {
		d.fail("texture upload: %dx%d with %d bytes", width, height, len(rgb))
		return 0
	}
	h := d.handle()
	d.textures[h] = texture{width: width, height: height}
	return h
}

func (d *Device) DeleteTexture(tex uint32) {
	delete(d.textures, tex)
	for unit, bound := range d.units {
		if bound == tex {
			delete(d.units, unit)
		}
	}
}

func (d *Device) ActiveTexture(unit uint32) { d.activeUnit = unit }

func (d *Device) BindTexture2D(tex uint32) {
	if tex == 0 {
		delete(d.units, d.activeUnit)
		return
	}
	if _, ok := d.textures[tex]; !ok {
		d.fail("bind: unknown texture %d", tex)
		return
	}
	d.units[d.activeUnit] = tex
	d.TextureBinds++
}

// Textures reports the number of live texture objects.
func (d *Device) Textures() int { return len(d.textures) }

// TextureSize returns the dimensions of an uploaded texture.
func (d *Device) TextureSize(tex uint32) (int, int, bool) {
	t, ok := d.textures[tex]
	return t.width, t.height, ok
}

// BoundTextures returns a copy of the unit to texture bindings.
func (d *Device) BoundTextures() map[uint32]uint32 {
	return maps.Clone(d.units)
}

func (d *Device) Viewport(x, y, width, height int32) {
	d.ViewportWH = [2]int32{width, height}
}

func (d *Device) Clear(c core.Color) {
	d.ClearColor = c
	d.Clears++
}

func (d *Device) SetDepthTest(enabled bool) { d.DepthTest = enabled }

func (d *Device) SetPolygonMode(face core.PolygonFace, mode core.PolygonMode) {
	d.polygonMode = mode
}

func (d *Device) DrawElements(count int32) {
	if d.current == 0 {
		d.fail("draw with no program in use")
	}
	if d.boundVAO == 0 {
		d.fail("draw with no vertex array bound")
	}
	if d.boundElem == 0 {
		d.fail("indexed draw with no element buffer")
	}
	d.Draws = append(d.Draws, Draw{
		VAO:      d.boundVAO,
		Program:  d.current,
		Count:    count,
		Mode:     d.polygonMode,
		Textures: maps.Clone(d.units),
	})
}

// Reset forgets recorded draws, binds and errors but keeps GPU objects.
func (d *Device) Reset() {
	d.Draws = nil
	d.TextureBinds = 0
	d.Errors = nil
	d.Clears = 0
}
