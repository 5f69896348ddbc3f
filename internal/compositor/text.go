package compositor

import (
	"image"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

var hudFace = basicfont.Face7x13

// renderText rasterizes one HUD line as white-on-transparent RGBA, or nil
// for an empty line.
func renderText(s string) *image.RGBA {
	if s == "" {
		return nil
	}

	d := &font.Drawer{
		Src:  image.White,
		Face: hudFace,
	}
	width := d.MeasureString(s).Ceil()
	if width == 0 {
		return nil
	}

	metrics := hudFace.Metrics()
	height := (metrics.Ascent + metrics.Descent).Ceil()

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	d.Dst = img
	d.Dot = fixed.Point26_6{X: 0, Y: metrics.Ascent}
	d.DrawString(s)
	return img
}
