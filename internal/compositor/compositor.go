// Package compositor sequences the per-frame render passes: one 3D
// perspective pass for the mesh, then one 2D orthographic pass for the video
// thumbnail and HUD text.
package compositor

import (
	"image"

	xdraw "golang.org/x/image/draw"

	"github.com/quaywood/handviewer/internal/engine/surface"
	"github.com/quaywood/handviewer/internal/transform"
)

// Canvas is the immediate-mode subset of the drawing surface the compositor
// needs. surface.Surface satisfies it.
type Canvas interface {
	Clear()
	MatrixMode(m surface.MatrixMode)
	PushMatrix()
	PopMatrix()
	LoadIdentity()
	Ortho(left, right, bottom, top, near, far float64)
	Translate(x, y, z float32)
	Rotate(angleDeg, x, y, z float32)
	Enable(c surface.Capability)
	Disable(c surface.Capability)
	Color(r, g, b, a float32)
	FillRect(x0, y0, x1, y1 float32)
	DrawPixels(x, y float32, img *image.RGBA)
}

// Renderer draws the mesh inside the 3D pass. *geometry.Buffer satisfies it.
type Renderer interface {
	Render()
}

// Layout constants for the 2D overlay, in window pixels.
const (
	thumbMargin   = 10 // gap between the thumbnail quad and the window edge
	thumbPadding  = 5  // backing quad border around the thumbnail
	hudLeft       = 10
	hudTopOffset  = 30 // first HUD line baseline from the window top
	hudLineHeight = 25
)

// modelColor is the tint applied to the lit mesh.
var modelColor = [4]float32{0.9, 0.8, 0.7, 1}

// Compositor owns the per-frame pass sequencing against a window of known
// pixel dimensions.
type Compositor struct {
	canvas Canvas

	width, height  int
	thumbW, thumbH int

	blank *image.RGBA // substituted when no video frame is available
	thumb *image.RGBA // reused scale target
}

// New creates a compositor for a window of the given pixel size.
func New(canvas Canvas, width, height, thumbW, thumbH int) *Compositor {
	return &Compositor{
		canvas: canvas,
		width:  width,
		height: height,
		thumbW: thumbW,
		thumbH: thumbH,
		blank:  blankFrame(thumbW, thumbH),
		thumb:  image.NewRGBA(image.Rect(0, 0, thumbW, thumbH)),
	}
}

// Resize updates the pixel extent used by the orthographic pass.
func (c *Compositor) Resize(width, height int) {
	c.width = width
	c.height = height
}

// Frame renders one complete frame in strict order: clear, 3D pass, 2D
// overlay pass. Presentation (buffer swap) belongs to the caller. Every
// matrix push in the 2D pass is matched by exactly one pop, and capability
// toggles are restored, before Frame returns.
func (c *Compositor) Frame(mesh Renderer, st transform.State, video *image.RGBA, hud []string) {
	c.canvas.Clear()

	// 3D pass: zoom and rotation around the fixed camera offset.
	c.canvas.MatrixMode(surface.ModelView)
	c.canvas.PushMatrix()
	c.canvas.Translate(0, 0, st.Zoom)
	c.canvas.Rotate(st.RotationX, 1, 0, 0)
	c.canvas.Rotate(st.RotationY, 0, 1, 0)
	c.canvas.Color(modelColor[0], modelColor[1], modelColor[2], modelColor[3])
	mesh.Render()
	c.canvas.PopMatrix()

	// 2D overlay pass.
	c.begin2D()
	c.drawVideoThumb(video)
	c.drawHUD(hud)
	c.end2D()
}

// begin2D switches to an orthographic projection spanning the window and
// disables the 3D-pass state the overlay must not see.
func (c *Compositor) begin2D() {
	c.canvas.MatrixMode(surface.Projection)
	c.canvas.PushMatrix()
	c.canvas.LoadIdentity()
	c.canvas.Ortho(0, float64(c.width), 0, float64(c.height), -1, 1)
	c.canvas.MatrixMode(surface.ModelView)
	c.canvas.PushMatrix()
	c.canvas.LoadIdentity()

	c.canvas.Disable(surface.DepthTest)
	c.canvas.Disable(surface.Lighting)
	c.canvas.Enable(surface.Blend)
}

// end2D restores the 3D-pass state with exact matrix-mode symmetry.
func (c *Compositor) end2D() {
	c.canvas.Disable(surface.Blend)
	c.canvas.Enable(surface.DepthTest)
	c.canvas.Enable(surface.Lighting)

	c.canvas.MatrixMode(surface.Projection)
	c.canvas.PopMatrix()
	c.canvas.MatrixMode(surface.ModelView)
	c.canvas.PopMatrix()
}

// drawVideoThumb draws the backing quad and the current video frame in the
// bottom-right corner. A nil frame substitutes solid black.
func (c *Compositor) drawVideoThumb(video *image.RGBA) {
	w := float32(c.width)
	tw := float32(c.thumbW)
	th := float32(c.thumbH)

	c.canvas.Color(0, 0, 0, 0.3)
	c.canvas.FillRect(w-tw-2*thumbMargin, thumbMargin, w-thumbMargin, th+2*thumbMargin)

	frame := c.blank
	if video != nil {
		frame = c.scaleThumb(video)
	}
	c.canvas.Color(1, 1, 1, 1)
	c.canvas.DrawPixels(w-tw-thumbMargin-thumbPadding, thumbMargin+thumbPadding, frame)
}

// drawHUD draws each text line at a descending fixed vertical offset from
// the window top.
func (c *Compositor) drawHUD(lines []string) {
	c.canvas.Color(1, 1, 1, 1)
	y := float32(c.height - hudTopOffset)
	for _, line := range lines {
		if img := renderText(line); img != nil {
			c.canvas.DrawPixels(hudLeft, y, img)
		}
		y -= hudLineHeight
	}
}

// scaleThumb resizes the video frame into the reused thumbnail buffer.
func (c *Compositor) scaleThumb(frame *image.RGBA) *image.RGBA {
	if b := frame.Bounds(); b.Dx() == c.thumbW && b.Dy() == c.thumbH {
		return frame
	}
	xdraw.ApproxBiLinear.Scale(c.thumb, c.thumb.Bounds(), frame, frame.Bounds(), xdraw.Src, nil)
	return c.thumb
}

func blankFrame(w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for i := 3; i < len(img.Pix); i += 4 {
		img.Pix[i] = 255
	}
	return img
}
