// Package surface defines the abstract drawing surface the viewer renders
// against. The OpenGL implementation lives in glsurface; tests substitute
// recording fakes.
package surface

import "image"

// BufferID identifies a GPU-resident vertex stream.
type BufferID uint32

// MatrixMode selects which matrix stack subsequent operations affect.
type MatrixMode int

const (
	ModelView MatrixMode = iota
	Projection
)

// Capability is a toggleable fixed-function state.
type Capability int

const (
	DepthTest Capability = iota
	Lighting
	Blend
)

// Surface is an immediate-mode drawing surface with retained vertex buffers.
// Coordinates for 2D operations are window pixels with the origin at the
// bottom-left. Images passed to DrawPixels use the conventional top-down
// row order; implementations handle any flipping the backend needs.
type Surface interface {
	// Clear clears the color and depth targets.
	Clear()

	// Matrix stack operations. PushMatrix and PopMatrix act on the stack
	// selected by the last MatrixMode call.
	MatrixMode(m MatrixMode)
	PushMatrix()
	PopMatrix()
	LoadIdentity()
	Ortho(left, right, bottom, top, near, far float64)
	Translate(x, y, z float32)
	Rotate(angleDeg, x, y, z float32)

	// Fixed-function state toggles.
	Enable(c Capability)
	Disable(c Capability)

	// Immediate-mode 2D drawing.
	Color(r, g, b, a float32)
	FillRect(x0, y0, x1, y1 float32)
	DrawPixels(x, y float32, img *image.RGBA)

	// Retained vertex streams.
	CreateBuffer(data []float32) (BufferID, error)
	DeleteBuffer(id BufferID)
	DrawTriangles(positions, normals BufferID, vertexCount int32)

	// ReadPixels returns the framebuffer contents as RGBA bytes,
	// bottom-up row order (backend native).
	ReadPixels(width, height int) []byte
}
