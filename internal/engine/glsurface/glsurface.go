// Package glsurface implements the drawing surface on OpenGL 2.1. The
// fixed-function pipeline (matrix stacks, lighting, raster blits) matches the
// overlay and shading semantics the viewer needs.
package glsurface

import (
	"errors"
	"fmt"
	"image"
	"math"
	"unsafe"

	"github.com/go-gl/gl/v2.1/gl"
	"go.uber.org/zap"

	"github.com/quaywood/handviewer/internal/engine/surface"
	"github.com/quaywood/handviewer/internal/logger"
)

const (
	fovY     = 45.0
	nearClip = 0.1
	farClip  = 50.0
	// Fixed camera offset along -Z applied to the modelview base.
	cameraOffset = -5.0
)

// Surface drives OpenGL. It must be created after the GL context exists and
// used only from the thread that owns the context.
type Surface struct {
	width, height int
	scratch       []uint8 // reused row-flip buffer for DrawPixels
}

var _ surface.Surface = (*Surface)(nil)

// New initializes OpenGL state: depth testing, smooth shading, lighting and
// the perspective projection. Must be called after the window has created
// the GL context.
func New(width, height int) (*Surface, error) {
	if err := gl.Init(); err != nil {
		return nil, fmt.Errorf("initializing OpenGL: %w", err)
	}

	version := gl.GoStr(gl.GetString(gl.VERSION))
	rendererName := gl.GoStr(gl.GetString(gl.RENDERER))
	logger.Info("OpenGL initialized",
		zap.String("version", version),
		zap.String("renderer", rendererName),
	)

	s := &Surface{width: width, height: height}
	s.setupState()
	s.setupLighting()
	s.setupProjection()
	return s, nil
}

func (s *Surface) setupState() {
	gl.Enable(gl.DEPTH_TEST)
	gl.Enable(gl.NORMALIZE)
	gl.ShadeModel(gl.SMOOTH)

	specular := [4]float32{1, 1, 1, 1}
	shininess := [1]float32{50}
	gl.Materialfv(gl.FRONT, gl.SPECULAR, &specular[0])
	gl.Materialfv(gl.FRONT, gl.SHININESS, &shininess[0])

	gl.ClearColor(0.1, 0.1, 0.15, 1.0)
}

func (s *Surface) setupLighting() {
	gl.Enable(gl.LIGHTING)
	gl.Enable(gl.LIGHT0)
	gl.Enable(gl.COLOR_MATERIAL)
	gl.ColorMaterial(gl.FRONT_AND_BACK, gl.AMBIENT_AND_DIFFUSE)

	position := [4]float32{5, 5, 5, 1}
	ambient := [4]float32{0.3, 0.3, 0.3, 1}
	diffuse := [4]float32{0.8, 0.8, 0.8, 1}
	specular := [4]float32{1, 1, 1, 1}
	gl.Lightfv(gl.LIGHT0, gl.POSITION, &position[0])
	gl.Lightfv(gl.LIGHT0, gl.AMBIENT, &ambient[0])
	gl.Lightfv(gl.LIGHT0, gl.DIFFUSE, &diffuse[0])
	gl.Lightfv(gl.LIGHT0, gl.SPECULAR, &specular[0])
}

// setupProjection rebuilds the perspective projection for the current window
// size and resets the modelview base to the fixed camera offset.
func (s *Surface) setupProjection() {
	gl.Viewport(0, 0, int32(s.width), int32(s.height))

	gl.MatrixMode(gl.PROJECTION)
	gl.LoadIdentity()
	aspect := float64(s.width) / float64(s.height)
	top := nearClip * math.Tan(fovY*math.Pi/360)
	right := top * aspect
	gl.Frustum(-right, right, -top, top, nearClip, farClip)

	gl.MatrixMode(gl.MODELVIEW)
	gl.LoadIdentity()
	gl.Translatef(0, 0, cameraOffset)
}

// Resize adjusts viewport and projection. Call only at frame boundaries.
func (s *Surface) Resize(width, height int) {
	if width <= 0 || height <= 0 {
		return
	}
	s.width = width
	s.height = height
	s.setupProjection()
	logger.Debug("surface resized",
		zap.Int("width", width),
		zap.Int("height", height),
	)
}

// Clear clears the color and depth targets.
func (s *Surface) Clear() {
	gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)
}

// MatrixMode selects the active matrix stack.
func (s *Surface) MatrixMode(m surface.MatrixMode) {
	gl.MatrixMode(glMatrixMode(m))
}

func (s *Surface) PushMatrix()   { gl.PushMatrix() }
func (s *Surface) PopMatrix()    { gl.PopMatrix() }
func (s *Surface) LoadIdentity() { gl.LoadIdentity() }

func (s *Surface) Ortho(left, right, bottom, top, near, far float64) {
	gl.Ortho(left, right, bottom, top, near, far)
}

func (s *Surface) Translate(x, y, z float32) {
	gl.Translatef(x, y, z)
}

func (s *Surface) Rotate(angleDeg, x, y, z float32) {
	gl.Rotatef(angleDeg, x, y, z)
}

// Enable turns a capability on. Enabling blend also installs the standard
// alpha blend function the overlay expects.
func (s *Surface) Enable(c surface.Capability) {
	gl.Enable(glCapability(c))
	if c == surface.Blend {
		gl.BlendFunc(gl.SRC_ALPHA, gl.ONE_MINUS_SRC_ALPHA)
	}
}

// Disable turns a capability off.
func (s *Surface) Disable(c surface.Capability) {
	gl.Disable(glCapability(c))
}

func (s *Surface) Color(r, g, b, a float32) {
	gl.Color4f(r, g, b, a)
}

// FillRect draws an axis-aligned quad in window coordinates.
func (s *Surface) FillRect(x0, y0, x1, y1 float32) {
	gl.Begin(gl.QUADS)
	gl.Vertex2f(x0, y0)
	gl.Vertex2f(x1, y0)
	gl.Vertex2f(x1, y1)
	gl.Vertex2f(x0, y1)
	gl.End()
}

// DrawPixels blits a top-down RGBA image with its bottom-left corner at
// (x, y) in window coordinates. Rows are flipped here because GL raster
// order is bottom-up.
func (s *Surface) DrawPixels(x, y float32, img *image.RGBA) {
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if w == 0 || h == 0 {
		return
	}

	rowSize := w * 4
	if len(s.scratch) < rowSize*h {
		s.scratch = make([]uint8, rowSize*h)
	}
	for row := 0; row < h; row++ {
		src := img.Pix[row*img.Stride : row*img.Stride+rowSize]
		dst := s.scratch[(h-1-row)*rowSize:]
		copy(dst, src)
	}

	gl.RasterPos2f(x, y)
	gl.DrawPixels(int32(w), int32(h), gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(s.scratch))
}

// CreateBuffer uploads a float32 stream as a static GPU buffer.
func (s *Surface) CreateBuffer(data []float32) (surface.BufferID, error) {
	if len(data) == 0 {
		return 0, errors.New("empty vertex stream")
	}
	var id uint32
	gl.GenBuffers(1, &id)
	gl.BindBuffer(gl.ARRAY_BUFFER, id)
	gl.BufferData(gl.ARRAY_BUFFER, len(data)*4, gl.Ptr(data), gl.STATIC_DRAW)
	gl.BindBuffer(gl.ARRAY_BUFFER, 0)
	return surface.BufferID(id), nil
}

// DeleteBuffer releases a GPU buffer.
func (s *Surface) DeleteBuffer(id surface.BufferID) {
	u := uint32(id)
	gl.DeleteBuffers(1, &u)
}

// DrawTriangles binds the two streams as the active vertex and normal
// sources and issues one non-indexed triangle draw.
func (s *Surface) DrawTriangles(positions, normals surface.BufferID, vertexCount int32) {
	gl.EnableClientState(gl.VERTEX_ARRAY)
	gl.EnableClientState(gl.NORMAL_ARRAY)

	gl.BindBuffer(gl.ARRAY_BUFFER, uint32(positions))
	gl.VertexPointer(3, gl.FLOAT, 0, unsafe.Pointer(nil))

	gl.BindBuffer(gl.ARRAY_BUFFER, uint32(normals))
	gl.NormalPointer(gl.FLOAT, 0, unsafe.Pointer(nil))

	gl.DrawArrays(gl.TRIANGLES, 0, vertexCount)

	gl.BindBuffer(gl.ARRAY_BUFFER, 0)
	gl.DisableClientState(gl.NORMAL_ARRAY)
	gl.DisableClientState(gl.VERTEX_ARRAY)
}

// ReadPixels returns the framebuffer as RGBA bytes in GL bottom-up order.
func (s *Surface) ReadPixels(width, height int) []byte {
	pixels := make([]byte, width*height*4)
	gl.ReadPixels(0, 0, int32(width), int32(height), gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(pixels))
	return pixels
}

func glMatrixMode(m surface.MatrixMode) uint32 {
	if m == surface.Projection {
		return gl.PROJECTION
	}
	return gl.MODELVIEW
}

func glCapability(c surface.Capability) uint32 {
	switch c {
	case surface.DepthTest:
		return gl.DEPTH_TEST
	case surface.Lighting:
		return gl.LIGHTING
	default:
		return gl.BLEND
	}
}
