package compositor

import (
	"fmt"
	"image"
	"testing"

	"github.com/quaywood/handviewer/internal/engine/surface"
	"github.com/quaywood/handviewer/internal/transform"
)

// fakeCanvas records drawing operations and tracks matrix stack depths and
// capability state.
type fakeCanvas struct {
	ops []string

	mode   surface.MatrixMode
	depth  map[surface.MatrixMode]int
	pushes map[surface.MatrixMode]int
	pops   map[surface.MatrixMode]int

	caps map[surface.Capability]bool

	pixels []drawCall
}

type drawCall struct {
	x, y float32
	img  *image.RGBA
}

func newFakeCanvas() *fakeCanvas {
	return &fakeCanvas{
		depth:  map[surface.MatrixMode]int{},
		pushes: map[surface.MatrixMode]int{},
		pops:   map[surface.MatrixMode]int{},
		// 3D-pass defaults: depth test and lighting on, blend off.
		caps: map[surface.Capability]bool{
			surface.DepthTest: true,
			surface.Lighting:  true,
			surface.Blend:     false,
		},
	}
}

func (f *fakeCanvas) log(format string, args ...any) {
	f.ops = append(f.ops, fmt.Sprintf(format, args...))
}

func (f *fakeCanvas) Clear()                        { f.log("clear") }
func (f *fakeCanvas) MatrixMode(m surface.MatrixMode) { f.mode = m; f.log("mode %d", m) }

func (f *fakeCanvas) PushMatrix() {
	f.depth[f.mode]++
	f.pushes[f.mode]++
	f.log("push %d", f.mode)
}

func (f *fakeCanvas) PopMatrix() {
	f.depth[f.mode]--
	f.pops[f.mode]++
	f.log("pop %d", f.mode)
}

func (f *fakeCanvas) LoadIdentity() { f.log("identity") }

func (f *fakeCanvas) Ortho(l, r, b, t, n, fz float64) {
	f.log("ortho %v %v %v %v", l, r, b, t)
}

func (f *fakeCanvas) Translate(x, y, z float32)        { f.log("translate %v %v %v", x, y, z) }
func (f *fakeCanvas) Rotate(a, x, y, z float32)        { f.log("rotate %v %v %v %v", a, x, y, z) }
func (f *fakeCanvas) Enable(c surface.Capability)      { f.caps[c] = true; f.log("enable %d", c) }
func (f *fakeCanvas) Disable(c surface.Capability)     { f.caps[c] = false; f.log("disable %d", c) }
func (f *fakeCanvas) Color(r, g, b, a float32)         { f.log("color %v %v %v %v", r, g, b, a) }
func (f *fakeCanvas) FillRect(x0, y0, x1, y1 float32)  { f.log("fillrect %v %v %v %v", x0, y0, x1, y1) }

func (f *fakeCanvas) DrawPixels(x, y float32, img *image.RGBA) {
	f.pixels = append(f.pixels, drawCall{x, y, img})
	f.log("drawpixels %v %v", x, y)
}

// fakeMesh records when it was rendered relative to other canvas ops.
type fakeMesh struct {
	canvas  *fakeCanvas
	renders int
}

func (m *fakeMesh) Render() {
	m.renders++
	m.canvas.log("mesh")
}

func indexOf(ops []string, op string) int {
	for i, o := range ops {
		if o == op {
			return i
		}
	}
	return -1
}

func TestFrameMatrixBalance(t *testing.T) {
	canvas := newFakeCanvas()
	c := New(canvas, 1200, 800, 320, 240)
	mesh := &fakeMesh{canvas: canvas}

	c.Frame(mesh, transform.State{}, nil, []string{"line"})

	if d := canvas.depth[surface.Projection]; d != 0 {
		t.Errorf("projection stack depth after frame = %d, want 0", d)
	}
	if d := canvas.depth[surface.ModelView]; d != 0 {
		t.Errorf("modelview stack depth after frame = %d, want 0", d)
	}

	// The 2D pass pushes exactly one projection and one modelview matrix:
	// one projection push total, and two modelview pushes (3D scope + 2D).
	if got := canvas.pushes[surface.Projection]; got != 1 {
		t.Errorf("projection pushes = %d, want 1", got)
	}
	if got := canvas.pops[surface.Projection]; got != 1 {
		t.Errorf("projection pops = %d, want 1", got)
	}
	if got := canvas.pushes[surface.ModelView]; got != 2 {
		t.Errorf("modelview pushes = %d, want 2", got)
	}
	if got := canvas.pops[surface.ModelView]; got != 2 {
		t.Errorf("modelview pops = %d, want 2", got)
	}
}

func TestFrameCapabilityRestoration(t *testing.T) {
	canvas := newFakeCanvas()
	c := New(canvas, 1200, 800, 320, 240)

	c.Frame(&fakeMesh{canvas: canvas}, transform.State{}, nil, nil)

	if !canvas.caps[surface.DepthTest] {
		t.Error("depth test must be re-enabled after the 2D pass")
	}
	if !canvas.caps[surface.Lighting] {
		t.Error("lighting must be re-enabled after the 2D pass")
	}
	if canvas.caps[surface.Blend] {
		t.Error("blend must be disabled after the 2D pass")
	}
}

func TestFramePassOrdering(t *testing.T) {
	canvas := newFakeCanvas()
	c := New(canvas, 1200, 800, 320, 240)
	mesh := &fakeMesh{canvas: canvas}

	c.Frame(mesh, transform.State{RotationX: 10, RotationY: 20, Zoom: -3}, nil, nil)

	if mesh.renders != 1 {
		t.Fatalf("mesh rendered %d times, want 1", mesh.renders)
	}

	clear := indexOf(canvas.ops, "clear")
	translate := indexOf(canvas.ops, "translate 0 0 -3")
	rotX := indexOf(canvas.ops, "rotate 10 1 0 0")
	rotY := indexOf(canvas.ops, "rotate 20 0 1 0")
	draw := indexOf(canvas.ops, "mesh")
	ortho := indexOf(canvas.ops, "ortho 0 1200 0 800")

	for name, idx := range map[string]int{
		"clear": clear, "translate": translate, "rotate X": rotX,
		"rotate Y": rotY, "mesh": draw, "ortho": ortho,
	} {
		if idx < 0 {
			t.Fatalf("missing op: %s\nops: %v", name, canvas.ops)
		}
	}

	if !(clear < translate && translate < rotX && rotX < rotY && rotY < draw && draw < ortho) {
		t.Errorf("pass order violated: clear=%d translate=%d rotX=%d rotY=%d mesh=%d ortho=%d",
			clear, translate, rotX, rotY, draw, ortho)
	}
}

func TestBlankFrameSubstitution(t *testing.T) {
	canvas := newFakeCanvas()
	c := New(canvas, 1200, 800, 320, 240)

	c.Frame(&fakeMesh{canvas: canvas}, transform.State{}, nil, nil)

	if len(canvas.pixels) != 1 {
		t.Fatalf("expected 1 DrawPixels call (thumbnail only), got %d", len(canvas.pixels))
	}
	thumb := canvas.pixels[0].img
	if b := thumb.Bounds(); b.Dx() != 320 || b.Dy() != 240 {
		t.Fatalf("thumbnail bounds %v, want 320x240", b)
	}
	// Blank frame is opaque black.
	for i := 0; i < len(thumb.Pix); i += 4 {
		if thumb.Pix[i] != 0 || thumb.Pix[i+1] != 0 || thumb.Pix[i+2] != 0 || thumb.Pix[i+3] != 255 {
			t.Fatal("blank frame must be opaque black")
		}
	}
}

func TestVideoFrameScaledToThumb(t *testing.T) {
	canvas := newFakeCanvas()
	c := New(canvas, 1200, 800, 320, 240)

	video := image.NewRGBA(image.Rect(0, 0, 640, 480))
	for i := 0; i < len(video.Pix); i += 4 {
		video.Pix[i] = 200 // red-ish so scaling output is non-black
		video.Pix[i+3] = 255
	}

	c.Frame(&fakeMesh{canvas: canvas}, transform.State{}, video, nil)

	thumb := canvas.pixels[0].img
	if b := thumb.Bounds(); b.Dx() != 320 || b.Dy() != 240 {
		t.Fatalf("thumbnail bounds %v, want 320x240", b)
	}
	if thumb.Pix[0] == 0 {
		t.Error("scaled thumbnail lost the source content")
	}

	// Thumbnail sits at the fixed bottom-right offset.
	call := canvas.pixels[0]
	if call.x != 1200-320-15 || call.y != 15 {
		t.Errorf("thumbnail drawn at (%v,%v), want (%v,15)", call.x, call.y, 1200-320-15)
	}
}

func TestHUDLinesDescend(t *testing.T) {
	canvas := newFakeCanvas()
	c := New(canvas, 1200, 800, 320, 240)

	c.Frame(&fakeMesh{canvas: canvas}, transform.State{},
		nil, []string{"first", "second", "third"})

	// pixels[0] is the thumbnail; HUD lines follow.
	if len(canvas.pixels) != 4 {
		t.Fatalf("expected 4 DrawPixels calls, got %d", len(canvas.pixels))
	}
	wantY := []float32{800 - 30, 800 - 55, 800 - 80}
	for i, want := range wantY {
		call := canvas.pixels[i+1]
		if call.x != 10 || call.y != want {
			t.Errorf("HUD line %d at (%v,%v), want (10,%v)", i, call.x, call.y, want)
		}
	}
}

func TestEmptyHUDLineSkipped(t *testing.T) {
	canvas := newFakeCanvas()
	c := New(canvas, 1200, 800, 320, 240)

	c.Frame(&fakeMesh{canvas: canvas}, transform.State{},
		nil, []string{"", "visible"})

	if len(canvas.pixels) != 2 {
		t.Fatalf("expected thumbnail + 1 HUD line, got %d calls", len(canvas.pixels))
	}
	// The visible line still lands on the second slot's offset.
	if got := canvas.pixels[1].y; got != 800-55 {
		t.Errorf("visible line y = %v, want %v", got, 800-55)
	}
}

func TestResizeMovesOverlay(t *testing.T) {
	canvas := newFakeCanvas()
	c := New(canvas, 1200, 800, 320, 240)
	c.Resize(1920, 1080)

	c.Frame(&fakeMesh{canvas: canvas}, transform.State{}, nil, nil)

	ortho := indexOf(canvas.ops, "ortho 0 1920 0 1080")
	if ortho < 0 {
		t.Fatalf("ortho not updated for new window size\nops: %v", canvas.ops)
	}
	if got := canvas.pixels[0].x; got != 1920-320-15 {
		t.Errorf("thumbnail x = %v, want %v", got, 1920-320-15)
	}
}

func TestRenderText(t *testing.T) {
	img := renderText("FPS: 60")
	if img == nil {
		t.Fatal("expected an image for non-empty text")
	}
	if img.Bounds().Dx() == 0 || img.Bounds().Dy() == 0 {
		t.Errorf("degenerate text image bounds %v", img.Bounds())
	}

	// Some pixel must be opaque white.
	found := false
	for i := 0; i < len(img.Pix); i += 4 {
		if img.Pix[i+3] != 0 {
			found = true
			break
		}
	}
	if !found {
		t.Error("rendered text contains no visible pixels")
	}

	if renderText("") != nil {
		t.Error("empty line must render as nil")
	}
}
