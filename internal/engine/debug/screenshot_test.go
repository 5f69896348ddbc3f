package debug

import (
	"image/png"
	"os"
	"testing"
)

func TestCaptureFromPixels(t *testing.T) {
	const w, h = 4, 2
	pixels := make([]byte, w*h*4)
	// Bottom row red, top row blue (GL bottom-up order).
	for x := 0; x < w; x++ {
		pixels[x*4] = 255
		pixels[x*4+3] = 255
		top := (h-1)*w*4 + x*4
		pixels[top+2] = 255
		pixels[top+3] = 255
	}

	sc := NewScreenshotCapture(t.TempDir(), "test")
	path, err := sc.CaptureFromPixels(pixels, w, h)
	if err != nil {
		t.Fatalf("CaptureFromPixels failed: %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("failed to open screenshot: %v", err)
	}
	defer f.Close()

	img, err := png.Decode(f)
	if err != nil {
		t.Fatalf("failed to decode screenshot: %v", err)
	}
	if b := img.Bounds(); b.Dx() != w || b.Dy() != h {
		t.Fatalf("bounds %v, want %dx%d", b, w, h)
	}

	// After the flip, the blue row is on top.
	r, _, b, _ := img.At(0, 0).RGBA()
	if r != 0 || b == 0 {
		t.Errorf("top-left pixel should be blue after flip, got r=%d b=%d", r, b)
	}
	r, _, b, _ = img.At(0, h-1).RGBA()
	if r == 0 || b != 0 {
		t.Errorf("bottom-left pixel should be red after flip, got r=%d b=%d", r, b)
	}
}

func TestCaptureSizeMismatch(t *testing.T) {
	sc := NewScreenshotCapture(t.TempDir(), "test")
	if _, err := sc.CaptureFromPixels(make([]byte, 10), 4, 2); err == nil {
		t.Error("expected size mismatch error")
	}
}
