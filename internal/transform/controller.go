// Package transform maintains the viewer's orientation and zoom state and
// reconciles the two mutually exclusive input sources that drive it.
package transform

import "github.com/quaywood/handviewer/internal/tracking"

// Mode selects which input source drives the transform. Exactly one is
// active at a time.
type Mode int

const (
	// ModeTracking maps a normalized tracked hand position to the transform.
	ModeTracking Mode = iota
	// ModeManual accumulates pointer drags, scroll and key input.
	ModeManual
)

// String returns the HUD label for the mode.
func (m Mode) String() string {
	if m == ModeTracking {
		return "Tracking: ON (Hand)"
	}
	return "Tracking: OFF (Mouse/KB)"
}

// State is the current model transform: rotations in degrees, zoom in camera
// distance units.
type State struct {
	RotationX float32
	RotationY float32
	Zoom      float32
}

// Options tunes manual-mode sensitivity.
type Options struct {
	RotateSpeed   float32 // degrees per pixel of drag
	ZoomStep      float32 // zoom units per scroll click
	KeyRotateRate float32 // degrees per frame while an arrow key is held
}

// DefaultOptions returns the stock sensitivities.
func DefaultOptions() Options {
	return Options{
		RotateSpeed:   0.5,
		ZoomStep:      0.5,
		KeyRotateRate: 2.0,
	}
}

// Controller is the transform state machine. It is mutated only by the frame
// thread; no locking.
type Controller struct {
	mode  Mode
	state State
	opts  Options

	dragging     bool
	lastX, lastY int32
}

// New creates a controller starting in the given mode.
func New(mode Mode, opts Options) *Controller {
	return &Controller{mode: mode, opts: opts}
}

// Mode returns the active input source.
func (c *Controller) Mode() Mode { return c.mode }

// State returns the current transform.
func (c *Controller) State() State { return c.state }

// Toggle flips between tracking and manual mode. Toggling twice returns to
// the original mode with the transform otherwise unchanged.
func (c *Controller) Toggle() {
	if c.mode == ModeTracking {
		c.mode = ModeManual
	} else {
		c.mode = ModeTracking
		c.dragging = false
	}
}

// Reset zeroes the transform regardless of active mode.
func (c *Controller) Reset() {
	c.state = State{}
}

// ApplyTracked recomputes the transform from a normalized hand position.
// Only effective in tracking mode; frames without a tracked position simply
// never reach here, leaving the previous transform in place.
func (c *Controller) ApplyTracked(p tracking.Position) {
	if c.mode != ModeTracking {
		return
	}
	c.state.RotationY = (p.X - 0.5) * 360
	c.state.RotationX = (p.Y - 0.5) * 360
	c.state.Zoom = p.Z * -10
}

// PointerDown begins a drag. The qualifier must be held, matching the
// Ctrl+drag binding.
func (c *Controller) PointerDown(x, y int32, qualifier bool) {
	if c.mode != ModeManual || !qualifier {
		return
	}
	c.dragging = true
	c.lastX, c.lastY = x, y
}

// PointerUp ends a drag.
func (c *Controller) PointerUp() {
	c.dragging = false
}

// PointerMove accumulates rotation while dragging.
func (c *Controller) PointerMove(x, y int32) {
	if c.mode != ModeManual || !c.dragging {
		return
	}
	dx := float32(x - c.lastX)
	dy := float32(y - c.lastY)
	c.state.RotationY += dx * c.opts.RotateSpeed
	c.state.RotationX += dy * c.opts.RotateSpeed
	c.lastX, c.lastY = x, y
}

// Scroll accumulates zoom. Positive delta (scroll up) zooms out, matching
// the wheel direction of the mouse bindings.
func (c *Controller) Scroll(delta int32, qualifier bool) {
	if c.mode != ModeManual || !qualifier {
		return
	}
	c.state.Zoom -= float32(delta) * c.opts.ZoomStep
}

// KeyRotate accumulates rotation from held axis keys; dx and dy are
// directions in -1..1, scaled by the per-frame key rate.
func (c *Controller) KeyRotate(dx, dy float32) {
	if c.mode != ModeManual {
		return
	}
	c.state.RotationY += dx * c.opts.KeyRotateRate
	c.state.RotationX += dy * c.opts.KeyRotateRate
}
