// Package viewer implements the main frame loop: input, tracking, transform
// update and rendering, in fixed order, once per frame.
package viewer

import (
	"fmt"
	"time"

	"github.com/veandco/go-sdl2/sdl"
	"go.uber.org/zap"

	"github.com/quaywood/handviewer/internal/compositor"
	"github.com/quaywood/handviewer/internal/config"
	"github.com/quaywood/handviewer/internal/engine/debug"
	"github.com/quaywood/handviewer/internal/engine/glsurface"
	"github.com/quaywood/handviewer/internal/engine/input"
	"github.com/quaywood/handviewer/internal/engine/window"
	"github.com/quaywood/handviewer/internal/geometry"
	"github.com/quaywood/handviewer/internal/logger"
	"github.com/quaywood/handviewer/internal/mesh"
	"github.com/quaywood/handviewer/internal/tracking"
	"github.com/quaywood/handviewer/internal/transform"
)

// Viewer owns every frame-loop collaborator. All methods run on the main
// thread; shutdown happens only at loop boundaries.
type Viewer struct {
	cfg *config.Config

	win     *window.Window
	surf    *glsurface.Surface
	in      *input.Input
	geo     *geometry.Buffer
	ctrl    *transform.Controller
	tracker tracking.Source
	comp    *compositor.Compositor
	watch   *meshWatcher
	shots   *debug.ScreenshotCapture

	width, height int
	running       bool
	fps           int
}

// New builds the viewer. Any error here is a fatal startup condition: the
// caller logs it and exits non-zero before the frame loop ever starts.
func New(cfg *config.Config) (*Viewer, error) {
	v := &Viewer{
		cfg:    cfg,
		width:  cfg.Graphics.Width,
		height: cfg.Graphics.Height,
	}

	var err error
	v.win, err = window.New(window.Config{
		Title:      "3D Hand Model with Tracking",
		Width:      cfg.Graphics.Width,
		Height:     cfg.Graphics.Height,
		Fullscreen: cfg.Graphics.Fullscreen,
		VSync:      cfg.Graphics.VSync,
	})
	if err != nil {
		return nil, fmt.Errorf("creating window: %w", err)
	}

	v.surf, err = glsurface.New(cfg.Graphics.Width, cfg.Graphics.Height)
	if err != nil {
		v.win.Close()
		return nil, fmt.Errorf("creating surface: %w", err)
	}

	m, err := mesh.Load(cfg.Viewer.MeshPath)
	if err != nil {
		v.win.Close()
		return nil, fmt.Errorf("loading mesh: %w", err)
	}
	v.geo, err = geometry.Build(v.surf, m)
	if err != nil {
		v.win.Close()
		return nil, fmt.Errorf("building geometry: %w", err)
	}

	mode := transform.ModeTracking
	if cfg.Tracking.Enabled {
		v.tracker, err = tracking.Dial(cfg.Tracking.BridgeURL, cfg.Tracking.DialTimeout.Std())
		if err != nil {
			v.geo.Close()
			v.win.Close()
			return nil, err
		}
	} else {
		logger.Info("tracking disabled, starting in manual mode")
		v.tracker = tracking.Disabled{}
		mode = transform.ModeManual
	}

	v.ctrl = transform.New(mode, transform.Options{
		RotateSpeed:   cfg.Viewer.RotateSpeed,
		ZoomStep:      cfg.Viewer.ZoomStep,
		KeyRotateRate: cfg.Viewer.KeyRotateRate,
	})

	v.comp = compositor.New(v.surf, v.width, v.height,
		cfg.Overlay.ThumbWidth, cfg.Overlay.ThumbHeight)

	v.in = input.New()
	v.shots = debug.NewScreenshotCapture(cfg.Viewer.ScreenshotDir, "handviewer")

	if cfg.Viewer.WatchMesh {
		v.watch, err = watchMesh(cfg.Viewer.MeshPath)
		if err != nil {
			logger.Warn("mesh watching unavailable", zap.Error(err))
		}
	}

	logger.Info("viewer initialized",
		zap.String("mesh", cfg.Viewer.MeshPath),
		zap.Int32("vertices", v.geo.TriangleVertexCount()),
		zap.Bool("tracking", cfg.Tracking.Enabled),
	)
	return v, nil
}

// Run drives the frame loop until a quit event.
func (v *Viewer) Run() error {
	v.running = true

	limiter := newFrameLimiter(v.cfg.Graphics.FPSLimit)
	frameCount := 0
	fpsTimer := time.Now()

	logger.Info("starting frame loop")

	for v.running {
		// 1. Input
		if v.in.Update() {
			v.running = false
			break
		}
		for _, ev := range v.in.Events() {
			v.handleEvent(ev)
		}
		v.applyHeldKeys()

		// 2. Mesh hot-reload, at frame boundaries only
		v.drainReload()

		// 3. Tracking
		v.tracker.Poll()
		if pos, ok := v.tracker.Position(); ok {
			v.ctrl.ApplyTracked(pos)
		}

		// 4. Render and present
		v.comp.Frame(v.geo, v.ctrl.State(), v.tracker.Frame(), v.hudLines())
		v.win.SwapBuffers()

		// 5. Pace
		limiter.wait()

		frameCount++
		if time.Since(fpsTimer) >= time.Second {
			v.fps = frameCount
			frameCount = 0
			fpsTimer = time.Now()
		}
	}

	return nil
}

// Close releases resources exactly once, in reverse acquisition order.
func (v *Viewer) Close() {
	logger.Info("closing viewer")

	if v.watch != nil {
		v.watch.close()
	}
	if v.tracker != nil {
		if err := v.tracker.Close(); err != nil {
			logger.Warn("closing tracking source", zap.Error(err))
		}
	}
	if v.geo != nil {
		v.geo.Close()
	}
	if v.win != nil {
		v.win.Close()
	}
}

func (v *Viewer) handleEvent(ev input.Event) {
	switch ev.Type {
	case input.EventQuit:
		v.running = false

	case input.EventWindowResize:
		v.width, v.height = ev.Width, ev.Height
		v.surf.Resize(ev.Width, ev.Height)
		v.comp.Resize(ev.Width, ev.Height)

	case input.EventKeyDown:
		switch ev.Key {
		case sdl.SCANCODE_ESCAPE, sdl.SCANCODE_Q:
			v.running = false
		case sdl.SCANCODE_T:
			v.ctrl.Toggle()
			logger.Info("input mode toggled", zap.String("mode", v.ctrl.Mode().String()))
		case sdl.SCANCODE_R:
			v.ctrl.Reset()
		case sdl.SCANCODE_F12:
			v.screenshot()
		}

	case input.EventMouseDown:
		if ev.Button == sdl.BUTTON_LEFT {
			v.ctrl.PointerDown(ev.MouseX, ev.MouseY, ev.Ctrl)
		}

	case input.EventMouseUp:
		if ev.Button == sdl.BUTTON_LEFT {
			v.ctrl.PointerUp()
		}

	case input.EventMouseMove:
		v.ctrl.PointerMove(ev.MouseX, ev.MouseY)

	case input.EventMouseWheel:
		v.ctrl.Scroll(ev.WheelY, ev.Ctrl)
	}
}

// applyHeldKeys feeds arrow-key state to the controller once per frame.
func (v *Viewer) applyHeldKeys() {
	var dx, dy float32
	if v.in.Held(sdl.SCANCODE_LEFT) {
		dx--
	}
	if v.in.Held(sdl.SCANCODE_RIGHT) {
		dx++
	}
	if v.in.Held(sdl.SCANCODE_UP) {
		dy--
	}
	if v.in.Held(sdl.SCANCODE_DOWN) {
		dy++
	}
	if dx != 0 || dy != 0 {
		v.ctrl.KeyRotate(dx, dy)
	}
}

func (v *Viewer) hudLines() []string {
	lines := []string{v.ctrl.Mode().String()}
	if v.cfg.Overlay.ShowFPS {
		lines = append(lines, fmt.Sprintf("FPS: %d", v.fps))
	}
	if v.cfg.Overlay.ShowHelp {
		lines = append(lines,
			"Controls:",
			" 'T' - Toggle Mode",
			" 'Q' - Quit",
			" 'R' - Reset View",
			" Ctrl+Drag - Rotate",
			" Ctrl+Scroll - Zoom",
		)
	}
	return lines
}

func (v *Viewer) screenshot() {
	pixels := v.surf.ReadPixels(v.width, v.height)
	path, err := v.shots.CaptureFromPixels(pixels, v.width, v.height)
	if err != nil {
		logger.Warn("screenshot failed", zap.Error(err))
		return
	}
	logger.Info("screenshot saved", zap.String("path", path))
}

// drainReload swaps in freshly loaded geometry when the mesh file changed.
// A failed reload keeps the previous geometry; the old buffer is released
// exactly once on success.
func (v *Viewer) drainReload() {
	if v.watch == nil || !v.watch.changed() {
		return
	}

	m, err := mesh.Load(v.cfg.Viewer.MeshPath)
	if err != nil {
		logger.Warn("mesh reload failed, keeping previous geometry", zap.Error(err))
		return
	}
	geo, err := geometry.Build(v.surf, m)
	if err != nil {
		logger.Warn("geometry rebuild failed, keeping previous geometry", zap.Error(err))
		return
	}

	v.geo.Close()
	v.geo = geo
	logger.Info("mesh reloaded",
		zap.String("path", v.cfg.Viewer.MeshPath),
		zap.Int32("vertices", geo.TriangleVertexCount()),
	)
}
