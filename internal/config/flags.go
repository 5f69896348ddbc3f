package config

import "flag"

var (
	flagConfig     = flag.String("config", "", "Path to config file")
	flagDebug      = flag.Bool("debug", false, "Enable debug logging")
	flagMesh       = flag.String("mesh", "", "Path to mesh file")
	flagBridge     = flag.String("bridge", "", "Tracking bridge websocket URL")
	flagNoTracking = flag.Bool("no-tracking", false, "Start without the tracking bridge (manual mode only)")
	flagWindowed   = flag.Bool("windowed", false, "Run in windowed mode")
	flagFullscreen = flag.Bool("fullscreen", false, "Run in fullscreen mode")
	flagWidth      = flag.Int("width", 0, "Window width")
	flagHeight     = flag.Int("height", 0, "Window height")
)

// ParseFlags parses command-line flags. Call this early in main().
func ParseFlags() {
	flag.Parse()
}

// ConfigPath returns the explicit config path if provided via --config flag.
func ConfigPath() string {
	return *flagConfig
}

// applyFlags applies CLI flag overrides to the config.
func applyFlags(cfg *Config) {
	if *flagDebug {
		cfg.Logging.Level = "debug"
		cfg.Overlay.ShowFPS = true
	}
	if *flagMesh != "" {
		cfg.Viewer.MeshPath = *flagMesh
	}
	if *flagBridge != "" {
		cfg.Tracking.BridgeURL = *flagBridge
	}
	if *flagNoTracking {
		cfg.Tracking.Enabled = false
	}
	if *flagWindowed {
		cfg.Graphics.Fullscreen = false
	}
	if *flagFullscreen {
		cfg.Graphics.Fullscreen = true
	}
	if *flagWidth > 0 {
		cfg.Graphics.Width = *flagWidth
	}
	if *flagHeight > 0 {
		cfg.Graphics.Height = *flagHeight
	}

	// Positional argument form: handviewer model.obj
	if flag.NArg() > 0 {
		cfg.Viewer.MeshPath = flag.Arg(0)
	}
}
