// Package config handles viewer configuration loading and management.
package config

import (
	"fmt"
	"time"

	"gopkg.in/yaml.v3"
)

// Duration wraps time.Duration so YAML accepts human-readable values like
// "500ms" or "2s".
type Duration time.Duration

func (d Duration) Std() time.Duration { return time.Duration(d) }

func (d Duration) String() string { return time.Duration(d).String() }

func (d Duration) MarshalYAML() (interface{}, error) {
	return time.Duration(d).String(), nil
}

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var raw string
	if err := value.Decode(&raw); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", raw, err)
	}
	*d = Duration(parsed)
	return nil
}

// Config holds all viewer settings.
type Config struct {
	Graphics GraphicsConfig `yaml:"graphics"`
	Viewer   ViewerConfig   `yaml:"viewer"`
	Tracking TrackingConfig `yaml:"tracking"`
	Overlay  OverlayConfig  `yaml:"overlay"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// GraphicsConfig holds display and rendering settings.
type GraphicsConfig struct {
	Width      int  `yaml:"width"`
	Height     int  `yaml:"height"`
	Fullscreen bool `yaml:"fullscreen"`
	VSync      bool `yaml:"vsync"`
	FPSLimit   int  `yaml:"fps_limit"`
}

// ViewerConfig holds mesh and interaction settings.
type ViewerConfig struct {
	MeshPath      string  `yaml:"mesh_path"`
	WatchMesh     bool    `yaml:"watch_mesh"`
	RotateSpeed   float32 `yaml:"rotate_speed"`
	ZoomStep      float32 `yaml:"zoom_step"`
	KeyRotateRate float32 `yaml:"key_rotate_rate"`
	ScreenshotDir string  `yaml:"screenshot_dir"`
}

// TrackingConfig holds hand-tracking bridge settings.
type TrackingConfig struct {
	Enabled     bool          `yaml:"enabled"`
	BridgeURL   string        `yaml:"bridge_url"`
	DialTimeout Duration `yaml:"dial_timeout"`
}

// OverlayConfig holds 2D overlay settings.
type OverlayConfig struct {
	ThumbWidth  int  `yaml:"thumb_width"`
	ThumbHeight int  `yaml:"thumb_height"`
	ShowFPS     bool `yaml:"show_fps"`
	ShowHelp    bool `yaml:"show_help"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Graphics: GraphicsConfig{
			Width:      1200,
			Height:     800,
			Fullscreen: false,
			VSync:      true,
			FPSLimit:   60,
		},
		Viewer: ViewerConfig{
			MeshPath:      "hand_model.obj",
			WatchMesh:     true,
			RotateSpeed:   0.5,
			ZoomStep:      0.5,
			KeyRotateRate: 2.0,
			ScreenshotDir: "screenshots",
		},
		Tracking: TrackingConfig{
			Enabled:     true,
			BridgeURL:   "ws://127.0.0.1:9916/track",
			DialTimeout: Duration(2 * time.Second),
		},
		Overlay: OverlayConfig{
			ThumbWidth:  320,
			ThumbHeight: 240,
			ShowFPS:     true,
			ShowHelp:    true,
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}
