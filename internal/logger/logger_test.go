package logger

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestInitWritesToFile(t *testing.T) {
	logFile := filepath.Join(t.TempDir(), "viewer.log")

	cfg := FileConfig{
		Path:       logFile,
		MaxSizeMB:  1,
		MaxBackups: 1,
		MaxAgeDays: 1,
		Compress:   false,
	}
	if err := InitWithFileConfig("debug", cfg, false); err != nil {
		t.Fatalf("failed to init logger: %v", err)
	}

	Info("mesh loaded")
	Warn("face index out of range")
	Sync()

	data, err := os.ReadFile(logFile)
	if err != nil {
		t.Fatalf("failed to read log file: %v", err)
	}
	if !strings.Contains(string(data), "mesh loaded") {
		t.Error("log file missing info entry")
	}
	if !strings.Contains(string(data), "face index out of range") {
		t.Error("log file missing warn entry")
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"debug", "debug"},
		{"warn", "warn"},
		{"error", "error"},
		{"info", "info"},
		{"bogus", "info"}, // unknown levels fall back to info
	}
	for _, tt := range tests {
		if got := parseLevel(tt.in).String(); got != tt.want {
			t.Errorf("parseLevel(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestDefaultLoggerIsSafe(t *testing.T) {
	// Logging before Init must not panic.
	saved, savedSugar := Log, Sugar
	defer func() { Log, Sugar = saved, savedSugar }()

	Log = Log.WithOptions() // no-op logger from package init
	Debug("pre-init debug")
	Sugar.Infof("pre-init %s", "sugar")
}
