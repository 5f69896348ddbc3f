package viewer

import (
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/quaywood/handviewer/internal/logger"
)

// meshWatcher reports when the mesh file on disk changed. It watches the
// containing directory rather than the file itself: editors that save via
// rename-and-replace would otherwise silently detach the watch.
type meshWatcher struct {
	w    *fsnotify.Watcher
	base string
}

func watchMesh(path string) (*meshWatcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		w.Close()
		return nil, err
	}
	if err := w.Add(filepath.Dir(abs)); err != nil {
		w.Close()
		return nil, err
	}

	logger.Debug("watching mesh file", zap.String("path", abs))
	return &meshWatcher{w: w, base: filepath.Base(abs)}, nil
}

// changed drains pending filesystem events without blocking and reports
// whether any of them touched the mesh file. Consecutive writes within one
// frame collapse into a single reload.
func (m *meshWatcher) changed() bool {
	hit := false
	for {
		select {
		case ev, ok := <-m.w.Events:
			if !ok {
				return hit
			}
			if filepath.Base(ev.Name) != m.base {
				continue
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0 {
				hit = true
			}
		case err, ok := <-m.w.Errors:
			if !ok {
				return hit
			}
			logger.Warn("mesh watch error", zap.Error(err))
		default:
			return hit
		}
	}
}

func (m *meshWatcher) close() {
	if err := m.w.Close(); err != nil {
		logger.Warn("closing mesh watcher", zap.Error(err))
	}
}
