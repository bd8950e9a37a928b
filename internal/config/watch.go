package config

import (
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/cfdshell/cfdshell/internal/models"
)

const settingsDebounce = 200 * time.Millisecond

// SettingsWatcher reloads settings.yaml when it changes on disk.
type SettingsWatcher struct {
	fsWatcher *fsnotify.Watcher
	path      string
	onChange  func(*models.Settings)
	log       *zap.SugaredLogger
	done      chan struct{}
	stopOnce  sync.Once

	debounceMu sync.Mutex
	debounce   *time.Timer
}

// NewSettingsWatcher creates a watcher for the global settings file.
// onChange is called from the watcher goroutine with the reloaded settings.
func NewSettingsWatcher(log *zap.SugaredLogger, onChange func(*models.Settings)) (*SettingsWatcher, error) {
	path, err := GlobalSettingsFile()
	if err != nil {
		return nil, err
	}

	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	return &SettingsWatcher{
		fsWatcher: fsWatcher,
		path:      path,
		onChange:  onChange,
		log:       log,
		done:      make(chan struct{}),
	}, nil
}

// Start starts watching. The parent directory is watched because editors
// replace the file rather than writing it in place.
func (w *SettingsWatcher) Start() error {
	if err := EnsureGlobalDir(); err != nil {
		return err
	}
	if err := w.fsWatcher.Add(filepath.Dir(w.path)); err != nil {
		return err
	}

	go w.processEvents()
	return nil
}

// Stop stops the watcher.
func (w *SettingsWatcher) Stop() {
	w.stopOnce.Do(func() {
		close(w.done)
		_ = w.fsWatcher.Close()

		w.debounceMu.Lock()
		if w.debounce != nil {
			w.debounce.Stop()
		}
		w.debounceMu.Unlock()
	})
}

func (w *SettingsWatcher) processEvents() {
	for {
		select {
		case <-w.done:
			return

		case event, ok := <-w.fsWatcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != filepath.Clean(w.path) {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			w.scheduleReload()

		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return
			}
			w.log.Warnw("Settings watcher error", "error", err)
		}
	}
}

// scheduleReload coalesces bursts of events into one reload.
func (w *SettingsWatcher) scheduleReload() {
	w.debounceMu.Lock()
	defer w.debounceMu.Unlock()

	if w.debounce != nil {
		w.debounce.Stop()
	}
	w.debounce = time.AfterFunc(settingsDebounce, w.reload)
}

func (w *SettingsWatcher) reload() {
	select {
	case <-w.done:
		return
	default:
	}

	settings, err := LoadSettings()
	if err != nil {
		w.log.Warnw("Ignoring invalid settings change", "path", w.path, "error", err)
		return
	}
	w.log.Infow("Settings reloaded", "path", w.path)
	w.onChange(settings)
}
