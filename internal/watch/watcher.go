package watch

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	derrors "git.home.luguber.info/inful/coursesite/internal/foundation/errors"
	"git.home.luguber.info/inful/coursesite/internal/logfields"
)

// DefaultDebounce is the quiet period before a change triggers a reload.
const DefaultDebounce = 300 * time.Millisecond

// Watcher watches directories recursively, plus individual files, and calls
// a trigger function once changes have settled.
type Watcher struct {
	Dirs     []string
	Files    []string
	Debounce time.Duration
	Logger   *slog.Logger
}

// Run blocks until ctx is cancelled, calling trigger after each burst of
// relevant events.
func (w *Watcher) Run(ctx context.Context, trigger func()) error {
	logger := w.Logger
	if logger == nil {
		logger = slog.Default()
	}
	debounce := w.Debounce
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return derrors.WrapError(err, derrors.CategoryFileSystem, "create file watcher").Build()
	}
	defer func() { _ = fw.Close() }()

	for _, dir := range w.Dirs {
		if err := addDirsRecursive(fw, dir, logger); err != nil {
			return err
		}
	}
	files := map[string]bool{}
	for _, f := range w.Files {
		abs, err := filepath.Abs(f)
		if err != nil {
			continue
		}
		files[abs] = true
		// Editors replace files by rename; watching the parent survives that.
		if err := fw.Add(filepath.Dir(abs)); err != nil {
			logger.Warn("watch add failed", logfields.Path(abs), logfields.Error(err))
		}
	}
	dirs := make([]string, 0, len(w.Dirs))
	for _, d := range w.Dirs {
		if abs, err := filepath.Abs(d); err == nil {
			dirs = append(dirs, abs)
		}
	}

	var mu sync.Mutex
	var timer *time.Timer
	defer func() {
		mu.Lock()
		if timer != nil {
			timer.Stop()
		}
		mu.Unlock()
	}()
	schedule := func() {
		mu.Lock()
		defer mu.Unlock()
		if timer != nil {
			timer.Stop()
		}
		timer = time.AfterFunc(debounce, func() {
			if ctx.Err() == nil {
				trigger()
			}
		})
	}

	logger.Info("Watching for changes", slog.Int("dirs", len(w.Dirs)), slog.Int("files", len(w.Files)))
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if !relevant(ev.Name, dirs, files) {
				continue
			}
			if ev.Has(fsnotify.Create) {
				if fi, err := os.Stat(ev.Name); err == nil && fi.IsDir() {
					_ = addDirsRecursive(fw, ev.Name, logger)
				}
			}
			logger.Debug("File change detected", logfields.Path(ev.Name), slog.String("op", ev.Op.String()))
			schedule()
		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			logger.Warn("watcher error", logfields.Error(err))
		}
	}
}

// relevant filters out editor noise and, for parent directories watched on
// behalf of single files, events for unrelated siblings.
func relevant(name string, dirs []string, files map[string]bool) bool {
	if ShouldIgnore(name) {
		return false
	}
	abs, err := filepath.Abs(name)
	if err != nil {
		return false
	}
	if files[abs] {
		return true
	}
	for _, d := range dirs {
		if abs == d || strings.HasPrefix(abs, d+string(filepath.Separator)) {
			return true
		}
	}
	return false
}

func addDirsRecursive(w *fsnotify.Watcher, root string, logger *slog.Logger) error {
	if _, err := os.Stat(root); err != nil {
		return derrors.WrapError(err, derrors.CategoryFileSystem, "watch directory").
			WithContext("dir", root).Build()
	}
	return filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() {
			if path != root && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			if err := w.Add(path); err != nil {
				logger.Warn("watch add failed", logfields.Path(path), logfields.Error(err))
			}
		}
		return nil
	})
}

// ShouldIgnore reports whether a changed path is editor or OS noise.
func ShouldIgnore(path string) bool {
	base := filepath.Base(path)
	switch {
	case strings.HasPrefix(base, "."):
		return true
	case strings.HasSuffix(base, "~"),
		strings.HasSuffix(base, ".swp"),
		strings.HasSuffix(base, ".swx"),
		strings.HasSuffix(base, ".tmp"),
		strings.HasPrefix(base, "#") && strings.HasSuffix(base, "#"):
		return true
	case base == "Thumbs.db", base == "4913":
		return true
	}
	return false
}
