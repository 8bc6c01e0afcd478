package config

import (
	"errors"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
)

// Watcher reloads settings when the .toolstep directory changes and invokes
// a callback with the freshly merged result.
type Watcher struct {
	loader  *Loader
	mu      sync.Mutex
	watcher *fsnotify.Watcher
}

// NewWatcher wraps a loader for change watching.
func NewWatcher(loader *Loader) *Watcher {
	return &Watcher{loader: loader}
}

// Watch starts watching the settings directory. A missing directory is not
// an error; there is simply nothing to watch yet.
func (w *Watcher) Watch(callback func(*Settings)) error {
	dir := filepath.Join(w.loader.ProjectRoot, ".toolstep")
	info, err := os.Stat(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return err
	}
	if !info.IsDir() {
		return nil
	}

	w.mu.Lock()
	if w.watcher != nil {
		w.mu.Unlock()
		return nil
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		w.mu.Unlock()
		return err
	}
	w.watcher = watcher
	w.mu.Unlock()

	if err := watcher.Add(dir); err != nil {
		_ = watcher.Close()
		w.mu.Lock()
		w.watcher = nil
		w.mu.Unlock()
		return err
	}

	go func() {
		for {
			select {
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) == 0 {
					continue
				}
				if !strings.HasSuffix(filepath.Base(event.Name), ".json") {
					continue
				}
				settings, err := w.loader.Load()
				if err != nil {
					log.Printf("settings: reload failed: %v", err)
					continue
				}
				if callback != nil {
					callback(settings)
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				log.Printf("settings: watcher error: %v", err)
			}
		}
	}()

	return nil
}

// Close stops watching.
func (w *Watcher) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.watcher == nil {
		return nil
	}
	err := w.watcher.Close()
	w.watcher = nil
	return err
}
