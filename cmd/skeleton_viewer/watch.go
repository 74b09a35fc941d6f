// cmd/skeleton_viewer/watch.go
// Filesystem watching for skeleton hot reload.

package main

import (
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// settleDelay is how long a project directory must stay quiet before it is
// reported. Re-exports touch several files in a burst (_ske.json, _tex.json,
// the sheet); reloading mid-burst would read a half-written project.
const settleDelay = 200 * time.Millisecond

// Watcher accumulates file changes under skeleton project directories and
// reports each directory once its change burst has settled. The viewer polls
// it from the game tick: the only question it ever answers is "which units
// need a reload", never individual file events.
type Watcher struct {
	fs *fsnotify.Watcher

	mu      sync.Mutex
	changed map[string]time.Time // project dir, last change seen
	err     error
}

// NewWatcher watches the given project directories.
func NewWatcher(dirs ...string) (*Watcher, error) {
	fs, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	for _, dir := range dirs {
		if err := fs.Add(dir); err != nil {
			_ = fs.Close()
			return nil, err
		}
	}

	w := &Watcher{
		fs:      fs,
		changed: make(map[string]time.Time),
	}
	go w.collect()
	return w, nil
}

// collect owns the fsnotify channels. It exits when Close shuts them down;
// no other goroutine ever touches them.
func (w *Watcher) collect() {
	for {
		select {
		case event, ok := <-w.fs.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			if !isProjectFile(event.Name) {
				continue
			}
			w.mu.Lock()
			w.changed[filepath.Dir(event.Name)] = time.Now()
			w.mu.Unlock()
		case err, ok := <-w.fs.Errors:
			if !ok {
				return
			}
			w.mu.Lock()
			w.err = err
			w.mu.Unlock()
		}
	}
}

// SettledDirs returns the project directories whose change burst has been
// quiet for settleDelay, removing them from the pending set. Call once per
// tick.
func (w *Watcher) SettledDirs() []string {
	w.mu.Lock()
	defer w.mu.Unlock()

	var dirs []string
	now := time.Now()
	for dir, last := range w.changed {
		if now.Sub(last) >= settleDelay {
			dirs = append(dirs, dir)
			delete(w.changed, dir)
		}
	}
	return dirs
}

// Err returns and clears the last watch error, nil when none occurred since
// the previous call.
func (w *Watcher) Err() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	err := w.err
	w.err = nil
	return err
}

// Close stops watching. The collector goroutine drains the closed fsnotify
// channels and exits on its own.
func (w *Watcher) Close() error {
	return w.fs.Close()
}

func isProjectFile(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".json" || ext == ".png" || ext == ".jpg"
}
