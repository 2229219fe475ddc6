package cli

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/fsnotify/fsnotify"
)

// settleDelay lets editors finish writing before the file is read.
const settleDelay = 100 * time.Millisecond

// fileWatcher reports changes to one file. Changes made by this process are
// suppressed by calling touch after writing.
type fileWatcher struct {
	path   string
	logger *log.Logger

	mu      sync.Mutex
	lastMod time.Time
}

func newFileWatcher(path string, logger *log.Logger) *fileWatcher {
	w := &fileWatcher{path: filepath.Clean(path), logger: logger}
	w.touch()
	return w
}

// touch records the file's current modification time as seen.
func (w *fileWatcher) touch() {
	stat, err := os.Stat(w.path)
	if err != nil {
		return
	}
	w.mu.Lock()
	w.lastMod = stat.ModTime()
	w.mu.Unlock()
}

// changed reports whether the file is newer than the last seen version and
// marks it seen.
func (w *fileWatcher) changed() bool {
	stat, err := os.Stat(w.path)
	if err != nil {
		return false
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	if !stat.ModTime().After(w.lastMod) {
		return false
	}
	w.lastMod = stat.ModTime()
	return true
}

// run watches the file's directory until ctx is done and calls onChange for
// every write, create or rename of the file.
func (w *fileWatcher) run(ctx context.Context, onChange func()) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	if err := watcher.Add(filepath.Dir(w.path)); err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			time.Sleep(settleDelay)
			if w.changed() {
				w.logger.Debug("layout file changed", "path", w.path)
				onChange()
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("watch layout file", "err", err)
		}
	}
}
