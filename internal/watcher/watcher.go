package watcher

import (
	"context"
	"errors"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is the quiet period used when none is configured.
const DefaultDebounce = 500 * time.Millisecond

// Filter decides which paths are watched and reported.
// Paths are slash-separated and relative to the watched root.
type Filter interface {
	// ShouldIgnore reports whether a directory or file is excluded.
	ShouldIgnore(relPath string) bool
	// IsSourceFile reports whether a change to relPath is worth reporting.
	IsSourceFile(relPath string) bool
}

// Watcher reports batches of changed source files under a project root once
// no further changes arrive for the debounce period.
type Watcher struct {
	watcher  *fsnotify.Watcher
	rootDir  string
	filter   Filter
	debounce time.Duration

	callback func(files []string)
	cancel   context.CancelFunc

	pending   map[string]bool // Relative paths changed since the last callback
	pendingMu sync.Mutex

	debounceTimer *time.Timer
	timerMu       sync.Mutex

	stopOnce sync.Once
	doneCh   chan struct{}
}

// New creates a watcher over every non-ignored directory below rootDir.
// A non-positive debounce uses DefaultDebounce.
func New(rootDir string, filter Filter, debounce time.Duration) (*Watcher, error) {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	w := &Watcher{
		watcher:  fsw,
		rootDir:  rootDir,
		filter:   filter,
		debounce: debounce,
		pending:  make(map[string]bool),
		doneCh:   make(chan struct{}),
	}

	if err := w.addDirectoriesRecursively(rootDir); err != nil {
		fsw.Close()
		return nil, err
	}
	return w, nil
}

// Start begins watching. callback receives sorted relative paths and runs on
// the watch goroutine, so events arriving meanwhile are batched for the next call.
func (w *Watcher) Start(ctx context.Context, callback func(files []string)) error {
	if callback == nil {
		return errors.New("watcher callback is required")
	}

	w.callback = callback
	ctx, w.cancel = context.WithCancel(ctx)

	go w.watch(ctx)
	return nil
}

// Stop stops the watcher and waits for the watch goroutine to exit.
// It is safe to call more than once.
func (w *Watcher) Stop() error {
	var err error
	w.stopOnce.Do(func() {
		if w.cancel != nil {
			w.cancel()
			<-w.doneCh
		} else {
			close(w.doneCh)
		}
		err = w.watcher.Close()
	})
	return err
}

func (w *Watcher) watch(ctx context.Context) {
	defer close(w.doneCh)

	fireCh := make(chan struct{}, 1)

	for {
		select {
		case <-ctx.Done():
			w.stopDebounceTimer()
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}

			relPath, ok := w.relative(event.Name)
			if !ok || w.filter.ShouldIgnore(relPath) {
				continue
			}

			if event.Op&fsnotify.Create != 0 {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					if err := w.addDirectoriesRecursively(event.Name); err != nil {
						log.Printf("Warning: failed to watch new directory %s: %v", relPath, err)
					}
					continue
				}
			}

			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			// A removed or renamed directory takes its files with it without
			// a per-file event.
			removedDir := event.Op&(fsnotify.Remove|fsnotify.Rename) != 0 && filepath.Ext(relPath) == ""
			if !removedDir && !w.filter.IsSourceFile(relPath) {
				continue
			}

			w.pendingMu.Lock()
			w.pending[relPath] = true
			w.pendingMu.Unlock()

			w.resetDebounceTimer(fireCh)

		case <-fireCh:
			w.flush()

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			log.Printf("File watcher error: %v", err)
		}
	}
}

func (w *Watcher) flush() {
	w.pendingMu.Lock()
	if len(w.pending) == 0 {
		w.pendingMu.Unlock()
		return
	}
	files := make([]string, 0, len(w.pending))
	for file := range w.pending {
		files = append(files, file)
	}
	w.pending = make(map[string]bool)
	w.pendingMu.Unlock()

	sort.Strings(files)
	w.callback(files)
}

// resetDebounceTimer restarts the quiet period.
func (w *Watcher) resetDebounceTimer(fireCh chan struct{}) {
	w.timerMu.Lock()
	defer w.timerMu.Unlock()

	if w.debounceTimer != nil {
		w.debounceTimer.Stop()
	}
	w.debounceTimer = time.AfterFunc(w.debounce, func() {
		select {
		case fireCh <- struct{}{}:
		default:
		}
	})
}

func (w *Watcher) stopDebounceTimer() {
	w.timerMu.Lock()
	defer w.timerMu.Unlock()

	if w.debounceTimer != nil {
		w.debounceTimer.Stop()
		w.debounceTimer = nil
	}
}

func (w *Watcher) relative(path string) (string, bool) {
	rel, err := filepath.Rel(w.rootDir, path)
	if err != nil || rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", false
	}
	return filepath.ToSlash(rel), true
}

// addDirectoriesRecursively adds every non-ignored directory below path.
func (w *Watcher) addDirectoriesRecursively(root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == root {
				return err
			}
			log.Printf("Warning: error accessing %s: %v", path, err)
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if rel, ok := w.relative(path); ok && w.filter.ShouldIgnore(rel) {
			return filepath.SkipDir
		}

		if err := w.watcher.Add(path); err != nil {
			log.Printf("Warning: failed to watch directory %s: %v", path, err)
		}
		return nil
	})
}
