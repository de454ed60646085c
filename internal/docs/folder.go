// Package docs watches a local attachments folder so the create-case picker
// can offer files dropped there without reopening the dialog.
package docs

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// WatcherOptions controls the folder watcher.
type WatcherOptions struct {
	Dir      string
	Patterns []string // e.g. []string{"*.pdf", "*.docx", "*.txt"}
	Logger   *zap.SugaredLogger
}

// Watcher maintains the current set of candidate attachment files under a
// directory, refreshed by fsnotify events.
type Watcher struct {
	opts WatcherOptions

	mu    sync.RWMutex
	files map[string]bool

	// onChange, when set, is invoked after every change to the file set.
	onChange func(files []string)
}

// NewWatcher constructs a folder watcher. The directory is created when
// missing so a fresh install has somewhere to drop documents.
func NewWatcher(opts WatcherOptions) (*Watcher, error) {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop().Sugar()
	}
	if len(opts.Patterns) == 0 {
		opts.Patterns = []string{"*.pdf", "*.docx", "*.txt"}
	}
	if err := os.MkdirAll(opts.Dir, 0755); err != nil {
		return nil, err
	}
	w := &Watcher{
		opts:  opts,
		files: make(map[string]bool),
	}
	if err := w.scanOnce(); err != nil {
		return nil, err
	}
	return w, nil
}

// OnChange registers a callback invoked with the sorted file list after
// every change. Must be set before Run.
func (w *Watcher) OnChange(fn func(files []string)) {
	w.onChange = fn
}

// Files returns the current candidate files, sorted by name.
func (w *Watcher) Files() []string {
	w.mu.RLock()
	defer w.mu.RUnlock()
	out := make([]string, 0, len(w.files))
	for f := range w.files {
		out = append(out, f)
	}
	sort.Strings(out)
	return out
}

// Run watches the directory until the context ends. Watch failures are
// non-fatal; the initial scan result remains available.
func (w *Watcher) Run(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		w.opts.Logger.Warnw("fsnotify unavailable, attachment picker will not auto-refresh", "error", err)
		<-ctx.Done()
		return ctx.Err()
	}
	defer watcher.Close()

	if err := watcher.Add(w.opts.Dir); err != nil {
		w.opts.Logger.Warnw("failed to watch documents folder", "dir", w.opts.Dir, "error", err)
		<-ctx.Done()
		return ctx.Err()
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			w.handleEvent(event)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			w.opts.Logger.Warnw("watch error", "error", err)
		}
	}
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	if !w.matches(filepath.Base(event.Name)) {
		return
	}

	changed := false
	w.mu.Lock()
	switch {
	case event.Op&(fsnotify.Create|fsnotify.Write) != 0:
		if !w.files[event.Name] {
			w.files[event.Name] = true
			changed = true
		}
	case event.Op&(fsnotify.Remove|fsnotify.Rename) != 0:
		if w.files[event.Name] {
			delete(w.files, event.Name)
			changed = true
		}
	}
	w.mu.Unlock()

	if changed {
		w.opts.Logger.Debugw("documents folder changed", "file", event.Name, "op", event.Op.String())
		w.notify()
	}
}

func (w *Watcher) scanOnce() error {
	entries, err := os.ReadDir(w.opts.Dir)
	if err != nil {
		return err
	}
	w.mu.Lock()
	for _, entry := range entries {
		if entry.IsDir() || !w.matches(entry.Name()) {
			continue
		}
		w.files[filepath.Join(w.opts.Dir, entry.Name())] = true
	}
	w.mu.Unlock()
	return nil
}

func (w *Watcher) matches(name string) bool {
	lower := strings.ToLower(name)
	for _, pat := range w.opts.Patterns {
		ok, _ := filepath.Match(strings.ToLower(strings.TrimSpace(pat)), lower)
		if ok {
			return true
		}
	}
	return false
}

func (w *Watcher) notify() {
	if w.onChange != nil {
		w.onChange(w.Files())
	}
}
