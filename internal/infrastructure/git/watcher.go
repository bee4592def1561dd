package git

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/doeshing/cmdverify/internal/domain"
	"github.com/doeshing/cmdverify/internal/ports"
)

// Watcher reports when a documentation file or the repository HEAD changes.
//
// Events are debounced so a checkout touching many files triggers a single
// callback. Start blocks until the context is cancelled.
type Watcher struct {
	root     string
	gitDir   string
	skip     []string
	debounce time.Duration
	logger   ports.Logger
	watcher  *fsnotify.Watcher
	onChange func(ctx context.Context, paths []string)

	mu      sync.Mutex
	pending map[string]struct{}
}

// WatcherOptions configures NewWatcher.
type WatcherOptions struct {
	Root     string
	GitDir   string
	Skip     []string
	Debounce time.Duration
	Logger   ports.Logger
	OnChange func(ctx context.Context, paths []string)
}

// NewWatcher creates a watcher; call Start to begin delivering events.
func NewWatcher(opts WatcherOptions) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if opts.Debounce <= 0 {
		opts.Debounce = domain.DefaultWatchDebounce
	}
	return &Watcher{
		root:     opts.Root,
		gitDir:   opts.GitDir,
		skip:     opts.Skip,
		debounce: opts.Debounce,
		logger:   opts.Logger,
		watcher:  fw,
		onChange: opts.OnChange,
		pending:  make(map[string]struct{}),
	}, nil
}

// Start registers watches and dispatches debounced changes until ctx is done.
func (w *Watcher) Start(ctx context.Context) error {
	if err := w.addTree(w.root); err != nil {
		return err
	}
	if w.gitDir != "" {
		w.addGitRefs()
	}
	w.logger.Debug("watching for changes", map[string]any{"root": w.root, "git_dir": w.gitDir})

	timer := time.NewTimer(w.debounce)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if w.handleEvent(event) {
				timer.Reset(w.debounce)
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("watcher error", map[string]any{"error": err.Error()})
		case <-timer.C:
			w.flush(ctx)
		case <-ctx.Done():
			return nil
		}
	}
}

// Stop releases the underlying watches. Safe to call more than once.
func (w *Watcher) Stop() error {
	return w.watcher.Close()
}

func (w *Watcher) handleEvent(event fsnotify.Event) bool {
	if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
		return false
	}
	name := event.Name
	if event.Op&fsnotify.Create != 0 {
		if info, err := os.Stat(name); err == nil && info.IsDir() {
			_ = w.addTree(name)
			return false
		}
	}
	if !w.relevant(name) {
		return false
	}
	w.mu.Lock()
	w.pending[name] = struct{}{}
	w.mu.Unlock()
	return true
}

func (w *Watcher) relevant(name string) bool {
	if w.gitDir != "" && strings.HasPrefix(name, w.gitDir) {
		return true
	}
	if w.skipped(name) {
		return false
	}
	ext := strings.ToLower(filepath.Ext(name))
	return ext == ".md" || ext == ".markdown" || ext == ".json"
}

func (w *Watcher) flush(ctx context.Context) {
	w.mu.Lock()
	paths := make([]string, 0, len(w.pending))
	for p := range w.pending {
		paths = append(paths, p)
	}
	w.pending = make(map[string]struct{})
	w.mu.Unlock()
	if len(paths) == 0 || w.onChange == nil {
		return
	}
	w.onChange(ctx, paths)
}

func (w *Watcher) addTree(root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if path != root && (strings.HasPrefix(d.Name(), ".") || d.Name() == "node_modules" || w.skipped(path)) {
			return filepath.SkipDir
		}
		if err := w.watcher.Add(path); err != nil {
			w.logger.Debug("failed to watch directory", map[string]any{"path": path, "error": err.Error()})
		}
		return nil
	})
}

func (w *Watcher) addGitRefs() {
	for _, p := range []string{
		filepath.Join(w.gitDir, "HEAD"),
		filepath.Join(w.gitDir, "refs", "heads"),
	} {
		if _, err := os.Stat(p); err != nil {
			continue
		}
		if err := w.watcher.Add(p); err != nil {
			w.logger.Debug("failed to watch git path", map[string]any{"path": p, "error": err.Error()})
		}
	}
}

func (w *Watcher) skipped(path string) bool {
	for _, s := range w.skip {
		if s == "" {
			continue
		}
		if path == s || strings.HasPrefix(path, s+string(filepath.Separator)) {
			return true
		}
	}
	return false
}
