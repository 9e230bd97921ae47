// SPDX-License-Identifier: MPL-2.0

// Package watch re-runs a callback when candidate roots or individual files
// change.
//
// Roots are registered a fixed number of levels deep rather than recursively:
// an engine plugin tree is large and only its upper levels decide whether a
// capability resolves. Events within the debounce window are coalesced, and a
// callback never overlaps the previous one.
package watch

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/charmbracelet/log"
	"github.com/fsnotify/fsnotify"
)

// defaultDebounce lets an editor's write-then-rename or a plugin copy settle
// into one batch.
const defaultDebounce = 500 * time.Millisecond

// defaultIgnores are build outputs and editor noise that never change a
// probe result.
var defaultIgnores = []string{
	"**/.git/**",
	"**/Intermediate/**",
	"**/Binaries/**",
	"**/Saved/**",
	"**/DerivedDataCache/**",
	"**/*.swp",
	"**/*~",
	"**/.DS_Store",
}

// ErrNothingToWatch is returned by New when none of the roots or file
// directories exist.
var ErrNothingToWatch = errors.New("watch: nothing to watch")

type (
	// Watcher fires a debounced callback when watched paths change. Run must
	// be called exactly once.
	Watcher struct {
		cfg      Config
		fsw      *fsnotify.Watcher
		ignores  []string
		logger   *log.Logger
		debounce time.Duration
		// dirs and files are only touched by New and the Run loop.
		dirs    map[string]watchedDir
		files   map[string]bool
		started atomic.Bool
	}

	watchedDir struct {
		root  string
		depth int
	}
)

// New validates cfg and registers every existing root and file directory.
func New(cfg Config) (*Watcher, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("watch: create fsnotify watcher: %w", err)
	}

	debounce := cfg.Debounce
	if debounce <= 0 {
		debounce = defaultDebounce
	}
	logger := cfg.Logger
	if logger == nil {
		logger = log.NewWithOptions(os.Stderr, log.Options{Prefix: "watch"})
	}

	w := &Watcher{
		cfg:      cfg,
		fsw:      fsw,
		ignores:  slices.Concat(defaultIgnores, cfg.Ignore),
		logger:   logger,
		debounce: debounce,
		dirs:     make(map[string]watchedDir),
		files:    make(map[string]bool),
	}

	if err := w.register(); err != nil {
		if closeErr := fsw.Close(); closeErr != nil {
			logger.Warn("close after init failure", "error", closeErr)
		}
		return nil, err
	}
	return w, nil
}

func (w *Watcher) register() error {
	for _, root := range w.cfg.Roots {
		abs, err := filepath.Abs(string(root))
		if err != nil {
			return fmt.Errorf("watch: resolve root %q: %w", root, err)
		}
		if info, err := os.Stat(abs); err != nil || !info.IsDir() {
			w.logger.Debug("root not present, not watching", "root", abs)
			continue
		}
		if err := w.addTree(abs, abs, 0); err != nil {
			return err
		}
	}

	for _, file := range w.cfg.Files {
		abs, err := filepath.Abs(string(file))
		if err != nil {
			return fmt.Errorf("watch: resolve file %q: %w", file, err)
		}
		w.files[abs] = true
		dir := filepath.Dir(abs)
		if _, ok := w.dirs[dir]; ok {
			continue
		}
		if err := w.fsw.Add(dir); err != nil {
			if isFatalFsnotifyError(err) {
				return fmt.Errorf("watch: add directory %q: %w", dir, err)
			}
			w.logger.Debug("file directory not watchable", "dir", dir, "error", err)
		}
	}

	if len(w.fsw.WatchList()) == 0 {
		return ErrNothingToWatch
	}
	return nil
}

// addTree registers dir and its subdirectories down to the configured depth.
// Unreadable or vanished directories are skipped with a warning.
func (w *Watcher) addTree(root, dir string, depth int) error {
	if rel, err := filepath.Rel(root, dir); err == nil && rel != "." && (w.isIgnored(rel) || w.isIgnored(rel+"/")) {
		return nil
	}
	if err := w.fsw.Add(dir); err != nil {
		if isFatalFsnotifyError(err) {
			return fmt.Errorf("watch: add directory %q: %w", dir, err)
		}
		w.logger.Warn("skipping directory", "dir", dir, "error", err)
		return nil
	}
	w.dirs[dir] = watchedDir{root: root, depth: depth}

	if depth >= w.cfg.Depth {
		return nil
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		w.logger.Warn("skipping unreadable directory", "dir", dir, "error", err)
		return nil
	}
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		if err := w.addTree(root, filepath.Join(dir, e.Name()), depth+1); err != nil {
			return err
		}
	}
	return nil
}

// Run blocks until ctx is cancelled, dispatching debounced callbacks. It
// returns nil on cancellation and an error when the watcher breaks.
func (w *Watcher) Run(ctx context.Context) error {
	if !w.started.CompareAndSwap(false, true) {
		return fmt.Errorf("watch: Run called more than once")
	}

	var (
		mu      sync.Mutex
		pending = make(map[string]struct{})
		timer   *time.Timer
		running atomic.Bool
	)

	// fire may run after cancellation because it is scheduled by
	// time.AfterFunc; the callback receives ctx and must check it itself.
	fire := func() {
		if ctx.Err() != nil {
			return
		}
		if !running.CompareAndSwap(false, true) {
			w.logger.Debug("previous run still in progress, retrying after debounce")
			mu.Lock()
			if timer != nil {
				timer.Reset(w.debounce)
			}
			mu.Unlock()
			return
		}
		defer running.Store(false)

		mu.Lock()
		if len(pending) == 0 {
			mu.Unlock()
			return
		}
		changed := slices.Sorted(maps.Keys(pending))
		clear(pending)
		mu.Unlock()

		if w.cfg.OnChange != nil {
			if err := w.cfg.OnChange(ctx, changed); err != nil {
				w.logger.Error("callback failed", "error", err)
			}
		}
	}

	defer func() {
		mu.Lock()
		if timer != nil {
			timer.Stop()
		}
		mu.Unlock()
		if err := w.fsw.Close(); err != nil {
			w.logger.Warn("close fsnotify", "error", err)
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case evt, ok := <-w.fsw.Events:
			if !ok {
				return fmt.Errorf("watch: fsnotify event channel closed unexpectedly")
			}
			if !w.accepts(evt.Name) {
				continue
			}
			if evt.Has(fsnotify.Create) {
				w.maybeAddDir(evt.Name)
			}

			mu.Lock()
			pending[evt.Name] = struct{}{}
			if timer == nil {
				timer = time.AfterFunc(w.debounce, fire)
			} else {
				timer.Reset(w.debounce)
			}
			mu.Unlock()

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return fmt.Errorf("watch: fsnotify error channel closed unexpectedly")
			}
			if isFatalFsnotifyError(err) {
				return fmt.Errorf("watch: fatal fsnotify error: %w", err)
			}
			w.logger.Warn("fsnotify error", "error", err)
		}
	}
}

// accepts reports whether an event for path should schedule a callback:
// entries of registered root directories that are not ignored, registered
// directories themselves, and the watched files.
func (w *Watcher) accepts(path string) bool {
	if w.files[path] {
		return true
	}
	if _, ok := w.dirs[path]; ok {
		return true
	}
	parent, ok := w.dirs[filepath.Dir(path)]
	if !ok {
		return false
	}
	rel, err := filepath.Rel(parent.root, path)
	if err != nil {
		return false
	}
	return !w.isIgnored(rel) && !w.isIgnored(rel+"/")
}

// maybeAddDir registers a directory created below a registered directory
// whose depth leaves room for another level.
func (w *Watcher) maybeAddDir(path string) {
	parent, ok := w.dirs[filepath.Dir(path)]
	if !ok || parent.depth >= w.cfg.Depth {
		return
	}
	info, err := os.Stat(path)
	if err != nil || !info.IsDir() {
		return
	}
	if err := w.addTree(parent.root, path, parent.depth+1); err != nil {
		w.logger.Warn("add new directory", "dir", path, "error", err)
	}
}

// isIgnored reports whether rel, relative to its root, matches an ignore pattern.
func (w *Watcher) isIgnored(rel string) bool {
	normalized := filepath.ToSlash(rel)
	for _, pat := range w.ignores {
		if matched, err := doublestar.Match(pat, normalized); err == nil && matched {
			return true
		}
	}
	return false
}

// DefaultIgnores returns a copy of the built-in ignore patterns.
func DefaultIgnores() []string {
	return slices.Clone(defaultIgnores)
}
